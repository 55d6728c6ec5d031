package update

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/pa/internal/cache"
)

const releaseJSON = `{
  "tag_name": "v1.2.0",
  "assets": [
    {"id": 6, "name": "pa_darwin_arm64"},
    {"id": 7, "name": "pa_linux_amd64.tar.gz"},
    {"id": 8, "name": "pa_windows_amd64.exe"}
  ]
}`

func newTestUpdater(t *testing.T, mux *http.ServeMux, goos, goarch string) *Updater {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	u, err := New("", WithBaseURL(server.URL), WithPlatform(goos, goarch))
	require.NoError(t, err)
	return u
}

func tarball(t *testing.T, name string, body []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(zw)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "README.md", Mode: 0o644, Size: 2, Typeflag: tar.TypeReg}))
	_, err := tw.Write([]byte("hi"))
	require.NoError(t, err)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Mode: 0o755, Size: int64(len(body)), Typeflag: tar.TypeReg}))
	_, err = tw.Write(body)
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestFindLatest(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/dshills/pa/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, releaseJSON)
	})

	tests := []struct {
		goos, goarch string
		asset        string
		id           int64
		archive      bool
	}{
		{"linux", "amd64", "pa_linux_amd64.tar.gz", 7, true},
		{"darwin", "arm64", "pa_darwin_arm64", 6, false},
		{"windows", "amd64", "pa_windows_amd64.exe", 8, false},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			u := newTestUpdater(t, mux, tt.goos, tt.goarch)
			rel, err := u.Find(context.Background(), "")
			require.NoError(t, err)
			assert.Equal(t, "v1.2.0", rel.Tag)
			assert.Equal(t, tt.asset, rel.AssetName)
			assert.Equal(t, tt.id, rel.AssetID)
			assert.Equal(t, tt.archive, rel.Archive)
		})
	}
}

func TestFindByTagNormalizes(t *testing.T) {
	var asked string
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/dshills/pa/releases/tags/", func(w http.ResponseWriter, r *http.Request) {
		asked = filepath.Base(r.URL.Path)
		fmt.Fprint(w, releaseJSON)
	})

	u := newTestUpdater(t, mux, "linux", "amd64")
	_, err := u.Find(context.Background(), "1.2.0")
	require.NoError(t, err)
	assert.Equal(t, "v1.2.0", asked)
}

func TestFindUsesCache(t *testing.T) {
	var hits int
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/dshills/pa/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, releaseJSON)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	c, err := cache.New(t.TempDir(), time.Hour)
	require.NoError(t, err)

	u, err := New("", WithBaseURL(server.URL), WithPlatform("linux", "amd64"), WithCache(c))
	require.NoError(t, err)

	first, err := u.Find(context.Background(), "")
	require.NoError(t, err)
	second, err := u.Find(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, 1, hits)
	assert.Equal(t, first, second)

	other, err := New("", WithBaseURL(server.URL), WithPlatform("darwin", "arm64"), WithCache(c))
	require.NoError(t, err)
	rel, err := other.Find(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "pa_darwin_arm64", rel.AssetName)
	assert.Equal(t, 2, hits)
}

func TestFindErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/dshills/pa/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, releaseJSON)
	})
	mux.HandleFunc("/repos/dshills/pa/releases/tags/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	})

	u := newTestUpdater(t, mux, "plan9", "386")
	_, err := u.Find(context.Background(), "")
	assert.True(t, errors.Is(err, ErrNoAsset), "got %v", err)

	_, err = u.Find(context.Background(), "v9.9.9")
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
}

func TestApplyArchive(t *testing.T) {
	binary := []byte("#!/bin/sh\necho new\n")
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/dshills/pa/releases/assets/7", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(tarball(t, "pa_linux_amd64/pa", binary))
	})

	u := newTestUpdater(t, mux, "linux", "amd64")
	target := filepath.Join(t.TempDir(), "pa")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0o755))

	err := u.Apply(context.Background(), &Release{Tag: "v1.2.0", AssetID: 7, AssetName: "pa_linux_amd64.tar.gz", Archive: true}, target)
	require.NoError(t, err)

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, binary, got)

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(target))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestApplyRawAsset(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/dshills/pa/releases/assets/6", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("raw binary"))
	})

	u := newTestUpdater(t, mux, "darwin", "arm64")
	target := filepath.Join(t.TempDir(), "pa")

	err := u.Apply(context.Background(), &Release{AssetID: 6, AssetName: "pa_darwin_arm64"}, target)
	require.NoError(t, err)

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "raw binary", string(got))
}

func TestApplyArchiveWithoutBinary(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/dshills/pa/releases/assets/7", func(w http.ResponseWriter, r *http.Request) {
		w.Write(tarball(t, "docs/other", []byte("x")))
	})

	u := newTestUpdater(t, mux, "linux", "amd64")
	target := filepath.Join(t.TempDir(), "pa")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0o755))

	err := u.Apply(context.Background(), &Release{AssetID: 7, AssetName: "pa_linux_amd64.tar.gz", Archive: true}, target)
	require.Error(t, err)

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "old", string(got))
}

func TestBinaryFromArchive(t *testing.T) {
	rc, err := binaryFromArchive(bytes.NewReader(tarball(t, "dist/pa", []byte("exe"))))
	require.NoError(t, err)

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "exe", string(got))
	assert.NoError(t, rc.Close())

	_, err = binaryFromArchive(bytes.NewReader(tarball(t, "dist/other", []byte("x"))))
	assert.ErrorContains(t, err, "no pa executable")

	_, err = binaryFromArchive(bytes.NewReader([]byte("not gzip")))
	assert.Error(t, err)
}

func TestNewer(t *testing.T) {
	tests := []struct {
		current, tag string
		want         bool
	}{
		{"0.1.0", "v0.2.0", true},
		{"v0.2.0", "0.2.0", false},
		{"0.3.0", "v0.2.0", false},
		{"dev", "v0.1.0", true},
		{"0.1.0", "nightly", false},
	}
	for _, tt := range tests {
		if got := Newer(tt.current, tt.tag); got != tt.want {
			t.Errorf("Newer(%q, %q) = %v, want %v", tt.current, tt.tag, got, tt.want)
		}
	}
}

func TestNormalizeTag(t *testing.T) {
	assert.Equal(t, "v1.0.0", NormalizeTag("1.0.0"))
	assert.Equal(t, "v1.0.0", NormalizeTag(" v1.0.0 "))
	assert.Equal(t, "", NormalizeTag(""))
}
