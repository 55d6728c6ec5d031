package update

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/dshills/pa/internal/cache"
	gh "github.com/google/go-github/v80/github"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/mod/semver"
	"golang.org/x/oauth2"
)

// Releases are published to this repository.
const (
	Owner = "dshills"
	Repo  = "pa"
)

// DefaultTimeout bounds a single HTTP request.
const DefaultTimeout = 60 * time.Second

var (
	// ErrNotFound means the requested release does not exist.
	ErrNotFound = errors.New("release not found")
	// ErrNoAsset means the release carries no build for this platform.
	ErrNoAsset = errors.New("no release asset for this platform")
)

// Release is a published version and the asset chosen for this platform.
type Release struct {
	Tag       string
	AssetID   int64
	AssetName string

	// Archive is set when the asset is a .tar.gz holding the binary.
	Archive bool
}

// Updater looks up and installs releases.
type Updater struct {
	gh     *gh.Client
	retry  *retryablehttp.Client
	log    *zap.Logger
	cache  *cache.Cache
	base   string
	goos   string
	goarch string
}

// Option configures an [Updater].
type Option func(*Updater)

// WithLogger sets the logger for request retries and download progress.
func WithLogger(log *zap.Logger) Option {
	return func(u *Updater) {
		if log != nil {
			u.log = log
		}
	}
}

// WithCache makes [Updater.Find] reuse release lookups stored in c.
func WithCache(c *cache.Cache) Option {
	return func(u *Updater) { u.cache = c }
}

// WithBaseURL points the GitHub client at another API root.
func WithBaseURL(base string) Option {
	return func(u *Updater) { u.base = base }
}

// WithPlatform overrides the GOOS/GOARCH pair used to pick an asset.
func WithPlatform(goos, goarch string) Option {
	return func(u *Updater) {
		u.goos = goos
		u.goarch = goarch
	}
}

// New builds an Updater. An empty token means unauthenticated requests.
func New(token string, opts ...Option) (*Updater, error) {
	u := &Updater{
		log:    zap.NewNop(),
		goos:   runtime.GOOS,
		goarch: runtime.GOARCH,
	}
	for _, opt := range opts {
		opt(u)
	}

	u.retry = retryablehttp.NewClient()
	u.retry.RetryMax = 3
	u.retry.RetryWaitMin = 200 * time.Millisecond
	u.retry.RetryWaitMax = 2 * time.Second
	u.retry.Logger = leveledLogger{u.log.Sugar()}
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		u.retry.HTTPClient = oauth2.NewClient(context.Background(), ts)
	}
	u.retry.HTTPClient.Timeout = DefaultTimeout

	u.gh = gh.NewClient(u.retry.StandardClient())
	if u.base != "" {
		base := u.base
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		parsed, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parse base URL: %w", err)
		}
		u.gh.BaseURL = parsed
	}
	return u, nil
}

// Find returns the release tagged tag, or the latest release when tag is
// empty.
func (u *Updater) Find(ctx context.Context, tag string) (*Release, error) {
	var (
		rel  *gh.RepositoryRelease
		resp *gh.Response
		err  error
	)
	what := "latest"
	if tag != "" {
		what = NormalizeTag(tag)
	}
	key := fmt.Sprintf("release/%s/%s/%s/%s/%s", Owner, Repo, what, u.goos, u.goarch)
	if u.cache != nil {
		var cached Release
		if u.cache.Get(key, &cached) {
			u.log.Debug("release lookup cached", zap.String("tag", cached.Tag))
			return &cached, nil
		}
	}

	if tag == "" {
		rel, resp, err = u.gh.Repositories.GetLatestRelease(ctx, Owner, Repo)
	} else {
		rel, resp, err = u.gh.Repositories.GetReleaseByTag(ctx, Owner, Repo, what)
	}
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%s: %w", what, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch %s release: %w", what, err)
	}

	out := &Release{Tag: rel.GetTagName()}
	for _, want := range u.assetNames() {
		for _, a := range rel.Assets {
			if a.GetName() == want {
				out.AssetID = a.GetID()
				out.AssetName = a.GetName()
				out.Archive = strings.HasSuffix(want, ".tar.gz")
				u.log.Debug("release asset selected",
					zap.String("tag", out.Tag),
					zap.String("asset", out.AssetName),
				)
				if u.cache != nil {
					if err := u.cache.Put(key, out); err != nil {
						u.log.Debug("caching release lookup failed", zap.Error(err))
					}
				}
				return out, nil
			}
		}
	}
	return nil, fmt.Errorf("%s %s/%s: %w", out.Tag, u.goos, u.goarch, ErrNoAsset)
}

// assetNames lists acceptable asset names, most preferred first.
func (u *Updater) assetNames() []string {
	base := fmt.Sprintf("pa_%s_%s", u.goos, u.goarch)
	if u.goos == "windows" {
		return []string{base + ".exe", base + ".tar.gz"}
	}
	return []string{base, base + ".tar.gz"}
}

// Apply downloads rel and atomically replaces the file at target.
func (u *Updater) Apply(ctx context.Context, rel *Release, target string) error {
	rc, redirect, err := u.gh.Repositories.DownloadReleaseAsset(ctx, Owner, Repo, rel.AssetID, u.retry.StandardClient())
	if err != nil {
		return fmt.Errorf("download %s: %w", rel.AssetName, err)
	}
	if rc == nil {
		rc, err = u.fetch(ctx, redirect)
		if err != nil {
			return fmt.Errorf("download %s: %w", rel.AssetName, err)
		}
	}
	defer rc.Close()

	var src io.Reader = rc
	if rel.Archive {
		bin, err := binaryFromArchive(rc)
		if err != nil {
			return fmt.Errorf("unpack %s: %w", rel.AssetName, err)
		}
		defer bin.Close()
		src = bin
	}

	return replace(target, src)
}

func (u *Updater) fetch(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/octet-stream")
	resp, err := u.retry.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return resp.Body, nil
}

// archiveEntry reads one tar member and closes the gzip stream under it.
type archiveEntry struct {
	*tar.Reader
	zr *gzip.Reader
}

func (e archiveEntry) Close() error {
	return e.zr.Close()
}

// binaryFromArchive positions a reader at the pa executable inside a gzipped
// tarball. The caller closes it; r itself is left open.
func binaryFromArchive(r io.Reader) (io.ReadCloser, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}
	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			zr.Close()
			return nil, errors.New("archive holds no pa executable")
		}
		if err != nil {
			zr.Close()
			return nil, err
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		switch filepath.Base(hdr.Name) {
		case "pa", "pa.exe":
			return archiveEntry{Reader: tr, zr: zr}, nil
		}
	}
}

// replace writes src beside target and renames it into place.
func replace(target string, src io.Reader) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), ".pa-update-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	name := tmp.Name()
	defer os.Remove(name)

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Chmod(name, 0o755); err != nil {
		return fmt.Errorf("chmod %s: %w", name, err)
	}
	if err := os.Rename(name, target); err != nil {
		return fmt.Errorf("replace %s: %w", target, err)
	}
	return nil
}

// NormalizeTag adds the leading "v" release tags carry.
func NormalizeTag(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" || strings.HasPrefix(tag, "v") {
		return tag
	}
	return "v" + tag
}

// Newer reports whether tag is a later version than current. A current
// version that is not semver, such as "dev", is always older.
func Newer(current, tag string) bool {
	t := NormalizeTag(tag)
	if !semver.IsValid(t) {
		return false
	}
	c := NormalizeTag(current)
	if !semver.IsValid(c) {
		return true
	}
	return semver.Compare(t, c) > 0
}

// leveledLogger routes retryablehttp messages through zap.
type leveledLogger struct {
	s *zap.SugaredLogger
}

func (l leveledLogger) Error(msg string, kv ...interface{}) {
	l.s.Errorw(msg, kv...)
}

func (l leveledLogger) Info(msg string, kv ...interface{}) {
	l.s.Infow(msg, kv...)
}

func (l leveledLogger) Debug(msg string, kv ...interface{}) {
	l.s.Debugw(msg, kv...)
}

func (l leveledLogger) Warn(msg string, kv ...interface{}) {
	l.s.Warnw(msg, kv...)
}
