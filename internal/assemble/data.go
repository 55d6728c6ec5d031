package assemble

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// DataFormat is the encoding of a template data file.
type DataFormat string

const (
	FormatJSON DataFormat = "json"
	FormatTOML DataFormat = "toml"
)

// DetectFormat picks the data format from the file extension, ignoring case.
func DetectFormat(path string) (DataFormat, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".toml":
		return FormatTOML, true
	}
	return "", false
}

// IsDataFile reports whether path names a JSON or TOML file.
func IsDataFile(path string) bool {
	_, ok := DetectFormat(path)
	return ok
}

// LoadData reads a JSON or TOML data file whose top level is a mapping.
// Values are normalized so both formats produce nil, bool, int64, [Number],
// string, []any and map[string]any only; TOML dates and times become RFC 3339
// strings.
func LoadData(path string) (map[string]any, error) {
	format, ok := DetectFormat(path)
	if !ok {
		return nil, &RenderError{
			Kind: ErrUnknownDataFormat,
			Path: path,
			Err:  errors.New("expected a .json or .toml file"),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &RenderError{Kind: ErrInvalidData, Path: path, Err: err}
	}

	var doc any
	switch format {
	case FormatJSON:
		doc, err = decodeJSON(data)
	case FormatTOML:
		var m map[string]any
		err = toml.Unmarshal(data, &m)
		if m == nil {
			m = map[string]any{}
		}
		doc = m
	}
	if err != nil {
		return nil, &RenderError{Kind: ErrInvalidData, Path: path, Err: err}
	}

	m, ok := normalize(doc).(map[string]any)
	if !ok {
		return nil, &RenderError{
			Kind: ErrInvalidData,
			Path: path,
			Err:  errors.New("top level must be a mapping"),
		}
	}
	return m, nil
}

func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}
	return doc, nil
}

// Number is a decoded floating-point value. It prints in the shortest form
// that round-trips, so 1.5 renders as "1.5" rather than "1.500000".
type Number float64

func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'g', -1, 64)
}

func normalize(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for k, item := range v {
			v[k] = normalize(item)
		}
		return v
	case []any:
		for i, item := range v {
			v[i] = normalize(item)
		}
		return v
	case []map[string]any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalize(item)
		}
		return out
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil {
			return Number(f)
		}
		return v.String()
	case int:
		return int64(v)
	case float64:
		return Number(v)
	case time.Time:
		return v.Format(time.RFC3339)
	case toml.LocalDate, toml.LocalTime, toml.LocalDateTime:
		return fmt.Sprint(v)
	}
	return v
}
