// Package dataset reads and writes record files.
//
// A dataset file is either a JSON array of records or newline-delimited JSON
// (one value per line). Records are returned as jsonvalue.Value so that
// non-object entries reach the caller, which decides how to count them.
// Output is always a pretty-printed JSON array written atomically.
package dataset

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentstation/toolmap/pkg/constants"
	"github.com/agentstation/toolmap/pkg/errors"
	"github.com/agentstation/toolmap/pkg/jsonvalue"
)

// Format is the encoding a dataset file was read from.
type Format int

const (
	// FormatEmpty is reported for files with no content.
	FormatEmpty Format = iota
	// FormatArray is a single top-level JSON array.
	FormatArray
	// FormatObject is a single top-level JSON object, read as one record.
	FormatObject
	// FormatNDJSON is one JSON value per line.
	FormatNDJSON
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatEmpty:
		return "empty"
	case FormatArray:
		return "json"
	case FormatObject:
		return "json-object"
	case FormatNDJSON:
		return "ndjson"
	default:
		return "unknown"
	}
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadFile loads every record from a dataset file.
func ReadFile(path string) ([]jsonvalue.Value, error) {
	records, _, err := ReadFileFormat(path)
	return records, err
}

// ReadFileFormat is ReadFile that also reports the detected encoding.
func ReadFileFormat(path string) ([]jsonvalue.Value, Format, error) {
	f, err := os.Open(path) //nolint:gosec // path is supplied by the operator
	if err != nil {
		if os.IsNotExist(err) {
			return nil, FormatEmpty, &errors.NotFoundError{Resource: "dataset file", ID: path}
		}
		return nil, FormatEmpty, errors.WrapIO("open", path, err)
	}
	defer func() { _ = f.Close() }()
	return Read(f, path)
}

// Read loads every record from r. name labels parse errors.
func Read(r io.Reader, name string) ([]jsonvalue.Value, Format, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, FormatEmpty, errors.WrapIO("read", name, err)
	}
	return Decode(data, name)
}

// Decode parses dataset bytes. A document starting with '[' must be one JSON
// array. A document starting with '{' is tried as a single object first and
// as NDJSON otherwise. Anything else is parsed line by line as NDJSON and
// must hold at least one object, so a bare scalar document is rejected.
func Decode(data []byte, name string) ([]jsonvalue.Value, Format, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []jsonvalue.Value{}, FormatEmpty, nil
	}

	switch trimmed[0] {
	case '[':
		v, err := jsonvalue.Parse(trimmed)
		if err != nil {
			return nil, FormatArray, &errors.ParseError{
				Format:  FormatArray.String(),
				File:    name,
				Message: err.Error(),
				Err:     err,
			}
		}
		items, _ := v.AsArray()
		return items, FormatArray, nil
	case '{':
		if v, err := jsonvalue.Parse(trimmed); err == nil {
			return []jsonvalue.Value{v}, FormatObject, nil
		}
	}

	records, err := decodeLines(data, name)
	if err != nil {
		return nil, FormatNDJSON, err
	}
	if !hasObject(records) {
		return nil, FormatNDJSON, &errors.ParseError{
			Format:  FormatNDJSON.String(),
			File:    name,
			Message: fmt.Sprintf("top-level %s is neither a JSON array nor newline-delimited objects", records[0].Kind()),
		}
	}
	return records, FormatNDJSON, nil
}

func hasObject(records []jsonvalue.Value) bool {
	for _, r := range records {
		if r.Kind() == jsonvalue.KindObject {
			return true
		}
	}
	return false
}

func decodeLines(data []byte, name string) ([]jsonvalue.Value, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), constants.MaxLineSize)

	records := []jsonvalue.Value{}
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		v, err := jsonvalue.Parse(text)
		if err != nil {
			return nil, &errors.ParseError{
				Format:  FormatNDJSON.String(),
				File:    name,
				Line:    line,
				Column:  1,
				Message: err.Error(),
				Err:     err,
			}
		}
		records = append(records, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, &errors.ParseError{
			Format:  FormatNDJSON.String(),
			File:    name,
			Line:    line + 1,
			Message: err.Error(),
			Err:     err,
		}
	}
	return records, nil
}

// DefaultOutputPath returns <dir>/<stem>.collapsed.json for an input path.
func DefaultOutputPath(input string) string {
	return SiblingPath(input, constants.CollapsedSuffix)
}

// SiblingPath replaces the extension of input with suffix, keeping its directory.
func SiblingPath(input, suffix string) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = base
	}
	return filepath.Join(filepath.Dir(input), stem+suffix)
}
