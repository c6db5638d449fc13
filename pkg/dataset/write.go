package dataset

import (
	"io"
	"os"
	"path/filepath"

	"github.com/agentstation/toolmap/pkg/constants"
	"github.com/agentstation/toolmap/pkg/errors"
	"github.com/agentstation/toolmap/pkg/jsonvalue"
)

// Encode renders records as a two-space indented JSON array with a trailing newline.
func Encode(records []jsonvalue.Value) ([]byte, error) {
	data, err := jsonvalue.MarshalIndent(jsonvalue.Array(records...))
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Write encodes records to w.
func Write(w io.Writer, records []jsonvalue.Value) error {
	data, err := Encode(records)
	if err != nil {
		return errors.WrapParse("json", "", err)
	}
	if _, err := w.Write(data); err != nil {
		return errors.WrapIO("write", "", err)
	}
	return nil
}

// WriteFile writes records to path. The file is written to a temporary file
// in the same directory and renamed into place, so a failed run never leaves
// a truncated dataset behind.
func WriteFile(path string, records []jsonvalue.Value) error {
	data, err := Encode(records)
	if err != nil {
		return errors.WrapParse("json", path, err)
	}
	return WriteBytes(path, data)
}

// WriteBytes atomically replaces path with data.
func WriteBytes(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.WrapIO("create", "temp file", err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempPath)
		return errors.WrapIO("write", path, err)
	}
	if err := tempFile.Close(); err != nil {
		_ = os.Remove(tempPath)
		return errors.WrapIO("close", path, err)
	}
	if err := os.Chmod(tempPath, constants.FilePermissions); err != nil {
		_ = os.Remove(tempPath)
		return errors.WrapIO("chmod", path, err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return errors.WrapIO("rename", path, err)
	}
	return nil
}
