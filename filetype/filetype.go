// Package filetype provides extension-typed file handles for stage files:
// paths whose extension encodes the file's format, so that a file produced by
// one stage and declared in its output schema can be consumed by another with
// the format agreed in the generated pipeline interface.
package filetype

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-stagehand/stagehand"
	"github.com/pierrec/lz4"
)

// A FileType is a handle to a typed stage file
type FileType interface {
	// Path returns the location of the file
	Path() string
	// Ext returns the file's extension, without a leading dot
	Ext() string
	// Save serializes a value into the file
	Save(value interface{}) error
	// Load deserializes the file into a target
	Load(target interface{}) error
}

// Kind returns the FieldKind corresponding to a FileType, for use in schemas
func Kind(f FileType) stagehand.FieldKind {
	return stagehand.FileKind{Ext: f.Ext()}
}

// jsonExt is the extension of plain JSON files
const jsonExt = "json"

// lz4Ext is the extension suffix of LZ4-compressed files
const lz4Ext = "lz4"

// A JSONFile is a handle to a JSON-encoded stage file
type JSONFile struct {
	path string
}

// CreateJSONFile is a factory for a JSONFile at a named location within a
// phase's files directory
func CreateJSONFile(rover *stagehand.Rover, name string) *JSONFile {
	return &JSONFile{path: rover.MakePath(name + "." + jsonExt)}
}

// OpenJSONFile is a factory for a JSONFile handle at an existing path, such
// as one received through a stage-input record
func OpenJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

// Path returns the location of the file
func (f *JSONFile) Path() string {
	return f.path
}

// Ext returns the file's extension
func (f *JSONFile) Ext() string {
	return jsonExt
}

// Save serializes a value into the file as indented JSON
func (f *JSONFile) Save(value interface{}) error {
	data, err := json.MarshalIndent(value, "", "    ")
	if err != nil {
		return err
	}
	return writeFile(f.path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// Load deserializes the file into a target
func (f *JSONFile) Load(target interface{}) error {
	file, err := os.Open(f.path)
	if err != nil {
		return err
	}
	defer file.Close()
	return json.NewDecoder(file).Decode(target)
}

// An LZ4File wraps another FileType with LZ4 compression. Its extension is
// the inner extension suffixed with ".lz4".
type LZ4File struct {
	path  string
	inner string
}

// CreateLZ4JSONFile is a factory for an LZ4-compressed JSON file at a named
// location within a phase's files directory
func CreateLZ4JSONFile(rover *stagehand.Rover, name string) *LZ4File {
	return &LZ4File{
		path:  rover.MakePath(name + "." + jsonExt + "." + lz4Ext),
		inner: jsonExt,
	}
}

// OpenLZ4File is a factory for an LZ4File handle at an existing path. The
// inner format is recovered from the extension preceding the lz4 suffix.
func OpenLZ4File(path string) *LZ4File {
	trimmed := strings.TrimSuffix(path, "."+lz4Ext)
	return &LZ4File{path: path, inner: strings.TrimPrefix(filepath.Ext(trimmed), ".")}
}

// Path returns the location of the file
func (f *LZ4File) Path() string {
	return f.path
}

// Ext returns the file's compound extension
func (f *LZ4File) Ext() string {
	return f.inner + "." + lz4Ext
}

// Save serializes a value into the file as LZ4-compressed JSON
func (f *LZ4File) Save(value interface{}) error {
	return writeFile(f.path, func(w io.Writer) error {
		zw := lz4.NewWriter(w)
		if err := json.NewEncoder(zw).Encode(value); err != nil {
			zw.Close()
			return err
		}
		return zw.Close()
	})
}

// Load deserializes the LZ4-compressed file into a target
func (f *LZ4File) Load(target interface{}) error {
	file, err := os.Open(f.path)
	if err != nil {
		return err
	}
	defer file.Close()
	return json.NewDecoder(lz4.NewReader(file)).Decode(target)
}

// writeFile streams content into a file through a temporary sibling, renaming
// it into place once fully written
func writeFile(path string, write func(io.Writer) error) error {
	tmp := path + ".partial"
	file, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		file.Close()
		os.Remove(tmp)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
