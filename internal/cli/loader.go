package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/insight/internal/ir"
	"github.com/roach88/insight/internal/queryir"
	"github.com/roach88/insight/internal/schema"
)

// LoadError represents an error that occurred while reading a query or
// dataset file.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeUnsupported  = "E002" // Unsupported file extension
	ErrCodeDecodeFailed = "E003" // JSON/YAML decode failed
	ErrCodeLoadFailed   = "E004" // CUE compile or validation failed
	ErrCodeNotFound     = "E005" // Path not found
	ErrCodeBadDataset   = "E006" // Malformed --dataset flag or record file
	ErrCodeStoreFailed  = "E007" // Database error
)

// LoadQuery reads a query document. The format follows the extension:
// .json, .yaml/.yml or .cue. CUE documents must evaluate to concrete data;
// they are exported to JSON and then decoded like any JSON query so that
// numbers keep their literal precision.
func LoadQuery(path string) (any, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		doc, err := queryir.Decode(data)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeDecodeFailed, Message: fmt.Sprintf("%s: %v", path, err)}
		}
		return doc, nil
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, &LoadError{Code: ErrCodeDecodeFailed, Message: fmt.Sprintf("%s: %v", path, err)}
		}
		return doc, nil
	case ".cue":
		return compileCUE(path, data)
	default:
		return nil, &LoadError{Code: ErrCodeUnsupported, Message: fmt.Sprintf("unsupported query file extension %q", ext)}
	}
}

func compileCUE(path string, data []byte) (any, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, cueLoadError(err)
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, cueLoadError(err)
	}

	out, err := value.MarshalJSON()
	if err != nil {
		return nil, cueLoadError(err)
	}
	doc, err := queryir.Decode(out)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeDecodeFailed, Message: fmt.Sprintf("%s: %v", path, err)}
	}
	return doc, nil
}

// cueLoadError keeps the first reported position of a CUE error.
func cueLoadError(err error) *LoadError {
	le := &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
	if errs := cueerrors.Errors(err); len(errs) > 0 {
		le.Message = errs[0].Error()
		le.Pos = errs[0].Position()
	}
	return le
}

// LoadRecords reads a record file: a JSON or YAML array of flat objects.
func LoadRecords(path string) ([]ir.Record, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		records, err := ir.DecodeRecords(data)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeBadDataset, Message: fmt.Sprintf("%s: %v", path, err)}
		}
		return records, nil
	case ".yaml", ".yml":
		var raw []map[string]any
		dec := yaml.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&raw); err != nil {
			return nil, &LoadError{Code: ErrCodeBadDataset, Message: fmt.Sprintf("%s: %v", path, err)}
		}
		records := make([]ir.Record, 0, len(raw))
		for i, m := range raw {
			rec, err := ir.RecordFromMap(m)
			if err != nil {
				return nil, &LoadError{Code: ErrCodeBadDataset, Message: fmt.Sprintf("%s: record %d: %v", path, i, err)}
			}
			records = append(records, rec)
		}
		return records, nil
	default:
		return nil, &LoadError{Code: ErrCodeUnsupported, Message: fmt.Sprintf("unsupported record file extension %q", ext)}
	}
}

// DatasetSource is one --dataset flag: id=kind:path.
type DatasetSource struct {
	ID   string
	Kind schema.Kind
	Path string
}

// ParseDatasetSource parses an id=kind:path flag value.
func ParseDatasetSource(s string) (DatasetSource, error) {
	id, rest, ok := strings.Cut(s, "=")
	if !ok || id == "" {
		return DatasetSource{}, &LoadError{Code: ErrCodeBadDataset, Message: fmt.Sprintf("dataset %q: expected id=kind:path", s)}
	}
	kindStr, path, ok := strings.Cut(rest, ":")
	if !ok || path == "" {
		return DatasetSource{}, &LoadError{Code: ErrCodeBadDataset, Message: fmt.Sprintf("dataset %q: expected id=kind:path", s)}
	}
	kind, ok := schema.ParseKind(kindStr)
	if !ok {
		return DatasetSource{}, &LoadError{Code: ErrCodeBadDataset, Message: fmt.Sprintf("dataset %q: unknown kind %q", s, kindStr)}
	}
	return DatasetSource{ID: id, Kind: kind, Path: path}, nil
}

// Load reads the source's records into a dataset.
func (s DatasetSource) Load() (*ir.Dataset, error) {
	records, err := LoadRecords(s.Path)
	if err != nil {
		return nil, err
	}
	return &ir.Dataset{ID: s.ID, Kind: s.Kind, Records: records}, nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("file not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("reading %s: %v", path, err)}
	}
	return data, nil
}
