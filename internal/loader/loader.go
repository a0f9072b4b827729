package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"whlsl/internal/ast"
	"whlsl/internal/diag"
	"whlsl/internal/source"
	"whlsl/internal/types"
)

// Format selects the encoding of a program description.
type Format uint8

const (
	FormatYAML Format = iota
	FormatMsgpack
)

func (f Format) String() string {
	if f == FormatMsgpack {
		return "msgpack"
	}
	return "yaml"
}

// FormatOf picks the encoding from a file extension; anything that is not
// .msgpack or .mp is read as YAML.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".msgpack", ".mp":
		return FormatMsgpack
	}
	return FormatYAML
}

// Options configure Load.
type Options struct {
	// Intrinsics resolves built-in type names; nil uses a fresh standard
	// set. Built-in types compare by identity, so the checker must be given
	// the same registry.
	Intrinsics *types.Intrinsics
	Format     Format
}

// Load decodes the file registered under id and binds it into a program.
func Load(fs *source.FileSet, id source.FileID, opts Options) (*ast.Program, error) {
	file := fs.Get(id)
	if file == nil {
		return nil, fmt.Errorf("loader: unknown file id %d", id)
	}
	root, err := decode(fs, file, opts.Format)
	if err != nil {
		return nil, err
	}
	in := opts.Intrinsics
	if in == nil {
		in = types.NewIntrinsics()
	}
	b := &binder{in: in, prog: ast.NewProgram()}
	end, err := toUint32(len(file.Content))
	if err != nil {
		return nil, fmt.Errorf("loader: %s: %w", file.Path, err)
	}
	b.prog.SetPos(source.Span{File: id, End: end})
	if err := b.program(root); err != nil {
		return nil, err
	}
	return b.prog, nil
}

func decode(fs *source.FileSet, file *source.File, format Format) (*dnode, error) {
	switch format {
	case FormatMsgpack:
		dec := msgpack.NewDecoder(bytes.NewReader(file.Content))
		dec.UseLooseInterfaceDecoding(true)
		v, err := dec.DecodeInterface()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return &dnode{span: source.Span{File: file.ID}}, nil
			}
			return nil, &Error{Code: diag.LoadBadDocument, Span: source.Span{File: file.ID}, Msg: fmt.Sprintf("invalid MessagePack: %v", err)}
		}
		return fromValue(v, file.ID)
	default:
		var doc yaml.Node
		if err := yaml.NewDecoder(bytes.NewReader(file.Content)).Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				return &dnode{span: source.Span{File: file.ID}}, nil
			}
			return nil, &Error{Code: diag.LoadBadDocument, Span: source.Span{File: file.ID}, Msg: fmt.Sprintf("invalid YAML: %v", err)}
		}
		return fromYAML(&doc, fs, file.ID)
	}
}

// ConvertYAML re-encodes a YAML program description as MessagePack. The
// result loads into the same program, without source positions.
func ConvertYAML(data []byte) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}
	root, err := fromYAML(&doc, nil, 0)
	if err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}
	v, err := root.toValue()
	if err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}
	return buf.Bytes(), nil
}
