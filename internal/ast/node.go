package ast

import (
	"fmt"

	"whlsl/internal/source"
)

// Node is implemented by every syntax node, types and functions included.
type Node interface {
	Pos() source.Span
}

// Origin records where a node came from.
type Origin struct {
	Span source.Span
}

func (o Origin) Pos() source.Span { return o.Span }

// SetPos overwrites the span; used by decoders that build nodes before
// positions are known.
func (o *Origin) SetPos(span source.Span) { o.Span = span }

// At is shorthand for building an Origin from a span.
func At(span source.Span) Origin { return Origin{Span: span} }

// AddressSpace names the memory region a pointer or array reference points into.
type AddressSpace string

const (
	Thread      AddressSpace = "thread"
	Threadgroup AddressSpace = "threadgroup"
	Device      AddressSpace = "device"
	Constant    AddressSpace = "constant"
)

// ParseAddressSpace accepts the four spellings of the language.
func ParseAddressSpace(s string) (AddressSpace, error) {
	switch AddressSpace(s) {
	case Thread, Threadgroup, Device, Constant:
		return AddressSpace(s), nil
	}
	return "", fmt.Errorf("invalid address space %q (expected: thread|threadgroup|device|constant)", s)
}

// ShaderStage marks a function as an entry point of a pipeline stage.
type ShaderStage uint8

const (
	StageNone ShaderStage = iota
	StageVertex
	StageFragment
	StageCompute
	// StageTest accepts every semantic in both directions; used by unit tests.
	StageTest
)

func (s ShaderStage) String() string {
	switch s {
	case StageNone:
		return "none"
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageCompute:
		return "compute"
	case StageTest:
		return "test"
	default:
		return fmt.Sprintf("ShaderStage(%d)", s)
	}
}

// ParseShaderStage converts a stage keyword; the empty string means no stage.
func ParseShaderStage(s string) (ShaderStage, error) {
	switch s {
	case "", "none":
		return StageNone, nil
	case "vertex":
		return StageVertex, nil
	case "fragment":
		return StageFragment, nil
	case "compute":
		return StageCompute, nil
	case "test":
		return StageTest, nil
	default:
		return StageNone, fmt.Errorf("invalid shader stage %q (expected: vertex|fragment|compute|test)", s)
	}
}
