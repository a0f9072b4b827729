package ast

import (
	"fmt"
	"strings"
)

// Semantic binds an entry-point value to a pipeline slot.
type Semantic interface {
	Node
	String() string
	isSemantic()
}

// BuiltInSemantic is a system value such as SV_Position. ExtraArgs carries
// the numeric suffix of indexed names (SV_Target3 has ExtraArgs [3]).
type BuiltInSemantic struct {
	Origin
	Name      string
	ExtraArgs []uint32
}

func (s *BuiltInSemantic) String() string {
	if len(s.ExtraArgs) == 0 {
		return s.Name
	}
	parts := make([]string, len(s.ExtraArgs))
	for i, a := range s.ExtraArgs {
		parts[i] = fmt.Sprint(a)
	}
	return s.Name + "(" + strings.Join(parts, ", ") + ")"
}
func (*BuiltInSemantic) isSemantic() {}

// StageInOutSemantic is attribute(n).
type StageInOutSemantic struct {
	Origin
	Index uint32
}

func (s *StageInOutSemantic) String() string { return fmt.Sprintf("attribute(%d)", s.Index) }
func (*StageInOutSemantic) isSemantic()      {}

// ResourceMode is the register class of a resource binding.
type ResourceMode byte

const (
	ResourceUAV     ResourceMode = 'u'
	ResourceTexture ResourceMode = 't'
	ResourceBuffer  ResourceMode = 'b'
	ResourceSampler ResourceMode = 's'
)

// ParseResourceMode accepts u, t, b and s.
func ParseResourceMode(s string) (ResourceMode, error) {
	if len(s) == 1 {
		switch m := ResourceMode(s[0]); m {
		case ResourceUAV, ResourceTexture, ResourceBuffer, ResourceSampler:
			return m, nil
		}
	}
	return 0, fmt.Errorf("invalid resource mode %q (expected: u|t|b|s)", s)
}

// ResourceSemantic is register(mode index, space).
type ResourceSemantic struct {
	Origin
	Mode  ResourceMode
	Index uint32
	Space uint32
}

func (s *ResourceSemantic) String() string {
	return fmt.Sprintf("register(%c%d, space%d)", s.Mode, s.Index, s.Space)
}
func (*ResourceSemantic) isSemantic() {}

// SpecializationConstantSemantic marks a value supplied at pipeline creation.
type SpecializationConstantSemantic struct {
	Origin
}

func (*SpecializationConstantSemantic) String() string { return "specialized" }
func (*SpecializationConstantSemantic) isSemantic()    {}
