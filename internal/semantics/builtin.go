package semantics

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"whlsl/internal/ast"
	"whlsl/internal/diag"
	"whlsl/internal/types"
)

// Direction is the side of the entry point a value flows through.
type Direction uint8

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	if d == Output {
		return "output"
	}
	return "input"
}

// requiredTypes maps each built-in semantic to the type it binds.
var requiredTypes = map[string]func(*types.Intrinsics) ast.Type{
	"SV_InstanceID":       uintType,
	"SV_VertexID":         uintType,
	"SV_SampleIndex":      uintType,
	"SV_InnerCoverage":    uintType,
	"SV_Coverage":         uintType,
	"SV_GroupIndex":       uintType,
	"PSIZE":               floatType,
	"SV_Depth":            floatType,
	"SV_Position":         float4Type,
	"SV_Target":           float4Type,
	"SV_IsFrontFace":      boolType,
	"SV_DispatchThreadID": uint3Type,
	"SV_GroupID":          uint3Type,
	"SV_GroupThreadID":    uint3Type,
}

func uintType(in *types.Intrinsics) ast.Type   { return in.Uint }
func floatType(in *types.Intrinsics) ast.Type  { return in.Float }
func boolType(in *types.Intrinsics) ast.Type   { return in.Bool }
func float4Type(in *types.Intrinsics) ast.Type { return in.Vector(in.Float, 4) }
func uint3Type(in *types.Intrinsics) ast.Type  { return in.Vector(in.Uint, 3) }

type stageRule struct {
	in  []string
	out []string
}

var stageTable = map[ast.ShaderStage]stageRule{
	ast.StageVertex: {
		in:  []string{"SV_InstanceID", "SV_VertexID"},
		out: []string{"PSIZE", "SV_Position"},
	},
	ast.StageFragment: {
		in:  []string{"SV_IsFrontFace", "SV_Position", "SV_SampleIndex", "SV_InnerCoverage"},
		out: []string{"SV_Target", "SV_Depth", "SV_Coverage"},
	},
	ast.StageCompute: {
		in: []string{"SV_DispatchThreadID", "SV_GroupID", "SV_GroupIndex", "SV_GroupThreadID"},
	},
}

// BuiltInNames lists the known built-in semantics in sorted order.
func BuiltInNames() []string {
	names := make([]string, 0, len(requiredTypes))
	for name := range requiredTypes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// RequiredType is the type a built-in semantic binds. Unknown names are an
// internal error: name resolution only produces known semantics.
func RequiredType(name string, in *types.Intrinsics) (ast.Type, error) {
	fn, ok := requiredTypes[name]
	if !ok {
		return nil, &Error{Code: diag.InternalUnknownSemantic, Msg: fmt.Sprintf("unknown built-in semantic %s", name)}
	}
	return fn(in), nil
}

// BuiltInAllowed reports whether a built-in semantic may appear in the given
// stage and direction. The test stage accepts everything.
func BuiltInAllowed(name string, stage ast.ShaderStage, dir Direction) (bool, error) {
	if stage == ast.StageTest {
		return true, nil
	}
	rule, ok := stageTable[stage]
	if !ok {
		return false, &Error{Code: diag.InternalError, Msg: fmt.Sprintf("unknown shader stage %s", stage)}
	}
	list := rule.in
	if dir == Output {
		list = rule.out
	}
	return slices.Contains(list, name), nil
}

// ParseBuiltIn splits an indexed name such as SV_Target2 into the base name
// and its extra argument.
func ParseBuiltIn(name string) (*ast.BuiltInSemantic, error) {
	if _, ok := requiredTypes[name]; ok {
		return &ast.BuiltInSemantic{Name: name}, nil
	}
	base := strings.TrimRight(name, "0123456789")
	if base == name || base == "" {
		return nil, fmt.Errorf("unknown built-in semantic %q", name)
	}
	if _, ok := requiredTypes[base]; !ok {
		return nil, fmt.Errorf("unknown built-in semantic %q", name)
	}
	raw, err := strconv.ParseUint(name[len(base):], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("semantic %q: %w", name, err)
	}
	idx, err := safecast.Conv[uint32](raw)
	if err != nil {
		return nil, fmt.Errorf("semantic %q index overflow: %w", name, err)
	}
	return &ast.BuiltInSemantic{Name: base, ExtraArgs: []uint32{idx}}, nil
}
