package loader

import (
	"strconv"
	"strings"

	"fortio.org/safecast"

	"whlsl/internal/ast"
	"whlsl/internal/diag"
	"whlsl/internal/semantics"
)

// parseSemantic reads the textual semantic forms: a built-in name such as
// SV_Target1, attribute(N), register(u0) or register(t1, space2), and
// specialized.
func parseSemantic(n *dnode) (ast.Semantic, error) {
	if n.isNull() {
		return nil, nil
	}
	raw, ok := n.str()
	if !ok {
		return nil, errorf(diag.LoadBadDocument, n, "a semantic is written as a string")
	}
	raw = strings.TrimSpace(raw)

	var sem ast.Semantic
	switch {
	case raw == "specialized":
		sem = &ast.SpecializationConstantSemantic{}
	case strings.HasPrefix(raw, "attribute(") && strings.HasSuffix(raw, ")"):
		idx, err := semanticIndex(n, raw[len("attribute("):len(raw)-1])
		if err != nil {
			return nil, err
		}
		sem = &ast.StageInOutSemantic{Index: idx}
	case strings.HasPrefix(raw, "register(") && strings.HasSuffix(raw, ")"):
		res, err := parseRegister(n, raw[len("register("):len(raw)-1])
		if err != nil {
			return nil, err
		}
		sem = res
	default:
		bi, err := semantics.ParseBuiltIn(raw)
		if err != nil {
			return nil, errorf(diag.LoadBadValue, n, "%v", err)
		}
		sem = bi
	}
	setPos(sem, n)
	return sem, nil
}

func parseRegister(n *dnode, args string) (*ast.ResourceSemantic, error) {
	reg, space, hasSpace := strings.Cut(args, ",")
	reg = strings.TrimSpace(reg)
	if reg == "" {
		return nil, errorf(diag.LoadBadValue, n, "register() needs a slot such as u0")
	}
	mode, err := ast.ParseResourceMode(reg[:1])
	if err != nil {
		return nil, errorf(diag.LoadBadValue, n, "%v", err)
	}
	res := &ast.ResourceSemantic{Mode: mode}
	if res.Index, err = semanticIndex(n, reg[1:]); err != nil {
		return nil, err
	}
	if hasSpace {
		space = strings.TrimSpace(space)
		num, ok := strings.CutPrefix(space, "space")
		if !ok {
			return nil, errorf(diag.LoadBadValue, n, "register space must be written spaceN, got %q", space)
		}
		if res.Space, err = semanticIndex(n, num); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func semanticIndex(n *dnode, s string) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, errorf(diag.LoadBadValue, n, "invalid semantic index %q", s)
	}
	idx, err := safecast.Conv[uint32](v)
	if err != nil {
		return 0, errorf(diag.LoadBadValue, n, "semantic index %d out of range", v)
	}
	return idx, nil
}
