package loader

import (
	"strings"

	"whlsl/internal/ast"
	"whlsl/internal/diag"
	"whlsl/internal/source"
	"whlsl/internal/types"
)

var declKinds = []string{"struct", "enum", "typedef", "native_type", "protocol", "func", "native"}

type binder struct {
	in   *types.Intrinsics
	prog *ast.Program
}

// decl is a declaration awaiting its later binding passes.
type decl struct {
	kind   string
	node   ast.Node
	body   *dnode
	params *scope
}

func setPos(n ast.Node, at *dnode) {
	if p, ok := n.(interface{ SetPos(source.Span) }); ok && at != nil {
		p.SetPos(at.span)
	}
}

// kindOf finds the single key of n naming what the node is.
func kindOf(n *dnode, kinds []string, what string) (string, *dnode, error) {
	if n == nil || n.kind != mapNode {
		return "", nil, errorf(diag.LoadBadNode, n, "%s must be a map keyed by one of %s", what, strings.Join(kinds, ", "))
	}
	var kind string
	var val *dnode
	for _, k := range kinds {
		for i, key := range n.keys {
			if key != k {
				continue
			}
			if kind != "" {
				return "", nil, errorf(diag.LoadBadNode, n, "%s has both %q and %q", what, kind, k)
			}
			kind, val = k, n.vals[i]
		}
	}
	if kind == "" {
		return "", nil, errorf(diag.LoadBadNode, n, "%s must be keyed by one of %s", what, strings.Join(kinds, ", "))
	}
	return kind, val, nil
}

// program binds declarations in three passes: names, then signatures and
// type bodies, then function bodies. Later passes see every name.
func (b *binder) program(root *dnode) error {
	if !root.isNull() && root.kind != seqNode {
		return errorf(diag.LoadBadDocument, root, "a program is a sequence of declarations, got a %s", root.kind)
	}
	var decls []*decl
	for _, item := range root.list() {
		kind, body, err := kindOf(item, declKinds, "declaration")
		if err != nil {
			return err
		}
		d, err := b.declare(kind, body)
		if err != nil {
			return err
		}
		decls = append(decls, d)
	}
	for _, d := range decls {
		if err := b.signature(d); err != nil {
			return err
		}
	}
	for _, d := range decls {
		if err := b.bodies(d); err != nil {
			return err
		}
	}
	return nil
}

func (b *binder) declareType(name string, at *dnode) error {
	if _, ok := b.prog.Types[name]; ok {
		return errorf(diag.LoadDuplicateName, at, "type %q is declared twice", name)
	}
	if _, ok := b.in.Lookup(name); ok {
		return errorf(diag.LoadDuplicateName, at, "type %q shadows a built-in type", name)
	}
	if _, ok := b.prog.Protocols[name]; ok {
		return errorf(diag.LoadDuplicateName, at, "type %q collides with a protocol", name)
	}
	return nil
}

// declare creates the declaration with its name and type parameter names and
// adds it to the program.
func (b *binder) declare(kind string, body *dnode) (*decl, error) {
	if body == nil || body.kind != mapNode {
		return nil, errorf(diag.LoadBadDocument, body, "%s declaration must be a map", kind)
	}
	name, err := ident(body.get("name"), kind+" name")
	if err != nil {
		return nil, err
	}
	d := &decl{kind: kind, body: body, params: newScope(nil)}

	switch kind {
	case "struct", "typedef", "native_type", "enum":
		if err := b.declareType(name, body); err != nil {
			return nil, err
		}
		tps, err := b.typeParamShells(d.params, body.get("type_params"))
		if err != nil {
			return nil, err
		}
		switch kind {
		case "struct":
			d.node = &ast.StructType{Name: name, TypeParameters: tps}
		case "typedef":
			d.node = &ast.TypeDef{Name: name, TypeParameters: tps}
		case "native_type":
			d.node = &ast.NativeType{Name: name, TypeParameters: tps}
		default:
			if len(tps) != 0 {
				return nil, errorf(diag.LoadBadDocument, body.get("type_params"), "enum %q cannot have type parameters", name)
			}
			d.node = &ast.EnumType{Name: name}
		}
	case "protocol":
		if _, ok := b.prog.Protocols[name]; ok {
			return nil, errorf(diag.LoadDuplicateName, body, "protocol %q is declared twice", name)
		}
		if _, ok := b.prog.Types[name]; ok {
			return nil, errorf(diag.LoadDuplicateName, body, "protocol %q collides with a type", name)
		}
		pd := &ast.ProtocolDecl{Name: name}
		// Inside its signatures the protocol's name stands for the type
		// that implements it.
		pd.TypeVariable = &ast.TypeVariable{Name: name, Protocol: &ast.ProtocolRef{Name: name, Decl: pd}}
		setPos(pd.TypeVariable, body)
		if err := d.params.declare(name, pd.TypeVariable, body); err != nil {
			return nil, err
		}
		d.node = pd
	case "func":
		d.node = &ast.FuncDef{FuncBase: ast.FuncBase{Name: name}}
	case "native":
		d.node = &ast.NativeFunc{FuncBase: ast.FuncBase{Name: name}}
	}
	setPos(d.node, body)
	b.prog.Add(d.node)
	return d, nil
}

// signature binds everything outside function bodies.
func (b *binder) signature(d *decl) error {
	switch n := d.node.(type) {
	case *ast.StructType:
		if err := b.typeParamBounds(d.params, n.TypeParameters, d.body.get("type_params")); err != nil {
			return err
		}
		return b.fields(d.params, n, d.body.get("fields"))
	case *ast.TypeDef:
		if err := b.typeParamBounds(d.params, n.TypeParameters, d.body.get("type_params")); err != nil {
			return err
		}
		target := d.body.get("type")
		if target.isNull() {
			return errorf(diag.LoadBadDocument, d.body, "typedef %q needs a type", n.Name)
		}
		t, err := b.typ(d.params, target)
		if err != nil {
			return err
		}
		n.Type = t
	case *ast.NativeType:
		return b.typeParamBounds(d.params, n.TypeParameters, d.body.get("type_params"))
	case *ast.EnumType:
		return b.enum(d.params, n, d.body)
	case *ast.ProtocolDecl:
		return b.protocol(d.params, n, d.body)
	case ast.Func:
		return b.funcSignature(d.params, n.Base(), d.body)
	}
	return nil
}

func (b *binder) bodies(d *decl) error {
	switch n := d.node.(type) {
	case *ast.FuncDef:
		fs := newScope(d.params)
		for _, p := range n.Parameters {
			if err := fs.declare(p.Name, p, d.body); err != nil {
				return err
			}
		}
		body := d.body.get("body")
		blk, err := b.block(fs, body)
		if err != nil {
			return err
		}
		setPos(blk, body)
		n.Body = blk
	case *ast.NativeFunc:
		if d.body.get("body") != nil {
			return errorf(diag.LoadBadDocument, d.body.get("body"), "native function %q cannot have a body", n.Name)
		}
	case *ast.ProtocolDecl:
		for _, sig := range n.Signatures {
			sig.PossibleOverloads = b.prog.OverloadSet(sig.Name)
		}
	}
	return nil
}

// typeParamShells declares type parameter names; bounds are bound later,
// once every protocol and type is known.
func (b *binder) typeParamShells(s *scope, list *dnode) ([]ast.TypeParameter, error) {
	var out []ast.TypeParameter
	for _, item := range list.list() {
		var tp ast.TypeParameter
		nameNode := item
		if item.kind == mapNode {
			nameNode = item.get("name")
		}
		name, err := ident(nameNode, "type parameter")
		if err != nil {
			return nil, err
		}
		if item.kind == mapNode && item.get("type") != nil {
			tp = &ast.ConstexprTypeParameter{Name: name}
		} else {
			tp = &ast.TypeVariable{Name: name}
		}
		setPos(tp, item)
		if err := s.declare(name, tp, item); err != nil {
			return nil, err
		}
		out = append(out, tp)
	}
	return out, nil
}

func (b *binder) typeParamBounds(s *scope, tps []ast.TypeParameter, list *dnode) error {
	items := list.list()
	for i, tp := range tps {
		item := items[i]
		if item.kind != mapNode {
			continue
		}
		switch p := tp.(type) {
		case *ast.TypeVariable:
			proto := item.get("protocol")
			if proto == nil {
				continue
			}
			ref, err := b.protocolRef(proto)
			if err != nil {
				return err
			}
			p.Protocol = ref
		case *ast.ConstexprTypeParameter:
			t, err := b.typ(s, item.get("type"))
			if err != nil {
				return err
			}
			p.Type = t
		}
	}
	return nil
}

func (b *binder) protocolRef(n *dnode) (*ast.ProtocolRef, error) {
	name, err := ident(n, "protocol")
	if err != nil {
		return nil, err
	}
	pd, ok := b.prog.Protocols[name]
	if !ok {
		return nil, errorf(diag.LoadUnknownName, n, "unknown protocol %q", name)
	}
	ref := &ast.ProtocolRef{Name: name, Decl: pd}
	setPos(ref, n)
	return ref, nil
}

func (b *binder) fields(s *scope, st *ast.StructType, list *dnode) error {
	seen := make(map[string]bool)
	for _, item := range list.list() {
		name, err := ident(item.get("name"), "field name")
		if err != nil {
			return err
		}
		if seen[name] {
			return errorf(diag.LoadDuplicateName, item, "struct %q has two fields named %q", st.Name, name)
		}
		seen[name] = true
		t, err := b.typ(s, item.get("type"))
		if err != nil {
			return err
		}
		sem, err := parseSemantic(item.get("semantic"))
		if err != nil {
			return err
		}
		f := &ast.Field{Name: name, Type: t, Semantic: sem}
		setPos(f, item)
		st.Fields = append(st.Fields, f)
	}
	return nil
}

func (b *binder) enum(s *scope, et *ast.EnumType, body *dnode) error {
	if base := body.get("base"); base != nil {
		t, err := b.typ(s, base)
		if err != nil {
			return err
		}
		et.Base = t
	}
	seen := make(map[string]bool)
	for _, item := range body.get("members").list() {
		nameNode := item
		if item.kind == mapNode {
			nameNode = item.get("name")
		}
		name, err := ident(nameNode, "enum member")
		if err != nil {
			return err
		}
		if seen[name] {
			return errorf(diag.LoadDuplicateName, item, "enum %q has two members named %q", et.Name, name)
		}
		seen[name] = true
		m := &ast.EnumMember{Name: name}
		if v := item.get("value"); v != nil {
			val, err := b.expr(s, v)
			if err != nil {
				return err
			}
			m.Value = val
		}
		setPos(m, item)
		et.Members = append(et.Members, m)
	}
	return nil
}

func (b *binder) protocol(s *scope, pd *ast.ProtocolDecl, body *dnode) error {
	for _, ext := range body.get("extends").list() {
		ref, err := b.protocolRef(ext)
		if err != nil {
			return err
		}
		pd.Extends = append(pd.Extends, ref)
	}
	for _, item := range body.get("signatures").list() {
		name, err := ident(item.get("name"), "signature name")
		if err != nil {
			return err
		}
		sig := &ast.ProtocolFuncDecl{FuncBase: ast.FuncBase{Name: name}, Protocol: pd}
		setPos(sig, item)
		if err := b.funcSignature(newScope(s), &sig.FuncBase, item); err != nil {
			return err
		}
		pd.Signatures = append(pd.Signatures, sig)
	}
	return nil
}

// funcSignature binds type parameters, parameters, the return type and the
// entry-point attributes. s gains the function's type parameters.
func (b *binder) funcSignature(s *scope, fb *ast.FuncBase, body *dnode) error {
	tpList := body.get("type_params")
	tps, err := b.typeParamShells(s, tpList)
	if err != nil {
		return err
	}
	if err := b.typeParamBounds(s, tps, tpList); err != nil {
		return err
	}
	fb.TypeParameters = tps

	ret := body.get("return")
	if ret.isNull() {
		fb.ReturnType = b.in.Void
	} else if fb.ReturnType, err = b.typ(s, ret); err != nil {
		return err
	}
	for _, item := range body.get("params").list() {
		name, err := ident(item.get("name"), "parameter name")
		if err != nil {
			return err
		}
		t, err := b.typ(s, item.get("type"))
		if err != nil {
			return err
		}
		sem, err := parseSemantic(item.get("semantic"))
		if err != nil {
			return err
		}
		p := &ast.FuncParameter{Name: name, Type: t, Semantic: sem}
		setPos(p, item)
		fb.Parameters = append(fb.Parameters, p)
	}
	if fb.Semantic, err = parseSemantic(body.get("semantic")); err != nil {
		return err
	}
	if stage := body.get("stage"); stage != nil {
		raw, err := stage.scalar("stage")
		if err != nil {
			return err
		}
		if fb.Shader, err = ast.ParseShaderStage(raw); err != nil {
			return errorf(diag.LoadBadValue, stage, "%v", err)
		}
	}
	if cast := body.get("cast"); cast != nil {
		fb.IsCast = cast.tag == tagBool && cast.value == "true"
	}
	return nil
}
