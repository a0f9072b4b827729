package ast

// Program is a name-resolved compilation unit. Functions keeps each overload
// set in declaration order; resolution depends on that order.
type Program struct {
	Origin
	TopLevelStatements []Node
	Functions          map[string][]Func
	Types              map[string]NamedType
	Protocols          map[string]*ProtocolDecl
}

func NewProgram() *Program {
	return &Program{
		Functions: make(map[string][]Func),
		Types:     make(map[string]NamedType),
		Protocols: make(map[string]*ProtocolDecl),
	}
}

// Add appends a top-level declaration and indexes it by name.
func (p *Program) Add(n Node) {
	p.TopLevelStatements = append(p.TopLevelStatements, n)
	switch v := n.(type) {
	case Func:
		b := v.Base()
		p.Functions[b.Name] = append(p.Functions[b.Name], v)
	case *ProtocolDecl:
		p.Protocols[v.Name] = v
	case NamedType:
		p.Types[v.TypeName()] = v
	}
}

// OverloadSet returns the functions named name in declaration order.
func (p *Program) OverloadSet(name string) []Func {
	return p.Functions[name]
}
