package type_declaration

// GenericTypeDeclaration identifies a generic type declaration, i.e. the
// origin of a parameterized type.
type GenericTypeDeclaration struct {
	PkgPath        string
	Identifier     string
	TypeParameters []string
}

func (g *GenericTypeDeclaration) QualifiedName() string {
	if g.PkgPath == "" {
		return g.Identifier
	}
	return g.PkgPath + "." + g.Identifier
}

// Same reports whether g and other denote the same declaration. Type parameter
// names are not part of the identity.
func (g *GenericTypeDeclaration) Same(other *GenericTypeDeclaration) bool {
	if g == nil || other == nil {
		return g == other
	}
	return g.PkgPath == other.PkgPath && g.Identifier == other.Identifier
}

var (
	Set     = &GenericTypeDeclaration{Identifier: "set", TypeParameters: []string{"E"}}
	Map     = &GenericTypeDeclaration{Identifier: "map", TypeParameters: []string{"K", "V"}}
	Pointer = &GenericTypeDeclaration{Identifier: "*", TypeParameters: []string{"E"}}
)
