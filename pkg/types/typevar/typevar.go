// Package typevar provides placeholder types that stand in for free type
// variables.
//
// Go has no runtime representation of an unbound type parameter, so a type
// that still has "holes" is written with placeholders instead:
//
//	friendly.Literal[map[typevar.K][]typevar.V]{}
//
// Any struct type that embeds Placeholder is a placeholder; its type name is
// the name of the variable it stands for.
package typevar

import "reflect"

// Variable is satisfied by every placeholder type.
type Variable interface {
	typeVariable()
}

// Placeholder marks the embedding struct as a type variable.
type Placeholder struct{}

func (Placeholder) typeVariable() {}

type (
	T struct{ Placeholder }
	U struct{ Placeholder }
	E struct{ Placeholder }
	K struct{ Placeholder }
	V struct{ Placeholder }
)

var (
	variableType    = reflect.TypeFor[Variable]()
	placeholderType = reflect.TypeFor[Placeholder]()
)

// Is reports whether t is a placeholder type: a named struct that embeds
// Placeholder directly.
func Is(t reflect.Type) bool {
	if t == nil || t.Kind() != reflect.Struct || t == placeholderType || t.Name() == "" {
		return false
	}

	if !t.Implements(variableType) {
		return false
	}

	for i := range t.NumField() {
		field := t.Field(i)
		if field.Anonymous && field.Type == placeholderType {
			return true
		}
	}

	return false
}

// Name returns the variable name of the placeholder type t, or "" if t is not
// a placeholder.
func Name(t reflect.Type) string {
	if !Is(t) {
		return ""
	}
	return t.Name()
}

// NameOf returns the variable name of the placeholder P.
func NameOf[P Variable]() string {
	return Name(reflect.TypeFor[P]())
}
