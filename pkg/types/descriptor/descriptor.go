// Package descriptor models generic types as immutable values.
//
// A Descriptor is either a raw reflect.Type, a generic declaration applied to
// type arguments, a free type variable, an array or slice of a descriptor, or
// a wildcard. Descriptors are compared with Equal; Key returns a canonical
// string suitable as a map key.
package descriptor

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"

	motmedelErrors "github.com/Motmedel/utils_go/pkg/errors"
	typeLiteralErrors "github.com/vphpersson/type_literal/pkg/errors"
	"github.com/vphpersson/type_literal/pkg/types/type_declaration"
)

type Kind int

const (
	KindRaw Kind = iota
	KindParameterized
	KindVariable
	KindArray
	KindWildcard
)

func (k Kind) String() string {
	switch k {
	case KindRaw:
		return "raw"
	case KindParameterized:
		return "parameterized"
	case KindVariable:
		return "variable"
	case KindArray:
		return "array"
	case KindWildcard:
		return "wildcard"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// SliceLength is the length of an array descriptor that models a slice.
const SliceLength = -1

type Descriptor struct {
	kind Kind

	// KindRaw, and KindParameterized when decomposed from an instance.
	reflectType reflect.Type

	// KindParameterized
	origin    *type_declaration.GenericTypeDeclaration
	arguments []*Descriptor

	// KindVariable
	name string

	// KindArray (element) and KindWildcard (upper bound, may be nil).
	elem   *Descriptor
	length int
}

var emptyStructType = reflect.TypeFor[struct{}]()

// Raw returns the descriptor of t. Unnamed pointers, slices, arrays and maps
// are decomposed, with map[E]struct{} read as a set of E, so that a raw
// composite equals the descriptor built from its parts.
func Raw(t reflect.Type) *Descriptor {
	if t == nil {
		return nil
	}

	if t.Name() == "" {
		switch t.Kind() {
		case reflect.Pointer:
			return PointerTo(Raw(t.Elem()))
		case reflect.Slice:
			return ArrayOf(Raw(t.Elem()))
		case reflect.Array:
			return FixedArrayOf(t.Len(), Raw(t.Elem()))
		case reflect.Map:
			if t.Elem() == emptyStructType {
				return SetOf(Raw(t.Key()))
			}
			return MapOf(Raw(t.Key()), Raw(t.Elem()))
		}
	}

	return &Descriptor{kind: KindRaw, reflectType: t}
}

func Variable(name string) *Descriptor {
	return &Descriptor{kind: KindVariable, name: name}
}

// mustNotBeNil panics like reflect.SliceOf(nil) does. Use Parameterized for a
// checked construction.
func mustNotBeNil(constructor string, descriptors ...*Descriptor) {
	for i, d := range descriptors {
		if d == nil {
			panic(fmt.Errorf("%w: %s (argument %d)", typeLiteralErrors.ErrNilDescriptor, constructor, i))
		}
	}
}

// ArrayOf returns a descriptor modeling a slice of elem. It panics if elem is
// nil.
func ArrayOf(elem *Descriptor) *Descriptor {
	mustNotBeNil("ArrayOf", elem)
	return &Descriptor{kind: KindArray, elem: elem, length: SliceLength}
}

// FixedArrayOf returns a descriptor modeling an array of length elements. It
// panics if elem is nil.
func FixedArrayOf(length int, elem *Descriptor) *Descriptor {
	mustNotBeNil("FixedArrayOf", elem)
	return &Descriptor{kind: KindArray, elem: elem, length: length}
}

// Wildcard returns a wildcard descriptor. A nil upper bound means unbounded.
func Wildcard(upper *Descriptor) *Descriptor {
	return &Descriptor{kind: KindWildcard, elem: upper}
}

// Parameterized applies origin to arguments. The number of arguments must
// match origin's type parameters.
func Parameterized(
	origin *type_declaration.GenericTypeDeclaration,
	arguments ...*Descriptor,
) (*Descriptor, error) {
	if origin == nil {
		return nil, motmedelErrors.NewWithTrace(typeLiteralErrors.ErrNilOrigin)
	}

	if len(arguments) != len(origin.TypeParameters) {
		return nil, motmedelErrors.NewWithTrace(
			fmt.Errorf(
				"%w: %s takes %d, got %d",
				typeLiteralErrors.ErrArityMismatch,
				origin.QualifiedName(),
				len(origin.TypeParameters),
				len(arguments),
			),
			origin, arguments,
		)
	}

	for i, argument := range arguments {
		if argument == nil {
			return nil, motmedelErrors.NewWithTrace(
				fmt.Errorf("%w (argument %d)", typeLiteralErrors.ErrNilDescriptor, i),
				origin,
			)
		}
	}

	return newParameterized(origin, slices.Clone(arguments), nil), nil
}

// Instance is like Parameterized but remembers the reflect.Type the
// descriptor was decomposed from, so that it can be reified again.
func Instance(
	t reflect.Type,
	origin *type_declaration.GenericTypeDeclaration,
	arguments ...*Descriptor,
) (*Descriptor, error) {
	d, err := Parameterized(origin, arguments...)
	if err != nil {
		return nil, err
	}
	d.reflectType = t
	return d, nil
}

func newParameterized(
	origin *type_declaration.GenericTypeDeclaration,
	arguments []*Descriptor,
	t reflect.Type,
) *Descriptor {
	return &Descriptor{kind: KindParameterized, origin: origin, arguments: arguments, reflectType: t}
}

// SetOf returns a descriptor modeling a set whose elements are elem. It panics
// if elem is nil.
func SetOf(elem *Descriptor) *Descriptor {
	mustNotBeNil("SetOf", elem)
	return newParameterized(type_declaration.Set, []*Descriptor{elem}, nil)
}

// MapOf returns a descriptor modeling a map from key to value. It panics if
// either is nil.
func MapOf(key, value *Descriptor) *Descriptor {
	mustNotBeNil("MapOf", key, value)
	return newParameterized(type_declaration.Map, []*Descriptor{key, value}, nil)
}

// PointerTo returns a descriptor modeling a pointer to elem. It panics if elem
// is nil.
func PointerTo(elem *Descriptor) *Descriptor {
	mustNotBeNil("PointerTo", elem)
	return newParameterized(type_declaration.Pointer, []*Descriptor{elem}, nil)
}

func (d *Descriptor) Kind() Kind { return d.kind }

// ReflectType returns the raw type, or the instance a parameterized
// descriptor was decomposed from. It is nil otherwise.
func (d *Descriptor) ReflectType() reflect.Type { return d.reflectType }

func (d *Descriptor) Origin() *type_declaration.GenericTypeDeclaration { return d.origin }

func (d *Descriptor) Arguments() []*Descriptor { return slices.Clone(d.arguments) }

func (d *Descriptor) Name() string { return d.name }

// Elem returns the element of an array descriptor or the upper bound of a
// wildcard.
func (d *Descriptor) Elem() *Descriptor { return d.elem }

func (d *Descriptor) Length() int { return d.length }

// IsConcrete reports whether d is not itself a type variable.
func (d *Descriptor) IsConcrete() bool {
	return d != nil && d.kind != KindVariable
}

// FreeVariables returns the names of the type variables in d, in order of
// first appearance.
func (d *Descriptor) FreeVariables() []string {
	var names []string
	seen := map[string]struct{}{}

	var visit func(*Descriptor)
	visit = func(d *Descriptor) {
		if d == nil {
			return
		}
		switch d.kind {
		case KindVariable:
			if _, ok := seen[d.name]; !ok {
				seen[d.name] = struct{}{}
				names = append(names, d.name)
			}
		case KindParameterized:
			for _, argument := range d.arguments {
				visit(argument)
			}
		case KindArray, KindWildcard:
			visit(d.elem)
		}
	}
	visit(d)

	return names
}

// HasVariable reports whether the variable name occurs in d.
func (d *Descriptor) HasVariable(name string) bool {
	return slices.Contains(d.FreeVariables(), name)
}

// Substitute replaces each type variable named in bindings with its binding.
// Replacements are not substituted again. Sub-trees without a replaced
// variable are shared with d.
func (d *Descriptor) Substitute(bindings map[string]*Descriptor) *Descriptor {
	if d == nil || len(bindings) == 0 {
		return d
	}

	switch d.kind {
	case KindVariable:
		if replacement, ok := bindings[d.name]; ok && replacement != nil {
			return replacement
		}
		return d
	case KindParameterized:
		changed := false
		arguments := make([]*Descriptor, len(d.arguments))
		for i, argument := range d.arguments {
			arguments[i] = argument.Substitute(bindings)
			if arguments[i] != argument {
				changed = true
			}
		}
		if !changed {
			return d
		}
		return newParameterized(d.origin, arguments, nil)
	case KindArray, KindWildcard:
		elem := d.elem.Substitute(bindings)
		if elem == d.elem {
			return d
		}
		return &Descriptor{kind: d.kind, elem: elem, length: d.length}
	default:
		return d
	}
}

// Equal reports whether d and other denote the same type.
func (d *Descriptor) Equal(other *Descriptor) bool {
	if d == nil || other == nil {
		return d == other
	}
	if d == other {
		return true
	}
	if d.kind != other.kind {
		return false
	}

	switch d.kind {
	case KindRaw:
		return d.reflectType == other.reflectType
	case KindVariable:
		return d.name == other.name
	case KindParameterized:
		if !d.origin.Same(other.origin) || len(d.arguments) != len(other.arguments) {
			return false
		}
		for i := range d.arguments {
			if !d.arguments[i].Equal(other.arguments[i]) {
				return false
			}
		}
		return true
	case KindArray:
		return d.length == other.length && d.elem.Equal(other.elem)
	case KindWildcard:
		return d.elem.Equal(other.elem)
	default:
		return false
	}
}

func (d *Descriptor) String() string {
	var builder strings.Builder
	d.write(&builder, false)
	return builder.String()
}

// Key returns a canonical representation of d in which every named type,
// including those nested in unnamed raw types, carries its full package path.
// Equal descriptors have equal keys.
func (d *Descriptor) Key() string {
	var builder strings.Builder
	d.write(&builder, true)
	return builder.String()
}

func (d *Descriptor) write(builder *strings.Builder, qualified bool) {
	if d == nil {
		builder.WriteString("<nil>")
		return
	}

	switch d.kind {
	case KindRaw:
		builder.WriteString(typeString(d.reflectType, qualified))
	case KindVariable:
		builder.WriteString(d.name)
	case KindArray:
		if d.length == SliceLength {
			builder.WriteString("[]")
		} else {
			builder.WriteString("[" + strconv.Itoa(d.length) + "]")
		}
		d.elem.write(builder, qualified)
	case KindWildcard:
		builder.WriteString("?")
		if d.elem != nil {
			builder.WriteString(" ")
			d.elem.write(builder, qualified)
		}
	case KindParameterized:
		switch {
		case d.origin.Same(type_declaration.Pointer):
			builder.WriteString("*")
			d.arguments[0].write(builder, qualified)
			return
		case d.origin.Same(type_declaration.Map):
			builder.WriteString("map[")
			d.arguments[0].write(builder, qualified)
			builder.WriteString("]")
			d.arguments[1].write(builder, qualified)
			return
		}

		if qualified {
			builder.WriteString(d.origin.QualifiedName())
		} else {
			builder.WriteString(d.origin.Identifier)
		}
		builder.WriteString("[")
		for i, argument := range d.arguments {
			if i > 0 {
				builder.WriteString(", ")
			}
			argument.write(builder, qualified)
		}
		builder.WriteString("]")
	}
}

func typeString(t reflect.Type, qualified bool) string {
	if !qualified {
		return t.String()
	}
	return qualifiedTypeString(t)
}

// qualifiedTypeString is like t.String but names every named type, nested or
// not, by its full package path.
func qualifiedTypeString(t reflect.Type) string {
	if name := t.Name(); name != "" {
		if t.PkgPath() == "" {
			return name
		}
		return t.PkgPath() + "." + name
	}

	switch t.Kind() {
	case reflect.Pointer:
		return "*" + qualifiedTypeString(t.Elem())
	case reflect.Slice:
		return "[]" + qualifiedTypeString(t.Elem())
	case reflect.Array:
		return "[" + strconv.Itoa(t.Len()) + "]" + qualifiedTypeString(t.Elem())
	case reflect.Map:
		return "map[" + qualifiedTypeString(t.Key()) + "]" + qualifiedTypeString(t.Elem())
	case reflect.Chan:
		elem := qualifiedTypeString(t.Elem())
		switch t.ChanDir() {
		case reflect.RecvDir:
			return "<-chan " + elem
		case reflect.SendDir:
			return "chan<- " + elem
		}
		if t.Elem().Kind() == reflect.Chan && t.Elem().Name() == "" && t.Elem().ChanDir() == reflect.RecvDir {
			return "chan (" + elem + ")"
		}
		return "chan " + elem
	case reflect.Func:
		return "func" + signatureString(t)
	case reflect.Struct:
		if t.NumField() == 0 {
			return "struct {}"
		}
		fields := make([]string, t.NumField())
		for i := range t.NumField() {
			field := t.Field(i)
			fieldType := qualifiedTypeString(field.Type)
			switch {
			case field.Anonymous:
				fields[i] = fieldType
			case field.PkgPath != "":
				fields[i] = field.PkgPath + "." + field.Name + " " + fieldType
			default:
				fields[i] = field.Name + " " + fieldType
			}
			if field.Tag != "" {
				fields[i] += " " + strconv.Quote(string(field.Tag))
			}
		}
		return "struct { " + strings.Join(fields, "; ") + " }"
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return "interface {}"
		}
		methods := make([]string, t.NumMethod())
		for i := range t.NumMethod() {
			method := t.Method(i)
			name := method.Name
			if method.PkgPath != "" {
				name = method.PkgPath + "." + name
			}
			methods[i] = name + signatureString(method.Type)
		}
		return "interface { " + strings.Join(methods, "; ") + " }"
	default:
		return t.String()
	}
}

func signatureString(t reflect.Type) string {
	in := make([]string, t.NumIn())
	for i := range t.NumIn() {
		if t.IsVariadic() && i == t.NumIn()-1 {
			in[i] = "..." + qualifiedTypeString(t.In(i).Elem())
			continue
		}
		in[i] = qualifiedTypeString(t.In(i))
	}
	signature := "(" + strings.Join(in, ", ") + ")"

	out := make([]string, t.NumOut())
	for i := range t.NumOut() {
		out[i] = qualifiedTypeString(t.Out(i))
	}
	switch len(out) {
	case 0:
		return signature
	case 1:
		return signature + " " + out[0]
	default:
		return signature + " (" + strings.Join(out, ", ") + ")"
	}
}
