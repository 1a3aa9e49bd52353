// Package friendly captures fully instantiated generic types and resolves the
// type variables they contain.
//
// A Literal captures its type parameter at the point of use:
//
//	d, err := friendly.Literal[map[string][]typevar.T]{}.Where(
//		typearg.Must(typearg.New[typevar.T, int]()),
//	)
//
// and the resulting descriptor can serve as a lookup key. A Literal may also be
// embedded into another struct, which then satisfies Captured.
package friendly

import (
	"fmt"
	"reflect"

	"github.com/vphpersson/type_literal/internal/type_conversion"
	"github.com/vphpersson/type_literal/internal/type_resolver"
	typeLiteralErrors "github.com/vphpersson/type_literal/pkg/errors"
	"github.com/vphpersson/type_literal/pkg/typearg"
	"github.com/vphpersson/type_literal/pkg/types/descriptor"
	"github.com/vphpersson/type_literal/pkg/types/key"

	motmedelErrors "github.com/Motmedel/utils_go/pkg/errors"
)

// Captured is implemented by values that carry a type.
type Captured interface {
	ReflectType() reflect.Type
}

// Literal captures the type T. It is zero sized.
type Literal[T any] struct{}

func (Literal[T]) ReflectType() reflect.Type {
	return reflect.TypeFor[T]()
}

// Descriptor returns the descriptor of T.
func (l Literal[T]) Descriptor() (*descriptor.Descriptor, error) {
	return Of(l)
}

// Key returns a lookup key for T with the given qualifier.
func (l Literal[T]) Key(qualifier string) (*key.Key, error) {
	d, err := Of(l)
	if err != nil {
		return nil, err
	}
	return key.New(d, qualifier), nil
}

// Where substitutes the type variables of T with the actual types of args.
func (l Literal[T]) Where(args ...*typearg.Argument) (*descriptor.Descriptor, error) {
	d, err := Of(l)
	if err != nil {
		return nil, err
	}
	return Where(d, args...)
}

// In resolves the type variables of T that declaringType binds, matching them
// by name. See In.
func (l Literal[T]) In(declaringType reflect.Type) (*descriptor.Descriptor, error) {
	d, err := Of(l)
	if err != nil {
		return nil, err
	}
	return In(d, declaringType)
}

// Of returns the descriptor of the type carried by captured.
func Of(captured Captured) (*descriptor.Descriptor, error) {
	if captured == nil {
		return nil, motmedelErrors.NewWithTrace(typeLiteralErrors.ErrNoCapture)
	}

	t := captured.ReflectType()
	if t == nil {
		return nil, motmedelErrors.NewWithTrace(typeLiteralErrors.ErrNoCapture, captured)
	}

	d, err := type_conversion.LiteralOf(t)
	if err != nil {
		return nil, motmedelErrors.New(fmt.Errorf("literal of: %w", err), t)
	}

	return d, nil
}

// Describe returns the descriptor of value, which may be a reflect.Type, a
// reflect.Value, a Captured or any other value, whose dynamic type is used.
func Describe(value any) (*descriptor.Descriptor, error) {
	var reflectType reflect.Type
	switch v := value.(type) {
	case reflect.Type:
		reflectType = v
	case reflect.Value:
		if !v.IsValid() {
			return nil, motmedelErrors.NewWithTrace(typeLiteralErrors.ErrNilType, v)
		}
		reflectType = v.Type()
	case Captured:
		return Of(v)
	default:
		reflectType = reflect.TypeOf(v)
	}

	if reflectType == nil {
		return nil, motmedelErrors.NewWithTrace(typeLiteralErrors.ErrNilType)
	}

	d, err := type_conversion.LiteralOf(reflectType)
	if err != nil {
		return nil, motmedelErrors.New(fmt.Errorf("literal of: %w", err), reflectType)
	}

	return d, nil
}

// Reflect returns the reflect.Type that d denotes.
func Reflect(d *descriptor.Descriptor) (reflect.Type, error) {
	t, err := type_conversion.TokenOf(d)
	if err != nil {
		return nil, fmt.Errorf("token of: %w", err)
	}
	return t, nil
}

// Where substitutes, left to right, the slot of each argument in d with the
// argument's actual type. Each slot must be a free type variable of the
// descriptor produced by the preceding substitutions.
func Where(d *descriptor.Descriptor, args ...*typearg.Argument) (*descriptor.Descriptor, error) {
	if d == nil {
		return nil, motmedelErrors.NewWithTrace(typeLiteralErrors.ErrNilDescriptor)
	}

	for i, arg := range args {
		if arg == nil {
			return nil, motmedelErrors.NewWithTrace(
				fmt.Errorf("%w (argument %d)", typeLiteralErrors.ErrNilDescriptor, i),
				d,
			)
		}

		slot := arg.Slot()
		if !d.HasVariable(slot.Name()) {
			return nil, motmedelErrors.NewWithTrace(
				fmt.Errorf("%w: %s in %s", typeLiteralErrors.ErrSlotNotFound, slot, d),
				d, arg,
			)
		}

		d = d.Substitute(map[string]*descriptor.Descriptor{slot.Name(): arg.Actual()})
	}

	return d, nil
}

// In resolves the type variables of d that declaringType binds, either as the
// type arguments of its own instantiation or through embedded structs.
//
// Variables are matched by name against the declared type parameter names: a
// declaration base[X any] binds X, so typevar.T is left unresolved, without
// an error. Use a placeholder named like the type parameter.
func In(d *descriptor.Descriptor, declaringType reflect.Type) (*descriptor.Descriptor, error) {
	resolved, err := type_resolver.Resolve(d, declaringType)
	if err != nil {
		return nil, motmedelErrors.New(fmt.Errorf("type resolver resolve: %w", err), d, declaringType)
	}
	return resolved, nil
}

// SetOf returns a descriptor modeling a set of E.
func SetOf[E comparable]() (*descriptor.Descriptor, error) {
	elem, err := Of(Literal[E]{})
	if err != nil {
		return nil, err
	}
	return SetOfType(elem)
}

// SetOfType returns a descriptor modeling a set whose elements are elem.
func SetOfType(elem *descriptor.Descriptor) (*descriptor.Descriptor, error) {
	if elem == nil {
		return nil, motmedelErrors.NewWithTrace(fmt.Errorf("%w (set element)", typeLiteralErrors.ErrNilDescriptor))
	}
	return descriptor.SetOf(elem), nil
}

// MapOf returns a descriptor modeling a map from K to V.
func MapOf[K comparable, V any]() (*descriptor.Descriptor, error) {
	keyType, err := Of(Literal[K]{})
	if err != nil {
		return nil, err
	}
	valueType, err := Of(Literal[V]{})
	if err != nil {
		return nil, err
	}
	return MapOfTypes(keyType, valueType)
}

// MapOfTypes returns a descriptor modeling a map from keyType to valueType.
func MapOfTypes(keyType, valueType *descriptor.Descriptor) (*descriptor.Descriptor, error) {
	if keyType == nil {
		return nil, motmedelErrors.NewWithTrace(fmt.Errorf("%w (map key)", typeLiteralErrors.ErrNilDescriptor))
	}
	if valueType == nil {
		return nil, motmedelErrors.NewWithTrace(fmt.Errorf("%w (map value)", typeLiteralErrors.ErrNilDescriptor), keyType)
	}
	return descriptor.MapOf(keyType, valueType), nil
}
