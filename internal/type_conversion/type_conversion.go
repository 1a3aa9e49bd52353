package type_conversion

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/vphpersson/type_literal/internal/generic_type_info"
	typeLiteralErrors "github.com/vphpersson/type_literal/pkg/errors"
	"github.com/vphpersson/type_literal/pkg/types/descriptor"
	"github.com/vphpersson/type_literal/pkg/types/type_declaration"
	"github.com/vphpersson/type_literal/pkg/types/typevar"

	motmedelErrors "github.com/Motmedel/utils_go/pkg/errors"
	motmedelReflect "github.com/Motmedel/utils_go/pkg/reflect"
)

var emptyStructType = reflect.TypeFor[struct{}]()

// LiteralOf returns the descriptor of t.
//
// Placeholder types become type variables. Unnamed maps, slices, arrays and
// pointers are decomposed, with map[E]struct{} read as a set of E. A generic
// struct instantiation is decomposed into its declaration and type arguments
// when the declaration can be found and every type parameter is used by a
// field; otherwise it is kept raw.
func LiteralOf(t reflect.Type) (*descriptor.Descriptor, error) {
	if t == nil {
		return nil, motmedelErrors.NewWithTrace(typeLiteralErrors.ErrNilType)
	}

	if typevar.Is(t) {
		return descriptor.Variable(typevar.Name(t)), nil
	}

	if t.Name() != "" {
		if t.Kind() == reflect.Struct {
			return literalOfNamedStruct(t)
		}
		return descriptor.Raw(t), nil
	}

	switch t.Kind() {
	case reflect.Pointer:
		elem, err := LiteralOf(t.Elem())
		if err != nil {
			return nil, err
		}
		return descriptor.PointerTo(elem), nil
	case reflect.Slice:
		elem, err := LiteralOf(t.Elem())
		if err != nil {
			return nil, err
		}
		return descriptor.ArrayOf(elem), nil
	case reflect.Array:
		elem, err := LiteralOf(t.Elem())
		if err != nil {
			return nil, err
		}
		return descriptor.FixedArrayOf(t.Len(), elem), nil
	case reflect.Map:
		key, err := LiteralOf(t.Key())
		if err != nil {
			return nil, err
		}
		if t.Elem() == emptyStructType {
			return descriptor.SetOf(key), nil
		}
		value, err := LiteralOf(t.Elem())
		if err != nil {
			return nil, err
		}
		return descriptor.MapOf(key, value), nil
	default:
		return descriptor.Raw(t), nil
	}
}

func literalOfNamedStruct(t reflect.Type) (*descriptor.Descriptor, error) {
	if _, isGenericType := motmedelReflect.GetTypeName(t); !isGenericType {
		return descriptor.Raw(t), nil
	}

	genericTypeInfo, err := generic_type_info.GetGenericTypeInfo(t)
	if err != nil {
		if errors.Is(err, generic_type_info.ErrNoGenericTypeInfo) || errors.Is(err, generic_type_info.ErrNotStruct) {
			return descriptor.Raw(t), nil
		}
		return nil, fmt.Errorf("get generic type info: %w", err)
	}
	if !generic_type_info.Complete(genericTypeInfo) {
		return descriptor.Raw(t), nil
	}

	argumentTypes, err := generic_type_info.Arguments(t, genericTypeInfo)
	if err != nil {
		return nil, motmedelErrors.New(fmt.Errorf("generic type info arguments: %w", err), t)
	}

	arguments := make([]*descriptor.Descriptor, len(argumentTypes))
	for i, argumentType := range argumentTypes {
		arguments[i], err = LiteralOf(argumentType)
		if err != nil {
			return nil, motmedelErrors.New(fmt.Errorf("literal of (type argument): %w", err), argumentType)
		}
	}

	origin := &type_declaration.GenericTypeDeclaration{
		PkgPath:        genericTypeInfo.PkgPath,
		Identifier:     genericTypeInfo.TypeName,
		TypeParameters: genericTypeInfo.TypeParameterNames,
	}

	d, err := descriptor.Instance(t, origin, arguments...)
	if err != nil {
		return nil, motmedelErrors.New(fmt.Errorf("descriptor instance: %w", err), t)
	}

	return d, nil
}

// TokenOf returns the reflect.Type that d denotes. It fails for descriptors
// that contain type variables or wildcards, and for parameterized user
// declarations that were not decomposed from an instance.
func TokenOf(d *descriptor.Descriptor) (reflect.Type, error) {
	if d == nil {
		return nil, motmedelErrors.NewWithTrace(typeLiteralErrors.ErrNilDescriptor)
	}

	switch d.Kind() {
	case descriptor.KindRaw:
		return d.ReflectType(), nil
	case descriptor.KindVariable:
		return nil, motmedelErrors.NewWithTrace(
			fmt.Errorf("%w: free type variable %s", typeLiteralErrors.ErrNotReifiable, d.Name()),
			d,
		)
	case descriptor.KindWildcard:
		return nil, motmedelErrors.NewWithTrace(
			fmt.Errorf("%w: wildcard", typeLiteralErrors.ErrNotReifiable),
			d,
		)
	case descriptor.KindArray:
		elem, err := TokenOf(d.Elem())
		if err != nil {
			return nil, err
		}
		if d.Length() == descriptor.SliceLength {
			return reflect.SliceOf(elem), nil
		}
		return reflect.ArrayOf(d.Length(), elem), nil
	case descriptor.KindParameterized:
		return tokenOfParameterized(d)
	default:
		return nil, motmedelErrors.NewWithTrace(
			fmt.Errorf("%w: %s", typeLiteralErrors.ErrUnsupportedKind, d.Kind()),
			d,
		)
	}
}

func tokenOfParameterized(d *descriptor.Descriptor) (reflect.Type, error) {
	if instance := d.ReflectType(); instance != nil {
		if freeVariables := d.FreeVariables(); len(freeVariables) > 0 {
			return nil, motmedelErrors.NewWithTrace(
				fmt.Errorf("%w: free type variable %s", typeLiteralErrors.ErrNotReifiable, freeVariables[0]),
				d,
			)
		}
		return instance, nil
	}

	arguments := d.Arguments()
	argumentTypes := make([]reflect.Type, len(arguments))
	for i, argument := range arguments {
		argumentType, err := TokenOf(argument)
		if err != nil {
			return nil, err
		}
		argumentTypes[i] = argumentType
	}

	origin := d.Origin()
	switch {
	case origin.Same(type_declaration.Pointer):
		return reflect.PointerTo(argumentTypes[0]), nil
	case origin.Same(type_declaration.Set):
		if !argumentTypes[0].Comparable() {
			return nil, motmedelErrors.NewWithTrace(typeLiteralErrors.ErrInvalidMapKey, argumentTypes[0])
		}
		return reflect.MapOf(argumentTypes[0], emptyStructType), nil
	case origin.Same(type_declaration.Map):
		if !argumentTypes[0].Comparable() {
			return nil, motmedelErrors.NewWithTrace(typeLiteralErrors.ErrInvalidMapKey, argumentTypes[0])
		}
		return reflect.MapOf(argumentTypes[0], argumentTypes[1]), nil
	default:
		return nil, motmedelErrors.NewWithTrace(
			fmt.Errorf(
				"%w: generic type %s cannot be instantiated at run time",
				typeLiteralErrors.ErrNotReifiable,
				origin.QualifiedName(),
			),
			d,
		)
	}
}
