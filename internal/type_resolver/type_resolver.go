package type_resolver

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/vphpersson/type_literal/internal/generic_type_info"
	"github.com/vphpersson/type_literal/internal/type_conversion"
	typeLiteralErrors "github.com/vphpersson/type_literal/pkg/errors"
	"github.com/vphpersson/type_literal/pkg/types/descriptor"

	motmedelErrors "github.com/Motmedel/utils_go/pkg/errors"
	motmedelReflect "github.com/Motmedel/utils_go/pkg/reflect"
)

// Environment returns the type variable bindings visible from declaringType.
//
// The type arguments of declaringType itself come first, followed by those of
// its embedded structs, level by level. A name bound at a shallower level is
// not rebound by a deeper one. Bindings are keyed by the type parameter names
// of the declarations.
func Environment(declaringType reflect.Type) (map[string]*descriptor.Descriptor, error) {
	if declaringType == nil {
		return nil, motmedelErrors.NewWithTrace(typeLiteralErrors.ErrNilType)
	}

	environment := map[string]*descriptor.Descriptor{}
	visited := map[reflect.Type]struct{}{}

	level := []reflect.Type{motmedelReflect.RemoveIndirection(declaringType)}
	for len(level) > 0 {
		var next []reflect.Type
		levelBindings := map[string]*descriptor.Descriptor{}

		for _, t := range level {
			if _, ok := visited[t]; ok {
				continue
			}
			visited[t] = struct{}{}

			if t.Kind() != reflect.Struct {
				continue
			}

			bindings, err := bindingsOf(t)
			if err != nil {
				return nil, motmedelErrors.New(fmt.Errorf("bindings of: %w", err), t)
			}
			for name, binding := range bindings {
				if _, ok := levelBindings[name]; !ok {
					levelBindings[name] = binding
				}
			}

			for i := range t.NumField() {
				field := t.Field(i)
				if !field.Anonymous {
					continue
				}
				next = append(next, motmedelReflect.RemoveIndirection(field.Type))
			}
		}

		for name, binding := range levelBindings {
			if _, ok := environment[name]; !ok {
				environment[name] = binding
			}
		}

		level = next
	}

	return environment, nil
}

func bindingsOf(structType reflect.Type) (map[string]*descriptor.Descriptor, error) {
	if _, isGenericType := motmedelReflect.GetTypeName(structType); !isGenericType {
		return nil, nil
	}

	typeBindings, err := generic_type_info.Bindings(structType)
	if err != nil {
		if errors.Is(err, generic_type_info.ErrNoGenericTypeInfo) || errors.Is(err, generic_type_info.ErrNotStruct) {
			return nil, nil
		}
		return nil, fmt.Errorf("generic type info bindings: %w", err)
	}

	bindings := make(map[string]*descriptor.Descriptor, len(typeBindings))
	for name, t := range typeBindings {
		d, err := type_conversion.LiteralOf(t)
		if err != nil {
			return nil, motmedelErrors.New(fmt.Errorf("literal of: %w", err), t)
		}
		bindings[name] = d
	}

	return bindings, nil
}

// Resolve substitutes the type variables of d that are bound in the
// environment of declaringType.
func Resolve(d *descriptor.Descriptor, declaringType reflect.Type) (*descriptor.Descriptor, error) {
	if d == nil {
		return nil, motmedelErrors.NewWithTrace(typeLiteralErrors.ErrNilDescriptor)
	}

	environment, err := Environment(declaringType)
	if err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}

	return d.Substitute(environment), nil
}
