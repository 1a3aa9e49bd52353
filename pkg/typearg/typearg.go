// Package typearg pairs a type variable with the concrete type that should
// replace it.
//
// The variable is given as a type parameter, the actual type in one of four
// forms:
//
//	typearg.New[typevar.T, string]()
//	typearg.FromType[typevar.T](reflect.TypeFor[string]())
//	typearg.FromDescriptor[typevar.T](d)
//	typearg.FromKey[typevar.T](k)
package typearg

import (
	"fmt"
	"reflect"

	"github.com/vphpersson/type_literal/internal/type_conversion"
	typeLiteralErrors "github.com/vphpersson/type_literal/pkg/errors"
	"github.com/vphpersson/type_literal/pkg/types/descriptor"
	"github.com/vphpersson/type_literal/pkg/types/key"
	"github.com/vphpersson/type_literal/pkg/types/typevar"

	motmedelErrors "github.com/Motmedel/utils_go/pkg/errors"
)

type Argument struct {
	slot   *descriptor.Descriptor
	actual *descriptor.Descriptor
}

// Slot returns the type variable the argument binds.
func (a *Argument) Slot() *descriptor.Descriptor { return a.slot }

// Actual returns the type bound to the slot.
func (a *Argument) Actual() *descriptor.Descriptor { return a.actual }

func (a *Argument) String() string {
	return a.slot.String() + " = " + a.actual.String()
}

// New binds the placeholder P to the type A.
func New[P typevar.Variable, A any]() (*Argument, error) {
	return FromType[P](reflect.TypeFor[A]())
}

// FromType binds the placeholder P to actual.
func FromType[P typevar.Variable](actual reflect.Type) (*Argument, error) {
	if actual == nil {
		return nil, motmedelErrors.NewWithTrace(typeLiteralErrors.ErrNilType)
	}

	d, err := type_conversion.LiteralOf(actual)
	if err != nil {
		return nil, motmedelErrors.New(fmt.Errorf("literal of: %w", err), actual)
	}

	return FromDescriptor[P](d)
}

// FromKey binds the placeholder P to the type of k.
func FromKey[P typevar.Variable](k *key.Key) (*Argument, error) {
	if k == nil {
		return nil, motmedelErrors.NewWithTrace(typeLiteralErrors.ErrNilKey)
	}
	return FromDescriptor[P](k.Type())
}

// FromDescriptor binds the placeholder P to actual, which must be concrete.
func FromDescriptor[P typevar.Variable](actual *descriptor.Descriptor) (*Argument, error) {
	slot, err := slotOf[P]()
	if err != nil {
		return nil, err
	}

	if actual == nil {
		return nil, motmedelErrors.NewWithTrace(typeLiteralErrors.ErrNilDescriptor, slot)
	}
	if !actual.IsConcrete() {
		return nil, motmedelErrors.NewWithTrace(
			fmt.Errorf("%w: %s", typeLiteralErrors.ErrNotConcrete, actual),
			slot, actual,
		)
	}

	return &Argument{slot: slot, actual: actual}, nil
}

func slotOf[P typevar.Variable]() (*descriptor.Descriptor, error) {
	t := reflect.TypeFor[P]()
	if !typevar.Is(t) {
		return nil, motmedelErrors.NewWithTrace(
			fmt.Errorf("%w: %s", typeLiteralErrors.ErrSlotNotVariable, t),
			t,
		)
	}
	return descriptor.Variable(typevar.Name(t)), nil
}

// Must returns a or panics if err is non-nil. It is intended for arguments
// built from types known at compile time.
func Must(a *Argument, err error) *Argument {
	if err != nil {
		panic(err)
	}
	return a
}
