package errors

import (
	"errors"
)

var (
	ErrNilGenericTypeInfo = errors.New("nil generic type info")
	ErrNoStructField      = errors.New("no struct field")
	ErrUnsupportedKind    = errors.New("unsupported kind")

	ErrNilType         = errors.New("nil type")
	ErrNilDescriptor   = errors.New("nil descriptor")
	ErrNilKey          = errors.New("nil key")
	ErrNilOrigin       = errors.New("nil origin")
	ErrArityMismatch   = errors.New("type argument count does not match type parameters")
	ErrNotConcrete     = errors.New("argument must be a concrete type")
	ErrSlotNotVariable = errors.New("slot must be a type variable")
	ErrSlotNotFound    = errors.New("slot is not a free type variable")
	ErrNoCapture       = errors.New("no captured type")
	ErrNotReifiable    = errors.New("descriptor cannot be reified")
	ErrInvalidMapKey   = errors.New("invalid map key type")
)
