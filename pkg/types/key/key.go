package key

import (
	"github.com/vphpersson/type_literal/pkg/types/descriptor"
)

// Key identifies a binding by type and an optional qualifier. Keys with equal
// types and qualifiers are equal, wherever they were created.
type Key struct {
	typ       *descriptor.Descriptor
	qualifier string
}

func New(d *descriptor.Descriptor, qualifier string) *Key {
	return &Key{typ: d, qualifier: qualifier}
}

func (k *Key) Type() *descriptor.Descriptor { return k.typ }

func (k *Key) Qualifier() string { return k.qualifier }

func (k *Key) Equal(other *Key) bool {
	if k == nil || other == nil {
		return k == other
	}
	return k.qualifier == other.qualifier && k.typ.Equal(other.typ)
}

// String returns the canonical form of the key, suitable as a map key.
func (k *Key) String() string {
	if k.qualifier == "" {
		return k.typ.Key()
	}
	return k.typ.Key() + "@" + k.qualifier
}
