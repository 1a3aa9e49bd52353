package key_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vphpersson/type_literal/pkg/types/descriptor"
	"github.com/vphpersson/type_literal/pkg/types/key"
)

func TestKey(t *testing.T) {
	t.Parallel()

	setOfString := func() *descriptor.Descriptor {
		return descriptor.SetOf(descriptor.Raw(reflect.TypeFor[string]()))
	}

	a := key.New(setOfString(), "")
	b := key.New(setOfString(), "")
	named := key.New(setOfString(), "admins")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(named))
	assert.Equal(t, a.String(), b.String())
	assert.Equal(t, "set[string]@admins", named.String())
	assert.Equal(t, "admins", named.Qualifier())
	assert.True(t, named.Type().Equal(setOfString()))

	registry := map[string]int{a.String(): 1}
	assert.Equal(t, 1, registry[b.String()])
}
