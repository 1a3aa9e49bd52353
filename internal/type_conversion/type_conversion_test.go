package type_conversion

import (
	"reflect"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vphpersson/type_literal/internal/testtypes/box"
	otherFriendly "github.com/vphpersson/type_literal/internal/testtypes/friendly"
	typeLiteralErrors "github.com/vphpersson/type_literal/pkg/errors"
	"github.com/vphpersson/type_literal/pkg/types/descriptor"
	"github.com/vphpersson/type_literal/pkg/types/type_declaration"
	"github.com/vphpersson/type_literal/pkg/types/typevar"
)

type container[T any] struct {
	items []T
}

type pair[A comparable, B any] struct {
	first  A
	second map[A]B
}

type phantom[T any] struct{}

type headers map[string]string

type named struct {
	Value int
}

func raw[T any]() *descriptor.Descriptor {
	return descriptor.Raw(reflect.TypeFor[T]())
}

func requireEqualDescriptor(t *testing.T, want, got *descriptor.Descriptor) {
	t.Helper()
	require.Truef(t, want.Equal(got), "want %s, got %s\n%s", want, got, spew.Sdump(got))
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	types := []reflect.Type{
		reflect.TypeFor[string](),
		reflect.TypeFor[int64](),
		reflect.TypeFor[*string](),
		reflect.TypeFor[[]int](),
		reflect.TypeFor[[3]bool](),
		reflect.TypeFor[map[string]int](),
		reflect.TypeFor[map[string]struct{}](),
		reflect.TypeFor[map[string]map[int]struct{}](),
		reflect.TypeFor[[]*map[string][]byte](),
		reflect.TypeFor[headers](),
		reflect.TypeFor[named](),
		reflect.TypeFor[*named](),
		reflect.TypeFor[func(string) error](),
		reflect.TypeFor[chan int](),
		reflect.TypeFor[any](),
		reflect.TypeFor[struct{ A int }](),
		reflect.TypeFor[container[string]](),
		reflect.TypeFor[pair[string, []int]](),
		reflect.TypeFor[phantom[int]](),
		reflect.TypeFor[box.Box[string]](),
		reflect.TypeFor[*box.Keyed[string, []int]](),
		reflect.TypeFor[otherFriendly.Pair[int, box.Box[bool]]](),
	}

	for _, typ := range types {
		t.Run(typ.String(), func(t *testing.T) {
			t.Parallel()

			d, err := LiteralOf(typ)
			require.NoError(t, err)

			token, err := TokenOf(d)
			require.NoError(t, err)
			assert.Equal(t, typ, token)
		})
	}
}

func TestLiteralOf(t *testing.T) {
	t.Parallel()

	containerOrigin := &type_declaration.GenericTypeDeclaration{
		PkgPath:        reflect.TypeFor[named]().PkgPath(),
		Identifier:     "container",
		TypeParameters: []string{"T"},
	}
	pairOrigin := &type_declaration.GenericTypeDeclaration{
		PkgPath:        reflect.TypeFor[named]().PkgPath(),
		Identifier:     "pair",
		TypeParameters: []string{"A", "B"},
	}

	boxOrigin := &type_declaration.GenericTypeDeclaration{
		PkgPath:        reflect.TypeFor[box.Box[int]]().PkgPath(),
		Identifier:     "Box",
		TypeParameters: []string{"T"},
	}

	boxOfSliceOfE, err := descriptor.Parameterized(boxOrigin, descriptor.ArrayOf(descriptor.Variable("E")))
	require.NoError(t, err)
	containerOfT, err := descriptor.Parameterized(containerOrigin, descriptor.Variable("T"))
	require.NoError(t, err)
	pairOfStringAndSliceOfV, err := descriptor.Parameterized(
		pairOrigin,
		raw[string](),
		descriptor.ArrayOf(descriptor.Variable("V")),
	)
	require.NoError(t, err)

	testCases := []struct {
		name string
		t    reflect.Type
		want *descriptor.Descriptor
	}{
		{"basic", reflect.TypeFor[string](), raw[string]()},
		{"placeholder", reflect.TypeFor[typevar.T](), descriptor.Variable("T")},
		{"set", reflect.TypeFor[map[string]struct{}](), descriptor.SetOf(raw[string]())},
		{"map", reflect.TypeFor[map[typevar.K]typevar.V](), descriptor.MapOf(descriptor.Variable("K"), descriptor.Variable("V"))},
		{"named map stays raw", reflect.TypeFor[headers](), raw[headers]()},
		{"slice", reflect.TypeFor[[]typevar.E](), descriptor.ArrayOf(descriptor.Variable("E"))},
		{"array", reflect.TypeFor[[2]int](), descriptor.FixedArrayOf(2, raw[int]())},
		{"pointer", reflect.TypeFor[*typevar.E](), descriptor.PointerTo(descriptor.Variable("E"))},
		{"generic struct", reflect.TypeFor[container[typevar.T]](), containerOfT},
		{"generic struct with nested arguments", reflect.TypeFor[pair[string, []typevar.V]](), pairOfStringAndSliceOfV},
		{"generic struct of another package", reflect.TypeFor[box.Box[[]typevar.E]](), boxOfSliceOfE},
		{"unused type parameter stays raw", reflect.TypeFor[phantom[typevar.T]](), raw[phantom[typevar.T]]()},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			got, err := LiteralOf(testCase.t)
			require.NoError(t, err)
			requireEqualDescriptor(t, testCase.want, got)
		})
	}

	t.Run("nil", func(t *testing.T) {
		t.Parallel()

		_, err := LiteralOf(nil)
		require.ErrorIs(t, err, typeLiteralErrors.ErrNilType)
	})
}

func TestTokenOf(t *testing.T) {
	t.Parallel()

	t.Run("built from descriptors", func(t *testing.T) {
		t.Parallel()

		d := descriptor.MapOf(raw[string](), descriptor.SetOf(descriptor.PointerTo(raw[int]())))
		token, err := TokenOf(d)
		require.NoError(t, err)
		assert.Equal(t, reflect.TypeFor[map[string]map[*int]struct{}](), token)
	})

	testCases := []struct {
		name string
		d    *descriptor.Descriptor
		err  error
	}{
		{"variable", descriptor.Variable("T"), typeLiteralErrors.ErrNotReifiable},
		{"nested variable", descriptor.ArrayOf(descriptor.Variable("T")), typeLiteralErrors.ErrNotReifiable},
		{"wildcard", descriptor.Wildcard(nil), typeLiteralErrors.ErrNotReifiable},
		{"invalid map key", descriptor.MapOf(raw[[]int](), raw[int]()), typeLiteralErrors.ErrInvalidMapKey},
		{"invalid set element", descriptor.SetOf(raw[func()]()), typeLiteralErrors.ErrInvalidMapKey},
		{"nil", nil, typeLiteralErrors.ErrNilDescriptor},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			_, err := TokenOf(testCase.d)
			require.ErrorIs(t, err, testCase.err)
		})
	}

	t.Run("generic instance with variables", func(t *testing.T) {
		t.Parallel()

		d, err := LiteralOf(reflect.TypeFor[container[typevar.T]]())
		require.NoError(t, err)

		_, err = TokenOf(d)
		require.ErrorIs(t, err, typeLiteralErrors.ErrNotReifiable)
	})

	t.Run("generic declaration without instance", func(t *testing.T) {
		t.Parallel()

		d, err := LiteralOf(reflect.TypeFor[container[typevar.T]]())
		require.NoError(t, err)

		substituted := d.Substitute(map[string]*descriptor.Descriptor{"T": raw[string]()})
		expected, err := LiteralOf(reflect.TypeFor[container[string]]())
		require.NoError(t, err)
		requireEqualDescriptor(t, expected, substituted)

		_, err = TokenOf(substituted)
		require.ErrorIs(t, err, typeLiteralErrors.ErrNotReifiable)
	})
}
