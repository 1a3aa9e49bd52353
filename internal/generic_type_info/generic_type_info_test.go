package generic_type_info

import (
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	otherBox "github.com/vphpersson/type_literal/internal/testtypes/box"
	otherFriendly "github.com/vphpersson/type_literal/internal/testtypes/friendly"
	"github.com/vphpersson/type_literal/pkg/types/generic_type_info"
	"github.com/vphpersson/type_literal/pkg/types/shape"
)

type box[T any] struct {
	value T
}

type registry[K comparable, V any] struct {
	entries map[K][]*V
	count   int
}

type phantom[T any] struct {
	name string
}

type plain struct {
	value string
}

type list[T any] []T

func TestGetGenericTypeInfo(t *testing.T) {
	t.Parallel()

	t.Run("direct field", func(t *testing.T) {
		t.Parallel()

		info, err := GetGenericTypeInfo(reflect.TypeFor[box[string]]())
		require.NoError(t, err)

		assert.Equal(t, "box", info.TypeName)
		assert.Equal(t, []string{"T"}, info.TypeParameterNames)
		assert.Equal(t, map[string]string{"T": "value"}, info.TypeParameterNameToFieldName)
		assert.Equal(t, []shape.Shape{{Param: "T"}}, info.FieldNameToShapes["value"])
	})

	t.Run("nested shapes", func(t *testing.T) {
		t.Parallel()

		info, err := GetGenericTypeInfo(reflect.TypeFor[*registry[string, int]]())
		require.NoError(t, err)

		assert.Equal(t, []string{"K", "V"}, info.TypeParameterNames)
		assert.Equal(
			t,
			map[string]string{"K": "entries", "V": "entries"},
			info.TypeParameterNameToFieldName,
		)
		assert.Equal(
			t,
			[]shape.Shape{
				{Param: "K", Path: []shape.Kind{shape.KindMapKey}},
				{Param: "V", Path: []shape.Kind{shape.KindMapValue, shape.KindSlice, shape.KindPointer}},
			},
			info.FieldNameToShapes["entries"],
		)
	})

	t.Run("declared in another package", func(t *testing.T) {
		t.Parallel()

		info, err := GetGenericTypeInfo(reflect.TypeFor[otherBox.Keyed[string, int]]())
		require.NoError(t, err)

		assert.Equal(t, reflect.TypeFor[otherBox.Box[int]]().PkgPath(), info.PkgPath)
		assert.Equal(t, "Keyed", info.TypeName)
		assert.Equal(t, []string{"K", "V"}, info.TypeParameterNames)
		assert.Equal(
			t,
			[]shape.Shape{
				{Param: "K", Path: []shape.Kind{shape.KindMapKey}},
				{Param: "V", Path: []shape.Kind{shape.KindMapValue, shape.KindSlice}},
			},
			info.FieldNameToShapes["Values"],
		)
	})

	t.Run("looked up by import path", func(t *testing.T) {
		t.Parallel()

		info, err := GetGenericTypeInfo(reflect.TypeFor[otherFriendly.Pair[int, string]]())
		require.NoError(t, err)

		assert.Equal(t, reflect.TypeFor[otherFriendly.Thing]().PkgPath(), info.PkgPath)
		assert.Equal(t, []string{"A", "B"}, info.TypeParameterNames)
		assert.Equal(t, map[string]string{"A": "First", "B": "Second"}, info.TypeParameterNameToFieldName)
	})

	t.Run("not generic", func(t *testing.T) {
		t.Parallel()

		_, err := GetGenericTypeInfo(reflect.TypeFor[plain]())
		require.ErrorIs(t, err, ErrNotGeneric)
	})

	t.Run("not a struct", func(t *testing.T) {
		t.Parallel()

		_, err := GetGenericTypeInfo(reflect.TypeFor[list[int]]())
		require.ErrorIs(t, err, ErrNotStruct)
	})

	t.Run("cached", func(t *testing.T) {
		t.Parallel()

		first, err := GetGenericTypeInfo(reflect.TypeFor[box[int]]())
		require.NoError(t, err)
		second, err := GetGenericTypeInfo(reflect.TypeFor[box[bool]]())
		require.NoError(t, err)

		assert.Same(t, first, second)
	})
}

func TestCached(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	discover := func() (*generic_type_info.GenericTypeInfo, error) {
		calls.Add(1)
		return nil, ErrNoGenericTypeInfo
	}

	for range 3 {
		info, err := cached(t.Name()+".missing", discover)
		require.ErrorIs(t, err, ErrNoGenericTypeInfo)
		assert.Nil(t, info)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestTypeArgumentCount(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		want int
	}{
		{"plain", 0},
		{"Box[int]", 1},
		{"Pair[int,string]", 2},
		{"Pair[map[string]int,[]bool]", 2},
		{"Box[func(int, string) (bool, error)]", 1},
		{"Box[struct { A int \"json:\\\"a,omitempty\\\"\" }]", 1},
		{"Triple[example.com/x.Pair[int,string],int,bool]", 3},
	}

	for _, testCase := range testCases {
		assert.Equal(t, testCase.want, typeArgumentCount(testCase.name), testCase.name)
	}
}

func TestArguments(t *testing.T) {
	t.Parallel()

	t.Run("all parameters used", func(t *testing.T) {
		t.Parallel()

		structType := reflect.TypeFor[registry[string, float64]]()
		info, err := GetGenericTypeInfo(structType)
		require.NoError(t, err)
		require.True(t, Complete(info))

		arguments, err := Arguments(structType, info)
		require.NoError(t, err)
		assert.Equal(t, []reflect.Type{reflect.TypeFor[string](), reflect.TypeFor[float64]()}, arguments)
	})

	t.Run("unused parameter", func(t *testing.T) {
		t.Parallel()

		structType := reflect.TypeFor[phantom[int]]()
		info, err := GetGenericTypeInfo(structType)
		require.NoError(t, err)
		assert.False(t, Complete(info))

		_, err = Arguments(structType, info)
		require.ErrorIs(t, err, ErrUnusedTypeParameter)

		bindings, err := Bindings(structType)
		require.NoError(t, err)
		assert.Empty(t, bindings)
	})
}

func TestBindings(t *testing.T) {
	t.Parallel()

	bindings, err := Bindings(reflect.TypeFor[box[[]byte]]())
	require.NoError(t, err)

	assert.Equal(t, map[string]reflect.Type{"T": reflect.TypeFor[[]byte]()}, bindings)

	bindings, err = Bindings(reflect.TypeFor[*otherBox.Keyed[string, bool]]())
	require.NoError(t, err)

	assert.Equal(
		t,
		map[string]reflect.Type{"K": reflect.TypeFor[string](), "V": reflect.TypeFor[bool]()},
		bindings,
	)
}
