package shape

import "reflect"

type Kind int

const (
	KindDirect Kind = iota
	KindPointer
	KindSlice
	KindArray
	KindMapValue
	KindMapKey
)

// Shape locates a type parameter inside the type of a struct field. Path lists
// the steps from the field type down to the parameter, outermost first; an
// empty path means the field type is the parameter itself.
type Shape struct {
	Param string
	Path  []Kind
}

// Kind returns the outermost step of the shape.
func (s Shape) Kind() Kind {
	if len(s.Path) == 0 {
		return KindDirect
	}
	return s.Path[0]
}

// Extract follows the shape's path through fieldType and returns the type
// found at the parameter's position. It reports false if fieldType does not
// have the shape.
func (s Shape) Extract(fieldType reflect.Type) (reflect.Type, bool) {
	t := fieldType
	for _, kind := range s.Path {
		if t == nil {
			return nil, false
		}

		switch kind {
		case KindPointer:
			if t.Kind() != reflect.Pointer {
				return nil, false
			}
			t = t.Elem()
		case KindSlice:
			if t.Kind() != reflect.Slice {
				return nil, false
			}
			t = t.Elem()
		case KindArray:
			if t.Kind() != reflect.Array {
				return nil, false
			}
			t = t.Elem()
		case KindMapValue:
			if t.Kind() != reflect.Map {
				return nil, false
			}
			t = t.Elem()
		case KindMapKey:
			if t.Kind() != reflect.Map {
				return nil, false
			}
			t = t.Key()
		case KindDirect:
			// use as-is
		}
	}

	return t, t != nil
}
