package generic_type_info

import "github.com/vphpersson/type_literal/pkg/types/shape"

type GenericTypeInfo struct {
	PkgPath                      string
	TypeName                     string
	TypeParameterNames           []string
	FieldNameToShapes            map[string][]shape.Shape
	TypeParameterNameToFieldName map[string]string
}
