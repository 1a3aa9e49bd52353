package generic_type_info

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	goTypes "go/types"
	"os"
	"path"
	"reflect"
	"slices"
	"strings"
	"sync"

	typeLiteralErrors "github.com/vphpersson/type_literal/pkg/errors"
	"github.com/vphpersson/type_literal/pkg/types/generic_type_info"
	"github.com/vphpersson/type_literal/pkg/types/shape"

	motmedelErrors "github.com/Motmedel/utils_go/pkg/errors"
	motmedelMaps "github.com/Motmedel/utils_go/pkg/maps"
	motmedelReflect "github.com/Motmedel/utils_go/pkg/reflect"
	"golang.org/x/tools/go/packages"
)

var (
	ErrNilPackage          = errors.New("nil package")
	ErrNilScope            = errors.New("nil scope")
	ErrNotTypeName         = errors.New("not a type name")
	ErrNotNamed            = errors.New("not a named")
	ErrEmptyTypeParams     = errors.New("empty type parameters")
	ErrNotStruct           = errors.New("not a struct")
	ErrEmptyTypeName       = errors.New("empty type name")
	ErrNotGeneric          = errors.New("not a generic type")
	ErrNoGenericTypeInfo   = errors.New("no generic type info")
	ErrUnusedTypeParameter = errors.New("type parameter not used by any field")
)

// detectShapeTypes appends the shape of every occurrence of a type parameter in
// t to shapes.
func detectShapeTypes(
	t goTypes.Type,
	paramSet map[*goTypes.TypeParam]struct{},
	path []shape.Kind,
	shapes []shape.Shape,
) []shape.Shape {
	switch tt := t.(type) {
	case *goTypes.TypeParam:
		if _, ok := paramSet[tt]; ok {
			return append(shapes, shape.Shape{Param: tt.Obj().Name(), Path: path})
		}
	case *goTypes.Pointer:
		return detectShapeTypes(tt.Elem(), paramSet, extend(path, shape.KindPointer), shapes)
	case *goTypes.Slice:
		return detectShapeTypes(tt.Elem(), paramSet, extend(path, shape.KindSlice), shapes)
	case *goTypes.Array:
		return detectShapeTypes(tt.Elem(), paramSet, extend(path, shape.KindArray), shapes)
	case *goTypes.Map:
		shapes = detectShapeTypes(tt.Key(), paramSet, extend(path, shape.KindMapKey), shapes)
		return detectShapeTypes(tt.Elem(), paramSet, extend(path, shape.KindMapValue), shapes)
	}

	return shapes
}

func extend(path []shape.Kind, kind shape.Kind) []shape.Kind {
	return append(slices.Clip(path), kind)
}

// packagesLoadMode is what discovery needs to type-check a package from source.
const packagesLoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

type loadedPackages struct {
	once     sync.Once
	packages []*packages.Package
	err      error
}

// packageCache maps a load pattern to *loadedPackages.
var packageCache sync.Map

// loadPackages loads pattern, test variants included, once per process.
func loadPackages(pattern string) ([]*packages.Package, error) {
	value, _ := packageCache.LoadOrStore(pattern, &loadedPackages{})
	loaded := value.(*loadedPackages)

	loaded.once.Do(func() {
		config := &packages.Config{Mode: packagesLoadMode, Tests: true}
		loaded.packages, loaded.err = packages.Load(config, pattern)
		if loaded.err != nil {
			loaded.err = motmedelErrors.NewWithTrace(fmt.Errorf("packages load: %w", loaded.err), pattern)
		}
	})

	return loaded.packages, loaded.err
}

// discoverUsingPackages looks up the declaration in the package whose import
// path is pkgPath. The test variants of the package are searched as well, so
// that declarations in _test.go files are found.
func discoverUsingPackages(pkgPath string, typeName string) (*generic_type_info.GenericTypeInfo, error) {
	pattern := pkgPath
	if trimmed, ok := strings.CutSuffix(pkgPath, "_test"); ok {
		pattern = trimmed
	}

	pkgs, err := loadPackages(pattern)
	if err != nil {
		return nil, err
	}

	var packageErrs []error
	for _, pkg := range pkgs {
		if pkg == nil || pkg.PkgPath != pkgPath {
			continue
		}
		for _, packageErr := range pkg.Errors {
			packageErrs = append(packageErrs, packageErr)
		}
		if pkg.Types == nil {
			continue
		}

		genericTypeInfo, err := discoverInTypesPackage(pkg.Types, typeName)
		if err != nil {
			return nil, motmedelErrors.New(fmt.Errorf("discover in types package: %w", err), pkg.ID)
		}
		if genericTypeInfo != nil {
			return genericTypeInfo, nil
		}
	}

	if len(packageErrs) > 0 {
		return nil, motmedelErrors.NewWithTrace(
			fmt.Errorf("package errors: %w", errors.Join(packageErrs...)),
			pkgPath,
		)
	}

	return nil, nil
}

func discoverInTypesPackage(pkg *goTypes.Package, typeName string) (*generic_type_info.GenericTypeInfo, error) {
	if pkg == nil {
		return nil, motmedelErrors.NewWithTrace(ErrNilPackage)
	}

	pkgScope := pkg.Scope()
	if pkgScope == nil {
		return nil, motmedelErrors.NewWithTrace(ErrNilScope)
	}

	object := pkgScope.Lookup(typeName)
	if object == nil {
		return nil, nil
	}

	objectWithName, ok := object.(*goTypes.TypeName)
	if !ok {
		return nil, motmedelErrors.NewWithTrace(ErrNotTypeName, typeName)
	}

	namedType, ok := objectWithName.Type().(*goTypes.Named)
	if !ok {
		return nil, motmedelErrors.NewWithTrace(ErrNotNamed, typeName)
	}

	structType, ok := namedType.Underlying().(*goTypes.Struct)
	if !ok {
		return nil, motmedelErrors.NewWithTrace(ErrNotStruct, typeName)
	}

	typeParameters := namedType.TypeParams()
	if typeParameters.Len() == 0 {
		return nil, motmedelErrors.NewWithTrace(ErrEmptyTypeParams, typeName)
	}

	parameterNamesSet := map[*goTypes.TypeParam]struct{}{}
	parameterNames := make([]string, typeParameters.Len())
	for i := range typeParameters.Len() {
		typeParameter := typeParameters.At(i)
		parameterNamesSet[typeParameter] = struct{}{}
		parameterNames[i] = typeParameter.Obj().Name()
	}

	fieldNameToShapes := map[string][]shape.Shape{}
	paramToField := map[string]string{}
	for i := range structType.NumFields() {
		field := structType.Field(i)
		if field.Embedded() {
			continue
		}

		fieldShapes := detectShapeTypes(field.Type(), parameterNamesSet, nil, nil)
		if len(fieldShapes) == 0 {
			continue
		}

		name := field.Name()
		fieldNameToShapes[name] = fieldShapes
		for _, fieldShape := range fieldShapes {
			if _, exists := paramToField[fieldShape.Param]; !exists {
				paramToField[fieldShape.Param] = name
			}
		}
	}

	return &generic_type_info.GenericTypeInfo{
		PkgPath:                      pkg.Path(),
		TypeName:                     typeName,
		TypeParameterNames:           parameterNames,
		FieldNameToShapes:            fieldNameToShapes,
		TypeParameterNameToFieldName: paramToField,
	}, nil
}

func detectShapeAst(e ast.Expr, paramSet map[string]struct{}, path []shape.Kind, shapes []shape.Shape) []shape.Shape {
	switch ee := e.(type) {
	case *ast.Ident:
		if _, ok := paramSet[ee.Name]; ok {
			return append(shapes, shape.Shape{Param: ee.Name, Path: path})
		}
	case *ast.ParenExpr:
		return detectShapeAst(ee.X, paramSet, path, shapes)
	case *ast.StarExpr:
		return detectShapeAst(ee.X, paramSet, extend(path, shape.KindPointer), shapes)
	case *ast.ArrayType:
		if ee.Len == nil {
			return detectShapeAst(ee.Elt, paramSet, extend(path, shape.KindSlice), shapes)
		}
		return detectShapeAst(ee.Elt, paramSet, extend(path, shape.KindArray), shapes)
	case *ast.MapType:
		shapes = detectShapeAst(ee.Key, paramSet, extend(path, shape.KindMapKey), shapes)
		return detectShapeAst(ee.Value, paramSet, extend(path, shape.KindMapValue), shapes)
	}

	return shapes
}

// discoverInWorkingDir looks for the declaration in the Go files of the working
// directory. It is used when the package cannot be loaded by import path, as
// for package main. Only a package whose name matches the last element of
// pkgPath is considered, and only a declaration with arity type parameters.
func discoverInWorkingDir(pkgPath string, typeName string, arity int) (*generic_type_info.GenericTypeInfo, error) {
	workingDirectoryPath, err := os.Getwd()
	if err != nil {
		return nil, motmedelErrors.NewWithTrace(fmt.Errorf("os getwd: %w", err))
	}

	parsedPackages, err := parser.ParseDir(token.NewFileSet(), workingDirectoryPath, nil, parser.SkipObjectResolution)
	if err != nil {
		return nil, motmedelErrors.NewWithTrace(
			fmt.Errorf("go parser parse dir: %w", err),
			workingDirectoryPath,
		)
	}

	packageName := path.Base(pkgPath)

	for name, pkg := range parsedPackages {
		if name != packageName {
			continue
		}

		for _, file := range pkg.Files {
			for _, topLevelDeclaration := range file.Decls {
				genericDeclarationNode, ok := topLevelDeclaration.(*ast.GenDecl)
				if !ok || genericDeclarationNode.Tok != token.TYPE {
					continue
				}

				for _, spec := range genericDeclarationNode.Specs {
					typeSpec, ok := spec.(*ast.TypeSpec)
					if !ok || typeSpec.Name == nil || typeSpec.Name.Name != typeName {
						continue
					}
					structType, ok := typeSpec.Type.(*ast.StructType)
					if !ok {
						return nil, nil
					}

					var paramNames []string
					paramSet := map[string]struct{}{}
					if typeParams := typeSpec.TypeParams; typeParams != nil {
						for _, field := range typeParams.List {
							for _, identifier := range field.Names {
								paramNames = append(paramNames, identifier.Name)
								paramSet[identifier.Name] = struct{}{}
							}
						}
					}
					if len(paramNames) != arity {
						// A same-named declaration of another package.
						return nil, nil
					}

					fieldNameToShapes := map[string][]shape.Shape{}
					paramToField := map[string]string{}
					for _, field := range structType.Fields.List {
						if len(field.Names) == 0 {
							continue
						}

						// Check if the struct field's type uses any of the type parameters.
						fieldShapes := detectShapeAst(field.Type, paramSet, nil, nil)
						if len(fieldShapes) == 0 {
							continue
						}

						for _, identifier := range field.Names {
							fieldNameToShapes[identifier.Name] = fieldShapes
							for _, fieldShape := range fieldShapes {
								if _, exists := paramToField[fieldShape.Param]; !exists {
									paramToField[fieldShape.Param] = identifier.Name
								}
							}
						}
					}

					return &generic_type_info.GenericTypeInfo{
						PkgPath:                      pkgPath,
						TypeName:                     typeName,
						TypeParameterNames:           paramNames,
						FieldNameToShapes:            fieldNameToShapes,
						TypeParameterNameToFieldName: paramToField,
					}, nil
				}
			}
		}
	}

	return nil, nil
}

type cacheEntry struct {
	once sync.Once
	info *generic_type_info.GenericTypeInfo
	err  error
}

// cache maps "<package path>.<type name>" to *cacheEntry. Failed lookups are
// cached too.
var cache sync.Map

func cached(
	key string,
	discover func() (*generic_type_info.GenericTypeInfo, error),
) (*generic_type_info.GenericTypeInfo, error) {
	value, _ := cache.LoadOrStore(key, &cacheEntry{})
	entry := value.(*cacheEntry)
	entry.once.Do(func() {
		entry.info, entry.err = discover()
	})
	return entry.info, entry.err
}

// typeArgumentCount returns the number of type arguments in the name of an
// instantiated type, e.g. 2 for "Pair[int,map[string]bool]".
func typeArgumentCount(instanceName string) int {
	start := strings.IndexByte(instanceName, '[')
	if start < 0 {
		return 0
	}

	count := 1
	depth := 0
	inQuote := false
	for i := start; i < len(instanceName); i++ {
		c := instanceName[i]
		if inQuote {
			switch c {
			case '\\':
				i++
			case '"':
				inQuote = false
			}
			continue
		}

		switch c {
		case '"':
			inQuote = true
		case '[', '(', '{':
			depth++
		case ']', ')', '}':
			depth--
		case ',':
			if depth == 1 {
				count++
			}
		}
	}

	return count
}

// GetGenericTypeInfo returns the declared type parameters of the generic struct
// instantiated by structType, and how its fields use them.
//
// The declaration is looked up by the import path of structType. If the
// package cannot be loaded, the working directory is searched instead.
func GetGenericTypeInfo(structType reflect.Type) (*generic_type_info.GenericTypeInfo, error) {
	if structType == nil {
		return nil, motmedelErrors.NewWithTrace(typeLiteralErrors.ErrNilType)
	}

	structType = motmedelReflect.RemoveIndirection(structType)
	if structType.Kind() != reflect.Struct {
		return nil, motmedelErrors.NewWithTrace(ErrNotStruct, structType)
	}

	typeName, isGenericType := motmedelReflect.GetTypeName(structType)
	if typeName == "" {
		return nil, motmedelErrors.NewWithTrace(ErrEmptyTypeName, structType)
	}
	if !isGenericType {
		return nil, motmedelErrors.NewWithTrace(ErrNotGeneric, structType)
	}

	pkgPath := structType.PkgPath()
	arity := typeArgumentCount(structType.Name())

	return cached(pkgPath+"."+typeName, func() (*generic_type_info.GenericTypeInfo, error) {
		genericTypeInfo, packagesErr := discoverUsingPackages(pkgPath, typeName)
		if genericTypeInfo != nil {
			if len(genericTypeInfo.TypeParameterNames) != arity {
				return nil, motmedelErrors.NewWithTrace(
					fmt.Errorf(
						"%w: %s declares %d, instance has %d",
						typeLiteralErrors.ErrArityMismatch,
						typeName,
						len(genericTypeInfo.TypeParameterNames),
						arity,
					),
					structType,
				)
			}
			return genericTypeInfo, nil
		}
		if errors.Is(packagesErr, ErrNotStruct) || errors.Is(packagesErr, ErrEmptyTypeParams) {
			return nil, packagesErr
		}

		genericTypeInfo, workingDirErr := discoverInWorkingDir(pkgPath, typeName, arity)
		if workingDirErr != nil {
			return nil, workingDirErr
		}
		if genericTypeInfo == nil {
			return nil, motmedelErrors.New(errors.Join(ErrNoGenericTypeInfo, packagesErr), structType)
		}

		return genericTypeInfo, nil
	})
}

// Arguments returns the concrete type argument of every type parameter of
// structType, in declaration order.
func Arguments(
	structType reflect.Type,
	genericTypeInfo *generic_type_info.GenericTypeInfo,
) ([]reflect.Type, error) {
	if genericTypeInfo == nil {
		return nil, motmedelErrors.NewWithTrace(typeLiteralErrors.ErrNilGenericTypeInfo)
	}

	structType = motmedelReflect.RemoveIndirection(structType)

	arguments := make([]reflect.Type, 0, len(genericTypeInfo.TypeParameterNames))
	for _, typeParameterName := range genericTypeInfo.TypeParameterNames {
		typeParameterNameToFieldName := genericTypeInfo.TypeParameterNameToFieldName
		fieldName, err := motmedelMaps.MapGet(typeParameterNameToFieldName, typeParameterName)
		if err != nil {
			return nil, motmedelErrors.New(
				fmt.Errorf("%w: %w", ErrUnusedTypeParameter, err),
				typeParameterNameToFieldName, typeParameterName,
			)
		}

		field, ok := structType.FieldByName(fieldName)
		if !ok {
			return nil, motmedelErrors.NewWithTrace(
				typeLiteralErrors.ErrNoStructField,
				structType, fieldName,
			)
		}

		fieldShapes, err := motmedelMaps.MapGet(genericTypeInfo.FieldNameToShapes, fieldName)
		if err != nil {
			return nil, motmedelErrors.New(fmt.Errorf("map get: %w", err), fieldName)
		}

		shapeIndex := slices.IndexFunc(fieldShapes, func(fieldShape shape.Shape) bool {
			return fieldShape.Param == typeParameterName
		})
		if shapeIndex < 0 {
			return nil, motmedelErrors.NewWithTrace(
				fmt.Errorf("%w: field %q", ErrUnusedTypeParameter, fieldName),
				typeParameterName,
			)
		}
		fieldShape := fieldShapes[shapeIndex]

		argument, ok := fieldShape.Extract(field.Type)
		if !ok {
			return nil, motmedelErrors.NewWithTrace(
				fmt.Errorf("%w: field %q does not match its shape", typeLiteralErrors.ErrUnsupportedKind, fieldName),
				structType, fieldShape,
			)
		}

		arguments = append(arguments, argument)
	}

	return arguments, nil
}

// Bindings returns the type arguments of structType keyed by type parameter
// name. Parameters that no field uses are left out.
func Bindings(structType reflect.Type) (map[string]reflect.Type, error) {
	genericTypeInfo, err := GetGenericTypeInfo(structType)
	if err != nil {
		return nil, fmt.Errorf("get generic type info: %w", err)
	}

	bindings := map[string]reflect.Type{}
	for _, typeParameterName := range genericTypeInfo.TypeParameterNames {
		if _, ok := genericTypeInfo.TypeParameterNameToFieldName[typeParameterName]; !ok {
			continue
		}

		partial := *genericTypeInfo
		partial.TypeParameterNames = []string{typeParameterName}

		arguments, err := Arguments(structType, &partial)
		if err != nil {
			return nil, fmt.Errorf("arguments: %w", err)
		}
		bindings[typeParameterName] = arguments[0]
	}

	return bindings, nil
}

// Complete reports whether every type parameter is used by some field.
func Complete(genericTypeInfo *generic_type_info.GenericTypeInfo) bool {
	if genericTypeInfo == nil {
		return false
	}
	return !slices.ContainsFunc(genericTypeInfo.TypeParameterNames, func(name string) bool {
		_, ok := genericTypeInfo.TypeParameterNameToFieldName[name]
		return !ok
	})
}
