package annotations

// Parameter names
const (
	ParamProxy     = "Proxy"
	ParamModule    = "Module"
	ParamInterface = "Interface"
)

// ParameterSpec describes one annotation parameter
type ParameterSpec struct {
	Required    bool
	Description string
	Validator   func(string) error
}

// AnnotationSchema describes the parameters an annotation accepts
type AnnotationSchema struct {
	Type        AnnotationType
	Description string
	Parameters  map[string]ParameterSpec
	Examples    []string
}

// InterfaceAnnotationSchema defines the schema for //extern::interface annotations
var InterfaceAnnotationSchema = AnnotationSchema{
	Type:        InterfaceAnnotation,
	Description: "Marks an interface whose implementation is resolved at link time",
	Parameters: map[string]ParameterSpec{
		ParamProxy: {
			Description: "Name of the generated proxy type (default <Interface>Proxy)",
			Validator:   ValidateIdentifier,
		},
		ParamModule: {
			Description: "Module path the symbols are derived from (default the package import path)",
			Validator:   ValidateImportPath,
		},
	},
	Examples: []string{
		"//extern::interface",
		"//extern::interface -Proxy=Greeter",
		"//extern::interface -Module=example.com/hello/v1",
	},
}

// ImplAnnotationSchema defines the schema for //extern::impl annotations
var ImplAnnotationSchema = AnnotationSchema{
	Type:        ImplAnnotation,
	Description: "Marks the type implementing an extern interface",
	Parameters: map[string]ParameterSpec{
		ParamInterface: {
			Required:    true,
			Description: "Qualified interface name, import/path.Name",
			Validator:   ValidateQualifiedName,
		},
		ParamModule: {
			Description: "Module path override, must match the interface annotation",
			Validator:   ValidateImportPath,
		},
	},
	Examples: []string{
		"//extern::impl -Interface=example.com/hello.Hello",
		"//extern::impl -Interface=example.com/hello.Hello -Module=example.com/hello/v1",
	},
}

// Schemas returns every built-in schema by annotation type
func Schemas() map[AnnotationType]AnnotationSchema {
	return map[AnnotationType]AnnotationSchema{
		InterfaceAnnotation: InterfaceAnnotationSchema,
		ImplAnnotation:      ImplAnnotationSchema,
	}
}
