package lang

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/valknut-go/valknut/internal/entity"
)

// NewGoAdapter builds the Go language adapter.
func NewGoAdapter() (Adapter, error) {
	ts := tree_sitter.NewLanguage(tree_sitter_go.Language())
	queryStr := `
		(function_declaration name: (identifier) @function.name) @function
		(method_declaration name: (field_identifier) @method.name) @method
		(type_declaration (type_spec name: (type_identifier) @type.name)) @type
		(import_spec path: (interpreted_string_literal) @import.path) @import
	`
	rules := []captureRule{
		{capture: "function", kind: entity.KindFunction, nameCap: "function.name"},
		{capture: "method", kind: entity.KindMethod, nameCap: "method.name"},
		{capture: "type", kind: entity.KindStruct, nameCap: "type.name"},
		{capture: "import", isImport: true, nameCap: "import.path"},
	}
	return newTSAdapter("go", []string{".go"}, ts, queryStr, rules)
}

// NewPythonAdapter builds the Python language adapter.
func NewPythonAdapter() (Adapter, error) {
	ts := tree_sitter.NewLanguage(tree_sitter_python.Language())
	queryStr := `
		(class_definition
			body: (block
				(function_definition name: (identifier) @method.name))) @method
		(function_definition name: (identifier) @function.name) @function
		(class_definition name: (identifier) @class.name) @class
		(import_statement) @import
		(import_from_statement) @import
	`
	rules := []captureRule{
		{capture: "function", kind: entity.KindFunction, nameCap: "function.name"},
		{capture: "method", kind: entity.KindMethod, nameCap: "method.name"},
		{capture: "class", kind: entity.KindClass, nameCap: "class.name"},
		{capture: "import", isImport: true},
	}
	return newTSAdapter("python", []string{".py"}, ts, queryStr, rules)
}

// NewJavaScriptAdapter builds the JavaScript adapter (shared with .jsx).
func NewJavaScriptAdapter() (Adapter, error) {
	ts := tree_sitter.NewLanguage(tree_sitter_javascript.Language())
	queryStr := `
		(function_declaration name: (identifier) @function.name) @function
		(generator_function_declaration name: (identifier) @function.name) @function
		(variable_declarator
			name: (identifier) @function.name
			value: [(arrow_function) (function_expression) (generator_function)]) @function
		(method_definition name: (property_identifier) @method.name) @method
		(class_declaration name: (identifier) @class.name) @class
		(import_statement source: (string) @import.source) @import
	`
	rules := []captureRule{
		{capture: "function", kind: entity.KindFunction, nameCap: "function.name"},
		{capture: "method", kind: entity.KindMethod, nameCap: "method.name"},
		{capture: "class", kind: entity.KindClass, nameCap: "class.name"},
		{capture: "import", isImport: true, nameCap: "import.source"},
	}
	return newTSAdapter("javascript", []string{".js", ".jsx"}, ts, queryStr, rules)
}

// NewTypeScriptAdapter builds the TypeScript adapter (shared with .tsx).
func NewTypeScriptAdapter() (Adapter, error) {
	ts := tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
	queryStr := `
		(function_declaration name: (identifier) @function.name) @function
		(generator_function_declaration name: (identifier) @function.name) @function
		(method_definition name: (property_identifier) @method.name) @method
		(function_expression name: (identifier) @function.name) @function
		(class_declaration name: (type_identifier) @class.name) @class
		(interface_declaration name: (type_identifier) @interface.name) @interface
		(enum_declaration name: (identifier) @enum.name) @enum
		(import_statement source: (string) @import.source) @import
	`
	rules := []captureRule{
		{capture: "function", kind: entity.KindFunction, nameCap: "function.name"},
		{capture: "method", kind: entity.KindMethod, nameCap: "method.name"},
		{capture: "class", kind: entity.KindClass, nameCap: "class.name"},
		{capture: "interface", kind: entity.KindInterface, nameCap: "interface.name"},
		{capture: "enum", kind: entity.KindEnum, nameCap: "enum.name"},
		{capture: "import", isImport: true, nameCap: "import.source"},
	}
	return newTSAdapter("typescript", []string{".ts", ".tsx"}, ts, queryStr, rules)
}

// NewRustAdapter builds the Rust adapter.
func NewRustAdapter() (Adapter, error) {
	ts := tree_sitter.NewLanguage(tree_sitter_rust.Language())
	queryStr := `
		(impl_item
			body: (declaration_list
				(function_item name: (identifier) @method.name))) @method
		(function_item name: (identifier) @function.name) @function
		(struct_item name: (type_identifier) @struct.name) @struct
		(enum_item name: (type_identifier) @enum.name) @enum
		(trait_item name: (type_identifier) @interface.name) @interface
		(use_declaration) @import
		(mod_item name: (identifier) @module.name) @module
	`
	rules := []captureRule{
		{capture: "function", kind: entity.KindFunction, nameCap: "function.name"},
		{capture: "method", kind: entity.KindMethod, nameCap: "method.name"},
		{capture: "struct", kind: entity.KindStruct, nameCap: "struct.name"},
		{capture: "enum", kind: entity.KindEnum, nameCap: "enum.name"},
		{capture: "interface", kind: entity.KindInterface, nameCap: "interface.name"},
		{capture: "module", kind: entity.KindModule, nameCap: "module.name"},
		{capture: "import", isImport: true},
	}
	return newTSAdapter("rust", []string{".rs"}, ts, queryStr, rules)
}

// NewJavaAdapter builds the Java adapter.
func NewJavaAdapter() (Adapter, error) {
	ts := tree_sitter.NewLanguage(tree_sitter_java.Language())
	queryStr := `
		(method_declaration name: (identifier) @method.name) @method
		(constructor_declaration name: (identifier) @constructor.name) @constructor
		(class_declaration name: (identifier) @class.name) @class
		(record_declaration name: (identifier) @class.name) @class
		(interface_declaration name: (identifier) @interface.name) @interface
		(enum_declaration name: (identifier) @enum.name) @enum
		(field_declaration declarator: (variable_declarator name: (identifier) @field.name)) @field
		(import_declaration) @import
	`
	rules := []captureRule{
		{capture: "method", kind: entity.KindMethod, nameCap: "method.name"},
		{capture: "constructor", kind: entity.KindMethod, nameCap: "constructor.name"},
		{capture: "class", kind: entity.KindClass, nameCap: "class.name"},
		{capture: "interface", kind: entity.KindInterface, nameCap: "interface.name"},
		{capture: "enum", kind: entity.KindEnum, nameCap: "enum.name"},
		{capture: "field", kind: entity.KindVariable, nameCap: "field.name"},
		{capture: "import", isImport: true},
	}
	return newTSAdapter("java", []string{".java"}, ts, queryStr, rules)
}

// NewCppAdapter builds the C/C++ adapter (shared across the family's
// extensions).
func NewCppAdapter() (Adapter, error) {
	ts := tree_sitter.NewLanguage(tree_sitter_cpp.Language())
	queryStr := `
		(function_definition declarator: (function_declarator declarator: (identifier) @function.name)) @function
		(class_specifier name: (type_identifier) @class.name) @class
		(struct_specifier name: (type_identifier) @struct.name) @struct
		(enum_specifier name: (type_identifier) @enum.name) @enum
		(preproc_include) @import
		(using_declaration) @import
	`
	rules := []captureRule{
		{capture: "function", kind: entity.KindFunction, nameCap: "function.name"},
		{capture: "class", kind: entity.KindClass, nameCap: "class.name"},
		{capture: "struct", kind: entity.KindStruct, nameCap: "struct.name"},
		{capture: "enum", kind: entity.KindEnum, nameCap: "enum.name"},
		{capture: "import", isImport: true},
	}
	return newTSAdapter("cpp", []string{".cpp", ".cc", ".cxx", ".c", ".h", ".hpp"}, ts, queryStr, rules)
}

// NewCSharpAdapter builds the C# adapter.
func NewCSharpAdapter() (Adapter, error) {
	ts := tree_sitter.NewLanguage(tree_sitter_csharp.Language())
	queryStr := `
		(method_declaration name: (identifier) @method.name) @method
		(constructor_declaration name: (identifier) @constructor.name) @constructor
		(class_declaration name: (identifier) @class.name) @class
		(interface_declaration name: (identifier) @interface.name) @interface
		(struct_declaration name: (identifier) @struct.name) @struct
		(record_declaration name: (identifier) @class.name) @class
		(enum_declaration name: (identifier) @enum.name) @enum
		(property_declaration name: (identifier) @property.name) @property
		(field_declaration
			(variable_declaration
				(variable_declarator (identifier) @field.name))) @field
		(using_directive (qualified_name) @using.name) @using
		(using_directive (identifier) @using.name) @using
	`
	rules := []captureRule{
		{capture: "method", kind: entity.KindMethod, nameCap: "method.name"},
		{capture: "constructor", kind: entity.KindMethod, nameCap: "constructor.name"},
		{capture: "class", kind: entity.KindClass, nameCap: "class.name"},
		{capture: "interface", kind: entity.KindInterface, nameCap: "interface.name"},
		{capture: "struct", kind: entity.KindStruct, nameCap: "struct.name"},
		{capture: "enum", kind: entity.KindEnum, nameCap: "enum.name"},
		{capture: "property", kind: entity.KindVariable, nameCap: "property.name"},
		{capture: "field", kind: entity.KindVariable, nameCap: "field.name"},
		{capture: "using", isImport: true, nameCap: "using.name"},
	}
	return newTSAdapter("csharp", []string{".cs"}, ts, queryStr, rules)
}
