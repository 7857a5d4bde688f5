package annotations

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/toyz/externgen/internal/errors"
)

// annotation is the grammar root of an extern annotation
type annotation struct {
	Kind   string   `parser:"Comment 'extern' Separator @Ident"`
	Params []*param `parser:"@@*"`
}

// param is a -Key or -Key=Value item
type param struct {
	Pos   lexer.Position
	Key   string `parser:"Dash @Ident"`
	Value *value `parser:"(Equals @@)?"`
}

// value is a quoted or bare parameter value
type value struct {
	Quoted *string `parser:"  @String"`
	Bare   *string `parser:"| @Raw"`
}

func (v *value) String() string {
	if v.Quoted != nil {
		return *v.Quoted
	}
	return *v.Bare
}

var annotationLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Comment", Pattern: `//`},
		{Name: "Separator", Pattern: `::`},
		{Name: "Dash", Pattern: `-`},
		{Name: "Equals", Pattern: `=`, Action: lexer.Push("Value")},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
		{Name: "Whitespace", Pattern: `[ \t]+`},
	},
	"Value": {
		{Name: "String", Pattern: `"(\\"|[^"])*"`, Action: lexer.Pop()},
		{Name: "Raw", Pattern: `[^\s"]+`, Action: lexer.Pop()},
	},
})

// ParticipleParser parses annotation comments with alecthomas/participle
type ParticipleParser struct {
	parser  *participle.Parser[annotation]
	schemas map[AnnotationType]AnnotationSchema
}

// NewParticipleParser creates a parser for the built-in schemas
func NewParticipleParser() *ParticipleParser {
	return &ParticipleParser{
		parser: participle.MustBuild[annotation](
			participle.Lexer(annotationLexer),
			participle.Elide("Whitespace"),
			participle.Unquote("String"),
		),
		schemas: Schemas(),
	}
}

// ParseAnnotation parses and validates one annotation comment
func (p *ParticipleParser) ParseAnnotation(comment string, location errors.SourceLocation) (*ParsedAnnotation, error) {
	comment = strings.TrimSpace(comment)
	if !strings.HasPrefix(comment, Prefix) {
		return nil, syntaxError(location, comment, "annotation must start with %q", Prefix)
	}

	root, err := p.parser.ParseString(location.File, comment)
	if err != nil {
		return nil, syntaxError(offset(location, err), comment, "%s", message(err))
	}

	kind := AnnotationType(root.Kind)
	schema, ok := p.schemas[kind]
	if !ok {
		return nil, syntaxError(location, comment, "unknown annotation type %q", root.Kind).
			WithSuggestion(fmt.Sprintf("Use one of: %s", strings.Join(knownTypes(p.schemas), ", ")))
	}

	parsed := &ParsedAnnotation{
		Type:       kind,
		Parameters: make(map[string]string, len(root.Params)),
		Location:   location,
		Raw:        comment,
	}

	for _, item := range root.Params {
		at := column(location, item.Pos)
		spec, known := schema.Parameters[item.Key]
		if !known {
			return nil, syntaxError(at, comment, "unknown parameter -%s for %s", item.Key, kind)
		}
		if _, dup := parsed.Parameters[item.Key]; dup {
			return nil, syntaxError(at, comment, "parameter -%s given more than once", item.Key)
		}
		if item.Value == nil {
			return nil, syntaxError(at, comment, "parameter -%s requires a value", item.Key)
		}
		v := item.Value.String()
		if spec.Validator != nil {
			if err := spec.Validator(v); err != nil {
				return nil, syntaxError(at, comment, "invalid -%s: %v", item.Key, err)
			}
		}
		parsed.Parameters[item.Key] = v
	}

	for name, spec := range schema.Parameters {
		if _, ok := parsed.Parameters[name]; spec.Required && !ok {
			return nil, syntaxError(location, comment, "%s annotation requires -%s", kind, name).
				WithSuggestion(fmt.Sprintf("Example: %s", schema.Examples[0]))
		}
	}

	return parsed, nil
}

func syntaxError(loc errors.SourceLocation, comment, format string, args ...interface{}) *errors.BaseError {
	return errors.Newf(errors.SyntaxErrorCode, format, args...).
		WithLocation(loc).
		WithContext("annotation", comment)
}

func knownTypes(schemas map[AnnotationType]AnnotationSchema) []string {
	names := make([]string, 0, len(schemas))
	for t := range schemas {
		names = append(names, string(t))
	}
	sort.Strings(names)
	return names
}

// column shifts a comment location by the lexer position of a token
func column(loc errors.SourceLocation, pos lexer.Position) errors.SourceLocation {
	if loc.Column > 0 && pos.Column > 0 {
		loc.Column += pos.Column - 1
	}
	return loc
}

func offset(loc errors.SourceLocation, err error) errors.SourceLocation {
	var perr participle.Error
	if stderrors.As(err, &perr) {
		return column(loc, perr.Position())
	}
	return loc
}

func message(err error) string {
	var perr participle.Error
	if stderrors.As(err, &perr) {
		return perr.Message()
	}
	return err.Error()
}
