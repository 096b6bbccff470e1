package schema

import (
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/hanpama/membergraph/internal/language"
)

func NewSchema(description string) *Schema {
	return &Schema{
		Types:       make(map[string]*Type),
		Directives:  make(map[string]*Directive),
		Description: description,
	}
}

func (s *Schema) SetQueryType(name string) *Schema    { s.QueryType = name; return s }
func (s *Schema) SetMutationType(name string) *Schema { s.MutationType = name; return s }

func (s *Schema) AddType(t *Type) *Schema {
	s.Types[t.Name] = t
	return s
}

func (s *Schema) AddDirective(d *Directive) *Schema {
	s.Directives[d.Name] = d
	return s
}

func NewType(name string, kind TypeKind, description string) *Type {
	return &Type{Name: name, Kind: kind, Description: description}
}

func (t *Type) AddField(f *Field) *Type {
	t.Fields = append(t.Fields, f)
	return t
}

func (t *Type) AddEnumValue(v *EnumValue) *Type {
	t.EnumValues = append(t.EnumValues, v)
	return t
}

func (t *Type) AddInputField(v *InputValue) *Type {
	t.InputFields = append(t.InputFields, v)
	return t
}

func NewField(name, description string, typ *TypeRef) *Field {
	return &Field{Name: name, Description: description, Type: typ}
}

func (f *Field) SetAsync(async bool) *Field {
	f.Async = async
	return f
}

func (f *Field) AddArgument(arg *InputValue) *Field {
	f.Arguments = append(f.Arguments, arg)
	return f
}

func (f *Field) Deprecate(reason string) *Field {
	f.IsDeprecated = true
	f.DeprecationReason = reason
	return f
}

func NewInputValue(name, description string, typ *TypeRef) *InputValue {
	return &InputValue{Name: name, Description: description, Type: typ}
}

func (v *InputValue) SetDefault(value any) *InputValue {
	v.DefaultValue = value
	return v
}

func NewEnumValue(name, description string) *EnumValue {
	return &EnumValue{Name: name, Description: description}
}

func (v *EnumValue) Deprecate(reason string) *EnumValue {
	v.IsDeprecated = true
	v.DeprecationReason = reason
	return v
}

func NewDirective(name, description string) *Directive {
	return &Directive{Name: name, Description: description}
}

// AsyncFunc reports whether a field is resolved through the batched path.
type AsyncFunc func(typeName, fieldName string) bool

// BuildFromAST converts a validated gqlparser schema into an executable
// Schema. Introspection types and fields are left out. Interfaces and unions
// are rejected.
func BuildFromAST(doc *language.Schema, async AsyncFunc) (*Schema, error) {
	s := NewSchema(doc.Description)
	if doc.Query != nil {
		s.SetQueryType(doc.Query.Name)
	}
	if doc.Mutation != nil {
		s.SetMutationType(doc.Mutation.Name)
	}
	if doc.Subscription != nil {
		return nil, fmt.Errorf("schema: subscription operations are not supported")
	}
	s.AddDirective(includeDirective).
		AddDirective(skipDirective)

	for name, def := range doc.Types {
		if strings.HasPrefix(name, "__") {
			continue
		}
		t, err := buildType(def, async)
		if err != nil {
			return nil, err
		}
		s.AddType(t)
	}
	return s, nil
}

// BuildFromSDL loads sdl and builds it with BuildFromAST.
func BuildFromSDL(name, sdl string, async AsyncFunc) (*Schema, error) {
	doc, err := language.LoadSchema(name, sdl)
	if err != nil {
		return nil, err
	}
	return BuildFromAST(doc, async)
}

func buildType(def *ast.Definition, async AsyncFunc) (*Type, error) {
	switch def.Kind {
	case ast.Scalar:
		return NewType(def.Name, TypeKindScalar, def.Description), nil
	case ast.Enum:
		t := NewType(def.Name, TypeKindEnum, def.Description)
		for _, v := range def.EnumValues {
			ev := NewEnumValue(v.Name, v.Description)
			if reason, ok := deprecation(v.Directives); ok {
				ev.Deprecate(reason)
			}
			t.AddEnumValue(ev)
		}
		return t, nil
	case ast.InputObject:
		t := NewType(def.Name, TypeKindInputObject, def.Description)
		for _, f := range def.Fields {
			iv, err := buildInputValue(f.Name, f.Description, f.Type, f.DefaultValue)
			if err != nil {
				return nil, fmt.Errorf("schema: %s.%s: %w", def.Name, f.Name, err)
			}
			t.AddInputField(iv)
		}
		return t, nil
	case ast.Object:
		t := NewType(def.Name, TypeKindObject, def.Description)
		for _, f := range def.Fields {
			if strings.HasPrefix(f.Name, "__") {
				continue
			}
			field := NewField(f.Name, f.Description, buildTypeRef(f.Type)).
				SetAsync(async != nil && async(def.Name, f.Name))
			if reason, ok := deprecation(f.Directives); ok {
				field.Deprecate(reason)
			}
			for _, a := range f.Arguments {
				iv, err := buildInputValue(a.Name, a.Description, a.Type, a.DefaultValue)
				if err != nil {
					return nil, fmt.Errorf("schema: %s.%s(%s): %w", def.Name, f.Name, a.Name, err)
				}
				field.AddArgument(iv)
			}
			t.AddField(field)
		}
		return t, nil
	default:
		return nil, fmt.Errorf("schema: %s: unsupported kind %s", def.Name, def.Kind)
	}
}

func buildInputValue(name, description string, typ *ast.Type, def *ast.Value) (*InputValue, error) {
	iv := NewInputValue(name, description, buildTypeRef(typ))
	if def != nil {
		v, err := def.Value(nil)
		if err != nil {
			return nil, err
		}
		iv.SetDefault(v)
	}
	return iv, nil
}

func buildTypeRef(t *ast.Type) *TypeRef {
	var ref *TypeRef
	if t.Elem != nil {
		ref = ListType(buildTypeRef(t.Elem))
	} else {
		ref = NamedType(t.NamedType)
	}
	if t.NonNull {
		return NonNullType(ref)
	}
	return ref
}

func deprecation(directives ast.DirectiveList) (string, bool) {
	d := directives.ForName("deprecated")
	if d == nil {
		return "", false
	}
	if arg := d.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
		return arg.Value.Raw, true
	}
	return "", true
}
