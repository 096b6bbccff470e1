package schema

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Render produces SDL from the Schema. A schema block is emitted when the
// root types have non-default names. Root types come first, then the
// remaining types sorted by name. Fields resolved through the batched path
// are marked with a trailing "# async" comment when annotate is set.
func Render(s *Schema, annotate bool) string {
	if s == nil {
		return ""
	}
	var b strings.Builder

	var names, rest []string
	for _, root := range []string{s.QueryType, s.MutationType} {
		if root != "" && s.Types[root] != nil {
			names = append(names, root)
		}
	}
	for name, typ := range s.Types {
		switch {
		case builtinScalars[name] && typ.Kind == TypeKindScalar:
		case name == s.QueryType || name == s.MutationType:
		default:
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)

	if s.QueryType != "Query" || (s.MutationType != "" && s.MutationType != "Mutation") {
		fmt.Fprintf(&b, "schema {\n  query: %s\n", s.QueryType)
		if s.MutationType != "" {
			fmt.Fprintf(&b, "  mutation: %s\n", s.MutationType)
		}
		b.WriteString("}\n\n")
	}

	for _, name := range append(names, rest...) {
		typ := s.Types[name]
		switch typ.Kind {
		case TypeKindScalar:
			renderDescription(&b, typ.Description, "")
			fmt.Fprintf(&b, "scalar %s\n\n", typ.Name)
		case TypeKindEnum:
			renderEnum(&b, typ)
		case TypeKindInputObject:
			renderInputObject(&b, typ)
		case TypeKindObject:
			renderObject(&b, typ, annotate)
		}
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func renderDescription(b *strings.Builder, desc, indent string) {
	if desc == "" {
		return
	}
	b.WriteString(indent + "\"\"\"\n")
	for _, line := range strings.Split(strings.ReplaceAll(desc, `"""`, `\"""`), "\n") {
		b.WriteString(indent + line + "\n")
	}
	b.WriteString(indent + "\"\"\"\n")
}

func renderDeprecation(b *strings.Builder, deprecated bool, reason string) {
	if !deprecated {
		return
	}
	b.WriteString(" @deprecated")
	if reason != "" {
		b.WriteString("(reason: " + strconv.Quote(reason) + ")")
	}
}

func renderEnum(b *strings.Builder, typ *Type) {
	renderDescription(b, typ.Description, "")
	b.WriteString("enum " + typ.Name + " {\n")
	for _, val := range typ.EnumValues {
		renderDescription(b, val.Description, "  ")
		b.WriteString("  " + val.Name)
		renderDeprecation(b, val.IsDeprecated, val.DeprecationReason)
		b.WriteString("\n")
	}
	b.WriteString("}\n\n")
}

func renderInputObject(b *strings.Builder, typ *Type) {
	renderDescription(b, typ.Description, "")
	b.WriteString("input " + typ.Name + " {\n")
	for _, field := range typ.InputFields {
		renderDescription(b, field.Description, "  ")
		b.WriteString("  " + renderInputValue(field))
		b.WriteString("\n")
	}
	b.WriteString("}\n\n")
}

func renderObject(b *strings.Builder, typ *Type, annotate bool) {
	renderDescription(b, typ.Description, "")
	b.WriteString("type " + typ.Name + " {\n")
	for _, field := range typ.Fields {
		renderDescription(b, field.Description, "  ")
		b.WriteString("  " + field.Name)
		if len(field.Arguments) > 0 {
			args := make([]string, len(field.Arguments))
			for i, arg := range field.Arguments {
				args[i] = renderInputValue(arg)
			}
			b.WriteString("(" + strings.Join(args, ", ") + ")")
		}
		b.WriteString(": " + field.Type.String())
		renderDeprecation(b, field.IsDeprecated, field.DeprecationReason)
		if annotate && field.Async {
			b.WriteString(" # async")
		}
		b.WriteString("\n")
	}
	b.WriteString("}\n\n")
}

func renderInputValue(v *InputValue) string {
	out := v.Name + ": " + v.Type.String()
	if v.DefaultValue != nil {
		if name, ok := v.DefaultValue.(string); ok && !builtinScalars[v.Type.GetNamedType()] {
			// enum literal
			out += " = " + name
		} else {
			out += " = " + renderValue(v.DefaultValue)
		}
	}
	return out
}

// renderValue renders a default value literal.
func renderValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = renderValue(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + renderValue(v[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprint(v)
	}
}
