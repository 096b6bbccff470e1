package executor

import (
	language "github.com/hanpama/membergraph/internal/language"
)

// collectedField groups the selections answering to one response key.
type collectedField struct {
	ResponseName string
	Fields       []*language.Field
}

// collectFields flattens a selection set into response keys in document
// order. Every composite type is an object type and the document has been
// validated, so fragment type conditions always apply and are not checked.
func collectFields(state *executionState, set language.SelectionSet) []collectedField {
	c := fieldCollector{state: state, index: map[string]int{}, spread: map[string]bool{}}
	c.collect(set)
	return c.out
}

type fieldCollector struct {
	state  *executionState
	out    []collectedField
	index  map[string]int
	spread map[string]bool
}

func (c *fieldCollector) collect(set language.SelectionSet) {
	for _, sel := range set {
		switch s := sel.(type) {
		case *language.Field:
			if c.included(s.Directives) {
				c.add(s)
			}
		case *language.InlineFragment:
			if c.included(s.Directives) {
				c.collect(s.SelectionSet)
			}
		case *language.FragmentSpread:
			if c.spread[s.Name] || !c.included(s.Directives) {
				continue
			}
			c.spread[s.Name] = true
			if def := c.state.document.Fragments.ForName(s.Name); def != nil && c.included(def.Directives) {
				c.collect(def.SelectionSet)
			}
		}
	}
}

func (c *fieldCollector) add(f *language.Field) {
	key := f.Alias
	if key == "" {
		key = f.Name
	}
	if i, ok := c.index[key]; ok {
		c.out[i].Fields = append(c.out[i].Fields, f)
		return
	}
	c.index[key] = len(c.out)
	c.out = append(c.out, collectedField{ResponseName: key, Fields: []*language.Field{f}})
}

// included evaluates @skip and @include. A missing or non-boolean "if"
// leaves the selection in.
func (c *fieldCollector) included(directives language.DirectiveList) bool {
	if on, ok := c.flag(directives.ForName("skip")); ok && on {
		return false
	}
	if on, ok := c.flag(directives.ForName("include")); ok && !on {
		return false
	}
	return true
}

func (c *fieldCollector) flag(d *language.Directive) (on, ok bool) {
	if d == nil {
		return false, false
	}
	arg := d.Arguments.ForName("if")
	if arg == nil {
		return false, false
	}
	on, ok = astValue(arg.Value, c.state.variableValues).(bool)
	return on, ok
}
