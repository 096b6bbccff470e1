package language

// Depth returns the depth of the most deeply nested field in set. Root
// fields are at depth 0, so `{ users { id } }` has depth 1. Fragment spreads
// are followed.
func Depth(set SelectionSet, fragments FragmentDefinitionList) int {
	return max(depth(set, fragments, map[string]bool{})-1, 0)
}

func depth(set SelectionSet, fragments FragmentDefinitionList, visiting map[string]bool) int {
	deepest := 0
	for _, sel := range set {
		d := 0
		switch s := sel.(type) {
		case *Field:
			d = 1 + depth(s.SelectionSet, fragments, visiting)
		case *InlineFragment:
			d = depth(s.SelectionSet, fragments, visiting)
		case *FragmentSpread:
			if visiting[s.Name] {
				continue
			}
			def := s.Definition
			if def == nil {
				def = fragments.ForName(s.Name)
			}
			if def == nil {
				continue
			}
			visiting[s.Name] = true
			d = depth(def.SelectionSet, fragments, visiting)
			delete(visiting, s.Name)
		}
		if d > deepest {
			deepest = d
		}
	}
	return deepest
}

// CollectFieldNames returns the names of the fields selected directly by
// fields, looking through inline fragments and fragment spreads. Directives
// are not evaluated.
func CollectFieldNames(fields []*Field) map[string]bool {
	out := make(map[string]bool)
	seen := make(map[string]bool)
	var walk func(SelectionSet)
	walk = func(set SelectionSet) {
		for _, sel := range set {
			switch s := sel.(type) {
			case *Field:
				out[s.Name] = true
			case *InlineFragment:
				walk(s.SelectionSet)
			case *FragmentSpread:
				if s.Definition == nil || seen[s.Name] {
					continue
				}
				seen[s.Name] = true
				walk(s.Definition.SelectionSet)
			}
		}
	}
	for _, f := range fields {
		walk(f.SelectionSet)
	}
	return out
}
