package projection

// Resolve returns the value of the first candidate key present in container.
// Candidates are tried in the order given; snake_case spellings are listed
// before their camelCase variants at call sites, reflecting the canonical
// convention. Resolve never fails: a container that is not a map, a miss on
// every candidate, or a matched value that is an empty string all yield def.
// Metadata is written by independently-evolving workflow nodes and cannot be
// trusted to be well-typed.
func Resolve(container any, keys []string, def any) any {
	m, ok := container.(map[string]any)
	if !ok {
		return def
	}
	for _, key := range keys {
		v, present := m[key]
		if !present {
			continue
		}
		if s, isString := v.(string); isString && s == "" {
			return def
		}
		return v
	}
	return def
}

// ResolveString resolves a field expected to hold a string. Non-string and
// empty values degrade to "".
func ResolveString(container any, keys ...string) string {
	v := Resolve(container, keys, nil)
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// ResolveStringSlice resolves a field expected to hold a list of strings.
// JSON decoding yields []any, so each element is coerced individually;
// non-string elements are skipped. Missing or mistyped fields degrade to nil.
func ResolveStringSlice(container any, keys ...string) []string {
	v := Resolve(container, keys, nil)
	items, ok := v.([]any)
	if !ok {
		if direct, ok := v.([]string); ok {
			return direct
		}
		return nil
	}
	var result []string
	for _, item := range items {
		if s, ok := item.(string); ok {
			result = append(result, s)
		}
	}
	return result
}
