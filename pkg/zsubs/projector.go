package zsubs

// Project reshapes data according to t.
//
// A nil template returns data unchanged. Otherwise the result only holds what
// the template names: leaves are copied when present and not empty, nested
// entries recurse into container values, and the wildcard entry applies its
// sub-template to every element not claimed by a literal entry. Map results
// follow template order. Plain Go maps and slices are normalized first.
func Project(data any, t *Template) any {
	if t == nil {
		return data
	}

	switch v := Normalize(data).(type) {
	case *Map:
		return projectMap(v, t)
	case List:
		return projectList(v, t)
	default:
		return nil
	}
}

// ProjectMap is Project for the common case of a Map payload.
func ProjectMap(data *Map, t *Template) *Map {
	if t == nil {
		return data
	}

	if data == nil {
		return NewMap()
	}

	return projectMap(data, t)
}

func projectMap(data *Map, t *Template) *Map {
	out := NewMap()

	for _, entry := range t.entries {
		if entry.Name == Wildcard {
			data.Range(func(key string, value any) bool {
				if _, literal := t.Lookup(key); literal {
					return true
				}

				if entry.Sub == nil {
					if !IsEmpty(value) {
						out.Set(key, CloneValue(Normalize(value)))
					}

					return true
				}

				if projected, ok := projectContainer(value, entry.Sub); ok {
					out.Set(key, projected)
				}

				return true
			})

			continue
		}

		value, ok := data.Get(entry.Name)
		if !ok {
			continue
		}

		if entry.Sub == nil {
			if !IsEmpty(value) {
				out.Set(entry.Name, CloneValue(Normalize(value)))
			}

			continue
		}

		if projected, ok := projectContainer(value, entry.Sub); ok {
			out.Set(entry.Name, projected)
		}
	}

	return out
}

func projectList(data List, t *Template) List {
	sub := t
	if wildcard, ok := t.Lookup(Wildcard); ok {
		sub = wildcard.Sub
	}

	out := make(List, 0, len(data))

	if sub == nil {
		for _, element := range data {
			if !IsEmpty(element) {
				out = append(out, CloneValue(Normalize(element)))
			}
		}

		return out
	}

	for _, element := range data {
		if projected, ok := projectContainer(element, sub); ok {
			out = append(out, projected)
		}
	}

	return out
}

// projectContainer projects value when it is a container; scalars and nulls
// cannot be reshaped and are reported as absent.
func projectContainer(value any, t *Template) (any, bool) {
	switch v := Normalize(value).(type) {
	case *Map:
		return projectMap(v, t), true
	case List:
		return projectList(v, t), true
	default:
		return nil, false
	}
}
