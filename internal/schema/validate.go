package schema

import (
	"fmt"
	"reflect"
)

// Values is the answer bag submitted by a worker, keyed by field id.
type Values map[string]any

// IsComplete reports whether every required field of the tree has a complete
// value. Children are checked before their parent and the first incomplete
// field stops the evaluation.
func IsComplete(tree *Tree, values Values) bool {
	if tree == nil {
		return true
	}
	for _, f := range tree.Fields {
		if !fieldComplete(f, values) {
			return false
		}
	}
	return true
}

// Incomplete lists the ids of every required field whose value is missing or
// insufficient, children before parents. It is empty exactly when IsComplete
// returns true.
func Incomplete(tree *Tree, values Values) []string {
	if tree == nil {
		return nil
	}
	var ids []string
	var collect func(fields []Field)
	collect = func(fields []Field) {
		for _, f := range fields {
			collect(f.Common().Children)
			if !selfComplete(f, values) {
				ids = append(ids, f.Common().ID)
			}
		}
	}
	collect(tree.Fields)
	return ids
}

func fieldComplete(f Field, values Values) bool {
	for _, child := range f.Common().Children {
		if !fieldComplete(child, values) {
			return false
		}
	}
	return selfComplete(f, values)
}

func selfComplete(f Field, values Values) bool {
	b := f.Common()
	if !b.Required {
		return true
	}
	v, ok := values[b.ID]
	switch f := f.(type) {
	case *Group:
		return true
	case *Text, *Choice, *Rating, *Audio:
		return ok && present(v)
	case *Rubric:
		return ok && rubricComplete(f, v)
	case *Checklist:
		return ok && checklistComplete(f, v)
	case *MultiSelect:
		return ok && len(selection(v)) > 0
	default:
		panic(fmt.Sprintf("schema: unhandled field type %T", f))
	}
}

// present rejects nil, empty strings and empty collections.
func present(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return false
		}
		return present(rv.Elem().Interface())
	}
	return true
}

// rubricComplete needs an entry for every declared criterion. A zero score
// is an entry.
func rubricComplete(f *Rubric, v any) bool {
	scored := mapKeys(v)
	if scored == nil {
		return false
	}
	for _, c := range f.Criteria {
		if _, ok := scored[c.ID]; !ok {
			return false
		}
	}
	return true
}

// checklistComplete needs every declared option checked. Without declared
// options any single checked item is accepted; Lint reports such fields.
func checklistComplete(f *Checklist, v any) bool {
	checked := checkedSet(v)
	if len(f.Options) == 0 {
		return len(checked) > 0
	}
	for _, o := range f.Options {
		if !checked[o.ID] {
			return false
		}
	}
	return true
}

// selection normalizes a scalar selection to a one-element set.
func selection(v any) []string {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			item := rv.Index(i).Interface()
			if present(item) {
				out = append(out, fmt.Sprint(item))
			}
		}
		return out
	default:
		if !present(v) {
			return nil
		}
		return []string{fmt.Sprint(v)}
	}
}

func mapKeys(v any) map[string]any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[fmt.Sprint(iter.Key().Interface())] = iter.Value().Interface()
	}
	return out
}

func checkedSet(v any) map[string]bool {
	out := map[string]bool{}
	if v == nil {
		return out
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		for k, val := range mapKeys(v) {
			if b, ok := val.(bool); ok && b {
				out[k] = true
			}
		}
	case reflect.Slice, reflect.Array:
		for _, id := range selection(v) {
			out[id] = true
		}
	}
	return out
}
