package schema

import (
	"errors"
	"fmt"
)

// Validate rejects trees that cannot be evaluated: fields without an id and
// ids used twice.
func (t *Tree) Validate() error {
	var errs []error
	seen := map[string]bool{}
	t.Walk(func(f Field) bool {
		id := f.Common().ID
		switch {
		case id == "":
			errs = append(errs, fmt.Errorf("%s field without id", f.Kind()))
		case seen[id]:
			errs = append(errs, fmt.Errorf("duplicate field id %q", id))
		}
		seen[id] = true
		return true
	})
	return errors.Join(errs...)
}

// Lint reports fields whose completeness rule is weaker than the form
// suggests. The tree stays usable.
func (t *Tree) Lint() []string {
	var warnings []string
	t.Walk(func(f Field) bool {
		switch f := f.(type) {
		case *Checklist:
			if f.Required && len(f.Options) == 0 {
				warnings = append(warnings, fmt.Sprintf("checklist %q declares no options; any checked item completes it", f.ID))
			}
		case *Rubric:
			if f.Required && len(f.Criteria) == 0 {
				warnings = append(warnings, fmt.Sprintf("rubric %q declares no criteria", f.ID))
			}
		case *Choice:
			if len(f.Options) == 0 {
				warnings = append(warnings, fmt.Sprintf("choice %q declares no options", f.ID))
			}
		}
		return true
	})
	return warnings
}
