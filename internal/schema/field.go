// Package schema describes the labeling form attached to a project as a tree
// of typed fields, and decides whether a bag of submitted values completes it.
package schema

// Kind is the type tag of a field as written in project definitions.
type Kind string

const (
	KindGroup       Kind = "group"
	KindSection     Kind = "section"
	KindText        Kind = "text"
	KindChoice      Kind = "choice"
	KindRating      Kind = "rating"
	KindAudio       Kind = "audio"
	KindRubric      Kind = "rubric"
	KindChecklist   Kind = "checklist"
	KindMultiSelect Kind = "multi_select"
	KindAccordion   Kind = "accordion"
)

// Field is one node of the form. The set of implementations is closed to this
// package: Group, Text, Choice, Rating, Audio, Rubric, Checklist, MultiSelect.
type Field interface {
	Common() *Base
	Kind() Kind
	isField()
}

// Base carries the attributes every field kind shares.
type Base struct {
	ID       string
	Label    string
	Required bool
	Children []Field
}

func (b *Base) Common() *Base { return b }

type Option struct {
	ID    string `yaml:"id" json:"id"`
	Label string `yaml:"label,omitempty" json:"label,omitempty"`
}

type Criterion struct {
	ID        string `yaml:"id" json:"id"`
	Label     string `yaml:"label,omitempty" json:"label,omitempty"`
	MaxPoints int    `yaml:"max_points,omitempty" json:"max_points,omitempty"`
}

// Group only structures its children; it never holds a value of its own.
type Group struct {
	Base
	Section bool
}

type Text struct {
	Base
	Multiline bool
	MaxLength int
}

type Choice struct {
	Base
	Options []Option
}

type Rating struct {
	Base
	Max int
}

// Audio is complete once a recording reference is present.
type Audio struct {
	Base
}

// Rubric expects a map from criterion id to awarded points.
type Rubric struct {
	Base
	Criteria []Criterion
}

// Checklist expects a map from option id to checked state, or a list of
// checked option ids.
type Checklist struct {
	Base
	Options []Option
}

// MultiSelect also backs the accordion widget.
type MultiSelect struct {
	Base
	Options   []Option
	Accordion bool
}

func (*Group) isField()       {}
func (*Text) isField()        {}
func (*Choice) isField()      {}
func (*Rating) isField()      {}
func (*Audio) isField()       {}
func (*Rubric) isField()      {}
func (*Checklist) isField()   {}
func (*MultiSelect) isField() {}

func (f *Group) Kind() Kind {
	if f.Section {
		return KindSection
	}
	return KindGroup
}
func (*Text) Kind() Kind      { return KindText }
func (*Choice) Kind() Kind    { return KindChoice }
func (*Rating) Kind() Kind    { return KindRating }
func (*Audio) Kind() Kind     { return KindAudio }
func (*Rubric) Kind() Kind    { return KindRubric }
func (*Checklist) Kind() Kind { return KindChecklist }
func (f *MultiSelect) Kind() Kind {
	if f.Accordion {
		return KindAccordion
	}
	return KindMultiSelect
}

// Tree is the root of a form.
type Tree struct {
	Fields []Field
}

// Walk visits every field depth-first, parents before children. It stops
// early when fn returns false.
func (t *Tree) Walk(fn func(Field) bool) {
	if t == nil {
		return
	}
	var visit func(fields []Field) bool
	visit = func(fields []Field) bool {
		for _, f := range fields {
			if !fn(f) {
				return false
			}
			if !visit(f.Common().Children) {
				return false
			}
		}
		return true
	}
	visit(t.Fields)
}

// Find returns the field with the given id.
func (t *Tree) Find(id string) (Field, bool) {
	var found Field
	t.Walk(func(f Field) bool {
		if f.Common().ID == id {
			found = f
			return false
		}
		return true
	})
	return found, found != nil
}
