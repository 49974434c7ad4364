package schema

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// fieldDoc is the serialized shape of a field. The type tag is resolved to a
// concrete Field in decodeField only.
type fieldDoc struct {
	ID        string      `yaml:"id" json:"id"`
	Type      Kind        `yaml:"type" json:"type"`
	Label     string      `yaml:"label,omitempty" json:"label,omitempty"`
	Required  bool        `yaml:"required,omitempty" json:"required,omitempty"`
	Multiline bool        `yaml:"multiline,omitempty" json:"multiline,omitempty"`
	MaxLength int         `yaml:"max_length,omitempty" json:"max_length,omitempty"`
	Max       int         `yaml:"max,omitempty" json:"max,omitempty"`
	Options   []Option    `yaml:"options,omitempty" json:"options,omitempty"`
	Criteria  []Criterion `yaml:"criteria,omitempty" json:"criteria,omitempty"`
	Children  []fieldDoc  `yaml:"children,omitempty" json:"children,omitempty"`
}

func decodeField(doc fieldDoc) (Field, error) {
	children, err := decodeFields(doc.Children)
	if err != nil {
		return nil, err
	}
	base := Base{ID: doc.ID, Label: doc.Label, Required: doc.Required, Children: children}
	switch doc.Type {
	case KindGroup, KindSection:
		return &Group{Base: base, Section: doc.Type == KindSection}, nil
	case KindText:
		return &Text{Base: base, Multiline: doc.Multiline, MaxLength: doc.MaxLength}, nil
	case KindChoice:
		return &Choice{Base: base, Options: doc.Options}, nil
	case KindRating:
		return &Rating{Base: base, Max: doc.Max}, nil
	case KindAudio:
		return &Audio{Base: base}, nil
	case KindRubric:
		return &Rubric{Base: base, Criteria: doc.Criteria}, nil
	case KindChecklist:
		return &Checklist{Base: base, Options: doc.Options}, nil
	case KindMultiSelect, KindAccordion:
		return &MultiSelect{Base: base, Options: doc.Options, Accordion: doc.Type == KindAccordion}, nil
	default:
		return nil, fmt.Errorf("field %q: unknown type %q", doc.ID, doc.Type)
	}
}

func decodeFields(docs []fieldDoc) ([]Field, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	fields := make([]Field, 0, len(docs))
	for _, d := range docs {
		f, err := decodeField(d)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func encodeField(f Field) fieldDoc {
	b := f.Common()
	doc := fieldDoc{
		ID:       b.ID,
		Type:     f.Kind(),
		Label:    b.Label,
		Required: b.Required,
		Children: encodeFields(b.Children),
	}
	switch f := f.(type) {
	case *Text:
		doc.Multiline = f.Multiline
		doc.MaxLength = f.MaxLength
	case *Choice:
		doc.Options = f.Options
	case *Rating:
		doc.Max = f.Max
	case *Rubric:
		doc.Criteria = f.Criteria
	case *Checklist:
		doc.Options = f.Options
	case *MultiSelect:
		doc.Options = f.Options
	}
	return doc
}

func encodeFields(fields []Field) []fieldDoc {
	if len(fields) == 0 {
		return nil
	}
	docs := make([]fieldDoc, 0, len(fields))
	for _, f := range fields {
		docs = append(docs, encodeField(f))
	}
	return docs
}

func (t Tree) MarshalYAML() (any, error) {
	return encodeFields(t.Fields), nil
}

func (t *Tree) UnmarshalYAML(node *yaml.Node) error {
	var docs []fieldDoc
	if err := node.Decode(&docs); err != nil {
		return err
	}
	fields, err := decodeFields(docs)
	if err != nil {
		return err
	}
	t.Fields = fields
	return nil
}

func (t Tree) MarshalJSON() ([]byte, error) {
	docs := encodeFields(t.Fields)
	if docs == nil {
		docs = []fieldDoc{}
	}
	return json.Marshal(docs)
}

func (t *Tree) UnmarshalJSON(data []byte) error {
	var docs []fieldDoc
	if err := json.Unmarshal(data, &docs); err != nil {
		return err
	}
	fields, err := decodeFields(docs)
	if err != nil {
		return err
	}
	t.Fields = fields
	return nil
}
