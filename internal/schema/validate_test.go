package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const reviewForm = `
- id: summary
  type: section
  children:
    - id: transcript
      type: text
      required: true
      multiline: true
    - id: quality
      type: rating
      required: true
      max: 5
- id: rubric
  type: rubric
  required: true
  criteria:
    - id: accuracy
    - id: tone
- id: checks
  type: checklist
  required: true
  options:
    - id: a
    - id: b
    - id: c
- id: tags
  type: multi_select
  required: true
  options:
    - id: x
    - id: y
- id: notes
  type: text
`

func loadTree(t *testing.T, src string) *Tree {
	t.Helper()
	var tree Tree
	require.NoError(t, yaml.Unmarshal([]byte(src), &tree))
	return &tree
}

func completeValues() Values {
	return Values{
		"transcript": "hello",
		"quality":    4,
		"rubric":     map[string]any{"accuracy": 3, "tone": 0},
		"checks":     map[string]any{"a": true, "b": true, "c": true},
		"tags":       []any{"x"},
	}
}

func TestIsComplete(t *testing.T) {
	tree := loadTree(t, reviewForm)

	tests := []struct {
		name     string
		mutate   func(v Values)
		expected bool
		missing  []string
	}{
		{
			name:     "all required present",
			mutate:   func(Values) {},
			expected: true,
		},
		{
			name:     "empty text",
			mutate:   func(v Values) { v["transcript"] = "" },
			expected: false,
			missing:  []string{"transcript"},
		},
		{
			name:     "nil rating",
			mutate:   func(v Values) { v["quality"] = nil },
			expected: false,
			missing:  []string{"quality"},
		},
		{
			name:     "rating zero counts",
			mutate:   func(v Values) { v["quality"] = 0 },
			expected: true,
		},
		{
			name:     "rubric missing criterion",
			mutate:   func(v Values) { v["rubric"] = map[string]any{"accuracy": 5} },
			expected: false,
			missing:  []string{"rubric"},
		},
		{
			name:     "rubric not a map",
			mutate:   func(v Values) { v["rubric"] = "5" },
			expected: false,
			missing:  []string{"rubric"},
		},
		{
			name:     "checklist one unchecked",
			mutate:   func(v Values) { v["checks"] = map[string]any{"a": true, "b": false, "c": true} },
			expected: false,
			missing:  []string{"checks"},
		},
		{
			name:     "checklist as list of ids",
			mutate:   func(v Values) { v["checks"] = []any{"a", "b", "c"} },
			expected: true,
		},
		{
			name:     "multi select empty list",
			mutate:   func(v Values) { v["tags"] = []any{} },
			expected: false,
			missing:  []string{"tags"},
		},
		{
			name:     "multi select scalar",
			mutate:   func(v Values) { v["tags"] = "y" },
			expected: true,
		},
		{
			name:     "optional field ignored",
			mutate:   func(v Values) { v["notes"] = "" },
			expected: true,
		},
		{
			name: "several missing listed children first",
			mutate: func(v Values) {
				delete(v, "transcript")
				delete(v, "quality")
				delete(v, "tags")
			},
			expected: false,
			missing:  []string{"transcript", "quality", "tags"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := completeValues()
			tt.mutate(values)
			assert.Equal(t, tt.expected, IsComplete(tree, values))
			assert.Equal(t, tt.missing, Incomplete(tree, values))
		})
	}
}

func TestChecklistOptions(t *testing.T) {
	for k := 1; k <= 4; k++ {
		opts := make([]Option, 0, k)
		for i := 0; i < k; i++ {
			opts = append(opts, Option{ID: string(rune('a' + i))})
		}
		tree := &Tree{Fields: []Field{&Checklist{Base: Base{ID: "c", Required: true}, Options: opts}}}

		all := map[string]any{}
		for _, o := range opts {
			all[o.ID] = true
		}
		assert.True(t, IsComplete(tree, Values{"c": all}), "k=%d all checked", k)

		for _, o := range opts {
			partial := map[string]any{}
			for id := range all {
				partial[id] = id != o.ID
			}
			assert.False(t, IsComplete(tree, Values{"c": partial}), "k=%d missing %s", k, o.ID)
		}
	}
}

func TestChecklistWithoutOptions(t *testing.T) {
	tree := &Tree{Fields: []Field{&Checklist{Base: Base{ID: "c", Required: true}}}}

	assert.True(t, IsComplete(tree, Values{"c": map[string]any{"anything": true}}))
	assert.False(t, IsComplete(tree, Values{"c": map[string]any{"anything": false}}))
	assert.False(t, IsComplete(tree, Values{"c": map[string]any{}}))
	assert.Equal(t, []string{`checklist "c" declares no options; any checked item completes it`}, tree.Lint())
}

func TestGroupWithoutRequiredChildren(t *testing.T) {
	tree := &Tree{Fields: []Field{
		&Group{Base: Base{ID: "g", Required: true, Children: []Field{
			&Audio{Base: Base{ID: "clip"}},
		}}},
	}}
	assert.True(t, IsComplete(tree, Values{}))
	assert.Empty(t, Incomplete(tree, Values{}))
}

func TestNilTree(t *testing.T) {
	assert.True(t, IsComplete(nil, nil))
	assert.Nil(t, Incomplete(nil, nil))
}
