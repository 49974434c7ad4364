package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDecodeKinds(t *testing.T) {
	tree := loadTree(t, `
- id: g
  type: group
  children:
    - id: acc
      type: accordion
      options: [{id: one}]
- id: clip
  type: audio
  required: true
- id: pick
  type: choice
  options: [{id: yes}, {id: no}]
`)
	require.Len(t, tree.Fields, 3)

	g, ok := tree.Fields[0].(*Group)
	require.True(t, ok)
	assert.False(t, g.Section)

	acc, ok := tree.Find("acc")
	require.True(t, ok)
	ms, ok := acc.(*MultiSelect)
	require.True(t, ok)
	assert.True(t, ms.Accordion)
	assert.Equal(t, KindAccordion, ms.Kind())

	_, ok = tree.Fields[1].(*Audio)
	assert.True(t, ok)
	assert.True(t, tree.Fields[1].Common().Required)

	choice, ok := tree.Fields[2].(*Choice)
	require.True(t, ok)
	assert.Len(t, choice.Options, 2)
}

func TestDecodeUnknownType(t *testing.T) {
	var tree Tree
	err := yaml.Unmarshal([]byte("- id: x\n  type: slider\n"), &tree)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown type "slider"`)
}

func TestJSONRoundTripKeepsCompleteness(t *testing.T) {
	tree := loadTree(t, reviewForm)

	data, err := json.Marshal(tree)
	require.NoError(t, err)

	var decoded Tree
	require.NoError(t, json.Unmarshal(data, &decoded))

	var values Values
	require.NoError(t, json.Unmarshal([]byte(`{
		"transcript": "hi",
		"quality": 5,
		"rubric": {"accuracy": 1, "tone": 2},
		"checks": {"a": true, "b": true, "c": true},
		"tags": ["y"]
	}`), &values))
	assert.True(t, IsComplete(&decoded, values))

	delete(values, "rubric")
	assert.Equal(t, []string{"rubric"}, Incomplete(&decoded, values))
}

func TestValidate(t *testing.T) {
	tree := loadTree(t, `
- id: a
  type: text
- id: a
  type: rating
- type: audio
`)
	err := tree.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate field id "a"`)
	assert.Contains(t, err.Error(), "audio field without id")

	assert.NoError(t, loadTree(t, reviewForm).Validate())
}
