package color_test

import (
	"bytes"
	"testing"

	fcolor "github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/kazz187/labelguild/pkg/color"
)

func TestWorkerColorIsStable(t *testing.T) {
	for _, id := range []string{"alice", "bob", "w-0042"} {
		assert.True(t, color.ForWorker(id).Equals(color.ForWorker(id)), id)
	}
}

func TestPlainOutput(t *testing.T) {
	prev := fcolor.NoColor
	fcolor.NoColor = true
	t.Cleanup(func() { fcolor.NoColor = prev })

	tests := []struct {
		name string
		got  string
		want string
	}{
		{name: "prefix", got: color.WorkerPrefix("alice"), want: "[alice]"},
		{name: "known status", got: color.Status("approved"), want: "approved"},
		{name: "unknown status", got: color.Status("archived"), want: "archived"},
		{name: "warning", got: color.Warn("%ds left", 30), want: "30s left"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}

	var buf bytes.Buffer
	color.Fprintf(&buf, "bob", "claimed %s\n", "t-1")
	assert.Equal(t, "[bob] claimed t-1\n", buf.String())
}
