package simulate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validTrace = `
version: "1.0.0"
name: sample
engine: { keeps: 3, buffer: 1, estimate_size: 20, header_offset: 0 }
items: { count: 5, sizes: [10, 20, 30] }
events:
  - scroll: 45
  - measure: { from: 0, to: 4 }
  - append: { count: 3, page_size: 2 }
  - truncate: 2
  - header: 12.5
`

func TestParse(t *testing.T) {
	tr, err := Parse([]byte(validTrace))
	require.NoError(t, err)

	assert.Equal(t, "sample", tr.Name)
	assert.Equal(t, 3, tr.Engine.Keeps)
	assert.Equal(t, 1, tr.Engine.Buffer)
	assert.Equal(t, 5, tr.Items.Count)
	require.Len(t, tr.Events, 5)

	kinds := make([]string, 0, len(tr.Events))
	for _, ev := range tr.Events {
		kinds = append(kinds, ev.Kind())
	}
	assert.Equal(t, []string{"scroll", "measure", "append", "truncate", "header"}, kinds)

	assert.Equal(t, "scroll 45", tr.Events[0].String())
	assert.Equal(t, "measure 0..4", tr.Events[1].String())
	assert.Equal(t, "append 3/2", tr.Events[2].String())
	assert.Equal(t, "truncate 2", tr.Events[3].String())
	assert.Equal(t, "header 12.5", tr.Events[4].String())
}

func TestItems_SizeOfCycles(t *testing.T) {
	items := Items{Sizes: []float64{10, 20, 30}}
	got := make([]float64, 0, 7)
	for i := 0; i < 7; i++ {
		got = append(got, items.SizeOf(i))
	}
	assert.Equal(t, []float64{10, 20, 30, 10, 20, 30, 10}, got)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "malformed",
			yaml:    "version: [",
			wantErr: "parsing trace YAML",
		},
		{
			name:    "unknown field",
			yaml:    "version: 1.0.0\nspeed: 3\n",
			wantErr: "parsing trace YAML",
		},
		{
			name: "unsupported version",
			yaml: `version: "2.1.0"
engine: { keeps: 3, estimate_size: 1 }
items: { count: 1, sizes: [1] }`,
			wantErr: "does not satisfy",
		},
		{
			name: "not semver",
			yaml: `version: "latest"
engine: { keeps: 3, estimate_size: 1 }
items: { count: 1, sizes: [1] }`,
			wantErr: `version "latest"`,
		},
		{
			name: "bad engine section",
			yaml: `version: "1.0.0"
engine: { keeps: 0 }
items: { count: 1, sizes: [1] }`,
			wantErr: "keeps must be >= 1",
		},
		{
			name: "no sizes",
			yaml: `version: "1.0.0"
engine: { keeps: 3 }
items: { count: 1 }`,
			wantErr: "items.sizes must not be empty",
		},
		{
			name: "negative size",
			yaml: `version: "1.0.0"
engine: { keeps: 3 }
items: { count: 1, sizes: [-1] }`,
			wantErr: "items.sizes[0]",
		},
		{
			name: "two actions",
			yaml: `version: "1.0.0"
engine: { keeps: 3 }
items: { count: 1, sizes: [1] }
events:
  - { scroll: 1, header: 2 }`,
			wantErr: "event 0 has 2 actions",
		},
		{
			name: "no action",
			yaml: `version: "1.0.0"
engine: { keeps: 3 }
items: { count: 1, sizes: [1] }
events:
  - {}`,
			wantErr: "event 0 has 0 actions",
		},
		{
			name: "inverted measure",
			yaml: `version: "1.0.0"
engine: { keeps: 3 }
items: { count: 1, sizes: [1] }
events:
  - measure: { from: 4, to: 1 }`,
			wantErr: "inverted",
		},
		{
			name: "empty append",
			yaml: `version: "1.0.0"
engine: { keeps: 3 }
items: { count: 1, sizes: [1] }
events:
  - append: { count: 0 }`,
			wantErr: "append count",
		},
		{
			name: "negative truncate",
			yaml: `version: "1.0.0"
engine: { keeps: 3 }
items: { count: 1, sizes: [1] }
events:
  - truncate: -1`,
			wantErr: "truncate length",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("testdata/does-not-exist.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading trace")
}
