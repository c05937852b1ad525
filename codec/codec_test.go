package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	Name    string            `json:"name" yaml:"name"`
	Rows    int               `json:"rows" yaml:"rows"`
	Formula string            `json:"formula,omitempty" yaml:"formula,omitempty"`
	Labels  map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
}

func TestByName(t *testing.T) {
	for _, name := range Names() {
		c, ok := ByName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, c.Name())
	}

	_, ok := ByName("msgpack")
	assert.False(t, ok)
}

func TestCodecsRoundTrip(t *testing.T) {
	in := doc{Name: "gram", Rows: 3, Formula: "l2", Labels: map[string]string{"env": "test"}}

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			c, _ := ByName(name)

			b, err := c.Marshal(in)
			require.NoError(t, err)

			var out doc
			require.NoError(t, c.Unmarshal(b, &out))
			assert.Equal(t, in, out)
		})
	}
}

func TestJSONCodecsInteroperate(t *testing.T) {
	in := doc{Name: "gram", Rows: 2}

	b := MustMarshal(GoJSON{}, in)
	var out doc
	require.NoError(t, JSON{}.Unmarshal(b, &out))
	assert.Equal(t, in, out)

	assert.JSONEq(t, string(MustMarshal(JSON{}, in)), string(b))
}

func TestMustMarshal(t *testing.T) {
	assert.NotEmpty(t, MustMarshal(nil, doc{}))
	assert.Panics(t, func() { MustMarshal(JSON{}, make(chan int)) })
}
