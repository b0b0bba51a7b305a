package layout_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/l-Luna/swifer/pkg/xunsafe/layout"
)

func TestAlign(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 8, layout.RoundUp(8, 8))
	assert.Equal(t, 16, layout.RoundUp(9, 8))
	assert.Equal(t, 16, layout.RoundUp(15, 8))
	assert.Equal(t, 16, layout.RoundUp(16, 8))

	assert.Equal(t, 0, layout.Padding(8, 8))
	assert.Equal(t, 7, layout.Padding(9, 8))
	assert.Equal(t, 1, layout.Padding(15, 8))
	assert.Equal(t, 0, layout.Padding(16, 8))
}

func TestOf(t *testing.T) {
	t.Parallel()

	type pair struct {
		a int64
		b int32
	}

	assert.Equal(t, layout.Layout{Size: 16, Align: 8}, layout.Of[pair]())
	assert.Equal(t, layout.Layout{Size: 1, Align: 1}, layout.Of[byte]())
	assert.Equal(t, 16, layout.Size[pair]())
	assert.Equal(t, 8, layout.Align[pair]())
}

func TestMax(t *testing.T) {
	t.Parallel()

	a := layout.Layout{Size: 4, Align: 4}
	b := layout.Layout{Size: 16, Align: 2}

	assert.Equal(t, layout.Layout{Size: 16, Align: 4}, a.Max(b))
}
