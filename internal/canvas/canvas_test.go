package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    RGB
		wantErr bool
	}{
		{"#FF0000", RGB{255, 0, 0}, false},
		{"#00ff7f", RGB{0, 255, 127}, false},
		{"#000000", RGB{0, 0, 0}, false},
		{"red", RGB{}, true},
		{"#fff", RGB{}, true},
		{"FF0000", RGB{}, true},
		{"#GG0000", RGB{}, true},
		{"", RGB{}, true},
	}
	for _, tc := range tests {
		got, err := ParseColor(tc.in)
		if tc.wantErr {
			assert.ErrorIs(t, err, ErrBadColor, "input %q", tc.in)
		} else {
			require.NoError(t, err, "input %q", tc.in)
			assert.Equal(t, tc.want, got)
		}
	}
}

func TestFloodFillWholeWhiteRaster(t *testing.T) {
	r := NewRaster(10, 10)
	red := RGB{255, 0, 0}

	FloodFill(r, 5, 5, red)

	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			require.Equal(t, red, r.At(x, y), "pixel (%d,%d)", x, y)
		}
	}
}

func TestFloodFillSameColorIsNoop(t *testing.T) {
	r := NewRaster(10, 10)
	red := RGB{255, 0, 0}
	FloodFill(r, 5, 5, red)
	snap := r.Snapshot()

	FloodFill(r, 5, 5, red)

	assert.Equal(t, snap, r.Snapshot())
}

func TestFloodFillStopsAtBoundary(t *testing.T) {
	r := NewRaster(10, 10)
	black := RGB{0, 0, 0}
	// Vertical wall at x=5.
	for y := 0; y < 10; y++ {
		r.Set(5, y, black)
	}

	FloodFill(r, 2, 2, RGB{0, 0, 255})

	assert.Equal(t, RGB{0, 0, 255}, r.At(0, 0))
	assert.Equal(t, black, r.At(5, 4), "wall untouched")
	assert.Equal(t, White, r.At(8, 8), "right side untouched")
}

func TestFloodFillToleranceAbsorbsNearSeedPixels(t *testing.T) {
	r := NewRaster(4, 1)
	r.Set(1, 0, RGB{240, 240, 240}) // within 30 of white
	r.Set(2, 0, RGB{100, 100, 100}) // outside tolerance

	FloodFill(r, 0, 0, RGB{255, 0, 0})

	assert.Equal(t, RGB{255, 0, 0}, r.At(1, 0))
	assert.Equal(t, RGB{100, 100, 100}, r.At(2, 0))
}

func TestFloodFillOutOfBoundsSeed(t *testing.T) {
	r := NewRaster(4, 4)
	FloodFill(r, -1, 10, RGB{255, 0, 0})
	assert.Equal(t, White, r.At(0, 0))
}

func TestUndoAfterClearRestoresExactPixels(t *testing.T) {
	c := NewReplicator(16, 16)
	c.BeginStroke(3, 3, RGB{0, 0, 0}, 4)
	c.ExtendStroke(12, 12)
	c.EndStroke()
	before := c.Raster().Snapshot()

	c.Clear()
	require.Equal(t, White, c.Raster().At(3, 3))

	require.True(t, c.Undo())
	assert.Equal(t, before, c.Raster().Snapshot())
}

func TestUndoEmptyHistoryIsNoop(t *testing.T) {
	c := NewReplicator(8, 8)
	assert.False(t, c.Undo())
}

func TestUndoDepthIsBounded(t *testing.T) {
	c := NewReplicator(8, 8)
	for i := 0; i < 30; i++ {
		c.BeginStroke(i%8, i%8, RGB{0, 0, 0}, 2)
		c.EndStroke()
	}
	assert.Equal(t, maxUndoDepth, c.UndoDepth())
}

func TestExtendStrokeWithoutBeginIsIgnored(t *testing.T) {
	c := NewReplicator(8, 8)
	c.ExtendStroke(4, 4)
	assert.Equal(t, White, c.Raster().At(4, 4))
	assert.Equal(t, 0, c.UndoDepth())
}

func TestStrokePaintsSegmentWithRoundBrush(t *testing.T) {
	c := NewReplicator(20, 20)
	black := RGB{0, 0, 0}
	c.BeginStroke(2, 10, black, 4)
	c.ExtendStroke(17, 10)
	c.EndStroke()

	for x := 2; x <= 17; x++ {
		assert.Equal(t, black, c.Raster().At(x, 10), "x=%d", x)
	}
	assert.Equal(t, White, c.Raster().At(10, 2), "far from the segment stays white")
}

func TestResetDropsHistoryAndClears(t *testing.T) {
	c := NewReplicator(8, 8)
	c.BeginStroke(2, 2, RGB{0, 0, 0}, 2)
	c.EndStroke()

	c.Reset()

	assert.Equal(t, 0, c.UndoDepth())
	assert.False(t, c.Undo())
	assert.True(t, c.Raster().Equal(NewRaster(8, 8)))
}
