package canvas

// maxUndoDepth bounds the snapshot stack; older snapshots fall off the
// bottom once the drawer has this many undoable operations.
const maxUndoDepth = 20

// Replicator applies draw, fill, clear and undo operations to a raster and
// keeps the pre-operation snapshots needed for undo. It is not safe for
// concurrent use; the owning session serializes access.
type Replicator struct {
	raster *Raster
	undo   [][]RGB

	strokeActive bool
	strokeX      int
	strokeY      int
	strokeColor  RGB
	strokeRadius int
}

func NewReplicator(w, h int) *Replicator {
	return &Replicator{raster: NewRaster(w, h)}
}

func (c *Replicator) Raster() *Raster { return c.raster }

func (c *Replicator) pushSnapshot() {
	if len(c.undo) == maxUndoDepth {
		c.undo = c.undo[1:]
	}
	c.undo = append(c.undo, c.raster.Snapshot())
}

// BeginStroke snapshots the raster and opens a pen stroke at (x, y).
func (c *Replicator) BeginStroke(x, y int, color RGB, width int) {
	c.pushSnapshot()
	radius := width / 2
	if radius < 1 {
		radius = 1
	}
	c.strokeActive = true
	c.strokeX, c.strokeY = x, y
	c.strokeColor = color
	c.strokeRadius = radius
	c.raster.StampDot(x, y, radius, color)
}

// ExtendStroke draws a straight segment from the last stroke point to (x, y).
// Ignored when no stroke is open.
func (c *Replicator) ExtendStroke(x, y int) {
	if !c.strokeActive {
		return
	}
	c.raster.StampLine(c.strokeX, c.strokeY, x, y, c.strokeRadius, c.strokeColor)
	c.strokeX, c.strokeY = x, y
}

// EndStroke closes the open stroke. A protocol marker only; the raster does
// not change.
func (c *Replicator) EndStroke() {
	c.strokeActive = false
}

// Fill snapshots the raster and flood-fills from (x, y).
func (c *Replicator) Fill(x, y int, color RGB) {
	c.pushSnapshot()
	FloodFill(c.raster, x, y, color)
}

// Clear snapshots the raster and paints it white.
func (c *Replicator) Clear() {
	c.pushSnapshot()
	c.strokeActive = false
	c.raster.FillAll(White)
}

// Undo restores the most recent snapshot. Reports false when the history is
// empty.
func (c *Replicator) Undo() bool {
	if len(c.undo) == 0 {
		return false
	}
	snap := c.undo[len(c.undo)-1]
	c.undo = c.undo[:len(c.undo)-1]
	c.raster.Restore(snap)
	c.strokeActive = false
	return true
}

// UndoDepth reports how many operations can currently be undone.
func (c *Replicator) UndoDepth() int { return len(c.undo) }

// Reset drops the undo history and clears the surface without snapshotting,
// used at round boundaries.
func (c *Replicator) Reset() {
	c.undo = nil
	c.strokeActive = false
	c.raster.FillAll(White)
}
