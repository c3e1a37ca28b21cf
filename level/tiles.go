package level

// Reserved tile IDs.
const (
	TileEmpty       TileID = 0
	TileBounce      TileID = 23
	TileBounceA     TileID = 24
	TileBounceB     TileID = 25
	TileBounceC     TileID = 26
	TileOneWay      TileID = 27
	TileSpike       TileID = 28
	TileSpikeA      TileID = 29
	TileSpikeB      TileID = 30
	TileText        TileID = 31
	FirstCustomTile TileID = 40
)

// Definition property keys understood by the engine.
const (
	PropTransparent = "TRANSPARENT"
	PropBounce      = "BOUNCE"
	PropOneWay      = "ONE_WAY"
)

var (
	BounceFrames = []TileID{TileBounceB, TileBounceA, TileBounce, TileBounceC, TileBounce}
	SpikeFrames  = []TileID{TileSpike, TileSpikeA, TileSpikeB, TileSpikeA, TileSpikeA}
)

// IsSolidForCollision reports whether id blocks the player on all sides.
func IsSolidForCollision(id TileID) bool {
	return id != TileEmpty && id != TileOneWay
}

// IsOpaqueForLight reports whether a built-in id casts shadows. Custom tiles
// are resolved through Registry.OpaqueForLight.
func IsOpaqueForLight(id TileID) bool {
	switch id {
	case TileEmpty, TileBounce, TileBounceA, TileBounceB, TileBounceC,
		TileOneWay, TileSpikeA, TileSpikeB, TileText:
		return false
	}
	return true
}

// SpikeFrame returns the render substitute for a spike tile at tick.
func SpikeFrame(tick, hold int) TileID {
	if hold <= 0 {
		hold = 1
	}
	if tick < 0 {
		tick = 0
	}
	return SpikeFrames[(tick/hold)%len(SpikeFrames)]
}

// BounceSequence returns the bounce animation that settles back on id.
func BounceSequence(id TileID) []TileID {
	frames := make([]TileID, len(BounceFrames))
	copy(frames, BounceFrames)
	frames[len(frames)-1] = id
	return frames
}

// View classifies the collision layer of a grid through a registry.
type View struct {
	Grid     *Grid
	Registry *Registry
}

// Opaque reports whether the foreground tile at (col,row) casts shadows.
// Out of bounds cells never do.
func (v View) Opaque(col, row int) bool {
	id := v.Grid.Cell(col, row, LayerForeground)
	if v.Registry == nil {
		return IsOpaqueForLight(id)
	}
	return v.Registry.OpaqueForLight(id)
}

func (v View) Cols() int { return v.Grid.Cols() }
func (v View) Rows() int { return v.Grid.Rows() }
