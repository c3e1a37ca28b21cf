package entity

// Player is the single simulated body. Fields is a side table for state that
// mods attach to the player (jump counters, fall start heights, and so on).
type Player struct {
	X, Y   float64
	VX, VY float64

	Width, Height float64

	OnGround       bool
	OnWallLeft     bool
	OnWallRight    bool
	WasOnWallLeft  bool
	WasOnWallRight bool

	SpriteDim int
	Sprite    [][]int

	Fields Fields
}

// DefaultSprite is the 8x8 palette-index sprite drawn for the player.
var DefaultSprite = [][]int{
	{1, 1, 0, 1, 1, 0, 1, 1},
	{1, 0, 0, 0, 0, 0, 0, 1},
	{0, 0, 0, 2, 2, 0, 0, 0},
	{1, 0, 2, 3, 3, 2, 0, 1},
	{1, 0, 2, 3, 3, 2, 0, 1},
	{0, 0, 0, 2, 2, 0, 0, 0},
	{1, 0, 0, 0, 0, 0, 0, 1},
	{1, 1, 0, 1, 1, 0, 1, 1},
}

func NewPlayer(x, y float64, spriteDim int) *Player {
	if spriteDim <= 0 {
		spriteDim = len(DefaultSprite)
	}
	return &Player{X: x, Y: y, SpriteDim: spriteDim, Sprite: DefaultSprite, Fields: Fields{}}
}

// Resize recomputes the box from the sprite dimension and the current tile
// size.
func (p *Player) Resize(tileSize float64) {
	if p == nil || p.SpriteDim <= 0 {
		return
	}
	n := float64(p.SpriteDim)
	pixel := tileSize / n
	p.Width = n * pixel
	p.Height = n * pixel
}

// Reset moves the player to (x,y) and clears motion and contact state.
// Fields survive.
func (p *Player) Reset(x, y float64) {
	p.X, p.Y = x, y
	p.VX, p.VY = 0, 0
	p.OnGround = false
	p.OnWallLeft, p.OnWallRight = false, false
	p.WasOnWallLeft, p.WasOnWallRight = false, false
}

func (p *Player) Bottom() float64 {
	return p.Y + p.Height
}

func (p *Player) CenterX() float64 {
	return p.X + p.Width/2
}
