package event

import (
	"github.com/milk9111/systematic/entity"
	"github.com/milk9111/systematic/level"
)

// Event is a typed payload for one Kind.
type Event interface {
	Kind() Kind
}

// PlayerEvent carries the player for contact and movement notifications:
// onPlayerJump, onPlayerTouchCeiling, onPlayerTouchWall*, onPlayerStopTouchWall*
// and onPostPhysicsCollision.
type PlayerEvent struct {
	Type   Kind
	Player *entity.Player
}

func (e PlayerEvent) Kind() Kind { return e.Type }

// InputEvent carries the player and held keys: onPreInput, onPostInput,
// onUpdate and onPostSpecialPhysicsCollision.
type InputEvent struct {
	Type   Kind
	Player *entity.Player
	Keys   entity.Keys
}

func (e InputEvent) Kind() Kind { return e.Type }

// WallEvent is the cancelable prePlayerTouchWall* check. TileX and TileY
// name the blocking tile.
type WallEvent struct {
	Type         Kind
	Player       *entity.Player
	TileX, TileY int
}

func (e WallEvent) Kind() Kind { return e.Type }

// CeilingEvent is the cancelable prePlayerTouchCeiling check.
type CeilingEvent struct {
	Player       *entity.Player
	TileX, TileY int
}

func (CeilingEvent) Kind() Kind { return PrePlayerTouchCeiling }

type GroundEvent struct {
	Player       *entity.Player
	TileX, TileY int
	Layer        int
	Tile         level.TileID
}

func (GroundEvent) Kind() Kind { return PlayerTouchGround }

type BounceEvent struct {
	Player       *entity.Player
	TileX, TileY int
	Tile         level.TileID
	Strength     float64
}

func (BounceEvent) Kind() Kind { return PlayerBounce }

// TilePlacedEvent reports an edit. X and Y are world pixels of the tile's
// top-left corner.
type TilePlacedEvent struct {
	X, Y  float64
	Layer int
	Tile  level.TileID
}

func (TilePlacedEvent) Kind() Kind { return TilePlaced }

// MouseEvent carries world pixel coordinates.
type MouseEvent struct {
	Type   Kind
	X, Y   float64
	Button int
}

func (e MouseEvent) Kind() Kind { return e.Type }

type KeyEvent struct {
	Type Kind
	Key  string
}

func (e KeyEvent) Kind() Kind { return e.Type }

// Custom is the payload of mod-defined kinds.
type Custom struct {
	Type Kind
	Args []any
}

func (e Custom) Kind() Kind { return e.Type }
