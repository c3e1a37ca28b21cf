package event

// Kind names an event. Engine kinds use the fixed names below; mods may
// trigger any other name as a custom kind.
type Kind string

const (
	PreInput                  Kind = "onPreInput"
	PostInput                 Kind = "onPostInput"
	Update                    Kind = "onUpdate"
	PlayerJump                Kind = "onPlayerJump"
	PlayerTouchGround         Kind = "onPlayerTouchGround"
	PlayerTouchCeiling        Kind = "onPlayerTouchCeiling"
	PrePlayerTouchCeiling     Kind = "prePlayerTouchCeiling"
	PlayerTouchWallLeft       Kind = "onPlayerTouchWallLeft"
	PlayerTouchWallRight      Kind = "onPlayerTouchWallRight"
	PrePlayerTouchWallLeft    Kind = "prePlayerTouchWallLeft"
	PrePlayerTouchWallRight   Kind = "prePlayerTouchWallRight"
	PlayerStopTouchWallLeft   Kind = "onPlayerStopTouchWallLeft"
	PlayerStopTouchWallRight  Kind = "onPlayerStopTouchWallRight"
	PlayerBounce              Kind = "onPlayerBounce"
	PostPhysicsCollision      Kind = "onPostPhysicsCollision"
	PostSpecialPhysicsCollide Kind = "onPostSpecialPhysicsCollision"
	TilePlaced                Kind = "onTilePlaced"
	MouseDown                 Kind = "onMouseDown"
	MouseUp                   Kind = "onMouseUp"
	KeyDown                   Kind = "onKeyDown"
	KeyUp                     Kind = "onKeyUp"
)

// Kinds lists every engine kind.
var Kinds = []Kind{
	PreInput, PostInput, Update, PlayerJump, PlayerTouchGround,
	PlayerTouchCeiling, PrePlayerTouchCeiling, PlayerTouchWallLeft, PlayerTouchWallRight,
	PrePlayerTouchWallLeft, PrePlayerTouchWallRight, PlayerStopTouchWallLeft,
	PlayerStopTouchWallRight, PlayerBounce, PostPhysicsCollision,
	PostSpecialPhysicsCollide, TilePlaced, MouseDown, MouseUp, KeyDown, KeyUp,
}

// Builtin reports whether k is one of the engine kinds.
func (k Kind) Builtin() bool {
	for _, v := range Kinds {
		if v == k {
			return true
		}
	}
	return false
}
