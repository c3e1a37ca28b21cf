package level

// TileID identifies a tile kind. Zero is empty.
type TileID int

const (
	LayerBackground = 0
	LayerForeground = 1
	LayerCount      = 2
)

// Grid is a fixed rows x cols x 2 array of tile IDs. Layer 1 is the
// collision layer, layer 0 is decoration.
type Grid struct {
	cols  int
	rows  int
	cells []TileID
}

func NewGrid(cols, rows int) *Grid {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	return &Grid{cols: cols, rows: rows, cells: make([]TileID, cols*rows*LayerCount)}
}

func (g *Grid) Cols() int {
	if g == nil {
		return 0
	}
	return g.cols
}

func (g *Grid) Rows() int {
	if g == nil {
		return 0
	}
	return g.rows
}

func (g *Grid) InBounds(col, row int) bool {
	return g != nil && col >= 0 && row >= 0 && col < g.cols && row < g.rows
}

func (g *Grid) index(col, row, layer int) (int, bool) {
	if !g.InBounds(col, row) || layer < 0 || layer >= LayerCount {
		return 0, false
	}
	return (row*g.cols+col)*LayerCount + layer, true
}

// Cell returns the tile at (col,row,layer), or 0 when any coordinate is out
// of range.
func (g *Grid) Cell(col, row, layer int) TileID {
	i, ok := g.index(col, row, layer)
	if !ok {
		return TileEmpty
	}
	return g.cells[i]
}

// SetCell writes id and reports whether it was stored. Out of range
// coordinates and negative ids are refused.
func (g *Grid) SetCell(col, row, layer int, id TileID) bool {
	i, ok := g.index(col, row, layer)
	if !ok || id < 0 {
		return false
	}
	g.cells[i] = id
	return true
}

// Fill writes id into every cell of the inclusive rectangle, clipped to the
// grid.
func (g *Grid) Fill(x1, y1, x2, y2, layer int, id TileID) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			g.SetCell(x, y, layer, id)
		}
	}
}

// Each visits every cell in row-major order.
func (g *Grid) Each(fn func(col, row, layer int, id TileID)) {
	if g == nil {
		return
	}
	for row := 0; row < g.rows; row++ {
		for col := 0; col < g.cols; col++ {
			for layer := 0; layer < LayerCount; layer++ {
				fn(col, row, layer, g.cells[(row*g.cols+col)*LayerCount+layer])
			}
		}
	}
}

// Find returns the coordinates of every cell on layer holding id.
func (g *Grid) Find(id TileID, layer int) [][2]int {
	var out [][2]int
	g.Each(func(col, row, l int, v TileID) {
		if l == layer && v == id {
			out = append(out, [2]int{col, row})
		}
	})
	return out
}

