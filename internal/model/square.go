package model

import "fmt"

const (
	FileCount = 8
	RankCount = 8
)

const files = "abcdefgh"

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// OffBoard is where captured pieces are parked.
var OffBoard = Position{X: -1, Y: -1}

func (p Position) Valid() bool {
	return IsValid(p.X, p.Y)
}

// String returns the algebraic name of the square, or "-" when off the board.
func (p Position) String() string {
	if !p.Valid() {
		return "-"
	}
	return fmt.Sprintf("%c%d", files[p.X], p.Y+1)
}

func (p Position) add(dx, dy int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// ParsePosition reads an algebraic square name such as "e4".
func ParsePosition(s string) (Position, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return Position{}, fmt.Errorf("invalid square %q", s)
	}
	return Position{X: int(s[0] - 'a'), Y: int(s[1] - '1')}, nil
}

// IsValid reports whether (x, y) lies on the 8x8 board.
func IsValid(x, y int) bool {
	return x >= 0 && x < FileCount && y >= 0 && y < RankCount
}

// Square is a fixed cell of the board. Squares never move and carry no
// mutable state.
type Square struct {
	Position
	Color Color `json:"color"`
}

func newSquare(x, y int) Square {
	color := White
	if (x+y)%2 == 0 {
		color = Black
	}
	return Square{Position: Position{X: x, Y: y}, Color: color}
}

func (s Square) Name() string {
	return s.Position.String()
}

func (s Square) IsEmpty(b *Board) bool {
	return b.PieceAt(s.X, s.Y) == nil
}
