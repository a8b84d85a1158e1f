package board

import "github.com/corentings/chess/v2"

// ParseSquare converts algebraic notation ("e4") to the rule engine's square
// type. ok is false for anything outside a1..h8.
func ParseSquare(s string) (chess.Square, bool) {
	if len(s) != 2 {
		return 0, false
	}
	file := s[0] - 'a'
	rank := s[1] - '1'
	if file > 7 || rank > 7 {
		return 0, false
	}
	return chess.Square(int(rank)*8 + int(file)), true
}

// SquareColor reports whether a square is "light" or "dark".
func SquareColor(s string) string {
	if len(s) != 2 {
		return ""
	}
	file := int(s[0] - 'a')
	rank := int(s[1] - '1')
	if (file+rank)%2 == 0 {
		return "dark"
	}
	return "light"
}
