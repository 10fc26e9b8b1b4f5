package scanner

import "go/token"

// Slice returns the source text between two positions of the unit's file.
func (u FileUnit) Slice(start, end token.Pos) string {
	p0 := u.Fset.PositionFor(start, true).Offset
	p1 := u.Fset.PositionFor(end, true).Offset
	if p0 < 0 || p1 > len(u.Src) || p0 > p1 {
		return ""
	}
	return u.Src[p0:p1]
}

// Offset converts a position to a byte offset into the unit's source.
func (u FileUnit) Offset(pos token.Pos) int {
	return u.Fset.PositionFor(pos, true).Offset
}

// Line returns the 1-based line of a position.
func (u FileUnit) Line(pos token.Pos) int {
	return u.Fset.PositionFor(pos, true).Line
}
