package parser

import (
	"fmt"

	"github.com/matthewmueller/stylus/stylus/ast"
	"github.com/matthewmueller/stylus/stylus/token"
)

// parseColorLiteral converts a scanned "#rgb"/"#rgba"/"#rrggbb"/"#rrggbbaa"
// literal into an ast.Color (spec §3/§8).
func parseColorLiteral(pos token.Pos, lit string) (*ast.Color, error) {
	hex := lit[1:]
	nibble := func(c byte) byte {
		switch {
		case '0' <= c && c <= '9':
			return c - '0'
		case 'a' <= c && c <= 'f':
			return c - 'a' + 10
		case 'A' <= c && c <= 'F':
			return c - 'A' + 10
		}
		return 0
	}
	pair := func(hi, lo byte) uint8 { return uint8(nibble(hi)<<4 | nibble(lo)) }

	switch len(hex) {
	case 3, 4:
		r := pair(hex[0], hex[0])
		g := pair(hex[1], hex[1])
		b := pair(hex[2], hex[2])
		c := &ast.Color{ColorPos: pos, R: r, G: g, B: b, A: 1, SourceText: lit}
		if len(hex) == 4 {
			a := pair(hex[3], hex[3])
			c.A = float64(a) / 255
			c.HadAlpha = true
		}
		return c, nil
	case 6, 8:
		r := pair(hex[0], hex[1])
		g := pair(hex[2], hex[3])
		b := pair(hex[4], hex[5])
		c := &ast.Color{ColorPos: pos, R: r, G: g, B: b, A: 1, SourceText: lit}
		if len(hex) == 8 {
			a := pair(hex[6], hex[7])
			c.A = float64(a) / 255
			c.HadAlpha = true
		}
		return c, nil
	}
	return nil, fmt.Errorf("invalid color literal %q", lit)
}
