package eval

import (
	"fmt"
	"math"

	"github.com/matthewmueller/stylus/stylus/ast"
	"github.com/matthewmueller/stylus/stylus/errors"
	"github.com/matthewmueller/stylus/stylus/token"
)

// defaultBuiltins returns the illustrative standard library of host
// functions (spec §6 "Built-in functions", a representative rather than
// exhaustive set: color manipulation, unit construction, and type
// introspection).
func defaultBuiltins() map[string]Func {
	return map[string]Func{
		"darken":     {Call: fnAdjustLightness(-1)},
		"lighten":    {Call: fnAdjustLightness(1)},
		"saturate":   {Call: fnAdjustSaturation(1)},
		"desaturate": {Call: fnAdjustSaturation(-1)},
		"hue":        {Call: fnHue},
		"alpha":      {Call: fnAlpha},
		"rgba":       {Call: fnRGBA},
		"unit":       {Call: fnUnit},
		"type":       {Call: fnType},
		"to-string":  {Call: fnToString},
		"to-number":  {Call: fnToNumber},
	}
}

func argAt(args []ast.Value, i int) ast.Value {
	if i < len(args) {
		return args[i]
	}
	return nil
}

func unitPercent(fn string, args []ast.Value, i int) (float64, error) {
	u, ok := argAt(args, i).(*ast.Unit)
	if !ok {
		return 0, fmt.Errorf("%s: argument %d must be a number", fn, i+1)
	}
	f, err := u.Value.Float64()
	if err != nil {
		return 0, err
	}
	return f, nil
}

// fnAdjustLightness implements darken()/lighten(): shift HSL lightness by
// amount * sign percentage points, clamped to [0, 100].
func fnAdjustLightness(sign float64) ast.Native {
	name := "darken"
	if sign > 0 {
		name = "lighten"
	}
	return func(args []ast.Value) (ast.Value, error) {
		c, ok := argAt(args, 0).(*ast.Color)
		if !ok {
			return nil, fmt.Errorf("%s: argument 1 must be a color", name)
		}
		pct, err := unitPercent(name, args, 1)
		if err != nil {
			return nil, err
		}
		h, s, l := rgbToHSL(c.R, c.G, c.B)
		l = clamp(l+sign*pct, 0, 100)
		r, g, b := hslToRGB(h, s, l)
		return &ast.Color{R: r, G: g, B: b, A: c.A, HadAlpha: c.HadAlpha}, nil
	}
}

// fnAdjustSaturation implements saturate()/desaturate(), mirroring
// fnAdjustLightness against the HSL saturation channel.
func fnAdjustSaturation(sign float64) ast.Native {
	name := "saturate"
	if sign < 0 {
		name = "desaturate"
	}
	return func(args []ast.Value) (ast.Value, error) {
		c, ok := argAt(args, 0).(*ast.Color)
		if !ok {
			return nil, fmt.Errorf("%s: argument 1 must be a color", name)
		}
		pct, err := unitPercent(name, args, 1)
		if err != nil {
			return nil, err
		}
		h, s, l := rgbToHSL(c.R, c.G, c.B)
		s = clamp(s+sign*pct, 0, 100)
		r, g, b := hslToRGB(h, s, l)
		return &ast.Color{R: r, G: g, B: b, A: c.A, HadAlpha: c.HadAlpha}, nil
	}
}

func fnHue(args []ast.Value) (ast.Value, error) {
	c, ok := argAt(args, 0).(*ast.Color)
	if !ok {
		return nil, fmt.Errorf("hue: argument 1 must be a color")
	}
	h, _, _ := rgbToHSL(c.R, c.G, c.B)
	return ast.NewUnitFromInt(token.NoPos, int64(math.Round(h)), "deg"), nil
}

func fnAlpha(args []ast.Value) (ast.Value, error) {
	c, ok := argAt(args, 0).(*ast.Color)
	if !ok {
		return nil, fmt.Errorf("alpha: argument 1 must be a color")
	}
	return unitFromFloat(c.A), nil
}

// fnRGBA builds an rgba() color from 3 or 4 numeric arguments, matching CSS
// channel order and clamping each to its valid range.
func fnRGBA(args []ast.Value) (ast.Value, error) {
	if len(args) < 3 {
		return nil, fmt.Errorf("rgba: expects at least 3 arguments")
	}
	chans := make([]uint8, 3)
	for i := 0; i < 3; i++ {
		f, err := unitPercent("rgba", args, i)
		if err != nil {
			return nil, err
		}
		chans[i] = uint8(clamp(f, 0, 255))
	}
	alpha := 1.0
	hadAlpha := false
	if len(args) > 3 {
		f, err := unitPercent("rgba", args, 3)
		if err != nil {
			return nil, err
		}
		alpha = clamp(f, 0, 1)
		hadAlpha = true
	}
	return &ast.Color{R: chans[0], G: chans[1], B: chans[2], A: alpha, HadAlpha: hadAlpha}, nil
}

// fnUnit forces a number to carry the given unit suffix, replacing whatever
// suffix it previously had (spec glossary: "unit(n, type)").
func fnUnit(args []ast.Value) (ast.Value, error) {
	u, ok := argAt(args, 0).(*ast.Unit)
	if !ok {
		return nil, fmt.Errorf("unit: argument 1 must be a number")
	}
	suffix := ""
	if s, ok := argAt(args, 1).(*ast.String); ok {
		suffix = s.Value
	} else if id, ok := argAt(args, 1).(*ast.Ident); ok {
		suffix = id.Name
	}
	return &ast.Unit{UnitPos: u.UnitPos, Value: u.Value, Suffix: suffix}, nil
}

func fnType(args []ast.Value) (ast.Value, error) {
	v := argAt(args, 0)
	if v == nil {
		return &ast.String{Value: "null"}, nil
	}
	return &ast.String{Value: typeOf(v)}, nil
}

func fnToString(args []ast.Value) (ast.Value, error) {
	return &ast.String{Value: stringifyValue(argAt(args, 0))}, nil
}

func fnToNumber(args []ast.Value) (ast.Value, error) {
	v := argAt(args, 0)
	if u, ok := v.(*ast.Unit); ok {
		return u, nil
	}
	s := stringifyValue(v)
	u, err := ast.NewUnit(token.NoPos, s, "")
	if err != nil {
		return nil, errors.NewTypeError(token.NoPos, "to-number: "+s+" is not numeric")
	}
	return u, nil
}

func unitFromFloat(f float64) *ast.Unit {
	u, _ := ast.NewUnit(token.NoPos, fmt.Sprintf("%g", f), "")
	return u
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// rgbToHSL converts 8-bit RGB channels to HSL (hue in degrees [0,360),
// saturation/lightness as percentages [0,100]).
func rgbToHSL(r, g, b uint8) (h, s, l float64) {
	rf, gf, bf := float64(r)/255, float64(g)/255, float64(b)/255
	max := math.Max(rf, math.Max(gf, bf))
	min := math.Min(rf, math.Min(gf, bf))
	l = (max + min) / 2

	if max == min {
		return 0, 0, l * 100
	}

	d := max - min
	if l > 0.5 {
		s = d / (2 - max - min)
	} else {
		s = d / (max + min)
	}

	switch max {
	case rf:
		h = (gf - bf) / d
		if gf < bf {
			h += 6
		}
	case gf:
		h = (bf-rf)/d + 2
	case bf:
		h = (rf-gf)/d + 4
	}
	h *= 60

	return h, s * 100, l * 100
}

// hslToRGB is rgbToHSL's inverse, used after adjusting a channel.
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	h = math.Mod(h, 360) / 360
	s /= 100
	l /= 100

	if s == 0 {
		v := uint8(math.Round(l * 255))
		return v, v, v
	}

	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q

	r = uint8(math.Round(hueToRGB(p, q, h+1.0/3) * 255))
	g = uint8(math.Round(hueToRGB(p, q, h) * 255))
	b = uint8(math.Round(hueToRGB(p, q, h-1.0/3) * 255))
	return r, g, b
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 1.0/2:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	default:
		return p
	}
}
