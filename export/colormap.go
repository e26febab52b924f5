package export

import (
	"fmt"
	"math"
)

// UndefinedColor is used for nodes whose efficiency is undefined.
const UndefinedColor = "#bfbfbf"

// viridis holds the colormap sampled at 0, 0.1, ..., 1.
var viridis = [11][3]float64{
	{0x44, 0x01, 0x54},
	{0x48, 0x24, 0x75},
	{0x41, 0x44, 0x87},
	{0x35, 0x5f, 0x8d},
	{0x2a, 0x78, 0x8e},
	{0x21, 0x91, 0x8c},
	{0x22, 0xa8, 0x84},
	{0x44, 0xbf, 0x70},
	{0x7a, 0xd1, 0x51},
	{0xbd, 0xdf, 0x26},
	{0xfd, 0xe7, 0x25},
}

// EfficiencyHex maps an efficiency to a "#rrggbb" colour on a viridis scale.
// Values outside [0,1] are clamped; undefined or NaN input yields
// UndefinedColor.
func EfficiencyHex(e float64, defined bool) string {
	if !defined || math.IsNaN(e) {
		return UndefinedColor
	}
	e = math.Max(0, math.Min(1, e))

	pos := e * float64(len(viridis)-1)
	i := int(pos)
	if i >= len(viridis)-1 {
		i = len(viridis) - 2
	}
	frac := pos - float64(i)
	a, b := viridis[i], viridis[i+1]

	var rgb [3]int
	for c := range rgb {
		rgb[c] = int(math.Round(a[c] + (b[c]-a[c])*frac))
	}
	return fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2])
}
