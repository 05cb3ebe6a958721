// Package color derives display colours for library cards.
package color

import (
	"fmt"
	"strings"
)

// ForGenre returns a stable hex accent for a genre label. Labels differing only
// in case or surrounding space share a colour; an empty label is slate grey.
func ForGenre(label string) string {
	key := strings.ToLower(strings.TrimSpace(label))
	if key == "" {
		return "#64748B"
	}
	return fromKey(key, 0.55, 0.55)
}

// ForKey returns a stable, muted hex colour for any string.
func ForKey(key string) string {
	return fromKey(key, 0.4, 0.65)
}

func fromKey(key string, s, l float64) string {
	h := 0
	for _, c := range key {
		h = 31*h + int(c)
	}
	if h < 0 {
		h = -h
	}
	r, g, b := hslToRGB(float64(h%360), s, l)
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// hslToRGB converts h in [0,360) and s, l in [0,1] to 8-bit RGB.
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	h /= 360.0
	if s == 0 {
		v := uint8(l * 255)
		return v, v, v
	}

	q := l + s - l*s
	if l < 0.5 {
		q = l * (1 + s)
	}
	p := 2*l - q

	return uint8(hueToRGB(p, q, h+1.0/3.0) * 255),
		uint8(hueToRGB(p, q, h) * 255),
		uint8(hueToRGB(p, q, h-1.0/3.0) * 255)
}

func hueToRGB(p, q, t float64) float64 {
	switch {
	case t < 0:
		t++
	case t > 1:
		t--
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	default:
		return p
	}
}
