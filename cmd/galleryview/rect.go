package main

import (
	"image"
	"math"
)

// rectOf returns the integer rectangle covering (x, y, w, h).
func rectOf(x, y, w, h float64) image.Rectangle {
	return image.Rect(
		int(math.Floor(x)), int(math.Floor(y)),
		int(math.Ceil(x+w)), int(math.Ceil(y+h)),
	)
}
