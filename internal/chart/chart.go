// Package chart renders grouped bar charts to PNG. It exists so the analysis
// tools can attach a visual artifact to their results without dragging in a
// plotting framework.
package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"github.com/mazznoer/colorgrad"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Series is one named set of values, one value per category
type Series struct {
	Name   string
	Values []float64
}

const (
	width        = 800
	height       = 500
	marginLeft   = 70
	marginRight  = 30
	marginTop    = 60
	marginBottom = 90
)

var (
	background = color.RGBA{255, 255, 255, 255}
	axisColor  = color.RGBA{60, 60, 60, 255}
	gridColor  = color.RGBA{225, 225, 225, 255}
	textColor  = color.RGBA{30, 30, 30, 255}
)

// RenderGroupedBars draws one group of bars per category, one bar per series
// within each group, and returns the encoded PNG.
func RenderGroupedBars(title string, categories []string, series []Series) ([]byte, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("no categories to chart")
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("no series to chart")
	}
	for _, s := range series {
		if len(s.Values) != len(categories) {
			return nil, fmt.Errorf("series %q has %d values for %d categories", s.Name, len(s.Values), len(categories))
		}
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{background}, image.Point{}, draw.Src)

	// Value range always spans zero so negative values get plot area below
	// the baseline
	maxVal, minVal := 0.0, 0.0
	for _, s := range series {
		for _, v := range s.Values {
			if v > maxVal {
				maxVal = v
			}
			if v < minVal {
				minVal = v
			}
		}
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}
	span := maxVal - minVal

	plotW := width - marginLeft - marginRight
	plotH := height - marginTop - marginBottom

	// Horizontal gridlines with value labels
	const gridSteps = 5
	for i := 0; i <= gridSteps; i++ {
		y := marginTop + plotH - i*plotH/gridSteps
		for x := marginLeft; x < width-marginRight; x++ {
			img.Set(x, y, gridColor)
		}
		label := formatValue(minVal + span*float64(i)/gridSteps)
		drawText(img, marginLeft-8-textWidth(label), y+4, label)
	}

	// Axes
	for y := marginTop; y <= marginTop+plotH; y++ {
		img.Set(marginLeft, y, axisColor)
	}
	for x := marginLeft; x <= width-marginRight; x++ {
		img.Set(x, marginTop+plotH, axisColor)
	}

	palette := seriesPalette(len(series))

	// Zero baseline; coincides with the bottom axis when nothing is negative
	baseY := marginTop + plotH - int((0-minVal)/span*float64(plotH))
	if minVal < 0 {
		for x := marginLeft; x <= width-marginRight; x++ {
			img.Set(x, baseY, axisColor)
		}
	}

	// Bars grow up from the baseline for positive values, down for negative
	groupW := plotW / len(categories)
	barW := int(float64(groupW) * 0.8 / float64(len(series)))
	if barW < 2 {
		barW = 2
	}
	for ci, cat := range categories {
		groupLeft := marginLeft + ci*groupW + groupW/10
		for si, s := range series {
			v := s.Values[ci]
			yv := marginTop + plotH - int((v-minVal)/span*float64(plotH))
			x0 := groupLeft + si*barW
			if v >= 0 {
				fillRect(img, x0, yv, x0+barW-1, baseY-1, palette[si])
			} else {
				fillRect(img, x0, baseY+1, x0+barW-1, yv, palette[si])
			}
		}
		drawText(img, marginLeft+ci*groupW+(groupW-textWidth(cat))/2, marginTop+plotH+20, truncate(cat, 18))
	}

	// Title
	drawText(img, (width-textWidth(title))/2, marginTop/2+4, title)

	// Legend, one entry per series, bottom edge
	legendY := height - marginBottom/2
	legendX := marginLeft
	for si, s := range series {
		fillRect(img, legendX, legendY-8, legendX+11, legendY+3, palette[si])
		name := truncate(s.Name, 24)
		drawText(img, legendX+16, legendY+2, name)
		legendX += 16 + textWidth(name) + 24
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("png encode: %w", err)
	}
	return buf.Bytes(), nil
}

// seriesPalette samples distinct colors along a gradient
func seriesPalette(n int) []color.RGBA {
	grad, err := colorgrad.NewGradient().
		HtmlColors("#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd").
		Build()
	if err != nil {
		grad = colorgrad.Rainbow()
	}

	colors := grad.Colors(uint(max(n, 2)))
	palette := make([]color.RGBA, n)
	for i := range palette {
		r, g, b, a := colors[i].RGBA255()
		palette[i] = color.RGBA{r, g, b, a}
	}
	return palette
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			img.Set(x, y, c)
		}
	}
}

func drawText(img *image.RGBA, x, y int, s string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{textColor},
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func textWidth(s string) int {
	return len(s) * basicfont.Face7x13.Advance
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func formatValue(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e6 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}
