package chart

import (
	"bytes"
	"image"
	"image/png"
	"testing"
)

// pixelSet reports whether a pixel differs from the white background
func pixelSet(img image.Image, x, y int) bool {
	r, g, b, _ := img.At(x, y).RGBA()
	return r != 0xffff || g != 0xffff || b != 0xffff
}

func TestRenderGroupedBars(t *testing.T) {
	data, err := RenderGroupedBars("Benchmark", []string{"accuracy", "speed"}, []Series{
		{Name: "LSTM", Values: []float64{88, 120}},
		{Name: "Transformer", Values: []float64{94, 180}},
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a valid PNG: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 800 || bounds.Dy() != 500 {
		t.Errorf("canvas = %dx%d, want 800x500", bounds.Dx(), bounds.Dy())
	}
}

func TestRenderGroupedBarsZeroValues(t *testing.T) {
	// All-zero data still renders instead of dividing by zero
	data, err := RenderGroupedBars("Empty", []string{"a"}, []Series{
		{Name: "s", Values: []float64{0}},
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("no image bytes")
	}
}

func TestRenderGroupedBarsNegativeValues(t *testing.T) {
	// An all-negative series still produces visible bars, drawn below the
	// zero baseline instead of vanishing
	data, err := RenderGroupedBars("Performance %", []string{"1y"}, []Series{
		{Name: "TSLA", Values: []float64{-12}},
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a valid PNG: %v", err)
	}
	if !pixelSet(img, 300, 220) {
		t.Error("no bar drawn for a negative value")
	}
}

func TestRenderGroupedBarsMixedSigns(t *testing.T) {
	// Values 10 and -10 share the plot; the positive bar sits above the
	// baseline and the negative bar below it
	data, err := RenderGroupedBars("Mixed", []string{"up", "down"}, []Series{
		{Name: "s", Values: []float64{10, -10}},
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a valid PNG: %v", err)
	}
	if !pixelSet(img, 200, 150) {
		t.Error("positive bar missing above the baseline")
	}
	if !pixelSet(img, 500, 300) {
		t.Error("negative bar missing below the baseline")
	}
	if pixelSet(img, 500, 150) {
		t.Error("negative value drew above the baseline")
	}
}

func TestRenderGroupedBarsValidation(t *testing.T) {
	if _, err := RenderGroupedBars("t", nil, []Series{{Name: "s", Values: nil}}); err == nil {
		t.Error("expected error for no categories")
	}
	if _, err := RenderGroupedBars("t", []string{"a"}, nil); err == nil {
		t.Error("expected error for no series")
	}
	if _, err := RenderGroupedBars("t", []string{"a", "b"}, []Series{
		{Name: "s", Values: []float64{1}},
	}); err == nil {
		t.Error("expected error for value/category mismatch")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 18); got != "short" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("a very long category label", 10); got != "a very ..." {
		t.Errorf("truncate = %q", got)
	}
}

func TestFormatValue(t *testing.T) {
	if got := formatValue(120); got != "120" {
		t.Errorf("formatValue(120) = %q", got)
	}
	if got := formatValue(76.5); got != "76.5" {
		t.Errorf("formatValue(76.5) = %q", got)
	}
}
