package tool

import (
	"context"
	"math"
	"strings"
	"testing"
)

func TestDailyVolatility(t *testing.T) {
	// Constant price has zero volatility
	if v := dailyVolatility([]float64{100, 100, 100}); v != 0 {
		t.Errorf("flat series volatility = %v", v)
	}
	// Alternating +10% / ~-9.1% has nonzero spread
	v := dailyVolatility([]float64{100, 110, 100, 110})
	if v <= 0 {
		t.Errorf("alternating series volatility = %v", v)
	}
	// Too few points
	if v := dailyVolatility([]float64{100}); v != 0 {
		t.Errorf("single point volatility = %v", v)
	}
}

func TestDailyVolatilityValue(t *testing.T) {
	// Two changes: +10% and -10%; mean 0, stddev 10
	closes := []float64{100, 110, 99}
	v := dailyVolatility(closes)
	change2 := (99.0 - 110.0) / 110.0 * 100
	mean := (10 + change2) / 2
	want := math.Sqrt(((10-mean)*(10-mean) + (change2-mean)*(change2-mean)) / 2)
	if math.Abs(v-want) > 1e-9 {
		t.Errorf("volatility = %v, want %v", v, want)
	}
}

func TestFilterPositive(t *testing.T) {
	got := filterPositive([]float64{0, 12.5, 0, 13, -1})
	if len(got) != 2 || got[0] != 12.5 || got[1] != 13 {
		t.Errorf("filterPositive = %v", got)
	}
}

func TestFormatFinancialReport(t *testing.T) {
	metrics := map[string]float64{
		"current_price": 250.10,
		"start_price":   200.00,
		"pct_change":    25.05,
		"period_high":   260.00,
		"period_low":    195.00,
		"volatility":    2.1,
	}
	report := formatFinancialReport("Tesla, Inc.", "TSLA", "1y", metrics)

	for _, want := range []string{
		"Tesla, Inc. (TSLA)",
		"$250.10",
		"+25.05%",
		"gained 25.05%",
		"moderate volatility",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q", want)
		}
	}

	metrics["pct_change"] = -5.0
	metrics["volatility"] = 0.8
	report = formatFinancialReport("Tesla, Inc.", "TSLA", "1y", metrics)
	if !strings.Contains(report, "lost 5.00%") || !strings.Contains(report, "low volatility") {
		t.Errorf("negative report: %s", report)
	}
}

func TestFinanceInvalidPeriod(t *testing.T) {
	tool := NewFinanceTool(0)
	_, err := tool.Execute(context.Background(), map[string]any{
		"symbol": "TSLA",
		"period": "fortnight",
	})
	if err == nil {
		t.Fatal("expected invalid period error")
	}
	if !strings.Contains(err.Error(), "invalid period") {
		t.Errorf("error = %v", err)
	}
}

func TestAssetCompareNeedsTwoSymbols(t *testing.T) {
	tool := NewAssetCompareTool(0)
	_, err := tool.Execute(context.Background(), map[string]any{
		"symbols": []any{"TSLA"},
	})
	if err == nil {
		t.Fatal("expected error for single symbol")
	}
	if !strings.Contains(err.Error(), "at least 2 symbols") {
		t.Errorf("error = %v", err)
	}
}
