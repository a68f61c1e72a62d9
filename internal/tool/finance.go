package tool

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/jsonschema-go/jsonschema"

	"pkdindustries/scry/internal/chart"
	"pkdindustries/scry/internal/core"
)

const yahooChartURL = "https://query1.finance.yahoo.com/v8/finance/chart/{symbol}"

var validPeriods = map[string]bool{
	"1d": true, "5d": true, "1mo": true, "3mo": true, "6mo": true,
	"1y": true, "2y": true, "5y": true, "10y": true, "ytd": true, "max": true,
}

// FinancialResult is the payload of a get_financial_data call
type FinancialResult struct {
	Symbol          string             `json:"symbol"`
	CompanyName     string             `json:"company_name"`
	Period          string             `json:"period"`
	Metrics         map[string]float64 `json:"metrics"`
	FormattedReport string             `json:"formatted_report"`
}

// AssetPerformance is one ranked entry in an asset comparison
type AssetPerformance struct {
	Name        string             `json:"name"`
	Symbol      string             `json:"symbol"`
	Performance float64            `json:"performance"`
	Metrics     map[string]float64 `json:"metrics"`
}

// AssetComparisonResult is the payload of a compare_financial_assets call
type AssetComparisonResult struct {
	Period          string             `json:"period"`
	ComparisonData  []AssetPerformance `json:"comparison_data"`
	FormattedReport string             `json:"formatted_report"`
	ChartData       *ChartResult       `json:"chart_data,omitempty"`
	HasChart        bool               `json:"has_chart"`
	AnalysisSummary string             `json:"analysis_summary"`
}

// yahooChartResponse covers the fields we use from the v8 chart endpoint
type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				LongName           string  `json:"longName"`
				ShortName          string  `json:"shortName"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Indicators struct {
				Quote []struct {
					Close []float64 `json:"close"`
					High  []float64 `json:"high"`
					Low   []float64 `json:"low"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// yahooClient fetches historical prices from the public chart endpoint
type yahooClient struct {
	client *resty.Client
}

func newYahooClient(timeout time.Duration) *yahooClient {
	return &yahooClient{
		client: resty.New().
			SetTimeout(timeout).
			SetHeader("User-Agent", "scry/1.0"),
	}
}

func (y *yahooClient) fetch(ctx context.Context, symbol, period, dataType string) (*FinancialResult, error) {
	if strings.EqualFold(dataType, "crypto") && !strings.Contains(strings.ToUpper(symbol), "-USD") {
		symbol = strings.ToUpper(symbol) + "-USD"
	}
	if !validPeriods[period] {
		return nil, fmt.Errorf("invalid period %q", period)
	}

	var decoded yahooChartResponse
	resp, err := y.client.R().
		SetContext(ctx).
		SetPathParam("symbol", symbol).
		SetQueryParams(map[string]string{
			"range":    period,
			"interval": "1d",
		}).
		SetResult(&decoded).
		Get(yahooChartURL)
	if err != nil {
		return nil, fmt.Errorf("financial data fetch failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("financial data fetch failed: status %d", resp.StatusCode())
	}
	if decoded.Chart.Error != nil {
		return nil, fmt.Errorf("financial data fetch failed: %s", decoded.Chart.Error.Description)
	}
	if len(decoded.Chart.Result) == 0 || len(decoded.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no data found for symbol %s", symbol)
	}

	result := decoded.Chart.Result[0]
	closes := filterPositive(result.Indicators.Quote[0].Close)
	if len(closes) == 0 {
		return nil, fmt.Errorf("no data found for symbol %s", symbol)
	}

	name := result.Meta.LongName
	if name == "" {
		name = result.Meta.ShortName
	}
	if name == "" {
		name = symbol
	}

	startPrice := closes[0]
	currentPrice := result.Meta.RegularMarketPrice
	if currentPrice == 0 {
		currentPrice = closes[len(closes)-1]
	}
	pctChange := (currentPrice - startPrice) / startPrice * 100
	high, low := closes[0], closes[0]
	for _, c := range closes {
		high = math.Max(high, c)
		low = math.Min(low, c)
	}
	volatility := dailyVolatility(closes)

	metrics := map[string]float64{
		"current_price": currentPrice,
		"start_price":   startPrice,
		"pct_change":    pctChange,
		"period_high":   high,
		"period_low":    low,
		"volatility":    volatility,
	}

	return &FinancialResult{
		Symbol:          symbol,
		CompanyName:     name,
		Period:          period,
		Metrics:         metrics,
		FormattedReport: formatFinancialReport(name, symbol, period, metrics),
	}, nil
}

func filterPositive(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v > 0 {
			out = append(out, v)
		}
	}
	return out
}

// dailyVolatility is the standard deviation of daily percentage changes
func dailyVolatility(closes []float64) float64 {
	if len(closes) < 2 {
		return 0
	}
	changes := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		changes = append(changes, (closes[i]-closes[i-1])/closes[i-1]*100)
	}
	mean := 0.0
	for _, c := range changes {
		mean += c
	}
	mean /= float64(len(changes))
	variance := 0.0
	for _, c := range changes {
		variance += (c - mean) * (c - mean)
	}
	return math.Sqrt(variance / float64(len(changes)))
}

func formatFinancialReport(name, symbol, period string, m map[string]float64) string {
	direction := "gained"
	if m["pct_change"] < 0 {
		direction = "lost"
	}
	volatility := "low"
	if m["volatility"] > 3 {
		volatility = "high"
	} else if m["volatility"] > 1.5 {
		volatility = "moderate"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## %s (%s) - Financial Analysis\n\n", name, symbol)
	fmt.Fprintf(&b, "| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Current Price | $%.2f |\n", m["current_price"])
	fmt.Fprintf(&b, "| Start Price (%s) | $%.2f |\n", period, m["start_price"])
	fmt.Fprintf(&b, "| Change | %+.2f%% |\n", m["pct_change"])
	fmt.Fprintf(&b, "| Period High | $%.2f |\n", m["period_high"])
	fmt.Fprintf(&b, "| Period Low | $%.2f |\n", m["period_low"])
	fmt.Fprintf(&b, "| Volatility | %.2f%% |\n\n", m["volatility"])
	fmt.Fprintf(&b, "Over the past %s, %s has %s %.2f%% in value, trading between $%.2f and $%.2f with %s volatility.",
		period, name, direction, math.Abs(m["pct_change"]), m["period_low"], m["period_high"], volatility)
	return b.String()
}

// FinanceTool fetches historical market data for one symbol
type FinanceTool struct {
	yahoo *yahooClient
}

func NewFinanceTool(timeout time.Duration) *FinanceTool {
	return &FinanceTool{yahoo: newYahooClient(timeout)}
}

func (t *FinanceTool) GetName() string {
	return "get_financial_data"
}

func (t *FinanceTool) GetSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Title:       "get_financial_data",
		Description: "Get historical market data and performance metrics for a stock or crypto symbol",
		Type:        "object",
		Properties: map[string]*jsonschema.Schema{
			"symbol": {
				Type:        "string",
				Description: "Stock/crypto symbol (e.g., 'TSLA', 'BTC-USD')",
			},
			"period": {
				Type:        "string",
				Description: "Time period ('1d', '5d', '1mo', '3mo', '6mo', '1y', '2y', '5y', '10y', 'ytd', 'max')",
			},
			"data_type": {
				Type:        "string",
				Description: "Asset type, 'stock' or 'crypto'",
			},
		},
		Required: []string{"symbol"},
	}
}

func (t *FinanceTool) GetDefaults() map[string]any {
	return map[string]any{"period": "1y", "data_type": "stock"}
}

func (t *FinanceTool) Execute(ctx context.Context, args map[string]any) (any, error) {
	symbol, err := stringArg(args, "symbol")
	if err != nil {
		return nil, err
	}
	period, _ := args["period"].(string)
	dataType, _ := args["data_type"].(string)

	return t.yahoo.fetch(ctx, symbol, period, dataType)
}

// AssetCompareTool ranks multiple symbols by performance over a period
type AssetCompareTool struct {
	yahoo *yahooClient
}

func NewAssetCompareTool(timeout time.Duration) *AssetCompareTool {
	return &AssetCompareTool{yahoo: newYahooClient(timeout)}
}

func (t *AssetCompareTool) GetName() string {
	return "compare_financial_assets"
}

func (t *AssetCompareTool) GetSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Title:       "compare_financial_assets",
		Description: "Compare performance of multiple stocks or crypto assets over a time period",
		Type:        "object",
		Properties: map[string]*jsonschema.Schema{
			"symbols": {
				Type:        "array",
				Description: "List of symbols to compare",
				Items: &jsonschema.Schema{
					Type: "string",
				},
			},
			"period": {
				Type:        "string",
				Description: "Time period for comparison",
			},
			"data_types": {
				Type:        "array",
				Description: "Asset type for each symbol (defaults to 'stock' for all)",
				Items: &jsonschema.Schema{
					Type: "string",
				},
			},
		},
		Required: []string{"symbols"},
	}
}

func (t *AssetCompareTool) GetDefaults() map[string]any {
	return map[string]any{"period": "1y"}
}

func (t *AssetCompareTool) Execute(ctx context.Context, args map[string]any) (any, error) {
	symbols, err := stringSliceArg(args, "symbols")
	if err != nil {
		return nil, err
	}
	if len(symbols) < 2 {
		return nil, fmt.Errorf("need at least 2 symbols for comparison")
	}
	period, _ := args["period"].(string)

	dataTypes, _ := stringSliceArg(args, "data_types")
	if len(dataTypes) != len(symbols) {
		dataTypes = make([]string, len(symbols))
		for i := range dataTypes {
			dataTypes[i] = "stock"
		}
	}

	var assets []AssetPerformance
	for i, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := t.yahoo.fetch(ctx, symbol, period, dataTypes[i])
		if err != nil {
			core.GetLogger().Warnw("Skipping symbol in comparison", "symbol", symbol, "error", err)
			continue
		}
		assets = append(assets, AssetPerformance{
			Name:        fmt.Sprintf("%s (%s)", data.CompanyName, data.Symbol),
			Symbol:      data.Symbol,
			Performance: data.Metrics["pct_change"],
			Metrics:     data.Metrics,
		})
	}
	if len(assets) < 2 {
		return nil, fmt.Errorf("could not fetch data for enough symbols")
	}

	sort.Slice(assets, func(i, j int) bool {
		return assets[i].Performance > assets[j].Performance
	})

	var b strings.Builder
	fmt.Fprintf(&b, "## Financial Assets Comparison (%s)\n\n", period)
	fmt.Fprintf(&b, "| Rank | Asset | Performance | Price | Volatility |\n|---|---|---|---|---|\n")
	labels := make([]string, len(assets))
	values := make([]float64, len(assets))
	for i, asset := range assets {
		fmt.Fprintf(&b, "| %d | %s | %+.2f%% | $%.2f | %.2f%% |\n",
			i+1, asset.Name, asset.Performance, asset.Metrics["current_price"], asset.Metrics["volatility"])
		labels[i] = asset.Symbol
		values[i] = asset.Performance
	}

	result := AssetComparisonResult{
		Period:          period,
		ComparisonData:  assets,
		FormattedReport: b.String(),
		AnalysisSummary: fmt.Sprintf("Compared %d assets over %s", len(assets), period),
	}

	chartResult, err := newChartResult(
		fmt.Sprintf("Asset Performance %% (%s)", period),
		labels,
		[]chart.Series{{Name: "Performance %", Values: values}},
	)
	if err != nil {
		core.GetLogger().Warnw("Asset comparison chart creation failed", "error", err)
	} else {
		result.ChartData = chartResult
		result.HasChart = true
	}

	return result, nil
}
