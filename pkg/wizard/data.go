package wizard

import "fmt"

// DataConfig selects the market data a simulation runs over.
type DataConfig struct {
	Market    string `json:"market"`
	Symbol    string `json:"symbol"`
	Timeframe string `json:"timeframe"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// DefaultData is the data configuration at start-up.
func DefaultData() DataConfig {
	return DataConfig{Market: "crypto", Symbol: "BTC/USDT", Timeframe: "1m"}
}

// CanAdvance reports whether both dates are filled in. No other field gates
// the first step.
func (d DataConfig) CanAdvance() bool {
	return d.StartDate != "" && d.EndDate != ""
}

// Tree returns the configuration as a value tree.
func (d DataConfig) Tree() map[string]any {
	return map[string]any{
		"market":    d.Market,
		"symbol":    d.Symbol,
		"timeframe": d.Timeframe,
		"startDate": d.StartDate,
		"endDate":   d.EndDate,
	}
}

// With returns a copy with key set to value.
func (d DataConfig) With(key, value string) (DataConfig, error) {
	switch key {
	case "market":
		d.Market = value
	case "symbol":
		d.Symbol = value
	case "timeframe":
		d.Timeframe = value
	case "startDate":
		d.StartDate = value
	case "endDate":
		d.EndDate = value
	default:
		return d, fmt.Errorf("%w: %q", ErrUnknownDataField, key)
	}
	return d, nil
}
