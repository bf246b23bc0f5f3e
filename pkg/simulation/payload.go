package simulation

// Data is the market/data slice of a simulation request.
type Data struct {
	Market    string `json:"market" jsonschema:"enum=crypto,enum=forex,enum=stock"`
	Symbol    string `json:"symbol" jsonschema:"example=BTC/USDT"`
	Timeframe string `json:"timeframe" jsonschema:"enum=1m,enum=5m,enum=15m,enum=1h,enum=1d,enum=1w,enum=1M"`
	StartDate string `json:"startDate" jsonschema:"minLength=1,example=2024-01-01"`
	EndDate   string `json:"endDate" jsonschema:"minLength=1,example=2024-06-01"`
}

// Strategy is the selected strategy with its value trees.
type Strategy struct {
	Key        string         `json:"key" jsonschema:"enum=ma,enum=bb,enum=rsi,enum=adx,enum=kalman1st,enum=kalman2nd,enum=kalman3rd"`
	Parameters map[string]any `json:"parameters"`
	Logics     map[string]any `json:"logics"`
	Common     map[string]any `json:"common"`
}

// Payload is the JSON body posted to start a simulation.
type Payload struct {
	Data     Data     `json:"data"`
	Strategy Strategy `json:"strategy"`
}

// Result is what a successful submission returned.
type Result struct {
	StatusCode int
	RequestID  string
	ID         string
	Status     string
	Body       map[string]any
}
