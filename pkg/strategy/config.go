package strategy

// Config is the typed configuration of one strategy. Each implementation
// pairs a parameter struct with the shared Logics.
type Config interface {
	Key() Key
	Settings() Logics
	isConfig()
}

// Logics holds exit rules shared by every strategy. EntryDiff is only used by
// the higher order Kalman variants.
type Logics struct {
	TPPct            float64  `json:"tpPct" validate:"gte=0"`
	SLPct            float64  `json:"slPct" validate:"gte=0"`
	MaxBarsTimeframe string   `json:"maxBarsTimeframe" validate:"required,oneof=1m 5m 15m 1h 4h 1d"`
	MaxBars          int      `json:"maxBars" validate:"gte=1"`
	EntryDiff        *float64 `json:"entryDiff,omitempty" validate:"omitempty,gte=0"`
}

// MovingAverageParams builds one moving average per period for every
// timeframe.
type MovingAverageParams struct {
	Timeframes []string `json:"timeframes" validate:"min=1,dive,required"`
	Periods    []int    `json:"periods" validate:"min=1,dive,gte=1"`
}

type MovingAverage struct {
	Parameters MovingAverageParams `json:"parameters"`
	Logics     Logics              `json:"logics"`
}

func (MovingAverage) Key() Key           { return KeyMovingAverage }
func (c MovingAverage) Settings() Logics { return c.Logics }
func (MovingAverage) isConfig()          {}

type BollingerBandsParams struct {
	Timeframes []string `json:"timeframes" validate:"min=1,dive,required"`
	Std        float64  `json:"std" validate:"gt=0"`
	Window     int      `json:"window" validate:"gte=1"`
}

type BollingerBands struct {
	Parameters BollingerBandsParams `json:"parameters"`
	Logics     Logics               `json:"logics"`
}

func (BollingerBands) Key() Key           { return KeyBollingerBands }
func (c BollingerBands) Settings() Logics { return c.Logics }
func (BollingerBands) isConfig()          {}

// OscillatorParams is shared by RSI and ADX.
type OscillatorParams struct {
	Timeframe string `json:"timeframe" validate:"required,oneof=1m 5m 15m 1h 4h 1d"`
	Period    int    `json:"period" validate:"gte=1"`
}

type RSI struct {
	Parameters OscillatorParams `json:"parameters"`
	Logics     Logics           `json:"logics"`
}

func (RSI) Key() Key           { return KeyRSI }
func (c RSI) Settings() Logics { return c.Logics }
func (RSI) isConfig()          {}

type ADX struct {
	Parameters OscillatorParams `json:"parameters"`
	Logics     Logics           `json:"logics"`
}

func (ADX) Key() Key           { return KeyADX }
func (c ADX) Settings() Logics { return c.Logics }
func (ADX) isConfig()          {}

// KalmanType selects how the filter treats its history.
type KalmanType string

const (
	KalmanPersistent KalmanType = "persistent"
	KalmanWindow     KalmanType = "window"
	KalmanDecay      KalmanType = "decay"
)

// KalmanParams covers all three filter orders. Fields that only apply to a
// given type or order are pointers so absent values stay absent in trees.
type KalmanParams struct {
	Timeframe             string     `json:"timeframe" validate:"required,oneof=1m 5m 15m 1h 4h 1d"`
	KalmanType            KalmanType `json:"kalmanType" validate:"required,oneof=persistent window decay"`
	Window                *int       `json:"window,omitempty" validate:"omitempty,gte=1"`
	Q                     float64    `json:"Q" validate:"gte=0"`
	R                     float64    `json:"R" validate:"gte=0"`
	PredictionHorizon     *int       `json:"predictionHorizon,omitempty" validate:"omitempty,gte=1"`
	PartialUpdate         *bool      `json:"partialUpdate,omitempty"`
	PartialUpdateDtAdjust *bool      `json:"partialUpdateDtAdjust,omitempty"`
	DecayX                *float64   `json:"decay_x,omitempty" validate:"omitempty,gte=0,lte=1"`
	DecayP                *float64   `json:"decay_P,omitempty" validate:"omitempty,gte=0,lte=1"`
	DecayQ                *float64   `json:"decay_Q,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// Kalman is the configuration of every Kalman filter order; Order records
// which one.
type Kalman struct {
	Order      Key          `json:"-"`
	Parameters KalmanParams `json:"parameters"`
	Logics     Logics       `json:"logics"`
}

func (c Kalman) Key() Key         { return c.Order }
func (c Kalman) Settings() Logics { return c.Logics }
func (Kalman) isConfig()          {}

// Common holds settings that apply regardless of the selected strategy.
type Common struct {
	PriceCheckingTimeframe string `json:"priceCheckingTimeframe" validate:"required,oneof=1m 5m 15m 1h 4h 1d"`
	ChartTimeframe         string `json:"chartTimeframe" validate:"required,oneof=1m 5m 15m 1h 4h 1d"`
	TrendFilterEnabled     bool   `json:"trendFilterEnabled"`
	WatcherHistoryHours    int    `json:"watcherHistoryHours" validate:"gte=1"`
}
