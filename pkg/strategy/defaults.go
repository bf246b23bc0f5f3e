package strategy

import "fmt"

func ptr[T any](v T) *T { return &v }

func defaultLogics() Logics {
	return Logics{TPPct: 0.01, SLPct: 0.01, MaxBarsTimeframe: "15m", MaxBars: 6}
}

func entryLogics() Logics {
	l := defaultLogics()
	l.EntryDiff = ptr(0.005)
	return l
}

// Default returns a fresh default configuration for key.
func Default(key Key) (Config, error) {
	switch key {
	case KeyMovingAverage:
		return MovingAverage{
			Parameters: MovingAverageParams{Timeframes: []string{"15m"}, Periods: []int{3, 5, 20}},
			Logics:     defaultLogics(),
		}, nil
	case KeyBollingerBands:
		return BollingerBands{
			Parameters: BollingerBandsParams{Timeframes: []string{"15m"}, Std: 2.0, Window: 20},
			Logics:     defaultLogics(),
		}, nil
	case KeyRSI:
		return RSI{Parameters: OscillatorParams{Timeframe: "15m", Period: 14}, Logics: defaultLogics()}, nil
	case KeyADX:
		return ADX{Parameters: OscillatorParams{Timeframe: "15m", Period: 14}, Logics: defaultLogics()}, nil
	case KeyKalman1st:
		return Kalman{
			Order: KeyKalman1st,
			Parameters: KalmanParams{
				Timeframe:  "15m",
				KalmanType: KalmanPersistent,
				Q:          0.01,
				R:          3.0,
			},
			Logics: defaultLogics(),
		}, nil
	case KeyKalman2nd:
		return Kalman{
			Order: KeyKalman2nd,
			Parameters: KalmanParams{
				Timeframe:             "15m",
				KalmanType:            KalmanWindow,
				Window:                ptr(20),
				Q:                     0.01,
				R:                     0.005,
				PredictionHorizon:     ptr(4),
				PartialUpdate:         ptr(false),
				PartialUpdateDtAdjust: ptr(true),
				DecayX:                ptr(0.98),
				DecayP:                ptr(0.95),
				DecayQ:                ptr(1.0),
			},
			Logics: entryLogics(),
		}, nil
	case KeyKalman3rd:
		return Kalman{
			Order: KeyKalman3rd,
			Parameters: KalmanParams{
				Timeframe:             "15m",
				KalmanType:            KalmanPersistent,
				Q:                     0.001,
				R:                     0.005,
				PredictionHorizon:     ptr(4),
				PartialUpdate:         ptr(false),
				PartialUpdateDtAdjust: ptr(true),
				DecayX:                ptr(0.98),
				DecayP:                ptr(0.95),
				DecayQ:                ptr(1.0),
			},
			Logics: entryLogics(),
		}, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownStrategy, key)
}

// MustDefault is Default for keys known at compile time. It panics on an
// unknown key.
func MustDefault(key Key) Config {
	cfg, err := Default(key)
	if err != nil {
		panic(err)
	}
	return cfg
}

// DefaultCommon returns the common settings used before any edit.
func DefaultCommon() Common {
	return Common{
		PriceCheckingTimeframe: "1m",
		ChartTimeframe:         "15m",
		TrendFilterEnabled:     false,
		WatcherHistoryHours:    48,
	}
}
