package wizard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-strategy-wizard/pkg/form"
	"github.com/goliatone/go-strategy-wizard/pkg/simulation"
	"github.com/goliatone/go-strategy-wizard/pkg/strategy"
)

// Submitter sends the final payload. *simulation.Client implements it.
type Submitter interface {
	Submit(ctx context.Context, p simulation.Payload) (simulation.Result, error)
}

// Observer receives wizard events, typically to record metrics.
type Observer interface {
	StepAdvanced(from, to Step)
	StrategySelected(key strategy.Key)
	SubmissionFinished(outcome string, elapsed time.Duration)
}

// Submission outcomes reported to the Observer.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

type nopObserver struct{}

func (nopObserver) StepAdvanced(Step, Step)                  {}
func (nopObserver) StrategySelected(strategy.Key)            {}
func (nopObserver) SubmissionFinished(string, time.Duration) {}

// Store owns the state of one wizard session. Every mutation goes through its
// methods; it is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	logger   *zap.Logger
	observer Observer
	now      func() time.Time

	step   Step
	data   DataConfig
	config strategy.Config
	common strategy.Common

	submitting bool
	lastErr    string
	result     *simulation.Result
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the store logger.
func WithLogger(l *zap.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver attaches an event observer.
func WithObserver(o Observer) StoreOption {
	return func(s *Store) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithInitialStrategy selects a strategy other than the moving average at
// start-up.
func WithInitialStrategy(key strategy.Key) StoreOption {
	return func(s *Store) {
		if cfg, err := strategy.Default(key); err == nil {
			s.config = cfg
		}
	}
}

// WithData replaces the default data configuration.
func WithData(d DataConfig) StoreOption {
	return func(s *Store) {
		s.data = d
	}
}

// NewStore returns a session at step 1 with every default applied.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		logger:   zap.NewNop(),
		observer: nopObserver{},
		now:      time.Now,
		step:     StepData,
		data:     DefaultData(),
		config:   strategy.MustDefault(strategy.KeyMovingAverage),
		common:   strategy.DefaultCommon(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Step returns the current step.
func (s *Store) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// CanAdvance reports whether NextStep would succeed.
func (s *Store) CanAdvance() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gateLocked() == nil
}

// NextStep moves one step forward. Step 1 requires both dates; step 2
// requires a valid strategy and common configuration.
func (s *Store) NextStep() error {
	s.mu.Lock()
	if err := s.gateLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	from := s.step
	s.step++
	to := s.step
	s.mu.Unlock()

	s.logger.Info("wizard step advanced", zap.Int("from", int(from)), zap.Int("to", int(to)))
	s.observer.StepAdvanced(from, to)
	return nil
}

func (s *Store) gateLocked() error {
	switch s.step {
	case StepData:
		if !s.data.CanAdvance() {
			return fmt.Errorf("%w: start and end dates are required", ErrStepIncomplete)
		}
	case StepStrategy:
		if err := strategy.Validate(s.config); err != nil {
			return fmt.Errorf("%w: %w", ErrStepIncomplete, err)
		}
		if err := strategy.ValidateCommon(s.common); err != nil {
			return fmt.Errorf("%w: %w", ErrStepIncomplete, err)
		}
	default:
		return ErrFinalStep
	}
	return nil
}

// StepError explains why the current step cannot advance, or "".
func (s *Store) StepError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.gateLocked(); err != nil && s.step != StepExecution {
		return err.Error()
	}
	return ""
}

// Data returns the data configuration.
func (s *Store) Data() DataConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// SetDataField updates one data field.
func (s *Store) SetDataField(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.data.With(key, value)
	if err != nil {
		return err
	}
	s.data = next
	return nil
}

// ApplyData shallow merges a data slice produced by the data section form.
// Values must be strings.
func (s *Store) ApplyData(slice map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.data
	for key, raw := range slice {
		value, ok := raw.(string)
		if !ok {
			return fmt.Errorf("wizard: data field %q must be a string, got %T", key, raw)
		}
		var err error
		if next, err = next.With(key, value); err != nil {
			return err
		}
	}
	s.data = next
	return nil
}

// StrategyKey returns the selected strategy.
func (s *Store) StrategyKey() strategy.Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config.Key()
}

// Strategy returns the typed configuration of the selected strategy.
func (s *Store) Strategy() strategy.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// Common returns the settings shared by every strategy.
func (s *Store) Common() strategy.Common {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.common
}

// SetStrategyKey selects a strategy. Choosing a different key replaces
// parameters and logics with that strategy's defaults; common settings are
// kept. Re-selecting the current key changes nothing.
func (s *Store) SetStrategyKey(key strategy.Key) error {
	cfg, err := strategy.Default(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.config.Key() == key {
		s.mu.Unlock()
		return nil
	}
	s.config = cfg
	s.mu.Unlock()

	s.logger.Info("strategy selected", zap.String("strategy", string(key)))
	s.observer.StrategySelected(key)
	return nil
}

// ApplyStrategySection merges slice into "parameters", "logics" or "common".
// The merged tree must still decode into the typed configuration.
func (s *Store) ApplyStrategySection(name string, slice map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name == "common" {
		current, err := strategy.CommonToTree(s.common)
		if err != nil {
			return err
		}
		next, err := strategy.CommonFromTree(form.Merge(current, slice))
		if err != nil {
			return err
		}
		s.common = next
		return nil
	}
	if name != "parameters" && name != "logics" {
		return fmt.Errorf("%w: %q", ErrUnknownSection, name)
	}

	tree, err := strategy.ToTree(s.config)
	if err != nil {
		return err
	}
	current, _ := tree[name].(map[string]any)
	tree[name] = form.Merge(current, slice)

	next, err := strategy.FromTree(s.config.Key(), tree)
	if err != nil {
		return err
	}
	s.config = next
	return nil
}

// StrategyTree returns {key, parameters, logics, common} as a value tree.
func (s *Store) StrategyTree() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.strategyTreeLocked()
}

func (s *Store) strategyTreeLocked() map[string]any {
	tree, err := strategy.ToTree(s.config)
	if err != nil {
		// typed configs always encode
		panic(err)
	}
	common, err := strategy.CommonToTree(s.common)
	if err != nil {
		panic(err)
	}
	tree["common"] = common
	return tree
}

// DataTree returns the data configuration as a value tree.
func (s *Store) DataTree() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Tree()
}

// Payload builds the request body for the current state.
func (s *Store) Payload() simulation.Payload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.payloadLocked()
}

func (s *Store) payloadLocked() simulation.Payload {
	tree := s.strategyTreeLocked()
	params, _ := tree["parameters"].(map[string]any)
	logics, _ := tree["logics"].(map[string]any)
	common, _ := tree["common"].(map[string]any)
	return simulation.Payload{
		Data: simulation.Data{
			Market:    s.data.Market,
			Symbol:    s.data.Symbol,
			Timeframe: s.data.Timeframe,
			StartDate: s.data.StartDate,
			EndDate:   s.data.EndDate,
		},
		Strategy: simulation.Strategy{
			Key:        string(s.config.Key()),
			Parameters: params,
			Logics:     logics,
			Common:     common,
		},
	}
}

// Submit sends the payload through sub. Only one submission may run at a
// time and only on the execution step. A failure is kept as a user-facing
// message and leaves step and configuration untouched so the user can retry.
func (s *Store) Submit(ctx context.Context, sub Submitter) (simulation.Result, error) {
	s.mu.Lock()
	if s.step != StepExecution {
		s.mu.Unlock()
		return simulation.Result{}, ErrNotReady
	}
	if s.submitting {
		s.mu.Unlock()
		return simulation.Result{}, ErrSubmissionInFlight
	}
	s.submitting = true
	s.lastErr = ""
	payload := s.payloadLocked()
	s.mu.Unlock()

	started := s.now()
	res, err := sub.Submit(ctx, payload)
	elapsed := s.now().Sub(started)

	s.mu.Lock()
	s.submitting = false
	if err != nil {
		s.lastErr = fmt.Sprintf("Failed to start the simulation. Details: %v", err)
		s.mu.Unlock()
		s.logger.Warn("simulation submission failed", zap.Error(err))
		s.observer.SubmissionFinished(OutcomeFailure, elapsed)
		return simulation.Result{}, fmt.Errorf("wizard: submit: %w", err)
	}
	s.result = &res
	s.mu.Unlock()

	s.logger.Info("simulation submitted", zap.String("id", res.ID), zap.Int("status", res.StatusCode))
	s.observer.SubmissionFinished(OutcomeSuccess, elapsed)
	return res, nil
}

// Submitting reports whether a submission is in flight. The submit control
// stays disabled while it is true.
func (s *Store) Submitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitting
}

// SubmitEnabled reports whether the submit control is active.
func (s *Store) SubmitEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step == StepExecution && !s.submitting
}

// LastError is the message of the most recent failed submission, cleared
// when the next submission starts.
func (s *Store) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Result returns the last successful submission.
func (s *Store) Result() (simulation.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return simulation.Result{}, false
	}
	return *s.result, true
}

// Snapshot is a consistent copy of the session for rendering.
type Snapshot struct {
	Step          Step
	Steps         []StepInfo
	Data          DataConfig
	DataTree      map[string]any
	StrategyKey   strategy.Key
	StrategyTree  map[string]any
	CanAdvance    bool
	StepError     string
	Submitting    bool
	SubmitEnabled bool
	LastError     string
	Result        *simulation.Result
}

// Snapshot captures the whole session under one lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	gate := s.gateLocked()
	snap := Snapshot{
		Step:          s.step,
		Steps:         Steps(s.step),
		Data:          s.data,
		DataTree:      s.data.Tree(),
		StrategyKey:   s.config.Key(),
		StrategyTree:  s.strategyTreeLocked(),
		CanAdvance:    gate == nil,
		Submitting:    s.submitting,
		SubmitEnabled: s.step == StepExecution && !s.submitting,
		LastError:     s.lastErr,
	}
	if gate != nil && s.step != StepExecution {
		snap.StepError = gate.Error()
	}
	if s.result != nil {
		res := *s.result
		snap.Result = &res
	}
	return snap
}
