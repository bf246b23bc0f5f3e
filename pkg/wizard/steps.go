package wizard

// Step is a wizard screen. Steps only move forward.
type Step int

const (
	StepData Step = iota + 1
	StepStrategy
	StepExecution
)

var stepTitles = map[Step]string{
	StepData:      "Data configuration",
	StepStrategy:  "Strategy configuration",
	StepExecution: "Simulation run",
}

// Title is the heading shown in the step progress.
func (s Step) Title() string {
	return stepTitles[s]
}

// Valid reports whether s is one of the three steps.
func (s Step) Valid() bool {
	return s >= StepData && s <= StepExecution
}

// StepInfo describes one entry of the step progress indicator.
type StepInfo struct {
	Number    int
	Title     string
	Active    bool
	Completed bool
}

// Steps builds the progress indicator for current. The final step is never
// shown as completed.
func Steps(current Step) []StepInfo {
	out := make([]StepInfo, 0, 3)
	for s := StepData; s <= StepExecution; s++ {
		out = append(out, StepInfo{
			Number:    int(s),
			Title:     s.Title(),
			Active:    s == current,
			Completed: s < current && s != StepExecution,
		})
	}
	return out
}
