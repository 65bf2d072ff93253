package models

import "time"

// Winner label used when neither backend out-scores the other.
const WinnerTie = "tie"

// EvalMetrics scores one backend's execution. Each value is an integer
// clamped to [0,100].
type EvalMetrics struct {
	Completeness int `json:"completeness"`
	Accuracy     int `json:"accuracy"`
	Speed        int `json:"speed"`
}

// Composite is the weighted score used to break winner decisions:
// completeness and accuracy weigh 0.4 each, speed 0.2.
func (m EvalMetrics) Composite() float64 {
	return float64(m.Completeness)*0.4 + float64(m.Accuracy)*0.4 + float64(m.Speed)*0.2
}

// Comparison holds the dual-mode verdict: the winning backend name (or
// WinnerTie) and the per-backend metrics it was decided on.
type Comparison struct {
	Winner  string                 `json:"winner"`
	Metrics map[string]EvalMetrics `json:"metrics"`
}

// EvalResult is the immutable record of one dual-mode comparison run.
type EvalResult struct {
	SessionID  string                             `json:"session_id"`
	Timestamp  time.Time                          `json:"timestamp"`
	Request    SearchRequest                      `json:"request"`
	Results    map[string]*BackendExecutionResult `json:"results"`
	Comparison Comparison                         `json:"comparison"`
}
