// Package proficiency tracks per-worker, per-task-type experience
// scores. Scores live in [0,100], start at a neutral base, and drift as
// workers finish tasks faster or slower than the catalog estimate.
package proficiency

import (
	"sync"
	"time"
)

const (
	// BaseScore is assumed for any (worker, type) pair never scored.
	BaseScore = 50.0

	MinScore = 0.0
	MaxScore = 100.0

	// feedbackDamping scales the percent deviation before it is applied,
	// so a single task never swings a score by more than maxSwing.
	feedbackDamping = 0.1
	maxSwing        = 20.0
)

// Model holds the score table. Entries are created lazily on first
// reference and never deleted. Safe for concurrent use.
type Model struct {
	mu     sync.Mutex
	scores map[string]map[string]float64
}

// NewModel returns an empty score table.
func NewModel() *Model {
	return &Model{scores: make(map[string]map[string]float64)}
}

// Score returns the stored score for the worker and task type, or
// BaseScore when the pair has never been scored.
func (m *Model) Score(worker, taskType string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.score(worker, taskType)
}

// Set overrides a score directly (supervisor adjustment). The value is
// clamped to [MinScore, MaxScore].
func (m *Model) Set(worker, taskType string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store(worker, taskType, clamp(value, MinScore, MaxScore))
}

// ApplyCompletionFeedback adjusts the worker's score from the ratio of
// actual to estimated duration on a finished task. Finishing faster than
// the estimate raises the score, slower lowers it; the damping factor
// and per-task swing cap keep a single task from dominating the history.
// A non-positive estimate leaves the score untouched.
func (m *Model) ApplyCompletionFeedback(worker, taskType string, estimated, actual time.Duration) {
	if estimated <= 0 {
		return
	}
	deviation := float64(estimated-actual) / float64(estimated) * 100
	delta := clamp(deviation*feedbackDamping, -maxSwing, maxSwing)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.store(worker, taskType, clamp(m.score(worker, taskType)+delta, MinScore, MaxScore))
}

// Snapshot returns a deep copy of every stored score, keyed by worker
// then task type. Pairs still at BaseScore by default are absent.
func (m *Model) Snapshot() map[string]map[string]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]map[string]float64, len(m.scores))
	for worker, byType := range m.scores {
		copied := make(map[string]float64, len(byType))
		for taskType, score := range byType {
			copied[taskType] = score
		}
		out[worker] = copied
	}
	return out
}

// Restore replaces the score table with the provided snapshot, clamping
// every value. Used when loading persisted state.
func (m *Model) Restore(snapshot map[string]map[string]float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores = make(map[string]map[string]float64, len(snapshot))
	for worker, byType := range snapshot {
		for taskType, score := range byType {
			m.store(worker, taskType, clamp(score, MinScore, MaxScore))
		}
	}
}

func (m *Model) score(worker, taskType string) float64 {
	if byType, ok := m.scores[worker]; ok {
		if score, ok := byType[taskType]; ok {
			return score
		}
	}
	return BaseScore
}

func (m *Model) store(worker, taskType string, value float64) {
	byType, ok := m.scores[worker]
	if !ok {
		byType = make(map[string]float64)
		m.scores[worker] = byType
	}
	byType[taskType] = value
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
