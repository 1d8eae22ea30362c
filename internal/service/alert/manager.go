package alert

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/solenne/chatsense/backend/internal/model/analysis"
)

// DispatchFunc receives each alert right after it is recorded. The manager
// does not inspect a return value; a panicking callback is isolated and the
// already-appended alert stays in history.
type DispatchFunc func(analysis.Alert)

// Manager evaluates a sentiment score stream against a floor threshold.
// Scores strictly below the threshold raise an alert; each qualifying
// evaluation is independent, with no deduplication across repeated lows.
type Manager struct {
	mu        sync.Mutex
	threshold float64
	enabled   bool
	history   []analysis.Alert
	dispatch  DispatchFunc
}

// NewManager creates a manager with the given floor threshold. dispatch may
// be nil.
func NewManager(threshold float64, dispatch DispatchFunc) *Manager {
	return &Manager{
		threshold: threshold,
		enabled:   true,
		dispatch:  dispatch,
	}
}

// Evaluate checks one score. It returns the recorded alert, or nil when the
// manager is disabled or the score is at or above the threshold.
func (m *Manager) Evaluate(score int, message string) *analysis.Alert {
	m.mu.Lock()

	if !m.enabled || float64(score) >= m.threshold {
		m.mu.Unlock()
		return nil
	}

	alert := analysis.Alert{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Score:     score,
		Threshold: m.threshold,
		Message:   message,
		Severity:  severityFor(score),
	}
	m.history = append(m.history, alert)
	dispatch := m.dispatch
	m.mu.Unlock()

	if dispatch != nil {
		invokeDispatch(dispatch, alert)
	}
	return &alert
}

// severityFor grades a below-threshold score by fixed bands.
func severityFor(score int) analysis.Severity {
	switch {
	case score < 10:
		return analysis.SeverityCritical
	case score < 20:
		return analysis.SeverityHigh
	case score < 30:
		return analysis.SeverityMedium
	default:
		return analysis.SeverityLow
	}
}

func invokeDispatch(dispatch DispatchFunc, alert analysis.Alert) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[alert] dispatch callback panicked: %v", r)
		}
	}()
	dispatch(alert)
}

// SetThreshold applies the new threshold only when it lies in [0,100].
// Out-of-range values leave the current threshold in place.
func (m *Manager) SetThreshold(threshold float64) {
	if threshold < 0 || threshold > 100 {
		log.Printf("[alert] ignoring out-of-range threshold %v", threshold)
		return
	}

	m.mu.Lock()
	m.threshold = threshold
	m.mu.Unlock()
}

// Threshold returns the current floor threshold.
func (m *Manager) Threshold() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.threshold
}

// SetEnabled toggles alert creation. While disabled no alerts are created
// regardless of score.
func (m *Manager) SetEnabled(enabled bool) {
	m.mu.Lock()
	m.enabled = enabled
	m.mu.Unlock()
}

// Enabled reports whether evaluation currently creates alerts.
func (m *Manager) Enabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled
}

// History returns a copy of the append-only alert history in evaluation
// order.
func (m *Manager) History() []analysis.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]analysis.Alert(nil), m.history...)
}

// Clear empties the alert history. Threshold and enabled state are
// untouched.
func (m *Manager) Clear() {
	m.mu.Lock()
	m.history = nil
	m.mu.Unlock()
}
