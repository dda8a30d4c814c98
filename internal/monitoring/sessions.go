package monitoring

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/CarcassonneEngine/internal/session"
)

// Source is what the monitor samples; *session.Manager satisfies it.
type Source interface {
	List() []session.Summary
}

// SessionMonitor periodically samples a session manager and logs how many
// games it holds, warning when the count passes a threshold.
type SessionMonitor struct {
	mu             sync.RWMutex
	source         Source
	checkInterval  time.Duration
	alertThreshold int
	alertCooldown  time.Duration
	lastAlert      time.Time
	metrics        SessionMetrics
	now            func() time.Time
	logger         zerolog.Logger
}

// SessionMetrics contains the last sample
type SessionMetrics struct {
	Active   int            `json:"active"`
	Finished int            `json:"finished"`
	Peak     int            `json:"peak"`
	Events   int            `json:"events"`
	ByPhase  map[string]int `json:"by_phase"`
	Sampled  time.Time      `json:"sampled"`
	Samples  int            `json:"samples"`
}

// NewSessionMonitor creates a monitor. A threshold of 0 disables the warning.
func NewSessionMonitor(source Source, interval time.Duration, threshold int, logger zerolog.Logger) *SessionMonitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &SessionMonitor{
		source:         source,
		checkInterval:  interval,
		alertThreshold: threshold,
		alertCooldown:  5 * time.Minute,
		metrics:        SessionMetrics{ByPhase: map[string]int{}},
		now:            time.Now,
		logger:         logger.With().Str("component", "SessionMonitor").Logger(),
	}
}

// Run samples every interval until ctx is done
func (sm *SessionMonitor) Run(ctx context.Context) {
	sm.logger.Info().Dur("interval", sm.checkInterval).Msg("Started session monitoring")
	ticker := time.NewTicker(sm.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sm.Check()
		case <-ctx.Done():
			return
		}
	}
}

// Check takes one sample and logs it
func (sm *SessionMonitor) Check() SessionMetrics {
	games := sm.source.List()
	now := sm.now()

	sm.mu.Lock()
	m := SessionMetrics{
		Peak:    sm.metrics.Peak,
		ByPhase: make(map[string]int),
		Sampled: now,
		Samples: sm.metrics.Samples + 1,
	}
	for _, g := range games {
		if g.GameOver {
			m.Finished++
		} else {
			m.Active++
		}
		m.Events += g.Events
		m.ByPhase[g.Phase]++
	}
	m.Peak = max(m.Peak, len(games))
	sm.metrics = m

	held := len(games)
	shouldAlert := sm.alertThreshold > 0 && held > sm.alertThreshold &&
		now.Sub(sm.lastAlert) > sm.alertCooldown
	if shouldAlert {
		sm.lastAlert = now
	}
	sm.mu.Unlock()

	sm.logger.Debug().
		Int("active", m.Active).
		Int("finished", m.Finished).
		Int("peak", m.Peak).
		Int("events", m.Events).
		Msg("Session metrics")

	if shouldAlert {
		sm.logger.Warn().
			Int("games", held).
			Int("threshold", sm.alertThreshold).
			Msg("High game count - finished games may not be cleaned up")
	}
	return copyMetrics(m)
}

// GetMetrics returns the last sample
func (sm *SessionMonitor) GetMetrics() SessionMetrics {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return copyMetrics(sm.metrics)
}

func copyMetrics(m SessionMetrics) SessionMetrics {
	phases := make(map[string]int, len(m.ByPhase))
	for k, v := range m.ByPhase {
		phases[k] = v
	}
	m.ByPhase = phases
	return m
}
