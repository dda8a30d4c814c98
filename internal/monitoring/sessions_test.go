package monitoring

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game"
	"github.com/mitchelldurbincs/CarcassonneEngine/internal/session"
)

type fakeSource struct{ games []session.Summary }

func (f *fakeSource) List() []session.Summary { return f.games }

func TestSessionMonitor_Check(t *testing.T) {
	src := &fakeSource{games: []session.Summary{
		{ID: "a", Phase: "Base", Events: 10},
		{ID: "b", Phase: "Base", Events: 5},
		{ID: "c", Phase: "Ended", GameOver: true, Events: 100},
	}}
	sm := NewSessionMonitor(src, time.Minute, 0, zerolog.Nop())

	m := sm.Check()
	assert.Equal(t, 2, m.Active)
	assert.Equal(t, 1, m.Finished)
	assert.Equal(t, 3, m.Peak)
	assert.Equal(t, 115, m.Events)
	assert.Equal(t, map[string]int{"Base": 2, "Ended": 1}, m.ByPhase)

	// peak survives a shrinking manager
	src.games = src.games[:1]
	m = sm.Check()
	assert.Equal(t, 1, m.Active)
	assert.Equal(t, 3, m.Peak)
	assert.Equal(t, 2, m.Samples)

	got := sm.GetMetrics()
	got.ByPhase["Base"] = 99
	assert.Equal(t, 1, sm.GetMetrics().ByPhase["Base"], "metrics are copied")
}

func TestSessionMonitor_AlertCooldown(t *testing.T) {
	src := &fakeSource{games: make([]session.Summary, 3)}
	sm := NewSessionMonitor(src, time.Minute, 2, zerolog.Nop())
	now := time.Now()
	sm.now = func() time.Time { return now }

	sm.Check()
	first := sm.lastAlert
	assert.Equal(t, now, first)

	now = now.Add(time.Minute)
	sm.Check()
	assert.Equal(t, first, sm.lastAlert, "no second alert inside the cooldown")

	now = now.Add(10 * time.Minute)
	sm.Check()
	assert.Equal(t, now, sm.lastAlert)
}

func TestSessionMonitor_RunWithManager(t *testing.T) {
	m := session.NewManager(session.Options{Logger: zerolog.Nop()})
	cfg := game.DefaultGameConfig()
	cfg.Seed = 1
	cfg.Logger = zerolog.Nop()
	_, err := m.Create(context.Background(), cfg)
	require.NoError(t, err)

	sm := NewSessionMonitor(m, time.Millisecond, 0, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sm.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return sm.GetMetrics().Active == 1 }, time.Second, time.Millisecond)
	cancel()
	<-done
	assert.Equal(t, 1, sm.GetMetrics().Peak)
}
