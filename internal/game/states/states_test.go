package states

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinStates_Validate(t *testing.T) {
	tests := []struct {
		name   string
		state  State
		setup  func(*GameContext)
		errMsg string
	}{
		{"initializing always", NewInitializingState(), func(*GameContext) {}, ""},
		{"river without players", NewRiverState(), func(c *GameContext) { c.RiverPhase = true }, "need between 1 and 4 players"},
		{"river without river", NewRiverState(), func(c *GameContext) { c.PlayerCount = 2 }, "without the river"},
		{"river ready", NewRiverState(), func(c *GameContext) { c.PlayerCount, c.RiverPhase = 2, true }, ""},
		{"base without players", NewBaseState(), func(*GameContext) {}, "need between 1 and 4 players"},
		{"base too many players", NewBaseState(), func(c *GameContext) { c.PlayerCount = 5 }, "have 5"},
		{"base ready", NewBaseState(), func(c *GameContext) { c.PlayerCount = 4 }, ""},
		{"ending without reason", NewEndingState(), func(*GameContext) {}, "end reason"},
		{"ending with reason", NewEndingState(), func(c *GameContext) { c.EndReason = "point_limit" }, ""},
		{"ending with error", NewEndingState(), func(c *GameContext) { c.Error = errors.New("boom") }, ""},
		{"ended always", NewEndedState(), func(*GameContext) {}, ""},
		{"error without error", NewErrorState(), func(*GameContext) {}, "requires an error"},
		{"error with error", NewErrorState(), func(c *GameContext) { c.Error = errors.New("boom") }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := NewGameContext("test", 4, zerolog.Nop())
			tt.setup(ctx)
			err := tt.state.Validate(ctx)
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestBuiltinStates_Hooks(t *testing.T) {
	all := []State{
		NewInitializingState(), NewRiverState(), NewBaseState(),
		NewEndingState(), NewEndedState(), NewErrorState(),
	}
	for i, s := range all {
		require.Equal(t, GamePhase(i), s.Phase())

		ctx := NewGameContext("test", 4, zerolog.Nop())
		ctx.Error = errors.New("kept")
		assert.NoError(t, s.Enter(ctx), s.Phase().String())
		assert.NoError(t, s.Exit(ctx), s.Phase().String())
		assert.EqualError(t, ctx.Error, "kept")
	}
}

func TestMovePhases_StampStartOnce(t *testing.T) {
	ctx := NewGameContext("test", 4, zerolog.Nop())
	assert.Zero(t, ctx.GetElapsedTime())

	require.NoError(t, NewRiverState().Enter(ctx))
	start := ctx.StartTime
	assert.False(t, start.IsZero())

	require.NoError(t, NewBaseState().Enter(ctx))
	assert.Equal(t, start, ctx.StartTime)
	assert.GreaterOrEqual(t, ctx.GetElapsedTime(), time.Duration(0))
}
