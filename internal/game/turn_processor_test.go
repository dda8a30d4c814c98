package game

import (
	"context"
	"testing"

	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/core"
	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessTurn_TileAndMeeple(t *testing.T) {
	e := newTestEngine(t, 2)
	center := e.gs.Grid.Center()
	first := handTo(t, e, "A")
	slot := core.SlotBottom

	res, err := e.Turns().ProcessTurn(context.Background(), Move{
		PlayerID: first,
		Pos:      center.Step(core.Top),
		Meeple:   &slot,
	})
	require.NoError(t, err)
	assert.Equal(t, first, res.PlayerID)
	assert.Empty(t, res.Completions)
	assert.Len(t, eventsOf[*events.MeeplePlacedEvent](e), 1)

	second := handTo(t, e, "W")
	res, err = e.Turns().ProcessTurn(context.Background(), Move{
		PlayerID: second,
		Pos:      center.Step(core.Bottom),
		Rotation: 1,
	})
	require.NoError(t, err)
	require.Len(t, res.Completions, 1)
	assert.Equal(t, 3, res.Points())
	assert.Len(t, eventsOf[*events.MeeplePassedEvent](e), 1)
	assert.Equal(t, first, e.gs.CurrentPlayer().ID)
}

func TestProcessTurn_Skip(t *testing.T) {
	e := newTestEngine(t, 2)
	pid := handTo(t, e)

	_, err := e.Turns().ProcessTurn(context.Background(), Move{PlayerID: pid, Skip: true})
	require.NoError(t, err)
	assert.Len(t, eventsOf[*events.TurnSkippedEvent](e), 1)
}

func TestProcessTurn_Rejections(t *testing.T) {
	e := newTestEngine(t, 2)
	pid := e.gs.CurrentPlayer().ID

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Turns().ProcessTurn(ctx, Move{PlayerID: pid})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = e.Turns().ProcessTurn(context.Background(), Move{PlayerID: pid, Pos: core.NewCoordinate(0, 0)})
	assert.ErrorIs(t, err, core.ErrIllegalPlacement)

	require.NoError(t, e.Abort())
	_, err = e.Turns().ProcessTurn(context.Background(), Move{PlayerID: pid})
	assert.ErrorIs(t, err, core.ErrGameOver)
	assert.Equal(t, events.EndAborted, e.StateMachine().GetContext().EndReason)
}

func TestRandomAgent_Deterministic(t *testing.T) {
	play := func() []string {
		e := newTestEngine(t, 2)
		agent := NewRandomAgent(5, 0.7)
		for i := 0; i < 10 && !e.IsGameOver(); i++ {
			_, err := e.Turns().PlayTurn(context.Background(), agent)
			require.NoError(t, err)
		}
		var out []string
		for _, ev := range e.History().Events() {
			out = append(out, ev.Type())
		}
		return out
	}
	assert.Equal(t, play(), play())
}

func TestStats(t *testing.T) {
	e := newTestEngine(t, 2)
	center := e.gs.Grid.Center()

	first := handTo(t, e, "A")
	_, err := e.PlaceTile(first, 0, center.Step(core.Top), 0)
	require.NoError(t, err)
	_, err = e.PlaceMeeple(first, core.SlotBottom)
	require.NoError(t, err)

	second := handTo(t, e, "W")
	_, err = e.PlaceTile(second, 0, center.Step(core.Bottom), 1)
	require.NoError(t, err)
	_, err = e.PlaceMeeple(second, core.SlotLeft)
	require.NoError(t, err)

	stats := e.Stats()
	require.Len(t, stats, 2)
	s := stats[first]
	assert.Equal(t, 1, s.TilesPlaced)
	assert.Equal(t, 1, s.MeeplesPlaced)
	assert.Zero(t, s.MeeplesOnBoard)
	assert.Equal(t, map[string]int{"road": 3}, s.PointsBy)

	s = stats[second]
	assert.Equal(t, 1, s.MeeplesOnBoard)
	assert.Empty(t, s.PointsBy)
}
