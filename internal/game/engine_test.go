package game

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/core"
	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/events"
	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/states"
	"github.com/mitchelldurbincs/CarcassonneEngine/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, players int, opts ...func(*GameConfig)) *Engine {
	t.Helper()
	cfg := DefaultGameConfig()
	cfg.GameID = "test-game"
	cfg.Players = players
	cfg.RiverPhase = false
	cfg.PointLimit = 0
	cfg.Seed = 12345
	cfg.Logger = testutil.NopLogger()
	for _, opt := range opts {
		opt(&cfg)
	}
	e, err := NewEngine(context.Background(), cfg)
	require.NoError(t, err)
	return e
}

// newTile builds a catalog tile with a test-only ID
func newTile(t *testing.T, e *Engine, tileType string) *core.Tile {
	t.Helper()
	id := fmt.Sprintf("%s-t%d", tileType, e.gs.Grid.Len()+e.history.Len())
	tile, err := e.catalog.NewTileOfType(tileType, id)
	require.NoError(t, err)
	return tile
}

// putTile lays a tile straight onto the grid, skipping rules and events
func putTile(t *testing.T, e *Engine, tileType string, x, y, rot int) *core.Tile {
	t.Helper()
	tile := newTile(t, e, tileType)
	require.NoError(t, tile.SetRotation(rot))
	require.NoError(t, e.gs.Grid.Place(tile, core.NewCoordinate(x, y)))
	return tile
}

// handTo replaces the hand of the player on turn and returns their ID
func handTo(t *testing.T, e *Engine, tileTypes ...string) int {
	t.Helper()
	p := e.gs.CurrentPlayer()
	p.Hand = nil
	for _, typ := range tileTypes {
		p.Hand = append(p.Hand, newTile(t, e, typ))
	}
	return p.ID
}

func eventsOf[T events.Event](e *Engine) []T {
	var out []T
	for _, ev := range e.history.Events() {
		if v, ok := ev.(T); ok {
			out = append(out, v)
		}
	}
	return out
}


func TestNewEngine_BaseStart(t *testing.T) {
	e := newTestEngine(t, 2)

	assert.Equal(t, states.PhaseBase, e.CurrentPhase())
	assert.False(t, e.IsGameOver())
	assert.Equal(t, 1, e.gs.Round)
	require.Equal(t, 1, e.gs.Grid.Len())

	start := e.gs.Grid.At(e.gs.Grid.Center())
	require.NotNil(t, start)
	assert.Equal(t, BaseStartTile, start.Type)
	assert.ElementsMatch(t, []int{0, 1}, e.gs.TurnOrder)

	for _, p := range e.gs.Players {
		assert.Len(t, p.Hand, DefaultHandSize)
		assert.Len(t, p.Meeples, core.DefaultMeeplesPerPlayer)
		assert.Equal(t, core.DefaultMeeplesPerPlayer, p.AvailableMeeples())
	}
	// 72 base tiles, one laid, three dealt to each of two players
	assert.Equal(t, 72-1-6, e.gs.Pool.Len())

	evs := e.history.Events()
	require.GreaterOrEqual(t, len(evs), 5)
	assert.Equal(t, events.TypeGameStarted, evs[0].Type())
	assert.Equal(t, events.TypeStartingTilePlaced, evs[1].Type())
	assert.Equal(t, events.TypeStateTransition, evs[2].Type())
	assert.Equal(t, events.TypeTilesDrawn, evs[3].Type())
	assert.Equal(t, events.TypeTilesDrawn, evs[4].Type())

	started := evs[0].(*events.GameStartedEvent)
	assert.Equal(t, uint64(12345), started.Seed)
	assert.Equal(t, e.gs.TurnOrder, started.TurnOrder)
	assert.Equal(t, core.DefaultScoring(), started.Scoring)
	for i, ev := range evs {
		assert.Equal(t, i+1, ev.Seq())
		assert.Equal(t, "test-game", ev.GameID())
	}
}

func TestNewEngine_RiverStart(t *testing.T) {
	e := newTestEngine(t, 2, func(c *GameConfig) { c.RiverPhase = true })

	assert.Equal(t, states.PhaseRiver, e.CurrentPhase())
	assert.True(t, e.gs.RiverPhase)
	start := e.gs.Grid.At(e.gs.Grid.Center())
	require.NotNil(t, start)
	assert.Equal(t, "RS", start.Type)
	// ten river tiles, three dealt to each player
	assert.Equal(t, 10-6, e.gs.Pool.Len())
	for _, p := range e.gs.Players {
		for _, tile := range p.Hand {
			assert.True(t, tile.HasRiver(), tile.ID)
		}
	}
}

func TestNewEngine_Defaults(t *testing.T) {
	e, err := NewEngine(context.Background(), GameConfig{Logger: testutil.NopLogger()})
	require.NoError(t, err)

	assert.NotEmpty(t, e.GameID())
	assert.Len(t, e.gs.Players, DefaultPlayers)
	assert.NotZero(t, e.Config().Seed)
	assert.Equal(t, DefaultMapSize, e.gs.Grid.Size())
	assert.Equal(t, states.PhaseBase, e.CurrentPhase(), "zero config skips the river")
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  func(*GameConfig)
	}{
		{"too many players", func(c *GameConfig) { c.Players = MaxPlayers + 1 }},
		{"negative players", func(c *GameConfig) { c.Players = -1 }},
		{"negative hand", func(c *GameConfig) { c.HandSize = -2 }},
		{"tiny map", func(c *GameConfig) { c.MapSize = 2 }},
		{"negative scoring", func(c *GameConfig) { c.Scoring.City = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultGameConfig()
			tt.cfg(&cfg)
			_, err := NewEngine(context.Background(), cfg)
			assert.Error(t, err)
		})
	}
}

func TestNewEngine_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEngine(ctx, DefaultGameConfig())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewEngine_SameSeedSameGame(t *testing.T) {
	drawn := func(e *Engine) [][]string {
		var out [][]string
		for _, ev := range eventsOf[*events.TilesDrawnEvent](e) {
			out = append(out, ev.TileIDs)
		}
		return out
	}
	a := newTestEngine(t, 3)
	b := newTestEngine(t, 3)
	c := newTestEngine(t, 3, func(cfg *GameConfig) { cfg.Seed = 999 })

	assert.Equal(t, a.gs.TurnOrder, b.gs.TurnOrder)
	assert.Equal(t, drawn(a), drawn(b))
	assert.NotEqual(t, drawn(a), drawn(c))
}

func TestPlaceTile_CompletesClaimedRoad(t *testing.T) {
	e := newTestEngine(t, 2)
	center := e.gs.Grid.Center()

	// A closes the road above the start tile
	first := handTo(t, e, "A")
	comps, err := e.PlaceTile(first, 0, center.Step(core.Top), 0)
	require.NoError(t, err)
	assert.Empty(t, comps)
	assert.True(t, e.gs.AwaitingMeeple())
	assert.Empty(t, e.gs.Player(first).Hand, "played tile leaves the hand")

	comps, err = e.PlaceMeeple(first, core.SlotBottom)
	require.NoError(t, err)
	assert.Empty(t, comps)
	assert.Equal(t, core.DefaultMeeplesPerPlayer-1, e.gs.Player(first).AvailableMeeples())
	assert.Len(t, e.gs.Player(first).Hand, DefaultHandSize, "hand refilled at end of turn")

	// W closes it below
	second := handTo(t, e, "W")
	require.NotEqual(t, first, second)
	comps, err = e.PlaceTile(second, 0, center.Step(core.Bottom), 1)
	require.NoError(t, err)
	require.Len(t, comps, 1)

	c := comps[0]
	assert.Equal(t, core.Road, c.Kind)
	assert.Equal(t, core.SlotTop, c.Slot)
	assert.Len(t, c.Tiles, 3)
	assert.Equal(t, 3, c.Resolution.Points)
	assert.Equal(t, []int{first}, c.Resolution.Winners)
	require.Len(t, c.Freed, 1)
	assert.Equal(t, 3, c.Freed[0].Reward)
	assert.Equal(t, events.FreedCompleted, c.Freed[0].Reason)

	assert.Equal(t, 3, e.gs.Player(first).Points)
	assert.Zero(t, e.gs.Player(second).Points)
	assert.Equal(t, core.DefaultMeeplesPerPlayer, e.gs.Player(first).AvailableMeeples())

	done := eventsOf[*events.StructureCompletedEvent](e)
	require.Len(t, done, 1)
	assert.Equal(t, core.Road, done[0].Kind)
	assert.False(t, done[0].Monastery)

	// the road already paid out; the W stub to the left is a new road
	_, err = e.PlaceMeeple(second, core.SlotTop)
	assert.ErrorIs(t, err, core.ErrIllegalMeeple)
	assert.Equal(t, core.ReasonAlreadyClaimed, core.ReasonOf(err))
	assert.Equal(t, []core.ClaimSlot{core.SlotLeft, core.SlotBottom}, e.LegalMeepleSlots())

	_, err = e.PlaceMeeple(second, core.SlotLeft)
	require.NoError(t, err)
	assert.Equal(t, first, e.gs.CurrentPlayer().ID)
}

func TestPlaceMeeple_OnFinishedUnclaimedStructure(t *testing.T) {
	e := newTestEngine(t, 2)
	center := e.gs.Grid.Center()

	first := handTo(t, e, "A")
	_, err := e.PlaceTile(first, 0, center.Step(core.Top), 0)
	require.NoError(t, err)
	require.NoError(t, e.PassMeeple(first))

	second := handTo(t, e, "W")
	comps, err := e.PlaceTile(second, 0, center.Step(core.Bottom), 1)
	require.NoError(t, err)
	require.Len(t, comps, 1)
	assert.Empty(t, comps[0].Resolution.Winners)
	assert.Empty(t, comps[0].Freed)

	// claiming the finished road scores it on the spot
	comps, err = e.PlaceMeeple(second, core.SlotTop)
	require.NoError(t, err)
	require.Len(t, comps, 1)
	assert.Equal(t, []int{second}, comps[0].Resolution.Winners)
	assert.Equal(t, 3, e.gs.Player(second).Points)
	assert.Equal(t, core.DefaultMeeplesPerPlayer, e.gs.Player(second).AvailableMeeples())
	assert.Len(t, eventsOf[*events.StructureCompletedEvent](e), 2)
}

func TestMoveRejections(t *testing.T) {
	e := newTestEngine(t, 2)
	center := e.gs.Grid.Center()
	onTurn := handTo(t, e, "U", "E")
	other := e.gs.TurnOrder[1]
	before := e.history.Len()

	tests := []struct {
		name   string
		run    func() error
		is     error
		reason core.Reason
	}{
		{"not on turn", func() error { _, err := e.PlaceTile(other, 0, center.Step(core.Top), 0); return err }, core.ErrInvalidPlayer, ""},
		{"unknown player", func() error { _, err := e.PlaceTile(7, 0, center.Step(core.Top), 0); return err }, core.ErrInvalidPlayer, ""},
		{"hand index", func() error { _, err := e.PlaceTile(onTurn, 5, center.Step(core.Top), 0); return err }, core.ErrIllegalPlacement, core.ReasonNotInHand},
		{"occupied", func() error { _, err := e.PlaceTile(onTurn, 0, center, 0); return err }, core.ErrIllegalPlacement, core.ReasonOccupied},
		{"no neighbour", func() error { _, err := e.PlaceTile(onTurn, 0, core.NewCoordinate(10, 10), 0); return err }, core.ErrIllegalPlacement, core.ReasonNoNeighbour},
		{"edge mismatch", func() error { _, err := e.PlaceTile(onTurn, 0, center.Step(core.Right), 0); return err }, core.ErrIllegalPlacement, core.ReasonEdgeMismatch},
		{"bad rotation", func() error { _, err := e.PlaceTile(onTurn, 0, center.Step(core.Top), 4); return err }, core.ErrIllegalPlacement, core.ReasonInvalidRotation},
		{"meeple before tile", func() error { _, err := e.PlaceMeeple(onTurn, core.SlotTop); return err }, core.ErrIllegalMeeple, core.ReasonWrongTile},
		{"pass before tile", func() error { return e.PassMeeple(onTurn) }, core.ErrWrongPhase, ""},
		{"skip with a playable tile", func() error { return e.SkipTurn(onTurn) }, core.ErrMustPlace, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.is)
			if tt.reason != "" {
				assert.Equal(t, tt.reason, core.ReasonOf(err))
			}
			var ge *core.GameError
			assert.True(t, errors.As(err, &ge))
		})
	}

	assert.Equal(t, before, e.history.Len(), "rejected moves commit nothing")
	assert.Equal(t, 1, e.gs.Grid.Len(), "rejected moves leave the board alone")
	assert.Len(t, e.gs.Player(onTurn).Hand, 2)
}

func TestPlaceMeeple_Rejections(t *testing.T) {
	e := newTestEngine(t, 2)
	center := e.gs.Grid.Center()
	pid := handTo(t, e, "U")
	_, err := e.PlaceTile(pid, 0, center.Step(core.Top), 0)
	require.NoError(t, err)

	_, err = e.PlaceTile(pid, 0, center.Step(core.Left), 0)
	assert.ErrorIs(t, err, core.ErrWrongPhase, "second tile in one turn")

	_, err = e.PlaceMeeple(pid, core.SlotLeft)
	assert.Equal(t, core.ReasonNotClaimable, core.ReasonOf(err))
	_, err = e.PlaceMeeple(pid, core.SlotMonastery)
	assert.Equal(t, core.ReasonNoMonastery, core.ReasonOf(err))

	for _, m := range e.gs.Player(pid).Meeples {
		m.Tile = e.gs.Grid.At(center)
	}
	_, err = e.PlaceMeeple(pid, core.SlotTop)
	assert.Equal(t, core.ReasonNoMeeple, core.ReasonOf(err))
}

func TestMonastery_CompleteAtRegistration(t *testing.T) {
	e := newTestEngine(t, 2)
	at := core.NewCoordinate(60, 60)
	for _, c := range at.Block() {
		if c != at {
			putTile(t, e, "B", c.X, c.Y, 0)
		}
	}

	pid := handTo(t, e, "B")
	comps, err := e.PlaceTile(pid, 0, at, 0)
	require.NoError(t, err)
	assert.Empty(t, comps, "an unclaimed monastery scores nothing")

	comps, err = e.PlaceMeeple(pid, core.SlotMonastery)
	require.NoError(t, err)
	require.Len(t, comps, 1)
	assert.True(t, comps[0].IsMonastery())
	assert.Equal(t, core.StructureNone, comps[0].Kind)
	assert.Len(t, comps[0].Tiles, 9)
	assert.Equal(t, 9, e.gs.Player(pid).Points)
	assert.Zero(t, e.gs.Observer.Len())

	done := eventsOf[*events.StructureCompletedEvent](e)
	require.Len(t, done, 1)
	assert.True(t, done[0].Monastery)
	assert.Equal(t, core.SlotMonastery, done[0].Slot)
}

func TestMonastery_CompletedByLaterTile(t *testing.T) {
	e := newTestEngine(t, 2)
	at := core.NewCoordinate(60, 60)
	last := core.NewCoordinate(61, 61)
	for _, c := range at.Block() {
		if c != at && c != last {
			putTile(t, e, "B", c.X, c.Y, 0)
		}
	}

	pid := handTo(t, e, "B")
	_, err := e.PlaceTile(pid, 0, at, 0)
	require.NoError(t, err)
	comps, err := e.PlaceMeeple(pid, core.SlotMonastery)
	require.NoError(t, err)
	assert.Empty(t, comps)
	assert.Equal(t, 1, e.gs.Observer.Len())

	comps, err = e.ApplyPlacement(newTile(t, e, "B"), last, 0)
	require.NoError(t, err)
	require.Len(t, comps, 1)
	assert.True(t, comps[0].IsMonastery())
	assert.Equal(t, 9, comps[0].Resolution.Points)
	assert.Equal(t, 9, e.gs.Player(pid).Points)
	assert.Zero(t, e.gs.Observer.Len())
	assert.Empty(t, e.monasteries)

	placed := eventsOf[*events.TilePlacedEvent](e)
	assert.Equal(t, -1, placed[len(placed)-1].PlayerID, "engine placements carry no player")
}

func TestApplyPlacement_SharedRoadPaysEveryClaimant(t *testing.T) {
	e := newTestEngine(t, 2)
	putTile(t, e, "A", 90, 79, 0)
	u1 := putTile(t, e, "U", 90, 80, 0)
	u2 := putTile(t, e, "U", 90, 81, 0)
	u3 := putTile(t, e, "U", 90, 82, 0)
	p0, p1 := e.gs.Player(0), e.gs.Player(1)
	require.NoError(t, p0.Meeples[0].Place(u1, core.SlotTop))
	require.NoError(t, p0.Meeples[1].Place(u2, core.SlotBottom))
	require.NoError(t, p1.Meeples[0].Place(u3, core.SlotTop))

	// a second A caps the road from below; player 0 holds two meeples to one
	comps, err := e.ApplyPlacement(newTile(t, e, "A"), core.NewCoordinate(90, 83), 2)
	require.NoError(t, err)
	require.Len(t, comps, 1)

	c := comps[0]
	assert.Equal(t, core.Road, c.Kind)
	assert.Equal(t, 5, c.Resolution.Points)
	assert.Equal(t, []int{0, 1}, c.Resolution.Winners)
	require.Len(t, c.Freed, 3)
	assert.Equal(t, []int{5, 0, 5}, []int{c.Freed[0].Reward, c.Freed[1].Reward, c.Freed[2].Reward})

	assert.Equal(t, 5, p0.Points)
	assert.Equal(t, 5, p1.Points)
	assert.Empty(t, p0.PlacedMeeples())
	assert.Empty(t, p1.PlacedMeeples())

	done := eventsOf[*events.StructureCompletedEvent](e)
	require.Len(t, done, 1)
	assert.Equal(t, []int{0, 1}, done[0].Winners)
}

func TestSettle_ContestedRoadAndOpenMonastery(t *testing.T) {
	e := newTestEngine(t, 2)
	u1 := putTile(t, e, "U", 90, 80, 0)
	u2 := putTile(t, e, "U", 90, 81, 0)
	u3 := putTile(t, e, "U", 90, 82, 0)
	p0, p1 := e.gs.Player(0), e.gs.Player(1)
	require.NoError(t, p0.Meeples[0].Place(u1, core.SlotTop))
	require.NoError(t, p0.Meeples[1].Place(u2, core.SlotBottom))
	require.NoError(t, p1.Meeples[0].Place(u3, core.SlotTop))

	// monastery with two of its eight neighbours filled
	b := putTile(t, e, "B", 70, 70, 0)
	putTile(t, e, "B", 70, 71, 0)
	putTile(t, e, "B", 71, 70, 0)
	require.NoError(t, p1.Meeples[1].Place(b, core.SlotMonastery))

	freed, standings := e.Settle()
	require.Len(t, freed, 4)

	rewards := make([]int, len(freed))
	for i, f := range freed {
		rewards[i] = f.Reward
		assert.Equal(t, events.FreedSettlement, f.Reason)
	}
	// player 0 holds the majority; the single credit rides on their first meeple
	assert.Equal(t, []int{3, 0, 0, 3}, rewards)
	assert.Equal(t, []int{0, 0, 1, 1}, []int{freed[0].PlayerID, freed[1].PlayerID, freed[2].PlayerID, freed[3].PlayerID})

	assert.Equal(t, 3, p0.Points)
	assert.Equal(t, 3, p1.Points)
	for _, p := range e.gs.Players {
		assert.Empty(t, p.PlacedMeeples())
	}

	require.Len(t, standings, 2)
	assert.Equal(t, 1, standings[0].Rank)
	assert.Equal(t, 1, standings[1].Rank, "tied players share the top rank")
	assert.Len(t, eventsOf[*events.PlayerWonEvent](e), 2)

	again, standings2 := e.Settle()
	assert.Empty(t, again)
	assert.Equal(t, standings, standings2)
	assert.Len(t, eventsOf[*events.PlayerWonEvent](e), 2, "second settle commits nothing")
}

func TestPointLimit_EndsGame(t *testing.T) {
	e := newTestEngine(t, 2, func(c *GameConfig) { c.PointLimit = 3 })
	center := e.gs.Grid.Center()

	first := handTo(t, e, "A")
	_, err := e.PlaceTile(first, 0, center.Step(core.Top), 0)
	require.NoError(t, err)
	_, err = e.PlaceMeeple(first, core.SlotBottom)
	require.NoError(t, err)

	second := handTo(t, e, "W")
	_, err = e.PlaceTile(second, 0, center.Step(core.Bottom), 1)
	require.NoError(t, err)

	assert.True(t, e.IsGameOver())
	assert.Equal(t, states.PhaseEnded, e.CurrentPhase())
	assert.Equal(t, events.EndPointLimit, e.stateMachine.GetContext().EndReason)
	assert.Equal(t, []int{first}, e.stateMachine.GetContext().Winners)
	assert.False(t, e.gs.AwaitingMeeple())

	ended := eventsOf[*events.GameEndedEvent](e)
	require.Len(t, ended, 1)
	assert.Equal(t, events.EndPointLimit, ended[0].Reason)
	won := eventsOf[*events.PlayerWonEvent](e)
	require.Len(t, won, 1)
	assert.Equal(t, first, won[0].PlayerID)

	_, err = e.PlaceMeeple(second, core.SlotLeft)
	assert.ErrorIs(t, err, core.ErrGameOver)
	assert.ErrorIs(t, e.EndGame(events.EndAborted), core.ErrGameOver)
}

func TestSkipTurn_EmptyHandRefills(t *testing.T) {
	e := newTestEngine(t, 2)
	pid := handTo(t, e)

	require.NoError(t, e.SkipTurn(pid))
	skipped := eventsOf[*events.TurnSkippedEvent](e)
	require.Len(t, skipped, 1)
	assert.Equal(t, pid, skipped[0].PlayerID)
	assert.Empty(t, skipped[0].TileIDs)
	assert.Len(t, e.gs.Player(pid).Hand, DefaultHandSize)
	assert.Equal(t, 1, e.gs.Skips)
	assert.NotEqual(t, pid, e.gs.CurrentPlayer().ID)
}

func TestSkipTurn_Stalemate(t *testing.T) {
	e := newTestEngine(t, 2)
	e.gs.Pool = core.NewTilePool()
	// a river end can never join a board with no river
	for _, p := range e.gs.Players {
		p.Hand = []*core.Tile{e.catalog.EndTile()}
	}

	require.NoError(t, e.SkipTurn(e.gs.CurrentPlayer().ID))
	assert.False(t, e.IsGameOver())
	require.NoError(t, e.SkipTurn(e.gs.CurrentPlayer().ID))

	assert.True(t, e.IsGameOver())
	assert.Equal(t, events.EndStalemate, e.stateMachine.GetContext().EndReason)
	assert.Equal(t, states.PhaseEnded, e.CurrentPhase())
}

func TestTilesExhausted_EndsGame(t *testing.T) {
	e := newTestEngine(t, 2)
	e.gs.Pool = core.NewTilePool()
	for _, p := range e.gs.Players {
		p.Hand = nil
	}
	pid := handTo(t, e, "U")

	_, err := e.PlaceTile(pid, 0, e.gs.Grid.Center().Step(core.Top), 0)
	require.NoError(t, err)
	require.NoError(t, e.PassMeeple(pid))

	assert.True(t, e.IsGameOver())
	assert.Equal(t, events.EndTilesExhausted, e.stateMachine.GetContext().EndReason)
}

func TestMaxRounds_EndsGame(t *testing.T) {
	e := newTestEngine(t, 2, func(c *GameConfig) { c.MaxRounds = 1 })
	agent := NewRandomAgent(7, 0)

	for i := 0; i < 2; i++ {
		_, err := e.Turns().PlayTurn(context.Background(), agent)
		require.NoError(t, err)
	}
	assert.True(t, e.IsGameOver())
	assert.Equal(t, events.EndMaxRounds, e.stateMachine.GetContext().EndReason)
}

func TestCompleteRiverPhase(t *testing.T) {
	e := newTestEngine(t, 2, func(c *GameConfig) { c.RiverPhase = true })
	for _, p := range e.gs.Players {
		p.Hand = nil
	}
	center := e.gs.Grid.Center()

	require.NoError(t, e.CompleteRiverPhase())

	end := e.gs.Grid.At(center.Step(core.Top))
	require.NotNil(t, end)
	assert.Equal(t, "RE", end.Type)
	assert.Equal(t, core.River, end.Edge(core.Bottom), "the river end faces back at the source")
	assert.Equal(t, states.PhaseBase, e.CurrentPhase())
	assert.False(t, e.gs.RiverPhase)
	assert.Equal(t, 72-6, e.gs.Pool.Len())
	require.Len(t, eventsOf[*events.RiverPhaseCompletedEvent](e), 1)

	assert.ErrorIs(t, e.CompleteRiverPhase(), core.ErrWrongPhase)
	assert.ErrorIs(t, e.StartRiverPhase(), core.ErrWrongPhase)
}

func TestInconsistency_MovesToErrorPhase(t *testing.T) {
	e := newTestEngine(t, 2)
	center := e.gs.Grid.Center()

	first := handTo(t, e, "A")
	_, err := e.PlaceTile(first, 0, center.Step(core.Top), 0)
	require.NoError(t, err)
	_, err = e.PlaceMeeple(first, core.SlotBottom)
	require.NoError(t, err)

	// a claim owned by a player the game does not know
	a := e.gs.Grid.At(center.Step(core.Top))
	a.Claims[core.SlotBottom].PlayerID = 7

	second := handTo(t, e, "W")
	_, err = e.PlaceTile(second, 0, center.Step(core.Bottom), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInternalInconsistency)
	assert.Equal(t, states.PhaseError, e.CurrentPhase())
	assert.ErrorIs(t, e.Err(), core.ErrInternalInconsistency)

	_, err = e.PlaceMeeple(second, core.SlotLeft)
	assert.ErrorIs(t, err, core.ErrGameOver)
}

func TestRandomGame_RunsToTheEnd(t *testing.T) {
	for _, river := range []bool{true, false} {
		t.Run(fmt.Sprintf("river=%v", river), func(t *testing.T) {
			e := newTestEngine(t, 3, func(c *GameConfig) { c.RiverPhase = river })
			agent := NewRandomAgent(99, 0.5)

			for turns := 0; !e.IsGameOver(); turns++ {
				require.Less(t, turns, 500, "game did not finish")
				_, err := e.Turns().PlayTurn(context.Background(), agent)
				require.NoError(t, err)
			}

			assert.Equal(t, states.PhaseEnded, e.CurrentPhase())
			assert.Contains(t, []string{events.EndTilesExhausted, events.EndStalemate}, e.stateMachine.GetContext().EndReason)

			// the log sums to the score
			logged := make(map[int]int)
			for _, f := range eventsOf[*events.MeepleFreedEvent](e) {
				logged[f.PlayerID] += f.Reward
			}
			for _, p := range e.gs.Players {
				assert.Equal(t, p.Points, logged[p.ID], "player %d", p.ID)
				assert.Empty(t, p.PlacedMeeples())
			}

			placed := eventsOf[*events.MeeplePlacedEvent](e)
			freed := eventsOf[*events.MeepleFreedEvent](e)
			assert.Len(t, freed, len(placed), "every claim is eventually freed")

			stats := e.Stats()
			for _, s := range stats {
				total := 0
				for _, v := range s.PointsBy {
					total += v
				}
				assert.Equal(t, s.Points, total)
			}
			if river {
				assert.Len(t, eventsOf[*events.RiverPhaseCompletedEvent](e), 1)
			}
		})
	}
}
