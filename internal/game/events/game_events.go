package events

import (
	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/core"
)

// Event type constants
const (
	TypeGameStarted         = "game.started"
	TypeStartingTilePlaced  = "tile.starting_placed"
	TypeTilesDrawn          = "tiles.drawn"
	TypeTilePlaced          = "tile.placed"
	TypeMeeplePlaced        = "meeple.placed"
	TypeMeeplePassed        = "meeple.passed"
	TypeTurnSkipped         = "turn.skipped"
	TypeStructureCompleted  = "structure.completed"
	TypeMeepleFreed         = "meeple.freed"
	TypeRiverPhaseCompleted = "river.completed"
	TypeGameEnded           = "game.ended"
	TypePlayerWon           = "player.won"
	TypeStateTransition     = "state.transition"
)

// Types lists every event type in the order the variants are declared.
var Types = []string{
	TypeGameStarted,
	TypeStartingTilePlaced,
	TypeTilesDrawn,
	TypeTilePlaced,
	TypeMeeplePlaced,
	TypeMeeplePassed,
	TypeTurnSkipped,
	TypeStructureCompleted,
	TypeMeepleFreed,
	TypeRiverPhaseCompleted,
	TypeGameEnded,
	TypePlayerWon,
	TypeStateTransition,
}

// Why a meeple came off the board
const (
	FreedCompleted  = "completed"
	FreedSettlement = "settlement"
)

// Why a game ended
const (
	EndPointLimit     = "point_limit"
	EndTilesExhausted = "tiles_exhausted"
	EndMaxRounds      = "max_rounds"
	EndStalemate      = "stalemate"
	EndAborted        = "aborted"
)

// GameStartedEvent carries everything needed to rebuild the game from scratch.
type GameStartedEvent struct {
	BaseEvent
	PlayerIDs        []int        `json:"player_ids"`
	TurnOrder        []int        `json:"turn_order"`
	MeeplesPerPlayer int          `json:"meeples_per_player"`
	HandSize         int          `json:"hand_size"`
	MapSize          int          `json:"map_size"`
	PointLimit       int          `json:"point_limit"`
	MaxRounds        int          `json:"max_rounds"`
	RiverPhase       bool         `json:"river_phase"`
	Seed             uint64       `json:"seed"`
	Scoring          core.Scoring `json:"scoring"`
}

// NewGameStartedEvent creates a new GameStartedEvent
func NewGameStartedEvent(gameID string, playerIDs []int) *GameStartedEvent {
	return &GameStartedEvent{
		BaseEvent: newBase(TypeGameStarted, gameID),
		PlayerIDs: playerIDs,
	}
}

// StartingTilePlacedEvent is published when the river source is laid at the centre
type StartingTilePlacedEvent struct {
	BaseEvent
	Tile core.Ref `json:"tile"`
}

func NewStartingTilePlacedEvent(gameID string, tile core.Ref) *StartingTilePlacedEvent {
	return &StartingTilePlacedEvent{BaseEvent: newBase(TypeStartingTilePlaced, gameID), Tile: tile}
}

// TilesDrawnEvent records tiles moving from the pool into a hand
type TilesDrawnEvent struct {
	BaseEvent
	PlayerID int      `json:"player_id"`
	TileIDs  []string `json:"tile_ids"`
}

func NewTilesDrawnEvent(gameID string, playerID int, tileIDs []string) *TilesDrawnEvent {
	return &TilesDrawnEvent{BaseEvent: newBase(TypeTilesDrawn, gameID), PlayerID: playerID, TileIDs: tileIDs}
}

// TilePlacedEvent is published once a tile is on the board
type TilePlacedEvent struct {
	BaseEvent
	PlayerID int      `json:"player_id"`
	Tile     core.Ref `json:"tile"`
}

func NewTilePlacedEvent(gameID string, playerID int, tile core.Ref) *TilePlacedEvent {
	return &TilePlacedEvent{BaseEvent: newBase(TypeTilePlaced, gameID), PlayerID: playerID, Tile: tile}
}

// MeeplePlacedEvent is published when a player claims a slot
type MeeplePlacedEvent struct {
	BaseEvent
	PlayerID int            `json:"player_id"`
	MeepleID int            `json:"meeple_id"`
	Tile     core.Ref       `json:"tile"`
	Slot     core.ClaimSlot `json:"slot"`
}

func NewMeeplePlacedEvent(gameID string, m *core.Meeple) *MeeplePlacedEvent {
	return &MeeplePlacedEvent{
		BaseEvent: newBase(TypeMeeplePlaced, gameID),
		PlayerID:  m.PlayerID,
		MeepleID:  m.ID,
		Tile:      m.Tile.Ref(),
		Slot:      m.Slot,
	}
}

// MeeplePassedEvent is published when a player declines to claim
type MeeplePassedEvent struct {
	BaseEvent
	PlayerID int    `json:"player_id"`
	TileID   string `json:"tile_id"`
}

func NewMeeplePassedEvent(gameID string, playerID int, tileID string) *MeeplePassedEvent {
	return &MeeplePassedEvent{BaseEvent: newBase(TypeMeeplePassed, gameID), PlayerID: playerID, TileID: tileID}
}

// TurnSkippedEvent is published when no tile in a player's hand fits anywhere
type TurnSkippedEvent struct {
	BaseEvent
	PlayerID int      `json:"player_id"`
	TileIDs  []string `json:"tile_ids"`
}

func NewTurnSkippedEvent(gameID string, playerID int, tileIDs []string) *TurnSkippedEvent {
	return &TurnSkippedEvent{BaseEvent: newBase(TypeTurnSkipped, gameID), PlayerID: playerID, TileIDs: tileIDs}
}

// StructureCompletedEvent is published for each completed road, city or monastery
type StructureCompletedEvent struct {
	BaseEvent
	Kind      core.StructureType `json:"kind"`
	Origin    core.Ref           `json:"origin"`
	Slot      core.ClaimSlot     `json:"slot"`
	Monastery bool               `json:"monastery,omitempty"`
	TileIDs   []string           `json:"tile_ids"`
	Points    int                `json:"points"`
	Winners   []int              `json:"winners"`
}

// NewStructureCompletedEvent creates a new StructureCompletedEvent
func NewStructureCompletedEvent(gameID string, kind core.StructureType, origin *core.Tile, slot core.ClaimSlot, tiles []*core.Tile, points int, winners []int) *StructureCompletedEvent {
	ids := make([]string, len(tiles))
	for i, t := range tiles {
		ids[i] = t.ID
	}
	return &StructureCompletedEvent{
		BaseEvent: newBase(TypeStructureCompleted, gameID),
		Kind:      kind,
		Origin:    origin.Ref(),
		Slot:      slot,
		Monastery: slot == core.SlotMonastery,
		TileIDs:   ids,
		Points:    points,
		Winners:   winners,
	}
}

// MeepleFreedEvent is a reward disbursement. Reward is already credited to the
// player when the event is committed.
type MeepleFreedEvent struct {
	BaseEvent
	PlayerID int            `json:"player_id"`
	MeepleID int            `json:"meeple_id"`
	Reward   int            `json:"reward"`
	Tile     core.Ref       `json:"tile"`
	Slot     core.ClaimSlot `json:"slot"`
	Reason   string         `json:"reason"`
}

// NewMeepleFreedEvent snapshots m before it leaves the board
func NewMeepleFreedEvent(gameID string, m *core.Meeple, reward int, reason string) *MeepleFreedEvent {
	return &MeepleFreedEvent{
		BaseEvent: newBase(TypeMeepleFreed, gameID),
		PlayerID:  m.PlayerID,
		MeepleID:  m.ID,
		Reward:    reward,
		Tile:      m.Tile.Ref(),
		Slot:      m.Slot,
		Reason:    reason,
	}
}

// RiverPhaseCompletedEvent is published once the river end is laid
type RiverPhaseCompletedEvent struct {
	BaseEvent
	EndTile core.Ref `json:"end_tile"`
}

func NewRiverPhaseCompletedEvent(gameID string, end core.Ref) *RiverPhaseCompletedEvent {
	return &RiverPhaseCompletedEvent{BaseEvent: newBase(TypeRiverPhaseCompleted, gameID), EndTile: end}
}

// GameEndedEvent is published when no further moves are accepted
type GameEndedEvent struct {
	BaseEvent
	Reason string `json:"reason"`
	Round  int    `json:"round"`
}

// NewGameEndedEvent creates a new GameEndedEvent
func NewGameEndedEvent(gameID, reason string, round int) *GameEndedEvent {
	return &GameEndedEvent{BaseEvent: newBase(TypeGameEnded, gameID), Reason: reason, Round: round}
}

// PlayerWonEvent is published for every player sharing the top score
type PlayerWonEvent struct {
	BaseEvent
	PlayerID int `json:"player_id"`
	Points   int `json:"points"`
}

func NewPlayerWonEvent(gameID string, playerID, points int) *PlayerWonEvent {
	return &PlayerWonEvent{BaseEvent: newBase(TypePlayerWon, gameID), PlayerID: playerID, Points: points}
}

// StateTransitionEvent is published when the game state machine transitions between phases
type StateTransitionEvent struct {
	BaseEvent
	FromPhase string `json:"from_phase"`
	ToPhase   string `json:"to_phase"`
	Reason    string `json:"reason"`
}

// NewStateTransitionEvent creates a new StateTransitionEvent
func NewStateTransitionEvent(gameID, fromPhase, toPhase, reason string) *StateTransitionEvent {
	return &StateTransitionEvent{
		BaseEvent: newBase(TypeStateTransition, gameID),
		FromPhase: fromPhase,
		ToPhase:   toPhase,
		Reason:    reason,
	}
}
