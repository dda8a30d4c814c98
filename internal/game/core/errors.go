package core

import (
	"errors"
	"fmt"
)

var (
	ErrIllegalPlacement      = errors.New("illegal placement")
	ErrIllegalMeeple         = errors.New("illegal meeple placement")
	ErrInternalInconsistency = errors.New("internal inconsistency")
	ErrTilePlaced            = errors.New("tile already placed")
	ErrGameOver              = errors.New("game is over")
	ErrInvalidPlayer         = errors.New("invalid player ID")
	ErrWrongPhase            = errors.New("move not allowed in current phase")
	ErrMustPlace             = errors.New("a tile in hand can still be placed")
)

// Reason is the machine-readable cause of a rejected move.
type Reason string

const (
	ReasonOccupied        Reason = "occupied"
	ReasonNoNeighbour     Reason = "no_neighbour"
	ReasonEdgeMismatch    Reason = "edge_mismatch"
	ReasonInvalidRotation Reason = "invalid_rotation"
	ReasonNotInHand       Reason = "not_in_hand"
	ReasonRiverDisjoint   Reason = "river_disjoint"
	ReasonRiverUTurn      Reason = "river_uturn"
	ReasonOutOfBounds     Reason = "out_of_bounds"

	ReasonNoMeeple       Reason = "no_meeple"
	ReasonAlreadyClaimed Reason = "already_claimed"
	ReasonNotClaimable   Reason = "not_claimable"
	ReasonNoMonastery    Reason = "no_monastery"
	ReasonSlotOccupied   Reason = "slot_occupied"
	ReasonWrongTile      Reason = "wrong_tile"
)

// MoveError is a rejected move. Kind is ErrIllegalPlacement or ErrIllegalMeeple.
type MoveError struct {
	Kind     error
	Reason   Reason
	PlayerID int
	TileID   string
	Pos      Coordinate
	Slot     *ClaimSlot
	Detail   string
}

func (e *MoveError) Error() string {
	target := fmt.Sprintf("%s at %s", e.TileID, e.Pos)
	if e.Slot != nil {
		target = fmt.Sprintf("%s on %s", target, *e.Slot)
	}
	msg := fmt.Sprintf("%s: %v: %s", target, e.Kind, e.Reason)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.PlayerID >= 0 {
		msg = fmt.Sprintf("player %d: %s", e.PlayerID, msg)
	}
	return msg
}

func (e *MoveError) Unwrap() error { return e.Kind }

// NewPlacementError builds an ErrIllegalPlacement rejection with no player attached.
func NewPlacementError(reason Reason, t *Tile, pos Coordinate, detail string) *MoveError {
	e := &MoveError{Kind: ErrIllegalPlacement, Reason: reason, PlayerID: -1, Pos: pos, Detail: detail}
	if t != nil {
		e.TileID = t.ID
	}
	return e
}

// NewMeepleError builds an ErrIllegalMeeple rejection with no player attached.
func NewMeepleError(reason Reason, t *Tile, slot ClaimSlot, detail string) *MoveError {
	e := &MoveError{Kind: ErrIllegalMeeple, Reason: reason, PlayerID: -1, Slot: &slot, Detail: detail}
	if t != nil {
		e.TileID = t.ID
		if t.Pos != nil {
			e.Pos = *t.Pos
		}
	}
	return e
}

// WithPlayer attributes a move error to playerID. Other errors pass through.
func WithPlayer(err error, playerID int) error {
	var me *MoveError
	if errors.As(err, &me) {
		cp := *me
		cp.PlayerID = playerID
		return &cp
	}
	return err
}

// ReasonOf extracts the rejection reason from err, or "" when err is not a MoveError.
func ReasonOf(err error) Reason {
	var me *MoveError
	if errors.As(err, &me) {
		return me.Reason
	}
	return ""
}

// InconsistencyError reports engine state that a correct implementation never reaches.
type InconsistencyError struct {
	Operation string
	Detail    string
}

func NewInconsistencyError(op, detail string) *InconsistencyError {
	return &InconsistencyError{Operation: op, Detail: detail}
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("%s: %v: %s", e.Operation, ErrInternalInconsistency, e.Detail)
}

func (e *InconsistencyError) Unwrap() error { return ErrInternalInconsistency }

// GameError adds round and player context to an engine error.
type GameError struct {
	Round     int
	PlayerID  int
	Operation string
	Err       error
}

func (e *GameError) Error() string {
	if e.PlayerID >= 0 {
		return fmt.Sprintf("round %d: player %d %s: %v", e.Round, e.PlayerID, e.Operation, e.Err)
	}
	return fmt.Sprintf("round %d: %s: %v", e.Round, e.Operation, e.Err)
}

func (e *GameError) Unwrap() error { return e.Err }

// WrapGameError wraps err with turn context. A nil err stays nil.
func WrapGameError(round, playerID int, op string, err error) error {
	if err == nil {
		return nil
	}
	return &GameError{Round: round, PlayerID: playerID, Operation: op, Err: err}
}
