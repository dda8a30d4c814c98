package events

import (
	"encoding/json"
	"fmt"
)

// newOfType returns an empty variant for eventType.
func newOfType(eventType string) (Event, error) {
	switch eventType {
	case TypeGameStarted:
		return &GameStartedEvent{}, nil
	case TypeStartingTilePlaced:
		return &StartingTilePlacedEvent{}, nil
	case TypeTilesDrawn:
		return &TilesDrawnEvent{}, nil
	case TypeTilePlaced:
		return &TilePlacedEvent{}, nil
	case TypeMeeplePlaced:
		return &MeeplePlacedEvent{}, nil
	case TypeMeeplePassed:
		return &MeeplePassedEvent{}, nil
	case TypeTurnSkipped:
		return &TurnSkippedEvent{}, nil
	case TypeStructureCompleted:
		return &StructureCompletedEvent{}, nil
	case TypeMeepleFreed:
		return &MeepleFreedEvent{}, nil
	case TypeRiverPhaseCompleted:
		return &RiverPhaseCompletedEvent{}, nil
	case TypeGameEnded:
		return &GameEndedEvent{}, nil
	case TypePlayerWon:
		return &PlayerWonEvent{}, nil
	case TypeStateTransition:
		return &StateTransitionEvent{}, nil
	}
	return nil, fmt.Errorf("unknown event type %q", eventType)
}

// Unmarshal decodes one JSON event, choosing the variant from its type field.
func Unmarshal(data []byte) (Event, error) {
	var head BaseEvent
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode event header: %w", err)
	}
	e, err := newOfType(head.EventType)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, e); err != nil {
		return nil, fmt.Errorf("decode %s event: %w", head.EventType, err)
	}
	return e, nil
}
