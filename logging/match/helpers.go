package match

import (
	"context"

	"tankarena/server/logging"
)

const (
	// EventGameStarted is emitted when a match begins.
	EventGameStarted logging.EventType = "match.game_started"
	// EventRoundEnded is emitted at the end of each round.
	EventRoundEnded logging.EventType = "match.round_ended"
	// EventGameEnded is emitted when a team reaches the winning score.
	EventGameEnded logging.EventType = "match.game_ended"
	// EventInputRejected is emitted when a player input is refused.
	EventInputRejected logging.EventType = "match.input_rejected"
)

// GamePayload captures the match parameters at start.
type GamePayload struct {
	GameID  string `json:"gameId"`
	MapName string `json:"mapName"`
	BestOf  int    `json:"bestOf"`
	Players int    `json:"players"`
	Bots    int    `json:"bots"`
}

// RoundPayload captures one round outcome.
type RoundPayload struct {
	GameID    string `json:"gameId"`
	Round     int    `json:"round"`
	Winner    string `json:"winner,omitempty"`
	BlueScore int    `json:"blueScore"`
	RedScore  int    `json:"redScore"`
}

// ResultPayload captures the final match outcome.
type ResultPayload struct {
	GameID string `json:"gameId"`
	Winner string `json:"winner"`
}

// RejectionPayload captures one refused input.
type RejectionPayload struct {
	GameID string `json:"gameId"`
	Code   string `json:"code"`
}

// GameStarted publishes a match start event.
func GameStarted(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload GamePayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventGameStarted,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: "match",
		Payload:  payload,
		Extra:    extra,
	})
}

// RoundEnded publishes a round outcome event.
func RoundEnded(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload RoundPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventRoundEnded,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: "match",
		Payload:  payload,
		Extra:    extra,
	})
}

// GameEnded publishes a match completion event.
func GameEnded(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ResultPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventGameEnded,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: "match",
		Payload:  payload,
		Extra:    extra,
	})
}

// InputRejected publishes an input refusal event.
func InputRejected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload RejectionPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventInputRejected,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: "match",
		Payload:  payload,
		Extra:    extra,
	})
}
