package tictactoe

import "github.com/rocketscienceinc/tictactoe-engine/internal/entity"

type EventType string

const (
	EventClick   EventType = "click"
	EventVictory EventType = "victory"
	EventDraw    EventType = "draw"
	EventRender  EventType = "render"
	EventTick    EventType = "tick"
	EventTimeout EventType = "timeout"
	EventReset   EventType = "reset"
)

// Event is a notification for the presentation layer. State is a copy taken when the event was raised.
type Event struct {
	Type    EventType     `json:"type"`
	Message string        `json:"message,omitempty"`
	Lines   []entity.Line `json:"lines,omitempty"`
	// Cells scopes celebratory effects: the winning cells on victory, the whole board on draw.
	Cells []int `json:"cells,omitempty"`
	State State `json:"state"`
}

// Listener receives engine events one at a time, in the order they were raised, without the engine lock held.
// A listener may read the engine but must not call its mutating methods.
type Listener func(Event)

// State is a read-only snapshot of an engine.
type State struct {
	Board        entity.Board   `json:"board"`
	Player       entity.Mark    `json:"player"`
	Symbols      entity.Symbols `json:"symbols"`
	Scores       entity.Scores  `json:"scores"`
	TimeLeft     int            `json:"time_left"`
	Budget       int            `json:"budget"`
	Progress     float64        `json:"progress"`
	Decided      bool           `json:"decided"`
	Winner       entity.Mark    `json:"winner,omitempty"`
	WinningLines []entity.Line  `json:"winning_lines,omitempty"`
	CurrentIndex int            `json:"current_index"`
	HistoryLen   int            `json:"history_len"`
	MysteryMode  bool           `json:"mystery_mode"`
	SoundEnabled bool           `json:"sound_enabled"`
	TimerActive  bool           `json:"timer_active"`
}

// Symbol returns the display glyph of the cell at idx.
func (that State) Symbol(idx int) string {
	return that.Symbols.For(that.Board[idx])
}
