package server

import (
	"encoding/json"
	"time"

	"github.com/lox/tilematch/internal/board"
	"github.com/lox/tilematch/internal/session"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type StartData struct {
	// Level to load. Zero loads the first level.
	Level int `json:"level"`
}

type RevealData struct {
	Card int `json:"card"`
}

type AddTimeData struct {
	Seconds int `json:"seconds"`
}

// Server → Client Messages

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CardData is a card as seen by the player. Labels of face-down cards are
// withheld.
type CardData struct {
	ID      int     `json:"id"`
	Row     int     `json:"row"`
	Col     int     `json:"col"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Label   string  `json:"label,omitempty"`
	Flipped bool    `json:"flipped"`
	Matched bool    `json:"matched"`
}

type BoardData struct {
	Session   string           `json:"session"`
	Level     int              `json:"level"`
	Name      string           `json:"name,omitempty"`
	Phase     string           `json:"phase"`
	Rows      int              `json:"rows"`
	Cols      int              `json:"cols"`
	Moves     int              `json:"moves"`
	MaxMoves  int              `json:"maxMoves,omitempty"`
	Best      int              `json:"best,omitempty"`
	HasBest   bool             `json:"hasBest"`
	Timed     bool             `json:"timed"`
	TimeLeft  int              `json:"timeLeft,omitempty"`
	Remaining int              `json:"remaining"`
	Cards     []CardData       `json:"cards"`
	Outcome   *session.Outcome `json:"outcome,omitempty"`
}

type MoveData struct {
	Moves int `json:"moves"`
}

type MatchData struct {
	Remaining int `json:"remaining"`
}

type TickData struct {
	TimeLeft int `json:"timeLeft"`
}

type HintData struct {
	Found bool `json:"found"`
	A     int  `json:"a"`
	B     int  `json:"b"`
}

// BoardDataFromSnapshot converts a session snapshot for the wire.
func BoardDataFromSnapshot(s session.Snapshot) BoardData {
	cards := make([]CardData, len(s.Cards))
	for i, c := range s.Cards {
		cards[i] = CardDataFromCard(c)
	}
	return BoardData{
		Session:   s.Session,
		Level:     s.Level,
		Name:      s.LevelName,
		Phase:     string(s.Phase),
		Rows:      s.Rows,
		Cols:      s.Cols,
		Moves:     s.Moves,
		MaxMoves:  s.MaxMoves,
		Best:      s.Best,
		HasBest:   s.HadBest,
		Timed:     s.Timed,
		TimeLeft:  s.TimeLeft,
		Remaining: s.Remaining,
		Cards:     cards,
		Outcome:   s.Outcome,
	}
}

// CardDataFromCard converts a card, hiding its label while face down.
func CardDataFromCard(c board.Card) CardData {
	d := CardData{
		ID:      c.ID,
		Row:     c.Row,
		Col:     c.Col,
		X:       c.X,
		Y:       c.Y,
		Width:   c.Width,
		Height:  c.Height,
		Flipped: c.Flipped,
		Matched: c.Matched,
	}
	if c.FaceUp() {
		d.Label = string(c.Label)
	}
	return d
}
