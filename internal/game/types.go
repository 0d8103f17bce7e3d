// Package game implements the room session engine: the turn-based state
// machine, guess handling, scoring and canvas orchestration for one room.
package game

import "time"

type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// Phase subdivides StatusPlaying.
type Phase string

const (
	PhaseNone          Phase = ""
	PhaseSelectingWord Phase = "selecting_word"
	PhaseDrawing       Phase = "drawing"
	PhaseRoundEnd      Phase = "round_end"
)

// Room is the authoritative, persisted record for one game room. Mutated by
// the session only.
type Room struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	Code            string    `gorm:"uniqueIndex;size:16;not null" json:"code"`
	HostUserID      string    `gorm:"size:36;not null" json:"hostUserId"`
	Status          Status    `gorm:"size:16;not null" json:"status"`
	Phase           Phase     `gorm:"size:24" json:"phase"`
	CurrentRound    int       `json:"currentRound"`
	MaxRounds       int       `json:"maxRounds"`
	CurrentDrawerID string    `gorm:"size:36" json:"currentDrawerId"`
	CurrentWord     string    `gorm:"size:64" json:"-"`
	CurrentHint     string    `gorm:"size:256" json:"currentHint"`
	RoundTime       int       `json:"roundTimeSeconds"`
	MaxPlayers      int       `json:"maxPlayers"`
	RoundEndsAt     time.Time `json:"roundEndsAt"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	// RevealedWord carries the plaintext word in snapshots, but only once
	// the round is over. Never persisted.
	RevealedWord string `gorm:"-" json:"revealedWord,omitempty"`
}

// Snapshot returns a copy safe to hand to display layers. The plaintext word
// is exposed only while the round result is on screen or the game is done.
func (r Room) Snapshot() Room {
	if r.Phase == PhaseRoundEnd || r.Status == StatusFinished {
		r.RevealedWord = r.CurrentWord
	}
	r.CurrentWord = ""
	return r
}

// Player is one seat in a room. Score only ever grows; HasGuessed is a
// per-round flag.
type Player struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	RoomID      string    `gorm:"index;size:36;not null" json:"roomId"`
	UserID      string    `gorm:"index;size:36;not null" json:"userId"`
	DisplayName string    `gorm:"size:64;not null" json:"displayName"`
	AvatarColor string    `gorm:"size:8" json:"avatarColor"`
	Score       int       `json:"score"`
	HasGuessed  bool      `json:"hasGuessed"`
	Connected   bool      `json:"connected"`
	JoinedAt    time.Time `gorm:"autoCreateTime;index" json:"joinedAt"`
}

// Guess is an append-only chat/guess row. Correct guesses are stored with
// the text replaced by CorrectGuessMarker so the word never leaks through
// the feed.
type Guess struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	RoomID    string    `gorm:"index;size:36;not null" json:"roomId"`
	PlayerID  string    `gorm:"size:36;not null" json:"playerId"`
	Text      string    `gorm:"size:256;not null" json:"text"`
	IsCorrect bool      `json:"isCorrect"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
}

const CorrectGuessMarker = "***"

// Defaults applied at room creation.
const (
	DefaultRoundTime  = 80
	DefaultMaxRounds  = 3
	DefaultMaxPlayers = 8

	CanvasWidth  = 800
	CanvasHeight = 600
)
