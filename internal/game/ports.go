package game

import "context"

// ChangeKind tags entries on the record change feed.
type ChangeKind string

const (
	ChangeRoom   ChangeKind = "room"
	ChangePlayer ChangeKind = "player"
	ChangeGuess  ChangeKind = "guess"
)

// Change is one row-level change notification, scoped to a room.
type Change struct {
	Kind   ChangeKind `json:"kind"`
	Room   *Room      `json:"room,omitempty"`
	Player *Player    `json:"player,omitempty"`
	Guess  *Guess     `json:"guess,omitempty"`
}

// Store is the persisted-record collaborator. Implementations must emit a
// Change on Watch subscribers after every successful write.
type Store interface {
	CreateRoom(ctx context.Context, room *Room) error
	GetRoom(ctx context.Context, id string) (*Room, error)
	GetRoomByCode(ctx context.Context, code string) (*Room, error)
	UpdateRoom(ctx context.Context, id string, fields map[string]any) error

	CreatePlayer(ctx context.Context, player *Player) error
	ListPlayers(ctx context.Context, roomID string) ([]*Player, error)
	UpdatePlayer(ctx context.Context, id string, fields map[string]any) error

	CreateGuess(ctx context.Context, guess *Guess) error
	ListGuesses(ctx context.Context, roomID string, limit int) ([]*Guess, error)

	// Watch subscribes to changes for one room. The returned cancel func
	// must be called when the subscriber goes away.
	Watch(roomID string) (<-chan Change, func())
}

// Broadcaster is the room-scoped fire-and-forget transport, used only for
// the ephemeral draw, clear and undo events.
type Broadcaster interface {
	Publish(roomID, event string, payload any) error
	Subscribe(roomID string, handler func(event string, payload []byte)) (cancel func())
}

// Notifier delivers a private message to a single user's connections, e.g.
// the drawer's word choices or a close-guess hint.
type Notifier interface {
	NotifyUser(userID, event string, payload any)
}
