package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Rushigaming001/askify-sketch/internal/game"
)

// Memory is the in-process store used in development and tests. It applies
// the same snake_case field-update keys as the GORM repository so the two
// are interchangeable behind game.Store.
type Memory struct {
	mu      sync.RWMutex
	rooms   map[string]*game.Room
	players map[string]*game.Player
	guesses map[string][]*game.Guess // by room id
	feed    *feed
}

var _ game.Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		rooms:   make(map[string]*game.Room),
		players: make(map[string]*game.Player),
		guesses: make(map[string][]*game.Guess),
		feed:    newFeed(),
	}
}

func (m *Memory) CreateRoom(ctx context.Context, room *game.Room) error {
	m.mu.Lock()
	cp := *room
	m.rooms[room.ID] = &cp
	m.mu.Unlock()

	m.feed.emit(room.ID, game.Change{Kind: game.ChangeRoom, Room: &cp})
	return nil
}

func (m *Memory) GetRoom(ctx context.Context, id string) (*game.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	if !ok {
		return nil, game.ErrRoomNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *Memory) GetRoomByCode(ctx context.Context, code string) (*game.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.rooms {
		if r.Code == code {
			cp := *r
			return &cp, nil
		}
	}
	return nil, game.ErrRoomNotFound
}

func (m *Memory) UpdateRoom(ctx context.Context, id string, fields map[string]any) error {
	m.mu.Lock()
	r, ok := m.rooms[id]
	if !ok {
		m.mu.Unlock()
		return game.ErrRoomNotFound
	}
	if err := applyRoomFields(r, fields); err != nil {
		m.mu.Unlock()
		return err
	}
	r.UpdatedAt = time.Now()
	cp := *r
	m.mu.Unlock()

	m.feed.emit(id, game.Change{Kind: game.ChangeRoom, Room: &cp})
	return nil
}

func (m *Memory) CreatePlayer(ctx context.Context, p *game.Player) error {
	m.mu.Lock()
	cp := *p
	m.players[p.ID] = &cp
	m.mu.Unlock()

	m.feed.emit(p.RoomID, game.Change{Kind: game.ChangePlayer, Player: &cp})
	return nil
}

func (m *Memory) ListPlayers(ctx context.Context, roomID string) ([]*game.Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*game.Player
	for _, p := range m.players {
		if p.RoomID == roomID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out, nil
}

func (m *Memory) UpdatePlayer(ctx context.Context, id string, fields map[string]any) error {
	m.mu.Lock()
	p, ok := m.players[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("player %s not found", id)
	}
	if err := applyPlayerFields(p, fields); err != nil {
		m.mu.Unlock()
		return err
	}
	cp := *p
	m.mu.Unlock()

	m.feed.emit(p.RoomID, game.Change{Kind: game.ChangePlayer, Player: &cp})
	return nil
}

func (m *Memory) CreateGuess(ctx context.Context, g *game.Guess) error {
	m.mu.Lock()
	cp := *g
	m.guesses[g.RoomID] = append(m.guesses[g.RoomID], &cp)
	m.mu.Unlock()

	m.feed.emit(g.RoomID, game.Change{Kind: game.ChangeGuess, Guess: &cp})
	return nil
}

func (m *Memory) ListGuesses(ctx context.Context, roomID string, limit int) ([]*game.Guess, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows := m.guesses[roomID]
	if limit > 0 && len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}
	out := make([]*game.Guess, 0, len(rows))
	for _, g := range rows {
		cp := *g
		out = append(out, &cp)
	}
	return out, nil
}

func (m *Memory) Watch(roomID string) (<-chan game.Change, func()) {
	return m.feed.subscribe(roomID)
}

// DeleteRoomData removes everything belonging to a room; used by the
// cleanup worker.
func (m *Memory) DeleteRoomData(ctx context.Context, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, roomID)
	delete(m.guesses, roomID)
	for id, p := range m.players {
		if p.RoomID == roomID {
			delete(m.players, id)
		}
	}
	return nil
}

func applyRoomFields(r *game.Room, fields map[string]any) error {
	for k, v := range fields {
		switch k {
		case "status":
			r.Status = v.(game.Status)
		case "phase":
			r.Phase = v.(game.Phase)
		case "current_round":
			r.CurrentRound = v.(int)
		case "current_drawer_id":
			r.CurrentDrawerID = v.(string)
		case "current_word":
			r.CurrentWord = v.(string)
		case "current_hint":
			r.CurrentHint = v.(string)
		case "round_ends_at":
			r.RoundEndsAt = v.(time.Time)
		default:
			return fmt.Errorf("unknown room field %q", k)
		}
	}
	return nil
}

func applyPlayerFields(p *game.Player, fields map[string]any) error {
	for k, v := range fields {
		switch k {
		case "score":
			p.Score = v.(int)
		case "has_guessed":
			p.HasGuessed = v.(bool)
		case "connected":
			p.Connected = v.(bool)
		case "display_name":
			p.DisplayName = v.(string)
		default:
			return fmt.Errorf("unknown player field %q", k)
		}
	}
	return nil
}
