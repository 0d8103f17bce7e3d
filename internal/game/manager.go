package game

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/Rushigaming001/askify-sketch/pkg/utils"
)

var ErrRoomNotFound = errors.New("room not found")

// RoomOptions are the host-tunable knobs at creation time. Zero values fall
// back to the defaults.
type RoomOptions struct {
	MaxRounds  int `json:"maxRounds"`
	RoundTime  int `json:"roundTimeSeconds"`
	MaxPlayers int `json:"maxPlayers"`
}

// Manager owns the live sessions, keyed by room id and join code.
type Manager struct {
	cfg Config

	mu       sync.RWMutex
	sessions map[string]*Session
	byCode   map[string]string
}

func NewManager(cfg Config) *Manager {
	return &Manager{
		cfg:      cfg,
		sessions: make(map[string]*Session),
		byCode:   make(map[string]string),
	}
}

// SetNotifier wires the display layer in after construction; the gateway
// depends on the manager, so it cannot be passed to NewManager.
func (m *Manager) SetNotifier(n Notifier) {
	m.cfg.Notify = n
}

// CreateRoom persists a fresh room record and spins up its session actor.
func (m *Manager) CreateRoom(ctx context.Context, hostUserID string, opts RoomOptions) (*Session, *Room, error) {
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = DefaultMaxRounds
	}
	if opts.RoundTime <= 0 {
		opts.RoundTime = DefaultRoundTime
	}
	if opts.MaxPlayers <= 0 {
		opts.MaxPlayers = DefaultMaxPlayers
	}

	room := &Room{
		ID:         uuid.NewString(),
		Code:       utils.GenShortID(),
		HostUserID: hostUserID,
		Status:     StatusWaiting,
		MaxRounds:  opts.MaxRounds,
		RoundTime:  opts.RoundTime,
		MaxPlayers: opts.MaxPlayers,
	}
	if err := m.cfg.Store.CreateRoom(ctx, room); err != nil {
		return nil, nil, err
	}

	sess := NewSession(m.cfg, room)
	go sess.Run()

	m.mu.Lock()
	m.sessions[room.ID] = sess
	m.byCode[room.Code] = room.ID
	m.mu.Unlock()

	return sess, room, nil
}

func (m *Manager) Get(roomID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[roomID]
	return s, ok
}

func (m *Manager) GetByCode(code string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byCode[code]
	if !ok {
		return nil, false
	}
	s, ok := m.sessions[id]
	return s, ok
}

// ReapIfEmpty tears the session down once its last player disconnects. The
// persisted records stay; the cleanup worker archives them later.
func (m *Manager) ReapIfEmpty(roomID string) {
	m.mu.RLock()
	sess, ok := m.sessions[roomID]
	m.mu.RUnlock()
	if !ok || !sess.Empty() {
		return
	}

	m.mu.Lock()
	delete(m.sessions, roomID)
	for code, id := range m.byCode {
		if id == roomID {
			delete(m.byCode, code)
		}
	}
	m.mu.Unlock()
	sess.Stop()
}
