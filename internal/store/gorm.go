package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Rushigaming001/askify-sketch/internal/game"
)

// DB is the MySQL-backed store. Change notifications are emitted in-process
// after each successful commit; the writing instance is the room's session
// owner, so every change to a room flows through one process.
type DB struct {
	db   *gorm.DB
	feed *feed
}

var _ game.Store = (*DB)(nil)

func Open(dsn string) (*DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	if err := db.AutoMigrate(&game.Room{}, &game.Player{}, &game.Guess{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &DB{db: db, feed: newFeed()}, nil
}

func (s *DB) CreateRoom(ctx context.Context, room *game.Room) error {
	if err := s.db.WithContext(ctx).Create(room).Error; err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	s.feed.emit(room.ID, game.Change{Kind: game.ChangeRoom, Room: room})
	return nil
}

func (s *DB) GetRoom(ctx context.Context, id string) (*game.Room, error) {
	var room game.Room
	err := s.db.WithContext(ctx).First(&room, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, game.ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get room: %w", err)
	}
	return &room, nil
}

func (s *DB) GetRoomByCode(ctx context.Context, code string) (*game.Room, error) {
	var room game.Room
	err := s.db.WithContext(ctx).First(&room, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, game.ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get room by code: %w", err)
	}
	return &room, nil
}

func (s *DB) UpdateRoom(ctx context.Context, id string, fields map[string]any) error {
	res := s.db.WithContext(ctx).Model(&game.Room{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("update room: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return game.ErrRoomNotFound
	}
	room, err := s.GetRoom(ctx, id)
	if err != nil {
		return err
	}
	s.feed.emit(id, game.Change{Kind: game.ChangeRoom, Room: room})
	return nil
}

func (s *DB) CreatePlayer(ctx context.Context, p *game.Player) error {
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("create player: %w", err)
	}
	s.feed.emit(p.RoomID, game.Change{Kind: game.ChangePlayer, Player: p})
	return nil
}

func (s *DB) ListPlayers(ctx context.Context, roomID string) ([]*game.Player, error) {
	var players []*game.Player
	err := s.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("joined_at asc").
		Find(&players).Error
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return players, nil
}

func (s *DB) UpdatePlayer(ctx context.Context, id string, fields map[string]any) error {
	res := s.db.WithContext(ctx).Model(&game.Player{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("update player: %w", res.Error)
	}
	var p game.Player
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return fmt.Errorf("reload player: %w", err)
	}
	s.feed.emit(p.RoomID, game.Change{Kind: game.ChangePlayer, Player: &p})
	return nil
}

func (s *DB) CreateGuess(ctx context.Context, g *game.Guess) error {
	if err := s.db.WithContext(ctx).Create(g).Error; err != nil {
		return fmt.Errorf("create guess: %w", err)
	}
	s.feed.emit(g.RoomID, game.Change{Kind: game.ChangeGuess, Guess: g})
	return nil
}

func (s *DB) ListGuesses(ctx context.Context, roomID string, limit int) ([]*game.Guess, error) {
	q := s.db.WithContext(ctx).Where("room_id = ?", roomID).Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var guesses []*game.Guess
	if err := q.Find(&guesses).Error; err != nil {
		return nil, fmt.Errorf("list guesses: %w", err)
	}
	// Oldest first for display.
	for i, j := 0, len(guesses)-1; i < j; i, j = i+1, j-1 {
		guesses[i], guesses[j] = guesses[j], guesses[i]
	}
	return guesses, nil
}

func (s *DB) Watch(roomID string) (<-chan game.Change, func()) {
	return s.feed.subscribe(roomID)
}

// DeleteRoomData removes a room and its players and guesses; used by the
// cleanup worker after a game finishes.
func (s *DB) DeleteRoomData(ctx context.Context, roomID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", roomID).Delete(&game.Guess{}).Error; err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", roomID).Delete(&game.Player{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", roomID).Delete(&game.Room{}).Error
	})
}
