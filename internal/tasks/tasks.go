// Package tasks defines the background jobs that run outside the request
// path. Finished rooms are not deleted inline; a cleanup task is enqueued
// with a grace period so players can still fetch the final scoreboard.
package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const TypeRoomCleanup = "room:cleanup"

// CleanupDelay is how long a finished room's records stay queryable.
const CleanupDelay = 10 * time.Minute

type RoomCleanupPayload struct {
	RoomID string `json:"roomId"`
}

func NewRoomCleanupTask(roomID string) (*asynq.Task, error) {
	payload, err := json.Marshal(RoomCleanupPayload{RoomID: roomID})
	if err != nil {
		return nil, fmt.Errorf("marshal cleanup payload: %w", err)
	}
	return asynq.NewTask(TypeRoomCleanup, payload), nil
}
