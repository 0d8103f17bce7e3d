package draw

import "regexp"

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

const (
	minWidth = 1
	maxWidth = 32
)

// RoomView is the slice of room state the validator needs: who may draw,
// and whether the room is currently in the drawing phase with a word set.
type RoomView struct {
	DrawerUserID string
	Drawing      bool
}

// Validator gates stroke traffic from the shared channel. Anything it
// rejects is dropped silently; a partially trusted channel produces this
// noise in normal operation.
type Validator struct {
	Width  float64
	Height float64
}

// Admit reports whether ev from senderUserID may be applied and rebroadcast.
func (v Validator) Admit(ev Event, senderUserID string, room RoomView) bool {
	if room.DrawerUserID == "" || senderUserID != room.DrawerUserID {
		return false
	}
	if !room.Drawing {
		return false
	}
	switch ev.Type {
	case EventStart, EventDraw, EventEnd:
	default:
		return false
	}
	switch ev.Tool {
	case ToolPen, ToolFill:
	default:
		return false
	}
	if ev.X < 0 || ev.X > v.Width || ev.Y < 0 || ev.Y > v.Height {
		return false
	}
	if !colorPattern.MatchString(ev.Color) {
		return false
	}
	if ev.Width < minWidth || ev.Width > maxWidth {
		return false
	}
	return true
}
