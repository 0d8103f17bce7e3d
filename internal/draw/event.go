// Package draw defines the ephemeral stroke protocol carried over the room
// broadcast channel and the admission gate applied to it. Events are
// transient: they are never persisted and late joiners receive none.
package draw

type EventType string

const (
	EventStart EventType = "start"
	EventDraw  EventType = "draw"
	EventEnd   EventType = "end"
)

type Tool string

const (
	ToolPen  Tool = "pen"
	ToolFill Tool = "fill"
)

// Event is one point of the stroke protocol. A fill is always carried on a
// start event; draw/end extend and close a pen stroke.
type Event struct {
	Type  EventType `json:"type"`
	Tool  Tool      `json:"tool"`
	X     float64   `json:"x"`
	Y     float64   `json:"y"`
	Color string    `json:"color"`
	Width int       `json:"width"`
}
