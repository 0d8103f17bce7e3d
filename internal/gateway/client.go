package gateway

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/Rushigaming001/askify-sketch/internal/draw"
	"github.com/Rushigaming001/askify-sketch/internal/game"
)

const (
	sendBuffer    = 256
	writeDeadline = 10 * time.Second
	pingInterval  = 54 * time.Second

	// Inbound frames per second per client; drawing legitimately produces
	// a lot of small frames.
	inboundRate  = 60
	inboundBurst = 120
)

// Message is the wire envelope in both directions.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type client struct {
	gw      *Gateway
	sess    *game.Session
	roomID  string
	ident   Identity
	conn    *websocket.Conn
	send    chan []byte
	ctx     context.Context
	cancel  context.CancelFunc
	once    sync.Once
	limiter *rate.Limiter
	unsubs  []func()
	log     *logrus.Entry
}

func newClient(gw *Gateway, sess *game.Session, roomID string, ident Identity, conn *websocket.Conn) *client {
	ctx, cancel := context.WithCancel(context.Background())
	return &client{
		gw:      gw,
		sess:    sess,
		roomID:  roomID,
		ident:   ident,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		ctx:     ctx,
		cancel:  cancel,
		limiter: rate.NewLimiter(rate.Limit(inboundRate), inboundBurst),
		log:     gw.log.WithFields(logrus.Fields{"room": roomID, "user": ident.UserID}),
	}
}

// cleanup tears the connection down. The send channel is deliberately left
// open: the session run loop, the change feed and NotifyUser may all still
// be publishing while teardown runs, and a late pushRaw on a closed channel
// would panic the publisher. Stragglers just land in the buffer; the write
// pump exits via ctx instead of a channel close.
func (c *client) cleanup() {
	c.once.Do(func() {
		c.cancel()
		for _, unsub := range c.unsubs {
			unsub()
		}
		c.conn.Close()
	})
}

// push queues an envelope, dropping it if the client cannot keep up.
func (c *client) push(event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		c.log.WithError(err).WithField("event", event).Error("marshal push payload")
		return
	}
	c.pushRaw(event, data)
}

func (c *client) pushRaw(event string, data []byte) {
	if c.ctx.Err() != nil {
		return
	}
	msg, err := json.Marshal(Message{Type: event, Data: data})
	if err != nil {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}

func (c *client) pushError(text string) {
	c.push("error", map[string]string{"message": text})
}

func (c *client) readPump() {
	defer func() {
		c.cleanup()
		c.sess.Leave(c.ident.UserID)
		c.gw.detach(c)
		c.gw.manager.ReapIfEmpty(c.roomID)
	}()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
			_, raw, err := c.conn.ReadMessage()
			if err != nil {
				return
			}
			if !c.limiter.Allow() {
				continue
			}

			var msg Message
			if err := json.Unmarshal(raw, &msg); err != nil {
				c.log.WithError(err).Debug("dropping malformed frame")
				continue
			}
			c.handle(msg)
		}
	}
}

func (c *client) handle(msg Message) {
	switch msg.Type {
	case "start_game":
		if err := c.sess.Start(c.ident.UserID); err != nil {
			c.pushError(err.Error())
		}

	case "choose_word":
		var payload struct {
			Word string `json:"word"`
		}
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			return
		}
		if err := c.sess.ChooseWord(c.ident.UserID, payload.Word); err != nil {
			c.pushError(err.Error())
		}

	case "guess":
		var payload struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			return
		}
		c.sess.SubmitGuess(c.ident.UserID, payload.Text)

	case "draw":
		var ev draw.Event
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			return
		}
		c.sess.HandleDraw(c.ident.UserID, ev)

	case "clear":
		c.sess.HandleClear(c.ident.UserID)

	case "undo":
		c.sess.HandleUndo(c.ident.UserID)

	default:
		c.log.WithField("type", msg.Type).Debug("dropping unknown frame type")
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.cleanup()
	}()

	for {
		select {
		case <-c.ctx.Done():
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// watchChanges forwards the room's record change feed, sanitizing room
// records so the secret word never reaches guessers.
func (c *client) watchChanges(feed <-chan game.Change) {
	for {
		select {
		case <-c.ctx.Done():
			return
		case change, ok := <-feed:
			if !ok {
				return
			}
			switch change.Kind {
			case game.ChangeRoom:
				snap := change.Room.Snapshot()
				c.push("room_update", snap)
			case game.ChangePlayer:
				c.push("player_update", change.Player)
			case game.ChangeGuess:
				c.push("guess_added", change.Guess)
			}
		}
	}
}
