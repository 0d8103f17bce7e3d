package gateway

import (
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/Rushigaming001/askify-sketch/internal/game"
)

// Gateway owns the HTTP/websocket surface and doubles as the engine's
// Notifier: private messages (word choices, close-guess hints) are routed
// to whichever connections a user currently has.
type Gateway struct {
	manager *game.Manager
	store   game.Store
	bus     game.Broadcaster
	issuer  *TokenIssuer
	log     *logrus.Entry

	mu      sync.RWMutex
	clients map[string]map[*client]struct{} // by user id
}

var _ game.Notifier = (*Gateway)(nil)

func New(manager *game.Manager, store game.Store, bus game.Broadcaster, issuer *TokenIssuer, log *logrus.Entry) *Gateway {
	gw := &Gateway{
		manager: manager,
		store:   store,
		bus:     bus,
		issuer:  issuer,
		log:     log.WithField("component", "gateway"),
		clients: make(map[string]map[*client]struct{}),
	}
	manager.SetNotifier(gw)
	return gw
}

// NotifyUser implements game.Notifier.
func (gw *Gateway) NotifyUser(userID, event string, payload any) {
	gw.mu.RLock()
	defer gw.mu.RUnlock()
	for c := range gw.clients[userID] {
		c.push(event, payload)
	}
}

func (gw *Gateway) attach(c *client) {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	if gw.clients[c.ident.UserID] == nil {
		gw.clients[c.ident.UserID] = make(map[*client]struct{})
	}
	gw.clients[c.ident.UserID][c] = struct{}{}
}

func (gw *Gateway) detach(c *client) {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	delete(gw.clients[c.ident.UserID], c)
	if len(gw.clients[c.ident.UserID]) == 0 {
		delete(gw.clients, c.ident.UserID)
	}
}

// Register mounts all routes on the app.
func (gw *Gateway) Register(app *fiber.App) {
	app.Post("/auth/guest", gw.handleGuestAuth)

	rooms := app.Group("/rooms", gw.issuer.Middleware())
	rooms.Post("/", gw.handleCreateRoom)
	rooms.Get("/:code", gw.handleGetRoom)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/:code", websocket.New(gw.serveWS))
}

func (gw *Gateway) handleGuestAuth(c *fiber.Ctx) error {
	var body struct {
		DisplayName string `json:"displayName"`
	}
	if err := c.BodyParser(&body); err != nil || body.DisplayName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "displayName required"})
	}
	token, ident, err := gw.issuer.IssueGuest(body.DisplayName)
	if err != nil {
		gw.log.WithError(err).Error("guest token issue failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "token issue failed"})
	}
	return c.JSON(fiber.Map{
		"token":       token,
		"userId":      ident.UserID,
		"displayName": ident.DisplayName,
	})
}

func (gw *Gateway) handleCreateRoom(c *fiber.Ctx) error {
	ident, err := identityFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var opts game.RoomOptions
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&opts); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad options"})
		}
	}

	_, room, err := gw.manager.CreateRoom(c.Context(), ident.UserID, opts)
	if err != nil {
		gw.log.WithError(err).Error("create room failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "create room failed"})
	}
	return c.JSON(fiber.Map{"roomId": room.ID, "code": room.Code})
}

func (gw *Gateway) handleGetRoom(c *fiber.Ctx) error {
	sess, ok := gw.manager.GetByCode(c.Params("code"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "room not found"})
	}
	room, players := sess.State()
	return c.JSON(fiber.Map{"room": room.Snapshot(), "players": players})
}

func (gw *Gateway) serveWS(conn *websocket.Conn) {
	code := conn.Params("code")
	ident, err := gw.issuer.Parse(conn.Query("token"))
	if err != nil {
		conn.Close()
		return
	}

	sess, ok := gw.manager.GetByCode(code)
	if !ok {
		conn.Close()
		return
	}

	// A nil player with no error means the session was reaped mid-join.
	player, err := sess.Join(ident.UserID, ident.DisplayName, conn.Query("color"))
	if err != nil || player == nil {
		gw.log.WithError(err).WithField("user", ident.UserID).Info("join rejected")
		conn.Close()
		return
	}

	room, players := sess.State()
	c := newClient(gw, sess, room.ID, ident, conn)
	gw.attach(c)

	// Record change feed and ephemeral draw traffic. Late joiners get no
	// stroke backlog; the canvas stays blank until the next clear.
	feed, cancelFeed := gw.store.Watch(room.ID)
	cancelBus := gw.bus.Subscribe(room.ID, c.pushRaw)
	c.unsubs = append(c.unsubs, cancelFeed, cancelBus)
	go c.watchChanges(feed)

	guesses, err := gw.store.ListGuesses(c.ctx, room.ID, 50)
	if err != nil {
		gw.log.WithError(err).Warn("guess history unavailable")
	}
	c.push("room_state", fiber.Map{
		"room":    room.Snapshot(),
		"players": players,
		"player":  player,
		"guesses": guesses,
	})

	go c.readPump()
	c.writePump()
}
