package game

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Rushigaming001/askify-sketch/internal/canvas"
	"github.com/Rushigaming001/askify-sketch/internal/draw"
	"github.com/Rushigaming001/askify-sketch/internal/hint"
	"github.com/Rushigaming001/askify-sketch/internal/score"
	"github.com/Rushigaming001/askify-sketch/internal/word"
)

var (
	ErrRoomFull         = errors.New("room is full")
	ErrGameOver         = errors.New("game is over")
	ErrAlreadyStarted   = errors.New("game already started")
	ErrNotHost          = errors.New("only the host can start the game")
	ErrNotEnoughPlayers = errors.New("need at least 2 connected players")
	ErrNotDrawer        = errors.New("you are not the drawer")
	ErrWrongPhase       = errors.New("not allowed in this phase")
	ErrWordNotOffered   = errors.New("word was not offered")
)

const (
	wordSelectionTime  = 15 // seconds before the first choice is auto-picked
	roundEndShowTime   = 3  // seconds the revealed word stays on screen
	closeGuessDistance = 2
	minPlayersToStart  = 2
)

// Config carries the session's collaborators.
type Config struct {
	Store  Store
	Bus    Broadcaster
	Notify Notifier
	Words  *word.Bank
	Log    *logrus.Entry
	Rand   *rand.Rand

	// TickInterval defaults to one second; tests shorten it.
	TickInterval time.Duration

	// OnFinished runs after the room reaches StatusFinished, e.g. to
	// enqueue cleanup.
	OnFinished func(roomID string)
}

// Session is the state machine for one room. All state is owned by the run
// loop goroutine; public methods post work to it, so no locks are needed.
//
// The session owns the single authoritative round timer and stamps
// RoundEndsAt into the room record; clients only render the countdown.
type Session struct {
	cfg  Config
	log  *logrus.Entry
	room *Room

	players      []*Player // join order
	correctOrder []string  // player ids, first correct guess first
	wordChoices  []string
	hints        *hint.Hint
	rep          *canvas.Replicator
	validator    draw.Validator
	elapsed      int // seconds spent in the current phase

	inbox    chan func()
	quit     chan struct{}
	stopOnce sync.Once
	stopped  chan struct{}
}

func NewSession(cfg Config, room *Room) *Session {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	log := cfg.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Session{
		cfg:       cfg,
		log:       log.WithField("room", room.ID),
		room:      room,
		rep:       canvas.NewReplicator(CanvasWidth, CanvasHeight),
		validator: draw.Validator{Width: CanvasWidth, Height: CanvasHeight},
		inbox:     make(chan func(), 256),
		quit:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
}

// Run drives the session until Stop. Call in its own goroutine.
func (s *Session) Run() {
	defer close(s.stopped)
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case fn := <-s.inbox:
			fn()
		case <-ticker.C:
			s.tick()
		case <-s.quit:
			return
		}
	}
}

// Stop is safe to call from any number of goroutines; every call returns
// once the run loop has exited.
func (s *Session) Stop() {
	s.stopOnce.Do(func() { close(s.quit) })
	<-s.stopped
}

// do posts fn to the run loop and waits for it. After Stop the call is a
// no-op: a closure that won the inbox race against a concurrent Stop may
// never run, so the wait also watches for the loop exiting.
func (s *Session) do(fn func()) {
	done := make(chan struct{})
	select {
	case s.inbox <- func() { fn(); close(done) }:
		select {
		case <-done:
		case <-s.stopped:
		}
	case <-s.quit:
	}
}

func (s *Session) doErr(fn func() error) error {
	var err error
	s.do(func() { err = fn() })
	return err
}

// --- public API -------------------------------------------------------------

func (s *Session) Join(userID, displayName, avatarColor string) (*Player, error) {
	var p *Player
	err := s.doErr(func() error {
		var err error
		p, err = s.handleJoin(userID, displayName, avatarColor)
		return err
	})
	return p, err
}

func (s *Session) Leave(userID string) {
	s.do(func() { s.handleLeave(userID) })
}

func (s *Session) Start(userID string) error {
	return s.doErr(func() error { return s.handleStart(userID) })
}

func (s *Session) ChooseWord(userID, choice string) error {
	return s.doErr(func() error { return s.handleChooseWord(userID, choice) })
}

func (s *Session) SubmitGuess(userID, text string) {
	s.do(func() { s.handleGuess(userID, text) })
}

func (s *Session) HandleDraw(userID string, ev draw.Event) {
	s.do(func() { s.handleDraw(userID, ev) })
}

func (s *Session) HandleClear(userID string) {
	s.do(func() { s.handleClear(userID) })
}

func (s *Session) HandleUndo(userID string) {
	s.do(func() { s.handleUndo(userID) })
}

// State returns a display-safe copy of the room and its players.
func (s *Session) State() (Room, []Player) {
	var room Room
	var players []Player
	s.do(func() {
		room = s.room.Snapshot()
		players = make([]Player, 0, len(s.players))
		for _, p := range s.players {
			players = append(players, *p)
		}
	})
	return room, players
}

// Empty reports whether no player is connected.
func (s *Session) Empty() bool {
	empty := true
	s.do(func() { empty = s.connectedCount() == 0 })
	return empty
}

// --- command handlers (run loop goroutine only) ------------------------------

func (s *Session) handleJoin(userID, displayName, avatarColor string) (*Player, error) {
	if s.room.Status == StatusFinished {
		return nil, ErrGameOver
	}

	// Reconnect keeps the seat, the score and the turn order slot.
	for _, p := range s.players {
		if p.UserID == userID {
			p.Connected = true
			p.DisplayName = displayName
			s.persistPlayer(p.ID, map[string]any{"connected": true, "display_name": displayName})
			return p, nil
		}
	}

	if len(s.players) >= s.room.MaxPlayers {
		return nil, ErrRoomFull
	}

	p := &Player{
		ID:          uuid.NewString(),
		RoomID:      s.room.ID,
		UserID:      userID,
		DisplayName: displayName,
		AvatarColor: avatarColor,
		Connected:   true,
		JoinedAt:    time.Now(),
	}
	if err := s.cfg.Store.CreatePlayer(context.Background(), p); err != nil {
		s.log.WithError(err).Error("create player failed")
		return nil, err
	}
	s.players = append(s.players, p)
	s.log.WithFields(logrus.Fields{"user": userID, "player": p.ID}).Info("player joined")
	return p, nil
}

func (s *Session) handleLeave(userID string) {
	p := s.playerByUserID(userID)
	if p == nil {
		return
	}
	p.Connected = false
	s.persistPlayer(p.ID, map[string]any{"connected": false})
	s.log.WithField("user", userID).Info("player left")

	if s.room.Status != StatusPlaying {
		return
	}
	if s.connectedCount() < minPlayersToStart {
		s.finish()
		return
	}
	if p.ID == s.room.CurrentDrawerID {
		// The drawer walked out mid-turn; close the turn out.
		switch s.room.Phase {
		case PhaseDrawing:
			s.endRound()
		case PhaseSelectingWord:
			s.room.Phase = PhaseRoundEnd
			s.elapsed = roundEndShowTime // advance on next tick
			s.persistRoom(map[string]any{"phase": s.room.Phase})
		}
	}
}

func (s *Session) handleStart(userID string) error {
	if s.room.Status != StatusWaiting {
		return ErrAlreadyStarted
	}
	if userID != s.room.HostUserID {
		return ErrNotHost
	}
	if s.connectedCount() < minPlayersToStart {
		return ErrNotEnoughPlayers
	}

	order := s.turnOrder()
	s.room.Status = StatusPlaying
	s.room.CurrentRound = 1
	s.log.Info("game started")
	s.beginWordSelection(order[0])
	return nil
}

func (s *Session) handleChooseWord(userID, choice string) error {
	if s.room.Phase != PhaseSelectingWord {
		return ErrWrongPhase
	}
	if s.drawerUserID() != userID {
		return ErrNotDrawer
	}
	found := false
	for _, w := range s.wordChoices {
		if w == choice {
			found = true
			break
		}
	}
	if !found {
		return ErrWordNotOffered
	}

	s.room.CurrentWord = choice
	s.room.Phase = PhaseDrawing
	s.room.RoundEndsAt = time.Now().Add(time.Duration(s.room.RoundTime) * time.Second)
	s.hints = hint.New(choice, s.room.RoundTime, s.cfg.Rand)
	s.room.CurrentHint = s.hints.Masked()
	s.correctOrder = nil
	s.elapsed = 0
	s.wordChoices = nil

	s.rep.Reset()
	s.publish("clear", struct{}{})

	s.persistRoom(map[string]any{
		"phase":         s.room.Phase,
		"current_word":  s.room.CurrentWord,
		"current_hint":  s.room.CurrentHint,
		"round_ends_at": s.room.RoundEndsAt,
	})
	s.notifyUser(userID, "word_assigned", map[string]any{"word": choice})
	s.log.WithField("drawer", s.room.CurrentDrawerID).Info("word chosen, drawing started")
	return nil
}

func (s *Session) handleGuess(userID, text string) {
	p := s.playerByUserID(userID)
	raw := strings.TrimSpace(text)
	if p == nil || raw == "" {
		return
	}
	// Out-of-turn guesses are expected channel noise, not errors.
	if s.room.Phase != PhaseDrawing || p.ID == s.room.CurrentDrawerID || p.HasGuessed {
		return
	}

	target := strings.ToLower(strings.TrimSpace(s.room.CurrentWord))
	guess := strings.ToLower(raw)
	correct := guess == target

	row := &Guess{
		ID:        uuid.NewString(),
		RoomID:    s.room.ID,
		PlayerID:  p.ID,
		Text:      raw,
		IsCorrect: correct,
		CreatedAt: time.Now(),
	}
	if correct {
		row.Text = CorrectGuessMarker
	}
	if err := s.cfg.Store.CreateGuess(context.Background(), row); err != nil {
		s.log.WithError(err).Error("create guess failed")
		s.notifyUser(userID, "error", map[string]any{"message": "guess not saved"})
	}

	if !correct {
		if dist := levenshtein.ComputeDistance(guess, target); dist > 0 && dist <= closeGuessDistance {
			s.notifyUser(userID, "close_guess", map[string]any{"distance": dist})
		}
		return
	}

	p.HasGuessed = true
	s.correctOrder = append(s.correctOrder, p.ID)
	s.persistPlayer(p.ID, map[string]any{"has_guessed": true})
	s.log.WithFields(logrus.Fields{"player": p.ID, "rank": len(s.correctOrder)}).Info("correct guess")

	if s.allNonDrawersGuessed() {
		s.endRound()
	}
}

func (s *Session) handleDraw(userID string, ev draw.Event) {
	if !s.validator.Admit(ev, userID, s.roomView()) {
		return
	}

	x, y := int(ev.X), int(ev.Y)
	color, err := canvas.ParseColor(ev.Color)
	if err != nil {
		return
	}

	switch {
	case ev.Type == draw.EventStart && ev.Tool == draw.ToolFill:
		s.rep.Fill(x, y, color)
	case ev.Type == draw.EventStart:
		s.rep.BeginStroke(x, y, color, ev.Width)
	case ev.Type == draw.EventDraw:
		s.rep.ExtendStroke(x, y)
	case ev.Type == draw.EventEnd:
		s.rep.EndStroke()
	}

	s.publish("draw", ev)
}

func (s *Session) handleClear(userID string) {
	view := s.roomView()
	if !view.Drawing || userID != view.DrawerUserID {
		return
	}
	s.rep.Clear()
	s.publish("clear", struct{}{})
}

func (s *Session) handleUndo(userID string) {
	view := s.roomView()
	if !view.Drawing || userID != view.DrawerUserID {
		return
	}
	if s.rep.Undo() {
		s.publish("undo", struct{}{})
	}
}

// --- timers & transitions ----------------------------------------------------

func (s *Session) tick() {
	switch s.room.Phase {
	case PhaseSelectingWord:
		s.elapsed++
		if s.elapsed >= wordSelectionTime && len(s.wordChoices) > 0 {
			// Drawer never picked; take the first offer.
			if err := s.handleChooseWord(s.drawerUserID(), s.wordChoices[0]); err != nil {
				s.log.WithError(err).Warn("word auto-select failed")
			}
		}
	case PhaseDrawing:
		s.elapsed++
		if s.hints != nil && s.hints.Tick(s.elapsed) {
			s.room.CurrentHint = s.hints.Masked()
			s.persistRoom(map[string]any{"current_hint": s.room.CurrentHint})
		}
		if s.elapsed >= s.room.RoundTime {
			s.endRound()
		}
	case PhaseRoundEnd:
		s.elapsed++
		if s.elapsed >= roundEndShowTime {
			s.advanceTurn()
		}
	}
}

// endRound closes the drawing phase, awards points and reveals the word.
// The phase guard makes a second concurrent attempt a no-op.
func (s *Session) endRound() {
	if s.room.Phase != PhaseDrawing {
		return
	}
	s.room.Phase = PhaseRoundEnd
	s.elapsed = 0

	for _, a := range score.Round(s.correctOrder, s.room.CurrentDrawerID) {
		if p := s.playerByID(a.PlayerID); p != nil {
			p.Score += a.Points
			s.persistPlayer(p.ID, map[string]any{"score": p.Score})
		}
	}

	// The room snapshot exposes the word while the phase is round_end.
	s.persistRoom(map[string]any{"phase": s.room.Phase})
	s.log.WithFields(logrus.Fields{
		"round":   s.room.CurrentRound,
		"guessed": len(s.correctOrder),
	}).Info("round ended")
}

func (s *Session) advanceTurn() {
	if s.room.Phase != PhaseRoundEnd {
		return
	}

	for _, p := range s.players {
		if p.HasGuessed {
			p.HasGuessed = false
			s.persistPlayer(p.ID, map[string]any{"has_guessed": false})
		}
	}
	s.correctOrder = nil
	s.hints = nil

	turn := NextTurn(s.turnOrder(), s.room.CurrentDrawerID, s.room.CurrentRound, s.room.MaxRounds)
	if turn.Finish {
		s.finish()
		return
	}
	s.room.CurrentRound = turn.NextRound
	s.beginWordSelection(turn.NextDrawerID)
}

func (s *Session) beginWordSelection(drawerID string) {
	s.room.Phase = PhaseSelectingWord
	s.room.CurrentDrawerID = drawerID
	s.room.CurrentWord = ""
	s.room.CurrentHint = ""
	s.room.RoundEndsAt = time.Time{}
	s.elapsed = 0
	s.wordChoices = s.cfg.Words.Choices(word.ChoiceCount)

	s.rep.Reset()
	s.publish("clear", struct{}{})

	s.persistRoom(map[string]any{
		"status":            s.room.Status,
		"phase":             s.room.Phase,
		"current_round":     s.room.CurrentRound,
		"current_drawer_id": s.room.CurrentDrawerID,
		"current_word":      "",
		"current_hint":      "",
		"round_ends_at":     time.Time{},
	})
	s.notifyUser(s.drawerUserID(), "word_choices", map[string]any{
		"choices":   s.wordChoices,
		"timeLimit": wordSelectionTime,
	})
}

func (s *Session) finish() {
	s.room.Status = StatusFinished
	s.room.Phase = PhaseNone
	s.room.CurrentDrawerID = ""
	s.room.CurrentHint = ""
	s.persistRoom(map[string]any{
		"status":            s.room.Status,
		"phase":             s.room.Phase,
		"current_drawer_id": "",
		"current_hint":      "",
	})
	s.log.Info("game finished")
	if s.cfg.OnFinished != nil {
		s.cfg.OnFinished(s.room.ID)
	}
}

// --- helpers -----------------------------------------------------------------

func (s *Session) roomView() draw.RoomView {
	return draw.RoomView{
		DrawerUserID: s.drawerUserID(),
		Drawing:      s.room.Status == StatusPlaying && s.room.Phase == PhaseDrawing && s.room.CurrentWord != "",
	}
}

func (s *Session) playerByUserID(userID string) *Player {
	for _, p := range s.players {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

func (s *Session) playerByID(id string) *Player {
	for _, p := range s.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *Session) drawerUserID() string {
	if p := s.playerByID(s.room.CurrentDrawerID); p != nil {
		return p.UserID
	}
	return ""
}

func (s *Session) connectedCount() int {
	n := 0
	for _, p := range s.players {
		if p.Connected {
			n++
		}
	}
	return n
}

// turnOrder is the stable join-ordered list of connected player ids.
func (s *Session) turnOrder() []string {
	order := make([]string, 0, len(s.players))
	for _, p := range s.players {
		if p.Connected {
			order = append(order, p.ID)
		}
	}
	return order
}

func (s *Session) allNonDrawersGuessed() bool {
	for _, p := range s.players {
		if !p.Connected || p.ID == s.room.CurrentDrawerID {
			continue
		}
		if !p.HasGuessed {
			return false
		}
	}
	return len(s.correctOrder) > 0
}

// persistRoom writes field updates optimistically; a failure is logged and
// the next successful change-feed update resynchronizes clients.
func (s *Session) persistRoom(fields map[string]any) {
	if err := s.cfg.Store.UpdateRoom(context.Background(), s.room.ID, fields); err != nil {
		s.log.WithError(err).Error("room update failed")
	}
}

func (s *Session) persistPlayer(id string, fields map[string]any) {
	if err := s.cfg.Store.UpdatePlayer(context.Background(), id, fields); err != nil {
		s.log.WithError(err).WithField("player", id).Error("player update failed")
	}
}

func (s *Session) publish(event string, payload any) {
	if err := s.cfg.Bus.Publish(s.room.ID, event, payload); err != nil {
		s.log.WithError(err).WithField("event", event).Error("broadcast failed")
	}
}

func (s *Session) notifyUser(userID, event string, payload any) {
	if s.cfg.Notify != nil {
		s.cfg.Notify.NotifyUser(userID, event, payload)
	}
}
