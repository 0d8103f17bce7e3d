package game

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rushigaming001/askify-sketch/internal/canvas"
	"github.com/Rushigaming001/askify-sketch/internal/draw"
	"github.com/Rushigaming001/askify-sketch/internal/word"
)

// The handlers below are exercised directly instead of through the run loop,
// so the tests stay single-goroutine and fully deterministic.

type fakeStore struct {
	guesses []*Guess
	updates []string // "table:field" audit trail
}

func (f *fakeStore) CreateRoom(ctx context.Context, room *Room) error     { return nil }
func (f *fakeStore) GetRoom(ctx context.Context, id string) (*Room, error) { return nil, ErrRoomNotFound }
func (f *fakeStore) GetRoomByCode(ctx context.Context, code string) (*Room, error) {
	return nil, ErrRoomNotFound
}
func (f *fakeStore) UpdateRoom(ctx context.Context, id string, fields map[string]any) error {
	for k := range fields {
		f.updates = append(f.updates, "room:"+k)
	}
	return nil
}
func (f *fakeStore) CreatePlayer(ctx context.Context, p *Player) error { return nil }
func (f *fakeStore) ListPlayers(ctx context.Context, roomID string) ([]*Player, error) {
	return nil, nil
}
func (f *fakeStore) UpdatePlayer(ctx context.Context, id string, fields map[string]any) error {
	for k := range fields {
		f.updates = append(f.updates, "player:"+k)
	}
	return nil
}
func (f *fakeStore) CreateGuess(ctx context.Context, g *Guess) error {
	f.guesses = append(f.guesses, g)
	return nil
}
func (f *fakeStore) ListGuesses(ctx context.Context, roomID string, limit int) ([]*Guess, error) {
	return f.guesses, nil
}
func (f *fakeStore) Watch(roomID string) (<-chan Change, func()) {
	ch := make(chan Change)
	return ch, func() {}
}

type fakeBus struct {
	events []string
}

func (f *fakeBus) Publish(roomID, event string, payload any) error {
	f.events = append(f.events, event)
	return nil
}
func (f *fakeBus) Subscribe(roomID string, handler func(string, []byte)) func() {
	return func() {}
}

type fakeNotifier struct {
	sent map[string][]string // userID -> events
}

func (f *fakeNotifier) NotifyUser(userID, event string, payload any) {
	if f.sent == nil {
		f.sent = make(map[string][]string)
	}
	f.sent[userID] = append(f.sent[userID], event)
}

type fixture struct {
	s      *Session
	store  *fakeStore
	bus    *fakeBus
	notify *fakeNotifier
}

func newFixture(t *testing.T, userIDs ...string) *fixture {
	t.Helper()
	f := &fixture{store: &fakeStore{}, bus: &fakeBus{}, notify: &fakeNotifier{}}

	room := &Room{
		ID:         "r1",
		Code:       "abc123",
		HostUserID: userIDs[0],
		Status:     StatusWaiting,
		MaxRounds:  2,
		RoundTime:  80,
		MaxPlayers: 8,
	}
	f.s = NewSession(Config{
		Store:  f.store,
		Bus:    f.bus,
		Notify: f.notify,
		Words:  word.Default(rand.New(rand.NewSource(42))),
		Rand:   rand.New(rand.NewSource(42)),
	}, room)

	for _, uid := range userIDs {
		_, err := f.s.handleJoin(uid, "name-"+uid, "#ff0000")
		require.NoError(t, err)
	}
	return f
}

// startDrawing walks the session into the drawing phase and returns the word.
func (f *fixture) startDrawing(t *testing.T) string {
	t.Helper()
	require.NoError(t, f.s.handleStart(f.s.room.HostUserID))
	w := f.s.wordChoices[0]
	require.NoError(t, f.s.handleChooseWord(f.s.drawerUserID(), w))
	return w
}

func TestStartGuards(t *testing.T) {
	f := newFixture(t, "host")
	assert.ErrorIs(t, f.s.handleStart("host"), ErrNotEnoughPlayers)

	f = newFixture(t, "host", "u2")
	assert.ErrorIs(t, f.s.handleStart("u2"), ErrNotHost)

	require.NoError(t, f.s.handleStart("host"))
	assert.ErrorIs(t, f.s.handleStart("host"), ErrAlreadyStarted)
}

func TestStartEntersWordSelectionWithFirstDrawer(t *testing.T) {
	f := newFixture(t, "host", "u2", "u3")
	require.NoError(t, f.s.handleStart("host"))

	assert.Equal(t, StatusPlaying, f.s.room.Status)
	assert.Equal(t, PhaseSelectingWord, f.s.room.Phase)
	assert.Equal(t, 1, f.s.room.CurrentRound)
	assert.Equal(t, f.s.players[0].ID, f.s.room.CurrentDrawerID)
	assert.Len(t, f.s.wordChoices, word.ChoiceCount)
	assert.Contains(t, f.notify.sent["host"], "word_choices")
}

func TestChooseWordGuards(t *testing.T) {
	f := newFixture(t, "host", "u2")
	require.NoError(t, f.s.handleStart("host"))

	assert.ErrorIs(t, f.s.handleChooseWord("u2", f.s.wordChoices[0]), ErrNotDrawer)
	assert.ErrorIs(t, f.s.handleChooseWord("host", "not-offered"), ErrWordNotOffered)

	require.NoError(t, f.s.handleChooseWord("host", f.s.wordChoices[1]))
	assert.Equal(t, PhaseDrawing, f.s.room.Phase)
	assert.NotEmpty(t, f.s.room.CurrentHint)
	assert.False(t, f.s.room.RoundEndsAt.IsZero())
	// Picking again is out of phase now.
	assert.ErrorIs(t, f.s.handleChooseWord("host", "anything"), ErrWrongPhase)
}

func TestSubmitGuessCorrectIsMaskedAndOrdered(t *testing.T) {
	f := newFixture(t, "host", "u2", "u3")
	w := f.startDrawing(t)

	f.s.handleGuess("u2", "  "+w+"  ") // trimmed, exact
	require.Equal(t, []string{f.s.playerByUserID("u2").ID}, f.s.correctOrder)
	assert.True(t, f.s.playerByUserID("u2").HasGuessed)

	require.Len(t, f.store.guesses, 1)
	assert.True(t, f.store.guesses[0].IsCorrect)
	assert.Equal(t, CorrectGuessMarker, f.store.guesses[0].Text, "word must not leak through the feed")
}

func TestSubmitGuessSecondCorrectDoesNotDuplicate(t *testing.T) {
	f := newFixture(t, "host", "u2", "u3")
	w := f.startDrawing(t)

	f.s.handleGuess("u2", w)
	f.s.handleGuess("u2", w)

	assert.Len(t, f.s.correctOrder, 1)
	assert.Len(t, f.store.guesses, 1)
}

func TestSubmitGuessIgnoredCases(t *testing.T) {
	f := newFixture(t, "host", "u2", "u3")

	f.s.handleGuess("u2", "early") // not drawing yet
	assert.Empty(t, f.store.guesses)

	w := f.startDrawing(t)
	f.s.handleGuess("host", w) // drawer
	assert.Empty(t, f.s.correctOrder)
	assert.Empty(t, f.store.guesses)

	f.s.handleGuess("ghost", w) // unknown user
	assert.Empty(t, f.store.guesses)
}

func TestSubmitGuessCloseMissNotifiesGuesserOnly(t *testing.T) {
	f := newFixture(t, "host", "u2", "u3")
	w := f.startDrawing(t)

	f.s.handleGuess("u2", w+"x")
	assert.Contains(t, f.notify.sent["u2"], "close_guess")
	assert.False(t, f.s.playerByUserID("u2").HasGuessed)
	require.Len(t, f.store.guesses, 1)
	assert.False(t, f.store.guesses[0].IsCorrect)
	assert.Equal(t, w+"x", f.store.guesses[0].Text)
}

func TestAllGuessedEndsRoundEarlyWithAwards(t *testing.T) {
	f := newFixture(t, "host", "u2", "u3")
	w := f.startDrawing(t)

	f.s.handleGuess("u2", w)
	assert.Equal(t, PhaseDrawing, f.s.room.Phase)

	f.s.handleGuess("u3", w)
	assert.Equal(t, PhaseRoundEnd, f.s.room.Phase)

	assert.Equal(t, 500, f.s.playerByUserID("u2").Score)
	assert.Equal(t, 400, f.s.playerByUserID("u3").Score)
	assert.Equal(t, 100, f.s.playerByUserID("host").Score, "drawer bonus")
}

func TestEndRoundIsIdempotent(t *testing.T) {
	f := newFixture(t, "host", "u2")
	w := f.startDrawing(t)
	f.s.handleGuess("u2", w) // ends round early, u2 gets 500

	score := f.s.playerByUserID("u2").Score
	f.s.endRound()
	f.s.endRound()
	assert.Equal(t, score, f.s.playerByUserID("u2").Score, "double round-end must not award twice")
}

func TestTimeoutEndsRoundWithoutDrawerBonus(t *testing.T) {
	f := newFixture(t, "host", "u2")
	f.startDrawing(t)

	for i := 0; i < f.s.room.RoundTime; i++ {
		f.s.tick()
	}
	assert.Equal(t, PhaseRoundEnd, f.s.room.Phase)
	assert.Equal(t, 0, f.s.playerByUserID("host").Score, "nobody guessed, no drawer bonus")
}

func TestHintRevealPersistsOnIntervalTicks(t *testing.T) {
	f := newFixture(t, "host", "u2")
	f.startDrawing(t)
	initial := f.s.room.CurrentHint

	interval := f.s.room.RoundTime / (len([]rune(f.s.room.CurrentWord)) - 1)
	for i := 0; i < interval; i++ {
		f.s.tick()
	}
	assert.NotEqual(t, initial, f.s.room.CurrentHint)
	assert.Contains(t, f.store.updates, "room:current_hint")
}

func TestRoundEndAdvancesToNextDrawer(t *testing.T) {
	f := newFixture(t, "host", "u2", "u3")
	f.startDrawing(t)
	f.s.endRound()

	for i := 0; i < roundEndShowTime; i++ {
		f.s.tick()
	}
	assert.Equal(t, PhaseSelectingWord, f.s.room.Phase)
	assert.Equal(t, f.s.players[1].ID, f.s.room.CurrentDrawerID)
	assert.Equal(t, 1, f.s.room.CurrentRound)
	assert.False(t, f.s.players[0].HasGuessed)
}

func TestLastDrawerOfLastRoundFinishesGame(t *testing.T) {
	f := newFixture(t, "host", "u2")
	f.startDrawing(t)

	// 2 players x 2 rounds = 4 turns.
	for turn := 0; turn < 4; turn++ {
		if f.s.room.Phase == PhaseSelectingWord {
			require.NoError(t, f.s.handleChooseWord(f.s.drawerUserID(), f.s.wordChoices[0]))
		}
		f.s.endRound()
		for i := 0; i < roundEndShowTime; i++ {
			f.s.tick()
		}
	}

	assert.Equal(t, StatusFinished, f.s.room.Status)
	assert.Equal(t, PhaseNone, f.s.room.Phase)
	assert.Empty(t, f.s.room.CurrentDrawerID)
	// Terminal: another tick changes nothing.
	f.s.tick()
	assert.Equal(t, StatusFinished, f.s.room.Status)
}

func TestWordSelectionTimesOutToFirstChoice(t *testing.T) {
	f := newFixture(t, "host", "u2")
	require.NoError(t, f.s.handleStart("host"))
	first := f.s.wordChoices[0]

	for i := 0; i < wordSelectionTime; i++ {
		f.s.tick()
	}
	assert.Equal(t, PhaseDrawing, f.s.room.Phase)
	assert.Equal(t, first, f.s.room.CurrentWord)
}

func TestDrawEventAppliedAndRebroadcast(t *testing.T) {
	f := newFixture(t, "host", "u2")
	f.startDrawing(t)

	ev := draw.Event{Type: draw.EventStart, Tool: draw.ToolPen, X: 10, Y: 10, Color: "#000000", Width: 4}
	f.s.handleDraw("host", ev)

	assert.Contains(t, f.bus.events, "draw")
	assert.NotEqual(t, canvas.White, f.s.rep.Raster().At(10, 10))
}

func TestDrawEventFromNonDrawerDropped(t *testing.T) {
	f := newFixture(t, "host", "u2")
	f.startDrawing(t)
	before := len(f.bus.events)

	f.s.handleDraw("u2", draw.Event{Type: draw.EventStart, Tool: draw.ToolPen, X: 10, Y: 10, Color: "#000000", Width: 4})

	assert.Len(t, f.bus.events, before)
	assert.Equal(t, canvas.White, f.s.rep.Raster().At(10, 10))
}

func TestFillEventFloodFills(t *testing.T) {
	f := newFixture(t, "host", "u2")
	f.startDrawing(t)

	f.s.handleDraw("host", draw.Event{Type: draw.EventStart, Tool: draw.ToolFill, X: 5, Y: 5, Color: "#FF0000", Width: 1})

	assert.Equal(t, canvas.RGB{R: 255}, f.s.rep.Raster().At(0, 0))
	assert.Equal(t, canvas.RGB{R: 255}, f.s.rep.Raster().At(CanvasWidth-1, CanvasHeight-1))
}

func TestClearAndUndoAreDrawerOnly(t *testing.T) {
	f := newFixture(t, "host", "u2")
	f.startDrawing(t)
	f.s.handleDraw("host", draw.Event{Type: draw.EventStart, Tool: draw.ToolPen, X: 10, Y: 10, Color: "#000000", Width: 4})
	base := len(f.bus.events)

	f.s.handleClear("u2")
	f.s.handleUndo("u2")
	assert.Len(t, f.bus.events, base, "non-drawer clear/undo dropped")

	f.s.handleClear("host")
	assert.Equal(t, canvas.White, f.s.rep.Raster().At(10, 10))
	f.s.handleUndo("host")
	assert.NotEqual(t, canvas.White, f.s.rep.Raster().At(10, 10))
	assert.Equal(t, []string{"clear", "undo"}, f.bus.events[base:])
}

func TestUndoWithEmptyHistoryNotBroadcast(t *testing.T) {
	f := newFixture(t, "host", "u2")
	f.startDrawing(t)
	base := len(f.bus.events)

	f.s.handleUndo("host")
	assert.Len(t, f.bus.events, base)
}

func TestDrawerLeavingMidDrawEndsRound(t *testing.T) {
	f := newFixture(t, "host", "u2", "u3")
	w := f.startDrawing(t)
	f.s.handleGuess("u2", w)

	f.s.handleLeave("host")
	assert.Equal(t, PhaseRoundEnd, f.s.room.Phase)
	assert.Equal(t, 500, f.s.playerByUserID("u2").Score)
}

func TestGameFinishesWhenTooFewPlayersRemain(t *testing.T) {
	f := newFixture(t, "host", "u2")
	f.startDrawing(t)

	f.s.handleLeave("u2")
	assert.Equal(t, StatusFinished, f.s.room.Status)
}

func TestRejoinKeepsSeatAndScore(t *testing.T) {
	f := newFixture(t, "host", "u2")
	w := f.startDrawing(t)
	f.s.handleGuess("u2", w)
	score := f.s.playerByUserID("u2").Score
	seat := f.s.playerByUserID("u2").ID

	p, err := f.s.handleJoin("u2", "renamed", "#00ff00")
	require.NoError(t, err)
	assert.Equal(t, seat, p.ID)
	assert.Equal(t, score, p.Score)
	assert.Len(t, f.s.players, 2)
}

func TestJoinGuards(t *testing.T) {
	f := newFixture(t, "host")
	f.s.room.MaxPlayers = 1
	_, err := f.s.handleJoin("u2", "late", "")
	assert.ErrorIs(t, err, ErrRoomFull)

	f.s.room.Status = StatusFinished
	_, err = f.s.handleJoin("u3", "later", "")
	assert.ErrorIs(t, err, ErrGameOver)
}

func TestSnapshotHidesWordUntilRoundEnd(t *testing.T) {
	f := newFixture(t, "host", "u2")
	w := f.startDrawing(t)

	snap := f.s.room.Snapshot()
	assert.Empty(t, snap.CurrentWord)
	assert.Empty(t, snap.RevealedWord)

	f.s.endRound()
	snap = f.s.room.Snapshot()
	assert.Empty(t, snap.CurrentWord)
	assert.Equal(t, w, snap.RevealedWord)
}

func TestStopSurvivesConcurrentCallers(t *testing.T) {
	f := newFixture(t, "host", "u2")
	go f.s.Run()

	// Two clients dropping at the same moment both reap the session.
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.s.Stop()
		}()
	}
	wg.Wait()
}

func TestCallsAfterStopReturn(t *testing.T) {
	f := newFixture(t, "host", "u2")
	go f.s.Run()
	f.s.Stop()

	done := make(chan struct{})
	go func() {
		f.s.Leave("u2")
		f.s.SubmitGuess("u2", "anything")
		f.s.Start("host")
		f.s.Empty()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session call blocked after stop")
	}
}

func TestNextTurnClearsStoredRoundDeadline(t *testing.T) {
	f := newFixture(t, "host", "u2", "u3")
	f.startDrawing(t)
	require.False(t, f.s.room.RoundEndsAt.IsZero())

	f.s.endRound()
	f.store.updates = nil
	f.s.advanceTurn()

	assert.Equal(t, PhaseSelectingWord, f.s.room.Phase)
	assert.True(t, f.s.room.RoundEndsAt.IsZero())
	assert.Contains(t, f.store.updates, "room:round_ends_at")
}
