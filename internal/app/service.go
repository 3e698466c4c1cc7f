package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/thisarray/xoxo/internal/domain"
	"github.com/thisarray/xoxo/internal/search"
	"github.com/thisarray/xoxo/internal/store"
)

// Errors exposed by the service layer.
var (
	ErrNotFound        = errors.New("game not found")
	ErrNotAPlayer      = errors.New("not a player")
	ErrGameOver        = errors.New("game over")
	ErrInvalidMove     = errors.New("invalid move")
	ErrInvalidSettings = errors.New("invalid settings")
	ErrBoardTooLarge   = errors.New("board too large to search")
)

// DefaultMaxCells bounds boards to classic tic-tac-toe unless configured.
const DefaultMaxCells = 9

// Settings describe a new game.
type Settings struct {
	Width         int
	Height        int
	WinLength     int
	Human         domain.Marker
	ComputerFirst bool
}

// DefaultSettings is 3x3, three in a row, human plays X and moves first.
func DefaultSettings() Settings {
	return Settings{Width: 3, Height: 3, WinLength: 3, Human: domain.X}
}

func (st Settings) validate(maxCells int) error {
	if st.Width < 1 || st.Height < 1 || st.WinLength < 2 || !st.Human.Playing() {
		return ErrInvalidSettings
	}
	// each side is bounded first so the product cannot overflow
	if st.Width > maxCells || st.Height > maxCells || st.Width*st.Height > maxCells {
		return fmt.Errorf("%w: %dx%d exceeds %d cells", ErrBoardTooLarge, st.Width, st.Height, maxCells)
	}
	return nil
}

// GameState is the state tracked per game.
type GameState struct {
	ID       string
	Settings Settings
	Board    *domain.Board
	Player   string
	LastMove domain.Point
	Created  time.Time
	Updated  time.Time
}

// Status is "playing", "human", "computer" (the winner) or "draw".
func (gs GameState) Status() string {
	switch {
	case gs.Board.PlayerWin():
		return "human"
	case gs.Board.ComputerWin():
		return "computer"
	case gs.Board.Done():
		return "draw"
	}
	return "playing"
}

// Hint suggests a move for the human.
type Hint struct {
	Move       domain.Point       `json:"move"`
	Candidates []search.Candidate `json:"candidates"`
	Scores     [][]int            `json:"scores"`
}

// session owns one game and the memo caches used to search it.
type session struct {
	mu    sync.Mutex
	state GameState
	ai    *search.Searcher
	hints *search.Searcher
}

type subscriber struct {
	mu     sync.Mutex
	ch     chan GameState
	closed bool
}

// send delivers without blocking and reports false if the subscriber is
// closed or not keeping up.
func (s *subscriber) send(gs GameState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.ch <- gs:
		return true
	default:
		return false
	}
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// Options configure a Service. Zero values select in-memory storage, no
// logging, unbounded caches, sequential search and DefaultMaxCells.
type Options struct {
	Store     store.Store
	Logger    *zerolog.Logger
	CacheSize int
	Workers   int
	MaxCells  int
}

// Service manages games and subscribers.
type Service struct {
	mu    sync.Mutex
	games map[string]*session
	subs  map[string]map[*subscriber]struct{}

	store     store.Store
	log       zerolog.Logger
	cacheSize int
	workers   int
	maxCells  int
}

// NewService creates a service with default options.
func NewService() *Service { return New(Options{}) }

// New creates a service.
func New(opts Options) *Service {
	s := &Service{
		games:     make(map[string]*session),
		subs:      make(map[string]map[*subscriber]struct{}),
		store:     opts.Store,
		log:       zerolog.Nop(),
		cacheSize: opts.CacheSize,
		workers:   max(1, opts.Workers),
		maxCells:  opts.MaxCells,
	}
	if s.store == nil {
		s.store = store.NewMemory()
	}
	if opts.Logger != nil {
		s.log = *opts.Logger
	}
	if s.maxCells <= 0 {
		s.maxCells = DefaultMaxCells
	}
	return s
}

// MaxCells is the largest board the service accepts.
func (s *Service) MaxCells() int { return s.maxCells }

func (s *Service) newSearcher(id string) *search.Searcher {
	var cache search.Cache = search.NewMapCache()
	if s.cacheSize > 0 {
		if lru, err := search.NewLRUCache(s.cacheSize); err == nil {
			cache = lru
		}
	}
	return search.New(
		search.WithCache(cache),
		search.WithWorkers(s.workers),
		search.WithLogger(s.log.With().Str("game", id).Logger()),
	)
}

func (s *Service) newSession(gs GameState) *session {
	return &session{state: gs, ai: s.newSearcher(gs.ID), hints: s.newSearcher(gs.ID)}
}

// CreateGame creates and registers a new game. When the computer moves first
// its opening move is already on the returned board.
func (s *Service) CreateGame(ctx context.Context, st Settings) (*GameState, error) {
	if err := st.validate(s.maxCells); err != nil {
		return nil, err
	}
	board, err := domain.New(st.Width, st.Height, st.WinLength, st.Human, st.Human.Opponent())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	now := time.Now()
	id := newGameID()
	sess := s.newSession(GameState{
		ID:       id,
		Settings: st,
		Board:    board,
		LastMove: domain.NoMove,
		Created:  now,
		Updated:  now,
	})
	if st.ComputerFirst {
		p := sess.ai.ComputerMove(board)
		sess.state.Board = board.Mark(p.X, p.Y, true)
		sess.state.LastMove = p
	}

	s.mu.Lock()
	s.games[id] = sess
	s.mu.Unlock()

	cp := sess.state
	s.persist(ctx, cp)
	s.log.Info().Str("game", id).
		Int("width", st.Width).Int("height", st.Height).Int("length", st.WinLength).
		Str("human", st.Human.String()).Bool("computer_first", st.ComputerFirst).
		Msg("game created")
	return &cp, nil
}

// lookup finds a session in memory, falling back to the store.
func (s *Service) lookup(ctx context.Context, id string) (*session, error) {
	s.mu.Lock()
	sess, ok := s.games[id]
	s.mu.Unlock()
	if ok {
		return sess, nil
	}

	rec, err := s.store.Load(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	board, err := domain.Parse(rec.Board)
	if err != nil {
		return nil, fmt.Errorf("game %s: %w", id, err)
	}
	loaded := s.newSession(GameState{
		ID: id,
		Settings: Settings{
			Width:         board.Width(),
			Height:        board.Height(),
			WinLength:     board.WinLength(),
			Human:         board.PlayerMarker(),
			ComputerFirst: rec.ComputerFirst,
		},
		Board:    board,
		Player:   rec.Player,
		LastMove: domain.Point{X: rec.LastX, Y: rec.LastY},
		Created:  rec.Created,
		Updated:  rec.Updated,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	// another request may have loaded it meanwhile
	if sess, ok := s.games[id]; ok {
		return sess, nil
	}
	s.games[id] = loaded
	s.log.Debug().Str("game", id).Msg("game restored")
	return loaded, nil
}

// Get returns a copy of the game state if present.
func (s *Service) Get(ctx context.Context, id string) (*GameState, bool) {
	sess, err := s.lookup(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Error().Err(err).Str("game", id).Msg("load failed")
		}
		return nil, false
	}
	sess.mu.Lock()
	cp := sess.state
	sess.mu.Unlock()
	return &cp, true
}

// Join gives the human seat to the first player to ask; everyone else
// spectates and gets false.
func (s *Service) Join(ctx context.Context, id, playerID string) (bool, *GameState, error) {
	sess, err := s.lookup(ctx, id)
	if err != nil {
		return false, nil, err
	}
	sess.mu.Lock()
	seated := false
	if sess.state.Player == "" || sess.state.Player == playerID {
		seated = sess.state.Player == ""
		sess.state.Player = playerID
		if seated {
			sess.state.Updated = time.Now()
		}
	}
	isPlayer := sess.state.Player == playerID
	cp := sess.state
	sess.mu.Unlock()

	if seated {
		s.persist(ctx, cp)
		s.log.Info().Str("game", id).Str("player", playerID).Msg("seat claimed")
	}
	return isPlayer, &cp, nil
}

// Play applies the human's move, answers with the computer's move unless the
// game just ended, persists and broadcasts the result.
func (s *Service) Play(ctx context.Context, id, playerID string, x, y int) (*GameState, error) {
	sess, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if sess.state.Player == "" || sess.state.Player != playerID {
		sess.mu.Unlock()
		return nil, ErrNotAPlayer
	}
	board := sess.state.Board
	if board.Done() {
		sess.mu.Unlock()
		return nil, ErrGameOver
	}
	next := board.Mark(x, y, false)
	if next == board {
		sess.mu.Unlock()
		return nil, ErrInvalidMove
	}
	if !next.Done() {
		p := sess.ai.ComputerMove(next)
		next = next.Mark(p.X, p.Y, true)
		sess.state.LastMove = p
	}
	sess.state.Board = next
	sess.state.Updated = time.Now()
	cp := sess.state
	sess.mu.Unlock()

	s.persist(ctx, cp)
	s.broadcast(id, cp)
	if next.Done() {
		s.log.Info().Str("game", id).Str("status", cp.Status()).Msg("game finished")
	}
	return &cp, nil
}

// Hint suggests the human's best move using the same policy the computer
// plays by, seen from the human's side of the board.
func (s *Service) Hint(ctx context.Context, id string) (Hint, error) {
	sess, err := s.lookup(ctx, id)
	if err != nil {
		return Hint{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.state.Board.Done() {
		return Hint{}, ErrGameOver
	}
	mine := sess.state.Board.Swap()
	return Hint{
		Move:       sess.hints.ComputerMove(mine),
		Candidates: sess.hints.Candidates(mine),
		Scores:     mine.ScoreGrid(),
	}, nil
}

func (s *Service) persist(ctx context.Context, gs GameState) {
	rec := store.Record{
		ID:            gs.ID,
		Board:         gs.Board.String(),
		Player:        gs.Player,
		ComputerFirst: gs.Settings.ComputerFirst,
		LastX:         gs.LastMove.X,
		LastY:         gs.LastMove.Y,
		Created:       gs.Created,
		Updated:       gs.Updated,
	}
	if err := s.store.Save(ctx, rec); err != nil {
		s.log.Error().Err(err).Str("game", gs.ID).Msg("persist failed")
	}
}

// broadcast fans a snapshot out; slow subscribers are closed and dropped.
func (s *Service) broadcast(id string, gs GameState) {
	var toDrop []*subscriber
	s.mu.Lock()
	subs := s.copySubsLocked(id)
	s.mu.Unlock()

	for sub := range subs {
		if !sub.send(gs) {
			sub.close()
			toDrop = append(toDrop, sub)
		}
	}
	if len(toDrop) > 0 {
		s.mu.Lock()
		for _, sub := range toDrop {
			if set, ok := s.subs[id]; ok {
				delete(set, sub)
			}
		}
		s.mu.Unlock()
		s.log.Debug().Str("game", id).Int("dropped", len(toDrop)).Msg("dropped slow subscribers")
	}
}

// Subscribe registers a subscriber for a game. Returns a channel and an
// unsubscribe func; the subscription also ends when ctx is done.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan GameState, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.subs[id]
	if set == nil {
		set = make(map[*subscriber]struct{})
		s.subs[id] = set
	}
	sub := &subscriber{ch: make(chan GameState, 1)}
	set[sub] = struct{}{}

	unsubOnce := &sync.Once{}
	unsub := func() {
		unsubOnce.Do(func() {
			s.mu.Lock()
			if set, ok := s.subs[id]; ok {
				delete(set, sub)
				if len(set) == 0 {
					delete(s.subs, id)
				}
			}
			s.mu.Unlock()
			sub.close()
		})
	}
	go func() {
		<-ctx.Done()
		unsub()
	}()
	return sub.ch, unsub
}

func (s *Service) copySubsLocked(id string) map[*subscriber]struct{} {
	out := make(map[*subscriber]struct{})
	if set, ok := s.subs[id]; ok {
		for k := range set {
			out[k] = struct{}{}
		}
	}
	return out
}
