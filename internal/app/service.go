package app

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"colonos/internal/domain"
	"colonos/internal/ports"
)

// Source is the randomness behind dice, theft and shuffles.
// *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
}

// Service contains the game use-cases operating on the entity store.
type Service struct {
	store ports.Store
	rules Rules

	mu  sync.Mutex // guards src
	src Source
}

// NewService constructs a Service with provided randomness or a time-seeded default.
// Zero rule fields take their defaults.
func NewService(store ports.Store, rules Rules, src Source) *Service {
	if src == nil {
		src = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{store: store, rules: rules.withDefaults(), src: src}
}

// Rules returns the rules the service enforces.
func (s *Service) Rules() Rules {
	return s.rules
}

func (s *Service) intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Intn(n)
}

// rollDice returns two independent values in [1,6].
func (s *Service) rollDice() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Intn(6) + 1, s.src.Intn(6) + 1
}

func (s *Service) shuffle(n int, swap func(i, j int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := n - 1; i > 0; i-- {
		swap(i, s.src.Intn(i+1))
	}
}

// play is the state of one game loaded inside a unit of work.
type play struct {
	tx      ports.Tx
	game    domain.Game
	board   domain.Board
	players []domain.Player // by turn
	me      domain.Player
	turn    domain.CurrentTurn
	events  []Event
}

// load reads the game, its board, players and turn, and resolves username.
func load(tx ports.Tx, gameID int64, username string) (*play, error) {
	game, err := tx.Game(gameID)
	if err != nil {
		return nil, storeErr(err, "Game not found.")
	}
	board, err := tx.Board(game.BoardID)
	if err != nil {
		return nil, storeErr(err, "Board not found.")
	}
	players, err := tx.Players(gameID)
	if err != nil {
		return nil, err
	}
	turn, err := tx.CurrentTurn(gameID)
	if err != nil {
		return nil, storeErr(err, "Game not found.")
	}
	p := &play{tx: tx, game: game, board: board, players: players, turn: turn}
	if username != "" {
		me, ok := p.byUsername(username)
		if !ok {
			return nil, ErrNotAPlayer
		}
		p.me = me
	}
	return p, nil
}

// storeErr turns store misses into NotFound errors with a player-facing detail.
func storeErr(err error, detail string) error {
	if errors.Is(err, ports.ErrNotFound) {
		return NotFound(detail, err)
	}
	return err
}

func (p *play) byUsername(username string) (domain.Player, bool) {
	for _, pl := range p.players {
		if pl.Username == username {
			return pl, true
		}
	}
	return domain.Player{}, false
}

func (p *play) byID(id int64) (domain.Player, bool) {
	for _, pl := range p.players {
		if pl.ID == id {
			return pl, true
		}
	}
	return domain.Player{}, false
}

func (p *play) current() domain.Player {
	pl, _ := p.byID(p.turn.PlayerID)
	return pl
}

func (p *play) inTurn() bool {
	return p.me.ID != 0 && p.me.ID == p.turn.PlayerID
}

func (p *play) emit(kind EventKind, payload any, recipients ...string) {
	p.events = append(p.events, Event{Kind: kind, GameID: p.game.ID, Payload: payload, Recipients: recipients})
}

func (p *play) hand(owner int64) ([]domain.Resource, error) {
	return p.tx.Resources(ports.ResourceFilter{GameID: p.game.ID, OwnerID: owner})
}

func (p *play) buildings() ([]domain.Building, error) {
	return p.tx.Buildings(ports.BuildingFilter{GameID: p.game.ID})
}

func (p *play) roads() ([]domain.Road, error) {
	return p.tx.Roads(ports.RoadFilter{GameID: p.game.ID})
}

// pay removes the cards covering cost from the requester's hand.
func (p *play) pay(cost domain.Cost) error {
	hand, err := p.hand(p.me.ID)
	if err != nil {
		return err
	}
	picked, ok := domain.PickCards(hand, cost)
	if !ok {
		return ErrNotEnoughResources
	}
	for _, r := range picked {
		if err := p.tx.DeleteResource(r.ID); err != nil {
			return err
		}
	}
	return nil
}

// save persists the game and turn records.
func (p *play) save() error {
	if err := p.tx.UpdateGame(p.game); err != nil {
		return err
	}
	return p.tx.PutCurrentTurn(p.turn)
}
