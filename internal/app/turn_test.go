package app

import (
	"context"
	"testing"

	"colonos/internal/domain"
	"colonos/internal/ports"
	"colonos/internal/ports/memory"
)

func TestEndTurnHandsControlToNextPlayer(t *testing.T) {
	f := newFixture(t, domain.StageFullPlay)

	evs := f.mustPerform("ana", Action{Type: ActionEndTurn})

	turn := f.turn()
	if turn.PlayerID != f.players["bob"] {
		t.Fatalf("turn player = %d, want bob %d", turn.PlayerID, f.players["bob"])
	}
	if turn.Stage != domain.StageAwaitingRoll || turn.Dice != [2]int{} {
		t.Fatalf("turn after end = %+v, want fresh AWAITING_ROLL", turn)
	}
	ev, ok := findEvent(evs, EventTurnEnded)
	if !ok {
		t.Fatalf("events = %v, want turn_ended", eventKinds(evs))
	}
	if p := ev.Payload.(TurnEndedPayload); p.Username != "ana" || p.Next != "bob" {
		t.Fatalf("turn_ended payload = %+v", p)
	}
}

func TestTurnOrderIsCyclic(t *testing.T) {
	f := newFixture(t, domain.StageFullPlay)
	order := []string{"ana", "bob", "cid", "dee", "ana"}
	for i := 0; i < len(order)-1; i++ {
		f.setStage(domain.StageFullPlay)
		f.mustPerform(order[i], Action{Type: ActionEndTurn})
		if got := f.turn().PlayerID; got != f.players[order[i+1]] {
			t.Fatalf("after %s ended, turn = %d, want %s", order[i], got, order[i+1])
		}
	}
}

func TestEndTurnRejections(t *testing.T) {
	tests := []struct {
		name  string
		stage domain.Stage
		user  string
		want  error
	}{
		{name: "not in turn", stage: domain.StageFullPlay, user: "bob", want: ErrNotInTurn},
		{name: "hazard pending", stage: domain.StageHazardPending, user: "ana", want: ErrMoveThief},
		{name: "dice pending", stage: domain.StageAwaitingRoll, user: "ana", want: ErrRollFirst},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.stage)
			_, err := f.perform(tt.user, Action{Type: ActionEndTurn})
			expectErr(t, err, tt.want)
			if f.turn().PlayerID != f.players["ana"] {
				t.Fatalf("turn moved after rejected end_turn")
			}
		})
	}
}

func TestPerformGuards(t *testing.T) {
	f := newFixture(t, domain.StageFullPlay)

	if _, err := f.perform("", Action{Type: ActionEndTurn}); KindOf(err) != KindUnauthorized {
		t.Fatalf("anonymous err = %v, want unauthorized", err)
	}
	if _, err := f.perform("zed", Action{Type: ActionEndTurn}); KindOf(err) != KindNotFound {
		t.Fatalf("outsider err = %v, want not found", err)
	}
	_, err := f.svc.Perform(context.Background(), 999, "ana", Action{Type: ActionEndTurn})
	if KindOf(err) != KindNotFound {
		t.Fatalf("missing game err = %v, want not found", err)
	}
	_, err = f.perform("ana", Action{Type: "fly"})
	expectErr(t, err, ErrInvalidAction)
	if KindOf(err) != KindInvalidAction {
		t.Fatalf("kind = %v, want invalid_action", KindOf(err))
	}
}

// recordingBinder counts binds and fails each with err.
type recordingBinder struct {
	calls *int
	err   error
}

func (b recordingBinder) Bind(*Action) error {
	*b.calls++
	return b.err
}

func TestPayloadBoundAfterTurnChecks(t *testing.T) {
	f := newFixture(t, domain.StageAwaitingRoll)
	calls := 0
	bad := recordingBinder{calls: &calls, err: Validation("Invalid payload.", nil)}

	_, err := f.perform("bob", Action{Type: ActionBuildRoad, Binder: bad})
	expectErr(t, err, ErrNotInTurn)
	_, err = f.perform("bob", Action{Type: "fly", Binder: bad})
	expectErr(t, err, ErrNotInTurn)
	_, err = f.svc.Perform(context.Background(), 999, "ana", Action{Type: "fly", Binder: bad})
	if KindOf(err) != KindNotFound {
		t.Fatalf("missing game err = %v, want not found", err)
	}
	_, err = f.perform("ana", Action{Type: "fly", Binder: bad})
	expectErr(t, err, ErrInvalidAction)
	if calls != 0 {
		t.Fatalf("payload bound %d times before the action was accepted", calls)
	}

	_, err = f.perform("ana", Action{Type: ActionBuildRoad, Binder: bad})
	if KindOf(err) != KindValidation || calls != 1 {
		t.Fatalf("err = %v after %d binds, want validation after 1", err, calls)
	}
	if f.turn().Stage != domain.StageAwaitingRoll {
		t.Fatal("rejected action changed the turn")
	}
}

func TestRollDiceProduces(t *testing.T) {
	f := newFixture(t, domain.StageAwaitingRoll)
	// (2,5) touches only tile (2,2), token 8.
	f.build("bob", domain.Settlement, 2, 5)
	f.src.vals = dice(3, 5)

	evs := f.mustPerform("ana", Action{Type: ActionRollDice})

	turn := f.turn()
	if turn.Dice != [2]int{3, 5} || turn.Stage != domain.StageFullPlay {
		t.Fatalf("turn = %+v, want dice (3,5) in FULL_PLAY", turn)
	}
	bob := f.hand("bob")
	if len(bob) != 1 || bob[0].Terrain != domain.Grain || !bob[0].LastGained {
		t.Fatalf("bob hand = %+v, want one fresh grain", bob)
	}
	if _, ok := findEvent(evs, EventResourcesProduced); !ok {
		t.Fatalf("events = %v, want resources_produced", eventKinds(evs))
	}
}

func TestProductionClearsLastGained(t *testing.T) {
	f := newFixture(t, domain.StageAwaitingRoll)
	f.build("bob", domain.Settlement, 2, 5)
	f.src.vals = dice(3, 5)
	f.mustPerform("ana", Action{Type: ActionRollDice})

	f.update(func(tx ports.Tx) error {
		turn, _ := tx.CurrentTurn(f.gameID)
		turn.Stage = domain.StageAwaitingRoll
		return tx.PutCurrentTurn(turn)
	})
	f.src.vals = dice(1, 1)
	f.mustPerform("ana", Action{Type: ActionRollDice})

	for _, r := range f.hand("bob") {
		if r.LastGained {
			t.Fatalf("card %+v still marked after a later production step", r)
		}
	}
}

func TestHazardRollNeverProduces(t *testing.T) {
	for d1 := 1; d1 <= 6; d1++ {
		for d2 := 1; d2 <= 6; d2++ {
			f := newFixture(t, domain.StageAwaitingRoll)
			f.build("bob", domain.Settlement, 1, 1)
			f.build("cid", domain.Settlement, 2, 5)
			f.src.vals = dice(d1, d2)

			f.mustPerform("ana", Action{Type: ActionRollDice})

			sum := d1 + d2
			if sum < 2 || sum > 12 {
				t.Fatalf("sum %d out of range", sum)
			}
			stage := f.turn().Stage
			total := len(f.hand("bob")) + len(f.hand("cid"))
			if sum == 7 {
				if stage != domain.StageHazardPending || total != 0 {
					t.Fatalf("roll 7: stage %s, %d cards", stage, total)
				}
			} else if stage != domain.StageFullPlay {
				t.Fatalf("roll %d: stage %s, want FULL_PLAY", sum, stage)
			}
		}
	}
}

func TestRollDiceStageGating(t *testing.T) {
	tests := []struct {
		stage domain.Stage
		want  error
	}{
		{stage: domain.StageFullPlay, want: ErrAlreadyRolled},
		{stage: domain.StageHazardPending, want: ErrMoveThief},
	}
	for _, tt := range tests {
		t.Run(string(tt.stage), func(t *testing.T) {
			f := newFixture(t, tt.stage)
			_, err := f.perform("ana", Action{Type: ActionRollDice})
			expectErr(t, err, tt.want)
		})
	}
}

func TestAutoRollOnEndTurn(t *testing.T) {
	f := newFixture(t, domain.StageFullPlay)
	f.svc = NewService(f.store, DefaultRules(), f.src)
	f.src.vals = dice(2, 2)

	evs := f.mustPerform("ana", Action{Type: ActionEndTurn})

	turn := f.turn()
	if turn.PlayerID != f.players["bob"] || turn.Dice != [2]int{2, 2} || turn.Stage != domain.StageFullPlay {
		t.Fatalf("turn = %+v, want bob rolled (2,2)", turn)
	}
	if _, ok := findEvent(evs, EventDiceRolled); !ok {
		t.Fatalf("events = %v, want dice_rolled", eventKinds(evs))
	}
}

func TestGameOverBlocksActions(t *testing.T) {
	f := newFixture(t, domain.StageFullPlay)
	f.update(func(tx ports.Tx) error {
		g, _ := tx.Game(f.gameID)
		g.Winner = "bob"
		return tx.UpdateGame(g)
	})
	_, err := f.perform("ana", Action{Type: ActionEndTurn})
	expectErr(t, err, ErrGameOver)
}

func TestNewServiceDefaults(t *testing.T) {
	svc := NewService(memory.New(), Rules{}, nil)
	r := svc.Rules()
	if r.BankTradeRatio != 4 || r.VictoryPointsToWin != 10 || r.Seats() != 4 {
		t.Fatalf("defaults = %+v", r)
	}
	d1, d2 := svc.rollDice()
	if d1 < 1 || d1 > 6 || d2 < 1 || d2 > 6 {
		t.Fatalf("dice (%d,%d) out of range", d1, d2)
	}
}
