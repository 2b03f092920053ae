package game

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/okian/trio/internal/domain/board"
	"github.com/okian/trio/internal/domain/deck"
	"github.com/okian/trio/internal/domain/rules"
	"github.com/okian/trio/internal/rng"
	"github.com/okian/trio/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type recordingDisplay struct {
	nopDisplay

	mu         sync.Mutex
	countdowns []time.Duration
	scores     map[int]int
	freezes    map[int][]time.Duration
	winners    []int
	announced  bool
}

func newRecordingDisplay() *recordingDisplay {
	return &recordingDisplay{
		scores:  make(map[int]int),
		freezes: make(map[int][]time.Duration),
	}
}

func (r *recordingDisplay) SetCountdown(remaining time.Duration, _ bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.countdowns = append(r.countdowns, remaining)
}

func (r *recordingDisplay) SetScore(player, score int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scores[player] = score
}

func (r *recordingDisplay) SetFreeze(player int, remaining time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.freezes[player] = append(r.freezes[player], remaining)
}

func (r *recordingDisplay) AnnounceWinners(players []int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.winners = players
	r.announced = true
}

func (r *recordingDisplay) lastCountdown() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.countdowns) == 0 {
		return 0
	}
	return r.countdowns[len(r.countdowns)-1]
}

func (r *recordingDisplay) freezesOf(player int) []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.freezes[player])
}

type table struct {
	board   *board.Board
	deck    *deck.Deck
	slot    *Slot
	players []*Player
	dealer  *Dealer
	display *recordingDisplay
}

// newTable deals cards in order: card i lands on slot i.
func newTable(size int, cards []int, rule rules.Rule, humans []bool, opts ...Option) *table {
	t := &table{display: newRecordingDisplay()}
	opts = append([]Option{
		WithLogger(logger.Nop()),
		WithDisplay(t.display),
		WithFreezes(0, 0),
	}, opts...)

	t.board = board.New(size, len(humans))
	t.deck = deck.New(0, deck.WithCards(cards...), deck.WithGenerator(rng.Fixed(0)))
	t.slot = NewSlot(len(humans))
	for id, human := range humans {
		t.players = append(t.players, NewPlayer(id, human, t.board, t.slot, opts...))
	}
	t.dealer = NewDealer(t.board, t.deck, rule, t.slot, t.players, opts...)
	return t
}

func (t *table) mark(player int, slots ...int) {
	for _, s := range slots {
		So(t.board.PlaceToken(player, s), ShouldBeTrue)
	}
}

func newClaim(player int) *Claim {
	return &Claim{player: player, submitted: time.Now(), reply: make(chan Verdict, 1)}
}

func cardRange(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestDealer_Adjudicate(t *testing.T) {
	Convey("Given a dealt table of 12 with 9 cards left in the deck", t, func() {
		ctx := context.Background()
		rule := rules.Explicit([3]int{0, 1, 2}, [3]int{12, 13, 14})
		tb := newTable(12, cardRange(21), rule, []bool{true, true},
			WithTurnTimeout(time.Minute, 5*time.Second))
		So(tb.dealer.placeCards(ctx), ShouldBeNil)
		tb.dealer.resetCountdown()
		So(tb.board.CountCards(), ShouldEqual, 12)
		So(tb.deck.Len(), ShouldEqual, 9)

		Convey("When player 0 claims the match on 0,1,2", func() {
			tb.mark(0, 0, 1, 2)
			tb.mark(1, 2, 7)
			time.Sleep(10 * time.Millisecond)
			before := tb.dealer.Remaining()
			claim := newClaim(0)
			exhausted := tb.dealer.adjudicate(ctx, claim)

			Convey("Then it scores exactly once and the slots are refilled", func() {
				So(<-claim.reply, ShouldEqual, VerdictPoint)
				So(exhausted, ShouldBeFalse)
				So(tb.players[0].Score(), ShouldEqual, 1)
				So(tb.display.scores[0], ShouldEqual, 1)
				So(tb.deck.Len(), ShouldEqual, 6)
				So(tb.board.CountCards(), ShouldEqual, 12)
				for _, card := range []int{0, 1, 2} {
					_, ok := tb.board.SlotOf(card)
					So(ok, ShouldBeFalse)
				}
			})

			Convey("Then the countdown is reset to the full timeout", func() {
				So(tb.display.lastCountdown(), ShouldEqual, time.Minute)
				So(tb.dealer.Remaining(), ShouldBeGreaterThan, before)
			})

			Convey("Then no player keeps a token on a removed slot", func() {
				So(tb.board.Tokens(0), ShouldBeEmpty)
				So(tb.board.Tokens(1), ShouldResemble, []int{7})
				So(tb.board.Validate(), ShouldBeNil)
			})
		})

		Convey("When player 0 claims 0,1,3 which is no match", func() {
			tb.mark(0, 0, 1, 3)
			tb.dealer.mu.Lock()
			deadline := tb.dealer.deadline
			tb.dealer.mu.Unlock()
			claim := newClaim(0)
			tb.dealer.adjudicate(ctx, claim)

			Convey("Then a penalty is given and nothing else moves", func() {
				So(<-claim.reply, ShouldEqual, VerdictPenalty)
				So(tb.players[0].Score(), ShouldEqual, 0)
				So(tb.players[0].Penalties(), ShouldEqual, 1)
				So(tb.deck.Len(), ShouldEqual, 9)
				So(tb.board.Tokens(0), ShouldResemble, []int{0, 1, 3})
				tb.dealer.mu.Lock()
				So(tb.dealer.deadline.Equal(deadline), ShouldBeTrue)
				tb.dealer.mu.Unlock()
			})
		})

		Convey("When player 1 matches on a slot player 0 has already claimed", func() {
			tb.mark(0, 2, 5, 7)
			tb.mark(1, 0, 1, 2)
			first, second := newClaim(1), newClaim(0)
			tb.dealer.adjudicate(ctx, first)
			tb.dealer.adjudicate(ctx, second)

			Convey("Then player 0's claim is stale and changes no score", func() {
				So(<-first.reply, ShouldEqual, VerdictPoint)
				So(<-second.reply, ShouldEqual, VerdictStale)
				So(tb.players[0].Score(), ShouldEqual, 0)
				So(tb.players[0].Penalties(), ShouldEqual, 0)
				So(tb.players[1].Score(), ShouldEqual, 1)
				So(tb.board.Tokens(0), ShouldResemble, []int{5, 7})
			})
		})

		Convey("When a claim names an unknown player", func() {
			claim := newClaim(9)
			tb.dealer.adjudicate(ctx, claim)

			Convey("Then it is answered as stale", func() {
				So(<-claim.reply, ShouldEqual, VerdictStale)
			})
		})
	})
}

func TestDealer_Reshuffle(t *testing.T) {
	Convey("Given a dealt table", t, func() {
		ctx := context.Background()
		tb := newTable(12, cardRange(21), rules.Explicit([3]int{0, 1, 2}), []bool{true, true})
		So(tb.dealer.placeCards(ctx), ShouldBeNil)
		tb.mark(0, 3, 4)
		tb.players[1].KeyPressed(6)

		Convey("When the round ends", func() {
			tb.dealer.removeAllCardsFromTable(ctx)

			Convey("Then every card returns to the deck exactly once", func() {
				So(tb.board.CountCards(), ShouldEqual, 0)
				So(tb.deck.Len(), ShouldEqual, 21)
				cards := tb.deck.Cards()
				slices.Sort(cards)
				So(cards, ShouldResemble, cardRange(21))
			})

			Convey("Then tokens and pending presses are gone", func() {
				So(tb.board.TokenCount(0), ShouldEqual, 0)
				So(tb.players[1].Pending(), ShouldEqual, 0)
			})

			Convey("Then dealing again keeps deck plus board constant", func() {
				So(tb.dealer.placeCards(ctx), ShouldBeNil)
				So(tb.deck.Len()+tb.board.CountCards(), ShouldEqual, 21)
			})
		})
	})
}

func TestDealer_Run(t *testing.T) {
	Convey("Given cards that hold no match", t, func() {
		never := rules.Func(func([3]int) bool { return false })
		tb := newTable(12, cardRange(12), never, []bool{true, true, false})

		Convey("When the dealer runs", func() {
			winners := tb.dealer.Run(context.Background())

			Convey("Then the game ends at once and everyone tied at zero wins", func() {
				So(winners, ShouldResemble, []int{0, 1, 2})
				So(tb.dealer.Finished(), ShouldEqual, FinishExhausted)
				So(tb.dealer.Rounds(), ShouldEqual, 0)
				So(tb.display.winners, ShouldResemble, []int{0, 1, 2})
			})
		})
	})

	Convey("Given a human who finds the only match", t, func() {
		tb := newTable(12, cardRange(15), rules.Explicit([3]int{0, 1, 2}), []bool{true, true})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		result := make(chan []int, 1)
		go func() { result <- tb.dealer.Run(ctx) }()
		So(eventually(func() bool { return tb.board.CountCards() == 12 }), ShouldBeTrue)

		for _, s := range []int{0, 1, 2} {
			So(tb.players[0].KeyPressed(s), ShouldBeTrue)
			So(eventually(func() bool { return tb.players[0].Pending() == 0 }), ShouldBeTrue)
		}

		Convey("Then the game is exhausted and that player wins alone", func() {
			var winners []int
			select {
			case winners = <-result:
			case <-ctx.Done():
			}
			So(winners, ShouldResemble, []int{0})
			So(tb.dealer.Finished(), ShouldEqual, FinishExhausted)
			So(tb.players[0].Score(), ShouldEqual, 1)
			So(tb.players[1].Score(), ShouldEqual, 0)
		})
	})

	Convey("Given a short round nobody plays", t, func() {
		tb := newTable(12, cardRange(21), rules.Explicit([3]int{0, 1, 2}), []bool{true},
			WithTurnTimeout(40*time.Millisecond, 10*time.Millisecond),
			WithTick(10*time.Millisecond))
		ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
		defer cancel()

		winners := tb.dealer.Run(ctx)

		Convey("Then the table is reshuffled until termination", func() {
			So(tb.dealer.Rounds(), ShouldBeGreaterThan, 1)
			So(tb.dealer.Finished(), ShouldEqual, FinishTerminated)
			So(winners, ShouldResemble, []int{0})
			So(tb.deck.Len()+tb.board.CountCards(), ShouldEqual, 21)
			So(tb.display.announced, ShouldBeTrue)
		})
	})

	Convey("Given two computer players on a table of three", t, func() {
		tb := newTable(3, cardRange(3), rules.Explicit([3]int{0, 1, 2}), []bool{false, false},
			WithGenerator(rng.NewSeeded(7)))
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		winners := tb.dealer.Run(ctx)

		Convey("Then one of them finds the match", func() {
			So(ctx.Err(), ShouldBeNil)
			So(winners, ShouldHaveLength, 1)
			So(tb.players[0].Score()+tb.players[1].Score(), ShouldEqual, 1)
			So(tb.dealer.Finished(), ShouldEqual, FinishExhausted)
		})
	})
}

func TestDealer_Winners(t *testing.T) {
	Convey("Given players with uneven scores", t, func() {
		tb := newTable(12, cardRange(21), rules.NewSetRule(), []bool{true, true, true, true})
		tb.players[1].Point()
		tb.players[1].Point()
		tb.players[3].Point()
		tb.players[3].Point()
		tb.players[2].Point()

		Convey("Then every player tied at the top wins", func() {
			So(tb.dealer.Winners(), ShouldResemble, []int{1, 3})
		})
	})
}

func TestPlayer_Tokens(t *testing.T) {
	Convey("Given a running human player on a full board", t, func() {
		tb := newTable(12, cardRange(12), rules.Explicit([3]int{0, 1, 2}), []bool{true},
			WithFreezes(0, 40*time.Millisecond), WithFreezeTick(10*time.Millisecond))
		ctx, cancel := context.WithCancel(context.Background())
		So(tb.dealer.placeCards(ctx), ShouldBeNil)
		p := tb.players[0]
		go p.Run(ctx)
		Reset(func() {
			cancel()
			<-p.Done()
		})

		Convey("When the same slot is pressed twice", func() {
			So(p.KeyPressed(4), ShouldBeTrue)
			So(eventually(func() bool { return tb.board.TokenCount(0) == 1 }), ShouldBeTrue)
			So(p.KeyPressed(4), ShouldBeTrue)

			Convey("Then the tokens are back where they started", func() {
				So(eventually(func() bool { return tb.board.TokenCount(0) == 0 }), ShouldBeTrue)
			})
		})

		Convey("Then presses outside the table are dropped", func() {
			So(p.KeyPressed(12), ShouldBeFalse)
			So(p.KeyPressed(-1), ShouldBeFalse)
		})

		Convey("When three slots are marked", func() {
			for _, s := range []int{0, 1, 3} {
				So(p.KeyPressed(s), ShouldBeTrue)
				So(eventually(func() bool { return p.Pending() == 0 }), ShouldBeTrue)
			}

			Convey("Then the player publishes a claim", func() {
				var claim *Claim
				select {
				case claim = <-tb.slot.Claims():
				case <-time.After(2 * time.Second):
				}
				So(claim, ShouldNotBeNil)
				So(claim.Player(), ShouldEqual, 0)

				Convey("And input is dropped while the verdict is pending", func() {
					So(eventually(func() bool { return !p.KeyPressed(5) }), ShouldBeTrue)
				})

				Convey("And a penalty freezes the player before it listens again", func() {
					tb.dealer.adjudicate(ctx, claim)
					So(eventually(func() bool {
						f := tb.display.freezesOf(0)
						return len(f) > 1 && f[len(f)-1] == 0
					}), ShouldBeTrue)
					So(tb.display.freezesOf(0)[0], ShouldBeGreaterThan, 0)
					So(eventually(func() bool { return p.KeyPressed(5) }), ShouldBeTrue)
				})
			})
		})
	})
}

func TestSlot(t *testing.T) {
	Convey("Given a rendezvous for two players", t, func() {
		s := NewSlot(2)

		Convey("When a claim is resolved twice", func() {
			c := newClaim(0)
			c.Resolve(VerdictPoint)
			c.Resolve(VerdictPenalty)

			Convey("Then only the first verdict is delivered", func() {
				So(<-c.reply, ShouldEqual, VerdictPoint)
				So(len(c.reply), ShouldEqual, 0)
			})
		})

		Convey("When a player submits and the table is drained", func() {
			got := make(chan Verdict, 1)
			go func() {
				v, _ := s.Submit(context.Background(), 1)
				got <- v
			}()
			So(eventually(func() bool { return len(s.claims) == 1 }), ShouldBeTrue)

			Convey("Then the claim is answered as stale", func() {
				So(s.Drain(), ShouldEqual, 1)
				So(<-got, ShouldEqual, VerdictStale)
				So(s.Drain(), ShouldEqual, 0)
			})
		})

		Convey("When the submitter's context ends first", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()
			_, err := s.Submit(ctx, 0)

			Convey("Then Submit returns the context error", func() {
				So(err, ShouldEqual, context.DeadlineExceeded)
			})
		})

		Convey("Then verdicts have names", func() {
			So(VerdictPoint.String(), ShouldEqual, "point")
			So(VerdictPenalty.String(), ShouldEqual, "penalty")
			So(VerdictStale.String(), ShouldEqual, "stale")
		})
	})
}
