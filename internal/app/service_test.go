package service_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	service "github.com/okian/trio/internal/app"
	"github.com/okian/trio/internal/rng"
	"github.com/okian/trio/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should describe the classic game", func() {
			So(svc, ShouldNotBeNil)
			So(svc.Players(), ShouldEqual, 2)
			So(svc.TableSize(), ShouldEqual, 12)
			So(svc.GameID(), ShouldBeEmpty)
		})

		Convey("Then key presses should be dropped before it starts", func() {
			So(svc.KeyPressed(0, 0), ShouldBeFalse)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithPlayers(1, 3),
			service.WithTableSize(15),
			service.WithFeatures(3, 3),
			service.WithDeckSize(27),
			service.WithTurnTimeout(30*time.Second, time.Second),
			service.WithFreezes(0, 0),
			service.WithTableDelay(0),
			service.WithTick(100*time.Millisecond),
			service.WithComputerDelay(time.Millisecond),
			service.WithHints(true),
			service.WithGenerator(rng.NewSeeded(1)),
		)

		Convey("Then it should be created successfully", func() {
			So(svc.Players(), ShouldEqual, 4)
			So(svc.TableSize(), ShouldEqual, 15)
		})
	})
}

func TestService_Start(t *testing.T) {
	Convey("Given a service with one human and one computer player", t, func() {
		svc := service.New(service.WithPlayers(1, 1), service.WithComputerDelay(5*time.Millisecond))
		defer svc.Stop()

		Convey("When starting the service", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := svc.Start(ctx)

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
				So(svc.GameID(), ShouldNotBeEmpty)
				So(svc.Start(ctx), ShouldBeNil)
			})

			Convey("And it should be marked as started", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["gameId"], ShouldEqual, svc.GameID())
				So(stats["players"], ShouldHaveLength, 2)
			})

			Convey("And the human should be able to press keys", func() {
				So(svc.KeyPressed(0, 3), ShouldBeTrue)
				So(svc.KeyPressed(5, 3), ShouldBeFalse)
				So(svc.KeyPressed(0, 12), ShouldBeFalse)
			})

			Convey("And the table should be dealt", func() {
				deadline := time.Now().Add(2 * time.Second)
				for time.Now().Before(deadline) && svc.GetStats()["cardsOnTable"] != 12 {
					time.Sleep(5 * time.Millisecond)
				}
				So(svc.GetStats()["cardsOnTable"], ShouldEqual, 12)
				So(svc.GetStats()["deckSize"], ShouldBeLessThanOrEqualTo, 69)
				So(svc.State().Cards, ShouldHaveLength, 12)
			})
		})
	})

	Convey("Given invalid options", t, func() {
		cases := map[string]*service.Service{
			"no players":     service.New(service.WithPlayers(0, 0)),
			"tiny table":     service.New(service.WithTableSize(2)),
			"oversized deck": service.New(service.WithDeckSize(82)),
			"small universe": service.New(service.WithFeatures(2, 3), service.WithDeckSize(10)),
		}
		for name, svc := range cases {
			err := svc.Start(context.Background())

			Convey("Then "+name+" should be rejected", func() {
				So(errors.Is(err, service.ErrInvalidOption), ShouldBeTrue)
			})
		}
	})
}

func TestService_Stop(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := svc.Start(ctx)
		So(err, ShouldBeNil)

		Convey("When stopping the service", func() {
			svc.Stop()

			Convey("Then it should be marked as stopped", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, false)
				So(stats["finished"], ShouldEqual, "terminated")
			})

			Convey("And the winners should be known", func() {
				winners, err := svc.Wait(ctx)
				So(err, ShouldBeNil)
				So(winners, ShouldNotBeEmpty)
				So(svc.State().Finished, ShouldBeTrue)
			})

			Convey("And it should not start again", func() {
				So(errors.Is(svc.Start(ctx), service.ErrStopped), ShouldBeTrue)
				svc.Stop()
			})
		})
	})
}

func TestService_Wait(t *testing.T) {
	Convey("Given a service that was never started", t, func() {
		svc := service.New()

		Convey("When waiting with a short deadline", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()
			winners, err := svc.Wait(ctx)

			Convey("Then the deadline should be reported", func() {
				So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
				So(winners, ShouldBeNil)
			})
		})
	})
}
