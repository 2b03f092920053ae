package display_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/okian/trio/internal/adapters/display"
	"github.com/okian/trio/internal/domain/board"
	"github.com/okian/trio/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSnapshot(t *testing.T) {
	Convey("Given a snapshot observing a board", t, func() {
		snap := display.NewSnapshot(4, 2)
		b := board.New(4, 2, board.WithObserver(snap))
		for slot := 0; slot < 4; slot++ {
			So(b.PlaceCard(slot*10, slot), ShouldBeNil)
		}
		b.PlaceToken(0, 1)
		b.PlaceToken(0, 3)
		b.PlaceToken(1, 3)

		Convey("Then the state mirrors the board", func() {
			st := snap.State()
			So(st.Cards, ShouldResemble, []int{0, 10, 20, 30})
			So(st.Tokens, ShouldResemble, [][]int{{1, 3}, {3}})
		})

		Convey("When a match is removed", func() {
			b.RemoveMatch([3]int{0, 1, 3})

			Convey("Then the removed slots are empty and carry no token", func() {
				st := snap.State()
				So(st.Cards, ShouldResemble, []int{-1, -1, 20, -1})
				So(st.Tokens, ShouldResemble, [][]int{{}, {}})
			})
		})

		Convey("When scores, freezes and the countdown change", func() {
			snap.SetScore(1, 4)
			snap.SetFreeze(0, 1500*time.Millisecond)
			snap.SetCountdown(3*time.Second, true)
			snap.AnnounceWinners([]int{1})

			Convey("Then they are reported in milliseconds", func() {
				st := snap.State()
				So(st.Scores, ShouldResemble, []int{0, 4})
				So(st.FreezesMS, ShouldResemble, []int64{1500, 0})
				So(st.CountdownMS, ShouldEqual, 3000)
				So(st.Warn, ShouldBeTrue)
				So(st.Winners, ShouldResemble, []int{1})
				So(st.Finished, ShouldBeTrue)
			})
		})

		Convey("Then out of range updates are ignored", func() {
			snap.SetScore(7, 1)
			snap.PlaceCard(1, 9)
			So(snap.State().Scores, ShouldResemble, []int{0, 0})
		})
	})
}

func TestMulti(t *testing.T) {
	Convey("Given two snapshots behind a fan-out", t, func() {
		a, b := display.NewSnapshot(3, 1), display.NewSnapshot(3, 1)
		var buf bytes.Buffer
		So(logger.Init(logger.WithWriter(&buf)), ShouldBeNil)
		m := display.Multi{a, b, display.NewLog(logger.Get())}

		m.PlaceCard(5, 2)
		m.SetScore(0, 2)
		m.SetCountdown(time.Second, true)
		m.AnnounceWinners([]int{0})

		Convey("Then every display sees every call", func() {
			So(a.State(), ShouldResemble, b.State())
			So(a.State().Cards[2], ShouldEqual, 5)
			So(b.State().Scores[0], ShouldEqual, 2)
			So(buf.String(), ShouldContainSubstring, "round ending soon")
			So(buf.String(), ShouldContainSubstring, "winners")
		})
	})
}
