package rng

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestGenerators(t *testing.T) {
	Convey("Given the crypto generator", t, func() {
		c := Crypto{}
		found := make(map[int]bool)
		// it's possible this could fail, but not likely
		for i := 0; i < 1000; i++ {
			found[c.Intn(5)] = true
		}

		Convey("Then every value in range should appear and none outside", func() {
			for i := 0; i < 5; i++ {
				So(found[i], ShouldBeTrue)
			}
			So(found[5], ShouldBeFalse)
		})
	})

	Convey("Given two seeded generators with the same seed", t, func() {
		a, b := NewSeeded(7), NewSeeded(7)

		Convey("Then they should produce the same sequence", func() {
			for i := 0; i < 20; i++ {
				So(a.Intn(81), ShouldEqual, b.Intn(81))
			}
		})
	})

	Convey("Given a fixed generator", t, func() {
		Convey("Then it should clamp to the range", func() {
			So(Fixed(0).Intn(9), ShouldEqual, 0)
			So(Fixed(12).Intn(9), ShouldEqual, 8)
			So(Fixed(-3).Intn(9), ShouldEqual, 0)
		})
	})
}
