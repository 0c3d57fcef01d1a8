package session

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/outpost-games/hideforge/internal/entity"
)

func TestAuthenticateSetsTokenAndFlag(t *testing.T) {
	Convey("Given a fresh session", t, func() {
		s := New(func([]byte) error { return nil })
		So(s.Authenticated(), ShouldBeFalse)

		Convey("When it authenticates", func() {
			s.Authenticate("tok-123")

			So(s.Authenticated(), ShouldBeTrue)
			So(s.Token(), ShouldEqual, "tok-123")
		})
	})
}

func TestSetPlayerClearsSpectating(t *testing.T) {
	Convey("Given a session spectating one entity", t, func() {
		s := New(func([]byte) error { return nil })
		s.SetSpectating(entity.ID(9))

		Convey("When it joins as a player", func() {
			s.SetPlayer(entity.ID(1))

			So(s.SpectatingID, ShouldBeNil)
			So(s.PlayerID, ShouldNotBeNil)
			So(*s.PlayerID, ShouldEqual, entity.ID(1))
		})
	})
}
