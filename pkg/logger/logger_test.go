package logger

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	Convey("Given an initialized global logger", t, func() {
		So(Init(), ShouldBeNil)

		Convey("Then Get returns a usable logger", func() {
			l := Get()
			So(l, ShouldNotBeNil)
			l.Info(context.Background(), "hello", String("k", "v"), Int("n", 1))
		})

		Convey("Then Named returns a derived logger", func() {
			So(Named("hub"), ShouldNotBeNil)
		})

		Convey("Then Sync never fails", func() {
			So(Sync(), ShouldBeNil)
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given the level parser", t, func() {
		So(Init(), ShouldBeNil)

		Convey("Known levels parse", func() {
			So(SetLevelString("debug"), ShouldBeNil)
			So(SetLevelString("INFO"), ShouldBeNil)
			So(SetLevelString("warning"), ShouldBeNil)
			So(SetLevelString(" error "), ShouldBeNil)
			So(SetLevelString(""), ShouldBeNil)
		})

		Convey("Unknown levels are rejected", func() {
			So(SetLevelString("loud"), ShouldNotBeNil)
		})

		Convey("SetLevel applies directly", func() {
			SetLevel(slog.LevelWarn)
			So(levelVar.Level(), ShouldEqual, slog.LevelWarn)
		})
	})
}

func TestFieldConstructors(t *testing.T) {
	Convey("Given the field helpers", t, func() {
		So(String("a", "b").Key, ShouldEqual, "a")
		So(Int64("n", 7).Value, ShouldEqual, int64(7))
		So(Float64("f", 1.5).Value, ShouldEqual, 1.5)
		So(Error(errors.New("boom")).Key, ShouldEqual, "error")
	})
}
