package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		ctx := context.Background()

		Convey("When initialized with JSON output", func() {
			var buf bytes.Buffer
			So(Init(WithFormat(FormatJSON), WithWriter(&buf)), ShouldBeNil)
			Named("engine").With(String("subject", "s-1")).Info(ctx, "scored", Int("harmony", 64))

			Convey("Then each entry is one JSON object with the fields", func() {
				var entry map[string]any
				So(json.Unmarshal(buf.Bytes(), &entry), ShouldBeNil)
				So(entry["msg"], ShouldEqual, "scored")
				So(entry["component"], ShouldEqual, "engine")
				So(entry["subject"], ShouldEqual, "s-1")
				So(entry["harmony"], ShouldEqual, 64.0)
				So(entry["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When logging typed fields", func() {
			var buf bytes.Buffer
			So(Init(WithFormat(FormatJSON), WithWriter(&buf)), ShouldBeNil)
			Get().Info(ctx, "refreshed",
				Bool("scheduled", true),
				Duration("took", 1500*time.Millisecond),
				Float64("latitude", 51.5),
				Any("reference", [2]float64{51.5, -0.1}),
			)

			Convey("Then each keeps its JSON type", func() {
				var entry map[string]any
				So(json.Unmarshal(buf.Bytes(), &entry), ShouldBeNil)
				So(entry["scheduled"], ShouldEqual, true)
				So(entry["took"], ShouldEqual, float64(1500*time.Millisecond))
				So(entry["latitude"], ShouldEqual, 51.5)
				So(entry["reference"], ShouldResemble, []any{51.5, -0.1})
			})
		})

		Convey("When the level is raised", func() {
			var buf bytes.Buffer
			So(Init(WithWriter(&buf), WithLevel("warn")), ShouldBeNil)
			Get().Info(ctx, "hidden")
			Get().Warn(ctx, "shown", Error(errors.New("boom")))

			Convey("Then lower levels are dropped", func() {
				out := buf.String()
				So(out, ShouldNotContainSubstring, "hidden")
				So(out, ShouldContainSubstring, "shown")
				So(out, ShouldContainSubstring, "boom")
			})
		})

		Convey("When options are invalid", func() {
			So(Init(WithFormat("xml")), ShouldNotBeNil)
			So(Init(WithLevel("loud")), ShouldNotBeNil)
		})

		Convey("When switching levels at runtime", func() {
			var buf bytes.Buffer
			So(Init(WithWriter(&buf)), ShouldBeNil)
			So(SetLevelString("debug"), ShouldBeNil)
			Get().Debug(ctx, "details")
			So(strings.Count(buf.String(), "details"), ShouldEqual, 1)
			So(SetLevelString("WARNING"), ShouldBeNil)
			So(Sync(), ShouldBeNil)
		})
	})
}
