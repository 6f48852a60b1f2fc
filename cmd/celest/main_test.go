package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/okian/celest/internal/app"
	"github.com/okian/celest/internal/config"
	"github.com/okian/celest/internal/domain/chart"
)

func run(args ...string) (string, error) {
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	Convey("Given the celest command", t, func() {
		Convey("When printing the version", func() {
			out, err := run("version")

			Convey("Then the name and version are printed", func() {
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "celest version "+Version)
			})
		})

		Convey("When the log level is unknown", func() {
			_, err := run("--log-level", "loud", "version")

			Convey("Then the command fails before running", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "loud")
			})
		})

		Convey("When the log level is given in capitals", func() {
			_, err := run("--log-level", "WARNING", "version")
			So(err, ShouldBeNil)
		})

		Convey("When overlaying a point", func() {
			out, err := run("overlay", "--point", "220", "--ascendant", "95")

			Convey("Then the whole-sign house is printed", func() {
				So(err, ShouldBeNil)
				var res struct {
					House int `json:"house"`
				}
				So(json.Unmarshal([]byte(out), &res), ShouldBeNil)
				So(res.House, ShouldEqual, 5)
			})
		})

		Convey("When the overlay point is out of range", func() {
			_, err := run("overlay", "--point", "400", "--ascendant", "95")

			Convey("Then the command fails", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When a required flag is missing", func() {
			_, err := run("overlay", "--point", "10")

			Convey("Then the command fails", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When reading a wheel", func() {
			out, err := run("wheel",
				"--date", "1990-05-17", "--time", "08:30",
				"--lat", "48.8566", "--lon", "2.3522", "--location", "Europe/Paris",
				"--at", "2024-06-21T15:00:00Z",
			)

			Convey("Then eight sectors are printed", func() {
				So(err, ShouldBeNil)
				var reading service.WheelReading
				So(json.Unmarshal([]byte(out), &reading), ShouldBeNil)
				So(reading.Sectors, ShouldHaveLength, 8)
			})
		})

		Convey("When --at is malformed", func() {
			_, err := run("wheel", "--date", "1990-05-17", "--at", "yesterday")

			Convey("Then the command fails", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "--at")
			})
		})

		Convey("When asking for the planetary hour after a Friday sunrise", func() {
			out, err := run("hour", "--lat", "51.4779", "--lon", "-0.0015", "--at", "2024-06-21T04:00:00Z")

			Convey("Then Venus rules", func() {
				So(err, ShouldBeNil)
				var reading service.HourReading
				So(json.Unmarshal([]byte(out), &reading), ShouldBeNil)
				So(reading.Ruler, ShouldEqual, chart.Venus)
				So(reading.HourNumber, ShouldEqual, 1)
			})
		})
	})
}

func TestNewServer(t *testing.T) {
	Convey("Given a server built from default configuration", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		cfg := config.New()
		svc, err := service.New(service.WithConfig(cfg))
		So(err, ShouldBeNil)
		srv := newServer(ctx, cfg, svc)

		Convey("Then it listens on the configured address", func() {
			So(srv.Addr, ShouldEqual, cfg.Addr)
			So(srv.ReadHeaderTimeout, ShouldEqual, readHeaderTimeout)
		})

		Convey("When checking health", func() {
			w := httptest.NewRecorder()
			srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			Convey("Then it is healthy", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When fetching the API document", func() {
			w := httptest.NewRecorder()
			srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))

			Convey("Then it is served", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
			})
		})
	})
}

func TestUpdateSystemMetrics(t *testing.T) {
	Convey("Updating system metrics does not panic", t, func() {
		So(updateSystemMetrics, ShouldNotPanic)
	})
}
