package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry and options", func() {
			registry := prometheus.NewRegistry()
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			m.sectorWheels.Inc()

			Convey("Then metrics are registered under the configured names", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				var found bool
				for _, f := range families {
					if f.GetName() == "test_unit_sector_wheels_total" {
						found = true
						So(f.GetMetric()[0].GetLabel()[0].GetValue(), ShouldEqual, "test")
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When two managers share one registry", func() {
			registry := prometheus.NewRegistry()
			NewManager(WithPrometheusRegistry(registry))

			Convey("Then the second registration panics", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording scoring metrics", func() {
			before := testutil.ToFloat64(globalManager.sectorWheels)
			RecordSectorWheel(64, map[string]int{"Career": 70, "Leisure": 58})
			RecordDimensionScore("mental", 80)
			RecordScoringLatency(3)

			Convey("Then the counters move", func() {
				So(testutil.ToFloat64(globalManager.sectorWheels), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.dimensionScores.WithLabelValues("mental")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When recording fallbacks and cache lookups", func() {
			RecordPlanetaryHour(true)
			RecordOracleDegradation("natal")
			RecordNatalCache(true)
			RecordNatalCache(false)

			Convey("Then each outcome has its own series", func() {
				So(testutil.ToFloat64(globalManager.planetaryHours.WithLabelValues("fallback")), ShouldBeGreaterThanOrEqualTo, 1)
				So(testutil.ToFloat64(globalManager.natalCache.WithLabelValues("hit")), ShouldBeGreaterThanOrEqualTo, 1)
				So(testutil.ToFloat64(globalManager.natalCache.WithLabelValues("miss")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When recording queue and worker metrics", func() {
			UpdateQueueSize(3)
			UpdateQueueCapacity(10)
			UpdateQueueUtilization(0.3)
			UpdateWorkerCount(4)
			UpdateWorkerActiveCount(2)

			Convey("Then the gauges hold the last value", func() {
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 3)
				So(testutil.ToFloat64(globalManager.queueUtilization), ShouldEqual, 0.3)
				So(testutil.ToFloat64(globalManager.workerActiveCount), ShouldEqual, 2)
			})

			So(func() {
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				RecordQueueLatency(1)
				RecordSnapshotDuplicate()
				RecordWorkerProcessingLatency(2)
				RecordWorkerError()
				RecordSnapshotStored()
				UpdateSnapshotsTotal(5)
				RecordSnapshotsPruned(2)
				RecordRefreshRun(1700000000, 3)
			}, ShouldNotPanic)
		})

		Convey("When recording HTTP metrics", func() {
			RecordHTTPRequest("/v1/wheel", "POST", "200")
			RecordHTTPRequestDuration("/v1/wheel", "POST", "200", 5)
			RecordRateLimited("/v1/wheel")
			RecordErrorByComponent("api", "bad_request")

			Convey("Then the exposition contains them", func() {
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				joined := strings.Join(names, ",")
				So(joined, ShouldContainSubstring, "celest_engine_http_requests_total")
				So(joined, ShouldContainSubstring, "celest_engine_http_rate_limited_total")
			})
		})

		Convey("When recording system metrics", func() {
			UpdateSystemMemoryUsage(2048)
			UpdateSystemGoroutineCount(12)
			RecordSystemGCPauseTime(0.5)

			Convey("Then the gauges hold the last value", func() {
				So(testutil.ToFloat64(globalManager.systemMemoryUsage), ShouldEqual, 2048)
				So(testutil.ToFloat64(globalManager.systemGoroutineCount), ShouldEqual, 12)
				So(testutil.ToFloat64(globalManager.systemGCPauseTime), ShouldEqual, 0.5)
			})
		})
	})
}
