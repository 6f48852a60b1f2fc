package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/celest/internal/adapters/repository"
	service "github.com/okian/celest/internal/app"
	"github.com/okian/celest/internal/domain/model"
	"github.com/okian/celest/internal/domain/scoring"
)

// waitForSnapshot polls until the subject's snapshot for date is stored.
func waitForSnapshot(svc *service.Service, subjectID, date string) (model.Snapshot, error) {
	deadline := time.Now().Add(5 * time.Second)
	for {
		snap, err := svc.Snapshot(context.Background(), subjectID, date)
		if err == nil || !errors.Is(err, repository.ErrNotFound) || time.Now().After(deadline) {
			return snap, err
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service with full integration", t, func() {
		clk := newClock(time.Date(2024, 6, 21, 15, 0, 0, 0, time.UTC))
		svc, err := service.New(
			service.WithClock(clk.Now),
			service.WithWorkerCount(2),
			service.WithQueueSize(64),
			service.WithRetentionDays(1),
		)
		So(err, ShouldBeNil)
		ctx := context.Background()

		Convey("When snapshots are requested before start", func() {
			_, err := svc.RequestSnapshot(ctx, "alice", knownBirth)
			_, getErr := svc.Snapshot(ctx, "alice", "")

			Convey("Then the pipeline is unavailable", func() {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
				So(errors.Is(getErr, service.ErrNotStarted), ShouldBeTrue)
			})
		})

		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		Convey("When the service is running", func() {
			Convey("Then it should be marked as started", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["queueLength"], ShouldEqual, 0)
			})
		})

		Convey("When a snapshot is requested", func() {
			ack, err := svc.RequestSnapshot(ctx, "alice", knownBirth)
			So(err, ShouldBeNil)

			Convey("Then it is acknowledged with a job id for today", func() {
				So(ack.JobID, ShouldNotBeEmpty)
				So(ack.Duplicate, ShouldBeFalse)
				So(ack.Date, ShouldEqual, "2024-06-21")
			})

			Convey("And the same subject-day is a duplicate", func() {
				again, err := svc.RequestSnapshot(ctx, "alice", knownBirth)
				So(err, ShouldBeNil)
				So(again.Duplicate, ShouldBeTrue)
				So(again.JobID, ShouldBeEmpty)
			})

			Convey("And the workers store the snapshot", func() {
				snap, err := waitForSnapshot(svc, "alice", "2024-06-21")
				So(err, ShouldBeNil)
				So(snap.ID, ShouldEqual, ack.JobID)
				So(snap.Harmony, ShouldBeBetweenOrEqual, 20, 100)
				for _, v := range []int{snap.Mental, snap.Physical, snap.Emotional} {
					So(v, ShouldBeBetweenOrEqual, 10, 100)
				}
				So(snap.Productivity, ShouldEqual, (snap.Mental+snap.Physical)/2)
				So(snap.Verdict, ShouldEqual, string(scoring.ComputeSynergy(map[scoring.Dimension]int{
					scoring.Mental: snap.Mental, scoring.Physical: snap.Physical, scoring.Emotional: snap.Emotional,
				}).Verdict))
				So(snap.ComputedAt.Equal(clk.Now()), ShouldBeTrue)

				today, err := svc.Snapshot(ctx, "alice", "")
				So(err, ShouldBeNil)
				So(today, ShouldResemble, snap)
			})
		})

		Convey("When a request is malformed", func() {
			_, errSubject := svc.RequestSnapshot(ctx, "  ", knownBirth)
			_, errBirth := svc.RequestSnapshot(ctx, "bob", model.BirthData{Date: "1990-05-17", Latitude: 120})
			_, errDate := svc.Snapshot(ctx, "alice", "21-06-2024")
			_, errMissing := svc.Snapshot(ctx, "nobody", "2024-06-21")

			Convey("Then each is rejected with its kind", func() {
				So(errors.Is(errSubject, service.ErrInvalidSubject), ShouldBeTrue)
				So(errors.Is(errBirth, model.ErrInvalidBirthData), ShouldBeTrue)
				So(errors.Is(errDate, service.ErrInvalidDate), ShouldBeTrue)
				So(errors.Is(errMissing, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the daily refresh runs across days", func() {
			_, err := svc.RequestSnapshot(ctx, "alice", knownBirth)
			So(err, ShouldBeNil)
			_, err = waitForSnapshot(svc, "alice", "2024-06-21")
			So(err, ShouldBeNil)

			sameDay, err := svc.Refresh(ctx)
			So(err, ShouldBeNil)

			clk.Advance(24 * time.Hour)
			nextDay, err := svc.Refresh(ctx)
			So(err, ShouldBeNil)
			_, err = waitForSnapshot(svc, "alice", "2024-06-22")
			So(err, ShouldBeNil)

			Convey("Then only the new day is queued", func() {
				So(sameDay, ShouldEqual, 0)
				So(nextDay, ShouldEqual, 1)
			})

			Convey("And history lists both days", func() {
				history, err := svc.History(ctx, "alice", "", "")
				So(err, ShouldBeNil)
				So(history, ShouldHaveLength, 2)
				So(history[0].Date, ShouldEqual, "2024-06-21")
				So(history[1].Date, ShouldEqual, "2024-06-22")
			})

			Convey("And a later refresh prunes past the retention window", func() {
				clk.Advance(48 * time.Hour)
				_, err := svc.Refresh(ctx)
				So(err, ShouldBeNil)
				_, err = waitForSnapshot(svc, "alice", "2024-06-24")
				So(err, ShouldBeNil)

				history, err := svc.History(ctx, "alice", "", "")
				So(err, ShouldBeNil)
				So(history, ShouldHaveLength, 1)
				So(history[0].Date, ShouldEqual, "2024-06-24")
			})
		})
	})
}

func TestServiceLifecycle(t *testing.T) {
	Convey("Given a service", t, func() {
		svc, err := service.New(service.WithWorkerCount(1))
		So(err, ShouldBeNil)
		ctx := context.Background()

		Convey("When starting and stopping multiple times", func() {
			for range 3 {
				So(svc.Start(ctx), ShouldBeNil)
				So(svc.Start(ctx), ShouldBeNil)
				So(svc.Stop(ctx), ShouldBeNil)
			}

			Convey("Then it ends stopped and a second stop is harmless", func() {
				So(svc.GetStats()["started"], ShouldEqual, false)
				So(svc.Stop(ctx), ShouldBeNil)
			})
		})

		Convey("When the start context is cancelled", func() {
			startCtx, cancel := context.WithCancel(ctx)
			So(svc.Start(startCtx), ShouldBeNil)
			cancel()
			_, err := svc.RequestSnapshot(ctx, "carol", knownBirth)

			Convey("Then queued work still drains", func() {
				So(err, ShouldBeNil)
				_, err := waitForSnapshot(svc, "carol", "")
				So(err, ShouldBeNil)
				So(svc.Stop(ctx), ShouldBeNil)
			})
		})
	})

	Convey("Given a refresh schedule", t, func() {
		Convey("When the expression is invalid", func() {
			svc, err := service.New(service.WithRefreshSchedule("every day"))
			So(err, ShouldBeNil)
			err = svc.Start(context.Background())

			Convey("Then start fails", func() {
				So(err, ShouldNotBeNil)
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})

		Convey("When the expression is valid", func() {
			svc, err := service.New(service.WithRefreshSchedule("5 0 * * *"))
			So(err, ShouldBeNil)
			So(svc.Start(context.Background()), ShouldBeNil)
			defer func() { _ = svc.Stop(context.Background()) }()

			Convey("Then the next run is reported", func() {
				So(svc.GetStats()["nextRefresh"], ShouldEndWith, "T00:05:00Z")
			})
		})
	})
}

func TestServiceConcurrency(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc, err := service.New(service.WithWorkerCount(4), service.WithQueueSize(256))
		So(err, ShouldBeNil)
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		Convey("When many goroutines request snapshots for overlapping subjects", func() {
			const goroutines, perGoroutine = 8, 20
			var (
				wg         sync.WaitGroup
				mu         sync.Mutex
				queued     int
				duplicates int
				failures   int
			)
			for g := range goroutines {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for i := range perGoroutine {
						ack, err := svc.RequestSnapshot(ctx, fmt.Sprintf("subject-%d", (g*perGoroutine+i)%40), knownBirth)
						mu.Lock()
						switch {
						case err != nil:
							failures++
						case ack.Duplicate:
							duplicates++
						default:
							queued++
						}
						mu.Unlock()
					}
				}()
			}
			wg.Wait()

			Convey("Then each subject is queued exactly once", func() {
				So(failures, ShouldEqual, 0)
				So(queued, ShouldEqual, 40)
				So(duplicates, ShouldEqual, goroutines*perGoroutine-40)
				So(svc.GetStats()["subjects"], ShouldEqual, 40)
			})
		})
	})
}
