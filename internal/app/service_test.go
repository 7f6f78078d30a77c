package service_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	service "github.com/okian/pulse/internal/app"
	"github.com/okian/pulse/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func newStartedService(t *testing.T, opts ...service.Option) *service.Service {
	t.Helper()
	opts = append([]service.Option{service.WithDataDir(t.TempDir())}, opts...)
	svc := service.New(opts...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func csvLine(ts time.Time) string {
	return fmt.Sprintf("%s,%s,1.0,1.1,50.0,13.0",
		ts.Format("2006-01-02"), ts.Format("15:04:05"))
}

func TestService_StartCreatesEmptyLog(t *testing.T) {
	Convey("Given a fresh data directory", t, func() {
		dir := t.TempDir()
		svc := service.New(service.WithDataDir(dir), service.WithDataFile("readings.csv"))

		Convey("When the service starts", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			defer svc.Stop()

			Convey("Then the log file exists and is empty", func() {
				info, err := os.Stat(filepath.Join(dir, "readings.csv"))
				So(err, ShouldBeNil)
				So(info.Size(), ShouldEqual, 0)
			})

			Convey("And starting twice is a no-op", func() {
				So(svc.Start(context.Background()), ShouldBeNil)
			})
		})
	})
}

func TestService_IngestAppendsThenPublishes(t *testing.T) {
	Convey("Given a started service with one subscriber", t, func() {
		svc := newStartedService(t)
		ctx := context.Background()
		sub := svc.Subscribe(ctx)
		defer svc.Unsubscribe(ctx, sub)

		Convey("When a valid line is ingested", func() {
			line := "2025-01-02,10:00:00,1.0,1.1,50.0,13.0"
			So(svc.Ingest(ctx, line+"\r\n"), ShouldBeNil)

			Convey("Then the normalized line is durable", func() {
				var sb strings.Builder
				_, err := svc.WriteLog(&sb)
				So(err, ShouldBeNil)
				So(sb.String(), ShouldEqual, line+"\n")
			})

			Convey("And the subscriber observes it", func() {
				select {
				case got := <-sub.C():
					So(got, ShouldEqual, line)
				case <-time.After(time.Second):
					So("timeout", ShouldBeEmpty)
				}
			})
		})

		Convey("When lines are ingested in sequence they stay ordered", func() {
			So(svc.Ingest(ctx, "a,b,c,d,e,f"), ShouldBeNil)
			So(svc.Ingest(ctx, "g,h,i,j,k,l"), ShouldBeNil)

			var sb strings.Builder
			_, err := svc.WriteLog(&sb)
			So(err, ShouldBeNil)
			So(sb.String(), ShouldEqual, "a,b,c,d,e,f\ng,h,i,j,k,l\n")
		})
	})
}

func TestService_IngestBlankIsNoOp(t *testing.T) {
	Convey("Given a started service with one subscriber", t, func() {
		svc := newStartedService(t)
		ctx := context.Background()
		sub := svc.Subscribe(ctx)
		defer svc.Unsubscribe(ctx, sub)

		Convey("When blank payloads are ingested", func() {
			for _, in := range []string{"", "\n", "   \n", "\r\n"} {
				So(svc.Ingest(ctx, in), ShouldBeNil)
			}

			Convey("Then the log stays empty", func() {
				var sb strings.Builder
				_, err := svc.WriteLog(&sb)
				So(err, ShouldBeNil)
				So(sb.String(), ShouldBeEmpty)
			})

			Convey("And nothing is published", func() {
				select {
				case got := <-sub.C():
					So(got, ShouldBeEmpty) // fails with the leaked line
				default:
				}
			})
		})
	})
}

func TestService_History(t *testing.T) {
	Convey("Given a service with old, fresh and malformed lines", t, func() {
		svc := newStartedService(t)
		ctx := context.Background()

		now := time.Now().UTC()
		fresh := csvLine(now.Add(-2 * time.Hour))
		stale := csvLine(now.Add(-72 * time.Hour))
		unparseable := "bogus-date,nope,1.0,1.1,50.0,13.0"
		short := "only,three,fields"

		for _, line := range []string{stale, fresh, unparseable, short} {
			So(svc.Ingest(ctx, line), ShouldBeNil)
		}

		Convey("When querying the last day", func() {
			got := svc.History(ctx, 1)

			Convey("Then fresh and unparseable lines are included, in append order", func() {
				So(got, ShouldResemble, []string{fresh, unparseable})
			})
		})

		Convey("When querying a wide window everything valid is returned", func() {
			got := svc.History(ctx, 30)
			So(got, ShouldResemble, []string{stale, fresh, unparseable})
		})

		Convey("Window zero behaves like window one", func() {
			So(svc.History(ctx, 0), ShouldResemble, svc.History(ctx, 1))
		})

		Convey("Negative windows clamp too", func() {
			So(svc.History(ctx, -3), ShouldResemble, svc.History(ctx, 1))
		})
	})
}

func TestService_HistoryEmptyLog(t *testing.T) {
	Convey("Given a service that never ingested", t, func() {
		svc := newStartedService(t)

		Convey("Then history fails open to an empty result", func() {
			So(svc.History(context.Background(), 7), ShouldBeEmpty)
		})
	})
}

func TestService_SubscriberVisibilityWindow(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newStartedService(t)
		ctx := context.Background()

		Convey("A subscriber registered after ingest never observes the line", func() {
			So(svc.Ingest(ctx, "early,a,b,c,d,e"), ShouldBeNil)
			sub := svc.Subscribe(ctx)
			defer svc.Unsubscribe(ctx, sub)

			select {
			case got := <-sub.C():
				So(got, ShouldBeEmpty) // fails with the leaked line
			default:
			}
		})

		Convey("Two subscribers each get exactly one delivery", func() {
			a := svc.Subscribe(ctx)
			b := svc.Subscribe(ctx)
			defer svc.Unsubscribe(ctx, a)
			defer svc.Unsubscribe(ctx, b)

			So(svc.Ingest(ctx, "x,y,z,1,2,3"), ShouldBeNil)

			for _, sub := range []interface{ C() <-chan string }{a, b} {
				select {
				case got := <-sub.C():
					So(got, ShouldEqual, "x,y,z,1,2,3")
				case <-time.After(time.Second):
					So("timeout", ShouldBeEmpty)
				}
				select {
				case extra := <-sub.C():
					So(extra, ShouldBeEmpty) // fails with the duplicate
				default:
				}
			}
		})
	})
}

func TestService_Stats(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newStartedService(t)
		ctx := context.Background()

		sub := svc.Subscribe(ctx)
		defer svc.Unsubscribe(ctx, sub)
		So(svc.Ingest(ctx, "a,b,c,d,e,f"), ShouldBeNil)

		Convey("Then stats reflect the log and subscriber set", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldBeTrue)
			So(stats["subscribers"], ShouldEqual, 1)
			So(stats["logSizeBytes"], ShouldEqual, int64(len("a,b,c,d,e,f\n")))
		})
	})
}

func TestService_DefaultWindowDays(t *testing.T) {
	Convey("Given configured services", t, func() {
		So(service.New().DefaultWindowDays(), ShouldEqual, 7)
		So(service.New(service.WithDefaultWindowDays(14)).DefaultWindowDays(), ShouldEqual, 14)
	})
}
