package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a private registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When a manager is created with custom options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then its collectors live under the configured namespace", func() {
				So(m, ShouldNotBeNil)
				m.picksCreated.WithLabelValues("pick").Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := map[string]bool{}
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["test_unit_picks_created_total"], ShouldBeTrue)
			})
		})

		Convey("When empty options are passed", func() {
			m := NewManager(WithNamespace(""), WithSubsystem(""), WithHistogramBuckets(nil), WithPrometheusRegistry(registry))

			Convey("Then the defaults remain", func() {
				So(m.namespace, ShouldEqual, "dojo")
				So(m.subsystem, ShouldEqual, "pick")
				So(m.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When picks are recorded", func() {
			before := testutil.ToFloat64(globalManager.picksCreated.WithLabelValues("skip"))
			RecordPickCreated(true)

			Convey("Then the skip label is incremented", func() {
				So(testutil.ToFloat64(globalManager.picksCreated.WithLabelValues("skip")), ShouldEqual, before+1)
			})
		})

		Convey("When coins move", func() {
			earned := testutil.ToFloat64(globalManager.coinsEarned)
			spent := testutil.ToFloat64(globalManager.coinsSpent)
			RecordCoinsEarned(10)
			RecordCoinsEarned(-5)
			RecordCoinsSpent(50)

			Convey("Then only positive amounts are counted", func() {
				So(testutil.ToFloat64(globalManager.coinsEarned), ShouldEqual, earned+10)
				So(testutil.ToFloat64(globalManager.coinsSpent), ShouldEqual, spent+50)
			})
		})

		Convey("When the notify gauges are updated", func() {
			UpdateNotifyQueueSize(7)
			UpdateNotifyWorkers(3)

			Convey("Then they reflect the last value", func() {
				So(testutil.ToFloat64(globalManager.notifyQueueSize), ShouldEqual, 7)
				So(testutil.ToFloat64(globalManager.notifyWorkers), ShouldEqual, 3)
			})
		})

		Convey("When the other recorders are called", func() {
			So(func() {
				RecordItemOpened("GENDER")
				RecordOpenFailure("insufficient_funds")
				RecordRankingBuilt("received")
				RecordNotificationDispatched()
				RecordNotificationFailed()
				RecordNotificationDropped()
				RecordHTTPRequest("/picks", "POST", "201")
				RecordHTTPRequestDuration("/picks", "POST", "201", 3.2)
			}, ShouldNotPanic)
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}

func TestSystemGauges(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When system stats are updated", func() {
			UpdateSystemMemoryUsage(2048)
			UpdateSystemGoroutineCount(12)
			RecordSystemGCPauseTime(0.5)

			Convey("Then the gauges hold the latest values", func() {
				So(testutil.ToFloat64(globalManager.memoryUsage), ShouldEqual, 2048)
				So(testutil.ToFloat64(globalManager.goroutineCount), ShouldEqual, 12)
				So(testutil.ToFloat64(globalManager.gcPauseTime), ShouldEqual, 0.5)
			})
		})
	})
}
