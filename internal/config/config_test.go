package config_test

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/okian/dojo/internal/config"
	"github.com/okian/dojo/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.StoreDriver, convey.ShouldEqual, config.StoreMemory)
			convey.So(cfg.NotifyWorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.SolvedPickCoin, convey.ShouldEqual, 10)
			convey.So(cfg.InitialCoin, convey.ShouldEqual, 200)
			convey.So(cfg.RankSize, convey.ShouldEqual, 3)
			convey.So(cfg.TimeZone, convey.ShouldEqual, "Asia/Seoul")
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a valid config", t, func() {
		cfg := config.New()

		convey.Convey("When the store driver is unknown", func() {
			cfg.StoreDriver = "redis"
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(errors.Is(err, config.ErrUnknownStoreDriver), convey.ShouldBeTrue)
		})

		convey.Convey("When postgres has no DSN", func() {
			cfg.StoreDriver = config.StorePostgres
			convey.So(errors.Is(cfg.Validate(), config.ErrMissingDSN), convey.ShouldBeTrue)

			cfg.PostgresDSN = "postgres://localhost/dojo"
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("When a pick time is malformed", func() {
			cfg.PickTimes = []string{"25:00"}
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(errors.Is(err, config.ErrInvalidSchedule), convey.ShouldBeTrue)
		})

		convey.Convey("When the time zone is unknown", func() {
			cfg.TimeZone = "Mars/Olympus"
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidSchedule), convey.ShouldBeTrue)
		})

		convey.Convey("When the rank size is zero", func() {
			cfg.RankSize = 0
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When reveal costs are set", func() {
			cfg.RevealCosts = map[string]int64{"gender": 30, "FULL_NAME": 150}
			costs, err := cfg.Costs()

			convey.Convey("Then item names are parsed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(costs[model.RevealGender], convey.ShouldEqual, 30)
				convey.So(costs[model.RevealFullName], convey.ShouldEqual, 150)
			})

			convey.Convey("Then unknown items and negative costs are rejected", func() {
				cfg.RevealCosts = map[string]int64{"height": 10}
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
				cfg.RevealCosts = map[string]int64{"GENDER": -1}
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When resolving the schedule", func() {
			loc, err := cfg.Location()
			convey.So(err, convey.ShouldBeNil)
			times, err := cfg.Times()
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then both windows are parsed in the configured zone", func() {
				convey.So(loc.String(), convey.ShouldEqual, "Asia/Seoul")
				convey.So(times, convey.ShouldHaveLength, 2)
				convey.So(times[1].String(), convey.ShouldEqual, "21:00")
			})
		})

		convey.Convey("When platform images are set", func() {
			cfg.PlatformImages = map[string]string{"ios": "ios.png", "cobol": "x.png"}
			platforms := cfg.Platforms()
			convey.So(platforms[model.PlatformIOS], convey.ShouldEqual, "ios.png")
			convey.So(platforms[model.PlatformUnknown], convey.ShouldEqual, "x.png")
		})

		convey.Convey("Then the shutdown timeout has a default", func() {
			convey.So(cfg.ShutdownTimeout, convey.ShouldEqual, 10*time.Second)
		})
	})
}
