package config_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/okian/dojo/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.PickTimes, convey.ShouldResemble, []string{"09:00", "21:00"})
				convey.So(cfg.NotifyQueueSize, convey.ShouldEqual, 10_000)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("DOJO_ADDR", ":8080")
			_ = os.Setenv("DOJO_NOTIFY_QUEUE_SIZE", "500")
			_ = os.Setenv("DOJO_NOTIFY_WORKER_COUNT", "16")
			_ = os.Setenv("DOJO_SOLVED_PICK_COIN", "25")
			_ = os.Setenv("DOJO_PICK_TIMES", "08:30, 20:30")
			_ = os.Setenv("DOJO_TIME_ZONE", "UTC")
			_ = os.Setenv("DOJO_SHUTDOWN_TIMEOUT", "3s")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.NotifyQueueSize, convey.ShouldEqual, 500)
				convey.So(cfg.NotifyWorkerCount, convey.ShouldEqual, 16)
				convey.So(cfg.SolvedPickCoin, convey.ShouldEqual, 25)
				convey.So(cfg.PickTimes, convey.ShouldResemble, []string{"08:30", "20:30"})
				convey.So(cfg.TimeZone, convey.ShouldEqual, "UTC")
				convey.So(cfg.ShutdownTimeout, convey.ShouldEqual, 3*time.Second)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
# pick engine
addr: ":9090"
store_driver: memory
seed_file: seed.yaml
rank_size: 5
pick_times:
  - "12:00"
reveal_costs:
  GENDER: 30
profile_images:
  male: male.png
  female: female.png
  unknown: unknown.png
platform_images:
  WEB: web.png
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("DOJO_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.SeedFile, convey.ShouldEqual, "seed.yaml")
				convey.So(cfg.RankSize, convey.ShouldEqual, 5)
				convey.So(cfg.PickTimes, convey.ShouldResemble, []string{"12:00"})
				convey.So(cfg.RevealCosts["GENDER"], convey.ShouldEqual, 30)
				convey.So(cfg.ProfileImages.Female, convey.ShouldEqual, "female.png")
				convey.So(cfg.PlatformImages["WEB"], convey.ShouldEqual, "web.png")
			})

			convey.Convey("And env vars take precedence over the file", func() {
				_ = os.Setenv("DOJO_RANK_SIZE", "7")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.RankSize, convey.ShouldEqual, 7)
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("DOJO_CONFIG", "/nonexistent/dojo.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then loading fails", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the YAML file leaves addr empty", func() {
			tmpFile := createTempConfigFile("addr: \"\"\n")
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("DOJO_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When postgres is selected without a DSN", func() {
			_ = os.Setenv("DOJO_STORE_DRIVER", "postgres")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	for _, envVar := range []string{
		"DOJO_CONFIG",
		"DOJO_ADDR",
		"DOJO_NOTIFY_QUEUE_SIZE",
		"DOJO_NOTIFY_WORKER_COUNT",
		"DOJO_SOLVED_PICK_COIN",
		"DOJO_PICK_TIMES",
		"DOJO_TIME_ZONE",
		"DOJO_SHUTDOWN_TIMEOUT",
		"DOJO_RANK_SIZE",
		"DOJO_STORE_DRIVER",
	} {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "dojo-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
