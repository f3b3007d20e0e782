package config_test

import (
	"context"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/haydennng/badminton-matchups/internal/config"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.PricingStrategy, convey.ShouldEqual, "fixed")
			convey.So(cfg.BaseValue, convey.ShouldEqual, 5.0)
			convey.So(cfg.PoolScope, convey.ShouldEqual, "session")
			convey.So(cfg.MaxRecentLimit, convey.ShouldEqual, 10)
			convey.So(cfg.MinutesPerGame, convey.ShouldEqual, 15)
		})
	})
}
