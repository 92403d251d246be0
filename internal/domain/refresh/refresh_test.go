package refresh_test

import (
	"testing"

	"pubcompass/internal/domain/geo"
	"pubcompass/internal/domain/refresh"

	"github.com/smartystreets/goconvey/convey"
)

// offsetMeters shifts a coordinate north by roughly the given distance.
func offsetMeters(c geo.Coordinate, meters float64) geo.Coordinate {
	return geo.Coordinate{Lat: c.Lat + meters/111320.0, Lon: c.Lon}
}

func TestShouldRefresh(t *testing.T) {
	convey.Convey("Given the default refresh policy", t, func() {
		policy := refresh.NewPolicy()
		here := geo.Coordinate{Lat: 51.5007, Lon: -0.1246}

		convey.Convey("When there is no previous fix", func() {
			convey.So(policy.ShouldRefresh(nil, here), convey.ShouldBeTrue)
		})

		convey.Convey("When the position has not moved at all", func() {
			convey.So(policy.ShouldRefresh(&here, here), convey.ShouldBeFalse)
		})

		convey.Convey("When the user moved about 100 meters", func() {
			convey.So(policy.ShouldRefresh(&here, offsetMeters(here, 100)), convey.ShouldBeFalse)
		})

		convey.Convey("When the user moved about 300 meters", func() {
			convey.So(policy.ShouldRefresh(&here, offsetMeters(here, 300)), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a policy with a custom threshold", t, func() {
		policy := refresh.NewPolicy(refresh.WithThresholdMeters(50))
		here := geo.Coordinate{Lat: 48.8566, Lon: 2.3522}

		convey.Convey("When the user moved about 100 meters", func() {
			convey.So(policy.ShouldRefresh(&here, offsetMeters(here, 100)), convey.ShouldBeTrue)
		})
	})
}
