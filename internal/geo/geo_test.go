package geo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	dErrors "trustgate/pkg/domain-errors"
)

type GeoSuite struct {
	suite.Suite
}

func TestGeoSuite(t *testing.T) {
	suite.Run(t, new(GeoSuite))
}

func (s *GeoSuite) TestDistance() {
	s.Run("zero distance for identical points", func() {
		p := Coordinates{Latitude: 40.7128, Longitude: -74.0060}
		d, err := Distance(p, p)
		s.Require().NoError(err)
		s.InDelta(0.0, d, 1e-9)
	})

	s.Run("known city pair within tolerance", func() {
		// NYC to Philadelphia, roughly 130 km
		nyc := Coordinates{Latitude: 40.7128, Longitude: -74.0060}
		phl := Coordinates{Latitude: 39.9526, Longitude: -75.1652}
		d, err := Distance(nyc, phl)
		s.Require().NoError(err)
		s.InDelta(130.0, d, 5.0)
	})

	s.Run("short urban distance", func() {
		// Two points ~2.5 km apart along a meridian (1 deg lat = 111.19 km)
		a := Coordinates{Latitude: 52.5200, Longitude: 13.4050}
		b := Coordinates{Latitude: 52.5200 + 2.5/111.19, Longitude: 13.4050}
		d, err := Distance(a, b)
		s.Require().NoError(err)
		s.InDelta(2.5, d, 0.01)
	})

	s.Run("rejects out-of-range latitude", func() {
		_, err := Distance(Coordinates{Latitude: 91, Longitude: 0}, Coordinates{})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejects out-of-range longitude", func() {
		_, err := Distance(Coordinates{}, Coordinates{Latitude: 0, Longitude: -180.5})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *GeoSuite) TestCheckInWindow() {
	start := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)

	s.Run("open boundary is inclusive", func() {
		s.True(InCheckInWindow(start, start.Add(-30*time.Minute)))
	})

	s.Run("close boundary is inclusive", func() {
		s.True(InCheckInWindow(start, start.Add(2*time.Hour)))
	})

	s.Run("rejects one second before open", func() {
		s.False(InCheckInWindow(start, start.Add(-30*time.Minute-time.Second)))
	})

	s.Run("rejects one second after close", func() {
		s.False(InCheckInWindow(start, start.Add(2*time.Hour+time.Second)))
	})

	s.Run("accepts event start itself", func() {
		s.True(InCheckInWindow(start, start))
	})
}
