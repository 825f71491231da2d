package providers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kelvins/geocoder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/i474232898/weather-sync/internal/errors"
	"github.com/i474232898/weather-sync/internal/weather"
)

func TestGoogleResolveName(t *testing.T) {
	g := NewGoogleGeocoder("test-key")
	assert.Equal(t, "test-key", geocoder.ApiKey)

	g.reverse = func(loc geocoder.Location) ([]geocoder.Address, error) {
		assert.Equal(t, 41.9, loc.Latitude)
		return []geocoder.Address{{County: "Roma Capitale", FormattedAddress: "Via del Corso, Roma, Italy"}}, nil
	}
	assert.Equal(t, "Roma Capitale", g.ResolveName(context.Background(), weather.Coordinates{Latitude: 41.9, Longitude: 12.5}))

	g.reverse = func(geocoder.Location) ([]geocoder.Address, error) {
		return []geocoder.Address{{FormattedAddress: "Via del Corso, Roma, Italy"}}, nil
	}
	assert.Equal(t, "Via del Corso", g.ResolveName(context.Background(), weather.Coordinates{}))

	g.reverse = func(geocoder.Location) ([]geocoder.Address, error) { return nil, errors.New("REQUEST_DENIED") }
	assert.Equal(t, "", g.ResolveName(context.Background(), weather.Coordinates{}))
}

func TestGoogleResolveQuery(t *testing.T) {
	g := NewGoogleGeocoder("k")
	g.forward = func(addr geocoder.Address) (geocoder.Location, error) {
		assert.Equal(t, "Lisboa, Portugal", addr.City)
		return geocoder.Location{Latitude: 38.72, Longitude: -9.14}, nil
	}

	place, err := g.ResolveQuery(context.Background(), " Lisboa, Portugal ")
	require.NoError(t, err)
	assert.Equal(t, "Lisboa", place.Name)
	assert.Equal(t, weather.Coordinates{Latitude: 38.72, Longitude: -9.14}, place.Coordinates)
}

func TestGoogleResolveQueryErrors(t *testing.T) {
	g := NewGoogleGeocoder("k")

	_, err := g.ResolveQuery(context.Background(), " ")
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeInvalidInput))

	g.forward = func(geocoder.Address) (geocoder.Location, error) { return geocoder.Location{}, errors.New("ZERO_RESULTS") }
	_, err = g.ResolveQuery(context.Background(), "nowhere")
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeNotFound))

	g.forward = func(geocoder.Address) (geocoder.Location, error) { return geocoder.Location{}, errors.New("dial tcp: timeout") }
	_, err = g.ResolveQuery(context.Background(), "somewhere")
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeNetwork))
}

func TestGoogleResolveQueryHonoursContext(t *testing.T) {
	g := NewGoogleGeocoder("k")
	release := make(chan struct{})
	defer close(release)
	g.forward = func(geocoder.Address) (geocoder.Location, error) {
		<-release
		return geocoder.Location{}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := g.ResolveQuery(ctx, "slow")
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeNetwork))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
