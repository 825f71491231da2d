package geo

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	apperrors "github.com/i474232898/weather-sync/internal/errors"
	"github.com/i474232898/weather-sync/internal/logging"
	"github.com/i474232898/weather-sync/internal/weather"
)

// Source tells where a resolved location came from.
type Source string

const (
	SourceDevice   Source = "device"
	SourceFallback Source = "fallback"
)

// DefaultPositionOptions requests a high accuracy fix with a bounded wait.
var DefaultPositionOptions = weather.PositionOptions{
	HighAccuracy: true,
	Timeout:      5 * time.Second,
}

// Resolution is the outcome of AcquireInitialLocation. Name is empty for
// device positions so that the place name is reverse-geocoded downstream.
type Resolution struct {
	Coordinates weather.Coordinates
	Name        string
	Source      Source
}

// Resolver races device geolocation against a fallback timer.
type Resolver struct {
	locator weather.Locator
	opts    weather.PositionOptions
	log     *logrus.Entry
}

// NewResolver creates a Resolver. A nil locator means the platform has no
// geolocation capability.
func NewResolver(locator weather.Locator, opts weather.PositionOptions) *Resolver {
	return &Resolver{
		locator: locator,
		opts:    opts,
		log:     logging.NewLogger("geo"),
	}
}

// race settles exactly once; later signals are inert.
type race struct {
	settled atomic.Bool
	done    chan Resolution
}

func newRace() *race {
	return &race{done: make(chan Resolution, 1)}
}

func (r *race) settle(res Resolution) bool {
	if !r.settled.CompareAndSwap(false, true) {
		return false
	}
	r.done <- res
	return true
}

// AcquireInitialLocation resolves exactly once: device coordinates if the
// device answers first, the fallback on device failure, timeout, missing
// capability, or cancellation of ctx.
func (g *Resolver) AcquireInitialLocation(ctx context.Context, fallback weather.Coordinates, fallbackName string, timeout time.Duration) Resolution {
	fallbackRes := Resolution{Coordinates: fallback, Name: fallbackName, Source: SourceFallback}

	if g.locator == nil {
		g.log.Info("no geolocation capability; using fallback location")
		return fallbackRes
	}

	r := newRace()

	timer := time.AfterFunc(timeout, func() {
		if r.settle(fallbackRes) {
			g.log.WithField("timeout", timeout).Info("geolocation timed out; using fallback location")
		}
	})

	go func() {
		coords, err := g.locator.CurrentPosition(ctx, g.opts)
		if err != nil {
			if r.settle(fallbackRes) {
				timer.Stop()
				g.log.WithError(err).Info("geolocation failed; using fallback location")
			}
			return
		}
		if r.settle(Resolution{Coordinates: coords, Source: SourceDevice}) {
			timer.Stop()
			g.log.WithFields(logrus.Fields{"lat": coords.Latitude, "lon": coords.Longitude}).Info("device location acquired")
			return
		}
		g.log.Debug("late device position ignored")
	}()

	select {
	case res := <-r.done:
		return res
	case <-ctx.Done():
		if r.settle(fallbackRes) {
			timer.Stop()
		}
		return <-r.done
	}
}

// Locate performs the interactive "locate me" request. It has no fallback:
// it returns the device position or a capability, permission or device error.
func (g *Resolver) Locate(ctx context.Context) (weather.Coordinates, error) {
	if g.locator == nil {
		return weather.Coordinates{}, apperrors.NoCapability()
	}

	coords, err := g.locator.CurrentPosition(ctx, g.opts)
	if err != nil {
		if apperrors.GetCode(err) != "" {
			return weather.Coordinates{}, err
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return weather.Coordinates{}, err
		}
		return weather.Coordinates{}, apperrors.Wrap(err, apperrors.ErrCodeNetwork, "device location unavailable")
	}
	return coords, nil
}
