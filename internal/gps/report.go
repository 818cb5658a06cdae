package gps

import (
	"errors"
	"fmt"
	"time"

	"github.com/wellquest/questmap/internal/geo"
	"github.com/wellquest/questmap/internal/wellquest"
)

var ErrUnknownReport = errors.New("unknown position error code")

// Report is what a device sends over HTTP or WebSocket: a fix, or an error
// code when the platform could not produce one.
type Report struct {
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	Accuracy  float64    `json:"accuracy,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Error     string     `json:"error,omitempty" enum:"permission_denied,timeout,signal_lost,unavailable"`
}

var reportErrors = map[string]error{
	"permission_denied": ErrPermissionDenied,
	"timeout":           ErrTimeout,
	"signal_lost":       ErrSignalLost,
	"unavailable":       ErrUnavailable,
}

// Apply pushes r into f. Fixes without a timestamp are stamped with now.
func (r Report) Apply(f *Feed, now time.Time) error {
	if r.Error != "" {
		err, ok := reportErrors[r.Error]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownReport, r.Error)
		}
		f.Fail(err)
		return nil
	}

	pos := wellquest.Position{
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Accuracy:  r.Accuracy,
		Timestamp: now,
	}
	if err := geo.Validate(pos.Point()); err != nil {
		return err
	}
	if r.Accuracy < 0 {
		return fmt.Errorf("%w: negative accuracy", geo.ErrInvalidCoordinates)
	}
	if r.Timestamp != nil {
		pos.Timestamp = *r.Timestamp
	}
	f.Push(pos)
	return nil
}
