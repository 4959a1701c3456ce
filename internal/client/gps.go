package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"fieldtrack-backend/internal/geo"
)

// ErrLocationUnavailable is returned when no GPS fix could be obtained
// within the timeout.
var ErrLocationUnavailable = errors.New("location unavailable")

// DefaultGPSTimeout bounds how long a location request may take.
const DefaultGPSTimeout = 10 * time.Second

// LocationProvider produces the device's current GPS fix.
type LocationProvider interface {
	CurrentLocation(ctx context.Context) (geo.Point, error)
}

// CommandProvider shells out to an external tool (gpspipe, termux-location,
// a test script) that prints a JSON object with "lat" and "lng" fields.
type CommandProvider struct {
	Command string
	Timeout time.Duration
}

func NewCommandProvider(command string) *CommandProvider {
	return &CommandProvider{Command: command, Timeout: DefaultGPSTimeout}
}

func (p *CommandProvider) CurrentLocation(ctx context.Context) (geo.Point, error) {
	timeout := p.Timeout
	if timeout == 0 {
		timeout = DefaultGPSTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	parts := strings.Fields(p.Command)
	if len(parts) == 0 {
		return geo.Point{}, fmt.Errorf("%w: no gps command configured", ErrLocationUnavailable)
	}

	out, err := exec.CommandContext(ctx, parts[0], parts[1:]...).Output()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return geo.Point{}, fmt.Errorf("%w: timed out after %s", ErrLocationUnavailable, timeout)
	}
	if err != nil {
		return geo.Point{}, fmt.Errorf("%w: %v", ErrLocationUnavailable, err)
	}

	var point geo.Point
	if err := json.Unmarshal(out, &point); err != nil {
		return geo.Point{}, fmt.Errorf("%w: bad gps output: %v", ErrLocationUnavailable, err)
	}
	if err := point.Validate(); err != nil {
		return geo.Point{}, fmt.Errorf("%w: %v", ErrLocationUnavailable, err)
	}
	return point, nil
}

// UnconfiguredProvider always fails, directing the officer to pass
// coordinates explicitly.
type UnconfiguredProvider struct{}

func (UnconfiguredProvider) CurrentLocation(_ context.Context) (geo.Point, error) {
	return geo.Point{}, fmt.Errorf("%w: no gps command configured, pass --lat and --lng", ErrLocationUnavailable)
}

// StaticProvider returns a fixed location. Useful for tests and for
// officers entering coordinates by hand.
type StaticProvider struct {
	Point geo.Point
}

func (p *StaticProvider) CurrentLocation(_ context.Context) (geo.Point, error) {
	if err := p.Point.Validate(); err != nil {
		return geo.Point{}, fmt.Errorf("%w: %v", ErrLocationUnavailable, err)
	}
	return p.Point, nil
}
