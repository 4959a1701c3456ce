package client

import (
	"context"
	"runtime"
	"testing"
	"time"

	"fieldtrack-backend/internal/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticProvider(t *testing.T) {
	p := &StaticProvider{Point: geo.Point{Lat: 12.9716, Lng: 77.5946}}

	loc, err := p.CurrentLocation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12.9716, loc.Lat)
	assert.Equal(t, 77.5946, loc.Lng)
}

func TestStaticProvider_InvalidPoint(t *testing.T) {
	p := &StaticProvider{Point: geo.Point{Lat: 120, Lng: 0}}

	_, err := p.CurrentLocation(context.Background())
	assert.ErrorIs(t, err, ErrLocationUnavailable)
}

func TestCommandProvider(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test uses echo")
	}

	p := NewCommandProvider(`echo {"lat":12.9716,"lng":77.5946}`)

	loc, err := p.CurrentLocation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12.9716, loc.Lat)
	assert.Equal(t, 77.5946, loc.Lng)
}

func TestCommandProvider_BadOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test uses echo")
	}

	p := NewCommandProvider("echo not-json")

	_, err := p.CurrentLocation(context.Background())
	assert.ErrorIs(t, err, ErrLocationUnavailable)
}

func TestCommandProvider_Timeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test uses sleep")
	}

	p := &CommandProvider{Command: "sleep 5", Timeout: 100 * time.Millisecond}

	start := time.Now()
	_, err := p.CurrentLocation(context.Background())
	assert.ErrorIs(t, err, ErrLocationUnavailable)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestCommandProvider_NoCommand(t *testing.T) {
	p := NewCommandProvider("")

	_, err := p.CurrentLocation(context.Background())
	assert.ErrorIs(t, err, ErrLocationUnavailable)
}
