package effects

import (
	"errors"
	"math"
	"testing"
)

func TestScheduleFrameCount(t *testing.T) {
	tests := []struct {
		duration float64
		fps      int
		want     int
	}{
		{5.0, 10, 50},
		{2.0, 30, 60},
		{1.0, 1, 1},
		{3.333, 3, 10},
		{0.25, 10, 3},
		{0.04, 10, 1}, // rounds to zero frames, clamped to one
	}

	for _, tt := range tests {
		ts, err := Schedule(tt.duration, tt.fps)
		if err != nil {
			t.Fatalf("Schedule(%.3f, %d): unexpected error: %v", tt.duration, tt.fps, err)
		}
		if len(ts) != tt.want {
			t.Errorf("Schedule(%.3f, %d): expected %d samples, got %d", tt.duration, tt.fps, tt.want, len(ts))
		}
	}
}

func TestScheduleEndpointsAndSpacing(t *testing.T) {
	ts, err := Schedule(2.0, 25)
	if err != nil {
		t.Fatal(err)
	}
	if len(ts) != 50 {
		t.Fatalf("expected 50 samples, got %d", len(ts))
	}
	if ts[0] != 0.0 {
		t.Errorf("first sample should be 0.0, got %f", ts[0])
	}
	if ts[len(ts)-1] != 1.0 {
		t.Errorf("last sample should be exactly 1.0, got %f", ts[len(ts)-1])
	}

	step := 1.0 / float64(len(ts)-1)
	for i := 1; i < len(ts); i++ {
		if ts[i] <= ts[i-1] {
			t.Fatalf("samples not increasing at %d: %f -> %f", i, ts[i-1], ts[i])
		}
		if math.Abs(ts[i]-ts[i-1]-step) > 0.0001 {
			t.Errorf("uneven spacing at %d: %f", i, ts[i]-ts[i-1])
		}
	}
}

func TestScheduleSingleFrame(t *testing.T) {
	ts, err := Schedule(0.05, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(ts) != 1 || ts[0] != 0.0 {
		t.Errorf("expected single sample at 0.0, got %v", ts)
	}
}

func TestScheduleInvalidParameters(t *testing.T) {
	tests := []struct {
		duration float64
		fps      int
	}{
		{0, 10},
		{-1.5, 10},
		{5.0, 0},
		{5.0, -2},
	}

	for _, tt := range tests {
		_, err := Schedule(tt.duration, tt.fps)
		if !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("Schedule(%.3f, %d): expected ErrInvalidParameter, got %v", tt.duration, tt.fps, err)
		}
	}
}
