package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestFrequencyDuration(t *testing.T) {
	tests := []struct {
		frequency string
		want      time.Duration
	}{
		{"hourly", time.Hour},
		{"daily", 24 * time.Hour},
		{"weekly", 7 * 24 * time.Hour},
		{"monthly", 30 * 24 * time.Hour},
		{"fortnightly", 7 * 24 * time.Hour}, // unknown falls back to weekly
		{"", 7 * 24 * time.Hour},
	}
	for _, tt := range tests {
		if got := FrequencyDuration(tt.frequency); got != tt.want {
			t.Errorf("FrequencyDuration(%q) = %v, want %v", tt.frequency, got, tt.want)
		}
	}
}

func TestRunnerRunsImmediatelyAndStops(t *testing.T) {
	var runs atomic.Int32
	job := Job{
		Name:  "count",
		Every: time.Hour, // only the immediate run should fire
		Run: func(context.Context) error {
			runs.Add(1)
			return nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewRunner(job).Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for runs.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("job never ran")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop on context cancel")
	}

	if runs.Load() != 1 {
		t.Errorf("job ran %d times, want 1", runs.Load())
	}
}
