package transition

import (
	"testing"
	"time"
)

func TestTransitionCompletesExactlyOnce(t *testing.T) {
	base := time.Unix(0, 0)
	var tr Transition
	var ticks []float64
	completions := 0

	tr.Start(base, 0, 32, 100*time.Millisecond, func(v float64) {
		ticks = append(ticks, v)
	}, func() {
		completions++
	})

	for _, ms := range []int{25, 50, 75, 100, 125, 150} {
		tr.Step(base.Add(time.Duration(ms) * time.Millisecond))
	}

	if completions != 1 {
		t.Fatalf("expected exactly one completion, got %d", completions)
	}
	if len(ticks) != 3 {
		t.Fatalf("expected 3 ticks before completion, got %v", ticks)
	}
	want := []float64{8, 16, 24}
	for i, v := range want {
		if ticks[i] != v {
			t.Fatalf("expected tick %d to be %v, got %v", i, v, ticks[i])
		}
	}
	if tr.InProgress() {
		t.Fatalf("expected transition to be idle after completion")
	}
	if tr.Value() != 32 {
		t.Fatalf("expected final value 32, got %v", tr.Value())
	}
}

func TestTransitionMonotonicClockSkips(t *testing.T) {
	base := time.Unix(100, 0)
	var tr Transition
	completions := 0
	tr.Start(base, 10, 0, 200*time.Millisecond, nil, func() { completions++ })

	tr.Step(base.Add(time.Second))
	tr.Step(base.Add(2 * time.Second))
	if completions != 1 {
		t.Fatalf("expected single completion on a long frame, got %d", completions)
	}
	if tr.Value() != 0 {
		t.Fatalf("expected value clamped to end, got %v", tr.Value())
	}
}

func TestTransitionRestartOverwrites(t *testing.T) {
	base := time.Unix(0, 0)
	var tr Transition
	first := 0
	second := 0
	tr.Start(base, 0, 10, 100*time.Millisecond, nil, func() { first++ })
	tr.Step(base.Add(50 * time.Millisecond))
	tr.Start(base.Add(50*time.Millisecond), 0, 20, 100*time.Millisecond, nil, func() { second++ })
	tr.Step(base.Add(200 * time.Millisecond))

	if first != 0 || second != 1 {
		t.Fatalf("expected only the second tween to complete, got first=%d second=%d", first, second)
	}
}

func TestTransitionCompletionMayRestart(t *testing.T) {
	base := time.Unix(0, 0)
	var tr Transition
	completions := 0
	var onComplete func()
	onComplete = func() {
		completions++
		if completions < 3 {
			tr.Start(base.Add(time.Duration(completions)*100*time.Millisecond), 0, 1, 100*time.Millisecond, nil, onComplete)
		}
	}
	tr.Start(base, 0, 1, 100*time.Millisecond, nil, onComplete)

	for ms := 100; ms <= 500; ms += 100 {
		tr.Step(base.Add(time.Duration(ms) * time.Millisecond))
	}
	if completions != 3 {
		t.Fatalf("expected 3 chained completions, got %d", completions)
	}
}

func TestTransitionStopSuppressesCompletion(t *testing.T) {
	base := time.Unix(0, 0)
	var tr Transition
	called := false
	tr.Start(base, 0, 1, time.Millisecond, nil, func() { called = true })
	tr.Stop()
	tr.Step(base.Add(time.Second))
	if called {
		t.Fatalf("expected stopped transition not to complete")
	}
}
