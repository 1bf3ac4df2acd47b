package tts

import (
	"context"
	"errors"
	"testing"
	"time"
)

type scriptedSynth struct {
	errs  []error
	calls int
}

func (s *scriptedSynth) Synthesize(context.Context, Request, string) error {
	s.calls++
	if len(s.errs) == 0 {
		return nil
	}
	err := s.errs[0]
	s.errs = s.errs[1:]
	return err
}

func TestRetrySucceedsAfterCooldown(t *testing.T) {
	synth := &scriptedSynth{errs: []error{errors.New("503")}}
	var slept []time.Duration
	r := NewRetry(synth, 2, 180*time.Second, WithSleeper(func(d time.Duration) { slept = append(slept, d) }))
	if err := r.Synthesize(context.Background(), Request{Text: "hi"}, "out.wav"); err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if synth.calls != 2 {
		t.Fatalf("expected two attempts, got %d", synth.calls)
	}
	if len(slept) != 1 || slept[0] != 180*time.Second {
		t.Fatalf("unexpected cooldowns: %v", slept)
	}
}

func TestRetryExhaustion(t *testing.T) {
	boom := errors.New("server error")
	synth := &scriptedSynth{errs: []error{boom, boom, boom}}
	var slept int
	r := NewRetry(synth, 3, time.Minute, WithSleeper(func(time.Duration) { slept++ }))
	err := r.Synthesize(context.Background(), Request{}, "out.wav")
	if !errors.Is(err, ErrRetriesExhausted) || !errors.Is(err, boom) {
		t.Fatalf("expected exhausted error wrapping cause, got %v", err)
	}
	if synth.calls != 3 || slept != 2 {
		t.Fatalf("unexpected calls=%d sleeps=%d", synth.calls, slept)
	}
}

func TestRetryQuotaFailsImmediately(t *testing.T) {
	synth := &scriptedSynth{errs: []error{ErrQuotaExhausted}}
	r := NewRetry(synth, 5, time.Minute, WithSleeper(func(time.Duration) {
		t.Fatal("quota exhaustion must not cool down")
	}))
	err := r.Synthesize(context.Background(), Request{}, "out.wav")
	if !errors.Is(err, ErrQuotaExhausted) || errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("expected bare quota error, got %v", err)
	}
	if synth.calls != 1 {
		t.Fatalf("expected one attempt, got %d", synth.calls)
	}
}

func TestRetryStopsOnCancelledCooldown(t *testing.T) {
	synth := &scriptedSynth{errs: []error{errors.New("flaky"), errors.New("flaky")}}
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRetry(synth, 2, time.Hour, WithSleeper(func(time.Duration) { cancel() }))
	if err := r.Synthesize(ctx, Request{}, "out.wav"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
	if synth.calls != 1 {
		t.Fatalf("expected no attempt after cancellation, got %d", synth.calls)
	}
}

func TestNewRetryClampsAttempts(t *testing.T) {
	synth := &scriptedSynth{errs: []error{errors.New("x")}}
	r := NewRetry(synth, 0, 0)
	if err := r.Synthesize(context.Background(), Request{}, "out.wav"); !errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("expected exhaustion after one attempt, got %v", err)
	}
	if synth.calls != 1 {
		t.Fatalf("expected one attempt, got %d", synth.calls)
	}
}
