package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

type fakeTranscriber struct {
	transcript string
	err        error
	block      chan struct{}
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.transcript, f.err
}

func TestSpeechUnavailableWithoutTranscriber(t *testing.T) {
	s := NewSpeechSession(nil)
	if s.Available() {
		t.Error("session without a transcriber must report unavailable")
	}
	_, err := s.Capture(context.Background(), strings.NewReader("audio"), "a.ogg")
	if err != ErrSpeechUnavailable {
		t.Errorf("Capture error = %v, want ErrSpeechUnavailable", err)
	}
}

func TestSpeechCaptureSetsPendingInput(t *testing.T) {
	s := NewSpeechSession(&fakeTranscriber{transcript: "такси пятьсот рублей"})
	if !s.Available() {
		t.Fatal("session must be available")
	}

	got, err := s.Capture(context.Background(), strings.NewReader("audio"), "a.ogg")
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if got != "такси пятьсот рублей" {
		t.Errorf("transcript = %q", got)
	}
	if s.Input() != got {
		t.Errorf("Input() = %q, want the final transcript", s.Input())
	}
	if s.State() != SpeechOff {
		t.Errorf("state = %s, want off after completion", s.State())
	}
}

func TestSpeechCaptureClearsPreviousInput(t *testing.T) {
	ft := &fakeTranscriber{transcript: "первая запись"}
	s := NewSpeechSession(ft)
	if _, err := s.Capture(context.Background(), strings.NewReader("a"), "a.ogg"); err != nil {
		t.Fatal(err)
	}

	ft.transcript = ""
	ft.err = errors.New("no speech detected")
	if _, err := s.Capture(context.Background(), strings.NewReader("b"), "b.ogg"); err == nil {
		t.Fatal("want transcription error")
	}
	if s.Input() != "" {
		t.Errorf("Input() = %q, want cleared on a failed capture", s.Input())
	}
	if s.State() != SpeechOff {
		t.Errorf("state = %s, want off after error", s.State())
	}
}

func TestSpeechBusyGuard(t *testing.T) {
	ft := &fakeTranscriber{transcript: "готово", block: make(chan struct{})}
	s := NewSpeechSession(ft)

	done := make(chan error, 1)
	go func() {
		_, err := s.Capture(context.Background(), strings.NewReader("a"), "a.ogg")
		done <- err
	}()

	deadline := time.After(2 * time.Second)
	for s.State() != SpeechListening {
		select {
		case <-deadline:
			t.Fatal("capture never started listening")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	if _, err := s.Capture(context.Background(), strings.NewReader("b"), "b.ogg"); err != ErrSpeechBusy {
		t.Errorf("concurrent Capture error = %v, want ErrSpeechBusy", err)
	}

	close(ft.block)
	if err := <-done; err != nil {
		t.Errorf("first capture failed: %v", err)
	}
}

func TestSpeechStopCancelsListening(t *testing.T) {
	ft := &fakeTranscriber{transcript: "никогда", block: make(chan struct{})}
	s := NewSpeechSession(ft)

	done := make(chan error, 1)
	go func() {
		_, err := s.Capture(context.Background(), strings.NewReader("a"), "a.ogg")
		done <- err
	}()

	deadline := time.After(2 * time.Second)
	for s.State() != SpeechListening {
		select {
		case <-deadline:
			t.Fatal("capture never started listening")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	s.Stop()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("stopped capture error = %v, want context.Canceled", err)
	}
	if s.State() != SpeechOff {
		t.Errorf("state = %s, want off after stop", s.State())
	}
	if s.Input() != "" {
		t.Errorf("Input() = %q, want no transcript after a stopped capture", s.Input())
	}
}
