package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"finsmart/internal/metrics"
	"finsmart/internal/speech"
)

// SpeechState tracks the voice capture adapter.
type SpeechState string

const (
	SpeechOff       SpeechState = "off"
	SpeechListening SpeechState = "listening"
)

var (
	ErrSpeechUnavailable = errors.New("speech recognition is not available")
	ErrSpeechBusy        = errors.New("already listening")
)

// SpeechSession wraps the speech-to-text capability as an Off→Listening→Off
// state machine. Starting a capture clears any pending input text; a final
// transcript replaces it. If no transcriber is configured the voice
// affordance is unavailable — there is no fallback.
type SpeechSession struct {
	mu      sync.Mutex
	state   SpeechState
	pending string
	cancel  context.CancelFunc

	transcriber speech.Transcriber
}

func NewSpeechSession(transcriber speech.Transcriber) *SpeechSession {
	return &SpeechSession{state: SpeechOff, transcriber: transcriber}
}

// Available reports whether the platform capability exists.
func (s *SpeechSession) Available() bool {
	return s.transcriber != nil
}

func (s *SpeechSession) State() SpeechState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Input returns the pending input text (the last final transcript).
func (s *SpeechSession) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Capture runs one utterance to completion: Off→Listening, then back to Off
// when the transcript, an error, or end-of-audio arrives. The transcript
// replaces the pending input and is returned.
func (s *SpeechSession) Capture(ctx context.Context, audio io.Reader, filename string) (string, error) {
	if s.transcriber == nil {
		return "", ErrSpeechUnavailable
	}

	s.mu.Lock()
	if s.state == SpeechListening {
		s.mu.Unlock()
		return "", ErrSpeechBusy
	}
	s.pending = ""
	s.state = SpeechListening
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	transcript, err := s.transcriber.Transcribe(ctx, audio, filename)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = SpeechOff
	s.cancel = nil
	if err != nil {
		slog.ErrorContext(ctx, "Transcription failed", "error", err)
		metrics.TranscriptionsTotal.WithLabelValues("failed").Inc()
		return "", err
	}
	s.pending = transcript
	metrics.TranscriptionsTotal.WithLabelValues("success").Inc()
	return transcript, nil
}

// Stop requests an end to a listening session. If no transcript was
// finalized in time the session returns to Off without producing one.
func (s *SpeechSession) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == SpeechListening && s.cancel != nil {
		s.cancel()
	}
}
