package tts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/voicenews/internal/models"
	"github.com/nikhilbhutani/voicenews/internal/storage"
)

var (
	ErrNoContent = errors.New("no content to convert")
	ErrSynthesis = errors.New("speech synthesis failed")
)

type SynthesizerConfig struct {
	PublicBaseURL string // audio_url prefix, e.g. "http://127.0.0.1:8000"
	Voice         string
	Timeout       time.Duration
}

// Synthesizer turns text into a stored, uniquely named audio file.
type Synthesizer struct {
	provider Provider
	store    storage.Storage
	cfg      SynthesizerConfig
}

func NewSynthesizer(p Provider, store storage.Storage, cfg SynthesizerConfig) *Synthesizer {
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	return &Synthesizer{provider: p, store: store, cfg: cfg}
}

func (s *Synthesizer) Backend() string { return s.provider.Name() }

// AudioURL is the public retrieval URL for a stored file.
func (s *Synthesizer) AudioURL(filename string) string {
	return s.cfg.PublicBaseURL + "/audio/" + filename
}

// Synthesize speaks text in language and stores the result. Blank text is
// rejected with ErrNoContent before the provider is called.
func (s *Synthesizer) Synthesize(ctx context.Context, text, language string) (*models.AudioArtifact, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoContent
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	result, err := s.provider.Synthesize(ctx, SynthesisRequest{
		Input:    text,
		Language: language,
		Voice:    s.cfg.Voice,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSynthesis, s.provider.Name(), err)
	}
	if len(result.Audio) == 0 {
		return nil, fmt.Errorf("%w: %s returned no audio", ErrSynthesis, s.provider.Name())
	}

	filename := uuid.NewString() + ExtensionFor(result.ContentType)
	if err := s.store.Save(ctx, filename, bytes.NewReader(result.Audio), result.ContentType); err != nil {
		return nil, fmt.Errorf("%w: store audio: %v", ErrSynthesis, err)
	}

	slog.Info("audio stored",
		"file", filename,
		"provider", s.provider.Name(),
		"bytes", len(result.Audio),
	)

	return &models.AudioArtifact{
		Filename:    filename,
		URL:         s.AudioURL(filename),
		ContentType: result.ContentType,
		Size:        int64(len(result.Audio)),
	}, nil
}
