package tts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/nikhilbhutani/voicenews/pkg/textutil"
)

// gttsMaxChunk is the longest text the translate_tts endpoint accepts per call.
const gttsMaxChunk = 100

// GoogleTTSConfig holds configuration for the Google Translate speech endpoint.
type GoogleTTSConfig struct {
	BaseURL string // default: "https://translate.google.com"
}

// GoogleTTS speaks text through Google Translate's translate_tts endpoint,
// one request per chunk, and concatenates the MP3 frames.
type GoogleTTS struct {
	cfg        GoogleTTSConfig
	httpClient *http.Client
}

func NewGoogleTTS(cfg GoogleTTSConfig) *GoogleTTS {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://translate.google.com"
	}
	return &GoogleTTS{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *GoogleTTS) Name() string { return "gtts" }

func (g *GoogleTTS) Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error) {
	lang := req.Language
	if lang == "" {
		lang = "en"
	}

	chunks := textutil.ChunkWords(req.Input, gttsMaxChunk)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("gtts: no text to speak")
	}

	var audio bytes.Buffer
	for i, chunk := range chunks {
		params := url.Values{}
		params.Set("ie", "UTF-8")
		params.Set("client", "tw-ob")
		params.Set("tl", lang)
		params.Set("q", chunk)
		params.Set("total", strconv.Itoa(len(chunks)))
		params.Set("idx", strconv.Itoa(i))
		params.Set("textlen", strconv.Itoa(len(chunk)))

		if err := g.fetch(ctx, g.cfg.BaseURL+"/translate_tts?"+params.Encode(), &audio); err != nil {
			return nil, fmt.Errorf("gtts chunk %d/%d: %w", i+1, len(chunks), err)
		}
	}

	return &SynthesisResult{
		Audio:       audio.Bytes(),
		ContentType: "audio/mpeg",
	}, nil
}

func (g *GoogleTTS) fetch(ctx context.Context, u string, dst io.Writer) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	httpReq.Header.Set("User-Agent", "Mozilla/5.0 (compatible; voicenews/1.0)")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody))
	}
	_, err = io.Copy(dst, resp.Body)
	return err
}
