package tts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoogleTTS_ChunksAndConcatenates(t *testing.T) {
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/translate_tts", r.URL.Path)
		assert.Equal(t, "de", r.URL.Query().Get("tl"))
		q := r.URL.Query().Get("q")
		assert.LessOrEqual(t, len(q), gttsMaxChunk)
		queries = append(queries, q)
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("[" + r.URL.Query().Get("idx") + "]"))
	}))
	defer srv.Close()

	text := strings.TrimSpace(strings.Repeat("nachrichten ", 20))
	g := NewGoogleTTS(GoogleTTSConfig{BaseURL: srv.URL})

	res, err := g.Synthesize(context.Background(), SynthesisRequest{Input: text, Language: "de"})
	require.NoError(t, err)

	assert.Equal(t, "audio/mpeg", res.ContentType)
	require.Len(t, queries, 3)
	assert.Equal(t, "[0][1][2]", string(res.Audio))
	assert.Equal(t, text, strings.Join(queries, " "))
}

func TestGoogleTTS_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewGoogleTTS(GoogleTTSConfig{BaseURL: srv.URL}).Synthesize(context.Background(), SynthesisRequest{Input: "hi"})
	assert.ErrorContains(t, err, "status 429")
}

func TestOpenAITTS_Synthesize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/speech", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("openai-mp3"))
	}))
	defer srv.Close()

	o := NewOpenAITTS(OpenAITTSConfig{APIKey: "sk-test", BaseURL: srv.URL})
	res, err := o.Synthesize(context.Background(), SynthesisRequest{Input: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "openai-mp3", string(res.Audio))
}
