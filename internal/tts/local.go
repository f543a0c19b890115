package tts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Piper runs the piper binary once per article. The voice model fixes the
// language, so SynthesisRequest.Language is ignored.
type Piper struct {
	bin   string
	model string
}

func NewPiper(bin, model string) *Piper {
	if bin == "" {
		bin = "piper"
	}
	return &Piper{bin: bin, model: model}
}

func (p *Piper) Name() string { return "local-piper" }

func (p *Piper) Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error) {
	if p.model == "" {
		return nil, errors.New("piper: no voice model configured (TTS_LOCAL_PIPER_MODEL)")
	}

	dir, err := os.MkdirTemp("", "voicenews-piper-*")
	if err != nil {
		return nil, fmt.Errorf("piper: %w", err)
	}
	defer os.RemoveAll(dir)

	wav := filepath.Join(dir, "speech.wav")
	cmd := exec.CommandContext(ctx, p.bin, piperArgs(p.model, wav, req)...)
	cmd.Stdin = strings.NewReader(req.Input)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("piper: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	audio, err := os.ReadFile(wav)
	if err != nil {
		return nil, fmt.Errorf("piper: read output: %w", err)
	}
	return &SynthesisResult{Audio: audio, ContentType: "audio/wav"}, nil
}

// piperArgs maps Speed onto --length_scale (its inverse) and a numeric
// Voice onto --speaker for multi-speaker models.
func piperArgs(model, out string, req SynthesisRequest) []string {
	args := []string{"--model", model, "--output_file", out}
	if req.Speed > 0 && req.Speed != 1 {
		args = append(args, "--length_scale", strconv.FormatFloat(1/req.Speed, 'f', 3, 64))
	}
	if _, err := strconv.Atoi(req.Voice); err == nil {
		args = append(args, "--speaker", req.Voice)
	}
	return args
}
