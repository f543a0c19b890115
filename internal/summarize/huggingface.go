package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HuggingFaceConfig holds configuration for the hosted inference API.
type HuggingFaceConfig struct {
	Token   string
	BaseURL string // default: "https://api-inference.huggingface.co/models"
	Model   string // default: "sshleifer/distilbart-cnn-12-6"
}

// HuggingFace calls a summarization pipeline on the HF inference API.
type HuggingFace struct {
	cfg        HuggingFaceConfig
	httpClient *http.Client
}

func NewHuggingFace(cfg HuggingFaceConfig) *HuggingFace {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api-inference.huggingface.co/models"
	}
	if cfg.Model == "" {
		cfg.Model = "sshleifer/distilbart-cnn-12-6"
	}
	return &HuggingFace{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

func (h *HuggingFace) Name() string { return "huggingface" }

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	MinLength int  `json:"min_length,omitempty"`
	DoSample  bool `json:"do_sample"`
}

type hfSummary struct {
	SummaryText string `json:"summary_text"`
}

func (h *HuggingFace) Summarize(ctx context.Context, req Request) (string, error) {
	body, err := json.Marshal(hfRequest{
		Inputs: req.Text,
		Parameters: hfParameters{
			MinLength: req.MinLength,
			DoSample:  !req.Deterministic,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimRight(h.cfg.BaseURL, "/") + "/" + h.cfg.Model
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if h.cfg.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+h.cfg.Token)
	}

	resp, err := h.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("huggingface request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("huggingface failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	var out []hfSummary
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out) == 0 || strings.TrimSpace(out[0].SummaryText) == "" {
		return "", fmt.Errorf("huggingface returned no summary")
	}
	return strings.TrimSpace(out[0].SummaryText), nil
}
