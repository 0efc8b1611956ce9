// Package tts is a client for the speech synthesis HTTP service that
// renders announcer scripts into WAV audio.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"aircheck/internal/services"
)

const (
	speechPath = "/v1/generate/speech"
	healthPath = "/health"

	contentTypeJSON = "application/json"
	contentTypeWAV  = "audio/wav"

	defaultTimeout     = 120 * time.Second
	defaultTemperature = 0.75
	defaultLanguage    = "en"
)

// Request is the synthesis payload. SpeakerRefPath points at a voice
// reference file on the service host; an empty value selects the
// service's default speaker.
type Request struct {
	Text           string  `json:"text"`
	SpeakerRefPath string  `json:"speaker_ref_path,omitempty"`
	Language       string  `json:"language"`
	Temperature    float64 `json:"temperature"`
}

type errorResponse struct {
	Detail    string `json:"detail"`
	ErrorCode string `json:"error_code,omitempty"`
}

// Client talks to the synthesis service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Synthesize renders text to WAV audio and returns the raw bytes.
func (c *Client) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, errors.New("tts synthesize: text required")
	}
	if req.Temperature == 0 {
		req.Temperature = defaultTemperature
	}
	if req.Language == "" {
		req.Language = defaultLanguage
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("tts synthesize: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+speechPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("tts synthesize: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentTypeJSON)
	httpReq.Header.Set("Accept", contentTypeWAV)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "tts", "synthesize",
			fmt.Sprintf("request to %s failed", c.baseURL), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp)
	}
	if got := resp.Header.Get("Content-Type"); !strings.HasPrefix(got, contentTypeWAV) {
		return nil, fmt.Errorf("tts synthesize: unexpected content type %q", got)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "tts", "synthesize", "reading audio body", err)
	}
	if len(audio) == 0 {
		return nil, errors.New("tts synthesize: empty audio data")
	}
	return audio, nil
}

// HealthCheck verifies the service is up before a batch starts.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, http.NoBody)
	if err != nil {
		return fmt.Errorf("tts health: build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, "tts", "health",
			fmt.Sprintf("service at %s unreachable", c.baseURL), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tts health: status %s", resp.Status)
	}
	return nil
}

// statusError decodes the service's structured error body, falling
// back to the raw text when it is not JSON.
func (c *Client) statusError(resp *http.Response) error {
	marker := services.ErrQuality
	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
		marker = services.ErrTransient
	}
	data, _ := io.ReadAll(resp.Body)
	var structured errorResponse
	if err := json.Unmarshal(data, &structured); err == nil && structured.Detail != "" {
		return services.Wrap(marker, "tts", "synthesize",
			fmt.Sprintf("service error (%s): %s (code: %s)", resp.Status, structured.Detail, structured.ErrorCode), nil)
	}
	return services.Wrap(marker, "tts", "synthesize",
		fmt.Sprintf("service returned %s: %s", resp.Status, strings.TrimSpace(string(data))), nil)
}
