package wake

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/teslashibe/go-kiosk/internal/httpc"
)

// DeepgramListenURL is the Deepgram pre-recorded endpoint.
const DeepgramListenURL = "https://api.deepgram.com/v1/listen"

// Deepgram transcribes wake windows with Deepgram pre-recorded audio.
type Deepgram struct {
	APIKey  string
	BaseURL string
	Model   string

	client *http.Client
}

// NewDeepgram creates a pre-recorded recognizer.
func NewDeepgram(apiKey, model string) *Deepgram {
	if model == "" {
		model = "nova-2"
	}
	return &Deepgram{
		APIKey:  apiKey,
		BaseURL: DeepgramListenURL,
		Model:   model,
		client:  httpc.New(10 * time.Second),
	}
}

type listenResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string `json:"transcript"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
	ErrCode string `json:"err_code"`
	ErrMsg  string `json:"err_msg"`
}

// Transcribe posts raw PCM16 and returns the first transcript.
func (d *Deepgram) Transcribe(ctx context.Context, pcm []byte, sampleRate int) (string, error) {
	q := url.Values{}
	q.Set("model", d.Model)
	q.Set("smart_format", "true")
	q.Set("encoding", "linear16")
	q.Set("sample_rate", strconv.Itoa(sampleRate))
	q.Set("channels", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.BaseURL+"?"+q.Encode(), bytes.NewReader(pcm))
	if err != nil {
		return "", fmt.Errorf("wake: create request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+d.APIKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("wake: request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("wake: read response: %w", err)
	}

	var out listenResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("wake: decode response (HTTP %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("wake: deepgram HTTP %d: %s %s", resp.StatusCode, out.ErrCode, out.ErrMsg)
	}

	if len(out.Results.Channels) == 0 || len(out.Results.Channels[0].Alternatives) == 0 {
		return "", nil
	}
	return out.Results.Channels[0].Alternatives[0].Transcript, nil
}

var _ Recognizer = (*Deepgram)(nil)
