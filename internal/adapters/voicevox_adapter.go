package adapters

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/shouni/go-http-kit/httpkit"
)

// maxAudioBytes は1シーン分の音声として受け付ける上限です。
const maxAudioBytes = 32 << 20

// SpeechSynthesizer はテキストを読み上げ音声に変換します。
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// VoicevoxAdapter は VOICEVOX 互換の Web API で音声を合成します。
// 音声は再試行しないため、リトライを伴わない Do だけを使います。
type VoicevoxAdapter struct {
	httpClient httpkit.Doer
	endpoint   string
	apiKey     string
}

// NewVoicevoxAdapter は VoicevoxAdapter を作成します。
func NewVoicevoxAdapter(httpClient httpkit.Doer, endpoint, apiKey string) (*VoicevoxAdapter, error) {
	if httpClient == nil {
		return nil, errors.New("voicevox: http client is nil")
	}
	if _, err := url.Parse(endpoint); err != nil || endpoint == "" {
		return nil, fmt.Errorf("voicevox: invalid endpoint %q", endpoint)
	}
	return &VoicevoxAdapter{
		httpClient: httpClient,
		endpoint:   endpoint,
		apiKey:     apiKey,
	}, nil
}

// Synthesize はずんだもん (speaker=1) の音声を返します。
func (a *VoicevoxAdapter) Synthesize(ctx context.Context, text string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.requestURL(text), nil)
	if err != nil {
		return nil, fmt.Errorf("voicevox: failed to build request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("voicevox: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes))
	if err != nil {
		return nil, fmt.Errorf("voicevox: failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("voicevox: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if len(body) == 0 {
		return nil, errors.New("voicevox: empty audio response")
	}
	return body, nil
}

func (a *VoicevoxAdapter) requestURL(text string) string {
	q := url.Values{}
	q.Set("key", a.apiKey)
	q.Set("speaker", "1")
	q.Set("pitch", "0")
	q.Set("intonationScale", "1")
	q.Set("speed", "1.2")
	q.Set("text", text)

	sep := "?"
	if strings.Contains(a.endpoint, "?") {
		sep = "&"
	}
	return a.endpoint + sep + q.Encode()
}
