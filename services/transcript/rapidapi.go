package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/nijaru/yt-summarizer/config"
	"github.com/nijaru/yt-summarizer/errors"
	"github.com/nijaru/yt-summarizer/models"
)

const maxRapidAPIBody = 8 << 20

// RapidAPIClient calls the youtube-transcriptor REST API.
type RapidAPIClient struct {
	httpClient *http.Client
	baseURL    string
	host       string
	key        string
}

func NewRapidAPIClient(cfg config.RapidAPIConfig, httpClient *http.Client) *RapidAPIClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &RapidAPIClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		host:       cfg.Host,
		key:        cfg.Key,
	}
}

func (c *RapidAPIClient) FetchTranscript(ctx context.Context, videoID, lang string) (*models.TranscriptContent, error) {
	const op = "RapidAPIClient.FetchTranscript"

	if c.key == "" {
		return nil, errors.UpstreamUnavailable(op, pkgerrors.New("no API key configured"), "rapidapi")
	}

	query := url.Values{}
	query.Set("video_id", videoID)
	query.Set("lang", lang)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transcript?"+query.Encode(), nil)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "build rapidapi request")
	}
	req.Header.Set("X-RapidAPI-Key", c.key)
	req.Header.Set("X-RapidAPI-Host", c.host)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.UpstreamUnavailable(op, pkgerrors.Wrap(err, "rapidapi request"), "rapidapi")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRapidAPIBody))
	if err != nil {
		return nil, errors.UpstreamUnavailable(op, pkgerrors.Wrap(err, "read rapidapi response"), "rapidapi")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.UpstreamUnavailable(op,
			pkgerrors.Errorf("rapidapi returned status %d", resp.StatusCode), "rapidapi")
	}

	return interpretRapidAPI(body)
}

// interpretRapidAPI maps the provider's several response shapes onto a
// transcript. A nil result with nil error is an explicit "no transcript".
func interpretRapidAPI(body []byte) (*models.TranscriptContent, error) {
	body = bytes.TrimSpace(body)

	if len(body) > 0 && body[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, pkgerrors.Wrap(err, "decode rapidapi array")
		}
		if len(items) == 0 {
			return nil, nil
		}
		body = items[0]
	}

	var data map[string]json.RawMessage
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, pkgerrors.Wrap(err, "decode rapidapi response")
	}

	if raw, ok := data["transcription"]; ok {
		var segments []json.RawMessage
		if err := json.Unmarshal(raw, &segments); err != nil {
			return nil, pkgerrors.Wrap(err, "decode transcription segments")
		}
		content := models.StructuredTranscript(joinSubtitles(segments), segments)
		return &content, nil
	}

	if raw, ok := data["transcript"]; ok {
		if isEmpty(raw) {
			return nil, nil
		}
		var text string
		if err := json.Unmarshal(raw, &text); err == nil {
			content := models.TextTranscript(text)
			return &content, nil
		}
		content := models.TranscriptContent{Raw: raw}
		return &content, nil
	}

	if raw, ok := data["message"]; ok {
		var message string
		if err := json.Unmarshal(raw, &message); err == nil && strings.Contains(message, "No transcript found") {
			return nil, nil
		}
	}

	return nil, pkgerrors.New("unrecognised rapidapi response")
}

func joinSubtitles(segments []json.RawMessage) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		var s struct {
			Subtitle string `json:"subtitle"`
		}
		// Segments without a usable subtitle contribute an empty string.
		_ = json.Unmarshal(seg, &s)
		parts = append(parts, s.Subtitle)
	}
	return strings.Join(parts, " ")
}

// isEmpty reports a transcript value that carries nothing to show: null,
// false, zero, or an empty string, array or object.
func isEmpty(raw json.RawMessage) bool {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch v := v.(type) {
	case nil:
		return true
	case bool:
		return !v
	case float64:
		return v == 0
	case string:
		return v == ""
	case []interface{}:
		return len(v) == 0
	case map[string]interface{}:
		return len(v) == 0
	}
	return false
}
