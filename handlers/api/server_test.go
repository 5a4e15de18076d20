package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nijaru/yt-summarizer/config"
	"github.com/nijaru/yt-summarizer/models"
	"github.com/nijaru/yt-summarizer/services/metadata"
	"github.com/nijaru/yt-summarizer/services/summary"
	"github.com/nijaru/yt-summarizer/services/transcript"
	"github.com/nijaru/yt-summarizer/storage"
)

const videoID = "dQw4w9WgXcQ"

type failingPage struct{}

func (failingPage) FetchByURL(ctx context.Context, url string) (*models.VideoMetadata, error) {
	return nil, pkgerrors.New("watch page blocked")
}

type countingPage struct {
	calls atomic.Int32
}

func (p *countingPage) FetchByURL(ctx context.Context, url string) (*models.VideoMetadata, error) {
	p.calls.Add(1)
	return &models.VideoMetadata{Title: "Resolved", Author: "Someone"}, nil
}

type stubCaptions struct {
	text string
	err  error
}

func (s stubCaptions) FetchCaptions(ctx context.Context, videoID, lang string) (string, error) {
	return s.text, s.err
}

type recordingGenerator struct {
	prompt string
	reply  string
	err    error
}

func (g *recordingGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.prompt = prompt
	return g.reply, g.err
}

type stubSpeaker struct{}

func (stubSpeaker) Speak(ctx context.Context, text string) ([]byte, error) {
	return []byte("ID3-mp3:" + text), nil
}

type testEnv struct {
	handler   http.Handler
	generator *recordingGenerator
}

type envOptions struct {
	rapidStatus int
	rapidBody   string
	captions    stubCaptions
	page        metadata.PageProvider
	configure   func(*config.Config)
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()
	logger, _ := test.NewNullLogger()

	if opts.rapidStatus == 0 {
		opts.rapidStatus = http.StatusOK
	}
	rapid := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(opts.rapidStatus)
		io.WriteString(w, opts.rapidBody)
	}))
	t.Cleanup(rapid.Close)

	staticDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "index.html"), []byte("<html>yt-summarizer</html>"), 0644))

	cfg := config.FromEnv()
	cfg.StaticDir = staticDir
	cfg.RateLimit.Enabled = false
	if opts.configure != nil {
		opts.configure(cfg)
	}

	if opts.page == nil {
		opts.page = failingPage{}
	}
	metaSvc, err := metadata.NewService(opts.page, nil, metadata.Config{
		ThumbnailBase: cfg.YouTube.ThumbnailBase,
	}, logger)
	require.NoError(t, err)

	rapidClient := transcript.NewRapidAPIClient(config.RapidAPIConfig{
		Key:     "k",
		Host:    "h",
		BaseURL: rapid.URL,
	}, rapid.Client())
	transcriptSvc, err := transcript.NewService(rapidClient, opts.captions, nil, transcript.Config{}, logger)
	require.NoError(t, err)

	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	gen := &recordingGenerator{reply: "A summary."}
	summarySvc := summary.NewService(gen, stubSpeaker{}, store, summary.Config{}, logger)

	srv := NewServer(cfg,
		WithLogger(logger),
		WithServices(metaSvc, transcriptSvc, summarySvc),
	)
	return &testEnv{handler: srv.Handler(), generator: gen}
}

func (e *testEnv) do(t *testing.T, method, target string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func TestGetVideoInfo(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rr := env.do(t, http.MethodGet, "/get_video_info?url=https://youtu.be/"+videoID, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	body := decode(t, rr)
	assert.Equal(t, videoID, body["video_id"])
	assert.Contains(t, body["thumbnail"], videoID)
	assert.Equal(t, "YouTube Video (ID: "+videoID+")", body["title"])
	assert.Equal(t, "Content Creator", body["author"])
	assert.NotContains(t, body, "length")
}

func TestGetVideoInfoErrors(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"invalid url", "/get_video_info?url=not-a-video", "Invalid YouTube URL"},
		{"missing url", "/get_video_info", "URL parameter is required"},
		{"blank url", "/get_video_info?url=%20", "URL parameter is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, http.MethodGet, tt.target, "")
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.JSONEq(t, `{"error":"`+tt.want+`"}`, rr.Body.String())
		})
	}
}

func TestGetVideoInfoRejectsBeforeLookup(t *testing.T) {
	page := &countingPage{}
	env := newTestEnv(t, envOptions{page: page})

	for _, target := range []string{
		"/get_video_info?url=not-a-video",
		"/get_video_info?url=" + videoID,
		"/get_video_info?url=https://www.youtube.com/shorts/" + videoID,
	} {
		rr := env.do(t, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code, target)
		assert.JSONEq(t, `{"error":"Invalid YouTube URL"}`, rr.Body.String(), target)
	}
	assert.Equal(t, int32(0), page.calls.Load())

	rr := env.do(t, http.MethodGet, "/get_video_info?url=https://youtu.be/"+videoID, "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, "Resolved", body["title"])
	assert.Equal(t, "Unknown", body["publish_date"])
	assert.Equal(t, videoID, body["video_id"])
	assert.Equal(t, int32(1), page.calls.Load())
}

func TestGetTranscriptPrimary(t *testing.T) {
	env := newTestEnv(t, envOptions{rapidBody: `{"transcript":"hello world"}`})

	rr := env.do(t, http.MethodGet, "/get_transcript?url=https://www.youtube.com/watch?v="+videoID, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"transcript":"hello world","source":"rapidapi"}`, rr.Body.String())
}

func TestGetTranscriptStructured(t *testing.T) {
	env := newTestEnv(t, envOptions{
		rapidBody: `{"transcription":[{"subtitle":"hello","start":0},{"subtitle":"world","start":1}]}`,
	})

	rr := env.do(t, http.MethodGet, "/get_transcript?url=https://youtu.be/"+videoID, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{
		"transcript": {
			"transcriptionAsText": "hello world",
			"transcription": [{"subtitle":"hello","start":0},{"subtitle":"world","start":1}]
		},
		"source": "rapidapi"
	}`, rr.Body.String())
}

func TestGetTranscriptCaptionsFallback(t *testing.T) {
	env := newTestEnv(t, envOptions{
		rapidBody: `{"message":"No transcript found"}`,
		captions:  stubCaptions{text: "from captions"},
	})

	rr := env.do(t, http.MethodGet, "/get_transcript?url=https://youtu.be/"+videoID+"&lang=en", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"transcript":"from captions","source":"youtube_transcript_api"}`, rr.Body.String())
}

func TestGetTranscriptNotFound(t *testing.T) {
	env := newTestEnv(t, envOptions{
		rapidStatus: http.StatusBadGateway,
		captions:    stubCaptions{err: pkgerrors.New("captions disabled")},
	})

	rr := env.do(t, http.MethodGet, "/get_transcript?url=https://youtu.be/"+videoID, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t,
		"Could not retrieve transcript. The video might not have captions available.",
		decode(t, rr)["error"])
}

func TestGetTranscriptInvalidURL(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rr := env.do(t, http.MethodGet, "/get_transcript?url=https://example.com/clip", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"Invalid YouTube URL"}`, rr.Body.String())
}

func TestGenerateSummary(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rr := env.do(t, http.MethodPost, "/generate_summary", `{"transcript":"long talk","format":"bullet"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	body := decode(t, rr)
	assert.Equal(t, "A summary.", body["summary"])
	assert.Equal(t, "bullet", body["format"])
	assert.Nil(t, body["audio_url"])
	assert.NotEmpty(t, body["timestamp"])
	assert.Contains(t, env.generator.prompt, "bullet-point summary")
	assert.True(t, strings.HasSuffix(env.generator.prompt, "Transcript:\nlong talk"))
}

func TestGenerateSummaryStructuredTranscript(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	body := `{"transcript":{"transcriptionAsText":"hello world","transcription":[{"subtitle":"hello"},{"subtitle":"world"}]}}`
	rr := env.do(t, http.MethodPost, "/generate_summary", body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.True(t, strings.HasSuffix(env.generator.prompt, "Transcript:\nhello world"))
}

func TestGenerateSummaryUnknownFormat(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rr := env.do(t, http.MethodPost, "/generate_summary", `{"transcript":"t","format":"limerick"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, env.generator.prompt, "concise summary")
}

func TestGenerateSummaryErrors(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	tests := []struct {
		name string
		body string
		code int
		want string
	}{
		{"missing transcript", `{"format":"text"}`, http.StatusBadRequest, "Transcript is required"},
		{"empty transcript", `{"transcript":""}`, http.StatusBadRequest, "Transcript is required"},
		{"invalid json", `{"transcript":`, http.StatusBadRequest, "Invalid JSON format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, http.MethodPost, "/generate_summary", tt.body)
			assert.Equal(t, tt.code, rr.Code)
			assert.JSONEq(t, `{"error":"`+tt.want+`"}`, rr.Body.String())
		})
	}
}

func TestGenerateSummaryUpstreamFailure(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	env.generator.err = pkgerrors.New("model overloaded")

	rr := env.do(t, http.MethodPost, "/generate_summary", `{"transcript":"t"}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"model overloaded"}`, rr.Body.String())
}

func TestGenerateSummaryWithAudio(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rr := env.do(t, http.MethodPost, "/generate_summary", `{"transcript":"t","generate_audio":true}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	audioURL, ok := decode(t, rr)["audio_url"].(string)
	require.True(t, ok)
	require.True(t, strings.HasPrefix(audioURL, "/audio/"))
	assert.True(t, storage.ValidAudioName(strings.TrimPrefix(audioURL, "/audio/")))

	audio := env.do(t, http.MethodGet, audioURL, "")
	require.Equal(t, http.StatusOK, audio.Code)
	assert.Equal(t, "audio/mpeg", audio.Header().Get("Content-Type"))
	assert.True(t, bytes.Equal([]byte("ID3-mp3:A summary."), audio.Body.Bytes()))
}

func TestGetAudioNotFound(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	for _, target := range []string{
		"/audio/nothing.mp3",
		"/audio/" + storage.NewAudioName(),
	} {
		rr := env.do(t, http.MethodGet, target, "")
		assert.Equal(t, http.StatusNotFound, rr.Code, target)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, envOptions{configure: func(c *config.Config) {
		c.Debug = true
		c.Version = "9.9.9"
	}})

	rr := env.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rr.Code)

	body := decode(t, rr)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "9.9.9", body["version"])
	assert.Contains(t, body, "uptime")
	assert.Contains(t, body, "memory")
	assert.Contains(t, body, "caches")
}

func TestIndex(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rr := env.do(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "yt-summarizer")
}

func TestSummaryRateLimit(t *testing.T) {
	env := newTestEnv(t, envOptions{configure: func(c *config.Config) {
		c.RateLimit.Enabled = true
		c.Middleware.EnableRateLimit = true
		c.RateLimit.SummaryPerMinute = 1
		c.RateLimit.BurstSize = 1
	}})

	first := env.do(t, http.MethodPost, "/generate_summary", `{"transcript":"t"}`)
	second := env.do(t, http.MethodPost, "/generate_summary", `{"transcript":"t"}`)
	info := env.do(t, http.MethodGet, "/get_video_info?url=https://youtu.be/"+videoID, "")

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, http.StatusOK, info.Code, "route groups have separate budgets")
}
