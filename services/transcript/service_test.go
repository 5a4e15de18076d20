package transcript

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nijaru/yt-summarizer/errors"
	"github.com/nijaru/yt-summarizer/models"
)

const testURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

type fakePrimary struct {
	content *models.TranscriptContent
	err     error
	calls   atomic.Int32
	lang    string
}

func (f *fakePrimary) FetchTranscript(ctx context.Context, videoID, lang string) (*models.TranscriptContent, error) {
	f.calls.Add(1)
	f.lang = lang
	return f.content, f.err
}

type fakeCaptions struct {
	text  string
	err   error
	calls atomic.Int32
}

func (f *fakeCaptions) FetchCaptions(ctx context.Context, videoID, lang string) (string, error) {
	f.calls.Add(1)
	return f.text, f.err
}

func newTestService(t *testing.T, primary PrimaryProvider, captions CaptionsProvider) Service {
	t.Helper()
	logger, _ := test.NewNullLogger()
	svc, err := NewService(primary, captions, nil, Config{}, logger)
	require.NoError(t, err)
	return svc
}

func TestFetchPrimary(t *testing.T) {
	content := models.TextTranscript("hello world")
	primary := &fakePrimary{content: &content}
	captions := &fakeCaptions{}
	svc := newTestService(t, primary, captions)

	result, err := svc.Fetch(context.Background(), testURL, "")
	require.NoError(t, err)

	assert.Equal(t, "hello world", result.Transcript.String())
	assert.Equal(t, models.SourceRapidAPI, result.Source)
	assert.Equal(t, "en", primary.lang)
	assert.Equal(t, int32(0), captions.calls.Load())
}

func TestFetchFallsBackToCaptions(t *testing.T) {
	tests := []struct {
		name    string
		primary *fakePrimary
	}{
		{name: "explicit negative", primary: &fakePrimary{}},
		{name: "primary error", primary: &fakePrimary{err: pkgerrors.New("connection refused")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			captions := &fakeCaptions{text: "from captions"}
			svc := newTestService(t, tt.primary, captions)

			result, err := svc.Fetch(context.Background(), testURL, "en")
			require.NoError(t, err)
			assert.Equal(t, "from captions", result.Transcript.String())
			assert.Equal(t, models.SourceCaptions, result.Source)
		})
	}
}

func TestFetchEmptyPrimaryFallsBackToCaptions(t *testing.T) {
	for _, body := range []string{`{"transcript":""}`, `{"transcript":[]}`, `[]`} {
		t.Run(body, func(t *testing.T) {
			primary, _ := newTestRapidAPI(t, http.StatusOK, body)
			captions := &fakeCaptions{text: "from captions"}
			svc := newTestService(t, primary, captions)

			result, err := svc.Fetch(context.Background(), testURL, "en")
			require.NoError(t, err)
			assert.Equal(t, models.SourceCaptions, result.Source)
			assert.Equal(t, "from captions", result.Transcript.String())
			assert.Equal(t, int32(1), captions.calls.Load())
		})
	}
}

func TestFetchBothFail(t *testing.T) {
	primary := &fakePrimary{err: pkgerrors.New("down")}
	captions := &fakeCaptions{err: pkgerrors.New("captions disabled")}
	svc := newTestService(t, primary, captions)

	_, err := svc.Fetch(context.Background(), testURL, "en")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Could not retrieve transcript. The video might not have captions available.", appErr.Message)
}

func TestFetchInvalidURL(t *testing.T) {
	primary := &fakePrimary{}
	svc := newTestService(t, primary, &fakeCaptions{})

	_, err := svc.Fetch(context.Background(), "https://example.com/video", "en")
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))
	assert.Equal(t, int32(0), primary.calls.Load())
}

func TestFetchMemoizesDefaultLanguageCaptions(t *testing.T) {
	captions := &fakeCaptions{text: "memoized text"}
	svc := newTestService(t, &fakePrimary{}, captions)

	first, err := svc.Fetch(context.Background(), testURL, "en")
	require.NoError(t, err)
	second, err := svc.Fetch(context.Background(), "https://youtu.be/dQw4w9WgXcQ", "")
	require.NoError(t, err)

	assert.Equal(t, first.Transcript.String(), second.Transcript.String())
	assert.Equal(t, int32(1), captions.calls.Load())
	assert.Equal(t, 1, svc.CacheStats().Size)
}

func TestFetchOtherLanguagesNotMemoized(t *testing.T) {
	captions := &fakeCaptions{text: "hola"}
	svc := newTestService(t, &fakePrimary{}, captions)

	for i := 0; i < 2; i++ {
		_, err := svc.Fetch(context.Background(), testURL, "es")
		require.NoError(t, err)
	}

	assert.Equal(t, int32(2), captions.calls.Load())
	assert.Equal(t, 0, svc.CacheStats().Size)
}
