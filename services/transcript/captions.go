package transcript

import (
	"context"
	"net/http"
	"strings"

	"github.com/kkdai/youtube/v2"
	pkgerrors "github.com/pkg/errors"

	"github.com/nijaru/yt-summarizer/errors"
)

// CaptionsClient reads caption tracks through the kkdai/youtube client.
type CaptionsClient struct {
	client *youtube.Client
}

func NewCaptionsClient(httpClient *http.Client) *CaptionsClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &CaptionsClient{client: &youtube.Client{HTTPClient: httpClient}}
}

func (c *CaptionsClient) FetchCaptions(ctx context.Context, videoID, lang string) (string, error) {
	const op = "CaptionsClient.FetchCaptions"

	video, err := c.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return "", errors.UpstreamUnavailable(op, pkgerrors.Wrapf(err, "load video %s", videoID), "captions")
	}

	segments, err := c.client.GetTranscriptCtx(ctx, video, lang)
	if err != nil {
		return "", errors.UpstreamUnavailable(op, pkgerrors.Wrapf(err, "load %s captions", lang), "captions")
	}
	if len(segments) == 0 {
		return "", errors.NotFound(op, nil, "empty caption track")
	}

	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		parts = append(parts, seg.Text)
	}
	return strings.Join(parts, " "), nil
}
