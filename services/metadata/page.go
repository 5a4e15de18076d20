package metadata

import (
	"context"
	"net/http"

	"github.com/kkdai/youtube/v2"
	pkgerrors "github.com/pkg/errors"

	"github.com/nijaru/yt-summarizer/errors"
	"github.com/nijaru/yt-summarizer/models"
)

// PageClient scrapes the watch page through the kkdai/youtube client.
type PageClient struct {
	client *youtube.Client
}

func NewPageClient(httpClient *http.Client) *PageClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &PageClient{client: &youtube.Client{HTTPClient: httpClient}}
}

func (p *PageClient) FetchByURL(ctx context.Context, url string) (*models.VideoMetadata, error) {
	const op = "PageClient.FetchByURL"

	video, err := p.client.GetVideoContext(ctx, url)
	if err != nil {
		return nil, errors.UpstreamUnavailable(op, pkgerrors.Wrap(err, "fetch watch page"), "page provider")
	}

	return fromPage(video), nil
}

func fromPage(video *youtube.Video) *models.VideoMetadata {
	meta := &models.VideoMetadata{
		Title:       video.Title,
		Author:      video.Author,
		Length:      int64(video.Duration.Seconds()),
		Views:       int64(video.Views),
		Description: video.Description,
		VideoID:     video.ID,
	}

	if !video.PublishDate.IsZero() {
		meta.PublishDate = video.PublishDate.Format("2006-01-02")
	}

	// Thumbnails are listed smallest first.
	if n := len(video.Thumbnails); n > 0 {
		meta.Thumbnail = video.Thumbnails[n-1].URL
	}

	if video.ID != "" {
		meta.URL = watchURL + video.ID
	}

	return meta
}
