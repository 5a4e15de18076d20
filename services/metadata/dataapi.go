package metadata

import (
	"context"
	"regexp"
	"strconv"
	"time"

	pkgerrors "github.com/pkg/errors"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/nijaru/yt-summarizer/errors"
	"github.com/nijaru/yt-summarizer/models"
)

// DataAPIClient looks videos up through the YouTube Data API v3.
type DataAPIClient struct {
	svc *youtube.Service
}

func NewDataAPIClient(ctx context.Context, apiKey string, opts ...option.ClientOption) (*DataAPIClient, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)

	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "create youtube data api client")
	}
	return &DataAPIClient{svc: svc}, nil
}

func (c *DataAPIClient) FetchByID(ctx context.Context, id string) (*models.VideoMetadata, error) {
	const op = "DataAPIClient.FetchByID"

	resp, err := c.svc.Videos.
		List([]string{"snippet", "contentDetails", "statistics"}).
		Id(id).
		Context(ctx).
		Do()
	if err != nil {
		return nil, errors.UpstreamUnavailable(op, pkgerrors.Wrapf(err, "list video %s", id), "data api")
	}
	if len(resp.Items) == 0 || resp.Items[0].Snippet == nil {
		return nil, errors.NotFound(op, nil, "video not found")
	}

	return fromDataAPI(id, resp.Items[0]), nil
}

func fromDataAPI(id string, item *youtube.Video) *models.VideoMetadata {
	snippet := item.Snippet
	meta := &models.VideoMetadata{
		Title:       snippet.Title,
		Author:      snippet.ChannelTitle,
		Description: snippet.Description,
		Thumbnail:   bestThumbnail(snippet.Thumbnails),
		VideoID:     id,
		URL:         watchURL + id,
	}

	if published, err := time.Parse(time.RFC3339, snippet.PublishedAt); err == nil {
		meta.PublishDate = published.Format("2006-01-02")
	}
	if item.Statistics != nil {
		meta.Views = int64(item.Statistics.ViewCount)
	}
	if item.ContentDetails != nil {
		if d, ok := parseISODuration(item.ContentDetails.Duration); ok {
			meta.Length = int64(d.Seconds())
		}
	}

	return meta
}

func bestThumbnail(t *youtube.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	for _, thumb := range []*youtube.Thumbnail{t.Maxres, t.Standard, t.High, t.Medium, t.Default} {
		if thumb != nil && thumb.Url != "" {
			return thumb.Url
		}
	}
	return ""
}

var isoDuration = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// parseISODuration handles the subset of ISO 8601 durations the Data API
// emits for video lengths, e.g. PT4M13S or P1DT2H.
func parseISODuration(s string) (time.Duration, bool) {
	m := isoDuration.FindStringSubmatch(s)
	if m == nil || s == "P" || s == "PT" {
		return 0, false
	}

	units := []time.Duration{24 * time.Hour, time.Hour, time.Minute, time.Second}
	var total time.Duration
	for i, unit := range units {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0, false
		}
		total += time.Duration(n) * unit
	}
	return total, true
}
