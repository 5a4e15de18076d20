package models

// VideoMetadata is the descriptive record returned by /get_video_info.
type VideoMetadata struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Length      int64  `json:"length,omitempty"` // seconds
	Views       int64  `json:"views"`
	PublishDate string `json:"publish_date"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
	VideoID     string `json:"video_id,omitempty"`
	URL         string `json:"url,omitempty"`
}

// Clone returns a copy safe to modify without touching cached records.
func (m *VideoMetadata) Clone() *VideoMetadata {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}
