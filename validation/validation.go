package validation

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/nijaru/yt-summarizer/config"
	"github.com/nijaru/yt-summarizer/errors"
)

// videoIDPattern matches watch?v=, &v=, /v/, /e/, /embed/, two-segment
// paths and youtu.be links, capturing the 11 character identifier.
var videoIDPattern = regexp.MustCompile(
	`(?:youtube\.com/(?:[^/\n\s]+/\S+/|(?:v|e(?:mbed)?)/|\S*?[?&]v=)|youtu\.be/)([a-zA-Z0-9_-]{11})`,
)

// ExtractVideoID returns the video identifier embedded in rawURL, or "" when
// none of the recognised URL shapes match.
func ExtractVideoID(rawURL string) string {
	m := videoIDPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return ""
	}
	return m[1]
}

type Validator struct {
	config *config.Config
}

func NewValidator(cfg *config.Config) *Validator {
	return &Validator{config: cfg}
}

// VideoID extracts the identifier from urlStr or fails with InvalidURL.
func (v *Validator) VideoID(urlStr string) (string, error) {
	const op = "Validator.VideoID"

	id := ExtractVideoID(strings.TrimSpace(urlStr))
	if id == "" {
		return "", errors.InvalidURL(op, nil)
	}
	return id, nil
}

// ValidateURL is the strict check used before any upstream call: the URL must
// be an http(s) YouTube link carrying a video identifier.
func (v *Validator) ValidateURL(urlStr string) error {
	const op = "Validator.ValidateURL"

	urlStr = strings.TrimSpace(urlStr)
	if urlStr == "" {
		return errors.MissingInput(op, "URL")
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return errors.InvalidURL(op, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return errors.InvalidInput(op, nil, "URL must use HTTP or HTTPS")
	}

	if !isYouTubeHost(parsedURL.Hostname()) {
		return errors.InvalidInput(op, nil, "Only YouTube URLs are supported")
	}

	if ExtractVideoID(urlStr) == "" {
		return errors.InvalidURL(op, nil)
	}

	return nil
}

func isYouTubeHost(host string) bool {
	host = strings.ToLower(host)
	return host == "youtube.com" || strings.HasSuffix(host, ".youtube.com") ||
		host == "youtu.be" || host == "youtube-nocookie.com" ||
		strings.HasSuffix(host, ".youtube-nocookie.com")
}

// RequestValidationOpts holds options for request validation
type RequestValidationOpts struct {
	MaxContentLength int64
	AllowedMethods   []string
	RequireJSON      bool
}

// ValidateRequest validates HTTP requests
func (v *Validator) ValidateRequest(r *http.Request, opts RequestValidationOpts) error {
	const op = "Validator.ValidateRequest"

	if len(opts.AllowedMethods) > 0 {
		methodAllowed := false
		for _, method := range opts.AllowedMethods {
			if r.Method == method {
				methodAllowed = true
				break
			}
		}
		if !methodAllowed {
			return errors.InvalidInput(op, nil, fmt.Sprintf("Method %s not allowed", r.Method))
		}
	}

	if opts.RequireJSON {
		if contentType := r.Header.Get("Content-Type"); !strings.Contains(contentType, "application/json") {
			return errors.InvalidInput(op, nil, "Content-Type must be application/json")
		}
	}

	maxLen := opts.MaxContentLength
	if maxLen == 0 && v.config != nil {
		maxLen = v.config.MaxBodyBytes
	}
	if maxLen > 0 && r.ContentLength > maxLen {
		return errors.InvalidInput(op, nil, "Request body too large")
	}

	return nil
}
