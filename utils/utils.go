package utils

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/nijaru/yt-summarizer/models"
)

const defaultWidth = 80

// FormatText breaks plain transcript text into one sentence per line.
func FormatText(text string) string {
	text = strings.TrimSpace(text)
	var builder strings.Builder
	for _, char := range text {
		builder.WriteRune(char)
		if char == '.' || char == '!' || char == '?' {
			builder.WriteRune('\n')
		}
	}
	return builder.String()
}

// TerminalWidth returns the usable width of stdout, or 80 when stdout is not
// a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return defaultWidth
	}
	if width > 10 {
		return width - 4
	}
	return width
}

// RenderMarkdown renders content for the terminal with glamour.
func RenderMarkdown(content string, width int) (string, error) {
	if width <= 0 {
		width = defaultWidth
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
		glamour.WithColorProfile(termenv.EnvColorProfile()),
	)
	if err != nil {
		return "", fmt.Errorf("creating terminal renderer: %w", err)
	}

	out, err := r.Render(content)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return out, nil
}

// VideoMarkdown describes a video as a short markdown block.
func VideoMarkdown(meta *models.VideoMetadata) string {
	if meta == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", meta.Title)
	fmt.Fprintf(&b, "- **Author:** %s\n", meta.Author)
	if meta.Length > 0 {
		fmt.Fprintf(&b, "- **Length:** %s\n", FormatLength(meta.Length))
	}
	fmt.Fprintf(&b, "- **Views:** %d\n", meta.Views)
	if meta.PublishDate != "" {
		fmt.Fprintf(&b, "- **Published:** %s\n", meta.PublishDate)
	}
	if meta.URL != "" {
		fmt.Fprintf(&b, "- **URL:** %s\n", meta.URL)
	}
	if desc := strings.TrimSpace(meta.Description); desc != "" {
		fmt.Fprintf(&b, "\n%s\n", desc)
	}
	return b.String()
}

// SummaryMarkdown renders a summary result with a heading naming its format.
func SummaryMarkdown(title string, result *models.SummaryResult) string {
	if result == nil {
		return ""
	}

	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "# %s\n\n", title)
	}
	fmt.Fprintf(&b, "## Summary (%s)\n\n%s\n", result.Format, strings.TrimSpace(result.Summary))
	if result.AudioURL != nil {
		fmt.Fprintf(&b, "\nAudio: `%s`\n", *result.AudioURL)
	}
	return b.String()
}

// FormatLength renders seconds as h:mm:ss or m:ss.
func FormatLength(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
