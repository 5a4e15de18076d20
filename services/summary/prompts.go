package summary

import "github.com/nijaru/yt-summarizer/models"

var templates = map[models.SummaryFormat]string{
	models.FormatText: "Create a concise summary of the video transcript in a clear, engaging format. " +
		"Focus on the main points and key takeaways.",

	models.FormatBullet: "Create a bullet-point summary of the main points from the video transcript. Include:\n" +
		" • Key concepts and ideas\n" +
		" • Important facts and figures\n" +
		" • Main conclusions or takeaways",

	models.FormatDetailed: "Create a detailed, structured summary of the video content including:\n" +
		" 1. Main Topic/Theme\n" +
		" 2. Key Points (with timestamps if available)\n" +
		" 3. Important Details and Examples\n" +
		" 4. Conclusions or Final Thoughts\n" +
		" 5. Additional Resources or References (if mentioned)",
}

// buildPrompt picks the template for format, falling back to the plain text
// template for unknown formats, and appends the transcript.
func buildPrompt(format models.SummaryFormat, transcript string) string {
	tmpl, ok := templates[format]
	if !ok {
		tmpl = templates[models.FormatText]
	}
	return tmpl + "\n\nTranscript:\n" + transcript
}
