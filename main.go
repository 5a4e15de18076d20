package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	outputJSON     bool
	rawOutput      bool
	language       string
	format         string
	withAudio      bool
	transcriptFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "yt-summarizer",
		Short: "Fetch YouTube metadata and transcripts and summarize them with an LLM",
		Long: `yt-summarizer serves a small web app and JSON API that resolves YouTube
video metadata, fetches transcripts, and generates text or spoken summaries.

Run without a subcommand to start the server.`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server.

Endpoints:
  GET  /get_video_info?url=...      Video metadata
  GET  /get_transcript?url=...      Transcript with its source
  POST /generate_summary            Summary, optionally with audio
  GET  /audio/{filename}            Generated audio
  GET  /health                      Health check`,
		RunE: runServe,
	}

	infoCmd := &cobra.Command{
		Use:   "info <youtube-url>",
		Short: "Show metadata for a video",
		Args:  cobra.ExactArgs(1),
		RunE:  runInfo,
	}

	transcriptCmd := &cobra.Command{
		Use:   "transcript <youtube-url>",
		Short: "Fetch and print a video transcript",
		Args:  cobra.ExactArgs(1),
		RunE:  runTranscript,
	}
	transcriptCmd.Flags().StringVar(&language, "lang", "", "Transcript language (default: DEFAULT_LANGUAGE)")

	summarizeCmd := &cobra.Command{
		Use:   "summarize [youtube-url]",
		Short: "Summarize a video, or a transcript file with --transcript-file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSummarize,
	}
	summarizeCmd.Flags().StringVar(&language, "lang", "", "Transcript language (default: DEFAULT_LANGUAGE)")
	summarizeCmd.Flags().StringVarP(&format, "format", "f", "text", "Summary format: text, bullet or detailed")
	summarizeCmd.Flags().BoolVar(&withAudio, "audio", false, "Also generate spoken audio")
	summarizeCmd.Flags().StringVar(&transcriptFile, "transcript-file", "", "Summarize this file instead of fetching a transcript")

	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Print results as JSON")
	rootCmd.PersistentFlags().BoolVar(&rawOutput, "raw", false, "Print plain text without terminal styling")

	rootCmd.AddCommand(serveCmd, infoCmd, transcriptCmd, summarizeCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
