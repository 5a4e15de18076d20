package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/nijaru/yt-summarizer/handlers/api"
	"github.com/nijaru/yt-summarizer/models"
	"github.com/nijaru/yt-summarizer/utils"
)

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), false)
	if err != nil {
		return err
	}

	server := api.NewServer(a.config,
		api.WithLogger(a.logger),
		api.WithServices(a.metadata, a.transcripts, a.summaries),
	)

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		defer close(done)
		<-shutdownChan

		ctx, cancel := context.WithTimeout(context.Background(), a.config.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			a.logger.WithError(err).Error("Server shutdown error")
		}
	}()

	if a.config.Debug {
		a.logger.Infof("Server starting on http://localhost:%s", a.config.ServerPort)
	}

	if err := server.Start(); err != nil && err != http.ErrServerClosed {
		return pkgerrors.Wrap(err, "server error")
	}

	<-done
	a.logger.Info("Server stopped")
	return nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), true)
	if err != nil {
		return err
	}

	if err := a.validator.ValidateURL(args[0]); err != nil {
		return describe(err)
	}

	meta, err := a.metadata.Resolve(cmd.Context(), args[0])
	if err != nil {
		return describe(err)
	}

	if outputJSON {
		return printJSON(meta)
	}
	return printMarkdown(utils.VideoMarkdown(meta))
}

func runTranscript(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), true)
	if err != nil {
		return err
	}

	if err := a.validator.ValidateURL(args[0]); err != nil {
		return describe(err)
	}

	result, err := a.transcripts.Fetch(cmd.Context(), args[0], language)
	if err != nil {
		return describe(err)
	}

	if outputJSON {
		return printJSON(result)
	}
	fmt.Fprintf(os.Stderr, "→ Source: %s\n", result.Source)
	fmt.Println(utils.FormatText(result.Transcript.String()))
	return nil
}

func runSummarize(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && transcriptFile == "" {
		return pkgerrors.New("a YouTube URL or --transcript-file is required")
	}

	a, err := newApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	var title, transcript string
	if transcriptFile != "" {
		data, err := os.ReadFile(transcriptFile)
		if err != nil {
			return pkgerrors.Wrap(err, "read transcript file")
		}
		transcript = string(data)
	} else {
		url := args[0]
		if err := a.validator.ValidateURL(url); err != nil {
			return describe(err)
		}
		if meta, err := a.metadata.Resolve(ctx, url); err == nil {
			title = meta.Title
		}

		fmt.Fprintln(os.Stderr, "→ Fetching transcript...")
		result, err := a.transcripts.Fetch(ctx, url, language)
		if err != nil {
			return describe(err)
		}
		transcript = result.Transcript.String()
		fmt.Fprintf(os.Stderr, "→ Transcript from %s (%d chars)\n", result.Source, len(transcript))
	}

	fmt.Fprintln(os.Stderr, "→ Generating summary...")
	summary, err := a.summaries.Generate(ctx, models.SummaryRequest{
		Transcript:    transcript,
		Format:        models.SummaryFormat(strings.ToLower(format)),
		GenerateAudio: withAudio,
	})
	if err != nil {
		return describe(err)
	}

	if outputJSON {
		return printJSON(summary)
	}
	if rawOutput {
		fmt.Println(summary.Summary)
		return nil
	}
	return printMarkdown(utils.SummaryMarkdown(title, summary))
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printMarkdown(md string) error {
	if rawOutput {
		fmt.Print(md)
		return nil
	}
	out, err := utils.RenderMarkdown(md, utils.TerminalWidth())
	if err != nil {
		fmt.Print(md)
		return nil
	}
	fmt.Print(out)
	return nil
}
