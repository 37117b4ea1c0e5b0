// Command rumiai runs the full analysis pipeline for one TikTok video.
//
//	rumiai <video_url>   full pipeline from a share URL
//	rumiai <video_id>    legacy mode over pre-populated ML outputs
//
// Exit codes: 0 success, 1 generic, 2 invalid arguments, 3 external API
// failure, 4 ML pipeline failure.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/TumiLabsJN/rumiai-go/config"
	"github.com/TumiLabsJN/rumiai-go/llm"
	"github.com/TumiLabsJN/rumiai-go/logging"
	"github.com/TumiLabsJN/rumiai-go/pipeline"
	"github.com/TumiLabsJN/rumiai-go/storage"
)

const (
	exitOK = iota
	exitGeneric
	exitInvalidArgs
	exitExternalAPI
	exitMLPipeline
)

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) != 2 || os.Args[1] == "" {
		fmt.Fprintln(os.Stderr, "usage: rumiai <video_url | video_id>")
		return exitInvalidArgs
	}
	arg := os.Args[1]

	// Informational logs render to stderr; stdout stays parseable
	level := new(slog.LevelVar)
	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	})
	slogger := slog.New(handler)
	logging.SetGlobalLogger(logging.FromSlog(slogger, level))

	settings := config.Load()
	if err := settings.Validate(); err != nil {
		logging.Error(err, "configuration invalid")
		if strings.Contains(err.Error(), "API_KEY") {
			return exitExternalAPI
		}
		return exitInvalidArgs
	}

	videoID := arg
	if strings.Contains(arg, "://") {
		// Acquisition runs outside this binary; a URL invocation still
		// requires the scraper credentials it hands off to.
		if settings.ApifyToken == "" {
			logging.Error(nil, "APIFY_API_TOKEN required for URL ingestion")
			return exitExternalAPI
		}
		videoID = pipeline.VideoIDFromURL(arg)
	}
	if videoID == "" {
		fmt.Fprintln(os.Stderr, "could not determine video id from argument")
		return exitInvalidArgs
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	capability, code := buildCapability(ctx, settings, slogger)
	if capability == nil {
		return code
	}

	var store *storage.PostgresStore
	if settings.DatabaseURL != "" {
		var err error
		store, err = storage.NewPostgresStore(ctx, settings.DatabaseURL)
		if err != nil {
			logging.Warn("feature-vector store unavailable",
				logging.Fields{"error": err.Error()})
		} else {
			defer store.Close()
		}
	}

	runner := pipeline.NewRunner(settings, pipeline.NewDiskSource(""),
		capability, store, nil)

	summary, err := runner.Run(ctx, videoID)
	if err != nil {
		logging.Error(err, "pipeline failed", logging.Fields{"video_id": videoID})
		return exitMLPipeline
	}
	if !summary.Success {
		return exitGeneric
	}
	return exitOK
}

func buildCapability(ctx context.Context, settings *config.Settings, slogger *slog.Logger) (llm.Capability, int) {
	switch settings.LLMProvider {
	case "ollama":
		capability, err := llm.NewOllamaCapability(ctx, slogger, "llama3.2:3b")
		if err != nil {
			logging.Error(err, "ollama provider unavailable")
			return nil, exitExternalAPI
		}
		return capability, exitOK
	default:
		return llm.NewClaudeClient(settings.ClaudeAPIKey, settings.ClaudeModel), exitOK
	}
}
