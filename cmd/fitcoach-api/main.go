package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/aaronromeo/fitcoach/internal/auth"
	"github.com/aaronromeo/fitcoach/internal/config"
	"github.com/aaronromeo/fitcoach/internal/httpapi"
	"github.com/aaronromeo/fitcoach/internal/llm"
	"github.com/aaronromeo/fitcoach/internal/llm/provider"
	"github.com/aaronromeo/fitcoach/internal/metrics"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	programLevel := slog.LevelInfo
	if cfg.Debug {
		programLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: programLevel}))
	slog.SetDefault(logger)

	verifier, err := newVerifier(cfg, logger)
	if err != nil {
		log.Fatal(err)
	}

	creds := llm.NewCredentials(config.OpenAIKey, func(apiKey string) (provider.Provider, error) {
		return provider.NewOpenAIProvider(
			provider.WithAPIKey(apiKey),
			provider.WithBaseURL(cfg.OpenaiBaseURL),
			provider.WithHTTPClient(&http.Client{Timeout: cfg.LlmTimeout + 5*time.Second}),
		)
	})

	opts := []llm.LLMClientOption{
		llm.WithCredentials(creds),
		llm.WithLogger(logger),
		llm.WithTimeout(cfg.LlmTimeout),
	}
	if cfg.SchemaCheck {
		checker, err := llm.NewSchemaChecker(llm.JSONParser{}, logger)
		if err != nil {
			log.Fatal(err)
		}
		opts = append(opts, llm.WithParser(checker))
	}
	coach, err := llm.New(opts...)
	if err != nil {
		log.Fatal(err)
	}

	// A missing key is not fatal: the lookup runs again on the first call.
	if _, err := creds.Provider(); err != nil {
		logger.Warn("provider not ready", "err", err)
	}

	app := httpapi.NewServer(httpapi.Deps{
		Coach:    coach,
		Verifier: verifier,
		Metrics:  metrics.New(),
		Logger:   logger,
	})
	log.Printf("listening on %s", cfg.Addr)
	if err := app.Listen(cfg.Addr); err != nil {
		log.Fatal(err)
	}
}

func newVerifier(cfg *config.Config, logger *slog.Logger) (auth.Verifier, error) {
	if cfg.AuthProvider == config.AuthProviderStatic {
		logger.Warn("using static auth tokens")
		return auth.ParseStaticTokens(cfg.AuthStaticTokens)
	}
	return auth.NewIdentityToolkitVerifier(cfg.IdentityToolkitURL, cfg.FirebaseWebAPIKey, logger), nil
}
