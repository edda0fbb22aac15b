package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"cloudnerve-chat/handler"
	"cloudnerve-chat/internal/config"
	"cloudnerve-chat/internal/integrations/azureopenai"
	"cloudnerve-chat/internal/integrations/paramstore"
	"cloudnerve-chat/internal/usecase"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	persona, err := config.LoadPersona(cfg.PersonaFile)
	if err != nil {
		slog.Error("failed to load persona", "err", err)
		os.Exit(1)
	}

	apiKey := cfg.APIKey
	if apiKey == "" && cfg.APIKeyParam != "" {
		apiKey = resolveAPIKey(ctx, cfg.APIKeyParam)
	}
	if apiKey == "" {
		slog.Warn("azure api key not configured; /chat will report a configuration error")
	}
	if cfg.Endpoint == "" {
		slog.Warn("AZURE_ENDPOINT is not set")
	}

	// ---- Clients ----
	client, err := azureopenai.NewClient(cfg.Endpoint, cfg.Deployment, cfg.APIVersion, apiKey)
	if err != nil {
		slog.Error("failed to create Azure OpenAI client", "err", err)
		os.Exit(1)
	}

	chatService, err := usecase.NewChatService(client, usecase.Settings{
		SystemPrompt:        persona.Content,
		MaxCompletionTokens: cfg.MaxCompletionTokens,
		Temperature:         cfg.Temperature,
	}, logger)
	if err != nil {
		slog.Error("failed to create chat service", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	h, err := handler.NewHandler(chatService, logger)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	slog.Info("starting CloudNerve Chat API",
		"deployment", cfg.Deployment,
		"api_version", cfg.APIVersion,
		"persona", persona.Name,
	)

	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		lambda.Start(h.Handle)
		return
	}
	serve(cfg.Addr(), handler.NewRouter(h))
}

// resolveAPIKey reads the key from SSM Parameter Store. Failures leave the key
// unset so requests report a configuration error instead of the process exiting.
func resolveAPIKey(ctx context.Context, name string) string {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("failed to load AWS config", "err", err)
		return ""
	}
	ps, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
	if err != nil {
		slog.Error("failed to create SSM client", "err", err)
		return ""
	}
	key, err := ps.GetSecret(ctx, name)
	if err != nil {
		slog.Error("failed to read azure api key from parameter store", "param", name, "err", err)
		return ""
	}
	return key
}

func serve(addr string, h http.Handler) {
	server := &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		slog.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 35*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("graceful shutdown failed", "err", err)
		}
	}()

	slog.Info("listening", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}
