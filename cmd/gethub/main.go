package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"

	"github.com/gethub-app/gethub/internal/grading"
	"github.com/gethub-app/gethub/internal/handler"
	appI18n "github.com/gethub-app/gethub/internal/i18n"
	"github.com/gethub-app/gethub/internal/llm"
	"github.com/gethub-app/gethub/internal/model"
	"github.com/gethub-app/gethub/internal/storage"
	"github.com/gethub-app/gethub/internal/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gethub",
		Short: "Exam preparation platform with AI practice exams and coaching",
	}

	serve := serveCmd()
	root.AddCommand(serve, exportCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `gethub --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("mongo-uri", "mongodb://localhost:27017", "MongoDB connection URI")
	f.String("mongo-db", "gethub", "MongoDB database name")
	f.String("llm-provider", "gemini", "Model provider (gemini, openai)")
	f.String("gemini-key", "", "Gemini API key (or set GETHUB_GEMINI_KEY)")
	f.String("gemini-model", "", "Gemini model name (default gemini-2.0-flash)")
	f.String("gemini-speech-model", "", "Gemini speech model name")
	f.String("openai-key", "", "OpenAI API key (or set GETHUB_OPENAI_KEY)")
	f.String("openai-model", "", "OpenAI model name (default gpt-4o-mini)")
	f.String("openai-url", "", "OpenAI-compatible API base URL")
	f.StringP("lang", "l", "en", "Default response language (en, hi, te)")
	f.String("uploads-dir", "uploads", "Directory for uploaded gallery images")
	f.String("public-url", "", "Public base URL used in uploaded image links")
	f.Bool("secure-cookies", true, "Set Secure flag on session cookies")
	f.String("admin-email", "admin@gethub.local", "Initial admin email")
	f.String("admin-password", "", "Initial admin password (or set GETHUB_ADMIN_PASSWORD)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a user's graded attempts as JSON",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("mongo-uri", "mongodb://localhost:27017", "MongoDB connection URI")
	f.String("mongo-db", "gethub", "MongoDB database name")
	f.String("user-id", "", "User to export (required)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")

	_ = cmd.MarkFlagRequired("user-id")

	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("GETHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("gethub")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/gethub")
	v.AddConfigPath("/etc/gethub")
	v.AddConfigPath("/data")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func providerConfig(v *viper.Viper) llm.Config {
	return llm.Config{
		Provider: v.GetString("llm-provider"),
		Gemini: llm.GeminiConfig{
			APIKey:      v.GetString("gemini-key"),
			Model:       v.GetString("gemini-model"),
			SpeechModel: v.GetString("gemini-speech-model"),
		},
		OpenAI: llm.OpenAIConfig{
			APIKey:  v.GetString("openai-key"),
			Model:   v.GetString("openai-model"),
			BaseURL: v.GetString("openai-url"),
		},
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	ctx := cmd.Context()

	db, err := store.New(ctx, v.GetString("mongo-uri"), v.GetString("mongo-db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = db.Close(shutdownCtx)
	}()

	// Seed default admin user if no users exist.
	if err := seedAdmin(ctx, db, v.GetString("admin-email"), v.GetString("admin-password")); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	provider, err := llm.NewProvider(ctx, providerConfig(v))
	if err != nil {
		return fmt.Errorf("create model provider: %w", err)
	}
	// Not every provider can synthesize speech; coach audio degrades
	// to the canned clip when none is available.
	speech, _ := provider.(llm.SpeechProvider)
	if speech == nil {
		slog.Warn("provider has no speech synthesis, coach audio will use the fallback clip",
			"provider", v.GetString("llm-provider"))
	}
	slog.Info("model provider ready", "provider", v.GetString("llm-provider"), "model", provider.ModelID())

	blobs, err := storage.NewFileStore(v.GetString("uploads-dir"), v.GetString("public-url"))
	if err != nil {
		return fmt.Errorf("create upload store: %w", err)
	}

	grader := grading.New(provider, db, slog.Default())

	cfg := model.Config{
		SecureCookies: v.GetBool("secure-cookies"),
		UploadsDir:    v.GetString("uploads-dir"),
		PublicBaseURL: v.GetString("public-url"),
	}
	h := handler.New(db, provider, speech, grader, blobs, cfg)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware(lang))
	h.Routes(r)

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"provider", v.GetString("llm-provider"),
		"model", provider.ModelID(),
		"mongo_db", v.GetString("mongo-db"),
		"lang", lang,
		"uploads_dir", cfg.UploadsDir,
	)
	return http.ListenAndServe(addr, r)
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	ctx := cmd.Context()

	db, err := store.New(ctx, v.GetString("mongo-uri"), v.GetString("mongo-db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = db.Close(shutdownCtx)
	}()

	export, err := db.ExportUserAttempts(ctx, v.GetString("user-id"))
	if err != nil {
		return fmt.Errorf("export attempts: %w", err)
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	// Ensure trailing newline.
	_, _ = fmt.Fprintln(w)

	return nil
}

func seedAdmin(ctx context.Context, db *store.Store, email, password string) error {
	count, err := db.UserCount(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if password == "" {
		return fmt.Errorf("admin password is required: set --admin-password flag or GETHUB_ADMIN_PASSWORD env var")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	_, err = db.CreateUser(ctx, model.User{
		Email:        email,
		DisplayName:  "Administrator",
		PasswordHash: string(hash),
		Role:         model.UserRoleAdmin,
		Active:       true,
	})
	if err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	slog.Info("seeded default admin user", "email", email)
	return nil
}
