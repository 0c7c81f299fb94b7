package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ajramos/inboxtui/internal/api"
	"github.com/ajramos/inboxtui/internal/config"
	"github.com/ajramos/inboxtui/internal/db"
	"github.com/ajramos/inboxtui/internal/gmail"
	"github.com/ajramos/inboxtui/internal/llm"
	"github.com/ajramos/inboxtui/internal/logging"
	"github.com/ajramos/inboxtui/internal/services"
	"github.com/ajramos/inboxtui/internal/shortcuts"
	"github.com/ajramos/inboxtui/internal/tui"
	"github.com/ajramos/inboxtui/internal/version"
	"github.com/ajramos/inboxtui/internal/viewstate"
	"github.com/ajramos/inboxtui/pkg/auth"
	"github.com/rs/zerolog"
	gmailapi "google.golang.org/api/gmail/v1"
)

func main() {
	configPathFlag := flag.String("config", "", "Path to JSON configuration file (default: ~/.config/inboxtui/config.json)")
	credPathFlag := flag.String("credentials", "", "Path to OAuth client credentials JSON for the gmail backend")
	setupFlag := flag.Bool("setup", false, "Write a default configuration file and exit")
	versionFlag := flag.Bool("version", false, "Show version information and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n\n", version.GetVersionString())
		fmt.Fprintf(os.Stderr, "Usage:\n  %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  INBOXTUI_CONFIG       Override default config file path\n")
		fmt.Fprintf(os.Stderr, "  INBOXTUI_CREDENTIALS  Override default credentials file path\n")
		fmt.Fprintf(os.Stderr, "  INBOXTUI_TOKEN        Override default token file path\n")
	}
	flag.Parse()

	if *versionFlag {
		fmt.Println(version.GetDetailedVersionString())
		return
	}

	configPath := getConfigPath(*configPathFlag)
	if *setupFlag {
		if err := runSetup(configPath); err != nil {
			log.Fatalf("setup failed: %v", err)
		}
		return
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Could not load configuration %s: %v", configPath, err)
	}

	logFile, err := logging.OpenFile(cfg.GetLogPath(), cfg.LogLevel)
	if err != nil {
		log.Printf("Warning: logging disabled: %v", err)
	} else {
		defer logFile.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *credPathFlag); err != nil {
		logging.Logger.Error().Err(err).Msg("inboxtui exited with error")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires the backend, services and UI and blocks until the UI exits
func run(ctx context.Context, cfg *config.Config, credFlag string) error {
	logger := logging.Logger
	logger.Info().Str("version", version.GetVersionString()).Str("backend", cfg.Backend).Msg("starting")

	keys, err := shortcuts.New(cfg.Keys)
	if err != nil {
		return fmt.Errorf("invalid key bindings: %w", err)
	}
	palettes, err := config.LoadPalettes(cfg.Theme.PaletteFile)
	if err != nil {
		logger.Warn().Err(err).Msg("using built-in palettes")
	}

	be, err := newBackend(ctx, cfg, credFlag, logger)
	if err != nil {
		return err
	}

	var store *db.Store
	if st, err := db.Open(ctx, cfg.GetCachePath()); err == nil {
		store = st
		defer store.Close()
	} else {
		logger.Warn().Err(err).Msg("local store unavailable; preferences and summaries will not persist")
	}

	bus := services.NewEventBus()
	cache, err := services.NewQueryCache(be.repo, be.ai, cfg.API.PageSize, logging.Component("cache"))
	if err != nil {
		return err
	}
	cache.Attach(bus)

	var summaries services.CacheService
	var prefs services.PreferenceStore
	if store != nil {
		if cfg.LLM.CacheEnabled {
			summaries = services.NewCacheService(db.NewCacheStore(store), be.source)
		}
		prefs = db.NewPrefStore(store)
	}
	var aiSvc services.AIService
	if be.ai != nil {
		aiSvc = services.NewAIService(be.ai, summaries, logging.Component("ai"))
	}
	theme := services.NewThemeService(prefs, cfg.Theme.DarkDefault, logging.Component("theme"))

	app := tui.NewApp(ctx, tui.Options{
		Config:     cfg,
		Dispatcher: keys,
		Labels:     services.NewLabelService(be.repo, cache, bus),
		Compose:    services.NewComposeService(be.repo, bus),
		AI:         aiSvc,
		Palettes:   palettes,
		Log:        logging.Component("tui"),
	})
	orch := viewstate.New(viewstate.Deps{
		Reader:  cache,
		Mutator: services.NewMutationService(be.repo, cache, bus, logging.Component("mutation")),
		Theme:   theme,
		AI:      aiSvc,
		Bus:     bus,
		Effects: app,
		Runner:  viewstate.Go,
		Log:     logging.Component("viewstate"),
	})
	app.Bind(orch)

	go func() {
		<-ctx.Done()
		app.Stop()
	}()
	return app.Run()
}

// backend is the mail repository plus the AI assist source for it
type backend struct {
	repo   services.MailRepository
	ai     services.AIBackend
	source string
}

func newBackend(ctx context.Context, cfg *config.Config, credFlag string, logger zerolog.Logger) (backend, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case config.BackendREST, "":
		client, err := api.New(api.Options{
			BaseURL:           cfg.API.BaseURL,
			Token:             cfg.API.Token,
			Timeout:           cfg.GetAPITimeout(),
			RequestsPerSecond: cfg.API.RequestsPerSecond,
			Log:               logging.Component("api"),
		})
		if err != nil {
			return backend{}, err
		}
		return backend{repo: client, ai: client, source: "api:" + cfg.API.BaseURL}, nil

	case config.BackendGmail:
		credPath := getCredentialsPath(credFlag, cfg.Gmail.Credentials)
		tokenPath := getTokenPath(cfg.Gmail.Token)
		if _, err := os.Stat(credPath); err != nil {
			return backend{}, fmt.Errorf("credentials file not found at %s: download OAuth client credentials from Google Cloud Console", credPath)
		}
		svc, err := auth.NewGmailService(ctx, credPath, tokenPath, gmailapi.GmailModifyScope)
		if err != nil {
			return backend{}, fmt.Errorf("could not initialize Gmail service: %w", err)
		}
		be := backend{repo: gmail.NewBackend(svc), source: "gmail"}
		if !cfg.LLM.Enabled {
			return be, nil
		}
		provider, err := llm.NewProviderFromConfig(ctx, cfg.LLM, cfg.GetLLMTimeout())
		if err != nil {
			logger.Warn().Err(err).Str("provider", cfg.LLM.Provider).Msg("AI assistance disabled")
			return be, nil
		}
		be.ai = llm.NewAssistant(provider, be.repo, llm.Prompts{
			Summarize: cfg.LLM.GetSummarizePrompt(),
			Compose:   cfg.LLM.GetComposePrompt(),
		})
		return be, nil
	}
	return backend{}, fmt.Errorf("unknown backend %q (want %q or %q)", cfg.Backend, config.BackendREST, config.BackendGmail)
}

// getConfigPath returns the configuration file path using the following priority:
// 1. CLI flag
// 2. Environment variable INBOXTUI_CONFIG
// 3. Default path ~/.config/inboxtui/config.json
func getConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envPath := os.Getenv("INBOXTUI_CONFIG"); envPath != "" {
		return config.ExpandPath(envPath)
	}
	return config.DefaultConfigPath()
}

// getCredentialsPath: flag, INBOXTUI_CREDENTIALS, config file, default
func getCredentialsPath(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envPath := os.Getenv("INBOXTUI_CREDENTIALS"); envPath != "" {
		return config.ExpandPath(envPath)
	}
	if configValue != "" {
		return config.ExpandPath(configValue)
	}
	credPath, _ := config.DefaultCredentialPaths()
	return credPath
}

// getTokenPath: INBOXTUI_TOKEN, config file, default
func getTokenPath(configValue string) string {
	if envPath := os.Getenv("INBOXTUI_TOKEN"); envPath != "" {
		return config.ExpandPath(envPath)
	}
	if configValue != "" {
		return config.ExpandPath(configValue)
	}
	_, tokenPath := config.DefaultCredentialPaths()
	return tokenPath
}

// runSetup writes the default configuration unless one already exists
func runSetup(path string) error {
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("Configuration file already exists: %s\n", path)
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := config.DefaultConfig().SaveConfig(path); err != nil {
		return err
	}
	fmt.Printf("Created configuration file: %s\n", path)
	fmt.Println("Edit it to choose the backend (rest or gmail) and the API address.")
	return nil
}
