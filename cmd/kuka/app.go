package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"kukacrm/internal/advisor"
	"kukacrm/internal/auth"
	"kukacrm/internal/config"
	"kukacrm/internal/enrich"
	"kukacrm/internal/logging"
	"kukacrm/internal/store"
)

// app is the per-invocation wiring: one process is one session.
type app struct {
	ws       string
	cfg      *config.Config
	store    *store.RecordStore
	session  *auth.Session
	registry enrich.DocumentRegistry
	advisor  *advisor.Advisor
}

// newAdvisorModel builds the Gemini model. Replaced in tests.
var newAdvisorModel = func(ctx context.Context, cfg *config.Config) (advisor.Model, error) {
	if !cfg.HasGeminiKey() {
		return nil, nil
	}
	return advisor.NewGeminiModel(ctx, cfg.Gemini.APIKey, cfg.GetGeminiTimeout())
}

func resolveWorkspace() (string, error) {
	if workspace != "" {
		return workspace, nil
	}
	return os.Getwd()
}

// openApp loads config, opens the store and, when login is set, authenticates
// the global credentials.
func openApp(ctx context.Context, login bool) (*app, error) {
	ws, err := resolveWorkspace()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace: %w", err)
	}

	// Load first: it brings .env into the environment, and logging reads
	// KUKA_DEBUG from there.
	cfg, err := config.Load(config.DefaultPath(ws))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if err := logging.Initialize(ws); err != nil {
		logger.Warn("Logging disabled", zap.Error(err))
	}
	if err := logging.InitAudit(); err != nil {
		logger.Warn("Audit log disabled", zap.Error(err))
	}

	dbPath := cfg.DatabasePath(ws)
	logger.Debug("Opening record store",
		zap.String("driver", cfg.Storage.Driver),
		zap.String("path", dbPath))
	backend, err := store.OpenSQLite(cfg.Storage.Driver, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open record store: %w", err)
	}

	a := &app{
		ws:       ws,
		cfg:      cfg,
		store:    store.New(backend),
		session:  auth.NewSession(),
		registry: enrich.NewBrasilAPIRegistry(cfg.Registry.BaseURL, cfg.GetRegistryTimeout()),
	}

	if login {
		if err := a.login(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}

	model, err := newAdvisorModel(ctx, cfg)
	if err != nil {
		logger.Warn("Gemini unavailable, advisor disabled", zap.Error(err))
		model = nil
	}
	a.advisor = advisor.New(model, advisor.Config{
		AnalysisModel:    cfg.Gemini.AnalysisModel,
		MapsModel:        cfg.Gemini.MapsModel,
		ThinkingBudget:   cfg.Gemini.ThinkingBudget,
		BriefConcurrency: cfg.Gemini.BriefConcurrency,
	}).WithAudit(a.session.Audit())

	return a, nil
}

func (a *app) login(ctx context.Context) error {
	user, pass := username, password
	if user == "" {
		user = os.Getenv("KUKA_USER")
	}
	if pass == "" {
		pass = os.Getenv("KUKA_PASSWORD")
	}
	u, err := a.session.Login(ctx, a.store, user, pass)
	if err != nil {
		logger.Debug("Login failed", zap.String("user", user))
		return err
	}
	logger.Debug("Logged in",
		zap.String("user", u.Username),
		zap.String("role", string(u.Role)),
		zap.String("session", a.session.ID()))
	return nil
}

// Close ends the session and releases the store and log files.
func (a *app) Close() {
	a.session.Logout()
	if err := a.store.Close(); err != nil {
		logger.Warn("Failed to close record store", zap.Error(err))
	}
	logging.CloseAudit()
	logging.CloseAll()
}

func commandContext() (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), timeout)
}
