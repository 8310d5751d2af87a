package cli

import (
	"bufio"
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/obiajulum/padipay/internal/client/api"
	"github.com/obiajulum/padipay/internal/client/biometric"
	"github.com/obiajulum/padipay/internal/client/config"
	"github.com/obiajulum/padipay/internal/client/pin"
	"github.com/obiajulum/padipay/internal/client/securestore"
	"github.com/obiajulum/padipay/internal/client/session"
	"github.com/obiajulum/padipay/internal/client/settings"
	"github.com/obiajulum/padipay/internal/client/token"
	"github.com/obiajulum/padipay/internal/logging"
)

type App struct {
	config   *config.Config
	log      logging.Logger
	db       *sql.DB
	secure   *securestore.BoltStore
	settings *settings.Store
	tokens   *token.Service
	api      api.Client
	bio      *biometric.CredentialManager
	session  *session.Controller
	pins     *pin.Service
	gate     *pin.Gate
	reader   *bufio.Reader

	state session.State
	user  *api.User

	// lastAction is re-invoked by the retry command after a network failure.
	lastAction func(ctx context.Context) error
}

func NewApp(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, err
	}

	db, err := settings.InitDatabase(ctx, filepath.Join(cfg.DataDir, "settings.db"))
	if err != nil {
		return nil, err
	}
	st := settings.NewStore(db)

	secret, err := securestore.LoadOrCreateSecret(filepath.Join(cfg.DataDir, "device.secret"))
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	secure, err := securestore.OpenBolt(filepath.Join(cfg.DataDir, "secure.db"), secret)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	tokens := token.NewService(secure, st, log)

	apiClient := api.New(api.Options{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.RequestTimeout,
		Tokens:  tokens.Get,
		OnActivity: func(ctx context.Context) {
			if err := st.TouchActivity(ctx, time.Now()); err != nil {
				log.Warn(ctx, "failed to stamp activity time", "error", err)
			}
		},
		Logger: log,
	})

	reader := bufio.NewReader(os.Stdin)
	prompter := &terminalPrompter{reader: reader, out: os.Stdout}

	// The shell has no sensor; it simulates an enrolled fingerprint device.
	probe := biometric.StaticProbe{Capability: biometric.Capability{
		Available: true,
		Enrolled:  true,
		Type:      biometric.ModalityFingerprint,
	}}

	manager := biometric.NewCredentialManager(probe, prompter, apiClient, secure, st, log)

	ctrl := session.NewController(apiClient, tokens, manager, st, log)
	ctrl.SetProbeTimeout(cfg.SessionProbeTimeout)

	pins := pin.NewService(apiClient, log)
	gate := pin.NewGate(pins, prompter, manager, log)

	return &App{
		config:   cfg,
		log:      log,
		db:       db,
		secure:   secure,
		settings: st,
		tokens:   tokens,
		api:      apiClient,
		bio:      manager,
		session:  ctrl,
		pins:     pins,
		gate:     gate,
		reader:   reader,
		state:    session.StateResolving,
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx)
}

func (a *App) Close() {
	if err := a.secure.Close(); err != nil {
		a.log.Error(context.Background(), "closing secure store", "error", err)
	}
	if err := a.db.Close(); err != nil {
		a.log.Error(context.Background(), "closing settings database", "error", err)
	}
}

func (a *App) isLoggedIn() bool {
	return a.state == session.StateAuthenticated
}
