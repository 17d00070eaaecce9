// Package cli implements dashctl, the terminal dashboard for the school
// records API.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-dashboard/internal/models"
	"github.com/noah-isme/sma-dashboard/internal/resource"
	"github.com/noah-isme/sma-dashboard/internal/service"
	"github.com/noah-isme/sma-dashboard/pkg/apiclient"
	"github.com/noah-isme/sma-dashboard/pkg/cache"
	"github.com/noah-isme/sma-dashboard/pkg/config"
	"github.com/noah-isme/sma-dashboard/pkg/credential"
	appErrors "github.com/noah-isme/sma-dashboard/pkg/errors"
)

// Record is the untyped form of any resource row.
type Record = map[string]interface{}

// MessageRelogin is printed when the server rejected the stored credential.
const MessageRelogin = "session expired, run dashctl login"

// Streams are the terminal handles a command talks to.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// StdStreams returns the process stdio.
func StdStreams() Streams {
	return Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// App holds the dependencies shared by every command.
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Tokens  *credential.Manager
	Client  *apiclient.Client
	Metrics *service.MetricsService
	Streams Streams
	Prompt  *Prompter

	session *resource.Session
	closers []func() error
}

// NewApp selects the credential store and builds the API client.
func NewApp(ctx context.Context, cfg *config.Config, streams Streams, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	app := &App{Config: cfg, Logger: logger, Streams: streams, Prompt: NewPrompter(streams.In, streams.Err)}

	store, err := app.credentialStore(ctx)
	if err != nil {
		return nil, err
	}
	app.Tokens = credential.NewManager(store, logger)
	app.session = resource.NewSession(app.Tokens, resource.NavigatorFunc(func() {
		fmt.Fprintln(streams.Err, MessageRelogin)
	}), logger)
	app.Metrics = service.NewMetricsService()

	client, err := apiclient.New(apiclient.Options{
		BaseURL:  cfg.Client.BaseURL,
		Timeout:  cfg.Client.Timeout,
		Tokens:   app.Tokens,
		Observer: app.Metrics,
		Logger:   logger,
	})
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Client = client
	return app, nil
}

func (a *App) credentialStore(ctx context.Context) (credential.Store, error) {
	switch a.Config.Credential.Store {
	case config.CredentialStoreMemory:
		return credential.NewMemoryStore(), nil
	case config.CredentialStoreRedis:
		client, err := cache.NewRedis(ctx, a.Config.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect credential redis: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		return credential.NewRedisStore(client, a.Config.Credential.RedisKey), nil
	case config.CredentialStoreFile, "":
		return credential.NewFileStore(a.Config.Credential.Dir)
	default:
		return nil, fmt.Errorf("unknown credential store %q", a.Config.Credential.Store)
	}
}

// Close releases connections opened by NewApp.
func (a *App) Close() error {
	var first error
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	_ = a.Logger.Sync()
	return first
}

// Endpoint returns the untyped client of res.
func (a *App) Endpoint(res models.Resource) *apiclient.Endpoint[Record] {
	return apiclient.NewEndpoint[Record](a.Client, res)
}

// Session clears the credential and tells the user to log in again, once
// per command run.
func (a *App) Session() resource.SessionHandler { return a.session }

// fail classifies err for display and expires the session on auth failures.
func (a *App) fail(ctx context.Context, err error) error {
	mutErr := appErrors.Classify(err)
	if mutErr.Kind == appErrors.KindAuth {
		a.session.Expired(ctx, err)
	}
	return mutErr
}

// Controller builds a screen controller for res.
func (a *App) Controller(res models.Resource, limit int, confirm resource.Confirmer, onChange func()) *resource.Controller[Record] {
	if limit <= 0 {
		limit = a.Config.Client.DefaultPageLimit
	}
	return resource.NewController[Record](a.Endpoint(res), resource.Options{
		Resource:    res,
		Limit:       limit,
		Debounce:    a.Config.Client.SearchDebounce,
		FeedbackTTL: a.Config.Client.FeedbackTTL,
		Confirmer:   confirm,
		Session:     a.Session(),
		OnChange:    onChange,
		Logger:      a.Logger,
	})
}

func lookup(name string) (models.Resource, error) {
	res, ok := models.LookupResource(name)
	if !ok {
		return models.Resource{}, fmt.Errorf("unknown resource %q", name)
	}
	return res, nil
}
