// Package app builds the handlers from the environment, once per process.
package app

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/pkg/errors"

	"github.com/prognoshealth/pathwayai/config"
	"github.com/prognoshealth/pathwayai/connections"
	"github.com/prognoshealth/pathwayai/handlers"
	"github.com/prognoshealth/pathwayai/lambdautils"
	"github.com/prognoshealth/pathwayai/llm"
	"github.com/prognoshealth/pathwayai/push"
	"github.com/prognoshealth/pathwayai/relay"
)

// App holds the configuration shared by every handler of a process.
type App struct {
	Config   *config.Config
	Profiles config.Profiles

	sess *session.Session
}

// Load reads the environment and the prompt profiles and configures logging.
func Load() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if err := lambdautils.ConfigureLogging(cfg.LogLevel); err != nil {
		return nil, err
	}

	profiles, err := config.LoadProfiles(cfg.ProfilesFile)
	if err != nil {
		return nil, err
	}

	return &App{Config: cfg, Profiles: profiles}, nil
}

// Session returns the aws session, creating it on first use.
func (a *App) Session() (*session.Session, error) {
	if a.sess != nil {
		return a.sess, nil
	}

	sess, err := session.NewSession(aws.NewConfig().WithRegion(a.Config.Region))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create aws session")
	}

	a.sess = sess
	return sess, nil
}

// LLM returns the provider client. It fails without an api key.
func (a *App) LLM() (*llm.Client, error) {
	if err := a.Config.RequireAPIKey(); err != nil {
		return nil, err
	}

	return llm.NewClient(a.Config.APIKey(), a.Config.OpenAIBaseURL), nil
}

// Coalescer returns the push coalescing configured by FLUSH_INTERVAL and
// FLUSH_BYTES.
func (a *App) Coalescer() relay.Coalescer {
	return relay.Coalescer{Interval: a.Config.FlushInterval, MaxBytes: a.Config.FlushBytes}
}

// Table returns the dynamodb connection table.
func (a *App) Table() (*connections.Table, error) {
	sess, err := a.Session()
	if err != nil {
		return nil, err
	}

	table := connections.NewTable(a.Config.Region, a.Config.ConnectionsTable, a.Config.ConnectionTTL, 0)
	return table.WithSession(sess), nil
}

// Chat returns the POST /chat handler.
func (a *App) Chat() (*handlers.Chat, error) {
	client, err := a.LLM()
	if err != nil {
		return nil, err
	}

	profile, err := a.Profiles.Get(config.ChatProfile)
	if err != nil {
		return nil, err
	}

	return handlers.NewChat(client, profile)
}

// SendMessage returns the streaming websocket handlers. They answer
// connections found in store and push through pushers.
func (a *App) SendMessage(store handlers.ConnectionStore, streamer llm.Streamer, pushers handlers.PusherFactory) (*handlers.SendMessage, error) {
	stream, err := a.Profiles.Get(config.StreamProfile)
	if err != nil {
		return nil, err
	}

	plan, err := a.Profiles.Get(config.LessonPlanProfile)
	if err != nil {
		return nil, err
	}

	return &handlers.SendMessage{
		Store:      store,
		Chat:       &relay.Relay{Streamer: streamer, Profile: stream, Coalescer: a.Coalescer()},
		LessonPlan: &relay.Relay{Streamer: streamer, Profile: plan},
		Pushers:    pushers,
		Endpoint:   a.Config.WebsocketEndpoint,
	}, nil
}

// Pushers returns a factory of management api clients, one per endpoint.
func (a *App) Pushers() (handlers.PusherFactory, error) {
	sess, err := a.Session()
	if err != nil {
		return nil, err
	}

	pool := push.NewPool(sess, a.Config.Region, a.Config.PushRate)
	return pool.For, nil
}
