// Package dependency wires the concierge services using go.uber.org/dig.
package dependency

import (
	"fmt"
	"log/slog"
	"time"

	"go.uber.org/dig"
	"gorm.io/gorm"

	"github.com/concierge/concierge/internal/appointment"
	"github.com/concierge/concierge/internal/chatstore"
	"github.com/concierge/concierge/internal/config"
	"github.com/concierge/concierge/internal/geocode"
	"github.com/concierge/concierge/internal/notify"
	"github.com/concierge/concierge/internal/orchestrator"
	"github.com/concierge/concierge/internal/providers"
	"github.com/concierge/concierge/internal/schema"
	"github.com/concierge/concierge/internal/server"
	"github.com/concierge/concierge/internal/storage"
	"github.com/concierge/concierge/internal/sweeper"
	"github.com/concierge/concierge/internal/tools"
	"github.com/concierge/concierge/internal/weather"
)

// Container holds the resolved service singletons.
// Callers use the typed getter methods; they never need to import dig directly.
type Container struct {
	provider     schema.LLMProvider
	orchestrator *orchestrator.Orchestrator
	server       *server.Server
	sweeper      *sweeper.Sweeper
	appts        *appointment.Service
	chats        *chatstore.Service
	cfg          *config.Config
}

func (c *Container) Provider() schema.LLMProvider          { return c.provider }
func (c *Container) Orchestrator() *orchestrator.Orchestrator { return c.orchestrator }
func (c *Container) Server() *server.Server                { return c.server }
func (c *Container) Sweeper() *sweeper.Sweeper             { return c.sweeper }
func (c *Container) Appointments() *appointment.Service    { return c.appts }
func (c *Container) Chats() *chatstore.Service             { return c.chats }
func (c *Container) Config() *config.Config                { return c.cfg }

// New builds and wires all services from cfg.
func New(cfg *config.Config) (*Container, error) {
	d := dig.New()

	constructors := []any{
		func() *config.Config { return cfg },
		newProvider,
		storage.Open,
		newAppointmentRepository,
		newChatRepository,
		newNotifyManager,
		newAppointmentService,
		newChatService,
		newWeatherClient,
		newGeocodeClient,
		newRegistry,
		newOrchestrator,
		newServer,
		newSweeper,
	}
	for _, ctor := range constructors {
		if err := d.Provide(ctor); err != nil {
			return nil, fmt.Errorf("wire services: %w", err)
		}
	}

	var result *Container
	err := d.Invoke(func(
		provider schema.LLMProvider,
		orch *orchestrator.Orchestrator,
		srv *server.Server,
		swp *sweeper.Sweeper,
		appts *appointment.Service,
		chats *chatstore.Service,
	) {
		result = &Container{
			provider:     provider,
			orchestrator: orch,
			server:       srv,
			sweeper:      swp,
			appts:        appts,
			chats:        chats,
			cfg:          cfg,
		}
	})
	if err != nil {
		return nil, fmt.Errorf("resolve services: %w", err)
	}
	return result, nil
}

func newProvider(cfg *config.Config) (schema.LLMProvider, error) {
	if cfg.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("no OpenAI API key configured, set OPENAI_API_KEY or edit %s", config.ConfigPath())
	}
	return providers.New(cfg.OpenAI.APIKey, cfg.OpenAI.APIBase, cfg.OpenAI.Model), nil
}

func newAppointmentRepository(db *gorm.DB) appointment.Repository {
	return storage.NewAppointmentRepository(db)
}

func newChatRepository(db *gorm.DB) chatstore.Repository {
	return storage.NewChatRepository(db)
}

func newNotifyManager(cfg *config.Config) *notify.Manager {
	var notifiers []notify.Notifier
	if t := cfg.Notifications.Telegram; t.Enabled {
		n, err := notify.NewTelegramNotifier(t.Token, t.ChatID)
		if err != nil {
			slog.Warn("telegram notifier disabled", "error", err)
		} else {
			notifiers = append(notifiers, n)
		}
	}
	if s := cfg.Notifications.Slack; s.Enabled && s.WebhookURL != "" {
		notifiers = append(notifiers, notify.NewSlackNotifier(s.WebhookURL))
	}
	return notify.NewManager(notifiers...)
}

func newAppointmentService(repo appointment.Repository, mgr *notify.Manager) *appointment.Service {
	return appointment.NewService(repo, mgr)
}

func newChatService(repo chatstore.Repository) *chatstore.Service {
	return chatstore.NewService(repo)
}

func newWeatherClient(cfg *config.Config) *weather.Client {
	return weather.NewClient(cfg.OpenWeatherMap.APIKey, cfg.OpenWeatherMap.APIBase)
}

func newGeocodeClient(cfg *config.Config) *geocode.Client {
	return geocode.NewClient(cfg.Geocode.APIBase)
}

func newRegistry(wc *weather.Client, gc *geocode.Client, appts *appointment.Service) *tools.Registry {
	return tools.DefaultRegistry(wc, gc, appts)
}

func newOrchestrator(provider schema.LLMProvider, registry *tools.Registry, cfg *config.Config) *orchestrator.Orchestrator {
	opts := schema.NewChatOptions(cfg.OpenAI.Model, cfg.OpenAI.MaxTokens, cfg.OpenAI.Temperature)
	return orchestrator.New(provider, registry, opts)
}

func newServer(orch *orchestrator.Orchestrator, chats *chatstore.Service) *server.Server {
	return server.New(orch, chats)
}

func newSweeper(appts *appointment.Service, mgr *notify.Manager, cfg *config.Config) *sweeper.Sweeper {
	lead := time.Duration(cfg.Sweeper.ReminderLeadMinutes) * time.Minute
	return sweeper.New(appts, mgr, cfg.Sweeper.Schedule, lead)
}
