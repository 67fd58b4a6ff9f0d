package sfxbot

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/viant/afs"
	"github.com/viant/sfxbot/policy"
	"github.com/viant/sfxbot/service/command"
	dsubmission "github.com/viant/sfxbot/service/dao/submission"
	smemory "github.com/viant/sfxbot/service/dao/submission/memory"
	"github.com/viant/sfxbot/service/decision"
	"github.com/viant/sfxbot/service/expiry"
	"github.com/viant/sfxbot/service/input"
	"github.com/viant/sfxbot/service/intake"
	"github.com/viant/sfxbot/service/liveness"
	"github.com/viant/sfxbot/service/messaging"
	qmemory "github.com/viant/sfxbot/service/messaging/memory"
	"github.com/viant/sfxbot/service/notifier"
	"github.com/viant/sfxbot/service/platform"
	"github.com/viant/sfxbot/service/platform/discord"
	"github.com/viant/sfxbot/tracing"
	"golang.org/x/sync/errgroup"
)

const (
	serviceName = "sfxbot"
	// Version is the bot version reported in traces
	Version = "1.0.0"
)

// Gateway represents the inbound event source
type Gateway interface {
	Run(ctx context.Context, handler platform.Handler, specs []*platform.CommandSpec) error
	Latency() time.Duration
}

// Service represents the sfx moderation bot
type Service struct {
	config     *Config
	fs         afs.Service
	messenger  platform.Messenger
	gateway    Gateway
	gatewaySet bool
	store      dsubmission.Service
	outbox     messaging.Queue[notifier.Notification]
	policy     *policy.Policy
	inputs     *input.Registry

	intake    *intake.Service
	collector *decision.Collector
	notifier  *notifier.Service
	sweeper   *expiry.Sweeper
	router    *command.Router
	liveness  *liveness.Server
}

func (s *Service) init(options []Option) error {
	for _, option := range options {
		option(s)
	}
	if s.config.TraceFile != "" {
		if err := tracing.Init(serviceName, Version, s.config.TraceFile); err != nil {
			return fmt.Errorf("failed to init tracing: %w", err)
		}
	}
	if err := s.ensureBaseSetup(); err != nil {
		return err
	}
	rules := &intake.Rules{ContentTypes: s.config.AllowedContentTypes, MaxFileSize: s.config.MaxFileSize}
	s.inputs = input.New()
	s.intake = intake.New(s.messenger, s.store, s.config.ModerationChannelID, rules)
	s.notifier = notifier.New(s.messenger, s.config.AuditChannelID, s.outbox)
	s.collector = decision.New(s.messenger, s.store, s.inputs, s.policy, s.notifier, s.config.DecisionTimeout)
	s.sweeper = expiry.New(s.store, s.notifier, expiry.Config{TTL: s.config.SubmissionTTL, Retention: s.config.Retention, Interval: s.config.SweepInterval})
	var latency command.LatencyFunc
	if s.gateway != nil {
		latency = s.gateway.Latency
	}
	s.router = command.New(s.intake, s.collector, s.inputs, latency)
	if s.config.LivenessAddr != "" {
		s.liveness = liveness.New(s.config.LivenessAddr)
	}
	return nil
}

func (s *Service) ensureBaseSetup() error {
	if s.fs == nil {
		s.fs = afs.New()
	}
	if s.messenger == nil && !s.gatewaySet {
		session, err := discord.New(s.config.Token, s.config.ApplicationID, s.config.GuildID, s.fs)
		if err != nil {
			return fmt.Errorf("failed to create discord session: %w", err)
		}
		s.messenger, s.gateway = session.Messenger(), session
	}
	if s.messenger == nil {
		return fmt.Errorf("messenger was empty")
	}
	if s.store == nil {
		s.store = smemory.New()
	}
	if s.outbox == nil {
		config := qmemory.DefaultConfig()
		config.OnDeadLetter = func(id string, err error) {
			log.Printf("notifier: notification %v dead lettered: %v", id, err)
		}
		s.outbox = qmemory.NewQueue[notifier.Notification](config)
	}
	if s.policy == nil {
		s.policy = policy.FromConfig(&policy.Config{AllowRoles: []string{s.config.DeciderRoleID}, BlockUsers: s.config.BlockedUsers})
	}
	return nil
}

// Router returns the event handler
func (s *Service) Router() *command.Router {
	return s.router
}

// Store returns the submission store
func (s *Service) Store() dsubmission.Service {
	return s.store
}

// Run starts the gateway, notification dispatcher, expiry sweeper and
// liveness server, and blocks until ctx is done or any of them fails.
func (s *Service) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	if s.gateway != nil {
		g.Go(func() error { return s.gateway.Run(ctx, s.router, s.router.Commands()) })
	}
	g.Go(func() error { return s.notifier.Dispatch(ctx) })
	g.Go(func() error { return s.sweeper.Run(ctx) })
	if s.liveness != nil {
		g.Go(func() error { return s.liveness.Run(ctx) })
	}
	log.Printf("sfxbot: started, moderation channel %v, audit channel %v", s.config.ModerationChannelID, s.config.AuditChannelID)
	err := g.Wait()
	if shutdownErr := tracing.Shutdown(context.WithoutCancel(ctx)); shutdownErr != nil {
		log.Printf("sfxbot: failed to flush traces: %v", shutdownErr)
	}
	return err
}

// New creates a bot from a validated config
func New(config *Config, options ...Option) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	config.Init()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	ret := &Service{config: config}
	if err := ret.init(options); err != nil {
		return nil, err
	}
	return ret, nil
}
