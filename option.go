package sfxbot

import (
	"github.com/viant/afs"
	"github.com/viant/sfxbot/policy"
	dsubmission "github.com/viant/sfxbot/service/dao/submission"
	"github.com/viant/sfxbot/service/messaging"
	"github.com/viant/sfxbot/service/notifier"
	"github.com/viant/sfxbot/service/platform"
	"github.com/viant/sfxbot/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option represents a service option
type Option func(s *Service)

// WithMessenger sets the messenger used by every workflow component
func WithMessenger(messenger platform.Messenger) Option {
	return func(s *Service) { s.messenger = messenger }
}

// WithGateway sets the event source; nil runs without a gateway
func WithGateway(gateway Gateway) Option {
	return func(s *Service) {
		s.gateway = gateway
		s.gatewaySet = true
	}
}

// WithStore sets the submission store
func WithStore(store dsubmission.Service) Option {
	return func(s *Service) { s.store = store }
}

// WithOutbox sets the notification queue
func WithOutbox(outbox messaging.Queue[notifier.Notification]) Option {
	return func(s *Service) { s.outbox = outbox }
}

// WithPolicy overrides the decider policy built from config
func WithPolicy(p *policy.Policy) Option {
	return func(s *Service) { s.policy = p }
}

// WithFileSystem sets the file system used to download attachments
func WithFileSystem(fs afs.Service) Option {
	return func(s *Service) { s.fs = fs }
}

// WithTracing configures OpenTelemetry tracing for the service. outputFile "-"
// selects stdout; the first successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom SpanExporter.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
