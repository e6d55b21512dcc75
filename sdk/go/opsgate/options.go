package opsgate

import "log/slog"

// Option configures a Client at creation time.
type Option func(*clientConfig)

type clientConfig struct {
	configPath string
	principles []string
	auditSink  string
	actor      string
	overrides  map[string]string
	logger     *slog.Logger
}

// WithConfig sets the path to a config YAML file.
func WithConfig(path string) Option {
	return func(c *clientConfig) { c.configPath = path }
}

// WithPrinciples restricts evaluation to the named principles.
// Overrides the config file's active_principles.
func WithPrinciples(names ...string) Option {
	return func(c *clientConfig) { c.principles = names }
}

// WithAuditSink sets the JSONL audit persistence path.
// Overrides the config file's audit_sink.
func WithAuditSink(path string) Option {
	return func(c *clientConfig) { c.auditSink = path }
}

// WithActor sets the actor recorded on audit operation entries.
func WithActor(actor string) Option {
	return func(c *clientConfig) { c.actor = actor }
}

// WithRecoveryOverrides fixes recovery strategies per component,
// replacing the status-based defaults.
func WithRecoveryOverrides(overrides map[string]string) Option {
	return func(c *clientConfig) { c.overrides = overrides }
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *clientConfig) { c.logger = logger }
}

// ExecuteOption configures a single Execute call.
type ExecuteOption func(*executeConfig)

type executeConfig struct {
	component string
}

// ExecuteAsComponent also records a health check for the named component
// from the operation's duration and outcome.
func ExecuteAsComponent(component string) ExecuteOption {
	return func(e *executeConfig) { e.component = component }
}
