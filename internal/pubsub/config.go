package pubsub

// TracingSettings is the subset of application configuration that controls
// bus tracing. config.Provider satisfies it.
type TracingSettings interface {
	GetTracingEnabled() bool
	GetTracingServiceName() string
	GetTracingZipkinURL() string
}

// TracingConfigFrom builds a TracingConfig from application settings,
// keeping the defaults for any blank value. A nil s yields the defaults.
func TracingConfigFrom(s TracingSettings) TracingConfig {
	cfg := DefaultTracingConfig()
	if s == nil {
		return cfg
	}

	cfg.Enabled = s.GetTracingEnabled()
	if name := s.GetTracingServiceName(); name != "" {
		cfg.ServiceName = name
	}
	if url := s.GetTracingZipkinURL(); url != "" {
		cfg.ZipkinURL = url
	}
	return cfg
}
