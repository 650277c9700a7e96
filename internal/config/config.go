package config

// Config is the common configuration for the concatenator CLI.
type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"INFO"`
	// MaxListeners bounds the output stream's inbound buffer, shared by
	// all concurrently delivering sources. Zero means unbuffered.
	MaxListeners int `env:"MAX_LISTENERS" envDefault:"64"`
	// SourceBufferSize is the per-source channel buffer size.
	SourceBufferSize int    `env:"SOURCE_BUFFER_SIZE"`
	HTTPHeaders      string `env:"HTTP_HEADERS"`
}

// NewConfig parses the environment variables and returns the common
// configuration.
func NewConfig(envs ...string) (*Config, error) {
	return parse[Config](envs...)
}
