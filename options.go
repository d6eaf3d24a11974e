package treesit

// Option configures NewParser.
type Option func(*parserConfig)

type parserConfig struct {
	lang         *Language
	logger       Logger
	timeout      uint64
	cancellation bool
}

// WithLanguage binds a language. An incompatible language is ignored, as
// with SetLanguage.
func WithLanguage(lang *Language) Option {
	return func(c *parserConfig) { c.lang = lang }
}

// WithLogger installs a logger.
// If not set, no events are formatted (zero overhead).
func WithLogger(logger Logger) Option {
	return func(c *parserConfig) { c.logger = logger }
}

// WithTimeout sets the parse timeout in microseconds. Zero disables it.
func WithTimeout(micros uint64) Option {
	return func(c *parserConfig) { c.timeout = micros }
}

// WithCancellation enables the cancellation flag.
func WithCancellation() Option {
	return func(c *parserConfig) { c.cancellation = true }
}
