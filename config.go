package skema

import (
	"log/slog"
	"sync"

	"github.com/reoring/skema/i18n"
)

// Config holds the process-independent settings a parse runs with. A Config is
// passed explicitly through ParseOpt; there is no global override state.
type Config struct {
	// Locale selects the built-in messages ("en", "ja").
	Locale string
	// ErrorMap sits between node error maps and the built-in messages.
	ErrorMap ErrorMap
	// Translator replaces the built-in messages when set.
	Translator i18n.Translator
	Logger     *slog.Logger
}

// Option is a functional option for configuring a Config.
type Option func(*Config)

// WithLocale selects the built-in message language. Unsupported languages fall
// back to English.
func WithLocale(locale string) Option {
	return func(c *Config) {
		if lang, ok := i18n.Match(locale); ok {
			c.Locale = lang
		}
	}
}

// WithErrorMap installs a configuration-wide error map.
func WithErrorMap(m ErrorMap) Option {
	return func(c *Config) {
		c.ErrorMap = m
	}
}

// WithTranslator replaces the built-in dictionary.
// If tr is nil, the dictionary for the configured locale is used.
func WithTranslator(tr i18n.Translator) Option {
	return func(c *Config) {
		c.Translator = tr
	}
}

// WithLogger configures parses with a custom logger.
// If logger is nil, logging will be disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// NewConfig returns a Config with the environment locale and a discarding
// logger, adjusted by opts.
func NewConfig(opts ...Option) *Config {
	c := &Config{Locale: i18n.DefaultLocale()}
	for _, opt := range opts {
		opt(c)
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	return c
}

var defaultConfig = sync.OnceValue(func() *Config { return NewConfig() })

// DefaultConfig returns the Config used when ParseOpt.Config is nil.
func DefaultConfig() *Config { return defaultConfig() }

func (c *Config) translator() i18n.Translator {
	if c.Translator != nil {
		return c.Translator
	}
	return i18n.For(c.Locale)
}

// Severity expresses the severity level for input decoding findings.
type Severity int

const (
	SeverityIgnore Severity = iota
	SeverityWarn
	SeverityError
)

// Strictness configures enforcement applied by ParseJSON and ParseYAML.
type Strictness struct {
	OnDuplicateKey Severity // Warn or Error (duplicate JSON keys).
}

// ParseOpt bundles parsing options. When several are passed, the last one wins.
type ParseOpt struct {
	// ErrorMap has the highest priority in message selection.
	ErrorMap ErrorMap
	// Path prefixes every issue path.
	Path Path
	// Config defaults to DefaultConfig().
	Config *Config
	// MaxConcurrency bounds the goroutines one async container fans out to.
	// Zero means unbounded.
	MaxConcurrency int
	// FailFast stops container iteration after the first issue in sync mode.
	FailFast bool

	// Decoding settings used by ParseJSON/ParseYAML.
	Strictness Strictness
	MaxDepth   int
	MaxBytes   int64
	NumberMode NumberMode
}

func lastOpt(opts []ParseOpt) ParseOpt {
	var opt ParseOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	if opt.Config == nil {
		opt.Config = DefaultConfig()
	}
	return opt
}
