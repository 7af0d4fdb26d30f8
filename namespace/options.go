package namespace

import "log/slog"

// Option configures how namespaces are opened.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

func newOptions(opts []Option) options {
	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger used for skipped entries and resolution
// decisions. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
