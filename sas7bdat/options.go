package sas7bdat

import "go.uber.org/zap"

// Option configures a Reader.
type Option func(*readerOptions)

type readerOptions struct {
	logger *zap.Logger
}

func defaultOptions() *readerOptions {
	return &readerOptions{
		logger: zap.NewNop(),
	}
}

// WithLogger sets the logger used for decode diagnostics, including the
// non-fatal column-count mismatch warning.
func WithLogger(logger *zap.Logger) Option {
	return func(o *readerOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}
