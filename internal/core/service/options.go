package service

import (
	"github.com/yndnr/imgcarve/internal/storage/artifact"
	"github.com/yndnr/imgcarve/internal/telemetry/logger"
	"github.com/yndnr/imgcarve/internal/telemetry/metric"
)

type serviceOptions struct {
	logger  logger.Logger
	metrics *metric.Registry
	codec   artifact.Codec
}

// Option configures a service.
type Option func(*serviceOptions)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(o *serviceOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics records run metrics into r.
func WithMetrics(r *metric.Registry) Option {
	return func(o *serviceOptions) {
		o.metrics = r
	}
}

// WithCodec sets the image codec used for re-encoding.
func WithCodec(c artifact.Codec) Option {
	return func(o *serviceOptions) {
		o.codec = c
	}
}

func newOptions(opts []Option) serviceOptions {
	o := serviceOptions{logger: logger.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
