package accel

import "github.com/gogpu/raytrace/rtcore"

type options struct {
	label string
	flags rtcore.BuildFlags
}

// Option configures a build.
type Option func(*options)

// WithLabel sets the debug label used for the build's buffers.
func WithLabel(label string) Option {
	return func(o *options) {
		o.label = label
	}
}

// WithBuildFlags sets the build flags. Bottom-level builds default to no
// flags, top-level builds to BuildFlagPreferFastTrace.
func WithBuildFlags(flags rtcore.BuildFlags) Option {
	return func(o *options) {
		o.flags = flags
	}
}

func newOptions(defaultFlags rtcore.BuildFlags, opts []Option) options {
	o := options{flags: defaultFlags}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
