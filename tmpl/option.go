package tmpl

import "github.com/ardnew/tfmt/log"

// DefaultMaxDepth bounds block nesting and helper call nesting when
// [WithMaxDepth] is not given.
var DefaultMaxDepth = 64

// Option configures parsing and rendering.
type Option func(*options)

type options struct {
	logger       log.Logger
	registry     *Registry
	locale       *Locale
	maxDepth     int
	maxOutput    int
	strict       bool
	trailingPass bool
}

func makeOptions(opts ...Option) options {
	o := options{maxDepth: DefaultMaxDepth}

	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}

// parseKey holds the options that affect the shape of a parsed Template.
type parseKey struct {
	maxDepth int
}

func (o options) parseKey() parseKey { return parseKey{maxDepth: o.maxDepth} }

// WithLogger sets the logger receiving trace events and recovered errors.
func WithLogger(logger log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithRegistry renders with reg instead of [DefaultRegistry].
func WithRegistry(reg *Registry) Option {
	return func(o *options) { o.registry = reg }
}

// WithLocale renders with l instead of [CurrentLocale].
func WithLocale(l Locale) Option {
	return func(o *options) { o.locale = &l }
}

// WithMaxDepth bounds block nesting and helper call nesting. Values below 1
// select [DefaultMaxDepth].
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		if depth < 1 {
			depth = DefaultMaxDepth
		}

		o.maxDepth = depth
	}
}

// WithMaxOutput bounds the rendered size in bytes. Zero means unbounded.
func WithMaxOutput(n int) Option {
	return func(o *options) { o.maxOutput = max(n, 0) }
}

// WithStrict makes unsafe access and evaluation errors fail the render
// instead of rendering the offending expression empty.
func WithStrict(strict bool) Option {
	return func(o *options) { o.strict = strict }
}

// WithTrailingPass enables one extra pass over the final element when a
// foreach block is given a truthy second argument.
func WithTrailingPass(enable bool) Option {
	return func(o *options) { o.trailingPass = enable }
}
