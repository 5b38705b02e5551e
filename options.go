package heatmap

import "time"

// Option configures a Dispatcher during creation.
//
// Example:
//
//	d := heatmap.NewDispatcher(host,
//	    heatmap.WithWatchInterval(250*time.Millisecond),
//	)
type Option func(*options)

// options holds optional configuration for Dispatcher creation.
type options struct {
	clock         Clock
	watchInterval time.Duration
	registry      *Registry
}

// defaultOptions returns the default dispatcher options.
func defaultOptions() options {
	return options{
		clock:         SystemClock,
		watchInterval: DefaultWatchInterval,
		registry:      defaultRegistry,
	}
}

// WithClock sets the time source for the resize watcher and for the
// backends the dispatcher creates.
func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithWatchInterval sets the resize polling period. Non-positive values
// keep the default of 500ms.
func WithWatchInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.watchInterval = d
		}
	}
}

// WithRegistry makes the dispatcher look backends up in r instead of the
// default registry.
func WithRegistry(r *Registry) Option {
	return func(o *options) {
		if r != nil {
			o.registry = r
		}
	}
}
