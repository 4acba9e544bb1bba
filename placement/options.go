package placement

// Option configures an Engine.
type Option func(*config)

type config struct {
	observer  Observer
	policy    DecodePolicy
	normalize bool
	page      int
}

func newConfig(opts []Option) config {
	var c config
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithObserver installs fn to receive a Skip for every ignored operation
// or string fragment. fn is called synchronously from Step.
func WithObserver(fn Observer) Option {
	return func(c *config) {
		c.observer = fn
	}
}

// WithPolicy selects how invalid UTF-8 in shown strings is handled.
func WithPolicy(p DecodePolicy) Option {
	return func(c *config) {
		c.policy = p
	}
}

// WithNormalization applies Unicode NFC to the text of every item.
func WithNormalization() Option {
	return func(c *config) {
		c.normalize = true
	}
}

// WithPage labels skip notifications with page number n.
func WithPage(n int) Option {
	return func(c *config) {
		c.page = n
	}
}
