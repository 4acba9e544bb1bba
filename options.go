package textpos

import "github.com/tsawler/textpos/placement"

// extractOptions holds the configuration collected by an Extractor chain.
type extractOptions struct {
	pages     []int // 1-based; nil means all pages
	strict    bool
	normalize bool
	workers   int
	observer  placement.Observer
}

func defaultOptions() extractOptions {
	return extractOptions{}
}

// clone returns a copy that shares nothing mutable with o.
func (o extractOptions) clone() extractOptions {
	c := o
	if o.pages != nil {
		c.pages = make([]int, len(o.pages))
		copy(c.pages, o.pages)
	}
	return c
}

// placementOptions translates the configuration for the engine.
func (o extractOptions) placementOptions() []placement.Option {
	var opts []placement.Option
	if o.strict {
		opts = append(opts, placement.WithPolicy(placement.Strict))
	}
	if o.normalize {
		opts = append(opts, placement.WithNormalization())
	}
	if o.observer != nil {
		opts = append(opts, placement.WithObserver(o.observer))
	}
	return opts
}
