package oidcauth

import (
	"context"

	"github.com/hashicorp/go-hclog"
)

// Option defines a common functional options type
type Option func(interface{})

// ApplyOpts takes a pointer to the options struct as a set of default options
// and applies the slice of opts as overrides.
func ApplyOpts(opts interface{}, opt ...Option) {
	for _, o := range opt {
		o(opts)
	}
}

// WithLogger provides an optional logger for the Authenticator or the
// ProviderLoginService.
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		switch v := o.(type) {
		case *authenticatorOptions:
			v.withLogger = l
		case *loginServiceOptions:
			v.withLogger = l
		}
	}
}

// WithValidateFunc provides an optional revocation predicate for the
// ProviderLoginService. The predicate is consulted on every request that
// presents a cached authentication; returning false demotes the request to
// unauthenticated and drops the cache entry.
func WithValidateFunc(fn func(ctx context.Context, identity Identity) bool) Option {
	return func(o interface{}) {
		if v, ok := o.(*loginServiceOptions); ok {
			v.withValidateFunc = fn
		}
	}
}
