package agenium

import (
	"fmt"
	"time"

	"github.com/Aganium/agenium-go/dns"
	"github.com/Aganium/agenium-go/store"
	"github.com/Aganium/agenium-go/transport"
)

type options struct {
	dnsConfig       dns.Config
	directoryURL    string
	resolver        *dns.Resolver
	transport       transport.Transport
	persist         *store.SQLiteStore
	description     string
	registerTimeout time.Duration
}

func defaultOptions() options {
	return options{
		dnsConfig:       dns.DefaultConfig(),
		transport:       &transport.NullTransport{},
		registerTimeout: 10 * time.Second,
	}
}

// Option configures an Agent during construction.
type Option func(*options) error

// WithDNSServer points the agent at a specific directory server.
func WithDNSServer(server string, port int) Option {
	return func(o *options) error {
		if server == "" {
			return fmt.Errorf("dns server must not be empty")
		}
		o.dnsConfig.Server = server
		o.dnsConfig.Port = port
		return nil
	}
}

// WithDirectoryURL points the agent at a directory service by base URL
// (scheme://host:port). Takes precedence over WithDNSServer.
func WithDirectoryURL(base string) Option {
	return func(o *options) error {
		o.directoryURL = base
		return nil
	}
}

// WithResolver supplies a pre-built resolver, e.g. one sharing a cache
// across agents. Takes precedence over the other directory options.
func WithResolver(r *dns.Resolver) Option {
	return func(o *options) error {
		o.resolver = r
		return nil
	}
}

// WithTransport supplies the frame carrier used by Send and CallTool.
// Without it, frames are constructed and dropped.
func WithTransport(t transport.Transport) Option {
	return func(o *options) error {
		if t == nil {
			return fmt.Errorf("transport must not be nil")
		}
		o.transport = t
		return nil
	}
}

// WithPersistence opens a local SQLite store at dsn for identity key
// material and the session journal.
func WithPersistence(dsn string) Option {
	return func(o *options) error {
		s, err := store.Open(dsn)
		if err != nil {
			return err
		}
		o.persist = s
		return nil
	}
}

// WithStore supplies an already-open persistence store.
func WithStore(s *store.SQLiteStore) Option {
	return func(o *options) error {
		o.persist = s
		return nil
	}
}

// WithDescription sets the identity description published on registration.
func WithDescription(description string) Option {
	return func(o *options) error {
		o.description = description
		return nil
	}
}

// WithResolveTimeout bounds each directory lookup.
func WithResolveTimeout(d time.Duration) Option {
	return func(o *options) error {
		o.dnsConfig.Timeout = d
		return nil
	}
}
