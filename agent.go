// Package agenium is a client SDK for agent-to-agent communication: agents
// are named participants with Ed25519 identities that discover each other
// through a directory service (agent://name), establish logical sessions,
// and expose invocable tools.
package agenium

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/Aganium/agenium-go/core"
	"github.com/Aganium/agenium-go/dns"
	"github.com/Aganium/agenium-go/keys"
	"github.com/Aganium/agenium-go/protocol"
	"github.com/Aganium/agenium-go/session"
	"github.com/Aganium/agenium-go/store"
	"github.com/Aganium/agenium-go/tools"
	"github.com/Aganium/agenium-go/transport"
)

// RequestHandler serves an incoming request frame, returning the result
// payload for the response frame.
type RequestHandler func(ctx context.Context, req protocol.RequestFrame) (any, error)

// EventHandler consumes an incoming event frame.
type EventHandler func(ctx context.Context, evt protocol.EventFrame)

// Agent is the high-level entry point composing the resolver, session
// store, tool registry, transport and key material.
type Agent struct {
	name     string
	identity core.AgentID
	keyPair  *keys.KeyPair

	registry  *dnsRegistryClient
	resolver  *dns.Resolver
	tools     *tools.Registry
	sessions  *session.Store
	transport transport.Transport
	persist   *store.SQLiteStore

	mu              sync.Mutex
	running         bool
	requestHandlers map[string]RequestHandler
	eventHandlers   map[string]EventHandler
}

// New creates an agent with the given name. The name is validated against
// the agent:// grammar; key material is generated fresh unless persistence
// is configured and holds a stored identity.
func New(name string, opts ...Option) (*Agent, error) {
	if !core.ValidateName(name) {
		return nil, fmt.Errorf("invalid agent name %q: must be 2-50 chars, lowercase alphanumeric or hyphens, no leading or trailing hyphen", name)
	}

	cfg := defaultOptions()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	a := &Agent{
		name:            name,
		tools:           tools.NewRegistry(),
		sessions:        session.NewStore(),
		transport:       cfg.transport,
		persist:         cfg.persist,
		requestHandlers: make(map[string]RequestHandler),
		eventHandlers:   make(map[string]EventHandler),
	}

	if cfg.resolver != nil {
		a.resolver = cfg.resolver
	} else if cfg.directoryURL != "" {
		a.resolver = dns.NewResolverURL(cfg.directoryURL)
	} else {
		a.resolver = dns.NewResolver(cfg.dnsConfig)
	}

	kp, err := a.loadOrGenerateKeys()
	if err != nil {
		return nil, err
	}
	a.keyPair = kp

	description := cfg.description
	if description == "" {
		description = fmt.Sprintf("agenium agent: %s", name)
	}
	a.identity = core.AgentID{
		Name:        name,
		PublicKey:   kp.PublicKeyB64,
		Description: description,
	}

	a.registry = &dnsRegistryClient{
		baseURL: a.resolver.BaseURL(),
		client:  &http.Client{Timeout: cfg.registerTimeout},
	}
	return a, nil
}

// loadOrGenerateKeys restores a persisted identity when a store is
// configured, generating and saving a fresh key pair otherwise.
func (a *Agent) loadOrGenerateKeys() (*keys.KeyPair, error) {
	if a.persist != nil {
		id, err := a.persist.LoadIdentity(context.Background(), a.name)
		if err == nil {
			return keys.FromPrivateKeyPEM(id.PrivateKeyPEM)
		}
	}

	kp, err := keys.Generate()
	if err != nil {
		return nil, err
	}
	if a.persist != nil {
		pemData, err := kp.PrivateKeyPEM()
		if err != nil {
			return nil, err
		}
		err = a.persist.SaveIdentity(context.Background(), store.Identity{
			Name:          a.name,
			PublicKeyB64:  kp.PublicKeyB64,
			PrivateKeyPEM: pemData,
		})
		if err != nil {
			return nil, err
		}
	}
	return kp, nil
}

// Name returns the agent's canonical name.
func (a *Agent) Name() string { return a.name }

// URI returns the agent's agent:// URI.
func (a *Agent) URI() string { return core.ToURI(a.name) }

// Identity returns the agent's identity record.
func (a *Agent) Identity() core.AgentID { return a.identity }

// Signer returns the agent's signing capability.
func (a *Agent) Signer() keys.Signer { return a.keyPair }

// Running reports whether Start has been called without a matching Stop.
func (a *Agent) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// Sessions returns copies of the live sessions.
func (a *Agent) Sessions() []session.Session { return a.sessions.List() }

// Tools returns the registered tool definitions in registration order.
func (a *Agent) Tools() []tools.Definition { return a.tools.List() }

// RegisterTool registers (or replaces) a local tool.
func (a *Agent) RegisterTool(name string, handler tools.Handler, description string, inputSchema, outputSchema map[string]any) tools.Definition {
	return a.tools.Register(name, handler, description, inputSchema, outputSchema)
}

// UnregisterTool removes a local tool, reporting whether it existed.
func (a *Agent) UnregisterTool(name string) bool {
	return a.tools.Unregister(name)
}

// InvokeTool invokes a local tool. The outcome is always a structured
// result; it never panics.
func (a *Agent) InvokeTool(ctx context.Context, name string, params tools.Params, sessionID string) tools.InvokeResult {
	return a.tools.Invoke(ctx, name, params, tools.Context{
		SessionID: sessionID,
		AgentName: a.name,
	})
}

// Start marks the agent running. Safe to call twice.
func (a *Agent) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.running {
		return
	}
	a.running = true
	log.Printf("agent %s started", a.name)
}

// Stop force-closes every live session, journals them when persistence is
// configured, and releases the transport.
func (a *Agent) Stop(ctx context.Context) {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	a.running = false
	a.mu.Unlock()

	closed := a.sessions.Shutdown()
	if a.persist != nil {
		for _, sess := range closed {
			if err := a.persist.JournalSession(ctx, sess); err != nil {
				log.Printf("agent %s: journaling session %s: %v", a.name, sess.ID, err)
			}
		}
	}
	if a.transport != nil {
		if err := a.transport.Close(); err != nil {
			log.Printf("agent %s: closing transport: %v", a.name, err)
		}
	}
	log.Printf("agent %s stopped (%d sessions closed)", a.name, len(closed))
}

// Resolve resolves an agent name or agent:// URI to its endpoint.
func (a *Agent) Resolve(ctx context.Context, target string) (dns.ResolvedAgent, error) {
	return a.resolver.Resolve(ctx, target)
}

// Connect resolves the target and establishes a session with it, driving
// the lifecycle through handshake to active.
func (a *Agent) Connect(ctx context.Context, target string) (session.Session, error) {
	resolved, err := a.resolver.Resolve(ctx, target)
	if err != nil {
		return session.Session{}, fmt.Errorf("resolving %s: %w", target, err)
	}

	remote := core.AgentID{Name: resolved.Name, PublicKey: resolved.PublicKey}
	sess := a.sessions.Create(a.identity, remote)

	if _, err := a.sessions.Transition(sess.ID, session.Handshake); err != nil {
		return session.Session{}, err
	}
	if _, err := a.sessions.Transition(sess.ID, session.Active); err != nil {
		return session.Session{}, err
	}
	if err := a.sessions.SetMetadata(sess.ID, "endpoint", resolved.Endpoint); err != nil {
		return session.Session{}, err
	}
	active, ok := a.sessions.Get(sess.ID)
	if !ok {
		return session.Session{}, fmt.Errorf("%w: %s", session.ErrNotFound, sess.ID)
	}
	return active, nil
}

// CloseSession closes a session through the lifecycle and journals it.
func (a *Agent) CloseSession(ctx context.Context, id string) (session.Session, error) {
	sess, err := a.sessions.Close(id)
	if err != nil {
		return session.Session{}, err
	}
	if a.persist != nil {
		if err := a.persist.JournalSession(ctx, sess); err != nil {
			log.Printf("agent %s: journaling session %s: %v", a.name, sess.ID, err)
		}
	}
	return sess, nil
}

// sessionEndpoint returns the transport address recorded for a session.
func (a *Agent) sessionEndpoint(sess session.Session) string {
	if ep, ok := sess.Metadata["endpoint"].(string); ok {
		return ep
	}
	return ""
}
