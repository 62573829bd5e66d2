// Package dns resolves agent:// names to endpoints through the directory
// service, with a TTL-governed cache in front of the network.
package dns

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Aganium/agenium-go/core"
	"golang.org/x/sync/singleflight"
)

// Defaults for the public directory service.
const (
	DefaultServer     = "185.204.169.26"
	DefaultPort       = 3000
	DefaultTimeout    = 10 * time.Second
	DefaultTTLSeconds = 300
)

// Config holds resolver settings.
type Config struct {
	Server        string
	Port          int
	Timeout       time.Duration
	DefaultTTL    int // seconds, applied when the service omits ttl
	UseHTTPS      bool
	CacheCapacity int
}

// DefaultConfig returns the resolver configuration for the public
// directory service.
func DefaultConfig() Config {
	return Config{
		Server:     DefaultServer,
		Port:       DefaultPort,
		Timeout:    DefaultTimeout,
		DefaultTTL: DefaultTTLSeconds,
	}
}

// ResolvedAgent is the outcome of resolving an agent name. Immutable after
// construction; re-resolution supersedes rather than mutates.
type ResolvedAgent struct {
	Name         string              `json:"name"`
	Endpoint     string              `json:"endpoint"`
	PublicKey    string              `json:"public_key"`
	Tools        []core.AgentToolRef `json:"tools"`
	Capabilities []string            `json:"capabilities"`
	TTL          int                 `json:"ttl"`
	ResolvedAt   time.Time           `json:"resolved_at"`
	// Metadata preserves unrecognized top-level fields of the service
	// payload.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// URI returns the agent:// URI of the resolved agent.
func (a ResolvedAgent) URI() string {
	return core.ToURI(a.Name)
}

// Resolver resolves agent names against the directory service. Safe for
// concurrent use. In-flight lookups for the same name are coalesced into
// a single service call.
type Resolver struct {
	cfg     Config
	baseURL string
	client  *http.Client
	cache   *resolveCache
	group   singleflight.Group

	mu  sync.Mutex
	now func() time.Time
}

// NewResolver builds a resolver from cfg, filling unset fields with
// defaults.
func NewResolver(cfg Config) *Resolver {
	if cfg.Server == "" {
		cfg.Server = DefaultServer
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = DefaultTTLSeconds
	}

	scheme := "http"
	if cfg.UseHTTPS {
		scheme = "https"
	}
	return &Resolver{
		cfg:     cfg,
		baseURL: fmt.Sprintf("%s://%s:%d", scheme, cfg.Server, cfg.Port),
		client:  &http.Client{Timeout: cfg.Timeout},
		cache:   newResolveCache(cfg.CacheCapacity),
		now:     time.Now,
	}
}

// NewResolverURL builds a resolver that talks to the directory service at
// base (scheme://host:port), keeping every other default. Useful for
// local development directories and tests.
func NewResolverURL(base string) *Resolver {
	r := NewResolver(DefaultConfig())
	r.baseURL = strings.TrimSuffix(base, "/")
	return r
}

// Resolve resolves an agent name or agent:// URI to its endpoint.
//
// The target is validated and canonicalized first; a cache hit within TTL
// returns without any network traffic. On a miss the directory service is
// queried, the response cached under the canonical name, and service or
// transport failures mapped to the typed error codes of this package.
func (r *Resolver) Resolve(ctx context.Context, target string) (ResolvedAgent, error) {
	name, err := canonicalName(target)
	if err != nil {
		return ResolvedAgent{}, err
	}

	if agent, ok := r.cache.get(name, r.clock()()); ok {
		return agent, nil
	}

	result, err, _ := r.group.Do(name, func() (any, error) {
		// Re-check under the flight: a concurrent caller may have
		// populated the cache while we queued.
		if agent, ok := r.cache.get(name, r.clock()()); ok {
			return agent, nil
		}
		// The flight serves every coalesced waiter, so it must not die
		// with the leader's context; the client timeout still bounds
		// the request.
		agent, err := r.lookup(context.WithoutCancel(ctx), name)
		if err != nil {
			return ResolvedAgent{}, err
		}
		ttl := time.Duration(agent.TTL) * time.Second
		r.cache.set(name, agent, agent.ResolvedAt.Add(ttl))
		return agent, nil
	})
	if err != nil {
		return ResolvedAgent{}, err
	}
	return result.(ResolvedAgent), nil
}

// ResolveURI resolves a full agent:// URI.
func (r *Resolver) ResolveURI(ctx context.Context, uri string) (ResolvedAgent, error) {
	return r.Resolve(ctx, uri)
}

// ResolveAll resolves several targets with bounded concurrency. Results
// are positional; the first failure aborts with its error.
func (r *Resolver) ResolveAll(ctx context.Context, targets []string, maxConcurrency int) ([]ResolvedAgent, error) {
	if len(targets) == 0 {
		return nil, nil
	}
	if maxConcurrency <= 0 {
		maxConcurrency = 8
	}

	results := make([]ResolvedAgent, len(targets))
	errs := make([]error, len(targets))
	sem := make(chan struct{}, maxConcurrency)
	var wg sync.WaitGroup

	for i, target := range targets {
		wg.Add(1)
		go func(idx int, tgt string) {
			defer wg.Done()
			select {
			case <-ctx.Done():
				errs[idx] = ctx.Err()
			case sem <- struct{}{}:
				defer func() { <-sem }()
				results[idx], errs[idx] = r.Resolve(ctx, tgt)
			}
		}(i, target)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// BaseURL returns the directory service base URL this resolver queries.
func (r *Resolver) BaseURL() string {
	return r.baseURL
}

// ClearCache drops every cached entry.
func (r *Resolver) ClearCache() {
	r.cache.clear()
}

// CacheSize reports the number of cached entries.
func (r *Resolver) CacheSize() int {
	return r.cache.len()
}

// SetClock overrides the resolver's time source. Tests use this to drive
// TTL expiry deterministically.
func (r *Resolver) SetClock(now func() time.Time) {
	r.mu.Lock()
	r.now = now
	r.mu.Unlock()
}

func (r *Resolver) clock() func() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.now
}

// canonicalName validates target, which may be a bare name or an agent://
// URI, and returns the canonical lowercase name.
func canonicalName(target string) (string, error) {
	if strings.HasPrefix(target, core.URIScheme) {
		name, ok := core.ParseURI(target)
		if !ok {
			return "", newError(CodeInvalidName, "invalid URI: %s", target)
		}
		return name, nil
	}
	if !core.ValidateName(target) {
		return "", newError(CodeInvalidName, "invalid agent name: %s", target)
	}
	return strings.ToLower(target), nil
}

// lookup performs the directory service call for a canonical name.
func (r *Resolver) lookup(ctx context.Context, name string) (ResolvedAgent, error) {
	url := fmt.Sprintf("%s/dns/lookup/%s", r.baseURL, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ResolvedAgent{}, newError(CodeNetworkError, "building lookup request: %v", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return ResolvedAgent{}, mapTransportError(err, name)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ResolvedAgent{}, newError(CodeNotFound, "agent not found: %s", name)
	}
	if resp.StatusCode != http.StatusOK {
		return ResolvedAgent{}, newError(CodeServerError, "directory server error: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ResolvedAgent{}, mapTransportError(err, name)
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ResolvedAgent{}, newError(CodeServerError, "malformed directory response: %v", err)
	}
	return r.parseAgent(name, payload), nil
}

// mapTransportError distinguishes timeouts from connection failures.
func mapTransportError(err error, name string) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return newError(CodeTimeout, "lookup timed out for %s", name)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return newError(CodeTimeout, "lookup timed out for %s", name)
	}
	return newError(CodeNetworkError, "cannot reach directory server: %v", err)
}

// parseAgent maps the service payload onto a ResolvedAgent, tolerating the
// camelCase/snake_case field aliases the service emits and preserving
// unknown top-level fields.
func (r *Resolver) parseAgent(name string, payload map[string]any) ResolvedAgent {
	// Some deployments nest the record under "agent".
	if nested, ok := payload["agent"].(map[string]any); ok {
		payload = nested
	}

	agent := ResolvedAgent{
		Name:       name,
		TTL:        r.cfg.DefaultTTL,
		ResolvedAt: r.clock()(),
		Metadata:   map[string]any{},
	}

	if s, ok := payload["endpoint"].(string); ok {
		agent.Endpoint = s
	}
	if s, ok := stringAlias(payload, "publicKey", "public_key"); ok {
		agent.PublicKey = s
	}
	if ttl, ok := payload["ttl"].(float64); ok && ttl >= 0 {
		agent.TTL = int(ttl)
	}
	if caps, ok := payload["capabilities"].([]any); ok {
		for _, c := range caps {
			if s, ok := c.(string); ok {
				agent.Capabilities = append(agent.Capabilities, s)
			}
		}
	}
	if rawTools, ok := payload["tools"].([]any); ok {
		for _, raw := range rawTools {
			t, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			ref := core.AgentToolRef{}
			if s, ok := t["name"].(string); ok {
				ref.Name = s
			}
			if s, ok := t["description"].(string); ok {
				ref.Description = s
			}
			if m, ok := objectAlias(t, "inputSchema", "input_schema"); ok {
				ref.InputSchema = m
			}
			if m, ok := objectAlias(t, "outputSchema", "output_schema"); ok {
				ref.OutputSchema = m
			}
			agent.Tools = append(agent.Tools, ref)
		}
	}

	known := map[string]bool{
		"name": true, "endpoint": true, "publicKey": true, "public_key": true,
		"tools": true, "capabilities": true, "ttl": true,
	}
	for k, v := range payload {
		if !known[k] {
			agent.Metadata[k] = v
		}
	}
	return agent
}

func stringAlias(m map[string]any, keys ...string) (string, bool) {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

func objectAlias(m map[string]any, keys ...string) (map[string]any, bool) {
	for _, k := range keys {
		if o, ok := m[k].(map[string]any); ok {
			return o, true
		}
	}
	return nil, false
}
