// Package tools implements the agent's tool registry: named, schema-described
// handlers with a structured invocation contract. Invoke is a total function;
// every outcome, including handler panics, is folded into an InvokeResult.
package tools

import (
	"context"
	"fmt"
	"sync"
)

// Handler executes a tool invocation. Handlers are arbitrary user code and
// manage their own bounded execution; the registry imposes no timeout.
type Handler func(ctx context.Context, params Params) (any, error)

// Definition describes a registered tool.
type Definition struct {
	Name         string         `json:"name"`
	Description  string         `json:"description,omitempty"`
	InputSchema  map[string]any `json:"input_schema,omitempty"`
	OutputSchema map[string]any `json:"output_schema,omitempty"`
}

// Context carries invocation metadata into handlers.
type Context struct {
	SessionID string
	AgentName string
	Metadata  map[string]any
}

type ctxKey struct{}

// NewContext attaches a tool invocation Context to ctx.
func NewContext(ctx context.Context, tc Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, tc)
}

// FromContext extracts the invocation Context, if any.
func FromContext(ctx context.Context) (Context, bool) {
	tc, ok := ctx.Value(ctxKey{}).(Context)
	return tc, ok
}

// ErrorKind classifies a failed invocation.
type ErrorKind int

const (
	// ErrKindNone marks a successful invocation.
	ErrKindNone ErrorKind = iota
	// ErrKindNotFound means no tool is registered under the name.
	ErrKindNotFound
	// ErrKindInvalidParams means the parameters failed to bind to the
	// tool's declared inputs.
	ErrKindInvalidParams
	// ErrKindHandler means the handler itself failed.
	ErrKindHandler
)

// InvokeResult is the structured outcome of a tool invocation.
type InvokeResult struct {
	Success bool      `json:"success"`
	Result  any       `json:"result,omitempty"`
	Error   string    `json:"error,omitempty"`
	Kind    ErrorKind `json:"-"`
}

type registration struct {
	def     Definition
	handler Handler
}

// Registry maps tool names to definitions and handlers. Safe for
// concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]registration
	order []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]registration)}
}

// Register adds a tool under name, overwriting any previous registration
// (last write wins). The resulting definition is returned.
func (r *Registry) Register(name string, handler Handler, description string, inputSchema, outputSchema map[string]any) Definition {
	def := Definition{
		Name:         name,
		Description:  description,
		InputSchema:  inputSchema,
		OutputSchema: outputSchema,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = registration{def: def, handler: handler}
	return def
}

// Unregister removes the named tool, reporting whether it existed.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tools[name]; !ok {
		return false
	}
	delete(r.tools, name)
	for i, key := range r.order {
		if key == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns the definition and handler registered under name.
func (r *Registry) Get(name string) (Definition, Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.tools[name]
	if !ok {
		return Definition{}, nil, false
	}
	return reg.def, reg.handler, true
}

// List returns the registered definitions in registration order.
func (r *Registry) List() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].def)
	}
	return defs
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Contains reports whether a tool is registered under name.
func (r *Registry) Contains(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

// Invoke runs the named tool with the given parameters. It never panics
// and never returns an error: every outcome is an InvokeResult.
func (r *Registry) Invoke(ctx context.Context, name string, params Params, tc Context) InvokeResult {
	def, handler, ok := r.Get(name)
	if !ok {
		return InvokeResult{
			Success: false,
			Error:   fmt.Sprintf("tool not found: %s", name),
			Kind:    ErrKindNotFound,
		}
	}

	if params == nil {
		params = Params{}
	}
	if err := checkSchema(def.InputSchema, params); err != nil {
		return InvokeResult{Success: false, Error: err.Error(), Kind: ErrKindInvalidParams}
	}

	result, err := runHandler(NewContext(ctx, tc), handler, params)
	if err != nil {
		kind := ErrKindHandler
		msg := fmt.Sprintf("tool error: %v", err)
		if IsBindError(err) {
			kind = ErrKindInvalidParams
			msg = err.Error()
		}
		return InvokeResult{Success: false, Error: msg, Kind: kind}
	}
	return InvokeResult{Success: true, Result: result}
}

// runHandler executes the handler, converting panics into errors so the
// registry's never-raises contract holds for arbitrary user code.
func runHandler(ctx context.Context, handler Handler, params Params) (result any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("handler panic: %v", rec)
		}
	}()
	return handler(ctx, params)
}
