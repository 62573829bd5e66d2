// Package core holds the fundamental identity types shared by the rest of
// the SDK: agent names, agent:// URIs, and unique identifiers.
package core

import (
	"github.com/google/uuid"
)

// AgentID identifies an agent in the network.
type AgentID struct {
	// Name is the unique agent name used in the agent:// URI.
	Name string `json:"name"`
	// PublicKey is the agent's Ed25519 public key, base64 encoded.
	PublicKey string `json:"public_key"`
	// Description is an optional human-readable description.
	Description string `json:"description,omitempty"`
}

// AgentToolRef is a summary of a tool an agent exposes, as advertised
// through the directory service.
type AgentToolRef struct {
	Name         string         `json:"name"`
	Description  string         `json:"description,omitempty"`
	InputSchema  map[string]any `json:"input_schema,omitempty"`
	OutputSchema map[string]any `json:"output_schema,omitempty"`
}

// GenerateID returns a fresh unique identifier for frames and sessions.
func GenerateID() string {
	return uuid.NewString()
}
