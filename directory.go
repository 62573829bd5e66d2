package agenium

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// RegistrationResult reports the outcome of a directory registration. A
// failed registration leaves no state behind; Error carries the reason.
type RegistrationResult struct {
	Success bool   `json:"success"`
	Domain  string `json:"domain,omitempty"`
	Tools   int    `json:"tools"`
	Error   string `json:"error,omitempty"`
}

// EndpointAuto asks the directory service to infer the agent's endpoint
// from the registration request.
const EndpointAuto = "auto"

// dnsRegistryClient posts registrations to the directory service.
type dnsRegistryClient struct {
	baseURL string
	client  *http.Client
}

type registerToolPayload struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema,omitempty"`
}

type registerPayload struct {
	Name      string                `json:"name"`
	Endpoint  string                `json:"endpoint"`
	PublicKey string                `json:"publicKey"`
	Tools     []registerToolPayload `json:"tools"`
}

// Register publishes this agent's name, endpoint, public key and tool
// summaries to the directory service. The endpoint defaults to the "auto"
// sentinel, asking the service to infer it. The outcome is always a
// structured result; transport and service failures set Error.
func (a *Agent) Register(ctx context.Context, apiKey, endpoint string) RegistrationResult {
	if endpoint == "" {
		endpoint = EndpointAuto
	}

	defs := a.tools.List()
	toolPayload := make([]registerToolPayload, 0, len(defs))
	for _, def := range defs {
		toolPayload = append(toolPayload, registerToolPayload{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
		})
	}

	payload := registerPayload{
		Name:      a.name,
		Endpoint:  endpoint,
		PublicKey: a.keyPair.PublicKeyB64,
		Tools:     toolPayload,
	}

	if err := a.registry.register(ctx, apiKey, payload); err != nil {
		return RegistrationResult{Success: false, Error: err.Error()}
	}
	return RegistrationResult{
		Success: true,
		Domain:  a.URI(),
		Tools:   len(toolPayload),
	}
}

func (c *dnsRegistryClient) register(ctx context.Context, apiKey string, payload registerPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding registration: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/dns/register", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building registration request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting registration: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		return nil
	}
	text, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("registration failed: %d %s", resp.StatusCode, bytes.TrimSpace(text))
}
