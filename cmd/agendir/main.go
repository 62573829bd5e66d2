// Command agendir runs a local directory service for development: the
// same lookup/register contract the SDK's resolver consumes, backed by an
// in-memory registry.
package main

import (
	"flag"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Aganium/agenium-go/core"
)

type record struct {
	Endpoint     string           `json:"endpoint"`
	PublicKey    string           `json:"publicKey"`
	Tools        []map[string]any `json:"tools"`
	Capabilities []string         `json:"capabilities"`
	TTL          int              `json:"ttl"`
}

type directory struct {
	mu      sync.RWMutex
	agents  map[string]record
	apiKey  string
	baseTTL int
}

func (d *directory) lookup(c echo.Context) error {
	name := strings.ToLower(c.Param("name"))
	if !core.ValidateName(name) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid agent name"})
	}

	d.mu.RLock()
	rec, ok := d.agents[name]
	d.mu.RUnlock()
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "agent not found"})
	}
	return c.JSON(http.StatusOK, rec)
}

func (d *directory) register(c echo.Context) error {
	auth := c.Request().Header.Get("Authorization")
	if d.apiKey != "" && auth != "Bearer "+d.apiKey {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid api key"})
	}

	var req struct {
		Name      string           `json:"name"`
		Endpoint  string           `json:"endpoint"`
		PublicKey string           `json:"publicKey"`
		Tools     []map[string]any `json:"tools"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed registration"})
	}

	name := strings.ToLower(req.Name)
	if !core.ValidateName(name) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid agent name"})
	}
	if req.PublicKey == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing public key"})
	}

	endpoint := req.Endpoint
	if endpoint == "" || endpoint == "auto" {
		// Infer the endpoint from the caller's address.
		endpoint = "ws://" + c.RealIP() + ":8443"
	}

	d.mu.Lock()
	d.agents[name] = record{
		Endpoint:  endpoint,
		PublicKey: req.PublicKey,
		Tools:     req.Tools,
		TTL:       d.baseTTL,
	}
	d.mu.Unlock()

	return c.JSON(http.StatusCreated, map[string]any{
		"domain": core.ToURI(name),
		"tools":  len(req.Tools),
	})
}

func main() {
	addr := flag.String("addr", ":3000", "listen address")
	apiKey := flag.String("api-key", "", "required Bearer token for registration (empty disables auth)")
	ttl := flag.Int("ttl", 300, "ttl seconds returned with lookups")
	flag.Parse()

	dir := &directory{
		agents:  make(map[string]record),
		apiKey:  *apiKey,
		baseTTL: *ttl,
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	e.GET("/dns/lookup/:name", dir.lookup)
	e.POST("/dns/register", dir.register)

	log.Printf("agendir listening on %s", *addr)
	if err := e.Start(*addr); err != nil {
		log.Fatal(err)
	}
}
