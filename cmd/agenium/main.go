// Command agenium is a small CLI over the SDK: resolve agent names,
// validate names and URIs, and show SDK status.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Aganium/agenium-go/core"
	"github.com/Aganium/agenium-go/dns"
)

const version = "0.1.0"

func main() {
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	switch flag.Arg(0) {
	case "resolve":
		runResolve(flag.Args()[1:])
	case "validate":
		runValidate(flag.Args()[1:])
	case "status":
		runStatus()
	case "version":
		fmt.Printf("agenium %s\n", version)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", flag.Arg(0))
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `agenium — agent-to-agent communication SDK

Usage:
  agenium resolve [-server host] [-port n] <name|agent://name>
  agenium validate <name|agent://name>
  agenium status
  agenium version
`)
}

func runResolve(args []string) {
	fs := flag.NewFlagSet("resolve", flag.ExitOnError)
	server := fs.String("server", dns.DefaultServer, "directory server host")
	port := fs.Int("port", dns.DefaultPort, "directory server port")
	timeout := fs.Duration("timeout", dns.DefaultTimeout, "lookup timeout")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "resolve requires exactly one name or URI")
		os.Exit(2)
	}

	cfg := dns.DefaultConfig()
	cfg.Server = *server
	cfg.Port = *port
	cfg.Timeout = *timeout
	resolver := dns.NewResolver(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout+time.Second)
	defer cancel()

	agent, err := resolver.Resolve(ctx, fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(map[string]any{
		"name":         agent.Name,
		"uri":          agent.URI(),
		"endpoint":     agent.Endpoint,
		"public_key":   agent.PublicKey,
		"tools":        agent.Tools,
		"capabilities": agent.Capabilities,
		"ttl":          agent.TTL,
	}, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func runValidate(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "validate requires exactly one name or URI")
		os.Exit(2)
	}
	target := args[0]

	if core.IsValidURI(target) {
		name, _ := core.ParseURI(target)
		fmt.Printf("valid URI: %s\n", core.ToURI(name))
		return
	}
	if core.ValidateName(target) {
		fmt.Printf("valid name: %s -> %s\n", target, core.ToURI(target))
		return
	}
	fmt.Fprintf(os.Stderr, "invalid: %s\n", target)
	os.Exit(1)
}

func runStatus() {
	fmt.Printf("agenium SDK v%s (Go)\n", version)
	fmt.Printf("Directory: %s:%d\n", dns.DefaultServer, dns.DefaultPort)
	fmt.Printf("Protocol: agent://\n")
}
