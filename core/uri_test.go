package core

import (
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	valid := []string{
		"alice",
		"my-agent",
		"ab",
		"agent-42",
		"ñandú",
		strings.Repeat("a", 50),
	}
	for _, name := range valid {
		if !ValidateName(name) {
			t.Fatalf("expected %q to be valid", name)
		}
	}

	invalid := []string{
		"",
		"a",
		strings.Repeat("a", 51),
		"-alice",
		"alice-",
		"has space",
		"under_score",
		"bang!",
		"Dot.name",
	}
	for _, name := range invalid {
		if ValidateName(name) {
			t.Fatalf("expected %q to be invalid", name)
		}
	}
}

func TestValidateNameFoldsCase(t *testing.T) {
	if !ValidateName("My-Agent") {
		t.Fatal("mixed-case name should validate after folding")
	}
}

func TestParseURI(t *testing.T) {
	name, ok := ParseURI("agent://alice")
	if !ok || name != "alice" {
		t.Fatalf("ParseURI = %q, %v", name, ok)
	}

	// Case folding to the canonical name.
	name, ok = ParseURI("agent://My-Agent")
	if !ok || name != "my-agent" {
		t.Fatalf("ParseURI = %q, %v", name, ok)
	}

	for _, uri := range []string{"alice", "http://alice", "agent://", "agent://a", "agent://-x-"} {
		if _, ok := ParseURI(uri); ok {
			t.Fatalf("expected %q to be rejected", uri)
		}
	}
}

func TestToURIRoundTrip(t *testing.T) {
	for _, name := range []string{"alice", "My-Agent", "agent-42"} {
		uri := ToURI(name)
		parsed, ok := ParseURI(uri)
		if !ok {
			t.Fatalf("round trip failed for %q", name)
		}
		// Canonicalization is idempotent.
		if ToURI(parsed) != uri {
			t.Fatalf("ToURI(%q) = %q, want %q", parsed, ToURI(parsed), uri)
		}
	}
}

func TestIsValidURI(t *testing.T) {
	if !IsValidURI("agent://my-agent") {
		t.Fatal("expected valid URI")
	}
	if IsValidURI("agent://bad_name!") {
		t.Fatal("expected invalid URI")
	}
}

func TestGenerateIDUnique(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == "" || a == b {
		t.Fatalf("ids not unique: %q %q", a, b)
	}
}
