package main

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"
)

func TestResolveSigningKey_Hex(t *testing.T) {
	raw := bytes.Repeat([]byte{0xab}, 32)
	got, err := resolveSigningKey(hex.EncodeToString(raw))
	if err != nil {
		t.Fatalf("resolveSigningKey: %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Error("hex key not decoded to raw bytes")
	}
}

func TestResolveSigningKey_RawString(t *testing.T) {
	// Not valid hex, long enough to use as-is.
	key := strings.Repeat("s3cret-key!", 3)
	got, err := resolveSigningKey(key)
	if err != nil {
		t.Fatalf("resolveSigningKey: %v", err)
	}
	if string(got) != key {
		t.Error("raw key should be used verbatim")
	}
}

func TestResolveSigningKey_Rejects(t *testing.T) {
	if _, err := resolveSigningKey(""); err == nil {
		t.Error("empty key must be rejected")
	}
	if _, err := resolveSigningKey("shortZ"); err == nil {
		t.Error("short non-hex key must be rejected")
	}
}
