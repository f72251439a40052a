package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix allows migrating the algorithm later.
const (
	DomainRequest = "sparqlc/request/v1"
	DomainConfig  = "sparqlc/config/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte keeps the domain/data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// RequestHash computes the content-addressed identity of a raw request body.
// Two bodies that differ only in whitespace, key order, Unicode normalization
// or number spelling hash equally.
func RequestHash(body []byte) (string, error) {
	v, err := ParseValue(body)
	if err != nil {
		return "", fmt.Errorf("RequestHash: %w", err)
	}
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("RequestHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRequest, canonical), nil
}

// ScopedRequestHash binds a request hash to a configuration fingerprint so
// cached queries never leak across differently configured compilers.
func ScopedRequestHash(body []byte, configFingerprint string) (string, error) {
	reqHash, err := RequestHash(body)
	if err != nil {
		return "", err
	}
	obj := Object{
		"config":  String(configFingerprint),
		"request": String(reqHash),
		"version": String(CompilerVersion),
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("ScopedRequestHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRequest, canonical), nil
}

// Fingerprint hashes an arbitrary canonical document under DomainConfig.
func Fingerprint(v Value) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("Fingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainConfig, canonical), nil
}

// MustRequestHash is like RequestHash but panics on error.
// Use only in tests or when the body is known to be valid JSON.
func MustRequestHash(body []byte) string {
	h, err := RequestHash(body)
	if err != nil {
		panic(err)
	}
	return h
}
