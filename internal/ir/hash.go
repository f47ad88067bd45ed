package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainDataset is the domain prefix for dataset digests.
// Version suffix enables future algorithm migration.
const DomainDataset = "insight/dataset/v1"

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Digest computes a content digest of a dataset: its ID, kind and records in
// order. Two datasets with the same digest evaluate every query identically.
func Digest(ds *Dataset) (string, error) {
	canonical, err := MarshalCanonical(map[string]any{
		"id":      ds.ID,
		"kind":    string(ds.Kind),
		"records": ds.Records,
	})
	if err != nil {
		return "", fmt.Errorf("Digest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainDataset, canonical), nil
}
