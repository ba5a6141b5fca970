package record

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainDataset separates dataset fingerprints from any other hash.
// The version suffix leaves room for a future encoding change.
const DomainDataset = "kanjidex/dataset/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint identifies the exact bytes MarshalDataset would write.
// Two runs over the same inputs and cache report the same fingerprint.
func Fingerprint(records []Record) (string, error) {
	data, err := MarshalDataset(records)
	if err != nil {
		return "", fmt.Errorf("Fingerprint: %w", err)
	}
	return hashWithDomain(DomainDataset, data), nil
}

// MustFingerprint is like Fingerprint but panics on error.
// Use only in tests.
func MustFingerprint(records []Record) string {
	fp, err := Fingerprint(records)
	if err != nil {
		panic(err)
	}
	return fp
}
