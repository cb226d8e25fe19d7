package idhash

import (
	"crypto/sha256"
	"fmt"

	"github.com/mr-tron/base58"
)

// ComputeRunID computes a deterministic run_id using SHA256.
// Formula: SHA256(student_number|scenario|created_at_ms)
// Returns base58-encoded hash (43 or 44 characters) so ids stay short in URLs.
func ComputeRunID(
	studentNumber string,
	scenario string,
	createdAtMs int64,
) string {
	data := fmt.Sprintf("%s|%s|%d",
		studentNumber,
		scenario,
		createdAtMs,
	)

	hash := sha256.Sum256([]byte(data))
	return base58.Encode(hash[:])
}
