package idhash

import (
	"crypto/sha256"
	"testing"

	"github.com/mr-tron/base58"
)

func TestComputeRunID(t *testing.T) {
	tests := []struct {
		name          string
		studentNumber string
		scenario      string
		createdAtMs   int64
	}{
		{
			name:          "stable market run",
			studentNumber: "20241012",
			scenario:      "Stable Market",
			createdAtMs:   1728691200000,
		},
		{
			name:          "anonymous run",
			studentNumber: "",
			scenario:      "Supply Disruption",
			createdAtMs:   1728691300000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeRunID(tt.studentNumber, tt.scenario, tt.createdAtMs)

			decoded, err := base58.Decode(got)
			if err != nil {
				t.Fatalf("ComputeRunID() is not valid base58: %v", err)
			}
			if len(decoded) != sha256.Size {
				t.Errorf("decoded length = %d, want %d", len(decoded), sha256.Size)
			}

			// Verify determinism: same inputs should produce same output
			got2 := ComputeRunID(tt.studentNumber, tt.scenario, tt.createdAtMs)
			if got != got2 {
				t.Errorf("ComputeRunID() not deterministic: %s != %s", got, got2)
			}
		})
	}
}

func TestComputeRunID_DifferentInputs(t *testing.T) {
	base := ComputeRunID("student", "Stable Market", 1000)

	if base == ComputeRunID("other", "Stable Market", 1000) {
		t.Error("Different student should produce different hash")
	}
	if base == ComputeRunID("student", "Price Competition", 1000) {
		t.Error("Different scenario should produce different hash")
	}
	if base == ComputeRunID("student", "Stable Market", 2000) {
		t.Error("Different creation time should produce different hash")
	}
}
