// Package domain defines the core domain models for imgcarve.
package domain

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/zeebo/blake3"
)

// RunIDPrefix is the prefix for carve run IDs.
const RunIDPrefix = "icrun-"

// Artifact write outcomes recorded in a manifest.
const (
	StatusWritten = "written"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Manifest records what one carve run produced.
//
// The manifest is written beside the output directory, never inside it,
// so that merging the output directory reproduces the input exactly.
type Manifest struct {
	// RunID uniquely identifies the run.
	// Format: icrun-{ulid_lowercase}.
	RunID string `json:"run_id" yaml:"run_id"`

	// Input is the scanned file.
	Input string `json:"input" yaml:"input"`

	// OutputDir is the directory holding the artifacts.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Mode is the scan mode ("partition" or "single").
	Mode string `json:"mode" yaml:"mode"`

	// KeepRaw reports whether artifacts are verbatim byte dumps.
	KeepRaw bool `json:"keep_raw" yaml:"keep_raw"`

	// InputSize is the input length in bytes.
	InputSize int `json:"input_size" yaml:"input_size"`

	// InputDigest is the BLAKE3 digest of the whole input.
	InputDigest string `json:"input_digest" yaml:"input_digest"`

	// CreatedAt is the run start (RFC 3339, UTC).
	CreatedAt string `json:"created_at" yaml:"created_at"`

	// Artifacts lists one record per segment, in scan order.
	Artifacts []ArtifactRecord `json:"artifacts" yaml:"artifacts"`
}

// ArtifactRecord describes one segment and the file written for it.
type ArtifactRecord struct {
	Index  int    `json:"index" yaml:"index"`
	Name   string `json:"name" yaml:"name"`
	Format string `json:"format" yaml:"format"`
	Start  int    `json:"start" yaml:"start"`
	End    int    `json:"end" yaml:"end"`
	Size   int    `json:"size" yaml:"size"`

	// Digest is the BLAKE3 digest of the segment bytes as found in the
	// input, regardless of re-encoding.
	Digest string `json:"digest" yaml:"digest"`

	Status string `json:"status" yaml:"status"`
	Code   string `json:"code,omitempty" yaml:"code,omitempty"` // IC-ART-* of a failed write
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Counts returns the number of records per status.
func (m *Manifest) Counts() map[string]int {
	out := make(map[string]int)
	for _, a := range m.Artifacts {
		out[a.Status]++
	}
	return out
}

// NewRunID generates a new run ID.
func NewRunID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(timeNow()), entropy)
	if err != nil {
		return "", err
	}
	return RunIDPrefix + strings.ToLower(id.String()), nil
}

// IsValidRunID reports whether id has the run ID format.
func IsValidRunID(id string) bool {
	if !strings.HasPrefix(id, RunIDPrefix) {
		return false
	}
	_, err := ulid.Parse(strings.ToUpper(id[len(RunIDPrefix):]))
	return err == nil
}

// Digest returns the hex BLAKE3-256 digest of data.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Timestamp returns the current time formatted for manifests.
func Timestamp() string {
	return timeNow().UTC().Format(time.RFC3339)
}

// timeNow is a hook for testing.
var timeNow = time.Now
