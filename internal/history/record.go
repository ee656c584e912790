// Package history keeps a local record of rendered artifacts.
//
// Only a digest of each artifact is stored. Scripts and manifests carry
// secrets, so their contents never reach the database.
package history

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Entry represents one recorded render.
type Entry struct {
	ID         int64     `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Command    string    `json:"command"`
	Args       string    `json:"args,omitempty"`
	Mode       string    `json:"mode,omitempty"`
	Artifact   string    `json:"artifact,omitempty"`
	Digest     string    `json:"digest,omitempty"`
	Outcome    string    `json:"outcome"`
	Detail     string    `json:"detail,omitempty"`
	DurationMs int64     `json:"duration_ms"`
}

// Digest returns the hex SHA-256 of content.
func Digest(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Command annotations read by the root command when recording.
const (
	// AnnotationArtifact marks a command as a render and names what it
	// produces ("script", "manifest", "request", ...).
	AnnotationArtifact = "clawhouse/artifact"

	// AnnotationSecretArgs marks a command whose positional arguments are
	// secrets. Its args are never stored.
	AnnotationSecretArgs = "clawhouse/secret-args"
)
