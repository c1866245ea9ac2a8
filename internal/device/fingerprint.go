// Package device derives fingerprints from client user agents and tracks
// device-to-user edges to surface sharing and account-farming patterns.
package device

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/mssola/useragent"
)

// Fingerprinter derives a stable device fingerprint from a user agent string.
// The fingerprint folds in the browser major version but not minor or patch
// versions, so routine browser updates do not rotate a user's device identity.
type Fingerprinter struct {
	enabled bool
}

func NewFingerprinter(enabled bool) *Fingerprinter {
	return &Fingerprinter{enabled: enabled}
}

// Compute returns the SHA-256 hex fingerprint for the user agent, or the
// empty string when fingerprinting is disabled.
func (f *Fingerprinter) Compute(rawUA string) string {
	if !f.enabled || rawUA == "" {
		return ""
	}

	ua := useragent.New(rawUA)
	name, version := ua.Browser()
	major, _, _ := strings.Cut(version, ".")

	parts := []string{
		strings.ToLower(name),
		major,
		strings.ToLower(ua.OS()),
		strings.ToLower(ua.Platform()),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// DisplayName renders a human-readable device label for audit records.
func DisplayName(rawUA string) string {
	if rawUA == "" {
		return "Unknown Device"
	}

	ua := useragent.New(rawUA)
	name, _ := ua.Browser()
	if name == "" {
		name = "Unknown Browser"
	}

	where := strings.TrimSpace(ua.Platform() + " " + ua.OS())
	if where == "" {
		where = "Unknown Platform"
	}
	return strings.TrimSpace(name + " on " + where)
}
