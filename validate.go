package quire

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

var idRegex = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// IsValidID reports whether s has the shape of an RFC 4122 identifier (versions 1-5).
func IsValidID(s string) bool {
	return idRegex.MatchString(s)
}

// IsPersonal reports whether the scope addresses the owner's personal workspace,
// where the workspace id is the owner id itself.
func (s Scope) IsPersonal() bool {
	return s.OwnerID != "" && s.WorkspaceID == s.OwnerID
}

// Validate checks the scope before any store is touched.
func (s Scope) Validate() error {
	if s.OwnerID == "" {
		return ErrUnauthenticated
	}

	if s.IsPersonal() {
		return nil
	}

	if !IsValidID(s.WorkspaceID) {
		return fmt.Errorf("%w: invalid workspace id: %q", ErrInvalidInput, s.WorkspaceID)
	}

	return nil
}

// NormalizeName trims surrounding whitespace and rejects empty names.
func NormalizeName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
	}
	return trimmed, nil
}

// checkType verifies t is a FileType and, when allowed is non-empty, one of allowed.
func checkType(t FileType, allowed []FileType) error {
	if !t.IsValid() {
		return fmt.Errorf("%w: invalid type: %q", ErrInvalidInput, t)
	}
	if len(allowed) > 0 && !slices.Contains(allowed, t) {
		return fmt.Errorf("%w: type %q not allowed here", ErrInvalidInput, t)
	}
	return nil
}

// IsValidBlobPath validates a relative, slash separated storage path.
// It rejects empty, absolute and trailing-slash paths, "." and ".." segments,
// empty segments, the characters \ ? # ~, invalid UTF-8, control characters and whitespace.
func IsValidBlobPath(p string) bool {
	if p == "" || p[0] == '/' || strings.HasSuffix(p, "/") {
		return false
	}

	if !utf8.ValidString(p) || strings.ContainsAny(p, `\?#~`) {
		return false
	}

	for _, seg := range strings.Split(p, "/") {
		if seg == "" || seg == "." || strings.Contains(seg, "..") {
			return false
		}
	}

	for _, r := range p {
		if r < 0x20 || r == 0x7f || unicode.IsSpace(r) {
			return false
		}
	}

	return true
}
