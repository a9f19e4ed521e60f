package screenshot

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Path construction. Every function here is pure: paths and index keys are
// deterministic functions of their inputs, which keeps storage layout
// testable and lets paths be parsed back into their components.

const (
	// maxSegmentLength bounds every sanitized path segment.
	maxSegmentLength = 63

	// TypeFull and FormatPNG are the only rendition type and format in use.
	TypeFull  = "full"
	FormatPNG = "png"

	// DefaultProjectName is used when an upload names no project.
	DefaultProjectName = "default"
)

var (
	invalidSegmentChars = regexp.MustCompile(`[^a-z0-9-_]+`)
	domainSeparators    = regexp.MustCompile(`[/.:]+`)
	portSuffix          = regexp.MustCompile(`:\d+$`)
	dashRuns            = regexp.MustCompile(`-{2,}`)
	sessionSegment      = regexp.MustCompile(`^(session|debug|audit|test)-(.+)$`)
	dateSegment         = regexp.MustCompile(`^\d+$`)
)

// Sanitize normalizes free-text input into a safe path segment: lowercased,
// with runs of characters outside [a-z0-9-_] collapsed to a single dash,
// trimmed of leading/trailing dashes and capped at 63 characters.
// Empty input yields "unknown".
func Sanitize(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	s = invalidSegmentChars.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > maxSegmentLength {
		s = s[:maxSegmentLength]
	}
	if s == "" {
		return "unknown"
	}
	return s
}

// SanitizeDomain normalizes a hostname or URL into a safe path segment.
// The scheme, path and port are dropped; separator characters become
// dashes. Empty input yields "unknown-domain".
func SanitizeDomain(domain string) string {
	s := strings.ToLower(strings.TrimSpace(domain))
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	s = portSuffix.ReplaceAllString(s, "")
	s = domainSeparators.ReplaceAllString(s, "-")
	s = dashRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > maxSegmentLength {
		s = s[:maxSegmentLength]
	}
	if s == "" {
		return "unknown-domain"
	}
	return s
}

// DatePath returns the zero-padded calendar path "YYYY/MM/DD" for t.
func DatePath(t time.Time) string {
	return t.UTC().Format("2006/01/02")
}

// GenerateFilename builds the final path segment:
// "{YYYYMMDD-HHMMSS}-{first 8 hex of fileID}-{type}.{format}".
func GenerateFilename(fileID, typ, format string, now time.Time) string {
	short := fileID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("%s-%s-%s.%s", now.UTC().Format("20060102-150405"), short, typ, format)
}

// BuildPath derives the object-store key for a screenshot:
//
//	{tenantType}/{tenant}/{project}/{domain}/{YYYY}/{MM}/{DD}/{sessionType}-{sessionID}/{filename}
//
// The date and the filename timestamp both come from cfg.CapturedAt, so the
// path is a deterministic function of the storage config and file id.
func BuildPath(cfg StorageConfig, fileID, typ, format string) string {
	segments := []string{
		string(cfg.Tenant.Type),
		Sanitize(cfg.Tenant.Identifier),
		Sanitize(cfg.Project.Name),
		SanitizeDomain(cfg.Domain.Hostname),
		DatePath(cfg.CapturedAt),
		fmt.Sprintf("%s-%s", cfg.Session.Type, cfg.Session.ID),
		GenerateFilename(fileID, typ, format, cfg.CapturedAt),
	}
	return strings.Join(segments, "/")
}

// PathComponents are the fields recovered from a stored path.
type PathComponents struct {
	TenantType  TenantType
	TenantID    string
	Project     string
	Domain      string
	Date        string // "YYYY-MM-DD"
	SessionType SessionType
	SessionID   string
	Filename    string
}

// ParsePath is the inverse of BuildPath. It returns nil on any structural
// mismatch; it never fails with an error.
func ParsePath(path string) *PathComponents {
	parts := strings.Split(path, "/")
	if len(parts) != 9 {
		return nil
	}
	switch TenantType(parts[0]) {
	case TenantPublic, TenantUser, TenantTeam, TenantEnterprise, TenantTest:
	default:
		return nil
	}
	year, month, day := parts[4], parts[5], parts[6]
	if len(year) != 4 || len(month) != 2 || len(day) != 2 {
		return nil
	}
	if !dateSegment.MatchString(year) || !dateSegment.MatchString(month) || !dateSegment.MatchString(day) {
		return nil
	}
	m := sessionSegment.FindStringSubmatch(parts[7])
	if m == nil {
		return nil
	}
	return &PathComponents{
		TenantType:  TenantType(parts[0]),
		TenantID:    parts[1],
		Project:     parts[2],
		Domain:      parts[3],
		Date:        year + "-" + month + "-" + day,
		SessionType: SessionType(m[1]),
		SessionID:   m[2],
		Filename:    parts[8],
	}
}

// Key-value store keys. Every key carries a stable namespace prefix so the
// subsystem can share a store with others without collision.

// MetadataKey is the authoritative record key for a screenshot id.
func MetadataKey(id string) string {
	return "screenshot:" + id
}

// TenantIndexKey namespaces the per-tenant secondary index.
func TenantIndexKey(typ TenantType, identifier string) string {
	return fmt.Sprintf("tenant:%s:%s", typ, Sanitize(identifier))
}

// ProjectIndexKey namespaces the per-project secondary index.
func ProjectIndexKey(tenantID, project string) string {
	return fmt.Sprintf("project:%s:%s", Sanitize(tenantID), Sanitize(project))
}

// DomainIndexKey namespaces the per-domain lookup dimension.
func DomainIndexKey(tenantID, project, domain string) string {
	return fmt.Sprintf("domain:%s:%s:%s", Sanitize(tenantID), Sanitize(project), SanitizeDomain(domain))
}

// SessionIndexKey namespaces the per-session secondary index.
func SessionIndexKey(sessionID string) string {
	return "session:" + sessionID
}

// DateIndexKey buckets screenshots by capture day.
func DateIndexKey(t time.Time) string {
	return "lookup:date:" + t.UTC().Format("2006-01-02")
}

// URLIndexKey namespaces the per-URL lookup dimension.
func URLIndexKey(rawURL string) string {
	return "lookup:url:" + SanitizeDomain(rawURL)
}

// IndexEntryKey builds the key for a single index membership row. Each
// screenshot id gets its own row under the index so membership changes are
// single-key writes; listing an index is a prefix scan.
func IndexEntryKey(indexKey, id string) string {
	return indexKey + ":" + id
}
