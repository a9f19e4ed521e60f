package screenshot

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// TenantType identifies the billing/isolation boundary a screenshot belongs to.
type TenantType string

const (
	TenantPublic     TenantType = "public"
	TenantUser       TenantType = "user"
	TenantTeam       TenantType = "team"
	TenantEnterprise TenantType = "enterprise"
	TenantTest       TenantType = "test"
)

// TenantInfo identifies the tenant a screenshot belongs to.
// It is immutable once attached to a stored screenshot.
type TenantInfo struct {
	Type       TenantType `json:"type"`
	Identifier string     `json:"identifier"`
	Plan       string     `json:"plan,omitempty"`
}

// ProjectInfo is a logical grouping of screenshots within a tenant.
type ProjectInfo struct {
	Name string   `json:"name"`
	Tags []string `json:"tags,omitempty"`
}

// SessionType classifies the activity a session was captured during.
type SessionType string

const (
	SessionDefault SessionType = "session"
	SessionDebug   SessionType = "debug"
	SessionAudit   SessionType = "audit"
	SessionTest    SessionType = "test"
)

// SessionInfo groups screenshots captured during one triage/debug activity.
type SessionInfo struct {
	ID        string         `json:"id"`
	Type      SessionType    `json:"type"`
	StartTime time.Time      `json:"startTime"`
	UserID    string         `json:"userId,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Environment classifies where a page was captured from.
type Environment string

const (
	EnvProduction  Environment = "production"
	EnvStaging     Environment = "staging"
	EnvDevelopment Environment = "development"
	EnvTest        Environment = "test"
)

// DomainInfo is derived from the captured page's URL.
type DomainInfo struct {
	URL         string      `json:"url"`
	Hostname    string      `json:"hostname"`
	Environment Environment `json:"environment"`
}

// DomainInfoFromURL parses an absolute URL and infers the environment from
// its hostname. Returns an error for URLs without a scheme or host.
func DomainInfoFromURL(rawURL string) (DomainInfo, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return DomainInfo{}, fmt.Errorf("parsing url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return DomainInfo{}, fmt.Errorf("url is not absolute: %s", rawURL)
	}
	return DomainInfo{
		URL:         rawURL,
		Hostname:    u.Hostname(),
		Environment: inferEnvironment(u.Hostname()),
	}, nil
}

// inferEnvironment maps hostname substrings to an environment, defaulting
// to production.
func inferEnvironment(hostname string) Environment {
	h := strings.ToLower(hostname)
	switch {
	case strings.Contains(h, "localhost") || strings.Contains(h, "127.0.0.1"):
		return EnvDevelopment
	case strings.Contains(h, "staging") || strings.Contains(h, "stage"):
		return EnvStaging
	case strings.Contains(h, "test"):
		return EnvTest
	default:
		return EnvProduction
	}
}

// FileFormats maps a rendition name to its object-store path.
// Only the full-size rendition exists today.
type FileFormats struct {
	Full string `json:"full"`
}

// FileInfo describes the stored binary.
type FileInfo struct {
	OriginalName string      `json:"originalName"`
	Size         int64       `json:"size"`
	MimeType     string      `json:"mimeType"`
	Formats      FileFormats `json:"formats"`
}

// PageInfo describes the page the screenshot was captured from.
type PageInfo struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Permissions controls who may view a screenshot.
type Permissions struct {
	Public       bool `json:"public"`
	RequiresAuth bool `json:"requiresAuth"`
}

// Analytics tracks access to a screenshot. Views and LastAccessed are the
// only fields mutated after creation.
type Analytics struct {
	Views        int64      `json:"views"`
	Downloads    int64      `json:"downloads"`
	LastAccessed *time.Time `json:"lastAccessed,omitempty"`
}

// Metadata is the persisted record for a stored screenshot.
type Metadata struct {
	ID          string      `json:"id"`
	Path        string      `json:"path"`
	Tenant      TenantInfo  `json:"tenant"`
	Project     ProjectInfo `json:"project"`
	Domain      DomainInfo  `json:"domain"`
	Session     SessionInfo `json:"session"`
	File        FileInfo    `json:"file"`
	Page        PageInfo    `json:"page"`
	CapturedAt  time.Time   `json:"capturedAt"`
	ExpiresAt   time.Time   `json:"expiresAt"`
	Permissions Permissions `json:"permissions"`
	Analytics   Analytics   `json:"analytics"`
}

// StorageConfig is the fully-defaulted context a screenshot is stored under.
// Path construction and index keys are derived from it.
type StorageConfig struct {
	Tenant     TenantInfo
	Project    ProjectInfo
	Domain     DomainInfo
	Session    SessionInfo
	CapturedAt time.Time
}

// StoreRequest is an upload as received at the boundary.
type StoreRequest struct {
	Data    string       `json:"data"` // base64 or data-URL encoded image
	URL     string       `json:"url"`
	Title   string       `json:"title"`
	Tenant  *TenantInfo  `json:"tenant,omitempty"`
	Project string       `json:"project,omitempty"`
	Session *SessionInfo `json:"session,omitempty"`
	Tags    []string     `json:"tags,omitempty"`
}

// Response is returned for store and get operations.
type Response struct {
	ID       string    `json:"id"`
	Path     string    `json:"path"`
	URL      string    `json:"url"`
	Expires  time.Time `json:"expires"`
	Metadata *Metadata `json:"metadata"`
}

// ListRequest selects and pages through stored screenshots.
// TenantType+TenantID switch listing to the tenant index; the remaining
// filters apply to prefix scans.
type ListRequest struct {
	TenantType TenantType
	TenantID   string
	Domain     string // substring match against the captured hostname
	Project    string // exact match
	Session    string // exact match
	Limit      int
	Cursor     string
}

// ListResult is one page of screenshots.
type ListResult struct {
	Screenshots []*Metadata `json:"screenshots"`
	Cursor      string      `json:"cursor,omitempty"`
	HasMore     bool        `json:"hasMore"`
}
