package screenshot

import (
	"strings"
	"testing"
	"time"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty input", "", "unknown"},
		{"whitespace only", "   ", "unknown"},
		{"already clean", "my-org_1", "my-org_1"},
		{"uppercase and punctuation", "My Org!!", "my-org"},
		{"run of bad characters collapses", "a$$$###b", "a-b"},
		{"leading and trailing dashes stripped", "--hello--", "hello"},
		{"only bad characters", "!!!", "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}

	t.Run("long input truncated to 63", func(t *testing.T) {
		got := Sanitize(strings.Repeat("a", 100))
		if len(got) != 63 {
			t.Errorf("Sanitize() length = %d, want 63", len(got))
		}
	})
}

func TestSanitizeDomain(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty input", "", "unknown-domain"},
		{"plain hostname", "example.com", "example-com"},
		{"url with scheme port and path", "https://Example.com:8080/path", "example-com"},
		{"http scheme", "http://foo.bar.baz", "foo-bar-baz"},
		{"port only", "localhost:3000", "localhost"},
		{"query string dropped", "example.com?x=1", "example-com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeDomain(tt.input); got != tt.want {
				t.Errorf("SanitizeDomain(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDatePath(t *testing.T) {
	d := time.Date(2024, 3, 7, 23, 59, 0, 0, time.UTC)
	if got := DatePath(d); got != "2024/03/07" {
		t.Errorf("DatePath() = %q, want %q", got, "2024/03/07")
	}
}

func TestGenerateFilename(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	got := GenerateFilename("abcdef0123456789", TypeFull, FormatPNG, now)
	want := "20240115-103000-abcdef01-full.png"
	if got != want {
		t.Errorf("GenerateFilename() = %q, want %q", got, want)
	}
}

func testConfig(capturedAt time.Time) StorageConfig {
	return StorageConfig{
		Tenant:     TenantInfo{Type: TenantTeam, Identifier: "Acme Corp"},
		Project:    ProjectInfo{Name: "Checkout Flow"},
		Domain:     DomainInfo{URL: "https://shop.example.com/cart", Hostname: "shop.example.com"},
		Session:    SessionInfo{ID: "sess-42", Type: SessionDebug},
		CapturedAt: capturedAt,
	}
}

func TestBuildPath(t *testing.T) {
	capturedAt := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	cfg := testConfig(capturedAt)

	got := BuildPath(cfg, "abcdef0123456789", TypeFull, FormatPNG)
	want := "team/acme-corp/checkout-flow/shop-example-com/2024/01/15/debug-sess-42/20240115-103000-abcdef01-full.png"
	if got != want {
		t.Errorf("BuildPath() = %q, want %q", got, want)
	}

	t.Run("deterministic for same inputs", func(t *testing.T) {
		if again := BuildPath(cfg, "abcdef0123456789", TypeFull, FormatPNG); again != got {
			t.Errorf("BuildPath() not deterministic: %q vs %q", got, again)
		}
	})
}

func TestParsePath(t *testing.T) {
	t.Run("round trip recovers components", func(t *testing.T) {
		capturedAt := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
		cfg := testConfig(capturedAt)
		path := BuildPath(cfg, "abcdef0123456789", TypeFull, FormatPNG)

		c := ParsePath(path)
		if c == nil {
			t.Fatalf("ParsePath(%q) = nil", path)
		}
		if c.TenantType != TenantTeam {
			t.Errorf("TenantType = %q, want %q", c.TenantType, TenantTeam)
		}
		if c.TenantID != "acme-corp" {
			t.Errorf("TenantID = %q, want %q", c.TenantID, "acme-corp")
		}
		if c.Project != "checkout-flow" {
			t.Errorf("Project = %q, want %q", c.Project, "checkout-flow")
		}
		if c.Date != "2024-01-15" {
			t.Errorf("Date = %q, want %q", c.Date, "2024-01-15")
		}
		if c.SessionType != SessionDebug || c.SessionID != "sess-42" {
			t.Errorf("Session = %q/%q, want debug/sess-42", c.SessionType, c.SessionID)
		}
	})

	t.Run("rejects malformed paths", func(t *testing.T) {
		bad := []string{
			"",
			"too/short",
			"team/a/b/c/2024/01/15/nosession/file.png",
			"alien/a/b/c/2024/01/15/session-x/file.png",
			"team/a/b/c/24/01/15/session-x/file.png",
			"team/a/b/c/2024/01/15/session-x/extra/file.png",
		}
		for _, path := range bad {
			if c := ParsePath(path); c != nil {
				t.Errorf("ParsePath(%q) = %+v, want nil", path, c)
			}
		}
	})
}

func TestIndexKeys(t *testing.T) {
	if got := MetadataKey("abc123"); got != "screenshot:abc123" {
		t.Errorf("MetadataKey() = %q", got)
	}
	if got := TenantIndexKey(TenantUser, "Jane Doe"); got != "tenant:user:jane-doe" {
		t.Errorf("TenantIndexKey() = %q", got)
	}
	if got := ProjectIndexKey("Acme", "Checkout Flow"); got != "project:acme:checkout-flow" {
		t.Errorf("ProjectIndexKey() = %q", got)
	}
	if got := DomainIndexKey("acme", "web", "shop.example.com"); got != "domain:acme:web:shop-example-com" {
		t.Errorf("DomainIndexKey() = %q", got)
	}
	if got := SessionIndexKey("sess-42"); got != "session:sess-42" {
		t.Errorf("SessionIndexKey() = %q", got)
	}
	d := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	if got := DateIndexKey(d); got != "lookup:date:2024-01-15" {
		t.Errorf("DateIndexKey() = %q", got)
	}
	if got := URLIndexKey("https://shop.example.com/cart"); got != "lookup:url:shop-example-com" {
		t.Errorf("URLIndexKey() = %q", got)
	}
	if got := IndexEntryKey("tenant:user:jane", "abc"); got != "tenant:user:jane:abc" {
		t.Errorf("IndexEntryKey() = %q", got)
	}
}
