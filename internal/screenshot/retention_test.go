package screenshot

import (
	"testing"
	"time"
)

// recordingLogger captures warn messages for assertions.
type recordingLogger struct {
	NopLogger
	warns []string
}

func (l *recordingLogger) Warn(msg string, args ...any) {
	l.warns = append(l.warns, msg)
}

func TestRetentionPolicy_Days(t *testing.T) {
	tests := []struct {
		typ  TenantType
		want int
	}{
		{TenantPublic, 7},
		{TenantTest, 7},
		{TenantUser, 30},
		{TenantTeam, 90},
		{TenantEnterprise, 365},
	}
	p := NewRetentionPolicy(NewNopLogger())
	for _, tt := range tests {
		if got := p.Days(tt.typ); got != tt.want {
			t.Errorf("Days(%q) = %d, want %d", tt.typ, got, tt.want)
		}
	}

	t.Run("unknown type falls back to free tier and logs", func(t *testing.T) {
		logger := &recordingLogger{}
		p := NewRetentionPolicy(logger)
		if got := p.Days(TenantType("mystery")); got != 7 {
			t.Errorf("Days(mystery) = %d, want 7", got)
		}
		if len(logger.warns) != 1 {
			t.Errorf("fallback logged %d warnings, want 1", len(logger.warns))
		}
	})
}

func TestRetentionPolicy_ExpirationDate(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	p := NewRetentionPolicy(NewNopLogger())

	t.Run("enterprise tier", func(t *testing.T) {
		got := p.ExpirationDate(now, TenantEnterprise, 0)
		if want := now.Add(365 * 24 * time.Hour); !got.Equal(want) {
			t.Errorf("ExpirationDate() = %v, want %v", got, want)
		}
	})

	t.Run("custom days override the tier", func(t *testing.T) {
		got := p.ExpirationDate(now, TenantEnterprise, 3)
		if want := now.Add(3 * 24 * time.Hour); !got.Equal(want) {
			t.Errorf("ExpirationDate() = %v, want %v", got, want)
		}
	})

	t.Run("unknown type uses free tier", func(t *testing.T) {
		got := p.ExpirationDate(now, TenantType("mystery"), 0)
		if want := now.Add(7 * 24 * time.Hour); !got.Equal(want) {
			t.Errorf("ExpirationDate() = %v, want %v", got, want)
		}
	})
}

func TestRetentionPolicy_SetTierDays(t *testing.T) {
	p := NewRetentionPolicy(NewNopLogger())
	p.SetTierDays(TierFree, 14)
	if got := p.Days(TenantPublic); got != 14 {
		t.Errorf("Days() after override = %d, want 14", got)
	}

	// Non-positive overrides keep the current value.
	p.SetTierDays(TierFree, 0)
	p.SetTierDays(TierFree, -1)
	if got := p.Days(TenantPublic); got != 14 {
		t.Errorf("Days() after ignored override = %d, want 14", got)
	}
}
