package screenshot

import "time"

// RetentionTier is a named bucket mapping to a fixed number of days a
// screenshot is kept before expiry.
type RetentionTier string

const (
	TierFree       RetentionTier = "free"
	TierUser       RetentionTier = "user"
	TierTeam       RetentionTier = "team"
	TierEnterprise RetentionTier = "enterprise"
)

// tenantTiers maps a tenant type to its retention tier. Types absent from
// the table fall back to the free tier.
var tenantTiers = map[TenantType]RetentionTier{
	TenantPublic:     TierFree,
	TenantTest:       TierFree,
	TenantUser:       TierUser,
	TenantTeam:       TierTeam,
	TenantEnterprise: TierEnterprise,
}

// defaultTierDays are the retention windows per tier, in days.
var defaultTierDays = map[RetentionTier]int{
	TierFree:       7,
	TierUser:       30,
	TierTeam:       90,
	TierEnterprise: 365,
}

// RetentionPolicy maps tenant types to retention windows and computes
// expiration timestamps. Changing tier durations never affects
// already-persisted expiry values: expiresAt is computed once at creation
// and read back verbatim afterwards.
type RetentionPolicy struct {
	days   map[RetentionTier]int
	logger Logger
}

// NewRetentionPolicy creates a policy with the default tier durations.
func NewRetentionPolicy(logger Logger) *RetentionPolicy {
	days := make(map[RetentionTier]int, len(defaultTierDays))
	for tier, d := range defaultTierDays {
		days[tier] = d
	}
	return &RetentionPolicy{days: days, logger: logger}
}

// SetTierDays overrides the retention window for a tier. Non-positive
// values are ignored.
func (p *RetentionPolicy) SetTierDays(tier RetentionTier, days int) {
	if days > 0 {
		p.days[tier] = days
	}
}

// Days returns the retention window for a tenant type. Unknown types fall
// back to the free tier; the fallback is logged so it is a visible decision
// rather than a silent default.
func (p *RetentionPolicy) Days(typ TenantType) int {
	tier, ok := tenantTiers[typ]
	if !ok {
		p.logger.Warn("unknown tenant type, using free tier retention", "tenantType", string(typ))
		tier = TierFree
	}
	return p.days[tier]
}

// ExpirationDate returns now plus the retention window for the tenant type.
// A positive customDays overrides the tier window.
func (p *RetentionPolicy) ExpirationDate(now time.Time, typ TenantType, customDays int) time.Time {
	days := customDays
	if days <= 0 {
		days = p.Days(typ)
	}
	return now.Add(time.Duration(days) * 24 * time.Hour)
}
