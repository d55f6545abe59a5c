package plan

import (
	"time"
)

type Plan string

const (
	Free Plan = "free"
	Pro  Plan = "pro"
)

type BillingPeriod string

const (
	Monthly BillingPeriod = "monthly"
	Annual  BillingPeriod = "annual"
)

func (b BillingPeriod) Valid() bool {
	return b == Monthly || b == Annual
}

// Length returns the nominal span of one billing period starting at from.
func (b BillingPeriod) Length(from time.Time) time.Time {
	if b == Annual {
		return from.AddDate(1, 0, 0)
	}
	return from.AddDate(0, 1, 0)
}

// Resolve computes the effective plan. Pro requires a stored pro plan and
// a subscription end strictly after now; a nil end is never pro.
func Resolve(stored Plan, subscriptionEnd *time.Time, now time.Time) Plan {
	if stored != Pro || subscriptionEnd == nil {
		return Free
	}
	if subscriptionEnd.After(now) {
		return Pro
	}
	return Free
}

// Subject is anything carrying stored plan state.
type Subject interface {
	StoredPlan() Plan
	SubscriptionExpiry() *time.Time
}

// ResolveFor applies Resolve to a Subject.
func ResolveFor(s Subject, now time.Time) Plan {
	return Resolve(s.StoredPlan(), s.SubscriptionExpiry(), now)
}

// Expired reports a stored pro plan that no longer resolves to pro.
func Expired(s Subject, now time.Time) bool {
	return s.StoredPlan() == Pro && ResolveFor(s, now) == Free
}

// =====================================================
// ENTITLEMENTS
// =====================================================

// Quotas are the per-plan storage limits in bytes.
type Quotas struct {
	Free int64
	Pro  int64
}

type Limits struct {
	Plan              Plan  `json:"plan"`
	StorageQuota      int64 `json:"storageQuota"`
	CustomDomain      bool  `json:"customDomain"`
	ProtectedSections bool  `json:"protectedSections"`
	AllThemes         bool  `json:"allThemes"`
}

func Entitlements(tier Plan, q Quotas) Limits {
	if tier == Pro {
		return Limits{Plan: Pro, StorageQuota: q.Pro, CustomDomain: true, ProtectedSections: true, AllThemes: true}
	}
	return Limits{Plan: Free, StorageQuota: q.Free}
}

// Sections editable only under the pro entitlement.
const (
	SectionProjects   = "projects"
	SectionExperience = "experience"
	SectionSkills     = "skills"
	SectionSEOMeta    = "seoMeta"
)
