package account

import (
	"regexp"
	"time"

	"folio-backend/internal/domains/content"
	"folio-backend/internal/domains/plan"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,30}$`)

// ========================================
// AUTH DTOs
// ========================================

type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email,
			validation.Required.Error("email is required"),
			is.EmailFormat.Error("invalid email format"),
			validation.Length(5, 255),
		),
		validation.Field(&r.Username,
			validation.Required.Error("username is required"),
			validation.Match(usernamePattern).Error("username must be 3-30 letters, digits or underscores"),
		),
		validation.Field(&r.Password,
			validation.Required.Error("password is required"),
			validation.Length(8, 128).Error("password must be 8-128 characters"),
		),
		validation.Field(&r.Name, validation.Length(0, 100)),
	)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Password, validation.Required),
	)
}

type LoginResponse struct {
	AccessToken string     `json:"accessToken"`
	ExpiresAt   time.Time  `json:"expiresAt"`
	Account     AccountDTO `json:"account"`
}

// ========================================
// PROFILE DTOs
// ========================================

// AccountDTO exposes the stored plan next to the plan in effect right now.
type AccountDTO struct {
	ID              uuid.UUID           `json:"id"`
	Email           string              `json:"email"`
	Username        string              `json:"username"`
	Name            string              `json:"name"`
	Plan            plan.Plan           `json:"plan"`
	EffectivePlan   plan.Plan           `json:"effectivePlan"`
	BillingPeriod   *plan.BillingPeriod `json:"billingPeriod,omitempty"`
	SubscriptionEnd *time.Time          `json:"subscriptionEnd,omitempty"`
	StorageUsed     int64               `json:"storageUsed"`
	Entitlements    plan.Limits         `json:"entitlements"`
	Bio             string              `json:"bio"`
	content.Sections
	CreatedAt time.Time `json:"createdAt"`
}

func ToDTO(a *Account, now time.Time, quotas plan.Quotas) AccountDTO {
	effective := plan.ResolveFor(a, now)
	return AccountDTO{
		ID:              a.ID,
		Email:           a.Email,
		Username:        a.Username,
		Name:            a.Name,
		Plan:            a.Plan,
		EffectivePlan:   effective,
		BillingPeriod:   a.BillingPeriod,
		SubscriptionEnd: a.SubscriptionEnd,
		StorageUsed:     a.StorageUsed,
		Entitlements:    plan.Entitlements(effective, quotas),
		Bio:             a.Bio,
		Sections:        a.Sections,
		CreatedAt:       a.CreatedAt,
	}
}

// AccountPatch is a partial update; only sent fields are written.
type AccountPatch struct {
	Name     content.Optional[string] `json:"name"`
	Username content.Optional[string] `json:"username"`
	Bio      content.Optional[string] `json:"bio"`
	content.SectionsPatch
}

func (p AccountPatch) Validate() error {
	errs := p.SectionsPatch.Errors()
	if p.Name.Set {
		errs["name"] = validation.Validate(p.Name.Value, validation.Length(0, 100))
	}
	if p.Username.Set {
		errs["username"] = validation.Validate(p.Username.Value,
			validation.Required, validation.Match(usernamePattern))
	}
	if p.Bio.Set {
		errs["bio"] = validation.Validate(p.Bio.Value, validation.Length(0, 2000))
	}
	return errs.Filter()
}

// ========================================
// OPERATOR DTOs
// ========================================

type GrantRequest struct {
	Email  string
	Period plan.BillingPeriod
	Until  *time.Time
}
