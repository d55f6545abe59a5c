package shared

import (
	"errors"
	"fmt"
	"net/http"
)

// =====================================================
// REJECTION CODES
// =====================================================

// RejectionCode is the stable, client-facing reason attached to every
// refused request. Editing clients switch on it to render a message.
type RejectionCode string

const (
	CodeUnauthorized         RejectionCode = "UNAUTHORIZED"
	CodeNotFound             RejectionCode = "NOT_FOUND"
	CodeInvalidPatch         RejectionCode = "INVALID_PATCH"
	CodeInvalidSlugFormat    RejectionCode = "INVALID_SLUG_FORMAT"
	CodeReservedSlug         RejectionCode = "RESERVED_SLUG"
	CodeSlugTaken            RejectionCode = "SLUG_TAKEN"
	CodeUsernameTaken        RejectionCode = "USERNAME_TAKEN"
	CodeEmailTaken           RejectionCode = "EMAIL_TAKEN"
	CodeDomainTaken          RejectionCode = "DOMAIN_TAKEN"
	CodeUpgradeRequired      RejectionCode = "UPGRADE_REQUIRED"
	CodePlanRestrictsTheme   RejectionCode = "PLAN_RESTRICTS_THEME"
	CodePlanRequired         RejectionCode = "PLAN_REQUIRED"
	CodeDomainNotSet         RejectionCode = "DOMAIN_NOT_SET"
	CodeDomainMismatch       RejectionCode = "DOMAIN_MISMATCH"
	CodeStorageQuotaExceeded RejectionCode = "STORAGE_QUOTA_EXCEEDED"
	CodeInvalidUpload        RejectionCode = "INVALID_UPLOAD"
	CodeInvalidCredentials   RejectionCode = "INVALID_CREDENTIALS"
)

// HTTPStatus maps a rejection code to the status the API answers with.
func (c RejectionCode) HTTPStatus() int {
	switch c {
	case CodeUnauthorized:
		return http.StatusForbidden
	case CodeInvalidCredentials:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeSlugTaken, CodeUsernameTaken, CodeEmailTaken, CodeDomainTaken:
		return http.StatusConflict
	case CodeUpgradeRequired, CodePlanRestrictsTheme, CodePlanRequired:
		return http.StatusPaymentRequired
	case CodeStorageQuotaExceeded:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusBadRequest
	}
}

// =====================================================
// REJECTION ERROR
// =====================================================

// Rejection is a refused request. It never implies a partial write.
type Rejection struct {
	Code    RejectionCode
	Message string
	Field   string
	Err     error
}

func (r *Rejection) Error() string {
	msg := fmt.Sprintf("%s: %s", r.Code, r.Message)
	if r.Field != "" {
		msg = fmt.Sprintf("%s (field %s)", msg, r.Field)
	}
	if r.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, r.Err)
	}
	return msg
}

func (r *Rejection) Unwrap() error {
	return r.Err
}

// Is matches any Rejection carrying the same code, so the base values
// below can be used with errors.Is after decoration.
func (r *Rejection) Is(target error) bool {
	t, ok := target.(*Rejection)
	if !ok {
		return false
	}
	return r.Code == t.Code
}

var (
	ErrUnauthorized         = &Rejection{Code: CodeUnauthorized, Message: "you do not own this resource"}
	ErrNotFound             = &Rejection{Code: CodeNotFound, Message: "resource not found"}
	ErrInvalidPatch         = &Rejection{Code: CodeInvalidPatch, Message: "the update contains invalid values"}
	ErrInvalidSlugFormat    = &Rejection{Code: CodeInvalidSlugFormat, Message: "slug may only contain lowercase letters, digits and hyphens"}
	ErrReservedSlug         = &Rejection{Code: CodeReservedSlug, Message: "this slug is reserved"}
	ErrSlugTaken            = &Rejection{Code: CodeSlugTaken, Message: "this slug is already taken"}
	ErrUsernameTaken        = &Rejection{Code: CodeUsernameTaken, Message: "this username is already taken"}
	ErrEmailTaken           = &Rejection{Code: CodeEmailTaken, Message: "an account with this email already exists"}
	ErrDomainTaken          = &Rejection{Code: CodeDomainTaken, Message: "this domain is already connected to another page"}
	ErrUpgradeRequired      = &Rejection{Code: CodeUpgradeRequired, Message: "upgrade to pro to edit this section"}
	ErrPlanRestrictsTheme   = &Rejection{Code: CodePlanRestrictsTheme, Message: "this theme is available on the pro plan"}
	ErrPlanRequired         = &Rejection{Code: CodePlanRequired, Message: "custom domains require the pro plan"}
	ErrDomainNotSet         = &Rejection{Code: CodeDomainNotSet, Message: "save a custom domain before verifying it"}
	ErrDomainMismatch       = &Rejection{Code: CodeDomainMismatch, Message: "the domain does not match the saved custom domain"}
	ErrStorageQuotaExceeded = &Rejection{Code: CodeStorageQuotaExceeded, Message: "storage quota exceeded for your plan"}
	ErrInvalidUpload        = &Rejection{Code: CodeInvalidUpload, Message: "upload must be a jpeg or png image"}
	ErrInvalidCredentials   = &Rejection{Code: CodeInvalidCredentials, Message: "invalid email or password"}
)

// Reject decorates a base rejection with the offending field and cause.
func Reject(base *Rejection, field string, cause error) *Rejection {
	return &Rejection{
		Code:    base.Code,
		Message: base.Message,
		Field:   field,
		Err:     cause,
	}
}

// AsRejection extracts the rejection from an error chain.
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}
