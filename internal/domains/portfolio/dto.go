package portfolio

import (
	"time"

	"folio-backend/internal/domains/content"
	"folio-backend/internal/domains/plan"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

type CreatePortfolioRequest struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

func (r CreatePortfolioRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Slug, validation.Required, validation.Length(1, 64)),
		validation.Field(&r.Title, validation.Length(0, 120)),
	)
}

// PortfolioPatch is the typed partial update accepted by ApplyPatch.
// Absent fields are left untouched; an empty customDomain clears it.
type PortfolioPatch struct {
	Slug         content.Optional[string] `json:"slug"`
	CustomDomain content.Optional[string] `json:"customDomain"`

	Title        content.Optional[string] `json:"title"`
	Subtitle     content.Optional[string] `json:"subtitle"`
	Description  content.Optional[string] `json:"description"`
	ContactEmail content.Optional[string] `json:"contactEmail"`
	Phone        content.Optional[string] `json:"phone"`
	Location     content.Optional[string] `json:"location"`
	AvatarURL    content.Optional[string] `json:"avatarUrl"`
	CoverURL     content.Optional[string] `json:"coverUrl"`
	ResumeURL    content.Optional[string] `json:"resumeUrl"`

	SocialLinks content.Optional[[]content.SocialLink] `json:"socialLinks"`
	content.SectionsPatch

	Theme content.Optional[Theme]  `json:"theme"`
	Font  content.Optional[string] `json:"font"`
}

// Validate checks every sent field except slug and custom domain, which
// have their own rejection codes.
func (p PortfolioPatch) Validate() error {
	errs := p.SectionsPatch.Errors()

	text := func(key string, o content.Optional[string], max int) {
		if o.Set {
			errs[key] = validation.Validate(o.Value, validation.Length(0, max))
		}
	}
	url := func(key string, o content.Optional[string]) {
		if o.Set {
			errs[key] = validation.Validate(o.Value, is.URL, validation.Length(0, 2048))
		}
	}

	text("title", p.Title, 120)
	text("subtitle", p.Subtitle, 200)
	text("description", p.Description, 5000)
	text("location", p.Location, 120)
	text("phone", p.Phone, 40)
	url("avatarUrl", p.AvatarURL)
	url("coverUrl", p.CoverURL)
	url("resumeUrl", p.ResumeURL)

	if p.ContactEmail.Set {
		errs["contactEmail"] = validation.Validate(p.ContactEmail.Value, is.EmailFormat, validation.Length(0, 255))
	}
	if p.SocialLinks.Set {
		errs["socialLinks"] = validation.Validate(p.SocialLinks.Value, validation.Length(0, content.MaxSocialLinks))
	}
	if p.Theme.Set {
		errs["theme"] = validation.Validate(p.Theme.Value, validation.Required, validation.In(Themes()...))
	}
	if p.Font.Set {
		errs["font"] = validation.Validate(p.Font.Value, validation.Required, validation.In(Fonts()...))
	}
	return errs.Filter()
}

// Update is what the store writes for one accepted patch.
type Update struct {
	Patch PortfolioPatch

	// ResetDomainVerification forces domain_verified=false in the same
	// statement as the patch.
	ResetDomainVerification bool
}

// =====================================================
// DOMAIN VERIFICATION
// =====================================================

type VerifyDomainRequest struct {
	Domain string `json:"domain"`
}

// Validate allows an empty domain; the stored one is verified then.
func (r VerifyDomainRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Domain, validation.Length(0, 253)),
	)
}

// Instructions tell the owner which TXT record proves control.
type Instructions struct {
	Host    string `json:"host"`
	Type    string `json:"type"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

type RoutingStatus struct {
	Provider       string `json:"provider"`
	Registered     bool   `json:"registered"`
	Error          string `json:"error,omitempty"`
	RetryScheduled bool   `json:"retryScheduled,omitempty"`
}

type VerifyResult struct {
	Domain       string         `json:"domain"`
	Verified     bool           `json:"verified"`
	Instructions *Instructions  `json:"instructions,omitempty"`
	Routing      *RoutingStatus `json:"routing,omitempty"`
}

type DomainStatus struct {
	Domain       string        `json:"domain"`
	Verified     bool          `json:"verified"`
	Routed       bool          `json:"routed"`
	Instructions *Instructions `json:"instructions,omitempty"`
}

// =====================================================
// PUBLIC VIEW
// =====================================================

// PublicPortfolio is what the theme renderer receives.
type PublicPortfolio struct {
	ID           uuid.UUID            `json:"id"`
	Slug         string               `json:"slug"`
	CustomDomain string               `json:"customDomain,omitempty"`
	Title        string               `json:"title"`
	Subtitle     string               `json:"subtitle"`
	Description  string               `json:"description"`
	ContactEmail string               `json:"contactEmail"`
	Phone        string               `json:"phone"`
	Location     string               `json:"location"`
	AvatarURL    string               `json:"avatarUrl"`
	CoverURL     string               `json:"coverUrl"`
	ResumeURL    string               `json:"resumeUrl"`
	SocialLinks  []content.SocialLink `json:"socialLinks"`
	content.Sections
	Theme     Theme     `json:"theme"`
	Font      string    `json:"font"`
	Plan      plan.Plan `json:"plan"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func ToPublic(p *Portfolio, tier plan.Plan) PublicPortfolio {
	out := PublicPortfolio{
		ID:           p.ID,
		Slug:         p.Slug,
		Title:        p.Title,
		Subtitle:     p.Subtitle,
		Description:  p.Description,
		ContactEmail: p.ContactEmail,
		Phone:        p.Phone,
		Location:     p.Location,
		AvatarURL:    p.AvatarURL,
		CoverURL:     p.CoverURL,
		ResumeURL:    p.ResumeURL,
		SocialLinks:  p.SocialLinks,
		Sections:     p.Sections,
		Theme:        EffectiveTheme(p, tier),
		Font:         p.Font,
		Plan:         tier,
		UpdatedAt:    p.UpdatedAt,
	}
	if p.DomainVerified {
		out.CustomDomain = p.Domain()
	}
	return out
}
