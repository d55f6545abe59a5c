package portfolio

import (
	"time"

	"folio-backend/internal/domains/content"
	"folio-backend/internal/domains/plan"

	"github.com/google/uuid"
)

type Theme string

const (
	ThemeMinimal Theme = "minimal"
	ThemeFlames  Theme = "flames"
	ThemeModern  Theme = "modern"

	// BaselineTheme is available on every plan.
	BaselineTheme = ThemeMinimal
)

func Themes() []interface{} {
	return []interface{}{ThemeMinimal, ThemeFlames, ThemeModern}
}

const DefaultFont = "inter"

func Fonts() []interface{} {
	return []interface{}{
		"inter", "roboto", "poppins", "montserrat",
		"lora", "playfair-display", "space-grotesk", "jetbrains-mono",
	}
}

// Portfolio is one public page. Slug is globally unique; CustomDomain is
// unique when set and DomainVerified resets whenever it changes.
type Portfolio struct {
	ID             uuid.UUID `json:"id"`
	AccountID      uuid.UUID `json:"accountId"`
	Slug           string    `json:"slug"`
	CustomDomain   *string   `json:"customDomain"`
	DomainVerified bool      `json:"domainVerified"`
	RoutedDomain   *string   `json:"routedDomain,omitempty"`

	Title        string `json:"title"`
	Subtitle     string `json:"subtitle"`
	Description  string `json:"description"`
	ContactEmail string `json:"contactEmail"`
	Phone        string `json:"phone"`
	Location     string `json:"location"`
	AvatarURL    string `json:"avatarUrl"`
	CoverURL     string `json:"coverUrl"`
	ResumeURL    string `json:"resumeUrl"`

	SocialLinks []content.SocialLink `json:"socialLinks"`
	content.Sections

	Theme Theme  `json:"theme"`
	Font  string `json:"font"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Domain returns the stored custom domain or "".
func (p *Portfolio) Domain() string {
	if p.CustomDomain == nil {
		return ""
	}
	return *p.CustomDomain
}

func (p *Portfolio) Routed() string {
	if p.RoutedDomain == nil {
		return ""
	}
	return *p.RoutedDomain
}

// EffectiveTheme is the theme the renderer uses. A free owner keeps any
// stored pro theme on record but renders the baseline.
func EffectiveTheme(p *Portfolio, tier plan.Plan) Theme {
	if p.Theme == "" || tier != plan.Pro {
		return BaselineTheme
	}
	return p.Theme
}

// =====================================================
// CACHE KEYS
// =====================================================

func CacheKeySlug(slug string) string {
	return "portfolio:slug:" + slug
}

func CacheKeyDomain(domain string) string {
	return "portfolio:domain:" + domain
}
