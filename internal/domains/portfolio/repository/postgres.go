package repository

import (
	"context"
	"errors"
	"fmt"

	"folio-backend/internal/domains/portfolio"
	"folio-backend/internal/infrastructure/database"
	"folio-backend/internal/shared"
	"folio-backend/internal/shared/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const portfolioColumns = `
	id, account_id, slug, custom_domain, domain_verified, routed_domain,
	title, subtitle, description, contact_email, phone, location,
	avatar_url, cover_url, resume_url,
	social_links, projects, skills, experience, seo_meta,
	theme, font, created_at, updated_at`

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) portfolio.Repository {
	return &postgresRepository{pool: pool}
}

// ========================================
// BASIC CRUD
// ========================================

func (r *postgresRepository) Create(ctx context.Context, p *portfolio.Portfolio) error {
	query := `
		INSERT INTO portfolios (id, account_id, slug, title, theme, font)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + portfolioColumns

	created, err := scanPortfolio(r.pool.QueryRow(ctx, query,
		p.ID, p.AccountID, p.Slug, p.Title, p.Theme, p.Font,
	))
	if err != nil {
		return mapUniqueViolation(err)
	}
	*p = *created
	return nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*portfolio.Portfolio, error) {
	query := `SELECT ` + portfolioColumns + ` FROM portfolios WHERE id = $1`
	return scanPortfolio(r.pool.QueryRow(ctx, query, id))
}

func (r *postgresRepository) FindBySlug(ctx context.Context, slug string) (*portfolio.Portfolio, error) {
	query := `SELECT ` + portfolioColumns + ` FROM portfolios WHERE slug = $1`
	return scanPortfolio(r.pool.QueryRow(ctx, query, slug))
}

func (r *postgresRepository) FindByVerifiedDomain(ctx context.Context, domain string) (*portfolio.Portfolio, error) {
	query := `SELECT ` + portfolioColumns + ` FROM portfolios WHERE custom_domain = $1 AND domain_verified`
	return scanPortfolio(r.pool.QueryRow(ctx, query, domain))
}

func (r *postgresRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*portfolio.Portfolio, error) {
	query := `SELECT ` + portfolioColumns + ` FROM portfolios WHERE account_id = $1 ORDER BY created_at`
	return r.list(ctx, query, accountID)
}

// ========================================
// UNIQUENESS
// ========================================

func (r *postgresRepository) SlugTaken(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM portfolios WHERE slug = $1 AND id <> $2)`
	var taken bool
	if err := r.pool.QueryRow(ctx, query, slug, excludeID).Scan(&taken); err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return taken, nil
}

func (r *postgresRepository) DomainTaken(ctx context.Context, domain string, excludeID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM portfolios WHERE custom_domain = $1 AND id <> $2)`
	var taken bool
	if err := r.pool.QueryRow(ctx, query, domain, excludeID).Scan(&taken); err != nil {
		return false, fmt.Errorf("check domain: %w", err)
	}
	return taken, nil
}

// ========================================
// PARTIAL UPDATE
// ========================================

// ApplyUpdate is a single statement, so the domain reset can never be
// observed apart from the domain change.
func (r *postgresRepository) ApplyUpdate(ctx context.Context, id uuid.UUID, u portfolio.Update) (*portfolio.Portfolio, error) {
	p := u.Patch
	b := utils.NewUpdateBuilder()

	if p.Slug.Set {
		b.Set("slug", p.Slug.Value)
	}
	if p.CustomDomain.Set {
		var domain *string
		if p.CustomDomain.Value != "" {
			domain = &p.CustomDomain.Value
		}
		b.Set("custom_domain", domain)
	}
	if u.ResetDomainVerification {
		b.SetRaw("domain_verified = FALSE")
	}

	for column, field := range map[string]struct {
		set   bool
		value string
	}{
		"title":         {p.Title.Set, p.Title.Value},
		"subtitle":      {p.Subtitle.Set, p.Subtitle.Value},
		"description":   {p.Description.Set, p.Description.Value},
		"contact_email": {p.ContactEmail.Set, p.ContactEmail.Value},
		"phone":         {p.Phone.Set, p.Phone.Value},
		"location":      {p.Location.Set, p.Location.Value},
		"avatar_url":    {p.AvatarURL.Set, p.AvatarURL.Value},
		"cover_url":     {p.CoverURL.Set, p.CoverURL.Value},
		"resume_url":    {p.ResumeURL.Set, p.ResumeURL.Value},
		"font":          {p.Font.Set, p.Font.Value},
	} {
		if field.set {
			b.Set(column, field.value)
		}
	}
	if p.Theme.Set {
		b.Set("theme", p.Theme.Value)
	}
	if p.SocialLinks.Set {
		b.Set("social_links", nonNil(p.SocialLinks.Value))
	}
	if p.Projects.Set {
		b.Set("projects", nonNil(p.Projects.Value))
	}
	if p.Experience.Set {
		b.Set("experience", nonNil(p.Experience.Value))
	}
	if p.Skills.Set {
		b.Set("skills", nonNil(p.Skills.Value))
	}
	if p.SEOMeta.Set {
		b.Set("seo_meta", p.SEOMeta.Value)
	}

	if b.Empty() && !u.ResetDomainVerification {
		return r.FindByID(ctx, id)
	}
	b.SetRaw("updated_at = NOW()")

	query, args := b.Build("portfolios", "id", id, portfolioColumns)
	updated, err := scanPortfolio(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapUniqueViolation(err)
	}
	return updated, nil
}

// ========================================
// DOMAIN STATE
// ========================================

func (r *postgresRepository) MarkDomainVerified(ctx context.Context, id uuid.UUID, domain string) (bool, error) {
	query := `
		UPDATE portfolios
		SET domain_verified = TRUE, updated_at = NOW()
		WHERE id = $1 AND custom_domain = $2
	`
	tag, err := r.pool.Exec(ctx, query, id, domain)
	if err != nil {
		return false, fmt.Errorf("mark domain verified: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *postgresRepository) MarkRouted(ctx context.Context, id uuid.UUID, domain string) error {
	query := `
		UPDATE portfolios
		SET routed_domain = $2
		WHERE id = $1 AND custom_domain = $2 AND domain_verified
	`
	if _, err := r.pool.Exec(ctx, query, id, domain); err != nil {
		return fmt.Errorf("mark routed: %w", err)
	}
	return nil
}

func (r *postgresRepository) ListUnrouted(ctx context.Context, limit int) ([]*portfolio.Portfolio, error) {
	query := `
		SELECT ` + portfolioColumns + `
		FROM portfolios
		WHERE domain_verified
		  AND custom_domain IS NOT NULL
		  AND routed_domain IS DISTINCT FROM custom_domain
		ORDER BY updated_at
		LIMIT $1
	`
	return r.list(ctx, query, limit)
}

// ========================================
// HELPERS
// ========================================

func (r *postgresRepository) list(ctx context.Context, query string, args ...any) ([]*portfolio.Portfolio, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query portfolios: %w", err)
	}
	defer rows.Close()

	var out []*portfolio.Portfolio
	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPortfolio(row pgx.Row) (*portfolio.Portfolio, error) {
	var p portfolio.Portfolio
	err := row.Scan(
		&p.ID, &p.AccountID, &p.Slug, &p.CustomDomain, &p.DomainVerified, &p.RoutedDomain,
		&p.Title, &p.Subtitle, &p.Description, &p.ContactEmail, &p.Phone, &p.Location,
		&p.AvatarURL, &p.CoverURL, &p.ResumeURL,
		&p.SocialLinks, &p.Projects, &p.Skills, &p.Experience, &p.SEOMeta,
		&p.Theme, &p.Font, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, portfolio.ErrPortfolioNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

func mapUniqueViolation(err error) error {
	constraint, ok := database.IsUniqueViolation(err)
	if !ok {
		return err
	}
	switch constraint {
	case database.ConstraintPortfolioSlug:
		return shared.Reject(shared.ErrSlugTaken, "slug", err)
	case database.ConstraintPortfolioDomain:
		return shared.Reject(shared.ErrDomainTaken, "customDomain", err)
	}
	return err
}
