package content

import (
	"regexp"

	"folio-backend/internal/domains/plan"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var datePattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])(-\d{2})?$`)

type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

func (l Link) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Label, validation.Length(0, 80)),
		validation.Field(&l.URL, validation.Required, is.URL, validation.Length(1, 2048)),
	)
}

type SocialLink struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

func (s SocialLink) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Platform, validation.Required, validation.Length(1, 40)),
		validation.Field(&s.URL, validation.Required, is.URL, validation.Length(1, 2048)),
	)
}

// Project is one entry of the ordered projects section.
type Project struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Links       []Link   `json:"links,omitempty"`
	Gallery     []string `json:"gallery,omitempty"`
}

func (p Project) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Required, validation.Length(1, 120)),
		validation.Field(&p.Description, validation.Length(0, 5000)),
		validation.Field(&p.Tags, validation.Length(0, 20), validation.Each(validation.Length(1, 40))),
		validation.Field(&p.Links, validation.Length(0, 10)),
		validation.Field(&p.Gallery, validation.Length(0, 20), validation.Each(is.URL)),
	)
}

type Skill struct {
	Name  string `json:"name"`
	Level string `json:"level,omitempty"`
}

func (s Skill) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Name, validation.Required, validation.Length(1, 60)),
		validation.Field(&s.Level, validation.In("", "beginner", "intermediate", "advanced", "expert")),
	)
}

type Experience struct {
	Company     string `json:"company"`
	Role        string `json:"role"`
	Location    string `json:"location,omitempty"`
	StartDate   string `json:"startDate,omitempty"` // YYYY-MM or YYYY-MM-DD
	EndDate     string `json:"endDate,omitempty"`
	Current     bool   `json:"current,omitempty"`
	Description string `json:"description,omitempty"`
}

func (e Experience) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Company, validation.Required, validation.Length(1, 120)),
		validation.Field(&e.Role, validation.Required, validation.Length(1, 120)),
		validation.Field(&e.Location, validation.Length(0, 120)),
		validation.Field(&e.StartDate, validation.Match(datePattern)),
		validation.Field(&e.EndDate, validation.Match(datePattern), validation.When(e.Current, validation.Empty)),
		validation.Field(&e.Description, validation.Length(0, 5000)),
	)
}

type SEOMeta struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
}

func (m SEOMeta) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Title, validation.Length(0, 70)),
		validation.Field(&m.Description, validation.Length(0, 160)),
		validation.Field(&m.Keywords, validation.Length(0, 20), validation.Each(validation.Length(1, 40))),
	)
}

// Section list limits
const (
	MaxProjects    = 50
	MaxExperience  = 50
	MaxSkills      = 100
	MaxSocialLinks = 20
)

// =====================================================
// PROTECTED SECTIONS
// =====================================================

// Sections are the pro-only content blocks shared by portfolios and the
// legacy inline account content.
type Sections struct {
	Projects   []Project    `json:"projects"`
	Experience []Experience `json:"experience"`
	Skills     []Skill      `json:"skills"`
	SEOMeta    SEOMeta      `json:"seoMeta"`
}

// SectionsPatch carries the optional protected section edits of a patch.
type SectionsPatch struct {
	Projects   Optional[[]Project]    `json:"projects"`
	Experience Optional[[]Experience] `json:"experience"`
	Skills     Optional[[]Skill]      `json:"skills"`
	SEOMeta    Optional[SEOMeta]      `json:"seoMeta"`
}

// FirstChange returns the name of the first section whose patched value
// differs structurally from cur. Identical values are not changes.
func (p SectionsPatch) FirstChange(cur Sections) (string, bool) {
	switch {
	case p.Projects.Set && !StructurallyEqual(p.Projects.Value, cur.Projects):
		return plan.SectionProjects, true
	case p.Experience.Set && !StructurallyEqual(p.Experience.Value, cur.Experience):
		return plan.SectionExperience, true
	case p.Skills.Set && !StructurallyEqual(p.Skills.Value, cur.Skills):
		return plan.SectionSkills, true
	case p.SEOMeta.Set && !StructurallyEqual(p.SEOMeta.Value, cur.SEOMeta):
		return plan.SectionSEOMeta, true
	}
	return "", false
}

// Errors validates the sent sections into an ozzo error map.
func (p SectionsPatch) Errors() validation.Errors {
	errs := validation.Errors{}
	if p.Projects.Set {
		errs[plan.SectionProjects] = validation.Validate(p.Projects.Value, validation.Length(0, MaxProjects))
	}
	if p.Experience.Set {
		errs[plan.SectionExperience] = validation.Validate(p.Experience.Value, validation.Length(0, MaxExperience))
	}
	if p.Skills.Set {
		errs[plan.SectionSkills] = validation.Validate(p.Skills.Value, validation.Length(0, MaxSkills))
	}
	if p.SEOMeta.Set {
		errs[plan.SectionSEOMeta] = validation.Validate(p.SEOMeta.Value)
	}
	return errs
}

// Merge applies the sent sections over cur and returns the result.
func (p SectionsPatch) Merge(cur Sections) Sections {
	if p.Projects.Set {
		cur.Projects = p.Projects.Value
	}
	if p.Experience.Set {
		cur.Experience = p.Experience.Value
	}
	if p.Skills.Set {
		cur.Skills = p.Skills.Value
	}
	if p.SEOMeta.Set {
		cur.SEOMeta = p.SEOMeta.Value
	}
	return cur
}
