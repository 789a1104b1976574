package authoring

import (
	"strings"

	"jobboard-workers/internal/models"
)

// AdminCompany is the company shown on postings made by an administrator.
const AdminCompany = "JobBoard"

// CompanyLookup resolves the company a posting is published under.
type CompanyLookup interface {
	CompanyFor(profile models.Profile) (string, bool)
}

// SeedLookup resolves companies from the profile first and then from a
// static employer table keyed by email.
type SeedLookup struct {
	byEmail map[string]string
}

func NewSeedLookup(seeds []models.EmployerSeed) *SeedLookup {
	byEmail := make(map[string]string, len(seeds))
	for _, s := range seeds {
		byEmail[s.Email] = s.Company
	}
	return &SeedLookup{byEmail: byEmail}
}

func (l *SeedLookup) CompanyFor(profile models.Profile) (string, bool) {
	if profile.Role == models.RoleAdmin {
		return AdminCompany, true
	}
	if c := strings.TrimSpace(profile.Company); c != "" {
		return c, true
	}
	if profile.Email == "" {
		return "", false
	}
	c, ok := l.byEmail[profile.Email]
	return c, ok
}
