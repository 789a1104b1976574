// pkg/catalog/schema.go
package catalog

import "jobboard-workers/internal/models"

// Catalog is the static seed data of the job board: the question templates
// every employer starts from and the employer-to-company table used when a
// profile carries no company.
type Catalog struct {
	Version     string                `json:"version"`
	LastUpdated string                `json:"lastUpdated"`
	Questions   []string              `json:"questions"`
	Employers   []models.EmployerSeed `json:"employers"`
}
