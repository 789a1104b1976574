package models

type Role string

const (
	RoleApplicant Role = "applicant"
	RoleEmployer  Role = "employer"
	RoleAdmin     Role = "admin"
)

// Profile is the signed-in user as reported by the identity provider.
type Profile struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Company   string `json:"company,omitempty"`
	Role      Role   `json:"role"`
}

// EmployerSeed associates an employer email with a company name.
type EmployerSeed struct {
	Email   string `json:"email"`
	Company string `json:"company"`
}
