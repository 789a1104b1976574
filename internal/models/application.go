// internal/models/application.go
package models

import "time"

// ApplicationResponse is one applicant answer to one job question.
type ApplicationResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Application is a submitted application as stored.
type Application struct {
	ID        string                `json:"id"`
	JobID     string                `json:"jobId"`
	UserID    string                `json:"userId"`
	Responses []ApplicationResponse `json:"responses"`
	Status    string                `json:"status"`
	CreatedAt time.Time             `json:"createdAt"`
}

const ApplicationStatusSubmitted = "submitted"
