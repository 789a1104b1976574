// internal/models/job.go
package models

import "time"

// Job is a posting as held by the job store.
type Job struct {
	ID                   string                `json:"id"`
	Title                string                `json:"title"`
	Company              string                `json:"company"`
	Location             string                `json:"location"`
	Type                 string                `json:"type"`
	Description          string                `json:"description"`
	Salary               string                `json:"salary"`
	PostedBy             string                `json:"postedBy"`
	ApplicationQuestions []ApplicationQuestion `json:"applicationQuestions"`
	ApplicantCount       int                   `json:"applicantCount"`
	CreatedAt            time.Time             `json:"createdAt"`
}

// JobDraft is what an employer submits to create a posting.
type JobDraft struct {
	Title                string                `json:"title"`
	Company              string                `json:"company"`
	Location             string                `json:"location"`
	Type                 string                `json:"type"`
	Description          string                `json:"description"`
	Salary               string                `json:"salary"`
	PostedBy             string                `json:"postedBy"`
	ApplicationQuestions []ApplicationQuestion `json:"applicationQuestions"`
}

// ApplicationQuestion is a prompt committed to one job. It is a copy, never a
// reference into the template catalog.
type ApplicationQuestion struct {
	Question string `json:"question"`
}

// JobFilters narrows a job listing. Empty fields match everything.
type JobFilters struct {
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location"`
	Type     string `json:"type"`
}

// IsZero reports whether no filter is set.
func (f JobFilters) IsZero() bool {
	return f == JobFilters{}
}

// Option is a value/label pair for a select input.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// JobTypes lists the employment types offered by the search form. The first
// entry matches every type.
var JobTypes = []Option{
	{Value: "", Label: "All Job Types"},
	{Value: "Full-Time", Label: "Full-Time"},
	{Value: "Part-Time", Label: "Part-Time"},
	{Value: "Hybrid", Label: "Hybrid"},
	{Value: "Hybrid(1 day onsite / WFH rest of the week)", Label: "Hybrid"},
	{Value: "Hybrid(2 days onsite / WFH rest of the week)", Label: "Hybrid"},
	{Value: "Hybrid(3 days onsite / WFH rest of the week)", Label: "Hybrid"},
	{Value: "Full-Time(Remote)", Label: "Full-Time-Remote"},
	{Value: "Part-Time(Remote)", Label: "Part-Time-Remote"},
	{Value: "Contract", Label: "Contract"},
	{Value: "Remote", Label: "Remote"},
}
