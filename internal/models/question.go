// internal/models/question.go
package models

// QuestionTemplate is a reusable screening prompt in the authoring catalog.
// Selected is transient form state and is never persisted.
type QuestionTemplate struct {
	Text     string `json:"text"`
	Selected bool   `json:"selected"`
	IsCustom bool   `json:"isCustom"`
}
