// Package questions holds the employer-side catalog of screening question
// templates and turns a selection into a job's ordered question list.
//
// Registry is a value: every operation returns a new snapshot and leaves the
// receiver untouched. Operations are total. Blank input and out-of-range
// indices are absorbed as no-ops.
package questions

import (
	"strings"

	"jobboard-workers/internal/common/metrics"
	"jobboard-workers/internal/models"
)

// DefaultSeeds are the templates every registry starts with.
var DefaultSeeds = []string{
	"Why do you want to work here?",
	"Describe your strengths and weaknesses.",
	"What are your salary expectations?",
	"Where do you see yourself in 5 years?",
	"What motivates you?",
}

type Registry struct {
	templates []models.QuestionTemplate
	input     string
}

// New seeds a registry. Blank seeds and case-insensitive repeats are dropped.
func New(seeds []string) Registry {
	r := Registry{templates: make([]models.QuestionTemplate, 0, len(seeds))}
	for _, s := range seeds {
		text := strings.TrimSpace(s)
		if text == "" || r.indexOf(text) >= 0 {
			continue
		}
		r.templates = append(r.templates, models.QuestionTemplate{Text: text})
	}
	return r
}

func Default() Registry {
	return New(DefaultSeeds)
}

// Templates returns a copy of the catalog in registry order.
func (r Registry) Templates() []models.QuestionTemplate {
	out := make([]models.QuestionTemplate, len(r.templates))
	copy(out, r.templates)
	return out
}

func (r Registry) Len() int {
	return len(r.templates)
}

// Input is the pending custom question text.
func (r Registry) Input() string {
	return r.input
}

func (r Registry) SetInput(text string) Registry {
	next := r.clone()
	next.input = text
	return next
}

// Selected returns the texts currently marked for commit.
func (r Registry) Selected() []string {
	var out []string
	for _, t := range r.templates {
		if t.Selected {
			out = append(out, t.Text)
		}
	}
	return out
}

// ToggleSelection flips the selected flag of template i.
func (r Registry) ToggleSelection(i int) Registry {
	if !r.inRange(i) {
		return r
	}
	next := r.clone()
	next.templates[i].Selected = !next.templates[i].Selected
	return next
}

// AddCustom appends a selected custom template. Blank text leaves the
// registry untouched, input included. A case-insensitive duplicate only
// clears the input.
func (r Registry) AddCustom(raw string) Registry {
	text := strings.TrimSpace(raw)
	if text == "" {
		return r
	}

	next := r.clone()
	next.input = ""
	if next.indexOf(text) >= 0 {
		return next
	}

	next.templates = append(next.templates, models.QuestionTemplate{
		Text:     text,
		Selected: true,
		IsCustom: true,
	})
	metrics.CustomQuestionsAdded.Inc()
	return next
}

// AddInput adds the pending input as a custom template.
func (r Registry) AddInput() Registry {
	return r.AddCustom(r.input)
}

// Remove deletes template i when it is custom. Seeded templates stay.
func (r Registry) Remove(i int) Registry {
	if !r.inRange(i) || !r.templates[i].IsCustom {
		return r
	}
	next := r.clone()
	next.templates = append(next.templates[:i], next.templates[i+1:]...)
	return next
}

// CommitSelectedToJob appends every selected template whose text is not
// already in current (exact match), in registry order, and clears the
// selection of each template it appended. current is not modified.
func (r Registry) CommitSelectedToJob(current []models.ApplicationQuestion) (Registry, []models.ApplicationQuestion) {
	next := r.clone()
	out := make([]models.ApplicationQuestion, len(current), len(current)+len(r.templates))
	copy(out, current)

	present := make(map[string]struct{}, len(current))
	for _, q := range current {
		present[q.Question] = struct{}{}
	}

	committed := 0
	for i, t := range next.templates {
		if !t.Selected {
			continue
		}
		if _, ok := present[t.Text]; ok {
			continue
		}
		out = append(out, models.ApplicationQuestion{Question: t.Text})
		present[t.Text] = struct{}{}
		next.templates[i].Selected = false
		committed++
	}

	if committed > 0 {
		metrics.QuestionsCommitted.Add(float64(committed))
	}
	return next, out
}

// RemoveFromJob drops entry i from a job's question list. The catalog is
// not involved.
func RemoveFromJob(current []models.ApplicationQuestion, i int) []models.ApplicationQuestion {
	out := make([]models.ApplicationQuestion, 0, len(current))
	for j, q := range current {
		if j != i {
			out = append(out, q)
		}
	}
	return out
}

func (r Registry) clone() Registry {
	return Registry{templates: r.Templates(), input: r.input}
}

func (r Registry) inRange(i int) bool {
	return i >= 0 && i < len(r.templates)
}

func (r Registry) indexOf(text string) int {
	for i, t := range r.templates {
		if strings.EqualFold(t.Text, text) {
			return i
		}
	}
	return -1
}
