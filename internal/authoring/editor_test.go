package authoring

import (
	"context"
	stderrors "errors"
	"testing"

	apperrors "jobboard-workers/internal/common/errors"
	"jobboard-workers/internal/common/logger"
	"jobboard-workers/internal/models"
	"jobboard-workers/internal/questions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mocks
// ==========================

type mockCreator struct {
	mock.Mock
}

func (m *mockCreator) Create(ctx context.Context, draft models.JobDraft) (*models.Job, error) {
	args := m.Called(ctx, draft)
	job, _ := args.Get(0).(*models.Job)
	return job, args.Error(1)
}

type staticProfile struct {
	profile models.Profile
	ok      bool
}

func (s staticProfile) Profile() (models.Profile, bool) {
	return s.profile, s.ok
}

var seeds = []models.EmployerSeed{{Email: "hr@acme.test", Company: "Acme Corp"}}

func employer() staticProfile {
	return staticProfile{profile: models.Profile{UserID: "emp-1", Email: "hr@acme.test", Role: models.RoleEmployer}, ok: true}
}

func validFields() Fields {
	return Fields{
		Title:       "Backend Engineer",
		Location:    "Manila",
		Type:        "Full-Time",
		Description: "Build APIs",
		SalaryMin:   50000,
		SalaryMax:   100000,
	}
}

func newEditor(t *testing.T, creator Creator, profiles ProfileSource) *Editor {
	return NewEditor(creator, profiles, NewSeedLookup(seeds), questions.Default(), logger.NewTestLogger(t))
}

// ==========================
// Company
// ==========================

func TestSeedLookup(t *testing.T) {
	lookup := NewSeedLookup(seeds)

	tests := []struct {
		name    string
		profile models.Profile
		want    string
		wantOK  bool
	}{
		{"admin", models.Profile{Role: models.RoleAdmin, Company: "Ignored"}, AdminCompany, true},
		{"profile company", models.Profile{Role: models.RoleEmployer, Company: "Globex", Email: "hr@acme.test"}, "Globex", true},
		{"seed by email", models.Profile{Role: models.RoleEmployer, Email: "hr@acme.test"}, "Acme Corp", true},
		{"unknown email", models.Profile{Role: models.RoleEmployer, Email: "x@y.z"}, "", false},
		{"no email", models.Profile{Role: models.RoleEmployer}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := lookup.CompanyFor(tt.profile)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestNewEditor_ResolvesCompany(t *testing.T) {
	assert.Equal(t, "Acme Corp", newEditor(t, &mockCreator{}, employer()).Company())
	assert.Equal(t, "", newEditor(t, &mockCreator{}, staticProfile{}).Company())

	admin := staticProfile{profile: models.Profile{UserID: "root", Role: models.RoleAdmin}, ok: true}
	e := newEditor(t, &mockCreator{}, admin)
	assert.Equal(t, AdminCompany, e.Company())
	assert.True(t, e.IsAdmin())
}

// ==========================
// Salary
// ==========================

func TestSalaryFormatting(t *testing.T) {
	assert.Equal(t, "₱10,000", Peso(10000))
	assert.Equal(t, "₱10,000 - ₱20,000", SalaryRange(10000, 20000))

	opts := SalaryOptionList()
	require.Len(t, opts, len(SalaryOptions))
	assert.Equal(t, models.Option{Value: "10000", Label: "₱10,000"}, opts[0])
	assert.Equal(t, models.Option{Value: "300000", Label: "₱300,000+"}, opts[len(opts)-1])
}

// ==========================
// Review
// ==========================

func TestReview(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Fields)
		wantErr string
	}{
		{"valid", func(*Fields) {}, ""},
		{"missing title", func(f *Fields) { f.Title = " " }, MsgFillAllFields},
		{"missing type", func(f *Fields) { f.Type = "" }, MsgFillAllFields},
		{"missing salary", func(f *Fields) { f.SalaryMax = 0 }, MsgFillAllFields},
		{"equal salaries", func(f *Fields) { f.SalaryMin = f.SalaryMax }, MsgSalaryRange},
		{"inverted salaries", func(f *Fields) { f.SalaryMin, f.SalaryMax = 100000, 50000 }, MsgSalaryRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEditor(t, &mockCreator{}, employer())
			f := validFields()
			tt.mutate(&f)
			e.SetFields(f)

			ok := e.Review()

			assert.Equal(t, tt.wantErr == "", ok)
			assert.Equal(t, tt.wantErr, e.Error())
			assert.Equal(t, ok, e.Confirming())
			assert.Equal(t, f, e.Fields(), "fields are kept for correction")
		})
	}
}

func TestReview_SetsSalaryLabel(t *testing.T) {
	e := newEditor(t, &mockCreator{}, employer())
	e.SetFields(validFields())

	require.True(t, e.Review())
	assert.Equal(t, "₱50,000 - ₱100,000", e.Salary())

	e.CancelReview()
	assert.False(t, e.Confirming())
}

// ==========================
// Questions and confirm
// ==========================

func TestEditor_QuestionSelector(t *testing.T) {
	e := newEditor(t, &mockCreator{}, employer())

	e.ToggleTemplate(0)
	e.SetTemplateInput("  Can you relocate?  ")
	e.AddTemplate()
	e.AddSelectedQuestions()

	assert.Equal(t, []models.ApplicationQuestion{
		{Question: questions.DefaultSeeds[0]},
		{Question: "Can you relocate?"},
	}, e.Questions())
	for _, tmpl := range e.Templates() {
		assert.False(t, tmpl.Selected, tmpl.Text)
	}

	e.DeleteTemplate(len(e.Templates()) - 1)
	assert.Len(t, e.Templates(), len(questions.DefaultSeeds))
	assert.Len(t, e.Questions(), 2, "removing a template leaves the posting alone")

	e.RemoveQuestion(0)
	assert.Equal(t, []models.ApplicationQuestion{{Question: "Can you relocate?"}}, e.Questions())
}

func TestConfirm_CreatesJob(t *testing.T) {
	creator := &mockCreator{}
	e := newEditor(t, creator, employer())
	e.SetFields(validFields())
	e.ToggleTemplate(1)
	e.AddSelectedQuestions()
	require.True(t, e.Review())

	want := models.JobDraft{
		Title:                "Backend Engineer",
		Company:              "Acme Corp",
		Location:             "Manila",
		Type:                 "Full-Time",
		Description:          "Build APIs",
		Salary:               "₱50,000 - ₱100,000",
		PostedBy:             "emp-1",
		ApplicationQuestions: []models.ApplicationQuestion{{Question: questions.DefaultSeeds[1]}},
	}
	created := &models.Job{ID: "job-1", Company: "Acme Corp", ApplicationQuestions: want.ApplicationQuestions}
	creator.On("Create", mock.Anything, want).Return(created, nil).Once()

	job, route := e.Confirm(context.Background())

	assert.Equal(t, created, job)
	assert.Equal(t, CreatedRoute, route)
	assert.Empty(t, e.Error())
	assert.False(t, e.Busy())
	creator.AssertExpectations(t)
}

func TestConfirm_NotAuthenticated(t *testing.T) {
	creator := &mockCreator{}
	e := newEditor(t, creator, staticProfile{})
	e.SetFields(validFields())
	require.True(t, e.Review())

	job, route := e.Confirm(context.Background())

	assert.Nil(t, job)
	assert.Empty(t, route)
	assert.Equal(t, MsgNotAuthenticated, e.Error())
	assert.False(t, e.Busy())
	creator.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestConfirm_Failures(t *testing.T) {
	tests := []struct {
		name    string
		job     *models.Job
		err     error
		wantErr string
	}{
		{"nil result", nil, nil, MsgCreateFailed},
		{"plain error", nil, stderrors.New("connection refused"), "Error creating job: connection refused"},
		{"standard error", nil, apperrors.NewDatabaseInsertFailedError(stderrors.New("boom")), "Error creating job: Database insert error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creator := &mockCreator{}
			creator.On("Create", mock.Anything, mock.Anything).Return(tt.job, tt.err)
			e := newEditor(t, creator, employer())
			e.SetFields(validFields())
			e.ToggleTemplate(0)
			e.AddSelectedQuestions()
			require.True(t, e.Review())

			job, route := e.Confirm(context.Background())

			assert.Nil(t, job)
			assert.Empty(t, route)
			assert.Equal(t, tt.wantErr, e.Error())
			assert.True(t, e.Confirming(), "draft stays open for retry")
			assert.Equal(t, validFields(), e.Fields())
			assert.Len(t, e.Questions(), 1)
		})
	}
}

func TestConfirm_RequiresReview(t *testing.T) {
	creator := &mockCreator{}
	e := newEditor(t, creator, employer())
	e.SetFields(validFields())

	job, _ := e.Confirm(context.Background())

	assert.Nil(t, job)
	creator.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
