package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scholarship-finder/internal/domain"
	"scholarship-finder/internal/repository/memory"
)

var (
	alice = domain.Identity{UserID: "alice", Role: domain.RoleUser, SessionToken: "a"}
	bob   = domain.Identity{UserID: "bob", Role: domain.RoleUser, SessionToken: "b"}
)

func seedScholarship(t *testing.T, store *memory.Store, id string, docs ...string) domain.Scholarship {
	t.Helper()
	now := time.Now().UTC()
	sch := domain.Scholarship{
		ID:                id,
		Title:             "Scholarship " + id,
		Currency:          "USD",
		Active:            true,
		RequiredDocuments: docs,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	require.NoError(t, store.Scholarships().Create(context.Background(), sch))
	return sch
}

func newApplicationService(store *memory.Store) *ApplicationService {
	return NewApplicationService(zap.NewNop(), store.Applications(), store.Documents(), store.Tasks(), store.Scholarships())
}

func TestApplicationServiceCreateWithRequiredDocuments(t *testing.T) {
	store := memory.NewStore()
	seedScholarship(t, store, "s1", "Transcript", "CV")
	svc := newApplicationService(store)

	detail, err := svc.Create(context.Background(), alice, ApplicationInput{ScholarshipID: "s1", Notes: "first"})
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationDraft, detail.Status)
	assert.Equal(t, "Scholarship s1", detail.ScholarshipTitle)
	require.Len(t, detail.Documents, 2)
	for _, d := range detail.Documents {
		assert.Equal(t, domain.DocumentPending, d.Status)
		assert.Equal(t, detail.ID, d.ApplicationID)
	}

	docs, tasks := store.ChildCount(detail.ID)
	assert.Equal(t, 2, docs)
	assert.Equal(t, 0, tasks)
}

func TestApplicationServiceCreateMissingScholarship(t *testing.T) {
	store := memory.NewStore()
	svc := newApplicationService(store)

	_, err := svc.Create(context.Background(), alice, ApplicationInput{ScholarshipID: "nope"})
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, store.ApplicationCount())
}

func TestApplicationServiceCreateDuplicate(t *testing.T) {
	store := memory.NewStore()
	seedScholarship(t, store, "s1", "CV")
	svc := newApplicationService(store)

	_, err := svc.Create(context.Background(), alice, ApplicationInput{ScholarshipID: "s1"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), alice, ApplicationInput{ScholarshipID: "s1"})
	require.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 1, store.ApplicationCount())

	_, err = svc.Create(context.Background(), bob, ApplicationInput{ScholarshipID: "s1"})
	require.NoError(t, err, "another user may apply to the same scholarship")
}

func TestApplicationServiceCreateClosedScholarship(t *testing.T) {
	store := memory.NewStore()
	sch := seedScholarship(t, store, "s1")
	sch.Active = false
	require.NoError(t, store.Scholarships().Update(context.Background(), sch))

	_, err := newApplicationService(store).Create(context.Background(), alice, ApplicationInput{ScholarshipID: "s1"})
	require.ErrorIs(t, err, ErrValidation)
}

func TestApplicationServiceRequiresIdentity(t *testing.T) {
	store := memory.NewStore()
	seedScholarship(t, store, "s1")
	svc := newApplicationService(store)

	_, err := svc.Create(context.Background(), domain.Identity{}, ApplicationInput{ScholarshipID: "s1"})
	require.ErrorIs(t, err, ErrUnauthenticated)
	_, err = svc.List(context.Background(), domain.Identity{})
	require.ErrorIs(t, err, ErrUnauthenticated)
	assert.Equal(t, 0, store.ApplicationCount())
}

func TestApplicationServiceOwnership(t *testing.T) {
	store := memory.NewStore()
	seedScholarship(t, store, "s1", "CV")
	svc := newApplicationService(store)
	ctx := context.Background()

	detail, err := svc.Create(ctx, alice, ApplicationInput{ScholarshipID: "s1"})
	require.NoError(t, err)
	task, err := svc.AddTask(ctx, alice, detail.ID, TaskInput{Title: "Ask for letters"})
	require.NoError(t, err)
	docID := detail.Documents[0].ID

	status := domain.ApplicationSubmitted
	checks := map[string]error{}
	_, checks["get"] = svc.Get(ctx, bob, detail.ID)
	_, checks["update"] = svc.Update(ctx, bob, detail.ID, domain.ApplicationPatch{Status: &status})
	checks["delete"] = svc.Delete(ctx, bob, detail.ID)
	_, checks["list documents"] = svc.ListDocuments(ctx, bob, detail.ID)
	_, checks["add document"] = svc.AddDocument(ctx, bob, detail.ID, DocumentInput{Name: "Essay"})
	_, checks["update document"] = svc.UpdateDocument(ctx, bob, detail.ID, docID, domain.DocumentPatch{Status: &status})
	checks["delete document"] = svc.DeleteDocument(ctx, bob, detail.ID, docID)
	_, checks["list tasks"] = svc.ListTasks(ctx, bob, detail.ID)
	_, checks["add task"] = svc.AddTask(ctx, bob, detail.ID, TaskInput{Title: "x"})
	_, checks["update task"] = svc.UpdateTask(ctx, bob, detail.ID, task.ID, domain.TaskPatch{Title: &status})
	checks["delete task"] = svc.DeleteTask(ctx, bob, detail.ID, task.ID)

	for op, err := range checks {
		assert.ErrorIs(t, err, ErrNotFound, op)
	}

	got, err := svc.Get(ctx, alice, detail.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationDraft, got.Status)
	assert.Len(t, got.Documents, 1)
	assert.Len(t, got.Tasks, 1)
}

func TestApplicationServiceUpdate(t *testing.T) {
	store := memory.NewStore()
	seedScholarship(t, store, "s1")
	svc := newApplicationService(store)
	now := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	detail, err := svc.Create(ctx, alice, ApplicationInput{ScholarshipID: "s1", Notes: "keep me"})
	require.NoError(t, err)

	status := domain.ApplicationSubmitted
	updated, err := svc.Update(ctx, alice, detail.ID, domain.ApplicationPatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationSubmitted, updated.Status)
	assert.Equal(t, "keep me", updated.Notes, "nil fields keep their value")
	require.NotNil(t, updated.SubmittedAt)
	assert.True(t, updated.SubmittedAt.Equal(now))

	bad := "archived"
	_, err = svc.Update(ctx, alice, detail.ID, domain.ApplicationPatch{Status: &bad})
	require.ErrorIs(t, err, ErrValidation)
	_, err = svc.Update(ctx, alice, detail.ID, domain.ApplicationPatch{})
	require.ErrorIs(t, err, ErrValidation)
}

func TestApplicationServiceDeleteCascades(t *testing.T) {
	store := memory.NewStore()
	seedScholarship(t, store, "s1", "CV", "Transcript")
	svc := newApplicationService(store)
	ctx := context.Background()

	detail, err := svc.Create(ctx, alice, ApplicationInput{ScholarshipID: "s1"})
	require.NoError(t, err)
	_, err = svc.AddTask(ctx, alice, detail.ID, TaskInput{Title: "Book exam"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, alice, detail.ID))
	docs, tasks := store.ChildCount(detail.ID)
	assert.Zero(t, docs)
	assert.Zero(t, tasks)
	assert.Zero(t, store.ApplicationCount())

	require.ErrorIs(t, svc.Delete(ctx, alice, detail.ID), ErrNotFound)
}

func TestApplicationServiceDocumentsAndTasks(t *testing.T) {
	store := memory.NewStore()
	seedScholarship(t, store, "s1")
	svc := newApplicationService(store)
	ctx := context.Background()

	detail, err := svc.Create(ctx, alice, ApplicationInput{ScholarshipID: "s1"})
	require.NoError(t, err)

	doc, err := svc.AddDocument(ctx, alice, detail.ID, DocumentInput{Name: " Essay "})
	require.NoError(t, err)
	assert.Equal(t, "Essay", doc.Name)
	assert.Equal(t, domain.DocumentPending, doc.Status)

	_, err = svc.AddDocument(ctx, alice, detail.ID, DocumentInput{Name: "Essay", Status: "lost"})
	require.ErrorIs(t, err, ErrValidation)

	uploaded := domain.DocumentUploaded
	url := "https://files.example.com/essay.pdf"
	doc, err = svc.UpdateDocument(ctx, alice, detail.ID, doc.ID, domain.DocumentPatch{Status: &uploaded, URL: &url})
	require.NoError(t, err)
	assert.Equal(t, uploaded, doc.Status)
	assert.Equal(t, "Essay", doc.Name)

	due := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	task, err := svc.AddTask(ctx, alice, detail.ID, TaskInput{Title: "Write essay", DueDate: &due})
	require.NoError(t, err)
	done := true
	task, err = svc.UpdateTask(ctx, alice, detail.ID, task.ID, domain.TaskPatch{Completed: &done})
	require.NoError(t, err)
	assert.True(t, task.Completed)
	assert.Equal(t, "Write essay", task.Title)

	require.NoError(t, svc.DeleteDocument(ctx, alice, detail.ID, doc.ID))
	require.NoError(t, svc.DeleteTask(ctx, alice, detail.ID, task.ID))
	docs, tasks := store.ChildCount(detail.ID)
	assert.Zero(t, docs)
	assert.Zero(t, tasks)
}

func TestApplicationServicePropagatesStoreErrors(t *testing.T) {
	store := memory.NewStore()
	seedScholarship(t, store, "s1")
	store.FailWith = errors.New("db down")

	_, err := newApplicationService(store).List(context.Background(), alice)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
