package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"scholarship-finder/internal/domain"
	"scholarship-finder/internal/repository"
)

// ApplicationService gestiona postulaciones y sus documentos y tareas.
// Toda lectura se filtra por el usuario de la identidad: un recurso ajeno
// responde igual que uno inexistente.
type ApplicationService struct {
	logger       *zap.Logger
	applications repository.ApplicationRepository
	documents    repository.DocumentRepository
	tasks        repository.TaskRepository
	scholarships repository.ScholarshipRepository
	now          func() time.Time
}

func NewApplicationService(
	logger *zap.Logger,
	applications repository.ApplicationRepository,
	documents repository.DocumentRepository,
	tasks repository.TaskRepository,
	scholarships repository.ScholarshipRepository,
) *ApplicationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationService{
		logger:       logger,
		applications: applications,
		documents:    documents,
		tasks:        tasks,
		scholarships: scholarships,
		now:          time.Now,
	}
}

type ApplicationInput struct {
	ScholarshipID string `json:"scholarship_id"`
	Notes         string `json:"notes"`
}

type ApplicationDetail struct {
	domain.Application
	Documents []domain.Document `json:"documents"`
	Tasks     []domain.Task     `json:"tasks"`
}

func (s *ApplicationService) List(ctx context.Context, identity domain.Identity) ([]domain.Application, error) {
	if !identity.Authenticated() {
		return nil, ErrUnauthenticated
	}
	return s.applications.ListByUser(ctx, identity.UserID)
}

// Create abre una postulacion y genera un documento pendiente por cada
// documento requerido de la beca, todo en una transaccion.
func (s *ApplicationService) Create(ctx context.Context, identity domain.Identity, input ApplicationInput) (ApplicationDetail, error) {
	if !identity.Authenticated() {
		return ApplicationDetail{}, ErrUnauthenticated
	}
	scholarshipID := strings.TrimSpace(input.ScholarshipID)
	if scholarshipID == "" {
		return ApplicationDetail{}, invalidf("scholarship_id is required")
	}
	sch, err := s.scholarships.GetByID(ctx, scholarshipID)
	if err != nil {
		return ApplicationDetail{}, translate(err, "scholarship")
	}
	if !sch.Active {
		return ApplicationDetail{}, invalidf("scholarship is closed")
	}

	now := s.now().UTC()
	app := domain.Application{
		ID:            uuid.NewString(),
		UserID:        identity.UserID,
		ScholarshipID: sch.ID,
		Status:        domain.ApplicationDraft,
		Notes:         input.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	docs := make([]domain.Document, 0, len(sch.RequiredDocuments))
	for _, name := range sch.RequiredDocuments {
		docs = append(docs, domain.Document{
			ID:            uuid.NewString(),
			ApplicationID: app.ID,
			Name:          name,
			Status:        domain.DocumentPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}

	if err := s.applications.CreateWithDocuments(ctx, app, docs); err != nil {
		if isDuplicate(err) {
			return ApplicationDetail{}, conflict("already applied to this scholarship")
		}
		return ApplicationDetail{}, translate(err, "application")
	}
	s.logger.Info("application created",
		zap.String("application_id", app.ID),
		zap.String("user_id", identity.UserID),
		zap.Int("documents", len(docs)),
	)

	app.ScholarshipTitle = sch.Title
	app.Deadline = sch.Deadline
	return ApplicationDetail{Application: app, Documents: docs, Tasks: []domain.Task{}}, nil
}

func (s *ApplicationService) Get(ctx context.Context, identity domain.Identity, id string) (ApplicationDetail, error) {
	app, err := s.owned(ctx, identity, id)
	if err != nil {
		return ApplicationDetail{}, err
	}
	docs, err := s.documents.ListByApplication(ctx, app.ID)
	if err != nil {
		return ApplicationDetail{}, err
	}
	tasks, err := s.tasks.ListByApplication(ctx, app.ID)
	if err != nil {
		return ApplicationDetail{}, err
	}
	return ApplicationDetail{Application: app, Documents: docs, Tasks: tasks}, nil
}

func (s *ApplicationService) Update(ctx context.Context, identity domain.Identity, id string, patch domain.ApplicationPatch) (domain.Application, error) {
	if patch.IsEmpty() {
		return domain.Application{}, invalidf("nothing to update")
	}
	app, err := s.owned(ctx, identity, id)
	if err != nil {
		return domain.Application{}, err
	}
	now := s.now().UTC()
	patch.Apply(&app, now)
	if err := app.Validate(); err != nil {
		return domain.Application{}, invalid(err)
	}
	app.UpdatedAt = now
	if err := s.applications.Update(ctx, app); err != nil {
		return domain.Application{}, translate(err, "application")
	}
	return app, nil
}

// Delete borra la postulacion con sus documentos y tareas.
func (s *ApplicationService) Delete(ctx context.Context, identity domain.Identity, id string) error {
	if !identity.Authenticated() {
		return ErrUnauthenticated
	}
	if err := s.applications.DeleteForUser(ctx, id, identity.UserID); err != nil {
		return translate(err, "application")
	}
	s.logger.Info("application deleted", zap.String("application_id", id), zap.String("user_id", identity.UserID))
	return nil
}

// Documentos

type DocumentInput struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	URL    string `json:"url"`
	Notes  string `json:"notes"`
}

func (s *ApplicationService) ListDocuments(ctx context.Context, identity domain.Identity, applicationID string) ([]domain.Document, error) {
	if _, err := s.owned(ctx, identity, applicationID); err != nil {
		return nil, err
	}
	return s.documents.ListByApplication(ctx, applicationID)
}

func (s *ApplicationService) AddDocument(ctx context.Context, identity domain.Identity, applicationID string, input DocumentInput) (domain.Document, error) {
	if _, err := s.owned(ctx, identity, applicationID); err != nil {
		return domain.Document{}, err
	}
	now := s.now().UTC()
	doc := domain.Document{
		ID:            uuid.NewString(),
		ApplicationID: applicationID,
		Name:          strings.TrimSpace(input.Name),
		Status:        strings.TrimSpace(input.Status),
		URL:           strings.TrimSpace(input.URL),
		Notes:         input.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if doc.Status == "" {
		doc.Status = domain.DocumentPending
	}
	if err := doc.Validate(); err != nil {
		return domain.Document{}, invalid(err)
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		return domain.Document{}, translate(err, "document")
	}
	return doc, nil
}

func (s *ApplicationService) UpdateDocument(ctx context.Context, identity domain.Identity, applicationID, documentID string, patch domain.DocumentPatch) (domain.Document, error) {
	if !identity.Authenticated() {
		return domain.Document{}, ErrUnauthenticated
	}
	doc, err := s.documents.GetForUser(ctx, documentID, applicationID, identity.UserID)
	if err != nil {
		return domain.Document{}, translate(err, "document")
	}
	patch.Apply(&doc)
	if err := doc.Validate(); err != nil {
		return domain.Document{}, invalid(err)
	}
	doc.UpdatedAt = s.now().UTC()
	if err := s.documents.Update(ctx, doc); err != nil {
		return domain.Document{}, translate(err, "document")
	}
	return doc, nil
}

func (s *ApplicationService) DeleteDocument(ctx context.Context, identity domain.Identity, applicationID, documentID string) error {
	if !identity.Authenticated() {
		return ErrUnauthenticated
	}
	if _, err := s.documents.GetForUser(ctx, documentID, applicationID, identity.UserID); err != nil {
		return translate(err, "document")
	}
	return translate(s.documents.Delete(ctx, documentID, applicationID), "document")
}

// Tareas

type TaskInput struct {
	Title   string     `json:"title"`
	DueDate *time.Time `json:"due_date"`
}

func (s *ApplicationService) ListTasks(ctx context.Context, identity domain.Identity, applicationID string) ([]domain.Task, error) {
	if _, err := s.owned(ctx, identity, applicationID); err != nil {
		return nil, err
	}
	return s.tasks.ListByApplication(ctx, applicationID)
}

func (s *ApplicationService) AddTask(ctx context.Context, identity domain.Identity, applicationID string, input TaskInput) (domain.Task, error) {
	if _, err := s.owned(ctx, identity, applicationID); err != nil {
		return domain.Task{}, err
	}
	now := s.now().UTC()
	task := domain.Task{
		ID:            uuid.NewString(),
		ApplicationID: applicationID,
		Title:         strings.TrimSpace(input.Title),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if input.DueDate != nil {
		due := input.DueDate.UTC()
		task.DueDate = &due
	}
	if err := task.Validate(); err != nil {
		return domain.Task{}, invalid(err)
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return domain.Task{}, translate(err, "task")
	}
	return task, nil
}

func (s *ApplicationService) UpdateTask(ctx context.Context, identity domain.Identity, applicationID, taskID string, patch domain.TaskPatch) (domain.Task, error) {
	if !identity.Authenticated() {
		return domain.Task{}, ErrUnauthenticated
	}
	task, err := s.tasks.GetForUser(ctx, taskID, applicationID, identity.UserID)
	if err != nil {
		return domain.Task{}, translate(err, "task")
	}
	patch.Apply(&task)
	if err := task.Validate(); err != nil {
		return domain.Task{}, invalid(err)
	}
	task.UpdatedAt = s.now().UTC()
	if err := s.tasks.Update(ctx, task); err != nil {
		return domain.Task{}, translate(err, "task")
	}
	return task, nil
}

func (s *ApplicationService) DeleteTask(ctx context.Context, identity domain.Identity, applicationID, taskID string) error {
	if !identity.Authenticated() {
		return ErrUnauthenticated
	}
	if _, err := s.tasks.GetForUser(ctx, taskID, applicationID, identity.UserID); err != nil {
		return translate(err, "task")
	}
	return translate(s.tasks.Delete(ctx, taskID, applicationID), "task")
}

// owned carga la postulacion solo si pertenece al usuario.
func (s *ApplicationService) owned(ctx context.Context, identity domain.Identity, id string) (domain.Application, error) {
	if !identity.Authenticated() {
		return domain.Application{}, ErrUnauthenticated
	}
	app, err := s.applications.GetForUser(ctx, id, identity.UserID)
	if err != nil {
		return domain.Application{}, translate(err, "application")
	}
	return app, nil
}
