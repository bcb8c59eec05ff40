package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"

	"scholarship-finder/internal/domain"
	"scholarship-finder/internal/repository"
)

// Reference

type Reference struct{ s *Store }

var _ repository.ReferenceRepository = (*Reference)(nil)

func (r *Reference) table(kind string) (map[string]domain.ReferenceItem, error) {
	t, ok := r.s.reference[kind]
	if !ok {
		return nil, repository.ErrUnknownReferenceKind
	}
	return t, nil
}

func (r *Reference) List(_ context.Context, kind string) ([]domain.ReferenceItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return nil, r.s.FailWith
	}
	t, err := r.table(kind)
	if err != nil {
		return nil, err
	}
	items := make([]domain.ReferenceItem, 0, len(t))
	for _, item := range t {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (r *Reference) Create(_ context.Context, kind string, item domain.ReferenceItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	t, err := r.table(kind)
	if err != nil {
		return err
	}
	for _, existing := range t {
		if existing.ID == item.ID || existing.Name == item.Name {
			return repository.ErrDuplicate
		}
	}
	t[item.ID] = item
	return nil
}

func (r *Reference) Update(_ context.Context, kind string, item domain.ReferenceItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	t, err := r.table(kind)
	if err != nil {
		return err
	}
	if _, ok := t[item.ID]; !ok {
		return pgx.ErrNoRows
	}
	for _, existing := range t {
		if existing.ID != item.ID && existing.Name == item.Name {
			return repository.ErrDuplicate
		}
	}
	t[item.ID] = item
	return nil
}

func (r *Reference) Delete(_ context.Context, kind, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	t, err := r.table(kind)
	if err != nil {
		return err
	}
	if _, ok := t[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(t, id)
	return nil
}

// Applications

type Applications struct{ s *Store }

var _ repository.ApplicationRepository = (*Applications)(nil)

func (r *Applications) CreateWithDocuments(_ context.Context, app domain.Application, docs []domain.Document) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	for _, a := range r.s.applications {
		if a.UserID == app.UserID && a.ScholarshipID == app.ScholarshipID {
			return repository.ErrDuplicate
		}
	}
	r.s.applications[app.ID] = app
	for _, d := range docs {
		r.s.documents[d.ID] = d
	}
	return nil
}

func (r *Applications) withScholarship(a domain.Application) domain.Application {
	if sch, ok := r.s.scholarships[a.ScholarshipID]; ok {
		a.ScholarshipTitle = sch.Title
		a.Deadline = sch.Deadline
	}
	return a
}

func (r *Applications) ListByUser(_ context.Context, userID string) ([]domain.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return nil, r.s.FailWith
	}
	apps := []domain.Application{}
	for _, a := range r.s.applications {
		if a.UserID == userID {
			apps = append(apps, r.withScholarship(a))
		}
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].CreatedAt.After(apps[j].CreatedAt) })
	return apps, nil
}

func (r *Applications) GetForUser(_ context.Context, id, userID string) (domain.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return domain.Application{}, r.s.FailWith
	}
	a, ok := r.s.applications[id]
	if !ok || a.UserID != userID {
		return domain.Application{}, pgx.ErrNoRows
	}
	return r.withScholarship(a), nil
}

func (r *Applications) Update(_ context.Context, app domain.Application) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	a, ok := r.s.applications[app.ID]
	if !ok || a.UserID != app.UserID {
		return pgx.ErrNoRows
	}
	app.ScholarshipTitle = ""
	app.Deadline = nil
	r.s.applications[app.ID] = app
	return nil
}

func (r *Applications) DeleteForUser(_ context.Context, id, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	a, ok := r.s.applications[id]
	if !ok || a.UserID != userID {
		return pgx.ErrNoRows
	}
	r.s.deleteApplicationLocked(id)
	return nil
}

func (s *Store) deleteApplicationLocked(id string) {
	for tid, t := range s.tasks {
		if t.ApplicationID == id {
			delete(s.tasks, tid)
		}
	}
	for did, d := range s.documents {
		if d.ApplicationID == id {
			delete(s.documents, did)
		}
	}
	delete(s.applications, id)
}

// ownsLocked replica el JOIN applications ... WHERE a.user_id = $n.
func (s *Store) ownsLocked(applicationID, userID string) bool {
	a, ok := s.applications[applicationID]
	return ok && a.UserID == userID
}

// Documents

type Documents struct{ s *Store }

var _ repository.DocumentRepository = (*Documents)(nil)

func (r *Documents) Create(_ context.Context, doc domain.Document) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	if _, ok := r.s.applications[doc.ApplicationID]; !ok {
		return pgx.ErrNoRows
	}
	r.s.documents[doc.ID] = doc
	return nil
}

func (r *Documents) ListByApplication(_ context.Context, applicationID string) ([]domain.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return nil, r.s.FailWith
	}
	docs := []domain.Document{}
	for _, d := range r.s.documents {
		if d.ApplicationID == applicationID {
			docs = append(docs, d)
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].CreatedAt.Before(docs[j].CreatedAt)
		}
		return docs[i].Name < docs[j].Name
	})
	return docs, nil
}

func (r *Documents) GetForUser(_ context.Context, id, applicationID, userID string) (domain.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return domain.Document{}, r.s.FailWith
	}
	d, ok := r.s.documents[id]
	if !ok || d.ApplicationID != applicationID || !r.s.ownsLocked(applicationID, userID) {
		return domain.Document{}, pgx.ErrNoRows
	}
	return d, nil
}

func (r *Documents) Update(_ context.Context, doc domain.Document) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	d, ok := r.s.documents[doc.ID]
	if !ok || d.ApplicationID != doc.ApplicationID {
		return pgx.ErrNoRows
	}
	r.s.documents[doc.ID] = doc
	return nil
}

func (r *Documents) Delete(_ context.Context, id, applicationID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	d, ok := r.s.documents[id]
	if !ok || d.ApplicationID != applicationID {
		return pgx.ErrNoRows
	}
	delete(r.s.documents, id)
	return nil
}

// Tasks

type Tasks struct{ s *Store }

var _ repository.TaskRepository = (*Tasks)(nil)

func (r *Tasks) Create(_ context.Context, task domain.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	if _, ok := r.s.applications[task.ApplicationID]; !ok {
		return pgx.ErrNoRows
	}
	r.s.tasks[task.ID] = task
	return nil
}

func (r *Tasks) ListByApplication(_ context.Context, applicationID string) ([]domain.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return nil, r.s.FailWith
	}
	tasks := []domain.Task{}
	for _, t := range r.s.tasks {
		if t.ApplicationID == applicationID {
			tasks = append(tasks, t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.Completed != b.Completed {
			return !a.Completed
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return tasks, nil
}

func (r *Tasks) GetForUser(_ context.Context, id, applicationID, userID string) (domain.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return domain.Task{}, r.s.FailWith
	}
	t, ok := r.s.tasks[id]
	if !ok || t.ApplicationID != applicationID || !r.s.ownsLocked(applicationID, userID) {
		return domain.Task{}, pgx.ErrNoRows
	}
	return t, nil
}

func (r *Tasks) Update(_ context.Context, task domain.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	t, ok := r.s.tasks[task.ID]
	if !ok || t.ApplicationID != task.ApplicationID {
		return pgx.ErrNoRows
	}
	r.s.tasks[task.ID] = task
	return nil
}

func (r *Tasks) Delete(_ context.Context, id, applicationID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	t, ok := r.s.tasks[id]
	if !ok || t.ApplicationID != applicationID {
		return pgx.ErrNoRows
	}
	delete(r.s.tasks, id)
	return nil
}

// Favorites

type Favorites struct{ s *Store }

var _ repository.FavoriteRepository = (*Favorites)(nil)

func favoriteKey(userID, scholarshipID string) string {
	return userID + "|" + scholarshipID
}

func (r *Favorites) Create(_ context.Context, fav domain.Favorite) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	key := favoriteKey(fav.UserID, fav.ScholarshipID)
	if _, ok := r.s.favorites[key]; ok {
		return repository.ErrDuplicate
	}
	fav.Scholarship = nil
	r.s.favorites[key] = fav
	return nil
}

func (r *Favorites) ListByUser(_ context.Context, userID string) ([]domain.Favorite, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return nil, r.s.FailWith
	}
	favs := []domain.Favorite{}
	for _, f := range r.s.favorites {
		if f.UserID != userID {
			continue
		}
		sch, ok := r.s.scholarships[f.ScholarshipID]
		if !ok {
			continue
		}
		f.Scholarship = &sch
		favs = append(favs, f)
	}
	sort.Slice(favs, func(i, j int) bool { return favs[i].CreatedAt.After(favs[j].CreatedAt) })
	return favs, nil
}

func (r *Favorites) Delete(_ context.Context, userID, scholarshipID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	key := favoriteKey(userID, scholarshipID)
	if _, ok := r.s.favorites[key]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.favorites, key)
	return nil
}

// Analytics

type Analytics struct{ s *Store }

var _ repository.AnalyticsRepository = (*Analytics)(nil)

func (r *Analytics) CountUsers(_ context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return 0, r.s.FailWith
	}
	return len(r.s.users), nil
}

func (r *Analytics) CountUsersSince(_ context.Context, since time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return 0, r.s.FailWith
	}
	n := 0
	for _, u := range r.s.users {
		if !u.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *Analytics) CountScholarships(_ context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return 0, r.s.FailWith
	}
	n := 0
	for _, sch := range r.s.scholarships {
		if sch.Active {
			n++
		}
	}
	return n, nil
}

func (r *Analytics) CountUniversities(_ context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return 0, r.s.FailWith
	}
	return len(r.s.universities), nil
}

func (r *Analytics) ApplicationsByStatus(_ context.Context) (map[string]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return nil, r.s.FailWith
	}
	out := make(map[string]int)
	for _, a := range r.s.applications {
		out[a.Status]++
	}
	return out, nil
}

func (r *Analytics) TopFavorited(_ context.Context, limit int) ([]domain.ScholarshipCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return nil, r.s.FailWith
	}
	counts := make(map[string]int)
	for _, f := range r.s.favorites {
		counts[f.ScholarshipID]++
	}
	out := []domain.ScholarshipCount{}
	for id, n := range counts {
		sch, ok := r.s.scholarships[id]
		if !ok {
			continue
		}
		out = append(out, domain.ScholarshipCount{ScholarshipID: id, Title: sch.Title, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Title < out[j].Title
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
