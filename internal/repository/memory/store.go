// Package memory implementa los repositorios en memoria. Replica la semantica
// de las consultas SQL (filtros por duenio, ErrNoRows, ErrDuplicate) y se usa
// en los tests de servicios y handlers.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"scholarship-finder/internal/domain"
	"scholarship-finder/internal/repository"
	"scholarship-finder/internal/search"
)

type Store struct {
	mu           sync.Mutex
	users        map[string]domain.User
	sessions     map[string]domain.Session
	scholarships map[string]domain.Scholarship
	universities map[string]domain.University
	reference    map[string]map[string]domain.ReferenceItem
	applications map[string]domain.Application
	documents    map[string]domain.Document
	tasks        map[string]domain.Task
	favorites    map[string]domain.Favorite

	// FailWith, si no es nil, hace fallar todas las operaciones.
	FailWith error
}

func NewStore() *Store {
	ref := make(map[string]map[string]domain.ReferenceItem)
	for _, kind := range domain.ReferenceKinds {
		ref[kind] = make(map[string]domain.ReferenceItem)
	}
	return &Store{
		users:        make(map[string]domain.User),
		sessions:     make(map[string]domain.Session),
		scholarships: make(map[string]domain.Scholarship),
		universities: make(map[string]domain.University),
		reference:    ref,
		applications: make(map[string]domain.Application),
		documents:    make(map[string]domain.Document),
		tasks:        make(map[string]domain.Task),
		favorites:    make(map[string]domain.Favorite),
	}
}

func (s *Store) Users() *Users { return &Users{s} }
func (s *Store) Sessions() *Sessions { return &Sessions{s} }
func (s *Store) Scholarships() *Scholarships { return &Scholarships{s} }
func (s *Store) Universities() *Universities { return &Universities{s} }
func (s *Store) Reference() *Reference { return &Reference{s} }
func (s *Store) Applications() *Applications { return &Applications{s} }
func (s *Store) Documents() *Documents { return &Documents{s} }
func (s *Store) Tasks() *Tasks { return &Tasks{s} }
func (s *Store) Favorites() *Favorites { return &Favorites{s} }
func (s *Store) Analytics() *Analytics { return &Analytics{s} }

// Inspeccion para tests.

func (s *Store) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) Session(token string) (domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	return sess, ok
}

func (s *Store) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *Store) ApplicationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.applications)
}

// ChildCount devuelve cuantos documentos y tareas apuntan a la postulacion.
func (s *Store) ChildCount(applicationID string) (docs, tasks int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.documents {
		if d.ApplicationID == applicationID {
			docs++
		}
	}
	for _, t := range s.tasks {
		if t.ApplicationID == applicationID {
			tasks++
		}
	}
	return docs, tasks
}

// Users

type Users struct{ s *Store }

var _ repository.UserRepository = (*Users)(nil)

func (r *Users) Create(_ context.Context, user domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	if _, ok := r.s.users[user.ID]; ok {
		return repository.ErrDuplicate
	}
	r.s.users[user.ID] = user
	return nil
}

func (r *Users) GetByID(_ context.Context, id string) (domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return domain.User{}, r.s.FailWith
	}
	u, ok := r.s.users[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (r *Users) GetByEmail(_ context.Context, email string) (domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return domain.User{}, r.s.FailWith
	}
	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, pgx.ErrNoRows
}

func (r *Users) Update(_ context.Context, user domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	if _, ok := r.s.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	for _, u := range r.s.users {
		if u.ID != user.ID && u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	r.s.users[user.ID] = user
	return nil
}

// Sessions

type Sessions struct{ s *Store }

var _ repository.SessionRepository = (*Sessions)(nil)

func (r *Sessions) Create(_ context.Context, session domain.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	if _, ok := r.s.sessions[session.Token]; ok {
		return repository.ErrDuplicate
	}
	if _, ok := r.s.users[session.UserID]; !ok {
		return &pgconn.PgError{Code: "23503", Message: "sessions_user_id_fkey"}
	}
	r.s.sessions[session.Token] = session
	return nil
}

func (r *Sessions) GetIdentity(_ context.Context, token string, now time.Time) (domain.Identity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return domain.Identity{}, r.s.FailWith
	}
	sess, ok := r.s.sessions[token]
	if !ok || !sess.Valid(now) {
		return domain.Identity{}, pgx.ErrNoRows
	}
	user, ok := r.s.users[sess.UserID]
	if !ok {
		return domain.Identity{}, pgx.ErrNoRows
	}
	return domain.IdentityFor(user, sess), nil
}

func (r *Sessions) GetIdentityByHandle(ctx context.Context, handle string, now time.Time) (domain.Identity, error) {
	r.s.mu.Lock()
	token := ""
	for t := range r.s.sessions {
		if domain.SessionHandle(t) == handle {
			token = t
			break
		}
	}
	r.s.mu.Unlock()
	if token == "" {
		return domain.Identity{}, pgx.ErrNoRows
	}
	return r.GetIdentity(ctx, token, now)
}

func (r *Sessions) Extend(_ context.Context, token string, expiresAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	sess, ok := r.s.sessions[token]
	if !ok {
		return pgx.ErrNoRows
	}
	sess.ExpiresAt = expiresAt
	r.s.sessions[token] = sess
	return nil
}

func (r *Sessions) Delete(_ context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	delete(r.s.sessions, token)
	return nil
}

func (r *Sessions) DeleteExpiredToken(_ context.Context, token string, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	if sess, ok := r.s.sessions[token]; ok && !sess.Valid(now) {
		delete(r.s.sessions, token)
	}
	return nil
}

func (r *Sessions) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return 0, r.s.FailWith
	}
	var n int64
	for token, sess := range r.s.sessions {
		if !sess.Valid(now) {
			delete(r.s.sessions, token)
			n++
		}
	}
	return n, nil
}

// Scholarships

type Scholarships struct{ s *Store }

var _ repository.ScholarshipRepository = (*Scholarships)(nil)

func (r *Scholarships) Create(_ context.Context, sch domain.Scholarship) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	if _, ok := r.s.scholarships[sch.ID]; ok {
		return repository.ErrDuplicate
	}
	r.s.scholarships[sch.ID] = sch
	return nil
}

func (r *Scholarships) GetByID(_ context.Context, id string) (domain.Scholarship, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return domain.Scholarship{}, r.s.FailWith
	}
	sch, ok := r.s.scholarships[id]
	if !ok {
		return domain.Scholarship{}, pgx.ErrNoRows
	}
	return sch, nil
}

func (r *Scholarships) Update(_ context.Context, sch domain.Scholarship) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	if _, ok := r.s.scholarships[sch.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.s.scholarships[sch.ID] = sch
	return nil
}

func (r *Scholarships) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	if _, ok := r.s.scholarships[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.scholarships, id)
	for key, f := range r.s.favorites {
		if f.ScholarshipID == id {
			delete(r.s.favorites, key)
		}
	}
	for appID, a := range r.s.applications {
		if a.ScholarshipID == id {
			r.s.deleteApplicationLocked(appID)
		}
	}
	return nil
}

func (r *Scholarships) Search(_ context.Context, f domain.ScholarshipFilter) ([]domain.Scholarship, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return nil, 0, r.s.FailWith
	}
	q := search.Normalize(f.Query)
	matched := []domain.Scholarship{}
	for _, sch := range r.s.scholarships {
		if !f.IncludeClosed && !sch.Active {
			continue
		}
		if q != "" && !strings.Contains(search.Document(sch.SearchFields()...), q) {
			continue
		}
		if f.CountryCode != "" && !strings.EqualFold(sch.CountryCode, f.CountryCode) {
			continue
		}
		if f.FieldID != "" && sch.FieldID != f.FieldID {
			continue
		}
		if f.DegreeLevelID != "" && sch.DegreeLevelID != f.DegreeLevelID {
			continue
		}
		if f.UniversityID != "" && (sch.UniversityID == nil || *sch.UniversityID != f.UniversityID) {
			continue
		}
		if f.MinAmountCents > 0 && sch.AmountCents < f.MinAmountCents {
			continue
		}
		if f.DeadlineAfter != nil && sch.Deadline != nil && sch.Deadline.Before(*f.DeadlineAfter) {
			continue
		}
		matched = append(matched, sch)
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		switch {
		case a.Deadline == nil && b.Deadline != nil:
			return false
		case a.Deadline != nil && b.Deadline == nil:
			return true
		case a.Deadline != nil && b.Deadline != nil && !a.Deadline.Equal(*b.Deadline):
			return a.Deadline.Before(*b.Deadline)
		}
		return a.Title < b.Title
	})
	return paginate(matched, f.Page), len(matched), nil
}

// Universities

type Universities struct{ s *Store }

var _ repository.UniversityRepository = (*Universities)(nil)

func (r *Universities) Create(_ context.Context, u domain.University) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	if _, ok := r.s.universities[u.ID]; ok {
		return repository.ErrDuplicate
	}
	r.s.universities[u.ID] = u
	return nil
}

func (r *Universities) GetByID(_ context.Context, id string) (domain.University, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return domain.University{}, r.s.FailWith
	}
	u, ok := r.s.universities[id]
	if !ok {
		return domain.University{}, pgx.ErrNoRows
	}
	return u, nil
}

func (r *Universities) Update(_ context.Context, u domain.University) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	if _, ok := r.s.universities[u.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.s.universities[u.ID] = u
	return nil
}

func (r *Universities) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	if _, ok := r.s.universities[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.universities, id)
	for sid, sch := range r.s.scholarships {
		if sch.UniversityID != nil && *sch.UniversityID == id {
			sch.UniversityID = nil
			r.s.scholarships[sid] = sch
		}
	}
	return nil
}

func (r *Universities) Search(_ context.Context, f domain.UniversityFilter) ([]domain.University, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return nil, 0, r.s.FailWith
	}
	q := search.Normalize(f.Query)
	matched := []domain.University{}
	for _, u := range r.s.universities {
		if q != "" && !strings.Contains(search.Document(u.SearchFields()...), q) {
			continue
		}
		if f.CountryCode != "" && !strings.EqualFold(u.CountryCode, f.CountryCode) {
			continue
		}
		matched = append(matched, u)
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		switch {
		case a.Ranking == nil && b.Ranking != nil:
			return false
		case a.Ranking != nil && b.Ranking == nil:
			return true
		case a.Ranking != nil && b.Ranking != nil && *a.Ranking != *b.Ranking:
			return *a.Ranking < *b.Ranking
		}
		return a.Name < b.Name
	})
	return paginate(matched, f.Page), len(matched), nil
}

func paginate[T any](items []T, p domain.Page) []T {
	p = p.Normalize()
	if p.Offset >= len(items) {
		return []T{}
	}
	end := p.Offset + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[p.Offset:end]
}
