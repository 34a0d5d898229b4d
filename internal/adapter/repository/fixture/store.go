package fixture

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/V4T54L/schoolsite/internal/domain"
)

// Store serves the dataset from memory. Writes are a local simulation: they
// are visible to later reads in this process and lost on restart.
type Store struct {
	mu          sync.RWMutex
	schools     []domain.Tenant
	posts       []domain.Post
	staff       []domain.Staff
	nextPostID  int64
	nextStaffID int64
	logger      *slog.Logger
	now         func() time.Time
}

// NewStore copies ds into a new Store.
func NewStore(ds *Dataset, logger *slog.Logger) *Store {
	s := &Store{
		schools: append([]domain.Tenant(nil), ds.Schools...),
		posts:   append([]domain.Post(nil), ds.Posts...),
		staff:   append([]domain.Staff(nil), ds.Staff...),
		logger:  logger.With("component", "fixture_store"),
		now:     time.Now,
	}
	for _, p := range s.posts {
		s.nextPostID = max(s.nextPostID, p.ID)
	}
	for _, st := range s.staff {
		s.nextStaffID = max(s.nextStaffID, st.ID)
	}
	return s
}

// ListSchools returns the school catalog.
func (s *Store) ListSchools(ctx context.Context) ([]domain.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Tenant(nil), s.schools...), nil
}

// ListPosts returns the published posts of a school, newest first.
func (s *Store) ListPosts(ctx context.Context, schoolID int64) ([]domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Post
	for _, p := range s.posts {
		if p.SchoolID == schoolID && p.Published {
			out = append(out, p)
		}
	}
	domain.SortPosts(out)
	return out, nil
}

// FindPost returns the published post with the given slug.
func (s *Store) FindPost(ctx context.Context, schoolID int64, slug string) (*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.posts {
		if p.SchoolID == schoolID && p.Published && p.Slug == slug {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

// CreatePost appends a post.
func (s *Store) CreatePost(ctx context.Context, schoolID int64, in domain.PostInput) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextPostID++
	p := domain.Post{ID: s.nextPostID, SchoolID: schoolID}
	applyPost(&p, in)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now().UTC()
	}
	s.posts = append(s.posts, p)
	s.logger.Debug("created post in local fixture store", "school_id", schoolID, "post_id", p.ID)
	return &p, nil
}

// UpdatePost replaces the editable fields of a post.
func (s *Store) UpdatePost(ctx context.Context, schoolID, id int64, in domain.PostInput) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.posts {
		p := &s.posts[i]
		if p.ID == id && p.SchoolID == schoolID {
			createdAt := p.CreatedAt
			applyPost(p, in)
			if p.CreatedAt.IsZero() {
				p.CreatedAt = createdAt
			}
			out := *p
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

// DeletePost removes a post.
func (s *Store) DeletePost(ctx context.Context, schoolID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.posts {
		if p.ID == id && p.SchoolID == schoolID {
			s.posts = append(s.posts[:i], s.posts[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// ListStaff returns the public staff of a school in display order.
func (s *Store) ListStaff(ctx context.Context, schoolID int64) ([]domain.Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Staff
	for _, st := range s.staff {
		if st.SchoolID == schoolID && st.IsPublic {
			out = append(out, st)
		}
	}
	domain.SortStaff(out)
	return out, nil
}

// CreateStaff appends a staff record.
func (s *Store) CreateStaff(ctx context.Context, schoolID int64, in domain.StaffInput) (*domain.Staff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextStaffID++
	st := domain.Staff{ID: s.nextStaffID, SchoolID: schoolID}
	applyStaff(&st, in)
	s.staff = append(s.staff, st)
	s.logger.Debug("created staff in local fixture store", "school_id", schoolID, "staff_id", st.ID)
	return &st, nil
}

// UpdateStaff replaces the editable fields of a staff record.
func (s *Store) UpdateStaff(ctx context.Context, schoolID, id int64, in domain.StaffInput) (*domain.Staff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.staff {
		st := &s.staff[i]
		if st.ID == id && st.SchoolID == schoolID {
			applyStaff(st, in)
			out := *st
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

// DeleteStaff removes a staff record.
func (s *Store) DeleteStaff(ctx context.Context, schoolID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, st := range s.staff {
		if st.ID == id && st.SchoolID == schoolID {
			s.staff = append(s.staff[:i], s.staff[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func applyPost(p *domain.Post, in domain.PostInput) {
	p.Title = in.Title
	p.Slug = in.Slug
	p.Excerpt = in.Excerpt
	p.Content = in.Content
	p.ImageURL = in.ImageURL
	p.Category = in.Category
	p.Published = in.Published
	p.CreatedAt = in.CreatedAt
}

func applyStaff(st *domain.Staff, in domain.StaffInput) {
	st.Name = in.Name
	st.Position = in.Position
	st.PhotoURL = in.PhotoURL
	st.Bio = in.Bio
	st.IsPublic = in.IsPublic
	st.SortOrder = in.SortOrder
}
