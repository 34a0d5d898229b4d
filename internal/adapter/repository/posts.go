package repository

import (
	"context"
	"errors"

	"github.com/V4T54L/schoolsite/internal/domain"
)

// Posts is the façade for posts. It implements domain.PostRepository.
type Posts struct {
	facade
	src PostSource
}

var _ domain.PostRepository = (*Posts)(nil)

// GetPostsBySchool returns the published posts of a school, newest first.
// Failures are logged and yield an empty list.
func (p *Posts) GetPostsBySchool(ctx context.Context, schoolID int64) []domain.Post {
	if schoolID <= 0 {
		return []domain.Post{}
	}

	posts, err := p.src.ListPosts(ctx, schoolID)
	if err != nil {
		p.readFailed("list_posts", schoolID, err)
		return []domain.Post{}
	}
	p.ok()

	out := make([]domain.Post, 0, len(posts))
	for _, post := range posts {
		if post.SchoolID == schoolID && post.Published {
			out = append(out, post)
		}
	}
	p.dropped(schoolID, countForeign(posts, schoolID, func(post domain.Post) int64 { return post.SchoolID }))
	return out
}

// GetPostBySlug returns a published post of the school. Any failure is
// reported as domain.ErrNotFound after being logged.
func (p *Posts) GetPostBySlug(ctx context.Context, schoolID int64, slug string) (*domain.Post, error) {
	if schoolID <= 0 || slug == "" {
		return nil, domain.ErrNotFound
	}

	post, err := p.src.FindPost(ctx, schoolID, slug)
	if errors.Is(err, domain.ErrNotFound) {
		p.ok()
		return nil, domain.ErrNotFound
	}
	if err != nil {
		p.readFailed("find_post", schoolID, err)
		return nil, domain.ErrNotFound
	}
	p.ok()

	if post.SchoolID != schoolID {
		p.dropped(schoolID, 1)
		return nil, domain.ErrNotFound
	}
	if !post.Published {
		return nil, domain.ErrNotFound
	}
	return post, nil
}

// CreatePost stores a new post for the school.
func (p *Posts) CreatePost(ctx context.Context, schoolID int64, in domain.PostInput) (*domain.Post, error) {
	if schoolID <= 0 {
		return nil, domain.ErrInvalidTenant
	}
	post, err := p.src.CreatePost(ctx, schoolID, in)
	if err != nil {
		return nil, p.writeFailed("create_post", schoolID, err)
	}
	return p.checkOwned(schoolID, post)
}

// UpdatePost replaces the editable fields of a post of the school.
func (p *Posts) UpdatePost(ctx context.Context, schoolID, id int64, in domain.PostInput) (*domain.Post, error) {
	if schoolID <= 0 {
		return nil, domain.ErrInvalidTenant
	}
	post, err := p.src.UpdatePost(ctx, schoolID, id, in)
	if err != nil {
		return nil, p.writeFailed("update_post", schoolID, err)
	}
	return p.checkOwned(schoolID, post)
}

// DeletePost removes a post of the school.
func (p *Posts) DeletePost(ctx context.Context, schoolID, id int64) error {
	if schoolID <= 0 {
		return domain.ErrInvalidTenant
	}
	if err := p.src.DeletePost(ctx, schoolID, id); err != nil {
		return p.writeFailed("delete_post", schoolID, err)
	}
	p.ok()
	return nil
}

func (p *Posts) checkOwned(schoolID int64, post *domain.Post) (*domain.Post, error) {
	if post.SchoolID != schoolID {
		p.dropped(schoolID, 1)
		return nil, p.writeFailed("check_owner", schoolID, errForeignRecord)
	}
	p.ok()
	return post, nil
}
