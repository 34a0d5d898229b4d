package mocks

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/V4T54L/schoolsite/internal/domain"
)

// QueryCall records one call to MockRemoteClient.Query.
type QueryCall struct {
	Entity domain.Entity
	Filter domain.Filter
}

// MutateCall records one call to MockRemoteClient.Mutate.
type MutateCall struct {
	Entity   domain.Entity
	Mutation domain.Mutation
}

// MockRemoteClient is a mock implementation of domain.RemoteClient for testing.
// QueryResult is keyed by entity name.
type MockRemoteClient struct {
	mu           sync.Mutex
	QueryResult  map[string][]json.RawMessage
	MutateResult json.RawMessage
	QueryErr     error
	MutateErr    error
	CloseErr     error
	QueryPanic   any
	MutatePanic  any
	Queries      []QueryCall
	Mutations    []MutateCall
	Closed       bool
}

func (m *MockRemoteClient) Query(ctx context.Context, entity domain.Entity, filter domain.Filter) ([]json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Queries = append(m.Queries, QueryCall{Entity: entity, Filter: filter})
	if m.QueryPanic != nil {
		panic(m.QueryPanic)
	}
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}
	return m.QueryResult[entity.Name], nil
}

func (m *MockRemoteClient) Mutate(ctx context.Context, entity domain.Entity, mutation domain.Mutation) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Mutations = append(m.Mutations, MutateCall{Entity: entity, Mutation: mutation})
	if m.MutatePanic != nil {
		panic(m.MutatePanic)
	}
	if m.MutateErr != nil {
		return nil, m.MutateErr
	}
	return m.MutateResult, nil
}

func (m *MockRemoteClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return m.CloseErr
}

// LastQuery returns the most recent query, or the zero value.
func (m *MockRemoteClient) LastQuery() QueryCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Queries) == 0 {
		return QueryCall{}
	}
	return m.Queries[len(m.Queries)-1]
}

// LastMutation returns the most recent mutation, or the zero value.
func (m *MockRemoteClient) LastMutation() MutateCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Mutations) == 0 {
		return MutateCall{}
	}
	return m.Mutations[len(m.Mutations)-1]
}

// ClientProvider hands out a fixed client, mimicking a ready or failed
// remote client manager.
type ClientProvider struct {
	RemoteClient domain.RemoteClient
}

func (p *ClientProvider) Client(ctx context.Context) domain.RemoteClient {
	return p.RemoteClient
}

// MockPostRepository is a mock implementation of domain.PostRepository.
type MockPostRepository struct {
	Posts      []domain.Post
	Post       *domain.Post
	Err        error
	LastSchool int64
	LastInput  domain.PostInput
	Calls      int
}

func (m *MockPostRepository) GetPostsBySchool(ctx context.Context, schoolID int64) []domain.Post {
	m.Calls++
	m.LastSchool = schoolID
	return m.Posts
}

func (m *MockPostRepository) GetPostBySlug(ctx context.Context, schoolID int64, slug string) (*domain.Post, error) {
	m.Calls++
	m.LastSchool = schoolID
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Post == nil || m.Post.Slug != slug {
		return nil, domain.ErrNotFound
	}
	return m.Post, nil
}

func (m *MockPostRepository) CreatePost(ctx context.Context, schoolID int64, in domain.PostInput) (*domain.Post, error) {
	return m.write(schoolID, 0, in)
}

func (m *MockPostRepository) UpdatePost(ctx context.Context, schoolID, id int64, in domain.PostInput) (*domain.Post, error) {
	return m.write(schoolID, id, in)
}

func (m *MockPostRepository) DeletePost(ctx context.Context, schoolID, id int64) error {
	m.Calls++
	m.LastSchool = schoolID
	return m.Err
}

func (m *MockPostRepository) write(schoolID, id int64, in domain.PostInput) (*domain.Post, error) {
	m.Calls++
	m.LastSchool = schoolID
	m.LastInput = in
	if m.Err != nil {
		return nil, m.Err
	}
	if id == 0 {
		id = 1
	}
	return &domain.Post{ID: id, SchoolID: schoolID, Title: in.Title, Slug: in.Slug, Published: in.Published}, nil
}

// MockStaffRepository is a mock implementation of domain.StaffRepository.
type MockStaffRepository struct {
	Staff      []domain.Staff
	Err        error
	LastSchool int64
	LastInput  domain.StaffInput
	Calls      int
}

func (m *MockStaffRepository) GetStaffBySchool(ctx context.Context, schoolID int64) []domain.Staff {
	m.Calls++
	m.LastSchool = schoolID
	return m.Staff
}

func (m *MockStaffRepository) CreateStaff(ctx context.Context, schoolID int64, in domain.StaffInput) (*domain.Staff, error) {
	return m.write(schoolID, 0, in)
}

func (m *MockStaffRepository) UpdateStaff(ctx context.Context, schoolID, id int64, in domain.StaffInput) (*domain.Staff, error) {
	return m.write(schoolID, id, in)
}

func (m *MockStaffRepository) DeleteStaff(ctx context.Context, schoolID, id int64) error {
	m.Calls++
	m.LastSchool = schoolID
	return m.Err
}

func (m *MockStaffRepository) write(schoolID, id int64, in domain.StaffInput) (*domain.Staff, error) {
	m.Calls++
	m.LastSchool = schoolID
	m.LastInput = in
	if m.Err != nil {
		return nil, m.Err
	}
	if id == 0 {
		id = 1
	}
	return &domain.Staff{ID: id, SchoolID: schoolID, Name: in.Name, Position: in.Position, IsPublic: in.IsPublic, SortOrder: in.SortOrder}, nil
}
