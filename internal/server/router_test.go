package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/docsentry/docsentry/internal/api/handlers"
	"github.com/docsentry/docsentry/internal/domain"
	"github.com/docsentry/docsentry/internal/service"
)

type MockPostService struct {
	mock.Mock
}

func (m *MockPostService) Create(ctx context.Context, input service.CreatePostInput) (*domain.Post, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *MockPostService) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *MockPostService) List(ctx context.Context, input service.ListPostsInput) (*service.ListPostsOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListPostsOutput), args.Error(1)
}

func (m *MockPostService) Update(ctx context.Context, input service.UpdatePostInput) (*domain.Post, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *MockPostService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPostService) Publish(ctx context.Context, id string) (*domain.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *MockPostService) Unpublish(ctx context.Context, id string) (*domain.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

type MockKnowledgeBaseService struct {
	mock.Mock
}

func (m *MockKnowledgeBaseService) ReplaceSnapshot(ctx context.Context, snap *domain.Snapshot) (*domain.Snapshot, error) {
	args := m.Called(ctx, snap)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Snapshot), args.Error(1)
}

func (m *MockKnowledgeBaseService) GetLatest(ctx context.Context, repository string) (*domain.Snapshot, error) {
	args := m.Called(ctx, repository)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Snapshot), args.Error(1)
}

func (m *MockKnowledgeBaseService) Search(ctx context.Context, repository, query string, limit int) ([]domain.SimilarEntry, error) {
	args := m.Called(ctx, repository, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SimilarEntry), args.Error(1)
}

func (m *MockKnowledgeBaseService) RecordDriftRun(ctx context.Context, report *domain.DriftReport) (*domain.DriftRun, error) {
	args := m.Called(ctx, report)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DriftRun), args.Error(1)
}

func (m *MockKnowledgeBaseService) ListDriftRuns(ctx context.Context, repository string, limit int) ([]*domain.DriftRun, error) {
	args := m.Called(ctx, repository, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.DriftRun), args.Error(1)
}

const testToken = "dsy_0123456789abcdef0123456789abcdef"

func setupRouter() (http.Handler, *MockPostService, *MockKnowledgeBaseService) {
	postSvc := new(MockPostService)
	kbSvc := new(MockKnowledgeBaseService)

	router := NewRouter(RouterConfig{
		APIToken:    testToken,
		PostHandler: handlers.NewPostHandler(postSvc),
		KBHandler:   handlers.NewKBHandler(kbSvc),
	})
	return router, postSvc, kbSvc
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router, _, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "ok", data["status"])
}

func TestRouter_AuthenticatedRoutes_RequireAuth(t *testing.T) {
	router, _, _ := setupRouter()

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/posts"},
		{http.MethodPost, "/posts"},
		{http.MethodGet, "/posts/123"},
		{http.MethodPut, "/posts/123"},
		{http.MethodDelete, "/posts/123"},
		{http.MethodPost, "/posts/123/publish"},
		{http.MethodPost, "/posts/123/unpublish"},
		{http.MethodPut, "/kb/snapshot"},
		{http.MethodGet, "/kb/snapshot"},
		{http.MethodGet, "/kb/stats"},
		{http.MethodPost, "/kb/search"},
		{http.MethodPost, "/kb/drift-runs"},
		{http.MethodGet, "/kb/drift-runs"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			req := httptest.NewRequest(route.method, route.path, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRouter_AuthenticatedRoutes_WithValidAuth(t *testing.T) {
	router, postSvc, _ := setupRouter()

	post := domain.NewPost("post-123", "Title", "Content", "ana", time.Now().UTC())
	postSvc.On("GetByID", mock.Anything, "post-123").Return(post, nil)

	req := httptest.NewRequest(http.MethodGet, "/posts/post-123", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	postSvc.AssertExpectations(t)
}

func TestRouter_WrongToken(t *testing.T) {
	router, _, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set("Authorization", "Bearer wrong-token")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
