package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"catalog-hub-service/internal/clients"
	"catalog-hub-service/internal/models"
	"catalog-hub-service/internal/repository"
	"catalog-hub-service/internal/services"
)

// MockSourceClient is a mock implementation of clients.SourceClient
type MockSourceClient struct {
	mock.Mock
}

var _ clients.SourceClient = (*MockSourceClient)(nil)

func (m *MockSourceClient) FetchCategories(ctx context.Context) ([]clients.RawCategory, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]clients.RawCategory), args.Error(1)
}

func (m *MockSourceClient) FetchProductsByCategory(ctx context.Context, externalCategoryID string) ([]clients.RawProduct, error) {
	args := m.Called(ctx, externalCategoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]clients.RawProduct), args.Error(1)
}

func (m *MockSourceClient) FetchAllProducts(ctx context.Context) ([]clients.RawProduct, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]clients.RawProduct), args.Error(1)
}

// MockCategoryRepository is a mock implementation of CategoryRepositoryInterface
type MockCategoryRepository struct {
	mock.Mock
}

var _ repository.CategoryRepositoryInterface = (*MockCategoryRepository)(nil)

func (m *MockCategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Category, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCategoryRepository) PersistBatch(ctx context.Context, toCreate, toUpdate []*models.Category) error {
	args := m.Called(ctx, toCreate, toUpdate)
	return args.Error(0)
}

func (m *MockCategoryRepository) List(ctx context.Context, opts repository.ListOptions) ([]models.Category, int64, error) {
	args := m.Called(ctx, opts)
	return args.Get(0).([]models.Category), args.Get(1).(int64), args.Error(2)
}

// MockProductRepository is a mock implementation of ProductRepositoryInterface
type MockProductRepository struct {
	mock.Mock
}

var _ repository.ProductRepositoryInterface = (*MockProductRepository)(nil)

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Product, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) PersistBatch(ctx context.Context, toCreate, toUpdate []*models.Product) error {
	args := m.Called(ctx, toCreate, toUpdate)
	return args.Error(0)
}

func (m *MockProductRepository) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, opts repository.ListOptions) ([]models.Product, int64, error) {
	args := m.Called(ctx, opts)
	return args.Get(0).([]models.Product), args.Get(1).(int64), args.Error(2)
}

// MockTagRepository is a mock implementation of TagRepositoryInterface
type MockTagRepository struct {
	mock.Mock
}

var _ repository.TagRepositoryInterface = (*MockTagRepository)(nil)

func (m *MockTagRepository) FindByNameKeys(ctx context.Context, nameKeys []string) ([]models.Tag, error) {
	args := m.Called(ctx, nameKeys)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Tag), args.Error(1)
}

func (m *MockTagRepository) Create(ctx context.Context, tag *models.Tag) error {
	args := m.Called(ctx, tag)
	return args.Error(0)
}

func (m *MockTagRepository) CreateBatch(ctx context.Context, tags []*models.Tag) error {
	args := m.Called(ctx, tags)
	return args.Error(0)
}

func (m *MockTagRepository) List(ctx context.Context, opts repository.ListOptions) ([]models.Tag, int64, error) {
	args := m.Called(ctx, opts)
	return args.Get(0).([]models.Tag), args.Get(1).(int64), args.Error(2)
}

// MockImportRunRepository is a mock implementation of ImportRunRepositoryInterface
type MockImportRunRepository struct {
	mock.Mock
}

var _ repository.ImportRunRepositoryInterface = (*MockImportRunRepository)(nil)

func (m *MockImportRunRepository) Create(ctx context.Context, run *models.ImportRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockImportRunRepository) List(ctx context.Context, kind models.ImportKind, opts repository.ListOptions) ([]models.ImportRun, int64, error) {
	args := m.Called(ctx, kind, opts)
	return args.Get(0).([]models.ImportRun), args.Get(1).(int64), args.Error(2)
}

type importTestEnv struct {
	source     *MockSourceClient
	categories *MockCategoryRepository
	products   *MockProductRepository
	tags       *MockTagRepository
	runs       *MockImportRunRepository
	router     *gin.Engine
}

func newImportTestEnv() *importTestEnv {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	env := &importTestEnv{
		source:     new(MockSourceClient),
		categories: new(MockCategoryRepository),
		products:   new(MockProductRepository),
		tags:       new(MockTagRepository),
		runs:       new(MockImportRunRepository),
	}

	importService := services.NewImportService(
		env.source,
		env.categories,
		env.products,
		env.runs,
		services.NewTagResolver(env.tags, logger),
		services.NewRecordNormalizer(logger),
		nil,
		logger,
	)
	handler := NewImportHandler(importService, env.runs, logger)

	env.router = gin.New()
	env.router.POST("/api/v1/import/categories", handler.ImportCategories)
	env.router.POST("/api/v1/import/products", handler.ImportProducts)
	env.router.GET("/api/v1/import/runs", handler.ListRuns)
	return env
}

func TestImportCategories_ReturnsStats(t *testing.T) {
	env := newImportTestEnv()

	env.source.On("FetchCategories", mock.Anything).Return([]clients.RawCategory{
		{ExternalID: "CAT-1", Name: "Books"},
	}, nil)
	env.categories.On("GetByExternalID", mock.Anything, "CAT-1").Return(nil, gorm.ErrRecordNotFound)
	env.categories.On("PersistBatch", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	env.runs.On("Create", mock.Anything, mock.AnythingOfType("*models.ImportRun")).Return(nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/import/categories", nil)
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp importResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Stats.Created)
	assert.Equal(t, 0, resp.Stats.Failed)
	assert.Equal(t, "category import: 1 created, 0 updated", resp.Message)
}

func TestImportProducts_CapsReportedErrors(t *testing.T) {
	env := newImportTestEnv()

	// Every record is invalid, so the run collects more errors than the
	// response is allowed to carry.
	var raws []clients.RawProduct
	for i := 0; i < 15; i++ {
		raws = append(raws, clients.RawProduct{ExternalID: fmt.Sprintf("P-%d", i), Price: "1.00"})
	}
	env.source.On("FetchAllProducts", mock.Anything).Return(raws, nil)
	env.products.On("PersistBatch", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	env.runs.On("Create", mock.Anything, mock.AnythingOfType("*models.ImportRun")).Return(nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/import/products", nil)
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp importResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, 15, resp.Stats.Failed)
	assert.Len(t, resp.Errors, maxReportedErrors)
}

func TestImportCategories_ReportsAllErrors(t *testing.T) {
	env := newImportTestEnv()

	// Category runs are small, so their error list is never truncated.
	var raws []clients.RawCategory
	for i := 0; i < 15; i++ {
		raws = append(raws, clients.RawCategory{ExternalID: fmt.Sprintf("CAT-%d", i)})
	}
	env.source.On("FetchCategories", mock.Anything).Return(raws, nil)
	env.categories.On("PersistBatch", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	env.runs.On("Create", mock.Anything, mock.AnythingOfType("*models.ImportRun")).Return(nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/import/categories", nil)
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp importResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, 15, resp.Stats.Failed)
	assert.Len(t, resp.Errors, 15)
}

func TestImportProducts_SourceDownReturnsBadGateway(t *testing.T) {
	env := newImportTestEnv()

	env.source.On("FetchAllProducts", mock.Anything).
		Return(nil, &clients.SourceUnavailableError{Path: "/categories"})
	env.runs.On("Create", mock.Anything, mock.AnythingOfType("*models.ImportRun")).Return(nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/import/products", nil)
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestListRuns_RejectsUnknownKind(t *testing.T) {
	env := newImportTestEnv()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/import/runs?kind=ORDERS", nil)
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env.runs.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}

func TestListRuns_FiltersByKind(t *testing.T) {
	env := newImportTestEnv()

	env.runs.On("List", mock.Anything, models.ImportKindProducts, mock.Anything).
		Return([]models.ImportRun{{ID: uuid.New(), Kind: models.ImportKindProducts}}, int64(1), nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/import/runs?kind=PRODUCTS", nil)
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	env.runs.AssertExpectations(t)

	var resp struct {
		Runs  []models.ImportRun `json:"runs"`
		Total int64              `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Total)
	assert.Len(t, resp.Runs, 1)
}
