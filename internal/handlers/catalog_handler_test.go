package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"catalog-hub-service/internal/models"
	"catalog-hub-service/internal/repository"
)

type catalogTestEnv struct {
	categories *MockCategoryRepository
	products   *MockProductRepository
	tags       *MockTagRepository
	router     *gin.Engine
}

func newCatalogTestEnv() *catalogTestEnv {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	env := &catalogTestEnv{
		categories: new(MockCategoryRepository),
		products:   new(MockProductRepository),
		tags:       new(MockTagRepository),
	}
	handler := NewCatalogHandler(env.categories, env.products, env.tags, logger)

	env.router = gin.New()
	env.router.GET("/api/v1/products", handler.ListProducts)
	env.router.GET("/api/v1/products/:id", handler.GetProduct)
	env.router.GET("/api/v1/categories", handler.ListCategories)
	env.router.GET("/api/v1/tags", handler.ListTags)
	return env
}

func TestListProducts_PassesNormalizedOptions(t *testing.T) {
	env := newCatalogTestEnv()

	env.products.On("List", mock.Anything, mock.MatchedBy(func(opts repository.ListOptions) bool {
		return opts.Search == "clean" && opts.Page == 2 && opts.PageSize == 5
	})).Return([]models.Product{
		{ID: uuid.New(), Name: "Clean Code", Price: decimal.RequireFromString("89.90")},
	}, int64(6), nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/products?search=clean&page=2&pageSize=5", nil)
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	env.products.AssertExpectations(t)

	var resp struct {
		Products []models.Product `json:"products"`
		Total    int64            `json:"total"`
		Page     int              `json:"page"`
		PageSize int              `json:"pageSize"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(6), resp.Total)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 5, resp.PageSize)
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "Clean Code", resp.Products[0].Name)
}

func TestGetProduct_InvalidID(t *testing.T) {
	env := newCatalogTestEnv()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/products/not-a-uuid", nil)
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env.products.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestGetProduct_NotFound(t *testing.T) {
	env := newCatalogTestEnv()

	id := uuid.New()
	env.products.On("GetByID", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/products/"+id.String(), nil)
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListTags(t *testing.T) {
	env := newCatalogTestEnv()

	env.tags.On("List", mock.Anything, mock.Anything).Return([]models.Tag{
		{ID: uuid.New(), Name: "bestseller", NameKey: "bestseller"},
	}, int64(1), nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/tags", nil)
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Tags []models.Tag `json:"tags"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Tags, 1)
	assert.Equal(t, "bestseller", resp.Tags[0].Name)
}
