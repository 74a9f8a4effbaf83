package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storerating/pkg/rating"
	"storerating/pkg/validation"
	"storerating/store-service/internal/app/store/entity"
	"storerating/store-service/internal/app/store/repository"
	"storerating/store-service/internal/app/store/repository/mocks"
	"storerating/store-service/internal/app/store/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testDeps struct {
	stores     *mocks.MockStoreRepository
	ratings    *mocks.MockRatingRepository
	cache      *mocks.MockStoreCache
	publisher  *mocks.MockEventPublisher
	aggregator *rating.Aggregator
}

func newTestHandlers() (*StoreHandler, *RatingHandler, *testDeps) {
	deps := &testDeps{
		stores:     new(mocks.MockStoreRepository),
		ratings:    new(mocks.MockRatingRepository),
		cache:      new(mocks.MockStoreCache),
		publisher:  new(mocks.MockEventPublisher),
		aggregator: rating.NewAggregator(),
	}
	storeService := service.NewStoreService(deps.stores, deps.cache, deps.aggregator, deps.publisher, time.Minute)
	ratingService := service.NewRatingService(deps.stores, deps.ratings, deps.aggregator, deps.publisher)
	return NewStoreHandler(storeService), NewRatingHandler(ratingService), deps
}

func newTestStore() *entity.Store {
	return &entity.Store{
		ID:        uuid.New(),
		Name:      "Riverside Books And Coffee",
		Email:     "books@riverside.com",
		Address:   "12 River Road, Springfield",
		CreatedAt: time.Now().UTC(),
	}
}

func newTestPrincipal(role string) entity.Principal {
	return entity.Principal{
		UserID: uuid.New(),
		Email:  "jane@example.com",
		Name:   "Jane Customer Of The Lane",
		Role:   role,
	}
}

// setupTestRouter создаёт тестовый Gin router с одним хендлером
func setupTestRouter(method, path string, handlers ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Handle(method, path, handlers...)
	return router
}

func doJSON(router *gin.Engine, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// withPrincipal имитирует Authenticate
func withPrincipal(p entity.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ctxPrincipal, p)
		c.Next()
	}
}

// ==================== ListStores ====================

func TestStoreHandler_ListStores(t *testing.T) {
	// Arrange
	storeHandler, _, deps := newTestHandlers()
	viewer := newTestPrincipal(entity.RoleNormalUser)
	store := newTestStore()

	_, err := deps.aggregator.Submit(store.ID.String(), viewer.UserID.String(), 3)
	require.NoError(t, err)
	_, err = deps.aggregator.Submit(store.ID.String(), uuid.NewString(), 4)
	require.NoError(t, err)
	deps.cache.On("GetStores", mock.Anything).Return([]entity.Store{*store}, nil)

	router := setupTestRouter(http.MethodGet, "/stores", withPrincipal(viewer), storeHandler.ListStores)

	// Act
	rec := doJSON(router, http.MethodGet, "/stores", nil, nil)

	// Assert
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Stores []entity.StoreView `json:"stores"`
		Total  int                `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Stores, 1)
	assert.Equal(t, 3.5, *resp.Stores[0].AverageRating)
	assert.Equal(t, "3.5", resp.Stores[0].AverageText)
	assert.Equal(t, 2, resp.Stores[0].TotalRatings)
	assert.Equal(t, 3, *resp.Stores[0].MyRating)
}

func TestStoreHandler_ListStores_Search(t *testing.T) {
	storeHandler, _, deps := newTestHandlers()
	deps.stores.On("List", mock.Anything, "river").Return([]entity.Store{}, nil)

	router := setupTestRouter(http.MethodGet, "/stores", storeHandler.ListStores)
	rec := doJSON(router, http.MethodGet, "/stores?search=river", nil, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	deps.cache.AssertNotCalled(t, "GetStores", mock.Anything)
}

func TestStoreHandler_ListStores_RatingNullWithoutRatings(t *testing.T) {
	storeHandler, _, deps := newTestHandlers()
	deps.cache.On("GetStores", mock.Anything).Return([]entity.Store{*newTestStore()}, nil)

	router := setupTestRouter(http.MethodGet, "/stores", storeHandler.ListStores)
	rec := doJSON(router, http.MethodGet, "/stores", nil, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var raw map[string][]map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	require.Len(t, raw["stores"], 1)
	assert.Nil(t, raw["stores"][0]["average_rating"])
	assert.Equal(t, rating.NoRatingsText, raw["stores"][0]["average_display"])
}

// ==================== GetStore ====================

func TestStoreHandler_GetStore(t *testing.T) {
	storeHandler, _, deps := newTestHandlers()
	store := newTestStore()
	deps.stores.On("GetByID", mock.Anything, store.ID).Return(store, nil)

	router := setupTestRouter(http.MethodGet, "/stores/:id", storeHandler.GetStore)
	rec := doJSON(router, http.MethodGet, "/stores/"+store.ID.String(), nil, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var view entity.StoreView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, store.Name, view.Name)
}

func TestStoreHandler_GetStore_Errors(t *testing.T) {
	storeHandler, _, deps := newTestHandlers()
	missing := uuid.New()
	deps.stores.On("GetByID", mock.Anything, missing).Return(nil, repository.ErrNotFound)
	router := setupTestRouter(http.MethodGet, "/stores/:id", storeHandler.GetStore)

	rec := doJSON(router, http.MethodGet, "/stores/"+missing.String(), nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(router, http.MethodGet, "/stores/not-a-uuid", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ==================== CreateStore ====================

func TestStoreHandler_CreateStore_Success(t *testing.T) {
	storeHandler, _, deps := newTestHandlers()
	owner := uuid.New()

	deps.stores.On("Create", mock.Anything, mock.AnythingOfType("*entity.Store")).Return(nil)
	deps.cache.On("DeleteStores", mock.Anything).Return(nil)
	deps.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	body := gin.H{
		"name":     "Riverside Books And Coffee",
		"email":    "books@riverside.com",
		"address":  "12 River Road, Springfield",
		"owner_id": owner.String(),
	}
	router := setupTestRouter(http.MethodPost, "/admin/stores", storeHandler.CreateStore)
	rec := doJSON(router, http.MethodPost, "/admin/stores", body, nil)

	require.Equal(t, http.StatusCreated, rec.Code)
	var store entity.Store
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &store))
	require.NotNil(t, store.OwnerID)
	assert.Equal(t, owner, *store.OwnerID)
}

func TestStoreHandler_CreateStore_ValidationFailure(t *testing.T) {
	storeHandler, _, deps := newTestHandlers()

	body := gin.H{
		"name":    "Short",
		"email":   "bad email",
		"address": "12 River Road",
	}
	router := setupTestRouter(http.MethodPost, "/admin/stores", storeHandler.CreateStore)
	rec := doJSON(router, http.MethodPost, "/admin/stores", body, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp entity.ValidationErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Validation failed", resp.Message)
	assert.Equal(t, validation.MsgNameTooShort, resp.Fields[validation.FieldName])
	assert.Equal(t, validation.MsgEmailInvalid, resp.Fields[validation.FieldEmail])
	assert.NotContains(t, resp.Fields, validation.FieldAddress)
	deps.stores.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestStoreHandler_CreateStore_Conflict(t *testing.T) {
	tests := []struct {
		name    string
		repoErr error
	}{
		{name: "duplicate email", repoErr: repository.ErrDuplicateEmail},
		{name: "owner has store", repoErr: repository.ErrOwnerHasStore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storeHandler, _, deps := newTestHandlers()
			deps.stores.On("Create", mock.Anything, mock.Anything).Return(tt.repoErr)

			body := gin.H{
				"name":    "Riverside Books And Coffee",
				"email":   "books@riverside.com",
				"address": "12 River Road, Springfield",
			}
			router := setupTestRouter(http.MethodPost, "/admin/stores", storeHandler.CreateStore)
			rec := doJSON(router, http.MethodPost, "/admin/stores", body, nil)

			assert.Equal(t, http.StatusConflict, rec.Code)
		})
	}
}

func TestStoreHandler_CreateStore_InvalidJSON(t *testing.T) {
	storeHandler, _, _ := newTestHandlers()
	router := setupTestRouter(http.MethodPost, "/admin/stores", storeHandler.CreateStore)

	rec := doJSON(router, http.MethodPost, "/admin/stores", "{invalid", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ==================== Stats ====================

func TestStoreHandler_Stats(t *testing.T) {
	storeHandler, _, deps := newTestHandlers()
	deps.stores.On("Count", mock.Anything).Return(int64(2), nil)
	_, _ = deps.aggregator.Submit("s1", "u1", 4)

	router := setupTestRouter(http.MethodGet, "/admin/stats", storeHandler.Stats)
	rec := doJSON(router, http.MethodGet, "/admin/stats", nil, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var stats entity.PlatformStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, int64(2), stats.TotalStores)
	assert.Equal(t, 1, stats.TotalRatings)
}
