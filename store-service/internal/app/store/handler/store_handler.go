package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storerating/store-service/internal/app/store/entity"
	"storerating/store-service/internal/app/store/service"
)

type StoreHandler struct {
	storeService service.StoreServiceInterface
}

func NewStoreHandler(storeService service.StoreServiceInterface) *StoreHandler {
	return &StoreHandler{storeService: storeService}
}

// ListStores - магазины по алфавиту, ?search= ищет по имени, email и адресу
func (h *StoreHandler) ListStores(c *gin.Context) {
	var query entity.ListStoresQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Invalid query parameters",
		})
		return
	}
	if err := validate.Struct(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Search query is too long",
		})
		return
	}

	stores, err := h.storeService.ListStores(c.Request.Context(), query.Search, viewerID(c))
	if err != nil {
		internalError(c, "Failed to list stores")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stores": stores,
		"total":  len(stores),
	})
}

func (h *StoreHandler) GetStore(c *gin.Context) {
	id, ok := storeIDParam(c)
	if !ok {
		return
	}

	store, err := h.storeService.GetStore(c.Request.Context(), id, viewerID(c))
	if err != nil {
		if errors.Is(err, service.ErrStoreNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Not Found",
				"message": "Store not found",
			})
			return
		}
		internalError(c, "Failed to get store")
		return
	}

	c.JSON(http.StatusOK, store)
}

// CreateStore - только SYSTEM_ADMIN
func (h *StoreHandler) CreateStore(c *gin.Context) {
	var req entity.CreateStoreRequest
	if !bindJSON(c, "create_store", &req) {
		return
	}

	store, err := h.storeService.CreateStore(c.Request.Context(), &req)
	if err != nil {
		if respondServiceValidation(c, err) {
			return
		}
		switch {
		case errors.Is(err, service.ErrStoreExists):
			c.JSON(http.StatusConflict, gin.H{
				"error":   "Conflict",
				"message": "Store with this email already exists",
			})
		case errors.Is(err, service.ErrOwnerHasStore):
			c.JSON(http.StatusConflict, gin.H{
				"error":   "Conflict",
				"message": "Owner already has a store",
			})
		default:
			internalError(c, "Failed to create store")
		}
		return
	}

	c.JSON(http.StatusCreated, store)
}

func (h *StoreHandler) Stats(c *gin.Context) {
	stats, err := h.storeService.Stats(c.Request.Context())
	if err != nil {
		internalError(c, "Failed to get statistics")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func viewerID(c *gin.Context) uuid.UUID {
	principal, ok := currentPrincipal(c)
	if !ok {
		return uuid.Nil
	}
	return principal.UserID
}
