package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storerating/pkg/rating"
	"storerating/store-service/internal/app/store/entity"
	"storerating/store-service/internal/app/store/service"
)

type RatingHandler struct {
	ratingService service.RatingServiceInterface
}

func NewRatingHandler(ratingService service.RatingServiceInterface) *RatingHandler {
	return &RatingHandler{ratingService: ratingService}
}

// Rate - PUT /stores/:id/rating, создает или заменяет оценку пользователя
func (h *RatingHandler) Rate(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		abortUnauthorized(c, "Unauthorized")
		return
	}
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}

	var req entity.RateRequest
	if !bindJSON(c, "rate_store", &req) {
		return
	}

	summary, err := h.ratingService.Rate(c.Request.Context(), principal, storeID, *req.Rating)
	if err != nil {
		h.respondError(c, err, "Failed to save rating")
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Retract - DELETE /stores/:id/rating
func (h *RatingHandler) Retract(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		abortUnauthorized(c, "Unauthorized")
		return
	}
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}

	summary, err := h.ratingService.Retract(c.Request.Context(), principal, storeID)
	if err != nil {
		h.respondError(c, err, "Failed to retract rating")
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *RatingHandler) MyRatings(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		abortUnauthorized(c, "Unauthorized")
		return
	}

	ratings, err := h.ratingService.MyRatings(c.Request.Context(), principal.UserID)
	if err != nil {
		internalError(c, "Failed to get ratings")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ratings": ratings,
		"total":   len(ratings),
	})
}

// OwnerDashboard - только STORE_OWNER
func (h *RatingHandler) OwnerDashboard(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		abortUnauthorized(c, "Unauthorized")
		return
	}

	dashboard, err := h.ratingService.OwnerDashboard(c.Request.Context(), principal.UserID)
	if err != nil {
		if errors.Is(err, service.ErrNoStoreOwned) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Not Found",
				"message": "No store is assigned to this owner",
			})
			return
		}
		internalError(c, "Failed to load dashboard")
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

func (h *RatingHandler) respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, rating.ErrInvalidRating):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": rating.ErrInvalidRating.Error(),
		})
	case errors.Is(err, rating.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not Found",
			"message": "You have not rated this store",
		})
	case errors.Is(err, service.ErrStoreNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not Found",
			"message": "Store not found",
		})
	default:
		internalError(c, fallback)
	}
}
