package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storerating/pkg/metrics"
	"storerating/pkg/validation"
	"storerating/store-service/internal/app/store/entity"
	"storerating/store-service/internal/app/store/service"
)

var validate = validation.New()

// bindJSON разбирает тело и проверяет теги validate. При ошибке ответ уже записан.
func bindJSON(c *gin.Context, form string, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Invalid request body",
		})
		return false
	}

	if err := validate.Struct(req); err != nil {
		fields := validation.Translate(err)
		metrics.RecordValidationFailures(form, fields)
		respondValidation(c, fields)
		return false
	}
	return true
}

func respondValidation(c *gin.Context, fields validation.Errors) {
	c.JSON(http.StatusBadRequest, entity.ValidationErrorResponse{
		Error:   "Bad Request",
		Message: "Validation failed",
		Fields:  fields,
	})
}

func respondServiceValidation(c *gin.Context, err error) bool {
	if !errors.Is(err, service.ErrValidation) {
		return false
	}

	var fields validation.Errors
	if !errors.As(err, &fields) {
		fields = validation.Errors{}
	}
	respondValidation(c, fields)
	return true
}

// storeIDParam разбирает :id. При ошибке ответ уже записан.
func storeIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Invalid store ID",
		})
		return uuid.Nil, false
	}
	return id, true
}

func internalError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "Internal Server Error",
		"message": message,
	})
}
