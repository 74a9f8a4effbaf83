package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storerating/auth-service/internal/app/auth/entity"
	"storerating/auth-service/internal/app/auth/service"
	"storerating/pkg/metrics"
	"storerating/pkg/validation"
)

var validate = validation.New()

// bindJSON разбирает тело запроса и проверяет теги validate.
// При ошибке ответ уже записан.
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

// respondServiceValidation отвечает 400, если сервис вернул ErrValidation
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
