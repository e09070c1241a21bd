package handler

import (
	"net/http"

	"github.com/Grey-kingreys/magazin-back-sub000/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest,
			&apperr.APIError{Kind: apperr.Validation.String(), Detail: "invalid JSON: " + err.Error()})
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apperr.NewValidationFields(fields))
		return false
	}
	return true
}

// fail writes the canonical error envelope for a service error.
func fail(c *gin.Context, err error) {
	status, body := apperr.Envelope(err)
	c.JSON(status, body)
}
