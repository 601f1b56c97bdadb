package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/telemed-api/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Success bool                `json:"success"`
	Data    interface{}         `json:"data,omitempty"`
	Count   *int                `json:"count,omitempty"`
	Message string              `json:"message,omitempty"`
	Errors  []errors.FieldError `json:"errors,omitempty"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithCreated sends a success response for a newly created resource
func RespondWithCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithList sends a success response with a count of returned records
func RespondWithList(c *gin.Context, data interface{}, count int) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
		Count:   &count,
	})
}

// RespondWithMessage sends a success response carrying only a message
func RespondWithMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: message,
	})
}

// RespondWithError sends an error response. Unclassified errors surface as
// a generic 500 with no internal detail leaked to the client.
func RespondWithError(c *gin.Context, err error) {
	appErr := errors.Classify(err)

	c.JSON(appErr.StatusCode(), Response{
		Success: false,
		Message: appErr.Message,
		Errors:  appErr.Fields,
	})
}
