// internal/pkg/response/response.go
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the JSON body every API endpoint returns. Error carries
// detail for developers; Message is what the dashboard shows.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Success writes a successful envelope.
func Success(c *gin.Context, status int, message string, data interface{}) {
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

// Error writes a failure envelope and aborts the chain, so nothing
// downstream writes over it.
func Error(c *gin.Context, status int, message string, err error, data ...interface{}) {
	c.Abort()

	env := Envelope{Message: message}
	if err != nil {
		env.Error = err.Error()
	}
	if len(data) > 0 {
		env.Data = data[0]
	}
	c.JSON(status, env)
}

// ValidationError reports unusable input.
func ValidationError(c *gin.Context, message string, err error) {
	Error(c, http.StatusBadRequest, message, err)
}

// Unauthorized reports a request with no usable principal.
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message, nil)
}

// Forbidden reports a principal without the required access.
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message, nil)
}

// NotFound reports a missing resource. Also used for cross-tenant
// probes, which must be indistinguishable from missing.
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message, nil)
}
