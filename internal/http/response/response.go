// Package response implements the uniform API envelope. Every endpoint,
// success or failure, answers with this shape; no handler may write a bare
// body.
package response

import "github.com/gin-gonic/gin"

type Envelope struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Data       any    `json:"data"`
}

// JSON writes the envelope. A nil payload is rendered as an empty object,
// never null.
func JSON(c *gin.Context, status int, message string, data any) {
	if data == nil {
		data = gin.H{}
	}
	c.JSON(status, Envelope{
		Success:    status < 400,
		StatusCode: status,
		Message:    message,
		Data:       data,
	})
}

// Fail writes a failure envelope with the given status and detail payload.
func Fail(c *gin.Context, status int, message string, data any) {
	if data == nil {
		data = gin.H{}
	}
	c.JSON(status, Envelope{
		Success:    false,
		StatusCode: status,
		Message:    message,
		Data:       data,
	})
}
