package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response holds the envelope fields besides "success".
type Response map[string]interface{}

// Success writes {"success": true, ...data} with the given status.
func Success(c *gin.Context, status int, data Response) {
	body := gin.H{"success": true}
	for k, v := range data {
		body[k] = v
	}
	c.JSON(status, body)
}

// OK is Success with 200.
func OK(c *gin.Context, data Response) {
	Success(c, http.StatusOK, data)
}

// Error writes {"success": false, "message": msg}.
func Error(c *gin.Context, httpStatus int, msg string) {
	c.JSON(httpStatus, gin.H{
		"success": false,
		"message": msg,
	})
}
