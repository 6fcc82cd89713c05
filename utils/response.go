package utils

import "github.com/gin-gonic/gin"

// API responses carry the payload directly; errors use a single-key envelope
// so clients can always read response["error"].

// JSON writes a success payload with the given status code.
func JSON(ctx *gin.Context, status int, payload interface{}) {
	ctx.JSON(status, payload)
}

// Error writes a standard error response of the form {"error": "<message>"}.
func Error(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{"error": message})
}
