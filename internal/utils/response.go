package utils

import "github.com/gin-gonic/gin"

// Success writes a success payload. Extra key/value pairs are merged into
// the envelope so handlers can attach domain keys ("testSeries", "history")
// next to the success flag.
func Success(c *gin.Context, code int, extra gin.H) {
	body := gin.H{"success": true}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(code, body)
}

// SuccessList writes a success payload carrying a counted collection under
// the given key.
func SuccessList(c *gin.Context, key string, count int, items any) {
	c.JSON(200, gin.H{
		"success": true,
		"count":   count,
		key:       items,
	})
}

// Error writes a failure payload with a human-readable message.
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{
		"success": false,
		"message": message,
	})
}
