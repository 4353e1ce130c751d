package response

import "github.com/gin-gonic/gin"

// Error codes shared by the API handlers.
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeNotFound         = "RECORDING_NOT_FOUND"
	CodeRecordingExists  = "RECORDING_EXISTS"
	CodeSessionFinalized = "RECORDING_FINALIZED"
	CodeSizeMismatch     = "SIZE_MISMATCH"
	CodeStorage          = "STORAGE_ERROR"
	CodeInternal         = "INTERNAL_SERVER_ERROR"
)

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
