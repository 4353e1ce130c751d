package recording

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the recording API under r (typically /api).
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	audio := r.Group("/audio")
	{
		audio.POST("/upload-chunk", h.UploadChunk)
		audio.POST("/finalize-chunked-upload", h.Finalize)

		audio.POST("/stream-chunk", h.StreamChunk)
		audio.POST("/finalize-stream", h.FinalizeStream)
		audio.GET("/stream", h.HandleStream)

		audio.GET("", h.List)
		audio.GET("/stats", h.Stats)
		audio.GET("/:id", h.GetByID)
		audio.GET("/:id/download", h.Download)
		audio.GET("/:id/stream-chunks", h.StreamChunkCount)
		audio.PUT("/:id", h.Update)
		audio.DELETE("/:id", h.Delete)
	}
}
