package recording

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"audiovault/internal/pkg/response"
)

// Handler exposes the recording API over gin.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// UploadChunk stores one base64-encoded chunk.
func (h *Handler) UploadChunk(c *gin.Context) {
	var req UploadChunkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid request body")
		return
	}
	if req.RecordingID == "" || req.ChunkIndex == nil || req.ChunkData == "" {
		response.Error(c, http.StatusBadRequest, response.CodeValidation,
			"recordingId, chunkIndex and chunkData are required")
		return
	}
	if *req.ChunkIndex < 0 {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "chunkIndex must be >= 0")
		return
	}

	ack, err := h.service.AcceptChunk(c.Request.Context(), req.RecordingID, *req.ChunkIndex, req.ChunkData)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, ack)
}

// Finalize reassembles the stored chunks into a durable recording.
func (h *Handler) Finalize(c *gin.Context) {
	req, ok := h.bindFinalize(c)
	if !ok {
		return
	}

	res, err := h.service.Finalize(c.Request.Context(), req.RecordingID, FinalizeOptions{
		Filename:     req.Filename,
		OriginalName: req.OriginalName,
		MimeType:     req.MimeType,
		TotalSize:    req.TotalSize,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// StreamChunk stores one streaming chunk with its capture timestamp.
func (h *Handler) StreamChunk(c *gin.Context) {
	var req StreamChunkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid request body")
		return
	}
	if req.RecordingID == "" || req.ChunkIndex == nil || req.ChunkData == "" {
		response.Error(c, http.StatusBadRequest, response.CodeValidation,
			"recordingId, chunkIndex and chunkData are required")
		return
	}

	ack, err := h.service.AcceptStreamChunk(c.Request.Context(),
		req.RecordingID, *req.ChunkIndex, req.ChunkData, req.Timestamp)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, ack)
}

// FinalizeStream assembles the streaming chunks and removes them.
func (h *Handler) FinalizeStream(c *gin.Context) {
	req, ok := h.bindFinalize(c)
	if !ok {
		return
	}

	res, err := h.service.FinalizeStream(c.Request.Context(), req.RecordingID, FinalizeOptions{
		Filename:     req.Filename,
		OriginalName: req.OriginalName,
		MimeType:     req.MimeType,
		TotalSize:    req.TotalSize,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

func (h *Handler) bindFinalize(c *gin.Context) (*FinalizeRequest, bool) {
	var req FinalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid request body")
		return nil, false
	}
	if req.RecordingID == "" {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "recordingId is required")
		return nil, false
	}
	return &req, true
}

// List returns all recording summaries, newest first.
func (h *Handler) List(c *gin.Context) {
	summaries, err := h.service.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, summaries)
}

func (h *Handler) GetByID(c *gin.Context) {
	sum, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, sum)
}

// Download streams the raw payload with attachment headers.
func (h *Handler) Download(c *gin.Context) {
	sum, payload, err := h.service.Download(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	mimeType := sum.MimeType
	if mimeType == "" {
		mimeType = DefaultMimeType
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", sum.OriginalName))
	// An explicit length keeps large payloads out of chunked encoding
	// so clients can show progress.
	c.Header("Content-Length", strconv.Itoa(len(payload)))
	c.Data(http.StatusOK, mimeType, payload)
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid request body")
		return
	}

	id := c.Param("id")
	rows, err := h.service.Update(c.Request.Context(), id, req.Fields())
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id, "updated": rows})
}

func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id})
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

// StreamChunkCount reports held streaming chunks for an id.
func (h *Handler) StreamChunkCount(c *gin.Context) {
	count, err := h.service.StreamChunkCount(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"count": count})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrRecordingNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "recording not found")
	case errors.Is(err, ErrPayloadMissing):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "audio payload not found")
	case errors.Is(err, ErrRecordingExists):
		response.Error(c, http.StatusConflict, response.CodeRecordingExists, "recording already finalized")
	case errors.Is(err, ErrSessionFinalized):
		response.Error(c, http.StatusConflict, response.CodeSessionFinalized, "upload session already finalized")
	case errors.Is(err, ErrSizeMismatch):
		response.Error(c, http.StatusBadRequest, response.CodeSizeMismatch, err.Error())
	case errors.Is(err, ErrInvalidChunkData):
		response.Error(c, http.StatusBadRequest, response.CodeValidation, err.Error())
	default:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).
			Str("path", c.Request.URL.Path).
			Msg("storage failure")
		response.Error(c, http.StatusInternalServerError, response.CodeStorage, "storage failure")
	}
}
