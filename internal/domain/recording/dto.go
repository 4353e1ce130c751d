package recording

// UploadChunkRequest is the body of POST /api/audio/upload-chunk.
// ChunkIndex is a pointer so index 0 and a missing field stay
// distinguishable.
type UploadChunkRequest struct {
	RecordingID string `json:"recordingId"`
	ChunkIndex  *int   `json:"chunkIndex"`
	ChunkData   string `json:"chunkData"`
}

// StreamChunkRequest is the body of POST /api/audio/stream-chunk.
type StreamChunkRequest struct {
	RecordingID string `json:"recordingId"`
	ChunkIndex  *int   `json:"chunkIndex"`
	ChunkData   string `json:"chunkData"`
	Timestamp   int64  `json:"timestamp"`
}

// FinalizeRequest is the body of the finalize endpoints. Everything
// but RecordingID is optional.
type FinalizeRequest struct {
	RecordingID  string `json:"recordingId"`
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	MimeType     string `json:"mimeType"`
	TotalSize    int64  `json:"totalSize"`
}

// UpdateRequest is the body of PUT /api/audio/:id. Only present fields
// are applied; an empty body is a successful no-op.
type UpdateRequest struct {
	Filename     *string `json:"filename"`
	OriginalName *string `json:"originalName"`
	MimeType     *string `json:"mimeType"`
}

// Fields maps the present members onto registry column updates.
func (r UpdateRequest) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if r.Filename != nil {
		fields["filename"] = *r.Filename
	}
	if r.OriginalName != nil {
		fields["original_name"] = *r.OriginalName
	}
	if r.MimeType != nil {
		fields["mime_type"] = *r.MimeType
	}
	return fields
}
