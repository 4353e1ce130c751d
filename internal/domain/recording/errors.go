package recording

import "errors"

var (
	ErrRecordingNotFound = errors.New("recording not found")
	ErrPayloadMissing    = errors.New("recording has no audio payload")
	ErrRecordingExists   = errors.New("recording already exists")
	ErrSessionFinalized  = errors.New("upload session already finalized")
	ErrSizeMismatch      = errors.New("reassembled size does not match expected total size")
	ErrInvalidChunkData  = errors.New("chunk data is not valid base64")
)
