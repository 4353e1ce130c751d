package recording

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultMimeType     = "audio/mp4"
	defaultOriginalName = "recording.m4a"
)

// FinalizeOptions carries the optional metadata a client may attach to
// a finalize call. Zero values fall back to server defaults.
type FinalizeOptions struct {
	Filename     string
	OriginalName string
	MimeType     string
	// TotalSize, when positive, is validated against the reassembled
	// byte length before anything is written to the registry.
	TotalSize int64
}

// FinalizeResult is the summary returned after a successful finalize.
type FinalizeResult struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	UploadDate string `json:"uploadDate"`
	Size       int64  `json:"size"`
}

// chunkSource is the slice of store behaviour finalize needs.
type chunkSource interface {
	PayloadSource
	DeleteByRecording(ctx context.Context, recordingID string) (int64, error)
}

// Service drives the upload session protocol: chunk ingestion,
// reassembly, finalization into the registry, and the registry
// passthroughs the HTTP layer exposes.
type Service struct {
	registry Registry
	chunks   ChunkStore
	stream   StreamChunkStore
	sessions *SessionTracker
}

func NewService(registry Registry, chunks ChunkStore, stream StreamChunkStore) *Service {
	return &Service{
		registry: registry,
		chunks:   chunks,
		stream:   stream,
		sessions: NewSessionTracker(),
	}
}

// AcceptChunk decodes and stores one upload chunk. Chunks arriving for
// a session that is finalizing or finalized are rejected, and the
// session hold spans the store call so an acked chunk is always part
// of a later finalize.
func (s *Service) AcceptChunk(ctx context.Context, recordingID string, index int, encoded string) (*ChunkAck, error) {
	payload, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidChunkData, err)
	}
	if err := s.sessions.BeginChunk(recordingID); err != nil {
		return nil, err
	}
	defer s.sessions.EndChunk(recordingID)
	return s.chunks.Save(ctx, recordingID, index, payload)
}

// AcceptStreamChunk is the streaming variant of AcceptChunk; timestamp
// is the client capture time in unix milliseconds.
func (s *Service) AcceptStreamChunk(ctx context.Context, recordingID string, index int, encoded string, timestamp int64) (*ChunkAck, error) {
	payload, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidChunkData, err)
	}
	if err := s.sessions.BeginChunk(recordingID); err != nil {
		return nil, err
	}
	defer s.sessions.EndChunk(recordingID)
	return s.stream.Save(ctx, recordingID, index, payload, timestamp)
}

// Finalize reassembles all stored chunks for recordingID and persists
// the result as a Recording. At most one finalize per id ever
// succeeds; chunk rows are removed once the recording is durable.
func (s *Service) Finalize(ctx context.Context, recordingID string, opts FinalizeOptions) (*FinalizeResult, error) {
	if err := s.sessions.BeginFinalize(recordingID); err != nil {
		return nil, err
	}
	res, err := s.finalize(ctx, recordingID, opts, s.chunks)
	s.sessions.CompleteFinalize(recordingID, err == nil)
	return res, err
}

// FinalizeStream assembles the streaming chunks for recordingID into a
// Recording and cleans up the streaming rows.
func (s *Service) FinalizeStream(ctx context.Context, recordingID string, opts FinalizeOptions) (*FinalizeResult, error) {
	if err := s.sessions.BeginFinalize(recordingID); err != nil {
		return nil, err
	}
	res, err := s.finalize(ctx, recordingID, opts, s.stream)
	s.sessions.CompleteFinalize(recordingID, err == nil)
	return res, err
}

func (s *Service) finalize(ctx context.Context, recordingID string, opts FinalizeOptions, source chunkSource) (*FinalizeResult, error) {
	payload, err := Reassemble(ctx, source, recordingID)
	if err != nil {
		return nil, fmt.Errorf("reassemble %s: %w", recordingID, err)
	}
	if payload == nil {
		// Zero chunks stored is a valid finalize: an empty recording,
		// persisted as an empty blob rather than NULL.
		payload = []byte{}
	}

	if opts.TotalSize > 0 && opts.TotalSize != int64(len(payload)) {
		return nil, fmt.Errorf("%w: expected %d bytes, reassembled %d",
			ErrSizeMismatch, opts.TotalSize, len(payload))
	}

	now := time.Now().UTC()

	filename := opts.Filename
	if filename == "" {
		filename = fmt.Sprintf("recording_%d.m4a", now.UnixMilli())
	}
	originalName := opts.OriginalName
	if originalName == "" {
		originalName = defaultOriginalName
	}
	mimeType := opts.MimeType
	if mimeType == "" {
		mimeType = DefaultMimeType
	}

	rec := &Recording{
		ID:           recordingID,
		Filename:     filename,
		OriginalName: originalName,
		AudioData:    payload,
		FileSize:     int64(len(payload)),
		MimeType:     mimeType,
		UploadDate:   now.Format(time.RFC3339),
	}

	if err := s.registry.Create(ctx, rec); err != nil {
		return nil, err
	}

	// The recording is durable; held chunks have no reader left.
	// Cleanup failure is logged, never fatal.
	if deleted, err := source.DeleteByRecording(ctx, recordingID); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).
			Str("recording_id", recordingID).
			Msg("chunk cleanup after finalize failed")
	} else {
		zerolog.Ctx(ctx).Debug().
			Str("recording_id", recordingID).
			Int64("deleted_chunks", deleted).
			Msg("chunks cleaned up after finalize")
	}

	zerolog.Ctx(ctx).Info().
		Str("recording_id", recordingID).
		Str("filename", filename).
		Int("size", len(payload)).
		Msg("recording finalized")

	return &FinalizeResult{
		ID:         rec.ID,
		Filename:   rec.Filename,
		UploadDate: rec.UploadDate,
		Size:       rec.FileSize,
	}, nil
}

// StreamChunkCount reports how many streaming chunks are held for
// recordingID, for caller-driven cleanup policies.
func (s *Service) StreamChunkCount(ctx context.Context, recordingID string) (int64, error) {
	return s.stream.CountByRecording(ctx, recordingID)
}

func (s *Service) List(ctx context.Context) ([]Summary, error) {
	return s.registry.ListSummaries(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*Summary, error) {
	return s.registry.GetByID(ctx, id)
}

// Download returns the metadata and raw payload for id.
func (s *Service) Download(ctx context.Context, id string) (*Summary, []byte, error) {
	sum, err := s.registry.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	payload, err := s.registry.GetPayload(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return sum, payload, nil
}

// Update applies a partial metadata update. An empty field set is a
// successful no-op.
func (s *Service) Update(ctx context.Context, id string, fields map[string]interface{}) (int64, error) {
	if len(fields) == 0 {
		return 0, nil
	}
	rows, err := s.registry.Update(ctx, id, fields)
	if err != nil {
		return 0, err
	}
	if rows == 0 {
		return 0, ErrRecordingNotFound
	}
	return rows, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	rows, err := s.registry.Delete(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrRecordingNotFound
	}
	return nil
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.registry.Stats(ctx)
}
