package recording

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Summary is a Recording without its payload, used for listings and
// metadata fetches so response size stays bounded.
type Summary struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name"`
	FileSize     int64     `json:"file_size"`
	MimeType     string    `json:"mime_type"`
	UploadDate   string    `json:"upload_date"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Stats aggregates the whole registry.
type Stats struct {
	Count        int64      `json:"total_recordings"`
	TotalBytes   int64      `json:"total_size"`
	AverageBytes float64    `json:"average_size"`
	Earliest     *time.Time `json:"first_recording"`
	Latest       *time.Time `json:"last_recording"`
}

// Registry is the durable store of finalized recordings.
type Registry interface {
	Create(ctx context.Context, rec *Recording) error
	ListSummaries(ctx context.Context) ([]Summary, error)
	GetByID(ctx context.Context, id string) (*Summary, error)
	GetPayload(ctx context.Context, id string) ([]byte, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
	Stats(ctx context.Context) (*Stats, error)
}

// ChunkAck acknowledges a stored chunk.
type ChunkAck struct {
	Index int `json:"chunkIndex"`
	Size  int `json:"size"`
}

// ChunkStore is the append-only holding area for upload chunks.
type ChunkStore interface {
	Save(ctx context.Context, recordingID string, index int, payload []byte) (*ChunkAck, error)
	OrderedPayloads(ctx context.Context, recordingID string) ([][]byte, error)
	DeleteByRecording(ctx context.Context, recordingID string) (int64, error)
	CountByRecording(ctx context.Context, recordingID string) (int64, error)
}

// StreamChunkStore is the streaming variant; chunks carry a client
// capture timestamp (unix milliseconds).
type StreamChunkStore interface {
	Save(ctx context.Context, recordingID string, index int, payload []byte, timestamp int64) (*ChunkAck, error)
	OrderedPayloads(ctx context.Context, recordingID string) ([][]byte, error)
	DeleteByRecording(ctx context.Context, recordingID string) (int64, error)
	CountByRecording(ctx context.Context, recordingID string) (int64, error)
}

type registry struct {
	db *gorm.DB
}

func NewRegistry(db *gorm.DB) Registry {
	return &registry{db: db}
}

func (r *registry) Create(ctx context.Context, rec *Recording) error {
	err := r.db.WithContext(ctx).Create(rec).Error
	if err != nil && isDuplicateKey(err) {
		return ErrRecordingExists
	}
	return err
}

// isDuplicateKey matches primary-key violations across both drivers;
// the modernc SQLite errors are not translated by gorm.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

func (r *registry) ListSummaries(ctx context.Context) ([]Summary, error) {
	summaries := make([]Summary, 0)
	err := r.db.WithContext(ctx).
		Model(&Recording{}).
		Order("created_at DESC").
		Find(&summaries).Error
	return summaries, err
}

func (r *registry) GetByID(ctx context.Context, id string) (*Summary, error) {
	var s Summary
	err := r.db.WithContext(ctx).
		Model(&Recording{}).
		Where("id = ?", id).
		Take(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *registry) GetPayload(ctx context.Context, id string) ([]byte, error) {
	var row struct {
		AudioData []byte
		Missing   bool
	}
	err := r.db.WithContext(ctx).
		Model(&Recording{}).
		Select("audio_data, audio_data IS NULL AS missing").
		Where("id = ?", id).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordingNotFound
	}
	if err != nil {
		return nil, err
	}
	if row.Missing {
		return nil, ErrPayloadMissing
	}
	return row.AudioData, nil
}

func (r *registry) Update(ctx context.Context, id string, fields map[string]interface{}) (int64, error) {
	if len(fields) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&Recording{}).
		Where("id = ?", id).
		Updates(fields)
	return res.RowsAffected, res.Error
}

// Delete removes the recording and any chunk rows still held for it.
// The payload is gone after this; there is no soft delete.
func (r *registry) Delete(ctx context.Context, id string) (int64, error) {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recording_id = ?", id).Delete(&Chunk{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&Recording{})
		if res.Error != nil {
			return res.Error
		}
		affected = res.RowsAffected
		return nil
	})
	return affected, err
}

func (r *registry) Stats(ctx context.Context) (*Stats, error) {
	var row struct {
		Count        int64
		TotalBytes   int64
		AverageBytes float64
	}
	err := r.db.WithContext(ctx).
		Model(&Recording{}).
		Select("COUNT(*) AS count, " +
			"COALESCE(SUM(file_size), 0) AS total_bytes, " +
			"COALESCE(AVG(file_size), 0) AS average_bytes").
		Take(&row).Error
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		Count:        row.Count,
		TotalBytes:   row.TotalBytes,
		AverageBytes: row.AverageBytes,
	}
	if row.Count == 0 {
		return stats, nil
	}

	// MIN/MAX over created_at lose the column's datetime decltype, so
	// the SQLite driver would hand back strings. Plain column reads
	// keep both drivers returning time.Time.
	earliest, err := r.createdAtBoundary(ctx, "created_at ASC")
	if err != nil {
		return nil, err
	}
	latest, err := r.createdAtBoundary(ctx, "created_at DESC")
	if err != nil {
		return nil, err
	}
	stats.Earliest = earliest
	stats.Latest = latest
	return stats, nil
}

func (r *registry) createdAtBoundary(ctx context.Context, order string) (*time.Time, error) {
	var row struct {
		CreatedAt time.Time
	}
	err := r.db.WithContext(ctx).
		Model(&Recording{}).
		Select("created_at").
		Order(order).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row.CreatedAt, nil
}

type chunkStore struct {
	db *gorm.DB
}

func NewChunkStore(db *gorm.DB) ChunkStore {
	return &chunkStore{db: db}
}

func (s *chunkStore) Save(ctx context.Context, recordingID string, index int, payload []byte) (*ChunkAck, error) {
	chunk := &Chunk{
		RecordingID: recordingID,
		ChunkIndex:  index,
		ChunkData:   payload,
		ChunkSize:   int64(len(payload)),
	}
	if err := s.db.WithContext(ctx).Create(chunk).Error; err != nil {
		return nil, err
	}
	return &ChunkAck{Index: index, Size: len(payload)}, nil
}

func (s *chunkStore) OrderedPayloads(ctx context.Context, recordingID string) ([][]byte, error) {
	var payloads [][]byte
	err := s.db.WithContext(ctx).
		Model(&Chunk{}).
		Where("recording_id = ?", recordingID).
		Order("chunk_index ASC").
		Pluck("chunk_data", &payloads).Error
	return payloads, err
}

func (s *chunkStore) DeleteByRecording(ctx context.Context, recordingID string) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("recording_id = ?", recordingID).
		Delete(&Chunk{})
	return res.RowsAffected, res.Error
}

func (s *chunkStore) CountByRecording(ctx context.Context, recordingID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&Chunk{}).
		Where("recording_id = ?", recordingID).
		Count(&count).Error
	return count, err
}

type streamChunkStore struct {
	db *gorm.DB
}

func NewStreamChunkStore(db *gorm.DB) StreamChunkStore {
	return &streamChunkStore{db: db}
}

func (s *streamChunkStore) Save(ctx context.Context, recordingID string, index int, payload []byte, timestamp int64) (*ChunkAck, error) {
	chunk := &StreamChunk{
		RecordingID: recordingID,
		ChunkIndex:  index,
		ChunkData:   payload,
		ChunkSize:   int64(len(payload)),
		Timestamp:   timestamp,
	}
	if err := s.db.WithContext(ctx).Create(chunk).Error; err != nil {
		return nil, err
	}
	return &ChunkAck{Index: index, Size: len(payload)}, nil
}

func (s *streamChunkStore) OrderedPayloads(ctx context.Context, recordingID string) ([][]byte, error) {
	var payloads [][]byte
	err := s.db.WithContext(ctx).
		Model(&StreamChunk{}).
		Where("recording_id = ?", recordingID).
		Order("chunk_index ASC").
		Pluck("chunk_data", &payloads).Error
	return payloads, err
}

func (s *streamChunkStore) DeleteByRecording(ctx context.Context, recordingID string) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("recording_id = ?", recordingID).
		Delete(&StreamChunk{})
	return res.RowsAffected, res.Error
}

func (s *streamChunkStore) CountByRecording(ctx context.Context, recordingID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&StreamChunk{}).
		Where("recording_id = ?", recordingID).
		Count(&count).Error
	return count, err
}
