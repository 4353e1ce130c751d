package recording

import "time"

// Recording is a finalized audio artifact: metadata plus the full
// reassembled payload. The payload is immutable after creation; only
// metadata fields may change via Update.
type Recording struct {
	ID           string    `gorm:"column:id;primaryKey" json:"id"`
	Filename     string    `gorm:"column:filename;not null" json:"filename"`
	OriginalName string    `gorm:"column:original_name" json:"original_name"`
	AudioData    []byte    `gorm:"column:audio_data" json:"-"`
	FileSize     int64     `gorm:"column:file_size" json:"file_size"`
	MimeType     string    `gorm:"column:mime_type" json:"mime_type"`
	UploadDate   string    `gorm:"column:upload_date;not null" json:"upload_date"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Recording) TableName() string { return "audio_recordings" }

// Chunk is a transient indexed fragment awaiting reassembly.
// (recording_id, chunk_index) is deliberately NOT unique: a re-sent
// index persists twice and both rows feed the reassembled output.
type Chunk struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	RecordingID string    `gorm:"column:recording_id;size:64;not null;index:idx_audio_chunks_recording" json:"recording_id"`
	ChunkIndex  int       `gorm:"column:chunk_index;not null" json:"chunk_index"`
	ChunkData   []byte    `gorm:"column:chunk_data;not null" json:"-"`
	ChunkSize   int64     `gorm:"column:chunk_size;not null" json:"chunk_size"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Chunk) TableName() string { return "audio_chunks" }

// StreamChunk is the live-ingest variant of Chunk. It carries the
// client capture timestamp and is cleaned up explicitly after
// assembly rather than on recording delete.
type StreamChunk struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	RecordingID string    `gorm:"column:recording_id;size:64;not null;index:idx_streaming_chunks_recording" json:"recording_id"`
	ChunkIndex  int       `gorm:"column:chunk_index;not null" json:"chunk_index"`
	ChunkData   []byte    `gorm:"column:chunk_data;not null" json:"-"`
	ChunkSize   int64     `gorm:"column:chunk_size;not null" json:"chunk_size"`
	Timestamp   int64     `gorm:"column:timestamp" json:"timestamp"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

func (StreamChunk) TableName() string { return "streaming_chunks" }
