package recording

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"audiovault/internal/database"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func TestRegistryCreateAndGet(t *testing.T) {
	db := setupDB(t)
	reg := NewRegistry(db)
	ctx := context.Background()

	rec := &Recording{
		ID:           "rec-1",
		Filename:     "take1.m4a",
		OriginalName: "take1.m4a",
		AudioData:    []byte("audio-bytes"),
		FileSize:     11,
		MimeType:     "audio/mp4",
		UploadDate:   time.Now().UTC().Format(time.RFC3339),
	}
	require.NoError(t, reg.Create(ctx, rec))

	sum, err := reg.GetByID(ctx, "rec-1")
	require.NoError(t, err)
	require.Equal(t, "rec-1", sum.ID)
	require.Equal(t, "take1.m4a", sum.Filename)
	require.Equal(t, int64(11), sum.FileSize)

	payload, err := reg.GetPayload(ctx, "rec-1")
	require.NoError(t, err)
	require.Equal(t, []byte("audio-bytes"), payload)
}

func TestRegistryCreateDuplicateID(t *testing.T) {
	db := setupDB(t)
	reg := NewRegistry(db)
	ctx := context.Background()

	rec := &Recording{ID: "dup", Filename: "a.m4a", UploadDate: "2026-01-01T00:00:00Z"}
	require.NoError(t, reg.Create(ctx, rec))

	again := &Recording{ID: "dup", Filename: "b.m4a", UploadDate: "2026-01-01T00:00:00Z"}
	err := reg.Create(ctx, again)
	require.ErrorIs(t, err, ErrRecordingExists)
}

func TestRegistryGetUnknown(t *testing.T) {
	db := setupDB(t)
	reg := NewRegistry(db)
	ctx := context.Background()

	_, err := reg.GetByID(ctx, "nope")
	require.ErrorIs(t, err, ErrRecordingNotFound)

	_, err = reg.GetPayload(ctx, "nope")
	require.ErrorIs(t, err, ErrRecordingNotFound)
}

func TestRegistryPayloadMissing(t *testing.T) {
	db := setupDB(t)
	reg := NewRegistry(db)
	ctx := context.Background()

	rec := &Recording{ID: "meta-only", Filename: "m.m4a", UploadDate: "2026-01-01T00:00:00Z"}
	require.NoError(t, reg.Create(ctx, rec))

	_, err := reg.GetPayload(ctx, "meta-only")
	require.ErrorIs(t, err, ErrPayloadMissing)
}

func TestRegistryListNewestFirst(t *testing.T) {
	db := setupDB(t)
	reg := NewRegistry(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		rec := &Recording{
			ID:         id,
			Filename:   id + ".m4a",
			UploadDate: base.Format(time.RFC3339),
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, reg.Create(ctx, rec))
	}

	summaries, err := reg.ListSummaries(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	require.Equal(t, "new", summaries[0].ID)
	require.Equal(t, "mid", summaries[1].ID)
	require.Equal(t, "old", summaries[2].ID)
}

func TestRegistryUpdate(t *testing.T) {
	db := setupDB(t)
	reg := NewRegistry(db)
	ctx := context.Background()

	rec := &Recording{ID: "upd", Filename: "before.m4a", UploadDate: "2026-01-01T00:00:00Z"}
	require.NoError(t, reg.Create(ctx, rec))

	rows, err := reg.Update(ctx, "upd", map[string]interface{}{"filename": "after.m4a"})
	require.NoError(t, err)
	require.Equal(t, int64(1), rows)

	sum, err := reg.GetByID(ctx, "upd")
	require.NoError(t, err)
	require.Equal(t, "after.m4a", sum.Filename)

	// empty field set is a successful no-op
	rows, err = reg.Update(ctx, "upd", map[string]interface{}{})
	require.NoError(t, err)
	require.Zero(t, rows)

	rows, err = reg.Update(ctx, "ghost", map[string]interface{}{"filename": "x"})
	require.NoError(t, err)
	require.Zero(t, rows)
}

func TestRegistryDeleteRemovesChunkRows(t *testing.T) {
	db := setupDB(t)
	reg := NewRegistry(db)
	chunks := NewChunkStore(db)
	ctx := context.Background()

	_, err := chunks.Save(ctx, "doomed", 0, []byte("aaaa"))
	require.NoError(t, err)
	_, err = chunks.Save(ctx, "doomed", 1, []byte("bbbb"))
	require.NoError(t, err)

	rec := &Recording{ID: "doomed", Filename: "d.m4a", AudioData: []byte("aaaabbbb"), FileSize: 8, UploadDate: "2026-01-01T00:00:00Z"}
	require.NoError(t, reg.Create(ctx, rec))

	rows, err := reg.Delete(ctx, "doomed")
	require.NoError(t, err)
	require.Equal(t, int64(1), rows)

	_, err = reg.GetByID(ctx, "doomed")
	require.ErrorIs(t, err, ErrRecordingNotFound)

	count, err := chunks.CountByRecording(ctx, "doomed")
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestRegistryDeleteUnknown(t *testing.T) {
	db := setupDB(t)
	reg := NewRegistry(db)

	rows, err := reg.Delete(context.Background(), "ghost")
	require.NoError(t, err)
	require.Zero(t, rows)
}

func TestRegistryStats(t *testing.T) {
	db := setupDB(t)
	reg := NewRegistry(db)
	ctx := context.Background()

	stats, err := reg.Stats(ctx)
	require.NoError(t, err)
	require.Zero(t, stats.Count)
	require.Zero(t, stats.TotalBytes)
	require.Nil(t, stats.Earliest)
	require.Nil(t, stats.Latest)

	for i, size := range []int64{100, 300} {
		rec := &Recording{
			ID:         []string{"s1", "s2"}[i],
			Filename:   "s.m4a",
			FileSize:   size,
			UploadDate: "2026-01-01T00:00:00Z",
		}
		require.NoError(t, reg.Create(ctx, rec))
	}

	stats, err = reg.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), stats.Count)
	require.Equal(t, int64(400), stats.TotalBytes)
	require.InDelta(t, 200.0, stats.AverageBytes, 0.001)
	require.NotNil(t, stats.Earliest)
	require.NotNil(t, stats.Latest)
}

func TestChunkStoreOrderedPayloads(t *testing.T) {
	db := setupDB(t)
	chunks := NewChunkStore(db)
	ctx := context.Background()

	// inserted out of index order
	for _, c := range []struct {
		index   int
		payload string
	}{
		{2, "third"},
		{0, "first"},
		{1, "second"},
	} {
		ack, err := chunks.Save(ctx, "r1", c.index, []byte(c.payload))
		require.NoError(t, err)
		require.Equal(t, c.index, ack.Index)
		require.Equal(t, len(c.payload), ack.Size)
	}

	payloads, err := chunks.OrderedPayloads(ctx, "r1")
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("first"), []byte("second"), []byte("third")}, payloads)

	payloads, err = chunks.OrderedPayloads(ctx, "unseen")
	require.NoError(t, err)
	require.Empty(t, payloads)
}

func TestChunkStoreDuplicateIndexBothPersist(t *testing.T) {
	db := setupDB(t)
	chunks := NewChunkStore(db)
	ctx := context.Background()

	_, err := chunks.Save(ctx, "r1", 0, []byte("one"))
	require.NoError(t, err)
	_, err = chunks.Save(ctx, "r1", 0, []byte("two"))
	require.NoError(t, err)

	count, err := chunks.CountByRecording(ctx, "r1")
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	payloads, err := chunks.OrderedPayloads(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, payloads, 2)
}

func TestStreamChunkStoreLifecycle(t *testing.T) {
	db := setupDB(t)
	stream := NewStreamChunkStore(db)
	ctx := context.Background()

	_, err := stream.Save(ctx, "live", 0, []byte("aa"), 1000)
	require.NoError(t, err)
	_, err = stream.Save(ctx, "live", 1, []byte("bb"), 2000)
	require.NoError(t, err)

	count, err := stream.CountByRecording(ctx, "live")
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	payloads, err := stream.OrderedPayloads(ctx, "live")
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("aa"), []byte("bb")}, payloads)

	deleted, err := stream.DeleteByRecording(ctx, "live")
	require.NoError(t, err)
	require.Equal(t, int64(2), deleted)

	count, err = stream.CountByRecording(ctx, "live")
	require.NoError(t, err)
	require.Zero(t, count)
}
