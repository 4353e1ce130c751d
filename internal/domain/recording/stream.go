package recording

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	streamWriteWait   = 10 * time.Second
	streamReadWait    = 60 * time.Second
	streamMaxFrameLen = 512 * 1024 // comfortably above one encoded 64 KiB chunk
)

var streamUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow any origin; the HTTP CORS policy does not apply to
	// websocket upgrades. Tighten per deployment.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamFrame is one client message on the live-ingest socket.
type StreamFrame struct {
	Type        string `json:"type"` // "chunk" or "finalize"
	RecordingID string `json:"recordingId"`
	ChunkIndex  *int   `json:"chunkIndex,omitempty"`
	ChunkData   string `json:"chunkData,omitempty"`
	Timestamp   int64  `json:"timestamp,omitempty"`

	// finalize-only metadata, same semantics as FinalizeRequest
	Filename     string `json:"filename,omitempty"`
	OriginalName string `json:"originalName,omitempty"`
	MimeType     string `json:"mimeType,omitempty"`
	TotalSize    int64  `json:"totalSize,omitempty"`
}

// StreamAck is the per-frame server reply.
type StreamAck struct {
	Type  string          `json:"type"` // "ack", "finalized" or "error"
	Chunk *ChunkAck       `json:"chunk,omitempty"`
	Data  *FinalizeResult `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

// HandleStream upgrades to a WebSocket and ingests streaming chunks:
// one JSON frame per chunk, acked individually, until a finalize frame
// assembles the recording and closes the session.
func (h *Handler) HandleStream(c *gin.Context) {
	logger := zerolog.Ctx(c.Request.Context())

	conn, err := streamUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadLimit(streamMaxFrameLen)
	_ = conn.SetReadDeadline(time.Now().Add(streamReadWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamReadWait))
	})

	ctx := c.Request.Context()
	for {
		var frame StreamFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure) {
				logger.Warn().Err(err).Msg("stream read error")
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(streamReadWait))

		switch frame.Type {
		case "chunk":
			if frame.RecordingID == "" || frame.ChunkIndex == nil || frame.ChunkData == "" {
				h.writeStreamAck(conn, &StreamAck{Type: "error", Error: "recordingId, chunkIndex and chunkData are required"})
				continue
			}
			ack, err := h.service.AcceptStreamChunk(ctx,
				frame.RecordingID, *frame.ChunkIndex, frame.ChunkData, frame.Timestamp)
			if err != nil {
				h.writeStreamAck(conn, &StreamAck{Type: "error", Error: err.Error()})
				continue
			}
			h.writeStreamAck(conn, &StreamAck{Type: "ack", Chunk: ack})

		case "finalize":
			if frame.RecordingID == "" {
				h.writeStreamAck(conn, &StreamAck{Type: "error", Error: "recordingId is required"})
				continue
			}
			res, err := h.service.FinalizeStream(ctx, frame.RecordingID, FinalizeOptions{
				Filename:     frame.Filename,
				OriginalName: frame.OriginalName,
				MimeType:     frame.MimeType,
				TotalSize:    frame.TotalSize,
			})
			if err != nil {
				h.writeStreamAck(conn, &StreamAck{Type: "error", Error: err.Error()})
				continue
			}
			h.writeStreamAck(conn, &StreamAck{Type: "finalized", Data: res})
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "finalized"),
				time.Now().Add(streamWriteWait))
			return

		default:
			h.writeStreamAck(conn, &StreamAck{Type: "error", Error: "unknown frame type"})
		}
	}
}

func (h *Handler) writeStreamAck(conn *websocket.Conn, ack *StreamAck) {
	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	_ = conn.WriteJSON(ack)
}
