package uploader

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client drives a chunked upload against the audiovault API: split,
// send strictly sequentially, then finalize exactly once. The first
// failed chunk aborts the whole upload; there is no retry or resume.
type Client struct {
	baseURL    string
	httpClient *http.Client
	chunkSize  int
}

// UploadResult mirrors the finalize response.
type UploadResult struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	UploadDate string `json:"uploadDate"`
	Size       int64  `json:"size"`
}

type chunkAck struct {
	Index int `json:"chunkIndex"`
	Size  int `json:"size"`
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func NewClient(baseURL string, chunkSize int) *Client {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		chunkSize:  chunkSize,
	}
}

// Health checks that the server is reachable.
func (c *Client) Health(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/api/health", nil, nil)
}

// UploadFile reads path fully into memory and uploads it.
func (c *Client) UploadFile(ctx context.Context, path, mimeType string) (*UploadResult, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return c.Upload(ctx, filepath.Base(path), mimeType, raw)
}

// Upload splits raw into encoded chunks and sends them in index order,
// each awaited before the next, followed by a single finalize carrying
// the metadata and the raw byte count as the integrity check.
func (c *Client) Upload(ctx context.Context, filename, mimeType string, raw []byte) (*UploadResult, error) {
	encoded := base64.StdEncoding.EncodeToString(raw)
	recordingID := uuid.NewString()

	slices := Split(encoded, EncodedSliceSize(c.chunkSize))
	for i, slice := range slices {
		body := map[string]interface{}{
			"recordingId": recordingID,
			"chunkIndex":  i,
			"chunkData":   slice,
		}
		var ack chunkAck
		if err := c.doJSON(ctx, http.MethodPost, "/api/audio/upload-chunk", body, &ack); err != nil {
			return nil, fmt.Errorf("chunk %d/%d: %w", i+1, len(slices), err)
		}
	}

	body := map[string]interface{}{
		"recordingId":  recordingID,
		"filename":     filename,
		"originalName": filename,
		"mimeType":     mimeType,
		"totalSize":    len(raw),
	}
	var result UploadResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/audio/finalize-chunked-upload", body, &result); err != nil {
		return nil, fmt.Errorf("finalize: %w", err)
	}
	return &result, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response (%s): %w", resp.Status, err)
	}
	if !env.Success {
		if env.Error != nil {
			return fmt.Errorf("server error %s: %s", env.Error.Code, env.Error.Message)
		}
		return fmt.Errorf("server error: %s", resp.Status)
	}
	if out != nil && env.Data != nil {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}
