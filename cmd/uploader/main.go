package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"

	"audiovault/internal/uploader"
)

func main() {
	server := flag.String("server", "http://localhost:3000", "audiovault server base URL")
	file := flag.String("file", "", "audio file to upload")
	mime := flag.String("mime", "audio/mp4", "MIME type of the file")
	chunkSize := flag.Int("chunk-size", uploader.DefaultChunkSize, "raw bytes per upload chunk")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if *file == "" {
		logger.Fatal().Msg("-file is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	client := uploader.NewClient(*server, *chunkSize)

	if err := client.Health(ctx); err != nil {
		logger.Fatal().Err(err).Str("server", *server).Msg("server unreachable")
	}

	result, err := client.UploadFile(ctx, *file, *mime)
	if err != nil {
		logger.Fatal().Err(err).Str("file", *file).Msg("upload failed")
	}

	logger.Info().
		Str("id", result.ID).
		Str("filename", result.Filename).
		Int64("size", result.Size).
		Str("upload_date", result.UploadDate).
		Msg("upload complete")
}
