package server

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/farcloser/tactus"
	"github.com/farcloser/tactus/internal/integration/ffmpeg"
	"github.com/farcloser/tactus/internal/output"
	"github.com/farcloser/tactus/internal/pcm"
)

const (
	codeMissingFile  = "MISSING_FILE"
	codeFileTooLarge = "FILE_TOO_LARGE"
)

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleAnalyze(c *fiber.Ctx) error {
	upload, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(output.Simple(codeMissingFile,
			"Missing file upload.",
			`Attach the recording as the "file" form field.`))
	}

	if !strings.HasPrefix(upload.Header.Get("Content-Type"), "audio/") {
		return c.Status(fiber.StatusBadRequest).JSON(output.Simple(tactus.CodeUnsupportedFormat,
			"Invalid content type. Please upload an audio file.",
			"Upload a WAV, MP3, M4A, FLAC or OGG recording."))
	}

	if upload.Size > s.cfg.MaxUploadBytes {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(output.Simple(codeFileTooLarge,
			"File too large.",
			"Upload a shorter recording, or compress it before uploading."))
	}

	file, err := upload.Open()
	if err != nil {
		return s.fail(c, err)
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(c.UserContext(), s.cfg.Timeout)
	defer cancel()

	var pcmBuf bytes.Buffer

	if err = s.transcode(ctx, file, &pcmBuf, ffmpeg.AnalysisFormat); err != nil {
		return s.fail(c, err)
	}

	sig, err := pcm.DecodeMono(&pcmBuf, ffmpeg.AnalysisFormat)
	if err != nil {
		return s.fail(c, err)
	}

	result, err := tactus.AnalyzeContext(ctx, sig, s.opts)
	if err != nil {
		return s.fail(c, err)
	}

	slog.Info("analyzed", "file", upload.Filename, "tempo", result.TempoBPM,
		"variance_ms", result.Timing.TimingVarianceMs, "onsets", len(result.Onsets))

	if s.store != nil {
		if _, err = s.store.Save(ctx, upload.Filename, s.cfg.Profile.String(), result); err != nil {
			slog.Warn("failed to store analysis", "file", upload.Filename, "error", err)
		}
	}

	return c.JSON(result)
}

// fail answers with the error envelope: 400 for analysis failures, 500 for everything else.
func (s *Server) fail(c *fiber.Ctx, err error) error {
	debugID := uuid.NewString()
	status := fiber.StatusInternalServerError

	var ae *tactus.AnalysisError
	if errors.As(err, &ae) {
		status = fiber.StatusBadRequest

		slog.Info("analysis rejected", "code", ae.Code, "debug_id", debugID, "passes", len(ae.Passes))
	} else {
		slog.Warn("analysis failed", "debug_id", debugID, "error", err)
	}

	return c.Status(status).JSON(output.ErrorEnvelope(err, debugID))
}
