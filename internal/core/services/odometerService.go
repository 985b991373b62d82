package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"strconv"
	"strings"

	"github.com/sm8ta/webike_maintenance_microservice/internal/core/domain"
	"github.com/sm8ta/webike_maintenance_microservice/internal/core/ports"
	"golang.org/x/image/draw"
)

const (
	detectImageWidth   = 512
	detectImageQuality = 70
)

type OdometerService struct {
	reader ports.OdometerReader
	logger ports.LoggerPort
}

func NewOdometerService(reader ports.OdometerReader, logger ports.LoggerPort) *OdometerService {
	return &OdometerService{
		reader: reader,
		logger: logger,
	}
}

// Detect resizes the photo and asks the reader for the odometer value.
func (s *OdometerService) Detect(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty image", domain.ErrValidation)
	}

	resized, err := ResizeImage(data, detectImageWidth, detectImageQuality)
	if err != nil {
		s.logger.Error("Failed to prepare image", map[string]interface{}{
			"error": err.Error(),
		})
		return "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	answer, err := s.reader.Detect(ctx, resized)
	if err != nil {
		s.logger.Error("Odometer detection failed", map[string]interface{}{
			"error": err.Error(),
		})
		return "", err
	}

	odo, ok := parseReading(answer)
	if !ok {
		s.logger.Warn("Odometer reader returned no number", map[string]interface{}{
			"answer": answer,
		})
		return "", domain.ErrNoReading
	}

	s.logger.Info("Odometer detected", map[string]interface{}{
		"odo": odo,
	})

	return odo, nil
}

// parseReading accepts a non-negative integer, ignoring spaces and the
// separators "," and ".".
func parseReading(answer string) (string, bool) {
	digits := strings.Map(func(r rune) rune {
		switch r {
		case ' ', ',', '.', '\t', '\n', '\r':
			return -1
		}
		return r
	}, answer)
	if digits == "" {
		return "", false
	}
	if strings.ContainsAny(digits, "+-") {
		return "", false
	}
	if _, err := strconv.Atoi(digits); err != nil {
		return "", false
	}
	return digits, true
}

// ResizeImage decodes a JPEG or PNG, scales it to the given width keeping the
// aspect ratio and re-encodes it as JPEG.
func ResizeImage(data []byte, width, quality int) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	var dst image.Image = src
	if bounds.Dx() != width {
		height := bounds.Dy() * width / bounds.Dx()
		if height < 1 {
			height = 1
		}
		scaled := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), src, bounds, draw.Over, nil)
		dst = scaled
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}
