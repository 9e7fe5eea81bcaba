// Package image cleans up user uploaded pictures before they are stored.
package image

import (
	"bytes"
	"fmt"
	"io"

	"github.com/h2non/bimg"
	"github.com/yjkogan/stuff-tracker/internal/util"
)

const (
	ErrUnsupported = util.ErrPublic("unsupported image format")
	ErrTooLarge    = util.ErrPublic("image dimensions are too large")
)

// ProcessorConfig holds configuration for image processing.
type ProcessorConfig struct {
	// Quality of the JPEG output (1-100).
	Quality int

	// Output is resized down to fit MaxWidth x MaxHeight, keeping the aspect
	// ratio. Zero means no limit.
	MaxWidth, MaxHeight int

	// MaxPixels rejects images whose header announces more pixels than this,
	// before anything gets decoded.
	MaxPixels int
}

func DefaultConfig() ProcessorConfig {
	return ProcessorConfig{
		Quality:   85,
		MaxWidth:  2048,
		MaxHeight: 2048,
		MaxPixels: 50_000_000,
	}
}

// Process reads an image and returns it as a JPEG without metadata, rotated
// according to its EXIF orientation.
func Process(r io.Reader) ([]byte, error) {
	return ProcessWithConfig(r, DefaultConfig())
}

func ProcessBytes(buf []byte) ([]byte, error) {
	return ProcessWithConfig(bytes.NewReader(buf), DefaultConfig())
}

func ProcessWithConfig(r io.Reader, config ProcessorConfig) ([]byte, error) {
	input, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read image: %w", err)
	}

	img := bimg.NewImage(input)
	metadata, err := img.Metadata()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}

	width, height := metadata.Size.Width, metadata.Size.Height
	if width <= 0 || height <= 0 {
		return nil, ErrUnsupported
	}
	if config.MaxPixels > 0 && width*height > config.MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooLarge, width, height)
	}

	// EXIF orientations 5 to 8 are quarter turns, the output is transposed.
	if metadata.Orientation >= 5 {
		width, height = height, width
	}

	options := bimg.Options{
		Type:          bimg.JPEG,
		Quality:       config.Quality,
		StripMetadata: true,
		NoAutoRotate:  false,
	}
	fitInto(&options, width, height, config.MaxWidth, config.MaxHeight)

	output, err := img.Process(options)
	if err != nil {
		return nil, fmt.Errorf("unable to process image: %w", err)
	}

	return output, nil
}

// fitInto constrains a single dimension so bimg keeps the aspect ratio.
func fitInto(options *bimg.Options, width, height, maxWidth, maxHeight int) {
	tooWide := maxWidth > 0 && width > maxWidth
	tooHigh := maxHeight > 0 && height > maxHeight

	switch {
	case tooWide && tooHigh:
		// Pick the side that needs the most shrinking.
		if width*maxHeight >= height*maxWidth {
			options.Width = maxWidth
		} else {
			options.Height = maxHeight
		}
	case tooWide:
		options.Width = maxWidth
	case tooHigh:
		options.Height = maxHeight
	}
}
