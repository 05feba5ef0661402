// Package output writes finished frames to image files.
package output

import (
	"bufio"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/lmittmann/ppm"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/aliabbas299792/ray-tracer/pkg/renderer"
)

// ErrUnsupportedFormat is returned by Save for file extensions without an encoder
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Format names an output encoding
type Format string

// Supported formats
const (
	FormatPPM    Format = "ppm"    // Plain text P3
	FormatPPMRaw Format = "ppmraw" // Binary P6
	FormatPNG    Format = "png"
	FormatWebP   Format = "webp"
)

// FormatForPath picks the encoding from a file extension
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ppm":
		return FormatPPM, nil
	case ".pnm", ".ppmraw":
		return FormatPPMRaw, nil
	case ".png":
		return FormatPNG, nil
	case ".webp":
		return FormatWebP, nil
	default:
		return "", errors.Wrapf(ErrUnsupportedFormat, "%q", filepath.Ext(path))
	}
}

// WritePPM writes the frame as a plain text PPM: a "P3 width height 255" header, then one
// "r g b" line per pixel, rows from the top of the image down
func WritePPM(w io.Writer, frame *renderer.Frame) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P3\n%d %d\n255\n", frame.Width, frame.Height); err != nil {
		return err
	}
	for _, c := range frame.Pixels {
		r, g, b := renderer.ChannelByte(c.X), renderer.ChannelByte(c.Y), renderer.ChannelByte(c.Z)
		if _, err := fmt.Fprintf(bw, "%d %d %d\n", r, g, b); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Encode writes the frame to w in the given format
func Encode(w io.Writer, frame *renderer.Frame, format Format) error {
	switch format {
	case FormatPPM:
		return WritePPM(w, frame)
	case FormatPPMRaw:
		return ppm.Encode(w, frame.ToRGBA())
	case FormatPNG:
		return png.Encode(w, frame.ToRGBA())
	case FormatWebP:
		return nativewebp.Encode(w, frame.ToRGBA(), nil)
	default:
		return errors.Wrapf(ErrUnsupportedFormat, "%q", format)
	}
}

// Save writes the frame to path, creating parent directories as needed.
// The encoding is chosen from the file extension.
func Save(path string, frame *renderer.Frame) (err error) {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "creating output directory")
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating output file")
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()

	if err := Encode(f, frame, format); err != nil {
		return errors.Wrapf(err, "encoding %s", format)
	}
	return nil
}
