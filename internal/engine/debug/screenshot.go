package debug

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

const timestampLayout = "2006-01-02_15-04-05.000"

// Screenshots names and writes PNG captures of one structure.
type Screenshots struct {
	dir  string
	name string
	now  func() time.Time
}

// NewScreenshots writes captures of the structure called title into dir,
// as <slug>_<timestamp>.png. An empty dir means the working directory.
func NewScreenshots(dir, title string) *Screenshots {
	return &Screenshots{dir: dir, name: Slug(title), now: time.Now}
}

// Slug lower-cases s and keeps letters and digits, replacing each run of
// anything else with a single '-'. It never returns an empty string.
func Slug(s string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	if sb.Len() == 0 {
		return "smolview"
	}
	return sb.String()
}

// FlipRows turns bottom-up RGBA rows, as OpenGL reads them back, into an
// image with the origin at the top left.
func FlipRows(pixels []byte, width, height int) (*image.RGBA, error) {
	if want := width * height * 4; len(pixels) != want {
		return nil, fmt.Errorf("pixel data size mismatch: expected %d, got %d", want, len(pixels))
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	row := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * row
		copy(img.Pix[y*img.Stride:y*img.Stride+row], pixels[src:src+row])
	}
	return img, nil
}

// SavePixels flips GL pixels and saves them.
func (s *Screenshots) SavePixels(pixels []byte, width, height int) (string, error) {
	img, err := FlipRows(pixels, width, height)
	if err != nil {
		return "", err
	}
	return s.Save(img)
}

// Save writes img and returns its path. The file appears under its final
// name only once it is complete.
func (s *Screenshots) Save(img image.Image) (string, error) {
	path := s.Path(s.now())
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating screenshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".capture-*.png")
	if err != nil {
		return "", fmt.Errorf("creating screenshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(tmp, img); err != nil {
		tmp.Close()
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("writing screenshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("writing screenshot: %w", err)
	}
	return path, nil
}

// Path returns where a capture taken at t is written.
func (s *Screenshots) Path(t time.Time) string {
	return filepath.Join(s.dir, s.name+"_"+t.Format(timestampLayout)+".png")
}
