package debug

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// Screenshots writes framebuffer captures as PNG files named after the
// planet seed.
type Screenshots struct {
	Dir string
	now func() time.Time
}

// NewScreenshots creates a writer into dir. An empty dir writes to the
// working directory.
func NewScreenshots(dir string) *Screenshots {
	return &Screenshots{Dir: dir, now: time.Now}
}

// Filename returns the path the next capture for seed would use.
func (s *Screenshots) Filename(seed int64) string {
	name := fmt.Sprintf("planet_%d_%s.png", seed, s.now().Format("2006-01-02_15-04-05"))
	if s.Dir != "" {
		name = filepath.Join(s.Dir, name)
	}
	return name
}

// Save writes RGBA pixels read from OpenGL. Rows are flipped because GL
// puts the origin at the bottom left.
func (s *Screenshots) Save(pixels []byte, width, height int, seed int64) (string, error) {
	if len(pixels) != width*height*4 {
		return "", fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}
	if s.Dir != "" {
		if err := os.MkdirAll(s.Dir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * rowSize
		dst := y * img.Stride
		copy(img.Pix[dst:dst+rowSize], pixels[src:src+rowSize])
	}

	path := s.Filename(seed)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	return path, nil
}
