package texture

import (
	"errors"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/smolview/internal/assets"
	"github.com/Faultbox/smolview/internal/logger"
)

// Texture is an uploaded 2D texture.
type Texture struct {
	ID     uint32
	Width  int
	Height int
}

// Upload creates a mipmapped texture from img. Repeat selects REPEAT
// wrapping, used by sphere textures; otherwise edges are clamped.
func Upload(img *image.RGBA, repeat bool) *Texture {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	wrap := int32(gl.CLAMP_TO_EDGE)
	if repeat {
		wrap = gl.REPEAT
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, wrap)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, wrap)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return &Texture{ID: id, Width: w, Height: h}
}

// Bind binds t to the given texture unit.
func (t *Texture) Bind(unit uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, t.ID)
}

// Delete releases the GL texture.
func (t *Texture) Delete() {
	if t.ID != 0 {
		gl.DeleteTextures(1, &t.ID)
		t.ID = 0
	}
}

// Library uploads element textures on first use. Missing or undecodable
// files resolve to the white fallback, logged once per name.
type Library struct {
	assets  *assets.Manager
	maxSize int
	cache   map[string]*Texture
	white   *Texture
}

// NewLibrary creates a library reading from m. Needs a current GL context.
func NewLibrary(m *assets.Manager, maxSize int) *Library {
	return &Library{
		assets:  m,
		maxSize: maxSize,
		cache:   make(map[string]*Texture),
		white:   Upload(White(), true),
	}
}

// White returns the fallback texture.
func (l *Library) White() *Texture {
	return l.white
}

// Get returns the texture for name.
func (l *Library) Get(name string) *Texture {
	if t, ok := l.cache[name]; ok {
		return t
	}

	t := l.white
	data, err := l.assets.Load(name)
	switch {
	case errors.Is(err, assets.ErrNotFound):
		logger.Debug("texture not found, using plain color", zap.String("name", name))
	case err != nil:
		logger.Warn("failed to read texture", zap.String("name", name), zap.Error(err))
	default:
		img, err := Decode(data, l.maxSize)
		if err != nil {
			logger.Warn("failed to decode texture", zap.String("name", name), zap.Error(err))
			break
		}
		t = Upload(img, true)
		logger.Debug("texture loaded", zap.String("name", name), zap.Int("width", t.Width), zap.Int("height", t.Height))
	}

	l.cache[name] = t
	return t
}

// Close deletes every texture the library created.
func (l *Library) Close() {
	for name, t := range l.cache {
		if t != l.white {
			t.Delete()
		}
		delete(l.cache, name)
	}
	l.white.Delete()
}
