// Package framebuffer provides the offscreen target screenshots are drawn
// into. Drawing is multisampled and resolved to a single-sample color
// buffer before the pixels are read back.
package framebuffer

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// DefaultSamples is the multisample count used for captures.
const DefaultSamples = 4

// ErrTooLarge is returned when the driver cannot allocate a target of the
// requested size.
var ErrTooLarge = errors.New("capture size exceeds the driver limit")

// Target is an offscreen render target. When multisampling is off the
// draw and resolve framebuffers are the same object.
type Target struct {
	drawFBO    uint32
	resolveFBO uint32
	buffers    []uint32

	width   int32
	height  int32
	samples int32
}

// New allocates a target of width x height pixels with up to samples
// samples per pixel.
func New(width, height, samples int32) (*Target, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("capture size %dx%d must be positive", width, height)
	}

	var maxSize, maxSamples int32
	gl.GetIntegerv(gl.MAX_RENDERBUFFER_SIZE, &maxSize)
	gl.GetIntegerv(gl.MAX_SAMPLES, &maxSamples)
	if width > maxSize || height > maxSize {
		return nil, fmt.Errorf("%w: %dx%d, limit %d", ErrTooLarge, width, height, maxSize)
	}

	t := &Target{width: width, height: height, samples: ClampSamples(samples, maxSamples)}
	if err := t.allocate(); err != nil {
		t.Delete()
		return nil, err
	}
	return t, nil
}

// ClampSamples limits a requested sample count to what the driver offers.
// Counts below 2 disable multisampling and return 0.
func ClampSamples(requested, limit int32) int32 {
	n := min(requested, limit)
	if n < 2 {
		return 0
	}
	return n
}

func (t *Target) allocate() error {
	defer gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	gl.GenFramebuffers(1, &t.resolveFBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.resolveFBO)
	t.attach(gl.COLOR_ATTACHMENT0, gl.RGBA8, 0)
	if t.samples == 0 {
		t.attach(gl.DEPTH_STENCIL_ATTACHMENT, gl.DEPTH24_STENCIL8, 0)
		t.drawFBO = t.resolveFBO
		return checkStatus("capture")
	}
	if err := checkStatus("resolve"); err != nil {
		return err
	}

	gl.GenFramebuffers(1, &t.drawFBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.drawFBO)
	t.attach(gl.COLOR_ATTACHMENT0, gl.RGBA8, t.samples)
	t.attach(gl.DEPTH_STENCIL_ATTACHMENT, gl.DEPTH24_STENCIL8, t.samples)
	return checkStatus("multisample")
}

// attach creates a renderbuffer and attaches it to the bound framebuffer.
func (t *Target) attach(attachment, format uint32, samples int32) {
	var rb uint32
	gl.GenRenderbuffers(1, &rb)
	gl.BindRenderbuffer(gl.RENDERBUFFER, rb)
	if samples > 0 {
		gl.RenderbufferStorageMultisample(gl.RENDERBUFFER, samples, format, t.width, t.height)
	} else {
		gl.RenderbufferStorage(gl.RENDERBUFFER, format, t.width, t.height)
	}
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, attachment, gl.RENDERBUFFER, rb)
	t.buffers = append(t.buffers, rb)
}

func checkStatus(name string) error {
	if s := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); s != gl.FRAMEBUFFER_COMPLETE {
		return fmt.Errorf("%s framebuffer incomplete: 0x%x", name, s)
	}
	return nil
}

// Render calls draw with the target bound and its viewport set, then
// returns the resolved image as bottom-up RGBA rows. The previous
// framebuffer and viewport are restored.
func (t *Target) Render(draw func()) []byte {
	var prevFBO int32
	var prevViewport [4]int32
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &prevFBO)
	gl.GetIntegerv(gl.VIEWPORT, &prevViewport[0])
	defer func() {
		gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(prevFBO))
		gl.Viewport(prevViewport[0], prevViewport[1], prevViewport[2], prevViewport[3])
	}()

	gl.BindFramebuffer(gl.FRAMEBUFFER, t.drawFBO)
	gl.Viewport(0, 0, t.width, t.height)
	draw()

	if t.drawFBO != t.resolveFBO {
		gl.BindFramebuffer(gl.READ_FRAMEBUFFER, t.drawFBO)
		gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, t.resolveFBO)
		gl.BlitFramebuffer(0, 0, t.width, t.height, 0, 0, t.width, t.height, gl.COLOR_BUFFER_BIT, gl.NEAREST)
	}

	pixels := make([]byte, int(t.width)*int(t.height)*4)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, t.resolveFBO)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, t.width, t.height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels
}

// Samples returns the sample count in use, 0 when not multisampled.
func (t *Target) Samples() int32 {
	return t.samples
}

// Delete releases the framebuffers and renderbuffers.
func (t *Target) Delete() {
	if t.drawFBO != 0 && t.drawFBO != t.resolveFBO {
		gl.DeleteFramebuffers(1, &t.drawFBO)
	}
	if t.resolveFBO != 0 {
		gl.DeleteFramebuffers(1, &t.resolveFBO)
	}
	if len(t.buffers) > 0 {
		gl.DeleteRenderbuffers(int32(len(t.buffers)), &t.buffers[0])
	}
	*t = Target{}
}
