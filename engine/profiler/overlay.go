package profiler

import (
	"fmt"
	"time"

	"github.com/Carmen-Shannon/tm3d-go/common"
	"github.com/Carmen-Shannon/tm3d-go/engine/font"
	"github.com/Carmen-Shannon/tm3d-go/engine/renderer"
)

const (
	// OverlayFont is looked up in the font library.
	OverlayFont = "OpenSans-SemiBold.ttf"

	// overlayRefresh is how long frame times are averaged before the shown rate changes.
	overlayRefresh = 0.05
)

// FontSource returns fonts by file name and pixel size. *font.Library satisfies it.
type FontSource interface {
	Get(name string, size int) (*font.Font, error)
}

// Overlay draws the frame rate and the wall clock in the top right corner.
type Overlay struct {
	fonts FontSource

	sinceRefresh float64
	frames       int
	accumulated  float64
	shownDt      float64
}

// NewOverlay creates an overlay drawing with fonts from fonts.
func NewOverlay(fonts FontSource) *Overlay {
	return &Overlay{fonts: fonts}
}

// Update records one frame's simulation step. The shown frame rate is the mean step of the frames
// in the last completed refresh window.
//
// Parameters:
//   - dt: the frame's step in seconds
func (o *Overlay) Update(dt float32) {
	o.sinceRefresh += float64(dt)
	o.frames++
	if o.sinceRefresh >= overlayRefresh {
		o.sinceRefresh = 0
		o.shownDt = o.accumulated / float64(o.frames)
		o.accumulated = 0
		o.frames = 0
	}
	o.accumulated += float64(dt)
}

// FPS returns the frame rate currently shown, 0 until a window has completed.
func (o *Overlay) FPS() float64 {
	if o.shownDt <= 0 {
		return 0
	}
	return 1 / o.shownDt
}

// Draw draws the frame rate and then the time of day below it, right aligned with a black
// shadow, using the text shader and a 2D projection of the current render target.
//
// Parameters:
//   - r: the renderer to draw with
//   - now: the wall clock time to show
//
// Returns:
//   - error: an error if the font cannot be loaded
func (o *Overlay) Draw(r renderer.Renderer, now time.Time) error {
	r.SetShader(r.Shaders().Text)
	r.Rendering2DRightHanded()

	w := r.RenderTargetWidth()
	h := r.RenderTargetHeight()
	f, err := o.fonts.Get(OverlayFont, int(0.02*float32(h)))
	if err != nil {
		return fmt.Errorf("failed to load overlay font: %w", err)
	}

	ch := int(f.CharacterHeight())
	y := h - ch
	offset := ch / 20
	for _, text := range []string{
		fmt.Sprintf("%.2f fps", o.FPS()),
		now.Format("15:04:05"),
	} {
		x := w - int(f.StringWidth(text))
		r.DrawText(f, text, float32(x+offset), float32(y-offset), common.Vector4{W: 1})
		r.DrawText(f, text, float32(x), float32(y), common.Vector4{X: 1, Y: 1, Z: 1, W: 1})
		y -= ch
	}
	return nil
}
