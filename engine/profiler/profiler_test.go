package profiler

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/Carmen-Shannon/tm3d-go/common"
	"github.com/Carmen-Shannon/tm3d-go/engine/font"
	"github.com/Carmen-Shannon/tm3d-go/engine/renderer"

	"golang.org/x/image/font/gofont/goregular"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestTickReportsAtInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	p := NewProfiler(WithClock(clock.now), WithSystemStats(false), WithUpdateInterval(time.Second))

	frame := time.Second / 60
	for range 59 {
		clock.advance(frame)
		if p.Tick() {
			t.Fatalf("reported before the interval elapsed")
		}
	}
	// time.Second/60 truncates, so the last frame closes the interval exactly
	clock.advance(time.Second - 59*frame)
	if !p.Tick() {
		t.Fatalf("did not report after the interval")
	}
	if fps := p.Stats().FPS; math.Abs(fps-60) > 0.01 {
		t.Errorf("got %v fps, want 60", fps)
	}
	if p.Stats().HeapMB <= 0 || p.Stats().SysMB <= 0 {
		t.Errorf("memory stats not read: %+v", p.Stats())
	}

	clock.advance(2 * time.Second)
	if !p.Tick() || math.Abs(p.Stats().FPS-0.5) > 0.01 {
		t.Errorf("got %v fps for one frame in two seconds, want 0.5", p.Stats().FPS)
	}
}

func TestTickIgnoresStoppedClock(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	p := NewProfiler(WithClock(clock.now), WithSystemStats(false), WithUpdateInterval(time.Nanosecond))
	if p.Tick() {
		t.Errorf("reported with no elapsed time")
	}
}

func TestSystemStats(t *testing.T) {
	p := NewProfiler(WithUpdateInterval(time.Millisecond))
	time.Sleep(5 * time.Millisecond)
	if !p.Tick() {
		t.Fatalf("did not report")
	}
	if p.proc != nil && p.Stats().RSSMB <= 0 {
		t.Errorf("got rss %v MB, want > 0", p.Stats().RSSMB)
	}
}

func TestOverlayAveragesFrames(t *testing.T) {
	o := NewOverlay(nil)
	if o.FPS() != 0 {
		t.Errorf("got %v fps before a window, want 0", o.FPS())
	}

	// the frame closing a window is counted but its step lands in the next window
	for range 5 {
		o.Update(0.01)
	}
	if o.FPS() != 0 {
		t.Errorf("window closed early")
	}
	o.Update(0.01)
	if got := o.FPS(); math.Abs(got-120) > 0.5 {
		t.Errorf("got %v fps, want 120", got)
	}

	for range 3 {
		o.Update(0.02)
	}
	if got := o.FPS(); math.Abs(got-1/((0.01+0.02+0.02)/3.0)) > 0.5 {
		t.Errorf("got %v fps after slower frames", got)
	}
}

type nopUploader struct{}

func (nopUploader) CreateTexture(*common.Bitmap, string) (*renderer.SampledTexture, error) {
	return &renderer.SampledTexture{}, nil
}

func (nopUploader) UpdateTexture(*renderer.SampledTexture, int, int, int, int, []byte) error {
	return nil
}

type goFonts struct {
	t    *testing.T
	fail bool
}

func (f goFonts) Get(name string, size int) (*font.Font, error) {
	if f.fail {
		return nil, errors.New("no fonts")
	}
	fnt, err := font.NewFont(name, goregular.TTF, size, nopUploader{}, nil)
	if err != nil {
		f.t.Fatalf("NewFont: %v", err)
	}
	return fnt, nil
}

type textCall struct {
	text  string
	x, y  float32
	color common.Vector4
}

// drawRecorder records the calls Draw makes; every other Renderer method is unused.
type drawRecorder struct {
	renderer.Renderer

	shaders renderer.Shaders
	width   int
	height  int
	texts   []textCall
}

func (d *drawRecorder) Shaders() renderer.Shaders { return d.shaders }
func (d *drawRecorder) SetShader(p *renderer.Program) {}
func (d *drawRecorder) Rendering2DRightHanded() {}
func (d *drawRecorder) RenderTargetWidth() int { return d.width }
func (d *drawRecorder) RenderTargetHeight() int { return d.height }
func (d *drawRecorder) DrawText(f renderer.TextFont, text string, x, y float32, color common.Vector4) {
	d.texts = append(d.texts, textCall{text, x, y, color})
}

func TestOverlayDraw(t *testing.T) {
	o := NewOverlay(goFonts{t: t})
	d := &drawRecorder{width: 1920, height: 2000}
	now := time.Date(2024, 3, 1, 9, 5, 7, 0, time.Local)

	if err := o.Draw(d, now); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if len(d.texts) != 4 {
		t.Fatalf("got %d texts, want 4", len(d.texts))
	}
	fps, clock := d.texts[1], d.texts[3]
	if fps.text != "0.00 fps" || clock.text != "09:05:07" {
		t.Errorf("got %q and %q", fps.text, clock.text)
	}
	// 40 pixel font: first line at h-40, shadow offset 2
	if fps.y != 1960 || clock.y != 1920 {
		t.Errorf("got lines at %v and %v, want 1960 and 1920", fps.y, clock.y)
	}
	shadow := d.texts[0]
	if shadow.x-fps.x != 2 || fps.y-shadow.y != 2 || shadow.color != (common.Vector4{W: 1}) {
		t.Errorf("got shadow at (%v, %v) for text at (%v, %v)", shadow.x, shadow.y, fps.x, fps.y)
	}
	if fps.x >= 1920 || fps.x < 1920-400 {
		t.Errorf("fps text at x %v is not right aligned", fps.x)
	}

	if err := NewOverlay(goFonts{t: t, fail: true}).Draw(d, now); err == nil {
		t.Errorf("Draw succeeded without a font")
	}
}
