package menu

import (
	"fmt"

	"github.com/Carmen-Shannon/tm3d-go/common"
	"github.com/Carmen-Shannon/tm3d-go/engine/font"
	"github.com/Carmen-Shannon/tm3d-go/engine/log"
	"github.com/Carmen-Shannon/tm3d-go/engine/renderer"
)

// Mode is what the program is currently showing.
type Mode int

const (
	// ModeGame simulates and draws the world.
	ModeGame Mode = iota
	// ModeMenu pauses the world and draws the pause menu.
	ModeMenu
)

// Item is a selectable menu entry.
type Item int

const (
	ItemResume Item = iota
	ItemQuit

	numItems
)

const (
	// DefaultTitle is drawn above the items.
	DefaultTitle = "TM3D-DX11"
	// TitleFont and ItemFont are looked up in the font library.
	TitleFont = "KarminaBold.otf"
	ItemFont  = "KarminaBoldItalic.otf"
)

var (
	shadowColor   = common.Vector4{W: 1}
	selectedColor = common.Vector4{X: 1, Y: 1, Z: 1, W: 1}
	idleColor     = common.Vector4{X: 0.4, Y: 0.4, Z: 0.4, W: 0.4}
)

// Keys reports key edges for the current frame. input.Input satisfies it.
type Keys interface {
	WasPressed(keyCode uint32) bool
}

// FontSource returns fonts by file name and pixel size. *font.Library satisfies it.
type FontSource interface {
	Get(name string, size int) (*font.Font, error)
}

// Menu is the pause menu and the program mode it switches between.
type Menu interface {
	// Mode returns the current program mode.
	Mode() Mode

	// Toggle switches between ModeGame and ModeMenu and cancels a pending quit confirmation.
	Toggle()

	// Choice returns the highlighted item.
	Choice() Item

	// Confirming reports whether Quit is waiting for a second Enter.
	Confirming() bool

	// ShouldQuit reports whether Quit was confirmed.
	ShouldQuit() bool

	// Advance moves the highlight by delta items, clamped to the first and last item. It cancels a
	// pending quit confirmation.
	Advance(delta int)

	// HandleEnter activates the highlighted item. Resume toggles the menu; Quit asks for
	// confirmation first and quits on the second Enter.
	HandleEnter()

	// Update applies the Up, Down and Enter presses of the current frame.
	Update(keys Keys)

	// Draw clears the current render target to black and draws the title and the items centred,
	// each item with a black drop shadow.
	//
	// Parameters:
	//   - r: the renderer to draw with
	//
	// Returns:
	//   - error: an error if a font cannot be loaded
	Draw(r renderer.Renderer) error
}

type menu struct {
	log   *log.Logger
	fonts FontSource
	title string

	mode       Mode
	choice     Item
	confirming bool
	quit       bool
}

var _ Menu = &menu{}

// NewMenu creates a menu in ModeGame with Resume highlighted.
//
// Parameters:
//   - options: functional options to configure the menu
//
// Returns:
//   - Menu: the menu
func NewMenu(options ...MenuBuilderOption) Menu {
	m := &menu{
		title: DefaultTitle,
		mode:  ModeGame,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *menu) Mode() Mode {
	return m.mode
}

func (m *menu) Toggle() {
	switch m.mode {
	case ModeGame:
		m.mode = ModeMenu
	case ModeMenu:
		m.mode = ModeGame
	}
	m.confirming = false
	m.log.Debug("menu toggled", "mode", m.mode)
}

func (m *menu) Choice() Item {
	return m.choice
}

func (m *menu) Confirming() bool {
	return m.confirming
}

func (m *menu) ShouldQuit() bool {
	return m.quit
}

func (m *menu) Advance(delta int) {
	m.confirming = false
	m.choice = Item(common.Clamp(int(m.choice)+delta, 0, int(numItems)-1))
}

func (m *menu) HandleEnter() {
	switch m.choice {
	case ItemResume:
		m.Toggle()
	case ItemQuit:
		if m.confirming {
			m.quit = true
			return
		}
		m.confirming = true
	}
}

func (m *menu) Update(keys Keys) {
	if keys.WasPressed(common.KeyUp) {
		m.Advance(-1)
	}
	if keys.WasPressed(common.KeyDown) {
		m.Advance(+1)
	}
	if keys.WasPressed(common.KeyEnter) {
		m.HandleEnter()
	}
}

func (m *menu) Draw(r renderer.Renderer) error {
	if m.fonts == nil {
		return fmt.Errorf("menu has no font source")
	}

	r.ClearRenderTarget(0, 0, 0, 1)
	r.SetShader(r.Shaders().Text)
	r.Rendering2DRightHanded()

	w := r.RenderTargetWidth()
	h := r.RenderTargetHeight()

	big, err := m.fonts.Get(TitleFont, int(0.1*float32(h)))
	if err != nil {
		return fmt.Errorf("failed to load title font: %w", err)
	}
	x := (w - int(big.StringWidth(m.title))) / 2
	r.DrawText(big, m.title, float32(x), float32(int(0.85*float32(h))), selectedColor)

	f, err := m.fonts.Get(ItemFont, int(0.05*float32(h)))
	if err != nil {
		return fmt.Errorf("failed to load item font: %w", err)
	}
	y := int(0.55 * float32(h))
	m.drawItem(r, f, "Resume", w, y, ItemResume)
	y -= int(f.CharacterHeight())

	text := "Quit"
	if m.confirming {
		text = "Quit? Are you sure?"
	}
	m.drawItem(r, f, text, w, y, ItemQuit)
	return nil
}

func (m *menu) drawItem(r renderer.Renderer, f *font.Font, text string, width, y int, item Item) {
	x := (width - int(f.StringWidth(text))) / 2
	offset := int(f.CharacterHeight()) / 40
	r.DrawText(f, text, float32(x+offset), float32(y-offset), shadowColor)

	color := idleColor
	if m.choice == item {
		color = selectedColor
	}
	r.DrawText(f, text, float32(x), float32(y), color)
}
