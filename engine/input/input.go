package input

import "sync"

// Input collects key and mouse events from the window callbacks and exposes them as per-frame
// state. Events arrive between frames; EndFrame closes the frame and clears the edges.
type Input interface {
	// KeyDown records a key press. Wire it to Window.SetKeyDownCallback.
	//
	// Parameters:
	//   - keyCode: the virtual key code
	KeyDown(keyCode uint32)

	// KeyUp records a key release. Wire it to Window.SetKeyUpCallback.
	//
	// Parameters:
	//   - keyCode: the virtual key code
	KeyUp(keyCode uint32)

	// MouseMove records an absolute cursor position and accumulates the delta from the previous
	// position. The first position after construction or Reset produces no delta.
	//
	// Parameters:
	//   - x, y: the cursor position in window coordinates
	MouseMove(x, y float64)

	// IsDown reports whether the key is currently held.
	IsDown(keyCode uint32) bool

	// WasPressed reports whether the key went down during the current frame.
	WasPressed(keyCode uint32) bool

	// MouseDelta returns the cursor movement accumulated during the current frame.
	//
	// Returns:
	//   - dx, dy: movement in window pixels, y grows downwards
	MouseDelta() (dx, dy float32)

	// EndFrame clears the pressed edges and the mouse delta.
	EndFrame()

	// Reset releases every key and forgets the cursor position, used when focus is lost.
	Reset()
}

type inputImpl struct {
	mu *sync.Mutex

	down    map[uint32]bool
	pressed map[uint32]bool

	haveCursor bool
	lastX      float64
	lastY      float64
	dx, dy     float64
}

var _ Input = &inputImpl{}

// NewInput creates an empty input state.
//
// Returns:
//   - Input: the input state
func NewInput() Input {
	return &inputImpl{
		mu:      &sync.Mutex{},
		down:    make(map[uint32]bool),
		pressed: make(map[uint32]bool),
	}
}

func (in *inputImpl) KeyDown(keyCode uint32) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if !in.down[keyCode] {
		in.pressed[keyCode] = true
	}
	in.down[keyCode] = true
}

func (in *inputImpl) KeyUp(keyCode uint32) {
	in.mu.Lock()
	defer in.mu.Unlock()
	delete(in.down, keyCode)
}

func (in *inputImpl) MouseMove(x, y float64) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.haveCursor {
		in.dx += x - in.lastX
		in.dy += y - in.lastY
	}
	in.lastX, in.lastY = x, y
	in.haveCursor = true
}

func (in *inputImpl) IsDown(keyCode uint32) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.down[keyCode]
}

func (in *inputImpl) WasPressed(keyCode uint32) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.pressed[keyCode]
}

func (in *inputImpl) MouseDelta() (dx, dy float32) {
	in.mu.Lock()
	defer in.mu.Unlock()
	return float32(in.dx), float32(in.dy)
}

func (in *inputImpl) EndFrame() {
	in.mu.Lock()
	defer in.mu.Unlock()
	clear(in.pressed)
	in.dx, in.dy = 0, 0
}

func (in *inputImpl) Reset() {
	in.mu.Lock()
	defer in.mu.Unlock()
	clear(in.down)
	clear(in.pressed)
	in.haveCursor = false
	in.dx, in.dy = 0, 0
}
