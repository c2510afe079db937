package guiapp

// Renderer is the slice of the widget/scene toolkit the application
// needs. The QML integration lives behind it and outside this module; the
// headless implementation below stands in for tests and for running the
// bridge without a display.
type Renderer interface {
	// Load prepares the skin's entry scene with the given import paths.
	Load(scenePath string, importPaths []string) error

	// RootSize returns the size of the root item. ok is false when no
	// root item exists yet; the application then answers size queries
	// with the default size.
	RootSize() (width, height uint32, ok bool)

	// SetScale applies a DPI scale factor.
	SetScale(scale float64) bool

	// AttachX11 reparents the window into a host X11 window.
	AttachX11(display string, window uint64) bool
	// AttachWin32 reparents the window into a host HWND.
	AttachWin32(hwnd uint64) bool
	// AttachCocoa reparents the window into a host NSView.
	AttachCocoa(nsView uint64) bool

	// Show makes the window visible.
	Show()
	// Hide hides the window.
	Hide()
}

// HeadlessRenderer is a Renderer with no display attached. It remembers
// what it was asked to do so tests and diagnostics can observe it.
type HeadlessRenderer struct {
	ScenePath   string
	ImportPaths []string

	Width, Height uint32
	HasRoot       bool

	Scale    float64
	Visible  bool
	Attached bool
	Display  string
	Window   uint64
}

// NewHeadlessRenderer returns a renderer with no root item.
func NewHeadlessRenderer() *HeadlessRenderer {
	return &HeadlessRenderer{Scale: 1}
}

// Load implements Renderer.
func (r *HeadlessRenderer) Load(scenePath string, importPaths []string) error {
	r.ScenePath = scenePath
	r.ImportPaths = importPaths
	return nil
}

// SetRootSize gives the renderer a root item of the given size.
func (r *HeadlessRenderer) SetRootSize(width, height uint32) {
	r.Width, r.Height = width, height
	r.HasRoot = true
}

// RootSize implements Renderer.
func (r *HeadlessRenderer) RootSize() (uint32, uint32, bool) {
	return r.Width, r.Height, r.HasRoot
}

// SetScale implements Renderer.
func (r *HeadlessRenderer) SetScale(scale float64) bool {
	if scale <= 0 {
		return false
	}
	r.Scale = scale
	return true
}

// AttachX11 implements Renderer.
func (r *HeadlessRenderer) AttachX11(display string, window uint64) bool {
	r.Attached = true
	r.Display = display
	r.Window = window
	return true
}

// AttachWin32 implements Renderer.
func (r *HeadlessRenderer) AttachWin32(hwnd uint64) bool {
	r.Attached = true
	r.Window = hwnd
	return true
}

// AttachCocoa implements Renderer.
func (r *HeadlessRenderer) AttachCocoa(nsView uint64) bool {
	r.Attached = true
	r.Window = nsView
	return true
}

// Show implements Renderer.
func (r *HeadlessRenderer) Show() { r.Visible = true }

// Hide implements Renderer.
func (r *HeadlessRenderer) Hide() { r.Visible = false }
