//go:build !darwin

package focus

// Supported reports whether this platform can inspect applications.
const Supported = false

// NewInspector returns the no-op inspector; only macOS exposes the
// frontmost application.
func NewInspector() Inspector {
	return NoopInspector{}
}
