// Package events defines the payloads pushed to the UI and the emitter that
// delivers them.
package events

// Event names as seen by the UI.
const (
	NamePtyOutput       = "pty-output"
	NameAppFocusChanged = "app-focus-changed"
)

// PtyOutput is one chunk of raw terminal output from a session.
type PtyOutput struct {
	SessionID string `json:"session_id"`
	Data      []byte `json:"data"`
}

// FocusChanged reports a change in the frontmost desktop application.
type FocusChanged struct {
	FocusedApp      string `json:"focused_app"`
	IsTargetFocused bool   `json:"is_target_focused"`
	IsSelfFocused   bool   `json:"is_self_focused"`
}

// Emitter delivers events to the UI. Emit must not block the caller for
// longer than it takes to hand the event off.
type Emitter interface {
	Emit(name string, payload any)
}

// EmitterFunc adapts a function to the Emitter interface.
type EmitterFunc func(name string, payload any)

func (f EmitterFunc) Emit(name string, payload any) { f(name, payload) }

// Discard drops every event.
var Discard Emitter = EmitterFunc(func(string, any) {})
