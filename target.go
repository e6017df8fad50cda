package tauri

import "github.com/tauri-wasm/tauri-go/domain/entities"

// Re-exported so callers only import this package.
type (
	Event       = entities.Event
	EventTarget = entities.EventTarget
	TargetKind  = entities.TargetKind
)

// Target kinds.
const (
	TargetAny           = entities.TargetAny
	TargetAnyLabel      = entities.TargetAnyLabel
	TargetApp           = entities.TargetApp
	TargetWindow        = entities.TargetWindow
	TargetWebview       = entities.TargetWebview
	TargetWebviewWindow = entities.TargetWebviewWindow
)

// AnyTarget returns the unscoped target.
func AnyTarget() EventTarget { return entities.AnyTarget() }

// AnyLabelTarget scopes to every listener registered with label.
func AnyLabelTarget(label string) EventTarget { return entities.AnyLabelTarget(label) }

// LabelTarget is shorthand for AnyLabelTarget.
func LabelTarget(label string) EventTarget { return entities.LabelTarget(label) }

// AppTarget scopes to application-level listeners.
func AppTarget() EventTarget { return entities.AppTarget() }

// WindowTarget scopes to the window with the given label.
func WindowTarget(label string) EventTarget { return entities.WindowTarget(label) }

// WebviewTarget scopes to the webview with the given label.
func WebviewTarget(label string) EventTarget { return entities.WebviewTarget(label) }

// WebviewWindowTarget scopes to the webview window with the given label.
func WebviewWindowTarget(label string) EventTarget { return entities.WebviewWindowTarget(label) }
