package entities

import (
	"fmt"
)

// TargetKind identifies the scope of an event subscription or emission.
type TargetKind uint8

// Target kinds understood by the host event system.
const (
	// TargetAny applies no scoping filter.
	TargetAny TargetKind = iota
	// TargetAnyLabel filters by label regardless of kind.
	TargetAnyLabel
	// TargetApp restricts delivery to application-level listeners.
	TargetApp
	// TargetWindow restricts delivery to a window.
	TargetWindow
	// TargetWebview restricts delivery to a webview.
	TargetWebview
	// TargetWebviewWindow restricts delivery to a webview window.
	TargetWebviewWindow
)

// String returns the literal wire name of the kind.
func (k TargetKind) String() string {
	switch k {
	case TargetAny:
		return "Any"
	case TargetAnyLabel:
		return "AnyLabel"
	case TargetApp:
		return "App"
	case TargetWindow:
		return "Window"
	case TargetWebview:
		return "Webview"
	case TargetWebviewWindow:
		return "WebviewWindow"
	default:
		return fmt.Sprintf("TargetKind(%d)", uint8(k))
	}
}

// ParseTargetKind maps a wire name back to its kind.
func ParseTargetKind(name string) (TargetKind, error) {
	switch name {
	case "Any":
		return TargetAny, nil
	case "AnyLabel":
		return TargetAnyLabel, nil
	case "App":
		return TargetApp, nil
	case "Window":
		return TargetWindow, nil
	case "Webview":
		return TargetWebview, nil
	case "WebviewWindow":
		return TargetWebviewWindow, nil
	default:
		return 0, fmt.Errorf("unknown target kind %q", name)
	}
}

// Valid reports whether k is one of the declared kinds.
func (k TargetKind) Valid() bool {
	return k <= TargetWebviewWindow
}

// MarshalText implements encoding.TextMarshaler.
func (k TargetKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("cannot encode %s", k)
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *TargetKind) UnmarshalText(text []byte) error {
	parsed, err := ParseTargetKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// EventTarget scopes an event to a category of listeners and, optionally, a label.
//
// A label is only meaningful for AnyLabel and the concrete kinds. Validation
// rejects a label on Any instead of dropping it.
type EventTarget struct {
	Kind  TargetKind `json:"kind" validate:"lte=5"`
	Label string     `json:"label,omitempty" validate:"excluded_if=Kind 0,required_if=Kind 1"`
}

// AnyTarget returns the unscoped target.
func AnyTarget() EventTarget {
	return EventTarget{Kind: TargetAny}
}

// AnyLabelTarget scopes to every listener registered with label.
func AnyLabelTarget(label string) EventTarget {
	return EventTarget{Kind: TargetAnyLabel, Label: label}
}

// LabelTarget is shorthand for AnyLabelTarget.
func LabelTarget(label string) EventTarget {
	return AnyLabelTarget(label)
}

// AppTarget scopes to application-level listeners.
func AppTarget() EventTarget {
	return EventTarget{Kind: TargetApp}
}

// WindowTarget scopes to the window with the given label.
func WindowTarget(label string) EventTarget {
	return EventTarget{Kind: TargetWindow, Label: label}
}

// WebviewTarget scopes to the webview with the given label.
func WebviewTarget(label string) EventTarget {
	return EventTarget{Kind: TargetWebview, Label: label}
}

// WebviewWindowTarget scopes to the webview window with the given label.
func WebviewWindowTarget(label string) EventTarget {
	return EventTarget{Kind: TargetWebviewWindow, Label: label}
}

// String renders the target for logs, e.g. "Window(main)".
func (t EventTarget) String() string {
	if t.Label == "" {
		return t.Kind.String()
	}
	return fmt.Sprintf("%s(%s)", t.Kind, t.Label)
}

// Matches reports whether an emission scoped to t reaches a listener
// registered with the listener target.
func (t EventTarget) Matches(listener EventTarget) bool {
	if t.Kind == TargetAny || listener.Kind == TargetAny {
		return true
	}
	if t.Kind == TargetAnyLabel || listener.Kind == TargetAnyLabel {
		return t.Label == listener.Label
	}
	return t.Kind == listener.Kind && t.Label == listener.Label
}
