// Package editor defines the subset of the schematic editor host API the
// designer consumes, and an HTTP client for the host-side scripting bridge.
package editor

import (
	"context"
	"errors"
)

var (
	// ErrEditorUnavailable means the host could not be reached or refused the call.
	ErrEditorUnavailable = errors.New("editor API is not available")
	// ErrDeviceNotFound means no catalog part matched the requested LCSC id.
	ErrDeviceNotFound = errors.New("device not found")
	// ErrPrimitiveNotFound means the primitive id does not exist in the open document.
	ErrPrimitiveNotFound = errors.New("primitive not found")
)

// Device is a catalog part resolved from an LCSC id.
type Device struct {
	UUID        string `json:"uuid"`
	LibraryUUID string `json:"libraryUuid"`
	Name        string `json:"name"`
	LCSCID      string `json:"lcscId"`
}

// Primitive is the state of a placed schematic primitive.
type Primitive struct {
	ID       string  `json:"primitiveId"`
	Type     string  `json:"primitiveType"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation"`
}

// ComponentPatch lists the fields to change on a placed component. Nil fields are left alone.
type ComponentPatch struct {
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	Rotation *float64 `json:"rotation,omitempty"`
}

// IFrameWindow describes an iframe window opened inside the host.
type IFrameWindow struct {
	HTMLPath string `json:"htmlFileName"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	ID       string `json:"id"`
	Title    string `json:"title,omitempty"`
}

// Host is the host editor API used by the designer.
type Host interface {
	// LookupDevice resolves a catalog part. It returns ErrDeviceNotFound when nothing matches.
	LookupDevice(ctx context.Context, lcscID string) (*Device, error)
	// CreateComponent places a component and returns its primitive id.
	CreateComponent(ctx context.Context, device *Device, x, y, rotation float64) (string, error)
	GetPrimitive(ctx context.Context, primitiveID string) (*Primitive, error)
	ModifyComponent(ctx context.Context, primitiveID string, patch ComponentPatch) error
	// CreateWire draws a wire along path on net and returns its primitive id.
	CreateWire(ctx context.Context, path [][]float64, net string) (string, error)
	// CaptureRenderedArea returns PNG bytes of the visible area, or nil when the host has none.
	CaptureRenderedArea(ctx context.Context) ([]byte, error)
	ShowInformation(ctx context.Context, title, message string) error
	OpenIFrame(ctx context.Context, window IFrameWindow) error
}
