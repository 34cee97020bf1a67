// Package editortest provides an in-memory editor host for tests.
package editortest

import (
	"context"
	"fmt"
	"sync"

	"github.com/bizmatters/agent-builder/circuit-designer/internal/editor"
)

// FakeHost records every host call in order and keeps placed primitives in memory.
type FakeHost struct {
	mu sync.Mutex

	// Calls holds one entry per host call, e.g. "create_component:C21190".
	Calls []string
	// Screenshot is returned by CaptureRenderedArea.
	Screenshot []byte
	// Dialogs and IFrames record what the host was asked to show.
	Dialogs []string
	IFrames []editor.IFrameWindow

	// Missing lists LCSC ids LookupDevice reports as not found.
	Missing map[string]bool
	// FailComponent and FailWire make the matching create calls fail.
	FailComponent bool
	FailWire      bool

	primitives map[string]*editor.Primitive
	nextID     int
}

// NewFakeHost creates an empty fake host.
func NewFakeHost() *FakeHost {
	return &FakeHost{
		Missing:    make(map[string]bool),
		primitives: make(map[string]*editor.Primitive),
	}
}

func (h *FakeHost) record(call string) {
	h.Calls = append(h.Calls, call)
}

func (h *FakeHost) LookupDevice(_ context.Context, lcscID string) (*editor.Device, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.record("lookup_device:" + lcscID)
	if h.Missing[lcscID] {
		return nil, fmt.Errorf("%w: %s", editor.ErrDeviceNotFound, lcscID)
	}
	return &editor.Device{UUID: "dev-" + lcscID, LCSCID: lcscID, Name: lcscID}, nil
}

func (h *FakeHost) CreateComponent(_ context.Context, device *editor.Device, x, y, rotation float64) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.record("create_component:" + device.LCSCID)
	if h.FailComponent {
		return "", fmt.Errorf("placement rejected for %s", device.LCSCID)
	}

	h.nextID++
	id := fmt.Sprintf("e%d", h.nextID)
	h.primitives[id] = &editor.Primitive{ID: id, Type: "Component", X: x, Y: y, Rotation: rotation}
	return id, nil
}

func (h *FakeHost) GetPrimitive(_ context.Context, primitiveID string) (*editor.Primitive, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.record("get_primitive:" + primitiveID)
	p, ok := h.primitives[primitiveID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", editor.ErrPrimitiveNotFound, primitiveID)
	}
	copied := *p
	return &copied, nil
}

func (h *FakeHost) ModifyComponent(_ context.Context, primitiveID string, patch editor.ComponentPatch) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.record("modify_component:" + primitiveID)
	p, ok := h.primitives[primitiveID]
	if !ok {
		return fmt.Errorf("%w: %s", editor.ErrPrimitiveNotFound, primitiveID)
	}
	if patch.X != nil {
		p.X = *patch.X
	}
	if patch.Y != nil {
		p.Y = *patch.Y
	}
	if patch.Rotation != nil {
		p.Rotation = *patch.Rotation
	}
	return nil
}

func (h *FakeHost) CreateWire(_ context.Context, _ [][]float64, net string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.record("create_wire:" + net)
	if h.FailWire {
		return "", fmt.Errorf("wire rejected for %s", net)
	}

	h.nextID++
	id := fmt.Sprintf("w%d", h.nextID)
	h.primitives[id] = &editor.Primitive{ID: id, Type: "Wire"}
	return id, nil
}

func (h *FakeHost) CaptureRenderedArea(_ context.Context) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.record("capture_rendered_area")
	return h.Screenshot, nil
}

func (h *FakeHost) ShowInformation(_ context.Context, title, message string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.record("show_information")
	h.Dialogs = append(h.Dialogs, title+": "+message)
	return nil
}

func (h *FakeHost) OpenIFrame(_ context.Context, window editor.IFrameWindow) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.record("open_iframe:" + window.ID)
	h.IFrames = append(h.IFrames, window)
	return nil
}

// CallLog returns a copy of the recorded calls.
func (h *FakeHost) CallLog() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.Calls...)
}

// Primitive returns the stored state of a primitive, or nil.
func (h *FakeHost) Primitive(id string) *editor.Primitive {
	h.mu.Lock()
	defer h.mu.Unlock()
	if p, ok := h.primitives[id]; ok {
		copied := *p
		return &copied
	}
	return nil
}

var _ editor.Host = (*FakeHost)(nil)
