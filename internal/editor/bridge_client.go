package editor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/bizmatters/agent-builder/circuit-designer/internal/config"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/models"
)

// errNotFoundStatus marks a 404 from the bridge. It does not count against the breaker.
var errNotFoundStatus = errors.New("bridge returned 404")

// BridgeClient talks to the host-side scripting bridge over HTTP JSON.
type BridgeClient struct {
	baseURL    string
	httpClient *http.Client
	tracer     trace.Tracer
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

type createComponentRequest struct {
	Device   *Device `json:"device"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation"`
	Mirror   bool    `json:"mirror"`
	AddToBOM bool    `json:"addIntoBom"`
	AddToPCB bool    `json:"addIntoPcb"`
}

type createWireRequest struct {
	Path [][]float64 `json:"line"`
	Net  string      `json:"net"`
}

type primitiveIDResponse struct {
	PrimitiveID string `json:"primitiveId"`
}

type renderedAreaResponse struct {
	Image string `json:"image"`
}

type informationRequest struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

type userConfigValue struct {
	Value string `json:"value"`
}

// NewBridgeClient creates a bridge client for cfg.BridgeURL.
func NewBridgeClient(cfg config.EditorConfig, logger *zap.Logger) *BridgeClient {
	settings := gobreaker.Settings{
		Name:        "editor-bridge",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errNotFoundStatus)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &BridgeClient{
		baseURL:    strings.TrimRight(cfg.BridgeURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		tracer:     otel.Tracer("editor-bridge-client"),
		breaker:    gobreaker.NewCircuitBreaker(settings),
		logger:     logger,
	}
}

// LookupDevice resolves a catalog part by LCSC id.
func (c *BridgeClient) LookupDevice(ctx context.Context, lcscID string) (*Device, error) {
	var devices []Device
	err := c.call(ctx, "editor.lookup_device", http.MethodPost, "/devices/lookup",
		map[string][]string{"lcscIds": {lcscID}}, &devices,
		attribute.String("lcsc_id", lcscID))
	if errors.Is(err, errNotFoundStatus) {
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, lcscID)
	}
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, lcscID)
	}
	return &devices[0], nil
}

// CreateComponent places device at (x, y) with the given rotation.
func (c *BridgeClient) CreateComponent(ctx context.Context, device *Device, x, y, rotation float64) (string, error) {
	req := createComponentRequest{
		Device:   device,
		X:        x,
		Y:        y,
		Rotation: rotation,
		AddToBOM: true,
		AddToPCB: true,
	}

	var resp primitiveIDResponse
	if err := c.call(ctx, "editor.create_component", http.MethodPost, "/schematic/components", req, &resp,
		attribute.String("device_uuid", device.UUID)); err != nil {
		return "", err
	}
	if resp.PrimitiveID == "" {
		return "", fmt.Errorf("bridge returned no primitive id for %s", device.LCSCID)
	}
	return resp.PrimitiveID, nil
}

// GetPrimitive returns the state of a placed primitive.
func (c *BridgeClient) GetPrimitive(ctx context.Context, primitiveID string) (*Primitive, error) {
	var primitive Primitive
	err := c.call(ctx, "editor.get_primitive", http.MethodGet, "/schematic/primitives/"+url.PathEscape(primitiveID), nil, &primitive,
		attribute.String("primitive_id", primitiveID))
	if errors.Is(err, errNotFoundStatus) {
		return nil, fmt.Errorf("%w: %s", ErrPrimitiveNotFound, primitiveID)
	}
	if err != nil {
		return nil, err
	}
	return &primitive, nil
}

// ModifyComponent applies patch to a placed component.
func (c *BridgeClient) ModifyComponent(ctx context.Context, primitiveID string, patch ComponentPatch) error {
	err := c.call(ctx, "editor.modify_component", http.MethodPatch, "/schematic/components/"+url.PathEscape(primitiveID), patch, nil,
		attribute.String("primitive_id", primitiveID))
	if errors.Is(err, errNotFoundStatus) {
		return fmt.Errorf("%w: %s", ErrPrimitiveNotFound, primitiveID)
	}
	return err
}

// CreateWire draws a wire on net along path.
func (c *BridgeClient) CreateWire(ctx context.Context, path [][]float64, net string) (string, error) {
	var resp primitiveIDResponse
	if err := c.call(ctx, "editor.create_wire", http.MethodPost, "/schematic/wires", createWireRequest{Path: path, Net: net}, &resp,
		attribute.String("net", net)); err != nil {
		return "", err
	}
	if resp.PrimitiveID == "" {
		return "", fmt.Errorf("bridge returned no primitive id for net %s", net)
	}
	return resp.PrimitiveID, nil
}

// CaptureRenderedArea fetches the current rendered area as PNG. A 204 or an
// empty image means the host has nothing to capture.
func (c *BridgeClient) CaptureRenderedArea(ctx context.Context) ([]byte, error) {
	var resp renderedAreaResponse
	if err := c.call(ctx, "editor.capture_rendered_area", http.MethodGet, "/editor/rendered-area", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Image == "" {
		return nil, nil
	}
	return models.DecodePNG(resp.Image)
}

// ShowInformation opens an information dialog in the host.
func (c *BridgeClient) ShowInformation(ctx context.Context, title, message string) error {
	return c.call(ctx, "editor.show_information", http.MethodPost, "/dialogs/information",
		informationRequest{Title: title, Message: message}, nil)
}

// OpenIFrame opens an iframe window in the host.
func (c *BridgeClient) OpenIFrame(ctx context.Context, window IFrameWindow) error {
	return c.call(ctx, "editor.open_iframe", http.MethodPost, "/iframes", window, nil,
		attribute.String("iframe_id", window.ID))
}

// Get reads an extension user config value from host storage.
func (c *BridgeClient) Get(ctx context.Context, key string) (string, error) {
	var resp userConfigValue
	err := c.call(ctx, "editor.storage_get", http.MethodGet, "/storage/user-config/"+url.PathEscape(key), nil, &resp)
	if errors.Is(err, errNotFoundStatus) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return resp.Value, nil
}

// Set writes an extension user config value to host storage.
func (c *BridgeClient) Set(ctx context.Context, key, value string) error {
	return c.call(ctx, "editor.storage_set", http.MethodPut, "/storage/user-config/"+url.PathEscape(key),
		userConfigValue{Value: value}, nil)
}

// IsHealthy checks whether the bridge answers its health endpoint.
func (c *BridgeClient) IsHealthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// call runs one bridge request inside a span and the circuit breaker.
func (c *BridgeClient) call(ctx context.Context, spanName, method, path string, body, out any, attrs ...attribute.KeyValue) error {
	ctx, span := c.tracer.Start(ctx, spanName)
	defer span.End()
	span.SetAttributes(attrs...)

	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.do(ctx, method, path, body, out)
	})
	if err == nil {
		return nil
	}

	span.RecordError(err)
	if errors.Is(err, errNotFoundStatus) {
		return err
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrEditorUnavailable, err)
	}
	return fmt.Errorf("%s %s failed: %w", method, path, err)
}

func (c *BridgeClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEditorUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errNotFoundStatus
	case resp.StatusCode == http.StatusNoContent:
		return nil
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("editor bridge returned status %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("editor bridge returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
