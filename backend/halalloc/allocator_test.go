package halalloc

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/raytrace"
	"github.com/gogpu/raytrace/rtcore"
)

func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

func TestCreateBuffer(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()
	alloc := New(device, queue)

	buf, err := alloc.CreateBuffer(&rtcore.BufferDescriptor{
		Label: "result",
		Size:  4096,
		Usage: gputypes.BufferUsageStorage,
	})
	if err != nil {
		t.Fatalf("CreateBuffer() = %v", err)
	}
	if buf.Size() != 4096 {
		t.Errorf("Size() = %d", buf.Size())
	}
	if _, err := buf.Map(); !errors.Is(err, ErrNotMappable) {
		t.Errorf("Map() on device-local buffer = %v", err)
	}
	if n, bytes := alloc.Stats(); n != 1 || bytes != 4096 {
		t.Errorf("Stats() = %d, %d", n, bytes)
	}

	buf.Destroy()
	buf.Destroy()
	if n, bytes := alloc.Stats(); n != 0 || bytes != 0 {
		t.Errorf("Stats() after Destroy = %d, %d", n, bytes)
	}
	if _, err := buf.Map(); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Map() after Destroy = %v", err)
	}
}

func TestCreateBufferInvalidSize(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()
	alloc := New(device, queue)

	if _, err := alloc.CreateBuffer(&rtcore.BufferDescriptor{Usage: gputypes.BufferUsageStorage}); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("CreateBuffer(size 0) = %v", err)
	}
	if _, err := alloc.CreateBuffer(nil); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("CreateBuffer(nil) = %v", err)
	}
}

func TestUploadBuffer(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()
	alloc := New(device, queue)

	buf, err := alloc.CreateBuffer(&rtcore.BufferDescriptor{
		Label:        "shader table",
		Size:         256,
		Usage:        gputypes.BufferUsageMapWrite | gputypes.BufferUsageCopySrc,
		InitialState: rtcore.ResourceStateGenericRead,
	})
	if err != nil {
		t.Fatalf("CreateBuffer() = %v", err)
	}
	defer buf.Destroy()

	data, err := buf.Map()
	if err != nil {
		t.Fatalf("Map() = %v", err)
	}
	if len(data) != 256 {
		t.Fatalf("mapped %d bytes", len(data))
	}
	if _, err := buf.Map(); !errors.Is(err, ErrAlreadyMapped) {
		t.Errorf("second Map() = %v", err)
	}
	data[0] = 0x42
	buf.Unmap()

	again, err := buf.Map()
	if err != nil {
		t.Fatalf("Map() after Unmap = %v", err)
	}
	if again[0] != 0x42 {
		t.Error("host copy lost across Unmap")
	}
	buf.Unmap()
}

func TestReadbackBuffer(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()
	alloc := New(device, queue)

	buf, err := alloc.CreateBuffer(&rtcore.BufferDescriptor{
		Label:        "post-build readback",
		Size:         8,
		Usage:        gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
		InitialState: rtcore.ResourceStateCopyDest,
	})
	if err != nil {
		t.Fatalf("CreateBuffer() = %v", err)
	}
	defer buf.Destroy()

	// Stand in for a GPU copy into the buffer.
	gpu := []byte{0x00, 0x0f, 0, 0, 0, 0, 0, 0}
	if err := queue.WriteBuffer(buf.(*Buffer).Raw(), 0, gpu); err != nil {
		t.Fatalf("WriteBuffer() = %v", err)
	}

	data, err := buf.Map()
	if err != nil {
		t.Fatalf("Map() = %v", err)
	}
	if !bytes.Equal(data, gpu) {
		t.Errorf("Map() = %x, want %x", data, gpu)
	}
	buf.Unmap()
}

// failingQueue rejects every upload.
type failingQueue struct {
	hal.Queue
}

var errQueueLost = errors.New("queue lost")

func (q failingQueue) WriteBuffer(hal.Buffer, uint64, []byte) error { return errQueueLost }

func TestUploadFailureReported(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()
	alloc := New(device, failingQueue{Queue: queue})

	var logs bytes.Buffer
	raytrace.SetLogger(slog.New(slog.NewTextHandler(&logs, nil)))
	defer raytrace.SetLogger(nil)

	buf, err := alloc.CreateBuffer(&rtcore.BufferDescriptor{
		Label: "instances",
		Size:  64,
		Usage: gputypes.BufferUsageMapWrite | gputypes.BufferUsageCopySrc,
	})
	if err != nil {
		t.Fatalf("CreateBuffer() = %v", err)
	}
	defer buf.Destroy()

	if _, err := buf.Map(); err != nil {
		t.Fatalf("Map() = %v", err)
	}
	buf.Unmap()

	hb := buf.(*Buffer)
	if !errors.Is(hb.UploadErr(), errQueueLost) {
		t.Errorf("UploadErr() = %v, want %v", hb.UploadErr(), errQueueLost)
	}
	out := logs.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "instances") {
		t.Errorf("upload failure not logged with label: %q", out)
	}
}

func TestUploadErrClearedOnSuccess(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()
	alloc := New(device, queue)

	buf, err := alloc.CreateBuffer(&rtcore.BufferDescriptor{
		Label: "table",
		Size:  32,
		Usage: gputypes.BufferUsageMapWrite,
	})
	if err != nil {
		t.Fatalf("CreateBuffer() = %v", err)
	}
	defer buf.Destroy()
	if _, err := buf.Map(); err != nil {
		t.Fatalf("Map() = %v", err)
	}
	buf.Unmap()
	if err := buf.(*Buffer).UploadErr(); err != nil {
		t.Errorf("UploadErr() = %v, want nil", err)
	}
}

func TestHalUsage(t *testing.T) {
	tests := []struct {
		name string
		in   gputypes.BufferUsage
		want gputypes.BufferUsage
	}{
		{"upload", gputypes.BufferUsageMapWrite | gputypes.BufferUsageCopySrc,
			gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst},
		{"readback", gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
			gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst},
		{"storage", gputypes.BufferUsageStorage, gputypes.BufferUsageStorage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := halUsage(tt.in); got != tt.want {
				t.Errorf("halUsage(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

type mockDevice struct{}

func (m *mockDevice) Poll(wait bool) {}
func (m *mockDevice) Destroy()       {}

type mockQueue struct{}

type mockAdapter struct{}

// mockProvider implements gpucontext.DeviceProvider without HAL access.
type mockProvider struct{}

func (m *mockProvider) Device() gpucontext.Device             { return &mockDevice{} }
func (m *mockProvider) Queue() gpucontext.Queue               { return &mockQueue{} }
func (m *mockProvider) Adapter() gpucontext.Adapter           { return &mockAdapter{} }
func (m *mockProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatBGRA8Unorm }

// halMockProvider also exposes HAL objects.
type halMockProvider struct {
	mockProvider
	device hal.Device
	queue  hal.Queue
}

func (m *halMockProvider) HalDevice() any { return m.device }
func (m *halMockProvider) HalQueue() any  { return m.queue }

func TestFromProvider(t *testing.T) {
	if _, err := FromProvider(&mockProvider{}); !errors.Is(err, ErrNoHAL) {
		t.Errorf("FromProvider(no HAL) = %v", err)
	}
	if _, err := FromProvider(&halMockProvider{}); !errors.Is(err, ErrNoHAL) {
		t.Errorf("FromProvider(nil HAL) = %v", err)
	}

	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()
	alloc, err := FromProvider(&halMockProvider{device: device, queue: queue})
	if err != nil {
		t.Fatalf("FromProvider() = %v", err)
	}
	buf, err := alloc.CreateBuffer(&rtcore.BufferDescriptor{Size: 64, Usage: gputypes.BufferUsageStorage})
	if err != nil {
		t.Fatalf("CreateBuffer() = %v", err)
	}
	buf.Destroy()
}
