// Package gpu defines the device-acceleration seam used by the filter
// scheduler: a small interface a compute backend must satisfy to take part
// in radiance filtering, and the sentinel errors a backend may wrap in the
// errors it returns (spec.md §4.4, §7, design note "GpuBackend trait").
package gpu

import (
	"errors"

	"github.com/Carmen-Shannon/cmft/cubemap"
	"github.com/Carmen-Shannon/cmft/image"
)

// ErrUnavailable is wrapped by Backend constructors when no compatible
// device could be found.
var ErrUnavailable = errors.New("gpu: no compatible device available")

// ErrDeviceLost is wrapped by Backend methods when the device stops
// responding mid-dispatch. The scheduler handles it like any other tile or
// readback error, by retrying the task on the CPU.
var ErrDeviceLost = errors.New("gpu: device lost")

// Tile is one rectangular region of one destination face/mip dispatched as a
// single kernel invocation.
type Tile struct {
	Face   cubemap.Face
	Mip    int
	X, Y   int // top-left texel, in destination-face coordinates
	Size   int // tile is Size x Size texels, clamped at the face edge
}

// Backend is the seam a compute device adapter implements to accelerate
// radiance filtering. Implementations upload the source cubemap and the
// direction/solid-angle normal table once, then are asked to run one tile at
// a time; the scheduler decides dispatch order and fallback, the backend
// only needs to execute.
//
// A Backend implementation must be safe to drive from a single goroutine at
// a time; the scheduler serializes calls to RunTileKernel and ReadFace
// itself rather than relying on internal synchronization.
type Backend interface {
	// UploadSource copies the base-level source cubemap into device memory.
	UploadSource(src *image.Image) error
	// UploadNormals copies the direction/solid-angle table into device
	// memory, shared across every tile dispatch.
	UploadNormals(normals *cubemap.NormalTable) error
	// RunTileKernel filters every texel of one tile, given the mip's
	// specular power/angle/filter-size parameters, leaving the result in
	// device memory until ReadFace retrieves it. On any non-nil error the
	// scheduler retries the whole face task on the CPU.
	RunTileKernel(tile Tile, specularPower, specularAngle, filterSize float32) error
	// ReadFace copies one destination face/mip back from device memory into
	// dst, which must be at least Width*Height*4 float32s.
	ReadFace(face cubemap.Face, mip int, dst []float32) error
	// Release frees device resources. Safe to call once, after which the
	// backend must not be used again.
	Release()
}
