// Package wgpubackend implements gpu.Backend on top of a headless WebGPU
// compute device, using github.com/cogentcore/webgpu the same way the
// teacher repository's engine/renderer package drives it for rendering:
// an Instance/Adapter/Device triple, buffers created and written through the
// Queue, and work submitted as recorded command buffers. Unlike the
// renderer's windowed pipeline there is no Surface here — cmft runs as a
// batch CLI tool with nothing to present to.
package wgpubackend

import (
	_ "embed"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/cmft/cubemap"
	"github.com/Carmen-Shannon/cmft/gpu"
	"github.com/Carmen-Shannon/cmft/image"
)

//go:embed shader.wgsl
var shaderSource string

// Backend is a headless WebGPU compute adapter implementing gpu.Backend.
type Backend struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	pipeline        *wgpu.ComputePipeline
	bindGroupLayout *wgpu.BindGroupLayout

	sourceBuf  *wgpu.Buffer
	normalsBuf *wgpu.Buffer
	paramsBuf  *wgpu.Buffer
	dstBufs    map[cubemap.Face]*wgpu.Buffer // one per destination face of the mip currently being read back

	faceSize int
}

// New creates a headless WebGPU device and compiles the radiance filter
// kernel. Returns gpu.ErrUnavailable if no compatible adapter can be found.
func New() (*Backend, error) {
	instance := wgpu.CreateInstance(nil)

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", gpu.ErrUnavailable, err)
	}

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		RequiredLimits: &wgpu.RequiredLimits{Limits: wgpu.DefaultLimits()},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", gpu.ErrUnavailable, err)
	}

	b := &Backend{
		instance: instance,
		adapter:  adapter,
		device:   device,
		queue:    device.GetQueue(),
		dstBufs:  make(map[cubemap.Face]*wgpu.Buffer),
	}

	if err := b.buildPipeline(); err != nil {
		b.Release()
		return nil, fmt.Errorf("%w: %v", gpu.ErrUnavailable, err)
	}

	return b, nil
}

func (b *Backend) buildPipeline() error {
	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "radiance_filter",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaderSource},
	})
	if err != nil {
		return err
	}
	defer module.Release()

	pipeline, err := b.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label: "radiance_filter_pipeline",
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: "main",
		},
	})
	if err != nil {
		return err
	}
	b.pipeline = pipeline
	b.bindGroupLayout = pipeline.GetBindGroupLayout(0)
	return nil
}

// UploadSource flattens the base level of src into one storage buffer, face
// by face, so the kernel can index it with the same face-major layout as
// cubemap.NormalTable.
func (b *Backend) UploadSource(src *image.Image) error {
	n := src.FaceSize()
	b.faceSize = n

	total := cubemap.NumFaces * n * n
	flat := make([]float32, total*4)
	offset := 0
	for f := cubemap.Face(0); f < cubemap.NumFaces; f++ {
		face := src.Face(0, f)
		copy(flat[offset:], face.Pixels)
		offset += len(face.Pixels)
	}

	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            "source_faces",
		Size:             uint64(len(flat) * 4),
		Usage:            wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return err
	}
	b.queue.WriteBuffer(buf, 0, sliceToBytes(flat))
	b.sourceBuf = buf
	return nil
}

// UploadNormals uploads the direction/solid-angle table as vec4<f32>
// entries (xyz = direction, w = solid angle), matching the shader's
// normal_table binding layout.
func (b *Backend) UploadNormals(normals *cubemap.NormalTable) error {
	flat := make([]float32, len(normals.Samples)*4)
	for i, s := range normals.Samples {
		flat[i*4+0] = s.Dir[0]
		flat[i*4+1] = s.Dir[1]
		flat[i*4+2] = s.Dir[2]
		flat[i*4+3] = s.SolidAngle
	}

	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            "normal_table",
		Size:             uint64(len(flat) * 4),
		Usage:            wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return err
	}
	b.queue.WriteBuffer(buf, 0, sliceToBytes(flat))
	b.normalsBuf = buf
	return nil
}

type shaderParams struct {
	SpecularPower float32
	SpecularAngle float32
	FilterSize    float32
	FaceSize      float32
	DstFace       uint32
	TileX         uint32
	TileY         uint32
	TileSize      uint32
}

// RunTileKernel dispatches one tile's worth of workgroups. Results remain in
// device memory (in the per-face destination buffer) until ReadFace copies
// them back.
func (b *Backend) RunTileKernel(tile gpu.Tile, specularPower, specularAngle, filterSize float32) error {
	dstBuf, ok := b.dstBufs[tile.Face]
	if !ok {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label:            "dst_face",
			Size:             uint64(b.faceSize * b.faceSize * 4 * 4),
			Usage:            wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc,
			MappedAtCreation: false,
		})
		if err != nil {
			return err
		}
		b.dstBufs[tile.Face] = buf
		dstBuf = buf
	}

	params := shaderParams{
		SpecularPower: specularPower,
		SpecularAngle: specularAngle,
		FilterSize:    filterSize,
		FaceSize:      float32(b.faceSize),
		DstFace:       uint32(tile.Face),
		TileX:         uint32(tile.X),
		TileY:         uint32(tile.Y),
		TileSize:      uint32(tile.Size),
	}

	if b.paramsBuf == nil {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label:            "params",
			Size:             uint64(32),
			Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
			MappedAtCreation: false,
		})
		if err != nil {
			return err
		}
		b.paramsBuf = buf
	}
	b.queue.WriteBuffer(b.paramsBuf, 0, sliceToBytes([]shaderParams{params}))

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: b.bindGroupLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: b.paramsBuf, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: b.sourceBuf, Size: wgpu.WholeSize},
			{Binding: 2, Buffer: b.normalsBuf, Size: wgpu.WholeSize},
			{Binding: 3, Buffer: dstBuf, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return err
	}
	defer bindGroup.Release()

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}

	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(b.pipeline)
	pass.SetBindGroup(0, bindGroup, nil)

	groups := (uint32(tile.Size) + 7) / 8
	pass.DispatchWorkgroups(groups, groups, 1)
	pass.End()

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	b.queue.Submit(cmd)

	return nil
}

// ReadFace maps the destination buffer for face/mip back to host memory and
// copies it into dst.
func (b *Backend) ReadFace(face cubemap.Face, mip int, dst []float32) error {
	buf, ok := b.dstBufs[face]
	if !ok {
		return fmt.Errorf("wgpubackend: no dispatched work for face %v", face)
	}

	staging, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            "readback",
		Size:             buf.GetSize(),
		Usage:            wgpu.BufferUsageCopyDst | wgpu.BufferUsageMapRead,
		MappedAtCreation: false,
	})
	if err != nil {
		return err
	}
	defer staging.Release()

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	encoder.CopyBufferToBuffer(buf, 0, staging, 0, buf.GetSize())
	cmd, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	b.queue.Submit(cmd)

	done := make(chan error, 1)
	staging.MapAsync(wgpu.MapModeRead, 0, staging.GetSize(), func(status wgpu.BufferMapAsyncStatus) {
		if status != wgpu.BufferMapAsyncStatusSuccess {
			done <- fmt.Errorf("%w: map status %v", gpu.ErrDeviceLost, status)
			return
		}
		done <- nil
	})

	for {
		b.device.Poll(true, nil)
		select {
		case err := <-done:
			if err != nil {
				return err
			}
			data := staging.GetMappedRange(0, uint(staging.GetSize()))
			copy(dst, bytesToSlice[float32](data))
			staging.Unmap()
			return nil
		default:
		}
	}
}

// Release frees every GPU resource the backend allocated.
func (b *Backend) Release() {
	for _, buf := range b.dstBufs {
		buf.Release()
	}
	if b.sourceBuf != nil {
		b.sourceBuf.Release()
	}
	if b.normalsBuf != nil {
		b.normalsBuf.Release()
	}
	if b.paramsBuf != nil {
		b.paramsBuf.Release()
	}
	if b.pipeline != nil {
		b.pipeline.Release()
	}
	if b.device != nil {
		b.device.Release()
	}
	if b.adapter != nil {
		b.adapter.Release()
	}
	if b.instance != nil {
		b.instance.Release()
	}
}
