package scheduler

import (
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Carmen-Shannon/automation/tools/worker"

	"github.com/Carmen-Shannon/cmft/cubemap"
	"github.com/Carmen-Shannon/cmft/filter"
	"github.com/Carmen-Shannon/cmft/gpu"
	"github.com/Carmen-Shannon/cmft/image"
)

// TileSize is the texel footprint of one GPU dispatch, matching the tile
// granularity engine/light.TileSize uses for screen-space light culling in
// the teacher repository, repurposed here for GPU work granularity.
const TileSize = 64

// Options configures one Run.
type Options struct {
	NumCPUThreads int
	GPU           gpu.Backend // nil disables GPU dispatch entirely
	Progress      *Progress   // nil disables progress logging
	EdgeFixup     cubemap.EdgeFixup
}

// Run drains tl, filtering every (mip, face) task into dst. When opts.GPU is
// non-nil, the GPU backend drains from the top of the grid (lowest mips,
// largest tasks) tile by tile while CPU workers drain from the bottom
// (highest mips); tasks a GPU tile fails are pushed back for a CPU worker to
// retry whole, mirroring radianceFilterCpu/radianceFilterGpu in the original
// implementation. With opts.NumCPUThreads == 0 and no GPU backend, Run
// returns an error: there would be no worker to drain the task list. With
// opts.NumCPUThreads == 0 and a GPU backend that declines any task, Run
// returns an ErrNoWorkers error, since no CPU worker is left to retry it.
func Run(dst *image.Image, src *filter.Source, normals *cubemap.NormalTable, tl *TaskList, opts Options) error {
	if opts.NumCPUThreads <= 0 && opts.GPU == nil {
		return &Error{Kind: ErrNoWorkers, Msg: "scheduler: no CPU threads and no GPU backend configured"}
	}

	var grp errgroup.Group

	if opts.GPU != nil {
		if err := opts.GPU.UploadSource(src.Img); err != nil {
			return &Error{Kind: ErrDeviceFailed, Msg: "scheduler: gpu upload source: " + err.Error()}
		}
		if err := opts.GPU.UploadNormals(normals); err != nil {
			return &Error{Kind: ErrDeviceFailed, Msg: "scheduler: gpu upload normals: " + err.Error()}
		}

		grp.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = &Error{Kind: ErrDeviceFailed, Msg: "scheduler: gpu worker panic"}
				}
			}()
			runGPU(dst, tl, opts.GPU, opts.Progress)
			return nil
		})
	}

	// Phase 1: drain the bottom of the grid on CPU while the GPU (if any)
	// drains the top. CPU workers do not read the unfinished queue in this
	// phase (only the GPU pushes to it), so a worker can never exit early on
	// a queue the GPU hasn't finished populating.
	if opts.NumCPUThreads > 0 {
		pool := worker.NewDynamicWorkerPool(opts.NumCPUThreads, 256, 5*time.Second)

		var cpuWg sync.WaitGroup
		for i := 0; i < opts.NumCPUThreads; i++ {
			cpuWg.Add(1)
			id := i
			pool.SubmitTask(worker.Task{
				ID: id,
				Do: func() (any, error) {
					defer cpuWg.Done()
					runCPUBottom(dst, src, tl, opts.Progress, opts.EdgeFixup)
					return nil, nil
				},
			})
		}
		cpuWg.Wait()
	}

	// The GPU may still be pushing unfinished tasks while CPU workers drain
	// the bottom, so wait for it to fully finish before the unfinished
	// queue can be considered final.
	if err := grp.Wait(); err != nil {
		return err
	}

	// Phase 2: everything the GPU declined is now sitting in the unfinished
	// queue with no further writers; drain it on the CPU. A run with
	// opts.NumCPUThreads == 0 but a GPU backend has no one to do this, so any
	// task left here is reported as an ErrNoWorkers error.
	if opts.NumCPUThreads > 0 {
		for {
			t, ok := tl.PopUnfinished()
			if !ok {
				break
			}
			filterFaceCPU(dst, src, t, opts.EdgeFixup)
			if opts.Progress != nil {
				opts.Progress.MarkCPU()
			}
		}
	} else if _, ok := tl.PopUnfinished(); ok {
		return &Error{Kind: ErrNoWorkers, Msg: "scheduler: gpu left unfinished tasks and no CPU threads are configured"}
	}

	return nil
}

func runCPUBottom(dst *image.Image, src *filter.Source, tl *TaskList, progress *Progress, fixup cubemap.EdgeFixup) {
	for {
		t, ok := tl.TakeFromBottom()
		if !ok {
			return
		}
		filterFaceCPU(dst, src, t, fixup)
		if progress != nil {
			progress.MarkCPU()
		}
	}
}

func filterFaceCPU(dst *image.Image, src *filter.Source, t FaceTask, fixup cubemap.EdgeFixup) {
	face := dst.Face(t.Mip, t.Face)
	n := face.Width

	var warp float32
	if fixup == cubemap.FixupWarp {
		warp = cubemap.WarpFactor(n)
	}

	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			u, v := cubemap.TexelCenter(x, y, n)
			var dir [3]float32
			if fixup == cubemap.FixupWarp {
				dir = cubemap.TexelCoordToDirWarp(u, v, t.Face, warp)
			} else {
				dir = cubemap.TexelCoordToDir(u, v, t.Face)
			}

			task := filter.Task{DstFace: t.Face, DstX: x, DstY: y, Dir: dir, Params: t.Params}
			color := filter.Integrate(src, task)
			face.Set(x, y, color)
		}
	}
}

func runGPU(dst *image.Image, tl *TaskList, backend gpu.Backend, progress *Progress) {
	for {
		t, ok := tl.TakeFromTop()
		if !ok {
			return
		}

		face := dst.Face(t.Mip, t.Face)
		n := face.Width

		failed := false
		for ty := 0; ty < n; ty += TileSize {
			for tx := 0; tx < n; tx += TileSize {
				size := TileSize
				if tx+size > n {
					size = n - tx
				}
				if ty+size > n {
					size = n - ty
				}

				tile := gpu.Tile{Face: t.Face, Mip: t.Mip, X: tx, Y: ty, Size: size}
				if err := backend.RunTileKernel(tile, t.Params.SpecularPower, t.Params.SpecularAngle, t.Params.FilterSize); err != nil {
					failed = true
					break
				}
			}
			if failed {
				break
			}
		}

		if failed {
			tl.PushUnfinished(t)
			continue
		}

		if err := backend.ReadFace(t.Face, t.Mip, face.Pixels); err != nil {
			tl.PushUnfinished(t)
			continue
		}

		if progress != nil {
			progress.MarkGPU()
		}
	}
}
