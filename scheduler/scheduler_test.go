package scheduler

import (
	"errors"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/cmft/cubemap"
	"github.com/Carmen-Shannon/cmft/filter"
	"github.com/Carmen-Shannon/cmft/gpu"
	"github.com/Carmen-Shannon/cmft/image"
)

var errFakeTileFailure = errors.New("fake: tile declined")

// fakeGPU is an in-memory gpu.Backend test double that declines every tile
// of every face when declineAll is set, so tests can verify the
// unfinished-task hand-off to CPU workers without a real device.
type fakeGPU struct {
	mu         sync.Mutex
	declineAll bool
	tileCalls  int
}

func (f *fakeGPU) UploadSource(img *image.Image) error       { return nil }
func (f *fakeGPU) UploadNormals(n *cubemap.NormalTable) error { return nil }
func (f *fakeGPU) Release()                                   {}

func (f *fakeGPU) RunTileKernel(tile gpu.Tile, specularPower, specularAngle, filterSize float32) error {
	f.mu.Lock()
	f.tileCalls++
	f.mu.Unlock()
	if f.declineAll {
		return errFakeTileFailure
	}
	return nil
}

func (f *fakeGPU) ReadFace(face cubemap.Face, mip int, dst []float32) error {
	return nil
}

func TestTaskListDrainsFromBothEnds(t *testing.T) {
	tl := NewTaskList(3)
	for mip := 0; mip < 3; mip++ {
		for face := cubemap.Face(0); face < cubemap.NumFaces; face++ {
			tl.Set(mip, face, FaceTask{Mip: mip, Face: face})
		}
	}

	top, ok := tl.TakeFromTop()
	if !ok || top.Mip != 0 {
		t.Fatalf("expected first top task at mip 0, got %+v ok=%v", top, ok)
	}

	bottom, ok := tl.TakeFromBottom()
	if !ok || bottom.Mip != 2 {
		t.Fatalf("expected first bottom task at mip 2, got %+v ok=%v", bottom, ok)
	}

	count := 2 // already took one from each end
	for {
		_, okTop := tl.TakeFromTop()
		if okTop {
			count++
			continue
		}
		break
	}
	for {
		_, okBottom := tl.TakeFromBottom()
		if okBottom {
			count++
			continue
		}
		break
	}

	if count != 3*cubemap.NumFaces {
		t.Fatalf("expected to drain exactly %d tasks total, got %d", 3*cubemap.NumFaces, count)
	}
}

func TestTaskListUnfinishedIsLIFO(t *testing.T) {
	tl := NewTaskList(1)
	tl.PushUnfinished(FaceTask{Mip: 0, Face: cubemap.PosX})
	tl.PushUnfinished(FaceTask{Mip: 0, Face: cubemap.NegX})

	first, ok := tl.PopUnfinished()
	if !ok || first.Face != cubemap.NegX {
		t.Fatalf("expected LIFO pop to return NegX first, got %+v", first)
	}
	second, ok := tl.PopUnfinished()
	if !ok || second.Face != cubemap.PosX {
		t.Fatalf("expected LIFO pop to return PosX second, got %+v", second)
	}
	if _, ok := tl.PopUnfinished(); ok {
		t.Fatal("expected unfinished queue to be empty")
	}
}

func TestRunRequiresAWorker(t *testing.T) {
	img, _ := image.NewImage(4, 1)
	normals := cubemap.BuildNormalTable(4, cubemap.FixupNone)
	src := &filter.Source{FaceSize: 4, Img: img, Normals: normals}
	tl := NewTaskList(1)

	err := Run(img, src, normals, tl, Options{NumCPUThreads: 0, GPU: nil})
	if err == nil {
		t.Fatal("expected an error when neither CPU threads nor a GPU backend are configured")
	}
}

func TestRunCPUOnlyFiltersEveryFace(t *testing.T) {
	srcImg, _ := image.NewImage(4, 1)
	for f := cubemap.Face(0); f < cubemap.NumFaces; f++ {
		face := srcImg.Face(0, f)
		for i := range face.Pixels {
			face.Pixels[i] = 1
		}
	}
	normals := cubemap.BuildNormalTable(4, cubemap.FixupNone)
	src := &filter.Source{FaceSize: 4, Img: srcImg, Normals: normals}

	dstImg, _ := image.NewImage(4, 1)
	tl := NewTaskList(1)
	params := filter.ComputeMipParams(0, 1, 4, filter.Phong, 10, 1)
	for f := cubemap.Face(0); f < cubemap.NumFaces; f++ {
		tl.Set(0, f, FaceTask{Mip: 0, Face: f, Params: params})
	}

	if err := Run(dstImg, src, normals, tl, Options{NumCPUThreads: 2}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for f := cubemap.Face(0); f < cubemap.NumFaces; f++ {
		c := dstImg.Face(0, f).At(0, 0)
		if c[3] != 1 {
			t.Fatalf("face %v texel (0,0) alpha should be 1 after filtering, got %v", f, c[3])
		}
	}
}

func TestRunHybridFallsBackToCPUWhenGPUDeclines(t *testing.T) {
	srcImg, _ := image.NewImage(4, 1)
	for f := cubemap.Face(0); f < cubemap.NumFaces; f++ {
		face := srcImg.Face(0, f)
		for i := range face.Pixels {
			face.Pixels[i] = 1
		}
	}
	normals := cubemap.BuildNormalTable(4, cubemap.FixupNone)
	src := &filter.Source{FaceSize: 4, Img: srcImg, Normals: normals}

	dstImg, _ := image.NewImage(4, 1)
	tl := NewTaskList(1)
	params := filter.ComputeMipParams(0, 1, 4, filter.Phong, 10, 1)
	for f := cubemap.Face(0); f < cubemap.NumFaces; f++ {
		tl.Set(0, f, FaceTask{Mip: 0, Face: f, Params: params})
	}

	backend := &fakeGPU{declineAll: true}

	if err := Run(dstImg, src, normals, tl, Options{NumCPUThreads: 2, GPU: backend}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if backend.tileCalls == 0 {
		t.Fatal("expected the GPU backend to have been tried at least once")
	}

	// Every face must still end up filtered, having fallen back to the CPU
	// via the unfinished queue.
	for f := cubemap.Face(0); f < cubemap.NumFaces; f++ {
		c := dstImg.Face(0, f).At(0, 0)
		if c[3] != 1 {
			t.Fatalf("face %v should have been filtered by CPU fallback, got alpha %v", f, c[3])
		}
	}
}
