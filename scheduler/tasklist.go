// Package scheduler implements the hybrid CPU/GPU dispatch described in
// spec.md §4.4: a mip x face task grid drained from both ends (GPU from the
// top, CPU from the bottom) plus a last-chance queue for work a GPU backend
// declines, grounded on RadianceFilterTaskList in the original
// implementation.
package scheduler

import (
	"sync"

	"github.com/Carmen-Shannon/cmft/cubemap"
	"github.com/Carmen-Shannon/cmft/filter"
)

// FaceTask is the unit of work dispatched to a worker: filter every texel of
// one face at one mip level.
type FaceTask struct {
	Mip    int
	Face   cubemap.Face
	Params filter.MipParams
}

// TaskList is a mip x face grid of FaceTasks, drainable from the top (lowest
// mip, sharpest reflections, usually handed to the GPU since each task is
// large) or from the bottom (highest mip, smallest, usually left to the CPU),
// with a side channel for tasks a GPU backend pushes back as unfinished.
//
// The grid is addressed as one linear sequence of mipCount*NumFaces cells
// (mip-major, face-minor). nextTop and nextBottom are cursors into that
// sequence guarded by the same mutex, mirroring the single std::mutex
// guarding m_mipStart/m_mipEnd/m_unfinished in the original implementation.
// TakeFromTop only ever consumes from nextTop upward, TakeFromBottom only
// ever consumes from nextBottom downward, and both stop the instant the two
// cursors would cross — so every cell is dispensed to exactly one caller,
// never both.
type TaskList struct {
	mu sync.Mutex

	tasks   [][cubemap.NumFaces]FaceTask
	present [][cubemap.NumFaces]bool

	nextTop    int // next linear cell index to dispense from the top
	nextBottom int // next linear cell index to dispense from the bottom

	unfinished []FaceTask
}

// NewTaskList allocates a task list spanning mipCount levels. Use Set to
// populate each (mip, face) slot before draining.
func NewTaskList(mipCount int) *TaskList {
	return &TaskList{
		tasks:      make([][cubemap.NumFaces]FaceTask, mipCount),
		present:    make([][cubemap.NumFaces]bool, mipCount),
		nextBottom: mipCount*cubemap.NumFaces - 1,
	}
}

// cell maps a linear cell index back to its (mip, face) coordinates.
func cell(idx int) (mip int, face cubemap.Face) {
	return idx / cubemap.NumFaces, cubemap.Face(idx % cubemap.NumFaces)
}

// Set stores the task for one (mip, face) slot.
func (tl *TaskList) Set(mip int, face cubemap.Face, t FaceTask) {
	tl.tasks[mip][face] = t
	tl.present[mip][face] = true
}

// TakeFromTop returns the next task walking the grid from its first cell
// upward, or ok == false once it has either exhausted the grid or met
// TakeFromBottom's cursor coming the other way.
func (tl *TaskList) TakeFromTop() (FaceTask, bool) {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	for tl.nextTop <= tl.nextBottom {
		idx := tl.nextTop
		tl.nextTop++
		mip, face := cell(idx)
		if !tl.present[mip][face] {
			continue
		}
		return tl.tasks[mip][face], true
	}
	return FaceTask{}, false
}

// TakeFromBottom returns the next task walking the grid from its last cell
// downward, or ok == false once it has either exhausted the grid or met
// TakeFromTop's cursor coming the other way.
func (tl *TaskList) TakeFromBottom() (FaceTask, bool) {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	for tl.nextBottom >= tl.nextTop {
		idx := tl.nextBottom
		tl.nextBottom--
		mip, face := cell(idx)
		if !tl.present[mip][face] {
			continue
		}
		return tl.tasks[mip][face], true
	}
	return FaceTask{}, false
}

// PushUnfinished records a task that a GPU backend declined to complete (for
// example because the backend ran out of device memory for a tile), so a CPU
// worker can pick it up instead.
func (tl *TaskList) PushUnfinished(t FaceTask) {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	tl.unfinished = append(tl.unfinished, t)
}

// PopUnfinished removes and returns one previously pushed task, LIFO, or
// ok == false if none remain.
func (tl *TaskList) PopUnfinished() (FaceTask, bool) {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	n := len(tl.unfinished)
	if n == 0 {
		return FaceTask{}, false
	}
	t := tl.unfinished[n-1]
	tl.unfinished = tl.unfinished[:n-1]
	return t, true
}
