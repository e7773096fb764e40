package wgpubackend

import "unsafe"

// sliceToBytes reinterprets a slice of any fixed-size element as a byte
// slice for a GPU buffer write, adapted from common/math.go's SliceToBytes
// in the teacher repository (originally used to stage vertex/uniform data
// for draw calls; here it stages compute storage/uniform buffer contents).
// The returned slice shares memory with data - do not retain it past data's
// lifetime.
func sliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), int(size)*len(data))
}

// bytesToSlice is sliceToBytes's inverse, used to reinterpret a mapped
// readback buffer's bytes as []float32 without a copy. The teacher
// repository never reads a GPU buffer back to host memory, so this
// direction has no direct analogue there; it follows the same
// unsafe-reinterpretation idiom as SliceToBytes for the shape GPU
// buffer-readback needs.
func bytesToSlice[T any](data []byte) []T {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := int(unsafe.Sizeof(zero))
	return unsafe.Slice((*T)(unsafe.Pointer(&data[0])), len(data)/size)
}
