// Package cubemap implements the texel/direction geometry shared by the rest
// of the filtering engine: per-face coordinate bases, the cross-face
// neighbour table, texel solid angles, and the latlong/octant direction
// mappings consumed by layout conversions and SH-latlong output.
package cubemap

// Face identifies one of the six faces of a cubemap.
type Face int

const (
	PosX Face = iota
	NegX
	PosY
	NegY
	PosZ
	NegZ

	NumFaces = 6
)

// String returns the conventional short name for the face, e.g. "+X".
func (f Face) String() string {
	switch f {
	case PosX:
		return "+X"
	case NegX:
		return "-X"
	case PosY:
		return "+Y"
	case NegY:
		return "-Y"
	case PosZ:
		return "+Z"
	case NegZ:
		return "-Z"
	default:
		return "?"
	}
}

// Edge identifies one of the four edges of a face.
type Edge int

const (
	Left Edge = iota
	Right
	Top
	Bottom

	NumEdges = 4
)

// basis holds the (uAxis, vAxis, faceAxis) triple for one face: the
// direction for face-local (u, v) is normalize(u*uAxis + v*vAxis + faceAxis).
//
// Bit-exact with the DirectX/OpenGL cubemap layout (spec.md §6):
//
//	+X: u→-Z, v→-Y   -X: u→+Z, v→-Y
//	+Y: u→+X, v→+Z   -Y: u→+X, v→-Z
//	+Z: u→+X, v→-Y   -Z: u→-X, v→-Y
var basis = [NumFaces][3][3]float32{
	PosX: {{0, 0, -1}, {0, -1, 0}, {1, 0, 0}},
	NegX: {{0, 0, 1}, {0, -1, 0}, {-1, 0, 0}},
	PosY: {{1, 0, 0}, {0, 0, 1}, {0, 1, 0}},
	NegY: {{1, 0, 0}, {0, 0, -1}, {0, -1, 0}},
	PosZ: {{1, 0, 0}, {0, -1, 0}, {0, 0, 1}},
	NegZ: {{-1, 0, 0}, {0, -1, 0}, {0, 0, -1}},
}

// NeighbourEntry names the face and the edge-of-that-face adjoining one edge
// of another face.
type NeighbourEntry struct {
	Face Face
	Edge Edge
}

// neighbours is the constant 6x4 cross-face adjacency table, indexed
// [face][edge], giving the neighbouring face and which of ITS edges is
// shared. Bit-exact with s_cubeFaceNeighbours in the original implementation.
var neighbours = [NumFaces][NumEdges]NeighbourEntry{
	PosX: {
		Left:   {PosZ, Right},
		Right:  {NegZ, Left},
		Top:    {PosY, Right},
		Bottom: {NegY, Right},
	},
	NegX: {
		Left:   {NegZ, Right},
		Right:  {PosZ, Left},
		Top:    {PosY, Left},
		Bottom: {NegY, Left},
	},
	PosY: {
		Left:   {NegX, Top},
		Right:  {PosX, Top},
		Top:    {NegZ, Top},
		Bottom: {PosZ, Top},
	},
	NegY: {
		Left:   {NegX, Bottom},
		Right:  {PosX, Bottom},
		Top:    {PosZ, Bottom},
		Bottom: {NegZ, Bottom},
	},
	PosZ: {
		Left:   {NegX, Right},
		Right:  {PosX, Left},
		Top:    {PosY, Bottom},
		Bottom: {NegY, Top},
	},
	NegZ: {
		Left:   {PosX, Right},
		Right:  {NegX, Left},
		Top:    {PosY, Top},
		Bottom: {NegY, Bottom},
	},
}

// Neighbour returns the face and edge adjoining the given edge of f.
func Neighbour(f Face, e Edge) NeighbourEntry {
	return neighbours[f][e]
}
