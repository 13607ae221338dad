package brep

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// square builds a unit square lamina: f0 faces +z, f1 faces -z.
func square(t *testing.T, s *Store) (f0, f1 FaceID, vs [4]VertexID) {
	t.Helper()
	_, f0, vs[0] = s.Mvfs(r3.Vec{})
	var err error
	vs[1], _, err = s.MveFace(r3.Vec{X: 1}, vs[0], f0)
	require.NoError(t, err)
	vs[2], _, err = s.MveFace(r3.Vec{X: 1, Y: 1}, vs[1], f0)
	require.NoError(t, err)
	vs[3], _, err = s.MveFace(r3.Vec{Y: 1}, vs[2], f0)
	require.NoError(t, err)
	f1, _, err = s.MefFace(vs[3], vs[0], f0)
	require.NoError(t, err)
	return f0, f1, vs
}

func TestMvfs(t *testing.T) {
	s := NewStore()
	sid, fid, vid := s.Mvfs(r3.Vec{X: 1, Y: 2, Z: 3})

	solid, ok := s.Solid(sid)
	require.True(t, ok)
	assert.Equal(t, fid, solid.Face)

	face, ok := s.Face(fid)
	require.True(t, ok)
	loop, ok := s.Loop(face.Loop)
	require.True(t, ok)
	assert.True(t, loop.HalfEdge.IsNil())
	assert.Equal(t, face.Loop, loop.Next)
	assert.Equal(t, vid, loop.Vertex)
	assert.Equal(t, r3.Vec{X: 1, Y: 2, Z: 3}, s.Position(vid))

	assert.Equal(t, Stats{Solids: 1, Faces: 1, Loops: 1, Vertices: 1}, s.Stats())
	require.NoError(t, s.Validate())
}

func TestMveOnEmptyLoop(t *testing.T) {
	s := NewStore()
	_, f, v0 := s.Mvfs(r3.Vec{})
	v1, e, err := s.MveFace(r3.Vec{X: 1}, v0, f)
	require.NoError(t, err)

	edge, ok := s.Edge(e)
	require.True(t, ok)
	he0, _ := s.HalfEdge(edge.HalfEdges[0])
	he1, _ := s.HalfEdge(edge.HalfEdges[1])
	assert.Equal(t, v0, he0.Origin)
	assert.Equal(t, v1, he1.Origin)
	assert.Equal(t, edge.HalfEdges[1], he0.Next)
	assert.Equal(t, edge.HalfEdges[0], he1.Next)
	require.NoError(t, s.Validate())
}

func TestSquareLamina(t *testing.T) {
	s := NewStore()
	f0, f1, _ := square(t, s)

	st := s.Stats()
	assert.Equal(t, 4, st.Vertices)
	assert.Equal(t, 4, st.Edges)
	assert.Equal(t, 2, st.Faces)
	assert.Equal(t, 2*st.Solids, st.Euler())
	require.NoError(t, s.Validate())

	face0, _ := s.Face(f0)
	face1, _ := s.Face(f1)
	assert.Equal(t, []r3.Vec{{Y: 1}, {}, {X: 1}, {X: 1, Y: 1}}, s.LoopPositions(face0.Loop))
	assert.Equal(t, []r3.Vec{{}, {Y: 1}, {X: 1, Y: 1}, {X: 1}}, s.LoopPositions(face1.Loop))
}

func TestEulerInvariantEveryStep(t *testing.T) {
	s := NewStore()
	check := func() {
		st := s.Stats()
		assert.Equal(t, 2*st.Solids, st.Euler(), "V-E+F after %+v", st)
		require.NoError(t, s.Validate())
	}

	_, f0, v0 := s.Mvfs(r3.Vec{})
	check()
	v1, _, err := s.MveFace(r3.Vec{X: 1}, v0, f0)
	require.NoError(t, err)
	check()
	v2, _, err := s.MveFace(r3.Vec{X: 1, Y: 1}, v1, f0)
	require.NoError(t, err)
	check()
	v3, _, err := s.MveFace(r3.Vec{Y: 1}, v2, f0)
	require.NoError(t, err)
	check()
	f1, _, err := s.MefFace(v3, v0, f0)
	require.NoError(t, err)
	check()
	require.NoError(t, s.Sweep(f1, r3.Vec{Z: 2}, 1))
	check()
}

func TestSweepCube(t *testing.T) {
	s := NewStore()
	f0, f1, _ := square(t, s)
	require.NoError(t, s.Sweep(f1, r3.Vec{Z: 1}, 1))

	st := s.Stats()
	assert.Equal(t, 8, st.Vertices)
	assert.Equal(t, 12, st.Edges)
	assert.Equal(t, 6, st.Faces)
	assert.Equal(t, 1, st.Solids)
	assert.Equal(t, 0, st.Rings())
	require.NoError(t, s.Validate())

	top, _ := s.Face(f0)
	for _, p := range s.LoopPositions(top.Loop) {
		assert.Equal(t, 1.0, p.Z)
	}
	bottom, _ := s.Face(f1)
	for _, p := range s.LoopPositions(bottom.Loop) {
		assert.Equal(t, 0.0, p.Z)
	}
	for f := range s.Faces() {
		face, _ := s.Face(f)
		assert.Len(t, s.LoopPositions(face.Loop), 4, "f%d", f.Index())
	}
}

func TestSweepScalesDirection(t *testing.T) {
	s := NewStore()
	f0, f1, _ := square(t, s)
	require.NoError(t, s.Sweep(f1, r3.Vec{Z: 10}, 2.5))

	top, _ := s.Face(f0)
	for _, p := range s.LoopPositions(top.Loop) {
		assert.InDelta(t, 2.5, p.Z, 1e-12)
	}
}

// frame builds a 4x4 square with a 2x2 square hole and sweeps it by one.
func frame(t *testing.T) (*Store, FaceID, FaceID) {
	t.Helper()
	s := NewStore()
	_, f0, v0 := s.Mvfs(r3.Vec{})
	v1, _, err := s.MveFace(r3.Vec{X: 4}, v0, f0)
	require.NoError(t, err)
	v2, _, err := s.MveFace(r3.Vec{X: 4, Y: 4}, v1, f0)
	require.NoError(t, err)
	v3, _, err := s.MveFace(r3.Vec{Y: 4}, v2, f0)
	require.NoError(t, err)
	f1, _, err := s.MefFace(v3, v0, f0)
	require.NoError(t, err)

	v4, bridge, err := s.MveFace(r3.Vec{X: 1, Y: 1}, v0, f1)
	require.NoError(t, err)
	v5, _, err := s.MveFace(r3.Vec{X: 3, Y: 1}, v4, f1)
	require.NoError(t, err)
	v6, _, err := s.MveFace(r3.Vec{X: 3, Y: 3}, v5, f1)
	require.NoError(t, err)
	v7, _, err := s.MveFace(r3.Vec{X: 1, Y: 3}, v6, f1)
	require.NoError(t, err)
	_, _, err = s.MefFace(v7, v4, f1)
	require.NoError(t, err)

	hole, err := s.KeMr(bridge, f1)
	require.NoError(t, err)
	assert.Equal(t, []r3.Vec{{X: 1, Y: 1}, {X: 3, Y: 1}, {X: 3, Y: 3}, {X: 1, Y: 3}}, rotateTo(s.LoopPositions(hole), r3.Vec{X: 1, Y: 1}))
	require.NoError(t, s.Validate())

	require.NoError(t, s.Sweep(f1, r3.Vec{Z: 1}, 1))
	return s, f0, f1
}

func rotateTo(ps []r3.Vec, first r3.Vec) []r3.Vec {
	for i, p := range ps {
		if p == first {
			return append(append([]r3.Vec{}, ps[i:]...), ps[:i]...)
		}
	}
	return ps
}

func TestSweepWithHole(t *testing.T) {
	s, f0, f1 := frame(t)

	st := s.Stats()
	assert.Equal(t, 16, st.Vertices)
	assert.Equal(t, 24, st.Edges)
	assert.Equal(t, 10, st.Faces)
	assert.Equal(t, 2, st.Rings())
	// Genus one: V - E + F - R = 2(S - H) = 0.
	assert.Equal(t, 0, st.Euler()-st.Rings())
	require.NoError(t, s.Validate())

	for _, f := range []FaceID{f0, f1} {
		n := 0
		for range s.Loops(f) {
			n++
		}
		assert.Equal(t, 2, n, "f%d", f.Index())
	}

	// The inner patch was folded into the top face.
	_, ok := s.FaceAt(2)
	assert.False(t, ok)
}

func TestKeMrTombstonesEdge(t *testing.T) {
	s := NewStore()
	_, f0, v0 := s.Mvfs(r3.Vec{})
	v1, _, err := s.MveFace(r3.Vec{X: 4}, v0, f0)
	require.NoError(t, err)
	v2, _, err := s.MveFace(r3.Vec{X: 4, Y: 4}, v1, f0)
	require.NoError(t, err)
	v3, _, err := s.MveFace(r3.Vec{Y: 4}, v2, f0)
	require.NoError(t, err)
	f1, _, err := s.MefFace(v3, v0, f0)
	require.NoError(t, err)
	v4, bridge, err := s.MveFace(r3.Vec{X: 1, Y: 1}, v0, f1)
	require.NoError(t, err)
	v5, _, err := s.MveFace(r3.Vec{X: 2, Y: 1}, v4, f1)
	require.NoError(t, err)
	v6, _, err := s.MveFace(r3.Vec{X: 2, Y: 2}, v5, f1)
	require.NoError(t, err)
	_, _, err = s.MefFace(v6, v4, f1)
	require.NoError(t, err)

	edge, _ := s.Edge(bridge)
	_, err = s.KeMr(bridge, f1)
	require.NoError(t, err)

	_, ok := s.Edge(bridge)
	assert.False(t, ok)
	_, ok = s.EdgeAt(bridge.Index())
	assert.False(t, ok)
	_, ok = s.HalfEdge(edge.HalfEdges[0])
	assert.False(t, ok)

	_, err = s.KeMr(bridge, f1)
	assert.ErrorIs(t, err, ErrNoEntity)
	require.NoError(t, s.Validate())
}

func TestPreconditionViolations(t *testing.T) {
	t.Run("vertex on another solid", func(t *testing.T) {
		s := NewStore()
		_, f0, v0 := s.Mvfs(r3.Vec{})
		_, _, err := s.MveFace(r3.Vec{X: 1}, v0, f0)
		require.NoError(t, err)
		_, _, other := s.Mvfs(r3.Vec{Z: 5})

		_, _, err = s.MveFace(r3.Vec{X: 2}, other, f0)
		assert.ErrorIs(t, err, ErrVertexNotOnLoop)
	})

	t.Run("vertex outside an empty loop", func(t *testing.T) {
		s := NewStore()
		_, f0, v0 := s.Mvfs(r3.Vec{})
		_, _, err := s.MveFace(r3.Vec{X: 1}, v0, f0)
		require.NoError(t, err)
		_, f1, v2 := s.Mvfs(r3.Vec{X: 5, Y: 5, Z: 5})

		_, _, err = s.MveFace(r3.Vec{X: 6}, v0, f1)
		assert.ErrorIs(t, err, ErrVertexNotOnLoop)

		face1, _ := s.Face(f1)
		_, _, err = s.Mve(r3.Vec{X: 6}, v0, face1.Loop)
		assert.ErrorIs(t, err, ErrVertexNotOnLoop)

		_, _, err = s.MveFace(r3.Vec{X: 6}, v2, f1)
		require.NoError(t, err)
		require.NoError(t, s.Validate())
	})

	t.Run("dead face", func(t *testing.T) {
		s := NewStore()
		_, _, err := s.MveFace(r3.Vec{}, VertexID{}, FaceID{})
		assert.ErrorIs(t, err, ErrNoEntity)
	})

	t.Run("mef on same vertex", func(t *testing.T) {
		s := NewStore()
		f0, _, vs := square(t, s)
		_, _, err := s.MefFace(vs[1], vs[1], f0)
		assert.ErrorIs(t, err, ErrSameVertex)
	})

	t.Run("mef second vertex off loop", func(t *testing.T) {
		s := NewStore()
		f0, _, vs := square(t, s)
		_, _, other := s.Mvfs(r3.Vec{Z: 5})
		_, _, err := s.MefFace(vs[0], other, f0)
		assert.ErrorIs(t, err, ErrVertexNotOnLoop)
	})

	t.Run("mef on empty loop", func(t *testing.T) {
		s := NewStore()
		_, f0, v0 := s.Mvfs(r3.Vec{})
		_, _, v1 := s.Mvfs(r3.Vec{X: 1})
		_, _, err := s.MefFace(v0, v1, f0)
		assert.ErrorIs(t, err, ErrEmptyLoop)
	})

	t.Run("kemr dangling edge", func(t *testing.T) {
		s := NewStore()
		_, f0, v0 := s.Mvfs(r3.Vec{})
		_, e, err := s.MveFace(r3.Vec{X: 1}, v0, f0)
		require.NoError(t, err)
		_, err = s.KeMr(e, f0)
		assert.ErrorIs(t, err, ErrDanglingEdge)
	})

	t.Run("kemr edge between faces", func(t *testing.T) {
		s := NewStore()
		f0, _, _ := square(t, s)
		e, ok := s.EdgeAt(0)
		require.True(t, ok)
		_, err := s.KeMr(e, f0)
		assert.ErrorIs(t, err, ErrEdgeNotOnFace)
	})

	t.Run("kfmrh same face", func(t *testing.T) {
		s := NewStore()
		f0, _, _ := square(t, s)
		assert.ErrorIs(t, s.KfMrh(f0, f0), ErrSameFace)
	})

	t.Run("kfmrh face with hole", func(t *testing.T) {
		s, f0, f1 := frame(t)
		assert.ErrorIs(t, s.KfMrh(f0, f1), ErrFaceHasHoles)
	})

	t.Run("sweep zero direction", func(t *testing.T) {
		s := NewStore()
		_, f1, _ := square(t, s)
		assert.ErrorIs(t, s.Sweep(f1, r3.Vec{}, 1), ErrZeroDirection)
	})

	t.Run("sweep empty face", func(t *testing.T) {
		s := NewStore()
		_, f, _ := s.Mvfs(r3.Vec{})
		assert.ErrorIs(t, s.Sweep(f, r3.Vec{Z: 1}, 1), ErrEmptyLoop)
	})
}

func TestKfMrh(t *testing.T) {
	s := NewStore()
	f0, f1, vs := square(t, s)
	// Split the top face along its diagonal; the new triangle has one loop.
	f2, _, err := s.MefFace(vs[0], vs[2], f0)
	require.NoError(t, err)

	require.NoError(t, s.KfMrh(f1, f2))
	_, ok := s.Face(f2)
	assert.False(t, ok)

	loops := 0
	for l := range s.Loops(f1) {
		loop, _ := s.Loop(l)
		assert.Equal(t, f1, loop.Face)
		loops++
	}
	assert.Equal(t, 2, loops)
	require.NoError(t, s.Validate())
}

func TestKfMrhAcrossSolids(t *testing.T) {
	s := NewStore()
	f0, _, _ := square(t, s)
	_, g1, _ := square(t, s)

	assert.ErrorIs(t, s.KfMrh(f0, g1), ErrOtherSolid)
	_, ok := s.Face(g1)
	assert.True(t, ok)
	require.NoError(t, s.Validate())
}

func TestPrintFace(t *testing.T) {
	s := NewStore()
	f0, _, _ := square(t, s)

	var buf bytes.Buffer
	require.NoError(t, s.PrintFace(&buf, f0))
	assert.Equal(t,
		"f0  l0  he0  v3 : 0 1 0\n"+
			"f0  l0  he1  v0 : 0 0 0\n"+
			"f0  l0  he2  v1 : 1 0 0\n"+
			"f0  l0  he3  v2 : 1 1 0\n",
		buf.String())

	buf.Reset()
	require.NoError(t, s.Print(&buf))
	assert.Equal(t, 8, bytes.Count(buf.Bytes(), []byte("\n")))
}
