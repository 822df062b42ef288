package terrain

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/tm3d-go/common"
	"github.com/Carmen-Shannon/tm3d-go/engine/renderer"
)

// Grid is the generated height field of an N x N heightmap: one height and one normal per pixel,
// row-major with rows along Z.
type Grid struct {
	N       int              `msgpack:"n"`
	Heights []float32        `msgpack:"heights"`
	Normals []common.Vector3 `msgpack:"normals"`
}

// Generate builds the height field of a heightmap. N is the bitmap height; columns beyond the
// bitmap width decode as 0. Each row is one task on pool, or all rows run on the caller when pool
// is nil.
//
// Normals come from the central difference normalize(h(x-1) - h(x+1), 2, h(z-1) - h(z+1)) where
// neighbours past an edge wrap around to the opposite edge.
//
// Parameters:
//   - bmp: the heightmap
//   - pool: optional worker pool for the row tasks
//
// Returns:
//   - *Grid: the height field
//   - error: an error if the heightmap is smaller than 2 x 2
func Generate(bmp *common.Bitmap, pool worker.DynamicWorkerPool) (*Grid, error) {
	if bmp == nil || bmp.Height < 2 || bmp.Width < 1 {
		return nil, fmt.Errorf("heightmap must be at least 2 pixels high")
	}
	n := bmp.Height
	g := &Grid{
		N:       n,
		Heights: make([]float32, n*n),
		Normals: make([]common.Vector3, n*n),
	}

	if pool == nil {
		for i := range n {
			g.generateRow(bmp, i)
		}
		return g, nil
	}

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		row := i
		pool.SubmitTask(worker.Task{
			ID: row,
			Do: func() (any, error) {
				defer wg.Done()
				g.generateRow(bmp, row)
				return nil, nil
			},
		})
	}
	wg.Wait()
	return g, nil
}

// generateRow fills row i. Rows touch disjoint slices so they may run concurrently.
func (g *Grid) generateRow(bmp *common.Bitmap, i int) {
	n := g.N
	for j := range n {
		g.Heights[i*n+j] = Decode(bmp, j, i)
		g.Normals[i*n+j] = normalAt(bmp, n, j, i)
	}
}

// normalAt estimates the surface normal at column x, row z of an n x n grid.
func normalAt(bmp *common.Bitmap, n, x, z int) common.Vector3 {
	left := Decode(bmp, wrap(x-1, n), z)
	right := Decode(bmp, wrap(x+1, n), z)
	down := Decode(bmp, x, wrap(z-1, n))
	up := Decode(bmp, x, wrap(z+1, n))
	return common.Vector3{X: left - right, Y: 2, Z: down - up}.NormalizeOrZero()
}

func wrap(i, n int) int {
	return ((i % n) + n) % n
}

// Vertices returns the mesh vertices of the grid. Vertex (row i, column j) sits at
// x = -j/(N-1)*Size, z = -i/(N-1)*Size with uv (j/(N-1), i/(N-1)).
func (g *Grid) Vertices() []renderer.MeshVertex {
	n := g.N
	last := float32(n - 1)
	vertices := make([]renderer.MeshVertex, 0, n*n)
	for i := range n {
		for j := range n {
			u := float32(j) / last
			v := float32(i) / last
			vertices = append(vertices, renderer.MeshVertex{
				Position: common.Vector3{X: -u * Size, Y: g.Heights[i*n+j], Z: -v * Size},
				UV:       common.Vector2{X: u, Y: v},
				Normal:   g.Normals[i*n+j],
			})
		}
	}
	return vertices
}

// Indices returns the triangle list of the grid, two triangles per cell in cellTriangles order.
func (g *Grid) Indices() []uint32 {
	n := g.N
	indices := make([]uint32, 0, 6*(n-1)*(n-1))
	for gz := range n - 1 {
		for gx := range n - 1 {
			for _, tri := range cellTriangles {
				for _, c := range tri {
					indices = append(indices, uint32((gz+c.dz)*n+gx+c.dx))
				}
			}
		}
	}
	return indices
}
