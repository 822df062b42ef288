package loader

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/tm3d-go/common"
)

// objCorner is one face corner with absolute, zero-based indices. A missing uv or normal is -1.
type objCorner struct {
	v, vt, vn int
}

// objLoaderBackend reads Wavefront OBJ geometry: positions, texture coordinates, normals and
// faces. Materials, groups and smoothing are ignored. Polygons with more than three corners are
// fanned into triangles.
type objLoaderBackend struct{}

var _ loaderBackend = &objLoaderBackend{}

func newOBJLoaderBackend() loaderBackend {
	return &objLoaderBackend{}
}

func (b *objLoaderBackend) Extension() string {
	return ".obj"
}

func (b *objLoaderBackend) LoadReader(r io.Reader) (*MeshData, error) {
	var (
		positions []common.Vector3
		uvs       []common.Vector2
		normals   []common.Vector3
		corners   []objCorner
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			f, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			positions = append(positions, common.Vector3{X: f[0], Y: f[1], Z: f[2]})
		case "vt":
			f, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			uvs = append(uvs, common.Vector2{X: f[0], Y: f[1]})
		case "vn":
			f, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			normals = append(normals, common.Vector3{X: f[0], Y: f[1], Z: f[2]})
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face has %d corners, want at least 3", line, len(fields)-1)
			}
			face := make([]objCorner, 0, len(fields)-1)
			for _, field := range fields[1:] {
				c, err := parseCorner(field, len(positions), len(uvs), len(normals))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
				face = append(face, c)
			}
			for i := 1; i+1 < len(face); i++ {
				corners = append(corners, face[0], face[i], face[i+1])
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(corners) == 0 {
		return nil, fmt.Errorf("model has no faces")
	}

	data := &MeshData{
		Positions: positions,
		Indices:   make([]uint32, len(corners)),
	}
	for i, c := range corners {
		data.Indices[i] = uint32(c.v)
		if c.vt >= 0 {
			if data.UVs == nil {
				data.UVs = make([]common.Vector2, len(positions))
			}
			data.UVs[c.v] = uvs[c.vt]
		}
		if c.vn >= 0 {
			if data.Normals == nil {
				data.Normals = make([]common.Vector3, len(positions))
				for j := range data.Normals {
					data.Normals[j] = common.Vector3{Y: 1}
				}
			}
			data.Normals[c.v] = normals[c.vn]
		}
	}
	return data, nil
}

// parseFloats reads the first n fields as floats. Missing trailing fields are an error, extra
// ones (such as a w component) are ignored.
func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("got %d components, want %d", len(fields), n)
	}
	out := make([]float32, n)
	for i := range n {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(f)
	}
	return out, nil
}

// parseCorner reads a face corner in the forms v, v/vt, v//vn and v/vt/vn.
func parseCorner(field string, nv, nvt, nvn int) (objCorner, error) {
	parts := strings.Split(field, "/")
	if len(parts) > 3 {
		return objCorner{}, fmt.Errorf("malformed face corner %q", field)
	}

	c := objCorner{vt: -1, vn: -1}
	var err error
	if c.v, err = resolveIndex(parts[0], nv); err != nil {
		return objCorner{}, fmt.Errorf("corner %q vertex: %w", field, err)
	}
	if len(parts) > 1 && parts[1] != "" {
		if c.vt, err = resolveIndex(parts[1], nvt); err != nil {
			return objCorner{}, fmt.Errorf("corner %q uv: %w", field, err)
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if c.vn, err = resolveIndex(parts[2], nvn); err != nil {
			return objCorner{}, fmt.Errorf("corner %q normal: %w", field, err)
		}
	}
	return c, nil
}

// resolveIndex turns a one-based OBJ index, or a negative index relative to the count read so
// far, into a zero-based index.
func resolveIndex(s string, count int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	switch {
	case i > 0 && i <= count:
		return i - 1, nil
	case i < 0 && -i <= count:
		return count + i, nil
	}
	return 0, fmt.Errorf("index %d out of range 1..%d", i, count)
}
