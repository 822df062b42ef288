// annotations.go defines the @tm3d: annotation syntax used by the engine's WGSL shaders.
// Annotations are single-line WGSL comments that declare, at authoring time, the vertex
// layout a shader consumes, the shape of its texture bind group, its entry points and the
// fixed-function state it wants. The renderer never inspects WGSL code itself; everything it
// needs to build pipelines comes from these declarations.
//
// Older shader sources carried bare state sentinels (@NoDepthTest, @NoBlend, ...) anywhere in
// the text. Those are still honoured so such sources keep their behaviour.
package shader

import (
	"bufio"
	"fmt"
	"slices"
	"strings"
)

// annotationPrefix is the marker that identifies an annotation within a WGSL comment line.
const annotationPrefix = "@tm3d:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// AnnotationTypeLayout declares the vertex input layout.
	//
	// Syntax: //@tm3d:layout <immediate|mesh>
	AnnotationTypeLayout AnnotationType = "layout"

	// AnnotationTypeBindings declares the texture bind group shape.
	//
	// Syntax: //@tm3d:bindings <diffuse|resolve|terrain>
	AnnotationTypeBindings AnnotationType = "bindings"

	// AnnotationTypeState toggles fixed-function state away from the defaults. Several
	// arguments may be given on one line.
	//
	// Syntax: //@tm3d:state <no_depth_test|no_depth_write|no_blend|clamp_diffuse|point_sample>...
	AnnotationTypeState AnnotationType = "state"

	// AnnotationTypeEntry overrides the vertex and fragment entry point names.
	//
	// Syntax: //@tm3d:entry <vertex_fn> <fragment_fn>
	AnnotationTypeEntry AnnotationType = "entry"
)

// AnnotationArg is a typed argument of an annotation.
type AnnotationArg string

const (
	annotationArgImmediate AnnotationArg = "immediate"
	annotationArgMesh      AnnotationArg = "mesh"

	annotationArgDiffuse AnnotationArg = "diffuse"
	annotationArgResolve AnnotationArg = "resolve"
	annotationArgTerrain AnnotationArg = "terrain"

	AnnotationArgNoDepthTest  AnnotationArg = "no_depth_test"
	AnnotationArgNoDepthWrite AnnotationArg = "no_depth_write"
	AnnotationArgNoBlend      AnnotationArg = "no_blend"
	AnnotationArgClampDiffuse AnnotationArg = "clamp_diffuse"
	AnnotationArgPointSample  AnnotationArg = "point_sample"
)

var validStateArgs = []AnnotationArg{
	AnnotationArgNoDepthTest,
	AnnotationArgNoDepthWrite,
	AnnotationArgNoBlend,
	AnnotationArgClampDiffuse,
	AnnotationArgPointSample,
}

// legacySentinels maps the bare state markers of older shader sources to their state argument.
var legacySentinels = map[string]AnnotationArg{
	"@NoDepthTest":           AnnotationArgNoDepthTest,
	"@NoDepthWrite":          AnnotationArgNoDepthWrite,
	"@NoBlend":               AnnotationArgNoBlend,
	"@DiffuseTextureClamped": AnnotationArgClampDiffuse,
	"@TexturesPointSample":   AnnotationArgPointSample,
}

// Annotation is a single parsed @tm3d: annotation.
type Annotation struct {
	// Type identifies which annotation was parsed.
	Type AnnotationType

	// Args holds the annotation's arguments in source order.
	Args []AnnotationArg

	// Line is the 1-based source line, used for error reporting.
	Line int
}

// parseAnnotation attempts to parse a single line of WGSL source as a @tm3d: annotation.
// Returns nil with no error for lines that do not contain the annotation prefix.
//
// Parameters:
//   - line: the raw WGSL source line to parse
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a descriptive error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "//") {
		return nil, nil
	}
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @tm3d annotation", lineNum)
	}

	a := &Annotation{Type: AnnotationType(args[0]), Line: lineNum}
	for _, arg := range args[1:] {
		a.Args = append(a.Args, AnnotationArg(arg))
	}

	switch a.Type {
	case AnnotationTypeLayout:
		if len(a.Args) != 1 || (a.Args[0] != annotationArgImmediate && a.Args[0] != annotationArgMesh) {
			return nil, fmt.Errorf("line %d: @tm3d layout requires one of immediate, mesh", lineNum)
		}
	case AnnotationTypeBindings:
		if len(a.Args) != 1 || !slices.Contains([]AnnotationArg{annotationArgDiffuse, annotationArgResolve, annotationArgTerrain}, a.Args[0]) {
			return nil, fmt.Errorf("line %d: @tm3d bindings requires one of diffuse, resolve, terrain", lineNum)
		}
	case AnnotationTypeState:
		if len(a.Args) == 0 {
			return nil, fmt.Errorf("line %d: @tm3d state requires at least one argument", lineNum)
		}
		for _, arg := range a.Args {
			if !slices.Contains(validStateArgs, arg) {
				return nil, fmt.Errorf("line %d: unknown state %q in @tm3d state annotation", lineNum, arg)
			}
		}
	case AnnotationTypeEntry:
		if len(a.Args) != 2 {
			return nil, fmt.Errorf("line %d: @tm3d entry requires a vertex and a fragment function name", lineNum)
		}
	default:
		return nil, fmt.Errorf("line %d: unknown @tm3d annotation type %q", lineNum, args[0])
	}
	return a, nil
}

// applyAnnotations scans the shader source once and folds every annotation and legacy
// sentinel into the shader's layout, bindings, entry points and flags.
func (s *shader) applyAnnotations() error {
	scanner := bufio.NewScanner(strings.NewReader(s.source))
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		a, err := parseAnnotation(scanner.Text(), lineNum)
		if err != nil {
			return err
		}
		if a == nil {
			continue
		}
		switch a.Type {
		case AnnotationTypeLayout:
			s.layout = VertexLayoutImmediate
			if a.Args[0] == annotationArgMesh {
				s.layout = VertexLayoutMesh
			}
		case AnnotationTypeBindings:
			switch a.Args[0] {
			case annotationArgResolve:
				s.bindings = BindingsResolve
			case annotationArgTerrain:
				s.bindings = BindingsTerrain
			default:
				s.bindings = BindingsDiffuse
			}
		case AnnotationTypeState:
			for _, arg := range a.Args {
				s.flags.apply(arg)
			}
		case AnnotationTypeEntry:
			s.vertexEntry = string(a.Args[0])
			s.fragEntry = string(a.Args[1])
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	for sentinel, arg := range legacySentinels {
		if strings.Contains(s.source, sentinel) {
			s.flags.apply(arg)
		}
	}
	return nil
}

func (f *Flags) apply(arg AnnotationArg) {
	switch arg {
	case AnnotationArgNoDepthTest:
		f.DepthTest = false
	case AnnotationArgNoDepthWrite:
		f.DepthWrite = false
	case AnnotationArgNoBlend:
		f.AlphaBlend = false
	case AnnotationArgClampDiffuse:
		f.DiffuseClamped = true
	case AnnotationArgPointSample:
		f.PointSample = true
	}
}
