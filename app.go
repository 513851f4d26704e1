package main

import (
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/chazu/stratum/pkg/composite"
	"github.com/chazu/stratum/pkg/engine"
	"github.com/chazu/stratum/pkg/mesh"
	"github.com/chazu/stratum/pkg/scene"
)

// colorPalette is a default palette used to colour layers that set none.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App runs the pipeline from scene source to a sorted draw list.
type App struct {
	engine     *engine.Engine
	compositor composite.Compositor
}

// EvalErrorData is a JSON-serializable evaluation or validation finding.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of one evaluation.
type EvalResult struct {
	Draws    []composite.Draw `json:"draws"`
	Stats    composite.Stats  `json:"stats"`
	Meshes   []*mesh.Mesh     `json:"meshes"`
	Errors   []EvalErrorData  `json:"errors"`
	Warnings []EvalErrorData  `json:"warnings"`

	builder *mesh.Builder
}

// NewApp creates a new App. c carries the viewer and frustum; its Drawer
// is replaced by a mesh builder on every evaluation.
func NewApp(c composite.Compositor) *App {
	return &App{
		engine:     engine.NewEngine(),
		compositor: c,
	}
}

func newResult() EvalResult {
	return EvalResult{
		Draws:    []composite.Draw{},
		Meshes:   []*mesh.Mesh{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}
}

// Evaluate takes DSL source and returns the draw list, meshes and errors.
func (a *App) Evaluate(source string) EvalResult {
	result := newResult()

	// Step 1: Evaluate the source into a scene.
	s, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		logs.Warn(err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	// Step 2: Convert eval errors to the result format.
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	return a.render(s, result)
}

// EvaluateScene validates and composites an already built scene.
func (a *App) EvaluateScene(s *scene.Scene) EvalResult {
	return a.render(s, newResult())
}

func (a *App) render(s *scene.Scene, result EvalResult) EvalResult {
	// Step 3: Validate. Errors stop the pipeline, warnings are passed on.
	findings := scene.Validate(s)
	for _, f := range findings {
		data := EvalErrorData{Message: f.Error()}
		if f.Severity == scene.SeverityError {
			result.Errors = append(result.Errors, data)
		} else {
			result.Warnings = append(result.Warnings, data)
		}
	}
	if scene.HasErrors(findings) {
		return result
	}

	// Step 4: Sort and draw the layers into meshes.
	builder := mesh.NewBuilder()
	c := a.compositor
	c.Drawer = builder

	frame, err := c.Composite(s)
	if err != nil {
		logs.WithTag("scene", s.Name).Warn(err)
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "compositing failed: " + err.Error(),
		})
		return result
	}

	result.Draws = append(result.Draws, frame.Draws...)
	result.Stats = frame.Stats
	for i, m := range builder.Meshes() {
		if m.Color == "" {
			m.Color = colorPalette[i%len(colorPalette)]
		}
		result.Meshes = append(result.Meshes, m)
	}
	result.builder = builder
	return result
}

// SaveSTL writes the result's triangles to path.
func (r EvalResult) SaveSTL(path string) error {
	if r.builder == nil {
		return mesh.NewBuilder().SaveSTL(path)
	}
	return r.builder.SaveSTL(path)
}
