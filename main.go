package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/chazu/stratum/pkg/bsp"
	"github.com/chazu/stratum/pkg/composite"
	"github.com/chazu/stratum/pkg/scene"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/encoding/json"
)

// The stratum version number. Set at build.
var version = "v0.1.0"

// This will effectively disable obfuscation of the config struct. Without it, the keys would get obfuscated causing the cli package to generate garbled command-line options.
// https://github.com/burrowers/garble/issues/403
var _ = reflect.TypeOf(config{})

type config struct {
	Scene       string  `cli:""        env:"STRATUM_SCENE"        help:"The scene to composite: a .json document or DSL source."`
	Output      string  `cli:""        env:"STRATUM_OUTPUT"       help:"Where the draw list is written. Empty writes to stdout."`
	STL         string  `cli:""        env:"STRATUM_STL"          help:"Optional STL file receiving the composited fragments."`
	MetricsFile string  `cli:",hidden" env:"STRATUM_METRICS_FILE" help:"Optional file receiving the compositor metrics in text format."`
	Viewer      string  `cli:""        env:"STRATUM_VIEWER"       help:"Viewer model (axis|eye)."`
	ViewX       float64 `cli:""        env:"STRATUM_VIEW_X"       help:"X of the view direction (axis) or eye position (eye)."`
	ViewY       float64 `cli:""        env:"STRATUM_VIEW_Y"       help:"Y of the view direction (axis) or eye position (eye)."`
	ViewZ       float64 `cli:""        env:"STRATUM_VIEW_Z"       help:"Z of the view direction (axis) or eye position (eye)."`
	Near        float64 `cli:""        env:"STRATUM_NEAR"         help:"Near clipping depth along the line of sight."`
	Far         float64 `cli:""        env:"STRATUM_FAR"          help:"Far clipping depth along the line of sight. Zero disables clipping."`
	LogLevel    string  `cli:""        env:"STRATUM_LOG_LEVEL"    help:"Log level (debug|info|warning|error)."`
	LogIndent   bool    `cli:""        env:"STRATUM_LOG_INDENT"   help:"Indent logs."`
	Version     bool    `cli:""        env:"-"                    help:"Show version."`
	Help        bool    `cli:""        env:"-"                    help:"Show help."`
}

func main() {
	conf := config{
		Viewer:   "axis",
		ViewZ:    1,
		LogLevel: logs.InfoLevel.String(),
	}

	cli.Register().
		Help("Sorts the layers of a scene back to front and writes the draw list.").
		Options(&conf)
	cli.Load()

	if conf.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	if conf.LogIndent {
		logs.Encoder = func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		}
	}

	errors.Encoder = json.Marshal

	compositor, err := newCompositor(conf)
	if err != nil {
		logs.Fatal(err)
	}

	result, err := run(NewApp(compositor), conf.Scene)
	if err != nil {
		logs.Fatal(err)
	}

	for _, w := range result.Warnings {
		logs.WithTag("scene", conf.Scene).Warn(errors.New(w.Message))
	}
	if len(result.Errors) != 0 {
		for _, e := range result.Errors {
			logs.WithTag("scene", conf.Scene).
				WithTag("line", e.Line).
				Error(errors.New(e.Message))
		}
		os.Exit(1)
	}

	if err := writeDrawList(conf.Output, result); err != nil {
		logs.Fatal(err)
	}

	if conf.STL != "" {
		if err := result.SaveSTL(conf.STL); err != nil {
			logs.Fatal(err)
		}
	}

	if conf.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(conf.MetricsFile, prometheus.DefaultGatherer); err != nil {
			logs.Fatal(errors.New("writing metrics failed").
				WithTag("path", conf.MetricsFile).
				Wrap(err))
		}
	}

	logs.WithTag("scene", conf.Scene).
		WithTag("layers", result.Stats.Layers).
		WithTag("splits", result.Stats.Splits).
		WithTag("fragments", result.Stats.Fragments).
		Info("scene composited")
}

func newCompositor(conf config) (composite.Compositor, error) {
	view := v3.Vec{X: conf.ViewX, Y: conf.ViewY, Z: conf.ViewZ}

	var c composite.Compositor
	switch conf.Viewer {
	case "axis":
		if view.Length() == 0 {
			return c, errors.New("axis viewer needs a non-zero direction")
		}
		c.Viewer = bsp.Along(view)
		if conf.Far != 0 {
			c.Frustum = composite.DepthClip(v3.Vec{}, view.MulScalar(-1), conf.Near, conf.Far)
		}

	case "eye":
		c.Viewer = bsp.At(view)
		if conf.Far != 0 {
			c.Frustum = composite.DepthClip(view, view.MulScalar(-1), conf.Near, conf.Far)
		}

	default:
		return c, errors.Newf("unknown viewer %q", conf.Viewer).
			WithTag("expected", "axis|eye")
	}
	return c, nil
}

// run loads path and evaluates it. JSON documents are decoded directly;
// anything else is treated as DSL source.
func run(app *App, path string) (EvalResult, error) {
	if path == "" {
		return EvalResult{}, errors.New("no scene given").
			WithTag("option", "-scene")
	}

	f, err := os.Open(path)
	if err != nil {
		return EvalResult{}, errors.New("opening scene failed").
			WithTag("path", path).
			Wrap(err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		s, err := scene.Decode(f)
		if err != nil {
			return EvalResult{}, errors.New("decoding scene failed").
				WithType(errors.Type(err)).
				WithTag("path", path).
				Wrap(err)
		}
		return app.EvaluateScene(s), nil
	}

	source, err := io.ReadAll(f)
	if err != nil {
		return EvalResult{}, errors.New("reading scene failed").
			WithTag("path", path).
			Wrap(err)
	}
	return app.Evaluate(string(source)), nil
}

// writeDrawList writes the result as indented JSON to path, or to stdout
// when path is empty.
func writeDrawList(path string, result EvalResult) error {
	b, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return errors.New("encoding draw list failed").Wrap(err)
	}
	b = append(b, '\n')

	if path == "" {
		_, err = os.Stdout.Write(b)
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return errors.New("writing draw list failed").
			WithTag("path", path).
			Wrap(err)
	}
	return nil
}
