package engine

import (
	"fmt"
	"strings"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/chazu/stratum/pkg/scene"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms stratum Lisp source code before passing it to
// zygomys. It performs three transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: layer-ref -> layer_ref
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator).
//
//  3. Line comments: ; and ;; become //, the zygomys comment syntax.
//
// All transformations respect string literal boundaries.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		switch {
		case b[i] == '"':
			j := skipQuoted(b, i)
			result = append(result, b[i:j]...)
			i = j
			continue

		case b[i] == '`':
			j := i + 1
			for j < len(b) && b[j] != '`' {
				j++
			}
			if j < len(b) {
				j++
			}
			result = append(result, b[i:j]...)
			i = j
			continue

		case b[i] == ';':
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue

		case b[i] == ':' && i+1 < len(b) && b[i+1] == '=':
			result = append(result, b[i], b[i+1])
			i += 2
			continue

		case b[i] == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			result = append(result, '"')
			result = append(result, kwPrefix...)
			result = append(result, b[i+1:j]...)
			result = append(result, '"')
			i = j
			continue

		// Only when the hyphen sits between identifier characters; a lone
		// minus is the subtraction operator.
		case b[i] == '-' && i > 0 && i+1 < len(b) && isIdentChar(b[i-1]) && isLetter(b[i+1]):
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

// skipQuoted returns the index just past the double-quoted literal that
// starts at b[i].
func skipQuoted(b []byte, i int) int {
	j := i + 1
	for j < len(b) && b[j] != '"' {
		if b[j] == '\\' && j+1 < len(b) {
			j += 2
			continue
		}
		j++
	}
	if j < len(b) {
		j++
	}
	return j
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpNodeRef wraps a scene.NodeID so it can be passed between builtins.
type sexpNodeRef struct {
	id   scene.NodeID
	name string // human-readable name for error messages
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	if n.name != "" {
		return fmt.Sprintf("(noderef %q)", n.name)
	}
	return fmt.Sprintf("(noderef %s)", n.id.Short())
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a scene.Vec3.
type sexpVec3 struct {
	vec scene.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, errors.Newf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", errors.Newf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toNodeRef extracts a node reference from a sexpNodeRef.
func toNodeRef(s zygo.Sexp) (*sexpNodeRef, error) {
	if ref, ok := s.(*sexpNodeRef); ok {
		return ref, nil
	}
	return nil, errors.Newf("expected node reference, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (*scene.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		vec := v.vec
		return &vec, nil
	}
	return nil, errors.Newf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// floatArg reads an optional numeric keyword argument into dst.
func floatArg(pa kwArgs, form, key string, dst *float64) error {
	v, ok := pa.kw[key]
	if !ok {
		return nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return errors.Newf("%s: %s", form, key).Wrap(err)
	}
	*dst = f
	return nil
}

// vecArg reads an optional vec3 keyword argument into dst.
func vecArg(pa kwArgs, form, key string, dst **scene.Vec3) error {
	v, ok := pa.kw[key]
	if !ok {
		return nil
	}
	vec, err := toVec3(v)
	if err != nil {
		return errors.Newf("%s: %s", form, key).Wrap(err)
	}
	*dst = vec
	return nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// builder carries the scene under construction through one evaluation.
type builder struct {
	scene  *scene.Scene
	places int
}

// adopt removes id from the scene roots once it becomes another node's
// child, so that it is composited only once.
func (b *builder) adopt(id scene.NodeID) {
	roots := b.scene.Roots[:0]
	for _, r := range b.scene.Roots {
		if r != id {
			roots = append(roots, r)
		}
	}
	b.scene.Roots = roots
}

// registerBuiltins installs all stratum DSL builtins into a zygomys
// environment. The builtins populate s during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, s *scene.Scene) {
	b := &builder{scene: s}

	// -----------------------------------------------------------------------
	// (layer "name" :width 200 :height 120 :color "#ff8800" :opacity 0.5)
	// -----------------------------------------------------------------------
	env.AddFunction("layer", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, errors.New("layer requires a name argument")
		}
		layerName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, errors.New("layer: name").Wrap(err)
		}
		if s.Lookup(layerName) != nil {
			return zygo.SexpNull, errors.Newf("layer: name %q is already defined", layerName)
		}

		ld := scene.LayerData{Opacity: scene.DefaultOpacity}
		if err := floatArg(pa, "layer", "width", &ld.Width); err != nil {
			return zygo.SexpNull, err
		}
		if err := floatArg(pa, "layer", "height", &ld.Height); err != nil {
			return zygo.SexpNull, err
		}
		if err := floatArg(pa, "layer", "opacity", &ld.Opacity); err != nil {
			return zygo.SexpNull, err
		}
		if v, ok := pa.kw["color"]; ok {
			c, err := toString(v)
			if err != nil {
				return zygo.SexpNull, errors.New("layer: color").Wrap(err)
			}
			ld.Color = c
		}

		id := scene.NewNodeID("layer/" + layerName)
		s.AddNode(&scene.Node{
			ID:   id,
			Kind: scene.NodeLayer,
			Name: layerName,
			Data: ld,
		})
		return &sexpNodeRef{id: id, name: layerName}, nil
	})

	// -----------------------------------------------------------------------
	// (layer-ref "name")
	// -----------------------------------------------------------------------
	env.AddFunction("layer_ref", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, errors.New("layer-ref requires a name argument")
		}
		refName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, errors.New("layer-ref: name").Wrap(err)
		}
		n := s.Lookup(refName)
		if n == nil {
			return zygo.SexpNull, errors.Newf("layer-ref: no node named %q", refName)
		}
		return &sexpNodeRef{id: n.ID, name: refName}, nil
	})

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, errors.Newf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var c [3]float64
		for i, axis := range []string{"x", "y", "z"} {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, errors.Newf("vec3: %s", axis).Wrap(err)
			}
			c[i] = f
		}
		return &sexpVec3{vec: scene.Vec3{X: c[0], Y: c[1], Z: c[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (place (layer-ref "card") :at (vec3 0 0 10) :rotate (vec3 0 45 0)
	//        :scale (vec3 2 2 1))
	// -----------------------------------------------------------------------
	env.AddFunction("place", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, errors.New("place requires a node reference as first argument")
		}
		child, err := toNodeRef(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, errors.New("place: child").Wrap(err)
		}

		td := scene.TransformData{}
		if err := vecArg(pa, "place", "at", &td.Translation); err != nil {
			return zygo.SexpNull, err
		}
		if err := vecArg(pa, "place", "rotate", &td.Rotation); err != nil {
			return zygo.SexpNull, err
		}
		if err := vecArg(pa, "place", "scale", &td.Scale); err != nil {
			return zygo.SexpNull, err
		}

		// The sequence number keeps IDs unique when a node is placed twice
		// and deterministic across evaluations of the same source.
		b.places++
		label := child.name
		if label == "" {
			label = child.id.Short()
		}
		id := scene.NewNodeID(fmt.Sprintf("place/%s/%d", label, b.places))

		b.adopt(child.id)
		s.AddNode(&scene.Node{
			ID:       id,
			Kind:     scene.NodeTransform,
			Children: []scene.NodeID{child.id},
			Data:     td,
		})
		return &sexpNodeRef{id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (group "name" (place ...) (layer-ref ...) ...)
	// -----------------------------------------------------------------------
	env.AddFunction("group", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, errors.New("group requires a name argument")
		}
		groupName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, errors.New("group: name").Wrap(err)
		}
		if s.Lookup(groupName) != nil {
			return zygo.SexpNull, errors.Newf("group: name %q is already defined", groupName)
		}

		var children []scene.NodeID
		for i := 1; i < len(args); i++ {
			ref, ok := args[i].(*sexpNodeRef)
			if !ok {
				return zygo.SexpNull, errors.Newf("group: child %d: expected node reference, got %T (%s)",
					i, args[i], args[i].SexpString(nil))
			}
			b.adopt(ref.id)
			children = append(children, ref.id)
		}

		id := scene.NewNodeID("group/" + groupName)
		s.AddNode(&scene.Node{
			ID:       id,
			Kind:     scene.NodeGroup,
			Name:     groupName,
			Children: children,
			Data:     scene.GroupData{},
		})
		s.AddRoot(id)
		return &sexpNodeRef{id: id, name: groupName}, nil
	})
}
