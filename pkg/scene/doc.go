// Package scene defines the layer scene graph consumed by the compositor.
// A scene is a DAG of layers, transforms and groups. Each evaluation of a
// scene description produces a new scene; scenes are not mutated after
// they are built.
package scene
