package project

import (
	"errors"
	"fmt"
)

// Container errors.
var (
	ErrFrozen     = errors.New("container is frozen")
	ErrCycle      = errors.New("entity depends on itself")
	ErrDuplicate  = errors.New("duplicate entity")
	ErrNotAllowed = errors.New("entity kind not allowed here")
)

// Scope is a container entities are deduplicated in. Resolvers work
// against it so the same code fills assemblies and the scene.
type Scope interface {
	// GetOrCreate returns the entity of kind k named name, calling build to
	// create it when the container has none. While build runs the name is
	// marked pending: asking for it again from inside build fails with
	// ErrCycle.
	GetOrCreate(k Kind, name string, build func() (Entity, error)) (Entity, error)

	// Lookup returns an existing entity.
	Lookup(k Kind, name string) (Entity, bool)
}

type entityKey struct {
	kind Kind
	name string
}

// entities is an ordered, indexed entity set shared by Assembly and Scene.
// Each kind keeps insertion order; emission walks kinds in a fixed order.
type entities struct {
	allowed [kindCount]bool
	lists   [kindCount][]Entity
	index   map[entityKey]Entity
	pending map[entityKey]bool
	frozen  bool
}

func newEntities(kinds ...Kind) entities {
	e := entities{
		index:   make(map[entityKey]Entity),
		pending: make(map[entityKey]bool),
	}
	for _, k := range kinds {
		e.allowed[k] = true
	}
	return e
}

// GetOrCreate implements Scope.
func (c *entities) GetOrCreate(k Kind, name string, build func() (Entity, error)) (Entity, error) {
	key := entityKey{k, name}
	if e, ok := c.index[key]; ok {
		return e, nil
	}
	if c.pending[key] {
		return nil, fmt.Errorf("%w: %s %q", ErrCycle, k, name)
	}
	if c.frozen {
		return nil, fmt.Errorf("%w: cannot add %s %q", ErrFrozen, k, name)
	}

	c.pending[key] = true
	e, err := build()
	delete(c.pending, key)
	if err != nil {
		return nil, err
	}
	if e.Kind() != k || e.EntityName() != name {
		return nil, fmt.Errorf("built %s %q while creating %s %q", e.Kind(), e.EntityName(), k, name)
	}
	if err := c.insert(e); err != nil {
		return nil, err
	}
	return e, nil
}

// Lookup implements Scope.
func (c *entities) Lookup(k Kind, name string) (Entity, bool) {
	e, ok := c.index[entityKey{k, name}]
	return e, ok
}

// Add inserts e, failing if an entity of the same kind and name exists.
func (c *entities) Add(e Entity) error {
	if c.frozen {
		return fmt.Errorf("%w: cannot add %s %q", ErrFrozen, e.Kind(), e.EntityName())
	}
	if _, ok := c.index[entityKey{e.Kind(), e.EntityName()}]; ok {
		return fmt.Errorf("%w: %s %q", ErrDuplicate, e.Kind(), e.EntityName())
	}
	return c.insert(e)
}

func (c *entities) insert(e Entity) error {
	k := e.Kind()
	if k < 0 || k >= kindCount || !c.allowed[k] {
		return fmt.Errorf("%w: %s %q", ErrNotAllowed, k, e.EntityName())
	}
	c.index[entityKey{k, e.EntityName()}] = e
	c.lists[k] = append(c.lists[k], e)
	return nil
}

// Freeze rejects further additions.
func (c *entities) Freeze() {
	c.frozen = true
}

// Frozen reports whether Freeze was called.
func (c *entities) Frozen() bool {
	return c.frozen
}

// List returns the entities of kind k in insertion order.
func (c *entities) List(k Kind) []Entity {
	if k < 0 || k >= kindCount {
		return nil
	}
	return c.lists[k]
}

// Len returns the number of entities of kind k.
func (c *entities) Len(k Kind) int {
	return len(c.List(k))
}

// assemblyOrder is the order assembly contents are emitted in.
var assemblyOrder = []Kind{
	KindColor,
	KindTexture,
	KindTextureInstance,
	KindBSDF,
	KindEDF,
	KindSurfaceShader,
	KindMaterial,
	KindLight,
	KindObject,
	KindObjectInstance,
	KindAssembly,
	KindAssemblyInstance,
}

// sceneOrder is the order scene contents are emitted in, after the camera.
var sceneOrder = []Kind{
	KindColor,
	KindTexture,
	KindTextureInstance,
	KindEnvironmentEDF,
	KindEnvironmentShader,
	KindEnvironment,
	KindAssembly,
	KindAssemblyInstance,
}

// Assembly groups geometry, lights and their shading. Assemblies can nest.
type Assembly struct {
	Name string
	entities
}

// NewAssembly returns an empty assembly.
func NewAssembly(name string) *Assembly {
	return &Assembly{Name: name, entities: newEntities(assemblyOrder...)}
}

// Scene is the top-level container: the camera, scene-wide shading, the
// environment and the assemblies.
type Scene struct {
	Camera *Camera
	entities
}

// NewScene returns an empty scene.
func NewScene() *Scene {
	return &Scene{entities: newEntities(sceneOrder...)}
}

// Environment returns the scene's environment, if any.
func (s *Scene) Environment() (*Environment, bool) {
	list := s.List(KindEnvironment)
	if len(list) == 0 {
		return nil, false
	}
	return list[0].(*Environment), true
}

// Project is one exported frame: scene, output frame and render
// configurations.
type Project struct {
	Scene          *Scene
	Frame          *Frame
	Configurations []*Configuration
}
