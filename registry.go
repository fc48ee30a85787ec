package vkmesh

import "fmt"

// Cycle returns the index after i in a ring of n entries.
func Cycle(n, i int) int {
	return (i + 1) % n
}

// Registry is the ordered, fixed set of pipelines a frame can select from.
type Registry struct {
	pipelines []*Pipeline
}

// NewRegistry keeps pipelines in the given order. An empty set is ErrEmptyRegistry.
func NewRegistry(pipelines ...*Pipeline) (*Registry, error) {
	if len(pipelines) == 0 {
		return nil, ErrEmptyRegistry
	}
	return &Registry{pipelines: pipelines}, nil
}

// BuildRegistry loads and builds one pipeline per config entry, in order.
func BuildRegistry(ctx *Context, res *Resources, layout VertexLayout, configs []PipelineConfig) (*Registry, error) {
	if len(configs) == 0 {
		return nil, ErrEmptyRegistry
	}
	device := ctx.Device().Handle()
	var built []*Pipeline
	fail := func(err error) (*Registry, error) {
		for _, p := range built {
			p.Destroy()
		}
		return nil, err
	}
	for _, cfg := range configs {
		program, err := LoadProgram(device, cfg)
		if err != nil {
			return fail(err)
		}
		b := NewPipelineBuilder(program, layout, ctx.Config().Format)
		if bl, ok := res.BindingLayout(); ok {
			b.WithBindingLayout(bl)
		}
		p, err := b.Build(device, ctx.renderPass)
		program.Destroy()
		if err != nil {
			return fail(fmt.Errorf("pipeline %q: %w", cfg.Name, err))
		}
		built = append(built, p)
	}
	return NewRegistry(built...)
}

func (r *Registry) Len() int { return len(r.pipelines) }

// At returns the pipeline at index i.
func (r *Registry) At(i int) *Pipeline { return r.pipelines[i] }

// Next is the index selected after i.
func (r *Registry) Next(i int) int { return Cycle(len(r.pipelines), i) }

// Names lists the pipelines in selection order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.pipelines))
	for i, p := range r.pipelines {
		names[i] = p.Name
	}
	return names
}

func (r *Registry) Destroy() {
	for _, p := range r.pipelines {
		p.Destroy()
	}
	r.pipelines = nil
}
