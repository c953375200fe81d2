package showcase

import (
	"fmt"

	"github.com/terra-clan/portfolio/internal/models"
)

// Sink receives every recomputed view. Implementations must replace any
// previously shown output.
type Sink interface {
	Show(view View) error
}

// SinkFunc adapts a function to Sink
type SinkFunc func(view View) error

// Show calls f(view)
func (f SinkFunc) Show(view View) error {
	return f(view)
}

// Dispatcher applies selection changes to a State, recomputes the view and
// hands it to the sink, all synchronously.
type Dispatcher struct {
	pipeline *Pipeline
	state    State
	sink     Sink
}

// NewDispatcher creates a dispatcher starting from st
func NewDispatcher(pipeline *Pipeline, st State, sink Sink) *Dispatcher {
	return &Dispatcher{
		pipeline: pipeline,
		state:    st,
		sink:     sink,
	}
}

// State returns the current selection
func (d *Dispatcher) State() State {
	return d.state
}

// Load renders the current state without changing it
func (d *Dispatcher) Load() (View, error) {
	return d.publish()
}

// SelectFilter replaces one dimension and re-renders
func (d *Dispatcher) SelectFilter(dim models.Dimension, value string) (View, error) {
	st, err := d.pipeline.Select(d.state, dim, value)
	if err != nil {
		return View{}, err
	}
	d.state = st
	return d.publish()
}

// SelectSort changes the sort key and re-renders
func (d *Dispatcher) SelectSort(raw string) (View, error) {
	st, err := d.pipeline.WithSort(d.state, raw)
	if err != nil {
		return View{}, err
	}
	d.state = st
	return d.publish()
}

func (d *Dispatcher) publish() (View, error) {
	view := d.pipeline.Run(d.state)
	if d.sink != nil {
		if err := d.sink.Show(view); err != nil {
			return view, fmt.Errorf("failed to render view: %w", err)
		}
	}
	return view, nil
}
