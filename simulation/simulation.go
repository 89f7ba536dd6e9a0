// Package simulation bundles a harness with the services that observe it:
// the recorder, the trace database and the monitor.
package simulation

import (
	"context"
	"log"

	"github.com/sarchlab/ahbsim/ahb"
	"github.com/sarchlab/ahbsim/ahb/master"
	"github.com/sarchlab/ahbsim/datarecording"
	"github.com/sarchlab/ahbsim/monitoring"
	"github.com/sarchlab/ahbsim/sim"
	"github.com/sarchlab/ahbsim/tracing"
)

// A Simulation provides the service requires to define a simulation.
type Simulation struct {
	id      string
	harness *sim.Harness

	dataRecorder datarecording.DataRecorder
	monitor      *monitoring.Monitor
	monitorURL   string
	visTracer    *tracing.DBTracer
	logger       *log.Logger

	components    []sim.Component
	compNameIndex map[string]int
	terminated    bool
}

// A driverOwner is a component that drives the bus as a master.
type driverOwner interface {
	Driver() *master.Driver
}

// ID returns the unique ID of the simulation run.
func (s *Simulation) ID() string {
	return s.id
}

// GetHarness returns the harness that drives the simulation.
func (s *Simulation) GetHarness() *sim.Harness {
	return s.harness
}

// GetDataRecorder returns the data recorder used in the simulation. It is nil
// if recording is off.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetMonitor returns the monitor used in the simulation. It is nil if
// monitoring is off.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// MonitorURL returns the address of the monitoring server.
func (s *Simulation) MonitorURL() string {
	return s.monitorURL
}

// GetVisTracer returns the tracer used in the simulation. It is nil if
// recording is off.
func (s *Simulation) GetVisTracer() *tracing.DBTracer {
	return s.visTracer
}

// RegisterComponent registers a component with the harness and the monitor.
// The transfers of bus masters are reported as tasks that tracers can
// collect from the master's driver. They are recorded when recording is on.
func (s *Simulation) RegisterComponent(c sim.Component) {
	compName := c.Name()
	if _, found := s.compNameIndex[compName]; found {
		panic("component " + compName + " already registered")
	}

	s.harness.Register(c)

	s.components = append(s.components, c)
	s.compNameIndex[compName] = len(s.components) - 1

	if s.monitor != nil {
		s.monitor.RegisterComponent(c)
	}

	if owner, ok := c.(driverOwner); ok {
		s.observeDriver(owner.Driver())
	}
}

func (s *Simulation) observeDriver(d *master.Driver) {
	if s.logger != nil {
		d.AcceptHook(ahb.NewTransferLogger(s.logger))
	}

	tracing.TraceTransfers(d)

	if s.visTracer != nil {
		tracing.CollectTrace(d, s.visTracer)
	}
}

// GetComponentByName returns the component with the given name.
func (s *Simulation) GetComponentByName(name string) sim.Component {
	i, found := s.compNameIndex[name]
	if !found {
		return nil
	}

	return s.components[i]
}

// Components returns all the registered components.
func (s *Simulation) Components() []sim.Component {
	return s.components
}

// Run runs the harness until it exits, it cannot make progress, or the
// context is cancelled.
func (s *Simulation) Run(ctx context.Context) error {
	return s.harness.Run(ctx)
}

// Terminate writes the unfinished tasks, closes the recorder and stops the
// monitor. It is safe to call more than once.
func (s *Simulation) Terminate() {
	if s.terminated {
		return
	}

	s.terminated = true

	if s.visTracer != nil {
		s.visTracer.Terminate()
	}

	if s.dataRecorder != nil {
		if err := s.dataRecorder.Close(); err != nil {
			log.Printf("failed to close the recorder: %v", err)
		}
	}

	if s.monitor != nil {
		s.monitor.StopServer()
	}
}
