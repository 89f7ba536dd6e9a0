package simulation

import (
	"log"

	"github.com/rs/xid"
	"github.com/sarchlab/ahbsim/datarecording"
	"github.com/sarchlab/ahbsim/monitoring"
	"github.com/sarchlab/ahbsim/sim"
	"github.com/sarchlab/ahbsim/tracing"
)

// Builder can be used to build a simulation.
type Builder struct {
	freq           sim.Freq
	skipAhead      bool
	recordOn       bool
	outputFileName string
	monitorOn      bool
	monitorPort    int
	logger         *log.Logger
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		freq: 48 * sim.MHz,
	}
}

// WithFreq sets the clock frequency of the harness.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithSkipAhead lets the harness jump over cycles in which every component is
// idle.
func (b Builder) WithSkipAhead() Builder {
	b.skipAhead = true
	return b
}

// WithRecording records the transfers of every master into a SQLite file.
func (b Builder) WithRecording() Builder {
	b.recordOn = true
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

// WithMonitoring starts a monitoring server.
func (b Builder) WithMonitoring() Builder {
	b.monitorOn = true
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithLogger logs every transfer of every master and every event of the
// harness.
func (b Builder) WithLogger(logger *log.Logger) Builder {
	b.logger = logger
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}

	if !b.recordOn && b.outputFileName != "" {
		panic("output file cannot be set when recording is disabled")
	}
}

// Build builds the simulation.
func (b Builder) Build() *Simulation {
	b.parametersMustBeValid()

	hb := sim.MakeHarnessBuilder().WithFreq(b.freq)
	if b.skipAhead {
		hb = hb.WithSkipAhead()
	}

	s := &Simulation{
		id:            xid.New().String(),
		harness:       hb.Build(),
		logger:        b.logger,
		compNameIndex: make(map[string]int),
	}

	if b.logger != nil {
		s.harness.AcceptHook(sim.NewEventLogger(b.logger))
	}

	if b.recordOn {
		outputPath := b.outputFileName
		if outputPath == "" {
			outputPath = "ahbsim_" + s.id
		}

		s.dataRecorder = datarecording.New(outputPath)
		s.visTracer = tracing.NewDBTracer(s.harness, s.dataRecorder)
	}

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			s.monitor.WithPortNumber(b.monitorPort)
		}

		s.monitor.RegisterHarness(s.harness)
		s.monitorURL = s.monitor.StartServer()
	}

	return s
}
