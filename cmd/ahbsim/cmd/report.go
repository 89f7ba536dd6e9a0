package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/sarchlab/ahbsim/ahb"
	"github.com/sarchlab/ahbsim/ahb/master"
	"github.com/sarchlab/ahbsim/sim"
	"github.com/sarchlab/ahbsim/system"
	"github.com/sarchlab/ahbsim/tracing"
)

// masterProbe collects the statistics of one master from its transfer
// tasks.
type masterProbe struct {
	master  *master.Scripted
	latency *tracing.LatencyTracer
	busy    *tracing.BusyTimeTracer
	steps   *tracing.StepCountTracer
}

func probeMasters(clock sim.CycleTeller, sys *system.System) []masterProbe {
	probes := make([]masterProbe, 0, len(sys.Masters()))

	for _, m := range sys.Masters() {
		p := masterProbe{
			master:  m,
			latency: tracing.NewLatencyTracer(clock, tracing.AllTasks),
			busy:    tracing.NewBusyTimeTracer(clock, nil),
			steps:   tracing.NewStepCountTracer(tracing.AllTasks),
		}

		tracing.CollectTrace(m.Driver(), p.latency)
		tracing.CollectTrace(m.Driver(), p.busy)
		tracing.CollectTrace(m.Driver(), p.steps)

		probes = append(probes, p)
	}

	return probes
}

type masterReport struct {
	Name      string
	Accesses  int
	Completed int
	Errors    int
	Denials   uint64
	Stalls    uint64
	LastDone  uint64
	Busy      uint64

	AvgLatency float64
	MaxLatency uint64
}

type report struct {
	Cycles  uint64
	Idle    bool
	Masters []masterReport
}

func newReport(probes []masterProbe, cycles uint64, idle bool) *report {
	r := &report{Cycles: cycles, Idle: idle}

	for _, p := range probes {
		m := p.master
		p.busy.TerminateAllTasks(cycles)

		mr := masterReport{
			Name:       m.Name(),
			Accesses:   len(m.Results()),
			Stalls:     m.Stalls(),
			Denials:    p.steps.GetStepCount(tracing.StepDenied),
			Busy:       p.busy.BusyCycles(),
			AvgLatency: p.latency.AverageCycles(),
			MaxLatency: p.latency.MaxCycles(),
		}

		for _, res := range m.Results() {
			if !res.Completed {
				continue
			}

			mr.Completed++

			if res.Resp == ahb.Error {
				mr.Errors++
			}

			if res.CompletedAt > mr.LastDone {
				mr.LastDone = res.CompletedAt
			}
		}

		r.Masters = append(r.Masters, mr)
	}

	return r
}

func (r *report) write(w io.Writer) error {
	state := "stopped"
	if r.Idle {
		state = "idle"
	}

	if _, err := fmt.Fprintf(w, "%s after %d cycles\n", state, r.Cycles); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "master\taccesses\tcompleted\terrors\tdenials\tstalls\t"+
		"busy\tavg latency\tmax latency\tlast done")

	for _, m := range r.Masters {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%.2f\t%d\t%d\n",
			m.Name, m.Accesses, m.Completed, m.Errors, m.Denials, m.Stalls,
			m.Busy, m.AvgLatency, m.MaxLatency, m.LastDone)
	}

	return tw.Flush()
}
