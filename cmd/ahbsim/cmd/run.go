package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/pkg/browser"
	"github.com/sarchlab/ahbsim/config"
	"github.com/sarchlab/ahbsim/sim"
	"github.com/sarchlab/ahbsim/simulation"
	"github.com/sarchlab/ahbsim/system"
	"github.com/spf13/cobra"
)

type runOptions struct {
	configFile  string
	envFile     string
	cycles      uint64
	skipAhead   bool
	record      bool
	output      string
	monitor     bool
	port        int
	openBrowser bool
	verbose     bool
}

var runOpts runOptions

var runCmd = &cobra.Command{
	Use:   "run [config]",
	Short: "Run a system description and report what every master did.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := runOpts
		opts.configFile = args[0]

		if err := opts.applyEnv(cmd); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		rep, err := runSystem(ctx, opts, cmd.ErrOrStderr())
		if err != nil {
			return err
		}

		return rep.write(cmd.OutOrStdout())
	},
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runOpts.envFile, "env", ".env", "file with default settings")
	f.Uint64Var(&runOpts.cycles, "cycles", 0,
		"stop after this many cycles, 0 runs until the system is idle")
	f.BoolVar(&runOpts.skipAhead, "skip-ahead", false,
		"jump over cycles in which every component is idle")
	f.BoolVar(&runOpts.record, "record", false,
		"record the transfers into a SQLite file")
	f.StringVar(&runOpts.output, "output", "",
		"name of the recording file, without the .sqlite3 suffix")
	f.BoolVar(&runOpts.monitor, "monitor", false, "start the monitoring server")
	f.IntVar(&runOpts.port, "port", 0, "port of the monitoring server")
	f.BoolVar(&runOpts.openBrowser, "open-browser", false,
		"open the monitoring page in a browser")
	f.BoolVarP(&runOpts.verbose, "verbose", "v", false,
		"log every transfer to stderr")

	rootCmd.AddCommand(runCmd)
}

// applyEnv fills the options the command line left unset from the
// environment.
func (o *runOptions) applyEnv(cmd *cobra.Command) error {
	env, err := config.LoadEnv(o.envFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()

	if !flags.Changed("record") {
		o.record = env.Record
	}

	if !flags.Changed("output") && env.Output != "" {
		o.output = env.Output
		o.record = true
	}

	if !flags.Changed("port") && env.MonitorPort != 0 {
		o.port = env.MonitorPort
		o.monitor = true
	}

	return nil
}

func (o runOptions) validate() error {
	if o.cycles > 0 && o.skipAhead {
		return errors.New("--cycles cannot be combined with --skip-ahead")
	}

	if o.output != "" && !o.record {
		return errors.New("--output needs --record")
	}

	if (o.port != 0 || o.openBrowser) && !o.monitor {
		return errors.New("--port and --open-browser need --monitor")
	}

	return nil
}

func (o runOptions) simulationBuilder(c *config.Config, logs io.Writer) simulation.Builder {
	b := simulation.MakeBuilder().WithFreq(c.Freq())

	if o.skipAhead {
		b = b.WithSkipAhead()
	}

	if o.record {
		b = b.WithRecording().WithOutputFileName(o.output)
	}

	if o.monitor {
		b = b.WithMonitoring().WithMonitorPort(o.port)
	}

	if o.verbose {
		b = b.WithLogger(log.New(logs, "", 0))
	}

	return b
}

// runSystem builds the described system and runs it to the end.
func runSystem(ctx context.Context, o runOptions, logs io.Writer) (*report, error) {
	if err := o.validate(); err != nil {
		return nil, err
	}

	c, err := config.Load(o.configFile)
	if err != nil {
		return nil, err
	}

	s := o.simulationBuilder(c, logs).Build()
	defer s.Terminate()

	sb, err := c.Builder(s.GetHarness())
	if err != nil {
		return nil, err
	}

	sys := sb.WithRegistrar(s).Build(c.Name)
	h := s.GetHarness()
	probes := probeMasters(h, sys)

	if o.cycles > 0 {
		stopAt(h, o.cycles)
	}

	if m := s.GetMonitor(); m != nil {
		trackProgress(s, sys)

		if o.openBrowser {
			if err := browser.OpenURL(s.MonitorURL()); err != nil {
				fmt.Fprintf(logs, "cannot open a browser: %v\n", err)
			}
		}
	}

	err = s.Run(ctx)
	if err != nil && !errors.Is(err, sim.ErrNoProgress) {
		return nil, err
	}

	return newReport(probes, h.CurrentCycle(), errors.Is(err, sim.ErrNoProgress)), nil
}

// stopAt makes the engine exit after n edges.
func stopAt(h sim.Engine, n uint64) {
	h.AcceptHook(sim.HookFunc(func(ctx sim.HookCtx) {
		if ctx.Pos != sim.HookPosAfterTock {
			return
		}

		if ctx.Item.(uint64)+1 >= n {
			h.RequestExit(0)
		}
	}))
}

// trackProgress shows the completed accesses as a progress bar.
func trackProgress(s *simulation.Simulation, sys *system.System) {
	var total uint64
	for _, m := range sys.Masters() {
		total += uint64(len(m.Results()))
	}

	bar := s.GetMonitor().CreateProgressBar("Accesses", total)
	completed := false

	s.GetHarness().AcceptHook(sim.HookFunc(func(ctx sim.HookCtx) {
		if ctx.Pos != sim.HookPosAfterTock {
			return
		}

		var done uint64

		for _, m := range sys.Masters() {
			for _, r := range m.Results() {
				if r.Completed {
					done++
				}
			}
		}

		bar.SetFinished(done)

		if done == total && !completed {
			completed = true
			s.GetMonitor().CompleteProgressBar(bar)
		}
	}))
}
