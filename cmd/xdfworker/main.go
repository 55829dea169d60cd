// Command xdfworker is the thin executable entry point spinning up one
// process's worker threads: load the process configuration, build the
// allocation fabric once, then run one worker per thread under an
// errgroup, each scheduling its own copy of the dataflow graph this
// command is compiled against.
package main

import (
	"flag"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/teris-io/shortid"
	"golang.org/x/sync/errgroup"

	"github.com/flowmesh/xdf/activate"
	"github.com/flowmesh/xdf/allocator"
	"github.com/flowmesh/xdf/config"
	"github.com/flowmesh/xdf/eventlog"
	"github.com/flowmesh/xdf/logging"
	"github.com/flowmesh/xdf/metrics"
	"github.com/flowmesh/xdf/order"
	"github.com/flowmesh/xdf/subgraph"
	"github.com/flowmesh/xdf/worker"
)

var (
	configPath = flag.String("config", "", "path to a JSON process config (threads, this_process, processes, addresses, noisy); defaults to a single-thread, single-process run when omitted")
	eventLog   = flag.String("event-log", "", "optional path to write a msgpack-encoded event stream; \"-\" writes newline-delimited JSON to stdout instead")
	debugAddr  = flag.String("debug-addr", "", "optional host:port to serve /metrics and /status on")
	verbosity  = flag.Int("v", 0, "log verbosity")
)

func main() {
	flag.Parse()
	logging.SetVerbosity(*verbosity)

	if err := run(); err != nil {
		logging.Fatalf("xdfworker: %v", err)
	}
}

func run() error {
	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	runID, err := shortid.Generate()
	if err != nil {
		return errors.Wrap(err, "xdfworker: generate run id")
	}
	logging.Infof("xdfworker: run %s starting (threads=%d, this_process=%d, processes=%d)", runID, cfg.Threads, cfg.ThisProcess, cfg.Processes)

	builder, err := allocator.Build(cfg)
	if err != nil {
		return errors.Wrap(err, "xdfworker: build allocation fabric")
	}

	sink, closeSink, err := openEventSink(*eventLog)
	if err != nil {
		return err
	}
	if closeSink != nil {
		defer closeSink()
	}
	var log *eventlog.Log
	if sink != nil {
		log = eventlog.New(sink)
	}

	var g errgroup.Group
	for thread := 0; thread < cfg.Threads; thread++ {
		thread := thread
		g.Go(func() error {
			return runWorker(builder, thread, runID, log, *debugAddr)
		})
	}
	return g.Wait()
}

func loadConfig(path string) (config.ProcessConfig, error) {
	if path == "" {
		return config.ProcessConfig{Threads: 1, Processes: 1, ThisProcess: 0}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return config.ProcessConfig{}, errors.Wrapf(err, "xdfworker: open config %s", path)
	}
	defer f.Close()
	return config.Load(f)
}

func openEventSink(path string) (eventlog.Sink, func(), error) {
	switch path {
	case "":
		return nil, nil, nil
	case "-":
		return eventlog.NewJSONSink(os.Stdout), nil, nil
	default:
		f, err := os.Create(path)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "xdfworker: create event log %s", path)
		}
		return eventlog.NewMsgpSink(f), func() { f.Close() }, nil
	}
}

// runWorker builds one thread's root scope and drives it to completion.
// Real dataflow graphs are wired by a calling program linking this
// package's pieces together with its own operators; this command ships
// an empty root scope (no ports, no children) purely to exercise the
// process/allocator/metrics/event-log wiring end to end
// — a graph-construction API for user programs is out of scope for this
// executable (spec §6 draws the line at the Operator/Scope contract,
// not at a program that assembles one).
func runWorker(builder *allocator.Builder, thread int, runID string, log *eventlog.Log, debugAddr string) error {
	a := builder.ForWorker(thread)
	activations := activate.NewActivationSet()

	root := subgraph.New[order.Root, order.RootSummary]("root", nil, activations, 0, 0)
	root.Build()

	reg := metrics.New(a.Index())
	w := worker.New[order.Root, order.RootSummary](a.Index(), runID, a, activations, root, worker.NewLogger(log), func() int64 { return time.Now().UnixNano() })

	if debugAddr != "" {
		status := func() metrics.Status {
			return metrics.Status{Worker: a.Index(), HasWork: w.HasWork(), Scope: 0}
		}
		srv := metrics.NewServer(reg, status)
		go func() {
			if err := srv.ListenAndServe(debugAddr); err != nil {
				logging.Errorf("worker %d: debug server: %v", a.Index(), err)
			}
		}()
		defer srv.Shutdown()
	}

	w.Run(100 * time.Millisecond)
	return nil
}
