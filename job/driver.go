package job

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ogzhanolguncu/word-count-in-go/logger"
	"github.com/ogzhanolguncu/word-count-in-go/map_reduce"
)

// Driver runs the word-count job: load, map, group, reduce, write. Each stage
// finishes before the next starts and any failure ends the run in Failed.
type Driver struct {
	cfg     Config
	runner  *map_reduce.Runner
	tracker *StateTracker
	log     *logger.Logger
	mu      sync.Mutex
}

type DriverOption func(*Driver)

func WithLogger(l *logger.Logger) DriverOption {
	return func(d *Driver) {
		d.log = l
	}
}

func NewDriver(cfg Config, opts ...DriverOption) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	d := &Driver{
		cfg:     cfg,
		tracker: NewStateTracker(),
		log:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.log == nil {
		d.log = logger.Discard()
	}

	d.runner = map_reduce.NewRunner(
		&map_reduce.WordCountMapper{},
		&map_reduce.WordCountReducer{},
		map_reduce.WithWorkers(cfg.workers()),
	)
	return d, nil
}

func (d *Driver) State() State {
	return d.tracker.Current()
}

func (d *Driver) History() []State {
	return d.tracker.History()
}

// ID is the id of the current or last run.
func (d *Driver) ID() string {
	return d.tracker.RunID()
}

// Run executes the job from the start. Calling it again after a failure
// restarts from Loading; nothing is resumed.
func (d *Driver) Run(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.tracker.Reset(uuid.NewString())
	log := d.log.WithField("job", d.tracker.RunID())
	start := time.Now()
	log.WithFields(logrus.Fields{
		"input":   d.cfg.InputDir,
		"output":  d.cfg.OutputDir,
		"workers": d.runner.Workers(),
	}).Infof("starting job")

	if err := d.advance(log, Loading); err != nil {
		return err
	}
	if err := clearMarker(d.cfg.OutputDir); err != nil {
		return d.fail(ctx, log, ErrOutput, err)
	}
	loader := NewLoader(d.runner.Workers(), log)
	if d.cfg.Progress {
		loader.WithProgress(os.Stderr)
	}
	lines, err := loader.Load(ctx, d.cfg.InputDir)
	if err != nil {
		return d.fail(ctx, log, ErrInput, err)
	}
	log.Infof("loaded %d lines", len(lines))

	if err := d.advance(log, Mapping); err != nil {
		return err
	}
	kvs, err := d.runner.Map(ctx, lines)
	if err != nil {
		return d.fail(ctx, log, nil, err)
	}
	log.Infof("mapped %d tokens", len(kvs))

	if err := d.advance(log, Grouping); err != nil {
		return err
	}
	groups, err := d.runner.Shuffle(ctx, kvs)
	if err != nil {
		return d.fail(ctx, log, nil, err)
	}
	log.Infof("grouped into %d keys", len(groups))

	if err := d.advance(log, Reducing); err != nil {
		return err
	}
	aggs, err := d.runner.Reduce(ctx, groups)
	if err != nil {
		return d.fail(ctx, log, nil, err)
	}

	if err := d.advance(log, Writing); err != nil {
		return err
	}
	report := map_reduce.NewReport(aggs)
	if err := WriteOutput(d.cfg.OutputDir, report); err != nil {
		return d.fail(ctx, log, ErrOutput, err)
	}

	if err := d.advance(log, Done); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"words":   len(report),
		"tokens":  report.Total(),
		"elapsed": time.Since(start).String(),
	}).Infof("job completed")
	return nil
}

func (d *Driver) advance(log *logger.Logger, to State) error {
	if err := d.tracker.Advance(to); err != nil {
		return err
	}
	log.WithField("state", to).Debugf("entered state")
	return nil
}

func (d *Driver) fail(ctx context.Context, log *logger.Logger, kind error, err error) error {
	// Cancellation is reported as such, whatever the stage made of it.
	if ctx.Err() != nil {
		kind, err = nil, ctx.Err()
	}
	state, ferr := d.tracker.Fail()
	if ferr != nil {
		return ferr
	}
	jobErr := &Error{State: state, Kind: kind, Err: err}
	log.WithError(err).WithField("state", state).Errorf("job failed")
	return jobErr
}
