// Package morpho runs chains of configurable analysis processors.
//
// A ToolBox instantiates named processors from a registry, configures them,
// wires output attributes to input attributes ("signal -> slot"), orders the
// chain so that producers run before consumers and executes it synchronously.
package morpho

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/project8/morpho/builder"
	"github.com/project8/morpho/config"
	"github.com/project8/morpho/models"
)

// Status is the outcome of one processor in a run
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// RunRecord describes what happened to one processor during Run
type RunRecord struct {
	Processor string
	Status    Status
	Duration  time.Duration
	Deleted   bool
	Err       error
}

type entry struct {
	proc       models.Processor
	typeRef    string
	configured bool
	deleted    bool
}

// ToolBox creates, connects and runs processors
type ToolBox struct {
	registry  *builder.Registry
	logger    *slog.Logger
	metrics   *Metrics
	listeners []models.EventListener
	bus       *eventBus
	runID     string

	entries    map[string]*entry
	registered []string // names in registration order
	graph      *connectionGraph
	chain      []string
	records    []RunRecord
	ran        bool
}

// Option configures a ToolBox
type Option func(*ToolBox)

// WithLogger sets the logger handed to the toolbox and its processors
func WithLogger(logger *slog.Logger) Option {
	return func(tb *ToolBox) {
		if logger != nil {
			tb.logger = logger
		}
	}
}

// WithMetrics records processor activity into m
func WithMetrics(m *Metrics) Option {
	return func(tb *ToolBox) {
		tb.metrics = m
	}
}

// WithListener adds a listener that receives toolbox events
func WithListener(listener models.EventListener) Option {
	return func(tb *ToolBox) {
		if listener != nil {
			tb.listeners = append(tb.listeners, listener)
		}
	}
}

// WithRunID overrides the generated run identifier
func WithRunID(id string) Option {
	return func(tb *ToolBox) {
		if id != "" {
			tb.runID = id
		}
	}
}

// New creates an empty toolbox drawing processor types from registry
func New(registry *builder.Registry, opts ...Option) *ToolBox {
	tb := &ToolBox{
		registry: registry,
		logger:   slog.Default(),
		runID:    uuid.NewString(),
		entries:  make(map[string]*entry),
		graph:    newConnectionGraph(),
	}
	for _, opt := range opts {
		opt(tb)
	}
	tb.logger = tb.logger.With(slog.String("component", "toolbox"), slog.String("run_id", tb.runID))
	tb.bus = newEventBus(tb.runID)
	for _, l := range tb.listeners {
		tb.bus.addListener(l)
	}
	return tb
}

// RunID returns the identifier attached to logs and events of this toolbox
func (tb *ToolBox) RunID() string {
	return tb.runID
}

// AddProcessor instantiates a processor of type typeRef under name
func (tb *ToolBox) AddProcessor(name, typeRef string) error {
	if _, exists := tb.entries[name]; exists {
		return models.ErrDuplicateProcessorName(name)
	}
	proc, err := tb.registry.Create(name, typeRef, tb.logger)
	if err != nil {
		return err
	}
	tb.entries[name] = &entry{proc: proc, typeRef: typeRef}
	tb.registered = append(tb.registered, name)
	tb.chain = nil

	tb.logger.Info("processor created", "processor", name, "type", typeRef)
	tb.bus.EmitProcessor(models.EventProcessorCreated, name)
	return nil
}

// Configure hands params to the named processor
func (tb *ToolBox) Configure(name string, params map[string]any) error {
	e, ok := tb.entries[name]
	if !ok {
		return models.ErrUnknownProcessorReference(name, "configure")
	}
	if params == nil {
		params = map[string]any{}
	}
	tb.logger.Debug("configuring processor", "processor", name)
	if err := e.proc.Configure(params); err != nil {
		return &models.ProcessorConfigError{Processor: name, Err: err}
	}
	e.configured = true
	tb.bus.EmitProcessor(models.EventProcessorConfigured, name)
	return nil
}

// Connect declares that the value of signal ("producer:attribute") is
// handed to slot ("consumer:attribute") once the producer has run
func (tb *ToolBox) Connect(signal, slot string) error {
	from, err := config.ParseEndpoint(signal)
	if err != nil {
		return err
	}
	to, err := config.ParseEndpoint(slot)
	if err != nil {
		return err
	}
	c := &Connection{
		Producer: from.Processor,
		Output:   from.Attribute,
		Consumer: to.Processor,
		Input:    to.Attribute,
	}
	if err := tb.graph.add(c, tb.lookup); err != nil {
		return err
	}
	tb.chain = nil
	tb.logger.Debug("connection declared", "connection", c.String())
	return nil
}

// Sequence computes the execution order of the chain
func (tb *ToolBox) Sequence() error {
	chain, err := tb.graph.sequence(tb.registered)
	if err != nil {
		return err
	}
	tb.chain = chain
	tb.logger.Debug("sequence of processors", "chain", chain)
	return nil
}

// Build creates, configures and connects every processor declared in doc.
// Any error aborts before a processor runs.
func (tb *ToolBox) Build(doc *config.Document) error {
	tc, err := doc.Toolbox()
	if err != nil {
		return err
	}
	for _, p := range tc.Processors {
		if err := tb.AddProcessor(p.Name, p.Type); err != nil {
			tb.logger.Error("could not create processor", "processor", p.Name, "error", err)
			return err
		}
	}
	for _, name := range tb.registered {
		if err := tb.Configure(name, doc.ParamsFor(name)); err != nil {
			tb.logger.Error("configuration failed", "processor", name, "error", err)
			return err
		}
	}
	for _, c := range tc.Connections {
		if err := tb.Connect(c.Signal, c.Slot); err != nil {
			tb.logger.Error("could not connect processors", "signal", c.Signal, "slot", c.Slot, "error", err)
			return err
		}
	}
	return tb.Sequence()
}

// Run executes the chain once.
// The first failing processor aborts the remaining chain; side effects of the
// processors that already ran are kept.
func (tb *ToolBox) Run(ctx context.Context) (err error) {
	if tb.ran {
		return errors.New("toolbox already ran")
	}
	tb.ran = true

	if tb.chain == nil {
		if err := tb.Sequence(); err != nil {
			return err
		}
	}
	for _, name := range tb.chain {
		if !tb.entries[name].configured {
			return &models.ProcessorConfigError{Processor: name, Err: errors.New("processor was never configured")}
		}
	}

	startTime := time.Now()
	tb.bus.EmitToolboxStarted(tb.chain)
	defer func() {
		if err != nil {
			tb.bus.EmitToolboxError(err)
		} else {
			tb.bus.EmitToolboxCompleted(time.Since(startTime))
		}
		tb.bus.Wait()
	}()

	tb.records = make([]RunRecord, 0, len(tb.chain))
	for i, name := range tb.chain {
		if err := ctx.Err(); err != nil {
			tb.skip(tb.chain[i:])
			return fmt.Errorf("chain interrupted before <%s>: %w", name, err)
		}
		if err := tb.runOne(ctx, name); err != nil {
			tb.skip(tb.chain[i+1:])
			tb.logger.Error("error while running processors", "processor", name, "error", err)
			return err
		}
	}
	tb.logger.Info("chain completed", "processors", len(tb.chain), "duration", time.Since(startTime))
	return nil
}

func (tb *ToolBox) runOne(ctx context.Context, name string) error {
	e := tb.entries[name]
	record := RunRecord{Processor: name}

	tb.logger.Info("running processor", "processor", name)
	tb.bus.EmitProcessor(models.EventProcessorStarted, name)

	start := time.Now()
	runErr := safeRun(ctx, e.proc)
	record.Duration = time.Since(start)

	if runErr != nil {
		err := &models.ProcessorRunError{Processor: name, Err: runErr}
		record.Status, record.Err = StatusFailed, err
		tb.records = append(tb.records, record)
		tb.metrics.observeRun(name, string(StatusFailed), record.Duration.Seconds())
		tb.bus.EmitProcessorError(name, err)
		return err
	}

	if err := tb.graph.resolve(name, func(c *Connection) {
		tb.logger.Debug("connection resolved", "connection", c.String())
		tb.metrics.observeResolution(c)
		tb.bus.EmitConnectionResolved(c)
	}); err != nil {
		record.Status, record.Err = StatusFailed, err
		tb.records = append(tb.records, record)
		tb.metrics.observeRun(name, string(StatusFailed), record.Duration.Seconds())
		tb.bus.EmitProcessorError(name, err)
		return err
	}

	record.Status = StatusSucceeded
	tb.metrics.observeRun(name, string(StatusSucceeded), record.Duration.Seconds())
	tb.bus.EmitProcessorCompleted(name, record.Duration)
	tb.logger.Info("done with processor", "processor", name, "duration", record.Duration)

	if e.proc.Delete() {
		tb.release(name)
		record.Deleted = true
	}
	tb.records = append(tb.records, record)
	return nil
}

// safeRun turns a panicking processor into a run error
func safeRun(ctx context.Context, proc models.Processor) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return proc.Run(ctx)
}

func (tb *ToolBox) release(name string) {
	e := tb.entries[name]
	if closer, ok := e.proc.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			tb.logger.Warn("closing deleted processor failed", "processor", name, "error", err)
		}
	}
	e.proc = nil
	e.deleted = true
	tb.graph.release(name)
	tb.metrics.observeDeletion()
	tb.bus.EmitProcessor(models.EventProcessorDeleted, name)
	tb.logger.Info("deleting processor", "processor", name)
}

func (tb *ToolBox) skip(names []string) {
	for _, name := range names {
		tb.records = append(tb.records, RunRecord{Processor: name, Status: StatusSkipped})
	}
}

func (tb *ToolBox) lookup(name string) (models.Processor, bool) {
	e, ok := tb.entries[name]
	if !ok || e.deleted {
		return nil, false
	}
	return e.proc, true
}

// Chain returns the execution order
func (tb *ToolBox) Chain() []string {
	return append([]string(nil), tb.chain...)
}

// Processor returns a live processor; deleted processors are not returned
func (tb *ToolBox) Processor(name string) (models.Processor, bool) {
	e, ok := tb.entries[name]
	if ok && e.deleted {
		tb.logger.Warn("processor has been deleted", "processor", name)
	}
	return tb.lookup(name)
}

// Attribute reads an output attribute of a live processor
func (tb *ToolBox) Attribute(name, attribute string) (any, error) {
	proc, ok := tb.Processor(name)
	if !ok {
		return nil, models.ErrUnknownProcessorReference(name, name+":"+attribute)
	}
	get, ok := proc.Outputs()[attribute]
	if !ok {
		return nil, models.ErrUnknownAttribute(name, attribute, models.DirectionOutput)
	}
	value, produced := get()
	if !produced {
		return nil, models.ErrMissingOutputAttribute(name, attribute)
	}
	return value, nil
}

// Records returns the per-processor outcome of the last Run
func (tb *ToolBox) Records() []RunRecord {
	return append([]RunRecord(nil), tb.records...)
}
