package draftpick

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Store names the backend a stage talks to.
type Store string

const (
	StoreAuthority Store = "authority"
	StoreKeyValue  Store = "kv"
	StoreObject    Store = "object"
	StoreRequest   Store = "request" // validation stages touch no store
)

// Policy decides what a stage failure does to the rest of the pipeline.
type Policy int

const (
	// Abort stops the pipeline and returns the stage error.
	Abort Policy = iota
	// BestEffort logs the failure and moves on to the next stage.
	BestEffort
)

func (p Policy) String() string {
	if p == BestEffort {
		return "best_effort"
	}
	return "abort"
}

// Stage is one named step of a fan-out operation.
type Stage struct {
	Name   string
	Store  Store
	Policy Policy
	Run    func(ctx context.Context) error
}

// StageResult records how a stage went.
type StageResult struct {
	Stage    string
	Store    Store
	Policy   Policy
	Err      error
	Duration time.Duration
}

// Trace is the ordered list of stages a pipeline actually ran.
type Trace []StageResult

// Stages returns the names of the stages that ran, in order.
func (t Trace) Stages() []string {
	names := make([]string, len(t))
	for i, r := range t {
		names[i] = r.Stage
	}
	return names
}

// Failed returns the results whose stage returned an error.
func (t Trace) Failed() []StageResult {
	var failed []StageResult
	for _, r := range t {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}

// Result looks up a stage by name.
func (t Trace) Result(stage string) (StageResult, bool) {
	for _, r := range t {
		if r.Stage == stage {
			return r, true
		}
	}
	return StageResult{}, false
}

// Pipeline runs stages strictly in order; there is no concurrency inside a
// single operation.
type Pipeline struct {
	op      string
	clock   clockwork.Clock
	metrics MetricsCollector
	stages  []Stage
}

// NewPipeline builds a pipeline for the named operation.
func NewPipeline(op string, clock clockwork.Clock, metrics MetricsCollector, stages ...Stage) *Pipeline {
	if metrics == nil {
		metrics = &NoOpMetricsCollector{}
	}
	return &Pipeline{op: op, clock: clock, metrics: metrics, stages: stages}
}

// Run executes the stages. It stops at the first failing Abort stage and
// returns that stage's error alongside the trace so far.
func (p *Pipeline) Run(ctx context.Context) (Trace, error) {
	trace := make(Trace, 0, len(p.stages))
	for _, stage := range p.stages {
		start := p.clock.Now()
		err := stage.Run(ctx)
		result := StageResult{
			Stage:    stage.Name,
			Store:    stage.Store,
			Policy:   stage.Policy,
			Err:      err,
			Duration: p.clock.Since(start),
		}
		trace = append(trace, result)
		p.metrics.RecordStage(p.op, stage.Name, err == nil, result.Duration)

		if err == nil {
			continue
		}
		if stage.Policy == BestEffort {
			log.Warn().
				Err(err).
				Str("op", p.op).
				Str("stage", stage.Name).
				Str("store", string(stage.Store)).
				Msg("best-effort stage failed, continuing")
			continue
		}
		log.Debug().
			Err(err).
			Str("op", p.op).
			Str("stage", stage.Name).
			Dur("duration", result.Duration).
			Msg("pipeline aborted")
		return trace, err
	}
	return trace, nil
}
