package engine

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/ironsheep/dartcam/internal/board"
	"github.com/ironsheep/dartcam/internal/detection"
	"github.com/ironsheep/dartcam/internal/imaging"
)

var (
	// ErrQueueFull is returned by a command method when the command queue
	// is full. The command is dropped.
	ErrQueueFull = errors.New("command queue full")

	// ErrInvalidState is reported when a command is not valid in the state
	// the engine is in when the command is applied.
	ErrInvalidState = errors.New("command not valid in current state")

	// ErrNoOrienter is reported when automatic orientation is requested
	// but no Orienter is configured.
	ErrNoOrienter = errors.New("automatic orientation unavailable")
)

// Config holds the engine timing parameters.
type Config struct {
	// Cooldown is the minimum time between two accepted hits.
	Cooldown time.Duration

	// SettleDelay is how long after a hit the reference frame is replaced.
	SettleDelay time.Duration

	// FrameStride runs hit detection on every n-th frame.
	FrameStride int

	// StableFrames is the number of accepted fits needed to leave
	// calibrating.
	StableFrames int

	// IdleRefresh replaces the reference frame when this long has passed
	// without a hit. 0 disables.
	IdleRefresh time.Duration

	// QueueSize bounds the operator command queue.
	QueueSize int

	// RotationOffset (degrees) is the offset proposed in ready until the
	// operator adjusts it.
	RotationOffset float64
}

// DefaultConfig returns the standard engine timing.
func DefaultConfig() Config {
	return Config{
		Cooldown:     2000 * time.Millisecond,
		SettleDelay:  1500 * time.Millisecond,
		FrameStride:  2,
		StableFrames: 5,
		IdleRefresh:  30 * time.Second,
		QueueSize:    32,
	}
}

// ScoreEvent is emitted once per accepted hit, misses included.
type ScoreEvent struct {
	ID    ulid.ULID        `json:"id"`
	Time  time.Time        `json:"time"`
	Score board.Score      `json:"score"`
	Label string           `json:"label"`
	Polar board.PolarCoord `json:"polar"`
	Tip   board.Point      `json:"tip"`
}

// CalibrationStatus is emitted on every calibration attempt and on
// orientation and command outcomes, so a UI can show progress.
type CalibrationStatus struct {
	State          State          `json:"state"`
	Quality        float64        `json:"quality"`
	Samples        int            `json:"samples"`
	Ellipse        *board.Ellipse `json:"ellipse,omitempty"`
	RotationOffset float64        `json:"rotation_offset"`
	Err            error          `json:"-"`
	Error          string         `json:"error,omitempty"`
}

// Callbacks receive engine output. Nil fields are ignored.
type Callbacks struct {
	OnScore             func(ScoreEvent)
	OnCalibrationStatus func(CalibrationStatus)
	OnStateChange       func(prev, next State)
}

// Orienter finds the rotation offset that aligns theta 0 with the "20"
// segment.
type Orienter interface {
	FindOffset(f *imaging.Frame, e board.Ellipse) (float64, error)
}

// FrameSource delivers frames to Run. Next returns io.EOF when no more
// frames will come.
type FrameSource interface {
	Next(ctx context.Context) (*imaging.Frame, error)
}

// Options carries the optional collaborators of an Engine.
type Options struct {
	Orienter  Orienter
	Callbacks Callbacks
	Logger    *slog.Logger

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
}

// Snapshot is a point-in-time view of the engine.
type Snapshot struct {
	State          State          `json:"state"`
	Ellipse        *board.Ellipse `json:"ellipse,omitempty"`
	RotationOffset float64        `json:"rotation_offset"`
	Quality        float64        `json:"quality"`
	Frames         uint64         `json:"frames"`
	Hits           int            `json:"hits"`
	LastScore      *ScoreEvent    `json:"last_score,omitempty"`
}

type commandKind int

const (
	cmdCalibrate commandKind = iota
	cmdConfirm
	cmdReset
	cmdRotate
	cmdAutoOrient
)

func (k commandKind) String() string {
	switch k {
	case cmdCalibrate:
		return "calibrate"
	case cmdConfirm:
		return "confirm"
	case cmdReset:
		return "reset"
	case cmdRotate:
		return "rotate"
	case cmdAutoOrient:
		return "auto_orient"
	default:
		return "unknown"
	}
}

type command struct {
	kind  commandKind
	value float64
	// pending confirms with the offset proposed when the command is
	// applied, after any rotate queued ahead of it.
	pending bool
}

// Engine is the scoring state machine.
type Engine struct {
	mu sync.Mutex

	cfg       Config
	calib     *detection.Calibrator
	detector  *detection.HitDetector
	orienter  Orienter
	callbacks Callbacks
	logger    *slog.Logger
	now       func() time.Time
	entropy   io.Reader
	commands  chan command

	state       State
	calibration detection.CalibrationState
	candidate   *board.Ellipse
	quality     float64
	offset      float64 // pending rotation offset while ready

	frames        uint64
	hits          int
	lastScore     *ScoreEvent
	cooldownUntil time.Time
	refreshAt     time.Time
	lastRefresh   time.Time
	orientPending bool

	// Output produced while locked, delivered after unlock.
	outbox []func()
}

// New returns an engine in StateUncalibrated.
func New(cfg Config, calib *detection.Calibrator, detector *detection.HitDetector, opts Options) *Engine {
	if cfg.FrameStride < 1 {
		cfg.FrameStride = 1
	}
	if cfg.StableFrames < 1 {
		cfg.StableFrames = 1
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = DefaultConfig().QueueSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Engine{
		cfg:       cfg,
		calib:     calib,
		detector:  detector,
		orienter:  opts.Orienter,
		callbacks: opts.Callbacks,
		logger:    logger,
		now:       clock,
		offset:    board.NormalizeDegrees(cfg.RotationOffset),
		entropy:   ulid.Monotonic(rand.Reader, 0),
		commands:  make(chan command, cfg.QueueSize),
	}
}

// RequestCalibrate discards any calibration and starts calibrating.
func (e *Engine) RequestCalibrate() error { return e.enqueue(command{kind: cmdCalibrate}) }

// Confirm accepts the ready ellipse with rotationOffset (degrees) and
// starts scoring. The frame processed with the command becomes the
// reference frame.
func (e *Engine) Confirm(rotationOffset float64) error {
	return e.enqueue(command{kind: cmdConfirm, value: rotationOffset})
}

// ConfirmPending is Confirm with the rotation offset the engine proposes
// at the time the command is applied.
func (e *Engine) ConfirmPending() error {
	return e.enqueue(command{kind: cmdConfirm, pending: true})
}

// Reset discards the calibration and reference frame.
func (e *Engine) Reset() error { return e.enqueue(command{kind: cmdReset}) }

// AdjustRotationOffset adds delta degrees to the rotation offset. Valid in
// ready and active.
func (e *Engine) AdjustRotationOffset(delta float64) error {
	return e.enqueue(command{kind: cmdRotate, value: delta})
}

// RequestAutoOrient runs the Orienter on the next frame and applies the
// offset it finds. Valid in ready and active.
func (e *Engine) RequestAutoOrient() error { return e.enqueue(command{kind: cmdAutoOrient}) }

func (e *Engine) enqueue(c command) error {
	select {
	case e.commands <- c:
		return nil
	default:
		return fmt.Errorf("%w: %s dropped", ErrQueueFull, c.kind)
	}
}

// State returns the current state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Snapshot returns the current engine view.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := Snapshot{
		State:   e.state,
		Quality: e.quality,
		Frames:  e.frames,
		Hits:    e.hits,
	}
	switch e.state {
	case StateReady:
		s.Ellipse = copyEllipse(e.candidate)
		s.RotationOffset = e.offset
	case StateActive:
		s.Ellipse = copyEllipse(e.calibration.Ellipse)
		s.RotationOffset = e.calibration.RotationOffset
	}
	if e.lastScore != nil {
		ev := *e.lastScore
		s.LastScore = &ev
	}
	return s
}

// Run feeds frames from src into ProcessFrame until ctx is cancelled or
// src returns io.EOF. Other source errors are returned.
func (e *Engine) Run(ctx context.Context, src FrameSource) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		f, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("frame source: %w", err)
		}
		e.ProcessFrame(f)
	}
}

// ProcessFrame applies queued commands and runs one iteration of the
// state machine on f.
func (e *Engine) ProcessFrame(f *imaging.Frame) {
	e.mu.Lock()
	now := e.now()
	e.drain(f, now)
	e.frames++

	switch e.state {
	case StateCalibrating:
		e.calibrate(f)
	case StateActive:
		e.score(f, now)
	}
	if e.orientPending {
		e.orientPending = false
		e.autoOrient(f)
	}

	out := e.outbox
	e.outbox = nil
	e.mu.Unlock()

	for _, fn := range out {
		fn()
	}
}

func (e *Engine) drain(f *imaging.Frame, now time.Time) {
	for {
		select {
		case c := <-e.commands:
			e.apply(c, f, now)
		default:
			return
		}
	}
}

func (e *Engine) apply(c command, f *imaging.Frame, now time.Time) {
	switch c.kind {
	case cmdReset:
		e.clear()
		e.transition(StateUncalibrated)

	case cmdCalibrate:
		e.clear()
		e.transition(StateCalibrating)

	case cmdConfirm:
		if e.state != StateReady || e.candidate == nil {
			e.reject(c)
			return
		}
		offset := c.value
		if c.pending {
			offset = e.offset
		}
		e.calibration = e.calib.Confirm(*e.candidate, offset)
		e.detector.SetReference(f)
		e.lastRefresh = now
		e.cooldownUntil = time.Time{}
		e.refreshAt = time.Time{}
		e.logger.Info("calibration confirmed",
			"center_x", e.calibration.Ellipse.CenterX, "center_y", e.calibration.Ellipse.CenterY,
			"rotation_offset", e.calibration.RotationOffset)
		e.transition(StateActive)

	case cmdRotate:
		switch e.state {
		case StateReady:
			e.offset = board.NormalizeDegrees(e.offset + c.value)
		case StateActive:
			e.calibration.RotationOffset = board.NormalizeDegrees(e.calibration.RotationOffset + c.value)
		default:
			e.reject(c)
			return
		}
		e.emitStatus(nil)

	case cmdAutoOrient:
		if e.state != StateReady && e.state != StateActive {
			e.reject(c)
			return
		}
		e.orientPending = true
	}
}

// clear discards calibration, history and reference frame.
func (e *Engine) clear() {
	e.calib.Reset()
	e.detector.Reset()
	e.calibration = detection.CalibrationState{}
	e.candidate = nil
	e.quality = 0
	e.offset = board.NormalizeDegrees(e.cfg.RotationOffset)
	e.cooldownUntil = time.Time{}
	e.refreshAt = time.Time{}
	e.lastRefresh = time.Time{}
	e.orientPending = false
}

func (e *Engine) reject(c command) {
	err := fmt.Errorf("%w: %s in %s", ErrInvalidState, c.kind, e.state)
	e.logger.Warn("command rejected", "command", c.kind.String(), "state", e.state.String())
	e.emitStatus(err)
}

func (e *Engine) transition(next State) {
	prev := e.state
	if prev == next {
		return
	}
	e.state = next
	e.logger.Debug("engine state transition", "from", prev.String(), "to", next.String())
	if cb := e.callbacks.OnStateChange; cb != nil {
		e.outbox = append(e.outbox, func() { cb(prev, next) })
	}
}

func (e *Engine) calibrate(f *imaging.Frame) {
	res, err := e.calib.Calibrate(f)
	e.quality = res.Quality
	if err != nil {
		e.logger.Debug("calibration attempt failed", "error", err)
		e.emitStatus(err)
		return
	}
	if res.Samples >= e.cfg.StableFrames {
		el := res.Ellipse
		e.candidate = &el
		e.transition(StateReady)
	}
	e.emitStatus(nil)
}

func (e *Engine) score(f *imaging.Frame, now time.Time) {
	el := e.calibration.Ellipse
	if !e.refreshAt.IsZero() {
		if now.Before(e.refreshAt) {
			return
		}
		e.detector.SetReference(f)
		e.refreshAt = time.Time{}
		e.lastRefresh = now
		e.logger.Debug("reference refreshed", "reason", "settled")
		return
	}
	if now.Before(e.cooldownUntil) {
		return
	}
	if e.frames%uint64(e.cfg.FrameStride) != 0 {
		return
	}

	hit, err := e.detector.Detect(f, *el)
	if err != nil {
		if errors.Is(err, detection.ErrNoisyDiff) {
			e.logger.Debug("diff rejected", "error", err)
		} else if !errors.Is(err, detection.ErrNoChange) {
			e.logger.Warn("hit detection failed", "error", err)
			return
		}
		if e.cfg.IdleRefresh > 0 && now.Sub(e.lastRefresh) >= e.cfg.IdleRefresh {
			e.detector.SetReference(f)
			e.lastRefresh = now
			e.logger.Debug("reference refreshed", "reason", "idle")
		}
		return
	}

	m := e.calibration.Mapper()
	pc := m.ToPolar(hit.Tip)
	sc := board.ToScore(pc)
	ev := ScoreEvent{
		ID:    e.newID(now),
		Time:  now,
		Score: sc,
		Label: sc.Label(),
		Polar: pc,
		Tip:   hit.Tip,
	}
	e.hits++
	e.lastScore = &ev
	e.cooldownUntil = now.Add(e.cfg.Cooldown)
	e.refreshAt = now.Add(e.cfg.SettleDelay)
	e.logger.Info("dart scored", "label", ev.Label, "points", sc.Points,
		"r", pc.R, "theta", pc.Theta, "changed", hit.ChangedPixels)
	if cb := e.callbacks.OnScore; cb != nil {
		e.outbox = append(e.outbox, func() { cb(ev) })
	}
}

func (e *Engine) autoOrient(f *imaging.Frame) {
	var el *board.Ellipse
	switch e.state {
	case StateReady:
		el = e.candidate
	case StateActive:
		el = e.calibration.Ellipse
	}
	if el == nil {
		return
	}
	if e.orienter == nil {
		e.emitStatus(ErrNoOrienter)
		return
	}
	off, err := e.orienter.FindOffset(f, *el)
	if err != nil {
		e.logger.Info("automatic orientation failed", "error", err)
		e.emitStatus(err)
		return
	}
	if e.state == StateReady {
		e.offset = off
	} else {
		e.calibration.RotationOffset = off
	}
	e.logger.Info("rotation offset found", "rotation_offset", off)
	e.emitStatus(nil)
}

func (e *Engine) emitStatus(err error) {
	cb := e.callbacks.OnCalibrationStatus
	if cb == nil {
		return
	}
	st := CalibrationStatus{
		State:   e.state,
		Quality: e.quality,
		Samples: e.calib.HistoryLen(),
		Err:     err,
	}
	switch e.state {
	case StateCalibrating:
		if cur, ok := e.calib.Current(); ok {
			st.Ellipse = &cur
		}
	case StateReady:
		st.Ellipse = copyEllipse(e.candidate)
		st.RotationOffset = e.offset
	case StateActive:
		st.Ellipse = copyEllipse(e.calibration.Ellipse)
		st.RotationOffset = e.calibration.RotationOffset
	}
	if err != nil {
		st.Error = err.Error()
	}
	e.outbox = append(e.outbox, func() { cb(st) })
}

func (e *Engine) newID(t time.Time) ulid.ULID {
	id, err := ulid.New(ulid.Timestamp(t), e.entropy)
	if err != nil {
		// Monotonic entropy only fails on overflow within one millisecond.
		return ulid.MustNew(ulid.Timestamp(t), rand.Reader)
	}
	return id
}

func copyEllipse(el *board.Ellipse) *board.Ellipse {
	if el == nil {
		return nil
	}
	c := *el
	return &c
}
