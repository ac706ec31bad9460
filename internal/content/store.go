package content

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/kbeguinel/portfolio/internal/logging"
	"github.com/kbeguinel/portfolio/internal/metrics"
)

// Phase is the lifecycle stage of a Store.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseReady
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	}
	return "unknown"
}

// State is one published lifecycle state. Snapshot is set only when Phase is
// PhaseReady and Err only when Phase is PhaseFailed.
type State struct {
	Phase    Phase
	Snapshot *Snapshot
	Err      error
	Since    time.Time
}

// SnapshotLoader builds a complete snapshot or fails.
type SnapshotLoader interface {
	Load(ctx context.Context) (*Snapshot, error)
}

// Store publishes the current content state. Reads never block; reloads
// are serialized and swap the whole state at once.
type Store struct {
	loader  SnapshotLoader
	logger  *zap.Logger
	metrics *metrics.Metrics

	reloadMu sync.Mutex
	state    atomic.Pointer[State]
}

// NewStore returns a Store in the loading phase. Call Reload to populate it.
func NewStore(loader SnapshotLoader, logger *zap.Logger, m *metrics.Metrics) *Store {
	s := &Store{
		loader:  loader,
		logger:  logging.OrNop(logger).Named("content"),
		metrics: m,
	}
	s.state.Store(&State{Phase: PhaseLoading, Since: time.Now()})
	return s
}

// State returns the currently published state.
func (s *Store) State() State {
	return *s.state.Load()
}

// Snapshot returns the published snapshot and whether the store is ready.
func (s *Store) Snapshot() (*Snapshot, bool) {
	st := s.state.Load()
	if st.Phase != PhaseReady {
		return nil, false
	}
	return st.Snapshot, true
}

// SkillColors returns the skill color mapping, or an empty map when no
// snapshot is published.
func (s *Store) SkillColors() map[string]string {
	snap, ok := s.Snapshot()
	if !ok || snap.SkillColors == nil {
		return map[string]string{}
	}
	return snap.SkillColors
}

// Reload rebuilds the snapshot from the loader. On failure the store moves
// to PhaseFailed and the previous snapshot is no longer served. A load
// abandoned because ctx ended leaves the current state untouched.
func (s *Store) Reload(ctx context.Context) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	start := time.Now()
	snap, err := s.loader.Load(ctx)
	elapsed := time.Since(start)

	if s.metrics != nil {
		s.metrics.ContentLoadDuration.Observe(elapsed.Seconds())
	}

	if err != nil && ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		s.logger.Warn("content load abandoned", zap.Error(err), zap.Duration("elapsed", elapsed))
		return err
	}
	if err != nil {
		s.state.Store(&State{Phase: PhaseFailed, Err: err, Since: time.Now()})
		s.logger.Error("content load failed", zap.Error(err), zap.Duration("elapsed", elapsed))
		if s.metrics != nil {
			s.metrics.ContentLoads.WithLabelValues("failed").Inc()
		}
		return err
	}

	for _, o := range snap.Report.Orphans {
		s.logger.Warn("skill missing from taxonomy",
			zap.String("skill", o.Skill), zap.String("kind", o.Kind), zap.String("owner", o.Owner))
	}
	for _, d := range snap.Report.Duplicates {
		s.logger.Warn("skill listed in several categories", zap.String("skill", d))
	}

	s.state.Store(&State{Phase: PhaseReady, Snapshot: snap, Since: time.Now()})
	s.logger.Info("content loaded",
		zap.Int("projects", len(snap.Projects)),
		zap.Int("experiences", len(snap.Experiences)),
		zap.Int("formations", len(snap.Formations)),
		zap.Int("categories", len(snap.Skills)),
		zap.Duration("elapsed", elapsed))
	if s.metrics != nil {
		s.metrics.ContentLoads.WithLabelValues("ok").Inc()
		s.metrics.OrphanSkills.Set(float64(len(snap.Report.Orphans)))
	}
	return nil
}
