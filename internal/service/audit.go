package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// FactType identifies a kind of audit fact.
type FactType string

const (
	FactVersionCreated  FactType = "version_created"
	FactStatusChanged   FactType = "status_changed"
	FactVersionDeleted  FactType = "version_deleted"
	FactVersionRestored FactType = "version_restored"
	FactVersionRollback FactType = "version_rollback"
)

// Fact is one audit event emitted by the engine. Delivery and storage of the
// audit log belong to an external service; the engine only emits.
type Fact struct {
	Type          FactType
	DocumentID    string
	VersionID     string
	VersionNumber int
	Actor         string
	Reason        string
	FromVersion   string
	RestoredFrom  string
	LinesChanged  int
	OccurredAt    time.Time
}

// Sink receives audit facts.
type Sink interface {
	Emit(ctx context.Context, fact Fact)
}

// LogSink writes audit facts as structured log lines.
type LogSink struct {
	log zerolog.Logger
}

// NewLogSink creates a Sink backed by the given logger.
func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log}
}

// Emit writes the fact as one structured audit line.
func (s *LogSink) Emit(ctx context.Context, fact Fact) {
	evt := s.log.Info().
		Str("audit", string(fact.Type)).
		Str("document_id", fact.DocumentID).
		Str("version_id", fact.VersionID).
		Int("version_number", fact.VersionNumber).
		Str("actor", fact.Actor).
		Time("occurred_at", fact.OccurredAt)
	if fact.Reason != "" {
		evt = evt.Str("reason", fact.Reason)
	}
	if fact.RestoredFrom != "" {
		evt = evt.Str("from_version", fact.FromVersion).
			Str("restored_from", fact.RestoredFrom).
			Int("lines_changed", fact.LinesChanged)
	}
	evt.Msg("audit fact")
}

// MemorySink records facts for tests.
type MemorySink struct {
	mu    sync.Mutex
	facts []Fact
}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Emit records the fact.
func (s *MemorySink) Emit(ctx context.Context, fact Fact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.facts = append(s.facts, fact)
}

// Facts returns a copy of every recorded fact.
func (s *MemorySink) Facts() []Fact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Fact(nil), s.facts...)
}
