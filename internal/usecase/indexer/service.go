// Package indexer keeps the vector index aligned with the content store.
package indexer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/campushelp/faqrag/internal/domain"
	"github.com/campushelp/faqrag/internal/metrics"
)

// FailedItem reports one record that could not be processed.
type FailedItem struct {
	ID     int64  `json:"id"`
	Reason string `json:"reason"`
}

// BuildResult summarizes a full index rebuild.
type BuildResult struct {
	Indexed int          `json:"indexed"`
	Failed  []FailedItem `json:"failed,omitempty"`
}

// SyncResult summarizes an incremental reconciliation run.
type SyncResult struct {
	Deleted int          `json:"deleted"`
	Added   int          `json:"added"`
	Failed  []FailedItem `json:"failed,omitempty"`
}

// Service drives index maintenance. A failing record never aborts a run;
// failures are accumulated and reported alongside the counts.
type Service struct {
	records  RecordSource
	index    Index
	embedder Embedder
	logger   *zap.Logger
}

// New creates an indexer service.
func New(records RecordSource, index Index, embedder Embedder, logger *zap.Logger) *Service {
	return &Service{
		records:  records,
		index:    index,
		embedder: embedder,
		logger:   logger,
	}
}

// Build re-embeds and upserts every published record. Existing index
// entries for those records are overwritten; running it twice in a row
// yields the same index.
func (s *Service) Build(ctx context.Context) (BuildResult, error) {
	start := time.Now()

	if err := s.index.EnsureSchema(ctx); err != nil {
		return BuildResult{}, fmt.Errorf("ensure schema: %w", err)
	}

	records, err := s.records.PublishedRecords(ctx)
	if err != nil {
		return BuildResult{}, fmt.Errorf("load published records: %w", err)
	}

	var result BuildResult
	for _, rec := range records {
		if err := s.indexRecord(ctx, rec); err != nil {
			s.logger.Warn("failed to index record",
				zap.Int64("id", rec.ID),
				zap.Error(err))
			result.Failed = append(result.Failed, FailedItem{ID: rec.ID, Reason: err.Error()})
			metrics.IndexDocumentsTotal.WithLabelValues("build", "failed").Inc()
			continue
		}
		result.Indexed++
		metrics.IndexDocumentsTotal.WithLabelValues("build", "indexed").Inc()
	}

	if err := s.index.Refresh(ctx); err != nil {
		s.logger.Warn("index refresh failed", zap.Error(err))
	}

	metrics.IndexRunDuration.WithLabelValues("build").Observe(time.Since(start).Seconds())

	s.logger.Info("index build finished",
		zap.Int("indexed", result.Indexed),
		zap.Int("failed", len(result.Failed)),
		zap.Duration("took", time.Since(start)))

	return result, nil
}

// Sync reconciles the index against the content store by ID. Entries
// whose ID no longer belongs to a published record are removed, and
// published records missing from the index are embedded and added.
// Records already present on both sides are left untouched.
func (s *Service) Sync(ctx context.Context) (SyncResult, error) {
	start := time.Now()

	if err := s.index.EnsureSchema(ctx); err != nil {
		return SyncResult{}, fmt.Errorf("ensure schema: %w", err)
	}

	storeIDs, err := s.records.PublishedIDs(ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("load published ids: %w", err)
	}

	indexIDs, err := s.index.ListIDs(ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("list index ids: %w", err)
	}

	toDelete, toAdd := diffIDs(indexIDs, storeIDs)

	var result SyncResult
	for _, id := range toDelete {
		if err := s.index.Delete(ctx, id); err != nil {
			s.logger.Warn("failed to delete stale index entry",
				zap.Int64("id", id),
				zap.Error(err))
			result.Failed = append(result.Failed, FailedItem{ID: id, Reason: err.Error()})
			metrics.IndexDocumentsTotal.WithLabelValues("sync", "failed").Inc()
			continue
		}
		result.Deleted++
		metrics.IndexDocumentsTotal.WithLabelValues("sync", "deleted").Inc()
	}

	if len(toAdd) > 0 {
		records, err := s.records.RecordsByIDs(ctx, toAdd)
		if err != nil {
			return result, fmt.Errorf("load records to add: %w", err)
		}

		byID := make(map[int64]domain.Record, len(records))
		for _, rec := range records {
			byID[rec.ID] = rec
		}

		for _, id := range toAdd {
			rec, ok := byID[id]
			if !ok {
				// The record disappeared between the ID listing and
				// the fetch.
				result.Failed = append(result.Failed, FailedItem{
					ID:     id,
					Reason: domain.ErrRecordNotFound.Error(),
				})
				metrics.IndexDocumentsTotal.WithLabelValues("sync", "failed").Inc()
				continue
			}
			if err := s.indexRecord(ctx, rec); err != nil {
				s.logger.Warn("failed to add record to index",
					zap.Int64("id", id),
					zap.Error(err))
				result.Failed = append(result.Failed, FailedItem{ID: id, Reason: err.Error()})
				metrics.IndexDocumentsTotal.WithLabelValues("sync", "failed").Inc()
				continue
			}
			result.Added++
			metrics.IndexDocumentsTotal.WithLabelValues("sync", "added").Inc()
		}
	}

	if err := s.index.Refresh(ctx); err != nil {
		s.logger.Warn("index refresh failed", zap.Error(err))
	}

	metrics.IndexRunDuration.WithLabelValues("sync").Observe(time.Since(start).Seconds())

	s.logger.Info("index sync finished",
		zap.Int("deleted", result.Deleted),
		zap.Int("added", result.Added),
		zap.Int("failed", len(result.Failed)),
		zap.Duration("took", time.Since(start)))

	return result, nil
}

func (s *Service) indexRecord(ctx context.Context, rec domain.Record) error {
	emb, err := s.embedder.Embed(ctx, rec.EmbeddingText())
	if err != nil {
		return fmt.Errorf("embed record %d: %w", rec.ID, err)
	}
	doc := domain.DocumentFromRecord(rec, emb.Embedding)
	if err := s.index.Upsert(ctx, doc); err != nil {
		return fmt.Errorf("upsert record %d: %w", rec.ID, err)
	}
	return nil
}

// diffIDs computes the two sides of the reconciliation: index entries
// absent from the store, and store records absent from the index.
func diffIDs(indexIDs, storeIDs []int64) (toDelete, toAdd []int64) {
	inStore := make(map[int64]struct{}, len(storeIDs))
	for _, id := range storeIDs {
		inStore[id] = struct{}{}
	}
	inIndex := make(map[int64]struct{}, len(indexIDs))
	for _, id := range indexIDs {
		inIndex[id] = struct{}{}
	}

	for _, id := range indexIDs {
		if _, ok := inStore[id]; !ok {
			toDelete = append(toDelete, id)
		}
	}
	for _, id := range storeIDs {
		if _, ok := inIndex[id]; !ok {
			toAdd = append(toAdd, id)
		}
	}
	return toDelete, toAdd
}
