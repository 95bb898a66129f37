package ingest

import (
	"context"
	"log"

	"olga-cuts/internal/db"
	"olga-cuts/internal/models"
)

// BatchSize is the number of cuts written per insert statement.
const BatchSize = 20

type CutExtractor struct {
	source Source
}

func NewCutExtractor(source Source) *CutExtractor {
	return &CutExtractor{source: source}
}

// ExtractCuts fetches the cuts of one video, drops repeated (label, start) pairs and
// stores the rest in batches of BatchSize. It returns the number of unique cuts.
//
// A failure leaves earlier batches committed and marks the video FAILED so it can
// be picked up by RepairCuts.
func (e *CutExtractor) ExtractCuts(ctx context.Context, hash string, videoID int) (int, error) {
	found, err := e.source.FetchCuts(ctx, hash)
	if err != nil {
		e.markFailed(ctx, videoID)
		return 0, err
	}

	candidates := make([]models.Cut, len(found))
	for i, c := range found {
		candidates[i] = models.Cut{Label: c.Label, Start: c.Start, VideoID: videoID}
	}
	cuts := Dedupe(candidates)

	for _, batch := range Chunk(cuts, BatchSize) {
		if _, err := db.InsertCuts(ctx, batch); err != nil {
			e.markFailed(ctx, videoID)
			return 0, &PersistenceError{Op: "insert cuts", Err: err}
		}
	}

	if err := db.UpdateVideoCutsStatus(ctx, videoID, db.CutsCompleted); err != nil {
		return 0, &PersistenceError{Op: "mark cuts completed", Err: err}
	}

	log.Printf("Stored %d cuts for video %s", len(cuts), hash)
	return len(cuts), nil
}

// RepairCuts re-runs extraction for up to limit videos whose cuts never completed.
// It stops at the first failure and returns how many videos were repaired.
func (e *CutExtractor) RepairCuts(ctx context.Context, limit int) (int, error) {
	videos, err := db.GetVideosWithIncompleteCuts(ctx, limit)
	if err != nil {
		return 0, &PersistenceError{Op: "list videos with incomplete cuts", Err: err}
	}

	repaired := 0
	for _, v := range videos {
		log.Printf("Repairing cuts for video %s (%s)", v.Hash, v.CutsStatus)
		if _, err := e.ExtractCuts(ctx, v.Hash, v.ID); err != nil {
			return repaired, err
		}
		repaired++
	}
	return repaired, nil
}

func (e *CutExtractor) markFailed(ctx context.Context, videoID int) {
	if err := db.UpdateVideoCutsStatus(ctx, videoID, db.CutsFailed); err != nil {
		log.Printf("failed to mark cuts of video %d as failed: %v", videoID, err)
	}
}

// Dedupe drops cuts whose (label, start) pair was already seen. Order is kept.
func Dedupe(cuts []models.Cut) []models.Cut {
	type key struct{ label, start string }
	seen := make(map[key]bool, len(cuts))

	unique := make([]models.Cut, 0, len(cuts))
	for _, c := range cuts {
		k := key{c.Label, c.Start}
		if seen[k] {
			continue
		}
		seen[k] = true
		unique = append(unique, c)
	}
	return unique
}

// Chunk splits items into consecutive slices of at most size elements.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = len(items)
	}
	var chunks [][]T
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end])
	}
	return chunks
}
