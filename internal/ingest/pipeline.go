// Package ingest turns a day of published videos into stored videos and cuts.
package ingest

import (
	"context"
	"fmt"
	"log"
	"time"

	"olga-cuts/internal/calendar"
	"olga-cuts/internal/db"
	"olga-cuts/internal/models"
	"olga-cuts/internal/show"
	"olga-cuts/internal/youtube"
)

// Source is the external video source.
type Source interface {
	FetchListing(ctx context.Context, day, month int) (string, error)
	FetchCuts(ctx context.Context, hash string) ([]youtube.Cut, error)
}

type Outcome string

const (
	// Ingested means at least one new video was stored.
	Ingested Outcome = "ingested"
	// NothingPublished means the listing had no video for the day.
	NothingPublished Outcome = "nothing_published"
	// AlreadyIngested means every video of the day was already stored.
	AlreadyIngested Outcome = "already_ingested"
)

// Result is the outcome of ingesting one day.
type Result struct {
	Date    time.Time
	Outcome Outcome
	Added   []models.VideoSummary
}

type Pipeline struct {
	source Source
	cuts   *CutExtractor
}

func NewPipeline(source Source) *Pipeline {
	return &Pipeline{source: source, cuts: NewCutExtractor(source)}
}

// Cuts returns the extractor the pipeline runs for every new video.
func (p *Pipeline) Cuts() *CutExtractor {
	return p.cuts
}

// IngestDay fetches the listing for a day, stores the videos not seen before and
// extracts their cuts one video at a time. The first failing video aborts the call;
// videos handled before it keep their rows and cuts.
func (p *Pipeline) IngestDay(ctx context.Context, day, month, year int) (*Result, error) {
	if !calendar.IsValid(day, month, year) {
		return nil, &ValidationError{Message: fmt.Sprintf("%d/%d/%d is not a valid date", day, month, year)}
	}
	date := calendar.Date(day, month, year)
	result := &Result{Date: date}

	log.Printf("Ingesting day %s", date.Format(calendar.Layout))

	markup, err := p.source.FetchListing(ctx, day, month)
	if err != nil {
		return nil, err
	}

	candidates, err := extractCandidates(markup, day, month, date)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		log.Printf("No videos published on %s", date.Format(calendar.Layout))
		result.Outcome = NothingPublished
		return result, nil
	}

	hashes := make([]string, len(candidates))
	for i, c := range candidates {
		hashes[i] = c.Hash
	}
	existing, err := db.FindExistingHashes(ctx, hashes)
	if err != nil {
		return nil, &PersistenceError{Op: "look up existing videos", Err: err}
	}

	fresh := withoutHashes(candidates, existing)
	if len(fresh) == 0 {
		log.Printf("All %d videos of %s were already ingested", len(candidates), date.Format(calendar.Layout))
		result.Outcome = AlreadyIngested
		return result, nil
	}

	added, err := db.InsertVideos(ctx, fresh)
	if err != nil {
		return nil, &PersistenceError{Op: "insert videos", Err: err}
	}
	if len(added) == 0 {
		// Another ingestion stored the same hashes between the lookup and the insert.
		result.Outcome = AlreadyIngested
		return result, nil
	}

	for _, v := range added {
		if _, err := p.cuts.ExtractCuts(ctx, v.Hash, v.ID); err != nil {
			return nil, fmt.Errorf("failed to extract cuts for video %s: %w", v.Hash, err)
		}
	}

	log.Printf("Ingested %d videos for %s", len(added), date.Format(calendar.Layout))
	result.Outcome = Ingested
	result.Added = added
	return result, nil
}

// extractCandidates classifies every listed video and collapses repeated hashes,
// keeping the first occurrence. A single unclassifiable title fails the whole day.
func extractCandidates(markup string, day, month int, date time.Time) ([]models.NewVideo, error) {
	var candidates []models.NewVideo
	seen := make(map[string]bool)

	for rec, err := range youtube.ExtractRecords(markup, day, month) {
		if err != nil {
			return nil, err
		}
		s, err := show.Classify(rec.Title)
		if err != nil {
			return nil, err
		}
		if seen[rec.Hash] {
			continue
		}
		seen[rec.Hash] = true
		candidates = append(candidates, models.NewVideo{
			Hash:  rec.Hash,
			Title: rec.Title,
			Show:  s,
			Date:  date,
		})
	}
	return candidates, nil
}

func withoutHashes(videos []models.NewVideo, hashes []string) []models.NewVideo {
	drop := make(map[string]bool, len(hashes))
	for _, h := range hashes {
		drop[h] = true
	}

	var kept []models.NewVideo
	for _, v := range videos {
		if !drop[v.Hash] {
			kept = append(kept, v)
		}
	}
	return kept
}
