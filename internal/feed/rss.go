// Package feed renders recently ingested videos and their cuts as RSS.
package feed

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/eduncan911/podcast"
	"olga-cuts/internal/models"
)

// BaseURL returns configured when set, otherwise the URL the request came in on.
func BaseURL(configured string, r *http.Request) string {
	if configured != "" {
		return strings.TrimRight(configured, "/")
	}

	scheme := r.URL.Scheme
	if scheme == "" {
		scheme = "https"
		if r.Header.Get("X-Forwarded-Proto") != "" {
			scheme = r.Header.Get("X-Forwarded-Proto")
		}
	}

	return fmt.Sprintf("%s://%s", scheme, r.Host)
}

// GenerateRSS builds one item per video, newest first as given. Each item lists the
// video's cuts; videoURL maps a hash to the page the item links to.
func GenerateRSS(baseURL string, videos []models.Video, cuts []models.Cut, videoURL func(hash string) string) (string, error) {
	byVideo := make(map[int][]models.Cut)
	for _, c := range cuts {
		byVideo[c.VideoID] = append(byVideo[c.VideoID], c)
	}

	var updated *time.Time
	if len(videos) > 0 {
		updated = &videos[0].Date
	} else {
		updated = &time.Time{}
	}

	p := podcast.New(
		"Olga en vivo: cortes",
		fmt.Sprintf("%s/cut/all", baseURL),
		"Videos published by the channel, split into their cuts.",
		updated, updated,
	)

	for _, v := range videos {
		date := v.Date
		item := podcast.Item{
			Title:       v.Title,
			Link:        videoURL(v.Hash),
			Description: describe(v, byVideo[v.ID]),
			PubDate:     &date,
		}
		if _, err := p.AddItem(item); err != nil {
			return "", err
		}
	}

	return p.String(), nil
}

func describe(v models.Video, cuts []models.Cut) string {
	if len(cuts) == 0 {
		return fmt.Sprintf("%s (%s): no cuts yet", v.Show, v.Date.Format("2006-01-02"))
	}
	var b strings.Builder
	for i, c := range cuts {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s %s", c.Start, c.Label)
	}
	return b.String()
}
