package feed

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"olga-cuts/internal/models"
)

func TestGenerateRSS(t *testing.T) {
	videos := []models.Video{
		{ID: 2, Hash: "bbb222", Title: "PARAÍSO FISCAL 6/3", Show: "paraiso-fiscal", Date: time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)},
		{ID: 1, Hash: "aaa111", Title: "SOÑÉ QUE VOLABA 5/3", Show: "sone-que-volaba", Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
	}
	cuts := []models.Cut{
		{ID: 1, Label: "Intro", Start: "00:00:10", VideoID: 1},
		{ID: 2, Label: "La previa", Start: "00:12:30", VideoID: 1},
	}
	videoURL := func(hash string) string { return "https://www.youtube.com/watch?v=" + hash }

	rss, err := GenerateRSS("https://cuts.example.com", videos, cuts, videoURL)
	require.NoError(t, err)

	assert.Contains(t, rss, "<link>https://cuts.example.com/cut/all</link>")
	assert.Contains(t, rss, "<title>PARAÍSO FISCAL 6/3</title>")
	assert.Contains(t, rss, "https://www.youtube.com/watch?v=aaa111")
	assert.Contains(t, rss, "00:00:10 Intro")
	assert.Contains(t, rss, "00:12:30 La previa")
	assert.Contains(t, rss, "paraiso-fiscal (2024-03-06): no cuts yet")
}

func TestGenerateRSSEmpty(t *testing.T) {
	rss, err := GenerateRSS("http://localhost:8080", nil, nil, func(string) string { return "" })
	require.NoError(t, err)
	assert.Contains(t, rss, "<channel>")
}

func TestBaseURL(t *testing.T) {
	req := httptest.NewRequest("GET", "http://cuts.local/feed.xml", nil)
	assert.Equal(t, "https://cuts.example.com", BaseURL("https://cuts.example.com/", req))

	req = httptest.NewRequest("GET", "/feed.xml", nil)
	req.Host = "cuts.local"
	req.Header.Set("X-Forwarded-Proto", "http")
	assert.Equal(t, "http://cuts.local", BaseURL("", req))
}
