package handlers

import (
	"log"
	"net/http"

	"olga-cuts/internal/db"
	"olga-cuts/internal/feed"
)

// feedSize is the number of videos listed in the feed.
const feedSize = 50

func (h *Handlers) GetRSSFeed(w http.ResponseWriter, r *http.Request) {
	videos, err := db.GetLatestVideos(r.Context(), feedSize)
	if err != nil {
		log.Printf("Error getting videos: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	ids := make([]int, len(videos))
	for i, v := range videos {
		ids[i] = v.ID
	}
	cuts, err := db.GetCutsByVideoIDs(r.Context(), ids)
	if err != nil {
		log.Printf("Error getting cuts: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	rss, err := feed.GenerateRSS(feed.BaseURL(h.baseURL, r), videos, cuts, h.videoURL)
	if err != nil {
		log.Printf("Error generating RSS: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml")
	w.Write([]byte(rss))
}
