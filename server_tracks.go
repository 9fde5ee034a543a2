package main

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

const viewCooldown = time.Hour

func (s *server) getTrack(w http.ResponseWriter, r *http.Request) {
	track, err := s.db.GetTrackBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		s.renderStoreError(w, err)
		return
	}

	sess := s.loadSession(r)
	if sess.markViewed(track.ID, s.now(), viewCooldown) {
		err = s.db.IncrementViewCount(r.Context(), track.ID)
		if err != nil {
			s.renderError(w, http.StatusInternalServerError, err)
			return
		}
		track.ViewCount++

		err = s.saveSession(w, r, sess)
		if err != nil {
			s.renderError(w, http.StatusInternalServerError, err)
			return
		}
	}

	related, err := s.db.GetRelatedTracks(r.Context(), track, relatedLimit)
	if err != nil {
		s.renderError(w, http.StatusInternalServerError, err)
		return
	}

	gender, other := splitGenres(track.Genres, func(g *Genre) bool {
		return genderTokens[g.Slug]
	})

	s.renderJSON(w, http.StatusOK, map[string]interface{}{
		"track":       newTrackView(track),
		"gender_tags": gender,
		"other_tags":  other,
		"related":     newTrackViews(related),
		"order_links": orderLinks(track),
	})
}

// orderLinks returns the prefilled order form links for each license code.
func orderLinks(track *Track) map[string]string {
	links := make(map[string]string, len(licenseCodes))
	for code := range licenseCodes {
		q := url.Values{}
		q.Set("track", strconv.FormatUint(track.ID, 10))
		q.Set("license", code)
		links[code] = "/order?" + q.Encode()
	}
	return links
}
