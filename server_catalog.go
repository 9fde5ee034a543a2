package main

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
)

const catalogPageSize = 21

// trackView is a track as handed to the presentation layer.
type trackView struct {
	*Track
	URL      string `json:"url"`
	EmbedURL string `json:"embed_url,omitempty"`
}

func newTrackView(track *Track) *trackView {
	v := &trackView{
		Track: track,
		URL:   "/track/" + track.Slug,
	}
	if embed, ok := track.EmbedURL(); ok {
		v.EmbedURL = embed
	}
	return v
}

func newTrackViews(tracks []*Track) []*trackView {
	views := make([]*trackView, 0, len(tracks))
	for _, t := range tracks {
		views = append(views, newTrackView(t))
	}
	return views
}

func (s *server) getHome(w http.ResponseWriter, r *http.Request) {
	featured, err := s.db.GetFeaturedTracks(r.Context(), homeLimit)
	if err != nil {
		s.renderError(w, http.StatusInternalServerError, err)
		return
	}

	latest, err := s.db.GetLatestTracks(r.Context(), homeLimit)
	if err != nil {
		s.renderError(w, http.StatusInternalServerError, err)
		return
	}

	genres, err := s.db.GetTopGenres(r.Context(), topGenres)
	if err != nil {
		s.renderError(w, http.StatusInternalServerError, err)
		return
	}

	s.renderJSON(w, http.StatusOK, map[string]interface{}{
		"featured":   newTrackViews(featured),
		"latest":     newTrackViews(latest),
		"top_genres": genres,
	})
}

func (s *server) getCatalog(w http.ResponseWriter, r *http.Request) {
	var active *Genre
	if slug := r.URL.Query().Get("genre"); slug != "" {
		genre, err := s.db.GetGenreBySlug(r.Context(), slug)
		switch {
		case err == nil:
			active = genre
		case !errors.Is(err, ErrNotFound):
			s.renderError(w, http.StatusInternalServerError, err)
			return
		}
	}

	total, err := s.db.CountTracks(r.Context(), active)
	if err != nil {
		s.renderError(w, http.StatusInternalServerError, err)
		return
	}

	p := newPagination(r, total, catalogPageSize, func(pg int) string {
		return catalogURL(active, pg)
	})

	tracks, err := s.db.GetTracks(r.Context(), active, p.Offset(catalogPageSize), catalogPageSize)
	if err != nil {
		s.renderError(w, http.StatusInternalServerError, err)
		return
	}

	genres, err := s.db.GetGenres(r.Context())
	if err != nil {
		s.renderError(w, http.StatusInternalServerError, err)
		return
	}
	primary, other := splitGenres(genres, (*Genre).IsPrimary)

	s.renderJSON(w, http.StatusOK, map[string]interface{}{
		"tracks":          newTrackViews(tracks),
		"pagination":      p,
		"active_genre":    active,
		"primary_genres":  primary,
		"other_genres":    other,
		"open_all_genres": active != nil && !active.IsPrimary(),
	})
}

func catalogURL(genre *Genre, page int) string {
	q := url.Values{}
	if genre != nil {
		q.Set("genre", genre.Slug)
	}
	q.Set("page", strconv.Itoa(page))
	return "/catalog?" + q.Encode()
}
