package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const apiPageSize = 50

type trackRequest struct {
	Title       string `json:"title"`
	SourceURL   string `json:"source_url"`
	Description string `json:"description"`
	IsFeatured  bool   `json:"is_featured"`
	Slug        string `json:"slug"`
}

func (t *trackRequest) validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: title is missing", ErrInvalidInput)
	}
	u, err := url.ParseRequestURI(t.SourceURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: source_url must be an http(s) URL", ErrInvalidInput)
	}
	if t.Slug != "" && slugify(t.Slug) != t.Slug {
		return fmt.Errorf("%w: slug %q is not a valid slug", ErrInvalidInput, t.Slug)
	}
	return nil
}

func (t *trackRequest) apply(track *Track) {
	track.Title = strings.TrimSpace(t.Title)
	track.SourceURL = t.SourceURL
	track.Description = t.Description
	track.IsFeatured = t.IsFeatured
	if t.Slug != "" {
		track.Slug = t.Slug
	}
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	err := dec.Decode(dst)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	return nil
}

func (s *server) postApiTrack(w http.ResponseWriter, r *http.Request) {
	var req trackRequest
	err := decodeJSON(r, &req)
	if err == nil {
		err = req.validate()
	}
	if err != nil {
		s.renderError(w, http.StatusBadRequest, err)
		return
	}

	track := &Track{CreatedAt: s.now()}
	req.apply(track)
	s.saveApiTrack(w, r, track, http.StatusCreated)
}

func (s *server) putApiTrack(w http.ResponseWriter, r *http.Request) {
	id, err := extractID(r)
	if err != nil {
		s.renderError(w, http.StatusBadRequest, err)
		return
	}

	var req trackRequest
	err = decodeJSON(r, &req)
	if err == nil {
		err = req.validate()
	}
	if err != nil {
		s.renderError(w, http.StatusBadRequest, err)
		return
	}

	track, err := s.db.GetTrack(r.Context(), id)
	if err != nil {
		s.renderStoreError(w, err)
		return
	}

	req.apply(track)
	s.saveApiTrack(w, r, track, http.StatusOK)
}

func (s *server) saveApiTrack(w http.ResponseWriter, r *http.Request, track *Track, code int) {
	err := s.db.SaveTrack(r.Context(), track)
	if err != nil {
		s.renderError(w, http.StatusInternalServerError, err)
		return
	}

	saved, err := s.db.GetTrack(r.Context(), track.ID)
	if err != nil {
		s.renderStoreError(w, err)
		return
	}
	s.renderJSON(w, code, newTrackView(saved))
}

func (s *server) deleteApiTrack(w http.ResponseWriter, r *http.Request) {
	id, err := extractID(r)
	if err != nil {
		s.renderError(w, http.StatusBadRequest, err)
		return
	}

	err = s.db.DeleteTrack(r.Context(), id)
	if err != nil {
		s.renderStoreError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *server) postApiGenre(w http.ResponseWriter, r *http.Request) {
	var genre Genre
	err := decodeJSON(r, &genre)
	if err != nil {
		s.renderError(w, http.StatusBadRequest, err)
		return
	}

	genre.ID = 0
	genre.Name = strings.TrimSpace(truncate(genre.Name, genreNameLength))
	if genre.Name == "" {
		s.renderError(w, http.StatusBadRequest, fmt.Errorf("%w: name is missing", ErrInvalidInput))
		return
	}

	err = s.db.CreateGenre(r.Context(), &genre)
	if errors.Is(err, ErrInvalidInput) {
		s.renderError(w, http.StatusBadRequest, err)
		return
	} else if err != nil {
		s.renderError(w, http.StatusInternalServerError, err)
		return
	}

	s.renderJSON(w, http.StatusCreated, &genre)
}

func (s *server) getApiInquiries(w http.ResponseWriter, r *http.Request) {
	status := InquiryStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		s.renderError(w, http.StatusBadRequest, ErrInvalidStatus)
		return
	}

	total, err := s.db.CountInquiries(r.Context(), status)
	if err != nil {
		s.renderError(w, http.StatusInternalServerError, err)
		return
	}

	p := newPagination(r, total, apiPageSize, func(pg int) string {
		q := url.Values{}
		if status != "" {
			q.Set("status", string(status))
		}
		q.Set("page", fmt.Sprint(pg))
		return "/api/inquiries?" + q.Encode()
	})

	inquiries, err := s.db.GetInquiries(r.Context(), status, p.Offset(apiPageSize), apiPageSize)
	if err != nil {
		s.renderError(w, http.StatusInternalServerError, err)
		return
	}

	s.renderJSON(w, http.StatusOK, map[string]interface{}{
		"inquiries":  inquiries,
		"pagination": p,
	})
}

func (s *server) patchApiInquiry(w http.ResponseWriter, r *http.Request) {
	id, err := extractID(r)
	if err != nil {
		s.renderError(w, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Status InquiryStatus `json:"status"`
	}
	err = decodeJSON(r, &req)
	if err != nil {
		s.renderError(w, http.StatusBadRequest, err)
		return
	}

	err = s.db.UpdateInquiryStatus(r.Context(), id, req.Status)
	if errors.Is(err, ErrInvalidStatus) {
		s.renderError(w, http.StatusBadRequest, err)
		return
	} else if err != nil {
		s.renderStoreError(w, err)
		return
	}

	inquiry, err := s.db.GetInquiry(r.Context(), id)
	if err != nil {
		s.renderStoreError(w, err)
		return
	}
	s.renderJSON(w, http.StatusOK, inquiry)
}

// mustApiToken checks the "Authorization: Token <token>" header against a
// bcrypt hash of the operator token.
func mustApiToken(hash []byte) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Token ")
			if !ok || bcrypt.CompareHashAndPassword(hash, []byte(token)) != nil {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
