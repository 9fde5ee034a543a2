package main

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

const minFillTime = 3 * time.Second

type licenseOption struct {
	Value LicenseType `json:"value"`
	Label string      `json:"label"`
}

var licenseOptions = []licenseOption{
	{LicenseNonExclusive, LicenseNonExclusive.Label()},
	{LicenseExclusive, LicenseExclusive.Label()},
	{LicenseExclusiveStems, LicenseExclusiveStems.Label()},
	{LicenseCustom, LicenseCustom.Label()},
}

// lookupTrack resolves the optional track reference of the order form.
func (s *server) lookupTrack(ctx context.Context, raw string) (*Track, error) {
	if raw == "" {
		return nil, nil
	}

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.db.GetTrack(ctx, id)
}

func (s *server) renderOrderForm(w http.ResponseWriter, form *InquiryForm, track *Track, errs FormErrors) {
	data := map[string]interface{}{
		"form":     form,
		"errors":   errs,
		"licenses": licenseOptions,
	}
	if track != nil {
		data["track"] = newTrackView(track)
	}
	s.renderJSON(w, http.StatusOK, data)
}

func (s *server) getOrder(w http.ResponseWriter, r *http.Request) {
	sess := s.loadSession(r)
	sess.OrderStartedAt = s.now().Unix()
	err := s.saveSession(w, r, sess)
	if err != nil {
		s.renderError(w, http.StatusInternalServerError, err)
		return
	}

	track, err := s.lookupTrack(r.Context(), r.URL.Query().Get("track"))
	if err != nil {
		s.renderStoreError(w, err)
		return
	}

	if track != nil {
		err = s.db.IncrementOrderClicks(r.Context(), track.ID)
		if err != nil {
			s.renderError(w, http.StatusInternalServerError, err)
			return
		}
	}

	form := initialInquiryForm(track, r.URL.Query().Get("license"))
	s.renderOrderForm(w, form, track, FormErrors{})
}

func (s *server) postOrder(w http.ResponseWriter, r *http.Request) {
	allowed, err := s.orderLimiter.Allow(r.Context(), clientIP(r), s.now())
	if err != nil {
		s.renderError(w, http.StatusInternalServerError, err)
		return
	}
	if !allowed {
		s.renderError(w, http.StatusTooManyRequests, ErrRateLimited)
		return
	}

	err = r.ParseForm()
	if err != nil {
		s.renderError(w, http.StatusBadRequest, err)
		return
	}
	form := parseInquiryForm(r.PostForm)

	track, err := s.lookupTrack(r.Context(), form.Track)
	if err != nil {
		s.renderStoreError(w, err)
		return
	}

	sess := s.loadSession(r)
	if sess.OrderStartedAt != 0 && s.now().Sub(time.Unix(sess.OrderStartedAt, 0)) < minFillTime {
		s.renderError(w, http.StatusBadRequest, ErrTooFast)
		return
	}

	errs := form.Validate()
	if len(errs) > 0 {
		s.renderOrderForm(w, form, track, errs)
		return
	}

	inquiry := form.Inquiry(track)
	err = s.db.CreateInquiry(r.Context(), inquiry)
	if err != nil {
		s.renderError(w, http.StatusInternalServerError, err)
		return
	}
	slog.Info("new inquiry", "id", inquiry.ID, "license", inquiry.LicenseType)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), notifyTimeout)
	defer cancel()
	err = s.notifier.NotifyInquiry(ctx, inquiry)
	if err != nil {
		slog.Error("could not notify about inquiry", "id", inquiry.ID, "error", err)
	}

	http.Redirect(w, r, "/order/thanks?id="+strconv.FormatUint(inquiry.ID, 10), http.StatusSeeOther)
}

func (s *server) getOrderThanks(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{}
	if id, err := strconv.ParseUint(r.URL.Query().Get("id"), 10, 64); err == nil {
		data["inquiry_id"] = id
	}
	s.renderJSON(w, http.StatusOK, data)
}
