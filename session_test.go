package main

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

func TestMarkViewedPrunes(t *testing.T) {
	sess := &session{ViewedTracks: map[string]int64{}}

	sess.markViewed(1, baseTime, time.Hour)
	sess.markViewed(2, baseTime.Add(30*time.Minute), time.Hour)
	if !sess.markViewed(3, baseTime.Add(61*time.Minute), time.Hour) {
		t.Fatal("expected a new track to count")
	}

	if _, ok := sess.ViewedTracks["1"]; ok {
		t.Error("expected the view outside the cooldown to be dropped")
	}
	if len(sess.ViewedTracks) != 2 {
		t.Errorf("expected two remembered views, got %v", sess.ViewedTracks)
	}
	if sess.markViewed(2, baseTime.Add(61*time.Minute), time.Hour) {
		t.Error("expected the view inside the cooldown to be kept")
	}
}

func TestMarkViewedCapsEntries(t *testing.T) {
	sess := &session{ViewedTracks: map[string]int64{}}

	now := baseTime
	for id := uint64(1); id <= maxViewedTracks+20; id++ {
		sess.markViewed(id, now, time.Hour)
		now = now.Add(time.Second)
	}

	if len(sess.ViewedTracks) != maxViewedTracks {
		t.Fatalf("expected %d remembered views, got %d", maxViewedTracks, len(sess.ViewedTracks))
	}
	if _, ok := sess.ViewedTracks["20"]; ok {
		t.Error("expected the oldest views to be dropped")
	}
	if _, ok := sess.ViewedTracks[strconv.Itoa(maxViewedTracks+20)]; !ok {
		t.Error("expected the latest view to be kept")
	}
}

func TestSaveSessionSecure(t *testing.T) {
	srv := newServer(newTestDatabase(t), nil, "secret", "")

	tests := []struct {
		target string
		secure bool
	}{
		{"http://example.com/order", false},
		{"https://example.com/order", true},
	}

	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, tt.target, nil)
		w := httptest.NewRecorder()
		if err := srv.saveSession(w, r, &session{ViewedTracks: map[string]int64{}}); err != nil {
			t.Fatalf("%s: failed to save session: %v", tt.target, err)
		}

		cookies := w.Result().Cookies()
		if len(cookies) != 1 || cookies[0].Name != sessionCookie {
			t.Fatalf("%s: unexpected cookies %v", tt.target, cookies)
		}
		if cookies[0].Secure != tt.secure {
			t.Errorf("%s: expected secure=%v", tt.target, tt.secure)
		}
	}
}
