package main

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

const (
	sessionCookie = "jwt"
	sessionTTL    = 14 * 24 * time.Hour

	// maxViewedTracks keeps the signed cookie well under the 4KB browser limit.
	maxViewedTracks = 100

	claimOrderStartedAt = "order_started_at"
	claimViewedTracks   = "viewed_tracks"
)

// session is the per visitor state kept in a signed cookie.
type session struct {
	OrderStartedAt int64
	ViewedTracks   map[string]int64
}

// loadSession reads the session verified by the jwtauth middleware. A
// missing, expired or tampered cookie yields an empty session.
func (s *server) loadSession(r *http.Request) *session {
	sess := &session{ViewedTracks: map[string]int64{}}

	token, claims, err := jwtauth.FromContext(r.Context())
	if err != nil || token == nil {
		return sess
	}

	sess.OrderStartedAt = claimInt(claims[claimOrderStartedAt])
	if viewed, ok := claims[claimViewedTracks].(map[string]interface{}); ok {
		for id, ts := range viewed {
			sess.ViewedTracks[id] = claimInt(ts)
		}
	}
	return sess
}

func (s *server) saveSession(w http.ResponseWriter, r *http.Request, sess *session) error {
	expiration := time.Now().Add(sessionTTL)

	_, signed, err := s.jwtAuth.Encode(map[string]interface{}{
		jwt.JwtIDKey:        uuid.NewString(),
		jwt.ExpirationKey:   expiration,
		claimOrderStartedAt: sess.OrderStartedAt,
		claimViewedTracks:   sess.ViewedTracks,
	})
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    string(signed),
		Expires:  expiration,
		Secure:   r.TLS != nil,
		HttpOnly: true,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func claimInt(v interface{}) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	case json.Number:
		i, _ := n.Int64()
		return i
	case string:
		i, _ := strconv.ParseInt(n, 10, 64)
		return i
	}
	return 0
}

// markViewed reports whether a view of track id at now falls outside the
// cooldown, recording it in the session when it does.
func (sess *session) markViewed(id uint64, now time.Time, cooldown time.Duration) bool {
	key := strconv.FormatUint(id, 10)
	last := sess.ViewedTracks[key]
	if now.Unix()-last <= int64(cooldown/time.Second) {
		return false
	}
	sess.ViewedTracks[key] = now.Unix()
	sess.pruneViewed(now, cooldown)
	return true
}

// pruneViewed forgets views outside the cooldown, which can no longer
// suppress a count, and then the oldest views beyond maxViewedTracks.
func (sess *session) pruneViewed(now time.Time, cooldown time.Duration) {
	for id, ts := range sess.ViewedTracks {
		if now.Unix()-ts > int64(cooldown/time.Second) {
			delete(sess.ViewedTracks, id)
		}
	}

	if len(sess.ViewedTracks) <= maxViewedTracks {
		return
	}

	ids := make([]string, 0, len(sess.ViewedTracks))
	for id := range sess.ViewedTracks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return sess.ViewedTracks[ids[i]] < sess.ViewedTracks[ids[j]]
	})
	for _, id := range ids[:len(ids)-maxViewedTracks] {
		delete(sess.ViewedTracks, id)
	}
}
