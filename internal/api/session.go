package api

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"

	"faultwatch/internal/models"
	"faultwatch/internal/notify"
)

const sessionCookie = "faultwatch_session"

// session is one interactive lifetime. It keeps the latest oracle output
// so filter changes re-evaluate the pipeline without re-invoking the
// oracle, plus the notification state that must survive re-executions.
type session struct {
	state      notify.SessionState
	records    []models.PredictionRecord
	hasBatch   bool
	fileErrors []string
	lastError  string
}

type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*session
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{sessions: make(map[string]*session)}
}

// get returns the request's session, creating one (and setting the
// cookie) if needed. The registry lock only guards the map; parallel
// requests for the same session may interleave, and the at-most-once
// send is enforced inside SessionState itself.
func (r *sessionRegistry) get(w http.ResponseWriter, req *http.Request) *session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, err := req.Cookie(sessionCookie); err == nil {
		if sess, ok := r.sessions[c.Value]; ok {
			return sess
		}
	}

	id := newSessionID()
	sess := &session{}
	r.sessions[id] = sess
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
	})
	return sess
}

func newSessionID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
