package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/leen324/locscope/core"
	"github.com/leen324/locscope/internal/contract"
)

// SessionCookie names the cookie that keys a viewer to its session.
const SessionCookie = "locscope_session"

// viewerSession is one viewer's dispatcher plus bookkeeping.
type viewerSession struct {
	id       string
	session  *core.Session
	lastSeen time.Time
}

// sessionStore keeps one core.Session per viewer in memory. Sessions are never
// persisted and are dropped after idle has elapsed without a request.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*viewerSession

	cfg     *contract.Config
	mgr     contract.CacheManager
	metrics *Metrics
	idle    time.Duration
	now     func() time.Time
}

func newSessionStore(cfg *contract.Config, mgr contract.CacheManager, metrics *Metrics, idle time.Duration) *sessionStore {
	return &sessionStore{
		sessions: make(map[string]*viewerSession),
		cfg:      cfg,
		mgr:      mgr,
		metrics:  metrics,
		idle:     idle,
		now:      time.Now,
	}
}

// acquire returns the session named by the request cookie, creating and loading
// a new one (and setting the cookie) when there is none.
func (st *sessionStore) acquire(w http.ResponseWriter, r *http.Request) *viewerSession {
	if c, err := r.Cookie(SessionCookie); err == nil {
		st.mu.Lock()
		vs, ok := st.sessions[c.Value]
		if ok {
			vs.lastSeen = st.now()
		}
		st.mu.Unlock()
		if ok {
			return vs
		}
	}

	vs := &viewerSession{
		id:       uuid.New().String(),
		session:  core.NewSession(st.cfg, st.mgr, st.metrics),
		lastSeen: st.now(),
	}
	_, _ = st.load(r.Context(), vs)

	st.mu.Lock()
	st.sessions[vs.id] = vs
	st.metrics.sessionsActive.Set(float64(len(st.sessions)))
	st.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    vs.id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	contract.Logger.WithField("session", vs.id).Info("session created")
	return vs
}

// load runs one load for vs. The loader logs failures, and a failed first load
// leaves the session without data so handlers answer with the no-data error.
func (st *sessionStore) load(ctx context.Context, vs *viewerSession) (core.LoadResult, error) {
	res, err := vs.session.Reload(ctx)
	st.metrics.observeLoad(err)
	return res, err
}

// sweep drops sessions idle since before now-idle and returns how many it dropped.
func (st *sessionStore) sweep() int {
	cutoff := st.now().Add(-st.idle)

	st.mu.Lock()
	defer st.mu.Unlock()
	dropped := 0
	for id, vs := range st.sessions {
		if vs.lastSeen.Before(cutoff) {
			delete(st.sessions, id)
			dropped++
		}
	}
	st.metrics.sessionsActive.Set(float64(len(st.sessions)))
	return dropped
}

// janitor sweeps periodically until ctx is done.
func (st *sessionStore) janitor(ctx context.Context, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := st.sweep(); n > 0 {
				contract.Logger.WithField("dropped", n).Debug("idle sessions swept")
			}
		}
	}
}

func (st *sessionStore) len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
