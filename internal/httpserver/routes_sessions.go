// internal/httpserver/routes_sessions.go
//
// Helper board endpoints.
//   - POST   /sessions                          → new board, returns token
//   - GET    /sessions/{id}                     → current board
//   - DELETE /sessions/{id}                     → forget the board
//   - POST   /sessions/{id}/keys                → key press {key}
//   - POST   /sessions/{id}/rows                → add a row
//   - POST   /sessions/{id}/reset               → clear the board
//   - PUT    /sessions/{id}/settings            → {enforce, cycle}
//   - GET    /sessions/{id}/check               → ?letter=&position= (zero-based column)
//   - POST   /sessions/{id}/cells/{row}/{col}/cycle|clear|drop
//   - GET    /sessions/{id}/export.xlsx         → spreadsheet of the board
//
// Refusals the player should see (conflicts, row capacity, occupied cells)
// answer 409 with the unchanged board so the UI can redraw and show the message.

package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/wordle-helper/internal/boardfile"
	"github.com/robalobadob/wordle-helper/internal/session"
	"github.com/robalobadob/wordle-helper/internal/store"
	"github.com/robalobadob/wordle-helper/internal/tracker"
	"github.com/robalobadob/wordle-helper/internal/view"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// mountSessions registers /sessions routes.
func (s *Server) mountSessions() {
	s.r.Post("/sessions", s.handleCreate)
	s.r.Route("/sessions/{id}", func(r chi.Router) {
		r.Use(s.requireSession())

		r.Get("/", s.handleGet)
		r.Delete("/", s.handleDelete)
		r.Post("/keys", s.handleKey)
		r.Post("/rows", s.mutate(func(_ *http.Request, sess *session.Session) (any, error) {
			return nil, sess.AddRow()
		}))
		r.Post("/reset", s.mutate(func(_ *http.Request, sess *session.Session) (any, error) {
			sess.Reset()
			return nil, nil
		}))
		r.Put("/settings", s.handleSettings)
		r.Get("/check", s.handleCheck)
		r.Route("/cells/{row}/{col}", func(r chi.Router) {
			r.Post("/cycle", s.handleCycle)
			r.Post("/clear", s.mutate(func(r *http.Request, sess *session.Session) (any, error) {
				row, col, err := cellParams(r)
				if err != nil {
					return nil, err
				}
				return nil, sess.Clear(row, col)
			}))
			r.Post("/drop", s.handleDrop)
		})
		r.Get("/export.xlsx", s.handleExport)
	})
}

// stateRes is the body of every successful board response.
type stateRes struct {
	SessionID string        `json:"sessionId"`
	Enforce   bool          `json:"enforce"`
	Board     view.Snapshot `json:"board"`
	Tag       tracker.Tag   `json:"tag,omitempty"` // set by /cycle
}

// noticeRes is the body of a 409.
type noticeRes struct {
	Error   string        `json:"error"`
	Message string        `json:"message"`
	Board   view.Snapshot `json:"board"`
}

func stateOf(sess *session.Session) stateRes {
	return stateRes{SessionID: sess.ID, Enforce: sess.Enforce, Board: sess.Snapshot()}
}

// ------------------------------ create --------------------------------------

type createReq struct {
	Enforce bool   `json:"enforce"`
	Cycle   string `json:"cycle"`
}

type createRes struct {
	stateRes
	Token string `json:"token"`
}

// handleCreate starts a new board and issues its token (body + cookie).
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	order, err := tracker.ParseCycleOrder(req.Cycle)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_cycle")
		return
	}

	sess := session.New(session.Options{Enforce: req.Enforce, Cycle: order})
	if err := s.store.Save(r.Context(), sess); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("save session")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}

	tok, exp, err := s.signToken(sess.ID)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("sign token")
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	s.setSessionCookie(w, tok, exp)

	hlog.FromRequest(r).Info().Str("session", sess.ID).Bool("enforce", sess.Enforce).
		Str("cycle", string(order)).Msg("session created")
	writeJSON(w, http.StatusCreated, createRes{stateRes: stateOf(sess), Token: tok})
}

// ------------------------------ read / delete -------------------------------

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, stateOf(sess))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.store.Delete(r.Context(), sessionID(r))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("delete session")
		writeError(w, http.StatusInternalServerError, "delete_failed")
		return
	}
	s.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ------------------------------ mutations -----------------------------------

type keyReq struct {
	Key string `json:"key"`
}

func (s *Server) handleKey(w http.ResponseWriter, r *http.Request) {
	var req keyReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	s.mutate(func(_ *http.Request, sess *session.Session) (any, error) {
		return nil, sess.Key(req.Key)
	})(w, r)
}

type settingsReq struct {
	Enforce *bool  `json:"enforce"` // nil keeps the current value
	Cycle   string `json:"cycle"`
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	s.mutate(func(_ *http.Request, sess *session.Session) (any, error) {
		enforce := sess.Enforce
		if req.Enforce != nil {
			enforce = *req.Enforce
		}
		return nil, sess.Configure(enforce, req.Cycle)
	})(w, r)
}

func (s *Server) handleCycle(w http.ResponseWriter, r *http.Request) {
	s.mutate(func(r *http.Request, sess *session.Session) (any, error) {
		row, col, err := cellParams(r)
		if err != nil {
			return nil, err
		}
		return sess.Click(row, col)
	})(w, r)
}

type dropReq struct {
	Letter string `json:"letter"`
}

func (s *Server) handleDrop(w http.ResponseWriter, r *http.Request) {
	var req dropReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	s.mutate(func(r *http.Request, sess *session.Session) (any, error) {
		row, col, err := cellParams(r)
		if err != nil {
			return nil, err
		}
		return nil, sess.Drop(req.Letter, row, col)
	})(w, r)
}

// mutate runs fn against the stored session and saves the result.
// fn may return a tracker.Tag to echo back (used by /cycle).
func (s *Server) mutate(fn func(r *http.Request, sess *session.Session) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		sess, ok := s.load(w, r)
		if !ok {
			return
		}
		extra, err := fn(r, sess)
		if err != nil {
			s.writeIntentError(w, r, sess, err)
			return
		}
		if err := s.store.Save(r.Context(), sess); err != nil {
			hlog.FromRequest(r).Error().Err(err).Str("session", sess.ID).Msg("save session")
			writeError(w, http.StatusInternalServerError, "save_failed")
			return
		}

		res := stateOf(sess)
		if tag, ok := extra.(tracker.Tag); ok {
			res.Tag = tag
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// ------------------------------ queries -------------------------------------

type checkRes struct {
	Allowed bool   `json:"allowed"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// handleCheck answers whether a letter may go into a column, without changing anything.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	col, err := strconv.Atoi(r.URL.Query().Get("position"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_position")
		return
	}
	sess, ok := s.load(w, r)
	if !ok {
		return
	}

	err = sess.Check(r.URL.Query().Get("letter"), col)
	var n *session.Notice
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, checkRes{Allowed: true})
	case errors.As(err, &n):
		writeJSON(w, http.StatusOK, checkRes{Error: n.Code, Message: n.Message})
	default:
		s.writeIntentError(w, r, sess, err)
	}
}

// handleExport streams the board as an .xlsx workbook.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.load(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="wordle-helper.xlsx"`)
	if err := boardfile.WriteXLSX(w, sess.Snapshot()); err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("session", sess.ID).Msg("export xlsx")
	}
}

// ------------------------------ helpers -------------------------------------

// load fetches the authorized session, writing 404/500 itself on failure.
func (s *Server) load(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.store.Get(r.Context(), sessionID(r))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return nil, false
	}
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("load session")
		writeError(w, http.StatusInternalServerError, "load_failed")
		return nil, false
	}
	return sess, true
}

// writeIntentError maps a refused intent onto a status code.
func (s *Server) writeIntentError(w http.ResponseWriter, r *http.Request, sess *session.Session, err error) {
	var n *session.Notice
	switch {
	case errors.As(err, &n):
		hlog.FromRequest(r).Debug().Str("session", sess.ID).Str("notice", n.Code).Msg(n.Message)
		writeJSON(w, http.StatusConflict, noticeRes{Error: n.Code, Message: n.Message, Board: sess.Snapshot()})
	case errors.Is(err, tracker.ErrInvalidLetter):
		writeError(w, http.StatusBadRequest, "invalid_letter")
	case errors.Is(err, tracker.ErrInvalidCell):
		writeError(w, http.StatusBadRequest, "invalid_cell")
	case errors.Is(err, tracker.ErrInvalidCycle):
		writeError(w, http.StatusBadRequest, "invalid_cycle")
	default:
		hlog.FromRequest(r).Error().Err(err).Str("session", sess.ID).Msg("intent failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
	}
}

// cellParams reads {row} and {col} from the URL.
func cellParams(r *http.Request) (int, int, error) {
	row, err := strconv.Atoi(chi.URLParam(r, "row"))
	if err != nil {
		return 0, 0, tracker.ErrInvalidCell
	}
	col, err := strconv.Atoi(chi.URLParam(r, "col"))
	if err != nil {
		return 0, 0, tracker.ErrInvalidCell
	}
	return row, col, nil
}
