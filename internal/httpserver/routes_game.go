// internal/httpserver/routes_game.go
//
// HTTP routes for playing a session.
//   - POST /session        → issue (or resume) a session token
//   - GET  /state          → current snapshot
//   - POST /guess/name     → guess a country of the current letter
//   - POST /guess/capital  → guess the capital of a country
//   - POST /next           → advance to the next letter (or reveal the total)
//   - POST /hint           → give away the next country (-1 point)
//   - POST /reset          → start over and drop the autosave
//   - GET  /save           → current save code
//   - POST /load           → replace the game with a save code
//
// Wrong guesses are not errors: they answer 200 with ok=false.
// Request bodies are capped at maxBody bytes.

package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/capitals/internal/game"
)

// maxBody caps JSON request bodies; every payload is a few short strings.
const maxBody = 4 << 10

// mountGame registers the session-scoped routes.
func (s *Server) mountGame(r chi.Router) {
	r.Get("/state", s.handleState)
	r.Post("/guess/name", s.handleGuessName)
	r.Post("/guess/capital", s.handleGuessCapital)
	r.Post("/next", s.handleNext)
	r.Post("/hint", s.handleHint)
	r.Post("/reset", s.handleReset)
	r.Get("/save", s.handleSave)
	r.Post("/load", s.handleLoad)
}

// sessionRes is returned by POST /session.
type sessionRes struct {
	Token string        `json:"token"`
	State game.Snapshot `json:"state"`
}

// actionRes is returned by every game action.
type actionRes struct {
	OK    *bool         `json:"ok,omitempty"` // omitted for actions that cannot fail
	State game.Snapshot `json:"state"`
}

// handleSession resumes the caller's session when it presents a valid token,
// otherwise creates a new one. ?new=1 always creates.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("new") == "" {
		if tok := s.bearerOrCookie(r); tok != "" {
			if sid, err := s.parseToken(tok); err == nil {
				sess := s.sessions.Get(r.Context(), sid)
				_ = json.NewEncoder(w).Encode(sessionRes{Token: tok, State: sess.Snapshot()})
				return
			}
		}
	}

	sess := s.sessions.Create(r.Context())
	tok, exp, err := s.signToken(sess.ID)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("sign session token")
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	s.setSessionCookie(w, tok, exp)
	hlog.FromRequest(r).Info().Str("session", sess.ID).Msg("session created")
	_ = json.NewEncoder(w).Encode(sessionRes{Token: tok, State: sess.Snapshot()})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(actionRes{State: currentSession(r).Snapshot()})
}

// guessNameReq is the payload of POST /guess/name.
type guessNameReq struct {
	Guess string `json:"guess"`
}

func (s *Server) handleGuessName(w http.ResponseWriter, r *http.Request) {
	var req guessNameReq
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	ok, snap := currentSession(r).GuessName(r.Context(), req.Guess)
	_ = json.NewEncoder(w).Encode(actionRes{OK: &ok, State: snap})
}

// guessCapitalReq is the payload of POST /guess/capital.
type guessCapitalReq struct {
	Name  string `json:"name"`
	Guess string `json:"guess"`
}

func (s *Server) handleGuessCapital(w http.ResponseWriter, r *http.Request) {
	var req guessCapitalReq
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	ok, snap := currentSession(r).GuessCapital(r.Context(), req.Name, req.Guess)
	_ = json.NewEncoder(w).Encode(actionRes{OK: &ok, State: snap})
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	ok, snap := currentSession(r).AdvanceRound(r.Context())
	_ = json.NewEncoder(w).Encode(actionRes{OK: &ok, State: snap})
}

func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(actionRes{State: currentSession(r).Hint(r.Context())})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(actionRes{State: currentSession(r).Reset(r.Context())})
}

// saveRes carries a save code for GET /save and POST /load.
type saveRes struct {
	Code string `json:"code"`
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	code, err := currentSession(r).Serialize()
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("encode save")
		writeError(w, http.StatusInternalServerError, "encode_failed")
		return
	}
	_ = json.NewEncoder(w).Encode(saveRes{Code: code})
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	var req saveRes
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	snap, err := currentSession(r).Deserialize(r.Context(), req.Code)
	if err != nil {
		hlog.FromRequest(r).Debug().Err(err).Msg("rejected save code")
		writeError(w, http.StatusBadRequest, "invalid_code")
		return
	}
	_ = json.NewEncoder(w).Encode(actionRes{State: snap})
}
