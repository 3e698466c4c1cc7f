package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/thisarray/xoxo/internal/app"
	"github.com/thisarray/xoxo/internal/domain"
)

type handlers struct {
	svc       *app.Service
	tpl       *templates
	log       zerolog.Logger
	heartbeat time.Duration
	defaults  app.Settings
}

func (h *handlers) renderBoard(gs app.GameState, errMsg string) []byte {
	return renderTemplate(h.tpl.board, newBoardView(gs, errMsg))
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
	writeHTML(w, http.StatusOK, renderTemplate(h.tpl.index, indexView{Settings: h.defaults, MaxCells: h.svc.MaxCells()}))
}

// settingsFromForm reads the new game form; missing fields keep the defaults.
func (h *handlers) settingsFromForm(r *http.Request) (app.Settings, error) {
	st := h.defaults
	if err := r.ParseForm(); err != nil {
		return st, err
	}
	for name, dst := range map[string]*int{"width": &st.Width, "height": &st.Height, "length": &st.WinLength} {
		v := r.Form.Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return st, app.ErrInvalidSettings
		}
		*dst = n
	}
	switch r.Form.Get("marker") {
	case "":
	case "X", "x":
		st.Human = domain.X
	case "O", "o":
		st.Human = domain.O
	default:
		return st, app.ErrInvalidSettings
	}
	if r.Form.Has("first") {
		st.ComputerFirst = r.Form.Get("first") != "0" && r.Form.Get("first") != "false"
	}
	return st, nil
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
	st, err := h.settingsFromForm(r)
	if err != nil {
		http.Error(w, "invalid game settings", http.StatusBadRequest)
		return
	}
	gs, err := h.svc.CreateGame(r.Context(), st)
	switch {
	case errors.Is(err, app.ErrBoardTooLarge):
		http.Error(w, "board too large, at most "+strconv.Itoa(h.svc.MaxCells())+" cells", http.StatusBadRequest)
		return
	case errors.Is(err, app.ErrInvalidSettings):
		http.Error(w, "invalid game settings", http.StatusBadRequest)
		return
	case err != nil:
		h.log.Error().Err(err).Msg("create game failed")
		http.Error(w, "failed to create", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/game/"+gs.ID, http.StatusSeeOther)
}

func (h *handlers) view(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	// ensure cookie and auto-claim seat
	pid := ensurePlayerCookie(w, r)
	_, gs, err := h.svc.Join(r.Context(), id, pid)
	if err != nil {
		h.notFoundOrFail(w, r, err)
		return
	}
	writeHTML(w, http.StatusOK, renderTemplate(h.tpl.game, newBoardView(*gs, "")))
}

func (h *handlers) join(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pid := ensurePlayerCookie(w, r)
	isPlayer, gs, err := h.svc.Join(r.Context(), id, pid)
	if err != nil {
		h.notFoundOrFail(w, r, err)
		return
	}
	msg := ""
	if !isPlayer {
		msg = "You are a spectator"
	}
	writeHTML(w, http.StatusOK, h.renderBoard(*gs, msg))
}

func (h *handlers) play(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pid := ensurePlayerCookie(w, r)
	_ = r.ParseForm()
	x, errX := strconv.Atoi(r.Form.Get("x"))
	y, errY := strconv.Atoi(r.Form.Get("y"))
	if errX != nil || errY != nil {
		x, y = -1, -1
	}
	gs, err := h.svc.Play(r.Context(), id, pid, x, y)
	var errMsg string
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		switch {
		case errors.Is(err, app.ErrNotAPlayer):
			errMsg = "You are a spectator"
		case errors.Is(err, app.ErrGameOver):
			errMsg = "Game is over"
		default:
			errMsg = "Invalid move"
		}
		var ok bool
		if gs, ok = h.svc.Get(r.Context(), id); !ok {
			http.NotFound(w, r)
			return
		}
	}
	writeHTML(w, http.StatusOK, h.renderBoard(*gs, errMsg))
}

func (h *handlers) hint(w http.ResponseWriter, r *http.Request) {
	hint, err := h.svc.Hint(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, app.ErrGameOver):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	case err != nil:
		h.notFoundOrFail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hint)
}

func (h *handlers) boardText(w http.ResponseWriter, r *http.Request) {
	gs, ok := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(gs.Board.String()))
}

func (h *handlers) notFoundOrFail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, app.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	h.log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	http.Error(w, "internal error", http.StatusInternalServerError)
}
