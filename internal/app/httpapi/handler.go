// Package httpapi exposes the draw engine's REST surface.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	app "github.com/sorteiohub/draw-engine/internal/app"
	"github.com/sorteiohub/draw-engine/internal/app/domain/draw"
	"github.com/sorteiohub/draw-engine/internal/app/domain/game"
	"github.com/sorteiohub/draw-engine/internal/app/fair"
	cardsvc "github.com/sorteiohub/draw-engine/internal/app/services/cards"
	"github.com/sorteiohub/draw-engine/internal/app/storage"
)

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app *app.Application
}

// NewHandler returns a mux exposing the core REST API.
func NewHandler(application *app.Application) http.Handler {
	h := &handler{app: application}
	mux := http.NewServeMux()
	mux.HandleFunc("/games", h.games)
	mux.HandleFunc("/games/", h.gameResources)
	mux.HandleFunc("/cards/", h.cardResources)
	return mux
}

func (h *handler) games(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var payload struct {
			AccountID    string              `json:"account_id"`
			Name         string              `json:"name"`
			Type         string              `json:"type"`
			Grid         *game.GridConfig    `json:"grid"`
			Ticket       *game.TicketConfig  `json:"ticket"`
			Scratch      *game.ScratchConfig `json:"scratch"`
			DrawSchedule string              `json:"draw_schedule"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		created, err := h.app.Games.Create(r.Context(), game.Game{
			AccountID:    payload.AccountID,
			Name:         payload.Name,
			Type:         game.Type(payload.Type),
			Grid:         payload.Grid,
			Ticket:       payload.Ticket,
			Scratch:      payload.Scratch,
			DrawSchedule: payload.DrawSchedule,
		})
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)

	case http.MethodGet:
		games, err := h.app.Games.List(r.Context(), r.URL.Query().Get("account_id"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, games)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) gameResources(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.Trim(strings.TrimPrefix(r.URL.Path, "/games"), "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) == 0 || parts[0] == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	gameID := parts[0]

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		g, err := h.app.Games.Get(r.Context(), gameID)
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, g)
		return
	}

	switch parts[1] {
	case "claims":
		h.gameClaims(w, r, gameID)
	case "close":
		h.gameClose(w, r, gameID)
	case "commit":
		h.gameCommit(w, r, gameID)
	case "draw":
		h.gameDraw(w, r, gameID, parts[2:])
	case "cards":
		h.gameCards(w, r, gameID)
	case "audit":
		h.gameAudit(w, r, gameID)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *handler) gameClaims(w http.ResponseWriter, r *http.Request, gameID string) {
	switch r.Method {
	case http.MethodPost:
		var payload struct {
			ParticipantID string `json:"participant_id"`
			Row           uint   `json:"row"`
			Col           uint   `json:"col"`
			TicketNumber  uint   `json:"ticket_number"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		claim, err := h.app.Games.Claim(r.Context(), draw.SlotClaim{
			GameID:        gameID,
			ParticipantID: payload.ParticipantID,
			Row:           payload.Row,
			Col:           payload.Col,
			TicketNumber:  payload.TicketNumber,
		})
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, fair.ErrOutOfRange) {
				status = http.StatusUnprocessableEntity
			}
			writeError(w, status, err)
			return
		}
		writeJSON(w, http.StatusCreated, claim)

	case http.MethodGet:
		claims, err := h.app.Games.Claims(r.Context(), gameID)
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, claims)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) gameClose(w http.ResponseWriter, r *http.Request, gameID string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	g, err := h.app.Games.Close(r.Context(), gameID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (h *handler) gameCommit(w http.ResponseWriter, r *http.Request, gameID string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	rec, err := h.app.Draws.Prepare(r.Context(), gameID)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, storage.ErrDrawExists) {
			status = http.StatusConflict
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"game_id":    rec.GameID,
		"commitment": rec.Seed.Commitment,
		"created_at": rec.Seed.CreatedAt,
	})
}

func (h *handler) gameDraw(w http.ResponseWriter, r *http.Request, gameID string, rest []string) {
	if len(rest) > 0 && rest[0] == "verify" {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		ok, err := h.app.Draws.Verify(r.Context(), gameID)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"valid": ok})
		return
	}

	switch r.Method {
	case http.MethodPost:
		rec, err := h.app.Draws.Execute(r.Context(), gameID)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)

	case http.MethodGet:
		rec, err := h.app.Draws.Get(r.Context(), gameID)
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) gameCards(w http.ResponseWriter, r *http.Request, gameID string) {
	switch r.Method {
	case http.MethodPost:
		card, err := h.app.Cards.Issue(r.Context(), gameID)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, cardsvc.ErrStockExhausted) {
				status = http.StatusConflict
			}
			writeError(w, status, err)
			return
		}
		writeJSON(w, http.StatusCreated, card)

	case http.MethodGet:
		cards, err := h.app.Cards.List(r.Context(), gameID)
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, cards)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) gameAudit(w http.ResponseWriter, r *http.Request, gameID string) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	report, err := h.app.Cards.Audit(r.Context(), gameID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *handler) cardResources(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.Trim(strings.TrimPrefix(r.URL.Path, "/cards"), "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) == 0 || parts[0] == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	cardID := parts[0]

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		card, err := h.app.Cards.Get(r.Context(), cardID)
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, card)
		return
	}

	switch parts[1] {
	case "reveal":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		card, err := h.app.Cards.Reveal(r.Context(), cardID)
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, card)

	case "verify":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		ok, err := h.app.Cards.Verify(r.Context(), cardID)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"valid": ok})

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
