package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/deckservice"
	"github.com/starford/ansuz/internal/llm"
	"github.com/starford/ansuz/internal/models"
)

const maxUploadBytes = 50 << 20 // 50 MB

// Handler holds API route handlers.
type Handler struct {
	svc *deckservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *deckservice.Service) *Handler {
	return &Handler{svc: svc}
}

type generateForm struct {
	Content  string
	Guidance string
	Provider string
	APIKey   string
}

func (f *generateForm) Validate() error {
	providers := make([]interface{}, 0, len(llm.Providers()))
	for _, p := range llm.Providers() {
		providers = append(providers, p)
	}
	return validation.ValidateStruct(f,
		validation.Field(&f.Content, validation.Required),
		validation.Field(&f.Provider, validation.In(providers...)),
		validation.Field(&f.APIKey, validation.Required),
	)
}

// Generate handles POST /api/generate (multipart/form-data).
//
// Fields: content (required), api_key (required), guidance, provider,
// save=true to persist the deck, response=json for metadata instead of the
// deck byte stream. An optional "template" file part supplies the .pptx
// whose look the generated deck should match.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "request too large or invalid multipart")
		return
	}
	// Release the multipart temp files on every exit path.
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	form := generateForm{
		Content:  r.FormValue("content"),
		Guidance: r.FormValue("guidance"),
		Provider: r.FormValue("provider"),
		APIKey:   r.FormValue("api_key"),
	}
	if err := form.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var templateData []byte
	if file, _, err := r.FormFile("template"); err == nil {
		templateData, err = io.ReadAll(file)
		_ = file.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, "failed to read template upload")
			return
		}
	}

	result, err := h.svc.Generate(r.Context(), deckservice.Request{
		Content:  form.Content,
		Guidance: form.Guidance,
		Provider: form.Provider,
		APIKey:   form.APIKey,
		Template: templateData,
		Save:     r.FormValue("save") == "true",
	})
	if err != nil {
		writeGenerateError(w, err)
		return
	}

	if r.FormValue("response") == "json" {
		writeJSON(w, http.StatusOK, GenerateResponse{
			RequestID:  result.RequestID,
			Filename:   result.Filename,
			Title:      result.Title,
			Provider:   result.Provider,
			SlideCount: result.SlideCount,
			Checksum:   result.Checksum,
			SizeBytes:  len(result.Deck),
		})
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.presentationml.presentation")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Deck)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Deck)
}

// writeGenerateError maps pipeline failures onto single descriptive
// messages. Raw provider text never reaches the caller.
func writeGenerateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrProviderAuth):
		writeError(w, http.StatusUnauthorized, "the provider rejected the API key; check the key and selected provider")
	case errors.Is(err, apperr.ErrProviderQuota):
		writeError(w, http.StatusTooManyRequests, "the provider reported quota or rate-limit exhaustion; try again later")
	case errors.Is(err, apperr.ErrMalformedOutline):
		writeError(w, http.StatusBadGateway, "the model response did not contain a usable slide outline")
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "outline generation timed out")
	case errors.Is(err, apperr.ErrEmission):
		writeError(w, http.StatusInternalServerError, "failed to build the presentation file")
	default:
		slog.Error("generate failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// ListDecks handles GET /api/decks.
func (h *Handler) ListDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := h.svc.ListDecks()
	if err != nil {
		slog.Error("list decks failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, DeckListResponse{Decks: decks, Total: len(decks)})
}

// DownloadDeck handles GET /api/decks/{filename}.
func (h *Handler) DownloadDeck(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	data, err := h.svc.ReadDeck(filename)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
		} else {
			slog.Error("read deck failed", slog.String("filename", filename), slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.presentationml.presentation")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// DeleteDeck handles DELETE /api/decks/{filename}.
func (h *Handler) DeleteDeck(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	if err := h.svc.DeleteDeck(filename); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
		} else {
			slog.Error("delete deck failed", slog.String("filename", filename), slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// History handles GET /api/history.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	decks, total, err := h.svc.History(limit, offset)
	if err != nil {
		slog.Error("history failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if decks == nil {
		decks = []models.Deck{}
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Decks: decks, Total: total})
}
