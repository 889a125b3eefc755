package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"dircore/internal/archive"
	"dircore/internal/core"
	"dircore/pkg/domain"
)

// Handler provides HTTP access to directory entries, searches, providers,
// and snapshot archives.
type Handler struct {
	Service  *core.Service
	Archiver *archive.Archiver
}

// NewHandler constructs a directory HTTP handler.
func NewHandler(svc *core.Service) *Handler {
	return &Handler{Service: svc}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		writeError(w, http.StatusInternalServerError, "directory service not configured")
		return
	}

	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case path == "/api/v1/entries":
		h.handleEntries(w, r)
		return
	case strings.HasPrefix(path, "/api/v1/entries/"):
		h.handleEntry(w, r, strings.TrimPrefix(path, "/api/v1/entries/"))
		return
	case r.Method == http.MethodPost && path == "/api/v1/search":
		h.handleSearch(w, r)
		return
	case r.Method == http.MethodGet && path == "/api/v1/providers":
		h.handleProviders(w, r)
		return
	case strings.HasPrefix(path, "/api/v1/archive/snapshots"):
		if h.Archiver == nil {
			http.NotFound(w, r)
			return
		}
		h.handleSnapshots(w, r, path)
		return
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) handleEntries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var entry domain.Entry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		writeError(w, http.StatusBadRequest, "invalid entry payload: "+err.Error())
		return
	}
	created, res, err := h.Service.AddEntry(r.Context(), entry)
	if err != nil {
		writeError(w, statusForStoreError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"entry": created, "violations": res.Violations})
}

func (h *Handler) handleEntry(w http.ResponseWriter, r *http.Request, rawDN string) {
	decoded, err := url.PathUnescape(rawDN)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid dn encoding")
		return
	}
	dn, err := domain.ParseDN(decoded)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid dn: "+err.Error())
		return
	}

	switch r.Method {
	case http.MethodGet:
		entry, ok := h.Service.GetEntry(dn)
		if !ok {
			writeError(w, http.StatusNotFound, "entry not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"entry": h.Service.WithVirtual(r.Context(), entry)})
	case http.MethodDelete:
		if _, err := h.Service.DeleteEntry(r.Context(), dn); err != nil {
			writeError(w, statusForStoreError(err), err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req domain.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid search payload: "+err.Error())
		return
	}
	entries, err := h.Service.Search(r.Context(), req)
	if err != nil {
		writeError(w, statusForStoreError(err), err.Error())
		return
	}
	if entries == nil {
		entries = []domain.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) handleProviders(w http.ResponseWriter, _ *http.Request) {
	providers := h.Service.InstalledProviders()
	writeJSON(w, http.StatusOK, map[string]any{"providers": providers})
}

func (h *Handler) handleSnapshots(w http.ResponseWriter, r *http.Request, path string) {
	if path == "/api/v1/archive/snapshots" {
		switch r.Method {
		case http.MethodPost:
			info, err := h.Archiver.Snapshot(r.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			writeJSON(w, http.StatusCreated, map[string]any{"snapshot": info})
		case http.MethodGet:
			infos, err := h.Archiver.List(r.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"snapshots": infos})
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
		return
	}
	http.NotFound(w, r)
}

func statusForStoreError(err error) int {
	switch {
	case errors.Is(err, domain.ErrNoSuchEntry):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEntryExists):
		return http.StatusConflict
	default:
		var qerr *domain.QueryError
		if errors.As(err, &qerr) && qerr.Kind == domain.QuerySizeLimit {
			return http.StatusRequestEntityTooLarge
		}
		var verr domain.RuleViolationError
		if errors.As(err, &verr) {
			return http.StatusUnprocessableEntity
		}
		return http.StatusBadRequest
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
