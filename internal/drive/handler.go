package drive

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	source        FileSource
	importer      *ProductImporter
	defaultFolder string
}

// NewHandler serves Drive imports. defaultFolder is listed when a request
// names no folder.
func NewHandler(source FileSource, importer *ProductImporter, defaultFolder string) *Handler {
	return &Handler{
		source:        source,
		importer:      importer,
		defaultFolder: defaultFolder,
	}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/drive/files", h.ListFiles).Methods(http.MethodGet)
	router.HandleFunc("/drive/files/{id}/analysis", h.AnalyzeFile).Methods(http.MethodGet)
	router.HandleFunc("/drive/files/{id}/ingest", h.IngestFile).Methods(http.MethodPost)
	router.HandleFunc("/drive/folders/{id}/ingest", h.IngestFolder).Methods(http.MethodPost)
}

func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	folderID := query.Get("folderId")
	if folderID == "" {
		folderID = h.defaultFolder
	}

	if folderPath := query.Get("path"); folderPath != "" {
		var err error
		folderID, err = h.source.FindFolderByPath(r.Context(), folderPath)
		if err != nil {
			writeError(w, http.StatusNotFound, "folder not found", err)
			return
		}
	}

	files, err := h.importer.ListSheets(r.Context(), folderID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list files", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"files": files, "total": len(files)})
}

func (h *Handler) AnalyzeFile(w http.ResponseWriter, r *http.Request) {
	result, err := h.importer.Analyze(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, statusFor(err), "failed to analyze file", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"date":    result.Date.Format("2006-01-02"),
		"items":   result.Items,
		"total":   len(result.Items),
		"skipped": result.Skipped,
	})
}

func (h *Handler) IngestFile(w http.ResponseWriter, r *http.Request) {
	count, err := h.importer.Import(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, statusFor(err), "ingestion failed", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "success", "products": count})
}

func (h *Handler) IngestFolder(w http.ResponseWriter, r *http.Request) {
	result, err := h.importer.ImportFolder(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusInternalServerError, "ingestion failed", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func statusFor(err error) int {
	if errors.Is(err, ErrUnsupportedFile) {
		return http.StatusUnsupportedMediaType
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("drive: failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Msg(message)
	}
	writeJSON(w, status, map[string]string{"error": message, "details": err.Error()})
}
