package handler

import (
	"bytes"
	"net/http"
	"strconv"

	"cgpa-backend/internal/logger"
	"cgpa-backend/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type UploadHandler struct {
	uploadService *service.UploadService
	maxBytes      int64
	log           *logger.Logger
}

func NewUploadHandler(uploadService *service.UploadService, maxBytes int64, log *logger.Logger) *UploadHandler {
	return &UploadHandler{uploadService: uploadService, maxBytes: maxBytes, log: log.With("handler", "UploadHandler")}
}

// ImportStudents handles POST /students/import with a multipart "file".
func (h *UploadHandler) ImportStudents(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "File too large or bad request")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing 'file' in form data")
		return
	}
	defer file.Close()

	h.log.Info("Received import file", "file", header.Filename, "size", header.Size)
	result, err := h.uploadService.Import(r.Context(), header.Filename, file)
	if err != nil {
		h.log.Warn("Import rejected", "file", header.Filename, "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ExportStudents handles GET /students/export.
func (h *UploadHandler) ExportStudents(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.uploadService.Export(r.Context(), &buf); err != nil {
		h.log.Error("Failed to export students", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to export students")
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="students.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		h.log.Warn("Error writing export", "error", err)
	}
}
