package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"cgpa-backend/internal/logger"
	"cgpa-backend/internal/service"
	"cgpa-backend/internal/store"
	"github.com/gorilla/mux"
)

type StudentHandler struct {
	studentService *service.StudentService
	log            *logger.Logger
}

func NewStudentHandler(studentService *service.StudentService, log *logger.Logger) *StudentHandler {
	return &StudentHandler{studentService: studentService, log: log.With("handler", "StudentHandler")}
}

// CalculateCGPA handles POST /calculate_cgpa.
func (h *StudentHandler) CalculateCGPA(w http.ResponseWriter, r *http.Request) {
	body, err := decodeFields(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sub, err := body.submission()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res := h.studentService.Submit(r.Context(), sub)

	response := map[string]interface{}{
		"cgpa":    service.FormatCGPA(res.CGPA),
		"message": res.Outcome.Message(),
	}
	if res.Outcome == service.OutcomeNeedsConfirmation {
		response["exists"] = true
		response["name"] = res.ExistingName
	}
	writeJSON(w, http.StatusOK, response)
}

// ListStudents handles GET /students.
func (h *StudentHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, _ := strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(query.Get("limit"))
	if limit < 1 {
		limit = 10
	}
	semester, _ := strconv.Atoi(query.Get("semester"))
	cgpaMin, _ := strconv.ParseFloat(query.Get("cgpa_min"), 64)
	cgpaMax, _ := strconv.ParseFloat(query.Get("cgpa_max"), 64)

	q := store.ListQuery{
		Page:      page,
		Limit:     limit,
		SortBy:    query.Get("sort_by"),
		SortOrder: query.Get("sort_order"),
		Name:      query.Get("name"),
		Semester:  semester,
		CGPAMin:   cgpaMin,
		CGPAMax:   cgpaMax,
	}

	students, totalCount, totalPages, err := h.studentService.ListStudents(r.Context(), q)
	if err != nil {
		h.log.Error("Failed to list students", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve students")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":       students,
		"page":       page,
		"limit":      limit,
		"total":      totalCount,
		"totalPages": totalPages,
	})
}

// GetStudent handles GET /students/{rollKey}.
func (h *StudentHandler) GetStudent(w http.ResponseWriter, r *http.Request) {
	rollKey := mux.Vars(r)["rollKey"]
	student, err := h.studentService.GetStudent(r.Context(), rollKey)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Student not found")
		return
	}
	if err != nil {
		h.log.Error("Failed to get student", "roll_key", rollKey, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve student")
		return
	}
	writeJSON(w, http.StatusOK, student)
}

// Health handles GET /healthz.
func (h *StudentHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.studentService.Ping(ctx); err != nil {
		h.log.Warn("Store ping failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
