/*
handlers.go - HTTP API handlers for the clinic system

PURPOSE:
  Exposes the aggregation core over REST. Handles HTTP request/response
  and JSON serialization, delegates everything else to the clinic
  service and the auth collaborator.

ENDPOINTS:
  Auth:
    POST   /api/login                      Authenticate, returns token
    POST   /api/register                   Create customer account

  Users:
    GET    /api/profile                    Current user's profile
    GET    /api/users                      List users (therapist)
    DELETE /api/users/{userId}             Delete user + cascade (therapist)

  Attendance:
    POST   /api/attendance                 Log sessions (therapist)
    GET    /api/attendance/{customerId}    Records, date descending
    GET    /api/attendance/month/{customerId}/{month}/{year}
    DELETE /api/attendance/records/{recordId}

  Aggregates:
    GET    /api/stats/{customerId}         Current-month stats
    GET    /api/invoice/{customerId}/{month}/{year}          JSON
    GET    /api/invoice/{customerId}/{month}/{year}/export   Rendered
    GET    /api/revenue/{month}/{year}     Revenue report (therapist)
    GET    /api/export/available           Export-eligibility check

ERROR HANDLING:
  Errors return JSON with an appropriate status:
  - 400: validation errors
  - 401: missing/failed authentication
  - 403: access policy rejection, invalid token
  - 404: unknown user/record
  - 409: duplicate email, nothing-to-export outcome
  - 500: store or internal failures

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/auratheracare/clinic-engine/auth"
	"github.com/auratheracare/clinic-engine/clinic"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service  *clinic.Service
	Auth     *auth.Authenticator
	Tokens   *auth.TokenManager
	Renderer clinic.DocumentRenderer
	Events   *Broadcaster
}

func NewHandler(service *clinic.Service, authenticator *auth.Authenticator, tokens *auth.TokenManager) *Handler {
	return &Handler{
		Service:  service,
		Auth:     authenticator,
		Tokens:   tokens,
		Renderer: &clinic.TextRenderer{ClinicName: "AuraTheraCare"},
		Events:   NewBroadcaster(),
	}
}

// =============================================================================
// AUTH HANDLERS
// =============================================================================

// Login authenticates by email and password.
// POST /api/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	token, p, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		Token: token,
		User:  UserDTO{ID: p.ID, Name: p.Name, Email: p.Email, Role: string(p.Role)},
	})
}

// Register creates a customer account.
// POST /api/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	token, p, err := h.Auth.Register(r.Context(), req.Name, req.Email, req.Password, req.Phone)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.Events.Broadcast("user_registered", map[string]any{"id": p.ID, "name": p.Name, "email": p.Email})
	writeJSON(w, http.StatusCreated, AuthResponse{
		Token: token,
		User:  UserDTO{ID: p.ID, Name: p.Name, Email: p.Email, Role: string(p.Role)},
	})
}

// =============================================================================
// USER HANDLERS
// =============================================================================

// Profile returns the authenticated user's own record.
// GET /api/profile
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r.Context())
	user, err := h.Service.GetUser(r.Context(), p, p.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(*user))
}

// ListUsers returns all users sorted by name. Therapist only.
// GET /api/users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.ListUsers(r.Context(), principalFrom(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]UserDTO, 0, len(users))
	for _, u := range users {
		dtos = append(dtos, toUserDTO(u))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// DeleteUser removes a user and all their attendance records.
// DELETE /api/users/{userId}
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	if err := h.Service.DeleteUser(r.Context(), principalFrom(r.Context()), userID); err != nil {
		writeDomainError(w, err)
		return
	}

	h.Events.Broadcast("user_deleted", map[string]any{"id": userID})
	writeJSON(w, http.StatusOK, map[string]any{"message": "User and associated data deleted successfully"})
}

// =============================================================================
// ATTENDANCE HANDLERS
// =============================================================================

// AddAttendance logs one session per requested therapy type. Partial
// success is reported in the response, never rolled back silently.
// POST /api/attendance
func (h *Handler) AddAttendance(w http.ResponseWriter, r *http.Request) {
	var req AddAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	date, err := clinic.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	result, err := h.Service.AddMultipleAttendanceRecords(r.Context(), principalFrom(r.Context()), req.CustomerID, date, req.TherapyTypes)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := MultiSaveResponse{Records: toRecordDTOs(result.Records)}
	for _, f := range result.Failures {
		resp.Failures = append(resp.Failures, SaveFailureDTO{TherapyType: f.TherapyType, Error: f.Err.Error()})
	}

	if len(result.Records) > 0 {
		h.Events.Broadcast("attendance_added", map[string]any{
			"customerId": req.CustomerID,
			"date":       date.String(),
			"count":      len(result.Records),
		})
	}

	status := http.StatusCreated
	if len(result.Records) == 0 {
		// Nothing committed; report the aggregate failure as a client error.
		status = http.StatusBadRequest
	}
	writeJSON(w, status, resp)
}

// GetAttendance returns a customer's records, date descending.
// Optional query refinements: date, month+year (zero-based month),
// start+end.
// GET /api/attendance/{customerId}
func (h *Handler) GetAttendance(w http.ResponseWriter, r *http.Request) {
	filter := clinic.RecordFilter{CustomerID: chi.URLParam(r, "customerId")}

	q := r.URL.Query()
	if s := q.Get("date"); s != "" {
		d, err := clinic.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date", err)
			return
		}
		filter.Date = &d
	}
	if q.Get("month") != "" && q.Get("year") != "" {
		month, year, err := parseWireMonth(q.Get("month"), q.Get("year"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid month/year", err)
			return
		}
		filter.Month, filter.Year = &month, &year
	}
	if q.Get("start") != "" && q.Get("end") != "" {
		start, err := clinic.ParseDate(q.Get("start"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start date", err)
			return
		}
		end, err := clinic.ParseDate(q.Get("end"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid end date", err)
			return
		}
		filter.StartDate, filter.EndDate = &start, &end
	}

	records, err := h.Service.GetAttendanceRecords(r.Context(), principalFrom(r.Context()), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTOs(records))
}

// GetAttendanceMonth returns one month of a customer's records.
// GET /api/attendance/month/{customerId}/{month}/{year}
func (h *Handler) GetAttendanceMonth(w http.ResponseWriter, r *http.Request) {
	month, year, err := parseWireMonth(chi.URLParam(r, "month"), chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month/year", err)
		return
	}

	filter := clinic.RecordFilter{
		CustomerID: chi.URLParam(r, "customerId"),
		Month:      &month,
		Year:       &year,
	}
	records, err := h.Service.GetAttendanceRecords(r.Context(), principalFrom(r.Context()), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTOs(records))
}

// DeleteAttendanceRecord removes a single record. Therapist only.
// DELETE /api/attendance/records/{recordId}
func (h *Handler) DeleteAttendanceRecord(w http.ResponseWriter, r *http.Request) {
	recordID := chi.URLParam(r, "recordId")

	if err := h.Service.DeleteAttendanceRecord(r.Context(), principalFrom(r.Context()), recordID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Record deleted successfully"})
}

// =============================================================================
// AGGREGATE HANDLERS
// =============================================================================

// GetStats returns the customer's current-month stats.
// GET /api/stats/{customerId}
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stat, err := h.Service.GetCustomerStats(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "customerId"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatsDTO(stat))
}

// GetInvoice returns the invoice document as JSON.
// GET /api/invoice/{customerId}/{month}/{year}
func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	doc, err := h.invoiceFromPath(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceDTO(doc))
}

// ExportInvoice returns the invoice rendered for download.
// GET /api/invoice/{customerId}/{month}/{year}/export
func (h *Handler) ExportInvoice(w http.ResponseWriter, r *http.Request) {
	doc, err := h.invoiceFromPath(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	body, contentType, err := h.Renderer.Render(doc)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to render invoice", err)
		return
	}

	filename := fmt.Sprintf("AuraTheraCare_Invoice_%s_%s_%d.txt",
		doc.Customer.Name, clinic.MonthName(doc.Month), doc.Year)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (h *Handler) invoiceFromPath(r *http.Request) (*clinic.InvoiceDocument, error) {
	month, year, err := parseWireMonth(chi.URLParam(r, "month"), chi.URLParam(r, "year"))
	if err != nil {
		return nil, &clinic.ValidationError{Field: "month", Reason: err.Error()}
	}
	return h.Service.GetMonthlyInvoiceData(r.Context(), principalFrom(r.Context()),
		chi.URLParam(r, "customerId"), month, year)
}

// GetRevenue returns the monthly revenue report. Therapist only.
// GET /api/revenue/{month}/{year}
func (h *Handler) GetRevenue(w http.ResponseWriter, r *http.Request) {
	month, year, err := parseWireMonth(chi.URLParam(r, "month"), chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month/year", err)
		return
	}

	report, err := h.Service.GetRevenueBreakdown(r.Context(), principalFrom(r.Context()), month, year)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRevenueDTO(report))
}

// ExportAvailability reports whether last-month export is open and
// which month it would cover.
// GET /api/export/available
func (h *Handler) ExportAvailability(w http.ResponseWriter, r *http.Request) {
	today := clinic.DateOf(h.Service.Now())
	month, year := clinic.PreviousMonth(today)

	writeJSON(w, http.StatusOK, ExportAvailabilityDTO{
		Available: clinic.IsExportAvailable(today),
		Month:     int(month) - 1,
		Year:      year,
		MonthName: fmt.Sprintf("%s %d", clinic.MonthName(month), year),
	})
}

// =============================================================================
// HELPERS
// =============================================================================

// parseWireMonth converts the zero-based wire month to time.Month.
func parseWireMonth(monthStr, yearStr string) (time.Month, int, error) {
	m, err := strconv.Atoi(monthStr)
	if err != nil || m < 0 || m > 11 {
		return 0, 0, fmt.Errorf("month must be 0-11, got %q", monthStr)
	}
	y, err := strconv.Atoi(yearStr)
	if err != nil || y < 1 {
		return 0, 0, fmt.Errorf("invalid year %q", yearStr)
	}
	return time.Month(m + 1), y, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	body := map[string]any{"error": message}
	if err != nil {
		body["detail"] = err.Error()
	}
	writeJSON(w, status, body)
}

// writeDomainError maps core errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case clinic.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	case clinic.IsAccessDenied(err):
		writeError(w, http.StatusForbidden, "Access denied", nil)
	case clinic.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", nil)
	case clinic.IsConflict(err):
		writeError(w, http.StatusConflict, "Email already registered", nil)
	case errors.Is(err, clinic.ErrNothingToExport):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error": "No records to export for this month",
			"code":  "nothing_to_export",
		})
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}
