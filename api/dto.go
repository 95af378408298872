/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupling the domain model
  from the wire contract. Months travel zero-based on the wire
  (0 = January), matching the original frontend; the core uses
  time.Month and the conversion happens here.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/auratheracare/clinic-engine/clinic"
)

// =============================================================================
// AUTH
// =============================================================================

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
}

type AuthResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// =============================================================================
// USERS
// =============================================================================

type UserDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at,omitempty"`
}

func toUserDTO(u clinic.User) UserDTO {
	dto := UserDTO{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Phone: u.Phone,
		Role:  string(u.Role),
	}
	if !u.CreatedAt.IsZero() {
		dto.CreatedAt = u.CreatedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

// =============================================================================
// ATTENDANCE
// =============================================================================

// AddAttendanceRequest logs one or more sessions for a customer on one
// date. Price is never accepted from the caller.
type AddAttendanceRequest struct {
	CustomerID   string   `json:"customerId"`
	Date         string   `json:"date"`
	TherapyTypes []string `json:"therapyTypes"`
}

type RecordDTO struct {
	ID          string       `json:"id"`
	CustomerID  string       `json:"customer_id"`
	Date        string       `json:"date"`
	TherapyType string       `json:"therapy_type"`
	Price       clinic.Money `json:"price"`
	RecordedBy  string       `json:"recorded_by"`
	RecordedAt  string       `json:"recorded_at"`
}

func toRecordDTO(rec clinic.AttendanceRecord) RecordDTO {
	return RecordDTO{
		ID:          rec.ID,
		CustomerID:  rec.CustomerID,
		Date:        rec.Date.String(),
		TherapyType: rec.TherapyType,
		Price:       rec.Price,
		RecordedBy:  rec.RecordedBy,
		RecordedAt:  rec.RecordedAt.UTC().Format(time.RFC3339),
	}
}

func toRecordDTOs(records []clinic.AttendanceRecord) []RecordDTO {
	dtos := make([]RecordDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, toRecordDTO(rec))
	}
	return dtos
}

type SaveFailureDTO struct {
	TherapyType string `json:"therapy_type"`
	Error       string `json:"error"`
}

type MultiSaveResponse struct {
	Records  []RecordDTO      `json:"records"`
	Failures []SaveFailureDTO `json:"failures,omitempty"`
}

// =============================================================================
// STATS AND INVOICES
// =============================================================================

type StatsDTO struct {
	TotalSessions int          `json:"totalSessions"`
	TotalCost     clinic.Money `json:"totalCost"`
	LastVisit     *string      `json:"lastVisit"`
}

func toStatsDTO(stat clinic.MonthlyStat) StatsDTO {
	dto := StatsDTO{
		TotalSessions: stat.TotalSessions,
		TotalCost:     stat.TotalCost,
	}
	if stat.LastVisit != nil {
		s := stat.LastVisit.String()
		dto.LastVisit = &s
	}
	return dto
}

type DateGroupDTO struct {
	Date    string      `json:"date"`
	Records []RecordDTO `json:"records"`
}

type InvoiceDTO struct {
	Customer      UserDTO        `json:"customer"`
	Month         int            `json:"month"` // zero-based
	Year          int            `json:"year"`
	RecordsByDate []DateGroupDTO `json:"recordsByDate"`
	TotalSessions int            `json:"totalSessions"`
	TotalAmount   clinic.Money   `json:"totalAmount"`
	GeneratedAt   string         `json:"generatedAt"`
}

func toInvoiceDTO(doc *clinic.InvoiceDocument) InvoiceDTO {
	groups := make([]DateGroupDTO, 0, len(doc.RecordsByDate))
	for _, g := range doc.RecordsByDate {
		groups = append(groups, DateGroupDTO{
			Date:    g.Date.String(),
			Records: toRecordDTOs(g.Records),
		})
	}
	return InvoiceDTO{
		Customer:      toUserDTO(doc.Customer),
		Month:         int(doc.Month) - 1,
		Year:          doc.Year,
		RecordsByDate: groups,
		TotalSessions: doc.TotalSessions,
		TotalAmount:   doc.TotalAmount,
		GeneratedAt:   doc.GeneratedAt.UTC().Format(time.RFC3339),
	}
}

// =============================================================================
// REVENUE
// =============================================================================

type TypeTotalDTO struct {
	Code   string       `json:"code"`
	Name   string       `json:"name"`
	Count  int          `json:"count"`
	Amount clinic.Money `json:"amount"`
}

type CustomerRevenueDTO struct {
	CustomerID    string         `json:"customer_id"`
	CustomerName  string         `json:"customerName"`
	ByType        []TypeTotalDTO `json:"by_type"`
	TotalSessions int            `json:"total_sessions"`
	TotalAmount   clinic.Money   `json:"total_amount"`
}

type RevenueDTO struct {
	Month         int                  `json:"month"` // zero-based
	Year          int                  `json:"year"`
	ByType        []TypeTotalDTO       `json:"by_type"`
	Revenue       []CustomerRevenueDTO `json:"revenue"`
	TotalSessions int                  `json:"total_sessions"`
	TotalAmount   clinic.Money         `json:"total_amount"`
}

func toTypeTotalDTOs(totals []clinic.TypeTotal) []TypeTotalDTO {
	dtos := make([]TypeTotalDTO, 0, len(totals))
	for _, tt := range totals {
		dtos = append(dtos, TypeTotalDTO{Code: tt.Code, Name: tt.Name, Count: tt.Count, Amount: tt.Amount})
	}
	return dtos
}

func toRevenueDTO(report *clinic.RevenueReport) RevenueDTO {
	rows := make([]CustomerRevenueDTO, 0, len(report.Customers))
	for _, row := range report.Customers {
		rows = append(rows, CustomerRevenueDTO{
			CustomerID:    row.CustomerID,
			CustomerName:  row.CustomerName,
			ByType:        toTypeTotalDTOs(row.ByType),
			TotalSessions: row.TotalSessions,
			TotalAmount:   row.TotalAmount,
		})
	}
	return RevenueDTO{
		Month:         int(report.Month) - 1,
		Year:          report.Year,
		ByType:        toTypeTotalDTOs(report.ByType),
		Revenue:       rows,
		TotalSessions: report.TotalSessions,
		TotalAmount:   report.TotalAmount,
	}
}

// =============================================================================
// EXPORT AVAILABILITY
// =============================================================================

type ExportAvailabilityDTO struct {
	Available bool   `json:"available"`
	Month     int    `json:"month"` // zero-based, the invoiceable month
	Year      int    `json:"year"`
	MonthName string `json:"monthName"`
}
