package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/medflow/payroll-backend/internal/overtime/repository"
	"github.com/medflow/payroll-backend/internal/overtime/service"
	"github.com/medflow/payroll-backend/pkg/errors"
	"github.com/medflow/payroll-backend/pkg/httputil"
	"github.com/medflow/payroll-backend/pkg/logger"
	"github.com/medflow/payroll-backend/pkg/permissions"
)

// Calculator computes overtime for a date range
type Calculator interface {
	Calculate(ctx context.Context, from, to time.Time) (*service.CalculationResult, error)
}

// Decider records approval decisions
type Decider interface {
	Decide(ctx context.Context, d service.Decision) (*repository.Approval, error)
}

// Reader serves overtime queries
type Reader interface {
	List(ctx context.Context, filter repository.SegmentFilter) ([]*repository.SegmentView, int, error)
	History(ctx context.Context, segmentID string) ([]*repository.Approval, error)
	Runs(ctx context.Context, periodID string, limit int) ([]*repository.CalculationRun, error)
}

// Reporter renders period documents
type Reporter interface {
	PeriodPDF(ctx context.Context, periodID string) ([]byte, error)
}

// OvertimeHandler handles overtime endpoints
type OvertimeHandler struct {
	calculator Calculator
	decider    Decider
	reader     Reader
	reporter   Reporter
	logger     *logger.Logger
}

// NewOvertimeHandler creates a new overtime handler
func NewOvertimeHandler(calc Calculator, decider Decider, reader Reader, reporter Reporter, log *logger.Logger) *OvertimeHandler {
	return &OvertimeHandler{
		calculator: calc,
		decider:    decider,
		reader:     reader,
		reporter:   reporter,
		logger:     log,
	}
}

// Routes mounts the overtime endpoints on r. Every route requires a permission.
func (h *OvertimeHandler) Routes(r chi.Router) {
	r.Route("/overtime", func(r chi.Router) {
		r.With(httputil.Require(permissions.OvertimeCalculate)).Post("/calculate", h.Calculate)

		r.Group(func(r chi.Router) {
			r.Use(httputil.Require(permissions.OvertimeRead))
			r.Get("/", h.List)
			r.Get("/runs", h.Runs)
			r.Get("/{id}/approvals", h.History)
			r.Get("/periods/{id}/report.pdf", h.PeriodReport)
		})

		r.With(httputil.Require(permissions.OvertimeDecide)).Put("/{id}/state", h.Decide)
	})
}

// CalculateRequest is the body of POST /overtime/calculate
type CalculateRequest struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to" validate:"required"`
}

// DecideRequest is the body of PUT /overtime/{id}/state
type DecideRequest struct {
	StateID         string `json:"stateId" validate:"required"`
	RejectionReason string `json:"rejectionReason" validate:"max=1000"`
}

// listQuery holds the GET /overtime filters as received
type listQuery struct {
	PeriodID   string `json:"periodId" validate:"omitempty,uuid"`
	EmployeeID string `json:"employeeId" validate:"omitempty,uuid"`
	State      string `json:"state" validate:"omitempty,oneof=pending approved rejected PENDING APPROVED REJECTED"`
	From       string `json:"from" validate:"omitempty,date"`
	To         string `json:"to" validate:"omitempty,date"`
	Holiday    string `json:"holiday" validate:"omitempty,oneof=true false"`
}

// Calculate computes overtime for a date range
func (h *OvertimeHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, errors.InvalidRange("from and to are required"))
		return
	}

	from, err := time.Parse(httputil.DateLayout, req.From)
	if err != nil {
		httputil.Error(w, errors.InvalidRange("invalid from date, expected YYYY-MM-DD"))
		return
	}
	to, err := time.Parse(httputil.DateLayout, req.To)
	if err != nil {
		httputil.Error(w, errors.InvalidRange("invalid to date, expected YYYY-MM-DD"))
		return
	}
	if from.After(to) {
		httputil.Error(w, errors.InvalidRange("from must not be after to"))
		return
	}

	result, err := h.calculator.Calculate(r.Context(), from, to)
	if err != nil {
		h.logIfInternal(r, err, "overtime calculation failed")
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, result)
}

// List lists active overtime entries
func (h *OvertimeHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := listQuery{
		PeriodID:   q.Get("periodId"),
		EmployeeID: q.Get("employeeId"),
		State:      q.Get("state"),
		From:       q.Get("from"),
		To:         q.Get("to"),
		Holiday:    q.Get("holiday"),
	}
	if err := httputil.Validate(&params); err != nil {
		httputil.Error(w, err)
		return
	}

	filter := repository.SegmentFilter{
		PeriodID:   params.PeriodID,
		EmployeeID: params.EmployeeID,
		State:      params.State,
		Limit:      50,
	}
	if params.From != "" {
		t, _ := time.Parse(httputil.DateLayout, params.From)
		filter.From = &t
	}
	if params.To != "" {
		t, _ := time.Parse(httputil.DateLayout, params.To)
		filter.To = &t
	}
	if params.Holiday != "" {
		holiday := params.Holiday == "true"
		filter.Holiday = &holiday
	}

	page := 1
	if p, _ := strconv.Atoi(q.Get("page")); p > 0 {
		page = p
	}
	if perPage, _ := strconv.Atoi(q.Get("perPage")); perPage > 0 && perPage <= 500 {
		filter.Limit = perPage
	}
	filter.Offset = (page - 1) * filter.Limit

	entries, total, err := h.reader.List(r.Context(), filter)
	if err != nil {
		h.logIfInternal(r, err, "failed to list overtime entries")
		httputil.Error(w, err)
		return
	}
	if entries == nil {
		entries = []*repository.SegmentView{}
	}

	httputil.JSONWithMeta(w, http.StatusOK, entries, &httputil.Meta{Total: total})
}

// Decide approves or rejects an entry
func (h *OvertimeHandler) Decide(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req DecideRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	_, err := h.decider.Decide(r.Context(), service.Decision{
		SegmentID:       id,
		StateID:         req.StateID,
		RejectionReason: req.RejectionReason,
	})
	if err != nil {
		h.logIfInternal(r, err, "overtime decision failed")
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// History returns the approval version chain of an entry
func (h *OvertimeHandler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	chain, err := h.reader.History(r.Context(), id)
	if err != nil {
		h.logIfInternal(r, err, "failed to load approval history")
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, chain)
}

// Runs lists calculation runs
func (h *OvertimeHandler) Runs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	runs, err := h.reader.Runs(r.Context(), r.URL.Query().Get("periodId"), limit)
	if err != nil {
		h.logIfInternal(r, err, "failed to list calculation runs")
		httputil.Error(w, err)
		return
	}
	if runs == nil {
		runs = []*repository.CalculationRun{}
	}

	httputil.JSON(w, http.StatusOK, runs)
}

// PeriodReport streams the PDF summary of a period
func (h *OvertimeHandler) PeriodReport(w http.ResponseWriter, r *http.Request) {
	periodID, ok := idParam(w, r)
	if !ok {
		return
	}

	body, err := h.reporter.PeriodPDF(r.Context(), periodID)
	if err != nil {
		h.logIfInternal(r, err, "failed to render period report")
		httputil.Error(w, err)
		return
	}

	httputil.PDF(w, "overtime-"+periodID+".pdf", body)
}

// idParam reads the {id} URL parameter and answers 400 when it is not a UUID
func idParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		httputil.Error(w, errors.BadRequest("invalid id"))
		return "", false
	}
	return id, true
}

func (h *OvertimeHandler) logIfInternal(r *http.Request, err error, msg string) {
	if httputil.IsInternal(err) {
		h.logger.Error().
			Err(err).
			Str("request_id", httputil.GetRequestID(r.Context())).
			Msg(msg)
	}
}
