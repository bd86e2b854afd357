package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/yegors/launchboard/internal/dashboard"
	"github.com/yegors/launchboard/internal/launches"
	"github.com/yegors/launchboard/pkg/logger"
)

// Handler serves the dashboard API
type Handler struct {
	aggregator *dashboard.Aggregator
	startedAt  time.Time
	logger     *logger.Logger
}

// NewHandler creates a new handler
func NewHandler(aggregator *dashboard.Aggregator, log *logger.Logger) *Handler {
	return &Handler{
		aggregator: aggregator,
		startedAt:  time.Now(),
		logger:     log.Named("api-handler"),
	}
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status        string  `json:"status"`
	Records       int     `json:"records"`
	Sites         int     `json:"sites"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// SitesResponse is the body of GET /sites
type SitesResponse struct {
	Sites []string `json:"sites"`
}

// SummaryResponse is the body of GET /summary
type SummaryResponse struct {
	Site   string                  `json:"site"`
	Slices []launches.SummarySlice `json:"slices"`
}

// PayloadResponse is the body of GET /payload
type PayloadResponse struct {
	Site    string                  `json:"site"`
	Payload launches.PayloadRange   `json:"payload"`
	Count   int                     `json:"count"`
	Points  []launches.ScatterPoint `json:"points"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// GetHealth returns process and dataset status
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	dataset := h.aggregator.Service().Dataset()
	jsonResp(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		Records:       dataset.Len(),
		Sites:         len(dataset.Sites()),
		UptimeSeconds: time.Since(h.startedAt).Seconds(),
	})
}

// GetLayout returns the dropdown and slider description
func (h *Handler) GetLayout(w http.ResponseWriter, r *http.Request) {
	jsonResp(w, http.StatusOK, h.aggregator.Layout())
}

// GetSites returns the launch sites in first-occurrence order
func (h *Handler) GetSites(w http.ResponseWriter, r *http.Request) {
	jsonResp(w, http.StatusOK, SitesResponse{Sites: h.aggregator.Service().Dataset().Sites()})
}

// GetSummary returns SiteSuccessSummary for ?site=
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	site := siteParam(r)
	slices, err := h.aggregator.Service().SiteSuccessSummary(site)
	if err != nil {
		h.queryError(w, err)
		return
	}
	jsonResp(w, http.StatusOK, SummaryResponse{Site: site, Slices: slices})
}

// GetPayload returns PayloadOutcomeFilter for ?site=&low=&high=
func (h *Handler) GetPayload(w http.ResponseWriter, r *http.Request) {
	sel, err := h.selection(r)
	if err != nil {
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}
	points, err := h.aggregator.Service().PayloadOutcomeFilter(sel.Site, sel.Payload)
	if err != nil {
		h.queryError(w, err)
		return
	}
	jsonResp(w, http.StatusOK, PayloadResponse{
		Site:    sel.Site,
		Payload: sel.Payload,
		Count:   len(points),
		Points:  points,
	})
}

// GetPieFigure returns the pie chart descriptor for ?site=
func (h *Handler) GetPieFigure(w http.ResponseWriter, r *http.Request) {
	fig, err := h.aggregator.PieFigure(siteParam(r))
	if err != nil {
		h.queryError(w, err)
		return
	}
	jsonResp(w, http.StatusOK, fig)
}

// GetScatterFigure returns the scatter chart descriptor for ?site=&low=&high=
func (h *Handler) GetScatterFigure(w http.ResponseWriter, r *http.Request) {
	sel, err := h.selection(r)
	if err != nil {
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}
	fig, err := h.aggregator.ScatterFigure(sel.Site, sel.Payload)
	if err != nil {
		h.queryError(w, err)
		return
	}
	jsonResp(w, http.StatusOK, fig)
}

// GetDashboard returns both figures for one selection
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	sel, err := h.selection(r)
	if err != nil {
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}
	view, err := h.aggregator.View(sel)
	if err != nil {
		h.queryError(w, err)
		return
	}
	jsonResp(w, http.StatusOK, view)
}

// selection reads ?site=&low=&high=, defaulting to every site and the slider bounds
func (h *Handler) selection(r *http.Request) (dashboard.Selection, error) {
	sel := h.aggregator.DefaultSelection()
	sel.Site = siteParam(r)

	q := r.URL.Query()
	if v := q.Get("low"); v != "" {
		low, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return sel, errors.New("low must be a number")
		}
		sel.Payload.Low = low
	}
	if v := q.Get("high"); v != "" {
		high, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return sel, errors.New("high must be a number")
		}
		sel.Payload.High = high
	}
	return sel, nil
}

func (h *Handler) queryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, launches.ErrUnknownSite), errors.Is(err, launches.ErrInvalidRange):
		jsonErr(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("Query failed", logger.Error(err))
		jsonErr(w, http.StatusInternalServerError, "internal error")
	}
}

func siteParam(r *http.Request) string {
	if site := r.URL.Query().Get("site"); site != "" {
		return site
	}
	return launches.AllSites
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
