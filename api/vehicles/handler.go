package vehicles

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fleetops/fleetd/core/fleet"
	"github.com/fleetops/fleetd/core/logger"
	"github.com/fleetops/fleetd/core/model"
	"github.com/fleetops/fleetd/core/stats"
	"github.com/fleetops/fleetd/core/store"
)

// Handler exposes the fleet operations over HTTP. Requests must include
// an Authorization header with "Bearer <token>" when token is non-empty.
type Handler struct {
	fleet *fleet.Service
	stats *stats.Aggregator
	token string
	log   logger.Logger
}

// NewHandler creates the HTTP handler for the fleet API.
func NewHandler(fleetSvc *fleet.Service, agg *stats.Aggregator, token string, log logger.Logger) *Handler {
	return &Handler{fleet: fleetSvc, stats: agg, token: token, log: log}
}

// Router builds the route table.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(h.authMiddleware)
	api.HandleFunc("/vehicles", h.handleCreate).Methods(http.MethodPost)
	api.HandleFunc("/vehicles", h.handleList).Methods(http.MethodGet)
	api.HandleFunc("/vehicles/{id}", h.handleGet).Methods(http.MethodGet)
	api.HandleFunc("/vehicles/{id}", h.handleUpdate).Methods(http.MethodPatch)
	api.HandleFunc("/vehicles/{id}", h.handleDelete).Methods(http.MethodDelete)
	api.HandleFunc("/vehicles/{id}/status", h.handleStatus).Methods(http.MethodPatch)
	api.HandleFunc("/vehicles/{id}/location/simulate", h.handleSimulateLocation).Methods(http.MethodPost)
	api.HandleFunc("/vehicles/{id}/reports", h.handleAddReport).Methods(http.MethodPost)
	api.HandleFunc("/vehicles/{id}/reports", h.handleListReports).Methods(http.MethodGet)
	api.HandleFunc("/vehicles/{id}/logs", h.handleListLogs).Methods(http.MethodGet)
	api.HandleFunc("/stats", h.handleStats).Methods(http.MethodGet)
	return r
}

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.token != "" {
			auth := r.Header.Get("Authorization")
			if auth != "Bearer "+h.token {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createRequest struct {
	Brand           string   `json:"brand"`
	Model           string   `json:"model"`
	Year            int      `json:"year"`
	Specifications  []string `json:"specifications"`
	Image           string   `json:"image"`
	TotalKilometers float64  `json:"total_kilometers"`
	Status          string   `json:"status"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Brand == "" || req.Model == "" {
		writeError(w, http.StatusBadRequest, "brand and model are required")
		return
	}
	spec := fleet.CreateSpec{
		Brand:           req.Brand,
		Model:           req.Model,
		Year:            req.Year,
		Specifications:  req.Specifications,
		Image:           req.Image,
		TotalKilometers: req.TotalKilometers,
	}
	if req.Status != "" {
		status, ok := model.ParseStatus(req.Status)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown status")
			return
		}
		spec.Status = status
	}
	v, err := h.fleet.Create(r.Context(), spec)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	var f store.Filter
	if s := r.URL.Query().Get("status"); s != "" {
		status, ok := model.ParseStatus(s)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown status")
			return
		}
		f.Status = status
	}
	list, err := h.fleet.List(r.Context(), f)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if list == nil {
		list = []model.Vehicle{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	v, err := h.fleet.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type updateRequest struct {
	Brand           *string   `json:"brand"`
	Model           *string   `json:"model"`
	Year            *int      `json:"year"`
	Specifications  *[]string `json:"specifications"`
	Image           *string   `json:"image"`
	TotalKilometers *float64  `json:"total_kilometers"`
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	patch := fleet.Patch{
		Brand:           req.Brand,
		Model:           req.Model,
		Year:            req.Year,
		Specifications:  req.Specifications,
		Image:           req.Image,
		TotalKilometers: req.TotalKilometers,
	}
	v, err := h.fleet.Update(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.fleet.Remove(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "vehicle deleted"})
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	status, ok := model.ParseStatus(req.Status)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}
	v, err := h.fleet.ChangeStatus(r.Context(), mux.Vars(r)["id"], status)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) handleSimulateLocation(w http.ResponseWriter, r *http.Request) {
	v, err := h.fleet.SimulateLocation(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type reportRequest struct {
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

func (h *Handler) handleAddReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Description == "" {
		writeError(w, http.StatusBadRequest, "description is required")
		return
	}
	severity := model.SeverityLow
	if req.Severity != "" {
		s, ok := model.ParseSeverity(req.Severity)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown severity")
			return
		}
		severity = s
	}
	rep, err := h.fleet.AddReport(r.Context(), mux.Vars(r)["id"], req.Description, severity)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rep)
}

func (h *Handler) handleListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.fleet.ReportsByVehicle(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if reports == nil {
		reports = []model.Report{}
	}
	writeJSON(w, http.StatusOK, reports)
}

func (h *Handler) handleListLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.fleet.LogsByVehicle(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if logs == nil {
		logs = []model.ActivityLogEntry{}
	}
	writeJSON(w, http.StatusOK, logs)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	s, err := h.stats.Collect(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, fleet.ErrInvalidState):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Errorf("api: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
