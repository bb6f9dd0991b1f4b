package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "solarcli/internal/errors"
	"solarcli/internal/middleware"
	api "solarcli/pkg/contracts/api/v1"
	"solarcli/pkg/contracts/domain"
)

type contextKey string

const countryKey contextKey = "country"

// DataHandler handles dataset HTTP requests with RFC 7807 compliance
type DataHandler struct {
	service      DatasetServiceInterface
	validator    *middleware.RequestValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDataHandler creates a new data handler with RFC 7807 error handling
func NewDataHandler(service DatasetServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DataHandler {
	return &DataHandler{
		service:      service,
		validator:    middleware.NewRequestValidator(logger),
		logger:       logger.With(slog.String("component", "data_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the data routes as a standalone router
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes adds the data routes to an existing router, such as the /api group.
func (h *DataHandler) RegisterRoutes(r chi.Router) {
	r.Get("/countries", h.GetCountries)
	r.Get("/compare", h.GetComparison)

	r.Route("/countries/{country}", func(r chi.Router) {
		r.Use(h.CountryCtx)
		r.Get("/summary", h.GetSummary)
		r.Get("/hourly", h.GetHourly)
		r.Get("/correlation", h.GetCorrelation)
		r.Get("/outliers", h.GetOutliers)
		r.Get("/cleaning-impact", h.GetCleaningImpact)
	})
}

// CountryCtx normalizes the {country} parameter to a slug and validates it.
// "Sierra Leone", "sierra-leone" and "sierraleone" address the same dataset.
func (h *DataHandler) CountryCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := api.CountryRequest{Country: domain.CountrySlug(chi.URLParam(r, "country"))}
		if !h.validator.ValidateQuery(w, r, h.errorHandler, &req) {
			return
		}

		ctx := context.WithValue(r.Context(), countryKey, req.Country)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func countryFrom(r *http.Request) string {
	country, _ := r.Context().Value(countryKey).(string)
	return country
}

// fieldsParam splits a comma separated ?fields= list.
func fieldsParam(r *http.Request) []string {
	raw := r.URL.Query().Get("fields")
	if raw == "" {
		return nil
	}
	var fields []string
	for _, f := range strings.Split(raw, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

// GetCountries handles GET /api/countries
func (h *DataHandler) GetCountries(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.CountryList(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, resp)
}

// GetSummary handles GET /api/countries/{country}/summary?metric=GHI
func (h *DataHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	req := api.MetricRequest{Metric: r.URL.Query().Get("metric")}
	if req.Metric == "" {
		req.Metric = domain.FieldGHI
	}
	if !h.validator.ValidateQuery(w, r, h.errorHandler, &req) {
		return
	}

	resp, err := h.service.Summary(r.Context(), countryFrom(r), req.Metric)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, resp)
}

// GetHourly handles GET /api/countries/{country}/hourly?fields=GHI,DNI
func (h *DataHandler) GetHourly(w http.ResponseWriter, r *http.Request) {
	req := api.FieldsRequest{Fields: fieldsParam(r)}
	if !h.validator.ValidateQuery(w, r, h.errorHandler, &req) {
		return
	}

	resp, err := h.service.Hourly(r.Context(), countryFrom(r), req.Fields)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, resp)
}

// GetCorrelation handles GET /api/countries/{country}/correlation?fields=GHI,DNI,DHI
func (h *DataHandler) GetCorrelation(w http.ResponseWriter, r *http.Request) {
	req := api.FieldsRequest{Fields: fieldsParam(r)}
	if !h.validator.ValidateQuery(w, r, h.errorHandler, &req) {
		return
	}

	resp, err := h.service.Correlation(r.Context(), countryFrom(r), req.Fields)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, resp)
}

// GetOutliers handles GET /api/countries/{country}/outliers
func (h *DataHandler) GetOutliers(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Outliers(r.Context(), countryFrom(r))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, resp)
}

// GetCleaningImpact handles GET /api/countries/{country}/cleaning-impact
func (h *DataHandler) GetCleaningImpact(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.CleaningImpact(r.Context(), countryFrom(r))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, resp)
}

// GetComparison handles GET /api/compare?metric=GHI
func (h *DataHandler) GetComparison(w http.ResponseWriter, r *http.Request) {
	req := api.MetricRequest{Metric: r.URL.Query().Get("metric")}
	if !h.validator.ValidateQuery(w, r, h.errorHandler, &req) {
		return
	}

	resp, err := h.service.Compare(r.Context(), req.Metric)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.DebugContext(r.Context(), "comparison served",
		slog.String("metric", req.Metric),
		slog.Int("countries", len(resp.Ranking)))
	render.JSON(w, r, resp)
}
