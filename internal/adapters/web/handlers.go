package web

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"gestorcloud/internal/app"
	"gestorcloud/internal/observability"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func init() {
	// Amounts go out as JSON numbers; quoted and bare numbers are both accepted on input.
	decimal.MarshalJSONWithoutQuotes = true
}

// Handler holds the ApplicationService and the shared request plumbing.
type Handler struct {
	svc      app.ApplicationService
	logger   *zap.Logger
	metrics  *observability.Metrics
	validate *validator.Validate
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins string, logger *zap.Logger, metrics *observability.Metrics) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		svc:      svc,
		logger:   logger,
		metrics:  metrics,
		validate: newValidator(),
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(logger, metrics))
	r.Use(Recoverer(logger))
	r.Use(CORS(allowedOrigins))

	r.Get("/api/health", h.health)
	if metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		// ── Customers ────────────────────────────────────────────────────────
		r.Get("/api/clientes", h.listCustomers)
		r.Post("/api/clientes", h.createCustomer)
		r.Get("/api/clientes/buscar", h.searchCustomers)
		r.Get("/api/clientes/{id}", h.getCustomer)
		r.Post("/api/clientes/{id}", h.updateCustomer)
		r.Put("/api/clientes/{id}", h.updateCustomer)
		r.Delete("/api/clientes/{id}", h.deleteCustomer)
		r.Get("/api/clientes/{id}/ventas", h.customerSales)

		// ── Sales ────────────────────────────────────────────────────────────
		r.Get("/api/ventas", h.listSales)
		r.Post("/api/ventas", h.createSale)
		r.Get("/api/ventas/hoy", h.daySales)

		// ── Statistics ───────────────────────────────────────────────────────
		r.Get("/api/estadisticas", h.statistics)
		r.Get("/api/estadisticas/ventas", h.salesStatistics)

		r.Get("/api/schema/{name}", h.schema)
	})

	return r
}

// health reports liveness and the backend in use.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status  string `json:"status"`
		Backend string `json:"backend"`
	}
	writeJSON(w, http.StatusOK, response{Status: "ok", Backend: string(h.svc.BackendKind())})
}

// newValidator reports field names by their json tag.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// pathID parses the {id} URL parameter, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, "invalid id: must be a positive integer", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// decodeBody fills v from a JSON body, or through fromForm when the request
// carries an urlencoded or multipart form, then validates it. It writes the
// error response and returns false on any failure.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, v any, fromForm func(url.Values) error) bool {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		var err error
		if mediaType == "multipart/form-data" {
			err = r.ParseMultipartForm(1 << 20)
		} else {
			err = r.ParseForm()
		}
		if err != nil {
			writeBodyError(w, r, "invalid form body: ", err)
			return false
		}
		if err := fromForm(r.PostForm); err != nil {
			writeError(w, r, err.Error(), "VALIDATION_ERROR", http.StatusBadRequest)
			return false
		}
	default:
		if !decodeJSON(w, r, v) {
			return false
		}
	}

	if err := h.validate.Struct(v); err != nil {
		h.writeServiceError(w, r, err)
		return false
	}
	return true
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeBodyError(w, r, "invalid JSON body: ", err)
		return false
	}
	return true
}

func writeBodyError(w http.ResponseWriter, r *http.Request, prefix string, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
		return
	}
	writeError(w, r, prefix+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
}
