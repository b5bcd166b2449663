package remote

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dredimura/surface/internal/logging"
	"github.com/dredimura/surface/pkg/domain"
	"github.com/dredimura/surface/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewHandler serves authority over HTTP.
func NewHandler(authority ports.LicenseAuthority, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = logging.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1/licenses", func(r chi.Router) {
		r.Post("/{op}", func(w http.ResponseWriter, r *http.Request) {
			var body licenseRequest
			if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&body); err != nil {
				writeJSON(w, http.StatusBadRequest, licenseResponse{Status: string(domain.StatusInvalid)})
				return
			}

			var res ports.LicenseResult
			switch op := chi.URLParam(r, "op"); op {
			case "activate":
				res = authority.Activate(r.Context(), body.Code, body.MachineID)
			case "deactivate":
				res = authority.Deactivate(r.Context(), body.Code, body.MachineID)
			case "validate":
				res = authority.Validate(r.Context(), body.Code, body.MachineID)
			default:
				http.NotFound(w, r)
				return
			}

			logger.Info("License request", "op", chi.URLParam(r, "op"), "machine", body.MachineID, "status", res.Status)
			writeJSON(w, http.StatusOK, licenseResponse{Status: string(res.Status), Info: res.Info})
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
