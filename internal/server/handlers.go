// internal/server/handlers.go
package server

import (
	"encoding/json"
	"io"
	"net/http"
	"os"

	"healthreport-service/internal/common/errors"
	"healthreport-service/internal/report"
	"healthreport-service/internal/scoring"

	"github.com/gorilla/mux"
)

// readPayload decodes the request body into an assessment payload, enforcing
// the configured body limit.
func (s *Server) readPayload(w http.ResponseWriter, r *http.Request) (scoring.AssessmentPayload, []byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.Server.MaxBodyBytes))
	if err != nil {
		return nil, nil, errors.NewInvalidPayloadError("request body unreadable or too large")
	}

	var payload scoring.AssessmentPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, nil, errors.NewInvalidPayloadError("request body is not a JSON object")
	}
	return payload, body, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// buildOptions derives the default build options from service config.
func (s *Server) buildOptions() report.BuildOptions {
	return report.BuildOptions{IncludeChart: s.config.Report.IncludeChart}
}

// ==========================
// Webhook Routes
// ==========================

// handleWebhook ingests a payload, stores it, runs the pipeline, and returns
// the report summary.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, body, err := s.readPayload(w, r)
	if err != nil {
		s.errorHandler.WriteHTTP(w, r, err)
		return
	}

	name, err := s.store.SavePayload(body)
	if err != nil {
		s.errorHandler.WriteHTTP(w, r, err)
		return
	}

	bundle, err := s.builder.BuildReport(r.Context(), payload, s.buildOptions())
	if err != nil {
		s.errorHandler.WriteHTTP(w, r, err)
		return
	}

	summary := bundle.Summarize()
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"file":   name,
		"report": summary,
	})
}

// handleWebhookToPDF runs the pipeline and streams the PDF straight back.
func (s *Server) handleWebhookToPDF(w http.ResponseWriter, r *http.Request) {
	payload, _, err := s.readPayload(w, r)
	if err != nil {
		s.errorHandler.WriteHTTP(w, r, err)
		return
	}

	bundle, err := s.builder.BuildReport(r.Context(), payload, s.buildOptions())
	if err != nil {
		s.errorHandler.WriteHTTP(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+bundle.Key+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(bundle.PDFBytes)
}

// handleWebhookToEmail runs the pipeline and delivers the report. The
// recipient comes from the ?recipient query parameter or the payload itself.
func (s *Server) handleWebhookToEmail(w http.ResponseWriter, r *http.Request) {
	payload, _, err := s.readPayload(w, r)
	if err != nil {
		s.errorHandler.WriteHTTP(w, r, err)
		return
	}

	opts := s.buildOptions()
	opts.Deliver = true
	opts.RecipientEmail = r.URL.Query().Get("recipient")

	bundle, err := s.builder.BuildReport(r.Context(), payload, opts)
	if err != nil {
		// A finished bundle alongside the error means only delivery failed.
		if bundle != nil {
			s.writeJSON(w, errors.GetHTTPStatus(s.errorHandler.Normalize(err).Code), map[string]interface{}{
				"report": bundle.Summarize(),
				"error":  s.errorHandler.Normalize(err).Message,
			})
			return
		}
		s.errorHandler.WriteHTTP(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"report": bundle.Summarize(),
	})
}

// ==========================
// Stored Payload Routes
// ==========================

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	infos, err := s.store.ListPayloads()
	if err != nil {
		s.errorHandler.WriteHTTP(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"files": infos,
		"count": len(infos),
	})
}

func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	data, err := s.store.ReadPayload(mux.Vars(r)["name"])
	if err != nil {
		s.errorHandler.WriteHTTP(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleProcessFile reruns the pipeline on a stored payload. Deterministic
// keys make this idempotent: the rebuilt artifacts replace the old ones.
func (s *Server) handleProcessFile(w http.ResponseWriter, r *http.Request) {
	payload, err := s.loadStoredPayload(mux.Vars(r)["name"])
	if err != nil {
		s.errorHandler.WriteHTTP(w, r, err)
		return
	}

	bundle, err := s.builder.BuildReport(r.Context(), payload, s.buildOptions())
	if err != nil {
		s.errorHandler.WriteHTTP(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"report": bundle.Summarize(),
	})
}

func (s *Server) handleEmailFile(w http.ResponseWriter, r *http.Request) {
	payload, err := s.loadStoredPayload(mux.Vars(r)["name"])
	if err != nil {
		s.errorHandler.WriteHTTP(w, r, err)
		return
	}

	opts := s.buildOptions()
	opts.Deliver = true
	opts.RecipientEmail = r.URL.Query().Get("recipient")

	bundle, err := s.builder.BuildReport(r.Context(), payload, opts)
	if err != nil {
		if bundle != nil {
			s.writeJSON(w, errors.GetHTTPStatus(s.errorHandler.Normalize(err).Code), map[string]interface{}{
				"report": bundle.Summarize(),
				"error":  s.errorHandler.Normalize(err).Message,
			})
			return
		}
		s.errorHandler.WriteHTTP(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"report": bundle.Summarize(),
	})
}

func (s *Server) loadStoredPayload(name string) (scoring.AssessmentPayload, error) {
	data, err := s.store.ReadPayload(name)
	if err != nil {
		return nil, err
	}
	var payload scoring.AssessmentPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, errors.NewInvalidPayloadError("stored payload is not a JSON object")
	}
	return payload, nil
}

// ==========================
// Artifact Routes
// ==========================

func (s *Server) handleGetReportPDF(w http.ResponseWriter, r *http.Request) {
	s.serveArtifact(w, r, "reports", ".pdf", "application/pdf")
}

func (s *Server) handleGetReportChart(w http.ResponseWriter, r *http.Request) {
	s.serveArtifact(w, r, "charts", ".png", "image/png")
}

func (s *Server) serveArtifact(w http.ResponseWriter, r *http.Request, kind, ext, contentType string) {
	key := mux.Vars(r)["key"]
	path, err := s.store.ArtifactPath(kind, key, ext)
	if err != nil {
		s.errorHandler.WriteHTTP(w, r, err)
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		s.errorHandler.WriteHTTP(w, r, errors.NewArtifactWriteError(path, err))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ==========================
// Operational Routes
// ==========================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": s.config.App.Name,
		"version": s.config.App.Version,
	})
}
