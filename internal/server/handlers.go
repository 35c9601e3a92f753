package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	apperrors "github.com/Yhangokk/vidnav/internal/common/errors"
	"github.com/Yhangokk/vidnav/internal/submission"
)

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorHandler.HandleHTTPError(w, r, apperrors.NewValidationFailedError("request body is not valid JSON"))
		return
	}

	rec, err := s.engine.Submit(r.Context(), req.toPayload())
	if err != nil {
		s.errorHandler.HandleHTTPError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, submitResponse{
		Success:     true,
		Message:     "Submission received and queued for review",
		IssueNumber: rec.Number,
		IssueURL:    rec.HTMLURL,
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("status")
	status := submission.StatusPending
	if raw != "" {
		parsed, ok := submission.ParseStatus(raw)
		if !ok {
			s.errorHandler.HandleHTTPError(w, r, apperrors.NewValidationFailedError(
				"status must be one of: pending, approved, rejected"))
			return
		}
		status = parsed
	}

	records, err := s.engine.List(r.Context(), status)
	if err != nil {
		s.errorHandler.HandleHTTPError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{
		Success:     true,
		Count:       len(records),
		Submissions: records,
	})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	number, err := pathNumber(r)
	if err != nil {
		s.errorHandler.HandleHTTPError(w, r, err)
		return
	}

	rec, err := s.engine.Get(r.Context(), number)
	if err != nil {
		s.errorHandler.HandleHTTPError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, recordResponse{Success: true, Submission: rec})
}

func (s *Server) handleModerate(w http.ResponseWriter, r *http.Request) {
	number, err := pathNumber(r)
	if err != nil {
		s.errorHandler.HandleHTTPError(w, r, err)
		return
	}

	var req moderateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorHandler.HandleHTTPError(w, r, apperrors.NewValidationFailedError("request body is not valid JSON"))
		return
	}

	var rec *submission.Record
	var message string
	switch req.Action {
	case "approve":
		rec, err = s.engine.Approve(r.Context(), number)
		message = "Submission approved"
	case "reject":
		rec, err = s.engine.Reject(r.Context(), number, req.Reason)
		message = "Submission rejected"
	default:
		s.errorHandler.HandleHTTPError(w, r, apperrors.NewValidationFailedError(
			"action must be one of: approve, reject"))
		return
	}

	if err != nil {
		// Includes PUBLISH_FAILED: the label write landed but the approval
		// event did not go out, so the caller sees a non-2xx for the gap.
		s.errorHandler.HandleHTTPError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, recordResponse{
		Success:    true,
		Message:    message,
		Submission: rec,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if s.redis != nil {
		if err := s.redis.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:  status,
		Service: s.cfg.App.Name,
		Version: s.cfg.App.Version,
	})
}

func pathNumber(r *http.Request) (int, error) {
	raw := r.PathValue("number")
	number, err := strconv.Atoi(raw)
	if err != nil || number < 1 {
		return 0, apperrors.NewValidationFailedError("submission number must be a positive integer")
	}
	return number, nil
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
