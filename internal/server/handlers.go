package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dshills/leetgrade/internal/grader"
	"github.com/dshills/leetgrade/internal/history"
	"github.com/dshills/leetgrade/internal/report"
	"github.com/dshills/leetgrade/internal/submission"
)

// Submission is the JSON body accepted by the analyze and grade endpoints.
type Submission struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type pageData struct {
	Version  string
	Question string
	Answer   string
	Report   *report.Report
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeSubmission(w http.ResponseWriter, r *http.Request) (Submission, bool) {
	var sub Submission
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&sub); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return Submission{}, false
	}
	return sub, true
}

func (s *Server) render(w http.ResponseWriter, d pageData) {
	d.Version = s.opts.Version
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "home", d); err != nil {
		s.log.Error("template render failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func (s *Server) homeView(w http.ResponseWriter, _ *http.Request) {
	s.render(w, pageData{})
}

func (s *Server) analyzeForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	q, a := r.PostFormValue("question"), r.PostFormValue("answer")
	rep := s.analyze(q, a)
	s.record(r.Context(), rep)
	s.render(w, pageData{Question: q, Answer: a, Report: rep})
}

func (s *Server) analyze(question, answer string) *report.Report {
	rep := s.analyzer.Analyze(question, answer)
	rep.Input.Rubric = s.opts.Rubric
	return rep
}

func (s *Server) analyzeAPI(w http.ResponseWriter, r *http.Request) {
	sub, ok := decodeSubmission(w, r)
	if !ok {
		return
	}
	rep := s.analyze(sub.Question, sub.Answer)
	s.record(r.Context(), rep)
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) gradeAPI(w http.ResponseWriter, r *http.Request) {
	if s.opts.Grader == nil {
		writeError(w, http.StatusServiceUnavailable, "no LLM provider configured")
		return
	}
	sub, ok := decodeSubmission(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	res, err := s.opts.Grader.Grade(ctx,
		submission.FromText("question", sub.Question),
		submission.FromText("answer", sub.Answer))
	if err != nil {
		s.log.Error("grade failed", "error", err)
		var pe *grader.ProviderError
		var vf *grader.ValidationFailedError
		switch {
		case errors.As(err, &pe), errors.As(err, &vf):
			writeError(w, http.StatusBadGateway, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	rep := s.analyze(sub.Question, sub.Answer)
	rep.Grade = res.Grade
	rep.Meta = res.Meta
	s.record(r.Context(), rep)

	writeJSON(w, http.StatusOK, res.Grade)
}

func (s *Server) historyAPI(w http.ResponseWriter, r *http.Request) {
	if s.opts.Store == nil {
		writeError(w, http.StatusNotFound, "history is disabled")
		return
	}
	limit := history.DefaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	reports, err := s.opts.Store.List(r.Context(), limit)
	if err != nil {
		s.log.Error("failed to list history", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list history")
		return
	}
	if reports == nil {
		reports = []*report.Report{}
	}
	writeJSON(w, http.StatusOK, reports)
}

func (s *Server) historyItemAPI(w http.ResponseWriter, r *http.Request) {
	if s.opts.Store == nil {
		writeError(w, http.StatusNotFound, "history is disabled")
		return
	}
	rep, err := s.opts.Store.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, history.ErrNotFound) {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	if err != nil {
		s.log.Error("failed to load report", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load report")
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
