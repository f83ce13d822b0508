package httpserver

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/onboarding/internal/api"
	"github.com/and161185/onboarding/internal/checklist"
	"github.com/and161185/onboarding/internal/convert"
	"github.com/and161185/onboarding/internal/errs"
	"github.com/and161185/onboarding/internal/export"
	"github.com/and161185/onboarding/internal/metrics"
	"github.com/and161185/onboarding/internal/model"
)

const invalidLinkMessage = "invalid or expired link"

// missingDataMessage rejects form writes without a data object; emptying a form goes through clear.
const missingDataMessage = "data is required"

// maxBody caps JSON request bodies.
const maxBody = 1 << 20

type errorBody struct {
	Error string `json:"error"`
}

type shareResponse struct {
	ClientName string            `json:"client_name"`
	Form       map[string]string `json:"form"`
}

type formBody struct {
	Data map[string]string `json:"data"`
}

type clearBody struct {
	Confirm bool `json:"confirm"`
}

type createBody struct {
	Name string `json:"name"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeError maps service errors to HTTP statuses; unexpected ones are logged, not echoed.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, errs.ErrInvalidArgument), errors.Is(err, errs.ErrUnknownField):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, errs.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	case errors.Is(err, errs.ErrRateLimited):
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "too many requests"})
	default:
		s.log.Error(op, zap.Error(err), zap.String("route", routePattern(r)))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := convert.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, "parse id", err)
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) countShare(result string) {
	if s.metrics != nil {
		s.metrics.ShareLookupsTotal.WithLabelValues(result).Inc()
	}
}

func (s *Server) countSave(source string, err error) {
	if s.metrics != nil {
		s.metrics.FormSavesTotal.WithLabelValues(source, metrics.SaveResult(err)).Inc()
	}
}

// resolve runs the rate-limited share lookup. A nil client with a nil error means unknown token.
func (s *Server) resolve(r *http.Request) (*model.Client, error) {
	c, err := s.clients.ResolveShareLink(r.Context(), chi.URLParam(r, "token"), clientIP(r))
	switch {
	case errors.Is(err, errs.ErrRateLimited):
		s.countShare(metrics.ResultRateLimited)
	case err != nil:
		s.countShare(metrics.ResultFailure)
	case c == nil:
		s.countShare(metrics.ResultNotFound)
	default:
		s.countShare(metrics.ResultSuccess)
	}
	return c, err
}

// --- public ---

func (s *Server) sharePage(w http.ResponseWriter, r *http.Request) {
	c, err := s.resolve(r)
	switch {
	case errors.Is(err, errs.ErrRateLimited):
		s.renderMessage(w, http.StatusTooManyRequests, "For mange forsøk", "Vent litt og prøv igjen.")
		return
	case err != nil:
		s.log.Error("share page", zap.Error(err))
		s.renderMessage(w, http.StatusInternalServerError, "Noe gikk galt", "Prøv igjen senere.")
		return
	case c == nil:
		s.renderMessage(w, http.StatusNotFound, "Ugyldig eller utløpt lenke", "Kontakt oss på "+checklist.Contact+" for å få en ny lenke.")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = pages.ExecuteTemplate(w, "share.html.tmpl", map[string]any{
		"ClientName": c.Name,
		"Intro":      checklist.Intro(c.Name),
		"Sections":   checklist.Sections,
		"NextSteps":  checklist.NextSteps,
		"Contact":    checklist.Contact,
	})
	if err != nil {
		s.log.Error("render share page", zap.Error(err))
	}
}

func (s *Server) renderMessage(w http.ResponseWriter, status int, title, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pages.ExecuteTemplate(w, "invalid.html.tmpl", map[string]string{"Title": title, "Message": msg}); err != nil {
		s.log.Error("render message page", zap.Error(err))
	}
}

func (s *Server) shareGet(w http.ResponseWriter, r *http.Request) {
	c, err := s.resolve(r)
	if err != nil {
		s.writeError(w, r, "share lookup", err)
		return
	}
	if c == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: invalidLinkMessage})
		return
	}
	f, err := s.forms.GetFormData(r.Context(), c.ID)
	if err != nil {
		s.writeError(w, r, "share get form", err)
		return
	}
	data := model.FormData{}
	if f != nil {
		data = f.Data
	}
	writeJSON(w, http.StatusOK, shareResponse{ClientName: c.Name, Form: data})
}

func (s *Server) sharePutForm(w http.ResponseWriter, r *http.Request) {
	c, err := s.resolve(r)
	if err != nil {
		s.writeError(w, r, "share lookup", err)
		return
	}
	if c == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: invalidLinkMessage})
		return
	}
	var body formBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad request body"})
		return
	}
	if body.Data == nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: missingDataMessage})
		return
	}
	err = s.forms.SaveFormData(r.Context(), c.ID, body.Data)
	s.countSave("share", err)
	if err != nil {
		s.writeError(w, r, "share save form", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- operator ---

func (s *Server) listClients(w http.ResponseWriter, r *http.Request) {
	cs, err := s.clients.ListClients(r.Context())
	if err != nil {
		s.writeError(w, r, "list clients", err)
		return
	}
	writeJSON(w, http.StatusOK, api.ListClientsResponse{Clients: convert.ToAPIClients(cs, s.opts.PublicURL)})
}

func (s *Server) createClient(w http.ResponseWriter, r *http.Request) {
	var body createBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad request body"})
		return
	}
	c, err := s.clients.CreateClient(r.Context(), body.Name)
	if err != nil {
		s.writeError(w, r, "create client", err)
		return
	}
	writeJSON(w, http.StatusCreated, api.ClientResponse{Client: convert.ToAPIClient(*c, s.opts.PublicURL)})
}

func (s *Server) getClient(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	c, err := s.clients.GetClient(r.Context(), id)
	if err != nil {
		s.writeError(w, r, "get client", err)
		return
	}
	if c == nil {
		s.writeError(w, r, "get client", errs.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, api.ClientResponse{Client: convert.ToAPIClient(*c, s.opts.PublicURL)})
}

func (s *Server) deleteClient(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if err := s.clients.DeleteClient(r.Context(), id); err != nil {
		s.writeError(w, r, "delete client", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getForm(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	f, err := s.forms.GetFormData(r.Context(), id)
	if err != nil {
		s.writeError(w, r, "get form", err)
		return
	}
	if f == nil {
		s.writeError(w, r, "get form", errs.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, api.GetFormDataResponse{Form: convert.ToAPIForm(*f)})
}

func (s *Server) putForm(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var body formBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad request body"})
		return
	}
	if body.Data == nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: missingDataMessage})
		return
	}
	err := s.forms.SaveFormData(r.Context(), id, body.Data)
	s.countSave("http", err)
	if err != nil {
		s.writeError(w, r, "save form", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) clearForm(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var body clearBody
	if err := decodeJSON(w, r, &body); err != nil || !body.Confirm {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "confirmation required"})
		return
	}
	err := s.forms.ClearFormData(r.Context(), id)
	s.countSave("http", err)
	if err != nil {
		s.writeError(w, r, "clear form", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) exportText(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	text, err := s.forms.ExportFormData(r.Context(), id, s.now())
	if err != nil {
		s.writeError(w, r, "export", err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(text))
}

func (s *Server) printPage(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	c, err := s.clients.GetClient(r.Context(), id)
	if err != nil {
		s.writeError(w, r, "print", err)
		return
	}
	if c == nil {
		s.renderMessage(w, http.StatusNotFound, "Kunde ikke funnet", "")
		return
	}
	f, err := s.forms.GetFormData(r.Context(), id)
	if err != nil {
		s.writeError(w, r, "print", err)
		return
	}
	var data model.FormData
	if f != nil {
		data = f.Data
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := export.PrintHTML(w, data, c.Name, s.now()); err != nil {
		s.log.Error("render print page", zap.Error(err))
	}
}
