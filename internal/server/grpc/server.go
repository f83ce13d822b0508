// Package grpcserver exposes the onboarding operator API over gRPC.
package grpcserver

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/and161185/onboarding/internal/api"
	"github.com/and161185/onboarding/internal/convert"
	"github.com/and161185/onboarding/internal/errs"
	"github.com/and161185/onboarding/internal/metrics"
	"github.com/and161185/onboarding/internal/model"
	"github.com/and161185/onboarding/internal/service"
)

var _ api.OnboardingServer = (*Server)(nil)

// Server wires services into gRPC handlers.
type Server struct {
	clients   service.ClientService
	forms     service.FormService
	publicURL string
	metrics   *metrics.Metrics
	now       func() time.Time
}

// New constructs a gRPC server with injected services. m may be nil.
func New(clients service.ClientService, forms service.FormService, publicURL string, m *metrics.Metrics) *Server {
	return &Server{clients: clients, forms: forms, publicURL: publicURL, metrics: m, now: time.Now}
}

// toStatus maps service errors to gRPC status codes.
func toStatus(op string, err error) error {
	switch {
	case errors.Is(err, errs.ErrInvalidArgument), errors.Is(err, errs.ErrUnknownField):
		return status.Errorf(codes.InvalidArgument, "%s: %v", op, err)
	case errors.Is(err, errs.ErrNotFound):
		return status.Errorf(codes.NotFound, "%s: not found", op)
	case errors.Is(err, errs.ErrRateLimited):
		return status.Error(codes.ResourceExhausted, "rate limited")
	default:
		return status.Errorf(codes.Internal, "%s: %v", op, err)
	}
}

// --- Clients ---

// ListClients returns all clients, newest first.
func (s *Server) ListClients(ctx context.Context, _ *api.ListClientsRequest) (*api.ListClientsResponse, error) {
	cs, err := s.clients.ListClients(ctx)
	if err != nil {
		return nil, toStatus("list clients", err)
	}
	return &api.ListClientsResponse{Clients: convert.ToAPIClients(cs, s.publicURL)}, nil
}

// GetClient returns one client or NotFound.
func (s *Server) GetClient(ctx context.Context, req *api.GetClientRequest) (*api.ClientResponse, error) {
	id, err := convert.ParseID(req.ID)
	if err != nil {
		return nil, toStatus("get client", err)
	}
	c, err := s.clients.GetClient(ctx, id)
	return s.clientResponse("get client", c, err)
}

// GetClientByShareToken resolves a share token. Unknown and malformed tokens both yield NotFound.
func (s *Server) GetClientByShareToken(ctx context.Context, req *api.GetClientByShareTokenRequest) (*api.ClientResponse, error) {
	c, err := s.clients.GetClientByShareToken(ctx, req.Token)
	return s.clientResponse("get client by token", c, err)
}

// CreateClient stores a new client.
func (s *Server) CreateClient(ctx context.Context, req *api.CreateClientRequest) (*api.ClientResponse, error) {
	c, err := s.clients.CreateClient(ctx, req.Name)
	return s.clientResponse("create client", c, err)
}

// DeleteClient removes a client and its form.
func (s *Server) DeleteClient(ctx context.Context, req *api.DeleteClientRequest) (*api.Empty, error) {
	id, err := convert.ParseID(req.ID)
	if err != nil {
		return nil, toStatus("delete client", err)
	}
	if err := s.clients.DeleteClient(ctx, id); err != nil {
		return nil, toStatus("delete client", err)
	}
	return &api.Empty{}, nil
}

func (s *Server) clientResponse(op string, c *model.Client, err error) (*api.ClientResponse, error) {
	if err != nil {
		return nil, toStatus(op, err)
	}
	if c == nil {
		return nil, toStatus(op, errs.ErrNotFound)
	}
	return &api.ClientResponse{Client: convert.ToAPIClient(*c, s.publicURL)}, nil
}

// --- Forms ---

// GetFormData returns the stored form or NotFound when nothing was saved yet.
func (s *Server) GetFormData(ctx context.Context, req *api.GetFormDataRequest) (*api.GetFormDataResponse, error) {
	id, err := convert.ParseID(req.ClientID)
	if err != nil {
		return nil, toStatus("get form", err)
	}
	f, err := s.forms.GetFormData(ctx, id)
	if err != nil {
		return nil, toStatus("get form", err)
	}
	if f == nil {
		return nil, toStatus("get form", errs.ErrNotFound)
	}
	return &api.GetFormDataResponse{Form: convert.ToAPIForm(*f)}, nil
}

// SaveFormData upserts the form of a client.
func (s *Server) SaveFormData(ctx context.Context, req *api.SaveFormDataRequest) (*api.Empty, error) {
	id, err := convert.ParseID(req.ClientID)
	if err != nil {
		return nil, toStatus("save form", err)
	}
	err = s.forms.SaveFormData(ctx, id, model.FormData(req.Data))
	s.countSave(err)
	if err != nil {
		return nil, toStatus("save form", err)
	}
	return &api.Empty{}, nil
}

// ClearFormData persists an empty form.
func (s *Server) ClearFormData(ctx context.Context, req *api.ClearFormDataRequest) (*api.Empty, error) {
	id, err := convert.ParseID(req.ClientID)
	if err != nil {
		return nil, toStatus("clear form", err)
	}
	err = s.forms.ClearFormData(ctx, id)
	s.countSave(err)
	if err != nil {
		return nil, toStatus("clear form", err)
	}
	return &api.Empty{}, nil
}

// ExportFormData renders the meeting document.
func (s *Server) ExportFormData(ctx context.Context, req *api.ExportFormDataRequest) (*api.ExportFormDataResponse, error) {
	id, err := convert.ParseID(req.ClientID)
	if err != nil {
		return nil, toStatus("export", err)
	}
	text, err := s.forms.ExportFormData(ctx, id, convert.GeneratedAt(req.GeneratedAt, s.now()))
	if err != nil {
		return nil, toStatus("export", err)
	}
	return &api.ExportFormDataResponse{Text: text}, nil
}

func (s *Server) countSave(err error) {
	if s.metrics != nil {
		s.metrics.FormSavesTotal.WithLabelValues("grpc", metrics.SaveResult(err)).Inc()
	}
}
