// Package client is the operator-side data access layer: it calls the onboarding
// gRPC API and exposes the same methods as the server services.
package client

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/and161185/onboarding/internal/api"
	"github.com/and161185/onboarding/internal/convert"
	"github.com/and161185/onboarding/internal/errs"
	"github.com/and161185/onboarding/internal/model"
)

// Client talks to the onboarding server.
type Client struct {
	conn *grpc.ClientConn
	rpc  *api.OnboardingClient
}

// Options configure Dial.
type Options struct {
	// TLS enables transport security; nil uses plaintext.
	TLS *tls.Config
	// Timeout bounds every call; zero means no extra deadline.
	Timeout time.Duration
}

// Dial connects to addr. The connection is established lazily on the first call.
func Dial(addr string, opts Options) (*Client, error) {
	creds := insecure.NewCredentials()
	if opts.TLS != nil {
		creds = credentials.NewTLS(opts.TLS)
	}
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(creds),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(api.CodecName)),
	}
	if opts.Timeout > 0 {
		dialOpts = append(dialOpts, grpc.WithUnaryInterceptor(timeoutUnary(opts.Timeout)))
	}
	conn, err := grpc.NewClient(addr, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &Client{conn: conn, rpc: api.NewOnboardingClient(conn)}, nil
}

// New wraps an existing connection.
func New(cc grpc.ClientConnInterface) *Client {
	return &Client{rpc: api.NewOnboardingClient(cc)}
}

// Close closes a connection opened by Dial.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func timeoutUnary(d time.Duration) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// fromStatus maps gRPC status codes back to sentinels.
func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%w: %w", errs.ErrStore, err)
	}
	switch st.Code() {
	case codes.NotFound:
		return fmt.Errorf("%w: %s", errs.ErrNotFound, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", errs.ErrInvalidArgument, st.Message())
	case codes.ResourceExhausted:
		return fmt.Errorf("%w: %s", errs.ErrRateLimited, st.Message())
	default:
		return fmt.Errorf("%w: %s: %s", errs.ErrStore, st.Code(), st.Message())
	}
}

// lookup maps NotFound to a nil result.
func lookup[T any](v *T, err error) (*T, error) {
	if err == nil {
		return v, nil
	}
	err = fromStatus(err)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, nil
	}
	return nil, err
}

// ListClients returns all clients, newest first.
func (c *Client) ListClients(ctx context.Context) ([]model.Client, error) {
	resp, err := c.rpc.ListClients(ctx, &api.ListClientsRequest{})
	if err != nil {
		return nil, fromStatus(err)
	}
	out := make([]model.Client, 0, len(resp.Clients))
	for _, ac := range resp.Clients {
		mc, err := convert.FromAPIClient(ac)
		if err != nil {
			return nil, err
		}
		out = append(out, mc)
	}
	return out, nil
}

func (c *Client) clientFrom(resp *api.ClientResponse, err error) (*model.Client, error) {
	resp, err = lookup(resp, err)
	if err != nil || resp == nil {
		return nil, err
	}
	mc, err := convert.FromAPIClient(resp.Client)
	if err != nil {
		return nil, err
	}
	return &mc, nil
}

// GetClient returns the client or nil when it does not exist.
func (c *Client) GetClient(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	return c.clientFrom(c.rpc.GetClient(ctx, &api.GetClientRequest{ID: id.String()}))
}

// GetClientByShareToken returns the client owning tok or nil.
func (c *Client) GetClientByShareToken(ctx context.Context, tok string) (*model.Client, error) {
	return c.clientFrom(c.rpc.GetClientByShareToken(ctx, &api.GetClientByShareTokenRequest{Token: tok}))
}

// CreateClient creates a client with a fresh share token.
func (c *Client) CreateClient(ctx context.Context, name string) (*model.Client, error) {
	resp, err := c.rpc.CreateClient(ctx, &api.CreateClientRequest{Name: name})
	if err != nil {
		return nil, fromStatus(err)
	}
	mc, err := convert.FromAPIClient(resp.Client)
	if err != nil {
		return nil, err
	}
	return &mc, nil
}

// DeleteClient removes a client; missing ids are not an error.
func (c *Client) DeleteClient(ctx context.Context, id uuid.UUID) error {
	if _, err := c.rpc.DeleteClient(ctx, &api.DeleteClientRequest{ID: id.String()}); err != nil {
		return fromStatus(err)
	}
	return nil
}

// GetFormData returns the stored form or nil when nothing was saved yet.
func (c *Client) GetFormData(ctx context.Context, clientID uuid.UUID) (*model.OnboardingForm, error) {
	resp, err := c.rpc.GetFormData(ctx, &api.GetFormDataRequest{ClientID: clientID.String()})
	if resp, err = lookup(resp, err); err != nil || resp == nil {
		return nil, err
	}
	f, err := convert.FromAPIForm(resp.Form)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// SaveFormData upserts the form of a client.
func (c *Client) SaveFormData(ctx context.Context, clientID uuid.UUID, data model.FormData) error {
	_, err := c.rpc.SaveFormData(ctx, &api.SaveFormDataRequest{ClientID: clientID.String(), Data: data})
	if err != nil {
		return fromStatus(err)
	}
	return nil
}

// ClearFormData persists an empty form.
func (c *Client) ClearFormData(ctx context.Context, clientID uuid.UUID) error {
	if _, err := c.rpc.ClearFormData(ctx, &api.ClearFormDataRequest{ClientID: clientID.String()}); err != nil {
		return fromStatus(err)
	}
	return nil
}

// ExportFormData renders the meeting document with generatedAt in the footer.
func (c *Client) ExportFormData(ctx context.Context, clientID uuid.UUID, generatedAt time.Time) (string, error) {
	resp, err := c.rpc.ExportFormData(ctx, &api.ExportFormDataRequest{ClientID: clientID.String(), GeneratedAt: generatedAt})
	if err != nil {
		return "", fromStatus(err)
	}
	return resp.Text, nil
}
