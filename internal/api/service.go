package api

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "onboarding.v1.Onboarding"

// Method names.
const (
	MethodListClients           = "ListClients"
	MethodGetClient             = "GetClient"
	MethodGetClientByShareToken = "GetClientByShareToken"
	MethodCreateClient          = "CreateClient"
	MethodDeleteClient          = "DeleteClient"
	MethodGetFormData           = "GetFormData"
	MethodSaveFormData          = "SaveFormData"
	MethodClearFormData         = "ClearFormData"
	MethodExportFormData        = "ExportFormData"
)

// FullMethod returns "/onboarding.v1.Onboarding/<method>".
func FullMethod(method string) string { return "/" + ServiceName + "/" + method }

// OnboardingServer is implemented by the gRPC transport.
type OnboardingServer interface {
	ListClients(context.Context, *ListClientsRequest) (*ListClientsResponse, error)
	GetClient(context.Context, *GetClientRequest) (*ClientResponse, error)
	GetClientByShareToken(context.Context, *GetClientByShareTokenRequest) (*ClientResponse, error)
	CreateClient(context.Context, *CreateClientRequest) (*ClientResponse, error)
	DeleteClient(context.Context, *DeleteClientRequest) (*Empty, error)
	GetFormData(context.Context, *GetFormDataRequest) (*GetFormDataResponse, error)
	SaveFormData(context.Context, *SaveFormDataRequest) (*Empty, error)
	ClearFormData(context.Context, *ClearFormDataRequest) (*Empty, error)
	ExportFormData(context.Context, *ExportFormDataRequest) (*ExportFormDataResponse, error)
}

func unary[Req, Resp any](method string, call func(OnboardingServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(OnboardingServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(OnboardingServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes the onboarding service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*OnboardingServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodListClients, OnboardingServer.ListClients),
		unary(MethodGetClient, OnboardingServer.GetClient),
		unary(MethodGetClientByShareToken, OnboardingServer.GetClientByShareToken),
		unary(MethodCreateClient, OnboardingServer.CreateClient),
		unary(MethodDeleteClient, OnboardingServer.DeleteClient),
		unary(MethodGetFormData, OnboardingServer.GetFormData),
		unary(MethodSaveFormData, OnboardingServer.SaveFormData),
		unary(MethodClearFormData, OnboardingServer.ClearFormData),
		unary(MethodExportFormData, OnboardingServer.ExportFormData),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "onboarding/v1",
}

// RegisterOnboardingServer registers srv on s.
func RegisterOnboardingServer(s grpc.ServiceRegistrar, srv OnboardingServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// OnboardingClient is the client stub of the onboarding service.
type OnboardingClient struct {
	cc grpc.ClientConnInterface
}

// NewOnboardingClient wraps a connection. Calls always use the JSON codec.
func NewOnboardingClient(cc grpc.ClientConnInterface) *OnboardingClient {
	return &OnboardingClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, c *OnboardingClient, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OnboardingClient) ListClients(ctx context.Context, in *ListClientsRequest, opts ...grpc.CallOption) (*ListClientsResponse, error) {
	return invoke[ListClientsResponse](ctx, c, MethodListClients, in, opts)
}

func (c *OnboardingClient) GetClient(ctx context.Context, in *GetClientRequest, opts ...grpc.CallOption) (*ClientResponse, error) {
	return invoke[ClientResponse](ctx, c, MethodGetClient, in, opts)
}

func (c *OnboardingClient) GetClientByShareToken(ctx context.Context, in *GetClientByShareTokenRequest, opts ...grpc.CallOption) (*ClientResponse, error) {
	return invoke[ClientResponse](ctx, c, MethodGetClientByShareToken, in, opts)
}

func (c *OnboardingClient) CreateClient(ctx context.Context, in *CreateClientRequest, opts ...grpc.CallOption) (*ClientResponse, error) {
	return invoke[ClientResponse](ctx, c, MethodCreateClient, in, opts)
}

func (c *OnboardingClient) DeleteClient(ctx context.Context, in *DeleteClientRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c, MethodDeleteClient, in, opts)
}

func (c *OnboardingClient) GetFormData(ctx context.Context, in *GetFormDataRequest, opts ...grpc.CallOption) (*GetFormDataResponse, error) {
	return invoke[GetFormDataResponse](ctx, c, MethodGetFormData, in, opts)
}

func (c *OnboardingClient) SaveFormData(ctx context.Context, in *SaveFormDataRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c, MethodSaveFormData, in, opts)
}

func (c *OnboardingClient) ClearFormData(ctx context.Context, in *ClearFormDataRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c, MethodClearFormData, in, opts)
}

func (c *OnboardingClient) ExportFormData(ctx context.Context, in *ExportFormDataRequest, opts ...grpc.CallOption) (*ExportFormDataResponse, error) {
	return invoke[ExportFormDataResponse](ctx, c, MethodExportFormData, in, opts)
}
