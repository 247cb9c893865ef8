package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const serviceName = "salon.v1.AppointmentsService"

// AppointmentsServiceServer is the server API for salon.v1.AppointmentsService.
type AppointmentsServiceServer interface {
	CreateAppointment(context.Context, *CreateAppointmentRequest) (*CreateAppointmentResponse, error)
	EditAppointment(context.Context, *EditAppointmentRequest) (*EditAppointmentResponse, error)
	DeleteAppointment(context.Context, *DeleteAppointmentRequest) (*DeleteAppointmentResponse, error)
	GetAppointment(context.Context, *GetAppointmentRequest) (*GetAppointmentResponse, error)
	ListAppointments(context.Context, *ListAppointmentsRequest) (*ListAppointmentsResponse, error)
	GetAvailability(context.Context, *GetAvailabilityRequest) (*GetAvailabilityResponse, error)
	ListServices(context.Context, *ListServicesRequest) (*ListServicesResponse, error)
	ListStaff(context.Context, *ListStaffRequest) (*ListStaffResponse, error)
}

var AppointmentsServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*AppointmentsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateAppointment", Handler: unaryHandler("CreateAppointment", AppointmentsServiceServer.CreateAppointment)},
		{MethodName: "EditAppointment", Handler: unaryHandler("EditAppointment", AppointmentsServiceServer.EditAppointment)},
		{MethodName: "DeleteAppointment", Handler: unaryHandler("DeleteAppointment", AppointmentsServiceServer.DeleteAppointment)},
		{MethodName: "GetAppointment", Handler: unaryHandler("GetAppointment", AppointmentsServiceServer.GetAppointment)},
		{MethodName: "ListAppointments", Handler: unaryHandler("ListAppointments", AppointmentsServiceServer.ListAppointments)},
		{MethodName: "GetAvailability", Handler: unaryHandler("GetAvailability", AppointmentsServiceServer.GetAvailability)},
		{MethodName: "ListServices", Handler: unaryHandler("ListServices", AppointmentsServiceServer.ListServices)},
		{MethodName: "ListStaff", Handler: unaryHandler("ListStaff", AppointmentsServiceServer.ListStaff)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "salon/v1/appointments",
}

func RegisterAppointmentsServiceServer(s grpc.ServiceRegistrar, srv AppointmentsServiceServer) {
	s.RegisterService(&AppointmentsServiceDesc, srv)
}

func fullMethod(method string) string {
	return "/" + serviceName + "/" + method
}

func unaryHandler[Req, Resp any](method string, call func(AppointmentsServiceServer, context.Context, *Req) (*Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		server := srv.(AppointmentsServiceServer)
		if interceptor == nil {
			return call(server, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(server, ctx, req.(*Req))
		})
	}
}

// AppointmentsClient calls salon.v1.AppointmentsService with the JSON codec.
type AppointmentsClient struct {
	cc grpc.ClientConnInterface
}

func NewAppointmentsClient(cc grpc.ClientConnInterface) *AppointmentsClient {
	return &AppointmentsClient{cc: cc}
}

func invoke[Req, Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in *Req, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AppointmentsClient) CreateAppointment(ctx context.Context, in *CreateAppointmentRequest, opts ...grpc.CallOption) (*CreateAppointmentResponse, error) {
	return invoke[CreateAppointmentRequest, CreateAppointmentResponse](ctx, c.cc, "CreateAppointment", in, opts)
}

func (c *AppointmentsClient) EditAppointment(ctx context.Context, in *EditAppointmentRequest, opts ...grpc.CallOption) (*EditAppointmentResponse, error) {
	return invoke[EditAppointmentRequest, EditAppointmentResponse](ctx, c.cc, "EditAppointment", in, opts)
}

func (c *AppointmentsClient) DeleteAppointment(ctx context.Context, in *DeleteAppointmentRequest, opts ...grpc.CallOption) (*DeleteAppointmentResponse, error) {
	return invoke[DeleteAppointmentRequest, DeleteAppointmentResponse](ctx, c.cc, "DeleteAppointment", in, opts)
}

func (c *AppointmentsClient) GetAppointment(ctx context.Context, in *GetAppointmentRequest, opts ...grpc.CallOption) (*GetAppointmentResponse, error) {
	return invoke[GetAppointmentRequest, GetAppointmentResponse](ctx, c.cc, "GetAppointment", in, opts)
}

func (c *AppointmentsClient) ListAppointments(ctx context.Context, in *ListAppointmentsRequest, opts ...grpc.CallOption) (*ListAppointmentsResponse, error) {
	return invoke[ListAppointmentsRequest, ListAppointmentsResponse](ctx, c.cc, "ListAppointments", in, opts)
}

func (c *AppointmentsClient) GetAvailability(ctx context.Context, in *GetAvailabilityRequest, opts ...grpc.CallOption) (*GetAvailabilityResponse, error) {
	return invoke[GetAvailabilityRequest, GetAvailabilityResponse](ctx, c.cc, "GetAvailability", in, opts)
}

func (c *AppointmentsClient) ListServices(ctx context.Context, in *ListServicesRequest, opts ...grpc.CallOption) (*ListServicesResponse, error) {
	return invoke[ListServicesRequest, ListServicesResponse](ctx, c.cc, "ListServices", in, opts)
}

func (c *AppointmentsClient) ListStaff(ctx context.Context, in *ListStaffRequest, opts ...grpc.CallOption) (*ListStaffResponse, error) {
	return invoke[ListStaffRequest, ListStaffResponse](ctx, c.cc, "ListStaff", in, opts)
}
