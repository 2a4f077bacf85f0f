// Package api serves the read-only content catalog and offline sheet builds
// over gRPC. Requests and responses are google.protobuf.Struct values, so the
// service needs no generated code.
package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "charforge.v1.Catalog"

// CatalogServer is the server API for the Catalog service.
type CatalogServer interface {
	// ListRaces returns {"races": [{id, name, summary}]}.
	ListRaces(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// GetRace takes {"id"} and returns the race with its traits.
	GetRace(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// ListClasses returns {"classes": [...]} with archetype ids per class.
	ListClasses(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// BuildSheet takes a set of choices and returns the derived sheet.
	BuildSheet(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(CatalogServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(CatalogServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + name,
			}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(CatalogServer), ctx, req.(*structpb.Struct))
			})
		},
	}
}

// ServiceDesc describes the Catalog service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CatalogServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("ListRaces", CatalogServer.ListRaces),
		unary("GetRace", CatalogServer.GetRace),
		unary("ListClasses", CatalogServer.ListClasses),
		unary("BuildSheet", CatalogServer.BuildSheet),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "charforge/v1/catalog",
}

// RegisterCatalogServer registers srv with s.
//
// Precondition: s and srv must be non-nil.
func RegisterCatalogServer(s grpc.ServiceRegistrar, srv CatalogServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// CatalogClient calls the Catalog service.
type CatalogClient struct {
	cc grpc.ClientConnInterface
}

// NewCatalogClient returns a client using cc.
func NewCatalogClient(cc grpc.ClientConnInterface) *CatalogClient {
	return &CatalogClient{cc: cc}
}

func (c *CatalogClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ListRaces calls Catalog.ListRaces.
func (c *CatalogClient) ListRaces(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "ListRaces", nil, opts...)
}

// GetRace calls Catalog.GetRace for id.
func (c *CatalogClient) GetRace(ctx context.Context, id string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	return c.invoke(ctx, "GetRace", in, opts...)
}

// ListClasses calls Catalog.ListClasses.
func (c *CatalogClient) ListClasses(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "ListClasses", nil, opts...)
}

// BuildSheet calls Catalog.BuildSheet with in.
func (c *CatalogClient) BuildSheet(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "BuildSheet", in, opts...)
}
