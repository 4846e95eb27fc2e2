package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Сервис описан вручную: запрос и ответы протокола передаются как
// google.protobuf.Struct / ListValue, отдельный .proto не нужен.
const (
	AnalysisServiceName  = "ray_analysis.AnalysisService"
	AnalysisAnalyseFull  = "/" + AnalysisServiceName + "/Analyse"
	analysisAnalyseShort = "Analyse"
)

type AnalysisServiceServer interface {
	Analyse(ctx context.Context, in *structpb.Struct) (*structpb.ListValue, error)
}

var AnalysisServiceDesc = grpc.ServiceDesc{
	ServiceName: AnalysisServiceName,
	HandlerType: (*AnalysisServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: analysisAnalyseShort, Handler: analyseHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ray_analysis/analysis.proto",
}

func RegisterAnalysisServiceServer(s grpc.ServiceRegistrar, srv AnalysisServiceServer) {
	s.RegisterService(&AnalysisServiceDesc, srv)
}

func analyseHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AnalysisServiceServer).Analyse(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: AnalysisAnalyseFull}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AnalysisServiceServer).Analyse(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

type AnalysisServiceClient interface {
	Analyse(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.ListValue, error)
}

type analysisServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewAnalysisServiceClient(cc grpc.ClientConnInterface) AnalysisServiceClient {
	return &analysisServiceClient{cc: cc}
}

func (c *analysisServiceClient) Analyse(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, AnalysisAnalyseFull, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
