package usecase

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	analysisDelivery "ray_analysis/internal/delivery/analysis"
	analysisRPC "ray_analysis/microservices/proto"
)

type AnalysisUseCase struct {
	handler analysisDelivery.RequestHandler
}

var _ analysisRPC.AnalysisServiceServer = (*AnalysisUseCase)(nil)

func NewAnalysisUseCase(handler analysisDelivery.RequestHandler) *AnalysisUseCase {
	return &AnalysisUseCase{
		handler: handler,
	}
}

// Analyse handles one protocol request and returns all of its response
// lines. quit is answered but does not stop the server.
func (a *AnalysisUseCase) Analyse(ctx context.Context, in *structpb.Struct) (*structpb.ListValue, error) {
	line, err := protojson.Marshal(in)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "encode request: %v", err)
	}

	out := &structpb.ListValue{}
	emit := func(resp any) error {
		raw, err := json.Marshal(resp)
		if err != nil {
			return err
		}
		value := &structpb.Value{}
		if err := protojson.Unmarshal(raw, value); err != nil {
			return err
		}
		out.Values = append(out.Values, value)
		return nil
	}

	if _, err := a.handler.Handle(ctx, line, emit); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}
