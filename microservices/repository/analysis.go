package repository

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	analysisDelivery "ray_analysis/internal/delivery/analysis"
	domain "ray_analysis/internal/domain/analysis"
	analysisRPC "ray_analysis/microservices/proto"
)

// AnalysisRepository forwards protocol lines to a remote analysis service,
// so the HTTP gateway can run without a local engine.
type AnalysisRepository struct {
	client  analysisRPC.AnalysisServiceClient
	log     *zap.SugaredLogger
	timeout time.Duration
}

var _ analysisDelivery.RequestHandler = (*AnalysisRepository)(nil)

func NewAnalysisRepository(client analysisRPC.AnalysisServiceClient, log *zap.SugaredLogger, timeout time.Duration) *AnalysisRepository {
	return &AnalysisRepository{
		client:  client,
		log:     log,
		timeout: timeout,
	}
}

// Handle sends one request and replays the remote responses through emit.
// Lines that are not JSON objects never leave the process.
func (r *AnalysisRepository) Handle(ctx context.Context, line []byte, emit analysisDelivery.Emitter) (bool, error) {
	in := &structpb.Struct{}
	if err := protojson.Unmarshal(line, in); err != nil {
		r.log.Infow("malformed request", "error", err)
		return false, emit(domain.Response{Response: domain.ResponseError, Message: analysisDelivery.MsgInvalidRequest})
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	out, err := r.client.Analyse(ctx, in)
	if err != nil {
		r.log.Errorw("remote analysis failed", "error", err)
		return false, emit(domain.Response{Response: domain.ResponseError, Message: analysisDelivery.MsgAnalysisFailed})
	}

	quit := false
	for _, v := range out.GetValues() {
		if v.GetStructValue().GetFields()["response"].GetStringValue() == domain.RequestQuit {
			quit = true
		}
		raw, err := protojson.Marshal(v)
		if err != nil {
			return quit, err
		}
		if err := emit(json.RawMessage(raw)); err != nil {
			return quit, err
		}
	}
	return quit, nil
}
