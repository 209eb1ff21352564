package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/preciar/internal/core/domain"
)

// defaultExperimentLimit caps list_experiments when no limit is given.
const defaultExperimentLimit = 10

// PredictInput is the input schema for the predict_price tool.
type PredictInput struct {
	Lon            float64  `json:"lon" jsonschema:"longitude of the listing"`
	Lat            float64  `json:"lat" jsonschema:"latitude of the listing"`
	L3             string   `json:"l3" jsonschema:"neighbourhood name, e.g. Palermo"`
	PropertyType   string   `json:"property_type" jsonschema:"property type, e.g. Departamento"`
	OperationType  string   `json:"operation_type" jsonschema:"operation type, e.g. Venta"`
	Currency       string   `json:"currency,omitempty" jsonschema:"price currency (default USD)"`
	Rooms          *float64 `json:"rooms,omitempty" jsonschema:"number of rooms"`
	Bedrooms       *float64 `json:"bedrooms,omitempty" jsonschema:"number of bedrooms"`
	Bathrooms      *float64 `json:"bathrooms,omitempty" jsonschema:"number of bathrooms"`
	SurfaceTotal   *float64 `json:"surface_total,omitempty" jsonschema:"total surface in square metres"`
	SurfaceCovered *float64 `json:"surface_covered,omitempty" jsonschema:"covered surface in square metres"`
}

func (in PredictInput) sample() domain.Sample {
	return domain.Sample{
		Lon:            &in.Lon,
		Lat:            &in.Lat,
		L3:             in.L3,
		PropertyType:   in.PropertyType,
		OperationType:  in.OperationType,
		Currency:       in.Currency,
		Rooms:          in.Rooms,
		Bedrooms:       in.Bedrooms,
		Bathrooms:      in.Bathrooms,
		SurfaceTotal:   in.SurfaceTotal,
		SurfaceCovered: in.SurfaceCovered,
	}
}

// HealthInput is the (empty) input schema for the model_health tool.
type HealthInput struct{}

// TriggerInput is the input schema for the trigger_pipeline tool.
type TriggerInput struct {
	Kind string `json:"kind,omitempty" jsonschema:"job kind: ingest, train or ingest-train (default ingest-train)"`
}

// TriggerOutput is the output schema for the trigger_pipeline tool.
type TriggerOutput struct {
	JobID string `json:"job_id"`
	Kind  string `json:"kind"`
	State string `json:"state"`
}

// ExperimentsInput is the input schema for the list_experiments tool.
type ExperimentsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of records to return (default 10)"`
}

// ExperimentsOutput is the output schema for the list_experiments tool.
type ExperimentsOutput struct {
	Experiments []ExperimentOutput `json:"experiments"`
	Count       int                `json:"count"`
}

// ExperimentOutput is one recorded model evaluation.
type ExperimentOutput struct {
	Experiment string    `json:"experiment"`
	Model      string    `json:"model"`
	RecordedAt time.Time `json:"recorded_at"`
	RMSE       float64   `json:"rmse"`
	MAE        float64   `json:"mae"`
	R2         float64   `json:"r2"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "predict_price",
		Description: "Predict the sale price of a property listing",
	}, s.handlePredict)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "model_health",
		Description: "Report whether a price model is loaded and the recent prediction latency",
	}, s.handleHealth)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "trigger_pipeline",
		Description: "Queue an ingestion and/or training run in the background",
	}, s.handleTrigger)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_experiments",
		Description: "List recent training runs with their evaluation metrics",
	}, s.handleExperiments)
}

// handlePredict handles the predict_price tool invocation.
func (s *Server) handlePredict(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PredictInput,
) (*mcp.CallToolResult, domain.Prediction, error) {
	pred, err := s.ports.Prediction.Predict(ctx, input.sample())
	if err != nil {
		return nil, domain.Prediction{}, err
	}
	return nil, *pred, nil
}

// handleHealth handles the model_health tool invocation.
func (s *Server) handleHealth(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ HealthInput,
) (*mcp.CallToolResult, domain.HealthReport, error) {
	return nil, s.ports.Prediction.Health(ctx), nil
}

// handleTrigger handles the trigger_pipeline tool invocation.
func (s *Server) handleTrigger(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input TriggerInput,
) (*mcp.CallToolResult, TriggerOutput, error) {
	if s.ports.Dispatcher == nil {
		return nil, TriggerOutput{}, ErrDispatcherUnavailable
	}

	kind := domain.JobKind(input.Kind)
	if kind == "" {
		kind = domain.JobIngestTrain
	}

	job, err := s.ports.Dispatcher.Submit(kind)
	if err != nil {
		return nil, TriggerOutput{}, err
	}
	return nil, TriggerOutput{JobID: job.ID, Kind: string(job.Kind), State: string(job.State)}, nil
}

// handleExperiments handles the list_experiments tool invocation.
func (s *Server) handleExperiments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExperimentsInput,
) (*mcp.CallToolResult, ExperimentsOutput, error) {
	if s.ports.Experiments == nil {
		return nil, ExperimentsOutput{}, ErrExperimentsUnavailable
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultExperimentLimit
	}

	records, err := s.ports.Experiments.List(ctx, limit)
	if err != nil {
		return nil, ExperimentsOutput{}, err
	}

	output := ExperimentsOutput{
		Experiments: make([]ExperimentOutput, len(records)),
		Count:       len(records),
	}
	for i := range records {
		output.Experiments[i] = ExperimentOutput{
			Experiment: records[i].Experiment,
			Model:      string(records[i].Model),
			RecordedAt: records[i].RecordedAt,
			RMSE:       records[i].Metrics.RMSE,
			MAE:        records[i].Metrics.MAE,
			R2:         records[i].Metrics.R2,
		}
	}

	return nil, output, nil
}
