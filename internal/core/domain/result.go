package domain

// Status is the outcome of a pipeline entry point.
type Status string

// Result statuses.
const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// Reason classifies why an entry point ended the way it did.
type Reason string

// Result reasons.
const (
	ReasonNone              Reason = ""
	ReasonUpToDate          Reason = "up_to_date"
	ReasonSourceUnavailable Reason = "source_unavailable"
	ReasonSourceNotFound    Reason = "source_not_found"
	ReasonStorageFailure    Reason = "storage_failure"
	ReasonNoTrainingData    Reason = "no_training_data"
	ReasonTrainingFailure   Reason = "training_failure"
	ReasonArtifactFailure   Reason = "artifact_failure"
)

// IngestResult is returned by the ingestion entry point.
type IngestResult struct {
	Status        Status `json:"status"`
	Message       string `json:"message"`
	ProcessedFile string `json:"processed_file,omitempty"`
	Reason        Reason `json:"reason,omitempty"`

	// Updated is true when the raw table and columnar snapshot were rebuilt.
	Updated bool `json:"updated"`
}

// OK reports whether ingestion succeeded.
func (r IngestResult) OK() bool {
	return r.Status == StatusOK
}

// TrainResult is returned by the training entry point.
type TrainResult struct {
	Status     Status   `json:"status"`
	Message    string   `json:"message"`
	MetricsRF  *Metrics `json:"metrics_rf,omitempty"`
	MetricsGB  *Metrics `json:"metrics_gb,omitempty"`
	Reason     Reason   `json:"reason,omitempty"`
	Experiment string   `json:"experiment,omitempty"`
}

// OK reports whether training succeeded.
func (r TrainResult) OK() bool {
	return r.Status == StatusOK
}
