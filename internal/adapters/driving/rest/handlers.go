package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/preciar/internal/core/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, s.ports.Prediction.Health(c.Request.Context()))
}

func (s *Server) handlePredict(c *gin.Context) {
	var sample domain.Sample
	if err := c.ShouldBindJSON(&sample); err != nil {
		s.metrics.predictions.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	pred, err := s.ports.Prediction.Predict(c.Request.Context(), sample)
	if err != nil {
		status := statusFor(err)
		s.metrics.predictions.WithLabelValues(outcomeFor(status)).Inc()
		c.JSON(status, errorResponse{Error: err.Error()})
		return
	}

	s.metrics.predictions.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, pred)
}

func (s *Server) handleReload(c *gin.Context) {
	if err := s.ports.Prediction.Reload(c.Request.Context()); err != nil {
		c.JSON(statusFor(err), errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.ports.Prediction.Health(c.Request.Context()))
}

func (s *Server) handleIngest(c *gin.Context) {
	job, ok := s.runJob(c, domain.JobIngest)
	if !ok {
		return
	}
	if job.Ingest == nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "ingestion did not run"})
		return
	}
	c.JSON(statusForReason(job.Ingest.Status, job.Ingest.Reason), job.Ingest)
}

func (s *Server) handleTrain(c *gin.Context) {
	job, ok := s.runJob(c, domain.JobTrain)
	if !ok {
		return
	}
	if job.Train == nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "training did not run"})
		return
	}
	c.JSON(statusForReason(job.Train.Status, job.Train.Reason), job.Train)
}

// runJob runs a job on the request. The pipeline serialises it with
// background jobs. On failure the response is already written.
func (s *Server) runJob(c *gin.Context, kind domain.JobKind) (*domain.Job, bool) {
	if s.ports.Pipeline == nil {
		c.JSON(http.StatusNotImplemented, errorResponse{Error: "pipeline is not configured"})
		return nil, false
	}
	job, err := s.ports.Pipeline.Run(c.Request.Context(), kind)
	if err != nil {
		c.JSON(statusFor(err), errorResponse{Error: err.Error()})
		return nil, false
	}
	return job, true
}

func (s *Server) handleSubmit(c *gin.Context) {
	if s.ports.Dispatcher == nil {
		c.JSON(http.StatusNotImplemented, errorResponse{Error: "dispatcher is not configured"})
		return
	}

	kind := domain.JobKind(c.Param("kind"))
	job, err := s.ports.Dispatcher.Submit(kind)
	if err != nil {
		c.JSON(statusFor(err), errorResponse{Error: err.Error()})
		return
	}

	s.metrics.jobs.WithLabelValues(string(kind)).Inc()
	c.Header("Location", "/v1/jobs/"+job.ID)
	c.JSON(http.StatusAccepted, job)
}

func (s *Server) handleJob(c *gin.Context) {
	if s.ports.Dispatcher == nil {
		c.JSON(http.StatusNotImplemented, errorResponse{Error: "dispatcher is not configured"})
		return
	}

	job, err := s.ports.Dispatcher.Job(c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, job)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrPredictionOutOfRange):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrModelUnavailable),
		errors.Is(err, domain.ErrQueueFull),
		errors.Is(err, domain.ErrDispatcherStopped):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// statusForReason maps an entry point result to an HTTP status code.
func statusForReason(status domain.Status, reason domain.Reason) int {
	if status == domain.StatusOK {
		return http.StatusOK
	}
	switch reason {
	case domain.ReasonSourceUnavailable, domain.ReasonSourceNotFound:
		return http.StatusServiceUnavailable
	case domain.ReasonNoTrainingData:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func outcomeFor(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid"
	case http.StatusUnprocessableEntity:
		return "out_of_range"
	case http.StatusServiceUnavailable:
		return "unavailable"
	default:
		return "error"
	}
}
