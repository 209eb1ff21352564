// Package rest exposes prediction serving and pipeline triggers over HTTP
// using gin, with Prometheus metrics on /metrics.
//
// Routes:
//
//	GET  /v1/health
//	POST /v1/predict
//	POST /v1/reload
//	POST /v1/ingest
//	POST /v1/train
//	POST /v1/pipeline/ingest-train
//	GET  /v1/jobs/:id
//	GET  /metrics
package rest
