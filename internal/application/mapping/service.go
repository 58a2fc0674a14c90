// Package mapping consumes the external geospatial collaborator for venue
// compactness scoring and spatial alignment.  All computation happens in the
// collaborator; this layer validates and classifies its answers.
package mapping

import (
	"context"
	"encoding/json"

	"github.com/turtacn/LitiDocket/pkg/errors"
	"github.com/turtacn/LitiDocket/pkg/types/common"
)

// CompactnessMetric names one of the supported compactness measures.
type CompactnessMetric string

const (
	MetricPolsbyPopper    CompactnessMetric = "polsby_popper"
	MetricReock           CompactnessMetric = "reock"
	MetricConvexHullRatio CompactnessMetric = "convex_hull_ratio"
)

// CompactnessResult carries the collaborator's compactness scores.  Every
// score is a ratio in [0, 1].
type CompactnessResult struct {
	PolsbyPopper    float64         `json:"polsby_popper"`
	Reock           float64         `json:"reock"`
	ConvexHullRatio float64         `json:"convex_hull_ratio"`
	Metadata        common.Metadata `json:"metadata,omitempty"`
}

// CrosswalkEntry maps one source feature onto a target feature through a
// shared grid cell, weighted by overlap.
type CrosswalkEntry struct {
	SourceID string  `json:"source_id"`
	TargetID string  `json:"target_id"`
	CellID   string  `json:"cell_id"`
	Weight   float64 `json:"weight"`
}

// AlignmentResult is the collaborator's answer to an alignment request.
type AlignmentResult struct {
	Crosswalk      []CrosswalkEntry   `json:"crosswalk"`
	QualityMetrics map[string]float64 `json:"quality_metrics,omitempty"`
}

// CompactnessRequest describes one compactness calculation.
type CompactnessRequest struct {
	Geometry json.RawMessage     `json:"geometry"`
	Metrics  []CompactnessMetric `json:"metrics,omitempty"`
}

// AlignmentRequest describes one spatial alignment between two layers.
type AlignmentRequest struct {
	Source       json.RawMessage `json:"source"`
	Target       json.RawMessage `json:"target"`
	Resolution   int             `json:"resolution"`
	IDProperties []string        `json:"id_properties,omitempty"`
}

// Port is implemented by the HTTP client in the infrastructure layer.
type Port interface {
	CalculateCompactness(ctx context.Context, req *CompactnessRequest) (*CompactnessResult, error)
	AlignSpatial(ctx context.Context, req *AlignmentRequest) (*AlignmentResult, error)
}

// Logger abstracts structured logging.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
}

// Service validates requests and answers from the mapping collaborator.
type Service interface {
	CalculateCompactness(ctx context.Context, req *CompactnessRequest) (*CompactnessResult, error)
	AlignSpatial(ctx context.Context, req *AlignmentRequest) (*AlignmentResult, error)
}

type service struct {
	port   Port
	logger Logger
}

// NewService wires the mapping service over the collaborator port.
func NewService(port Port, logger Logger) Service {
	return &service{port: port, logger: logger}
}

func (s *service) CalculateCompactness(ctx context.Context, req *CompactnessRequest) (*CompactnessResult, error) {
	if req == nil || len(req.Geometry) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "geometry must not be empty")
	}
	for _, m := range req.Metrics {
		switch m {
		case MetricPolsbyPopper, MetricReock, MetricConvexHullRatio:
		default:
			return nil, errors.Newf(errors.ErrCodeValidation, "unknown compactness metric %q", m)
		}
	}

	result, err := s.port.CalculateCompactness(ctx, req)
	if err != nil {
		// A transport failure is "unavailable", never an empty result.
		return nil, errors.Wrap(err, errors.ErrCodeMappingUnavailable,
			"compactness collaborator unreachable")
	}
	if err := validateCompactness(result); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) AlignSpatial(ctx context.Context, req *AlignmentRequest) (*AlignmentResult, error) {
	if req == nil || len(req.Source) == 0 || len(req.Target) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "source and target layers must not be empty")
	}
	if req.Resolution <= 0 {
		return nil, errors.New(errors.ErrCodeValidation, "resolution must be positive")
	}

	result, err := s.port.AlignSpatial(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeAlignmentFailed,
			"alignment collaborator unreachable")
	}
	if err := validateAlignment(result); err != nil {
		return nil, err
	}
	s.logger.Debug("spatial alignment completed",
		"entries", len(result.Crosswalk), "resolution", req.Resolution)
	return result, nil
}

// validateCompactness rejects scores outside [0, 1]: a ratio beyond its range
// means the collaborator answered garbage, not a borderline value.
func validateCompactness(r *CompactnessResult) error {
	if r == nil {
		return errors.New(errors.ErrCodeMappingResultInvalid, "collaborator returned no result")
	}
	for name, v := range map[string]float64{
		"polsby_popper":     r.PolsbyPopper,
		"reock":             r.Reock,
		"convex_hull_ratio": r.ConvexHullRatio,
	} {
		if v < 0 || v > 1 {
			return errors.Newf(errors.ErrCodeMappingResultInvalid,
				"%s score %g is outside [0, 1]", name, v)
		}
	}
	return nil
}

func validateAlignment(r *AlignmentResult) error {
	if r == nil {
		return errors.New(errors.ErrCodeMappingResultInvalid, "collaborator returned no result")
	}
	for _, entry := range r.Crosswalk {
		if entry.SourceID == "" || entry.TargetID == "" {
			return errors.New(errors.ErrCodeMappingResultInvalid,
				"crosswalk entry missing source or target id")
		}
		if entry.Weight < 0 || entry.Weight > 1 {
			return errors.Newf(errors.ErrCodeMappingResultInvalid,
				"crosswalk weight %g is outside [0, 1]", entry.Weight)
		}
	}
	return nil
}
