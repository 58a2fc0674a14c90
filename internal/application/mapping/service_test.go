package mapping

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/LitiDocket/pkg/errors"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}

type stubPort struct {
	compactness *CompactnessResult
	alignment   *AlignmentResult
	err         error
}

func (p *stubPort) CalculateCompactness(_ context.Context, _ *CompactnessRequest) (*CompactnessResult, error) {
	return p.compactness, p.err
}

func (p *stubPort) AlignSpatial(_ context.Context, _ *AlignmentRequest) (*AlignmentResult, error) {
	return p.alignment, p.err
}

func geometry() json.RawMessage {
	return json.RawMessage(`{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}`)
}

func TestCalculateCompactness_Success(t *testing.T) {
	port := &stubPort{compactness: &CompactnessResult{
		PolsbyPopper: 0.42, Reock: 0.38, ConvexHullRatio: 0.91,
	}}
	svc := NewService(port, nopLogger{})

	got, err := svc.CalculateCompactness(context.Background(), &CompactnessRequest{
		Geometry: geometry(),
		Metrics:  []CompactnessMetric{MetricPolsbyPopper, MetricReock},
	})
	require.NoError(t, err)
	assert.Equal(t, 0.42, got.PolsbyPopper)
}

func TestCalculateCompactness_ValidatesRequest(t *testing.T) {
	svc := NewService(&stubPort{}, nopLogger{})

	_, err := svc.CalculateCompactness(context.Background(), nil)
	assert.True(t, errors.IsValidation(err))

	_, err = svc.CalculateCompactness(context.Background(), &CompactnessRequest{
		Geometry: geometry(),
		Metrics:  []CompactnessMetric{"schwartzberg"},
	})
	assert.True(t, errors.IsValidation(err))
}

func TestCalculateCompactness_TransportFailureIsUnavailable(t *testing.T) {
	svc := NewService(&stubPort{err: assert.AnError}, nopLogger{})

	_, err := svc.CalculateCompactness(context.Background(), &CompactnessRequest{Geometry: geometry()})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMappingUnavailable),
		"unreachable collaborator is never an empty result")
}

func TestCalculateCompactness_OutOfRangeScoreRejected(t *testing.T) {
	svc := NewService(&stubPort{compactness: &CompactnessResult{Reock: 1.3}}, nopLogger{})

	_, err := svc.CalculateCompactness(context.Background(), &CompactnessRequest{Geometry: geometry()})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMappingResultInvalid))
}

func TestAlignSpatial_Success(t *testing.T) {
	port := &stubPort{alignment: &AlignmentResult{
		Crosswalk: []CrosswalkEntry{
			{SourceID: "s1", TargetID: "t1", CellID: "c1", Weight: 0.7},
			{SourceID: "s1", TargetID: "t2", CellID: "c2", Weight: 0.3},
		},
		QualityMetrics: map[string]float64{"coverage": 0.98},
	}}
	svc := NewService(port, nopLogger{})

	got, err := svc.AlignSpatial(context.Background(), &AlignmentRequest{
		Source: geometry(), Target: geometry(), Resolution: 9,
	})
	require.NoError(t, err)
	assert.Len(t, got.Crosswalk, 2)
}

func TestAlignSpatial_ValidatesRequest(t *testing.T) {
	svc := NewService(&stubPort{}, nopLogger{})

	_, err := svc.AlignSpatial(context.Background(), &AlignmentRequest{
		Source: geometry(), Target: geometry(), Resolution: 0,
	})
	assert.True(t, errors.IsValidation(err))

	_, err = svc.AlignSpatial(context.Background(), &AlignmentRequest{Resolution: 9})
	assert.True(t, errors.IsValidation(err))
}

func TestAlignSpatial_InvalidCrosswalkRejected(t *testing.T) {
	port := &stubPort{alignment: &AlignmentResult{
		Crosswalk: []CrosswalkEntry{{SourceID: "s1", TargetID: "", Weight: 0.5}},
	}}
	svc := NewService(port, nopLogger{})

	_, err := svc.AlignSpatial(context.Background(), &AlignmentRequest{
		Source: geometry(), Target: geometry(), Resolution: 9,
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMappingResultInvalid))
}
