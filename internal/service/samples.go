package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
	"go.uber.org/zap"

	"github.com/jask/mxdesk/internal/database/repository"
	"github.com/jask/mxdesk/internal/sample"
)

// SampleService receives the sample actions dispatched by the UI.
type SampleService struct {
	Samples *repository.SampleRepo
	Queue   *repository.QueueRepo
	Session *repository.SessionRepo
	Log     *zap.Logger
}

// AddSamplesToList registers recs in the tracking list and returns them
// with their assigned ids.
func (s *SampleService) AddSamplesToList(ctx context.Context, recs []sample.Record) ([]sample.Record, error) {
	if len(recs) == 0 {
		return nil, ErrNoSamples
	}
	for _, rec := range recs {
		if err := checkRecord(rec); err != nil {
			return nil, err
		}
	}
	out, err := s.Samples.Add(ctx, recs)
	if err != nil {
		return nil, fmt.Errorf("add samples: %w", err)
	}
	for _, rec := range out {
		s.logger().Info("sample added to list",
			zap.String("sample_id", rec.SampleID),
			zap.String("prefix", rec.DefaultPrefix))
	}
	return out, nil
}

// AddSampleAndMount marks a tracked sample as the one on the goniometer.
func (s *SampleService) AddSampleAndMount(ctx context.Context, rec sample.Record) error {
	if _, err := s.tracked(ctx, rec); err != nil {
		return err
	}
	if err := s.Session.Set(ctx, repository.KeyMountedSample, rec.SampleID); err != nil {
		return fmt.Errorf("mount %s: %w", rec.SampleID, err)
	}
	s.logger().Info("sample mounted", zap.String("sample_id", rec.SampleID), zap.String("prefix", rec.DefaultPrefix))
	return nil
}

// AddSamplesToQueue appends tracked samples to the data collection queue.
func (s *SampleService) AddSamplesToQueue(ctx context.Context, recs []sample.Record) error {
	if len(recs) == 0 {
		return ErrNoSamples
	}
	ids := make([]string, 0, len(recs))
	for _, rec := range recs {
		if _, err := s.tracked(ctx, rec); err != nil {
			return err
		}
		ids = append(ids, rec.SampleID)
	}
	if err := s.Queue.Append(ctx, ids...); err != nil {
		return fmt.Errorf("enqueue samples: %w", err)
	}
	s.logger().Info("samples queued", zap.Strings("sample_ids", ids))
	return nil
}

func (s *SampleService) List(ctx context.Context) ([]repository.Sample, error) {
	return s.Samples.List(ctx)
}

func (s *SampleService) QueueEntries(ctx context.Context) ([]repository.QueueEntry, error) {
	return s.Queue.List(ctx)
}

// Mounted returns the sample currently mounted, or nil.
func (s *SampleService) Mounted(ctx context.Context) (*repository.Sample, error) {
	id, ok, err := s.Session.Get(ctx, repository.KeyMountedSample)
	if err != nil || !ok {
		return nil, err
	}
	return s.Samples.Get(ctx, id)
}

// SimilarNames lists tracked sample names within maxDist edits of name,
// ignoring case. Exact matches are included.
func (s *SampleService) SimilarNames(ctx context.Context, name string, maxDist int) ([]string, error) {
	names, err := s.Samples.Names(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(name)
	var out []string
	for _, n := range names {
		if levenshtein.ComputeDistance(needle, strings.ToLower(n)) <= maxDist {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *SampleService) tracked(ctx context.Context, rec sample.Record) (*repository.Sample, error) {
	if rec.SampleID == "" {
		return nil, &Error{
			Err:   fmt.Errorf("%s: %w", rec.DefaultPrefix, ErrUnknownSample),
			UIMsg: fmt.Sprintf("Sample %s must be added to the list first", rec.DefaultPrefix),
		}
	}
	got, err := s.Samples.Get(ctx, rec.SampleID)
	if err != nil {
		return nil, fmt.Errorf("lookup sample %s: %w", rec.SampleID, err)
	}
	if got == nil {
		return nil, &Error{
			Err:   fmt.Errorf("%s: %w", rec.SampleID, ErrUnknownSample),
			UIMsg: fmt.Sprintf("Sample %s is not in the sample list", rec.DefaultPrefix),
		}
	}
	return got, nil
}

func checkRecord(rec sample.Record) error {
	switch {
	case rec.SampleName == "" || rec.ProteinAcronym == "":
		return fmt.Errorf("%w: missing name or acronym", ErrInvalidRecord)
	case rec.DefaultPrefix != sample.DefaultPrefix(rec.ProteinAcronym, rec.SampleName):
		return fmt.Errorf("%w: prefix %q does not match %s-%s", ErrInvalidRecord, rec.DefaultPrefix, rec.ProteinAcronym, rec.SampleName)
	case rec.Type == "" || rec.Location == "":
		return fmt.Errorf("%w: missing type or location", ErrInvalidRecord)
	}
	return nil
}

func (s *SampleService) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}
