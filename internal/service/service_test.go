package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jask/mxdesk/internal/database"
	"github.com/jask/mxdesk/internal/database/repository"
	"github.com/jask/mxdesk/internal/sample"
)

type fixture struct {
	proposals   *ProposalService
	samples     *SampleService
	maintenance *MaintenanceService
}

func newFixture(t *testing.T) (context.Context, fixture) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	db, err := database.OpenMigrated(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.SeedDefaults(ctx, db))

	session := repository.NewSessionRepo(db)
	return ctx, fixture{
		proposals: &ProposalService{
			Proposals: repository.NewProposalRepo(db),
			Session:   session,
			Log:       zap.NewNop(),
		},
		samples: &SampleService{
			Samples: repository.NewSampleRepo(db),
			Queue:   repository.NewQueueRepo(db),
			Session: session,
			Log:     zap.NewNop(),
		},
		maintenance: &MaintenanceService{DB: db},
	}
}

func TestProposalSelect(t *testing.T) {
	ctx, f := newFixture(t)

	_, ok, err := f.proposals.Selected(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	p, err := f.proposals.Select(ctx, "mx2415")
	require.NoError(t, err)
	require.Equal(t, "Lysozyme soaking series", p.Title)

	got, ok, err := f.proposals.Selected(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "mx2415", got.DisplayID())
}

func TestProposalSelectUnknownIsNotAuthorized(t *testing.T) {
	ctx, f := newFixture(t)

	_, err := f.proposals.Select(ctx, "mx9999")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrNotAuthorized))
	require.Equal(t, "You are not authorized for proposal mx9999", UserMessage(err))
}

func TestMountFlow(t *testing.T) {
	ctx, f := newFixture(t)
	rec := sample.NewRecord(sample.Params{SampleName: "S1", ProteinAcronym: "LYS"})

	added, err := f.samples.AddSamplesToList(ctx, []sample.Record{rec})
	require.NoError(t, err)
	require.Len(t, added, 1)
	require.NotEmpty(t, added[0].SampleID)

	require.NoError(t, f.samples.AddSampleAndMount(ctx, added[0]))

	mounted, err := f.samples.Mounted(ctx)
	require.NoError(t, err)
	require.NotNil(t, mounted)
	require.Equal(t, "LYS-S1", mounted.DefaultPrefix)

	q, err := f.samples.QueueEntries(ctx)
	require.NoError(t, err)
	require.Empty(t, q)
}

func TestQueueFlow(t *testing.T) {
	ctx, f := newFixture(t)
	added, err := f.samples.AddSamplesToList(ctx, []sample.Record{
		sample.NewRecord(sample.Params{SampleName: "S1", ProteinAcronym: "LYS"}),
		sample.NewRecord(sample.Params{SampleName: "S2", ProteinAcronym: "LYS"}),
	})
	require.NoError(t, err)
	require.NoError(t, f.samples.AddSamplesToQueue(ctx, added))

	q, err := f.samples.QueueEntries(ctx)
	require.NoError(t, err)
	require.Len(t, q, 2)
	require.Equal(t, "S1", q[0].Sample.SampleName)
	require.Equal(t, "S2", q[1].Sample.SampleName)

	mounted, err := f.samples.Mounted(ctx)
	require.NoError(t, err)
	require.Nil(t, mounted)
}

func TestMountRequiresTrackedSample(t *testing.T) {
	ctx, f := newFixture(t)
	rec := sample.NewRecord(sample.Params{SampleName: "S1", ProteinAcronym: "LYS"})

	err := f.samples.AddSampleAndMount(ctx, rec)
	require.ErrorIs(t, err, ErrUnknownSample)
	require.Contains(t, UserMessage(err), "LYS-S1")

	rec.SampleID = "not-there"
	err = f.samples.AddSamplesToQueue(ctx, []sample.Record{rec})
	require.ErrorIs(t, err, ErrUnknownSample)
}

func TestAddSamplesToListRejectsBadRecords(t *testing.T) {
	ctx, f := newFixture(t)

	_, err := f.samples.AddSamplesToList(ctx, nil)
	require.ErrorIs(t, err, ErrNoSamples)

	rec := sample.NewRecord(sample.Params{SampleName: "S1", ProteinAcronym: "LYS"})
	rec.DefaultPrefix = "other"
	_, err = f.samples.AddSamplesToList(ctx, []sample.Record{rec})
	require.ErrorIs(t, err, ErrInvalidRecord)

	list, err := f.samples.List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestSimilarNames(t *testing.T) {
	ctx, f := newFixture(t)
	_, err := f.samples.AddSamplesToList(ctx, []sample.Record{
		sample.NewRecord(sample.Params{SampleName: "crystal1", ProteinAcronym: "LYS"}),
		sample.NewRecord(sample.Params{SampleName: "thau_a", ProteinAcronym: "THAU"}),
	})
	require.NoError(t, err)

	got, err := f.samples.SimilarNames(ctx, "Crystal2", 1)
	require.NoError(t, err)
	require.Equal(t, []string{"crystal1"}, got)

	got, err = f.samples.SimilarNames(ctx, "unrelated", 1)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestMaintenanceResetKeepsProposals(t *testing.T) {
	ctx, f := newFixture(t)
	added, err := f.samples.AddSamplesToList(ctx, []sample.Record{
		sample.NewRecord(sample.Params{SampleName: "S1", ProteinAcronym: "LYS"}),
	})
	require.NoError(t, err)
	require.NoError(t, f.samples.AddSamplesToQueue(ctx, added))
	_, err = f.proposals.Select(ctx, "mx2415")
	require.NoError(t, err)

	require.NoError(t, f.maintenance.Reset(ctx))

	list, err := f.samples.List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)
	_, ok, err := f.proposals.Selected(ctx)
	require.NoError(t, err)
	require.False(t, ok)
	props, err := f.proposals.List(ctx)
	require.NoError(t, err)
	require.Len(t, props, 3)
}

func TestUserMessageFallsBack(t *testing.T) {
	require.Equal(t, "", UserMessage(nil))
	require.Equal(t, "plain", UserMessage(errors.New("plain")))
	wrapped := &Error{Err: errors.New("internal"), UIMsg: "shown"}
	require.Equal(t, "shown", UserMessage(errors.Join(errors.New("ctx"), wrapped)))
}
