package discrepancy

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "cauldron-reconciler/internal/common/errors"
	"cauldron-reconciler/internal/common/logger"
	"cauldron-reconciler/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeSource struct {
	tickets []models.Ticket
	err     error
	calls   int
}

func (f *fakeSource) FetchTickets(_ context.Context) ([]models.Ticket, error) {
	f.calls++
	return f.tickets, f.err
}

func exampleTickets() []models.Ticket {
	return []models.Ticket{
		{CauldronID: "c1", Date: "2025-11-01", AmountCollected: 60},
		{CauldronID: "c1", Date: "2025-11-01", AmountCollected: 42},
	}
}

func newTestService(t *testing.T, source TicketSource) *Service {
	return NewService(DefaultConfig(), source, logger.NewTestLogger(t), nil)
}

func ptr(v float64) *float64 { return &v }

// ==========================
// Core Functionality Tests
// ==========================

func TestEvaluate_WorkedExamples(t *testing.T) {
	tests := []struct {
		name string
		req  models.ReconciliationRequest
		want *models.ReconciliationResult
	}{
		{
			name: "matched tickets within bounds",
			req:  models.NewReconciliationRequest("c1", "2025-11-01", 100),
			want: &models.ReconciliationResult{
				CauldronID:        "c1",
				Date:              "2025-11-01",
				DrainVolume:       100,
				TotalTicketVolume: 102,
				Difference:        2,
				RelativeDiff:      0.02,
				Status:            models.StatusOK,
				NumTickets:        2,
			},
		},
		{
			name: "no tickets for cauldron",
			req:  models.NewReconciliationRequest("c2", "2025-11-01", 100),
			want: &models.ReconciliationResult{
				CauldronID:        "c2",
				Date:              "2025-11-01",
				DrainVolume:       100,
				TotalTicketVolume: 0,
				Difference:        100,
				RelativeDiff:      1.0,
				Status:            models.StatusMissingTicket,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, &fakeSource{tickets: exampleTickets()})

			got, err := svc.Evaluate(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate_Classification(t *testing.T) {
	tests := []struct {
		name      string
		amounts   []float64
		drain     float64
		tolerance float64
		threshold float64
		status    models.DiscrepancyStatus
	}{
		{"relative over tolerance but absolute under threshold", []float64{22}, 20, 0.05, 5, models.StatusOK},
		{"absolute over threshold but relative under tolerance", []float64{1040}, 1000, 0.05, 5, models.StatusOK},
		{"exactly at tolerance", []float64{105}, 100, 0.05, 0, models.StatusOK},
		{"exactly at threshold", []float64{110}, 100, 0, 10, models.StatusOK},
		{"over reported", []float64{80, 50}, 100, 0.05, 5, models.StatusOverReported},
		{"under reported", []float64{30, 20}, 100, 0.05, 5, models.StatusUnderReported},
		{"negative bounds never ok", []float64{100}, 100, -1, -1, models.StatusUnderReported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tickets []models.Ticket
			for _, a := range tt.amounts {
				tickets = append(tickets, models.Ticket{CauldronID: "c1", Date: "2025-11-01", AmountCollected: a})
			}
			svc := newTestService(t, &fakeSource{tickets: tickets})

			req := models.ReconciliationRequest{
				CauldronID:  "c1",
				Date:        "2025-11-01",
				DrainVolume: tt.drain,
				Tolerance:   tt.tolerance,
				Threshold:   tt.threshold,
			}
			got, err := svc.Evaluate(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, len(tt.amounts), got.NumTickets)
		})
	}
}

func TestEvaluate_DifferenceInvariant(t *testing.T) {
	tickets := []models.Ticket{
		{CauldronID: "c1", Date: "2025-11-01", AmountCollected: 0.1},
		{CauldronID: "c1", Date: "2025-11-01", AmountCollected: 0.2},
		{CauldronID: "c1", Date: "2025-11-02", AmountCollected: 1000},
		{CauldronID: "c9", Date: "2025-11-01", AmountCollected: 1000},
	}
	svc := newTestService(t, &fakeSource{tickets: tickets})

	got, err := svc.Evaluate(context.Background(), models.NewReconciliationRequest("c1", "2025-11-01", 0.5))
	require.NoError(t, err)

	assert.Equal(t, 0.3, got.TotalTicketVolume)
	assert.Equal(t, math.Abs(got.TotalTicketVolume-got.DrainVolume), got.Difference)
	assert.Equal(t, got.Difference/got.DrainVolume, got.RelativeDiff)
	assert.Equal(t, 2, got.NumTickets)
}

func TestEvaluate_DifferenceMatchesReportedFields(t *testing.T) {
	tests := []struct {
		name    string
		amounts []float64
		drain   float64
	}{
		{"single ticket", []float64{0.3}, 0.1},
		{"summed tickets", []float64{0.1, 0.2, 0.7}, 0.45},
		{"under reported", []float64{12.34}, 56.78},
		{"large volumes", []float64{1e15, 0.1}, 3.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tickets []models.Ticket
			for _, a := range tt.amounts {
				tickets = append(tickets, models.Ticket{CauldronID: "c1", Date: "2025-11-01", AmountCollected: a})
			}
			svc := newTestService(t, &fakeSource{tickets: tickets})

			got, err := svc.Evaluate(context.Background(), models.NewReconciliationRequest("c1", "2025-11-01", tt.drain))
			require.NoError(t, err)
			assert.Equal(t, math.Abs(got.TotalTicketVolume-got.DrainVolume), got.Difference)
			assert.Equal(t, got.Difference/got.DrainVolume, got.RelativeDiff)
		})
	}
}

func TestEvaluate_RelativeDiffFloor(t *testing.T) {
	tests := []struct {
		name  string
		drain float64
	}{
		{"zero drain", 0},
		{"negative drain", -10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tickets := []models.Ticket{{CauldronID: "c1", Date: "2025-11-01", AmountCollected: 50}}
			svc := newTestService(t, &fakeSource{tickets: tickets})

			got, err := svc.Evaluate(context.Background(), models.NewReconciliationRequest("c1", "2025-11-01", tt.drain))
			require.NoError(t, err)
			assert.InDelta(t, got.Difference/minDrainVolume, got.RelativeDiff, 1e-3)
			assert.Equal(t, models.StatusOverReported, got.Status)
		})
	}
}

func TestEvaluate_MissingTicketKeepsDrainVolume(t *testing.T) {
	svc := newTestService(t, &fakeSource{tickets: exampleTickets()})

	got, err := svc.Evaluate(context.Background(), models.NewReconciliationRequest("c1", "2025-11-02", -3.5))
	require.NoError(t, err)
	assert.Equal(t, models.StatusMissingTicket, got.Status)
	assert.Equal(t, -3.5, got.Difference)
	assert.Equal(t, 1.0, got.RelativeDiff)
	assert.Zero(t, got.NumTickets)
}

func TestEvaluate_NormalizesRequestDate(t *testing.T) {
	svc := newTestService(t, &fakeSource{tickets: exampleTickets()})

	for _, date := range []string{"2025-11-01T18:30:00", "2025-11-01 06:00:00", "11/01/2025"} {
		got, err := svc.Evaluate(context.Background(), models.NewReconciliationRequest("c1", date, 100))
		require.NoError(t, err, date)
		assert.Equal(t, "2025-11-01", got.Date)
		assert.Equal(t, 2, got.NumTickets)
	}
}

// ==========================
// Error Handling Tests
// ==========================

func TestEvaluate_InvalidDateSkipsFetch(t *testing.T) {
	source := &fakeSource{tickets: exampleTickets()}
	svc := newTestService(t, source)

	_, err := svc.Evaluate(context.Background(), models.NewReconciliationRequest("c1", "not a date", 100))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidDate))
	assert.Zero(t, source.calls)
}

func TestEvaluate_SourceErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code apperrors.ErrorCode
	}{
		{"structured error passes through", apperrors.NewEmptyDatasetError(), apperrors.ErrCodeEmptyDataset},
		{"plain error becomes fetch failure", errors.New("connection refused"), apperrors.ErrCodeFetchFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, &fakeSource{err: tt.err})

			got, err := svc.Evaluate(context.Background(), models.NewReconciliationRequest("c1", "2025-11-01", 100))
			assert.Nil(t, got)
			assert.True(t, apperrors.HasCode(err, tt.code))
		})
	}
}

func TestEvaluate_FetchesEveryCall(t *testing.T) {
	source := &fakeSource{tickets: exampleTickets()}
	svc := newTestService(t, source)

	for i := 0; i < 3; i++ {
		_, err := svc.Evaluate(context.Background(), models.NewReconciliationRequest("c1", "2025-11-01", 100))
		require.NoError(t, err)
	}
	assert.Equal(t, 3, source.calls)
}

func TestNewRequest_AppliesDefaults(t *testing.T) {
	svc := NewService(&Config{DefaultTolerance: 0.1, DefaultThreshold: 2}, &fakeSource{}, logger.NewNoOpLogger(), nil)

	req := svc.NewRequest("c1", "2025-11-01", 10, nil, ptr(0))
	assert.Equal(t, 0.1, req.Tolerance)
	assert.Equal(t, 0.0, req.Threshold)
}
