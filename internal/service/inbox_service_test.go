package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/stock-scout/internal/models"
	"github.com/yourusername/stock-scout/internal/repository"
)

type recordingNotifier struct {
	memoCalls int
	scanCalls int
	err       error
}

func (n *recordingNotifier) NotifyMemoCreated(ctx context.Context, memo *models.InvestmentMemo) error {
	n.memoCalls++
	return n.err
}

func (n *recordingNotifier) NotifyScanCompleted(ctx context.Context, summary models.ScanSummary) error {
	n.scanCalls++
	return n.err
}

func pendingMemo() *models.InvestmentMemo {
	now := time.Now().UTC()
	return &models.InvestmentMemo{
		ID:           uuid.New(),
		Ticker:       "AAPL",
		Analyst:      "michael_burry",
		Signal:       models.SignalBullish,
		Conviction:   85,
		Thesis:       "Deep value with a hard catalyst",
		BullCase:     []string{"FCF yield above 12%"},
		BearCase:     []string{"Cyclical revenue"},
		CurrentPrice: 100,
		TargetPrice:  130,
		TimeHorizon:  models.HorizonMedium,
		Status:       models.MemoStatusPending,
		GeneratedAt:  now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func newInboxFixture(notifier *recordingNotifier) (*InboxService, *MockMemoRepository, *MockInvestmentRepository, *MockAnalystStatsRepository) {
	memos := new(MockMemoRepository)
	investments := new(MockInvestmentRepository)
	stats := new(MockAnalystStatsRepository)
	repos := &repository.Repositories{
		Memo:         memos,
		Investment:   investments,
		AnalystStats: stats,
	}
	svc := NewInboxService(fakeTx{}, repos, notifier, testLogger())
	return svc, memos, investments, stats
}

func TestCreateMemoHappyPath(t *testing.T) {
	notifier := &recordingNotifier{}
	svc, memos, _, stats := newInboxFixture(notifier)
	memo := pendingMemo()

	memos.On("Create", mock.Anything, memo).Return(nil)
	stats.On("IncrementTotalMemos", mock.Anything, memo.Analyst).Return(nil)

	err := svc.CreateMemo(context.Background(), memo)

	require.NoError(t, err)
	assert.Equal(t, 1, notifier.memoCalls)
	memos.AssertExpectations(t)
	stats.AssertExpectations(t)
}

func TestCreateMemoNotifyFailureIsNotReturned(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("webhook down")}
	svc, memos, _, stats := newInboxFixture(notifier)
	memo := pendingMemo()

	memos.On("Create", mock.Anything, memo).Return(nil)
	stats.On("IncrementTotalMemos", mock.Anything, memo.Analyst).Return(nil)

	err := svc.CreateMemo(context.Background(), memo)

	assert.NoError(t, err)
	assert.Equal(t, 1, notifier.memoCalls)
}

func TestCreateMemoRejectsInvalidMemo(t *testing.T) {
	svc, memos, _, _ := newInboxFixture(&recordingNotifier{})

	memo := pendingMemo()
	memo.Signal = models.SignalNeutral // inbox only accepts actionable memos

	err := svc.CreateMemo(context.Background(), memo)

	assert.Error(t, err)
	memos.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestApproveOpensInvestmentAtMemoPrice(t *testing.T) {
	svc, memos, investments, stats := newInboxFixture(&recordingNotifier{})
	memo := pendingMemo()

	memos.On("GetForUpdate", mock.Anything, memo.ID).Return(memo, nil)
	memos.On("MarkReviewed", mock.Anything, memo.ID, models.MemoStatusApproved, mock.AnythingOfType("time.Time")).Return(nil)
	investments.On("Create", mock.Anything, mock.AnythingOfType("*models.Investment")).Return(nil)
	stats.On("IncrementApproved", mock.Anything, memo.Analyst).Return(nil)

	inv, err := svc.Approve(context.Background(), memo.ID, nil)

	require.NoError(t, err)
	require.NotNil(t, inv)
	assert.Equal(t, memo.ID, inv.MemoID)
	assert.Equal(t, memo.Ticker, inv.Ticker)
	assert.Equal(t, memo.Signal, inv.Signal)
	assert.Equal(t, memo.CurrentPrice, inv.EntryPrice)
	assert.Equal(t, models.InvestmentStatusActive, inv.Status)
	memos.AssertExpectations(t)
	investments.AssertExpectations(t)
	stats.AssertExpectations(t)
}

func TestApproveHonorsEntryPriceOverride(t *testing.T) {
	svc, memos, investments, stats := newInboxFixture(&recordingNotifier{})
	memo := pendingMemo()
	override := 95.5

	memos.On("GetForUpdate", mock.Anything, memo.ID).Return(memo, nil)
	memos.On("MarkReviewed", mock.Anything, memo.ID, models.MemoStatusApproved, mock.AnythingOfType("time.Time")).Return(nil)
	investments.On("Create", mock.Anything, mock.AnythingOfType("*models.Investment")).Return(nil)
	stats.On("IncrementApproved", mock.Anything, memo.Analyst).Return(nil)

	inv, err := svc.Approve(context.Background(), memo.ID, &override)

	require.NoError(t, err)
	assert.Equal(t, override, inv.EntryPrice)
}

func TestApproveRejectsNonPositiveOverride(t *testing.T) {
	svc, memos, investments, _ := newInboxFixture(&recordingNotifier{})
	memo := pendingMemo()
	override := -1.0

	memos.On("GetForUpdate", mock.Anything, memo.ID).Return(memo, nil)
	memos.On("MarkReviewed", mock.Anything, memo.ID, models.MemoStatusApproved, mock.AnythingOfType("time.Time")).Return(nil)

	inv, err := svc.Approve(context.Background(), memo.ID, &override)

	assert.Error(t, err)
	assert.Nil(t, inv)
	investments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestApproveAlreadyReviewedMemo(t *testing.T) {
	svc, memos, investments, _ := newInboxFixture(&recordingNotifier{})
	memo := pendingMemo()
	reviewedAt := time.Now().UTC()
	memo.Status = models.MemoStatusApproved
	memo.ReviewedAt = &reviewedAt

	memos.On("GetForUpdate", mock.Anything, memo.ID).Return(memo, nil)

	inv, err := svc.Approve(context.Background(), memo.ID, nil)

	assert.Nil(t, inv)
	assert.ErrorIs(t, err, models.ErrInvalidStateTransition)
	investments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	memos.AssertNotCalled(t, "MarkReviewed", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestApproveUnknownMemo(t *testing.T) {
	svc, memos, _, _ := newInboxFixture(&recordingNotifier{})
	id := uuid.New()

	memos.On("GetForUpdate", mock.Anything, id).Return(nil, models.ErrNotFound)

	inv, err := svc.Approve(context.Background(), id, nil)

	assert.Nil(t, inv)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRejectPendingMemo(t *testing.T) {
	svc, memos, investments, stats := newInboxFixture(&recordingNotifier{})
	memo := pendingMemo()

	memos.On("GetForUpdate", mock.Anything, memo.ID).Return(memo, nil)
	memos.On("MarkReviewed", mock.Anything, memo.ID, models.MemoStatusRejected, mock.AnythingOfType("time.Time")).Return(nil)

	err := svc.Reject(context.Background(), memo.ID)

	require.NoError(t, err)
	investments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	stats.AssertNotCalled(t, "IncrementApproved", mock.Anything, mock.Anything)
	memos.AssertExpectations(t)
}

func TestRejectAlreadyReviewedMemo(t *testing.T) {
	svc, memos, _, _ := newInboxFixture(&recordingNotifier{})
	memo := pendingMemo()
	reviewedAt := time.Now().UTC()
	memo.Status = models.MemoStatusRejected
	memo.ReviewedAt = &reviewedAt

	memos.On("GetForUpdate", mock.Anything, memo.ID).Return(memo, nil)

	err := svc.Reject(context.Background(), memo.ID)

	assert.ErrorIs(t, err, models.ErrInvalidStateTransition)
}

func TestListPendingForcesStatusFilter(t *testing.T) {
	svc, memos, _, _ := newInboxFixture(&recordingNotifier{})

	expected := repository.MemoFilter{Status: models.MemoStatusPending, Analyst: "bill_ackman"}
	memos.On("List", mock.Anything, expected, 1, 20).Return([]*models.InvestmentMemo{}, 0, nil)

	_, _, err := svc.ListPending(context.Background(), repository.MemoFilter{Status: models.MemoStatusApproved, Analyst: "bill_ackman"}, 0, 0)

	require.NoError(t, err)
	memos.AssertExpectations(t)
}

func TestClampPage(t *testing.T) {
	tests := []struct {
		name         string
		page         int
		pageSize     int
		wantPage     int
		wantPageSize int
	}{
		{"zero values take defaults", 0, 0, 1, 20},
		{"negative page floors at one", -3, 50, 1, 50},
		{"oversized page size is capped", 2, 500, 2, 100},
		{"valid values pass through", 3, 25, 3, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, pageSize := clampPage(tt.page, tt.pageSize)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantPageSize, pageSize)
		})
	}
}
