package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zetarewards/recognition-api/internal/apperr"
	"github.com/zetarewards/recognition-api/internal/authz"
	"github.com/zetarewards/recognition-api/internal/mattermost"
	"github.com/zetarewards/recognition-api/internal/models"
	"github.com/zetarewards/recognition-api/internal/notify"
	"github.com/zetarewards/recognition-api/internal/repository"
	"github.com/zetarewards/recognition-api/pkg/logger"
	"github.com/zetarewards/recognition-api/test/testdb"
)

type recordedAudit struct {
	actorID uint
	action  string
}

type mockAuditor struct {
	mu      sync.Mutex
	entries []recordedAudit
}

func (m *mockAuditor) Record(_ context.Context, actorID uint, _, action, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, recordedAudit{actorID: actorID, action: action})
}

type mockAnnouncer struct {
	mu           sync.Mutex
	recognitions []mattermost.Recognition
}

func (m *mockAnnouncer) AnnounceRecognition(_ context.Context, r mattermost.Recognition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recognitions = append(m.recognitions, r)
	return nil
}

type mockBroadcaster struct {
	messages []notify.Message
}

func (m *mockBroadcaster) Broadcast(msg notify.Message) {
	m.messages = append(m.messages, msg)
}

type mockInvalidator struct {
	calls int
}

func (m *mockInvalidator) Invalidate(_ context.Context) {
	m.calls++
}

type fixture struct {
	svc         *Service
	db          *repository.DB
	audit       *mockAuditor
	announcer   *mockAnnouncer
	push        *mockBroadcaster
	leaderboard *mockInvalidator

	admin    authz.Identity
	manager  authz.Identity
	employee authz.Identity
	outsider authz.Identity
}

func setupTestService(t *testing.T) *fixture {
	t.Helper()

	db := testdb.New(t)

	f := &fixture{
		db:          db,
		audit:       &mockAuditor{},
		announcer:   &mockAnnouncer{},
		push:        &mockBroadcaster{},
		leaderboard: &mockInvalidator{},
	}

	admin := testdb.CreateUser(t, db, "admin", models.RoleAdmin, nil)
	manager := testdb.CreateUser(t, db, "manager", models.RoleManager, nil)
	otherManager := testdb.CreateUser(t, db, "other", models.RoleManager, nil)
	employee := testdb.CreateUser(t, db, "eve", models.RoleEmployee, &manager.ID)
	outsider := testdb.CreateUser(t, db, "olly", models.RoleEmployee, &otherManager.ID)

	f.admin = authz.Identity{ID: admin.ID, Role: admin.Role}
	f.manager = authz.Identity{ID: manager.ID, Role: manager.Role}
	f.employee = authz.Identity{ID: employee.ID, Role: employee.Role}
	f.outsider = authz.Identity{ID: outsider.ID, Role: outsider.Role}

	f.svc = NewService(
		db,
		repository.NewLedgerRepository(db),
		repository.NewUserRepository(db),
		repository.NewCatalogRepository(db),
		repository.NewPostRepository(db),
		repository.NewNotificationRepository(db),
		Hooks{Audit: f.audit, Announcer: f.announcer, Push: f.push, Leaderboard: f.leaderboard},
		logger.Nop(),
	)
	t.Cleanup(f.svc.Wait)

	return f
}

func createReward(t *testing.T, db *repository.DB, title string, points int64) *models.Reward {
	t.Helper()
	reward := &models.Reward{Title: title, PointsRequired: points}
	require.NoError(t, db.Create(reward).Error)
	return reward
}

// fundManager tops up the admin budget and allocates points to the manager.
func (f *fixture) fundManager(t *testing.T, budget, allocation int64) {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.TopUpBudget(ctx, f.admin, budget, nil)
	require.NoError(t, err)
	_, err = f.svc.Allocate(ctx, f.admin, f.manager.ID, allocation)
	require.NoError(t, err)
}

func assertKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperr.KindOf(err), "unexpected error: %v", err)
}

func TestLedgerScenario(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()
	reward := createReward(t, f.db, "Gift card", 150)

	_, err := f.svc.TopUpBudget(ctx, f.admin, 1000, nil)
	require.NoError(t, err)

	_, err = f.svc.Allocate(ctx, f.admin, f.manager.ID, 400)
	require.NoError(t, err)
	budget, err := f.svc.GetBudget(ctx, f.admin.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(600), budget.RemainingPoints)

	_, err = f.svc.IssueReward(ctx, f.manager, IssueRequest{ReceiverID: f.employee.ID, Points: 100, Reason: "Teamwork"})
	require.NoError(t, err)
	_, err = f.svc.IssueReward(ctx, f.manager, IssueRequest{ReceiverID: f.employee.ID, Points: 100, Reason: "Delivery"})
	require.NoError(t, err)

	pool, err := f.svc.ManagerSummary(ctx, f.manager.ID)
	require.NoError(t, err)
	assert.Equal(t, ManagerSummary{AssignedPoints: 400, RemainingPoints: 200}, pool)

	balance, err := f.svc.Balance(ctx, f.employee.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(200), balance.Available)

	redemption, err := f.svc.RequestRedemption(ctx, f.employee, reward.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RedemptionPending, redemption.Status)
	assert.Equal(t, "Gift card", redemption.RewardTitle)

	balance, err = f.svc.Balance(ctx, f.employee.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(200), balance.Available)
	assert.Equal(t, int64(50), balance.Spendable)

	resolved, err := f.svc.ResolveRedemption(ctx, f.admin, redemption.ID, models.RedemptionApproved, "")
	require.NoError(t, err)
	assert.Equal(t, models.RedemptionApproved, resolved.Status)
	require.NotNil(t, resolved.ResolvedBy)
	assert.Equal(t, f.admin.ID, *resolved.ResolvedBy)
	assert.NotNil(t, resolved.ResolvedAt)

	balance, err = f.svc.Balance(ctx, f.employee.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), balance.Available)

	_, err = f.svc.RequestRedemption(ctx, f.employee, reward.ID)
	assertKind(t, err, apperr.KindInsufficientPoints)
}

func TestTopUpBudget(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()
	value := decimal.RequireFromString("0.25")

	budget, err := f.svc.TopUpBudget(ctx, f.admin, 500, &value)
	require.NoError(t, err)
	assert.Equal(t, int64(500), budget.TotalPoints)
	assert.Equal(t, int64(500), budget.RemainingPoints)
	assert.True(t, value.Equal(budget.PointValue))

	budget, err = f.svc.TopUpBudget(ctx, f.admin, 250, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(750), budget.TotalPoints)
	assert.Equal(t, int64(750), budget.RemainingPoints)
	assert.LessOrEqual(t, budget.RemainingPoints, budget.TotalPoints)

	_, err = f.svc.TopUpBudget(ctx, f.admin, 0, nil)
	assertKind(t, err, apperr.KindValidation)

	require.Len(t, f.audit.entries, 2)
}

func TestGetBudget_NotFound(t *testing.T) {
	f := setupTestService(t)

	_, err := f.svc.GetBudget(context.Background(), f.admin.ID)
	assertKind(t, err, apperr.KindNotFound)
	assert.Equal(t, apperr.CodeBudgetNotFound, apperr.CodeOf(err))
}

func TestAllocate(t *testing.T) {
	ctx := context.Background()

	t.Run("exact remaining succeeds", func(t *testing.T) {
		f := setupTestService(t)
		_, err := f.svc.TopUpBudget(ctx, f.admin, 300, nil)
		require.NoError(t, err)

		pool, err := f.svc.Allocate(ctx, f.admin, f.manager.ID, 300)
		require.NoError(t, err)
		assert.Equal(t, int64(300), pool.RemainingPoints)

		budget, err := f.svc.GetBudget(ctx, f.admin.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), budget.RemainingPoints)
	})

	t.Run("one over remaining fails", func(t *testing.T) {
		f := setupTestService(t)
		_, err := f.svc.TopUpBudget(ctx, f.admin, 300, nil)
		require.NoError(t, err)

		_, err = f.svc.Allocate(ctx, f.admin, f.manager.ID, 301)
		assertKind(t, err, apperr.KindInsufficientBudget)

		budget, err := f.svc.GetBudget(ctx, f.admin.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(300), budget.RemainingPoints)
		_, err = f.svc.ledger.GetManagerPoints(ctx, f.manager.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("second allocation conflicts", func(t *testing.T) {
		f := setupTestService(t)
		f.fundManager(t, 1000, 100)

		_, err := f.svc.Allocate(ctx, f.admin, f.manager.ID, 100)
		assertKind(t, err, apperr.KindConflict)
		assert.Equal(t, apperr.CodeAlreadyAssigned, apperr.CodeOf(err))

		budget, err := f.svc.GetBudget(ctx, f.admin.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(900), budget.RemainingPoints)
	})

	t.Run("missing budget", func(t *testing.T) {
		f := setupTestService(t)
		_, err := f.svc.Allocate(ctx, f.admin, f.manager.ID, 10)
		assertKind(t, err, apperr.KindNotFound)
		assert.Equal(t, apperr.CodeBudgetNotFound, apperr.CodeOf(err))
	})

	t.Run("target must be a manager", func(t *testing.T) {
		f := setupTestService(t)
		_, err := f.svc.TopUpBudget(ctx, f.admin, 100, nil)
		require.NoError(t, err)

		_, err = f.svc.Allocate(ctx, f.admin, f.employee.ID, 10)
		assertKind(t, err, apperr.KindValidation)
		_, err = f.svc.Allocate(ctx, f.admin, 9999, 10)
		assertKind(t, err, apperr.KindNotFound)
	})

	t.Run("non-positive points", func(t *testing.T) {
		f := setupTestService(t)
		_, err := f.svc.Allocate(ctx, f.admin, f.manager.ID, 0)
		assertKind(t, err, apperr.KindValidation)
	})
}

func TestIncrementAllocation(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()
	f.fundManager(t, 1000, 100)

	pool, err := f.svc.IncrementAllocation(ctx, f.admin, f.manager.ID, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(150), pool.PointsAssigned)
	assert.Equal(t, int64(150), pool.RemainingPoints)

	budget, err := f.svc.GetBudget(ctx, f.admin.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(850), budget.RemainingPoints)

	_, err = f.svc.IncrementAllocation(ctx, f.admin, f.manager.ID, 851)
	assertKind(t, err, apperr.KindInsufficientBudget)

	other := testdb.CreateUser(t, f.db, "newmanager", models.RoleManager, nil)
	_, err = f.svc.IncrementAllocation(ctx, f.admin, other.ID, 10)
	assertKind(t, err, apperr.KindNotFound)
}

func TestIssueReward(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()
	f.fundManager(t, 1000, 100)

	result, err := f.svc.IssueReward(ctx, f.manager, IssueRequest{
		ReceiverID: f.employee.ID,
		Points:     100,
		Reason:     "Shipped the release",
		Caption:    "Great job",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100), result.Entry.Points)
	assert.Equal(t, f.manager.ID, result.Entry.GiverID)
	require.NotNil(t, result.Post.RewardPointsID)
	assert.Equal(t, result.Entry.ID, *result.Post.RewardPointsID)
	assert.Equal(t, "Great job", result.Post.Caption)

	pool, err := f.svc.ManagerSummary(ctx, f.manager.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), pool.RemainingPoints)

	given, err := f.svc.GivenHistory(ctx, f.manager.ID)
	require.NoError(t, err)
	require.Len(t, given, 1)
	assert.Equal(t, f.employee.ID, given[0].ReceiverID)

	// Pool is now exactly empty; one more point must fail.
	_, err = f.svc.IssueReward(ctx, f.manager, IssueRequest{ReceiverID: f.employee.ID, Points: 1, Reason: "More"})
	assertKind(t, err, apperr.KindInsufficientPoints)

	f.svc.Wait()
	assert.Equal(t, 1, f.leaderboard.calls)
	require.Len(t, f.push.messages, 1)
	require.Len(t, f.announcer.recognitions, 1)
	assert.Equal(t, "eve", f.announcer.recognitions[0].ReceiverName)

	var notifications []models.Notification
	require.NoError(t, f.db.Where("recipient_id = ?", f.employee.ID).Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationRewardReceived, notifications[0].Type)
}

func TestIssueReward_Rules(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()
	f.fundManager(t, 1000, 100)

	tests := []struct {
		name  string
		giver authz.Identity
		req   IssueRequest
		kind  apperr.Kind
	}{
		{
			name:  "employee cannot issue",
			giver: f.employee,
			req:   IssueRequest{ReceiverID: f.outsider.ID, Points: 10, Reason: "x"},
			kind:  apperr.KindForbidden,
		},
		{
			name:  "zero points",
			giver: f.manager,
			req:   IssueRequest{ReceiverID: f.employee.ID, Points: 0, Reason: "x"},
			kind:  apperr.KindValidation,
		},
		{
			name:  "missing reason",
			giver: f.manager,
			req:   IssueRequest{ReceiverID: f.employee.ID, Points: 10, Reason: "  "},
			kind:  apperr.KindValidation,
		},
		{
			name:  "self reward",
			giver: f.manager,
			req:   IssueRequest{ReceiverID: f.manager.ID, Points: 10, Reason: "x"},
			kind:  apperr.KindValidation,
		},
		{
			name:  "unknown receiver",
			giver: f.manager,
			req:   IssueRequest{ReceiverID: 9999, Points: 10, Reason: "x"},
			kind:  apperr.KindNotFound,
		},
		{
			name:  "receiver not managed by giver",
			giver: f.manager,
			req:   IssueRequest{ReceiverID: f.outsider.ID, Points: 10, Reason: "x"},
			kind:  apperr.KindForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.IssueReward(ctx, tt.giver, tt.req)
			assertKind(t, err, tt.kind)
		})
	}

	pool, err := f.svc.ManagerSummary(ctx, f.manager.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), pool.RemainingPoints)
}

func TestIssueReward_ReasonCatalog(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()
	f.fundManager(t, 1000, 100)

	img := "https://img.example.com/star.png"
	reason := &models.RewardReason{Reason: "Customer hero", Img: &img}
	require.NoError(t, f.db.Create(reason).Error)

	result, err := f.svc.IssueReward(ctx, f.manager, IssueRequest{ReceiverID: f.employee.ID, Points: 10, ReasonID: &reason.ID})
	require.NoError(t, err)
	assert.Equal(t, "Customer hero", result.Entry.Reason)
	require.NotNil(t, result.Post.ImageURL)
	assert.Equal(t, img, *result.Post.ImageURL)

	missing := uint(9999)
	_, err = f.svc.IssueReward(ctx, f.manager, IssueRequest{ReceiverID: f.employee.ID, Points: 10, ReasonID: &missing})
	assertKind(t, err, apperr.KindValidation)
	assert.Equal(t, apperr.CodeInvalidReason, apperr.CodeOf(err))
}

func TestIssueReward_AdminDebitsBudget(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()
	_, err := f.svc.TopUpBudget(ctx, f.admin, 50, nil)
	require.NoError(t, err)

	_, err = f.svc.IssueReward(ctx, f.admin, IssueRequest{ReceiverID: f.outsider.ID, Points: 50, Reason: "Company award"})
	require.NoError(t, err)

	budget, err := f.svc.GetBudget(ctx, f.admin.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), budget.RemainingPoints)
}

func TestIssueReward_RollsBackWhenPostFails(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()
	f.fundManager(t, 1000, 100)

	require.NoError(t, f.db.Migrator().DropTable(&models.Post{}))

	_, err := f.svc.IssueReward(ctx, f.manager, IssueRequest{ReceiverID: f.employee.ID, Points: 40, Reason: "x"})
	assertKind(t, err, apperr.KindInternal)

	pool, err := f.svc.ManagerSummary(ctx, f.manager.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), pool.RemainingPoints)

	var entries int64
	require.NoError(t, f.db.Model(&models.RewardPoints{}).Count(&entries).Error)
	assert.Zero(t, entries)
}

func TestRequestRedemption(t *testing.T) {
	ctx := context.Background()

	t.Run("exact balance succeeds", func(t *testing.T) {
		f := setupTestService(t)
		f.fundManager(t, 1000, 100)
		reward := createReward(t, f.db, "Mug", 100)
		_, err := f.svc.IssueReward(ctx, f.manager, IssueRequest{ReceiverID: f.employee.ID, Points: 100, Reason: "x"})
		require.NoError(t, err)

		_, err = f.svc.RequestRedemption(ctx, f.employee, reward.ID)
		require.NoError(t, err)
	})

	t.Run("one short fails without a row", func(t *testing.T) {
		f := setupTestService(t)
		f.fundManager(t, 1000, 100)
		reward := createReward(t, f.db, "Mug", 100)
		_, err := f.svc.IssueReward(ctx, f.manager, IssueRequest{ReceiverID: f.employee.ID, Points: 99, Reason: "x"})
		require.NoError(t, err)

		_, err = f.svc.RequestRedemption(ctx, f.employee, reward.ID)
		assertKind(t, err, apperr.KindInsufficientPoints)

		redemptions, err := f.svc.ListUserRedemptions(ctx, f.employee.ID)
		require.NoError(t, err)
		assert.Empty(t, redemptions)
	})

	t.Run("unknown reward", func(t *testing.T) {
		f := setupTestService(t)
		_, err := f.svc.RequestRedemption(ctx, f.employee, 9999)
		assertKind(t, err, apperr.KindNotFound)
	})

	t.Run("managers cannot redeem", func(t *testing.T) {
		f := setupTestService(t)
		reward := createReward(t, f.db, "Mug", 1)
		_, err := f.svc.RequestRedemption(ctx, f.manager, reward.ID)
		assertKind(t, err, apperr.KindForbidden)
	})
}

// Two requests for the whole balance: the pending one counts against the
// second. Row locking itself is covered in the repository tests.
func TestRequestRedemption_PendingCountsAgainstConcurrentRequest(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()
	f.fundManager(t, 1000, 100)
	reward := createReward(t, f.db, "Headphones", 100)
	_, err := f.svc.IssueReward(ctx, f.manager, IssueRequest{ReceiverID: f.employee.ID, Points: 100, Reason: "x"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.RequestRedemption(ctx, f.employee, reward.ID)
		}(i)
	}
	wg.Wait()

	var succeeded, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case apperr.Is(err, apperr.KindInsufficientPoints):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)

	balance, err := f.svc.Balance(ctx, f.employee.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance.Spendable)
}

func TestResolveRedemption(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*fixture, *models.Redemption) {
		f := setupTestService(t)
		f.fundManager(t, 1000, 100)
		reward := createReward(t, f.db, "Mug", 60)
		_, err := f.svc.IssueReward(ctx, f.manager, IssueRequest{ReceiverID: f.employee.ID, Points: 100, Reason: "x"})
		require.NoError(t, err)
		redemption, err := f.svc.RequestRedemption(ctx, f.employee, reward.ID)
		require.NoError(t, err)
		return f, redemption
	}

	t.Run("declined restores spendable", func(t *testing.T) {
		f, redemption := setup(t)

		resolved, err := f.svc.ResolveRedemption(ctx, f.admin, redemption.ID, models.RedemptionDeclined, "Out of stock")
		require.NoError(t, err)
		require.NotNil(t, resolved.DeclineReason)
		assert.Equal(t, "Out of stock", *resolved.DeclineReason)

		balance, err := f.svc.Balance(ctx, f.employee.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(100), balance.Available)
		assert.Equal(t, int64(100), balance.Spendable)
	})

	t.Run("resolving twice conflicts", func(t *testing.T) {
		f, redemption := setup(t)

		_, err := f.svc.ResolveRedemption(ctx, f.admin, redemption.ID, models.RedemptionApproved, "")
		require.NoError(t, err)
		_, err = f.svc.ResolveRedemption(ctx, f.admin, redemption.ID, models.RedemptionApproved, "")
		assertKind(t, err, apperr.KindConflict)
		assert.Equal(t, apperr.CodeAlreadyResolved, apperr.CodeOf(err))
		_, err = f.svc.ResolveRedemption(ctx, f.admin, redemption.ID, models.RedemptionDeclined, "late")
		assertKind(t, err, apperr.KindConflict)

		balance, err := f.svc.Balance(ctx, f.employee.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(40), balance.Available)
	})

	t.Run("invalid input", func(t *testing.T) {
		f, redemption := setup(t)

		_, err := f.svc.ResolveRedemption(ctx, f.admin, redemption.ID, models.RedemptionDeclined, " ")
		assertKind(t, err, apperr.KindValidation)
		_, err = f.svc.ResolveRedemption(ctx, f.admin, redemption.ID, models.RedemptionPending, "")
		assertKind(t, err, apperr.KindValidation)
		_, err = f.svc.ResolveRedemption(ctx, f.admin, 9999, models.RedemptionApproved, "")
		assertKind(t, err, apperr.KindNotFound)
	})
}

func TestListRedemptions(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()

	_, err := f.svc.ListRedemptions(ctx, "bogus")
	assertKind(t, err, apperr.KindValidation)

	redemptions, err := f.svc.ListRedemptions(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, redemptions)
}

func TestSummaries(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()

	admin, err := f.svc.AdminSummary(ctx, f.admin.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), admin.TotalPoints)

	manager, err := f.svc.ManagerSummary(ctx, f.manager.ID)
	require.NoError(t, err)
	assert.Equal(t, ManagerSummary{}, manager)

	f.fundManager(t, 1000, 250)

	admin, err = f.svc.AdminSummary(ctx, f.admin.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), admin.TotalPoints)
	assert.Equal(t, int64(750), admin.RemainingPoints)
	assert.Equal(t, int64(250), admin.AssignedPoints)
}
