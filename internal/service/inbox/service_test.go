package inbox

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zetarewards/recognition-api/internal/apperr"
	"github.com/zetarewards/recognition-api/internal/authz"
	"github.com/zetarewards/recognition-api/internal/models"
	"github.com/zetarewards/recognition-api/internal/repository"
	"github.com/zetarewards/recognition-api/pkg/logger"
	"github.com/zetarewards/recognition-api/test/testdb"
)

func setupTestService(t *testing.T) (*Service, *repository.DB, authz.Identity, authz.Identity) {
	t.Helper()
	db := testdb.New(t)
	manager := testdb.CreateUser(t, db, "manager", models.RoleManager, nil)
	employee := testdb.CreateUser(t, db, "eve", models.RoleEmployee, &manager.ID)

	svc := NewService(repository.NewNotificationRepository(db), repository.NewUserRepository(db), "BPubKey", logger.Nop())
	return svc, db,
		authz.Identity{ID: manager.ID, Role: manager.Role},
		authz.Identity{ID: employee.ID, Role: employee.Role}
}

func TestRequestFromManager(t *testing.T) {
	svc, db, manager, employee := setupTestService(t)
	ctx := context.Background()

	n, err := svc.RequestFromManager(ctx, employee, "  Could you review my points?  ")
	require.NoError(t, err)
	assert.Equal(t, manager.ID, n.RecipientID)
	assert.Equal(t, "eve: Could you review my points?", n.Message)

	items, err := svc.List(ctx, manager, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.NotificationEmployeeRequest, items[0].Type)
	assert.False(t, items[0].IsRead)

	require.NoError(t, svc.MarkAllRead(ctx, manager))
	items, err = svc.List(ctx, manager, 10)
	require.NoError(t, err)
	assert.True(t, items[0].IsRead)

	_, err = svc.RequestFromManager(ctx, employee, " ")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.RequestFromManager(ctx, manager, "hi")
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	orphan := testdb.CreateUser(t, db, "solo", models.RoleEmployee, nil)
	_, err = svc.RequestFromManager(ctx, authz.Identity{ID: orphan.ID, Role: orphan.Role}, "hi")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestSubscriptions(t *testing.T) {
	svc, db, _, employee := setupTestService(t)
	ctx := context.Background()

	in := SubscriptionInput{Endpoint: "https://push.example.com/abc"}
	in.Keys.P256dh = "p256"
	in.Keys.Auth = "auth"

	_, err := svc.Subscribe(ctx, employee, in)
	require.NoError(t, err)

	in.Keys.Auth = "rotated"
	_, err = svc.Subscribe(ctx, employee, in)
	require.NoError(t, err)

	var subs []models.PushSubscription
	require.NoError(t, db.Find(&subs).Error)
	require.Len(t, subs, 1)
	assert.Equal(t, "rotated", subs[0].AuthKey)

	bad := in
	bad.Endpoint = "http://insecure.example.com"
	_, err = svc.Subscribe(ctx, employee, bad)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	require.NoError(t, svc.Unsubscribe(ctx, employee, in.Endpoint))
	err = svc.Unsubscribe(ctx, employee, in.Endpoint)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	assert.Equal(t, "BPubKey", svc.VAPIDPublicKey())
}
