package compensation

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/pet_shop/internal/models"
	"github.com/Skotchmaster/pet_shop/internal/notify"
	"github.com/Skotchmaster/pet_shop/internal/repo"
	"github.com/Skotchmaster/pet_shop/internal/repo/repotest"
	"github.com/Skotchmaster/pet_shop/pkg/logging"
)

type failingNotifier struct{ err error }

func (f failingNotifier) Notify(context.Context, *models.Notification) error { return f.err }

func newRunner(t *testing.T) (*Runner, *repo.GormRepo) {
	t.Helper()
	r := repotest.NewRepo(t)
	return &Runner{Store: r, Notifier: &notify.GormStore{Repo: r}}, r
}

func seedFood(t *testing.T, r *repo.GormRepo, id uuid.UUID) {
	t.Helper()
	require.NoError(t, r.DB.Create(&models.Food{CatalogItem: models.CatalogItem{ID: id, Name: "kibble", Price: 10, Quantity: 20}}).Error)
}

func TestRun_AppliesActions(t *testing.T) {
	ctx := context.Background()
	runner, r := newRunner(t)

	foodID := uuid.New()
	seedFood(t, r, foodID)

	failed := runner.Run(ctx, uuid.New(),
		SoldCount(models.KindFood, foodID, 3),
		Notify(notify.ForAdmin("o", "New order", "placed", notify.LevelInfo, "")),
	)
	require.Zero(t, failed)

	item, err := r.FindProduct(ctx, models.KindFood, foodID)
	require.NoError(t, err)
	assert.Equal(t, 3, item.SoldCount)

	notes, err := r.ListNotifications(ctx, models.AudienceAdmin, 10, 0)
	require.NoError(t, err)
	assert.Len(t, notes, 1)
}

func TestRun_DeadLettersAndRetry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runner, r := newRunner(t)

	orderID := uuid.New()
	foodID := uuid.New()

	// a cancelled request context must not stop the compensations
	cancel()
	failed := runner.Run(ctx, orderID,
		SoldCount(models.KindFood, foodID, 2),
		Action{Kind: "bogus"},
	)
	require.Equal(t, 2, failed)

	pending, err := r.PendingCompensationFailures(context.Background(), 5, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, orderID, pending[0].OrderID)
	assert.Equal(t, string(KindSoldCount), pending[0].Kind)
	assert.Equal(t, 1, pending[0].Attempts)

	seedFood(t, r, foodID)

	res, err := runner.Retry(context.Background(), 5, 10)
	require.NoError(t, err)
	assert.Equal(t, RetryResult{Resolved: 1, Failed: 1}, res)

	item, err := r.FindProduct(context.Background(), models.KindFood, foodID)
	require.NoError(t, err)
	assert.Equal(t, 2, item.SoldCount)

	pending, err = r.PendingCompensationFailures(context.Background(), 5, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 2, pending[0].Attempts)

	pending, err = r.PendingCompensationFailures(context.Background(), 2, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRun_NotifierFailureIsSwallowed(t *testing.T) {
	r := repotest.NewRepo(t)
	runner := &Runner{Store: r, Notifier: failingNotifier{err: errors.New("smtp down")}}

	failed := runner.Run(context.Background(), uuid.New(), Notify(notify.ForUser(uuid.New(), "t", "m", notify.LevelInfo, "")))
	require.Equal(t, 1, failed)

	pending, err := r.PendingCompensationFailures(context.Background(), 5, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "smtp down", pending[0].Error)
}

type stuckBumpStore struct {
	*repo.GormRepo
}

func (stuckBumpStore) BumpCompensationFailure(context.Context, uint, string) error {
	return errors.New("db gone")
}

func TestRetry_LogsUndecodablePayloadBumpFailure(t *testing.T) {
	r := repotest.NewRepo(t)
	require.NoError(t, r.SaveCompensationFailure(context.Background(), &models.CompensationFailure{
		OrderID: uuid.New(),
		Kind:    string(KindSoldCount),
		Payload: "{not json",
	}))

	var buf bytes.Buffer
	ctx := logging.IntoContext(context.Background(), logging.NewWithWriter(&buf, "info"))
	runner := &Runner{Store: stuckBumpStore{r}}

	res, err := runner.Retry(ctx, 5, 10)
	require.NoError(t, err)
	assert.Equal(t, RetryResult{Failed: 1}, res)
	assert.Contains(t, buf.String(), "compensation_bump_error")
	assert.Contains(t, buf.String(), "db gone")
}

func TestSoldCounts(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	got := SoldCounts([]models.LineItem{
		{ProductID: a, ProductType: models.KindFood, Quantity: 2},
		{ProductID: b, ProductType: models.KindAccessory, Quantity: 1},
	}, -1)
	assert.Equal(t, []Action{
		SoldCount(models.KindFood, a, -2),
		SoldCount(models.KindAccessory, b, -1),
	}, got)
}
