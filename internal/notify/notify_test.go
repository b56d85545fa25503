package notify

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/pet_shop/internal/models"
	"github.com/Skotchmaster/pet_shop/internal/repo/repotest"
)

func TestGormStore(t *testing.T) {
	ctx := context.Background()
	s := &GormStore{Repo: repotest.NewRepo(t)}

	user := uuid.New()
	require.NoError(t, s.Notify(ctx, ForUser(user, "Order updated", "Your order is now shipped", LevelInfo, "/orders/1")))
	require.NoError(t, s.Notify(ctx, ForAdmin("order-1", "New order", "A new order was placed", LevelSuccess, "")))

	admin, err := s.List(ctx, models.AudienceAdmin, 10, 0)
	require.NoError(t, err)
	require.Len(t, admin, 1)
	require.Equal(t, "New order", admin[0].Title)
	require.NotEqual(t, uuid.Nil, admin[0].ID)

	users, err := s.List(ctx, models.AudienceUser, 10, 0)
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, user.String(), users[0].SubjectID)

	all, err := s.List(ctx, "", 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
}
