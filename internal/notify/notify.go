// Package notify stores user and admin notifications.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/pet_shop/internal/models"
	"github.com/Skotchmaster/pet_shop/internal/repo"
)

const (
	LevelInfo    = "info"
	LevelSuccess = "success"
	LevelWarning = "warning"
)

type Sink interface {
	Notify(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, audience models.Audience, limit, offset int) ([]models.Notification, error)
}

func ForUser(userID uuid.UUID, title, message, level, link string) *models.Notification {
	return &models.Notification{
		Audience:  models.AudienceUser,
		SubjectID: userID.String(),
		Title:     title,
		Message:   message,
		Level:     level,
		Link:      link,
	}
}

func ForAdmin(subjectID, title, message, level, link string) *models.Notification {
	return &models.Notification{
		Audience:  models.AudienceAdmin,
		SubjectID: subjectID,
		Title:     title,
		Message:   message,
		Level:     level,
		Link:      link,
	}
}

type GormStore struct {
	Repo *repo.GormRepo
}

func (s *GormStore) Notify(ctx context.Context, n *models.Notification) error {
	stamp(n)
	return s.Repo.SaveNotification(ctx, n)
}

func (s *GormStore) List(ctx context.Context, audience models.Audience, limit, offset int) ([]models.Notification, error) {
	return s.Repo.ListNotifications(ctx, audience, limit, offset)
}

func stamp(n *models.Notification) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
}
