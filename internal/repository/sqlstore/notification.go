package sqlstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"goldloan-backend/internal/domain"
	"goldloan-backend/internal/logger"
	"goldloan-backend/internal/repository"
)

type notificationRepository struct {
	q executor
}

func NewNotificationRepository(q executor) repository.NotificationRepository {
	return &notificationRepository{q: q}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	logger.EnterMethod("notificationRepository.Create", "message", n.Message)

	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	query := r.q.Rebind(`INSERT INTO notifications (id, message, is_read, created_at) VALUES (?, ?, ?, ?)`)
	logger.DatabaseCall("INSERT", "notifications", "notificationID", n.ID)
	res, err := r.q.ExecContext(ctx, query, n.ID, n.Message, n.IsRead, n.CreatedAt)
	logger.DatabaseResult("INSERT", rowsAffected(res), err, "notificationID", n.ID)

	if err != nil {
		logger.ExitMethodWithError("notificationRepository.Create", err)
		return persistence("create notification", err)
	}
	logger.ExitMethod("notificationRepository.Create", "notificationID", n.ID)
	return nil
}

func (r *notificationRepository) List(ctx context.Context, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	query := r.q.Rebind(`SELECT id, message, is_read, created_at FROM notifications
		ORDER BY created_at DESC LIMIT ?`)
	var notes []domain.Notification
	if err := r.q.SelectContext(ctx, &notes, query, limit); err != nil {
		return nil, persistence("list notifications", err)
	}
	return notes, nil
}

func (r *notificationRepository) Clear(ctx context.Context) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM notifications`)
	logger.DatabaseResult("DELETE", rowsAffected(res), err, "table", "notifications")
	if err != nil {
		return persistence("clear notifications", err)
	}
	return nil
}
