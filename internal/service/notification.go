package service

import (
	"context"

	"goldloan-backend/internal/domain"
	"goldloan-backend/internal/repository"
)

type notificationService struct {
	noteRepo repository.NotificationRepository
}

func NewNotificationService(noteRepo repository.NotificationRepository) NotificationService {
	return &notificationService{noteRepo: noteRepo}
}

func (s *notificationService) List(ctx context.Context, limit int) ([]domain.Notification, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return s.noteRepo.List(ctx, limit)
}

func (s *notificationService) Clear(ctx context.Context) error {
	return s.noteRepo.Clear(ctx)
}
