package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JonnyWalker81/focusmetrics/internal/logger"
	"github.com/JonnyWalker81/focusmetrics/internal/models"
	"github.com/JonnyWalker81/focusmetrics/internal/repository"
)

type activityService struct {
	activityRepo repository.ActivityRepository
	refresher    RefreshDispatcher
	now          func() time.Time
}

// NewActivityService creates a new activity service. refresher may be nil,
// in which case no background refresh is scheduled.
func NewActivityService(activityRepo repository.ActivityRepository, refresher RefreshDispatcher) ActivityService {
	return &activityService{
		activityRepo: activityRepo,
		refresher:    refresher,
		now:          time.Now,
	}
}

func (s *activityService) RecordActivity(ctx context.Context, userID string, req *models.CreateActivityRequest) (*models.ActivityRecord, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	id := req.ID
	if id == "" {
		var err error
		if id, err = newActivityID(); err != nil {
			return nil, err
		}
	}

	record := &models.ActivityRecord{
		ID:                id,
		UserID:            userID,
		Category:          strings.TrimSpace(req.Category),
		ProductivityScore: *req.ProductivityScore,
		FocusQuality:      req.FocusQuality,
		DurationSeconds:   req.DurationSeconds,
		StartTime:         req.StartTime.UTC(),
		EndTime:           req.EndTime,
		CreatedAt:         s.now().UTC(),
	}

	created, err := s.activityRepo.Create(ctx, record)
	if errors.Is(err, repository.ErrDuplicateActivity) {
		return nil, fmt.Errorf("%w: %s", ErrActivityExists, id)
	}
	if err != nil {
		return nil, dependencyError("create activity", err)
	}

	// The caller's response never depends on the refresh outcome
	if s.refresher != nil && !s.refresher.Dispatch(ctx, userID) {
		logger.Ctx(ctx).Warn("metrics refresh not scheduled", logger.String("user_id", userID))
	}

	return created, nil
}

func (s *activityService) validate(req *models.CreateActivityRequest) error {
	var errs fieldErrors

	if req.ID != "" {
		if err := validateActivityID(req.ID, s.now()); err != nil {
			errs.add("id", err.Error(), "invalid_uuid")
		}
	}
	errs.check(req)
	if req.StartTime.IsZero() {
		errs.add("start_time", "is required", "required")
	}
	if req.EndTime != nil && req.EndTime.Before(req.StartTime) {
		errs.add("end_time", "must not be before start_time", "invalid_range")
	}

	return errs.err(ErrInvalidActivity)
}
