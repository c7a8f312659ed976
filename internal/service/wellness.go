package service

import (
	"context"
	"time"

	"github.com/JonnyWalker81/focusmetrics/internal/models"
	"github.com/JonnyWalker81/focusmetrics/internal/repository"
)

type wellnessService struct {
	wellnessRepo repository.WellnessRepository
}

// NewWellnessService creates a new wellness service
func NewWellnessService(wellnessRepo repository.WellnessRepository) WellnessService {
	return &wellnessService{wellnessRepo: wellnessRepo}
}

func (s *wellnessService) LogWellness(ctx context.Context, userID string, req *models.LogWellnessRequest) (*models.WellnessRecord, error) {
	var errs fieldErrors

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		errs.add("date", "must use the YYYY-MM-DD format", "invalid_format")
	}
	errs.check(req)
	if err := errs.err(ErrInvalidWellness); err != nil {
		return nil, err
	}

	record := &models.WellnessRecord{
		UserID:          userID,
		Date:            date,
		SleepHours:      req.SleepHours,
		SleepQuality:    req.SleepQuality,
		ExerciseMinutes: req.ExerciseMinutes,
		MoodRating:      req.MoodRating,
		StressLevel:     req.StressLevel,
		NutritionScore:  req.NutritionScore,
	}

	stored, err := s.wellnessRepo.Upsert(ctx, record)
	if err != nil {
		return nil, dependencyError("upsert wellness log", err)
	}
	return stored, nil
}
