package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-planner-api/internal/dto"
	"github.com/noah-isme/course-planner-api/internal/models"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
)

type savedScheduleRepository interface {
	Create(ctx context.Context, saved *models.SavedSchedule) error
	List(ctx context.Context, filter models.SavedScheduleFilter) ([]models.SavedSchedule, int, error)
	FindByID(ctx context.Context, sessionID, id string) (*models.SavedSchedule, error)
	Delete(ctx context.Context, sessionID, id string) error
}

type schedulePlanner interface {
	View(ctx context.Context, sessionID string) (*models.ScheduleView, error)
	Load(ctx context.Context, sessionID string, req dto.LoadScheduleRequest) (*models.ScheduleResult, error)
}

// SavedScheduleService stores named snapshots of session schedules.
type SavedScheduleService struct {
	repo      savedScheduleRepository
	planner   schedulePlanner
	enabled   bool
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSavedScheduleService constructs the service. When disabled every call
// fails with ErrFeatureDisabled.
func NewSavedScheduleService(repo savedScheduleRepository, planner schedulePlanner, enabled bool, validate *validator.Validate, logger *zap.Logger) *SavedScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SavedScheduleService{repo: repo, planner: planner, enabled: enabled && repo != nil, validator: validate, logger: logger}
}

// Enabled reports whether saved schedules are available.
func (s *SavedScheduleService) Enabled() bool {
	return s.enabled
}

func (s *SavedScheduleService) ensureEnabled() error {
	if !s.enabled {
		return appErrors.Clone(appErrors.ErrFeatureDisabled, "saved schedules are disabled")
	}
	return nil
}

// Save snapshots the current session schedule under a name.
func (s *SavedScheduleService) Save(ctx context.Context, sessionID string, req dto.SaveScheduleRequest) (*models.SavedSchedule, error) {
	if err := s.ensureEnabled(); err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.ErrValidation.With(err, "invalid saved schedule payload")
	}

	view, err := s.planner.View(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if view.Serialized == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "schedule is empty")
	}

	saved := &models.SavedSchedule{
		SessionID:    sessionID,
		Name:         req.Name,
		Serialized:   view.Serialized,
		TotalCredits: view.TotalCredits,
	}
	if err := s.repo.Create(ctx, saved); err != nil {
		s.logger.Error("failed to store saved schedule", zap.String("session_id", sessionID), zap.Error(err))
		return nil, appErrors.ErrInternal.With(err, "failed to save schedule")
	}
	return saved, nil
}

// List returns the saved schedules of the session, newest first.
func (s *SavedScheduleService) List(ctx context.Context, sessionID string, query dto.ListSavedSchedulesQuery) ([]models.SavedSchedule, *models.Pagination, error) {
	if err := s.ensureEnabled(); err != nil {
		return nil, nil, err
	}
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.ErrValidation.With(err, "invalid pagination")
	}
	if query.Page == 0 {
		query.Page = 1
	}
	if query.PageSize == 0 {
		query.PageSize = 20
	}

	items, total, err := s.repo.List(ctx, models.SavedScheduleFilter{SessionID: sessionID, Page: query.Page, PageSize: query.PageSize})
	if err != nil {
		return nil, nil, appErrors.ErrInternal.With(err, "failed to list saved schedules")
	}
	return items, models.NewPagination(query.Page, query.PageSize, total), nil
}

// Restore replaces the session schedule with a saved one.
func (s *SavedScheduleService) Restore(ctx context.Context, sessionID, id string) (*models.ScheduleResult, error) {
	if err := s.ensureEnabled(); err != nil {
		return nil, err
	}
	saved, err := s.find(ctx, sessionID, id)
	if err != nil {
		return nil, err
	}
	return s.planner.Load(ctx, sessionID, dto.LoadScheduleRequest{Serialized: saved.Serialized, Mode: dto.LoadModeReplace})
}

// Delete removes a saved schedule.
func (s *SavedScheduleService) Delete(ctx context.Context, sessionID, id string) error {
	if err := s.ensureEnabled(); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, sessionID, id); err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return err
		}
		return appErrors.ErrInternal.With(err, "failed to delete saved schedule")
	}
	return nil
}

func (s *SavedScheduleService) find(ctx context.Context, sessionID, id string) (*models.SavedSchedule, error) {
	saved, err := s.repo.FindByID(ctx, sessionID, id)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return nil, err
		}
		return nil, appErrors.ErrInternal.With(err, "failed to load saved schedule")
	}
	return saved, nil
}
