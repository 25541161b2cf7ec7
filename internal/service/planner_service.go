package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-planner-api/internal/dto"
	"github.com/noah-isme/course-planner-api/internal/models"
	"github.com/noah-isme/course-planner-api/internal/schedule"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
	"github.com/noah-isme/course-planner-api/pkg/logger"
)

// Palette rotated through as sections are added.
var Palette = []string{"red", "blue", "green", "purple", "orange", "magenta"}

type sessionStateStore interface {
	Load(ctx context.Context, sessionID string) (*models.SessionState, error)
	Save(ctx context.Context, sessionID string, state *models.SessionState) error
}

type scheduleRenderer interface {
	Render(sched *schedule.Schedule, format models.ExportFormat) (*models.ExportFile, error)
}

// PlannerService runs schedule operations for a session. The engine is rebuilt
// from the persisted serialized form on every call; calls for the same session
// are serialised.
type PlannerService struct {
	sessions  sessionStateStore
	resolver  schedule.CourseResolver
	exporter  scheduleRenderer
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	locks     *sessionLocks
}

// NewPlannerService constructs the service.
func NewPlannerService(sessions sessionStateStore, resolver schedule.CourseResolver, exporter scheduleRenderer, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *PlannerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlannerService{
		sessions:  sessions,
		resolver:  resolver,
		exporter:  exporter,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		locks:     newSessionLocks(),
	}
}

// workspace is the rebuilt schedule of a session plus its persisted state.
type workspace struct {
	sched *schedule.Schedule
	state *models.SessionState
}

func (s *PlannerService) open(ctx context.Context, sessionID string) (*workspace, error) {
	state, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, appErrors.ErrInternal.With(err, "failed to load session schedule")
	}
	sched := schedule.New()
	if err := sched.LoadSerializedSchedule(ctx, state.Serialized, s.resolver); err != nil {
		return nil, err
	}
	for _, section := range sched.Sections() {
		if color, ok := state.Colors[section.ID]; ok {
			section.SetColor(color)
		}
	}
	return &workspace{sched: sched, state: state}, nil
}

func (s *PlannerService) persist(ctx context.Context, sessionID string, ws *workspace) error {
	ws.state.Serialized = ws.sched.SerializedSchedule()
	for id := range ws.state.Colors {
		if !ws.sched.HasSection(id) {
			delete(ws.state.Colors, id)
		}
	}
	if err := s.sessions.Save(ctx, sessionID, ws.state); err != nil {
		return appErrors.ErrInternal.With(err, "failed to save session schedule")
	}
	return nil
}

func (s *PlannerService) withSession(ctx context.Context, sessionID string, fn func(ws *workspace) error) error {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	ws, err := s.open(ctx, sessionID)
	if err != nil {
		return err
	}
	return fn(ws)
}

// View returns the current schedule of the session.
func (s *PlannerService) View(ctx context.Context, sessionID string) (*models.ScheduleView, error) {
	var view *models.ScheduleView
	err := s.withSession(ctx, sessionID, func(ws *workspace) error {
		view = ws.sched.View()
		return nil
	})
	return view, err
}

// Serialized returns the shareable serialized schedule.
func (s *PlannerService) Serialized(ctx context.Context, sessionID string) (string, error) {
	var out string
	err := s.withSession(ctx, sessionID, func(ws *workspace) error {
		out = ws.sched.SerializedSchedule()
		return nil
	})
	return out, err
}

// AddSection places one catalog section on the session schedule. Unknown
// courses and sections are reported in the result message, not as errors.
func (s *PlannerService) AddSection(ctx context.Context, sessionID string, req dto.AddSectionRequest) (*models.ScheduleResult, error) {
	req.CourseCode = strings.ToUpper(strings.TrimSpace(req.CourseCode))
	req.SectionNumber = strings.TrimSpace(req.SectionNumber)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.ErrValidation.With(err, "invalid section payload")
	}

	var result *models.ScheduleResult
	err := s.withSession(ctx, sessionID, func(ws *workspace) error {
		section, message, err := s.lookupSection(ctx, req.CourseCode, req.SectionNumber)
		if err != nil {
			return err
		}
		if section == nil {
			result = &models.ScheduleResult{Message: message, Schedule: ws.sched.View()}
			return nil
		}

		already := ws.sched.HasSection(section.ID)
		color := Palette[ws.state.ColorIndex%len(Palette)]
		section.SetColor(color)
		message = ws.sched.AddClass(section)
		applied := !already && ws.sched.HasSection(section.ID)
		if applied {
			ws.state.Colors[section.ID] = color
			ws.state.ColorIndex = (ws.state.ColorIndex + 1) % len(Palette)
			if err := s.persist(ctx, sessionID, ws); err != nil {
				return err
			}
		}
		result = &models.ScheduleResult{Message: message, Applied: applied, Schedule: ws.sched.View()}
		return nil
	})
	s.recordOperation(ctx, "add", result, err)
	return result, err
}

func (s *PlannerService) lookupSection(ctx context.Context, courseCode, sectionNumber string) (*models.Section, string, error) {
	course, err := s.resolver.ResolveCourse(ctx, courseCode)
	if err != nil {
		if errors.Is(err, appErrors.ErrCourseNotFound) {
			return nil, models.WarningMessage(models.CourseNotFoundWarning{CourseCode: courseCode}), nil
		}
		return nil, "", err
	}
	section, ok := course.Sections[sectionNumber]
	if !ok || section == nil {
		return nil, models.WarningMessage(models.SectionNotFoundWarning{CourseCode: courseCode, SectionNumber: sectionNumber}), nil
	}
	return section, "", nil
}

// RemoveSection takes a section id such as "CMSC131-0101" off the schedule.
func (s *PlannerService) RemoveSection(ctx context.Context, sessionID, sectionID string) (*models.ScheduleResult, error) {
	sectionID = strings.TrimSpace(sectionID)
	if sectionID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "section id is required")
	}

	var result *models.ScheduleResult
	err := s.withSession(ctx, sessionID, func(ws *workspace) error {
		section := ws.sched.FindSection(sectionID)
		placed := section != nil
		if !placed {
			section = &models.Section{ID: sectionID}
		}
		message := ws.sched.RemoveClass(section)
		applied := placed && !ws.sched.HasSection(sectionID)
		if placed && !applied {
			message = sectionID + " has no scheduled meetings and can only be removed by clearing the schedule."
		}
		if applied {
			delete(ws.state.Colors, section.ID)
			ws.state.ColorIndex = (ws.state.ColorIndex - 1 + len(Palette)) % len(Palette)
			if err := s.persist(ctx, sessionID, ws); err != nil {
				return err
			}
		}
		result = &models.ScheduleResult{Message: message, Applied: applied, Schedule: ws.sched.View()}
		return nil
	})
	s.recordOperation(ctx, "remove", result, err)
	return result, err
}

// Clear removes every section from the schedule.
func (s *PlannerService) Clear(ctx context.Context, sessionID string) (*models.ScheduleResult, error) {
	var result *models.ScheduleResult
	err := s.withSession(ctx, sessionID, func(ws *workspace) error {
		if len(ws.sched.Sections()) == 0 {
			result = &models.ScheduleResult{Message: "Schedule is already empty.", Schedule: ws.sched.View()}
			return nil
		}
		ws.sched.RemoveAllClasses()
		ws.state.Colors = map[string]string{}
		ws.state.ColorIndex = 0
		if err := s.persist(ctx, sessionID, ws); err != nil {
			return err
		}
		result = &models.ScheduleResult{Message: "Schedule cleared.", Applied: true, Schedule: ws.sched.View()}
		return nil
	})
	s.recordOperation(ctx, "clear", result, err)
	return result, err
}

// Load adds the sections of a serialized schedule. Replace mode clears the
// schedule first. Warnings raised while loading appear in this result only.
func (s *PlannerService) Load(ctx context.Context, sessionID string, req dto.LoadScheduleRequest) (*models.ScheduleResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.ErrValidation.With(err, "invalid load payload")
	}

	var result *models.ScheduleResult
	err := s.withSession(ctx, sessionID, func(ws *workspace) error {
		if req.Mode == dto.LoadModeReplace {
			ws.sched.RemoveAllClasses()
			ws.state.Colors = map[string]string{}
			ws.state.ColorIndex = 0
		}
		before := len(ws.sched.Sections())
		if err := ws.sched.LoadSerializedSchedule(ctx, req.Serialized, s.resolver); err != nil {
			return err
		}
		for _, section := range ws.sched.Sections() {
			if _, ok := ws.state.Colors[section.ID]; ok {
				continue
			}
			color := Palette[ws.state.ColorIndex%len(Palette)]
			section.SetColor(color)
			ws.state.Colors[section.ID] = color
			ws.state.ColorIndex = (ws.state.ColorIndex + 1) % len(Palette)
		}
		if err := s.persist(ctx, sessionID, ws); err != nil {
			return err
		}
		added := len(ws.sched.Sections()) - before
		result = &models.ScheduleResult{
			Message:  loadMessage(added, len(ws.sched.Warnings())),
			Applied:  added > 0 || req.Mode == dto.LoadModeReplace,
			Schedule: ws.sched.View(),
		}
		return nil
	})
	s.recordOperation(ctx, "load", result, err)
	return result, err
}

func loadMessage(added, warnings int) string {
	msg := "Loaded " + pluralize(added, "section")
	if warnings > 0 {
		msg += " with " + pluralize(warnings, "warning")
	}
	return msg + "."
}

func pluralize(n int, noun string) string {
	if n != 1 {
		noun += "s"
	}
	return fmt.Sprintf("%d %s", n, noun)
}

// Export renders the session schedule in the requested format.
func (s *PlannerService) Export(ctx context.Context, sessionID string, format models.ExportFormat) (*models.ExportFile, error) {
	var file *models.ExportFile
	err := s.withSession(ctx, sessionID, func(ws *workspace) error {
		out, err := s.exporter.Render(ws.sched, format)
		if err != nil {
			return err
		}
		file = out
		return nil
	})
	return file, err
}

func (s *PlannerService) recordOperation(ctx context.Context, op string, result *models.ScheduleResult, err error) {
	outcome := "rejected"
	switch {
	case err != nil:
		outcome = "error"
		logger.WithRequest(ctx, s.logger).Warn("schedule operation failed", zap.String("operation", op), zap.Error(err))
	case result != nil && result.Applied:
		outcome = "applied"
	}
	s.metrics.RecordScheduleOperation(op, outcome)
}

// sessionLocks hands out one mutex per active session id.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: map[string]*sessionLock{}}
}

func (l *sessionLocks) lock(id string) func() {
	l.mu.Lock()
	entry, ok := l.locks[id]
	if !ok {
		entry = &sessionLock{}
		l.locks[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
