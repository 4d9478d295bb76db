package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ortografia-app/ortografia-api/internal/models"
	appErrors "github.com/ortografia-app/ortografia-api/pkg/errors"
)

type dashboardRepository interface {
	TeacherDashboard(ctx context.Context, teacherID string) (*models.TeacherDashboard, error)
}

// DashboardService serves the teacher landing page numbers, cached briefly
// since they are recomputed from several aggregates.
type DashboardService struct {
	repo     dashboardRepository
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewDashboardService constructs DashboardService.
func NewDashboardService(repo dashboardRepository, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *DashboardService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{repo: repo, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// Teacher returns the teacher dashboard, indicating whether the payload came
// from cache.
func (s *DashboardService) Teacher(ctx context.Context, teacherID string) (*models.TeacherDashboard, bool, error) {
	if teacherID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "teacherId is required")
	}
	cacheKey := fmt.Sprintf("dash:teacher:%s", teacherID)

	if s.cache != nil {
		var cached models.TeacherDashboard
		hit, err := s.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			s.logger.Warn("dashboard cache read failed", zap.String("key", cacheKey), zap.Error(err))
		} else if hit {
			return &cached, true, nil
		}
	}

	dashboard, err := s.repo.TeacherDashboard(ctx, teacherID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build dashboard")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, dashboard, s.cacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return dashboard, false, nil
}

// Invalidate drops the cached dashboard for a teacher after a change that
// affects its numbers.
func (s *DashboardService) Invalidate(ctx context.Context, teacherID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("dash:teacher:%s", teacherID)); err != nil {
		s.logger.Warn("dashboard cache invalidate failed", zap.String("teacher_id", teacherID), zap.Error(err))
	}
}
