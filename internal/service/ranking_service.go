package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/evalstar-go-api/internal/dto"
	"github.com/noah-isme/evalstar-go-api/internal/models"
	"github.com/noah-isme/evalstar-go-api/internal/observability"
	"github.com/noah-isme/evalstar-go-api/internal/repository"
	"github.com/noah-isme/evalstar-go-api/internal/scoring"
)

// RankingService ranks a student within their own group.
type RankingService interface {
	RankingInvalidator
	ClassRanking(ctx context.Context, studentID uint) (dto.RankingResponse, error)
}

type rankingService struct {
	students repository.StudentRepository
	cache    *redis.Client
	ttl      time.Duration
	logger   zerolog.Logger
	tracer   trace.Tracer
}

// rankingSnapshot is the cached roster of a group.
type rankingSnapshot struct {
	Label    string          `json:"label"`
	Students []rankedStudent `json:"students"`
}

type rankedStudent struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	TotalStars int    `json:"total_stars"`
}

// NewRankingService constructs the ranking service. A nil cache disables caching.
func NewRankingService(students repository.StudentRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) RankingService {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &rankingService{
		students: students,
		cache:    cache,
		ttl:      ttl,
		logger:   logger.With().Str("component", "ranking_service").Logger(),
		tracer:   otel.Tracer("github.com/noah-isme/evalstar-go-api/internal/service/ranking"),
	}
}

func (s *rankingService) ClassRanking(ctx context.Context, studentID uint) (dto.RankingResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ranking.class", trace.WithAttributes(attribute.Int64("student.id", int64(studentID))))
	defer span.End()

	student, err := loadStudent(ctx, s.students, studentID)
	if err != nil {
		return dto.RankingResponse{}, err
	}

	generation := s.generation(ctx, student.GroupID)
	snapshot, hit := s.fetchCache(ctx, student.GroupID, generation)
	if hit && !snapshot.agrees(student) {
		hit = false
		observability.RankingCacheRequests().WithLabelValues("stale").Inc()
	}
	if hit {
		observability.RankingCacheRequests().WithLabelValues("hit").Inc()
	} else {
		roster, err := s.students.ListByGroup(ctx, student.GroupID)
		if err != nil {
			observability.RankingCacheRequests().WithLabelValues("error").Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, "list_group_failed")
			return dto.RankingResponse{}, err
		}
		snapshot = newRankingSnapshot(student.Group.Label(), roster)
		s.writeCache(ctx, student.GroupID, generation, snapshot)
		observability.RankingCacheRequests().WithLabelValues("miss").Inc()
	}

	roster := make([]models.Student, 0, len(snapshot.Students))
	for _, item := range snapshot.Students {
		roster = append(roster, models.Student{ID: item.ID, Name: item.Name, TotalStars: item.TotalStars, GroupID: student.GroupID})
	}
	ranking := scoring.Rank(roster, studentID)

	response := dto.RankingResponse{
		Group:         dto.RankingGroup{ID: student.GroupID, Label: snapshot.Label},
		Rank:          ranking.Rank,
		TotalStudents: ranking.Total,
		TotalStars:    student.TotalStars,
		Students:      make([]dto.RankingEntry, 0, len(ranking.Ordered)),
		CacheHit:      hit,
	}
	for i, item := range ranking.Ordered {
		response.Students = append(response.Students, dto.RankingEntry{
			Rank:       i + 1,
			StudentID:  item.ID,
			Name:       item.Name,
			TotalStars: item.TotalStars,
			IsCurrent:  item.ID == studentID,
		})
	}

	span.SetAttributes(attribute.Int("ranking.rank", ranking.Rank), attribute.Bool("ranking.cache_hit", hit))
	return response, nil
}

// Invalidate bumps the group's cache generation. A snapshot computed from a roster read before the
// bump is written under the previous generation and never served again.
func (s *rankingService) Invalidate(ctx context.Context, groupID uint) error {
	if s.cache == nil {
		return nil
	}
	generation, err := s.cache.Incr(ctx, rankingGenerationKey(groupID)).Result()
	if err != nil {
		return err
	}
	return s.cache.Del(ctx, rankingCacheKey(groupID, generation-1)).Err()
}

// generation must be read before the roster so a concurrent Invalidate always wins.
func (s *rankingService) generation(ctx context.Context, groupID uint) int64 {
	if s.cache == nil {
		return 0
	}
	generation, err := s.cache.Get(ctx, rankingGenerationKey(groupID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		s.logger.Warn().Err(err).Uint("group_id", groupID).Msg("failed to read ranking generation")
	}
	return generation
}

func newRankingSnapshot(label string, roster []models.Student) rankingSnapshot {
	snapshot := rankingSnapshot{Label: label, Students: make([]rankedStudent, 0, len(roster))}
	for _, student := range roster {
		snapshot.Students = append(snapshot.Students, rankedStudent{
			ID:         student.ID,
			Name:       student.Name,
			TotalStars: student.TotalStars,
		})
	}
	return snapshot
}

// agrees reports whether the snapshot holds the student with their current star count.
func (r rankingSnapshot) agrees(student models.Student) bool {
	for _, item := range r.Students {
		if item.ID == student.ID {
			return item.TotalStars == student.TotalStars
		}
	}
	return false
}

func (s *rankingService) fetchCache(ctx context.Context, groupID uint, generation int64) (rankingSnapshot, bool) {
	if s.cache == nil {
		return rankingSnapshot{}, false
	}
	payload, err := s.cache.Get(ctx, rankingCacheKey(groupID, generation)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read ranking cache")
		}
		return rankingSnapshot{}, false
	}

	var snapshot rankingSnapshot
	if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
		s.logger.Warn().Err(err).Msg("failed to decode ranking cache")
		return rankingSnapshot{}, false
	}
	return snapshot, true
}

func (s *rankingService) writeCache(ctx context.Context, groupID uint, generation int64, snapshot rankingSnapshot) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode ranking cache")
		return
	}
	if err := s.cache.Set(ctx, rankingCacheKey(groupID, generation), payload, s.ttl).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to store ranking cache")
	}
}

func rankingCacheKey(groupID uint, generation int64) string {
	return fmt.Sprintf("ranking:group:%d:v%d", groupID, generation)
}

func rankingGenerationKey(groupID uint) string {
	return fmt.Sprintf("ranking:group:%d:generation", groupID)
}
