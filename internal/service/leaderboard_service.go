package service

import (
	"alcyxob/flighttrack/internal/domain"
	"alcyxob/flighttrack/internal/repository"
	"context"
	"fmt"
	"math"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LeaderboardEntry is one ranked member.
type LeaderboardEntry struct {
	Rank            int                `json:"rank"`
	MemberID        primitive.ObjectID `json:"memberId"`
	DisplayName     string             `json:"displayName"`
	Flight          domain.Flight      `json:"flight"`
	Score           int                `json:"score"`
	ExerciseMinutes int                `json:"exerciseMinutes"`
	DistanceRun     float64            `json:"distanceRun"`
	CaloriesBurned  int                `json:"caloriesBurned"`
}

type LeaderboardService interface {
	// Rank orders members by activity score; an empty flight ranks everyone.
	Rank(ctx context.Context, flight domain.Flight) ([]LeaderboardEntry, error)
}

type leaderboardService struct {
	memberRepo repository.MemberRepository
}

func NewLeaderboardService(memberRepo repository.MemberRepository) LeaderboardService {
	return &leaderboardService{memberRepo: memberRepo}
}

// ActivityScore weighs a minute, a tenth of a mile and ten calories equally.
func ActivityScore(minutes int, miles float64, calories int) int {
	return minutes + int(math.Round(miles*10)) + int(math.Round(float64(calories)/10))
}

func (s *leaderboardService) Rank(ctx context.Context, flight domain.Flight) ([]LeaderboardEntry, error) {
	if flight != "" && !flight.Valid() {
		return nil, fmt.Errorf("%w: unknown flight %q", ErrInvalidInput, flight)
	}
	members, err := s.memberRepo.List(ctx, repository.MemberFilter{Flight: flight})
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(members))
	for i := range members {
		m := &members[i]
		entries = append(entries, LeaderboardEntry{
			MemberID:        m.ID,
			DisplayName:     m.DisplayName(),
			Flight:          m.Flight,
			Score:           ActivityScore(m.ExerciseMinutes, m.DistanceRun, m.CaloriesBurned),
			ExerciseMinutes: m.ExerciseMinutes,
			DistanceRun:     m.DistanceRun,
			CaloriesBurned:  m.CaloriesBurned,
		})
	}
	lastNames := make(map[primitive.ObjectID]string, len(members))
	for _, m := range members {
		lastNames[m.ID] = m.LastName
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return lastNames[entries[i].MemberID] < lastNames[entries[j].MemberID]
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}
