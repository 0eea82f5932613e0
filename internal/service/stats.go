package service

import (
	"context"

	"github.com/Skotchmaster/general_store/internal/repo"
)

type StatsService struct {
	Repo *repo.GormRepo
}

func NewStatsService(r *repo.GormRepo) *StatsService {
	return &StatsService{Repo: r}
}

func (s *StatsService) Dashboard(ctx context.Context) (*repo.DashboardStats, error) {
	st, err := s.Repo.DashboardStats(ctx)
	if err != nil {
		return nil, repoErr(err, "stats")
	}
	return st, nil
}
