package directory

import (
	"context"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/repository"
)

type DirectoryUseCase interface {
	ListPilots(ctx context.Context) ([]domain.Pilot, error)
	ListAircraft(ctx context.Context) ([]domain.Aircraft, error)
}

type DirectoryService struct {
	pilots   repository.PilotRepository
	aircraft repository.AircraftRepository
}

func NewDirectoryService(pilots repository.PilotRepository, aircraft repository.AircraftRepository) *DirectoryService {
	return &DirectoryService{pilots: pilots, aircraft: aircraft}
}

func (s *DirectoryService) ListPilots(ctx context.Context) ([]domain.Pilot, error) {
	pilots, err := s.pilots.List(ctx)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load pilots.", err)
	}
	return pilots, nil
}

func (s *DirectoryService) ListAircraft(ctx context.Context) ([]domain.Aircraft, error) {
	aircraft, err := s.aircraft.List(ctx)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load aircraft.", err)
	}
	return aircraft, nil
}

var _ DirectoryUseCase = (*DirectoryService)(nil)
