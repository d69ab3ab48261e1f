package service

import (
	"context"

	"github.com/android254/droidconke-feeds/internal/model"
	"github.com/android254/droidconke-feeds/internal/network"
	"github.com/android254/droidconke-feeds/internal/repository"
)

type ConferenceServiceInterface interface {
	GetSponsors(ctx context.Context) (*model.Listing[model.SponsorsData], error)
	GetSessions(ctx context.Context) (*model.Listing[model.SessionData], error)
	GetSpeakers(ctx context.Context) (*model.Listing[model.SpeakerData], error)
}

type ConferenceService struct {
	ConferenceRepo repository.ConferenceRepository
}

// NewConferenceService uses repo when given, otherwise a repository over
// the configured DroidconKE API.
func NewConferenceService(repo ...repository.ConferenceRepository) *ConferenceService {
	var conferenceRepo repository.ConferenceRepository
	if len(repo) > 0 && repo[0] != nil {
		conferenceRepo = repo[0]
	} else {
		client := network.NewHTTPClientFactory(network.NewTokenProviderFromConfig()).Create(nil)
		conferenceRepo = repository.NewConferenceRepository(client)
	}
	return &ConferenceService{
		ConferenceRepo: conferenceRepo,
	}
}

func (s *ConferenceService) GetSponsors(ctx context.Context) (*model.Listing[model.SponsorsData], error) {
	return s.ConferenceRepo.GetSponsors(ctx)
}

func (s *ConferenceService) GetSessions(ctx context.Context) (*model.Listing[model.SessionData], error) {
	return s.ConferenceRepo.GetSessions(ctx)
}

func (s *ConferenceService) GetSpeakers(ctx context.Context) (*model.Listing[model.SpeakerData], error) {
	return s.ConferenceRepo.GetSpeakers(ctx)
}
