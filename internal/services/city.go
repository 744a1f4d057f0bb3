package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/weatherbook/webapp/internal/weather"
	"github.com/weatherbook/webapp/types"
	"go.uber.org/zap"
)

// ErrNotOwner is returned when a user tries to refresh or remove a city
// tracked by somebody else.
var ErrNotOwner = errors.New("city belongs to another user")

// CityRepository defines persistence operations for tracked cities.
type CityRepository interface {
	ListByUser(ctx context.Context, userID int) ([]types.City, error)
	Get(ctx context.Context, id int) (types.City, error)
	Create(ctx context.Context, city types.City) (types.City, error)
	UpdateSnapshot(ctx context.Context, id int, temperature, icon, description string, fetchedAt time.Time) error
	Delete(ctx context.Context, id int) error
}

// WeatherFetcher fetches a live weather snapshot by city name.
type WeatherFetcher interface {
	FetchByCityName(ctx context.Context, name string) (weather.Snapshot, error)
}

// CityService encapsulates the tracked-city use-cases.
type CityService struct {
	repo    CityRepository
	weather WeatherFetcher
	logger  *zap.Logger
}

func NewCityService(repo CityRepository, fetcher WeatherFetcher, logger *zap.Logger) *CityService {
	return &CityService{repo: repo, weather: fetcher, logger: logger}
}

func (s *CityService) List(ctx context.Context, userID int) ([]types.City, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Add fetches live weather for the named city and inserts it into the
// user's list. Duplicates are rejected by the storage-level unique
// constraint, so concurrent adds of the same name leave exactly one row.
func (s *CityService) Add(ctx context.Context, userID int, name string) (types.City, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.City{}, ErrMissingFields
	}

	snapshot, err := s.weather.FetchByCityName(ctx, name)
	if err != nil {
		return types.City{}, err
	}

	city, err := s.repo.Create(ctx, types.City{
		Name:        name,
		Temperature: snapshot.Temperature,
		Icon:        snapshot.Icon,
		Description: snapshot.Description,
		FetchedAt:   time.Now(),
		UserID:      userID,
	})
	if err != nil {
		return types.City{}, err
	}

	s.logger.Info("city added", zap.Int("user_id", userID), zap.String("city", name))
	return city, nil
}

// Refresh re-fetches the weather for one tracked city and overwrites its
// snapshot in place. The requesting user must own the row.
func (s *CityService) Refresh(ctx context.Context, userID, cityID int) error {
	city, err := s.ownedCity(ctx, userID, cityID)
	if err != nil {
		return err
	}

	snapshot, err := s.weather.FetchByCityName(ctx, city.Name)
	if err != nil {
		return err
	}

	return s.repo.UpdateSnapshot(ctx, city.ID, snapshot.Temperature, snapshot.Icon, snapshot.Description, time.Now())
}

// Remove deletes one tracked city. The requesting user must own the row.
func (s *CityService) Remove(ctx context.Context, userID, cityID int) error {
	city, err := s.ownedCity(ctx, userID, cityID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, city.ID); err != nil {
		return err
	}

	s.logger.Info("city removed", zap.Int("user_id", userID), zap.String("city", city.Name))
	return nil
}

func (s *CityService) ownedCity(ctx context.Context, userID, cityID int) (types.City, error) {
	city, err := s.repo.Get(ctx, cityID)
	if err != nil {
		return types.City{}, err
	}
	if city.UserID != userID {
		return types.City{}, ErrNotOwner
	}
	return city, nil
}
