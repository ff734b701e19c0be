package usecase_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/transit-favorites/internal/domain"
	"github.com/transit-favorites/internal/domain/repository"
)

// MockFavoriteRepository - mock for repository.FavoriteRepository
type MockFavoriteRepository struct {
	mock.Mock
}

func (m *MockFavoriteRepository) Get(ctx context.Context, kind domain.FavoriteKind, network domain.NetworkID) (*domain.FavoriteLocation, error) {
	args := m.Called(ctx, kind, network)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FavoriteLocation), args.Error(1)
}

func (m *MockFavoriteRepository) Snapshot(ctx context.Context, kind domain.FavoriteKind, network domain.NetworkID) (*domain.FavoriteLocation, int64, error) {
	args := m.Called(ctx, kind, network)
	var fav *domain.FavoriteLocation
	if args.Get(0) != nil {
		fav = args.Get(0).(*domain.FavoriteLocation)
	}
	return fav, args.Get(1).(int64), args.Error(2)
}

func (m *MockFavoriteRepository) Upsert(ctx context.Context, fav *domain.FavoriteLocation) (repository.SlotWrite, error) {
	args := m.Called(ctx, fav)
	return args.Get(0).(repository.SlotWrite), args.Error(1)
}

func (m *MockFavoriteRepository) Count(ctx context.Context, kind domain.FavoriteKind, network domain.NetworkID) (int, error) {
	args := m.Called(ctx, kind, network)
	return args.Int(0), args.Error(1)
}

func (m *MockFavoriteRepository) Delete(ctx context.Context, kind domain.FavoriteKind, network domain.NetworkID) (repository.SlotWrite, error) {
	args := m.Called(ctx, kind, network)
	return args.Get(0).(repository.SlotWrite), args.Error(1)
}

func (m *MockFavoriteRepository) ListByNetwork(ctx context.Context, network domain.NetworkID) ([]*domain.FavoriteLocation, error) {
	args := m.Called(ctx, network)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.FavoriteLocation), args.Error(1)
}

// MockCacheRepository - mock for repository.CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) GetFavorite(ctx context.Context, slot domain.SlotKey) (*domain.FavoriteLocation, bool, error) {
	args := m.Called(ctx, slot)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.FavoriteLocation), args.Bool(1), args.Error(2)
}

func (m *MockCacheRepository) SetFavorite(ctx context.Context, slot domain.SlotKey, fav *domain.FavoriteLocation, version int64, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, slot, fav, version, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheRepository) InvalidateFavorite(ctx context.Context, slot domain.SlotKey) error {
	args := m.Called(ctx, slot)
	return args.Error(0)
}

// MockStreamRepository - mock for repository.StreamRepository
type MockStreamRepository struct {
	mock.Mock
}

func (m *MockStreamRepository) ConsumeBatch(ctx context.Context, stream, group, consumer string, count int) ([]domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StreamMessage), args.Error(1)
}

func (m *MockStreamRepository) ConsumePending(ctx context.Context, stream, group, consumer string, count int) ([]domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StreamMessage), args.Error(1)
}

func (m *MockStreamRepository) AckMessages(ctx context.Context, stream, group string, messageIDs []string) error {
	args := m.Called(ctx, stream, group, messageIDs)
	return args.Error(0)
}

func (m *MockStreamRepository) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	args := m.Called(ctx, stream, group)
	return args.Error(0)
}

func (m *MockStreamRepository) ReadStream(ctx context.Context, stream, lastID string, count int) ([]domain.StreamMessage, error) {
	args := m.Called(ctx, stream, lastID, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StreamMessage), args.Error(1)
}

func (m *MockStreamRepository) StreamTail(ctx context.Context, stream string) (string, error) {
	args := m.Called(ctx, stream)
	return args.String(0), args.Error(1)
}

func (m *MockStreamRepository) PublishToStream(ctx context.Context, stream string, data interface{}) error {
	args := m.Called(ctx, stream, data)
	return args.Error(0)
}

// MockSavedLocationRepository - mock for repository.SavedLocationRepository
type MockSavedLocationRepository struct {
	mock.Mock
}

func (m *MockSavedLocationRepository) FindByContent(ctx context.Context, network domain.NetworkID, loc domain.Location) (*domain.SavedLocation, error) {
	args := m.Called(ctx, network, loc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SavedLocation), args.Error(1)
}

func (m *MockSavedLocationRepository) Record(ctx context.Context, network domain.NetworkID, loc domain.Location, role domain.UsageRole) (*domain.SavedLocation, bool, error) {
	args := m.Called(ctx, network, loc, role)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.SavedLocation), args.Bool(1), args.Error(2)
}

func (m *MockSavedLocationRepository) ListByNetwork(ctx context.Context, network domain.NetworkID, role domain.UsageRole) ([]*domain.SavedLocation, error) {
	args := m.Called(ctx, network, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SavedLocation), args.Error(1)
}

func (m *MockSavedLocationRepository) Delete(ctx context.Context, network domain.NetworkID, uid int64) (bool, error) {
	args := m.Called(ctx, network, uid)
	return args.Bool(0), args.Error(1)
}
