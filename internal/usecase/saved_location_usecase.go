package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/transit-favorites/internal/domain"
	"github.com/transit-favorites/internal/domain/repository"
	apperrors "github.com/transit-favorites/internal/pkg/errors"
)

// RecordResult - итог учёта использования места
type RecordResult struct {
	Saved   *domain.SavedLocation
	Created bool
}

// SavedLocationUseCase - список мест, уже использованных в поиске,
// со счётчиками по ролям FROM/VIA/TO
type SavedLocationUseCase struct {
	savedRepo repository.SavedLocationRepository
	logger    *zap.Logger
}

// NewSavedLocationUseCase - создание нового SavedLocationUseCase
func NewSavedLocationUseCase(savedRepo repository.SavedLocationRepository, logger *zap.Logger) *SavedLocationUseCase {
	return &SavedLocationUseCase{
		savedRepo: savedRepo,
		logger:    logger,
	}
}

// RecordUse учитывает использование места в роли role
func (uc *SavedLocationUseCase) RecordUse(ctx context.Context, network domain.NetworkID, loc domain.Location, role domain.UsageRole) (*RecordResult, error) {
	if err := validateSavedInput(network, role, true); err != nil {
		return nil, err
	}
	if err := validateLocation(loc); err != nil {
		return nil, err
	}
	if !loc.CanBeSaved() {
		return nil, apperrors.NewValidationError("type", "coordinates are not saved")
	}

	saved, created, err := uc.savedRepo.Record(ctx, network, loc, role)
	if err != nil {
		uc.logger.Error("Failed to record saved location",
			zap.String("network_id", string(network)),
			zap.String("role", string(role)),
			zap.Error(err))
		return nil, apperrors.NewPersistenceError("record", err)
	}

	uc.logger.Info("Saved location used",
		zap.String("network_id", string(network)),
		zap.Int64("uid", saved.UID),
		zap.String("role", string(role)),
		zap.Int("count", saved.Count(role)),
		zap.Bool("created", created))

	return &RecordResult{Saved: saved, Created: created}, nil
}

// FindSaved ищет место с тем же содержимым; ErrNotFound, если его нет
func (uc *SavedLocationUseCase) FindSaved(ctx context.Context, network domain.NetworkID, loc domain.Location) (*domain.SavedLocation, error) {
	if err := validateSavedInput(network, "", false); err != nil {
		return nil, err
	}
	if err := validateLocation(loc); err != nil {
		return nil, err
	}

	saved, err := uc.savedRepo.FindByContent(ctx, network, loc)
	if err != nil {
		uc.logger.Error("Failed to find saved location", zap.String("network_id", string(network)), zap.Error(err))
		return nil, apperrors.NewPersistenceError("find", err)
	}
	if saved == nil {
		return nil, apperrors.NewNotFoundError("saved_location", string(loc.Type))
	}
	return saved, nil
}

// ListSaved - места сети, частые в роли role первыми; пустая роль - по сумме
func (uc *SavedLocationUseCase) ListSaved(ctx context.Context, network domain.NetworkID, role domain.UsageRole) ([]*domain.SavedLocation, error) {
	if err := validateSavedInput(network, role, false); err != nil {
		return nil, err
	}

	list, err := uc.savedRepo.ListByNetwork(ctx, network, role)
	if err != nil {
		uc.logger.Error("Failed to list saved locations", zap.String("network_id", string(network)), zap.Error(err))
		return nil, apperrors.NewPersistenceError("list", err)
	}
	return list, nil
}

// RemoveSaved удаляет место из списка сети
func (uc *SavedLocationUseCase) RemoveSaved(ctx context.Context, network domain.NetworkID, uid int64) error {
	if err := validateSavedInput(network, "", false); err != nil {
		return err
	}
	if uid <= 0 {
		return apperrors.NewValidationError("uid", "must be positive")
	}

	removed, err := uc.savedRepo.Delete(ctx, network, uid)
	if err != nil {
		uc.logger.Error("Failed to remove saved location", zap.Int64("uid", uid), zap.Error(err))
		return apperrors.NewPersistenceError("delete", err)
	}
	if !removed {
		return apperrors.NewNotFoundError("saved_location", uid)
	}

	uc.logger.Info("Saved location removed", zap.String("network_id", string(network)), zap.Int64("uid", uid))
	return nil
}

func validateSavedInput(network domain.NetworkID, role domain.UsageRole, roleRequired bool) error {
	if !network.IsKnown() {
		return apperrors.NewValidationError("network_id", "unknown network")
	}
	if role == "" && !roleRequired {
		return nil
	}
	if !role.IsValid() {
		return apperrors.NewValidationError("role", "unknown usage role")
	}
	return nil
}

func validateLocation(loc domain.Location) error {
	err := loc.Validate()
	if err == nil {
		return nil
	}
	if locErr, ok := err.(*domain.LocationError); ok {
		return apperrors.NewValidationError(locErr.Field, locErr.Reason)
	}
	return apperrors.NewValidationError("location", err.Error())
}
