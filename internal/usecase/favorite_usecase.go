package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/transit-favorites/internal/domain"
	"github.com/transit-favorites/internal/domain/repository"
	apperrors "github.com/transit-favorites/internal/pkg/errors"
	"github.com/transit-favorites/internal/pkg/hub"
	"github.com/transit-favorites/internal/pkg/validator"
)

// WriteResult - итог записи в слот
type WriteResult struct {
	UID    int64             `json:"uid,omitempty"`
	Change domain.ChangeType `json:"change"`
}

// FavoriteUseCase - хранилище избранных мест (дом/работа) по сетям.
// В каждом слоте (kind, network) не больше одной записи.
type FavoriteUseCase struct {
	favoriteRepo repository.FavoriteRepository
	cacheRepo    repository.CacheRepository  // может быть nil
	streamRepo   repository.StreamRepository // может быть nil
	hub          *hub.Hub
	locks        *slotLocks
	logger       *zap.Logger
	cacheTTL     time.Duration
	source       string // метка этого экземпляра в ленте изменений
}

// NewFavoriteUseCase - создание нового FavoriteUseCase
func NewFavoriteUseCase(
	favoriteRepo repository.FavoriteRepository,
	cacheRepo repository.CacheRepository,
	streamRepo repository.StreamRepository,
	h *hub.Hub,
	logger *zap.Logger,
	cacheTTL time.Duration,
) *FavoriteUseCase {
	if h == nil {
		h = hub.NewHub(logger)
	}
	return &FavoriteUseCase{
		favoriteRepo: favoriteRepo,
		cacheRepo:    cacheRepo,
		streamRepo:   streamRepo,
		hub:          h,
		locks:        newSlotLocks(),
		logger:       logger,
		cacheTTL:     cacheTTL,
		source:       uuid.NewString(),
	}
}

// Source - метка экземпляра в событиях stream:favorite:changed
func (uc *FavoriteUseCase) Source() string {
	return uc.source
}

// GetFavorite - текущее значение слота или nil
func (uc *FavoriteUseCase) GetFavorite(ctx context.Context, kind domain.FavoriteKind, network domain.NetworkID) (*domain.FavoriteLocation, error) {
	slot, err := slotKey(kind, network)
	if err != nil {
		return nil, err
	}

	// Проверка кеша
	if uc.cacheRepo != nil {
		fav, found, err := uc.cacheRepo.GetFavorite(ctx, slot)
		if err != nil {
			uc.logger.Warn("Favorite cache read failed", zap.String("slot", slot.String()), zap.Error(err))
		} else if found {
			return fav, nil
		}

		// промах: кеш заполняется с версией прочитанной строки, поэтому
		// запись другого процесса, успевшая между чтением и заполнением,
		// не будет затёрта старым значением
		fav, version, err := uc.snapshot(ctx, slot)
		if err != nil {
			return nil, err
		}
		uc.cacheSet(ctx, slot, fav, version)
		return fav, nil
	}

	return uc.read(ctx, slot)
}

// Watch подписывает на слот. Первое значение - текущее (nil, если пусто),
// затем каждое изменение по порядку. Подписка закрывается через Close или ctx.
func (uc *FavoriteUseCase) Watch(ctx context.Context, kind domain.FavoriteKind, network domain.NetworkID) (*hub.Subscription, error) {
	slot, err := slotKey(kind, network)
	if err != nil {
		return nil, err
	}

	unlock := uc.locks.lock(slot)
	current, version, err := uc.snapshot(ctx, slot)
	if err != nil {
		unlock()
		return nil, err
	}
	sub := uc.hub.Subscribe(slot, current, version)
	unlock()

	go func() {
		select {
		case <-ctx.Done():
			sub.Close()
		case <-sub.Done():
		}
	}()

	return sub, nil
}

// AddFavorite записывает место в слот (вставка или полная замена) и возвращает uid
func (uc *FavoriteUseCase) AddFavorite(ctx context.Context, fav domain.FavoriteLocation) (int64, error) {
	res, err := uc.PutFavorite(ctx, fav)
	if err != nil {
		return 0, err
	}
	return res.UID, nil
}

// PutFavorite - AddFavorite с типом изменения
func (uc *FavoriteUseCase) PutFavorite(ctx context.Context, fav domain.FavoriteLocation) (*WriteResult, error) {
	if err := validator.ValidateAppError(fav); err != nil {
		return nil, err
	}
	if err := validateLocation(fav.Location); err != nil {
		return nil, err
	}

	slot := fav.Slot()
	stored := fav.Clone()
	stored.UID = 0

	unlock := uc.locks.lock(slot)
	defer unlock()

	w, err := uc.favoriteRepo.Upsert(ctx, stored)
	if err != nil {
		uc.logger.Error("Failed to store favorite",
			zap.String("slot", slot.String()),
			zap.Error(err))
		return nil, apperrors.NewPersistenceError("upsert", err)
	}
	stored.UID = w.UID

	change, err := slotChange(ctx, w.Existed, SlotEventPut)
	if err != nil {
		return nil, apperrors.ErrInternalServer.Wrap(err)
	}

	uc.cacheSet(ctx, slot, stored, w.Version)
	uc.hub.Publish(slot, stored, w.Version)
	uc.publishChange(ctx, slot, change, stored, w.Version)

	uc.logger.Info("Favorite stored",
		zap.String("slot", slot.String()),
		zap.Int64("uid", w.UID),
		zap.Int64("version", w.Version),
		zap.String("change", string(change)),
		zap.String("type", string(stored.Type)))

	return &WriteResult{UID: w.UID, Change: change}, nil
}

// CountFavorites - число записей в слоте (0 или 1)
func (uc *FavoriteUseCase) CountFavorites(ctx context.Context, kind domain.FavoriteKind, network domain.NetworkID) (int, error) {
	slot, err := slotKey(kind, network)
	if err != nil {
		return 0, err
	}

	count, err := uc.favoriteRepo.Count(ctx, slot.Kind, slot.NetworkID)
	if err != nil {
		uc.logger.Error("Failed to count favorites", zap.String("slot", slot.String()), zap.Error(err))
		return 0, apperrors.NewPersistenceError("count", err)
	}
	return count, nil
}

// RemoveFavorite очищает слот. Удаление пустого слота - не ошибка.
func (uc *FavoriteUseCase) RemoveFavorite(ctx context.Context, kind domain.FavoriteKind, network domain.NetworkID) error {
	_, err := uc.DeleteFavorite(ctx, kind, network)
	return err
}

// DeleteFavorite - RemoveFavorite с типом изменения (REMOVED или NOOP)
func (uc *FavoriteUseCase) DeleteFavorite(ctx context.Context, kind domain.FavoriteKind, network domain.NetworkID) (domain.ChangeType, error) {
	slot, err := slotKey(kind, network)
	if err != nil {
		return "", err
	}

	unlock := uc.locks.lock(slot)
	defer unlock()

	w, err := uc.favoriteRepo.Delete(ctx, slot.Kind, slot.NetworkID)
	if err != nil {
		uc.logger.Error("Failed to remove favorite",
			zap.String("slot", slot.String()),
			zap.Error(err))
		return "", apperrors.NewPersistenceError("delete", err)
	}

	change, err := slotChange(ctx, w.Existed, SlotEventRemove)
	if err != nil {
		return "", apperrors.ErrInternalServer.Wrap(err)
	}
	if change == domain.ChangeNoop {
		return change, nil
	}

	uc.cacheSet(ctx, slot, nil, w.Version)
	uc.hub.Publish(slot, nil, w.Version)
	uc.publishChange(ctx, slot, change, nil, w.Version)

	uc.logger.Info("Favorite removed", zap.String("slot", slot.String()))

	return change, nil
}

// ListFavorites - все заполненные слоты сети
func (uc *FavoriteUseCase) ListFavorites(ctx context.Context, network domain.NetworkID) ([]*domain.FavoriteLocation, error) {
	if !network.IsKnown() {
		return nil, apperrors.NewValidationError("network_id", "unknown network")
	}

	favorites, err := uc.favoriteRepo.ListByNetwork(ctx, network)
	if err != nil {
		uc.logger.Error("Failed to list favorites", zap.String("network_id", string(network)), zap.Error(err))
		return nil, apperrors.NewPersistenceError("list", err)
	}
	return favorites, nil
}

// ApplyRemoteChange доставляет наблюдателям изменение, записанное другим
// экземпляром (например, воркером синхронизации). Хранилище и общий кеш
// уже обновлены записавшей стороной. События, не новее того, что
// наблюдатель уже получил, отбрасываются.
func (uc *FavoriteUseCase) ApplyRemoteChange(ctx context.Context, event *domain.FavoriteChangedEvent) error {
	if event.Source == uc.source || event.Change == domain.ChangeNoop {
		return nil
	}

	slot, err := slotKey(event.Kind, event.NetworkID)
	if err != nil {
		return err
	}

	var value *domain.FavoriteLocation
	switch event.Change {
	case domain.ChangeInserted, domain.ChangeReplaced:
		if event.Favorite == nil {
			return apperrors.NewValidationError("favorite", "missing value for "+string(event.Change))
		}
		value = event.Favorite
	case domain.ChangeRemoved:
	default:
		return apperrors.NewValidationError("change", "unknown change type")
	}
	if event.Version <= 0 {
		return apperrors.NewValidationError("version", "missing slot version")
	}

	unlock := uc.locks.lock(slot)
	defer unlock()

	delivered := uc.hub.Publish(slot, value, event.Version)

	uc.logger.Debug("Remote favorite change delivered",
		zap.String("slot", slot.String()),
		zap.String("change", string(event.Change)),
		zap.Int64("version", event.Version),
		zap.String("source", event.Source),
		zap.Int("delivered", delivered),
		zap.Int("watchers", uc.hub.Watchers(slot)))

	return nil
}

func (uc *FavoriteUseCase) read(ctx context.Context, slot domain.SlotKey) (*domain.FavoriteLocation, error) {
	fav, err := uc.favoriteRepo.Get(ctx, slot.Kind, slot.NetworkID)
	if err != nil {
		uc.logger.Error("Failed to read favorite", zap.String("slot", slot.String()), zap.Error(err))
		return nil, apperrors.NewPersistenceError("get", err)
	}
	return fav, nil
}

func (uc *FavoriteUseCase) snapshot(ctx context.Context, slot domain.SlotKey) (*domain.FavoriteLocation, int64, error) {
	fav, version, err := uc.favoriteRepo.Snapshot(ctx, slot.Kind, slot.NetworkID)
	if err != nil {
		uc.logger.Error("Failed to read favorite", zap.String("slot", slot.String()), zap.Error(err))
		return nil, 0, apperrors.NewPersistenceError("get", err)
	}
	return fav, version, nil
}

// cacheSet кладёт в кеш значение версии version. Более новую версию в кеше
// не трогает. Если записать не вышло, ключ удаляется, чтобы читатели не
// увидели старое значение.
func (uc *FavoriteUseCase) cacheSet(ctx context.Context, slot domain.SlotKey, fav *domain.FavoriteLocation, version int64) {
	if uc.cacheRepo == nil {
		return
	}
	if _, err := uc.cacheRepo.SetFavorite(ctx, slot, fav, version, uc.cacheTTL); err != nil {
		uc.logger.Warn("Failed to cache favorite", zap.String("slot", slot.String()), zap.Error(err))
		if err := uc.cacheRepo.InvalidateFavorite(ctx, slot); err != nil {
			uc.logger.Error("Failed to invalidate favorite cache", zap.String("slot", slot.String()), zap.Error(err))
		}
	}
}

func (uc *FavoriteUseCase) publishChange(ctx context.Context, slot domain.SlotKey, change domain.ChangeType, fav *domain.FavoriteLocation, version int64) {
	if uc.streamRepo == nil {
		return
	}

	event := &domain.FavoriteChangedEvent{
		EventID:    uuid.New(),
		Change:     change,
		Kind:       slot.Kind,
		NetworkID:  slot.NetworkID,
		Favorite:   fav,
		Version:    version,
		OccurredAt: time.Now().UTC(),
		Source:     uc.source,
	}
	if err := uc.streamRepo.PublishToStream(ctx, domain.StreamFavoriteChanged, event); err != nil {
		uc.logger.Warn("Failed to publish favorite change",
			zap.String("slot", slot.String()),
			zap.String("change", string(change)),
			zap.Error(err))
	}
}

func slotKey(kind domain.FavoriteKind, network domain.NetworkID) (domain.SlotKey, error) {
	if !kind.IsValid() {
		return domain.SlotKey{}, apperrors.NewValidationError("kind", "unknown favorite kind")
	}
	if !network.IsKnown() {
		return domain.SlotKey{}, apperrors.NewValidationError("network_id", "unknown network")
	}
	return domain.SlotKey{Kind: kind, NetworkID: network}, nil
}
