package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/transit-favorites/internal/domain"
	"github.com/transit-favorites/internal/domain/repository"
	"go.uber.org/zap"
)

const (
	favoriteColumns       = `uid, kind, network_id, type, id, lat, lon, place, name, products, updated_at`
	joinedFavoriteColumns = `f.uid, f.kind, f.network_id, f.type, f.id, f.lat, f.lon, f.place, f.name, f.products, f.updated_at`
)

const upsertFavoriteQuery = `
	INSERT INTO favorite_locations (kind, network_id, type, id, lat, lon, place, name, products, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (kind, network_id) DO UPDATE SET
		type = excluded.type,
		id = excluded.id,
		lat = excluded.lat,
		lon = excluded.lon,
		place = excluded.place,
		name = excluded.name,
		products = excluded.products,
		updated_at = excluded.updated_at
	RETURNING uid`

// favoriteRow - плоское представление строки favorite_locations
type favoriteRow struct {
	UID       int64  `db:"uid"`
	Kind      string `db:"kind"`
	NetworkID string `db:"network_id"`
	locationRow
	UpdatedAt int64 `db:"updated_at"` // unix ms
}

// versionedRow - строка слота вместе с его версией
type versionedRow struct {
	favoriteRow
	Version int64 `db:"version"`
}

type favoriteRepository struct {
	db     *DB
	logger *zap.Logger
	now    func() time.Time
}

// NewFavoriteRepository создает репозиторий избранного поверх SQL хранилища
func NewFavoriteRepository(db *DB, logger *zap.Logger) repository.FavoriteRepository {
	return &favoriteRepository{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// Get возвращает запись слота или nil
func (r *favoriteRepository) Get(ctx context.Context, kind domain.FavoriteKind, network domain.NetworkID) (*domain.FavoriteLocation, error) {
	query := r.db.Rebind(`
		SELECT ` + favoriteColumns + `
		FROM favorite_locations
		WHERE kind = ? AND network_id = ?
	`)

	var row favoriteRow
	if err := r.db.GetContext(ctx, &row, query, string(kind), string(network)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query favorite %s:%s: %w", kind, network, err)
	}

	fav, err := row.toDomain()
	if err != nil {
		return nil, fmt.Errorf("decode favorite %s:%s: %w", kind, network, err)
	}
	return fav, nil
}

// Snapshot возвращает запись слота и её версию. Версия читается до строки:
// если между запросами прошла запись, у найденной строки будет версия из
// того же запроса, что и сама строка.
func (r *favoriteRepository) Snapshot(ctx context.Context, kind domain.FavoriteKind, network domain.NetworkID) (*domain.FavoriteLocation, int64, error) {
	var version int64
	versionQuery := r.db.Rebind(`SELECT version FROM favorite_slot_versions WHERE kind = ? AND network_id = ?`)
	if err := r.db.GetContext(ctx, &version, versionQuery, string(kind), string(network)); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, 0, fmt.Errorf("query slot version %s:%s: %w", kind, network, err)
	}

	query := r.db.Rebind(`
		SELECT ` + joinedFavoriteColumns + `, COALESCE(v.version, 0) AS version
		FROM favorite_locations f
		LEFT JOIN favorite_slot_versions v ON v.kind = f.kind AND v.network_id = f.network_id
		WHERE f.kind = ? AND f.network_id = ?
	`)

	var row versionedRow
	if err := r.db.GetContext(ctx, &row, query, string(kind), string(network)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, version, nil
		}
		return nil, 0, fmt.Errorf("query favorite snapshot %s:%s: %w", kind, network, err)
	}

	fav, err := row.toDomain()
	if err != nil {
		return nil, 0, fmt.Errorf("decode favorite %s:%s: %w", kind, network, err)
	}
	return fav, row.Version, nil
}

// Upsert вставляет строку или целиком заменяет существующую. uid сохраняется.
func (r *favoriteRepository) Upsert(ctx context.Context, fav *domain.FavoriteLocation) (repository.SlotWrite, error) {
	row := fromDomain(fav)
	row.UpdatedAt = r.now().UnixMilli()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return repository.SlotWrite{}, fmt.Errorf("begin upsert tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	args := []interface{}{
		row.Kind,
		row.NetworkID,
		row.Type,
		row.ID,
		row.Lat,
		row.Lon,
		row.Place,
		row.Name,
		row.Products,
		row.UpdatedAt,
	}

	var (
		uid     int64
		existed bool
	)
	if r.db.Driver() == DriverPostgres {
		// xmax = 0 только у строки, которую вставил этот же оператор
		var inserted bool
		query := r.db.Rebind(upsertFavoriteQuery + `, (xmax = 0) AS inserted`)
		if err := tx.QueryRowxContext(ctx, query, args...).Scan(&uid, &inserted); err != nil {
			return repository.SlotWrite{}, fmt.Errorf("upsert favorite: %w", err)
		}
		existed = !inserted
	} else {
		// у SQLite одно соединение, записи и так идут по очереди
		var count int
		countQuery := r.db.Rebind(`SELECT COUNT(uid) FROM favorite_locations WHERE kind = ? AND network_id = ?`)
		if err := tx.GetContext(ctx, &count, countQuery, row.Kind, row.NetworkID); err != nil {
			return repository.SlotWrite{}, fmt.Errorf("check existing favorite: %w", err)
		}
		if err := tx.QueryRowxContext(ctx, r.db.Rebind(upsertFavoriteQuery), args...).Scan(&uid); err != nil {
			return repository.SlotWrite{}, fmt.Errorf("upsert favorite: %w", err)
		}
		existed = count > 0
	}

	version, err := r.bumpVersion(ctx, tx, row.Kind, row.NetworkID)
	if err != nil {
		return repository.SlotWrite{}, err
	}

	if err := tx.Commit(); err != nil {
		return repository.SlotWrite{}, fmt.Errorf("commit upsert: %w", err)
	}

	fav.UID = uid
	fav.UpdatedAt = time.UnixMilli(row.UpdatedAt)

	r.logger.Debug("Favorite upserted",
		zap.String("kind", row.Kind),
		zap.String("network_id", row.NetworkID),
		zap.Int64("uid", uid),
		zap.Int64("version", version),
		zap.Bool("replaced", existed))

	return repository.SlotWrite{UID: uid, Existed: existed, Version: version}, nil
}

// Count возвращает количество строк слота
func (r *favoriteRepository) Count(ctx context.Context, kind domain.FavoriteKind, network domain.NetworkID) (int, error) {
	query := r.db.Rebind(`SELECT COUNT(uid) FROM favorite_locations WHERE kind = ? AND network_id = ?`)

	var count int
	if err := r.db.GetContext(ctx, &count, query, string(kind), string(network)); err != nil {
		return 0, fmt.Errorf("count favorites %s:%s: %w", kind, network, err)
	}
	return count, nil
}

// Delete удаляет строку слота и поднимает версию, если строка была
func (r *favoriteRepository) Delete(ctx context.Context, kind domain.FavoriteKind, network domain.NetworkID) (repository.SlotWrite, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return repository.SlotWrite{}, fmt.Errorf("begin delete tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := r.db.Rebind(`DELETE FROM favorite_locations WHERE kind = ? AND network_id = ?`)
	res, err := tx.ExecContext(ctx, query, string(kind), string(network))
	if err != nil {
		return repository.SlotWrite{}, fmt.Errorf("delete favorite %s:%s: %w", kind, network, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return repository.SlotWrite{}, fmt.Errorf("delete favorite rows affected: %w", err)
	}
	if affected == 0 {
		return repository.SlotWrite{}, nil
	}

	version, err := r.bumpVersion(ctx, tx, string(kind), string(network))
	if err != nil {
		return repository.SlotWrite{}, err
	}

	if err := tx.Commit(); err != nil {
		return repository.SlotWrite{}, fmt.Errorf("commit delete: %w", err)
	}

	return repository.SlotWrite{Existed: true, Version: version}, nil
}

// ListByNetwork возвращает все слоты сети, упорядоченные по kind
func (r *favoriteRepository) ListByNetwork(ctx context.Context, network domain.NetworkID) ([]*domain.FavoriteLocation, error) {
	query := r.db.Rebind(`
		SELECT ` + favoriteColumns + `
		FROM favorite_locations
		WHERE network_id = ?
		ORDER BY kind
	`)

	var rows []favoriteRow
	if err := r.db.SelectContext(ctx, &rows, query, string(network)); err != nil {
		return nil, fmt.Errorf("list favorites %s: %w", network, err)
	}

	result := make([]*domain.FavoriteLocation, 0, len(rows))
	for _, row := range rows {
		fav, err := row.toDomain()
		if err != nil {
			r.logger.Warn("Skipping undecodable favorite row",
				zap.Int64("uid", row.UID),
				zap.Error(err))
			continue
		}
		result = append(result, fav)
	}
	return result, nil
}

// bumpVersion увеличивает версию слота внутри транзакции записи
func (r *favoriteRepository) bumpVersion(ctx context.Context, tx *sqlx.Tx, kind, network string) (int64, error) {
	query := r.db.Rebind(`
		INSERT INTO favorite_slot_versions (kind, network_id, version)
		VALUES (?, ?, 1)
		ON CONFLICT (kind, network_id) DO UPDATE SET version = favorite_slot_versions.version + 1
		RETURNING version
	`)

	var version int64
	if err := tx.QueryRowxContext(ctx, query, kind, network).Scan(&version); err != nil {
		return 0, fmt.Errorf("bump slot version %s:%s: %w", kind, network, err)
	}
	return version, nil
}

func fromDomain(f *domain.FavoriteLocation) favoriteRow {
	return favoriteRow{
		UID:         f.UID,
		Kind:        string(f.Kind),
		NetworkID:   string(f.NetworkID),
		locationRow: locationRowFrom(f.Location),
	}
}

func (row favoriteRow) toDomain() (*domain.FavoriteLocation, error) {
	loc, err := row.toLocation()
	if err != nil {
		return nil, err
	}

	return &domain.FavoriteLocation{
		UID:       row.UID,
		Kind:      domain.FavoriteKind(row.Kind),
		NetworkID: domain.NetworkID(row.NetworkID),
		Location:  loc,
		UpdatedAt: time.UnixMilli(row.UpdatedAt),
	}, nil
}
