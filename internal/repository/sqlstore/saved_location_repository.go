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

const savedColumns = `uid, network_id, type, id, lat, lon, place, name, products, from_count, via_count, to_count, updated_at`

// savedRow - плоское представление строки saved_locations
type savedRow struct {
	UID       int64  `db:"uid"`
	NetworkID string `db:"network_id"`
	locationRow
	FromCount int   `db:"from_count"`
	ViaCount  int   `db:"via_count"`
	ToCount   int   `db:"to_count"`
	UpdatedAt int64 `db:"updated_at"` // unix ms
}

type savedLocationRepository struct {
	db     *DB
	logger *zap.Logger
	now    func() time.Time
}

// NewSavedLocationRepository создает репозиторий использованных мест
func NewSavedLocationRepository(db *DB, logger *zap.Logger) repository.SavedLocationRepository {
	return &savedLocationRepository{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// FindByContent ищет место с совпадающим содержимым
func (r *savedLocationRepository) FindByContent(ctx context.Context, network domain.NetworkID, loc domain.Location) (*domain.SavedLocation, error) {
	return r.findByContent(ctx, r.db, network, loc)
}

// Record увеличивает счётчик найденного места или вставляет новое.
// Поиск и запись идут в одной транзакции.
func (r *savedLocationRepository) Record(ctx context.Context, network domain.NetworkID, loc domain.Location, role domain.UsageRole) (*domain.SavedLocation, bool, error) {
	column, err := roleColumn(role)
	if err != nil {
		return nil, false, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("begin record tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	existing, err := r.findByContent(ctx, tx, network, loc)
	if err != nil {
		return nil, false, err
	}
	if existing == nil && loc.Type == domain.LocationTypeAddress && loc.Name != nil {
		existing, err = r.findSameAddress(ctx, tx, network, loc)
		if err != nil {
			return nil, false, err
		}
	}

	now := r.now().UnixMilli()
	var (
		row     savedRow
		created bool
	)
	if existing != nil {
		query := r.db.Rebind(`
			UPDATE saved_locations SET ` + column + ` = ` + column + ` + 1, updated_at = ?
			WHERE uid = ?
			RETURNING ` + savedColumns)
		if err := tx.QueryRowxContext(ctx, query, now, existing.UID).StructScan(&row); err != nil {
			return nil, false, fmt.Errorf("increment saved location %d: %w", existing.UID, err)
		}
	} else {
		// станция с тем же id могла появиться в другом процессе
		fields := locationRowFrom(loc)
		counts := map[string]int{"from_count": 0, "via_count": 0, "to_count": 0}
		counts[column] = 1

		query := r.db.Rebind(`
			INSERT INTO saved_locations (network_id, type, id, lat, lon, place, name, products, from_count, via_count, to_count, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (network_id, id) DO UPDATE SET
				` + column + ` = saved_locations.` + column + ` + 1,
				updated_at = excluded.updated_at
			RETURNING ` + savedColumns)
		err := tx.QueryRowxContext(ctx, query,
			string(network),
			fields.Type,
			fields.ID,
			fields.Lat,
			fields.Lon,
			fields.Place,
			fields.Name,
			fields.Products,
			counts["from_count"],
			counts["via_count"],
			counts["to_count"],
			now,
		).StructScan(&row)
		if err != nil {
			return nil, false, fmt.Errorf("insert saved location: %w", err)
		}
		// при конфликте счётчик старой строки уже был >= 1
		created = row.FromCount+row.ViaCount+row.ToCount == 1
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit record: %w", err)
	}

	saved, err := row.toDomain()
	if err != nil {
		return nil, false, fmt.Errorf("decode saved location %d: %w", row.UID, err)
	}

	r.logger.Debug("Saved location used",
		zap.String("network_id", string(network)),
		zap.Int64("uid", saved.UID),
		zap.String("role", string(role)),
		zap.Bool("created", created))

	return saved, created, nil
}

// ListByNetwork возвращает места сети по убыванию счётчика роли
func (r *savedLocationRepository) ListByNetwork(ctx context.Context, network domain.NetworkID, role domain.UsageRole) ([]*domain.SavedLocation, error) {
	order := "from_count + via_count + to_count"
	if role != "" {
		column, err := roleColumn(role)
		if err != nil {
			return nil, err
		}
		order = column
	}

	query := r.db.Rebind(`
		SELECT ` + savedColumns + `
		FROM saved_locations
		WHERE network_id = ?
		ORDER BY ` + order + ` DESC, uid
	`)

	var rows []savedRow
	if err := r.db.SelectContext(ctx, &rows, query, string(network)); err != nil {
		return nil, fmt.Errorf("list saved locations %s: %w", network, err)
	}

	result := make([]*domain.SavedLocation, 0, len(rows))
	for _, row := range rows {
		saved, err := row.toDomain()
		if err != nil {
			r.logger.Warn("Skipping undecodable saved location row",
				zap.Int64("uid", row.UID),
				zap.Error(err))
			continue
		}
		result = append(result, saved)
	}
	return result, nil
}

// Delete удаляет место сети
func (r *savedLocationRepository) Delete(ctx context.Context, network domain.NetworkID, uid int64) (bool, error) {
	query := r.db.Rebind(`DELETE FROM saved_locations WHERE network_id = ? AND uid = ?`)

	res, err := r.db.ExecContext(ctx, query, string(network), uid)
	if err != nil {
		return false, fmt.Errorf("delete saved location %d: %w", uid, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete saved location rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *savedLocationRepository) findByContent(ctx context.Context, q sqlx.QueryerContext, network domain.NetworkID, loc domain.Location) (*domain.SavedLocation, error) {
	eq := r.db.nullSafeEq()
	query := r.db.Rebind(`
		SELECT ` + savedColumns + `
		FROM saved_locations
		WHERE network_id = ? AND type = ?
			AND id ` + eq + ` ? AND lat ` + eq + ` ? AND lon ` + eq + ` ?
			AND place ` + eq + ` ? AND name ` + eq + ` ?
		ORDER BY uid
		LIMIT 1
	`)

	fields := locationRowFrom(loc)
	var row savedRow
	err := sqlx.GetContext(ctx, q, &row, query,
		string(network),
		fields.Type,
		fields.ID,
		fields.Lat,
		fields.Lon,
		fields.Place,
		fields.Name,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find saved location %s: %w", network, err)
	}

	saved, err := row.toDomain()
	if err != nil {
		return nil, fmt.Errorf("decode saved location %d: %w", row.UID, err)
	}
	return saved, nil
}

// findSameAddress ищет адрес с тем же названием рядом с loc
func (r *savedLocationRepository) findSameAddress(ctx context.Context, q sqlx.QueryerContext, network domain.NetworkID, loc domain.Location) (*domain.SavedLocation, error) {
	query := r.db.Rebind(`
		SELECT ` + savedColumns + `
		FROM saved_locations
		WHERE network_id = ? AND type = ? AND name = ?
		ORDER BY uid
	`)

	var rows []savedRow
	if err := sqlx.SelectContext(ctx, q, &rows, query, string(network), string(domain.LocationTypeAddress), *loc.Name); err != nil {
		return nil, fmt.Errorf("find saved addresses %s: %w", network, err)
	}

	for _, row := range rows {
		saved, err := row.toDomain()
		if err != nil {
			continue
		}
		if saved.SameAddress(loc) {
			return saved, nil
		}
	}
	return nil, nil
}

func roleColumn(role domain.UsageRole) (string, error) {
	switch role {
	case domain.UsageFrom:
		return "from_count", nil
	case domain.UsageVia:
		return "via_count", nil
	case domain.UsageTo:
		return "to_count", nil
	default:
		return "", fmt.Errorf("unknown usage role %q", role)
	}
}

func (row savedRow) toDomain() (*domain.SavedLocation, error) {
	loc, err := row.toLocation()
	if err != nil {
		return nil, err
	}

	return &domain.SavedLocation{
		UID:       row.UID,
		NetworkID: domain.NetworkID(row.NetworkID),
		Location:  loc,
		FromCount: row.FromCount,
		ViaCount:  row.ViaCount,
		ToCount:   row.ToCount,
		UpdatedAt: time.UnixMilli(row.UpdatedAt),
	}, nil
}
