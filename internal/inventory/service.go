// Package inventory applies asset changes and keeps the per-field change history.
package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/crucial707/it-inventory/internal/metrics"
	"github.com/crucial707/it-inventory/internal/models"
	"github.com/crucial707/it-inventory/internal/repo"
)

// Service is the entry point for reading, creating and changing assets.
// It holds no per-request state.
type Service struct {
	DB     *sql.DB
	Assets *repo.AssetRepo
	Audit  *repo.AuditRepo

	// SystemActor is stamped as create_user on new assets.
	SystemActor string
	// Now defaults to time.Now.
	Now func() time.Time
}

// NewService wires a Service over db.
func NewService(db *sql.DB, systemActor string) *Service {
	return &Service{
		DB:          db,
		Assets:      repo.NewAssetRepo(db),
		Audit:       repo.NewAuditRepo(db),
		SystemActor: systemActor,
		Now:         time.Now,
	}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// UpdateResult is the asset after the update plus the history entries it produced.
type UpdateResult struct {
	Row     models.Row          `json:"row"`
	Changes []models.AuditEntry `json:"changes"`
}

// ApplyUpdateWithAudit validates updates, writes them under a row lock, then records one
// history entry per field that changed against the locked snapshot.
//
// The row update and the history append are separate transactions. If the append fails
// the update stays committed and the error wraps models.ErrAuditWriteFailure.
func (s *Service) ApplyUpdateWithAudit(ctx context.Context, t models.TableType, key models.AssetKey, updates map[string]any, actor string) (UpdateResult, error) {
	if len(updates) == 0 {
		return UpdateResult{}, models.ErrNoFieldsToUpdate
	}
	spec, err := models.ResolveKey(t, key)
	if err != nil {
		return UpdateResult{}, err
	}

	normalized := make(models.Row, len(updates))
	for field, v := range updates {
		normalized[field] = v
	}
	if err := s.Assets.CheckUpdatable(ctx, t, normalized.Fields()); err != nil {
		return UpdateResult{}, err
	}
	for _, field := range normalized.Fields() {
		v, err := models.StoreValue(field, normalized[field])
		if err != nil {
			return UpdateResult{}, err
		}
		normalized[field] = v
	}

	stamp := repo.Stamp{User: actor, At: s.now()}
	var before, after models.Row
	err = repo.InTx(ctx, s.DB, func(tx *sql.Tx) error {
		assets := s.Assets.WithTx(tx)
		var err error
		if before, err = assets.GetRowForUpdate(ctx, t, spec); err != nil {
			return err
		}
		if err := assets.UpdateRow(ctx, t, spec, normalized, stamp); err != nil {
			return err
		}
		after, err = assets.GetRow(ctx, t, spec)
		return err
	})
	if err != nil {
		return UpdateResult{}, err
	}

	changes := Diff(t, spec, before, normalized, actor, stamp.At)
	result := UpdateResult{Row: after, Changes: changes}
	if result.Changes == nil {
		result.Changes = []models.AuditEntry{}
	}

	if err := s.Audit.Append(ctx, changes); err != nil {
		metrics.RecordAuditFailure(string(t))
		slog.Error("asset history write failed",
			"table_type", t,
			"sr_no", spec.Serial(),
			"entries", len(changes),
			"error", err)
		return result, fmt.Errorf("%w: %w", models.ErrAuditWriteFailure, err)
	}

	metrics.RecordUpdate(string(t), len(changes))
	slog.Info("asset updated",
		"table_type", t,
		"sr_no", spec.Serial(),
		"fields", len(normalized),
		"changes", len(changes),
		"actor", actor)
	return result, nil
}

// GetHistory returns the change history of one asset, most recent first.
func (s *Service) GetHistory(ctx context.Context, t models.TableType, key models.AssetKey) ([]models.AuditEntry, error) {
	spec, err := models.ResolveKey(t, key)
	if err != nil {
		return nil, err
	}
	return s.Audit.History(ctx, t, spec)
}

// GetAsset returns one asset by identity key.
func (s *Service) GetAsset(ctx context.Context, t models.TableType, key models.AssetKey) (models.Row, error) {
	spec, err := models.ResolveKey(t, key)
	if err != nil {
		return nil, err
	}
	return s.Assets.GetRow(ctx, t, spec)
}

// Columns returns the column names of a table type.
func (s *Service) Columns(ctx context.Context, t models.TableType) ([]string, error) {
	return s.Assets.Columns(ctx, t)
}

// ListAssets returns rows matching every filter. limit <= 0 returns all of them.
func (s *Service) ListAssets(ctx context.Context, t models.TableType, filters map[string]string, limit, offset int) ([]models.Row, error) {
	rows, err := s.Assets.List(ctx, t, filters, limit, offset)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []models.Row{}
	}
	return rows, nil
}
