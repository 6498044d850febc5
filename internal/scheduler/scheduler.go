package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/crucial707/it-inventory/internal/export"
	"github.com/crucial707/it-inventory/internal/metrics"
	"github.com/crucial707/it-inventory/internal/models"
)

// Source is what a snapshot reads from; *inventory.Service satisfies it.
type Source interface {
	Columns(ctx context.Context, t models.TableType) ([]string, error)
	ListAssets(ctx context.Context, t models.TableType, filters map[string]string, limit, offset int) ([]models.Row, error)
}

// Snapshot writes one workbook per non-empty table type into Dir.
type Snapshot struct {
	Source   Source
	Dir      string
	LogoPath string
	Now      func() time.Time
}

// FileName is the snapshot file of table t taken at now.
func FileName(t models.TableType, now time.Time) string {
	return fmt.Sprintf("%s_inventory_%s.xlsx", t, now.Format("20060102_150405"))
}

// RunOnce exports every table type and returns the paths written. A failing table does not
// stop the others; their errors are joined.
func (s *Snapshot) RunOnce(ctx context.Context) ([]string, error) {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	var written []string
	var errs []error
	for _, t := range models.TableTypes {
		p, err := s.exportTable(ctx, t, now)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", t, err))
			continue
		}
		if p != "" {
			written = append(written, p)
		}
	}
	return written, errors.Join(errs...)
}

func (s *Snapshot) exportTable(ctx context.Context, t models.TableType, now time.Time) (string, error) {
	rows, err := s.Source.ListAssets(ctx, t, nil, 0, 0)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", nil
	}
	cols, err := s.Source.Columns(ctx, t)
	if err != nil {
		return "", err
	}

	p := filepath.Join(s.Dir, FileName(t, now))
	f, err := os.Create(p)
	if err != nil {
		return "", err
	}
	if err := export.Write(f, rows, export.Options{Columns: cols, LogoPath: s.LogoPath}); err != nil {
		f.Close()
		os.Remove(p)
		return "", err
	}
	return p, f.Close()
}

// Start schedules the snapshot on a cron expression (e.g. "0 2 * * *") and starts the cron
// runner. Stop the returned cron to end it. Failed runs are logged and counted, never fatal.
func Start(spec string, s *Snapshot) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		paths, err := s.RunOnce(ctx)
		metrics.RecordSnapshot(err == nil)
		if err != nil {
			slog.Error("scheduler: inventory snapshot failed", "error", err, "written", len(paths))
			return
		}
		slog.Info("scheduler: inventory snapshot written", "dir", s.Dir, "files", len(paths))
	})
	if err != nil {
		return nil, fmt.Errorf("invalid EXPORT_SCHEDULE %q: %w", spec, err)
	}
	c.Start()
	slog.Info("scheduler: snapshot export scheduled", "cron", spec, "dir", s.Dir)
	return c, nil
}
