package services

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/signpanel/internal/client/models"
	"github.com/dmitrijs2005/signpanel/internal/filex"
	"github.com/dmitrijs2005/signpanel/internal/logging"
	"github.com/dmitrijs2005/signpanel/internal/netx"
)

// DefaultTrendPeriod is the dashboard trend window.
const DefaultTrendPeriod = "week"

// AdminAPI is the part of the REST client the admin service needs.
type AdminAPI interface {
	Dashboard(ctx context.Context) (*models.DashboardStats, error)
	Trends(ctx context.Context, period string) (*models.Trends, error)
	ExportURL(kind models.ExportKind, token string, f models.LogFilter) (string, error)
}

// AdminService composes admin calls that span more than one request.
type AdminService struct {
	api      AdminAPI
	session  *AdminSession
	archiver Archiver
	http     *http.Client
	log      logging.Logger
}

// NewAdminService wires the service; archiver may be nil.
func NewAdminService(api AdminAPI, session *AdminSession, archiver Archiver, hc *http.Client, log logging.Logger) *AdminService {
	if log == nil {
		log = logging.Nop()
	}
	return &AdminService{api: api, session: session, archiver: archiver, http: hc, log: log}
}

// Dashboard loads stats and trends concurrently; either failure fails both.
func (s *AdminService) Dashboard(ctx context.Context, period string) (*models.Dashboard, error) {
	if period == "" {
		period = DefaultTrendPeriod
	}

	var (
		stats  *models.DashboardStats
		trends *models.Trends
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = s.api.Dashboard(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		trends, err = s.api.Trends(gctx, period)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}

	return &models.Dashboard{Stats: *stats, Trends: *trends, Period: period}, nil
}

// ExportResult describes a finished export.
type ExportResult struct {
	Path    string
	Bytes   int64
	Archive *ArchivedExport
}

// Export downloads the spreadsheet for kind into dir and archives it when an
// archiver is configured. An archive failure is logged and leaves the local
// file in place.
func (s *AdminService) Export(ctx context.Context, kind models.ExportKind, f models.LogFilter, dir string) (*ExportResult, error) {
	u, err := s.api.ExportURL(kind, s.session.Token(), f)
	if err != nil {
		return nil, err
	}

	dir, err = filex.EnsureDir(dir)
	if err != nil {
		return nil, err
	}
	file := filepath.Join(dir, filex.StampedName(string(kind), ".xlsx", time.Now()))

	out, err := os.Create(file)
	if err != nil {
		return nil, err
	}
	n, err := netx.Download(ctx, s.http, u, out)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(file)
		return nil, fmt.Errorf("export %s: %w", kind, err)
	}
	s.log.Info(ctx, "export saved", "kind", kind, "path", file, "bytes", n)

	res := &ExportResult{Path: file, Bytes: n}
	if s.archiver == nil {
		return res, nil
	}
	archived, err := s.archiver.Archive(ctx, file)
	if err != nil {
		s.log.Warn(ctx, "export not archived", "path", file, "error", err)
		return res, nil
	}
	s.log.Info(ctx, "export archived", "uri", archived.URI)
	res.Archive = archived
	return res, nil
}
