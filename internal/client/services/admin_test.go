package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/signpanel/internal/client/client"
	"github.com/dmitrijs2005/signpanel/internal/client/models"
)

type fakeAdminAPI struct {
	stats     *models.DashboardStats
	statsErr  error
	trends    *models.Trends
	period    string
	exportURL string
	gotToken  string
}

func (f *fakeAdminAPI) Dashboard(context.Context) (*models.DashboardStats, error) {
	return f.stats, f.statsErr
}

func (f *fakeAdminAPI) Trends(_ context.Context, period string) (*models.Trends, error) {
	f.period = period
	return f.trends, nil
}

func (f *fakeAdminAPI) ExportURL(kind models.ExportKind, token string, _ models.LogFilter) (string, error) {
	f.gotToken = token
	if kind == "bogus" {
		return "", errors.New("unknown export")
	}
	return f.exportURL, nil
}

type fakeArchiver struct {
	file string
	err  error
}

func (a *fakeArchiver) Archive(_ context.Context, file string) (*ArchivedExport, error) {
	a.file = file
	if a.err != nil {
		return nil, a.err
	}
	return &ArchivedExport{URI: "s3://b/" + filepath.Base(file), URL: "https://s3/x"}, nil
}

func TestAdminService_Dashboard(t *testing.T) {
	api := &fakeAdminAPI{
		stats:  &models.DashboardStats{TotalUsers: 4},
		trends: &models.Trends{Dates: []string{"01-01"}, Users: []int{1}, Signatures: []int{2}},
	}
	s := NewAdminService(api, nil, nil, nil, nil)

	d, err := s.Dashboard(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultTrendPeriod, api.period)
	assert.Equal(t, 4, d.Stats.TotalUsers)
	assert.Equal(t, []int{2}, d.Trends.Signatures)

	api.statsErr = client.ErrUnauthorized
	_, err = s.Dashboard(context.Background(), "month")
	require.ErrorIs(t, err, client.ErrUnauthorized)
}

func newAdminSessionWithToken(t *testing.T, token string) *AdminSession {
	t.Helper()
	s, err := NewAdminSession(context.Background(), newStore(t), nil)
	require.NoError(t, err)
	require.NoError(t, s.SetToken(context.Background(), token))
	return s
}

func TestAdminService_Export(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("xlsx-bytes"))
	}))
	defer ts.Close()

	api := &fakeAdminAPI{exportURL: ts.URL + "/admin/users/export?token=pw"}
	arch := &fakeArchiver{}
	s := NewAdminService(api, newAdminSessionWithToken(t, "pw"), arch, ts.Client(), nil)

	dir := t.TempDir()
	res, err := s.Export(context.Background(), models.ExportUsers, models.LogFilter{}, dir)
	require.NoError(t, err)

	assert.Equal(t, "pw", api.gotToken)
	assert.Equal(t, dir, filepath.Dir(res.Path))
	assert.Equal(t, int64(len("xlsx-bytes")), res.Bytes)
	body, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, "xlsx-bytes", string(body))

	assert.Equal(t, res.Path, arch.file)
	require.NotNil(t, res.Archive)
	assert.Equal(t, "https://s3/x", res.Archive.URL)
}

func TestAdminService_ExportArchiveFailureKeepsFile(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("data"))
	}))
	defer ts.Close()

	api := &fakeAdminAPI{exportURL: ts.URL}
	s := NewAdminService(api, newAdminSessionWithToken(t, "pw"), &fakeArchiver{err: errors.New("denied")}, nil, nil)

	res, err := s.Export(context.Background(), models.ExportLogs, models.LogFilter{}, t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, res.Archive)
	assert.FileExists(t, res.Path)
}

func TestAdminService_ExportDownloadFailureRemovesFile(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer ts.Close()

	api := &fakeAdminAPI{exportURL: ts.URL}
	s := NewAdminService(api, newAdminSessionWithToken(t, "pw"), nil, nil, nil)

	dir := t.TempDir()
	_, err := s.Export(context.Background(), models.ExportInvites, models.LogFilter{}, dir)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = s.Export(context.Background(), "bogus", models.LogFilter{}, dir)
	require.Error(t, err)
}
