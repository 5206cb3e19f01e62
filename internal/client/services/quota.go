package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/signpanel/internal/client/models"
	"github.com/dmitrijs2005/signpanel/internal/logging"
)

// QuotaAPI fetches a user's quota status.
type QuotaAPI interface {
	QuotaStatus(ctx context.Context, openID, tenantKey string) (*models.QuotaStatus, error)
}

// dateLocation is the zone quota dates are rendered in.
var dateLocation = time.Local

// QuotaHolder keeps the last known quota snapshot of the current user.
type QuotaHolder struct {
	api QuotaAPI
	log logging.Logger

	mu   sync.RWMutex
	snap models.QuotaSnapshot
}

func NewQuotaHolder(api QuotaAPI, log logging.Logger) *QuotaHolder {
	if log == nil {
		log = logging.Nop()
	}
	return &QuotaHolder{api: api, log: log, snap: models.InitialQuotaSnapshot()}
}

// Load replaces the snapshot with the backend's view. Invalid parameters
// are returned; a failed fetch is only logged and the previous snapshot
// stays in place.
func (q *QuotaHolder) Load(ctx context.Context, openID, tenantKey string) error {
	err := q.Refresh(ctx, openID, tenantKey)
	if errors.Is(err, ErrInvalidParams) {
		return err
	}
	if err != nil {
		q.log.Warn(ctx, "quota status unavailable", "error", err)
	}
	return nil
}

// Refresh is Load for callers that report the fetch error themselves.
func (q *QuotaHolder) Refresh(ctx context.Context, openID, tenantKey string) error {
	if err := ValidateQuotaParams(openID, tenantKey).Err(); err != nil {
		return err
	}

	st, err := q.api.QuotaStatus(ctx, openID, tenantKey)
	if err != nil {
		return err
	}

	next := models.NewQuotaSnapshot(*st)
	q.mu.Lock()
	q.snap = next
	q.mu.Unlock()
	return nil
}

func (q *QuotaHolder) Snapshot() models.QuotaSnapshot {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.snap
}

func (q *QuotaHolder) CanSign() bool {
	return q.Snapshot().CanSign()
}

// FormatDate renders a unix timestamp (seconds) as 2006/1/2; nil and 0
// render as "".
func FormatDate(ts *int64) string {
	if ts == nil || *ts == 0 {
		return ""
	}
	return time.Unix(*ts, 0).In(dateLocation).Format("2006/1/2")
}
