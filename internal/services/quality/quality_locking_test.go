package quality

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/callwork/backend/internal/models"
	"github.com/callwork/backend/internal/services/balance"
	"github.com/callwork/backend/internal/services/notify"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type nopPublisher struct{}

func (nopPublisher) PublishQualityEvent(context.Context, notify.Event) {}

// newDryRunDB opens a gorm handle that builds SQL without executing it, and
// records every generated statement so tests can assert the predicates that
// carry the concurrency guarantees.
func newDryRunDB(t *testing.T, captured *[]string) *gorm.DB {
	db, err := gorm.Open(postgres.Open("host=localhost user=callwork dbname=callwork"), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	record := func(d *gorm.DB) {
		*captured = append(*captured, d.Statement.SQL.String())
	}
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("capture_sql", record))
	require.NoError(t, db.Callback().Update().After("gorm:update").Register("capture_sql", record))
	require.NoError(t, db.Callback().Create().After("gorm:create").Register("capture_sql", record))
	return db
}

func newSQLTestService(t *testing.T, captured *[]string) (*QualityService, *gorm.DB) {
	db := newDryRunDB(t, captured)
	return NewQualityService(db, balance.NewBalanceService(db), nopPublisher{}, 90*time.Second), db
}

func TestLockAcquireIsSingleConditionalUpdate(t *testing.T) {
	var captured []string
	svc, _ := newSQLTestService(t, &captured)

	svc.Lock(context.Background(), uuid.New(), uuid.New(), "Jane Reviewer")

	require.NotEmpty(t, captured)
	acquire := captured[0]
	assert.Contains(t, acquire, "UPDATE")
	assert.Contains(t, acquire, "status = $", "acquire must only touch pending reviews")
	assert.Contains(t, acquire, "locked_by IS NULL OR locked_by = $", "free or own lock is acquirable")
	assert.Contains(t, acquire, "lock_expires_at < $", "expired lock is taken over as free")
}

func TestHeartbeatRenewsOnlyOwnLiveLock(t *testing.T) {
	var captured []string
	svc, _ := newSQLTestService(t, &captured)

	err := svc.Heartbeat(uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrNotLockHolder)

	require.NotEmpty(t, captured)
	renew := captured[0]
	assert.Contains(t, renew, "locked_by = $")
	assert.Contains(t, renew, "lock_expires_at >= $", "an expired lock cannot be renewed")
}

func TestResolveReadTakesRowLock(t *testing.T) {
	var captured []string
	svc, db := newSQLTestService(t, &captured)

	svc.loadForResolve(db, uuid.New(), uuid.New())

	require.NotEmpty(t, captured)
	assert.Contains(t, captured[0], "FOR UPDATE", "resolve must read the review under a row lock")
}

func TestResolveOnlyUpdatesPendingReview(t *testing.T) {
	var captured []string
	svc, db := newSQLTestService(t, &captured)

	review := models.QualityReview{ID: uuid.New(), Status: models.ReviewStatusPending}
	lead := models.Lead{ID: uuid.New()}

	// Dry run affects zero rows, exactly what a second resolver sees after
	// losing the race: it must get ErrReviewResolved, never a silent rewrite.
	err := svc.resolve(db, &review, &lead, uuid.New(), "ok", models.ReviewStatusApproved, models.ApprovalStatusApproved)
	assert.ErrorIs(t, err, ErrReviewResolved)

	require.NotEmpty(t, captured)
	resolveSQL := captured[0]
	require.Contains(t, resolveSQL, "WHERE")
	whereClause := resolveSQL[strings.Index(resolveSQL, "WHERE"):]
	assert.Contains(t, whereClause, "status = $", "only a pending review is resolvable")
}

func TestReleaseExpiredLocksPredicates(t *testing.T) {
	var captured []string
	svc, _ := newSQLTestService(t, &captured)

	released, err := svc.ReleaseExpiredLocks(context.Background())
	assert.NoError(t, err)
	assert.Zero(t, released)

	require.NotEmpty(t, captured)
	sweep := captured[0]
	assert.Contains(t, sweep, "locked_by IS NOT NULL")
	assert.Contains(t, sweep, "lock_expires_at <")
}
