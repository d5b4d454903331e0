package lead

import (
	"testing"

	"github.com/callwork/backend/internal/services/balance"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newDryRunDB opens a gorm handle that builds SQL without executing it, and
// records every generated statement.
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
	return db
}

func TestClaimNextUsesSkipLocked(t *testing.T) {
	var captured []string
	db := newDryRunDB(t, &captured)
	svc := NewLeadService(db, balance.NewBalanceService(db), 3)

	_, err := svc.ClaimNext(uuid.New())
	assert.ErrorIs(t, err, ErrNoLeadsAvailable)

	require.NotEmpty(t, captured)
	claim := captured[0]
	assert.Contains(t, claim, "FOR UPDATE SKIP LOCKED", "concurrent claims must not block or double-assign")
	assert.Contains(t, claim, "assigned_to IS NULL")
	assert.Contains(t, claim, "ORDER BY created_at", "oldest lead first")
}

func TestLockLeadRowTakesRowLock(t *testing.T) {
	var captured []string
	db := newDryRunDB(t, &captured)

	leadID := uuid.New()
	_, err := lockLeadRow(db, uuid.New(), &leadID)
	require.NoError(t, err)

	require.NotEmpty(t, captured)
	assert.Contains(t, captured[0], "FOR UPDATE", "completion must read the lead under a row lock")
}

func TestLockLeadRowByOperatorTakesRowLock(t *testing.T) {
	var captured []string
	db := newDryRunDB(t, &captured)

	_, err := lockLeadRow(db, uuid.New(), nil)
	require.NoError(t, err)

	require.NotEmpty(t, captured)
	assert.Contains(t, captured[0], "assigned_to = $")
	assert.Contains(t, captured[0], "FOR UPDATE")
}
