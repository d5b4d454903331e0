package balance

import (
	"testing"

	"github.com/callwork/backend/internal/models"
	"github.com/callwork/backend/internal/utils"
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
	require.NoError(t, db.Callback().Create().After("gorm:create").Register("capture_sql", record))
	return db
}

func TestCreditChecksReferenceBeforeInserting(t *testing.T) {
	var captured []string
	db := newDryRunDB(t, &captured)
	svc := NewBalanceService(db)

	leadID := uuid.New()
	// The dry run "finds" an existing row for the reference, which is the
	// duplicate-settlement case: the credit must report not-applied, no error.
	tx, applied, err := svc.CreditWithTx(db, CreditParams{
		UserID:    uuid.New(),
		Amount:    3,
		Type:      models.TransactionTypeEarned,
		Category:  models.TransactionCategoryCall,
		LeadID:    &leadID,
		Reference: utils.CallFeeReference(leadID),
	})
	require.NoError(t, err)
	assert.False(t, applied, "a settled reference must be a no-op, not a second credit")
	assert.NotNil(t, tx)

	require.NotEmpty(t, captured)
	assert.Contains(t, captured[0], "reference = $", "dedup lookup keys on the ledger reference")
}

func TestApplyToBalanceUsesAtomicIncrement(t *testing.T) {
	var captured []string
	db := newDryRunDB(t, &captured)
	svc := NewBalanceService(db)

	err := svc.applyToBalance(db, uuid.New(), 5)
	require.NoError(t, err)

	require.NotEmpty(t, captured)
	increment := captured[0]
	assert.Contains(t, increment, "balance + $", "increment in SQL, not read-modify-write")
	assert.Contains(t, increment, "total_earned + $")
	assert.Contains(t, increment, "user_id = $")
}
