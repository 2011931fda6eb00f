package integrity

import (
	"context"
	"errors"
	"testing"

	"github.com/Sydwelll/nft-marketplace-backend/core/database"
	"github.com/Sydwelll/nft-marketplace-backend/core/storage/mocks"
	"github.com/Sydwelll/nft-marketplace-backend/feature/integrity/checks"
	"github.com/Sydwelll/nft-marketplace-backend/feature/market"
	"github.com/Sydwelll/nft-marketplace-backend/feature/market/journal"
	"github.com/Sydwelll/nft-marketplace-backend/feature/market/ledger"
	"github.com/Sydwelll/nft-marketplace-backend/feature/market/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

const operator = "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266"

// setupMockDB creates a mock GORM DB for testing.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

// setupLedgerDB returns a migrated in-memory ledger with two items, one of them sold.
func setupLedgerDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, store.Migrate(db))

	ctx := context.Background()
	svc := market.NewService(db, nil, zap.NewNop())
	require.NoError(t, svc.Deploy(ctx, operator))

	_, err = svc.Mint(ctx, market.MintRequest{To: "0xowner", ResourceURI: "http://example.com/token1", ForSale: true, SalePrice: ledger.NewAmount(1000)})
	require.NoError(t, err)
	_, err = svc.Mint(ctx, market.MintRequest{To: "0xowner", ResourceURI: "http://example.com/token2"})
	require.NoError(t, err)
	_, err = svc.Deposit(ctx, "0xbuyer", ledger.NewAmount(1000))
	require.NoError(t, err)
	_, err = svc.Purchase(ctx, 0, ledger.NewAmount(1000), "0xbuyer")
	require.NoError(t, err)
	return db
}

func emptyListing() <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo)
	close(ch)
	return ch
}

func TestService_Structure(t *testing.T) {
	ctx := context.Background()

	t.Run("Disabled", func(t *testing.T) {
		svc := NewService(nil, "journal", zap.NewNop(), nil)
		_, err := svc.CheckStructure(ctx)
		assert.ErrorIs(t, err, ErrStorageDisabled)
		assert.ErrorIs(t, svc.FixStructure(ctx, []string{"events"}), ErrStorageDisabled)
	})

	t.Run("Fix creates bucket and folders", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "journal").Return(false, nil)
		mockClient.On("MakeBucket", mock.Anything, "journal", mock.Anything).Return(nil)
		mockClient.On("PutObject", mock.Anything, "journal", "events/", mock.Anything, int64(0), mock.Anything).Return(minio.UploadInfo{}, nil)

		svc := NewService(mockClient, "journal", zap.NewNop(), nil)
		assert.NoError(t, svc.FixStructure(ctx, []string{"events"}))
		mockClient.AssertExpectations(t)
	})
}

func TestService_Ledger(t *testing.T) {
	ctx := context.Background()

	t.Run("Consistent", func(t *testing.T) {
		svc := NewService(nil, "journal", zap.NewNop(), setupLedgerDB(t))

		report, err := svc.CheckLedger(ctx)
		require.NoError(t, err)
		assert.True(t, report.Matched, report.Issues)
		assert.Equal(t, operator, report.Operator)
		assert.Equal(t, uint64(2), report.NextID)
		assert.Equal(t, 2, report.Minted)
		assert.Equal(t, 1, report.Purchased)
	})

	t.Run("Database error", func(t *testing.T) {
		db, sqlMock := setupMockDB(t)
		sqlMock.ExpectQuery("SELECT").WillReturnError(errors.New("connection lost"))

		svc := NewService(nil, "journal", zap.NewNop(), db)
		_, err := svc.CheckLedger(ctx)
		assert.Error(t, err)
	})

	t.Run("No database", func(t *testing.T) {
		svc := NewService(nil, "journal", zap.NewNop(), nil)
		_, err := svc.CheckLedger(ctx)
		assert.Error(t, err)
	})
}

func TestService_Schema(t *testing.T) {
	svc := NewService(nil, "journal", zap.NewNop(), setupLedgerDB(t))

	report, err := svc.CheckSchema()
	require.NoError(t, err)
	assert.True(t, report.Matched)
}

func TestService_Journal(t *testing.T) {
	ctx := context.Background()
	db := setupLedgerDB(t) // three events

	t.Run("Report only", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("ListObjects", mock.Anything, "journal", mock.Anything).Return(emptyListing())

		svc := NewService(mockClient, "journal", zap.NewNop(), db)
		report, err := svc.CheckJournal(ctx, false)
		require.NoError(t, err)
		assert.Equal(t, 3, report.Stored)
		assert.Equal(t, []uint64{1, 2, 3}, report.Missing)
		mockClient.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Fix", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("ListObjects", mock.Anything, "journal", mock.Anything).Return(emptyListing())
		mockClient.On("PutObject", mock.Anything, "journal", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(minio.UploadInfo{}, nil)

		svc := NewService(mockClient, "journal", zap.NewNop(), db)
		report, err := svc.CheckJournal(ctx, true)
		require.NoError(t, err)
		assert.Equal(t, 3, report.Published)
		assert.Empty(t, report.Missing)
		assert.Empty(t, report.Mismatched)
		mockClient.AssertCalled(t, "PutObject", mock.Anything, "journal", journal.ObjectName(3), mock.Anything, mock.Anything, mock.Anything)
		mockClient.AssertNumberOfCalls(t, "PutObject", 3)
	})
}

func TestService_CheckAll(t *testing.T) {
	svc := NewService(nil, "journal", zap.NewNop(), setupLedgerDB(t))

	report := svc.CheckAll(context.Background())

	ledgerReport, ok := report.Ledger.(*checks.LedgerReport)
	require.True(t, ok)
	assert.True(t, ledgerReport.Matched)

	_, ok = report.Schema.(*checks.SchemaReport)
	assert.True(t, ok)

	structure, ok := report.Structure.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "error", structure["status"])

	journalResult, ok := report.Journal.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, ErrStorageDisabled.Error(), journalResult["error"])
}
