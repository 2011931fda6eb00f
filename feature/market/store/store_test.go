package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Sydwelll/nft-marketplace-backend/core/database"
	"github.com/Sydwelll/nft-marketplace-backend/feature/market/ledger"
	"github.com/Sydwelll/nft-marketplace-backend/feature/market/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

const (
	operator ledger.Account = "0xoperator"
	owner    ledger.Account = "0xowner"
	buyer    ledger.Account = "0xbuyer"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, store.Migrate(db))
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func TestDeploy(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	s := store.New(db)

	_, err := s.Operator(ctx)
	assert.ErrorIs(t, err, store.ErrNotDeployed)
	_, err = s.AllocateID(ctx)
	assert.ErrorIs(t, err, store.ErrNotDeployed)

	assert.ErrorIs(t, s.Deploy(ctx, ""), ledger.ErrInvalidOperator)
	require.NoError(t, s.Deploy(ctx, operator))
	assert.NoError(t, s.Deploy(ctx, operator))
	assert.ErrorIs(t, s.Deploy(ctx, "0xother"), store.ErrAlreadyDeployed)

	got, err := s.Operator(ctx)
	assert.NoError(t, err)
	assert.Equal(t, operator, got)

	next, err := s.NextID(ctx)
	assert.NoError(t, err)
	assert.Equal(t, ledger.ItemID(0), next)
}

func TestLedgerOnStore(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	s := store.New(db)
	require.NoError(t, s.Deploy(ctx, operator))
	require.NoError(t, s.Deposit(ctx, buyer, ledger.NewAmount(1000)))

	l, err := ledger.New(operator, s, s, s)
	require.NoError(t, err)

	id, err := l.Mint(ctx, owner, "http://example.com/token1", true, ledger.NewAmount(1000))
	require.NoError(t, err)
	assert.Equal(t, ledger.ItemID(0), id)

	item, err := l.Item(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, ledger.Item{ID: 0, Owner: owner, ResourceURI: "http://example.com/token1", ForSale: true, SalePrice: ledger.NewAmount(1000)}, item)

	_, err = l.Purchase(ctx, id, ledger.NewAmount(1000), buyer)
	require.NoError(t, err)

	for account, want := range map[ledger.Account]ledger.Amount{buyer: {}, owner: ledger.NewAmount(900), operator: ledger.NewAmount(100)} {
		got, err := s.Balance(ctx, account)
		assert.NoError(t, err)
		assert.Equal(t, want, got, account)
	}

	got, err := l.OwnerOf(ctx, id)
	assert.NoError(t, err)
	assert.Equal(t, buyer, got)

	require.NoError(t, l.Burn(ctx, id, buyer))
	_, err = l.OwnerOf(ctx, id)
	assert.ErrorIs(t, err, ledger.ErrNonexistentItem)

	id, err = l.Mint(ctx, owner, "second", false, ledger.NewAmount(5))
	require.NoError(t, err)
	assert.Equal(t, ledger.ItemID(1), id)

	items, err := s.Items(ctx)
	assert.NoError(t, err)
	assert.Len(t, items, 1)

	events, err := s.Events(ctx, 0, 0)
	require.NoError(t, err)
	names := make([]string, 0, len(events))
	for _, e := range events {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{
		ledger.EventItemMinted, ledger.EventItemPurchased, ledger.EventItemBurned, ledger.EventItemMinted,
	}, names)

	page, err := s.Events(ctx, events[1].Seq, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, events[2].Seq, page[0].Seq)
}

func TestPurchaseRollsBack(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	require.NoError(t, store.New(db).Deploy(ctx, operator))

	err := db.Transaction(func(tx *gorm.DB) error {
		s := store.New(tx)
		l, err := ledger.New(operator, s, s, s)
		if err != nil {
			return err
		}
		_, err = l.Mint(ctx, owner, "uri", true, ledger.NewAmount(10))
		return err
	})
	require.NoError(t, err)

	err = db.Transaction(func(tx *gorm.DB) error {
		s := store.New(tx)
		l, err := ledger.New(operator, s, s, s)
		if err != nil {
			return err
		}
		_, err = l.Purchase(ctx, 0, ledger.NewAmount(10), buyer)
		return err
	})
	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)

	s := store.New(db)
	item, ok, err := s.Item(ctx, 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, owner, item.Owner)
	assert.True(t, item.ForSale)

	events, err := s.Events(ctx, 0, 0)
	assert.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestBalances(t *testing.T) {
	ctx := context.Background()
	s := store.New(setupDB(t))

	t.Run("Wider than 64 bits", func(t *testing.T) {
		twenty := ledger.MustParseAmount("20000000000000000000")
		require.NoError(t, s.Deposit(ctx, "0xwide", twenty))
		require.NoError(t, s.Deposit(ctx, "0xwide", twenty))

		got, err := s.Balance(ctx, "0xwide")
		assert.NoError(t, err)
		assert.Equal(t, "40000000000000000000", got.String())
	})

	t.Run("Overflow", func(t *testing.T) {
		require.NoError(t, s.Deposit(ctx, "0xfull", ledger.MaxAmount))
		err := s.Deposit(ctx, "0xfull", ledger.NewAmount(1))
		assert.ErrorIs(t, err, ledger.ErrBalanceOverflow)

		got, err := s.Balance(ctx, "0xfull")
		assert.NoError(t, err)
		assert.Equal(t, ledger.MaxAmount, got)
	})

	t.Run("Account case and spacing", func(t *testing.T) {
		require.NoError(t, s.Deposit(ctx, " 0xMixed ", ledger.NewAmount(3)))
		require.NoError(t, s.Deposit(ctx, "0XMIXED", ledger.NewAmount(4)))

		got, err := s.Balance(ctx, "0xmixed")
		assert.NoError(t, err)
		assert.Equal(t, ledger.NewAmount(7), got)
	})

	t.Run("Invalid recipient", func(t *testing.T) {
		assert.ErrorIs(t, s.Deposit(ctx, "  ", ledger.NewAmount(1)), ledger.ErrInvalidRecipient)
	})
}

func TestSettle_DB(t *testing.T) {
	settlement := ledger.Settlement{
		Payer: buyer, Payment: ledger.NewAmount(10),
		Seller: owner, Proceeds: ledger.NewAmount(9),
		Operator: operator, Commission: ledger.NewAmount(1),
	}
	balanceRows := func(account string, amount string) *sqlmock.Rows {
		return sqlmock.NewRows([]string{"account", "amount"}).AddRow(account, amount)
	}
	noRows := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"account", "amount"})
	}

	t.Run("Insufficient funds", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectQuery("SELECT \\* FROM `balances`").WillReturnRows(balanceRows(string(buyer), "9"))

		err := store.New(db).Settle(context.Background(), settlement)
		assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Debit error", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectQuery("SELECT \\* FROM `balances`").WillReturnRows(balanceRows(string(buyer), "10"))
		mock.ExpectExec("INSERT INTO `balances`").WillReturnError(errors.New("connection reset"))

		err := store.New(db).Settle(context.Background(), settlement)
		assert.ErrorContains(t, err, "connection reset")
		assert.NotErrorIs(t, err, ledger.ErrInsufficientFunds)
	})

	t.Run("Credits", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectQuery("SELECT \\* FROM `balances`").WillReturnRows(balanceRows(string(buyer), "25"))
		mock.ExpectExec("INSERT INTO `balances`").
			WithArgs(string(buyer), "15").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT \\* FROM `balances`").WillReturnRows(noRows())
		mock.ExpectExec("INSERT INTO `balances`").
			WithArgs(string(owner), "9").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT \\* FROM `balances`").WillReturnRows(balanceRows(string(operator), "4"))
		mock.ExpectExec("INSERT INTO `balances`").
			WithArgs(string(operator), "5").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := store.New(db).Settle(context.Background(), settlement)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Credit overflow", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectQuery("SELECT \\* FROM `balances`").WillReturnRows(balanceRows(string(buyer), "10"))
		mock.ExpectExec("INSERT INTO `balances`").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT \\* FROM `balances`").WillReturnRows(balanceRows(string(owner), ledger.MaxAmount.String()))

		err := store.New(db).Settle(context.Background(), settlement)
		assert.ErrorIs(t, err, ledger.ErrBalanceOverflow)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
