package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTableColumns(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)

	err = db.Exec("CREATE TABLE balances (account VARCHAR(128) PRIMARY KEY, amount INTEGER NOT NULL, note TEXT)").Error
	require.NoError(t, err)

	columns, err := GetTableColumns(db, "balances")
	require.NoError(t, err)
	require.Len(t, columns, 3)

	byName := make(map[string]ColumnInfo)
	for _, col := range columns {
		byName[col.Field] = col
	}

	assert.Equal(t, "varchar(128)", byName["account"].Type)
	assert.Equal(t, "PRI", byName["account"].Key)
	assert.Equal(t, "integer", byName["amount"].Type)
	assert.Equal(t, "NO", byName["amount"].Null)
	assert.Equal(t, "text", byName["note"].Type)
	assert.Equal(t, "YES", byName["note"].Null)

	_, err = GetTableColumns(db, "items")
	assert.ErrorIs(t, err, ErrNoSuchTable)
}
