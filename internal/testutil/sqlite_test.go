package testutil_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kareemeredaze/maitre-seo/internal/storage"
	"github.com/kareemeredaze/maitre-seo/internal/testutil"
)

func TestNewSQLiteTestDatabaseProvidesInMemoryConfiguration(t *testing.T) {
	sqliteDatabase := testutil.NewSQLiteTestDatabase(t)
	configuration := sqliteDatabase.Configuration()

	require.Equal(t, storage.DriverNameSQLite, configuration.DriverName)

	testCases := []struct {
		name              string
		expectedSubstring string
	}{
		{name: "includes memory mode parameter", expectedSubstring: "mode=memory"},
		{name: "includes shared cache parameter", expectedSubstring: "cache=shared"},
		{name: "enforces foreign keys", expectedSubstring: "_foreign_keys=on"},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(testingT *testing.T) {
			require.Contains(testingT, configuration.DataSourceName, testCase.expectedSubstring)
		})
	}
}

func TestNewSQLiteTestDatabaseReturnsUniqueDataSourceNames(t *testing.T) {
	firstDatabase := testutil.NewSQLiteTestDatabase(t)
	secondDatabase := testutil.NewSQLiteTestDatabase(t)

	require.NotEqual(t, firstDatabase.DataSourceName(), secondDatabase.DataSourceName())
}

func TestOpenMigratedDatabaseIsReadyForPortalRows(t *testing.T) {
	database := testutil.NewSQLiteTestDatabase(t).OpenMigratedDatabase(t)

	require.True(t, database.Migrator().HasTable("campaigns"))
	require.True(t, database.Migrator().HasTable("activity_log"))
}
