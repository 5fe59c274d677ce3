package storage_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kareemeredaze/maitre-seo/internal/model"
	"github.com/kareemeredaze/maitre-seo/internal/storage"
	"github.com/kareemeredaze/maitre-seo/internal/testutil"
)

func TestOpenDatabaseRejectsMissingDriverName(t *testing.T) {
	_, openErr := storage.OpenDatabase(storage.Config{DataSourceName: "file:test?mode=memory"})
	require.ErrorIs(t, openErr, storage.ErrMissingDatabaseDriverName)
}

func TestOpenDatabaseRejectsUnsupportedDriver(t *testing.T) {
	_, openErr := storage.OpenDatabase(storage.Config{DriverName: "oracle", DataSourceName: "dsn"})
	require.ErrorIs(t, openErr, storage.ErrUnsupportedDatabaseDriver)
}

func TestOpenDatabaseRejectsMissingDataSourceName(t *testing.T) {
	_, openErr := storage.OpenDatabase(storage.Config{DriverName: storage.DriverNameSQLite})
	require.ErrorIs(t, openErr, storage.ErrMissingDataSourceName)
}

func TestOpenDatabaseTrimsConfigurationValues(t *testing.T) {
	configuration := testutil.NewSQLiteTestDatabase(t).Configuration()
	configuration.DriverName = "  " + configuration.DriverName + "  "
	configuration.DataSourceName = "  " + configuration.DataSourceName + "  "

	database, openErr := storage.OpenDatabase(configuration)
	require.NoError(t, openErr)
	require.NotNil(t, database)
}

func TestAutoMigrateCreatesPortalTables(t *testing.T) {
	database, openErr := storage.OpenDatabase(testutil.NewSQLiteTestDatabase(t).Configuration())
	require.NoError(t, openErr)
	require.NoError(t, storage.AutoMigrate(database))

	expectedTables := []string{"profiles", "campaigns", "backlinks", "invoices", "activity_log"}
	for _, tableName := range expectedTables {
		require.True(t, database.Migrator().HasTable(tableName), tableName)
	}

	profile := model.Profile{ID: storage.NewID(), Email: "client@example.com"}
	require.NoError(t, database.Create(&profile).Error)
}

func TestNewIDReturnsUniqueIdentifiers(t *testing.T) {
	require.NotEqual(t, storage.NewID(), storage.NewID())
	require.Len(t, storage.NewID(), 36)
}
