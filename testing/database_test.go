package testing_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/amirphl/counter-api/models"
	testingutil "github.com/amirphl/counter-api/testing"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestWithDBIsolation(t *testing.T) {
	var first *testingutil.TestDB
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		first = testDB
		return testDB.DB.Create(&models.CountRecord{CountNumber: 1}).Error
	})
	require.NoError(t, err)
	assert.Error(t, first.Database.Ping(context.Background()), "database is closed after the test")

	err = testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		assert.NotEqual(t, first.Name, testDB.Name)
		var rows int64
		require.NoError(t, testDB.DB.Model(&models.CountRecord{}).Count(&rows).Error)
		assert.Zero(t, rows)
		return nil
	})
	require.NoError(t, err)
}

func TestWithDBReturnsTestError(t *testing.T) {
	err := testingutil.TestWithDB(func(*testingutil.TestDB) error {
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestWithDBLogsCleanupFailure(t *testing.T) {
	var buf bytes.Buffer
	prev := zlog.Logger
	zlog.Logger = zerolog.New(&buf)
	t.Cleanup(func() { zlog.Logger = prev })

	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		require.NoError(t, testDB.Database.Close())
		testDB.Database.DB = &gorm.DB{Config: &gorm.Config{}}
		return nil
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, "failed to cleanup test database")
}
