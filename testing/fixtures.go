package testing

import (
	"fmt"
	"sync"
	"time"

	"github.com/amirphl/counter-api/models"
	"github.com/amirphl/counter-api/repository"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestCount inserts a count row through the repository
func (tf *TestFixtures) CreateTestCount(countNumber int64, description *string) (*models.CountRecord, error) {
	record := &models.CountRecord{
		CountNumber: countNumber,
		Description: description,
	}
	repo := repository.NewCountRecordRepository(tf.DB.DB)
	if err := repo.Save(CreateTestContext(), record); err != nil {
		return nil, fmt.Errorf("failed to insert count %d: %w", countNumber, err)
	}
	return record, nil
}

// CreateTestCounts inserts one row per value, in order
func (tf *TestFixtures) CreateTestCounts(values ...int64) ([]*models.CountRecord, error) {
	records := make([]*models.CountRecord, 0, len(values))
	for _, v := range values {
		r, err := tf.CreateTestCount(v, nil)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

// FixedClock is a manually advanced clock for repositories
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixedClock starts the clock at t
func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{now: t.UTC()}
}

// Now returns the current fixed time
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
