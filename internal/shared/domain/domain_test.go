package domain_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/reelgate/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUserID(t *testing.T) {
	id, err := domain.ParseUserID(" 123456789 ")
	require.NoError(t, err)
	assert.Equal(t, domain.UserID(123456789), id)
	assert.Equal(t, "123456789", id.String())

	_, err = domain.ParseUserID("alice")
	assert.Error(t, err)
}

func TestUserID_Equals(t *testing.T) {
	assert.True(t, domain.UserID(7).Equals(domain.UserID(7)))
	assert.False(t, domain.UserID(7).Equals(domain.UserID(8)))
	assert.False(t, domain.UserID(7).Equals(domain.DayOf(time.Now())))
	assert.True(t, domain.UserID(0).IsZero())
}

func TestDayOf_UsesUTC(t *testing.T) {
	// 23:30 in UTC-5 is already the next day in UTC.
	loc := time.FixedZone("EST", -5*60*60)
	local := time.Date(2026, 3, 9, 23, 30, 0, 0, loc)

	day := domain.DayOf(local)
	assert.Equal(t, "2026-03-10", day.String())
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), day.Start())
	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), day.End())
	assert.Equal(t, "2026-03-11", day.Next().String())
}

func TestParseDay(t *testing.T) {
	day, err := domain.ParseDay("2026-12-31")
	require.NoError(t, err)
	assert.Equal(t, "2027-01-01", day.Next().String())
	assert.True(t, day.Equals(domain.DayOf(time.Date(2026, 12, 31, 18, 0, 0, 0, time.UTC))))

	_, err = domain.ParseDay("31/12/2026")
	assert.Error(t, err)
	assert.True(t, domain.Day{}.IsZero())
}

func TestFixedClock(t *testing.T) {
	start := time.Date(2026, 1, 1, 23, 0, 0, 0, time.UTC)
	clock := domain.NewFixedClock(start)
	assert.Equal(t, "2026-01-01", domain.Today(clock).String())

	clock.Advance(2 * time.Hour)
	assert.Equal(t, "2026-01-02", domain.Today(clock).String())

	clock.Set(start)
	assert.Equal(t, start, clock.Now())
}

func TestSystemClock_IsUTC(t *testing.T) {
	assert.Equal(t, time.UTC, domain.SystemClock{}.Now().Location())
}

func TestNewBaseEvent(t *testing.T) {
	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	event := domain.NewBaseEvent("42", "Entitlement", "payments.purchase.succeeded", at)

	assert.NotEqual(t, uuid.Nil, event.EventID())
	assert.Equal(t, "42", event.AggregateID())
	assert.Equal(t, "Entitlement", event.AggregateType())
	assert.Equal(t, "payments.purchase.succeeded", event.RoutingKey())
	assert.Equal(t, at, event.OccurredAt())

	event.SetMetadata(domain.EventMetadata{UserID: 42, CorrelationID: "c"})
	assert.Equal(t, domain.UserID(42), event.Metadata().UserID)
}
