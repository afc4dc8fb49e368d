package postgresql

import (
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-ledger/internal/domain/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertNotifications(t *testing.T) {
	created := time.Date(2025, time.March, 5, 8, 15, 0, 0, time.UTC)
	batch := []*notification.Notification{
		{ID: "fixed", Topic: "ledger", Type: notification.TypeClockIn, Title: "t", Message: "m", CreatedAt: created},
		{Topic: "ledger", Type: notification.TypeClockOut, Data: map[string]interface{}{"row": 2}, CreatedAt: created},
	}

	query, args, err := insertNotifications(batch)
	require.NoError(t, err)

	assert.Contains(t, query, "($1, $2, $3, $4, $5, $6, $7), ($8, $9, $10, $11, $12, $13, $14)")
	assert.True(t, strings.Contains(query, "ON CONFLICT (id) DO NOTHING"))
	require.Len(t, args, 14)

	assert.Equal(t, "fixed", args[0])
	assert.Equal(t, "attendance_clock_in", args[2])
	assert.Nil(t, args[5].([]byte))

	assert.NotEmpty(t, batch[1].ID)
	assert.Equal(t, batch[1].ID, args[7])
	assert.JSONEq(t, `{"row":2}`, string(args[12].([]byte)))
}
