package ledger

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/localdate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameMatch_FoldKeysAgreeWithEqual(t *testing.T) {
	tests := []struct {
		name  string
		a, b  string
		equal bool
	}{
		{"ascii case", "Somchai", "SOMCHAI", true},
		{"long s", "Somſak", "Somsak", true},
		{"kelvin sign", "Kitti", "kitti", true},
		{"sharp s", "Straße", "STRASSE", true},
		{"different names", "Somchai", "Anan", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, NameMatchFold.Equal(tt.a, tt.b))

			keyA := LockKey("March 2568 Attendance", NameMatchFold, tt.a, "31/03/2568")
			keyB := LockKey("March 2568 Attendance", NameMatchFold, tt.b, "2025-03-31")
			assert.Equal(t, tt.equal, keyA == keyB)
		})
	}
}

func TestNameMatch_ExactKeepsNames(t *testing.T) {
	assert.False(t, NameMatchExact.Equal("Somchai", "somchai"))
	assert.Equal(t, "Somchai", NameMatchExact.Canonical("Somchai"))
	assert.NotEqual(t,
		LockKey("March 2568 Attendance", NameMatchExact, "Somchai", "31/03/2568"),
		LockKey("March 2568 Attendance", NameMatchExact, "somchai", "31/03/2568"),
	)
}

func TestSubmissionSegments(t *testing.T) {
	ts, err := localdate.ParseTimestamp("2025-04-01T00:30:00+07:00")
	require.NoError(t, err)

	implicit := SubmissionSegments(ts, 0, 0)
	if assert.Len(t, implicit, 2) {
		assert.Equal(t, Segment{Year: 2025, Month: time.April}, implicit[0])
		assert.Equal(t, Segment{Year: 2025, Month: time.March}, implicit[1])
	}

	explicit := SubmissionSegments(ts, 2568, 3)
	if assert.Len(t, explicit, 1) {
		assert.Equal(t, Segment{Year: 2025, Month: time.March}, explicit[0])
	}
}
