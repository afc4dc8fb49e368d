package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeClockIn            NotificationType = "attendance_clock_in"
	TypeClockOut           NotificationType = "attendance_clock_out"
	TypeRecordUpdated      NotificationType = "attendance_record_updated"
	TypeRecordApproved     NotificationType = "attendance_record_approved"
	TypeSegmentProvisioned NotificationType = "attendance_segment_provisioned"
)

// TopicAll receives every notification regardless of its own topic.
const TopicAll = "ledger"

// DriverTopic is the topic carrying the notifications of one driver.
func DriverTopic(driverName string) string {
	return "driver:" + driverName
}

// Notification represents a delivered notification
type Notification struct {
	ID        string
	Topic     string
	Type      NotificationType
	Title     string
	Message   string
	Data      map[string]interface{}
	CreatedAt time.Time
}
