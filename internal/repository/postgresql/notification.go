package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/attendance-ledger/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/database"
	"github.com/google/uuid"
)

// NotificationDDL creates the archive of delivered ledger notifications.
const NotificationDDL = `
	CREATE TABLE IF NOT EXISTS ledger_notifications (
		id          UUID PRIMARY KEY,
		topic       TEXT NOT NULL,
		type        TEXT NOT NULL,
		title       TEXT NOT NULL,
		message     TEXT NOT NULL,
		data        JSONB,
		created_at  TIMESTAMPTZ NOT NULL
	)
`

type notificationSink struct {
	db *database.DB
}

// NewNotificationSink archives every delivered notification in ledger_notifications
func NewNotificationSink(db *database.DB) notification.Sink {
	return &notificationSink{db: db}
}

func (s *notificationSink) Name() string { return "postgres" }

// Deliver inserts the batch with a single statement
func (s *notificationSink) Deliver(ctx context.Context, notifications []*notification.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	query, args, err := insertNotifications(notifications)
	if err != nil {
		return err
	}

	q := GetQuerier(ctx, s.db)
	if _, err := q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to archive notifications: %w", err)
	}

	return nil
}

const notificationColumns = 7

func insertNotifications(notifications []*notification.Notification) (string, []interface{}, error) {
	valueStrings := make([]string, 0, len(notifications))
	valueArgs := make([]interface{}, 0, len(notifications)*notificationColumns)

	for i, n := range notifications {
		if n.ID == "" {
			n.ID = uuid.New().String()
		}

		var dataJSON []byte
		if n.Data != nil {
			encoded, err := json.Marshal(n.Data)
			if err != nil {
				return "", nil, fmt.Errorf("failed to marshal notification data: %w", err)
			}
			dataJSON = encoded
		}

		base := i * notificationColumns
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7,
		))
		valueArgs = append(valueArgs,
			n.ID,
			n.Topic,
			string(n.Type),
			n.Title,
			n.Message,
			dataJSON,
			n.CreatedAt,
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO ledger_notifications (id, topic, type, title, message, data, created_at)
		VALUES %s
		ON CONFLICT (id) DO NOTHING
	`, strings.Join(valueStrings, ", "))

	return query, valueArgs, nil
}
