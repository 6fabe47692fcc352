package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
	"github.com/dmitrymomot/notifykit/svc/store"
)

func TestLogStore(t *testing.T) {
	db := mongoDatabase(t)
	s := store.NewLogStore(db)
	ctx := context.Background()
	require.NoError(t, s.EnsureIndexes(ctx))

	subscriberID := uuid.New()
	cmd := notifications.Command{
		SubscriberID: subscriberID,
		Channel:      notifications.ChannelEmail,
		Recipient:    "user@example.com",
		EventType:    notifications.EventOrderCreated,
	}
	smsCmd := cmd
	smsCmd.Channel = notifications.ChannelSMS

	require.NoError(t, s.Add(ctx, notifications.NewSuccessLog(cmd, notifications.Rendered{Subject: "1"}, stamp)))
	require.NoError(t, s.Add(ctx, notifications.NewFailedLog(cmd, notifications.Rendered{Subject: "2"}, errors.New("boom"), stamp.Add(time.Minute))))
	require.NoError(t, s.Add(ctx, notifications.NewSuccessLog(smsCmd, notifications.Rendered{Subject: "3"}, stamp.Add(2*time.Minute))))

	t.Run("newest first", func(t *testing.T) {
		logs, err := s.List(ctx, subscriberID, notifications.ListOptions{})
		require.NoError(t, err)
		require.Len(t, logs, 3)
		assert.Equal(t, "3", logs[0].Subject)
		assert.Equal(t, "1", logs[2].Subject)
		assert.Equal(t, notifications.ChannelSMS, logs[0].Channel)
		assert.Equal(t, notifications.EventOrderCreated, logs[0].EventType)
	})

	t.Run("filters", func(t *testing.T) {
		logs, err := s.List(ctx, subscriberID, notifications.ListOptions{Status: notifications.StatusFailed})
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, "boom", logs[0].Error)

		logs, err = s.List(ctx, subscriberID, notifications.ListOptions{Channels: []notifications.Channel{notifications.ChannelSMS}})
		require.NoError(t, err)
		require.Len(t, logs, 1)

		since := stamp.Add(30 * time.Second)
		logs, err = s.List(ctx, subscriberID, notifications.ListOptions{Since: &since, Limit: 1})
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, "3", logs[0].Subject)

		logs, err = s.List(ctx, subscriberID, notifications.ListOptions{Offset: 10})
		require.NoError(t, err)
		assert.Empty(t, logs)
	})

	t.Run("count by status", func(t *testing.T) {
		counts, err := s.CountByStatus(ctx, subscriberID, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(2), counts[notifications.StatusSuccess])
		assert.Equal(t, int64(1), counts[notifications.StatusFailed])

		counts, err = s.CountByStatus(ctx, uuid.New(), nil)
		require.NoError(t, err)
		assert.Equal(t, int64(0), counts[notifications.StatusSuccess])
	})

	t.Run("rejects log without id", func(t *testing.T) {
		assert.ErrorIs(t, s.Add(ctx, notifications.Log{}), notifications.ErrInvalidLog)
	})
}
