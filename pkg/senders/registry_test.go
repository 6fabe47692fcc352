package senders_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/email"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
	"github.com/dmitrymomot/notifykit/pkg/senders"
)

type stubSender struct {
	ch   notifications.Channel
	err  error
	sent []senders.Message
	fn   func()
}

func (s *stubSender) Channel() notifications.Channel { return s.ch }

func (s *stubSender) Send(_ context.Context, msg senders.Message) error {
	if s.fn != nil {
		s.fn()
	}
	s.sent = append(s.sent, msg)
	return s.err
}

func TestNewRegistry(t *testing.T) {
	t.Parallel()

	t.Run("duplicate channel", func(t *testing.T) {
		t.Parallel()

		_, err := senders.NewRegistry(
			&stubSender{ch: notifications.ChannelSlack},
			&stubSender{ch: notifications.ChannelSlack},
		)
		assert.ErrorIs(t, err, senders.ErrDuplicateSender)
	})

	t.Run("nil sender", func(t *testing.T) {
		t.Parallel()

		_, err := senders.NewRegistry(nil)
		assert.ErrorIs(t, err, senders.ErrInvalidSender)
	})

	t.Run("zero channel", func(t *testing.T) {
		t.Parallel()

		_, err := senders.NewRegistry(&stubSender{})
		assert.ErrorIs(t, err, senders.ErrInvalidSender)
		assert.ErrorIs(t, err, notifications.ErrUnknownChannel)
	})

	t.Run("channels sorted", func(t *testing.T) {
		t.Parallel()

		r, err := senders.NewRegistry(
			&stubSender{ch: notifications.ChannelSlack},
			&stubSender{ch: notifications.ChannelConsole},
		)
		require.NoError(t, err)
		assert.Equal(t, []notifications.Channel{notifications.ChannelConsole, notifications.ChannelSlack}, r.Channels())
	})
}

func TestRegistry_Validate(t *testing.T) {
	t.Parallel()

	r, err := senders.NewRegistry(
		&stubSender{ch: notifications.ChannelEmail},
		&stubSender{ch: notifications.ChannelConsole},
	)
	require.NoError(t, err)

	assert.NoError(t, r.Validate(notifications.ChannelEmail, notifications.ChannelConsole))

	err = r.Validate(notifications.ChannelEmail, notifications.ChannelSMS, notifications.ChannelSignal)
	assert.ErrorIs(t, err, senders.ErrSenderNotRegistered)
	assert.Contains(t, err.Error(), "sms, signal")

	assert.ErrorIs(t, r.Validate(), senders.ErrSenderNotRegistered)
}

func TestRegistry_Send(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("routes by channel and isolates settings", func(t *testing.T) {
		t.Parallel()

		slack := &stubSender{ch: notifications.ChannelSlack}
		r, err := senders.NewRegistry(slack)
		require.NoError(t, err)

		settings := map[string]string{"webhook_url": "https://hooks.example.com"}
		require.NoError(t, r.Send(ctx, notifications.ChannelSlack, senders.Message{Recipient: "#ops", Settings: settings}))
		require.Len(t, slack.sent, 1)

		slack.sent[0].Settings["webhook_url"] = "changed"
		assert.Equal(t, "https://hooks.example.com", settings["webhook_url"])
	})

	t.Run("unregistered channel", func(t *testing.T) {
		t.Parallel()

		r, err := senders.NewRegistry()
		require.NoError(t, err)
		assert.ErrorIs(t, r.Send(ctx, notifications.ChannelSMS, senders.Message{}), senders.ErrSenderNotRegistered)
	})

	t.Run("panic becomes failure", func(t *testing.T) {
		t.Parallel()

		r, err := senders.NewRegistry(&stubSender{ch: notifications.ChannelDiscord, fn: func() { panic("boom") }})
		require.NoError(t, err)

		err = r.Send(ctx, notifications.ChannelDiscord, senders.Message{})
		assert.ErrorIs(t, err, senders.ErrSendFailed)
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("sender error passes through", func(t *testing.T) {
		t.Parallel()

		want := errors.New("provider down")
		r, err := senders.NewRegistry(&stubSender{ch: notifications.ChannelDiscord, err: want})
		require.NoError(t, err)
		assert.ErrorIs(t, r.Send(ctx, notifications.ChannelDiscord, senders.Message{}), want)
	})
}

func TestNewDefaultRegistry(t *testing.T) {
	t.Parallel()

	r, err := senders.NewDefaultRegistry(email.NewDevSender(t.TempDir()), &bytes.Buffer{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	assert.Len(t, r.Channels(), len(notifications.AllChannels()))
	assert.NoError(t, r.Validate())
}

func TestMemorySettingsStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := senders.NewMemorySettingsStore()
	id := uuid.New()

	_, err := store.GetSettings(ctx, id, notifications.ChannelTelegram)
	assert.ErrorIs(t, err, senders.ErrSettingsNotFound)

	in := map[string]string{"bot_token": "123:abc"}
	require.NoError(t, store.SaveSettings(ctx, id, notifications.ChannelTelegram, in))
	in["bot_token"] = "mutated"

	got, err := store.GetSettings(ctx, id, notifications.ChannelTelegram)
	require.NoError(t, err)
	assert.Equal(t, "123:abc", got["bot_token"])

	got["bot_token"] = "mutated"
	again, _ := store.GetSettings(ctx, id, notifications.ChannelTelegram)
	assert.Equal(t, "123:abc", again["bot_token"])

	_, err = store.GetSettings(ctx, uuid.New(), notifications.ChannelTelegram)
	assert.ErrorIs(t, err, senders.ErrSettingsNotFound)

	assert.ErrorIs(t, store.SaveSettings(ctx, id, notifications.Channel{}, in), notifications.ErrUnknownChannel)
}
