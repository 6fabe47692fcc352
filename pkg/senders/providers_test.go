package senders_test

import (
	"bytes"
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/dmitrymomot/notifykit/pkg/email"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
	"github.com/dmitrymomot/notifykit/pkg/senders"
)

type capturedRequest struct {
	Path    string
	Headers http.Header
	Body    map[string]any
}

// captureServer records each request and replies with status.
func captureServer(t *testing.T, status int) (*httptest.Server, func() []capturedRequest) {
	t.Helper()

	var (
		mu   sync.Mutex
		reqs []capturedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)

		mu.Lock()
		reqs = append(reqs, capturedRequest{Path: r.URL.Path, Headers: r.Header.Clone(), Body: body})
		mu.Unlock()

		w.WriteHeader(status)
		if status >= 300 {
			_, _ = w.Write([]byte("rejected\nby provider"))
		}
	}))
	t.Cleanup(srv.Close)

	return srv, func() []capturedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]capturedRequest(nil), reqs...)
	}
}

func message(recipient string, settings map[string]string) senders.Message {
	return senders.Message{
		SubscriberID: uuid.New(),
		Recipient:    recipient,
		EventType:    notifications.EventOrderShipped,
		Subject:      "Order 12345 shipped",
		Body:         "It is on its way",
		Settings:     settings,
	}
}

func TestWebhookSenders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		sender   func(base string) senders.Sender
		settings func(base string) map[string]string
		check    func(t *testing.T, req capturedRequest)
	}{
		{
			name:     "telegram",
			sender:   func(base string) senders.Sender { return senders.NewTelegram(senders.WithBaseURL(base)) },
			settings: func(string) map[string]string { return map[string]string{"bot_token": "123:abc"} },
			check: func(t *testing.T, req capturedRequest) {
				assert.Equal(t, "/bot123:abc/sendMessage", req.Path)
				assert.Equal(t, "chat-1", req.Body["chat_id"])
				assert.Equal(t, "Order 12345 shipped\n\nIt is on its way", req.Body["text"])
			},
		},
		{
			name:     "discord",
			sender:   func(string) senders.Sender { return senders.NewDiscord() },
			settings: func(base string) map[string]string { return map[string]string{"webhook_url": base + "/api/webhooks/1/x"} },
			check: func(t *testing.T, req capturedRequest) {
				assert.Equal(t, "/api/webhooks/1/x", req.Path)
				assert.Equal(t, "Order 12345 shipped\n\nIt is on its way", req.Body["content"])
			},
		},
		{
			name:     "slack",
			sender:   func(string) senders.Sender { return senders.NewSlack() },
			settings: func(base string) map[string]string { return map[string]string{"webhook_url": base + "/services/T/B/X"} },
			check: func(t *testing.T, req capturedRequest) {
				assert.Equal(t, "/services/T/B/X", req.Path)
				assert.Contains(t, req.Body["text"], "It is on its way")
			},
		},
		{
			name:     "msteams",
			sender:   func(string) senders.Sender { return senders.NewMSTeams() },
			settings: func(base string) map[string]string { return map[string]string{"webhook_url": base + "/webhookb2/abc"} },
			check: func(t *testing.T, req capturedRequest) {
				assert.Equal(t, "MessageCard", req.Body["@type"])
				assert.Equal(t, "Order 12345 shipped", req.Body["title"])
				assert.Equal(t, "It is on its way", req.Body["text"])
			},
		},
		{
			name:   "whatsapp",
			sender: func(base string) senders.Sender { return senders.NewWhatsApp(senders.WithBaseURL(base)) },
			settings: func(string) map[string]string {
				return map[string]string{"access_token": "secret", "phone_number_id": "555"}
			},
			check: func(t *testing.T, req capturedRequest) {
				assert.Equal(t, "/555/messages", req.Path)
				assert.Equal(t, "Bearer secret", req.Headers.Get("Authorization"))
				assert.Equal(t, "whatsapp", req.Body["messaging_product"])
				assert.Equal(t, "chat-1", req.Body["to"])
			},
		},
		{
			name:     "signal",
			sender:   func(string) senders.Sender { return senders.NewSignal() },
			settings: func(base string) map[string]string { return map[string]string{"api_url": base + "/", "number": "+15550001"} },
			check: func(t *testing.T, req capturedRequest) {
				assert.Equal(t, "/v2/send", req.Path)
				assert.Equal(t, "+15550001", req.Body["number"])
				assert.Equal(t, []any{"chat-1"}, req.Body["recipients"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name+" success", func(t *testing.T) {
			t.Parallel()

			srv, requests := captureServer(t, http.StatusOK)
			s := tt.sender(srv.URL)
			require.NoError(t, s.Send(context.Background(), message("chat-1", tt.settings(srv.URL))))

			reqs := requests()
			require.Len(t, reqs, 1)
			assert.Equal(t, "application/json", reqs[0].Headers.Get("Content-Type"))
			tt.check(t, reqs[0])
		})

		t.Run(tt.name+" provider rejects", func(t *testing.T) {
			t.Parallel()

			srv, requests := captureServer(t, http.StatusBadRequest)
			err := tt.sender(srv.URL).Send(context.Background(), message("chat-1", tt.settings(srv.URL)))
			assert.ErrorIs(t, err, senders.ErrSendFailed)
			assert.Contains(t, err.Error(), "status 400")
			assert.Contains(t, err.Error(), "rejected by provider")
			assert.Len(t, requests(), 1, "no retries")
		})

		t.Run(tt.name+" missing settings", func(t *testing.T) {
			t.Parallel()

			srv, requests := captureServer(t, http.StatusOK)
			err := tt.sender(srv.URL).Send(context.Background(), message("chat-1", nil))
			assert.ErrorIs(t, err, senders.ErrSendFailed)
			assert.ErrorIs(t, err, senders.ErrMissingSetting)
			assert.Empty(t, requests())
		})
	}
}

func TestWebhookSenders_InvalidURL(t *testing.T) {
	t.Parallel()

	for _, u := range []string{"ftp://example.com/hook", "not a url", "https://"} {
		err := senders.NewSlack().Send(context.Background(), message("#ops", map[string]string{"webhook_url": u}))
		assert.ErrorIs(t, err, senders.ErrSendFailed, u)
		assert.ErrorIs(t, err, senders.ErrInvalidSetting, u)
	}
}

func TestWebhookSenders_TransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	err := senders.NewDiscord().Send(context.Background(), message("", map[string]string{"webhook_url": base + "/hook"}))
	assert.ErrorIs(t, err, senders.ErrSendFailed)
}

func TestDiscord_TruncatesLongContent(t *testing.T) {
	t.Parallel()

	srv, requests := captureServer(t, http.StatusNoContent)
	msg := message("", map[string]string{"webhook_url": srv.URL})
	msg.Subject = ""
	msg.Body = strings.Repeat("é", 2500)

	require.NoError(t, senders.NewDiscord().Send(context.Background(), msg))
	content, _ := requests()[0].Body["content"].(string)
	assert.Equal(t, 2000, len([]rune(content)))
}

func TestConsole(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	c := senders.NewConsole(&buf)
	assert.Equal(t, notifications.ChannelConsole, c.Channel())
	require.NoError(t, c.Send(context.Background(), message("stdout", nil)))
	assert.Contains(t, buf.String(), "[OrderShipped] to=stdout")
	assert.Contains(t, buf.String(), "It is on its way")
}

func TestSMS(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := senders.NewSMS(slog.New(slog.NewJSONHandler(&buf, nil)))
	require.NoError(t, s.Send(context.Background(), message("+15550002", nil)))
	assert.Contains(t, buf.String(), `"to":"+15550002"`)
	assert.Contains(t, buf.String(), `"event_type":"OrderShipped"`)
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendEmail(ctx context.Context, params email.SendEmailParams) error {
	return m.Called(ctx, params).Error(0)
}

func TestEmail(t *testing.T) {
	t.Parallel()

	t.Run("maps message to params", func(t *testing.T) {
		t.Parallel()

		mailer := new(mockMailer)
		defer mailer.AssertExpectations(t)
		mailer.On("SendEmail", mock.Anything, email.SendEmailParams{
			SendTo:   "user@example.com",
			Subject:  "Order 12345 shipped",
			BodyHTML: "It is on its way",
			Tag:      "OrderShipped",
		}).Return(nil)

		require.NoError(t, senders.NewEmail(mailer).Send(context.Background(), message("user@example.com", nil)))
	})

	t.Run("mailer failure", func(t *testing.T) {
		t.Parallel()

		mailer := new(mockMailer)
		mailer.On("SendEmail", mock.Anything, mock.Anything).Return(email.ErrFailedToSendEmail)

		err := senders.NewEmail(mailer).Send(context.Background(), message("user@example.com", nil))
		assert.ErrorIs(t, err, senders.ErrSendFailed)
		assert.ErrorIs(t, err, email.ErrFailedToSendEmail)
	})

	t.Run("nil mailer panics", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() { senders.NewEmail(nil) })
	})
}

func TestFirebase(t *testing.T) {
	t.Parallel()

	settings := map[string]string{"project_id": "shop-prod", "service_account_json": `{"type":"service_account"}`}

	t.Run("sends with bearer token and caches source", func(t *testing.T) {
		t.Parallel()

		srv, requests := captureServer(t, http.StatusOK)
		var built atomic.Int32
		fb := senders.NewFirebase(func(context.Context, []byte) (oauth2.TokenSource, error) {
			built.Add(1)
			return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "access", TokenType: "Bearer"}), nil
		}, senders.WithBaseURL(srv.URL))

		require.NoError(t, fb.Send(context.Background(), message("device-token", settings)))
		require.NoError(t, fb.Send(context.Background(), message("device-token", settings)))
		assert.Equal(t, int32(1), built.Load())

		reqs := requests()
		require.Len(t, reqs, 2)
		assert.Equal(t, "/v1/projects/shop-prod/messages:send", reqs[0].Path)
		assert.Equal(t, "Bearer access", reqs[0].Headers.Get("Authorization"))

		m, _ := reqs[0].Body["message"].(map[string]any)
		assert.Equal(t, "device-token", m["token"])
		n, _ := m["notification"].(map[string]any)
		assert.Equal(t, "Order 12345 shipped", n["title"])
	})

	t.Run("rotated key replaces the project's source", func(t *testing.T) {
		t.Parallel()

		srv, _ := captureServer(t, http.StatusOK)
		var built atomic.Int32
		fb := senders.NewFirebase(func(context.Context, []byte) (oauth2.TokenSource, error) {
			built.Add(1)
			return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "access", TokenType: "Bearer"}), nil
		}, senders.WithBaseURL(srv.URL))

		rotated := map[string]string{"project_id": "shop-prod", "service_account_json": `{"type":"service_account","rotated":true}`}
		require.NoError(t, fb.Send(context.Background(), message("device-token", settings)))
		require.NoError(t, fb.Send(context.Background(), message("device-token", rotated)))
		require.NoError(t, fb.Send(context.Background(), message("device-token", rotated)))
		assert.Equal(t, int32(2), built.Load())

		// The old key was evicted, not kept alongside the new one.
		require.NoError(t, fb.Send(context.Background(), message("device-token", settings)))
		assert.Equal(t, int32(3), built.Load())
	})

	t.Run("stalled token endpoint fails the send", func(t *testing.T) {
		t.Parallel()

		tokenSrv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			// Drain the body so the server watches the connection and cancels
			// r.Context() when the client gives up; otherwise Close blocks.
			_, _ = io.Copy(io.Discard, r.Body)
			<-r.Context().Done()
		}))
		t.Cleanup(tokenSrv.Close)

		fb := senders.NewFirebase(nil, senders.WithRequestTimeout(100*time.Millisecond))
		done := make(chan error, 1)
		go func() {
			done <- fb.Send(context.Background(), message("device-token", map[string]string{
				"project_id":           "shop-prod",
				"service_account_json": serviceAccountJSON(t, tokenSrv.URL),
			}))
		}()

		select {
		case err := <-done:
			assert.ErrorIs(t, err, senders.ErrSendFailed)
		case <-time.After(5 * time.Second):
			t.Fatal("send blocked on the token endpoint")
		}
	})

	t.Run("bad service account", func(t *testing.T) {
		t.Parallel()

		err := senders.NewFirebase(nil).Send(context.Background(), message("device-token",
			map[string]string{"project_id": "p", "service_account_json": "not json"}))
		assert.ErrorIs(t, err, senders.ErrSendFailed)
		assert.ErrorIs(t, err, senders.ErrInvalidSetting)
	})
}

func pushSubscription(t *testing.T, endpoint string) string {
	t.Helper()

	key, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)
	auth := make([]byte, 16)
	_, err = rand.Read(auth)
	require.NoError(t, err)

	raw, err := json.Marshal(webpush.Subscription{
		Endpoint: endpoint,
		Keys: webpush.Keys{
			P256dh: base64.RawURLEncoding.EncodeToString(key.PublicKey().Bytes()),
			Auth:   base64.RawURLEncoding.EncodeToString(auth),
		},
	})
	require.NoError(t, err)
	return string(raw)
}

func TestWebPush(t *testing.T) {
	t.Parallel()

	priv, pub, err := webpush.GenerateVAPIDKeys()
	require.NoError(t, err)
	settings := map[string]string{"vapid_public_key": pub, "vapid_private_key": priv, "subscriber": "ops@example.com"}

	t.Run("delivers encrypted payload", func(t *testing.T) {
		t.Parallel()

		var (
			mu      sync.Mutex
			headers http.Header
		)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			headers = r.Header.Clone()
			mu.Unlock()
			w.WriteHeader(http.StatusCreated)
		}))
		defer srv.Close()

		require.NoError(t, senders.NewWebPush().Send(context.Background(), message(pushSubscription(t, srv.URL+"/push/abc"), settings)))

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, "aes128gcm", headers.Get("Content-Encoding"))
		assert.Contains(t, headers.Get("Authorization"), "vapid")
	})

	t.Run("push service rejects", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusGone)
		}))
		defer srv.Close()

		err := senders.NewWebPush().Send(context.Background(), message(pushSubscription(t, srv.URL), settings))
		assert.ErrorIs(t, err, senders.ErrSendFailed)
		assert.Contains(t, err.Error(), "status 410")
	})

	t.Run("recipient is not a subscription", func(t *testing.T) {
		t.Parallel()

		err := senders.NewWebPush().Send(context.Background(), message("device", settings))
		assert.ErrorIs(t, err, senders.ErrSendFailed)
	})
}

func TestHTTPSenders_TransportErrorsHideURL(t *testing.T) {
	t.Parallel()

	// A closed server refuses connections.
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	tests := []struct {
		name     string
		sender   senders.Sender
		settings map[string]string
		secret   string
	}{
		{
			name:     "telegram bot token",
			sender:   senders.NewTelegram(senders.WithBaseURL(base)),
			settings: map[string]string{"bot_token": "123456:SECRET-BOT-TOKEN"},
			secret:   "SECRET-BOT-TOKEN",
		},
		{
			name:     "slack webhook path",
			sender:   senders.NewSlack(),
			settings: map[string]string{"webhook_url": base + "/services/T0/B0/SECRETHOOK"},
			secret:   "SECRETHOOK",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.sender.Send(context.Background(), message("chat-1", tt.settings))
			require.Error(t, err)
			assert.ErrorIs(t, err, senders.ErrSendFailed)
			assert.NotContains(t, err.Error(), tt.secret)
			assert.Contains(t, err.Error(), "post request")
		})
	}
}

// serviceAccountJSON returns a service account key whose token exchange goes
// to tokenURL.
func serviceAccountJSON(t *testing.T, tokenURL string) string {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)

	raw, err := json.Marshal(map[string]string{
		"type":           "service_account",
		"project_id":     "shop-prod",
		"private_key_id": "key-1",
		"private_key":    string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})),
		"client_email":   "notifier@shop-prod.iam.gserviceaccount.com",
		"client_id":      "1",
		"token_uri":      tokenURL,
	})
	require.NoError(t, err)
	return string(raw)
}
