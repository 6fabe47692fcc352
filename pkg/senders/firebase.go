package senders

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

const firebaseMessagingScope = "https://www.googleapis.com/auth/firebase.messaging"

// TokenSourceFunc builds an OAuth2 token source from a service account key.
type TokenSourceFunc func(ctx context.Context, serviceAccountJSON []byte) (oauth2.TokenSource, error)

// GoogleTokenSource exchanges a service account key for Firebase Messaging
// access tokens.
func GoogleTokenSource(ctx context.Context, serviceAccountJSON []byte) (oauth2.TokenSource, error) {
	creds, err := google.CredentialsFromJSON(ctx, serviceAccountJSON, firebaseMessagingScope)
	if err != nil {
		return nil, err
	}
	return creds.TokenSource, nil
}

// Firebase sends through the FCM HTTP v1 API.
// Settings: project_id, service_account_json. The recipient is the device
// registration token.
type Firebase struct {
	opts      httpOptions
	newSource TokenSourceFunc

	mu      sync.Mutex
	sources map[string]cachedSource // keyed by project_id
}

type cachedSource struct {
	keyHash string
	ts      oauth2.TokenSource
}

// NewFirebase uses GoogleTokenSource when tokens is nil.
func NewFirebase(tokens TokenSourceFunc, opts ...HTTPOption) *Firebase {
	if tokens == nil {
		tokens = GoogleTokenSource
	}
	return &Firebase{
		opts:      newHTTPOptions("https://fcm.googleapis.com", opts),
		newSource: tokens,
		sources:   make(map[string]cachedSource),
	}
}

func (f *Firebase) Channel() notifications.Channel { return notifications.ChannelFirebasePush }

func (f *Firebase) Send(ctx context.Context, msg Message) error {
	s, err := msg.settings(f.Channel(), "project_id", "service_account_json")
	if err != nil {
		return err
	}

	ts, err := f.tokenSource(s[0], []byte(s[1]))
	if err != nil {
		return sendFailed(f.Channel(), fmt.Errorf("%w: service_account_json: %w", ErrInvalidSetting, err))
	}
	token, err := ts.Token()
	if err != nil {
		return sendFailed(f.Channel(), fmt.Errorf("obtain access token: %w", err))
	}

	endpoint := fmt.Sprintf("%s/v1/projects/%s/messages:send", f.opts.baseURL, s[0])
	return f.opts.postJSON(ctx, f.Channel(), endpoint, map[string]any{
		"message": map[string]any{
			"token": msg.Recipient,
			"notification": map[string]string{
				"title": msg.Subject,
				"body":  msg.Body,
			},
			"data": map[string]string{
				"event_type": msg.EventType.String(),
			},
		},
	}, map[string]string{"Authorization": token.Type() + " " + token.AccessToken})
}

// tokenSource caches one source per project so tokens are reused until they
// expire. A rotated service account key replaces the project's entry.
func (f *Firebase) tokenSource(projectID string, key []byte) (oauth2.TokenSource, error) {
	sum := sha256.Sum256(key)
	keyHash := hex.EncodeToString(sum[:])

	f.mu.Lock()
	defer f.mu.Unlock()

	if c, ok := f.sources[projectID]; ok && c.keyHash == keyHash {
		return c.ts, nil
	}

	// Token refreshes outlive any single send, so they get their own context.
	// The client timeout keeps a stalled token endpoint from blocking a send.
	client := &http.Client{Transport: f.opts.client.Transport, Timeout: f.opts.timeout}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, client)
	ts, err := f.newSource(ctx, key)
	if err != nil {
		return nil, err
	}
	ts = oauth2.ReuseTokenSource(nil, ts)
	f.sources[projectID] = cachedSource{keyHash: keyHash, ts: ts}
	return ts, nil
}
