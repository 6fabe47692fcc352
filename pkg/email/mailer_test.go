package email_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/email"
)

func validParams() email.SendEmailParams {
	return email.SendEmailParams{
		SendTo:   "user@example.com",
		Subject:  "Order 12345 shipped",
		BodyHTML: "<p>Your order is on its way</p>",
		Tag:      "OrderShipped",
	}
}

func TestSendEmailParams_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*email.SendEmailParams)
		errMsg string
	}{
		{name: "valid", mutate: func(*email.SendEmailParams) {}},
		{name: "no tag", mutate: func(p *email.SendEmailParams) { p.Tag = "" }},
		{name: "plus address", mutate: func(p *email.SendEmailParams) { p.SendTo = "a.b+tag@sub.example.com" }},
		{name: "empty recipient", mutate: func(p *email.SendEmailParams) { p.SendTo = "" }, errMsg: "SendTo is required"},
		{name: "blank recipient", mutate: func(p *email.SendEmailParams) { p.SendTo = "   " }, errMsg: "SendTo is required"},
		{name: "no at sign", mutate: func(p *email.SendEmailParams) { p.SendTo = "user.example.com" }, errMsg: "SendTo must be a valid email address"},
		{name: "no domain", mutate: func(p *email.SendEmailParams) { p.SendTo = "user@" }, errMsg: "SendTo must be a valid email address"},
		{name: "no local part", mutate: func(p *email.SendEmailParams) { p.SendTo = "@example.com" }, errMsg: "SendTo must be a valid email address"},
		{name: "blank subject", mutate: func(p *email.SendEmailParams) { p.Subject = " " }, errMsg: "Subject is required"},
		{name: "empty body", mutate: func(p *email.SendEmailParams) { p.BodyHTML = "" }, errMsg: "BodyHTML is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := validParams()
			tt.mutate(&p)
			err := p.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, email.ErrInvalidParams)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestDevSender_SendEmail(t *testing.T) {
	t.Parallel()

	t.Run("writes html and metadata", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "nested", "out")
		sender := email.NewDevSender(dir)
		require.NoError(t, sender.SendEmail(context.Background(), validParams()))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 2)

		var htmlFile, jsonFile string
		for _, e := range entries {
			switch filepath.Ext(e.Name()) {
			case ".html":
				htmlFile = e.Name()
			case ".json":
				jsonFile = e.Name()
			}
		}
		assert.Contains(t, htmlFile, "ordershipped")

		html, err := os.ReadFile(filepath.Join(dir, htmlFile))
		require.NoError(t, err)
		assert.Equal(t, "<p>Your order is on its way</p>", string(html))

		raw, err := os.ReadFile(filepath.Join(dir, jsonFile))
		require.NoError(t, err)
		var meta map[string]string
		require.NoError(t, json.Unmarshal(raw, &meta))
		assert.Equal(t, "user@example.com", meta["send_to"])
		assert.Equal(t, "Order 12345 shipped", meta["subject"])
		assert.Equal(t, "OrderShipped", meta["tag"])
	})

	t.Run("subject used without tag", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		p := validParams()
		p.Tag = ""
		p.Subject = "Hello / World!"
		require.NoError(t, email.NewDevSender(dir).SendEmail(context.Background(), p))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.NotEmpty(t, entries)
		assert.True(t, strings.HasSuffix(entries[0].Name(), "hello__world.html") || strings.HasSuffix(entries[0].Name(), "hello__world.json"), entries[0].Name())
	})

	t.Run("many sends in one second do not collide", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		sender := email.NewDevSender(dir)
		for range 5 {
			require.NoError(t, sender.SendEmail(context.Background(), validParams()))
		}
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 10)
	})

	t.Run("invalid params write nothing", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "never")
		p := validParams()
		p.SendTo = "nope"
		err := email.NewDevSender(dir).SendEmail(context.Background(), p)
		assert.ErrorIs(t, err, email.ErrInvalidParams)
		_, statErr := os.Stat(dir)
		assert.True(t, os.IsNotExist(statErr))
	})
}

func TestNewSender(t *testing.T) {
	t.Parallel()

	t.Run("dev sender without tokens", func(t *testing.T) {
		t.Parallel()

		s, err := email.NewSender(email.Config{SenderEmail: "noreply@example.com", SupportEmail: "support@example.com", DevOutputDir: t.TempDir()})
		require.NoError(t, err)
		assert.IsType(t, &email.DevSender{}, s)
	})

	t.Run("postmark with tokens", func(t *testing.T) {
		t.Parallel()

		s, err := email.NewSender(email.Config{
			PostmarkServerToken:  "server",
			PostmarkAccountToken: "account",
			SenderEmail:          "noreply@example.com",
			SupportEmail:         "support@example.com",
		})
		require.NoError(t, err)
		assert.NotNil(t, s)
	})
}

func TestNewPostmarkClient(t *testing.T) {
	t.Parallel()

	valid := email.Config{
		PostmarkServerToken:  "server",
		PostmarkAccountToken: "account",
		SenderEmail:          "noreply@example.com",
		SupportEmail:         "support@example.com",
	}

	tests := []struct {
		name   string
		mutate func(*email.Config)
		errMsg string
	}{
		{name: "valid", mutate: func(*email.Config) {}},
		{name: "no server token", mutate: func(c *email.Config) { c.PostmarkServerToken = "" }, errMsg: "PostmarkServerToken is required"},
		{name: "no account token", mutate: func(c *email.Config) { c.PostmarkAccountToken = "" }, errMsg: "PostmarkAccountToken is required"},
		{name: "no sender", mutate: func(c *email.Config) { c.SenderEmail = "" }, errMsg: "SenderEmail is required"},
		{name: "bad sender", mutate: func(c *email.Config) { c.SenderEmail = "noreply" }, errMsg: "SenderEmail must be a valid email address"},
		{name: "no support", mutate: func(c *email.Config) { c.SupportEmail = "" }, errMsg: "SupportEmail is required"},
		{name: "bad support", mutate: func(c *email.Config) { c.SupportEmail = "support@" }, errMsg: "SupportEmail must be a valid email address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid
			tt.mutate(&cfg)
			client, err := email.NewPostmarkClient(cfg)
			if tt.errMsg == "" {
				require.NoError(t, err)
				assert.NotNil(t, client)
				assert.NotPanics(t, func() { email.MustNewPostmarkClient(cfg) })
				return
			}
			assert.ErrorIs(t, err, email.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.Nil(t, client)
			assert.Panics(t, func() { email.MustNewPostmarkClient(cfg) })
		})
	}

	t.Run("send validates before calling the api", func(t *testing.T) {
		t.Parallel()

		client, err := email.NewPostmarkClient(valid)
		require.NoError(t, err)
		p := validParams()
		p.BodyHTML = ""
		assert.ErrorIs(t, client.SendEmail(context.Background(), p), email.ErrInvalidParams)
	})
}
