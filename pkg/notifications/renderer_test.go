package notifications_test

import (
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

func TestSubstitute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		params map[string]string
		want   string
	}{
		{
			name:   "all placeholders matched",
			input:  "Hello {Name}, order no: {OrderId}",
			params: map[string]string{"Name": "Enes", "OrderId": "12345"},
			want:   "Hello Enes, order no: 12345",
		},
		{
			name:   "unmatched placeholder kept verbatim",
			input:  "Hello {Name}",
			params: map[string]string{},
			want:   "Hello {Name}",
		},
		{
			name:   "nil params",
			input:  "Hello {Name}",
			params: nil,
			want:   "Hello {Name}",
		},
		{
			name:   "empty input",
			input:  "",
			params: map[string]string{"Name": "Enes"},
			want:   "",
		},
		{
			name:   "repeated placeholder",
			input:  "{Name} {Name}",
			params: map[string]string{"Name": "A"},
			want:   "A A",
		},
		{
			name:   "values are not re-scanned",
			input:  "{A}",
			params: map[string]string{"A": "{B}", "B": "nope"},
			want:   "{B}",
		},
		{
			name:   "mixed known and unknown",
			input:  "{Greeting} {Who}!",
			params: map[string]string{"Greeting": "Hi"},
			want:   "Hi {Who}!",
		},
		{
			name:   "unclosed brace",
			input:  "Total {Amount",
			params: map[string]string{"Amount": "10"},
			want:   "Total {Amount",
		},
		{
			name:   "doubled braces",
			input:  "{{Name}}",
			params: map[string]string{"Name": "Enes"},
			want:   "{Enes}",
		},
		{
			name:   "key match is exact",
			input:  "{name}",
			params: map[string]string{"Name": "Enes"},
			want:   "{name}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, notifications.Substitute(tt.input, tt.params))
		})
	}
}

func TestRenderer_Render(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := notifications.NewRenderer()

	t.Run("plain text channel", func(t *testing.T) {
		t.Parallel()

		out, err := r.Render(ctx, "Hello {Name}, order no: {OrderId}", notifications.ChannelSMS,
			map[string]string{"Name": "Enes", "OrderId": "12345"})
		require.NoError(t, err)
		assert.Equal(t, "Hello Enes, order no: 12345", out)
	})

	t.Run("empty body renders empty", func(t *testing.T) {
		t.Parallel()

		out, err := r.Render(ctx, "", notifications.ChannelEmail, nil)
		require.NoError(t, err)
		assert.Equal(t, "", out)
	})

	t.Run("unknown channel fails", func(t *testing.T) {
		t.Parallel()

		out, err := r.Render(ctx, "Hello", notifications.Channel{}, nil)
		assert.ErrorIs(t, err, notifications.ErrUnknownChannel)
		assert.Empty(t, out)
	})

	t.Run("every registered channel renders", func(t *testing.T) {
		t.Parallel()

		for _, ch := range notifications.AllChannels() {
			out, err := r.Render(ctx, "Hi {Name}", ch, map[string]string{"Name": "Enes"})
			require.NoError(t, err, ch.String())
			assert.Contains(t, out, "Hi Enes", ch.String())
		}
	})

	t.Run("email expands markup to html", func(t *testing.T) {
		t.Parallel()

		out, err := r.Render(ctx, "# Order {OrderId}\n\nThanks **{Name}**!", notifications.ChannelEmail,
			map[string]string{"Name": "Enes", "OrderId": "12345"})
		require.NoError(t, err)
		assert.Contains(t, out, "<h1>Order 12345</h1>")
		assert.Contains(t, out, "<strong>Enes</strong>")
		assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	})

	t.Run("email substitutes inside attribute values", func(t *testing.T) {
		t.Parallel()

		out, err := r.Render(ctx, `<a href="https://shop.example.com/orders/{OrderId}">Track</a>`, notifications.ChannelEmail,
			map[string]string{"OrderId": "42"})
		require.NoError(t, err)
		assert.Contains(t, out, `href="https://shop.example.com/orders/42"`)
	})

	t.Run("custom layout", func(t *testing.T) {
		t.Parallel()

		custom := notifications.NewRenderer(notifications.WithEmailLayout(func(content string) templ.Component {
			return templ.Raw("<main>" + content + "</main>")
		}))
		out, err := custom.Render(ctx, "Hi", notifications.ChannelEmail, nil)
		require.NoError(t, err)
		assert.Equal(t, "<main><p>Hi</p>\n</main>", out)
	})

	t.Run("re-rendering substituted output is stable", func(t *testing.T) {
		t.Parallel()

		params := map[string]string{"Name": "Enes", "OrderId": "12345"}
		inputs := []string{"Hello {Name}", "{OrderId}-{OrderId}", "No placeholders", "{Unknown} {Name}"}
		for _, in := range inputs {
			first, err := r.Render(ctx, in, notifications.ChannelConsole, params)
			require.NoError(t, err)
			second, err := r.Render(ctx, first, notifications.ChannelConsole, params)
			require.NoError(t, err)
			assert.Equal(t, first, second)
		}
	})
}

func TestRenderer_RenderSubject(t *testing.T) {
	t.Parallel()

	r := notifications.NewRenderer()
	assert.Equal(t, "Order 7 shipped", r.RenderSubject("Order {OrderId} shipped", map[string]string{"OrderId": "7"}))
	assert.Equal(t, "", r.RenderSubject("", nil))
}

func TestRenderer_EmailParameterTrust(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	body := "Hi {Name}, see <b>details</b>"
	params := map[string]string{"Name": `<img src="https://evil.example/x.png">`}

	t.Run("values are trusted by default", func(t *testing.T) {
		t.Parallel()

		out, err := notifications.NewRenderer().Render(ctx, body, notifications.ChannelEmail, params)
		require.NoError(t, err)
		assert.Contains(t, out, `<img src="https://evil.example/x.png">`)
	})

	t.Run("escaped values render as text", func(t *testing.T) {
		t.Parallel()

		r := notifications.NewRenderer(notifications.WithEscapedEmailParameters())
		out, err := r.Render(ctx, body, notifications.ChannelEmail, params)
		require.NoError(t, err)
		assert.NotContains(t, out, "<img")
		assert.Contains(t, out, "&lt;img")
		assert.Contains(t, out, "<b>details</b>")
		assert.Equal(t, `<img src="https://evil.example/x.png">`, params["Name"], "caller's map is untouched")
	})

	t.Run("other channels are never escaped", func(t *testing.T) {
		t.Parallel()

		r := notifications.NewRenderer(notifications.WithEscapedEmailParameters())
		out, err := r.Render(ctx, "Hi {Name}", notifications.ChannelSlack, map[string]string{"Name": "<Ops>"})
		require.NoError(t, err)
		assert.Equal(t, "Hi <Ops>", out)
	})
}
