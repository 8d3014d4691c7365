package telegram

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDigest(t *testing.T) {
	t.Parallel()

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodPost, "https://api.telegram.org/botTOKEN/sendMessage",
		func(req *http.Request) (*http.Response, error) {
			require.NoError(t, req.ParseForm())
			assert.Equal(t, "42", req.PostForm.Get("chat_id"))
			assert.Equal(t, "هشدار", req.PostForm.Get("text"))
			return httpmock.NewStringResponse(http.StatusOK, `{"ok":true}`), nil
		})

	n := NewNotifier("TOKEN", "42").WithHTTPClient(&http.Client{Transport: transport})
	require.NoError(t, n.PublishDigest(context.Background(), "هشدار"))
	assert.Equal(t, 1, transport.GetTotalCallCount())
}

func TestPublishDigestErrors(t *testing.T) {
	t.Parallel()

	assert.Error(t, NewNotifier("", "42").PublishDigest(context.Background(), "x"))

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodPost, "https://api.telegram.org/botTOKEN/sendMessage",
		httpmock.NewStringResponder(http.StatusForbidden, `{"ok":false}`))
	n := NewNotifier("TOKEN", "42").WithHTTPClient(&http.Client{Transport: transport})
	assert.ErrorContains(t, n.PublishDigest(context.Background(), "x"), "telegram error")

	require.NoError(t, n.PublishDigest(context.Background(), "   "))
	assert.Equal(t, 1, transport.GetTotalCallCount())
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("ب", maxMessageRune+10)
	got := truncate(long, maxMessageRune)
	assert.Equal(t, maxMessageRune, utf8.RuneCountInString(got))
	assert.Equal(t, "abc", truncate("abc", 10))
}
