package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/church-service/internal/domain"
)

func TestClassifySMTPError(t *testing.T) {
	cases := []struct {
		raw       string
		permanent bool
	}{
		{"535 5.7.8 Username and Password not accepted", true},
		{"550 5.1.1 mailbox unavailable", true},
		{"dial tcp: i/o timeout", false},
		{"421 service not available", false},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			err := classifySMTPError(errors.New(tc.raw))
			assert.Equal(t, tc.permanent, isPermanent(err))
		})
	}
}

func TestPermanentMarker_Wrapped(t *testing.T) {
	err := fmt.Errorf("send: %w", PermanentError{msg: "bad address"})
	assert.True(t, isPermanent(err))
	assert.False(t, isPermanent(fmt.Errorf("send: %w", TemporaryError{msg: "later"})))
	assert.False(t, isPermanent(errors.New("plain")))
}

func TestRenderHTML_Escapes(t *testing.T) {
	out := renderHTML("A <b>title</b>", "Line one\nline two\n\n<script>x</script>")
	assert.Contains(t, out, "A &lt;b&gt;title&lt;/b&gt;")
	assert.Contains(t, out, "<p>Line one<br/>line two</p>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.NotContains(t, out, "<script>")
}

func TestLogSender(t *testing.T) {
	n := domain.Notification{ID: "n-1", Kind: domain.NotifyContactMessage, To: "office@example.org", Subject: "Hi"}

	var buf bytes.Buffer
	s := NewLogSender(zerolog.New(&buf), "")
	require.NoError(t, s.Send(context.Background(), n))
	assert.Contains(t, buf.String(), `"notification_id":"n-1"`)

	err := NewLogSender(zerolog.Nop(), "transient").Send(context.Background(), n)
	require.Error(t, err)
	assert.False(t, isPermanent(err))

	err = NewLogSender(zerolog.Nop(), "PERMANENT").Send(context.Background(), n)
	assert.True(t, isPermanent(err))
}

type scriptedSender struct {
	errs  []error
	calls int
}

func (s *scriptedSender) Send(context.Context, domain.Notification) error {
	s.calls++
	if len(s.errs) == 0 {
		return nil
	}
	err := s.errs[0]
	s.errs = s.errs[1:]
	return err
}

func TestBreakerSender(t *testing.T) {
	ctx := context.Background()
	n := domain.Notification{ID: "n-1"}
	tmp := TemporaryError{msg: "421 try later"}

	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	next := &scriptedSender{errs: []error{tmp, tmp, tmp}}
	b := NewBreakerSender(next, 2, time.Minute, zerolog.Nop())
	b.now = func() time.Time { return clock }

	require.Error(t, b.Send(ctx, n))
	assert.Equal(t, "closed", b.State())
	require.Error(t, b.Send(ctx, n))
	assert.Equal(t, "open", b.State())

	// open: the relay is not called and the error stays retriable
	err := b.Send(ctx, n)
	require.Error(t, err)
	assert.False(t, isPermanent(err))
	assert.Equal(t, 2, next.calls)

	// the half-open trial fails and reopens
	clock = clock.Add(time.Minute)
	require.Error(t, b.Send(ctx, n))
	assert.Equal(t, "open", b.State())
	assert.Equal(t, 3, next.calls)

	// the next trial succeeds and closes
	clock = clock.Add(time.Minute)
	require.NoError(t, b.Send(ctx, n))
	assert.Equal(t, "closed", b.State())
}

func TestBreakerSender_PermanentDoesNotTrip(t *testing.T) {
	bad := PermanentError{msg: "550 no such user"}
	next := &scriptedSender{errs: []error{bad, bad, bad}}
	b := NewBreakerSender(next, 2, time.Minute, zerolog.Nop())

	for i := 0; i < 3; i++ {
		assert.True(t, isPermanent(b.Send(context.Background(), domain.Notification{})))
	}
	assert.Equal(t, "closed", b.State())
	assert.Equal(t, 3, next.calls)
}
