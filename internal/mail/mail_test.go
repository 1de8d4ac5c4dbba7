package mail

import (
	"context"
	"encoding/json"
	"errors"
	"net/smtp"
	"strings"
	"sync"
	"testing"
	"time"

	"portfolio/internal/config"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageValidate(t *testing.T) {
	ok := Message{From: "site@example.com", To: "me@example.com", Subject: "hi"}
	assert.NoError(t, ok.Validate())

	missing := ok
	missing.To = ""
	assert.Error(t, missing.Validate())

	injected := ok
	injected.Subject = "hi\r\nBcc: victim@example.com"
	assert.Error(t, injected.Validate())
}

func TestContactNotification(t *testing.T) {
	msg, err := ContactNotification("site@example.com", "me@example.com", "Ada", "ada@example.com", "<script>hi</script>")
	require.NoError(t, err)

	assert.Equal(t, "New Message from Ada", msg.Subject)
	assert.Equal(t, "ada@example.com", msg.ReplyTo)
	assert.Equal(t, "me@example.com", msg.To)
	assert.Contains(t, msg.HTML, "ada@example.com")
	assert.NotContains(t, msg.HTML, "<script>")
}

func TestContactReply(t *testing.T) {
	msg, err := ContactReply("site@example.com", "ada@example.com", "Ada", "Thanks!", "hello")
	require.NoError(t, err)
	assert.Equal(t, "Re: your message", msg.Subject)
	assert.Contains(t, msg.HTML, "Thanks!")
	assert.Contains(t, msg.HTML, "hello")
}

func TestSMTPSender(t *testing.T) {
	var gotAddr string
	var gotBody []byte
	s := NewSMTPSender(SMTPOptions{Host: "smtp.example.com", Username: "u", Password: "p"})
	s.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	s.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr = addr
		gotBody = msg
		assert.NotNil(t, a)
		assert.Equal(t, []string{"me@example.com"}, to)
		return nil
	}

	err := s.Send(context.Background(), Message{
		From:    "site@example.com",
		To:      "me@example.com",
		ReplyTo: "ada@example.com",
		Subject: "New Message from Ada",
		HTML:    "<p>hi</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com:587", gotAddr)

	body := string(gotBody)
	assert.Contains(t, body, "Reply-To: ada@example.com\r\n")
	assert.Contains(t, body, "Content-Type: text/html")
	assert.True(t, strings.HasSuffix(body, "<p>hi</p>"))
}

func TestSMTPSender_Failure(t *testing.T) {
	s := NewSMTPSender(SMTPOptions{Host: "smtp.example.com"})
	s.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}
	err := s.Send(context.Background(), Message{From: "a@b.c", To: "d@e.f"})
	assert.ErrorContains(t, err, "connection refused")
}

type fakeWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestKafkaQueue_Send(t *testing.T) {
	w := &fakeWriter{}
	q := &KafkaQueue{writer: w}

	msg := Message{From: "a@b.c", To: "me@example.com", Subject: "s", HTML: "<p>x</p>"}
	require.NoError(t, q.Send(context.Background(), msg))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "me@example.com", string(w.msgs[0].Key))

	var decoded Message
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, msg, decoded)

	w.err = errors.New("broker down")
	assert.Error(t, q.Send(context.Background(), msg))
}

type fakeReader struct {
	msgs      chan kafka.Message
	committed []int64
	mu        sync.Mutex
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-r.msgs:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func TestConsumer_DeliversAndCommits(t *testing.T) {
	payload, err := json.Marshal(Message{From: "a@b.c", To: "me@example.com", Subject: "queued"})
	require.NoError(t, err)

	reader := &fakeReader{msgs: make(chan kafka.Message, 2)}
	reader.msgs <- kafka.Message{Offset: 1, Value: []byte("not json")}
	reader.msgs <- kafka.Message{Offset: 2, Value: payload}

	delivered := make(chan Message, 1)
	c := &Consumer{
		reader: reader,
		deliver: SenderFunc(func(_ context.Context, m Message) error {
			delivered <- m
			return nil
		}),
		backoff: time.Millisecond,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	select {
	case m := <-delivered:
		assert.Equal(t, "queued", m.Subject)
	case <-time.After(time.Second):
		t.Fatal("message was not delivered")
	}

	cancel()
	require.NoError(t, <-done)

	reader.mu.Lock()
	defer reader.mu.Unlock()
	assert.Equal(t, []int64{1, 2}, reader.committed)
}

func TestNewSender(t *testing.T) {
	tests := []struct {
		transport string
		wantType  any
		wantErr   bool
	}{
		{"", LogSender{}, false},
		{"log", LogSender{}, false},
		{"smtp", &SMTPSender{}, false},
		{"kafka", &KafkaQueue{}, false},
		{"pigeon", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.transport, func(t *testing.T) {
			cfg := &config.Config{MailTransport: tt.transport, SMTPHost: "localhost", KafkaBrokers: "localhost:9092", KafkaMailTopic: "mail"}
			s, closer, err := NewSender(cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, s)
			assert.NoError(t, closer())
		})
	}
}

func TestLogSender(t *testing.T) {
	assert.NoError(t, LogSender{}.Send(context.Background(), Message{From: "a@b.c", To: "d@e.f"}))
}
