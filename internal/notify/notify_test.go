package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/ncobase/taskdesk/biz/task/structs"
	"github.com/ncobase/taskdesk/config"
	"github.com/ncobase/taskdesk/data"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
)

type recordingSink struct {
	mu    sync.Mutex
	items []structs.Notification
	err   error
}

func (r *recordingSink) Name() string { return "recording" }

func (r *recordingSink) Deliver(_ context.Context, n structs.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
	return r.err
}

func (r *recordingSink) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

type panicSink struct{}

func (panicSink) Name() string { return "panic" }
func (panicSink) Deliver(context.Context, structs.Notification) error {
	panic("boom")
}

func note(id, topic string) structs.Notification {
	return structs.Notification{ID: id, Topic: topic, Level: structs.LevelSuccess, Message: "Task created successfully!"}
}

func TestHubDeliversToEverySink(t *testing.T) {
	a := &recordingSink{}
	b := &recordingSink{err: errors.New("down")}
	h := NewHub(8, time.Second, a, panicSink{}, b)
	h.Start(context.Background(), 2)

	for i := 0; i < 5; i++ {
		h.Notify(context.Background(), note(string(rune('a'+i)), "u1"))
	}
	if err := h.Shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}

	if a.len() != 5 || b.len() != 5 {
		t.Errorf("delivered a=%d b=%d, want 5 each", a.len(), b.len())
	}

	h.Notify(context.Background(), note("late", "u1"))
	if a.len() != 5 {
		t.Error("notification accepted after shutdown")
	}
	if err := h.Shutdown(context.Background()); err != nil {
		t.Errorf("second shutdown: %v", err)
	}
}

func TestHubNotifyOutlivesRequestContext(t *testing.T) {
	sink := &recordingSink{}
	h := NewHub(1, time.Second, sink)

	ctx, cancel := context.WithCancel(context.Background())
	h.Notify(ctx, note("n1", "u1"))
	cancel()

	h.Start(context.Background(), 1)
	if err := h.Shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}
	if sink.len() != 1 {
		t.Errorf("delivered %d, want 1", sink.len())
	}
}

func TestBroadcasterRoutesByTopic(t *testing.T) {
	gin.SetMode(gin.TestMode)
	b := NewBroadcaster()
	r := gin.New()
	r.GET("/ws/:topic", b.Serve(func(c *gin.Context) string { return c.Param("topic") }))
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/u1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for b.Count("u1") == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	ctx := context.Background()
	if err := b.Deliver(ctx, note("other", "u2")); err != nil {
		t.Fatal(err)
	}
	if err := b.Deliver(ctx, note("mine", "u1")); err != nil {
		t.Fatal(err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got structs.Notification
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatal(err)
	}
	if got.ID != "mine" || got.Topic != "u1" {
		t.Errorf("got %+v, want the u1 notification", got)
	}

	b.Close()
	if b.Count("u1") != 0 {
		t.Error("clients left after close")
	}
}

func TestBroadcasterRejectsEmptyTopic(t *testing.T) {
	gin.SetMode(gin.TestMode)
	b := NewBroadcaster()
	r := gin.New()
	r.GET("/ws", b.Serve(func(*gin.Context) string { return "" }))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/ws", nil))
	if w.Code != 401 {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

type fakeRedis struct {
	channel string
	payload []byte
}

func (f *fakeRedis) Publish(ctx context.Context, channel string, message any) *redis.IntCmd {
	f.channel = channel
	f.payload, _ = message.([]byte)
	return redis.NewIntResult(1, nil)
}

func TestRedisSink(t *testing.T) {
	fake := &fakeRedis{}
	s := &RedisSink{client: fake, channel: "taskdesk:notifications"}
	if err := s.Deliver(context.Background(), note("n1", "u1")); err != nil {
		t.Fatal(err)
	}
	var got structs.Notification
	if err := json.Unmarshal(fake.payload, &got); err != nil {
		t.Fatal(err)
	}
	if fake.channel != "taskdesk:notifications" || got.ID != "n1" {
		t.Errorf("published %q on %q", fake.payload, fake.channel)
	}
}

type fakeKafka struct{ msgs []kafka.Message }

func (f *fakeKafka) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func TestKafkaSinkKeysByTopic(t *testing.T) {
	fake := &fakeKafka{}
	s := &KafkaSink{writer: fake, topic: "taskdesk.notifications"}
	if err := s.Deliver(context.Background(), note("n1", "u1")); err != nil {
		t.Fatal(err)
	}
	if len(fake.msgs) != 1 {
		t.Fatalf("wrote %d messages", len(fake.msgs))
	}
	m := fake.msgs[0]
	if m.Topic != "taskdesk.notifications" || string(m.Key) != "u1" {
		t.Errorf("message topic=%q key=%q", m.Topic, m.Key)
	}
}

type fakeChannel struct {
	declared  int
	published []amqp.Publishing
	keys      []string
	failNext  bool
	closed    bool
}

func (f *fakeChannel) ExchangeDeclare(string, string, bool, bool, bool, bool, amqp.Table) error {
	f.declared++
	return nil
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	if f.failNext {
		f.failNext = false
		return amqp.ErrClosed
	}
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestRabbitMQSinkReopensAfterFailure(t *testing.T) {
	var opened []*fakeChannel
	s := &RabbitMQSink{
		exchange: "taskdesk.notifications",
		open: func() (amqpChannel, error) {
			ch := &fakeChannel{}
			opened = append(opened, ch)
			return ch, nil
		},
	}
	ctx := context.Background()

	if err := s.Deliver(ctx, note("n1", "u1")); err != nil {
		t.Fatal(err)
	}
	opened[0].failNext = true
	if err := s.Deliver(ctx, note("n2", "u1")); err == nil {
		t.Fatal("publish failure not reported")
	}
	if err := s.Deliver(ctx, note("n3", "u2")); err != nil {
		t.Fatal(err)
	}

	if len(opened) != 2 || !opened[0].closed {
		t.Fatalf("opened %d channels, first closed=%v", len(opened), opened[0].closed)
	}
	if opened[1].declared != 1 || opened[1].keys[0] != "u2" || opened[1].published[0].MessageId != "n3" {
		t.Errorf("second channel = %+v", opened[1])
	}
	if err := s.Close(); err != nil {
		t.Error(err)
	}
}

func TestNewSinks(t *testing.T) {
	s, err := New(&config.Notify{Sinks: []string{"websocket", "log"}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(s.Sinks(), ","); got != "websocket,log" {
		t.Errorf("sinks = %s", got)
	}

	s, err = New(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(s.Sinks(), ","); got != "log" {
		t.Errorf("default sinks = %s", got)
	}

	_, err = New(&config.Notify{Sinks: []string{"kafka", "pigeon"}}, &data.Data{})
	if err == nil || !strings.Contains(err.Error(), "kafka connection") || !strings.Contains(err.Error(), "pigeon") {
		t.Errorf("err = %v", err)
	}
}
