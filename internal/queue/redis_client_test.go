package queue

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/wacrm/whatsapp-crm-backend/internal/models"
)

func newTestClient(t *testing.T) (Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return newRedisClientWith(rdb, "test:launch_queue", logger), mr
}

func TestRedisClient_PublishConsume(t *testing.T) {
	client, _ := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	jobs := []*models.LaunchJob{
		{CampaignID: "c1"},
		{CampaignID: "c2"},
		{CampaignID: "c3"},
	}
	for _, job := range jobs {
		if err := client.Publish(ctx, job); err != nil {
			t.Fatalf("Publish(%s) error = %v", job.CampaignID, err)
		}
	}

	var (
		mu       sync.Mutex
		received []string
	)
	done := make(chan struct{})

	handler := func(ctx context.Context, job *models.LaunchJob) error {
		mu.Lock()
		received = append(received, job.CampaignID)
		n := len(received)
		mu.Unlock()
		if n == len(jobs) {
			close(done)
		}
		return nil
	}

	consumeErr := make(chan error, 1)
	go func() {
		consumeErr <- client.Consume(ctx, handler, 1)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for jobs")
	}

	cancel()
	select {
	case <-consumeErr:
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not stop after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	// LPUSH/BRPOP pairing preserves publish order.
	for i, want := range []string{"c1", "c2", "c3"} {
		if received[i] != want {
			t.Errorf("received[%d] = %q, want %q", i, received[i], want)
		}
	}
}

func TestRedisClient_ConsumeSkipsMalformedJob(t *testing.T) {
	client, mr := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A corrupt payload is logged and dropped, not redelivered forever.
	mr.Lpush("test:launch_queue", "{not json")
	if err := client.Publish(ctx, &models.LaunchJob{CampaignID: "c1"}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	got := make(chan string, 1)
	handler := func(ctx context.Context, job *models.LaunchJob) error {
		got <- job.CampaignID
		return nil
	}

	go func() { _ = client.Consume(ctx, handler, 1) }()

	select {
	case id := <-got:
		if id != "c1" {
			t.Errorf("handled campaign = %q, want c1", id)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("valid job after malformed one was never handled")
	}
}

func TestRedisClient_Health(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	if err := client.Health(ctx); err != nil {
		t.Fatalf("Health() error = %v", err)
	}

	mr.Close()
	if err := client.Health(ctx); err == nil {
		t.Error("Health() after server shutdown = nil, want error")
	}
}
