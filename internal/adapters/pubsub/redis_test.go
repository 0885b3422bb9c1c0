package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/coderoom/internal/core"
	"github.com/dkeye/coderoom/internal/domain"
)

const testPrefix = "coderoom:test:"

// startNode runs a RedisGroup against mr until the test ends.
func startNode(t *testing.T, mr *miniredis.Miniredis, onResult ResultHandler) (*RedisGroup, *LocalGroup) {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	local := NewLocalGroup()
	g := NewRedisGroup(local, rdb, testPrefix)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- g.Run(ctx, onResult) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	select {
	case <-g.Ready():
	case err := <-done:
		t.Fatalf("relay exited early: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("relay never subscribed")
	}
	return g, local
}

func TestRedisGroup_RelaysAcrossNodes(t *testing.T) {
	mr := miniredis.RunT(t)
	a, _ := startNode(t, mr, nil)
	b, _ := startNode(t, mr, nil)

	onA, onB, elsewhere := &recordingConn{}, &recordingConn{}, &recordingConn{}
	a.Subscribe("abc", core.Subscriber{ID: "A", Conn: onA})
	b.Subscribe("abc", core.Subscriber{ID: "B", Conn: onB})
	b.Subscribe("xyz", core.Subscriber{ID: "X", Conn: elsewhere})

	res := a.Send(context.Background(), "abc", core.CodeChangeEvent{Code: "shared"})
	assert.Equal(t, 1, res.SentTo, "local delivery is reported")

	want := `{"action":"code-change","code":"shared"}`
	require.Eventually(t, func() bool { return len(onB.Frames()) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{want}, onB.Frames())

	// The origin node does not deliver its own frame twice.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, []string{want}, onA.Frames())
	assert.Empty(t, elsewhere.Frames())
}

func TestRedisGroup_ReportsRelayResults(t *testing.T) {
	mr := miniredis.RunT(t)
	results := make(chan core.PublishResult, 1)
	a, _ := startNode(t, mr, nil)
	b, _ := startNode(t, mr, func(_ domain.RoomName, res core.PublishResult) { results <- res })

	b.Subscribe("abc", core.Subscriber{ID: "S", Conn: &recordingConn{full: true}})
	a.Send(context.Background(), "abc", core.DisconnectedEvent{SocketID: "Q"})

	select {
	case res := <-results:
		require.Len(t, res.Dropped, 1)
		assert.Equal(t, domain.ConnectionID("S"), res.Dropped[0].ID)
	case <-time.After(2 * time.Second):
		t.Fatal("no relay result")
	}
}

func TestRedisGroup_PublishFailureKeepsLocalDelivery(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	g := NewRedisGroup(NewLocalGroup(), rdb, testPrefix)

	c := &recordingConn{}
	g.Subscribe("abc", core.Subscriber{ID: "A", Conn: c})
	mr.Close()

	res := g.Send(context.Background(), "abc", core.CodeChangeEvent{Code: "x"})
	assert.Equal(t, 1, res.SentTo)
	assert.Len(t, c.Frames(), 1)
}

func TestRedisGroup_RunCanRestart(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	g := NewRedisGroup(NewLocalGroup(), rdb, testPrefix)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- g.Run(ctx, nil) }()
	<-g.Ready()
	cancel()
	require.NoError(t, <-done)
	require.Eventually(t, func() bool { return mr.PubSubNumPat() == 0 }, 2*time.Second, 10*time.Millisecond)

	// A second Run subscribes again and relays.
	ctx, cancel = context.WithCancel(context.Background())
	go func() { done <- g.Run(ctx, nil) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	require.Eventually(t, func() bool { return mr.PubSubNumPat() == 1 }, 2*time.Second, 10*time.Millisecond)

	c := &recordingConn{}
	g.Subscribe("abc", core.Subscriber{ID: "B", Conn: c})
	other, _ := startNode(t, mr, nil)
	other.Send(context.Background(), "abc", core.CodeChangeEvent{Code: "again"})
	require.Eventually(t, func() bool { return len(c.Frames()) == 1 }, 2*time.Second, 10*time.Millisecond)
}
