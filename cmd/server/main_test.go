package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/coderoom/internal/config"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

// watchActions counts the actions of every event published under prefix.
func watchActions(t *testing.T, addr, prefix string) map[string]*atomic.Int32 {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })

	ps := rdb.PSubscribe(context.Background(), prefix+"*")
	t.Cleanup(func() { _ = ps.Close() })
	_, err := ps.Receive(context.Background())
	require.NoError(t, err)

	counts := map[string]*atomic.Int32{
		"joined":       new(atomic.Int32),
		"disconnected": new(atomic.Int32),
	}
	go func() {
		for msg := range ps.Channel() {
			var env struct {
				Payload []byte `json:"payload"`
			}
			var ev struct {
				Action string `json:"action"`
			}
			if json.Unmarshal([]byte(msg.Payload), &env) != nil || json.Unmarshal(env.Payload, &ev) != nil {
				continue
			}
			if c, ok := counts[ev.Action]; ok {
				c.Add(1)
			}
		}
	}()
	return counts
}

func TestRun_RedisShutdownAnnouncesEveryMember(t *testing.T) {
	const members = 20
	mr := miniredis.RunT(t)
	cfg := &config.Config{
		Mode:         "test",
		Port:         freePort(t),
		Secret:       "test-secret",
		ReadLimit:    1 << 16,
		PingPeriod:   time.Second,
		PongWait:     2 * time.Second,
		WriteWait:    time.Second,
		SendBuffer:   64,
		Backpressure: "drop",
		Broker:       "redis",
		RedisAddr:    mr.Addr(),
		RedisPrefix:  "coderoom:test:",
	}
	counts := watchActions(t, mr.Addr(), cfg.RedisPrefix)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg) }()

	url := fmt.Sprintf("ws://127.0.0.1:%d/ws/quiz/abc/", cfg.Port)
	for i := range members {
		var conn *websocket.Conn
		require.Eventually(t, func() bool {
			c, _, err := websocket.DefaultDialer.Dial(url, nil)
			if err != nil {
				return false
			}
			conn = c
			return true
		}, 2*time.Second, 10*time.Millisecond)
		t.Cleanup(func() { conn.Close() })
		msg := fmt.Sprintf(`{"action":"join","username":"u%d"}`, i)
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(msg)))
	}
	require.Eventually(t, func() bool { return counts["joined"].Load() == members },
		3*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(6 * time.Second):
		t.Fatal("run did not return")
	}

	// The broker client is closed once run returns, so every announcement
	// must already have been published.
	assert.Eventually(t, func() bool { return counts["disconnected"].Load() == members },
		2*time.Second, 10*time.Millisecond)
}
