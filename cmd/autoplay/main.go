// Package main - autoplay
// Scripted player for demo mode and soak testing: clicks on a fixed
// interval and buys the cheapest affordable upgrade, driving the server
// through the exact same websocket verbs a human client uses. There is
// no private bypass path.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// Config for the autoplay bot.
type Config struct {
	ServerURL     string
	ClickInterval time.Duration
	RunDuration   time.Duration
}

// Stats tracks what the bot managed to do.
type Stats struct {
	ClicksSent    int64
	PurchasesSent int64
	Snapshots     int64
	Unlocks       int64
	Errors        int64
}

// snapshotState is the slice of the server snapshot the bot cares about.
type snapshotState struct {
	Money float64 `json:"money"`
	Shop  []struct {
		Name string `json:"name"`
		Cost int    `json:"cost"`
	} `json:"shop"`
}

type serverMessage struct {
	Type  string         `json:"type"`
	State *snapshotState `json:"state"`
	Event *struct {
		Type string `json:"type"`
	} `json:"event"`
}

type playerAction struct {
	Type      string `json:"type"`
	UpgradeID int    `json:"upgrade_id,omitempty"`
}

func main() {
	serverURL := flag.String("url", "ws://localhost:8080/ws", "WebSocket server URL")
	interval := flag.Duration("interval", 250*time.Millisecond, "Click interval")
	duration := flag.Duration("duration", 60*time.Second, "Run duration (0 = forever)")
	flag.Parse()

	config := Config{
		ServerURL:     *serverURL,
		ClickInterval: *interval,
		RunDuration:   *duration,
	}

	fmt.Println("=========================================")
	fmt.Println("CLICK & HIDE - Autoplay Demo Mode")
	fmt.Println("=========================================")
	fmt.Printf("Server:   %s\n", config.ServerURL)
	fmt.Printf("Interval: %v\n", config.ClickInterval)
	fmt.Printf("Duration: %v\n", config.RunDuration)
	fmt.Println("=========================================")

	ctx := context.Background()
	var cancel context.CancelFunc
	if config.RunDuration > 0 {
		ctx, cancel = context.WithTimeout(ctx, config.RunDuration)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupt received, stopping...")
		cancel()
	}()

	stats := run(ctx, config)

	fmt.Println("\n=========================================")
	fmt.Println("RESULTS")
	fmt.Println("=========================================")
	fmt.Printf("Clicks sent:    %d\n", atomic.LoadInt64(&stats.ClicksSent))
	fmt.Printf("Purchases sent: %d\n", atomic.LoadInt64(&stats.PurchasesSent))
	fmt.Printf("Snapshots seen: %d\n", atomic.LoadInt64(&stats.Snapshots))
	fmt.Printf("Unlocks seen:   %d\n", atomic.LoadInt64(&stats.Unlocks))
	fmt.Printf("Errors:         %d\n", atomic.LoadInt64(&stats.Errors))
}

func run(ctx context.Context, config Config) *Stats {
	stats := &Stats{}

	conn, _, err := websocket.DefaultDialer.Dial(config.ServerURL, nil)
	if err != nil {
		log.Fatalf("Failed to connect to %s: %v", config.ServerURL, err)
	}
	defer conn.Close()

	// latest holds the most recent snapshot; the reader goroutine
	// replaces it, the action loop consumes it.
	latest := make(chan snapshotState, 1)

	go func() {
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				atomic.AddInt64(&stats.Errors, 1)
				return
			}
			var msg serverMessage
			if err := json.Unmarshal(message, &msg); err != nil {
				atomic.AddInt64(&stats.Errors, 1)
				continue
			}
			switch msg.Type {
			case "SNAPSHOT":
				if msg.State == nil {
					continue
				}
				atomic.AddInt64(&stats.Snapshots, 1)
				select {
				case latest <- *msg.State:
				default:
					// Drop stale snapshot, keep the newest.
					select {
					case <-latest:
					default:
					}
					select {
					case latest <- *msg.State:
					default:
					}
				}
			case "EVENT":
				if msg.Event != nil && msg.Event.Type == "ACHIEVEMENT_UNLOCKED" {
					atomic.AddInt64(&stats.Unlocks, 1)
					fmt.Println("  >> LOGRO DESBLOQUEADO")
				}
			}
		}
	}()

	send := func(a playerAction) {
		data, _ := json.Marshal(a)
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			atomic.AddInt64(&stats.Errors, 1)
		}
	}

	ticker := time.NewTicker(config.ClickInterval)
	defer ticker.Stop()

	var state snapshotState
	for {
		select {
		case <-ctx.Done():
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return stats
		case s := <-latest:
			state = s
		case <-ticker.C:
			send(playerAction{Type: "CLICK"})
			atomic.AddInt64(&stats.ClicksSent, 1)

			// Cheapest affordable first, ties by catalog order. The
			// server re-validates; this is just the selection policy.
			if id, ok := cheapestAffordable(state); ok {
				send(playerAction{Type: "PURCHASE", UpgradeID: id})
				atomic.AddInt64(&stats.PurchasesSent, 1)
			}
		}
	}
}

func cheapestAffordable(state snapshotState) (int, bool) {
	best := -1
	for i, item := range state.Shop {
		if float64(item.Cost) > state.Money {
			continue
		}
		if best == -1 || item.Cost < state.Shop[best].Cost {
			best = i
		}
	}
	return best, best != -1
}
