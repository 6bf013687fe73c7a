package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/valentine-ezugu/xflowapp-sub001/internal/domain/entity"
	"github.com/valentine-ezugu/xflowapp-sub001/pkg/utils"
)

// A local stand-in for the realtime backend. It accepts any bearer token, emits a
// random event every interval and drops the connection every --drop-after events so
// reconnection can be watched.
func main() {
	addr := flag.String("addr", ":9090", "listen address")
	interval := flag.Duration("interval", time.Second, "time between events")
	dropAfter := flag.Int("drop-after", 0, "close the connection after this many events (0 = never)")
	flag.Parse()

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") == "" {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()
		log.Printf("client connected from %s", r.RemoteAddr)

		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(*interval)
		defer ticker.Stop()

		sent := 0
		for range ticker.C {
			frame, err := json.Marshal(randomEvent())
			if err != nil {
				log.Printf("marshal failed: %v", err)
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Printf("client gone: %v", err)
				return
			}
			sent++
			if *dropAfter > 0 && sent >= *dropAfter {
				log.Printf("dropping connection after %d events", sent)
				return
			}
		}
	})

	fmt.Printf("Mock realtime server on ws://localhost%s/ws\n", *addr)
	log.Fatal(http.ListenAndServe(*addr, nil))
}

func randomEvent() entity.WebSocketEvent {
	now := time.Now().UTC()
	counterparty := int64(rand.Intn(5) + 1)
	event := entity.WebSocketEvent{
		ID:             uuid.NewString(),
		CounterpartyID: &counterparty,
	}

	switch rand.Intn(4) {
	case 0:
		event.Type = entity.EventTransactionCreated
		event.CounterpartyAddress = utils.StringPtr("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
		event.Payload = entity.TransactionPayload{
			TransactionID: uuid.NewString(),
			Status:        "pending",
			Direction:     "in",
			Amount:        fmt.Sprintf("%d.%02d", rand.Intn(500), rand.Intn(100)),
			Currency:      "USDC",
			Rail:          "crypto",
			UpdatedAt:     now,
			Kind:          entity.EventTransactionCreated,
		}
	case 1:
		event.Type = entity.EventBalanceChanged
		event.CounterpartyID = nil
		event.Payload = entity.BalancePayload{
			AccountID: "acc_1",
			Currency:  "EUR",
			Available: fmt.Sprintf("%d.%02d", rand.Intn(5000), rand.Intn(100)),
			UpdatedAt: now,
		}
	case 2:
		event.Type = entity.EventMessageReceived
		event.Payload = entity.MessagePayload{
			MessageID: uuid.NewString(),
			SenderID:  counterparty,
			Body:      "payment sent",
			SentAt:    now,
		}
	default:
		event.Type = entity.EventOnboardingUpdated
		event.CounterpartyID = nil
		event.Payload = entity.OnboardingPayload{Step: "kyc", Status: "approved"}
	}
	return event
}
