// Command captionclient is a small development client: it posts a few
// utterances into a room and prints the caption feed for that room.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

func main() {
	server := flag.String("server", "localhost:8080", "captiond host:port")
	roomName := flag.String("room", "dev-room", "room name")
	lang := flag.String("lang", "kn-IN", "viewer caption language")
	flag.Parse()

	base := "http://" + *server

	post(base+"/v1/rooms", map[string]any{"name": *roomName, "ownerId": "dev"})

	feed := url.URL{
		Scheme:   "ws",
		Host:     *server,
		Path:     fmt.Sprintf("/v1/rooms/%s/captions", *roomName),
		RawQuery: "lang=" + url.QueryEscape(*lang),
	}
	conn, _, err := websocket.DefaultDialer.Dial(feed.String(), nil)
	if err != nil {
		log.Fatalf("failed to connect to caption feed: %v", err)
	}
	defer conn.Close()

	log.Printf("Connected to caption feed for room %q", *roomName)

	go func() {
		for {
			var caption struct {
				Sender  string `json:"sender"`
				Message string `json:"message"`
				Visible bool   `json:"visible"`
			}
			if err := conn.ReadJSON(&caption); err != nil {
				log.Printf("feed closed: %v", err)
				return
			}
			if caption.Visible {
				log.Printf("[%s] %s", caption.Sender, caption.Message)
			} else {
				log.Printf("(caption cleared)")
			}
		}
	}()

	utterances := []string{"hello there", "how are you doing", "see you tomorrow"}
	for _, text := range utterances {
		post(base+fmt.Sprintf("/v1/rooms/%s/utterances", *roomName), map[string]any{
			"sender":   "Dev",
			"senderId": "dev-1",
			"message":  text,
			"isFinal":  true,
		})
		time.Sleep(time.Second)
	}

	// Let the feed drain before exiting.
	time.Sleep(3 * time.Second)
}

func post(endpoint string, body map[string]any) {
	payload, _ := json.Marshal(body)
	resp, err := http.Post(endpoint, "application/json", bytes.NewReader(payload))
	if err != nil {
		log.Fatalf("POST %s failed: %v", endpoint, err)
	}
	resp.Body.Close()
	if resp.StatusCode >= 300 {
		log.Fatalf("POST %s returned %s", endpoint, resp.Status)
	}
}
