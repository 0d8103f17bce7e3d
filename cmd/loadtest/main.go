// Load generator: spins up N guest clients against a running server, joins
// them to one room, and has them spam guess and draw frames.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
)

var baseURL = envOr("SKETCH_URL", "http://localhost:3000")
var wsBaseURL = envOr("SKETCH_WS_URL", "ws://localhost:3000")

type message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: loadtest <clients> [room_code]")
	}
	numClients, err := strconv.Atoi(os.Args[1])
	if err != nil {
		log.Fatal("invalid client count:", err)
	}

	hostToken, _ := guestAuth("host")

	var code string
	if len(os.Args) >= 3 {
		code = os.Args[2]
		fmt.Println("using existing room:", code)
	} else {
		code = createRoom(hostToken)
		fmt.Println("created room:", code)
	}

	for i := 0; i < numClients; i++ {
		go connectAndSpam(code, fmt.Sprintf("player%d", i))
		time.Sleep(50 * time.Millisecond)
	}

	select {}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func guestAuth(name string) (token, userID string) {
	body, _ := json.Marshal(map[string]string{"displayName": name})
	resp, err := http.Post(baseURL+"/auth/guest", "application/json", bytes.NewReader(body))
	if err != nil {
		log.Fatal("guest auth failed:", err)
	}
	defer resp.Body.Close()

	var res struct {
		Token  string `json:"token"`
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		log.Fatal("invalid auth response:", err)
	}
	return res.Token, res.UserID
}

func createRoom(token string) string {
	req, _ := http.NewRequest(http.MethodPost, baseURL+"/rooms/", bytes.NewReader([]byte("{}")))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatal("create room failed:", err)
	}
	defer resp.Body.Close()

	var res struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		log.Fatal("invalid room response:", err)
	}
	return res.Code
}

func connectAndSpam(code, name string) {
	token, _ := guestAuth(name)

	url := fmt.Sprintf("%s/ws/%s?token=%s", wsBaseURL, code, token)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		log.Println("ws connect error:", err)
		return
	}
	defer conn.Close()
	fmt.Printf("%s joined\n", name)

	// Drain server pushes so the connection stays healthy.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for i := 0; i < 200; i++ {
		msg := randomFrame(name)
		raw, _ := json.Marshal(msg)
		if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
			log.Printf("write error for %s: %v", name, err)
			return
		}
		time.Sleep(time.Duration(50+rand.Intn(450)) * time.Millisecond)
	}
	fmt.Printf("%s finished\n", name)
}

func randomFrame(name string) message {
	switch rand.Intn(3) {
	case 0:
		return message{
			Type: "guess",
			Data: json.RawMessage(fmt.Sprintf(`{"text":"guess from %s"}`, name)),
		}
	case 1:
		return message{
			Type: "draw",
			Data: json.RawMessage(fmt.Sprintf(
				`{"type":"start","tool":"pen","x":%d,"y":%d,"color":"#1a2b3c","width":4}`,
				rand.Intn(800), rand.Intn(600))),
		}
	default:
		return message{
			Type: "draw",
			Data: json.RawMessage(fmt.Sprintf(
				`{"type":"draw","tool":"pen","x":%d,"y":%d,"color":"#1a2b3c","width":4}`,
				rand.Intn(800), rand.Intn(600))),
		}
	}
}
