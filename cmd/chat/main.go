package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "consciousness core server URL")
	sessionID := flag.String("session", "cli", "session ID to converse under")
	trace := flag.Bool("trace", false, "print reflections and scores with each reply")
	flag.Parse()

	fmt.Println("Consciousness Core CLI Chat")
	fmt.Printf("Server: %s | Session: %s\n", *server, *sessionID)
	fmt.Println("Type 'exit' or 'quit' to leave.")
	fmt.Println("Commands: /help /workspace /metrics /chemistry /stream /reset /sessions")
	fmt.Println("---")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			fmt.Println("Bye!")
			return
		}

		sendMessage(*server, *sessionID, input, *trace)
	}
}

func sendMessage(server, sessionID, content string, trace bool) {
	body, _ := json.Marshal(map[string]string{
		"session_id": sessionID,
		"message":    content,
	})

	client := &http.Client{Timeout: 120 * time.Second}
	resp, err := client.Post(server+"/api/chat", "application/json", bytes.NewReader(body))
	if err != nil {
		printError("Request failed: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		printError("Server error (%d): %s", resp.StatusCode, string(data))
		return
	}

	var turn struct {
		Response    string `json:"response"`
		Mood        string `json:"mood"`
		Reflections []struct {
			Level   int    `json:"level"`
			Type    string `json:"type"`
			Content string `json:"content"`
		} `json:"reflections"`
		Score struct {
			Overall float64 `json:"overall_consciousness"`
		} `json:"score"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&turn); err != nil {
		printError("Failed to parse response: %v", err)
		return
	}

	fmt.Println(turn.Response)
	if trace && len(turn.Reflections) > 0 {
		fmt.Printf("\033[90m  mood: %s | consciousness: %.3f\033[0m\n", turn.Mood, turn.Score.Overall)
		for _, r := range turn.Reflections {
			if r.Level == 0 {
				continue
			}
			fmt.Printf("\033[90m  L%d %s: %s\033[0m\n", r.Level, r.Type, r.Content)
		}
	}
}

func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "\033[31m"+format+"\033[0m\n", args...)
}
