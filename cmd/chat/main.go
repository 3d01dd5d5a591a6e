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
	server := flag.String("server", "http://localhost:8080", "Parley server URL")
	flag.Parse()

	fmt.Println("Parley CLI")
	fmt.Printf("Server: %s\n", *server)
	fmt.Println("Type 'exit' or 'quit' to leave. Prefix with 'sql:' for SQL generation.")
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

		if q, ok := strings.CutPrefix(input, "sql:"); ok {
			ask(*server, "/api/sql", strings.TrimSpace(q))
			continue
		}
		ask(*server, "/api/answer", input)
	}
}

func ask(server, path, question string) {
	body, _ := json.Marshal(map[string]string{"question": question})

	client := &http.Client{Timeout: 300 * time.Second}
	resp, err := client.Post(server+path, "application/json", bytes.NewReader(body))
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

	var result struct {
		QID      string   `json:"q_id"`
		Messages []string `json:"messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		printError("Failed to parse response: %v", err)
		return
	}

	fmt.Printf("\033[36m[%s]\033[0m\n", result.QID)
	for _, msg := range result.Messages {
		fmt.Println(msg)
	}
}

func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "\033[31m"+format+"\033[0m\n", args...)
}
