package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"time"
)

func main() {
	baseURL := os.Getenv("STEWARD_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	jar, _ := cookiejar.New(nil)
	client := &http.Client{Jar: jar, Timeout: 30 * time.Second}

	fmt.Println("Starting smoke run against", baseURL)

	steps := []struct {
		name    string
		method  string
		path    string
		payload interface{}
	}{
		{"health", http.MethodGet, "/healthz", nil},
		{"status", http.MethodGet, "/api/status", nil},
		{"dashboard", http.MethodGet, "/api/dashboard", nil},
		{"golden records", http.MethodGet, "/api/golden", nil},
		{"hierarchy", http.MethodGet, "/api/hierarchy", nil},
		{"audit", http.MethodGet, "/api/audit", nil},
		{"data quality", http.MethodGet, "/api/quality", nil},
		{"review load", http.MethodPost, "/api/review/load", nil},
		{"review skip key", http.MethodPost, "/api/review/key", map[string]interface{}{"key": "s"}},
		{"dashboard page", http.MethodGet, "/", nil},
	}

	for i, st := range steps {
		fmt.Printf("%d. %s...\n", i+1, st.name)
		if !sendRequest(client, st.method, baseURL+st.path, st.payload) {
			fmt.Printf("FAILED: %s\n", st.name)
			os.Exit(1)
		}
		fmt.Printf("PASSED: %s\n", st.name)
	}
}

func sendRequest(client *http.Client, method, url string, payload interface{}) bool {
	var body io.Reader
	if payload != nil {
		jsonBytes, _ := json.Marshal(payload)
		body = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-User", "smoke")

	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	// a skip past the end of the queue is a legitimate 409
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusConflict {
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(respBody))
		return false
	}
	return true
}
