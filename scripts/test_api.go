package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:3000/api"

// Pretty print JSON helper
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

func sendRequest(method, url, token string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{} // model calls can take minutes, no timeout
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func decode(body []byte) map[string]interface{} {
	var out map[string]interface{}
	json.Unmarshal(body, &out)
	return out
}

func main() {
	color.Cyan("🚀 Starting Chat API smoke test\n")

	// 1. Register a throwaway user
	color.Yellow("\n1. Register")
	_, body, err := sendRequest("POST", "/auth/v1/register", "", map[string]interface{}{
		"name":            "Smoke Tester",
		"email":           "smoke@example.com",
		"password":        "smoke-test-password",
		"remember_device": true,
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	registerResp := decode(body)
	prettyPrint(registerResp)

	// 2. Login
	color.Yellow("\n2. Login")
	resp, body, err := sendRequest("POST", "/auth/v1/login", "", map[string]interface{}{
		"email":    "smoke@example.com",
		"password": "smoke-test-password",
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	loginResp := decode(body)
	token := ""
	if data, ok := loginResp["data"].(map[string]interface{}); ok {
		token, _ = data["access_token"].(string)
	}
	if token == "" {
		color.Red("No access token in login response")
		prettyPrint(loginResp)
		os.Exit(1)
	}

	// 3. Device login (should restore the persisted session)
	color.Yellow("\n3. Device login")
	resp, body, _ = sendRequest("POST", "/auth/v1/device-login", "", nil)
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	// 4. Send a message (creates a session implicitly)
	color.Yellow("\n4. Send message")
	resp, body, err = sendRequest("POST", "/chat/v1/send", token, map[string]interface{}{
		"text": "מה שלומך?",
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	sendResp := decode(body)
	prettyPrint(sendResp)

	sessionId := ""
	if data, ok := sendResp["data"].(map[string]interface{}); ok {
		sessionId, _ = data["session_id"].(string)
	}

	// 5. List sessions
	color.Yellow("\n5. List sessions")
	resp, body, _ = sendRequest("GET", "/chat/v1/sessions", token, nil)
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	if sessionId != "" {
		// 6. Trash / restore round trip
		color.Yellow("\n6. Trash session")
		resp, body, _ = sendRequest("POST", "/chat/v1/trash", token, map[string]interface{}{
			"session_id": sessionId,
		})
		color.Green("Status: %s", resp.Status)
		prettyPrint(decode(body))

		color.Yellow("\n7. Restore session")
		resp, body, _ = sendRequest("POST", "/chat/v1/restore", token, map[string]interface{}{
			"session_id": sessionId,
		})
		color.Green("Status: %s", resp.Status)
		prettyPrint(decode(body))
	}

	// 8. Empty trash (confirmed)
	color.Yellow("\n8. Empty trash")
	resp, body, _ = sendRequest("POST", "/chat/v1/empty-trash", token, map[string]interface{}{
		"confirm": true,
	})
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	color.Cyan("\n✅ Smoke test finished")
}
