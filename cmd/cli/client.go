package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

var httpClient = &http.Client{Timeout: 2 * time.Minute}

// callAPI sends a JSON request and decodes the success body into a map.
// The raw body is returned too so --output json can print it untouched.
func callAPI(method, path string, query url.Values, payload interface{}) (map[string]interface{}, []byte, error) {
	var body io.Reader
	if payload != nil {
		bodyBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(bodyBytes)
	}

	req, err := newRequest(method, path, query, body)
	if err != nil {
		return nil, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return do(req)
}

// uploadPost sends the multipart form the create endpoint expects
func uploadPost(content, visibility, mediaPath string) (map[string]interface{}, []byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	_ = writer.WriteField("content", content)
	if visibility != "" {
		_ = writer.WriteField("visibility", visibility)
	}

	if mediaPath != "" {
		file, err := os.Open(mediaPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open media: %w", err)
		}
		defer file.Close()

		part, err := writer.CreateFormFile("media", filepath.Base(mediaPath))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := io.Copy(part, file); err != nil {
			return nil, nil, fmt.Errorf("failed to read media: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, nil, fmt.Errorf("failed to encode form: %w", err)
	}

	req, err := newRequest(http.MethodPost, "/posts/create", nil, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return do(req)
}

func newRequest(method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	target := apiURL + "/api/v1" + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequest(method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	return req, nil
}

func do(req *http.Request) (map[string]interface{}, []byte, error) {
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}

	var result map[string]interface{}
	decodeErr := json.Unmarshal(body, &result)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if msg, ok := result["message"].(string); ok {
			return nil, body, fmt.Errorf("API error: %s", msg)
		}
		if raw := bytes.TrimSpace(body); len(raw) > 0 && decodeErr != nil {
			return nil, body, fmt.Errorf("API error: status %d: %s", resp.StatusCode, truncateBody(raw))
		}
		return nil, body, fmt.Errorf("API error: status %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return nil, body, fmt.Errorf("failed to parse response: %w", decodeErr)
	}
	if result == nil {
		return nil, body, fmt.Errorf("failed to parse response: empty body")
	}
	return result, body, nil
}

// truncateBody keeps error pages readable on one line
func truncateBody(raw []byte) string {
	const limit = 200
	if len(raw) > limit {
		return string(raw[:limit]) + "..."
	}
	return string(raw)
}

// printResult prints the raw JSON in json mode, otherwise runs the text renderer
func printResult(body []byte, text func()) {
	if output == "json" {
		fmt.Println(string(body))
		return
	}
	text()
}

func str(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func num(m map[string]interface{}, key string) int {
	if v, ok := m[key].(float64); ok {
		return int(v)
	}
	return 0
}

func list(m map[string]interface{}, key string) []map[string]interface{} {
	raw, _ := m[key].([]interface{})
	items := make([]map[string]interface{}, 0, len(raw))
	for _, r := range raw {
		if item, ok := r.(map[string]interface{}); ok {
			items = append(items, item)
		}
	}
	return items
}
