package cortex

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const completionsPath = "/chat/completions"

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type chatStreamEvent struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

func (c *Client) postCompletion(ctx context.Context, request chatRequest) (string, error) {
	resp, err := c.send(ctx, request)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var response chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("completion response has no choices")
	}
	return response.Choices[0].Message.Content, nil
}

func (c *Client) streamCompletion(ctx context.Context, request chatRequest, onChunk func(string) error) error {
	resp, err := c.send(ctx, request)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" || payload == "[DONE]" {
			if payload == "[DONE]" {
				return nil
			}
			continue
		}

		var event chatStreamEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			return fmt.Errorf("decode stream event: %w", err)
		}
		if len(event.Choices) == 0 {
			continue
		}
		chunk := event.Choices[0].Delta.Content
		if chunk == "" {
			continue
		}
		if err := onChunk(chunk); err != nil {
			return fmt.Errorf("deliver stream chunk: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read completion stream: %w", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, request chatRequest) (*http.Response, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+completionsPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("completion request: %w", err)
	}
	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, newHTTPStatusError(resp)
	}
	return resp, nil
}

func newHTTPStatusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return &HTTPStatusError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       strings.TrimSpace(string(body)),
	}
}
