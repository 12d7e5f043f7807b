package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HttpClient is a thin JSON client for talking to a reservio deployment.
type HttpClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewHttpClient(baseURL string) *HttpClient {
	return &HttpClient{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type Response struct {
	*http.Response
	Body []byte
}

func (r *Response) DecodeJSON(target any) error {
	return json.Unmarshal(r.Body, target)
}

func (r *Response) ToString() string {
	return fmt.Sprintf("status=%d body=%s", r.StatusCode, string(r.Body))
}

func (c *HttpClient) GET(path string) (*Response, error) {
	return c.request(http.MethodGet, path, nil)
}

func (c *HttpClient) POST(path string, body any) (*Response, error) {
	return c.request(http.MethodPost, path, body)
}

func (c *HttpClient) PUT(path string, body any) (*Response, error) {
	return c.request(http.MethodPut, path, body)
}

func (c *HttpClient) DELETE(path string) (*Response, error) {
	return c.request(http.MethodDelete, path, nil)
}

func (c *HttpClient) request(method, path string, body any) (*Response, error) {
	var reqBody io.Reader
	hasBody := body != nil

	if hasBody {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{Response: resp, Body: data}, nil
}
