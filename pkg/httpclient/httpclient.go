package httpclient

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HttpRequest holds the parameters for an outbound request.
type HttpRequest struct {
	URL     string
	Method  string
	Body    []byte
	Headers map[string]string
}

var client = &http.Client{Timeout: 10 * time.Second}

// SendRequest performs the request and returns the status code and response
// body. The shared client enforces a 10s timeout so a slow gateway cannot
// hold a notification handler open indefinitely.
func SendRequest(req HttpRequest) (int, []byte, error) {
	request, err := http.NewRequest(req.Method, req.URL, bytes.NewBuffer(req.Body))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %v", err)
	}

	for key, value := range req.Headers {
		request.Header.Set(key, value)
	}

	response, err := client.Do(request)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %v", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return response.StatusCode, nil, fmt.Errorf("failed to read response body: %v", err)
	}

	return response.StatusCode, body, nil
}
