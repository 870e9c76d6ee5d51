// Package httpclient provides basic http functions
package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// DefaultTimeout applies when a caller does not supply its own http.Client.
const DefaultTimeout = 15 * time.Second

// StatusError indicates a request completed with a non-success http status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request to %s returned status %d", e.URL, e.StatusCode)
}

// GetJSON performs a GET request for url and decodes the json response body
// into target. A nil client falls back to a client with DefaultTimeout.
// Non-2xx responses produce a StatusError.
func GetJSON(ctx context.Context, client *http.Client, url string, target interface{}) error {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", url, err)
	}
	request.Header.Set("Accept", "application/json")

	response, err := client.Do(request)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", url, err)
	}
	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return &StatusError{URL: url, StatusCode: response.StatusCode}
	}
	if err = json.NewDecoder(response.Body).Decode(target); err != nil {
		return fmt.Errorf("decoding response from %s: %w", url, err)
	}
	return nil
}

// DownloadFile retrieves a file from a url to a local file destination.
// On success returns the number of bytes written.
func DownloadFile(destinationFileName string, url string) (int64, error) {
	resp, err := http.Get(url)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return 0, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	out, err := os.Create(destinationFileName)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = out.Close()
	}()
	bytesWritten, err := io.Copy(out, resp.Body)
	if err != nil {
		return 0, err
	}
	return bytesWritten, nil
}
