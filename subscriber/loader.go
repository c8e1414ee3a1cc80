package subscriber

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Subscriber keeps the remote's record shape open: the import call
// forwards whatever fields the source provides.
type Subscriber map[string]any

type Loader struct {
	client *http.Client
}

func NewLoader(timeout time.Duration) *Loader {
	return &Loader{client: &http.Client{Timeout: timeout}}
}

func (l *Loader) FromURL(ctx context.Context, sourceURL string) ([]Subscriber, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch subscribers from %s: %w", sourceURL, err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch subscribers from %s: %w", sourceURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch subscribers from %s: http status %d", sourceURL, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch subscribers from %s: %w", sourceURL, err)
	}
	return decode(data)
}

func (l *Loader) FromFile(path string) ([]Subscriber, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read subscribers from %s: %w", path, err)
	}
	return decode(data)
}

func decode(data []byte) ([]Subscriber, error) {
	var records []Subscriber
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("subscriber data is not a json array: %w", err)
	}
	return records, nil
}
