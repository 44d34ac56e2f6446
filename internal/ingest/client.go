package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/AngelCh415/ads-insights/internal/utils"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

func NewHTTPClient(timeout time.Duration) HTTPClient {
	return &http.Client{Timeout: timeout}
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string { return fmt.Sprintf("non-2xx: %d body=%s", e.code, e.body) }

func getJSON(ctx context.Context, c HTTPClient, url string, v any) error {
	if url == "" {
		return errors.New("empty url")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &statusError{code: resp.StatusCode, body: string(b)}
	}
	// un body inválido no mejora reintentando
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return utils.Permanent(fmt.Errorf("decode %s: %w", url, err))
	}
	return nil
}

// getJSONWithRetry reintenta errores de red y 5xx/429; cualquier otro 4xx es definitivo.
func getJSONWithRetry(ctx context.Context, c HTTPClient, bo utils.Backoff, url string, dst any) error {
	return bo.Do(ctx, func(int) error {
		err := getJSON(ctx, c, url, dst)
		var se *statusError
		if errors.As(err, &se) && se.code < 500 && se.code != http.StatusTooManyRequests {
			return utils.Permanent(err)
		}
		return err
	})
}
