// Package netx holds small HTTP helpers shared by the consoles.
package netx

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Download streams the body of a GET to url into w and returns the number of
// bytes written. A nil client means http.DefaultClient.
func Download(ctx context.Context, c *http.Client, url string, w io.Writer) (int64, error) {
	if c == nil {
		c = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return 0, fmt.Errorf("download failed: %s; body: %s", resp.Status, string(b))
	}
	return io.Copy(w, resp.Body)
}
