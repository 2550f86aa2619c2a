// Package fetch performs the HTTP existence checks and downloads for
// archived CRX copies.
package fetch

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Client issues HEAD and GET requests. Redirects are followed. There is no
// timeout and no retry: a failure is returned to the caller to be recorded.
type Client struct {
	userAgent string
	http      *http.Client
}

// New creates a Client. A nil httpClient uses a plain http.Client.
func New(userAgent string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{userAgent: userAgent, http: httpClient}
}

// Response describes the outcome of an existence check.
type Response struct {
	OK     bool `json:"ok"`
	Status int  `json:"status"`
}

func (c *Client) newRequest(method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return req, nil
}

// Head checks whether url resolves. A non-2xx answer is reported in the
// Response with a nil error; err is set only when the request itself failed.
func (c *Client) Head(url string) (Response, error) {
	req, err := c.newRequest(http.MethodHead, url, nil)
	if err != nil {
		return Response{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return Response{}, err
	}
	_ = resp.Body.Close()
	return Response{OK: checkStatus(resp) == nil, Status: resp.StatusCode}, nil
}

// Get opens the body of url for streaming. size is the advertised content
// length, or -1 when unknown. Caller is responsible for closing the body.
func (c *Client) Get(url string) (body io.ReadCloser, size int64, err error) {
	req, err := c.newRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	if err := checkStatus(resp); err != nil {
		_ = resp.Body.Close()
		return nil, 0, err
	}
	if resp.ContentLength == 0 {
		_ = resp.Body.Close()
		return nil, 0, ErrEmptyBody
	}
	return resp.Body, resp.ContentLength, nil
}

// checkStatus returns a typed error for non-2xx responses.
func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	default:
		return fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, resp.StatusCode,
			strings.TrimSpace(http.StatusText(resp.StatusCode)))
	}
}
