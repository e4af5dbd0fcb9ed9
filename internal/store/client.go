package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// DefaultTimeout bounds every single store call so a stalled network
// operation cannot occupy a queue slot forever.
const DefaultTimeout = 30 * time.Second

// Client talks to a store server over its HTTP file API.
type Client struct {
	baseURL  string
	basePath string
	token    string
	timeout  time.Duration
	http     *http.Client
}

// ClientOptions configures a store client.
type ClientOptions struct {
	// URL is the store server endpoint, e.g. http://store:8080
	URL string
	// BasePath is prefixed to every remote path, e.g. "backups/host1"
	BasePath string
	// Token is an optional bearer token sent with every request
	Token string
	// Timeout per call (0 = DefaultTimeout)
	Timeout time.Duration
}

// NewClient creates a store client for the given endpoint.
func NewClient(opts ClientOptions) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:  strings.TrimSuffix(opts.URL, "/"),
		basePath: strings.Trim(opts.BasePath, "/"),
		token:    opts.Token,
		timeout:  timeout,
		http:     &http.Client{},
	}
}

// fullPath joins the configured base path with a store-relative path.
func (c *Client) fullPath(p string) string {
	p = strings.Trim(path.Clean("/"+p), "/")
	if c.basePath == "" {
		return p
	}
	if p == "" || p == "." {
		return c.basePath
	}
	return c.basePath + "/" + p
}

func (c *Client) do(method, endpoint, remotePath string, body io.Reader) (*http.Response, error) {
	apiURL := fmt.Sprintf("%s%s?path=%s", c.baseURL, endpoint, url.QueryEscape(c.fullPath(remotePath)))

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	req, err := http.NewRequestWithContext(ctx, method, apiURL, body)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to contact store at %s: %w", c.baseURL, err)
	}
	// Tie the context lifetime to the response body.
	resp.Body = &cancelReadCloser{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

type cancelReadCloser struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelReadCloser) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

func closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		log.Printf("[Store] Error closing response body: %v", err)
	}
}

type statResponse struct {
	Exists  bool      `json:"exists"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
	IsDir   bool      `json:"is_dir"`
}

// Stat returns metadata for a remote path.
func (c *Client) Stat(remotePath string) (EntryInfo, error) {
	resp, err := c.do(http.MethodGet, "/api/stat", remotePath, nil)
	if err != nil {
		return EntryInfo{}, err
	}
	defer closeBody(resp)

	if resp.StatusCode != http.StatusOK {
		return EntryInfo{}, fmt.Errorf("store stat returned status %s", resp.Status)
	}

	var sr statResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return EntryInfo{}, fmt.Errorf("failed to decode stat response: %w", err)
	}
	if !sr.Exists {
		return EntryInfo{}, ErrNotFound
	}
	return EntryInfo{
		Name:    path.Base(remotePath),
		Size:    sr.Size,
		ModTime: sr.ModTime,
		IsDir:   sr.IsDir,
	}, nil
}

// Exists reports whether a remote path exists.
func (c *Client) Exists(remotePath string) (bool, error) {
	_, err := c.Stat(remotePath)
	if err == ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// List returns the direct children of a remote directory.
func (c *Client) List(remotePath string) ([]EntryInfo, error) {
	resp, err := c.do(http.MethodGet, "/api/list", remotePath, nil)
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("store list returned status %s", resp.Status)
	}

	var entries []EntryInfo
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode listing: %w", err)
	}
	return entries, nil
}

// Read returns the full contents of a remote file.
func (c *Client) Read(remotePath string) ([]byte, error) {
	resp, err := c.do(http.MethodGet, "/api/file", remotePath, nil)
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("store read returned status %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return data, nil
}

// Write stores data at a remote path, overwriting any existing file.
func (c *Client) Write(remotePath string, data []byte) error {
	resp, err := c.do(http.MethodPut, "/api/file", remotePath, bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer closeBody(resp)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("store write returned status %s", resp.Status)
	}
	return nil
}

// Mkdir creates a remote directory. Creating an existing directory succeeds.
func (c *Client) Mkdir(remotePath string) error {
	resp, err := c.do(http.MethodPost, "/api/mkdir", remotePath, nil)
	if err != nil {
		return err
	}
	defer closeBody(resp)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("store mkdir returned status %s", resp.Status)
	}
	return nil
}

// Delete removes a remote file. Deleting an absent file succeeds.
func (c *Client) Delete(remotePath string) error {
	resp, err := c.do(http.MethodPost, "/api/delete", remotePath, nil)
	if err != nil {
		return err
	}
	defer closeBody(resp)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("store delete returned status %s", resp.Status)
	}
	return nil
}
