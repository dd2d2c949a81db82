package pinning

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

var ErrNoHash = errors.New("pinning: response carried no IpfsHash")

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client pins files through a Pinata-compatible API and reads them back
// through its IPFS gateway.
type Client struct {
	APIURL     string
	GatewayURL string
	APIKey     string
	APISecret  string
	client     HTTPClient
}

func NewClient(apiURL, gatewayURL, key, secret string, client HTTPClient) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{
		APIURL:     strings.TrimRight(apiURL, "/"),
		GatewayURL: strings.TrimRight(gatewayURL, "/"),
		APIKey:     key,
		APISecret:  secret,
		client:     client,
	}
}

// PinFile uploads content under filename and returns its IPFS hash.
func (c *Client) PinFile(ctx context.Context, filename string, content io.Reader) (string, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", err
	}
	if err := form.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL+"/pinning/pinFileToIPFS", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("pinata_api_key", c.APIKey)
	req.Header.Set("pinata_secret_api_key", c.APISecret)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("pinning: pin %s: %w", filename, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("pinning: pin %s: status %d: %s", filename, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var result struct {
		IpfsHash string `json:"IpfsHash"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("pinning: decode response: %w", err)
	}
	if result.IpfsHash == "" {
		return "", ErrNoHash
	}
	return result.IpfsHash, nil
}

// FileURL is the public gateway URL of a pinned file.
func (c *Client) FileURL(hash string) string {
	return c.GatewayURL + "/ipfs/" + hash
}

// FetchFile reads a pinned JSON document back from the gateway into out.
func (c *Client) FetchFile(ctx context.Context, hash string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.FileURL(hash), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("pinning: fetch %s: %w", hash, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pinning: fetch %s: status %d", hash, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
