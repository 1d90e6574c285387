package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/NikhilYadav04/pillbin-v2/internal/models"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.StatusCode, e.Message)
}

// Client calls the medicine tracker API on behalf of a session.
type Client struct {
	HTTP    *http.Client
	Session *Session
}

// NewHTTPClient returns an HTTP client that trusts only the CA in caFile,
// for servers using a self-signed certificate. An empty caFile uses the
// system roots.
func NewHTTPClient(caFile string) (*http.Client, error) {
	c := &http.Client{Timeout: 10 * time.Second}
	if caFile == "" {
		return c, nil
	}
	caCert, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA cert: %w", err)
	}
	caPool := x509.NewCertPool()
	if !caPool.AppendCertsFromPEM(caCert) {
		return nil, errors.New("failed to parse CA cert")
	}
	c.Transport = &http.Transport{
		TLSClientConfig: &tls.Config{RootCAs: caPool, MinVersion: tls.VersionTLS12},
	}
	return c, nil
}

// do sends a JSON request and decodes the envelope's data into out.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.Session.BaseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Session.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Session.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env struct {
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

// Register creates an account and stores its token in the session.
func (c *Client) Register(ctx context.Context, email, fullName string) (*models.User, error) {
	var out struct {
		Token string       `json:"token"`
		User  *models.User `json:"user"`
	}
	in := map[string]string{"email": email, "fullName": fullName}
	if err := c.do(ctx, http.MethodPost, "/api/register", in, &out); err != nil {
		return nil, err
	}
	c.Session.mu.Lock()
	c.Session.Token = out.Token
	c.Session.UserID = out.User.ID
	c.Session.mu.Unlock()
	return out.User, c.Session.Save()
}

// Profile fetches the user with counters and badges.
func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var out struct {
		User *models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/user/profile", nil, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// NewMedicineInput is the body of an add request. Dates use YYYY-MM-DD.
type NewMedicineInput struct {
	Name         string `json:"name"`
	ExpiryDate   string `json:"expiryDate"`
	PurchaseDate string `json:"purchaseDate,omitempty"`
	Dosage       string `json:"dosage,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// AddMedicine stores a new medicine.
func (c *Client) AddMedicine(ctx context.Context, in NewMedicineInput) (*models.Medicine, error) {
	var out struct {
		Medicine *models.Medicine `json:"medicine"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/medicine/add", in, &out); err != nil {
		return nil, err
	}
	return out.Medicine, nil
}

// Medicine fetches one medicine.
func (c *Client) Medicine(ctx context.Context, id string) (*models.Medicine, error) {
	var out struct {
		Medicine *models.Medicine `json:"medicine"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/medicine/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return out.Medicine, nil
}

// Inventory fetches one page of the partitioned inventory.
func (c *Client) Inventory(ctx context.Context, page, limit int) (*models.Inventory, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/medicine/inventory"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out struct {
		Inventory *models.Inventory `json:"inventory"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Inventory, nil
}

// DeleteMedicine disposes of one medicine; hard skips the deleted bin.
func (c *Client) DeleteMedicine(ctx context.Context, id string, hard bool) (*models.DeleteResult, error) {
	path := "/api/medicine/delete/" + url.PathEscape(id)
	if hard {
		path += "/hard"
	}
	var out models.DeleteResult
	if err := c.do(ctx, http.MethodDelete, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAllExpired disposes of every expired medicine.
func (c *Client) DeleteAllExpired(ctx context.Context) (*models.BulkDeleteResult, error) {
	var out models.BulkDeleteResult
	if err := c.do(ctx, http.MethodDelete, "/api/medicine/delete-all-expired", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EmptyBin permanently removes every soft-deleted medicine.
func (c *Client) EmptyBin(ctx context.Context) (*models.BulkDeleteResult, error) {
	var out models.BulkDeleteResult
	if err := c.do(ctx, http.MethodDelete, "/api/medicine/delete-all-hard", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
