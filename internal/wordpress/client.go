// Package wordpress reads customers from and writes geocoding results to the
// WordPress plugin that owns the customer table, through its admin-ajax endpoint.
package wordpress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/UnknownOlympus/meridian/internal/search"
)

// Actions understood by the plugin's ajax handler.
const (
	ActionLoadCustomers = "loadCustomers"
	ActionSaveCoords    = "saveCoords"
	ActionSaveUnfound   = "saveUnfound"
)

// HTTPClient defines the interface for making HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ErrUnexpectedStatus is returned for non-200 answers from admin-ajax.
var ErrUnexpectedStatus = errors.New("unexpected status from admin-ajax")

// Client talks to wp-admin/admin-ajax.php on behalf of one logged in session.
type Client struct {
	client  HTTPClient
	ajaxURL string
	nonce   string
	log     *slog.Logger
}

// loadResponse is the JSON answer of the loadCustomers action.
type loadResponse struct {
	Customers         models.RecordList `json:"customers"`
	Total             models.Number     `json:"number_of_result"`
	Pages             models.Number     `json:"number_of_page"`
	Current           models.Number     `json:"seite"`
	ViewerID          models.Text       `json:"viewerID"`
	CanEditMasterData models.Text       `json:"KdnStammdaten"`
}

// NewClient creates a client with a 30 second HTTP timeout.
func NewClient(ajaxURL, nonce string, log *slog.Logger) *Client {
	const timeout = 30 * time.Second

	return NewClientWithHTTP(&http.Client{Timeout: timeout}, ajaxURL, nonce, log)
}

// NewClientWithHTTP allows injecting a custom HTTP client.
func NewClientWithHTTP(client HTTPClient, ajaxURL, nonce string, log *slog.Logger) *Client {
	return &Client{client: client, ajaxURL: ajaxURL, nonce: nonce, log: log}
}

// FetchCustomers requests one page of the customer list with the given search state.
func (c *Client) FetchCustomers(ctx context.Context, state search.State) (*models.Page, error) {
	form := c.form(ActionLoadCustomers)
	for _, key := range state.Keys() {
		form.Set("searchData["+key+"]", state.Get(key))
	}

	body, err := c.post(ctx, form)
	if err != nil {
		return nil, err
	}

	var resp loadResponse
	if err = json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode customer page: %w", err)
	}

	page := &models.Page{
		Total:             int(resp.Total),
		Current:           int(resp.Current),
		Pages:             int(resp.Pages),
		ViewerID:          string(resp.ViewerID),
		CanEditMasterData: string(resp.CanEditMasterData) == "1",
	}
	if page.Current == 0 {
		page.Current = state.Page()
	}
	for _, rec := range resp.Customers {
		page.Customers = append(page.Customers, models.NewCustomer(rec))
	}

	c.log.DebugContext(ctx, "Fetched customer page", "page", page.Current, "pages", page.Pages, "count", len(page.Customers))

	return page, nil
}

// SaveCoordinates posts a batch of resolved coordinates.
func (c *Client) SaveCoordinates(ctx context.Context, coords []models.StoredCoordinates) error {
	if len(coords) == 0 {
		return nil
	}

	form := c.form(ActionSaveCoords)
	for i, coord := range coords {
		prefix := "data[" + strconv.Itoa(i) + "]"
		form.Set(prefix+"[lat]", strconv.FormatFloat(coord.Latitude, 'f', -1, 64))
		form.Set(prefix+"[lon]", strconv.FormatFloat(coord.Longitude, 'f', -1, 64))
		form.Set(prefix+"[KdID]", strconv.Itoa(coord.CustomerID))
	}

	return c.postAndLog(ctx, form, len(coords))
}

// SaveUnresolved posts the IDs of customers whose address was not found.
func (c *Client) SaveUnresolved(ctx context.Context, unresolved []models.UnresolvedAddress) error {
	if len(unresolved) == 0 {
		return nil
	}

	form := c.form(ActionSaveUnfound)
	for i, u := range unresolved {
		form.Set("data["+strconv.Itoa(i)+"][KdID]", strconv.Itoa(u.CustomerID))
	}

	return c.postAndLog(ctx, form, len(unresolved))
}

func (c *Client) form(action string) url.Values {
	form := url.Values{}
	form.Set("action", action)
	form.Set("ajax_nonce", c.nonce)

	return form
}

// postAndLog sends a write action. The plugin answers with an empty body on success
// and prints diagnostics otherwise, which are logged but not treated as failure.
func (c *Client) postAndLog(ctx context.Context, form url.Values, count int) error {
	body, err := c.post(ctx, form)
	if err != nil {
		return err
	}

	if msg := strings.TrimSpace(string(body)); msg != "" {
		c.log.WarnContext(ctx, "admin-ajax answered with a message", "action", form.Get("action"), "response", msg)
	}
	c.log.InfoContext(ctx, "Stored geocoding results", "action", form.Get("action"), "count", count)

	return nil
}

func (c *Client) post(ctx context.Context, form url.Values) ([]byte, error) {
	action := form.Get("action")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.ajaxURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute %s request: %w", action, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", action, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.log.ErrorContext(ctx, "admin-ajax error", "action", action, "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: %s returned %d", ErrUnexpectedStatus, action, resp.StatusCode)
	}

	return body, nil
}
