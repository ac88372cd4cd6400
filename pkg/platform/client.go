package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/epiwatch/surveillance/pkg/common/config"
	"github.com/epiwatch/surveillance/pkg/common/logger"
	"github.com/epiwatch/surveillance/pkg/common/models"
	"github.com/epiwatch/surveillance/pkg/platform/httpclient"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	optionSetFields = "id,name,displayName,attributeValues[value,attribute[id]],options[id,code,name,displayName,sortOrder,attributeValues[value,attribute[id]]]"
	optionFields    = "id,code,name,displayName,sortOrder,optionSet[id],attributeValues[value,attribute[id]]"
	eventFields     = "event,program,programStage,orgUnit,trackedEntity,status,occurredAt,dataValues[dataElement,value]"
	entityFields    = "trackedEntity,orgUnit,attributes[attribute,value],enrollments[enrollment,program,status,enrolledAt,attributes[attribute,value]]"
)

// Client is the typed adapter for the external health-information platform.
type Client struct {
	baseURL  string
	http     *http.Client
	username string
	password string
}

// New builds a Client from configuration. When a token URL is configured the
// client authenticates with OAuth2 client credentials; otherwise it falls
// back to basic auth.
func New(cfg *config.Config) *Client {
	base := httpclient.New(cfg.PlatformTimeout)

	if cfg.PlatformTokenURL != "" {
		cc := clientcredentials.Config{
			ClientID:     cfg.PlatformClientID,
			ClientSecret: cfg.PlatformClientSecret,
			TokenURL:     cfg.PlatformTokenURL,
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		return &Client{
			baseURL: strings.TrimRight(cfg.PlatformBaseURL, "/"),
			http:    cc.Client(ctx),
		}
	}

	return &Client{
		baseURL:  strings.TrimRight(cfg.PlatformBaseURL, "/"),
		http:     base,
		username: cfg.PlatformUsername,
		password: cfg.PlatformPassword,
	}
}

// NewWithClient wires an explicit http.Client, used by tests against fake
// platform servers.
func NewWithClient(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// GetOptionSet fetches a full option set including its nested options.
func (c *Client) GetOptionSet(ctx context.Context, id string) (models.OptionSet, error) {
	query := url.Values{}
	query.Set("fields", optionSetFields)

	var set models.OptionSet
	if err := c.do(ctx, http.MethodGet, "/optionSets/"+id, query, nil, &set); err != nil {
		return models.OptionSet{}, err
	}
	return set, nil
}

// ListOptions pages through the options of one option set, optionally
// narrowed by a free-text token search. A blank or whitespace-only search
// adds no search filter at all.
func (c *Client) ListOptions(ctx context.Context, q OptionQuery) (OptionPage, error) {
	query := url.Values{}
	query.Set("fields", optionFields)
	query.Add("filter", "optionSet.id:eq:"+q.OptionSetID)
	if term := strings.TrimSpace(q.Search); term != "" {
		query.Add("filter", "identifiable:token:"+term)
	}
	if q.Page > 0 {
		query.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		query.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	order := q.Order
	if order == "" {
		order = "sortOrder:asc"
	}
	query.Set("order", order)

	var resp optionListResponse
	if err := c.do(ctx, http.MethodGet, "/options", query, nil, &resp); err != nil {
		return OptionPage{}, err
	}
	return OptionPage{Pager: resp.Pager, Options: resp.Options}, nil
}

// GetOption fetches a single option with its attribute values.
func (c *Client) GetOption(ctx context.Context, id string) (models.Option, error) {
	query := url.Values{}
	query.Set("fields", optionFields)

	var opt models.Option
	if err := c.do(ctx, http.MethodGet, "/options/"+id, query, nil, &opt); err != nil {
		return models.Option{}, err
	}
	return opt, nil
}

// CreateOption creates an option inside its option set and returns the
// platform-assigned uid.
func (c *Client) CreateOption(ctx context.Context, opt models.Option) (string, error) {
	var resp importResponse
	if err := c.do(ctx, http.MethodPost, "/options", nil, opt, &resp); err != nil {
		return "", err
	}
	return resp.Response.UID, nil
}

// UpdateOption replaces an option in full. All edit screens go through this
// single idempotent PUT; the replace merge mode keeps omitted fields from
// lingering on the platform side.
func (c *Client) UpdateOption(ctx context.Context, id string, opt models.Option) error {
	query := url.Values{}
	query.Set("mergeMode", "REPLACE")
	return c.do(ctx, http.MethodPut, "/options/"+id, query, opt, nil)
}

// DeleteOption removes an option. The platform requires two steps: detach
// the option from its owning set, then delete the option itself.
func (c *Client) DeleteOption(ctx context.Context, optionSetID, optionID string) error {
	if err := c.do(ctx, http.MethodDelete, "/optionSets/"+optionSetID+"/options/"+optionID, nil, nil, nil); err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, "/options/"+optionID, nil, nil, nil)
}

// Analytics queries one data element over one or more periods, scoped to an
// org unit.
func (c *Client) Analytics(ctx context.Context, dataElement string, periods []string, orgUnit string) (AnalyticsResult, error) {
	query := url.Values{}
	query.Add("dimension", "dx:"+dataElement)
	query.Add("dimension", "pe:"+strings.Join(periods, ";"))
	if orgUnit != "" {
		query.Set("filter", "ou:"+orgUnit)
	}

	var resp analyticsResponse
	if err := c.do(ctx, http.MethodGet, "/analytics", query, nil, &resp); err != nil {
		return AnalyticsResult{}, err
	}

	columns := make([]string, 0, len(resp.Headers))
	for _, h := range resp.Headers {
		columns = append(columns, h.Name)
	}
	return AnalyticsResult{Columns: columns, Rows: resp.Rows}, nil
}

// ListEvents queries tracker events.
func (c *Client) ListEvents(ctx context.Context, q EventQuery) ([]models.Event, error) {
	query := url.Values{}
	query.Set("fields", eventFields)
	if q.Program != "" {
		query.Set("program", q.Program)
	}
	if q.ProgramStage != "" {
		query.Set("programStage", q.ProgramStage)
	}
	if q.OrgUnit != "" {
		query.Set("orgUnit", q.OrgUnit)
	}
	if q.Status != "" {
		query.Set("status", q.Status)
	}
	if q.FilterValue != "" {
		query.Add("filter", q.FilterValue)
	}
	if q.Page > 0 {
		query.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		query.Set("pageSize", strconv.Itoa(q.PageSize))
	}

	var resp eventListResponse
	if err := c.do(ctx, http.MethodGet, "/tracker/events", query, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Instances, nil
}

// GetEvent fetches one tracker event.
func (c *Client) GetEvent(ctx context.Context, id string) (models.Event, error) {
	query := url.Values{}
	query.Set("fields", eventFields)

	var event models.Event
	if err := c.do(ctx, http.MethodGet, "/tracker/events/"+id, query, nil, &event); err != nil {
		return models.Event{}, err
	}
	return event, nil
}

// UpsertEvent creates or updates a tracker event. The platform treats an
// event with a uid as an update and one without as a create.
func (c *Client) UpsertEvent(ctx context.Context, event models.Event) error {
	body := map[string][]models.Event{"events": {event}}
	return c.do(ctx, http.MethodPost, "/tracker/events", nil, body, nil)
}

// GetTrackedEntity fetches a tracked entity with its enrollment attributes.
func (c *Client) GetTrackedEntity(ctx context.Context, id string) (models.TrackedEntity, error) {
	query := url.Values{}
	query.Set("fields", entityFields)

	var entity models.TrackedEntity
	if err := c.do(ctx, http.MethodGet, "/tracker/trackedEntities/"+id, query, nil, &entity); err != nil {
		return models.TrackedEntity{}, err
	}
	return entity, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("platform request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
			apiErr.Message = payload.Message
		}
		logger.Log.WithFields(map[string]interface{}{
			"method": method,
			"path":   path,
			"status": resp.StatusCode,
		}).Warn("platform call failed")
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding platform response: %w", err)
	}
	return nil
}
