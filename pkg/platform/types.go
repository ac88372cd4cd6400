package platform

import "github.com/epiwatch/surveillance/pkg/common/models"

// Wire envelopes for the platform's JSON responses. Payloads are decoded
// into these explicit shapes at the adapter boundary and converted to
// domain models before anything else sees them.

type Pager struct {
	Page      int `json:"page"`
	PageCount int `json:"pageCount"`
	Total     int `json:"total"`
	PageSize  int `json:"pageSize"`
}

type optionListResponse struct {
	Pager   Pager           `json:"pager"`
	Options []models.Option `json:"options"`
}

// OptionPage is one page of an option listing.
type OptionPage struct {
	Pager   Pager
	Options []models.Option
}

// OptionQuery describes an option listing: the owning option set, an
// optional free-text search, and paging.
type OptionQuery struct {
	OptionSetID string
	Search      string
	Page        int
	PageSize    int
	Order       string
}

// EventQuery scopes a tracker event listing.
type EventQuery struct {
	Program      string
	ProgramStage string
	OrgUnit      string
	Status       string
	FilterValue  string
	Page         int
	PageSize     int
}

type eventListResponse struct {
	Instances []models.Event `json:"instances"`
}

type analyticsHeader struct {
	Name   string `json:"name"`
	Column string `json:"column"`
}

type analyticsResponse struct {
	Headers []analyticsHeader `json:"headers"`
	Rows    [][]string        `json:"rows"`
}

// AnalyticsResult is a reduced analytics grid: one row per dimension
// combination, values kept as strings the way the platform returns them.
type AnalyticsResult struct {
	Columns []string
	Rows    [][]string
}

type importResponse struct {
	Status   string `json:"status"`
	Response struct {
		UID string `json:"uid"`
	} `json:"response"`
	Message string `json:"message"`
}
