package models

import "time"

// Option set vocabulary models. Options are owned by the external platform;
// this service only reads, caches, and edits them through the platform API.
type Option struct {
	ID              string           `json:"id"`
	Code            string           `json:"code,omitempty"`
	Name            string           `json:"name"`
	DisplayName     string           `json:"displayName,omitempty"`
	SortOrder       int              `json:"sortOrder,omitempty"`
	OptionSet       *OptionSetRef    `json:"optionSet,omitempty"`
	AttributeValues []AttributeValue `json:"attributeValues,omitempty"`
}

type OptionSetRef struct {
	ID string `json:"id"`
}

type OptionSet struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	DisplayName string   `json:"displayName,omitempty"`
	Options     []Option `json:"options,omitempty"`
}

// AttributeValue is the platform's generic typed-metadata pair. Value is
// always carried as a string on the wire; booleans arrive as "true"/"false".
type AttributeValue struct {
	Value     string       `json:"value"`
	Attribute AttributeRef `json:"attribute"`
}

type AttributeRef struct {
	ID string `json:"id"`
}

// Disease code screens
type DiseaseCodeView struct {
	ID               string `json:"id"`
	Code             string `json:"code"`
	Name             string `json:"name"`
	SortOrder        int    `json:"sortOrder"`
	ICDCode          string `json:"icdCode,omitempty"`
	Category         string `json:"category,omitempty"`
	CategoryName     string `json:"categoryName,omitempty"`
	RiskLevel        string `json:"riskLevel,omitempty"`
	RiskLevelName    string `json:"riskLevelName,omitempty"`
	RelatedPathogen  string `json:"relatedPathogen,omitempty"`
	Notifiable       string `json:"notifiable,omitempty"`
	Description      string `json:"description,omitempty"`
	LastUpdated      string `json:"lastUpdated,omitempty"`
}

type DiseaseCodeForm struct {
	Code             string   `json:"code"`
	Name             string   `json:"name"`
	ICDCode          string   `json:"icdCode,omitempty"`
	Category         string   `json:"category,omitempty"`
	RiskLevel        string   `json:"riskLevel,omitempty"`
	RelatedPathogens []string `json:"relatedPathogens,omitempty"`
	Notifiable       *bool    `json:"notifiable,omitempty"`
	Description      string   `json:"description,omitempty"`
}

// Pathogen screens
type PathogenView struct {
	ID                 string `json:"id"`
	Code               string `json:"code"`
	Name               string `json:"name"`
	SortOrder          int    `json:"sortOrder"`
	PathogenType       string `json:"pathogenType,omitempty"`
	PathogenTypeName   string `json:"pathogenTypeName,omitempty"`
	BiosafetyLevel     string `json:"biosafetyLevel,omitempty"`
	BiosafetyLevelName string `json:"biosafetyLevelName,omitempty"`
	Taxonomy           string `json:"taxonomy,omitempty"`
	Zoonotic           string `json:"zoonotic,omitempty"`
	Description        string `json:"description,omitempty"`
}

type PathogenForm struct {
	Code           string `json:"code"`
	Name           string `json:"name"`
	PathogenType   string `json:"pathogenType,omitempty"`
	BiosafetyLevel string `json:"biosafetyLevel,omitempty"`
	Taxonomy       string `json:"taxonomy,omitempty"`
	Zoonotic       *bool  `json:"zoonotic,omitempty"`
	Description    string `json:"description,omitempty"`
}

// Tracker primitives consumed from the platform
type Event struct {
	Event         string      `json:"event,omitempty"`
	Program       string      `json:"program,omitempty"`
	ProgramStage  string      `json:"programStage,omitempty"`
	OrgUnit       string      `json:"orgUnit,omitempty"`
	TrackedEntity string      `json:"trackedEntity,omitempty"`
	Status        string      `json:"status,omitempty"`
	OccurredAt    string      `json:"occurredAt,omitempty"`
	DataValues    []DataValue `json:"dataValues,omitempty"`
}

type DataValue struct {
	DataElement string `json:"dataElement"`
	Value       string `json:"value"`
}

type TrackedEntity struct {
	TrackedEntity string                   `json:"trackedEntity"`
	OrgUnit       string                   `json:"orgUnit,omitempty"`
	Attributes    []TrackedEntityAttribute `json:"attributes,omitempty"`
	Enrollments   []Enrollment             `json:"enrollments,omitempty"`
}

type TrackedEntityAttribute struct {
	Attribute string `json:"attribute"`
	Value     string `json:"value"`
}

type Enrollment struct {
	Enrollment string                   `json:"enrollment"`
	Program    string                   `json:"program,omitempty"`
	Status     string                   `json:"status,omitempty"`
	EnrolledAt string                   `json:"enrolledAt,omitempty"`
	Attributes []TrackedEntityAttribute `json:"attributes,omitempty"`
}

// Lab tests ride on tracker events of the lab-result program stage.
type LabTest struct {
	ID          string `json:"id"`
	CaseID      string `json:"caseId,omitempty"`
	Specimen    string `json:"specimen,omitempty"`
	TestType    string `json:"testType,omitempty"`
	Result      string `json:"result,omitempty"`
	Status      string `json:"status,omitempty"`
	Laboratory  string `json:"laboratory,omitempty"`
	PerformedAt string `json:"performedAt,omitempty"`
}

type LabTestForm struct {
	CaseID      string `json:"caseId"`
	Specimen    string `json:"specimen,omitempty"`
	TestType    string `json:"testType"`
	Result      string `json:"result,omitempty"`
	Status      string `json:"status,omitempty"`
	Laboratory  string `json:"laboratory,omitempty"`
	PerformedAt string `json:"performedAt,omitempty"`
}

// Dashboard view models
type MetricTrend struct {
	Count int     `json:"count"`
	Trend float64 `json:"trend"`
}

type DashboardMetrics struct {
	ProcessingCases int         `json:"processingCases"`
	VerifiedCases   int         `json:"verifiedCases"`
	NewCases        MetricTrend `json:"newCases"`
	Alerts          int         `json:"alerts"`
}

type TodoItem struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	Title      string `json:"title,omitempty"`
	Subject    string `json:"subject,omitempty"`
	Status     string `json:"status,omitempty"`
	OccurredAt string `json:"occurredAt,omitempty"`
}

type DashboardOverview struct {
	Metrics       DashboardMetrics `json:"metrics"`
	VerifiedCases []TodoItem       `json:"verifiedCases"`
	PendingTests  []TodoItem       `json:"pendingTests"`
	PendingAlerts []TodoItem       `json:"pendingAlerts"`
	GeneratedAt   time.Time        `json:"generatedAt"`
}

// Alert screens
type AlertItem struct {
	ID      string `json:"id"`
	Title   string `json:"title,omitempty"`
	Type    string `json:"type,omitempty"`
	Content string `json:"content,omitempty"`
	Source  string `json:"source,omitempty"`
	Time    string `json:"time,omitempty"`
	Status  string `json:"status,omitempty"`
	OrgUnit string `json:"orgUnit,omitempty"`
}

type AlertResponseForm struct {
	Action  string `json:"action"`
	Comment string `json:"comment,omitempty"`
}

// Vocabulary change event published to the event bus after a successful
// mutation against the platform.
type VocabularyEvent struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Entity    string                 `json:"entity"`
	EntityID  string                 `json:"entity_id"`
	Actor     string                 `json:"actor,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// AuditLog records every admin mutation locally, independent of the platform.
type AuditLog struct {
	ID        int64                  `json:"id"`
	Actor     string                 `json:"actor"`
	Action    string                 `json:"action"`
	Entity    string                 `json:"entity,omitempty"`
	EntityID  string                 `json:"entity_id,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}
