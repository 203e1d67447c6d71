package cloud

import (
	"time"

	"github.com/google/uuid"
)

// StateType enumerates flow run states.
type StateType string

const (
	StateScheduled StateType = "SCHEDULED"
	StatePending   StateType = "PENDING"
	StateRunning   StateType = "RUNNING"
	StateCompleted StateType = "COMPLETED"
	StateFailed    StateType = "FAILED"
	StateCancelled StateType = "CANCELLED"
	StateCrashed   StateType = "CRASHED"
)

// State is a flow run state.
type State struct {
	Type      StateType `json:"type"`
	Name      string    `json:"name,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
	Message   string    `json:"message,omitempty"`
}

// Flow is a registered flow.
type Flow struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Tags []string  `json:"tags,omitempty"`
}

// FlowRun is one run of a deployed flow.
type FlowRun struct {
	ID           uuid.UUID      `json:"id"`
	Name         string         `json:"name"`
	FlowID       uuid.UUID      `json:"flow_id"`
	DeploymentID *uuid.UUID     `json:"deployment_id,omitempty"`
	WorkPoolName string         `json:"work_pool_name,omitempty"`
	Parameters   map[string]any `json:"parameters,omitempty"`
	State        *State         `json:"state,omitempty"`
}

// Schedule is the cron/interval schedule union: exactly one of Cron or
// IntervalSeconds is set.
type Schedule struct {
	Cron            string     `json:"cron,omitempty"`
	IntervalSeconds float64    `json:"interval,omitempty"`
	AnchorDate      *time.Time `json:"anchor_date,omitempty"`
	Timezone        string     `json:"timezone,omitempty"`
}

// DeploymentSchedule attaches a schedule to a deployment.
type DeploymentSchedule struct {
	ID           uuid.UUID  `json:"id"`
	DeploymentID *uuid.UUID `json:"deployment_id,omitempty"`
	Schedule     Schedule   `json:"schedule"`
	Active       bool       `json:"active"`
}

// Deployment is a deployed flow plus the infrastructure it runs on.
type Deployment struct {
	ID                     uuid.UUID            `json:"id"`
	Name                   string               `json:"name"`
	FlowID                 uuid.UUID            `json:"flow_id"`
	Paused                 bool                 `json:"paused"`
	Entrypoint             string               `json:"entrypoint,omitempty"`
	WorkPoolName           string               `json:"work_pool_name,omitempty"`
	Schedules              []DeploymentSchedule `json:"schedules,omitempty"`
	PullSteps              []map[string]any     `json:"pull_steps,omitempty"`
	Parameters             map[string]any       `json:"parameters,omitempty"`
	JobVariables           map[string]any       `json:"job_variables,omitempty"`
	ParameterOpenAPISchema map[string]any       `json:"parameter_openapi_schema,omitempty"`
	Tags                   []string             `json:"tags,omitempty"`
}

// WorkPool is a pool of execution infrastructure.
type WorkPool struct {
	ID              uuid.UUID      `json:"id"`
	Name            string         `json:"name"`
	Type            string         `json:"type"`
	Status          string         `json:"status,omitempty"`
	Paused          bool           `json:"paused"`
	BaseJobTemplate map[string]any `json:"base_job_template,omitempty"`
}

// BlockDocument stores configuration (typically secrets) referenced by
// deployments.
type BlockDocument struct {
	ID            uuid.UUID      `json:"id"`
	Name          string         `json:"name,omitempty"`
	Data          map[string]any `json:"data"`
	BlockSchemaID uuid.UUID      `json:"block_schema_id"`
	BlockTypeID   uuid.UUID      `json:"block_type_id"`
	BlockTypeName string         `json:"block_type_name,omitempty"`
}

// BlockType categorizes block documents, addressed by slug.
type BlockType struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// BlockSchema versions the shape of a block document's data.
type BlockSchema struct {
	ID          uuid.UUID      `json:"id"`
	Checksum    string         `json:"checksum"`
	Fields      map[string]any `json:"fields,omitempty"`
	BlockTypeID uuid.UUID      `json:"block_type_id"`
}

// Action payloads. Validation tags are enforced client-side before the
// request is sent.

// FlowCreate creates a flow, idempotently by name.
type FlowCreate struct {
	Name string `json:"name" validate:"required"`
}

// DeploymentCreate creates a deployment.
type DeploymentCreate struct {
	FlowID                 uuid.UUID        `json:"flow_id" validate:"required"`
	Name                   string           `json:"name" validate:"required"`
	Entrypoint             string           `json:"entrypoint" validate:"required"`
	WorkPoolName           string           `json:"work_pool_name,omitempty"`
	PullSteps              []map[string]any `json:"pull_steps,omitempty"`
	ParameterOpenAPISchema map[string]any   `json:"parameter_openapi_schema"`
	JobVariables           map[string]any   `json:"job_variables"`
}

// DeploymentUpdate patches a deployment; nil fields are left untouched.
type DeploymentUpdate struct {
	Paused       *bool          `json:"paused,omitempty"`
	JobVariables map[string]any `json:"job_variables,omitempty"`
}

// DeploymentScheduleCreate attaches a new schedule to a deployment.
type DeploymentScheduleCreate struct {
	Schedule Schedule `json:"schedule" validate:"required"`
	Active   bool     `json:"active"`
}

// WorkPoolCreate creates a work pool.
type WorkPoolCreate struct {
	Name            string         `json:"name" validate:"required"`
	Type            string         `json:"type" validate:"required"`
	BaseJobTemplate map[string]any `json:"base_job_template,omitempty"`
}

// BlockDocumentCreate creates a block document.
type BlockDocumentCreate struct {
	Name          string         `json:"name,omitempty"`
	Data          map[string]any `json:"data" validate:"required"`
	BlockSchemaID uuid.UUID      `json:"block_schema_id" validate:"required"`
	BlockTypeID   uuid.UUID      `json:"block_type_id" validate:"required"`
}

// BlockDocumentUpdate replaces a block document's data.
type BlockDocumentUpdate struct {
	Data map[string]any `json:"data" validate:"required"`
}
