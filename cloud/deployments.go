package cloud

import (
	"context"
	"fmt"
	nethttp "net/http"
	"strings"

	"github.com/google/uuid"
)

// CreateDeployment creates a deployment and returns its id.
func (c *Client) CreateDeployment(ctx context.Context, create DeploymentCreate) (uuid.UUID, error) {
	if err := c.validator.Validate(create); err != nil {
		return uuid.Nil, err
	}

	if create.ParameterOpenAPISchema == nil {
		create.ParameterOpenAPISchema = map[string]any{}
	}
	if create.JobVariables == nil {
		create.JobVariables = map[string]any{}
	}

	resp, err := c.request(ctx, nethttp.MethodPost, "/deployments/", create)
	if err != nil {
		return uuid.Nil, err
	}

	return decodeCreatedID(resp)
}

// ReadDeployment fetches a deployment by id.
func (c *Client) ReadDeployment(ctx context.Context, deploymentID uuid.UUID) (*Deployment, error) {
	resp, err := c.request(ctx, nethttp.MethodGet, fmt.Sprintf("/deployments/%s", deploymentID), nil)
	if err != nil {
		return nil, translateNotFound(err)
	}

	var deployment Deployment
	if err := decode(resp, &deployment); err != nil {
		return nil, err
	}
	return &deployment, nil
}

// ReadDeploymentByName fetches a deployment by its qualified name, formatted
// as <FLOW_NAME>/<DEPLOYMENT_NAME>.
func (c *Client) ReadDeploymentByName(ctx context.Context, name string) (*Deployment, error) {
	flowName, deploymentName, ok := strings.Cut(name, "/")
	if !ok || flowName == "" || deploymentName == "" {
		return nil, fmt.Errorf("invalid deployment name format: %s (expected <FLOW_NAME>/<DEPLOYMENT_NAME>)", name)
	}

	resp, err := c.request(ctx, nethttp.MethodGet,
		fmt.Sprintf("/deployments/name/%s/%s", flowName, deploymentName), nil)
	if err != nil {
		return nil, translateNotFound(err)
	}

	var deployment Deployment
	if err := decode(resp, &deployment); err != nil {
		return nil, err
	}
	return &deployment, nil
}

// ReadAllDeployments lists deployments with offset pagination.
func (c *Client) ReadAllDeployments(ctx context.Context, limit, offset int) ([]Deployment, error) {
	body := map[string]any{
		"offset": offset,
		"sort":   nil,
	}
	if limit > 0 {
		body["limit"] = limit
	}

	resp, err := c.request(ctx, nethttp.MethodPost, "/deployments/filter", body)
	if err != nil {
		return nil, err
	}

	var deployments []Deployment
	if err := decode(resp, &deployments); err != nil {
		return nil, err
	}
	return deployments, nil
}

// UpdateDeployment patches a deployment.
func (c *Client) UpdateDeployment(ctx context.Context, deploymentID uuid.UUID, update DeploymentUpdate) error {
	_, err := c.request(ctx, nethttp.MethodPatch, fmt.Sprintf("/deployments/%s", deploymentID), update)
	return translateNotFound(err)
}

// SetDeploymentPaused pauses or resumes a deployment's schedules.
func (c *Client) SetDeploymentPaused(ctx context.Context, deploymentID uuid.UUID, paused bool) error {
	_, err := c.request(ctx, nethttp.MethodPatch,
		fmt.Sprintf("/deployments/%s", deploymentID), map[string]any{"paused": paused})
	return translateNotFound(err)
}

// DeleteDeployment deletes a deployment by id.
func (c *Client) DeleteDeployment(ctx context.Context, deploymentID uuid.UUID) error {
	_, err := c.request(ctx, nethttp.MethodDelete, fmt.Sprintf("/deployments/%s", deploymentID), nil)
	return translateNotFound(err)
}

// CreateDeploymentSchedules attaches schedules to a deployment and returns
// the created records.
func (c *Client) CreateDeploymentSchedules(ctx context.Context, deploymentID uuid.UUID, schedules []DeploymentScheduleCreate) ([]DeploymentSchedule, error) {
	for _, schedule := range schedules {
		if err := c.validator.Validate(schedule); err != nil {
			return nil, err
		}
	}

	resp, err := c.request(ctx, nethttp.MethodPost,
		fmt.Sprintf("/deployments/%s/schedules", deploymentID), schedules)
	if err != nil {
		return nil, translateNotFound(err)
	}

	var created []DeploymentSchedule
	if err := decode(resp, &created); err != nil {
		return nil, err
	}
	return created, nil
}

// ReadDeploymentSchedules lists a deployment's schedules.
func (c *Client) ReadDeploymentSchedules(ctx context.Context, deploymentID uuid.UUID) ([]DeploymentSchedule, error) {
	resp, err := c.request(ctx, nethttp.MethodGet,
		fmt.Sprintf("/deployments/%s/schedules", deploymentID), nil)
	if err != nil {
		return nil, translateNotFound(err)
	}

	var schedules []DeploymentSchedule
	if err := decode(resp, &schedules); err != nil {
		return nil, err
	}
	return schedules, nil
}

// SetDeploymentScheduleActive toggles one schedule on a deployment.
func (c *Client) SetDeploymentScheduleActive(ctx context.Context, deploymentID, scheduleID uuid.UUID, active bool) error {
	_, err := c.request(ctx, nethttp.MethodPatch,
		fmt.Sprintf("/deployments/%s/schedules/%s", deploymentID, scheduleID),
		map[string]any{"active": active})
	return translateNotFound(err)
}

// DeleteDeploymentSchedule removes one schedule from a deployment.
func (c *Client) DeleteDeploymentSchedule(ctx context.Context, deploymentID, scheduleID uuid.UUID) error {
	_, err := c.request(ctx, nethttp.MethodDelete,
		fmt.Sprintf("/deployments/%s/schedules/%s", deploymentID, scheduleID), nil)
	return translateNotFound(err)
}

// CreateFlowRun schedules one run of a deployment and returns the run.
func (c *Client) CreateFlowRun(ctx context.Context, deploymentID uuid.UUID) (*FlowRun, error) {
	body := map[string]any{
		"state": map[string]any{"type": StateScheduled},
	}

	resp, err := c.request(ctx, nethttp.MethodPost,
		fmt.Sprintf("/deployments/%s/create_flow_run", deploymentID), body)
	if err != nil {
		return nil, translateNotFound(err)
	}

	var run FlowRun
	if err := decode(resp, &run); err != nil {
		return nil, err
	}
	return &run, nil
}
