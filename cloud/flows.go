package cloud

import (
	"context"
	"fmt"
	nethttp "net/http"

	"github.com/google/uuid"
)

// CreateFlowFromName registers a flow by name and returns its id. The API
// treats flow creation as idempotent: an existing name returns the existing
// flow's id.
func (c *Client) CreateFlowFromName(ctx context.Context, flowName string) (uuid.UUID, error) {
	create := FlowCreate{Name: flowName}
	if err := c.validator.Validate(create); err != nil {
		return uuid.Nil, err
	}

	resp, err := c.request(ctx, nethttp.MethodPost, "/flows/", create)
	if err != nil {
		return uuid.Nil, err
	}

	return decodeCreatedID(resp)
}

// ReadFlow fetches a flow by id.
func (c *Client) ReadFlow(ctx context.Context, flowID uuid.UUID) (*Flow, error) {
	resp, err := c.request(ctx, nethttp.MethodGet, fmt.Sprintf("/flows/%s", flowID), nil)
	if err != nil {
		return nil, translateNotFound(err)
	}

	var flow Flow
	if err := decode(resp, &flow); err != nil {
		return nil, err
	}
	return &flow, nil
}

// ReadFlowByName fetches a flow by name.
func (c *Client) ReadFlowByName(ctx context.Context, flowName string) (*Flow, error) {
	resp, err := c.request(ctx, nethttp.MethodGet, fmt.Sprintf("/flows/name/%s", flowName), nil)
	if err != nil {
		return nil, translateNotFound(err)
	}

	var flow Flow
	if err := decode(resp, &flow); err != nil {
		return nil, err
	}
	return &flow, nil
}

// DeleteFlow deletes a flow by id.
func (c *Client) DeleteFlow(ctx context.Context, flowID uuid.UUID) error {
	_, err := c.request(ctx, nethttp.MethodDelete, fmt.Sprintf("/flows/%s", flowID), nil)
	return translateNotFound(err)
}
