package cloud

import (
	"context"
	"fmt"
	nethttp "net/http"
)

// WorkPoolTypeManaged is the work pool type for Prefect-managed
// infrastructure.
const WorkPoolTypeManaged = "prefect:managed"

// ReadWorkPool fetches a work pool by name.
func (c *Client) ReadWorkPool(ctx context.Context, name string) (*WorkPool, error) {
	resp, err := c.request(ctx, nethttp.MethodGet, fmt.Sprintf("/work_pools/%s", name), nil)
	if err != nil {
		return nil, translateNotFound(err)
	}

	var pool WorkPool
	if err := decode(resp, &pool); err != nil {
		return nil, err
	}
	return &pool, nil
}

// ReadWorkPools lists work pools with offset pagination.
func (c *Client) ReadWorkPools(ctx context.Context, limit, offset int) ([]WorkPool, error) {
	body := map[string]any{
		"offset": offset,
	}
	if limit > 0 {
		body["limit"] = limit
	}

	resp, err := c.request(ctx, nethttp.MethodPost, "/work_pools/filter", body)
	if err != nil {
		return nil, err
	}

	var pools []WorkPool
	if err := decode(resp, &pools); err != nil {
		return nil, err
	}
	return pools, nil
}

// CreateWorkPool creates a work pool. A name conflict surfaces as
// ObjectAlreadyExists.
func (c *Client) CreateWorkPool(ctx context.Context, create WorkPoolCreate) (*WorkPool, error) {
	if err := c.validator.Validate(create); err != nil {
		return nil, err
	}

	resp, err := c.request(ctx, nethttp.MethodPost, "/work_pools/", create)
	if err != nil {
		return nil, translateConflict(err)
	}

	var pool WorkPool
	if err := decode(resp, &pool); err != nil {
		return nil, err
	}
	return &pool, nil
}

// DeleteWorkPool deletes a work pool by name.
func (c *Client) DeleteWorkPool(ctx context.Context, name string) error {
	_, err := c.request(ctx, nethttp.MethodDelete, fmt.Sprintf("/work_pools/%s", name), nil)
	return translateNotFound(err)
}
