package cloud

import (
	"context"
	"fmt"
	nethttp "net/http"

	"github.com/google/uuid"
)

// CreateBlockDocument stores a block document (typically credentials a
// deployment references at runtime).
func (c *Client) CreateBlockDocument(ctx context.Context, create BlockDocumentCreate) (*BlockDocument, error) {
	if err := c.validator.Validate(create); err != nil {
		return nil, err
	}

	resp, err := c.request(ctx, nethttp.MethodPost, "/block_documents/", create)
	if err != nil {
		return nil, translateConflict(err)
	}

	var doc BlockDocument
	if err := decode(resp, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// UpdateBlockDocument replaces a block document's data.
func (c *Client) UpdateBlockDocument(ctx context.Context, blockDocumentID uuid.UUID, update BlockDocumentUpdate) error {
	if err := c.validator.Validate(update); err != nil {
		return err
	}

	_, err := c.request(ctx, nethttp.MethodPut,
		fmt.Sprintf("/block_documents/%s", blockDocumentID), update)
	return translateNotFound(err)
}

// DeleteBlockDocument deletes a block document by id.
func (c *Client) DeleteBlockDocument(ctx context.Context, blockDocumentID uuid.UUID) error {
	_, err := c.request(ctx, nethttp.MethodDelete,
		fmt.Sprintf("/block_documents/%s", blockDocumentID), nil)
	return translateNotFound(err)
}

// ReadBlockDocumentByName fetches a block document by block type slug and
// document name, with secret fields included.
func (c *Client) ReadBlockDocumentByName(ctx context.Context, blockTypeSlug, name string) (*BlockDocument, error) {
	resp, err := c.request(ctx, nethttp.MethodGet,
		fmt.Sprintf("/block_types/slug/%s/block_documents/name/%s?include_secrets=true", blockTypeSlug, name), nil)
	if err != nil {
		return nil, translateNotFound(err)
	}

	var doc BlockDocument
	if err := decode(resp, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ReadBlockTypeBySlug fetches a block type by slug.
func (c *Client) ReadBlockTypeBySlug(ctx context.Context, slug string) (*BlockType, error) {
	resp, err := c.request(ctx, nethttp.MethodGet, fmt.Sprintf("/block_types/slug/%s", slug), nil)
	if err != nil {
		return nil, translateNotFound(err)
	}

	var blockType BlockType
	if err := decode(resp, &blockType); err != nil {
		return nil, err
	}
	return &blockType, nil
}

// MostRecentBlockSchemaForBlockType returns the newest schema registered for
// a block type, or ObjectNotFound when none exists.
func (c *Client) MostRecentBlockSchemaForBlockType(ctx context.Context, blockTypeID uuid.UUID) (*BlockSchema, error) {
	body := map[string]any{
		"block_schemas": map[string]any{
			"block_type_id": map[string]any{"any_": []uuid.UUID{blockTypeID}},
		},
		"limit": 1,
	}

	resp, err := c.request(ctx, nethttp.MethodPost, "/block_schemas/filter", body)
	if err != nil {
		return nil, err
	}

	var schemas []BlockSchema
	if err := decode(resp, &schemas); err != nil {
		return nil, err
	}
	if len(schemas) == 0 {
		return nil, &ObjectNotFound{wrapped: fmt.Errorf("no block schema for block type %s", blockTypeID)}
	}
	return &schemas[0], nil
}
