package cloud

import (
	"context"
	"fmt"
	nethttp "net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBlockDocument(t *testing.T) {
	docID := uuid.New()

	client := newMockClient(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, nethttp.MethodPost, r.Method)
		assert.Equal(t, "/block_documents/", r.URL.Path)
		w.WriteHeader(nethttp.StatusCreated)
		fmt.Fprintf(w, `{"id":%q,"name":"aws-creds","data":{}}`, docID)
	})

	doc, err := client.CreateBlockDocument(context.Background(), BlockDocumentCreate{
		Name:          "aws-creds",
		Data:          map[string]any{"key": "value"},
		BlockSchemaID: uuid.New(),
		BlockTypeID:   uuid.New(),
	})
	require.NoError(t, err)
	assert.Equal(t, docID, doc.ID)
}

func TestCreateBlockDocumentValidation(t *testing.T) {
	client := newMockClient(t, func(nethttp.ResponseWriter, *nethttp.Request) {
		t.Fatal("invalid payload must not reach the API")
	})

	_, err := client.CreateBlockDocument(context.Background(), BlockDocumentCreate{Name: "aws-creds"})
	require.Error(t, err)

	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestReadBlockDocumentByNameIncludesSecrets(t *testing.T) {
	client := newMockClient(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, "/block_types/slug/aws-credentials/block_documents/name/prod", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("include_secrets"))
		fmt.Fprintf(w, `{"id":%q,"name":"prod","data":{"secret":"s3cr3t"}}`, uuid.New())
	})

	doc, err := client.ReadBlockDocumentByName(context.Background(), "aws-credentials", "prod")
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", doc.Data["secret"])
}

func TestReadBlockTypeBySlug(t *testing.T) {
	client := newMockClient(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, "/block_types/slug/secret", r.URL.Path)
		fmt.Fprintf(w, `{"id":%q,"name":"Secret","slug":"secret"}`, uuid.New())
	})

	blockType, err := client.ReadBlockTypeBySlug(context.Background(), "secret")
	require.NoError(t, err)
	assert.Equal(t, "secret", blockType.Slug)
}

func TestMostRecentBlockSchemaForBlockType(t *testing.T) {
	blockTypeID := uuid.New()
	schemaID := uuid.New()

	t.Run("returns the newest schema", func(t *testing.T) {
		client := newMockClient(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
			assert.Equal(t, "/block_schemas/filter", r.URL.Path)
			fmt.Fprintf(w, `[{"id":%q,"checksum":"sha256:abc","block_type_id":%q}]`, schemaID, blockTypeID)
		})

		schema, err := client.MostRecentBlockSchemaForBlockType(context.Background(), blockTypeID)
		require.NoError(t, err)
		assert.Equal(t, schemaID, schema.ID)
	})

	t.Run("no schema registered", func(t *testing.T) {
		client := newMockClient(t, func(w nethttp.ResponseWriter, _ *nethttp.Request) {
			_, _ = w.Write([]byte(`[]`))
		})

		_, err := client.MostRecentBlockSchemaForBlockType(context.Background(), blockTypeID)
		require.Error(t, err)
		assert.True(t, IsObjectNotFound(err))
	})
}

func TestUpdateBlockDocument(t *testing.T) {
	docID := uuid.New()

	client := newMockClient(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, nethttp.MethodPut, r.Method)
		assert.Equal(t, fmt.Sprintf("/block_documents/%s", docID), r.URL.Path)
		w.WriteHeader(nethttp.StatusNoContent)
	})

	err := client.UpdateBlockDocument(context.Background(), docID, BlockDocumentUpdate{
		Data: map[string]any{"key": "rotated"},
	})
	require.NoError(t, err)
}
