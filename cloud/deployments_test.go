package cloud

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDeployment(t *testing.T) {
	deploymentID := uuid.New()
	flowID := uuid.New()

	var captured map[string]any
	client := newMockClient(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, nethttp.MethodPost, r.Method)
		assert.Equal(t, "/deployments/", r.URL.Path)

		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))

		w.WriteHeader(nethttp.StatusCreated)
		fmt.Fprintf(w, `{"id":%q}`, deploymentID)
	})

	id, err := client.CreateDeployment(context.Background(), DeploymentCreate{
		FlowID:       flowID,
		Name:         "prod",
		Entrypoint:   "flows/etl.py:main",
		WorkPoolName: "default-pool",
	})
	require.NoError(t, err)
	assert.Equal(t, deploymentID, id)

	// Optional schema/variables default to empty objects rather than null
	assert.Equal(t, map[string]any{}, captured["parameter_openapi_schema"])
	assert.Equal(t, map[string]any{}, captured["job_variables"])
	assert.Equal(t, "prod", captured["name"])
}

func TestCreateDeploymentValidation(t *testing.T) {
	client := newMockClient(t, func(nethttp.ResponseWriter, *nethttp.Request) {
		t.Fatal("invalid payload must not reach the API")
	})

	_, err := client.CreateDeployment(context.Background(), DeploymentCreate{Name: "prod"})
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	fields := make([]string, 0, len(validationErr.Errors))
	for _, fe := range validationErr.Errors {
		fields = append(fields, fe.Field)
	}
	assert.Contains(t, fields, "FlowID")
	assert.Contains(t, fields, "Entrypoint")
}

func TestReadDeployment(t *testing.T) {
	deploymentID := uuid.New()

	client := newMockClient(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, fmt.Sprintf("/deployments/%s", deploymentID), r.URL.Path)
		fmt.Fprintf(w, `{"id":%q,"name":"prod","paused":true}`, deploymentID)
	})

	deployment, err := client.ReadDeployment(context.Background(), deploymentID)
	require.NoError(t, err)
	assert.Equal(t, deploymentID, deployment.ID)
	assert.Equal(t, "prod", deployment.Name)
	assert.True(t, deployment.Paused)
}

func TestReadDeploymentNotFound(t *testing.T) {
	client := newMockClient(t, func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		w.WriteHeader(nethttp.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Deployment not found"}`))
	})

	_, err := client.ReadDeployment(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, IsObjectNotFound(err))
}

func TestReadDeploymentByName(t *testing.T) {
	t.Run("qualified name resolves", func(t *testing.T) {
		client := newMockClient(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
			assert.Equal(t, "/deployments/name/etl/prod", r.URL.Path)
			fmt.Fprintf(w, `{"id":%q,"name":"prod"}`, uuid.New())
		})

		deployment, err := client.ReadDeploymentByName(context.Background(), "etl/prod")
		require.NoError(t, err)
		assert.Equal(t, "prod", deployment.Name)
	})

	t.Run("unqualified name is rejected locally", func(t *testing.T) {
		client := newMockClient(t, func(nethttp.ResponseWriter, *nethttp.Request) {
			t.Fatal("malformed name must not reach the API")
		})

		_, err := client.ReadDeploymentByName(context.Background(), "prod")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid deployment name format")
	})
}

func TestReadAllDeployments(t *testing.T) {
	var captured map[string]any
	client := newMockClient(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, nethttp.MethodPost, r.Method)
		assert.Equal(t, "/deployments/filter", r.URL.Path)

		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))

		fmt.Fprintf(w, `[{"id":%q,"name":"a"},{"id":%q,"name":"b"}]`, uuid.New(), uuid.New())
	})

	deployments, err := client.ReadAllDeployments(context.Background(), 50, 100)
	require.NoError(t, err)
	assert.Len(t, deployments, 2)
	assert.Equal(t, float64(50), captured["limit"])
	assert.Equal(t, float64(100), captured["offset"])
}

func TestSetDeploymentPaused(t *testing.T) {
	var captured map[string]any
	client := newMockClient(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, nethttp.MethodPatch, r.Method)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))
		w.WriteHeader(nethttp.StatusNoContent)
	})

	require.NoError(t, client.SetDeploymentPaused(context.Background(), uuid.New(), true))
	assert.Equal(t, true, captured["paused"])
}

func TestDeleteDeployment(t *testing.T) {
	deploymentID := uuid.New()

	client := newMockClient(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, nethttp.MethodDelete, r.Method)
		assert.Equal(t, fmt.Sprintf("/deployments/%s", deploymentID), r.URL.Path)
		w.WriteHeader(nethttp.StatusNoContent)
	})

	require.NoError(t, client.DeleteDeployment(context.Background(), deploymentID))
}

func TestCreateDeploymentSchedules(t *testing.T) {
	deploymentID := uuid.New()

	client := newMockClient(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, fmt.Sprintf("/deployments/%s/schedules", deploymentID), r.URL.Path)
		fmt.Fprintf(w, `[{"id":%q,"schedule":{"cron":"0 * * * *"},"active":true}]`, uuid.New())
	})

	created, err := client.CreateDeploymentSchedules(context.Background(), deploymentID,
		[]DeploymentScheduleCreate{{Schedule: Schedule{Cron: "0 * * * *"}, Active: true}})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "0 * * * *", created[0].Schedule.Cron)
	assert.True(t, created[0].Active)
}

func TestSetDeploymentScheduleActive(t *testing.T) {
	deploymentID := uuid.New()
	scheduleID := uuid.New()

	var captured map[string]any
	client := newMockClient(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, nethttp.MethodPatch, r.Method)
		assert.Equal(t, fmt.Sprintf("/deployments/%s/schedules/%s", deploymentID, scheduleID), r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))
		w.WriteHeader(nethttp.StatusNoContent)
	})

	require.NoError(t, client.SetDeploymentScheduleActive(context.Background(), deploymentID, scheduleID, false))
	assert.Equal(t, false, captured["active"])
}

func TestCreateFlowRun(t *testing.T) {
	deploymentID := uuid.New()
	runID := uuid.New()

	var captured map[string]any
	client := newMockClient(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, fmt.Sprintf("/deployments/%s/create_flow_run", deploymentID), r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))

		fmt.Fprintf(w, `{"id":%q,"name":"amber-lynx","state":{"type":"SCHEDULED"}}`, runID)
	})

	run, err := client.CreateFlowRun(context.Background(), deploymentID)
	require.NoError(t, err)
	assert.Equal(t, runID, run.ID)
	assert.Equal(t, StateScheduled, run.State.Type)

	state := captured["state"].(map[string]any)
	assert.Equal(t, string(StateScheduled), state["type"])
}
