package actions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alantheprice/pagewright/pkg/parser"
)

func TestExecuteSendsBatch(t *testing.T) {
	var got Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(Response{Applied: []string{"install_pack", "wire_button"}})
	}))
	defer server.Close()

	client := NewClient(server.URL, "key", "proj-1", "biz-1")
	applied, err := client.Execute(context.Background(), []parser.BuilderAction{
		{Type: parser.ActionInstallPack, Params: map[string]string{"pack": "booking"}},
		{Type: parser.ActionWireButton, Params: map[string]string{"on": "#cta", "intent": "open-form", "variant": "primary"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"install_pack", "wire_button"}, applied)

	assert.Equal(t, "proj-1", got.ProjectID)
	assert.Equal(t, "biz-1", got.BusinessID)
	require.Len(t, got.Actions, 2)

	assert.Equal(t, "booking", got.Actions[0].Pack)
	assert.Equal(t, "#cta", got.Actions[1].Selector)
	assert.Equal(t, "open-form", got.Actions[1].Intent)
	assert.Contains(t, got.Actions[1].Payload, "variant")
}

func TestExecuteEmptyBatchIsNoOp(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "", "p", "b")
	applied, err := client.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestExecuteSurfacesBackendFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unknown pack", http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "p", "b")
	_, err := client.Execute(context.Background(), []parser.BuilderAction{
		{Type: parser.ActionInstallPack, Params: map[string]string{"pack": "nope"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "Add Section",
		Describe(parser.BuilderAction{Type: parser.ActionAddSection}))
	installed := Describe(parser.BuilderAction{Type: parser.ActionInstallPack, Params: map[string]string{"pack": "booking"}})
	assert.Contains(t, installed, "Install Pack")
	assert.Contains(t, installed, "pack=booking")
}
