package apierror_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/cloudrest/core/apierror"
	"github.com/artpar/cloudrest/core/entry"
	"github.com/artpar/cloudrest/core/invoke"
	"github.com/artpar/cloudrest/core/method"
	"github.com/artpar/cloudrest/core/provider"
	"github.com/artpar/cloudrest/domain"
	"github.com/artpar/cloudrest/domain/compute"
	"github.com/artpar/cloudrest/domain/dns"
	"github.com/artpar/cloudrest/domain/storage"
)

func TestFrom(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   int
		status int
	}{
		{"unknown", errors.New("boom"), 1000, http.StatusInternalServerError},
		{"provider not supported", &provider.NotSupportedError{Provider: "NOPE"}, 1001, http.StatusBadRequest},
		{"invocation", &invoke.InvocationError{Method: "list_nodes", Err: errors.New("boom")}, 1002, http.StatusInternalServerError},
		{"build", &method.BuildError{Type: "T", Method: "m", Err: entry.ErrUnresolvedTag}, 1002, http.StatusInternalServerError},
		{"missing headers", &provider.MissingHeadersError{Alternatives: [][]string{{"x-auth-user"}}}, 1003, http.StatusBadRequest},
		{"unknown headers", &provider.UnknownHeadersError{Headers: []string{"x-provider-host"}}, 1004, http.StatusBadRequest},
		{"provider failure", &invoke.InvocationError{Method: "m", Err: &domain.ProviderError{Provider: "DUMMY", Message: "rejected"}}, 1005, http.StatusInternalServerError},
		{"validation", &entry.ValidationError{Name: "zone_id", Tag: entry.TagString, Value: int64(1)}, 1006, http.StatusBadRequest},
		{"malformed", &invoke.MalformedJSONError{Err: errors.New("eof")}, 1007, http.StatusBadRequest},
		{"node missing", &invoke.InvocationError{Method: "reboot_node", Err: &entry.ConstructError{Tag: "Node", Err: fmt.Errorf("%w: 7", compute.ErrNodeDoesNotExist)}}, 1008, http.StatusNotFound},
		{"zone missing", &invoke.InvocationError{Method: "get_zone", Err: dns.ErrZoneDoesNotExist}, 1009, http.StatusNotFound},
		{"zone exists", dns.ErrZoneAlreadyExists, 1010, http.StatusConflict},
		{"record missing", dns.ErrRecordDoesNotExist, 1011, http.StatusNotFound},
		{"record exists", dns.ErrRecordAlreadyExists, 1012, http.StatusConflict},
		{"too many", &entry.TooManyArgumentsError{Name: "auth"}, 1013, http.StatusBadRequest},
		{"container missing", storage.ErrContainerDoesNotExist, 1014, http.StatusNotFound},
		{"container exists", storage.ErrContainerAlreadyExists, 1015, http.StatusConflict},
		{"missing arguments", &entry.MissingArgumentsError{Alternatives: [][]string{{"node_id"}}}, 1016, http.StatusBadRequest},
		{"no such operation", &method.BuildError{Type: "T", Method: "m", Err: method.ErrUnknownMethod}, 1017, http.StatusNotFound},
		{"container not empty", storage.ErrContainerIsNotEmpty, 1018, http.StatusConflict},
		{"classified", apierror.NoSuchOperation.New("ex_"), 1017, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := apierror.From(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.code, got.Code)
			assert.Equal(t, tt.status, got.Status)
		})
	}
}

func TestFrom_Nil(t *testing.T) {
	assert.Nil(t, apierror.From(nil))
}

func TestFrom_Messages(t *testing.T) {
	got := apierror.From(fmt.Errorf("lookup: %w", compute.ErrNodeDoesNotExist))
	assert.Equal(t, "The specified node does not exist.", got.Message)

	got = apierror.From(&entry.MissingArgumentsError{Alternatives: [][]string{{"node_id", "size_id"}}})
	assert.Equal(t, "Your request was missing a required arguments: node_id, size_id.", got.Message)

	got = apierror.From(&provider.MissingHeadersError{Alternatives: [][]string{{"x-auth-user", "x-api-key"}, {"x-provider-host"}}})
	assert.Equal(t, "Your request was missing a required headers: x-auth-user, x-api-key or x-provider-host.", got.Message)
}

func TestError_ToJSON(t *testing.T) {
	cause := errors.New("bad body")
	e := apierror.MalformedJSON.Wrap(cause)
	assert.ErrorIs(t, e, cause)

	var doc map[string]map[string]any
	require.NoError(t, json.Unmarshal(e.ToJSON(), &doc))
	assert.Equal(t, float64(1007), doc["error"]["code"])
	assert.Equal(t, "MalformedJSON", doc["error"]["name"])
	assert.Equal(t, "The JSON you provided is not well-formed.", doc["error"]["message"])
	assert.Equal(t, "bad body", doc["error"]["detail"])
}
