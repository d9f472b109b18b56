package testutils

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"imagerecog/models"

	"github.com/stretchr/testify/require"
)

type TestServer struct {
	*httptest.Server
	t *testing.T
}

func NewTestServer(t *testing.T, handler http.Handler) *TestServer {
	server := httptest.NewServer(handler)
	return &TestServer{
		Server: server,
		t:      t,
	}
}

func (ts *TestServer) POST(path string, body interface{}) *http.Response {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(ts.t, err)
		bodyReader = bytes.NewReader(jsonBody)
	}

	resp, err := http.Post(ts.URL+path, "application/json", bodyReader)
	require.NoError(ts.t, err)
	return resp
}

func AssertJSONResponse(t *testing.T, resp *http.Response, expectedStatus int, target interface{}) {
	require.Equal(t, expectedStatus, resp.StatusCode)

	if target != nil {
		defer resp.Body.Close()
		err := json.NewDecoder(resp.Body).Decode(target)
		require.NoError(t, err)
	}
}

// AssertStatusResponse checks the HTTP 200 body envelope carrying the
// API-level status code.
func AssertStatusResponse(t *testing.T, resp *http.Response, expectedAPIStatus int, expectedMessage string) {
	require.Equal(t, http.StatusOK, resp.StatusCode)

	defer resp.Body.Close()
	var status models.StatusResponse
	err := json.NewDecoder(resp.Body).Decode(&status)
	require.NoError(t, err)

	require.Equal(t, expectedAPIStatus, status.Status)
	if expectedMessage != "" {
		require.Equal(t, expectedMessage, status.Message)
	}
}

func AssertErrorResponse(t *testing.T, resp *http.Response, expectedStatus int, expectedMessage string) {
	require.Equal(t, expectedStatus, resp.StatusCode)

	defer resp.Body.Close()
	var errorResp map[string]interface{}
	err := json.NewDecoder(resp.Body).Decode(&errorResp)
	require.NoError(t, err)

	if expectedMessage != "" {
		require.Contains(t, errorResp["error"], expectedMessage)
	}
}
