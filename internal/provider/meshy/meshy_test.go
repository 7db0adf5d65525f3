package meshy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/UnendingLoop/ImageLab/internal/model"
	"github.com/stretchr/testify/require"
)

func TestCreateTask(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, imageTo3DPath, r.URL.Path)
		require.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		var body createRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "data:image/png;base64,AAAA", body.ImageURL)
		require.True(t, body.EnablePBR)
		require.True(t, body.ShouldRemesh)
		require.True(t, body.ShouldTexture)

		_, _ = w.Write([]byte(`{"result":"task-42"}`))
	}))
	defer srv.Close()

	c := New("key", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	id, err := c.CreateTask(context.Background(), "data:image/png;base64,AAAA")
	require.NoError(t, err)
	require.Equal(t, "task-42", id)
}

func TestCreateTask_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
	}{
		{name: "no task id", status: 200, body: `{}`, wantStatus: 200},
		{name: "unauthorized", status: 401, body: `{"message":"Invalid API key"}`, wantStatus: 401},
		{name: "rate limited", status: 429, body: `{"message":"Too many requests"}`, wantStatus: 429},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := New("key", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
			_, err := c.CreateTask(context.Background(), "https://x/img.jpg")

			var ue *model.UpstreamError
			require.ErrorAs(t, err, &ue)
			require.Equal(t, tt.wantStatus, ue.Status)
		})
	}
}

func TestJobStatus(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		want      model.JobStatus
		wantAsset string
	}{
		{
			name:      "succeeded",
			body:      `{"id":"t1","status":"SUCCEEDED","model_urls":{"glb":"https://assets/m.glb"},"thumbnail_url":"https://assets/t.png"}`,
			want:      model.JobSucceeded,
			wantAsset: "https://assets/m.glb",
		},
		{name: "failed", body: `{"id":"t1","status":"FAILED"}`, want: model.JobFailed},
		{name: "in progress", body: `{"id":"t1","status":"IN_PROGRESS","progress":40}`, want: model.JobPending},
		{name: "unknown status stays pending", body: `{"id":"t1","status":"EXPIRED"}`, want: model.JobPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, http.MethodGet, r.Method)
				require.Equal(t, imageTo3DPath+"/t1", r.URL.Path)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := New("key", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
			st, err := c.JobStatus(context.Background(), "t1")
			require.NoError(t, err)
			require.Equal(t, tt.want, st.Status)
			require.Equal(t, tt.wantAsset, st.AssetURL)
		})
	}
}
