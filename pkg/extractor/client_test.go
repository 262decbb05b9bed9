package extractor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/jobs", r.URL.Path)
		assert.Equal(t, "k-123", r.Header.Get("X-Api-Key"))

		var req SubmitRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "uploads/iat/mock-1.pdf", req.ObjectKey)

		json.NewEncoder(w).Encode(SubmitResponse{JobID: "job-42", Status: "queued"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k-123")
	resp, err := c.Submit(context.Background(), &SubmitRequest{
		ObjectKey: "uploads/iat/mock-1.pdf",
		Bucket:    "prepstack-uploads",
	})
	require.NoError(t, err)
	assert.Equal(t, "job-42", resp.JobID)
}

func TestGetJob_Completed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/jobs/job-42", r.URL.Path)
		json.NewEncoder(w).Encode(JobResult{
			JobID:  "job-42",
			Status: "completed",
			Questions: []ExtractedQuestion{
				{Text: "2 + 2 = ?", Options: json.RawMessage(`["3","4","5","6"]`), Answer: "4"},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	res, err := c.GetJob(context.Background(), "job-42")
	require.NoError(t, err)
	assert.Equal(t, "completed", res.Status)
	require.Len(t, res.Questions, 1)
	assert.Equal(t, "4", res.Questions[0].Answer)
}

func TestGetJob_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.GetJob(context.Background(), "job-42")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
