package classifier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackDeterministic(t *testing.T) {
	cases := []struct {
		name      string
		req       Request
		category  string
		emergency bool
	}{
		{
			name:      "gas leak is an emergency",
			req:       Request{Title: "Gas leak on 5th ave", Description: "strong smell"},
			category:  "Infrastructure",
			emergency: true,
		},
		{
			name:     "pothole goes to public works",
			req:      Request{Title: "Huge pothole", Description: "front of my house"},
			category: "Infrastructure",
		},
		{
			name:     "illegal dumping is environment",
			req:      Request{Title: "Dumping", Description: "someone keeps dumping trash in the creek"},
			category: "Environment",
		},
		{
			name:     "unmatched text gets the generic bucket",
			req:      Request{Title: "Hello", Description: "just saying hi"},
			category: "Social",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Fallback(tc.req)
			assert.Equal(t, tc.category, got.Category)
			assert.Equal(t, tc.emergency, got.IsEmergency)
			assert.Equal(t, "fallback", got.Source)
			// same input, same output
			assert.Equal(t, got, Fallback(tc.req))
		})
	}
}

func TestClassifyParsesModelResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NotEmpty(t, r.Header.Get("x-api-key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"{\"category\":\"Environment\",\"priority\":9,\"confidence\":88,\"department\":\"Sanitation\",\"isEmergency\":false}"}]}`))
	}))
	defer srv.Close()

	c := New("test-key", srv.URL)
	got, err := c.Classify(context.Background(), Request{Title: "Trash", Description: "overflowing bins"})
	require.NoError(t, err)
	assert.Equal(t, "Environment", got.Category)
	assert.Equal(t, 5, got.Priority, "out-of-range priority is clamped")
	assert.Equal(t, 88, got.Confidence)
	assert.Equal(t, "model", got.Source)
}

func TestClassifyErrors(t *testing.T) {
	t.Run("no api key", func(t *testing.T) {
		c := New("", "http://unused")
		_, err := c.Classify(context.Background(), Request{Title: "x", Description: "y"})
		assert.Error(t, err)
	})

	t.Run("garbage response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"sorry, no"}]}`))
		}))
		defer srv.Close()
		c := New("test-key", srv.URL)
		_, err := c.Classify(context.Background(), Request{Title: "x", Description: "y"})
		assert.Error(t, err)
	})
}
