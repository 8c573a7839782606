package generator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/adwaidhmp/backend/app"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(baseURL string) *Client {
	return NewClient(&app.GeneratorConfig{
		BaseURL:        baseURL,
		DietTimeout:    time.Second,
		WorkoutTimeout: time.Second,
	})
}

func TestGenerateDietOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/diet/generate/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"daily_calories":1800,"macros":{"protein_g":120,"carbs_g":180,"fat_g":60},"meals":[{"type":"breakfast","name":"Oatmeal","calories":400}],"version":"v1"}`))
	}))
	defer srv.Close()

	resp, err := testClient(srv.URL).GenerateDiet(context.Background(), DietRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1800, resp.DailyCalories)
	assert.Equal(t, "v1", resp.Version)
	assert.Len(t, resp.Meals, 1)
}

func TestGenerateWorkoutOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/workout/generate/", r.URL.Path)
		w.Write([]byte(`{"sessions":[{"name":"Full body","exercises":[{"name":"Squats","duration_sec":300,"intensity":"high"}]}],"version":"v2"}`))
	}))
	defer srv.Close()

	resp, err := testClient(srv.URL).GenerateWorkout(context.Background(), WorkoutRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Sessions, 1)
	assert.Equal(t, "Squats", resp.Sessions[0].Exercises[0].Name)
}

func TestGenerateDietServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).GenerateDiet(context.Background(), DietRequest{})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestGenerateDietMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"daily_calories":`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).GenerateDiet(context.Background(), DietRequest{})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestGenerateDietTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(&app.GeneratorConfig{
		BaseURL:     srv.URL,
		DietTimeout: 50 * time.Millisecond,
	})
	_, err := c.GenerateDiet(context.Background(), DietRequest{})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestGenerateDietConnectionRefused(t *testing.T) {
	_, err := testClient("http://127.0.0.1:1").GenerateDiet(context.Background(), DietRequest{})
	assert.ErrorIs(t, err, ErrUnavailable)
}
