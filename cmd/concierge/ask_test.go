package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"concierge-backend/internal/models"
)

func TestAskCommand(t *testing.T) {
	var got models.ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":"Courses run 9am to 5pm."}`))
	}))
	defer srv.Close()

	cmd := AskCommand{ServerURL: srv.URL, ReplyField: "response", Message: " Course hours? "}
	require.NoError(t, cmd.Run(context.Background()))
	assert.Equal(t, "Course hours?", got.Message)
}

func TestAskCommand_FailureIsReported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"reply":"Sorry, something went wrong. Please try again.","error":{"code":"UPSTREAM_ERROR"}}`))
	}))
	defer srv.Close()

	err := AskCommand{ServerURL: srv.URL, ReplyField: "reply", Message: "hi"}.Run(context.Background())
	assert.ErrorIs(t, err, errNoReply)
}

func TestAskCommand_BlankMessage(t *testing.T) {
	err := AskCommand{ServerURL: "http://127.0.0.1:1", Message: "   "}.Run(context.Background())
	assert.Error(t, err)
}
