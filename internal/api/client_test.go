package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uiseon98/ticketmongo-client/internal/model"
)

type mapKeys map[int64]string

func (m mapKeys) AccessKey(concertID int64) (string, bool) {
	key, ok := m[concertID]
	return key, ok
}

func TestProtectedCallAttachesHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		json.NewEncoder(w).Encode([]model.Seat{})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "bearer-token", mapKeys{5: "secret-key"})
	_, err := client.ListSeats(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, "secret-key", got.Get(AccessKeyHeader))
	assert.Equal(t, "Bearer bearer-token", got.Get("Authorization"))
	assert.NotEmpty(t, got.Get("X-Request-ID"))
}

func TestMissingKeyStillCallsServer(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		json.NewEncoder(w).Encode([]model.Seat{})
	}))
	defer srv.Close()

	// no key stored: the call proceeds and the server decides
	client := NewClient(srv.URL, "bearer-token", mapKeys{})
	_, err := client.ListSeats(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, got.Get(AccessKeyHeader))
}

func TestForbiddenMapsToAccessDenied(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"access key required"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", mapKeys{})
	_, err := client.HoldSeat(context.Background(), 5, 1)
	require.Error(t, err)
	assert.True(t, IsAccessDenied(err))
}

func TestServerErrorCarriesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"message": "seat is not available"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", mapKeys{})
	_, err := client.HoldSeat(context.Background(), 5, 1)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "seat is not available", apiErr.Message)
	assert.False(t, IsAccessDenied(err))
}

func TestCreateBookingSendsSeatIDs(t *testing.T) {
	var gotPath string
	var gotBody createBookingRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(model.PaymentInfo{BookingNumber: "BK-000001", Amount: 100000})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", mapKeys{3: "k"})
	info, err := client.CreateBooking(context.Background(), 3, []int64{11, 12})
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/concerts/3/bookings", gotPath)
	assert.Equal(t, []int64{11, 12}, gotBody.SeatIDs)
	assert.Equal(t, "BK-000001", info.BookingNumber)
}

func TestEnterQueueIsNotProtected(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		json.NewEncoder(w).Encode(model.QueueEntry{Status: model.QueueWaiting, Rank: 3})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", mapKeys{5: "already-have-one"})
	entry, err := client.EnterQueue(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, model.QueueWaiting, entry.Status)
	assert.Empty(t, got.Get(AccessKeyHeader), "queue entry precedes the credential")
}
