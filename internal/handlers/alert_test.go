package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floodwatch/apiserver/types"
)

func forecastDate(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format("2006-01-02")
}

func postAlert(f *fixture, payload map[string]any) *httptest.ResponseRecorder {
	data, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/alerts/notify-users", strings.NewReader(string(data)))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestNotifyUsers_Broadcast(t *testing.T) {
	f := newFixture()
	f.addUser(types.User{Email: "a@example.com", Name: "A", Role: types.RoleCustomer,
		Location: "Riverside", PhoneNumber: "+15550001111"})
	f.addUser(types.User{Email: "b@example.com", Name: "B", Role: types.RoleCustomer,
		Location: "Riverbend", PhoneNumber: "+15550002222"})
	f.addUser(types.User{Email: "c@example.com", Name: "C", Role: types.RoleCustomer,
		Location: "Hilltop", PhoneNumber: "+15550003333"})

	rec := postAlert(f, map[string]any{
		"location":   "River",
		"percentage": 75,
		"date":       forecastDate(3),
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp NotifyUsersResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 2, resp.UsersNotified)
	assert.ElementsMatch(t, []string{"+15550001111", "+15550002222"}, f.messenger.sent)
}

func TestNotifyUsers_FailedSendStillSucceeds(t *testing.T) {
	f := newFixture()
	f.messenger.failFor = map[string]error{"+15550001111": errors.New("provider error")}
	f.addUser(types.User{Email: "a@example.com", Name: "A", Role: types.RoleCustomer,
		Location: "Riverside", PhoneNumber: "+15550001111"})
	f.addUser(types.User{Email: "b@example.com", Name: "B", Role: types.RoleCustomer,
		Location: "Riverbend", PhoneNumber: "+15550002222"})

	rec := postAlert(f, map[string]any{
		"location":   "River",
		"percentage": 80,
		"date":       forecastDate(2),
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp NotifyUsersResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 2, resp.UsersNotified)
	assert.Len(t, f.messenger.sent, 2)
}

func TestNotifyUsers_Validation(t *testing.T) {
	cases := []struct {
		name    string
		payload map[string]any
	}{
		{"missing percentage", map[string]any{"location": "River", "date": forecastDate(3)}},
		{"missing location", map[string]any{"percentage": 75, "date": forecastDate(3)}},
		{"missing date", map[string]any{"location": "River", "percentage": 75}},
		{"percentage below threshold", map[string]any{"location": "River", "percentage": 50, "date": forecastDate(3)}},
		{"percentage above range", map[string]any{"location": "River", "percentage": 101, "date": forecastDate(3)}},
		{"date today", map[string]any{"location": "River", "percentage": 75, "date": forecastDate(0)}},
		{"date too far out", map[string]any{"location": "River", "percentage": 75, "date": forecastDate(8)}},
		{"unparsable date", map[string]any{"location": "River", "percentage": 75, "date": "next tuesday"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			f.addUser(types.User{Email: "a@example.com", Name: "A", Role: types.RoleCustomer,
				Location: "Riverside", PhoneNumber: "+15550001111"})

			rec := postAlert(f, tc.payload)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, f.messenger.sent)
		})
	}
}

func TestNotifyUsers_NoMatches(t *testing.T) {
	f := newFixture()
	f.addUser(types.User{Email: "a@example.com", Name: "A", Role: types.RoleCustomer,
		Location: "Hilltop", PhoneNumber: "+15550001111"})

	rec := postAlert(f, map[string]any{
		"location":   "River",
		"percentage": 75,
		"date":       forecastDate(3),
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, f.messenger.sent)
}
