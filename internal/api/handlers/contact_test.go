package handlers_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/dom/jbf-storefront/internal/domain"
	"github.com/dom/jbf-storefront/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type submitResponse struct {
	Success      bool                       `json:"success"`
	Message      string                     `json:"message"`
	ID           string                     `json:"id"`
	Notification domain.NotificationOutcome `json:"notification"`
}

func TestContactHandler_SubmitAndTriage(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, token := testutil.NewAdminBuilder().BuildAndAuthenticate(t, ts)

	resp := testutil.DoJSON(t, http.MethodPost, ts.APIURL("/contact"), "", map[string]any{
		"name":    "Alice",
		"email":   "alice@example.com",
		"message": "Do you stock size 5 balls?",
	})
	testutil.AssertStatusCode(t, resp, http.StatusCreated)
	var submitted submitResponse
	testutil.AssertJSONResponse(t, resp, &submitted)
	assert.True(t, submitted.Success)
	assert.NotEmpty(t, submitted.ID)
	assert.Equal(t, domain.NotificationSent, submitted.Notification.Status)

	sent := ts.Mail.Messages()
	require.Len(t, sent, 2)
	recipients := []string{sent[0].To, sent[1].To}
	assert.ElementsMatch(t, []string{ts.Config.AdminEmail, "alice@example.com"}, recipients)

	resp = testutil.DoJSON(t, http.MethodGet, ts.APIURL("/contacts"), token, nil)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	var contacts []domain.ContactRequest
	testutil.AssertJSONResponse(t, resp, &contacts)
	require.Len(t, contacts, 1)
	assert.Equal(t, submitted.ID, contacts[0].ID.String())
	assert.False(t, contacts[0].Read)

	resp = testutil.DoJSON(t, http.MethodPut, ts.APIURL("/contacts/"+submitted.ID), token, map[string]any{"read": true})
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	var updated domain.ContactRequest
	testutil.AssertJSONResponse(t, resp, &updated)
	assert.True(t, updated.Read)

	resp = testutil.DoJSON(t, http.MethodGet, ts.APIURL("/contacts?read=false"), token, nil)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	var unread []domain.ContactRequest
	testutil.AssertJSONResponse(t, resp, &unread)
	assert.Empty(t, unread)

	resp = testutil.DoJSON(t, http.MethodGet, ts.APIURL("/contacts?read=true"), token, nil)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	var read []domain.ContactRequest
	testutil.AssertJSONResponse(t, resp, &read)
	require.Len(t, read, 1)

	resp = testutil.DoJSON(t, http.MethodPut, ts.APIURL("/contacts/"+submitted.ID), token, map[string]any{})
	testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "validation")

	resp = testutil.DoJSON(t, http.MethodDelete, ts.APIURL("/contacts/"+submitted.ID), token, nil)
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	resp = testutil.DoJSON(t, http.MethodGet, ts.APIURL("/contacts/"+submitted.ID), token, nil)
	testutil.AssertErrorResponse(t, resp, http.StatusNotFound, "not_found")
}

func TestContactHandler_SubmitValidation(t *testing.T) {
	ts := testutil.NewTestServer(t)

	valid := func() map[string]any {
		return map[string]any{
			"name":    "Bob",
			"email":   "bob@example.com",
			"message": "Hello, is the shop open on Sunday?",
		}
	}

	tests := []struct {
		name          string
		mutate        func(map[string]any)
		expectedField string
	}{
		{"missing name", func(m map[string]any) { delete(m, "name") }, "name"},
		{"bad email", func(m map[string]any) { m["email"] = "bob" }, "email"},
		{"message too short", func(m map[string]any) { m["message"] = "too short" }, "message"},
		{"message too long", func(m map[string]any) { m["message"] = strings.Repeat("a", 1001) }, "message"},
		{"phone too long", func(m map[string]any) { m["phone"] = strings.Repeat("1", 31) }, "phone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(req)

			resp := testutil.DoJSON(t, http.MethodPost, ts.APIURL("/contact"), "", req)
			body := testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "validation")
			require.NotEmpty(t, body.Details)
			assert.Equal(t, tt.expectedField, body.Details[0].Field)
		})
	}

	var count int64
	require.NoError(t, ts.DB.DB.Model(&domain.ContactRequest{}).Count(&count).Error)
	assert.Zero(t, count, "rejected submissions are not stored")
	assert.Empty(t, ts.Mail.Messages())
}

func TestContactHandler_SubmitSurvivesMailFailures(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, token := testutil.NewAdminBuilder().BuildAndAuthenticate(t, ts)
	smtpDown := errors.New("smtp: connection refused")

	tests := []struct {
		name           string
		failTo         []string
		expectedStatus domain.NotificationStatus
		expectedAdmin  bool
		expectedClient bool
	}{
		{"both delivered", nil, domain.NotificationSent, true, true},
		{"admin mail fails", []string{ts.Config.AdminEmail}, domain.NotificationPartial, false, true},
		{"confirmation fails", []string{"carol@example.com"}, domain.NotificationPartial, true, false},
		{"both fail", []string{ts.Config.AdminEmail, "carol@example.com"}, domain.NotificationFailed, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts.Mail.Reset()
			for _, addr := range tt.failTo {
				ts.Mail.FailTo(addr, smtpDown)
			}

			resp := testutil.DoJSON(t, http.MethodPost, ts.APIURL("/contact"), "", map[string]any{
				"name":    "Carol",
				"email":   "carol@example.com",
				"message": "Can I return a pair of shoes?",
			})
			testutil.AssertStatusCode(t, resp, http.StatusCreated)

			var submitted submitResponse
			testutil.AssertJSONResponse(t, resp, &submitted)
			assert.True(t, submitted.Success)
			assert.Equal(t, tt.expectedStatus, submitted.Notification.Status)
			assert.Equal(t, tt.expectedAdmin, submitted.Notification.AdminEmail)
			assert.Equal(t, tt.expectedClient, submitted.Notification.ClientEmail)

			resp = testutil.DoJSON(t, http.MethodGet, ts.APIURL("/contacts/"+submitted.ID), token, nil)
			testutil.AssertStatusCode(t, resp, http.StatusOK)
			var stored domain.ContactRequest
			testutil.AssertJSONResponse(t, resp, &stored)
			assert.Equal(t, "Carol", stored.Name)
			assert.NotEmpty(t, stored.Notification, "outcome is recorded with the request")
		})
	}
}
