package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Yoni-hub/connectura-platform-sub000/internal/models"
	"github.com/Yoni-hub/connectura-platform-sub000/internal/share"
)

func verifyAccessAPI(t *testing.T, reqBody AccessRequest) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(reqBody)
	req := httptest.NewRequest("POST", "/api/v1/access/verify", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	http.HandlerFunc(testServer.VerifyAccessHandler).ServeHTTP(rr, req)
	return rr
}

func wrongCode(code string) string {
	if code == "0000" {
		return "0001"
	}
	return "0000"
}

func TestAPI_VerifyAccess_Success(t *testing.T) {
	created := createShareAPI(t, true, []string{"address"})

	rr := verifyAccessAPI(t, AccessRequest{Token: created.Share.Token, Code: created.AccessCode})
	require.Equal(t, http.StatusOK, rr.Code)

	var view share.View
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	require.Equal(t, created.Share.Token, view.Token)
	require.True(t, view.Editable)
	require.Contains(t, view.Snapshot.Sections, "address")
	require.NotContains(t, view.Snapshot.Sections, "vehicle")
	require.NotContains(t, rr.Body.String(), "code_hash")
}

func TestAPI_VerifyAccess_WrongCode(t *testing.T) {
	created := createShareAPI(t, true, []string{"address"})

	rr := verifyAccessAPI(t, AccessRequest{Token: created.Share.Token, Code: wrongCode(created.AccessCode)})
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	var apiErr share.Error
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &apiErr))
	require.Equal(t, "invalid_code", apiErr.Kind)
}

func TestAPI_VerifyAccess_UnknownToken(t *testing.T) {
	rr := verifyAccessAPI(t, AccessRequest{Token: "completely_unknown", Code: "1234"})
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAPI_VerifyAccess_NameRequired(t *testing.T) {
	seedTestProfile(t)
	name := "Jan Kowalski"
	payload := CreateShareRequest{Sections: []string{"address"}, RecipientName: &name}
	body, _ := json.Marshal(payload)
	rr := httptest.NewRecorder()
	http.HandlerFunc(testServer.CreateShareHandler).ServeHTTP(rr, authedRequest("POST", "/api/v1/shares", body))
	require.Equal(t, http.StatusCreated, rr.Code)

	var created CreateShareResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))

	rr2 := verifyAccessAPI(t, AccessRequest{Token: created.Share.Token, Code: created.AccessCode, Name: "Anna Nowak"})
	require.Equal(t, http.StatusUnauthorized, rr2.Code)

	rr3 := verifyAccessAPI(t, AccessRequest{Token: created.Share.Token, Code: created.AccessCode, Name: " jan KOWALSKI "})
	require.Equal(t, http.StatusOK, rr3.Code)
}

func TestAPI_SubmitEdits_NotEditable(t *testing.T) {
	created := createShareAPI(t, false, []string{"address"})

	edits := models.ProfileData{
		Sections: map[string]json.RawMessage{"address": json.RawMessage(`{"city":"Sopot"}`)},
	}
	body, _ := json.Marshal(SubmitEditsRequest{Token: created.Share.Token, Code: created.AccessCode, Edits: edits})
	req := httptest.NewRequest("POST", "/api/v1/access/edits", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	http.HandlerFunc(testServer.SubmitEditsHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusForbidden, rr.Code)
	var apiErr share.Error
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &apiErr))
	require.Equal(t, "editing_disabled", apiErr.Kind)
}

func TestAPI_SubmitEdits_NothingInScope(t *testing.T) {
	created := createShareAPI(t, true, []string{"address"})

	edits := models.ProfileData{
		Sections: map[string]json.RawMessage{"vehicle": json.RawMessage(`{"plate":"XX0000"}`)},
	}
	body, _ := json.Marshal(SubmitEditsRequest{Token: created.Share.Token, Code: created.AccessCode, Edits: edits})
	req := httptest.NewRequest("POST", "/api/v1/access/edits", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	http.HandlerFunc(testServer.SubmitEditsHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestAPI_CloseAccess(t *testing.T) {
	created := createShareAPI(t, true, []string{"address"})

	body, _ := json.Marshal(AccessRequest{Token: created.Share.Token, Code: created.AccessCode})
	req := httptest.NewRequest("POST", "/api/v1/access/close", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	http.HandlerFunc(testServer.CloseAccessHandler).ServeHTTP(rr, req)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr2 := verifyAccessAPI(t, AccessRequest{Token: created.Share.Token, Code: created.AccessCode})
	require.Equal(t, http.StatusGone, rr2.Code)
}
