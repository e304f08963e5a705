//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"
)

const baseURL = "http://127.0.0.1:8080"

func httpPostJSON(t *testing.T, url string, body any, wantCode int) []byte {
	t.Helper()
	b, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", baseURL)
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("http POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != wantCode {
		t.Fatalf("http POST %s: got %d want %d body=%s", url, resp.StatusCode, wantCode, string(data))
	}
	return data
}

func TestKiosk_SignInSignOut(t *testing.T) {
	signInResp := httpPostJSON(t, baseURL+"/v1/kiosk/sign-ins", map[string]string{
		"visitorName": "Integration Visitor",
		"phone":       "+64211234567",
	}, 201)

	var in struct {
		SignInID     string `json:"signInId"`
		SignOutToken string `json:"signOutToken"`
	}
	if err := json.Unmarshal(signInResp, &in); err != nil {
		t.Fatalf("unmarshal sign-in: %v body=%s", err, string(signInResp))
	}
	t.Logf("[sign-in] id=%s token len=%d", in.SignInID, len(in.SignOutToken))

	_ = httpPostJSON(t, baseURL+"/v1/kiosk/sign-outs", map[string]string{
		"token": in.SignOutToken,
		"phone": "021 123 4567",
	}, 200)

	// second attempt must conflict
	_ = httpPostJSON(t, baseURL+"/v1/kiosk/sign-outs", map[string]string{
		"token": in.SignOutToken,
		"phone": "+64211234567",
	}, 409)
}

func TestKiosk_BadToken(t *testing.T) {
	_ = httpPostJSON(t, baseURL+"/v1/kiosk/sign-outs", map[string]string{
		"token": "not-a-token",
		"phone": "+64211234567",
	}, 400)
}
