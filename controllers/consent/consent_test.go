package consent

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	assignmentModel "clinic-portal/models/assignment"
	userModel "clinic-portal/models/user"
	"clinic-portal/storage"
	"clinic-portal/types"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	app   *fiber.App
	store *storage.MemoryStore

	doctorID     uint
	patientID    uint
	assignmentID uint
}

// newFixture builds a Fiber app with the consent routes mounted behind a
// stub auth middleware that impersonates the given actor.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := storage.NewMemoryStore()
	f := &fixture{store: store}

	seedUser := func(username string, role userModel.Role) uint {
		email := username + "@clinic.example"
		u := &userModel.User{
			Uuid:      uuid.NewString(),
			Username:  username,
			LegalName: username,
			Role:      role,
			Phone:     "+1555010" + username[len(username)-4:],
			Email:     &email,
		}
		require.NoError(t, store.CreateUser(u))
		return u.ID
	}

	f.doctorID = seedUser("doc0001", userModel.RoleDoctor)
	secondaryID := seedUser("doc0002", userModel.RoleDoctor)
	f.patientID = seedUser("pat0003", userModel.RolePatient)

	a := &assignmentModel.SecondaryDoctorAssignment{
		PatientID:         f.patientID,
		PrimaryDoctorID:   f.doctorID,
		SecondaryDoctorID: secondaryID,
		RequiresConsent:   true,
		ConsentStatus:     assignmentModel.ConsentStatusPending,
		IsActive:          true,
	}
	require.NoError(t, store.CreateAssignment(a))
	f.assignmentID = a.ID

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", jwt.MapClaims{
			"user_id": float64(f.doctorID),
			"uid":     "test-actor-uuid",
		})
		return c.Next()
	})

	cc := NewConsentController(store, nil, nil)
	app.Post("/api/consent/request", cc.RequestConsent)
	app.Post("/api/consent/verify", cc.VerifyConsent)
	app.Post("/api/consent/status", cc.Status)

	f.app = app
	return f
}

func (f *fixture) post(t *testing.T, path string, payload interface{}) (*http.Response, types.ApiResponse) {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var api types.ApiResponse
	require.NoError(t, json.Unmarshal(raw, &api))
	return resp, api
}

func (f *fixture) issuedCode(t *testing.T) string {
	t.Helper()
	otp, err := f.store.LatestOtpByAssignment(f.assignmentID)
	require.NoError(t, err)
	return otp.Code
}

func TestRequestConsent_Endpoint(t *testing.T) {
	f := newFixture(t)

	resp, api := f.post(t, "/api/consent/request", fiber.Map{
		"assignment_id": f.assignmentID,
		"method":        "sms",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	data, err := json.Marshal(api.Data)
	require.NoError(t, err)

	var issuance map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &issuance))
	assert.Equal(t, false, issuance["reused"])
	assert.Equal(t, float64(3), issuance["remaining_attempts"])

	// The raw code must never appear in the response payload.
	assert.NotContains(t, string(data), f.issuedCode(t))
}

func TestRequestConsent_EndpointDedup(t *testing.T) {
	f := newFixture(t)

	_, _ = f.post(t, "/api/consent/request", fiber.Map{
		"assignment_id": f.assignmentID,
		"method":        "sms",
	})
	resp, api := f.post(t, "/api/consent/request", fiber.Map{
		"assignment_id": f.assignmentID,
		"method":        "sms",
	})

	// Dedup is success-shaped, not an error.
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	data, _ := json.Marshal(api.Data)
	var issuance map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &issuance))
	assert.Equal(t, true, issuance["reused"])
}

func TestRequestConsent_EndpointValidation(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.post(t, "/api/consent/request", fiber.Map{
		"assignment_id": f.assignmentID,
		"method":        "fax",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.post(t, "/api/consent/request", fiber.Map{
		"method": "sms",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestVerifyConsent_EndpointHappyPath(t *testing.T) {
	f := newFixture(t)

	_, _ = f.post(t, "/api/consent/request", fiber.Map{
		"assignment_id": f.assignmentID,
		"method":        "sms",
	})

	resp, api := f.post(t, "/api/consent/verify", fiber.Map{
		"assignment_id": f.assignmentID,
		"code":          f.issuedCode(t),
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	data, _ := json.Marshal(api.Data)
	var verification map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &verification))
	assert.Equal(t, true, verification["verified"])
	assert.Equal(t, "granted", verification["consent_status"])
	assert.Equal(t, true, verification["access_granted"])

	a, err := f.store.AssignmentByID(f.assignmentID)
	require.NoError(t, err)
	assert.True(t, a.AccessGranted)
}

func TestVerifyConsent_EndpointWrongCode(t *testing.T) {
	f := newFixture(t)

	_, _ = f.post(t, "/api/consent/request", fiber.Map{
		"assignment_id": f.assignmentID,
		"method":        "sms",
	})

	resp, api := f.post(t, "/api/consent/verify", fiber.Map{
		"assignment_id": f.assignmentID,
		"code":          "000000",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_code", api.Reason)

	data, _ := json.Marshal(api.Data)
	var verification map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &verification))
	assert.Equal(t, float64(2), verification["remaining_attempts"])
	assert.Equal(t, false, verification["is_blocked"])
}

func TestVerifyConsent_EndpointBlockedThenCorrectCode(t *testing.T) {
	f := newFixture(t)

	_, _ = f.post(t, "/api/consent/request", fiber.Map{
		"assignment_id": f.assignmentID,
		"method":        "sms",
	})

	for i := 0; i < 3; i++ {
		resp, _ := f.post(t, "/api/consent/verify", fiber.Map{
			"assignment_id": f.assignmentID,
			"code":          "000000",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	}

	resp, api := f.post(t, "/api/consent/verify", fiber.Map{
		"assignment_id": f.assignmentID,
		"code":          f.issuedCode(t),
	})
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "max_attempts_exceeded", api.Reason)

	a, err := f.store.AssignmentByID(f.assignmentID)
	require.NoError(t, err)
	assert.Equal(t, assignmentModel.ConsentStatusPending, a.ConsentStatus)
}

func TestVerifyConsent_EndpointExpired(t *testing.T) {
	f := newFixture(t)

	_, _ = f.post(t, "/api/consent/request", fiber.Map{
		"assignment_id": f.assignmentID,
		"method":        "sms",
	})

	otp, err := f.store.LatestOtpByAssignment(f.assignmentID)
	require.NoError(t, err)
	otp.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, f.store.SaveOtp(otp))

	resp, api := f.post(t, "/api/consent/verify", fiber.Map{
		"assignment_id": f.assignmentID,
		"code":          f.issuedCode(t),
	})
	assert.Equal(t, http.StatusGone, resp.StatusCode)
	assert.Equal(t, "otp_expired", api.Reason)
}

func TestRequestConsent_EndpointAlreadyGranted(t *testing.T) {
	f := newFixture(t)

	a, err := f.store.AssignmentByID(f.assignmentID)
	require.NoError(t, err)
	a.GrantAccess(time.Now())
	require.NoError(t, f.store.SaveAssignment(a))

	resp, api := f.post(t, "/api/consent/request", fiber.Map{
		"assignment_id": f.assignmentID,
		"method":        "sms",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "already_granted", api.Reason)
}

func TestConsentStatus_Endpoint(t *testing.T) {
	f := newFixture(t)

	resp, api := f.post(t, "/api/consent/status", fiber.Map{
		"assignment_id": f.assignmentID,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	data, _ := json.Marshal(api.Data)
	var status map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &status))
	assert.Equal(t, false, status["has_active_code"])

	_, _ = f.post(t, "/api/consent/request", fiber.Map{
		"assignment_id": f.assignmentID,
		"method":        "email",
	})

	_, api = f.post(t, "/api/consent/status", fiber.Map{
		"assignment_id": f.assignmentID,
	})
	data, _ = json.Marshal(api.Data)
	require.NoError(t, json.Unmarshal(data, &status))
	assert.Equal(t, true, status["has_active_code"])
	assert.Equal(t, float64(3), status["remaining_attempts"])
}
