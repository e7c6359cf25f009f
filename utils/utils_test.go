package utils

import (
	"testing"
	"time"

	consentTypes "clinic-portal/types/consent"

	"github.com/stretchr/testify/assert"
)

func TestValidatePhoneNumber(t *testing.T) {
	valid := []string{
		"+15550100001",
		"15550100001",
		"+8801712345678",
		" +447911123456 ",
	}
	for _, phone := range valid {
		assert.True(t, ValidatePhoneNumber(phone), phone)
	}

	invalid := []string{
		"",
		"12345",
		"+0123456789",
		"not-a-phone",
		"+1555010000155501000015550",
	}
	for _, phone := range invalid {
		assert.False(t, ValidatePhoneNumber(phone), phone)
	}
}

func TestValidateStruct(t *testing.T) {
	ok := consentTypes.VerifyConsentRequest{AssignmentID: 1, Code: "123456"}
	assert.NoError(t, ValidateStruct(ok))

	missing := consentTypes.VerifyConsentRequest{Code: "123456"}
	assert.Error(t, ValidateStruct(missing))

	shortCode := consentTypes.VerifyConsentRequest{AssignmentID: 1, Code: "123"}
	assert.Error(t, ValidateStruct(shortCode))

	letters := consentTypes.VerifyConsentRequest{AssignmentID: 1, Code: "abcdef"}
	assert.Error(t, ValidateStruct(letters))

	badMethod := consentTypes.RequestConsentRequest{AssignmentID: 1, Method: "fax"}
	assert.Error(t, ValidateStruct(badMethod))

	goodMethod := consentTypes.RequestConsentRequest{AssignmentID: 1, Method: "sms_email"}
	assert.NoError(t, ValidateStruct(goodMethod))
}

func TestRedactCodeFields(t *testing.T) {
	in := `{"assignment_id":1,"code":"654321"}`
	out := RedactCodeFields(in)
	assert.NotContains(t, out, "654321")
	assert.Contains(t, out, "[REDACTED]")

	// Other fields survive untouched.
	assert.Contains(t, out, `"assignment_id":1`)

	untouched := `{"assignment_id":1}`
	assert.Equal(t, untouched, RedactCodeFields(untouched))
}

func TestCalculateAge(t *testing.T) {
	dob := time.Now().AddDate(-30, 0, 0)
	years, months, days := CalculateAge(dob)
	assert.Equal(t, 30, years)
	assert.Equal(t, 0, months)
	assert.Equal(t, 0, days)

	newborn := time.Now()
	years, months, days = CalculateAge(newborn)
	assert.Equal(t, 0, years)
	assert.Equal(t, 0, months)
	assert.Equal(t, 0, days)
}
