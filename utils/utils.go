package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"clinic-portal/types"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jinzhu/now"
)

var validate = validator.New()

// ValidateStruct runs the validator tags on a request struct and returns a
// user-presentable message for the first failing field.
func ValidateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		var invalid validator.ValidationErrors
		if ok := isValidationErrors(err, &invalid); ok && len(invalid) > 0 {
			fe := invalid[0]
			return fmt.Errorf("field '%s' failed validation on '%s'", fe.Field(), fe.Tag())
		}
		return err
	}
	return nil
}

func isValidationErrors(err error, target *validator.ValidationErrors) bool {
	ve, ok := err.(validator.ValidationErrors)
	if ok {
		*target = ve
	}
	return ok
}

// ActorUserID extracts the numeric user id from the JWT claims attached by
// the auth middleware.
func ActorUserID(c *fiber.Ctx) (uint, error) {
	claims, ok := c.Locals("user").(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("no authenticated user in context")
	}

	raw, ok := claims["user_id"]
	if !ok {
		return 0, fmt.Errorf("user_id claim missing")
	}

	// JSON numbers decode as float64
	id, ok := raw.(float64)
	if !ok || id < 1 {
		return 0, fmt.Errorf("user_id claim invalid")
	}
	return uint(id), nil
}

// ActorUuid extracts the user uuid from the JWT claims, or "" when absent.
func ActorUuid(c *fiber.Ctx) string {
	claims, ok := c.Locals("user").(jwt.MapClaims)
	if !ok {
		return ""
	}
	uid, _ := claims["uid"].(string)
	return uid
}

// CalculateAge returns a patient's age in Years, Months, and Days.
func CalculateAge(dob time.Time) (int, int, int) {
	currentTime := time.Now()

	years := currentTime.Year() - dob.Year()
	months := int(currentTime.Month()) - int(dob.Month())
	days := currentTime.Day() - dob.Day()

	// Adjust for negative months (if birthday hasn't occurred this year)
	if months < 0 {
		years--
		months += 12
	}

	// Adjust for negative days (if birthday day hasn't occurred this month)
	if days < 0 {
		previousMonth := now.With(currentTime).BeginningOfMonth().AddDate(0, 0, -1) // Last day of the previous month
		days += previousMonth.Day()
		months--
	}

	return years, months, days
}

// ValidatePhoneNumber validates an E.164-style phone number:
// an optional leading + followed by 10 to 15 digits.
func ValidatePhoneNumber(phone string) bool {
	phone = strings.TrimSpace(phone)
	pattern := `^\+?[1-9][0-9]{9,14}$`
	re := regexp.MustCompile(pattern)
	return re.MatchString(phone)
}

// sanitizeRequestBody redacts consent codes and trims oversized payloads
// before a request body reaches the audit log.
func sanitizeRequestBody(c *fiber.Ctx) string {
	body := string(c.Body())

	// Never let a submitted consent code reach the logs.
	body = RedactCodeFields(body)

	if len(body) > 10000 {
		return "[LARGE_REQUEST_BODY_TRUNCATED]"
	}
	return body
}

var codeFieldPattern = regexp.MustCompile(`"code"\s*:\s*"[0-9]{0,10}"`)

// RedactCodeFields masks any "code" field value inside a JSON payload.
func RedactCodeFields(body string) string {
	return codeFieldPattern.ReplaceAllString(body, `"code":"[REDACTED]"`)
}

// CreateSanitizedLogEntry creates a deep copied and sanitized log entry for
// the async audit logger.
func CreateSanitizedLogEntry(c *fiber.Ctx) types.LogEntry {
	// Deep copies prevent fasthttp buffer reuse from corrupting the entry.
	method := string([]byte(c.Method()))
	url := string([]byte(c.OriginalURL()))
	requestBody := sanitizeRequestBody(c)
	responseBody := RedactCodeFields(string(append([]byte(nil), c.Response().Body()...)))

	requestHeaders := make([]byte, len(c.Request().Header.Header()))
	copy(requestHeaders, c.Request().Header.Header())

	responseHeaders := make([]byte, len(c.Response().Header.Header()))
	copy(responseHeaders, c.Response().Header.Header())

	return types.LogEntry{
		Method:          method,
		URL:             url,
		ActorUuid:       ActorUuid(c),
		RequestBody:     requestBody,
		ResponseBody:    responseBody,
		RequestHeaders:  sanitizeHeaders(string(requestHeaders)),
		ResponseHeaders: string(responseHeaders),
		StatusCode:      c.Response().StatusCode(),
		CreatedAt:       time.Now(),
	}
}

var authHeaderPattern = regexp.MustCompile(`(?i)(Authorization:\s*Bearer\s+)[^\r\n]+`)

func sanitizeHeaders(headers string) string {
	return authHeaderPattern.ReplaceAllString(headers, "${1}[REDACTED]")
}

// PrettyJSON renders v as indented JSON for debug output; falls back to the
// fmt representation when marshalling fails.
func PrettyJSON(v interface{}) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(b)
}
