package consent

import (
	"errors"
	"time"

	"clinic-portal/logger"
	consentModel "clinic-portal/models/consent"
	consentService "clinic-portal/services/consent"
	"clinic-portal/storage"
	"clinic-portal/types"
	consentTypes "clinic-portal/types/consent"
	"clinic-portal/utils"

	"github.com/gofiber/fiber/v2"
)

// Controller handles the consent workflow HTTP surface.
type Controller struct {
	Store   storage.Store
	Logger  *logger.AsyncLogger
	Service *consentService.Service
}

// NewConsentController wires the workflow engine over the given store and
// notifier.
func NewConsentController(store storage.Store, asyncLogger *logger.AsyncLogger, notifier consentService.Notifier) *Controller {
	return &Controller{
		Store:   store,
		Logger:  asyncLogger,
		Service: consentService.NewConsentService(store, notifier),
	}
}

// RequestConsent issues (or re-returns) a consent code for an assignment.
func (cc *Controller) RequestConsent(c *fiber.Ctx) error {
	var req consentTypes.RequestConsentRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}

	actorID, err := utils.ActorUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "Session expired. Login again.",
		})
	}

	result, err := cc.Service.RequestConsent(req.AssignmentID, actorID, consentModel.DeliveryMethod(req.Method), req.CustomMessage)
	if err != nil {
		return cc.respondWorkflowError(c, err, nil)
	}

	message := "Consent code sent to the patient"
	if result.Reused {
		message = "An active consent code already exists for this assignment"
	}

	cc.audit(c)

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: message,
		Data: consentTypes.IssuanceResponse{
			OtpID:             result.Otp.ID,
			AssignmentID:      result.Otp.AssignmentID,
			Method:            string(result.Otp.Method),
			Reused:            result.Reused,
			ExpiresAt:         result.Otp.ExpiresAt.Format(time.RFC3339),
			ExpiresInSeconds:  int(result.Otp.RemainingValidity().Seconds()),
			RemainingAttempts: result.Otp.RemainingAttempts(),
		},
	})
}

// VerifyConsent checks a submitted code and, on success, grants the
// secondary doctor access.
func (cc *Controller) VerifyConsent(c *fiber.Ctx) error {
	var req consentTypes.VerifyConsentRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}

	result, err := cc.Service.VerifyConsent(req.AssignmentID, req.Code)
	if err != nil {
		return cc.respondWorkflowError(c, err, result)
	}

	cc.audit(c)

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Consent verified; access granted",
		Data: consentTypes.VerificationResponse{
			AssignmentID:  req.AssignmentID,
			Verified:      true,
			VerifiedAt:    result.Otp.VerifiedAt.Format(time.RFC3339),
			ConsentStatus: string(result.Assignment.ConsentStatus),
			AccessGranted: result.Assignment.AccessGranted,
		},
	})
}

// Status reports the state of the latest consent code for an assignment.
func (cc *Controller) Status(c *fiber.Ctx) error {
	var req consentTypes.ConsentStatusRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}

	actorID, err := utils.ActorUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "Session expired. Login again.",
		})
	}

	otp, err := cc.Service.Status(req.AssignmentID, actorID)
	if err != nil {
		if errors.Is(err, consentService.ErrOtpNotFound) {
			return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
				Status:  fiber.StatusOK,
				Message: "No consent code has been issued for this assignment",
				Data: consentTypes.StatusResponse{
					AssignmentID:      req.AssignmentID,
					HasActiveCode:     false,
					RemainingAttempts: consentService.DefaultMaxAttempts,
					Message:           "You can request a new consent code",
				},
			})
		}
		return cc.respondWorkflowError(c, err, nil)
	}

	resp := consentTypes.StatusResponse{
		AssignmentID:      req.AssignmentID,
		HasActiveCode:     otp.IsActive(),
		IsVerified:        otp.IsVerified,
		IsBlocked:         otp.IsBlocked,
		IsExpired:         otp.IsExpired(),
		ExpiresAt:         otp.ExpiresAt.Format(time.RFC3339),
		RemainingAttempts: otp.RemainingAttempts(),
	}

	switch {
	case otp.IsVerified:
		resp.Message = "Consent already verified"
	case otp.IsBlocked:
		resp.Message = "Verification is blocked after too many failed attempts"
	case otp.IsExpired():
		resp.Message = "The last consent code has expired; request a new one"
	default:
		resp.Message = "A consent code is active"
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Consent status retrieved",
		Data:    resp,
	})
}

// respondWorkflowError translates engine sentinels into HTTP responses with
// machine-checkable reason codes.
func (cc *Controller) respondWorkflowError(c *fiber.Ctx, err error, result *consentService.VerificationResult) error {
	status := fiber.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, consentService.ErrAssignmentNotFound),
		errors.Is(err, consentService.ErrOtpNotFound):
		status = fiber.StatusNotFound
		message = err.Error()
	case errors.Is(err, consentService.ErrConsentNotRequired),
		errors.Is(err, consentService.ErrConsentAlreadyGranted),
		errors.Is(err, consentService.ErrAssignmentInactive),
		errors.Is(err, consentService.ErrOtpAlreadyVerified):
		status = fiber.StatusConflict
		message = err.Error()
	case errors.Is(err, consentService.ErrOtpExpired):
		status = fiber.StatusGone
		message = err.Error()
	case errors.Is(err, consentService.ErrMaxAttemptsExceeded):
		status = fiber.StatusTooManyRequests
		message = err.Error()
	case errors.Is(err, consentService.ErrInvalidCode),
		errors.Is(err, consentService.ErrUnknownMethod):
		status = fiber.StatusBadRequest
		message = err.Error()
	default:
		logger.Error("Consent workflow failed", err)
	}

	resp := types.ApiResponse{
		Status:  status,
		Message: message,
		Reason:  consentService.ReasonForError(err),
	}

	// A failed attempt still tells the caller how many tries are left.
	if result != nil && result.Otp != nil && errors.Is(err, consentService.ErrInvalidCode) {
		remaining := result.Otp.RemainingAttempts()
		blocked := result.Otp.IsBlocked
		resp.Data = consentTypes.VerificationResponse{
			AssignmentID:      result.Otp.AssignmentID,
			Verified:          false,
			ConsentStatus:     "pending",
			RemainingAttempts: &remaining,
			IsBlocked:         &blocked,
		}
	}

	return c.Status(status).JSON(resp)
}

func (cc *Controller) audit(c *fiber.Ctx) {
	if cc.Logger == nil {
		return
	}
	cc.Logger.Log(utils.CreateSanitizedLogEntry(c))
}
