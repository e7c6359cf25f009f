package assignment

import (
	"errors"
	"strconv"
	"time"

	"clinic-portal/constants"
	"clinic-portal/logger"
	"clinic-portal/middleware"
	assignmentModel "clinic-portal/models/assignment"
	"clinic-portal/storage"
	"clinic-portal/types"
	assignmentTypes "clinic-portal/types/assignment"
	"clinic-portal/utils"

	"github.com/gofiber/fiber/v2"
)

// Controller handles secondary doctor assignment HTTP requests.
type Controller struct {
	Storage storage.Store
	Logger *logger.AsyncLogger
}

// NewAssignmentController creates an assignment controller over the store.
func NewAssignmentController(store storage.Store, asyncLogger *logger.AsyncLogger) *Controller {
	return &Controller{Storage: store, Logger: asyncLogger}
}

// Store creates a secondary doctor assignment. The creating doctor becomes
// the primary doctor on the record; consent starts out required and pending
// unless an admin explicitly waives it.
func (ac *Controller) Store(c *fiber.Ctx) error {
	var req assignmentTypes.CreateAssignmentRequest
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

	if req.WaiveConsent && !ac.isAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(types.ApiResponse{
			Status:  fiber.StatusForbidden,
			Message: "Only an administrator may waive patient consent",
		})
	}

	if _, err := ac.Storage.UserByID(req.PatientID); err != nil {
		return ac.userLookupError(c, "Patient", err)
	}
	if _, err := ac.Storage.UserByID(req.SecondaryDoctorID); err != nil {
		return ac.userLookupError(c, "Secondary doctor", err)
	}

	a := &assignmentModel.SecondaryDoctorAssignment{
		PatientID:         req.PatientID,
		PrimaryDoctorID:   actorID,
		SecondaryDoctorID: req.SecondaryDoctorID,
		Specialty:         req.Specialty,
		Notes:             req.Notes,
		RequiresConsent:   !req.WaiveConsent,
		ConsentStatus:     assignmentModel.ConsentStatusPending,
		IsActive:          true,
	}
	if req.WaiveConsent {
		a.GrantAccess(time.Now())
	}

	if err := ac.Storage.CreateAssignment(a); err != nil {
		logger.Error("Failed to create assignment", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to create assignment",
		})
	}

	ac.audit(c)

	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Assignment created",
		Data:    toResponse(a),
	})
}

// Index lists every assignment the caller appears on, as patient or doctor.
func (ac *Controller) Index(c *fiber.Ctx) error {
	actorID, err := utils.ActorUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "Session expired. Login again.",
		})
	}

	list, err := ac.Storage.AssignmentsForUser(actorID)
	if err != nil {
		logger.Error("Failed to list assignments", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to list assignments",
		})
	}

	out := make([]assignmentTypes.AssignmentResponse, 0, len(list))
	for i := range list {
		out = append(out, toResponse(&list[i]))
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Assignments retrieved",
		Data:    out,
	})
}

// Show returns one assignment, only to the users attached to it.
func (ac *Controller) Show(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid assignment id",
		})
	}

	actorID, err := utils.ActorUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "Session expired. Login again.",
		})
	}

	a, err := ac.Storage.AssignmentByID(uint(id))
	if err != nil {
		// One outcome for missing and forbidden, so ids cannot be probed.
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Status:  fiber.StatusNotFound,
			Message: "Assignment not found or access denied",
		})
	}
	if !a.CanBeManagedBy(actorID) && a.PatientID != actorID {
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Status:  fiber.StatusNotFound,
			Message: "Assignment not found or access denied",
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Assignment retrieved",
		Data:    toResponse(a),
	})
}

// Deactivate marks an assignment inactive; consent codes can no longer be
// issued for it.
func (ac *Controller) Deactivate(c *fiber.Ctx) error {
	var req assignmentTypes.DeactivateAssignmentRequest
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

	a, err := ac.Storage.AssignmentByID(req.AssignmentID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Status:  fiber.StatusNotFound,
			Message: "Assignment not found or access denied",
		})
	}
	if !a.CanBeManagedBy(actorID) {
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Status:  fiber.StatusNotFound,
			Message: "Assignment not found or access denied",
		})
	}

	if !a.IsActive {
		return c.Status(fiber.StatusConflict).JSON(types.ApiResponse{
			Status:  fiber.StatusConflict,
			Message: "Assignment is already inactive",
		})
	}

	a.IsActive = false
	if err := ac.Storage.SaveAssignment(a); err != nil {
		logger.Error("Failed to deactivate assignment", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to deactivate assignment",
		})
	}

	ac.audit(c)

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Assignment deactivated",
		Data:    toResponse(a),
	})
}

func (ac *Controller) isAdmin(c *fiber.Ctx) bool {
	for _, perm := range constants.AdminPermissions {
		if middleware.CheckPermissionInController(c, perm) {
			return true
		}
	}
	return false
}

func (ac *Controller) userLookupError(c *fiber.Ctx, who string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: who + " does not exist",
		})
	}
	logger.Error("Failed to look up "+who, err)
	return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
		Status:  fiber.StatusInternalServerError,
		Message: "Internal server error",
	})
}

func (ac *Controller) audit(c *fiber.Ctx) {
	if ac.Logger == nil {
		return
	}
	ac.Logger.Log(utils.CreateSanitizedLogEntry(c))
}

func toResponse(a *assignmentModel.SecondaryDoctorAssignment) assignmentTypes.AssignmentResponse {
	resp := assignmentTypes.AssignmentResponse{
		ID:                a.ID,
		PatientID:         a.PatientID,
		PrimaryDoctorID:   a.PrimaryDoctorID,
		SecondaryDoctorID: a.SecondaryDoctorID,
		Specialty:         a.Specialty,
		Notes:             a.Notes,
		RequiresConsent:   a.RequiresConsent,
		ConsentStatus:     string(a.ConsentStatus),
		AccessGranted:     a.AccessGranted,
		IsActive:          a.IsActive,
		CreatedAt:         a.CreatedAt.Format(time.RFC3339),
	}
	if a.AccessGrantedAt != nil {
		resp.AccessGrantedAt = a.AccessGrantedAt.Format(time.RFC3339)
	}
	return resp
}
