package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/campushub/registrar/internal/app/models/dto"
	"github.com/campushub/registrar/internal/app/services"
	"github.com/campushub/registrar/internal/middleware"
)

// RegistrationController handles registration engine operations
type RegistrationController struct {
	registrationService *services.RegistrationService
	logger              zerolog.Logger
}

// NewRegistrationController creates a new RegistrationController
func NewRegistrationController(registrationService *services.RegistrationService, logger zerolog.Logger) *RegistrationController {
	return &RegistrationController{
		registrationService: registrationService,
		logger:              logger,
	}
}

// Register handles course registration
// @Summary Register a student for a course
// @Description Registers the student if eligible and a seat is free, otherwise appends them to the waitlist
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param request body dto.RegisterCourseRequest true "Student"
// @Success 201 {object} dto.APIResponse{data=dto.RegistrationOutcomeResponse} "Registered or waitlisted"
// @Failure 404 {object} dto.ErrorResponse "Course or student not found"
// @Failure 409 {object} dto.ErrorResponse "Already registered or waitlisted, or seat contention"
// @Failure 422 {object} dto.ErrorResponse "Prerequisites not met or schedule conflict"
// @Router /courses/{id}/register [post]
func (c *RegistrationController) Register(ctx *gin.Context) {
	caller, _ := middleware.CallerFrom(ctx)

	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.RegisterCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	result, err := c.registrationService.Register(ctx.Request.Context(), caller, req.StudentID, courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(outcomeResponse(result), ""))
}

// AdminOverrideRegister handles forced registration
// @Summary Force-register a student
// @Description Registers the student regardless of prerequisites, schedule conflicts, or seat availability. Never waitlists. Admin only.
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param request body dto.RegisterCourseRequest true "Student"
// @Success 201 {object} dto.APIResponse{data=dto.RegistrationOutcomeResponse} "Registered"
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Failure 404 {object} dto.ErrorResponse "Course or student not found"
// @Failure 409 {object} dto.ErrorResponse "Already registered"
// @Router /courses/{id}/register/override [post]
func (c *RegistrationController) AdminOverrideRegister(ctx *gin.Context) {
	caller, _ := middleware.CallerFrom(ctx)

	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.RegisterCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	result, err := c.registrationService.AdminOverrideRegister(ctx.Request.Context(), caller, req.StudentID, courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(outcomeResponse(result), ""))
}

// Drop handles registration cancellation by registration ID
// @Summary Drop a registration
// @Description Cancels an active registration and returns the seat to the course
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Registration ID"
// @Success 200 {object} dto.APIResponse{data=dto.RegistrationResponse} "Registration dropped"
// @Failure 404 {object} dto.ErrorResponse "Registration not found or already dropped"
// @Router /registrations/{id} [delete]
func (c *RegistrationController) Drop(ctx *gin.Context) {
	caller, _ := middleware.CallerFrom(ctx)

	registrationID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	dropped, err := c.registrationService.Drop(ctx.Request.Context(), caller, registrationID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewRegistrationResponse(dropped), "Registration dropped"))
}

// DropByCourse handles registration cancellation by course
// @Summary Drop a student's registration for a course
// @Description Cancels the student's active registration for the course and returns the seat
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param request body dto.RegisterCourseRequest true "Student"
// @Success 200 {object} dto.APIResponse{data=dto.RegistrationResponse} "Registration dropped"
// @Failure 404 {object} dto.ErrorResponse "No active registration for this student and course"
// @Router /courses/{id}/register [delete]
func (c *RegistrationController) DropByCourse(ctx *gin.Context) {
	caller, _ := middleware.CallerFrom(ctx)

	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.RegisterCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	dropped, err := c.registrationService.DropByCourse(ctx.Request.Context(), caller, req.StudentID, courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewRegistrationResponse(dropped), "Registration dropped"))
}

// SubscribeWaitlist handles waitlist subscription
// @Summary Join a course waitlist
// @Description Appends the student to the waitlist. Re-joining keeps the original position.
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param request body dto.RegisterCourseRequest true "Student"
// @Success 200 {object} dto.APIResponse{data=dto.WaitlistPositionResponse} "Waitlist position"
// @Failure 404 {object} dto.ErrorResponse "Course or student not found"
// @Router /courses/{id}/waitlist [post]
func (c *RegistrationController) SubscribeWaitlist(ctx *gin.Context) {
	caller, _ := middleware.CallerFrom(ctx)

	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.RegisterCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	position, err := c.registrationService.SubscribeWaitlist(ctx.Request.Context(), caller, courseID, req.StudentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.WaitlistPositionResponse{
		CourseID:  courseID,
		StudentID: req.StudentID,
		Position:  position,
	}, ""))
}

// UnsubscribeWaitlist handles waitlist removal
// @Summary Leave a course waitlist
// @Description Removes the student from the waitlist. Removing an absent student is a no-op.
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param request body dto.RegisterCourseRequest true "Student"
// @Success 200 {object} dto.APIResponse "Removed from waitlist"
// @Failure 404 {object} dto.ErrorResponse "Course or student not found"
// @Router /courses/{id}/waitlist [delete]
func (c *RegistrationController) UnsubscribeWaitlist(ctx *gin.Context) {
	caller, _ := middleware.CallerFrom(ctx)

	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.RegisterCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	if err := c.registrationService.UnsubscribeWaitlist(ctx.Request.Context(), caller, courseID, req.StudentID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nil, "Removed from waitlist"))
}

// CheckPrerequisites handles standalone prerequisite queries
// @Summary Check prerequisites
// @Description Reports whether the student meets the prerequisites of the course
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param studentId path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.PrerequisiteCheckResponse} "Prerequisite check"
// @Failure 404 {object} dto.ErrorResponse "Course or student not found"
// @Router /courses/{id}/prerequisites/{studentId} [get]
func (c *RegistrationController) CheckPrerequisites(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	studentID, ok := pathID(ctx, "studentId")
	if !ok {
		return
	}

	check, err := c.registrationService.CheckPrerequisites(ctx.Request.Context(), studentID, courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.PrerequisiteCheckResponse{
		Meets:   check.Meets,
		Missing: check.Missing,
	}, ""))
}

// ListStudentRegistrations handles per-student ledger queries
// @Summary List a student's registrations
// @Description Returns the student's ledger entries, optionally only active ones
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param active query bool false "Only active registrations"
// @Success 200 {object} dto.APIResponse{data=[]dto.RegistrationResponse} "Registrations"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id}/registrations [get]
func (c *RegistrationController) ListStudentRegistrations(ctx *gin.Context) {
	caller, _ := middleware.CallerFrom(ctx)

	studentID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	onlyActive := ctx.DefaultQuery("active", "false") == "true"

	registrations, err := c.registrationService.ListStudentRegistrations(ctx.Request.Context(), caller, studentID, onlyActive)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewRegistrationListResponse(registrations), ""))
}

func outcomeResponse(result *services.RegistrationResult) dto.RegistrationOutcomeResponse {
	response := dto.RegistrationOutcomeResponse{
		Outcome:          string(result.Outcome),
		WaitlistPosition: result.WaitlistPosition,
	}
	if result.Registration != nil {
		registration := dto.NewRegistrationResponse(result.Registration)
		response.Registration = &registration
	}
	return response
}
