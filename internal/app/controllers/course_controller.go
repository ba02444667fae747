package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/campushub/registrar/internal/app/models"
	"github.com/campushub/registrar/internal/app/models/dto"
	"github.com/campushub/registrar/internal/app/repositories"
	"github.com/campushub/registrar/internal/app/services"
	"github.com/campushub/registrar/internal/middleware"
)

// CourseController handles course catalog operations
type CourseController struct {
	courseService       *services.CourseService
	registrationService *services.RegistrationService
	logger              zerolog.Logger
}

// NewCourseController creates a new CourseController
func NewCourseController(courseService *services.CourseService, registrationService *services.RegistrationService, logger zerolog.Logger) *CourseController {
	return &CourseController{
		courseService:       courseService,
		registrationService: registrationService,
		logger:              logger,
	}
}

// CreateCourse handles course creation
// @Summary Create a course
// @Description Adds a new course to the catalog. Admin only.
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCourseRequest true "Course information"
// @Success 201 {object} dto.APIResponse{data=dto.CourseResponse} "Course created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Failure 409 {object} dto.ErrorResponse "Course code already exists"
// @Router /courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	caller, _ := middleware.CallerFrom(ctx)

	var req dto.CreateCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	course := &models.Course{
		Code:           req.Code,
		Name:           req.Name,
		Description:    req.Description,
		Department:     req.Department,
		Credits:        req.Credits,
		Instructor:     req.Instructor,
		Prerequisites:  req.Prerequisites,
		Schedule:       dto.ToScheduleSlots(req.Schedule),
		TotalSeats:     req.TotalSeats,
		AvailableSeats: req.TotalSeats,
	}

	created, err := c.courseService.CreateCourse(ctx.Request.Context(), caller, course)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(dto.NewCourseResponse(created), "Course created"))
}

// ListCourses handles catalog queries
// @Summary List courses
// @Description Lists catalog entries, optionally filtered by department, text search, or availability
// @Tags courses
// @Produce json
// @Param department query string false "Filter by department"
// @Param search query string false "Match against course code or name"
// @Param available query bool false "Only courses with free seats"
// @Success 200 {object} dto.APIResponse{data=[]dto.CourseResponse} "Courses"
// @Router /courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	filter := repositories.CourseFilter{
		Department: ctx.Query("department"),
		Search:     ctx.Query("search"),
	}
	if available, err := strconv.ParseBool(ctx.DefaultQuery("available", "false")); err == nil {
		filter.OnlyAvailable = available
	}

	courses, err := c.courseService.ListCourses(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewCourseListResponse(courses), ""))
}

// GetCourse handles single course lookups
// @Summary Get a course
// @Description Returns one catalog entry by ID
// @Tags courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=dto.CourseResponse} "Course"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	course, err := c.courseService.GetCourse(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewCourseResponse(course), ""))
}

// UpdateCourse handles catalog field updates
// @Summary Update a course
// @Description Updates catalog fields of a course. Seat counters are managed through /courses/{id}/seats. Admin only.
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param request body dto.UpdateCourseRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.CourseResponse} "Course updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{id} [patch]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	caller, _ := middleware.CallerFrom(ctx)

	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	update := repositories.CourseUpdate{
		Name:          req.Name,
		Description:   req.Description,
		Department:    req.Department,
		Credits:       req.Credits,
		Instructor:    req.Instructor,
		Prerequisites: req.Prerequisites,
	}
	if req.Schedule != nil {
		schedule := dto.ToScheduleSlots(*req.Schedule)
		update.Schedule = &schedule
	}

	course, err := c.courseService.UpdateCourse(ctx.Request.Context(), caller, id, update)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewCourseResponse(course), "Course updated"))
}

// DeleteCourse handles course removal
// @Summary Delete a course
// @Description Removes a course from the catalog. Fails while the course has active registrations. Admin only.
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse "Course deleted"
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 409 {object} dto.ErrorResponse "Course has active registrations"
// @Router /courses/{id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	caller, _ := middleware.CallerFrom(ctx)

	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.courseService.DeleteCourse(ctx.Request.Context(), caller, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nil, "Course deleted"))
}

// UpdateSeats handles seat counter overrides
// @Summary Override course seat counters
// @Description Sets total and available seats. Available is clamped into [0, total]. Admin only.
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param request body dto.UpdateSeatsRequest true "Seat counters"
// @Success 200 {object} dto.APIResponse{data=dto.CourseResponse} "Seats updated"
// @Failure 400 {object} dto.ErrorResponse "Negative seat counts"
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{id}/seats [put]
func (c *CourseController) UpdateSeats(ctx *gin.Context) {
	caller, _ := middleware.CallerFrom(ctx)

	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateSeatsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	course, err := c.registrationService.UpdateSeats(ctx.Request.Context(), caller, id, req.TotalSeats, req.AvailableSeats)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewCourseResponse(course), "Seats updated"))
}

// GetWaitlist handles waitlist queries
// @Summary Get the course waitlist
// @Description Returns waitlisted student IDs in FIFO order. Admin only.
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=[]int64} "Waitlisted student IDs"
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{id}/waitlist [get]
func (c *CourseController) GetWaitlist(ctx *gin.Context) {
	caller, _ := middleware.CallerFrom(ctx)

	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	waitlist, err := c.courseService.Waitlist(ctx.Request.Context(), caller, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(waitlist, ""))
}

// ListCourseRegistrations handles per-course ledger queries
// @Summary List registrations for a course
// @Description Returns every ledger entry referencing the course. Admin only.
// @Tags courses, registrations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.RegistrationResponse} "Registrations"
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{id}/registrations [get]
func (c *CourseController) ListCourseRegistrations(ctx *gin.Context) {
	caller, _ := middleware.CallerFrom(ctx)

	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	registrations, err := c.registrationService.ListCourseRegistrations(ctx.Request.Context(), caller, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewRegistrationListResponse(registrations), ""))
}

// pathID parses an int64 path parameter, writing the 400 itself on failure.
func pathID(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name+" parameter")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}
