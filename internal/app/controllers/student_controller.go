package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/campushub/registrar/internal/app/models/dto"
	"github.com/campushub/registrar/internal/app/services"
	"github.com/campushub/registrar/internal/middleware"
)

// StudentController handles student record operations
type StudentController struct {
	studentService *services.StudentService
	logger         zerolog.Logger
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService *services.StudentService, logger zerolog.Logger) *StudentController {
	return &StudentController{
		studentService: studentService,
		logger:         logger,
	}
}

// ListStudents handles student listing
// @Summary List students
// @Description Returns every student record. Admin only.
// @Tags students
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.StudentResponse} "Students"
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Router /students [get]
func (c *StudentController) ListStudents(ctx *gin.Context) {
	caller, _ := middleware.CallerFrom(ctx)

	students, err := c.studentService.ListStudents(ctx.Request.Context(), caller)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewStudentListResponse(students), ""))
}

// GetStudent handles single student lookups
// @Summary Get a student
// @Description Returns one student record. Students can only read their own record.
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.StudentResponse} "Student"
// @Failure 403 {object} dto.ErrorResponse "Not the student's own record"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id} [get]
func (c *StudentController) GetStudent(ctx *gin.Context) {
	caller, _ := middleware.CallerFrom(ctx)

	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	student, err := c.studentService.GetStudent(ctx.Request.Context(), caller, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewStudentResponse(student), ""))
}

// GetMe handles the caller's own student record
// @Summary Get own student record
// @Description Returns the student record attached to the authenticated account
// @Tags students
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.StudentResponse} "Student"
// @Failure 404 {object} dto.ErrorResponse "No student record for this account"
// @Router /students/me [get]
func (c *StudentController) GetMe(ctx *gin.Context) {
	caller, _ := middleware.CallerFrom(ctx)

	student, err := c.studentService.GetStudentByUser(ctx.Request.Context(), caller.UserID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewStudentResponse(student), ""))
}

// CompleteCourse handles academic history updates
// @Summary Record a completed course
// @Description Appends a course code to the student's completed set. Re-adding a code is a no-op. Admin only.
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param request body dto.CompleteCourseRequest true "Course code"
// @Success 200 {object} dto.APIResponse{data=dto.StudentResponse} "Student updated"
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Failure 404 {object} dto.ErrorResponse "Student or course not found"
// @Router /students/{id}/completed-courses [post]
func (c *StudentController) CompleteCourse(ctx *gin.Context) {
	caller, _ := middleware.CallerFrom(ctx)

	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.CompleteCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	student, err := c.studentService.AddCompletedCourse(ctx.Request.Context(), caller, id, req.CourseCode)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewStudentResponse(student), "Completed course recorded"))
}
