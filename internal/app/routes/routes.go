package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/campushub/registrar/internal/app/controllers"
	"github.com/campushub/registrar/internal/app/models"
	"github.com/campushub/registrar/internal/app/models/dto"
	"github.com/campushub/registrar/internal/middleware"
	"github.com/campushub/registrar/internal/pkg/realtime"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	courseController *controllers.CourseController,
	registrationController *controllers.RegistrationController,
	studentController *controllers.StudentController,
	wsHandler *realtime.Handler,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
	}

	// --- Public catalog reads ---
	v1.GET("/courses", courseController.ListCourses)
	v1.GET("/courses/:id", courseController.GetCourse)

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		courses := authenticated.Group("/courses")
		{
			// Registration engine operations
			courses.POST("/:id/register", registrationController.Register)
			courses.DELETE("/:id/register", registrationController.DropByCourse)
			courses.POST("/:id/waitlist", registrationController.SubscribeWaitlist)
			courses.DELETE("/:id/waitlist", registrationController.UnsubscribeWaitlist)
			courses.GET("/:id/prerequisites/:studentId", registrationController.CheckPrerequisites)

			// Admin-only catalog and override operations
			coursesAdmin := courses.Group("")
			coursesAdmin.Use(authMiddleware.RoleRequired(models.RoleAdmin))
			{
				coursesAdmin.POST("", courseController.CreateCourse)
				coursesAdmin.PATCH("/:id", courseController.UpdateCourse)
				coursesAdmin.DELETE("/:id", courseController.DeleteCourse)
				coursesAdmin.PUT("/:id/seats", courseController.UpdateSeats)
				coursesAdmin.GET("/:id/waitlist", courseController.GetWaitlist)
				coursesAdmin.GET("/:id/registrations", courseController.ListCourseRegistrations)
				coursesAdmin.POST("/:id/register/override", registrationController.AdminOverrideRegister)
			}
		}

		registrations := authenticated.Group("/registrations")
		{
			registrations.DELETE("/:id", registrationController.Drop)
		}

		students := authenticated.Group("/students")
		{
			students.GET("/me", studentController.GetMe)
			students.GET("/:id", studentController.GetStudent)
			students.GET("/:id/registrations", registrationController.ListStudentRegistrations)

			studentsAdmin := students.Group("")
			studentsAdmin.Use(authMiddleware.RoleRequired(models.RoleAdmin))
			{
				studentsAdmin.GET("", studentController.ListStudents)
				studentsAdmin.POST("/:id/completed-courses", studentController.CompleteCourse)
			}
		}

		// Real-time course availability subscriptions
		authenticated.GET("/ws/courses/:id", wsHandler.HandleConnection)
	}

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(200, dto.NewAPIResponse(gin.H{"status": "ok"}, ""))
	})
}
