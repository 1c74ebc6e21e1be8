package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/bnu-scit/registrar-api/api/swagger"
	"github.com/bnu-scit/registrar-api/internal/handler"
	"github.com/bnu-scit/registrar-api/internal/middleware"
	"github.com/bnu-scit/registrar-api/internal/models"
	"github.com/bnu-scit/registrar-api/internal/repository"
	"github.com/bnu-scit/registrar-api/internal/service"
	"github.com/bnu-scit/registrar-api/pkg/cache"
	"github.com/bnu-scit/registrar-api/pkg/config"
	"github.com/bnu-scit/registrar-api/pkg/database"
	"github.com/bnu-scit/registrar-api/pkg/logger"
	corsmiddleware "github.com/bnu-scit/registrar-api/pkg/middleware/cors"
	reqidmiddleware "github.com/bnu-scit/registrar-api/pkg/middleware/requestid"
)

// @title BNU SCIT Registrar API
// @version 1.0.0
// @description Course scheduling, enrollment and gradebook service
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	// Repositories
	studentRepo := repository.NewStudentRepository(db)
	facultyRepo := repository.NewFacultyRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	classroomRepo := repository.NewClassroomRepository(db)
	timeslotRepo := repository.NewTimeslotRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	markRepo := repository.NewMarkRepository(db)

	// The catalog cache is optional; the service falls back to the store
	// when Redis is unreachable at startup.
	var cacheSvc *service.CacheService
	if cfg.Catalog.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, catalog cache disabled", "error", err)
		} else {
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			defer cacheRepo.Close() //nolint:errcheck
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Catalog.CacheTTL, logr, true)
		}
	}

	// Services
	verifier := service.BcryptVerifier{}
	authSvc := service.NewAuthService(studentRepo, facultyRepo, verifier, validate, logr, service.AuthConfig{
		Secret:            cfg.JWT.Secret,
		Expiration:        cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
		AdminEmail:        cfg.Admin.Email,
		AdminPasswordHash: cfg.Admin.PasswordHash,
	})
	catalogSvc := service.NewCatalogService(scheduleRepo, studentRepo, cacheSvc, logr)
	scheduleSvc := service.NewScheduleService(scheduleRepo, courseRepo, facultyRepo, classroomRepo, timeslotRepo, catalogSvc, metricsSvc, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, studentRepo, metricsSvc, validate, logr)
	availabilitySvc := service.NewAvailabilityService(scheduleRepo, classroomRepo, courseRepo, timeslotRepo, logr)
	studentSvc := service.NewStudentService(studentRepo, verifier, validate, logr)
	facultySvc := service.NewFacultyService(facultyRepo, verifier, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, validate, logr)
	classroomSvc := service.NewClassroomService(classroomRepo, validate, logr)
	timeslotSvc := service.NewTimeslotService(timeslotRepo, validate, logr)
	markSvc := service.NewMarkService(markRepo, validate, logr)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)
	catalogHandler := handler.NewCatalogHandler(catalogSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	facultyHandler := handler.NewFacultyHandler(facultySvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	classroomHandler := handler.NewClassroomHandler(classroomSvc)
	timeslotHandler := handler.NewTimeslotHandler(timeslotSvc)
	markHandler := handler.NewMarkHandler(markSvc)
	exportHandler := handler.NewExportHandler(enrollmentSvc, scheduleSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))

	authed.GET("/auth/me", authHandler.Me)
	authed.PUT("/auth/password", authHandler.ChangePassword)

	admin := middleware.RequireRoles(models.RoleAdmin)
	adminOrFaculty := middleware.RequireRoles(models.RoleAdmin, models.RoleFaculty)

	// Scheduling
	authed.GET("/schedules", adminOrFaculty, scheduleHandler.List)
	authed.POST("/schedules", admin, scheduleHandler.Assign)
	authed.GET("/schedules/:id", adminOrFaculty, scheduleHandler.Get)
	authed.DELETE("/schedules/:id", admin, scheduleHandler.Remove)
	authed.GET("/schedules/:id/seats", enrollmentHandler.Seats)
	authed.GET("/availability/faculty", admin, availabilityHandler.Faculty)
	authed.GET("/availability/rooms", admin, availabilityHandler.Rooms)
	authed.GET("/availability/courses", admin, availabilityHandler.UnscheduledCourses)

	// Enrollment
	authed.GET("/catalog/sections", catalogHandler.Sections)
	authed.POST("/enrollments", middleware.RequireRoles(models.RoleAdmin, models.RoleStudent), enrollmentHandler.Enroll)
	authed.DELETE("/enrollments/:id", middleware.RequireRoles(models.RoleAdmin, models.RoleStudent), enrollmentHandler.Withdraw)

	// Student views
	authed.GET("/me/timetable", middleware.RequireRoles(models.RoleStudent), enrollmentHandler.MyTimetable)
	authed.GET("/me/courses", middleware.RequireRoles(models.RoleStudent), enrollmentHandler.MyCourses)

	// Faculty views
	authed.GET("/me/teaching/timetable", middleware.RequireRoles(models.RoleFaculty), scheduleHandler.MyTimetable)
	authed.GET("/me/teaching/courses", middleware.RequireRoles(models.RoleFaculty), scheduleHandler.MyCourses)
	authed.GET("/courses/:code/roster", adminOrFaculty, enrollmentHandler.Roster)

	// Entity administration
	authed.GET("/students", admin, studentHandler.List)
	authed.POST("/students", admin, studentHandler.Create)
	authed.GET("/students/:id", middleware.RBAC(string(models.RoleAdmin), "SELF"), studentHandler.Get)
	authed.DELETE("/students/:id", admin, studentHandler.Delete)
	authed.GET("/students/:id/timetable", admin, enrollmentHandler.StudentTimetable)
	authed.POST("/students/:id/password/reset", admin, authHandler.ResetStudentPassword)
	authed.GET("/faculty", admin, facultyHandler.List)
	authed.POST("/faculty", admin, facultyHandler.Create)
	authed.GET("/faculty/:id", middleware.RBAC(string(models.RoleAdmin), "SELF"), facultyHandler.Get)
	authed.DELETE("/faculty/:id", admin, facultyHandler.Delete)
	authed.GET("/faculty/:id/timetable", admin, scheduleHandler.FacultyTimetable)
	authed.POST("/faculty/:id/password/reset", admin, authHandler.ResetFacultyPassword)
	authed.GET("/courses", adminOrFaculty, courseHandler.List)
	authed.POST("/courses", admin, courseHandler.Create)
	authed.GET("/courses/:code", courseHandler.Get)
	authed.DELETE("/courses/:code", admin, courseHandler.Delete)
	authed.GET("/classrooms", admin, classroomHandler.List)
	authed.POST("/classrooms", admin, classroomHandler.Create)
	authed.GET("/classrooms/:id", admin, classroomHandler.Get)
	authed.DELETE("/classrooms/:id", admin, classroomHandler.Delete)
	authed.GET("/timeslots", timeslotHandler.List)
	authed.POST("/timeslots", admin, timeslotHandler.Create)
	authed.DELETE("/timeslots/:id", admin, timeslotHandler.Delete)

	// Gradebook
	if cfg.Marks.Enabled {
		authed.PUT("/marks", adminOrFaculty, markHandler.Record)
		authed.GET("/courses/:code/assignments", adminOrFaculty, markHandler.Assignments)
		authed.GET("/courses/:code/marks", adminOrFaculty, markHandler.AssignmentMarks)
		authed.GET("/me/marks", middleware.RequireRoles(models.RoleStudent), markHandler.MyMarks)
		authed.GET("/students/:id/marks", adminOrFaculty, markHandler.StudentMarks)
	}

	// Exports
	if cfg.Exports.Enabled {
		authed.GET("/exports/courses/:code/roster", adminOrFaculty, exportHandler.Roster)
		authed.GET("/exports/faculty/:id/timetable", adminOrFaculty, exportHandler.FacultyTimetable)
		authed.GET("/exports/students/:id/timetable", middleware.RBAC(string(models.RoleAdmin), "SELF"), exportHandler.StudentTimetable)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
