// Package server contain implementation of go-gin-server and each route handlers
package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	// Init swagger doc
	_ "jobboard-backend/docs"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"jobboard-backend/internal/auth"
	"jobboard-backend/internal/controller/company"
	"jobboard-backend/internal/controller/job"
	"jobboard-backend/internal/controller/user"
	"jobboard-backend/internal/middleware"
	"jobboard-backend/internal/model"
	"jobboard-backend/internal/validation"
)

// RegisterRoutes will register each http endpoint routes to bound Server instance
func (s *MyServer) RegisterRoutes() http.Handler {
	middleware.RegisterMetrics(prometheus.DefaultRegisterer)

	r := gin.New()
	r.Use(
		gin.Logger(),
		middleware.Recovery(),
		middleware.Metrics(),
		middleware.ErrorHandler(),
		middleware.SafeHeader(),
		cors.New(cors.Config{
			AllowOrigins:     s.Config.AllowOrigins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS", "PATCH"},
			AllowHeaders:     []string{"Accept", "Content-Type", s.Tokens.Header},
			AllowCredentials: true,
		}),
	)
	r.HandleMethodNotAllowed = true
	r.NoRoute(middleware.NotFound)
	r.NoMethod(middleware.NotFound)

	lAuth := auth.NewLocalAuthHandler(s.DB, s.Tokens, s.Blacklist, s.Mailer, s.Config.HashCost, s.Config.OTPTTL)
	uc := user.NewUserController(s.DB)
	cc := company.NewCompanyController(s.DB)
	jc := job.NewJobController(s.DB, s.Storage)

	hr := []model.Role{model.RoleCompanyHR}
	anyone := []model.Role{model.RoleCompanyHR, model.RoleUser}
	applicant := []model.Role{model.RoleUser}

	r.GET("/health", s.healthHandler)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	userRoute := r.Group("/users")
	{
		userRoute.POST("", s.public(auth.SignUpSchema, lAuth.SignUp)...)
		userRoute.POST("/signIn", s.public(auth.SignInSchema, lAuth.SignIn)...)
		userRoute.POST("/request-Password-Reset", s.public(auth.ResetSchema, lAuth.RequestPasswordReset)...)
		userRoute.POST("/verifyNewPass", s.public(auth.VerifyNewPassSchema, lAuth.VerifyNewPassword)...)
		userRoute.GET("/profile/:userId", s.public(user.ProfileSchema, uc.GetProfile)...)
		userRoute.GET("/recoveryEmailAccounts/:recoveryEmail", s.public(user.RecoveryEmailSchema, uc.GetRecoveryEmailAccounts)...)

		userRoute.POST("/signOut", s.authed(auth.SignOutSchema, lAuth.SignOut)...)
		userRoute.PATCH("/changePassword", s.authed(auth.ChangePasswordSchema, lAuth.ChangePassword)...)
		userRoute.PATCH("", s.authed(user.UpdateUserSchema, uc.UpdateUser)...)
		userRoute.DELETE("", s.authed(user.DeleteUserSchema, uc.DeleteUser)...)
		userRoute.GET("/:id", s.authed(user.GetUserSchema, uc.GetUser)...)
	}

	companyRoute := r.Group("/companies")
	{
		companyRoute.POST("/addCompany", s.authed(company.AddCompanySchema, cc.AddCompany, hr...)...)
		companyRoute.PATCH("", s.authed(company.UpdateCompanySchema, cc.UpdateCompany, hr...)...)
		companyRoute.DELETE("", s.authed(company.DeleteCompanySchema, cc.DeleteCompany, hr...)...)
		companyRoute.GET("", s.authed(company.SearchSchema, cc.SearchCompanies, hr...)...)
		companyRoute.GET("/getApplications/:id", s.authed(company.GetApplicationsSchema, cc.GetApplications, hr...)...)
		companyRoute.GET("/:id", s.authed(company.GetCompanySchema, cc.GetCompany, hr...)...)
	}

	jobRoute := r.Group("/jobs")
	{
		jobRoute.POST("", s.authed(job.AddJobSchema, jc.AddJob, hr...)...)
		jobRoute.PATCH("", s.authed(job.UpdateJobSchema, jc.UpdateJob, hr...)...)
		jobRoute.DELETE("", s.authed(job.DeleteJobSchema, jc.DeleteJob, hr...)...)
		jobRoute.GET("", s.authed(job.ListJobsSchema, jc.ListJobs, anyone...)...)
		jobRoute.GET("/getJobs", s.authed(job.CompanyJobsSchema, jc.JobsForCompany, anyone...)...)
		jobRoute.GET("/filteredJobs", s.authed(job.FilterSchema, jc.FilteredJobs, anyone...)...)
		jobRoute.POST("/apply", append(
			[]gin.HandlerFunc{middleware.SizeLimit(s.Config.MaxUploadBytes)},
			s.authed(job.ApplySchema(s.Config.MaxUploadBytes), jc.Apply, applicant...)...,
		)...)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// public validates the request before the handler.
func (s *MyServer) public(schema validation.Schema, h gin.HandlerFunc) []gin.HandlerFunc {
	return []gin.HandlerFunc{validation.Request(schema), h}
}

// authed chains validator, auth gate, denylist check and, when roles are
// given, the role gate. A missing token is left to the auth gate's 401.
func (s *MyServer) authed(schema validation.Schema, h gin.HandlerFunc, roles ...model.Role) []gin.HandlerFunc {
	chain := []gin.HandlerFunc{
		validation.Request(schema),
		middleware.RequireAuth(s.DB, s.Tokens),
		middleware.JwtBlacklistCheck(s.Blacklist),
	}
	if len(roles) > 0 {
		chain = append(chain, middleware.CheckRole(roles...))
	}
	return append(chain, h)
}

// healthHandler reports database connection statistics.
// @Summary Database health
// @Tags Operations
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (s *MyServer) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.DB.Health())
}
