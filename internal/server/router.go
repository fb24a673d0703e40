package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tasknest/internal/controllers"
	"tasknest/internal/middleware"
	"tasknest/internal/services"
	"tasknest/internal/session"
)

type Deps struct {
	Accounts *services.AccountService
	Todos    *services.TodoService
	Sessions session.Store
	Tokens   middleware.TokenVerifier
	Cookie   middleware.SessionCookie
	Registry *prometheus.Registry
	Logger   *slog.Logger
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(d.Logger))
	if d.Registry != nil {
		r.Use(middleware.NewMetrics(d.Registry).Handler())
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))
	}
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := controllers.NewAuthController(d.Accounts, d.Cookie, d.Logger)
	todos := controllers.NewTodoController(d.Todos, d.Logger)

	r.GET("/register", auth.RegisterPage)
	r.POST("/register", auth.Register)
	r.GET("/login", auth.LoginPage)
	r.POST("/login", auth.Login)
	r.POST("/logout", auth.Logout)
	r.GET("/forgot-password", auth.ForgotPasswordPage)
	r.POST("/forgot-password", auth.ForgotPassword)
	r.GET("/reset-password/:email", auth.ResetPasswordPage)
	r.POST("/reset-password", auth.ResetPassword)

	protected := r.Group("/")
	protected.Use(middleware.RequireAuth(d.Sessions, d.Tokens, d.Cookie, d.Logger))
	{
		protected.GET("/dashboard", auth.Dashboard)
		protected.POST("/profile", auth.EditProfile)
		protected.POST("/verify-email/request", auth.RequestVerification)
		protected.POST("/verify-email", auth.SubmitVerificationCode)

		protected.GET("/todos", todos.List)
		protected.POST("/add-todo", todos.Add)
		protected.POST("/edit-todo", todos.Edit)
		protected.POST("/delete-todo", todos.Delete)
	}
	return r
}
