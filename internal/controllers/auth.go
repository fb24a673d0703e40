package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tasknest/internal/middleware"
	"tasknest/internal/services"
	"tasknest/internal/validation"
)

type AuthController struct {
	accounts *services.AccountService
	cookie   middleware.SessionCookie
	logger   *slog.Logger
}

func NewAuthController(accounts *services.AccountService, cookie middleware.SessionCookie, logger *slog.Logger) *AuthController {
	return &AuthController{accounts: accounts, cookie: cookie, logger: logger}
}

func (a *AuthController) RegisterPage(c *gin.Context) {
	view(c, http.StatusOK, "register", gin.H{"error": nil})
}

func (a *AuthController) LoginPage(c *gin.Context) {
	view(c, http.StatusOK, "login", gin.H{"error": nil, "message": nil})
}

func (a *AuthController) ForgotPasswordPage(c *gin.Context) {
	view(c, http.StatusOK, "forgot-password", gin.H{"error": nil})
}

func (a *AuthController) ResetPasswordPage(c *gin.Context) {
	view(c, http.StatusOK, "reset-password", gin.H{"email": c.Param("email"), "error": nil})
}

func (a *AuthController) Register(c *gin.Context) {
	var p validation.RegisterInput
	if err := c.ShouldBind(&p); err != nil {
		view(c, http.StatusBadRequest, "register", gin.H{"error": msgBadInput})
		return
	}
	if _, err := a.accounts.Register(c.Request.Context(), p); err != nil {
		fail(c, a.logger, "register", err)
		return
	}
	view(c, http.StatusCreated, "login", gin.H{"message": "Registration successful. Please login."})
}

func (a *AuthController) Login(c *gin.Context) {
	var p validation.LoginInput
	if err := c.ShouldBind(&p); err != nil {
		view(c, http.StatusBadRequest, "login", gin.H{"error": msgBadInput})
		return
	}
	ctx := c.Request.Context()
	sess, err := a.accounts.Login(ctx, p, a.cookie.Read(c))
	if err != nil {
		// unknown email and wrong password look the same to the client
		if errors.Is(err, services.ErrUnknownEmail) {
			err = services.ErrInvalidCredential
		}
		fail(c, a.logger, "login", err)
		return
	}
	a.cookie.Set(c, sess.ID, time.Until(sess.ExpiresAt))

	dash, err := a.accounts.Dashboard(ctx, sess)
	if err != nil {
		fail(c, a.logger, "login", err)
		return
	}
	view(c, http.StatusOK, "dashboard", gin.H{"user": dash})
}

func (a *AuthController) Logout(c *gin.Context) {
	id := a.cookie.Read(c)
	a.cookie.Clear(c)
	if err := a.accounts.Logout(c.Request.Context(), id); err != nil {
		fail(c, a.logger, "", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "logged out"})
}

type forgotPayload struct {
	Email string `json:"email" form:"email" binding:"required"`
}

func (a *AuthController) ForgotPassword(c *gin.Context) {
	var p forgotPayload
	if err := c.ShouldBind(&p); err != nil {
		view(c, http.StatusBadRequest, "forgot-password", gin.H{"error": msgBadInput})
		return
	}
	path, err := a.accounts.RequestPasswordReset(c.Request.Context(), p.Email)
	if err != nil {
		fail(c, a.logger, "forgot-password", err)
		return
	}
	c.Redirect(http.StatusSeeOther, path)
}

type resetPayload struct {
	Email    string `json:"email" form:"email" binding:"required"`
	Password string `json:"password" form:"password"`
}

func (a *AuthController) ResetPassword(c *gin.Context) {
	var p resetPayload
	if err := c.ShouldBind(&p); err != nil {
		view(c, http.StatusBadRequest, "reset-password", gin.H{"error": msgBadInput})
		return
	}
	if err := a.accounts.ResetPassword(c.Request.Context(), p.Email, p.Password); err != nil {
		fail(c, a.logger, "reset-password", err)
		return
	}
	view(c, http.StatusOK, "login", gin.H{
		"error":   nil,
		"message": "Password has been reset successfully. Please login.",
	})
}

// Protected routes

func (a *AuthController) Dashboard(c *gin.Context) {
	dash, err := a.accounts.Dashboard(c.Request.Context(), middleware.CurrentSession(c))
	if err != nil {
		fail(c, a.logger, "dashboard", err)
		return
	}
	view(c, http.StatusOK, "dashboard", gin.H{"user": dash})
}

type profilePayload struct {
	Username string `json:"username" form:"username"`
}

func (a *AuthController) EditProfile(c *gin.Context) {
	var p profilePayload
	if err := c.ShouldBind(&p); err != nil {
		fail(c, a.logger, "", &validation.Error{Message: msgBadInput})
		return
	}
	sess := middleware.CurrentSession(c)
	if err := a.accounts.EditProfile(c.Request.Context(), sess, p.Username); err != nil {
		fail(c, a.logger, "", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "username": sess.Username})
}

func (a *AuthController) RequestVerification(c *gin.Context) {
	if err := a.accounts.RequestVerification(c.Request.Context(), middleware.CurrentSession(c)); err != nil {
		fail(c, a.logger, "", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "verification code sent to your email"})
}

type verifyPayload struct {
	Code string `json:"code" form:"code"`
}

func (a *AuthController) SubmitVerificationCode(c *gin.Context) {
	var p verifyPayload
	if err := c.ShouldBind(&p); err != nil {
		fail(c, a.logger, "", &validation.Error{Message: msgBadInput})
		return
	}
	sess := middleware.CurrentSession(c)
	if err := a.accounts.SubmitVerificationCode(c.Request.Context(), sess, p.Code); err != nil {
		fail(c, a.logger, "", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "isVerified": sess.IsVerified})
}
