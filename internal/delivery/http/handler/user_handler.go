package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"lms-backend/internal/auth"
	"lms-backend/internal/usecase/user"
	appErrors "lms-backend/pkg/errors"
	"lms-backend/pkg/utils"
)

type UserHandler struct {
	service *user.Service
	cookies *auth.CookiePolicy
}

func NewUserHandler(service *user.Service, cookies *auth.CookiePolicy) *UserHandler {
	return &UserHandler{service: service, cookies: cookies}
}

// RegisterRoutes mounts /user. Login and the reset endpoints sit behind
// authLimit; the profile endpoints behind authenticate.
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup, authLimit, authenticate gin.HandlerFunc) {
	userGroup := router.Group("/user")
	{
		userGroup.POST("/register", authLimit, h.Register)
		userGroup.POST("/login", authLimit, h.Login)
		userGroup.POST("/logout", h.Logout)
		userGroup.POST("/reset", authLimit, h.ForgotPassword)
		userGroup.POST("/reset/:resetToken", authLimit, h.ResetPassword)
	}

	profile := userGroup.Group("")
	profile.Use(authenticate)
	{
		profile.GET("/me", h.GetProfile)
		profile.POST("/change-password", h.ChangePassword)
		profile.PUT("/update/:id", h.UpdateProfile)
		profile.POST("/update/:id", h.UpdateProfile)
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req user.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	h.cookies.Attach(c, resp.Token)
	utils.SuccessResponse(c, http.StatusCreated, "User registered successfully", gin.H{"user": resp.User})
}

func (h *UserHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	h.cookies.Attach(c, resp.Token)
	utils.SuccessResponse(c, http.StatusOK, "User logged in successfully", gin.H{"user": resp.User})
}

func (h *UserHandler) Logout(c *gin.Context) {
	h.cookies.Clear(c)
	utils.SuccessResponse(c, http.StatusOK, "User logged out successfully", nil)
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	claims, ok := mustClaims(c)
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), claims.UserID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "User details", gin.H{"user": profile})
}

func (h *UserHandler) ForgotPassword(c *gin.Context) {
	var req user.ForgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	sentTo, err := h.service.ForgotPassword(c.Request.Context(), &req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK,
		fmt.Sprintf("Reset password token has been sent to %s successfully", sentTo), nil)
}

func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req user.ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), c.Param("resetToken"), &req); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Password changed successfully", nil)
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	claims, ok := mustClaims(c)
	if !ok {
		return
	}

	var req user.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), claims.UserID, &req); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Password changed successfully", nil)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	claims, ok := mustClaims(c)
	if !ok {
		return
	}

	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondError(c, appErrors.NotFound("User does not exist"))
		return
	}

	var req user.UpdateProfileRequest
	if !bind(c, &req) {
		return
	}

	file, ok := formFile(c, "avatar")
	if !ok {
		return
	}
	var avatar io.ReadSeeker
	if file != nil {
		defer file.Close()
		avatar = file
	}

	updated, err := h.service.UpdateProfile(c.Request.Context(), claims.UserID, claims.Role, targetID, &req, avatar)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "User details updated successfully", gin.H{"user": updated})
}
