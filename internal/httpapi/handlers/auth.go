package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/YFrancis10/MeMantra-sub001/internal/auth"
	"github.com/YFrancis10/MeMantra-sub001/internal/common"
	"github.com/YFrancis10/MeMantra-sub001/internal/email"
	"github.com/YFrancis10/MeMantra-sub001/internal/models"
)

const resetTokenTTL = time.Hour

type loginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "email and password are required")
		return
	}
	addr := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := h.DB.Where("email = ?", addr).First(&user).Error; err != nil {
		// same answer for unknown email and wrong password
		common.Fail(c, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		common.Fail(c, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := auth.SignJWT(user.ID, h.Cfg.JWTSecret, tokenTTL)
	if err != nil {
		h.logError(c, "token sign failed", err)
		common.Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	common.OK(c, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"token":    token,
	})
}

type googleSignInReq struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username"`
}

// GoogleSignIn finds or creates the account for a Google-verified identity.
// Token verification against Google happens upstream; this endpoint receives
// the already-resolved profile.
func (h *Handler) GoogleSignIn(c *gin.Context) {
	var req googleSignInReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "a valid email is required")
		return
	}
	addr := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	err := h.DB.Where("email = ?", addr).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		username, aerr := h.allocateUsername(c, req.Username)
		if aerr != nil {
			h.logError(c, "username allocation failed", aerr)
			common.Fail(c, http.StatusInternalServerError, "internal server error")
			return
		}
		user = models.User{
			Email:        addr,
			Username:     username,
			PasswordHash: "-", // no local password for google accounts
			AuthProvider: models.ProviderGoogle,
		}
		if cerr := h.DB.Create(&user).Error; cerr != nil {
			h.logError(c, "google user create failed", cerr)
			common.Fail(c, http.StatusInternalServerError, "internal server error")
			return
		}
	} else if err != nil {
		h.logError(c, "user lookup failed", err)
		common.Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	token, err := auth.SignJWT(user.ID, h.Cfg.JWTSecret, tokenTTL)
	if err != nil {
		h.logError(c, "token sign failed", err)
		common.Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	common.OK(c, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"token":    token,
	})
}

type forgotPasswordReq struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPassword mails a single-use reset token. An unknown email gets the
// same success answer so the endpoint cannot be used to probe accounts.
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "a valid email is required")
		return
	}
	addr := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := h.DB.Where("email = ?", addr).First(&user).Error; err != nil {
		common.OKMessage(c, "if the account exists, a reset mail has been sent", nil)
		return
	}

	reset := models.PasswordResetToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if err := h.DB.Create(&reset).Error; err != nil {
		h.logError(c, "reset token create failed", err)
		common.Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	go func(to, token string) {
		subject := "MeMantra password reset"
		body := "Hello,\n\n" +
			"Use this code to reset your password: " + token + "\n\n" +
			"It expires in one hour. If you did not request a reset, ignore this mail.\n\n" +
			"MeMantra\n"
		_ = email.SendText(h.SMTPSetting, to, subject, body)
	}(user.Email, reset.Token)

	common.OKMessage(c, "if the account exists, a reset mail has been sent", nil)
}

type resetPasswordReq struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req resetPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "token and a new password of 8+ characters are required")
		return
	}

	var reset models.PasswordResetToken
	if err := h.DB.Where("token = ?", req.Token).First(&reset).Error; err != nil {
		common.Fail(c, http.StatusNotFound, "reset token not found")
		return
	}
	if reset.UsedAt != nil || time.Now().After(reset.ExpiresAt) {
		common.Fail(c, http.StatusBadRequest, "reset token expired or already used")
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		h.logError(c, "password hash failed", err)
		common.Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := h.DB.Model(&models.User{}).Where("id = ?", reset.UserID).
		Update("password_hash", hash).Error; err != nil {
		h.logError(c, "password update failed", err)
		common.Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	now := time.Now()
	if err := h.DB.Model(&reset).Update("used_at", &now).Error; err != nil {
		h.logError(c, "reset token consume failed", err)
		common.Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	common.OKMessage(c, "password updated", nil)
}
