package handlers

import (
	"crypto/rand"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/YFrancis10/MeMantra-sub001/internal/auth"
	"github.com/YFrancis10/MeMantra-sub001/internal/common"
	"github.com/YFrancis10/MeMantra-sub001/internal/email"
	"github.com/YFrancis10/MeMantra-sub001/internal/models"
	"github.com/YFrancis10/MeMantra-sub001/internal/notify"
)

const tokenTTL = 24 * time.Hour

type createUserReq struct {
	Email    string `json:"email" binding:"required,email"`
	Captcha  string `json:"captcha" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Username string `json:"username"`
}

// generate an 11 char random username
func randomUsername11() (string, error) {
	const letters = "abcdefghijklmnopqrstuvwxyz0123456789"
	out := make([]byte, 11)
	for i := 0; i < 11; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
		if err != nil {
			return "", err
		}
		out[i] = letters[n.Int64()]
	}
	return string(out), nil
}

func (h *Handler) allocateUsername(c *gin.Context, wanted string) (string, error) {
	if wanted = strings.TrimSpace(wanted); wanted != "" {
		var cnt int64
		if err := h.DB.Model(&models.User{}).Where("username = ?", wanted).Count(&cnt).Error; err != nil {
			return "", err
		}
		if cnt == 0 {
			return wanted, nil
		}
		// fall through to a generated name on collision
	}
	for i := 0; i < 5; i++ {
		u, err := randomUsername11()
		if err != nil {
			return "", err
		}
		var cnt int64
		if err := h.DB.Model(&models.User{}).Where("username = ?", u).Count(&cnt).Error; err != nil {
			return "", err
		}
		if cnt == 0 {
			return u, nil
		}
	}
	return "", gorm.ErrInvalidData
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "email, captcha and a password of 8+ characters are required")
		return
	}
	addr := strings.ToLower(strings.TrimSpace(req.Email))

	code, err := h.Redis.GetCaptcha(c.Request.Context(), addr)
	if err != nil {
		if err == redis.Nil {
			common.Fail(c, http.StatusBadRequest, "captcha expired or not found")
			return
		}
		h.logError(c, "captcha lookup failed", err)
		common.Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	if code != req.Captcha {
		common.Fail(c, http.StatusBadRequest, "invalid captcha")
		return
	}
	_ = h.Redis.DeleteCaptcha(c.Request.Context(), addr)

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logError(c, "password hash failed", err)
		common.Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	username, err := h.allocateUsername(c, req.Username)
	if err != nil {
		h.logError(c, "username allocation failed", err)
		common.Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	user := models.User{
		Email:        addr,
		Username:     username,
		PasswordHash: hash,
		AuthProvider: models.ProviderLocal,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		common.Fail(c, http.StatusBadRequest, "failed to create user (maybe email already exists)")
		return
	}

	token, err := auth.SignJWT(user.ID, h.Cfg.JWTSecret, tokenTTL)
	if err != nil {
		h.logError(c, "token sign failed", err)
		common.Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	go func(to, uname string) {
		subject := "Welcome to MeMantra - Your account is ready"
		body := "Hello,\n\n" +
			"Welcome to MeMantra. Your account has been successfully created.\n\n" +
			"Username: " + uname + "\n\n" +
			"If you did not request this account, please contact our support immediately.\n\n" +
			"Best regards,\n" +
			"MeMantra\n"
		_ = email.SendText(h.SMTPSetting, to, subject, body)
	}(user.Email, user.Username)

	common.Created(c, gin.H{
		"id":       user.ID,
		"email":    user.Email,
		"username": user.Username,
		"token":    token,
	})
}

func (h *Handler) GetUserByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			common.Fail(c, http.StatusNotFound, "user not found")
			return
		}
		h.logError(c, "user lookup failed", err)
		common.Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	common.OK(c, gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"created_at": user.CreatedAt,
	})
}

func (h *Handler) Me(c *gin.Context) {
	user, err := h.currentUser(c)
	if err != nil {
		common.Fail(c, http.StatusUnauthorized, "authentication required")
		return
	}
	common.OK(c, gin.H{
		"id":            user.ID,
		"username":      user.Username,
		"email":         user.Email,
		"auth_provider": user.AuthProvider,
		"created_at":    user.CreatedAt,
	})
}

type updateMeReq struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
}

func (h *Handler) UpdateMe(c *gin.Context) {
	user, err := h.currentUser(c)
	if err != nil {
		common.Fail(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req updateMeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "username of 3-64 characters is required")
		return
	}

	user.Username = strings.TrimSpace(req.Username)
	if err := h.DB.Save(user).Error; err != nil {
		common.Fail(c, http.StatusBadRequest, "username already taken")
		return
	}
	common.OK(c, gin.H{"id": user.ID, "username": user.Username})
}

type updatePasswordReq struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

func (h *Handler) UpdatePassword(c *gin.Context) {
	user, err := h.currentUser(c)
	if err != nil {
		common.Fail(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req updatePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "old password and a new password of 8+ characters are required")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.OldPassword) {
		common.Fail(c, http.StatusForbidden, "old password does not match")
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		h.logError(c, "password hash failed", err)
		common.Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	if err := h.DB.Model(user).Update("password_hash", hash).Error; err != nil {
		h.logError(c, "password update failed", err)
		common.Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	common.OKMessage(c, "password updated", nil)
}

type updateEmailReq struct {
	Password string `json:"password" binding:"required"`
	NewEmail string `json:"new_email" binding:"required,email"`
}

func (h *Handler) UpdateEmail(c *gin.Context) {
	user, err := h.currentUser(c)
	if err != nil {
		common.Fail(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req updateEmailReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "password and a valid new email are required")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		common.Fail(c, http.StatusForbidden, "password does not match")
		return
	}

	user.Email = strings.ToLower(strings.TrimSpace(req.NewEmail))
	if err := h.DB.Save(user).Error; err != nil {
		common.Fail(c, http.StatusBadRequest, "email already in use")
		return
	}
	common.OK(c, gin.H{"id": user.ID, "email": user.Email})
}

type updatePushTokenReq struct {
	PushToken string `json:"push_token" binding:"required"`
}

// UpdatePushToken registers the device token used for pushes. Tokens are
// validated locally; nothing is sent to the gateway here.
func (h *Handler) UpdatePushToken(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req updatePushTokenReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "push_token is required")
		return
	}
	if !notify.IsValidPushToken(req.PushToken) {
		common.Fail(c, http.StatusBadRequest, "push token must look like ExponentPushToken[...] or ExpoPushToken[...]")
		return
	}

	if err := h.DB.Model(&models.User{}).Where("id = ?", uid).
		Update("push_token", req.PushToken).Error; err != nil {
		h.logError(c, "push token update failed", err)
		common.Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	common.OKMessage(c, "push token registered", nil)
}

// DeleteMe hard-deletes the account. Related rows are the store's cascade
// concern, not enforced here.
func (h *Handler) DeleteMe(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, "authentication required")
		return
	}
	res := h.DB.Delete(&models.User{}, uid)
	if res.Error != nil {
		h.logError(c, "user delete failed", res.Error)
		common.Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	if res.RowsAffected == 0 {
		common.Fail(c, http.StatusNotFound, "user not found")
		return
	}
	common.OKMessage(c, "account deleted", nil)
}
