package handlers

import (
	"crypto/rand"
	"math/big"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/YFrancis10/MeMantra-sub001/internal/common"
	"github.com/YFrancis10/MeMantra-sub001/internal/email"
)

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"pong": true})
}

func randomCaptcha6() (string, error) {
	const digits = "0123456789"
	out := make([]byte, 6)
	for i := range out {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		out[i] = digits[n.Int64()]
	}
	return string(out), nil
}

type sendCaptchaReq struct {
	Email string `json:"email" binding:"required,email"`
}

// SendCaptcha mails a registration code; the code lives in redis with a TTL
// and is consumed when the account is created.
func (h *Handler) SendCaptcha(c *gin.Context) {
	var req sendCaptchaReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "a valid email is required")
		return
	}
	addr := strings.ToLower(strings.TrimSpace(req.Email))

	code, err := randomCaptcha6()
	if err != nil {
		h.logError(c, "captcha generate failed", err)
		common.Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := h.Redis.SetCaptcha(c.Request.Context(), addr, code); err != nil {
		h.logError(c, "captcha store failed", err)
		common.Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	go func(to, code string) {
		subject := "Your MeMantra verification code"
		body := "Hello,\n\n" +
			"Your verification code is: " + code + "\n\n" +
			"It expires in 10 minutes. If you did not request it, you can ignore this mail.\n\n" +
			"MeMantra\n"
		_ = email.SendText(h.SMTPSetting, to, subject, body)
	}(addr, code)

	common.OKMessage(c, "verification code sent", nil)
}
