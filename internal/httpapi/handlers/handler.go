package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/YFrancis10/MeMantra-sub001/internal/auth"
	"github.com/YFrancis10/MeMantra-sub001/internal/catalog"
	"github.com/YFrancis10/MeMantra-sub001/internal/chat"
	"github.com/YFrancis10/MeMantra-sub001/internal/collections"
	"github.com/YFrancis10/MeMantra-sub001/internal/common"
	"github.com/YFrancis10/MeMantra-sub001/internal/config"
	"github.com/YFrancis10/MeMantra-sub001/internal/email"
	"github.com/YFrancis10/MeMantra-sub001/internal/httpapi/middleware"
	"github.com/YFrancis10/MeMantra-sub001/internal/models"
	"github.com/YFrancis10/MeMantra-sub001/internal/notify"
	"github.com/YFrancis10/MeMantra-sub001/internal/pkg/logger"
	"github.com/YFrancis10/MeMantra-sub001/internal/store/redisstore"
)

type Handler struct {
	DB          *gorm.DB
	Cfg         config.Config
	Redis       *redisstore.Store
	Log         *logger.Logger
	Policy      *auth.Policy
	SMTPSetting email.SMTPConfig

	ChatSvc        *chat.Service
	CatalogSvc     *catalog.Service
	CollectionsSvc *collections.Service
	NotifySvc      *notify.Service
}

// NewHandler wires the domain services. pub may be nil (no queue in dev);
// message sends then skip push enqueueing.
func NewHandler(db *gorm.DB, cfg config.Config, rds *redisstore.Store, pub notify.Publisher, log *logger.Logger) *Handler {
	catalogRepo := catalog.NewRepo(db)
	notifySvc := notify.NewService(notify.NewRepo(db), notify.NewExpoClient(cfg.ExpoPushURL), pub, log)
	chatSvc := chat.NewService(chat.NewRepo(db), notifySvc)
	catalogSvc := catalog.NewService(catalogRepo)
	collectionsSvc := collections.NewService(collections.NewRepo(db), catalogRepo)

	return &Handler{
		DB:     db,
		Cfg:    cfg,
		Redis:  rds,
		Log:    log,
		Policy: auth.NewPolicy(cfg.AdminEmails),
		SMTPSetting: email.SMTPConfig{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.SMTPFrom,
		},
		ChatSvc:        chatSvc,
		CatalogSvc:     catalogSvc,
		CollectionsSvc: collectionsSvc,
		NotifySvc:      notifySvc,
	}
}

func userIDFromContext(c *gin.Context) (uint64, bool) {
	v, ok := c.Get(middleware.UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}

// optionalUserID is for public endpoints that personalize when a session is
// present.
func optionalUserID(c *gin.Context) uint64 {
	id, _ := userIDFromContext(c)
	return id
}

func (h *Handler) currentUser(c *gin.Context) (*models.User, error) {
	uid, ok := userIDFromContext(c)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	var u models.User
	if err := h.DB.WithContext(c.Request.Context()).First(&u, uid).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// isAdmin resolves the acting user and checks the configured admin set.
func (h *Handler) isAdmin(c *gin.Context) (bool, error) {
	u, err := h.currentUser(c)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return h.Policy.IsAdmin(u.Email), nil
}

// parseIDParam fails the request with 400 when the path segment is not a
// positive integer.
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		common.Fail(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

func (h *Handler) logError(c *gin.Context, op string, err error) {
	if h.Log == nil {
		return
	}
	h.Log.Error(op,
		"err", err,
		"path", c.Request.URL.Path,
		"request_id", c.GetString(middleware.RequestIDKey),
	)
}
