package pairing

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/anoixa/pos-admin/api/common"
	"github.com/anoixa/pos-admin/api/middleware"
	storesrepo "github.com/anoixa/pos-admin/database/repo/stores"
	pairingSvc "github.com/anoixa/pos-admin/internal/pairing"
	"github.com/gin-gonic/gin"
)

// Handler 配对码处理器
type Handler struct {
	service *pairingSvc.Service
	stores  *storesrepo.Repository
}

// NewHandler 创建配对码处理器
func NewHandler(service *pairingSvc.Service, stores *storesrepo.Repository) *Handler {
	return &Handler{
		service: service,
		stores:  stores,
	}
}

// ClaimRequest 设备认领请求
type ClaimRequest struct {
	Code  string `json:"code" binding:"required"`
	Type  string `json:"type"`
	Label string `json:"label"`
}

// IssueCode 为车道签发配对码
func (h *Handler) IssueCode(c *gin.Context) {
	storeID := c.Param("storeId")
	laneID := c.Param("laneId")
	userID := middleware.CurrentUserID(c)

	store, err := h.stores.GetStoreByID(c.Request.Context(), storeID)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to load store profile")
		return
	}
	if store == nil || store.OwnerUserID != userID {
		common.RespondError(c, http.StatusNotFound, "Store not found")
		return
	}

	result, err := h.service.Issue(c.Request.Context(), storeID, laneID, userID)
	if err != nil {
		if errors.Is(err, pairingSvc.ErrLaneNotFound) {
			common.RespondError(c, http.StatusNotFound, "Lane not found")
			return
		}
		common.RespondError(c, http.StatusInternalServerError, "Failed to generate pairing code")
		return
	}

	common.RespondSuccess(c, gin.H{
		"code":        result.Code,
		"expires_at":  result.ExpiresAt,
		"ttl_seconds": int(result.TTL.Seconds()),
	})
}

// Claim 未认证设备用配对码换取车道绑定和设备令牌
// 三种失败各自返回不同 kind，UI 据此展示不同文案
func (h *Handler) Claim(c *gin.Context) {
	var req ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondErrorKind(c, http.StatusBadRequest, "not_found", "Invalid request body")
		return
	}

	result, err := h.service.Claim(c.Request.Context(), req.Code, req.Type, req.Label, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, pairingSvc.ErrCodeNotFound):
			common.RespondErrorKind(c, http.StatusNotFound, "not_found", "Invalid or unknown code")
		case errors.Is(err, pairingSvc.ErrCodeExpired):
			common.RespondErrorKind(c, http.StatusGone, "expired", "Code expired. Generate a new one.")
		case errors.Is(err, pairingSvc.ErrCodeAlreadyClaimed):
			common.RespondErrorKind(c, http.StatusConflict, "already_claimed", "Code has already been used")
		default:
			common.RespondError(c, http.StatusInternalServerError, "Unable to verify code")
		}
		return
	}

	log.Printf("Device %s paired to lane %s", result.DeviceID, result.LaneID)
	common.RespondSuccess(c, result)
}
