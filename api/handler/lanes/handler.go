package lanes

import (
	"errors"
	"log"
	"net/http"

	"github.com/anoixa/pos-admin/api/common"
	"github.com/anoixa/pos-admin/api/middleware"
	storesrepo "github.com/anoixa/pos-admin/database/repo/stores"
	laneSvc "github.com/anoixa/pos-admin/internal/lanes"
	"github.com/anoixa/pos-admin/utils"
	"github.com/gin-gonic/gin"
)

// Handler 车道管理处理器
type Handler struct {
	service *laneSvc.Service
	stores  *storesrepo.Repository
}

// NewHandler 创建车道处理器
func NewHandler(service *laneSvc.Service, stores *storesrepo.Repository) *Handler {
	return &Handler{
		service: service,
		stores:  stores,
	}
}

// CreateLaneRequest 创建车道请求
type CreateLaneRequest struct {
	Name string `json:"name" binding:"required"`
}

// RenameLaneRequest 重命名车道请求
type RenameLaneRequest struct {
	Name string `json:"name" binding:"required"`
}

// GetCurrentStore 获取当前用户的门店
func (h *Handler) GetCurrentStore(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	store, err := h.stores.FirstStoreForOwner(c.Request.Context(), userID)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to load store profile")
		return
	}
	if store == nil {
		common.RespondError(c, http.StatusNotFound, "No store profile found")
		return
	}

	common.RespondSuccess(c, store)
}

// ListLanes 返回门店车道快照（设备已标注在线状态）
func (h *Handler) ListLanes(c *gin.Context) {
	storeID, ok := h.requireStore(c)
	if !ok {
		return
	}

	result, err := h.service.LoadLanes(c.Request.Context(), storeID)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to load store data")
		return
	}

	common.RespondSuccess(c, gin.H{"lanes": result})
}

// CreateLane 创建车道
func (h *Handler) CreateLane(c *gin.Context) {
	storeID, ok := h.requireStore(c)
	if !ok {
		return
	}

	var req CreateLaneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	lane, err := h.service.CreateLane(c.Request.Context(), storeID, req.Name)
	if err != nil {
		if errors.Is(err, laneSvc.ErrEmptyLaneName) {
			common.RespondError(c, http.StatusBadRequest, "Lane name must not be empty")
			return
		}
		common.RespondError(c, http.StatusInternalServerError, "Failed to create lane")
		return
	}

	log.Printf("Lane %s created in store %s: %s", lane.ID, storeID, utils.SanitizeLogName(lane.Name))
	common.RespondSuccess(c, lane)
}

// RenameLane 重命名车道
func (h *Handler) RenameLane(c *gin.Context) {
	storeID, ok := h.requireStore(c)
	if !ok {
		return
	}
	laneID := c.Param("laneId")

	var req RenameLaneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := h.service.RenameLane(c.Request.Context(), storeID, laneID, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, laneSvc.ErrEmptyLaneName):
			common.RespondError(c, http.StatusBadRequest, "Lane name must not be empty")
		case errors.Is(err, laneSvc.ErrLaneNotFound):
			common.RespondError(c, http.StatusNotFound, "Lane not found")
		default:
			common.RespondError(c, http.StatusInternalServerError, "Failed to rename lane")
		}
		return
	}

	common.RespondSuccessMessage(c, "Lane renamed", nil)
}

// ArchiveLane 归档车道并解绑其设备
func (h *Handler) ArchiveLane(c *gin.Context) {
	storeID, ok := h.requireStore(c)
	if !ok {
		return
	}
	laneID := c.Param("laneId")

	err := h.service.ArchiveLane(c.Request.Context(), storeID, laneID)
	if err != nil {
		if errors.Is(err, laneSvc.ErrLaneNotFound) {
			common.RespondError(c, http.StatusNotFound, "Lane not found")
			return
		}
		common.RespondError(c, http.StatusInternalServerError, "Failed to archive lane")
		return
	}

	common.RespondSuccessMessage(c, "Lane archived", nil)
}

// requireStore 校验路径里的门店属于当前用户
func (h *Handler) requireStore(c *gin.Context) (string, bool) {
	storeID := c.Param("storeId")
	userID := middleware.CurrentUserID(c)

	store, err := h.stores.GetStoreByID(c.Request.Context(), storeID)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to load store profile")
		return "", false
	}
	if store == nil || store.OwnerUserID != userID {
		common.RespondError(c, http.StatusNotFound, "Store not found")
		return "", false
	}
	return storeID, true
}
