package handler

import (
	"net/http"
	"strings"

	"teamtrack/internal/middleware"
	"teamtrack/internal/models"
	"teamtrack/internal/rbac"
	"teamtrack/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// BoardHandler serves board CRUD. Members read; workspace-settings roles write.
type BoardHandler struct {
	DB *gorm.DB
}

func NewBoardHandler(db *gorm.DB) *BoardHandler {
	return &BoardHandler{DB: db}
}

type boardReq struct {
	Name     string `json:"name" binding:"required,max=64"`
	Position int    `json:"position"`
}

func (h *BoardHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)
	wsID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !requireWorkspaceAction(c, h.DB, user, wsID, rbac.ActionManageWorkspace, nil) {
		return
	}

	var req boardReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	board := models.Board{
		WorkspaceID: wsID,
		Name:        strings.TrimSpace(req.Name),
		Position:    req.Position,
	}
	if err := h.DB.Create(&board).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create board")
		return
	}

	util.Success(c, util.Response{"board": board})
}

func (h *BoardHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)
	wsID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if _, ok := requireMembership(c, h.DB, user, wsID); !ok {
		return
	}

	var boards []models.Board
	if err := h.DB.Where("workspace_id = ?", wsID).
		Order("position ASC, id ASC").Find(&boards).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load boards")
		return
	}

	util.Success(c, util.Response{"boards": boards})
}

func (h *BoardHandler) Update(c *gin.Context) {
	user := middleware.CurrentUser(c)
	wsID, ok := paramID(c, "id")
	if !ok {
		return
	}
	boardID, ok := paramID(c, "board_id")
	if !ok {
		return
	}
	if !requireWorkspaceAction(c, h.DB, user, wsID, rbac.ActionManageWorkspace, nil) {
		return
	}

	var req boardReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	res := h.DB.Model(&models.Board{}).
		Where("id = ? AND workspace_id = ?", boardID, wsID).
		Updates(map[string]interface{}{
			"name":     strings.TrimSpace(req.Name),
			"position": req.Position,
		})
	if res.Error != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update board")
		return
	}
	if res.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "board not found")
		return
	}

	util.Success(c, util.Response{"message": "board updated"})
}

// Delete removes a board; its tasks stay and lose the board reference.
func (h *BoardHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)
	wsID, ok := paramID(c, "id")
	if !ok {
		return
	}
	boardID, ok := paramID(c, "board_id")
	if !ok {
		return
	}
	if !requireWorkspaceAction(c, h.DB, user, wsID, rbac.ActionManageWorkspace, nil) {
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Task{}).
			Where("board_id = ? AND workspace_id = ?", boardID, wsID).
			Update("board_id", nil).Error; err != nil {
			return err
		}
		res := tx.Where("id = ? AND workspace_id = ?", boardID, wsID).Delete(&models.Board{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err == gorm.ErrRecordNotFound {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "board not found")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete board")
		return
	}

	util.Success(c, util.Response{"message": "board deleted"})
}
