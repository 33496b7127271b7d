package handler

import (
	"fmt"
	"net/http"
	"time"

	"teamtrack/internal/middleware"
	"teamtrack/internal/models"
	"teamtrack/internal/notify"
	"teamtrack/internal/rbac"
	"teamtrack/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ReportHandler serves weekly report submission and review.
type ReportHandler struct {
	DB       *gorm.DB
	PageSize int
	Notify   notify.Publisher
}

func NewReportHandler(db *gorm.DB, pageSize int, pub notify.Publisher) *ReportHandler {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &ReportHandler{DB: db, PageSize: pageSize, Notify: pub}
}

type reportReq struct {
	WeekStart       string `json:"week_start" binding:"required"` // YYYY-MM-DD
	Accomplishments string `json:"accomplishments"`
	Plans           string `json:"plans"`
	Blockers        string `json:"blockers"`
}

// weekMonday normalizes any day to the Monday of its week.
func weekMonday(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// Submit creates or replaces the caller's report for one workspace and week.
func (h *ReportHandler) Submit(c *gin.Context) {
	user := middleware.CurrentUser(c)
	wsID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if _, ok := requireMembership(c, h.DB, user, wsID); !ok {
		return
	}

	var req reportReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	day, err := util.ValidateDate(req.WeekStart)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	week := weekMonday(day)
	now := time.Now()

	var report models.WeeklyReport
	err = h.DB.Where("user_id = ? AND workspace_id = ? AND week_start = ?",
		user.ID, wsID, week).First(&report).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		report = models.WeeklyReport{
			UserID:          user.ID,
			WorkspaceID:     wsID,
			WeekStart:       week,
			Accomplishments: req.Accomplishments,
			Plans:           req.Plans,
			Blockers:        req.Blockers,
			SubmittedAt:     now,
		}
		if err := h.DB.Create(&report).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to submit report")
			return
		}
	case err != nil:
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load report")
		return
	default:
		if err := h.DB.Model(&report).Updates(map[string]interface{}{
			"accomplishments": req.Accomplishments,
			"plans":           req.Plans,
			"blockers":        req.Blockers,
			"submitted_at":    now,
		}).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update report")
			return
		}
	}

	_ = h.Notify.PublishJSON(c.Request.Context(), notify.KeyReportSubmitted, map[string]any{
		"report_id": report.ID, "workspace_id": wsID, "user_id": user.ID,
		"week_start": week.Format("2006-01-02"),
	})

	util.Success(c, util.Response{"report": report})
}

// ListMine returns the caller's own reports across workspaces.
func (h *ReportHandler) ListMine(c *gin.Context) {
	user := middleware.CurrentUser(c)
	page := pageParam(c)

	qb := h.DB.Model(&models.WeeklyReport{}).Where("user_id = ?", user.ID)

	var total int64
	if err := qb.Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to count reports")
		return
	}
	var reports []models.WeeklyReport
	if err := qb.Order("week_start DESC").
		Limit(h.PageSize).Offset((page - 1) * h.PageSize).
		Find(&reports).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load reports")
		return
	}

	util.Success(c, util.Response{"reports": reports, "total": total, "page": page})
}

// ListWorkspace returns every member's reports for review.
func (h *ReportHandler) ListWorkspace(c *gin.Context) {
	user := middleware.CurrentUser(c)
	wsID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !requireWorkspaceAction(c, h.DB, user, wsID, rbac.ActionViewAdminReport, nil) {
		return
	}

	page := pageParam(c)
	qb := h.DB.Model(&models.WeeklyReport{}).Where("workspace_id = ?", wsID)
	if userID := c.Query("user_id"); userID != "" {
		qb = qb.Where("user_id = ?", userID)
	}
	if week := c.Query("week_start"); week != "" {
		day, err := util.ValidateDate(week)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
		qb = qb.Where("week_start = ?", weekMonday(day))
	}

	var total int64
	if err := qb.Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to count reports")
		return
	}
	var reports []models.WeeklyReport
	if err := qb.Order("week_start DESC, user_id ASC").
		Limit(h.PageSize).Offset((page - 1) * h.PageSize).
		Find(&reports).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load reports")
		return
	}

	util.Success(c, util.Response{"reports": reports, "total": total, "page": page})
}

// ExportXLSX writes a workspace's weekly reports as a spreadsheet.
func (h *ReportHandler) ExportXLSX(c *gin.Context) {
	user := middleware.CurrentUser(c)
	wsID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !requireWorkspaceAction(c, h.DB, user, wsID, rbac.ActionViewAdminReport, nil) {
		return
	}

	var reports []models.WeeklyReport
	if err := h.DB.Where("workspace_id = ?", wsID).
		Order("week_start DESC, user_id ASC").Find(&reports).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load reports")
		return
	}

	f := excelize.NewFile()
	sheetName := "Weekly Reports"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create sheet")
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"User ID", "Week Start", "Accomplishments", "Plans", "Blockers", "Submitted At"}
	for i, name := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, name)
	}

	for idx, r := range reports {
		row := idx + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), r.UserID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), r.WeekStart.Format("2006-01-02"))
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), r.Accomplishments)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), r.Plans)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), r.Blockers)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), r.SubmittedAt.Format("2006-01-02 15:04"))
	}

	f.SetColWidth(sheetName, "C", "E", 40)
	f.SetColWidth(sheetName, "F", "F", 18)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"reports_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to export")
	}
}
