package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"teamtrack/internal/attendance"
	"teamtrack/internal/middleware"
	"teamtrack/internal/models"
	"teamtrack/internal/rbac"
	"teamtrack/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// AttendanceHandler serves clock-in/out, shift history and the sweep trigger.
type AttendanceHandler struct {
	DB       *gorm.DB
	Sweeper  *attendance.Sweeper
	PageSize int
}

func NewAttendanceHandler(db *gorm.DB, sweeper *attendance.Sweeper, pageSize int) *AttendanceHandler {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &AttendanceHandler{DB: db, Sweeper: sweeper, PageSize: pageSize}
}

func shiftJSON(s models.AttendanceShift) gin.H {
	return gin.H{
		"id":               s.ID,
		"user_id":          s.UserID,
		"workspace_id":     s.WorkspaceID,
		"shift_start_time": s.ShiftStartTime,
		"shift_end_time":   s.ShiftEndTime,
		"total_duration":   s.TotalDuration,
		"daily_tasks":      attendance.DecodeDailyTasks(s.DailyTasks),
		"end_activity":     s.EndActivity,
		"status":           s.Status,
	}
}

type clockInReq struct {
	WorkspaceID *uint `json:"workspace_id"`
}

func (h *AttendanceHandler) ClockIn(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req clockInReq
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	// a workspace-scoped shift requires standing in that workspace
	if req.WorkspaceID != nil {
		if _, ok := requireMembership(c, h.DB, user, *req.WorkspaceID); !ok {
			return
		}
	}

	shift, err := attendance.ClockIn(h.DB, user.ID, req.WorkspaceID, time.Now())
	if err == attendance.ErrShiftAlreadyOpen {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "shift already in progress")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to clock in")
		return
	}

	util.Success(c, util.Response{"shift": shiftJSON(*shift)})
}

type clockOutReq struct {
	DailyTasks  []string `json:"daily_tasks"`
	EndActivity string   `json:"end_activity" binding:"max=255"`
}

func (h *AttendanceHandler) ClockOut(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req clockOutReq
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	shift, err := attendance.ClockOut(h.DB, user.ID, time.Now(), req.DailyTasks, strings.TrimSpace(req.EndActivity))
	if err == attendance.ErrNoOpenShift {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "no shift in progress")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to clock out")
		return
	}

	util.Success(c, util.Response{"shift": shiftJSON(*shift)})
}

// ListMine returns the caller's own shift history; every role may see this.
func (h *AttendanceHandler) ListMine(c *gin.Context) {
	user := middleware.CurrentUser(c)
	page := pageParam(c)

	qb := h.DB.Model(&models.AttendanceShift{}).Where("user_id = ?", user.ID)

	var total int64
	if err := qb.Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to count shifts")
		return
	}
	var shifts []models.AttendanceShift
	if err := qb.Order("shift_start_time DESC").
		Limit(h.PageSize).Offset((page - 1) * h.PageSize).
		Find(&shifts).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load shifts")
		return
	}

	out := make([]gin.H, 0, len(shifts))
	for _, s := range shifts {
		out = append(out, shiftJSON(s))
	}
	util.Success(c, util.Response{"shifts": out, "total": total, "page": page})
}

func (h *AttendanceHandler) queryAll(c *gin.Context) *gorm.DB {
	qb := h.DB.Model(&models.AttendanceShift{})
	if wsID := c.Query("workspace_id"); wsID != "" {
		qb = qb.Where("workspace_id = ?", wsID)
	}
	if userID := c.Query("user_id"); userID != "" {
		qb = qb.Where("user_id = ?", userID)
	}
	if status := c.Query("status"); status != "" {
		qb = qb.Where("status = ?", status)
	}
	return qb
}

// ListAll returns every shift, optionally filtered by workspace and employee.
// Gated on the admin-report privilege: employees never see others' records.
func (h *AttendanceHandler) ListAll(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if !requireGlobalAction(c, h.DB, user, rbac.ActionViewAdminReport) {
		return
	}

	page := pageParam(c)
	qb := h.queryAll(c)

	var total int64
	if err := qb.Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to count shifts")
		return
	}
	var shifts []models.AttendanceShift
	if err := qb.Order("shift_start_time DESC").
		Limit(h.PageSize).Offset((page - 1) * h.PageSize).
		Find(&shifts).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load shifts")
		return
	}

	out := make([]gin.H, 0, len(shifts))
	for _, s := range shifts {
		out = append(out, shiftJSON(s))
	}
	util.Success(c, util.Response{"shifts": out, "total": total, "page": page})
}

// ExportXLSX writes the filtered shift list as a spreadsheet.
func (h *AttendanceHandler) ExportXLSX(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if !requireGlobalAction(c, h.DB, user, rbac.ActionViewAdminReport) {
		return
	}

	var shifts []models.AttendanceShift
	if err := h.queryAll(c).Order("shift_start_time DESC").Find(&shifts).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load shifts")
		return
	}

	f := excelize.NewFile()
	sheetName := "Attendance"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create sheet")
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"User ID", "Workspace ID", "Start", "End", "Minutes", "Status", "Daily Tasks", "End Activity"}
	for i, name := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, name)
	}

	for idx, s := range shifts {
		row := idx + 2
		end := ""
		if s.ShiftEndTime != nil {
			end = s.ShiftEndTime.Format("2006-01-02 15:04")
		}
		wsID := ""
		if s.WorkspaceID != nil {
			wsID = fmt.Sprintf("%d", *s.WorkspaceID)
		}

		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), s.UserID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), wsID)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), s.ShiftStartTime.Format("2006-01-02 15:04"))
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), end)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), s.TotalDuration)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), s.Status)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), strings.Join(attendance.DecodeDailyTasks(s.DailyTasks), "; "))
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), s.EndActivity)
	}

	f.SetColWidth(sheetName, "C", "D", 18)
	f.SetColWidth(sheetName, "G", "G", 40)
	f.SetColWidth(sheetName, "H", "H", 30)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"attendance_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to export")
	}
}

// Sweep triggers one auto-completion run and returns its summary.
func (h *AttendanceHandler) Sweep(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if !requireGlobalAction(c, h.DB, user, rbac.ActionViewAdminReport) {
		return
	}

	summary, err := h.Sweeper.Run()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "sweep failed")
		return
	}

	util.Success(c, util.Response{
		"auto_ended_count": summary.AutoEndedCount,
		"failures":         summary.Failures,
	})
}
