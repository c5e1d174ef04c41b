package handler

import (
	"errors"
	"net/http"
	"strconv"

	"daily-report/internal/excel"
	"daily-report/internal/logger"
	"daily-report/internal/model"
	"daily-report/internal/service"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	svc *service.ReportService
	wb  *excel.Workbook
}

func NewReportHandler(svc *service.ReportService, wb *excel.Workbook) *ReportHandler {
	return &ReportHandler{svc: svc, wb: wb}
}

// GET / — report listing, optional date/category query filters.
func (h *ReportHandler) Index(c *gin.Context) {
	filter := model.ReportFilter{
		Date:     c.Query("date"),
		Category: c.Query("category"),
	}
	reports, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	total, err := h.svc.Count(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Reports": reports,
		"Filter":  filter,
		"Total":   total,
	})
}

// GET /view — listing with category/status/date-range filters echoed
// back into the filter form.
func (h *ReportHandler) View(c *gin.Context) {
	filter := model.ReportFilter{
		Category:  c.Query("category"),
		Status:    c.Query("status"),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	}
	reports, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.HTML(http.StatusOK, "view.html", gin.H{
		"Reports":    reports,
		"Filter":     filter,
		"Categories": model.Categories,
		"Statuses":   model.Statuses,
	})
}

// GET /add — creation form.
func (h *ReportHandler) AddForm(c *gin.Context) {
	c.HTML(http.StatusOK, "add.html", gin.H{
		"Categories": model.Categories,
		"Statuses":   model.Statuses,
	})
}

// POST /add — create a report, then best-effort append to the workbook
// mirror. A mirror failure is logged and the request still succeeds.
func (h *ReportHandler) Add(c *gin.Context) {
	in := model.ReportInput{
		Date:        c.PostForm("date"),
		Category:    c.PostForm("category"),
		Issue:       c.PostForm("issue"),
		RootCause:   c.PostForm("root_cause"),
		ActionTaken: c.PostForm("action_taken"),
		Status:      c.PostForm("status"),
	}
	report, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := h.wb.AppendRow(*report); err != nil {
		logger.Warn("workbook append failed", "id", report.ID, "err", err)
	}

	c.Redirect(http.StatusFound, "/")
}

// GET|POST /delete/:id
func (h *ReportHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	err = h.svc.Delete(c.Request.Context(), id)
	if errors.Is(err, model.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// GET /summary — JSON mapping date -> reports logged that day.
func (h *ReportHandler) Summary(c *gin.Context) {
	grouped, err := h.svc.Summarize(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, grouped)
}

// GET /generate — rebuild the workbook file from the store and serve it.
func (h *ReportHandler) Generate(c *gin.Context) {
	reports, err := h.svc.List(c.Request.Context(), model.ReportFilter{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := h.wb.WriteFile(reports); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.FileAttachment(h.wb.Path(), h.wb.Filename())
}

// GET /download — stream a freshly built workbook, no file touched.
func (h *ReportHandler) Download(c *gin.Context) {
	reports, err := h.svc.List(c.Request.Context(), model.ReportFilter{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", `attachment; filename=`+h.wb.Filename())
	if err := h.wb.Write(reports, c.Writer); err != nil {
		logger.Error("workbook stream failed", "err", err)
	}
}
