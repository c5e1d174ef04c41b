package handler

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"daily-report/internal/excel"
	"daily-report/internal/model"
	"daily-report/internal/service"
	"daily-report/web"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testApp struct {
	router *gin.Engine
	svc    *service.ReportService
	wb     *excel.Workbook
}

func setupTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	svc := service.NewReportService(db)
	if err := svc.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	wb := excel.NewWorkbook(filepath.Join(t.TempDir(), "reports.xlsx"))
	h := NewReportHandler(svc, wb)

	r := gin.New()
	r.SetHTMLTemplate(template.Must(template.ParseFS(web.TemplatesFS, "templates/*.html")))
	r.GET("/", h.Index)
	r.GET("/view", h.View)
	r.GET("/add", h.AddForm)
	r.POST("/add", h.Add)
	r.GET("/delete/:id", h.Delete)
	r.POST("/delete/:id", h.Delete)
	r.GET("/summary", h.Summary)
	r.GET("/generate", h.Generate)
	r.GET("/download", h.Download)

	return &testApp{router: r, svc: svc, wb: wb}
}

func (a *testApp) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func addForm(date, category, issue string) url.Values {
	return url.Values{
		"date":         {date},
		"category":     {category},
		"issue":        {issue},
		"root_cause":   {"root"},
		"action_taken": {"fixed"},
		"status":       {"Completed"},
	}
}

func TestAddCreatesReportAndMirrors(t *testing.T) {
	app := setupTestApp(t)

	w := app.do("POST", "/add", addForm("", "Git", "merge conflict"))
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/" {
		t.Errorf("redirect to %q, want /", loc)
	}

	reports, err := app.svc.List(context.Background(), model.ReportFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("got %d reports, want 1", len(reports))
	}
	if reports[0].Date != time.Now().Format("2006-01-02") {
		t.Errorf("date = %q, want today", reports[0].Date)
	}

	f, err := excelize.OpenFile(app.wb.Path())
	if err != nil {
		t.Fatalf("mirror file missing: %v", err)
	}
	defer f.Close()
	rows, _ := f.GetRows("Sheet1")
	if len(rows) != 2 || rows[1][2] != "merge conflict" {
		t.Errorf("mirror rows = %v", rows)
	}
}

func TestAddSucceedsWhenMirrorFails(t *testing.T) {
	app := setupTestApp(t)

	// A directory at the workbook path makes every save fail.
	if err := os.Mkdir(app.wb.Path(), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	w := app.do("POST", "/add", addForm("2024-01-01", "Database", "deadlock"))
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302 despite mirror failure", w.Code)
	}

	reports, err := app.svc.List(context.Background(), model.ReportFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(reports) != 1 {
		t.Errorf("store write lost: %d reports", len(reports))
	}
}

func TestIndexRendersReports(t *testing.T) {
	app := setupTestApp(t)
	app.do("POST", "/add", addForm("2024-01-01", "Network", "packet loss"))

	w := app.do("GET", "/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "packet loss") {
		t.Error("report row missing from page")
	}
}

func TestIndexCategoryFilter(t *testing.T) {
	app := setupTestApp(t)
	app.do("POST", "/add", addForm("2024-01-01", "Git", "conflict"))
	app.do("POST", "/add", addForm("2024-01-02", "Database", "deadlock"))

	w := app.do("GET", "/?category=Git", nil)
	body := w.Body.String()
	if !strings.Contains(body, "conflict") || strings.Contains(body, "deadlock") {
		t.Error("category filter not applied")
	}
}

func TestViewDateRangeFilter(t *testing.T) {
	app := setupTestApp(t)
	app.do("POST", "/add", addForm("2024-01-01", "Git", "early"))
	app.do("POST", "/add", addForm("2024-01-03", "Git", "late"))

	w := app.do("GET", "/view?start_date=2024-01-02&end_date=2024-01-04", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "late") || strings.Contains(body, "early") {
		t.Error("date range filter not applied")
	}
	// Selected bounds echoed back into the form.
	if !strings.Contains(body, `value="2024-01-02"`) {
		t.Error("start_date not echoed")
	}
}

func TestDelete(t *testing.T) {
	app := setupTestApp(t)
	app.do("POST", "/add", addForm("2024-01-01", "Git", "gone soon"))

	reports, _ := app.svc.List(context.Background(), model.ReportFilter{})
	id := reports[0].ID

	w := app.do("GET", "/delete/"+strconv.Itoa(id), nil)
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}

	// Second delete of the same id, and unknown ids, are 404.
	if w := app.do("POST", "/delete/"+strconv.Itoa(id), nil); w.Code != http.StatusNotFound {
		t.Errorf("repeat delete status = %d, want 404", w.Code)
	}
	if w := app.do("GET", "/delete/999", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown id status = %d, want 404", w.Code)
	}
	if w := app.do("GET", "/delete/abc", nil); w.Code != http.StatusNotFound {
		t.Errorf("bad id status = %d, want 404", w.Code)
	}
}

func TestSummaryJSON(t *testing.T) {
	app := setupTestApp(t)
	app.do("POST", "/add", addForm("2024-01-01", "Git", "one"))
	app.do("POST", "/add", addForm("2024-01-01", "Database", "two"))
	app.do("POST", "/add", addForm("2024-01-02", "Git", "three"))

	w := app.do("GET", "/summary", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var grouped map[string][]model.ReportDigest
	if err := json.Unmarshal(w.Body.Bytes(), &grouped); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(grouped["2024-01-01"]) != 2 || len(grouped["2024-01-02"]) != 1 {
		t.Errorf("unexpected grouping: %v", grouped)
	}
	if grouped["2024-01-01"][0].Issue != "one" {
		t.Errorf("insertion order lost: %v", grouped["2024-01-01"])
	}
}

func TestDownloadStreamsWorkbook(t *testing.T) {
	app := setupTestApp(t)
	app.do("POST", "/add", addForm("2024-01-01", "Git", "streamed"))
	os.Remove(app.wb.Path()) // drop the create-time mirror

	w := app.do("GET", "/download", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("content type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("content disposition = %q", cd)
	}

	f, err := excelize.OpenReader(w.Body)
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	defer f.Close()
	rows, _ := f.GetRows("Sheet1")
	if len(rows) != 2 || rows[1][2] != "streamed" {
		t.Errorf("stream rows = %v", rows)
	}

	// Streaming never touches the named file.
	if _, err := os.Stat(app.wb.Path()); !os.IsNotExist(err) {
		t.Error("download created the export file")
	}
}

func TestGenerateWritesFileAndServesIt(t *testing.T) {
	app := setupTestApp(t)
	app.do("POST", "/add", addForm("2024-01-01", "Git", "generated"))
	os.Remove(app.wb.Path()) // drop the create-time mirror

	w := app.do("GET", "/generate", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	f, err := excelize.OpenFile(app.wb.Path())
	if err != nil {
		t.Fatalf("export file missing: %v", err)
	}
	defer f.Close()
	rows, _ := f.GetRows("Sheet1")
	if len(rows) != 2 || rows[1][2] != "generated" {
		t.Errorf("export rows = %v", rows)
	}
}

func TestAddFormListsOptions(t *testing.T) {
	app := setupTestApp(t)

	w := app.do("GET", "/add", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	for _, opt := range append(model.Categories, model.Statuses...) {
		if !strings.Contains(body, opt) {
			t.Errorf("option %q missing from form", opt)
		}
	}
}
