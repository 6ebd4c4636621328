package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SONDER730/competition-platform/internal/dto"
	"github.com/SONDER730/competition-platform/internal/models"
	"github.com/SONDER730/competition-platform/internal/service"
	appErrors "github.com/SONDER730/competition-platform/pkg/errors"
	"github.com/SONDER730/competition-platform/pkg/response"
)

// ApplicationHandler wires the application lifecycle to HTTP routes.
type ApplicationHandler struct {
	applications *service.ApplicationService
	reports      *service.ReportService
}

// NewApplicationHandler constructs a new ApplicationHandler.
func NewApplicationHandler(applications *service.ApplicationService, reports *service.ReportService) *ApplicationHandler {
	return &ApplicationHandler{applications: applications, reports: reports}
}

// Create godoc
// @Summary Submit a competition application
// @Tags Applications
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body dto.CreateApplicationRequest true "Application payload"
// @Success 201 {object} response.Envelope
// @Router /applications [post]
func (h *ApplicationHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid application payload"))
		return
	}
	detail, err := h.applications.Create(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, detail)
}

// List godoc
// @Summary List the caller's applications
// @Tags Applications
// @Security BearerAuth
// @Produce json
// @Param application_status query string false "Filter by application status"
// @Param process_status query string false "Filter by process status"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /applications [get]
func (h *ApplicationHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	query := dto.ApplicationListQuery{
		ApplicationStatus: strings.TrimSpace(c.Query("application_status")),
		ProcessStatus:     strings.TrimSpace(c.Query("process_status")),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		query.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "20")); err == nil {
		query.PageSize = size
	}

	result, err := h.applications.List(c.Request.Context(), claims, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result.Items, &result.Pagination)
}

// Get godoc
// @Summary Get one application
// @Tags Applications
// @Security BearerAuth
// @Produce json
// @Param id path int true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /applications/{id} [get]
func (h *ApplicationHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	detail, err := h.applications.Get(c.Request.Context(), claims, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Review godoc
// @Summary Approve or reject a pending application
// @Tags Applications
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Application ID"
// @Param payload body dto.ReviewApplicationRequest true "Review decision"
// @Success 200 {object} response.Envelope
// @Router /applications/{id}/review [post]
func (h *ApplicationHandler) Review(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.ReviewApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
		return
	}
	detail, err := h.applications.Review(c.Request.Context(), claims, id, req.Approve)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Cancel godoc
// @Summary Withdraw a pending application
// @Tags Applications
// @Security BearerAuth
// @Produce json
// @Param id path int true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /applications/{id}/cancel [post]
func (h *ApplicationHandler) Cancel(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	detail, err := h.applications.Cancel(c.Request.Context(), claims, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Finish godoc
// @Summary Mark an approved, reimbursed application process as ended
// @Tags Applications
// @Security BearerAuth
// @Produce json
// @Param id path int true "Application ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /applications/{id}/finish [post]
func (h *ApplicationHandler) Finish(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	detail, err := h.applications.FinishProcess(c.Request.Context(), claims, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// UploadFiles godoc
// @Summary Upload application attachments
// @Tags Applications
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Application ID"
// @Param photo formData file false "Photo (jpg)"
// @Param summary formData file false "Summary (pdf)"
// @Param certificate formData file false "Certificate (pdf)"
// @Success 200 {object} response.Envelope
// @Router /applications/{id}/files [post]
func (h *ApplicationHandler) UploadFiles(c *gin.Context) {
	h.handleUpload(c, false)
}

// UploadEvidence godoc
// @Summary Upload competition evidence for an approved application
// @Tags Applications
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Application ID"
// @Param photo formData file false "Photo (jpg)"
// @Param summary formData file false "Summary (pdf)"
// @Param certificate formData file false "Certificate (pdf)"
// @Success 200 {object} response.Envelope
// @Router /applications/{id}/evidence [post]
func (h *ApplicationHandler) UploadEvidence(c *gin.Context) {
	h.handleUpload(c, true)
}

func (h *ApplicationHandler) handleUpload(c *gin.Context, requireApproved bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	files := make(map[models.AttachmentKind]*multipart.FileHeader)
	for _, kind := range []models.AttachmentKind{models.AttachmentPhoto, models.AttachmentSummary, models.AttachmentCertificate} {
		header, err := c.FormFile(string(kind))
		if err != nil {
			continue
		}
		files[kind] = header
	}

	detail, err := h.applications.UploadFiles(c.Request.Context(), claims, id, files, requireApproved)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// DownloadFile godoc
// @Summary Download one application attachment
// @Tags Applications
// @Security BearerAuth
// @Produce application/octet-stream
// @Param id path int true "Application ID"
// @Param type path string true "Attachment type (photo, summary, certificate)"
// @Success 200 {file} binary
// @Router /applications/{id}/files/{type} [get]
func (h *ApplicationHandler) DownloadFile(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	kind := models.AttachmentKind(c.Param("type"))

	download, err := h.applications.DownloadFile(c.Request.Context(), claims, id, kind)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.Reader.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", download.Filename))
	c.Header("Content-Type", download.ContentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, download.Reader); err != nil {
		// The status line has already been written; nothing to recover.
		_ = c.Error(err)
	}
}

// SubmitReimbursement godoc
// @Summary Submit the expense claim for an approved application
// @Tags Reimbursements
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Application ID"
// @Param payload formData dto.SubmitReimbursementRequest true "Expense claim"
// @Param invoice formData file true "Invoice file"
// @Success 201 {object} response.Envelope
// @Router /applications/{id}/reimbursement [post]
func (h *ApplicationHandler) SubmitReimbursement(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.SubmitReimbursementRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reimbursement payload"))
		return
	}

	invoice, _ := c.FormFile("invoice")

	reimb, err := h.applications.SubmitReimbursement(c.Request.Context(), claims, id, req, invoice)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, reimb)
}

// GetReimbursement godoc
// @Summary Get the expense claim of an application
// @Tags Reimbursements
// @Security BearerAuth
// @Produce json
// @Param id path int true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /applications/{id}/reimbursement [get]
func (h *ApplicationHandler) GetReimbursement(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	reimb, err := h.applications.GetReimbursement(c.Request.Context(), claims, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reimb, nil)
}

// ReviewReimbursement godoc
// @Summary Approve or reject a pending expense claim
// @Tags Reimbursements
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Application ID"
// @Param payload body dto.ReviewReimbursementRequest true "Review decision"
// @Success 200 {object} response.Envelope
// @Router /applications/{id}/reimbursement/review [post]
func (h *ApplicationHandler) ReviewReimbursement(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.ReviewReimbursementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
		return
	}
	reimb, err := h.applications.ReviewReimbursement(c.Request.Context(), claims, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reimb, nil)
}

// DownloadInvoice godoc
// @Summary Download the invoice of an expense claim
// @Tags Reimbursements
// @Security BearerAuth
// @Produce application/octet-stream
// @Param id path int true "Application ID"
// @Success 200 {file} binary
// @Router /applications/{id}/reimbursement/invoice [get]
func (h *ApplicationHandler) DownloadInvoice(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	download, err := h.applications.DownloadInvoice(c.Request.Context(), claims, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.Reader.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", download.Filename))
	c.Header("Content-Type", download.ContentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, download.Reader); err != nil {
		_ = c.Error(err)
	}
}

// ProcessReport godoc
// @Summary Download the full process report as PDF
// @Tags Applications
// @Security BearerAuth
// @Produce application/pdf
// @Param id path int true "Application ID"
// @Success 200 {file} binary
// @Router /applications/{id}/report [get]
func (h *ApplicationHandler) ProcessReport(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	data, filename, err := h.reports.ProcessReport(c.Request.Context(), claims, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", data)
}
