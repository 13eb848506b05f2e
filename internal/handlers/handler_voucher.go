package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ledgerkeep/ledgerkeep/internal/apperrors"
	portssvc "github.com/ledgerkeep/ledgerkeep/internal/core/ports/services"
	"github.com/ledgerkeep/ledgerkeep/internal/dto"
	"github.com/ledgerkeep/ledgerkeep/internal/middleware"
)

// voucherHandler handles HTTP requests for the voucher ledger.
type voucherHandler struct {
	voucherService  portssvc.VoucherSvcFacade
	writeoffService portssvc.WriteoffSvcFacade
	accountService  portssvc.AccountSvcFacade
}

// newVoucherHandler creates a new voucherHandler.
func newVoucherHandler(vs portssvc.VoucherSvcFacade, ws portssvc.WriteoffSvcFacade, as portssvc.AccountSvcFacade) *voucherHandler {
	return &voucherHandler{
		voucherService:  vs,
		writeoffService: ws,
		accountService:  as,
	}
}

// registerVoucherRoutes registers voucher specific routes, nested under a tenant.
func registerVoucherRoutes(rg *gin.RouterGroup, voucherService portssvc.VoucherSvcFacade, writeoffService portssvc.WriteoffSvcFacade, accountService portssvc.AccountSvcFacade) {
	h := newVoucherHandler(voucherService, writeoffService, accountService)

	vouchers := rg.Group("/vouchers")
	{
		vouchers.POST("", h.postVoucher)
		vouchers.GET("", h.listVouchers)
		vouchers.GET("/:voucherID", h.getVoucher)
		vouchers.PUT("/:voucherID", h.amendVoucher)
		vouchers.DELETE("/:voucherID", h.deleteVoucher)
	}
	rg.POST("/write-offs", h.writeOff)
	rg.GET("/line-items/:lineItemID/outstanding", h.getOutstanding)
}

// voucherErrorStatus maps ledger errors onto HTTP status codes. Validation
// failures are the caller's fault, missing references read as not found,
// state races as conflicts, and broken bookkeeping invariants as server
// errors.
func voucherErrorStatus(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrUnbalanced),
		errors.Is(err, apperrors.ErrMissingLineItems),
		errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound),
		errors.Is(err, apperrors.ErrDanglingReference):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrAlreadyReversed),
		errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, apperrors.ErrDuplicate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondVoucherError(c *gin.Context, logger *slog.Logger, err error, action string) {
	status := voucherErrorStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error("Failed to "+action, slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": "Failed to " + action})
		return
	}
	logger.Warn("Rejected request to "+action, slog.String("error", err.Error()))
	c.JSON(status, gin.H{"error": err.Error()})
}

// postVoucher godoc
// @Summary Post a new voucher
// @Description Validates and persists a balanced voucher with its line items
// @Tags vouchers
// @Accept  json
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   voucher body dto.CreateVoucherRequest true "Voucher details"
// @Success 201 {object} dto.VoucherResponse
// @Failure 400 {object} map[string]string "Unbalanced, empty or invalid line items"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Referenced account or link does not resolve"
// @Failure 500 {object} map[string]string "Failed to post voucher"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/vouchers [post]
func (h *voucherHandler) postVoucher(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")

	var req dto.CreateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for PostVoucher", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	voucher, err := h.voucherService.PostVoucher(c.Request.Context(), tenantID, req, userID)
	if err != nil {
		respondVoucherError(c, logger, err, "post voucher")
		return
	}

	logger.Info("Voucher posted", slog.String("voucher_id", voucher.VoucherID))
	c.JSON(http.StatusCreated, dto.ToVoucherResponse(voucher))
}

// getVoucher godoc
// @Summary Get a voucher by ID
// @Description Retrieves a voucher with its line items
// @Tags vouchers
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   voucherID path string true "Voucher ID"
// @Success 200 {object} dto.VoucherResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Voucher not found"
// @Failure 500 {object} map[string]string "Failed to retrieve voucher"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/vouchers/{voucherID} [get]
func (h *voucherHandler) getVoucher(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	voucherID := c.Param("voucherID")

	voucher, err := h.voucherService.GetVoucherByID(c.Request.Context(), tenantID, voucherID)
	if err != nil {
		respondVoucherError(c, logger, err, "retrieve voucher")
		return
	}

	c.JSON(http.StatusOK, dto.ToVoucherResponse(voucher))
}

// listVouchers godoc
// @Summary List vouchers
// @Description Retrieves a paginated voucher listing for the tenant. Reversal vouchers are hidden unless includeReversals is set.
// @Tags vouchers
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Pagination token from a previous page"
// @Param   includeReversals query bool false "Include reversal vouchers"
// @Param   includeLineItems query bool false "Embed line items in each voucher"
// @Success 200 {object} dto.ListVouchersResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list vouchers"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/vouchers [get]
func (h *voucherHandler) listVouchers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")

	var params dto.ListVouchersParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListVouchers", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.voucherService.ListVouchers(c.Request.Context(), tenantID, params)
	if err != nil {
		respondVoucherError(c, logger, err, "list vouchers")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// amendVoucher godoc
// @Summary Amend a voucher
// @Description Applies an amendment. A changed line-item set reverses the voucher and posts a replacement; an unchanged set updates links in place.
// @Tags vouchers
// @Accept  json
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   voucherID path string true "Voucher ID"
// @Param   amendment body dto.AmendVoucherRequest true "Desired voucher state"
// @Success 200 {object} dto.VoucherResponse "The surviving voucher (replacement or updated original)"
// @Failure 400 {object} map[string]string "Unbalanced or invalid line items"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Voucher or referenced entity not found"
// @Failure 409 {object} map[string]string "Voucher already reversed or concurrently modified"
// @Failure 500 {object} map[string]string "Failed to amend voucher"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/vouchers/{voucherID} [put]
func (h *voucherHandler) amendVoucher(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	voucherID := c.Param("voucherID")

	var req dto.AmendVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for AmendVoucher", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	voucher, err := h.voucherService.AmendVoucher(c.Request.Context(), tenantID, voucherID, req, userID)
	if err != nil {
		respondVoucherError(c, logger, err, "amend voucher")
		return
	}

	logger.Info("Voucher amended", slog.String("voucher_id", voucher.VoucherID))
	c.JSON(http.StatusOK, dto.ToVoucherResponse(voucher))
}

// deleteVoucher godoc
// @Summary Delete a voucher
// @Description Logically deletes a voucher by posting a reversal. The original stays in history marked REVERSED.
// @Tags vouchers
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   voucherID path string true "Voucher ID"
// @Success 200 {object} dto.EventResponse "The created reversal event"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Voucher not found"
// @Failure 409 {object} map[string]string "Voucher already reversed or concurrently modified"
// @Failure 500 {object} map[string]string "Failed to delete voucher"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/vouchers/{voucherID} [delete]
func (h *voucherHandler) deleteVoucher(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	voucherID := c.Param("voucherID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	eventID, err := h.voucherService.DeleteVoucher(c.Request.Context(), tenantID, voucherID, userID)
	if err != nil {
		respondVoucherError(c, logger, err, "delete voucher")
		return
	}

	logger.Info("Voucher deleted", slog.String("voucher_id", voucherID), slog.String("event_id", eventID))
	c.JSON(http.StatusOK, dto.EventResponse{EventID: eventID})
}

// writeOff godoc
// @Summary Record a write-off
// @Description Records that a result leg offsets an open receivable/payable leg by a given amount
// @Tags write-offs
// @Accept  json
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   writeOff body dto.WriteOffRequest true "Write-off details"
// @Success 201 {object} dto.EventResponse "The created write-off event"
// @Failure 400 {object} map[string]string "Invalid amount, ineligible account or mismatched legs"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Line item not found"
// @Failure 409 {object} map[string]string "Concurrent modification"
// @Failure 500 {object} map[string]string "Failed to record write-off"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/write-offs [post]
func (h *voucherHandler) writeOff(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")

	var req dto.WriteOffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for WriteOff", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	eventID, err := h.voucherService.WriteOff(c.Request.Context(), tenantID, req, userID)
	if err != nil {
		respondVoucherError(c, logger, err, "record write-off")
		return
	}

	logger.Info("Write-off recorded", slog.String("event_id", eventID))
	c.JSON(http.StatusCreated, dto.EventResponse{EventID: eventID})
}

// getOutstanding godoc
// @Summary Get the outstanding amount of a line item
// @Description Derives how much of a receivable/payable leg remains un-offset by write-offs
// @Tags write-offs
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   lineItemID path string true "Line item ID"
// @Success 200 {object} dto.OutstandingResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Line item not found"
// @Failure 500 {object} map[string]string "Failed to derive outstanding amount"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/line-items/{lineItemID}/outstanding [get]
func (h *voucherHandler) getOutstanding(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	lineItemID := c.Param("lineItemID")

	lineItem, err := h.voucherService.GetLineItem(c.Request.Context(), tenantID, lineItemID)
	if err != nil {
		respondVoucherError(c, logger, err, "resolve line item")
		return
	}

	account, err := h.accountService.GetAccountByID(c.Request.Context(), tenantID, lineItem.AccountID)
	if err != nil {
		respondVoucherError(c, logger, err, "resolve account")
		return
	}

	resp := dto.OutstandingResponse{
		LineItemID: lineItem.LineItemID,
		Eligible:   h.writeoffService.IsEligible(account),
	}
	if resp.Eligible {
		outstanding, err := h.writeoffService.OutstandingAmount(c.Request.Context(), *lineItem)
		if err != nil {
			respondVoucherError(c, logger, err, "derive outstanding amount")
			return
		}
		resp.Outstanding = outstanding
		resp.Reversible = outstanding.Equal(lineItem.Amount)
	} else {
		resp.Reversible = true
	}

	c.JSON(http.StatusOK, resp)
}
