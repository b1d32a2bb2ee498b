package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recycleadmin/internal/form"
	"recycleadmin/internal/notify"
	"recycleadmin/internal/qr"
	"recycleadmin/pkg/logger"
)

type QRHandler struct {
	issuer   *qr.Issuer
	kiosk    *qr.Kiosk
	notifier notify.Notifier
	logger   *zap.Logger
}

func NewQRHandler(issuer *qr.Issuer, kiosk *qr.Kiosk, notifier notify.Notifier, logger *zap.Logger) *QRHandler {
	return &QRHandler{issuer: issuer, kiosk: kiosk, notifier: notifier, logger: logger}
}

// Issue POST /qr/issue
func (h *QRHandler) Issue(c *gin.Context) {
	var f form.IssueForm
	if !bindForm(c, &f) {
		return
	}
	in, err := f.Parse()
	if err != nil {
		respondError(c, h.logger, "issue qr", err)
		return
	}

	issued, err := h.issuer.Issue(in.UID, in.Points, in.Category)
	if err != nil {
		respondError(c, h.logger, "issue qr", err)
		return
	}
	c.JSON(http.StatusCreated, issued)
}

// Redeem POST /kiosk/redeem
func (h *QRHandler) Redeem(c *gin.Context) {
	var f form.RedeemForm
	if !bindForm(c, &f) {
		return
	}
	in, err := f.Parse()
	if err != nil {
		respondError(c, h.logger, "redeem points", err)
		return
	}

	logger.WithTrace(c.Request.Context(), h.logger).Info("Redeem request received",
		zap.Int("points", in.Points),
		zap.String("client_ip", c.ClientIP()),
	)

	receipt, err := h.kiosk.Redeem(c.Request.Context(), in.Code, in.Points)
	if err != nil {
		h.notifier.Notify(c.Request.Context(), notify.Failure("redeem points", err))
		respondError(c, h.logger, "redeem points", err)
		return
	}

	h.notifier.Notify(c.Request.Context(), notify.Success("redeem points", receipt.Message))
	c.JSON(http.StatusOK, receipt)
}
