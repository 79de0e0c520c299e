package controller

import (
	"errors"

	"github.com/clickcart/storefront/payment-service/internal/dto"
	"github.com/clickcart/storefront/payment-service/internal/service"
	pkgdto "github.com/clickcart/storefront/payment-service/pkg/dto"
	"github.com/clickcart/storefront/payment-service/pkg/errs"
	"github.com/clickcart/storefront/payment-service/pkg/response"
	"github.com/clickcart/storefront/payment-service/pkg/utils"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

type Controller struct {
	service service.PaymentService
}

func CreatePaymentController(e *echo.Group, service service.PaymentService, isLoggedIn echo.MiddlewareFunc) {
	c := Controller{
		service: service,
	}

	e.POST("/payments", c.InitiatePayment, isLoggedIn)
	e.POST("/payments/notifications", c.PayFastNotificationWebhook)
	e.GET("/payments", c.GetTransactions, isLoggedIn)
}

func (c *Controller) InitiatePayment(e echo.Context) error {
	userID, userName := utils.ExtractTokenUser(e)
	log.Info().Uint64("user_id", userID).Str("user_name", userName).Msg("initiate payment req start")

	payload := dto.PaymentRequest{}
	err := e.Bind(&payload)
	if err != nil {
		log.Error().Err(err).Str("component", "InitiatePayment").Msg("")
		return response.WriteErrorResponse(e, errs.ErrClient, nil)
	}

	resp, err := c.service.InitiatePayment(e.Request().Context(), payload)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "payment initiated", resp)
}

func (c *Controller) PayFastNotificationWebhook(e echo.Context) error {
	payload := dto.PaymentNotification{}
	err := e.Bind(&payload)
	if err != nil {
		log.Error().Err(err).Str("component", "PayFastNotificationWebhook").Msg("")
	}

	err = c.service.HandlePaymentNotification(e.Request().Context(), payload)

	// An unknown order id cannot be fixed by redelivery; acknowledge it so
	// the gateway stops resending, and rely on the error log.
	if errors.Is(err, errs.ErrTransactionNotFound) {
		log.Error().Err(err).Str("component", "PayFastNotificationWebhook").Str("order_id", payload.MPaymentID).Msg("notification for unknown transaction")
		return response.WriteSuccessResponse(e, "notification acknowledged", nil)
	}

	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", nil)
}

func (c *Controller) GetTransactions(e echo.Context) error {
	filter := pkgdto.Filter{}
	err := e.Bind(&filter)
	if err != nil {
		log.Error().Err(err).Str("component", "GetTransactions").Msg("")
	}

	responsePayload, err := c.service.GetTransactions(e.Request().Context(), filter)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "successfully retrieved transaction records", responsePayload)
}
