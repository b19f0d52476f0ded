package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/application"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/application/actions"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/domain"
	apperrors "github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/errors"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/i18n"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/logging"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/middleware"
)

// Handlers exposes the application services over HTTP
type Handlers struct {
	dispatcher *actions.Dispatcher
	orderEdit  *application.OrderEditService
	tariffs    *application.TariffService
	pooling    *application.PoolingService
	backlight  *application.BacklightService
	scopes     *application.ScopeFactory
	orders     domain.OrderRepository
	shippings  domain.ShippingRepository
	history    domain.HistoryRepository
	translator *i18n.Translator
	logger     *logging.Logger

	// idempotency guards mutating calls; nil leaves them unguarded
	idempotency gin.HandlerFunc
}

// RegisterRoutes mounts the API under /api/v1
func (h *Handlers) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1", requireUser())
	once := h.guard()

	orders := v1.Group("/orders")
	{
		orders.POST("", once, h.saveOrder)
		orders.GET("/:id", h.getOrder)
		orders.GET("/:id/history", h.getHistory)
		orders.POST("/actions", h.listActions(actions.GroupOrder))
		orders.POST("/actions/:name", once, h.invokeAction(actions.GroupOrder))
	}

	shippings := v1.Group("/shippings")
	{
		shippings.GET("/:id", h.getShipping)
		shippings.GET("/:id/history", h.getHistory)
		shippings.POST("/actions", h.listActions(actions.GroupShipping))
		shippings.POST("/actions/:name", once, h.invokeAction(actions.GroupShipping))
	}

	v1.POST("/tariffs", once, h.saveTariff)
	v1.GET("/pooling/slots", h.getSlots)
	v1.POST("/backlight/clear", h.clearBacklight)
}

func (h *Handlers) guard() gin.HandlerFunc {
	if h.idempotency != nil {
		return h.idempotency
	}
	return func(c *gin.Context) { c.Next() }
}

// SelectionRequest carries the ids an action applies to
type SelectionRequest struct {
	IDs []string `json:"ids" binding:"required,min=1,dive,required"`
}

// BacklightRequest lists the entities the user has just viewed
type BacklightRequest struct {
	OrderIDs    []string `json:"orderIds"`
	ShippingIDs []string `json:"shippingIds"`
}

// ResultResponse is an application.Result rendered in the caller's language
type ResultResponse struct {
	IsError    bool                 `json:"isError"`
	Message    string               `json:"message"`
	Validation []FieldErrorResponse `json:"validation,omitempty"`
}

// FieldErrorResponse is one translated field error
type FieldErrorResponse struct {
	Field   string `json:"field"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ActionResponse describes an action available on the selection
type ActionResponse struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Kind        string `json:"kind"`
	Order       int    `json:"order"`
}

// ShippingResponse is a shipping with its member orders
type ShippingResponse struct {
	Shipping *domain.Shipping `json:"shipping"`
	Orders   []*domain.Order  `json:"orders"`
}

// HistoryResponse is one translated audit entry
type HistoryResponse struct {
	Message   string    `json:"message"`
	UserID    string    `json:"userId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// requireUser rejects calls that arrive without the gateway's identity headers
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(middleware.ContextKeyUserID) == "" {
			middleware.AbortWithAppError(c, apperrors.ErrUnauthorized(""))
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) domain.User {
	user := domain.User{
		ID:   c.GetString(middleware.ContextKeyUserID),
		Role: domain.Role(c.GetString(middleware.ContextKeyUserRole)),
		Lang: middleware.GetLanguage(c),
	}
	if company := c.GetString(middleware.ContextKeyCompanyID); company != "" {
		user.CompanyID = &company
	}
	return user
}

func (h *Handlers) respondError(c *gin.Context, err error) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		responder.RespondForbidden("")
	case errors.Is(err, domain.ErrActionNotFound):
		responder.RespondWithAppError(apperrors.ErrActionUnavailable(c.Param("name")).Wrap(err))
	default:
		responder.RespondWithError(err)
	}
}

func (h *Handlers) result(lang string, r application.Result) ResultResponse {
	return ResultResponse{
		IsError:    r.IsError,
		Message:    h.translator.Translate(lang, r.Message, r.Args...),
		Validation: h.fieldErrors(lang, r.Validation),
	}
}

func (h *Handlers) fieldErrors(lang string, v *domain.ValidationResult) []FieldErrorResponse {
	if !v.IsError() {
		return nil
	}
	out := make([]FieldErrorResponse, 0, len(v.Errors))
	for _, e := range v.Errors {
		out = append(out, FieldErrorResponse{
			Field:   e.Field,
			Type:    string(e.Type),
			Message: h.translator.Translate(lang, e.Message, e.Args...),
		})
	}
	return out
}

func (h *Handlers) listActions(group actions.Group) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SelectionRequest
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			middleware.NewErrorResponder(c, h.logger.Logger).RespondWithAppError(appErr)
			return
		}

		user := currentUser(c)
		available, err := h.dispatcher.AvailableActions(c.Request.Context(), user, group, req.IDs)
		if err != nil {
			h.respondError(c, err)
			return
		}

		out := make([]ActionResponse, 0, len(available))
		for _, d := range available {
			out = append(out, ActionResponse{
				Name:        d.Name,
				DisplayName: h.translator.Translate(user.Lang, "action."+d.Name),
				Kind:        string(d.Kind),
				Order:       d.Order,
			})
		}
		c.JSON(http.StatusOK, out)
	}
}

func (h *Handlers) invokeAction(group actions.Group) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SelectionRequest
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			middleware.NewErrorResponder(c, h.logger.Logger).RespondWithAppError(appErr)
			return
		}

		name := c.Param("name")
		middleware.AddSpanAttributes(c, map[string]interface{}{
			"action.group": string(group),
			"action.name":  name,
			"action.ids":   len(req.IDs),
		})

		user := currentUser(c)
		res, err := h.dispatcher.Invoke(c.Request.Context(), user, group, name, req.IDs)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, h.result(user.Lang, res))
	}
}

func (h *Handlers) saveOrder(c *gin.Context) {
	var dto application.OrderDTO
	if appErr := middleware.BindAndValidate(c, &dto); appErr != nil {
		middleware.NewErrorResponder(c, h.logger.Logger).RespondWithAppError(appErr)
		return
	}

	user := currentUser(c)
	saved, err := h.orderEdit.Save(c.Request.Context(), user, &dto)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order":  saved.Order,
		"result": h.result(user.Lang, saved.Result),
	})
}

// getOrder returns the order and clears the highlights the viewer owns
func (h *Handlers) getOrder(c *gin.Context) {
	user := currentUser(c)
	order, err := h.orders.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !visibleTo(user, order.CompanyID) {
		h.respondError(c, domain.ErrUnauthorized)
		return
	}

	if err := h.backlight.ClearOnView(c.Request.Context(), user, []*domain.Order{order}, nil); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handlers) getShipping(c *gin.Context) {
	user := currentUser(c)
	ctx := c.Request.Context()

	shipping, err := h.shippings.FindByID(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !visibleTo(user, shipping.CompanyID) {
		h.respondError(c, domain.ErrUnauthorized)
		return
	}
	orders, err := h.orders.FindByShippingID(ctx, shipping.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.backlight.ClearOnView(ctx, user, orders, []*domain.Shipping{shipping}); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ShippingResponse{Shipping: shipping, Orders: orders})
}

func (h *Handlers) getHistory(c *gin.Context) {
	user := currentUser(c)
	entries, err := h.history.ListByEntity(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	out := make([]HistoryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, HistoryResponse{
			Message:   h.translator.Translate(user.Lang, e.MessageKey, e.Args...),
			UserID:    e.UserID,
			CreatedAt: e.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handlers) saveTariff(c *gin.Context) {
	var tariff domain.Tariff
	if appErr := middleware.BindAndValidate(c, &tariff); appErr != nil {
		middleware.NewErrorResponder(c, h.logger.Logger).RespondWithAppError(appErr)
		return
	}
	confirmOverlap, _ := strconv.ParseBool(c.Query("confirmOverlap"))

	user := currentUser(c)
	if !user.HasRole(domain.RoleAdministrator, domain.RoleShippingManager) {
		h.respondError(c, domain.ErrUnauthorized)
		return
	}

	saved, err := h.tariffs.Save(c.Request.Context(), user, &tariff, confirmOverlap)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tariff":            saved.Tariff,
		"needsConfirmation": saved.NeedsConfirmation,
		"isError":           saved.Validation.IsError(),
		"validation":        h.fieldErrors(user.Lang, saved.Validation),
	})
}

func (h *Handlers) getSlots(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)
	user := currentUser(c)

	dateFrom, err := parseDate(c.Query("dateFrom"))
	if err != nil {
		responder.RespondBadRequest("dateFrom: " + err.Error())
		return
	}
	dateTo, err := parseDate(c.Query("dateTo"))
	if err != nil {
		responder.RespondBadRequest("dateTo: " + err.Error())
		return
	}

	filter := domain.SlotFilter{
		DateFrom:         dateFrom,
		DateTo:           dateTo,
		ShippingRegionID: c.Query("shippingRegionId"),
		DeliveryRegionID: c.Query("deliveryRegionId"),
		CarTypeID:        c.Query("carTypeId"),
		ProductType:      c.Query("productType"),
		CarrierID:        c.Query("carrierId"),
	}
	companyID := user.CompanyID
	if q := c.Query("companyId"); q != "" && companyID == nil {
		companyID = &q
	}

	sc := h.scopes.Open(c.Request.Context(), user)
	res := h.pooling.GetSlots(sc, filter, companyID)
	if res.IsError {
		message := h.translator.Translate(user.Lang, res.Error)
		switch res.StatusCode {
		case http.StatusGatewayTimeout:
			responder.RespondWithAppError(apperrors.ErrTimeout("pooling slot search").WithDetail("reason", message))
		case http.StatusBadGateway, http.StatusServiceUnavailable:
			responder.RespondWithAppError(apperrors.ErrExternalService("pooling", message, res.StatusCode))
		default:
			c.JSON(res.StatusCode, ResultResponse{IsError: true, Message: message})
		}
		return
	}
	c.JSON(http.StatusOK, res.Result)
}

func (h *Handlers) clearBacklight(c *gin.Context) {
	var req BacklightRequest
	if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
		middleware.NewErrorResponder(c, h.logger.Logger).RespondWithAppError(appErr)
		return
	}

	ctx := c.Request.Context()
	orders, err := h.orders.FindByIDs(ctx, req.OrderIDs)
	if err != nil {
		h.respondError(c, err)
		return
	}
	shippings, err := h.shippings.FindByIDs(ctx, req.ShippingIDs)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.backlight.ClearOnView(ctx, currentUser(c), orders, shippings); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// visibleTo keeps company-bound users inside their company
func visibleTo(user domain.User, companyID *string) bool {
	return user.CompanyID == nil || companyID == nil || *user.CompanyID == *companyID
}

// parseDate accepts RFC 3339 instants and plain dates
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, value)
}
