// Package server exposes the table service over HTTP with gin.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/XquisitoAI/xquisito-backend/internal/auth"
	"github.com/XquisitoAI/xquisito-backend/internal/errs"
	"github.com/XquisitoAI/xquisito-backend/internal/middleware"
	"github.com/XquisitoAI/xquisito-backend/internal/models"
	"github.com/XquisitoAI/xquisito-backend/internal/service"
)

// Server wires the table service into a gin router.
type Server struct {
	tables *service.TableService
	tokens *auth.TokenManager
}

// New creates a Server around the given service and token manager.
func New(tables *service.TableService, tokens *auth.TokenManager) *Server {
	return &Server{tables: tables, tokens: tokens}
}

// Router builds the full route table.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.Metrics(), middleware.Logging())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Scanning the QR code lands here; no token yet.
	router.POST("/api/tables/:tableId/session", s.startSession)

	api := router.Group("/api/tables/:tableId", middleware.Session(s.tokens))
	{
		api.POST("/orders", s.submitOrder)
		api.GET("/orders", s.listOrders)
		api.GET("/summary", s.summary)
		api.GET("/active-users", s.activeUsers)
		api.GET("/split-status", s.splitStatus)
		api.GET("/payment-options", s.paymentOptions)
		api.POST("/tip-breakdown", s.tipBreakdown)
		api.POST("/pay", s.pay)
		api.POST("/split-bill", s.initializeSplit)
		api.POST("/split-bill/recalculate", s.recalculate)
		api.PUT("/dishes/:dishId/pay", s.markDishPaid)
		api.PUT("/dishes/:dishId/status", s.updateDishStatus)
		api.POST("/link-user", s.linkUser)
	}

	return router
}

// writeError maps the error taxonomy onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch errs.KindOf(err) {
	case errs.KindValidation:
		status = http.StatusBadRequest
	case errs.KindNotFound:
		status = http.StatusNotFound
	case errs.KindGatewayDecline:
		status = http.StatusPaymentRequired
	case errs.KindNetwork:
		status = http.StatusBadGateway
	}
	c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}

func identityFrom(c *gin.Context) models.Participant {
	claims := middleware.SessionClaims(c)
	if claims == nil {
		return models.Participant{}
	}
	return models.Participant{
		TableID:     claims.TableID,
		DisplayName: claims.DisplayName,
		UserID:      claims.UserID,
		GuestID:     claims.GuestID,
	}
}

type startSessionRequest struct {
	GuestName string `json:"guest_name" binding:"required"`
	UserID    string `json:"user_id"`
}

func (s *Server) startSession(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errs.Validation("guest_name is required"))
		return
	}

	token, claims, err := s.tokens.StartSession(c.Param("tableId"), req.GuestName, req.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"token":      token,
		"table_id":   claims.TableID,
		"guest_id":   claims.GuestID,
		"guest_name": claims.DisplayName,
	})
}

type submitOrderRequest struct {
	Items []models.CartItem `json:"items" binding:"required"`
}

func (s *Server) submitOrder(c *gin.Context) {
	var req submitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errs.Validation("invalid order payload"))
		return
	}

	created, err := s.tables.SubmitOrder(c.Request.Context(), c.Param("tableId"), identityFrom(c), req.Items)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"orders": created})
}

func (s *Server) listOrders(c *gin.Context) {
	orders, err := s.tables.Orders(c.Request.Context(), c.Param("tableId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (s *Server) summary(c *gin.Context) {
	summary, err := s.tables.Summary(c.Request.Context(), c.Param("tableId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) activeUsers(c *gin.Context) {
	participants, err := s.tables.Participants(c.Request.Context(), c.Param("tableId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"active_users": participants})
}

func (s *Server) splitStatus(c *gin.Context) {
	session, err := s.tables.SplitStatus(c.Request.Context(), c.Param("tableId"))
	if err != nil {
		writeError(c, err)
		return
	}
	if session == nil {
		// No session is the closed state, not an error.
		c.JSON(http.StatusOK, gin.H{"active": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"active": true, "session": session})
}

func (s *Server) paymentOptions(c *gin.Context) {
	options, err := s.tables.PaymentOptions(c.Request.Context(), c.Param("tableId"), identityFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, options)
}

type paymentRequest struct {
	Strategy        models.Strategy `json:"strategy" binding:"required"`
	TipPercent      float64         `json:"tip_percent"`
	CustomTip       float64         `json:"custom_tip"`
	ChosenAmount    float64         `json:"chosen_amount"`
	SelectedDishIDs []string        `json:"selected_dish_ids"`
	PaymentMethodID string          `json:"payment_method_id"`
}

func (r paymentRequest) validate() error {
	if !models.ValidStrategy(r.Strategy) {
		return errs.Validation("unknown payment strategy %q", r.Strategy)
	}
	return nil
}

func (r paymentRequest) toService(c *gin.Context) service.PaymentRequest {
	return service.PaymentRequest{
		TableID:         c.Param("tableId"),
		Identity:        identityFrom(c),
		Strategy:        r.Strategy,
		TipPercent:      r.TipPercent,
		CustomTip:       r.CustomTip,
		ChosenAmount:    r.ChosenAmount,
		SelectedDishIDs: r.SelectedDishIDs,
		PaymentMethodID: r.PaymentMethodID,
	}
}

func (s *Server) tipBreakdown(c *gin.Context) {
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errs.Validation("invalid payment payload"))
		return
	}
	if err := req.validate(); err != nil {
		writeError(c, err)
		return
	}

	breakdown, err := s.tables.TipBreakdown(c.Request.Context(), req.toService(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, breakdown.Request(req.Strategy, req.SelectedDishIDs))
}

func (s *Server) pay(c *gin.Context) {
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errs.Validation("invalid payment payload"))
		return
	}
	if err := req.validate(); err != nil {
		writeError(c, err)
		return
	}
	if req.PaymentMethodID == "" {
		writeError(c, errs.Validation("payment_method_id is required"))
		return
	}

	result, err := s.tables.SubmitPayment(c.Request.Context(), req.toService(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if result.RedirectURL != "" {
		c.JSON(http.StatusAccepted, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

type initializeSplitRequest struct {
	ParticipantNames []string `json:"participant_names" binding:"required"`
}

func (s *Server) initializeSplit(c *gin.Context) {
	var req initializeSplitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errs.Validation("participant_names is required"))
		return
	}

	session, err := s.tables.InitializeSplit(c.Request.Context(), c.Param("tableId"), req.ParticipantNames)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"active": true, "session": session})
}

func (s *Server) recalculate(c *gin.Context) {
	session, err := s.tables.Recalculate(c.Request.Context(), c.Param("tableId"))
	if err != nil {
		writeError(c, err)
		return
	}
	if session == nil {
		c.JSON(http.StatusOK, gin.H{"active": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"active": true, "session": session})
}

func (s *Server) markDishPaid(c *gin.Context) {
	err := s.tables.MarkDishPaid(c.Request.Context(), c.Param("tableId"), c.Param("dishId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment_status": models.PaymentPaid})
}

type dishStatusRequest struct {
	Status models.DishStatus `json:"status" binding:"required"`
}

func (s *Server) updateDishStatus(c *gin.Context) {
	var req dishStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errs.Validation("status is required"))
		return
	}

	err := s.tables.UpdateDishStatus(c.Request.Context(), c.Param("tableId"), c.Param("dishId"), req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}

type linkUserRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

func (s *Server) linkUser(c *gin.Context) {
	var req linkUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errs.Validation("user_id is required"))
		return
	}

	claims := middleware.SessionClaims(c)
	if claims == nil || claims.GuestID == "" {
		writeError(c, errs.Validation("only guest sessions can be linked"))
		return
	}

	moved, err := s.tables.LinkUser(c.Request.Context(), c.Param("tableId"), claims.GuestID, req.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"linked_orders": moved})
}
