package handlers

import (
	"net/http"

	"github.com/callwork/backend/internal/models"
	"github.com/callwork/backend/internal/services/balance"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BalanceHandler handles balance and transaction history requests
type BalanceHandler struct {
	balanceService *balance.BalanceService
}

// NewBalanceHandler creates a new balance handler
func NewBalanceHandler(balanceService *balance.BalanceService) *BalanceHandler {
	return &BalanceHandler{balanceService: balanceService}
}

// GetBalance returns the caller's balance and total earned
func (h *BalanceHandler) GetBalance(c *gin.Context) {
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	userBalance, err := h.balanceService.GetBalance(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get balance"})
		return
	}

	c.JSON(http.StatusOK, userBalance)
}

// GetTransactions returns the caller's paginated transaction history
func (h *BalanceHandler) GetTransactions(c *gin.Context) {
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	filter := balance.HistoryFilter{
		Page:     intQuery(c, "page", 1),
		PageSize: intQuery(c, "page_size", 20),
	}

	if category := c.Query("category"); category != "" {
		cat := models.TransactionCategory(category)
		if !models.ValidTransactionCategory(cat) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category"})
			return
		}
		filter.Category = cat
	}

	transactions, total, err := h.balanceService.GetTransactions(userID, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get transactions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": transactions,
		"total":        total,
		"page":         filter.Page,
	})
}

// WithdrawRequest represents the request body for a withdrawal
type WithdrawRequest struct {
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	Description string  `json:"description"`
}

// Withdraw debits the caller's spendable balance
func (h *BalanceHandler) Withdraw(c *gin.Context) {
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	transaction, err := h.balanceService.Withdraw(userID, req.Amount, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, transaction)
}
