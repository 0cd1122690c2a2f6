package handlers

import (
	"context"

	"github.com/Radennn1/tutoring-backend/internal/models"
	"github.com/gofiber/fiber/v2"
)

type walletService interface {
	Wallet(ctx context.Context, tutorID string) (*models.WalletDetail, error)
}

type WalletHandler struct {
	service walletService
}

func NewWalletHandler(service walletService) *WalletHandler {
	return &WalletHandler{service: service}
}

func (h *WalletHandler) Get(c *fiber.Ctx) error {
	tutorID, ok := callerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
	}

	detail, err := h.service.Wallet(c.UserContext(), tutorID)
	if err != nil {
		return mapSessionError(c, err)
	}

	return c.JSON(fiber.Map{
		"wallet":       detail.Wallet,
		"transactions": detail.Transactions,
	})
}
