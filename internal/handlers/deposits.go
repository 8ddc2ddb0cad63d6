package handlers

import "github.com/brokerx/crypto-brokerage-app/backend/internal/entities"

type DepositService interface {
	AddressFor(method entities.PaymentMethod) (string, error)
}
