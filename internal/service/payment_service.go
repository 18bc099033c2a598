package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sthaarun/storefront/internal/domain"
	"github.com/sthaarun/storefront/internal/port"
	"github.com/sthaarun/storefront/internal/repository"
	"github.com/sthaarun/storefront/internal/signature"
)

// SignatureForm is everything the client needs to redirect the customer
// to the payment gateway.
type SignatureForm struct {
	TotalAmount      string
	TransactionID    string
	ProductCode      string
	SignedFieldNames string
	Signature        string
}

type PaymentService interface {
	// GenerateSignature authorizes a gateway redirect for a pending order.
	// The caller-supplied amount must match the stored order total to the
	// cent; a mismatch means a forged amount.
	GenerateSignature(ctx context.Context, customerID, transactionID, totalAmount string) (SignatureForm, error)

	// VerifyCallback authenticates the gateway's callback signature.
	VerifyCallback(totalAmount, transactionID, sig string) error

	// ConfirmPayment transitions the matching pending order to paid.
	// Confirming an already-paid transaction again is a no-op success.
	ConfirmPayment(ctx context.Context, customerID, transactionID string) (domain.Order, error)

	// AbortPayment removes all of the customer's pending orders and
	// releases their stock reservations. Nothing pending is a no-op.
	AbortPayment(ctx context.Context, customerID string) (int, error)
}

type paymentService struct {
	pool   *pgxpool.Pool
	orders port.OrderRepository
	signer *signature.Signer
}

func NewPayment(pool *pgxpool.Pool, signer *signature.Signer) PaymentService {
	return &paymentService{
		pool:   pool,
		orders: repository.NewOrder(pool),
		signer: signer,
	}
}

func (s *paymentService) GenerateSignature(ctx context.Context, customerID, transactionID, totalAmount string) (SignatureForm, error) {
	var f SignatureForm

	if customerID == "" || transactionID == "" {
		return f, fmt.Errorf("customer id and transaction id are required: %w", domain.ErrInvalidInput)
	}

	order, err := s.orders.GetOrderByTransaction(ctx, customerID, transactionID)
	if err != nil {
		return f, fmt.Errorf("orders.GetOrderByTransaction: %w", err)
	}

	if order.Status != domain.OrderStatusPending {
		return f, fmt.Errorf("order[%s] is %s: %w", order.PublicID, order.Status, domain.ErrNotFound)
	}

	if totalAmount != order.Total.AmountString() {
		return f, fmt.Errorf("amount[%s] does not match order total[%s]: %w",
			totalAmount, order.Total.AmountString(), domain.ErrAmountMismatch)
	}

	return SignatureForm{
		TotalAmount:      totalAmount,
		TransactionID:    transactionID,
		ProductCode:      s.signer.ProductCode(),
		SignedFieldNames: signature.SignedFieldNames,
		Signature:        s.signer.Sign(totalAmount, transactionID),
	}, nil
}

func (s *paymentService) VerifyCallback(totalAmount, transactionID, sig string) error {
	if !s.signer.Verify(totalAmount, transactionID, sig) {
		return fmt.Errorf("callback signature mismatch: %w", domain.ErrUnauthorized)
	}
	return nil
}

func (s *paymentService) ConfirmPayment(ctx context.Context, customerID, transactionID string) (domain.Order, error) {
	var o domain.Order

	if customerID == "" || transactionID == "" {
		return o, fmt.Errorf("customer id and transaction id are required: %w", domain.ErrInvalidInput)
	}

	order, err := repository.WithTx(ctx, s.pool, func(tx pgx.Tx) (domain.Order, error) {
		orders := repository.NewOrderWithTx(tx)

		order, err := orders.GetOrderByTransaction(ctx, customerID, transactionID)
		if errors.Is(err, domain.ErrNotFound) {
			// No order of this customer matches the callback's transaction.
			return domain.Order{}, fmt.Errorf("transaction[%s]: %w", transactionID, domain.ErrUnauthorized)
		}
		if err != nil {
			return domain.Order{}, fmt.Errorf("orders.GetOrderByTransaction: %w", err)
		}

		switch order.Status {
		case domain.OrderStatusPaid:
			// Duplicate gateway callback.
			return order, nil

		case domain.OrderStatusPending:
			now := time.Now().UTC()

			updated, err := orders.MarkPaid(ctx, order.ID, now)
			if err != nil {
				return domain.Order{}, fmt.Errorf("orders.MarkPaid: %w", err)
			}
			if updated == 0 {
				// A concurrent callback won; the order is already paid.
				log.Printf("order %s already confirmed concurrently", order.PublicID)
			} else {
				order.Status = domain.OrderStatusPaid
				order.PaidAt = &now
			}

			return order, nil

		default:
			return domain.Order{}, fmt.Errorf("order[%s] is %s: %w", order.PublicID, order.Status, domain.ErrInvalidState)
		}
	})
	if err != nil {
		return o, fmt.Errorf("repository.WithTx: %w", err)
	}

	return order, nil
}

func (s *paymentService) AbortPayment(ctx context.Context, customerID string) (int, error) {
	if customerID == "" {
		return 0, fmt.Errorf("customer id is required: %w", domain.ErrInvalidInput)
	}

	deleted, err := repository.WithTx(ctx, s.pool, func(tx pgx.Tx) ([]domain.Order, error) {
		orders := repository.NewOrderWithTx(tx)
		catalog := repository.NewCatalogWithTx(tx)

		removed, err := orders.DeletePendingOrders(ctx, customerID)
		if err != nil {
			return nil, fmt.Errorf("orders.DeletePendingOrders: %w", err)
		}

		for _, order := range removed {
			for _, item := range order.Items {
				if err := catalog.ReleaseStock(ctx, item.VariantID, item.Quantity); err != nil {
					return nil, fmt.Errorf("catalog.ReleaseStock: %w", err)
				}
			}
		}

		return removed, nil
	})
	if err != nil {
		return 0, fmt.Errorf("repository.WithTx: %w", err)
	}

	return len(deleted), nil
}
