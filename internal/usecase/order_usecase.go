package usecase

import (
	"context"

	"shop/internal/domain/model"
	repo "shop/internal/repository"
)

// OrderUsecase はチェックアウトと注文履歴の業務ロジックです。
type OrderUsecase struct {
	tx repo.TransactionManager
}

// DI
func NewOrderUsecase(tx repo.TransactionManager) *OrderUsecase {
	return &OrderUsecase{tx: tx}
}

type CheckoutOutput struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	OrderID int64   `json:"order_id"`
	Total   float64 `json:"total"`
}

// Checkout はアクティブカートを確定し、新しい空カートを用意する。
// completed=true にする唯一の遷移で、元に戻せない。
func (u *OrderUsecase) Checkout(ctx context.Context, userID int64) (CheckoutOutput, error) {
	if userID <= 0 {
		return CheckoutOutput{}, NewError(KindUnauthorized, "unauthorized")
	}

	var out CheckoutOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//アクティブカート取得（行ロック）
		order, err := r.Orders().FindActiveByUserID(ctx, userID)
		if err == repo.ErrNotFound {
			return NewError(KindNotFound, "no active cart found")
		}
		if err != nil {
			return NewError(KindInternal, "db error")
		}

		//空カートのチェックアウトは常に失敗（何も変更しない）
		items, err := r.OrderItems().ListByOrderID(ctx, order.ID)
		if err != nil {
			return NewError(KindInternal, "db error")
		}
		if len(items) == 0 {
			return NewError(KindValidation, "cart is empty")
		}

		//確定（totalと明細はこの時点で凍結される）
		if err := r.Orders().MarkCompleted(ctx, order.ID); err != nil {
			return NewError(KindInternal, "db error")
		}

		//同じユーザーに新しい空カートを用意する
		if _, err := r.Orders().Create(ctx, model.Order{
			UserID:    userID,
			Completed: false,
			Total:     0,
		}); err != nil {
			return NewError(KindInternal, "db error")
		}

		out = CheckoutOutput{
			Success: true,
			Message: "Order placed successfully!",
			OrderID: order.ID,
			Total:   order.Total,
		}
		return nil
	})

	if err != nil {
		return CheckoutOutput{}, err
	}
	return out, nil
}

// OrderHistory は確定済み注文を新しい順で返す。
func (u *OrderUsecase) OrderHistory(ctx context.Context, userID int64) ([]OrderResponse, error) {
	if userID <= 0 {
		return []OrderResponse{}, NewError(KindUnauthorized, "unauthorized")
	}

	var outs []OrderResponse

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().ListCompletedByUserID(ctx, userID)
		if err != nil {
			return NewError(KindInternal, "db error")
		}

		outs = make([]OrderResponse, 0, len(orders))
		for _, o := range orders {
			resp, err := buildOrderResponse(ctx, r, o)
			if err != nil {
				return err
			}
			outs = append(outs, resp)
		}
		return nil
	})

	if err != nil {
		return []OrderResponse{}, err
	}
	return outs, nil
}

// OrderDetail は注文1件を返す。他人の注文は「存在しない扱い」にする。
func (u *OrderUsecase) OrderDetail(ctx context.Context, userID int64, orderID int64) (OrderResponse, error) {
	if userID <= 0 {
		return OrderResponse{}, NewError(KindUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderResponse{}, NewError(KindValidation, "invalid id")
	}

	var out OrderResponse

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewError(KindNotFound, "order not found")
		}
		if err != nil {
			return NewError(KindInternal, "db error")
		}
		if o.UserID != userID {
			return NewError(KindNotFound, "order not found")
		}

		out, err = buildOrderResponse(ctx, r, o)
		return err
	})

	if err != nil {
		return OrderResponse{}, err
	}
	return out, nil
}
