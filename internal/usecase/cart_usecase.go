package usecase

import (
	"context"
	"time"

	"shop/internal/domain/model"
	repo "shop/internal/repository"
)

// CartUsecase は /cart の業務ロジックです。
// 変更系はすべて1トランザクション（取得or作成→変更→合計再計算）で実行する。
type CartUsecase struct {
	tx repo.TransactionManager
}

// DI
func NewCartUsecase(tx repo.TransactionManager) *CartUsecase {
	return &CartUsecase{tx: tx}
}

// price は追加時点のスナップショットを返す（現在の商品価格ではない）。
type OrderItemResponse struct {
	ID        int64   `json:"id"`
	ProductID int64   `json:"product_id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Quantity  int64   `json:"quantity"`
}

type OrderResponse struct {
	ID        int64               `json:"id"`
	Items     []OrderItemResponse `json:"items"`
	Total     float64             `json:"total"`
	Completed bool                `json:"completed"`
	CreatedAt time.Time           `json:"created_at"`
}

type AddCartInput struct {
	ProductID int64
	Quantity  int64
}

// GetCart はカート取得（無ければ作って空を返す）。
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (OrderResponse, error) {
	if userID <= 0 {
		return OrderResponse{}, NewError(KindUnauthorized, "unauthorized")
	}

	var out OrderResponse

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		order, _, err := r.Orders().GetOrCreateActiveByUserID(ctx, userID)
		if err != nil {
			return NewError(KindInternal, "db error")
		}

		out, err = buildOrderResponse(ctx, r, order)
		return err
	})

	if err != nil {
		return OrderResponse{}, err
	}
	return out, nil
}

// AddToCart はカートに追加（同一商品は数量加算、価格は初回のまま）。
func (u *CartUsecase) AddToCart(ctx context.Context, userID int64, in AddCartInput) (OrderResponse, error) {
	if userID <= 0 {
		return OrderResponse{}, NewError(KindUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 {
		return OrderResponse{}, NewError(KindValidation, "product_id is required")
	}
	if in.Quantity < 1 {
		return OrderResponse{}, NewError(KindValidation, "invalid quantity")
	}

	var out OrderResponse

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//商品チェック
		p, err := r.Products().FindByID(ctx, in.ProductID)
		if err == repo.ErrNotFound {
			return NewError(KindNotFound, "product not found")
		}
		if err != nil {
			return NewError(KindInternal, "db error")
		}

		//アクティブカート取得（無ければ作成、行ロック）
		order, _, err := r.Orders().GetOrCreateActiveByUserID(ctx, userID)
		if err != nil {
			return NewError(KindInternal, "db error")
		}

		//(order, product)の明細を取得or作成。
		//新規なら価格をこの時点でスナップショット、既存なら数量だけ加算。
		item, created, err := r.OrderItems().FindOrCreate(ctx, order.ID, p.ID, in.Quantity, p.Price)
		if err != nil {
			return NewError(KindInternal, "db error")
		}
		if !created {
			if err := r.OrderItems().UpdateQuantity(ctx, item.ID, item.Quantity+in.Quantity); err != nil {
				return NewError(KindInternal, "db error")
			}
		}

		total, err := recomputeTotal(ctx, r, order.ID)
		if err != nil {
			return err
		}
		order.Total = total

		out, err = buildOrderResponse(ctx, r, order)
		return err
	})

	if err != nil {
		return OrderResponse{}, err
	}
	return out, nil
}

// RemoveFromCart は明細を丸ごと削除する。
func (u *CartUsecase) RemoveFromCart(ctx context.Context, userID int64, productID int64) (OrderResponse, error) {
	if userID <= 0 {
		return OrderResponse{}, NewError(KindUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return OrderResponse{}, NewError(KindValidation, "product_id is required")
	}

	var out OrderResponse

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		order, err := r.Orders().FindActiveByUserID(ctx, userID)
		if err == repo.ErrNotFound {
			return NewError(KindNotFound, "cart not found")
		}
		if err != nil {
			return NewError(KindInternal, "db error")
		}

		item, err := r.OrderItems().FindByOrderAndProduct(ctx, order.ID, productID)
		if err == repo.ErrNotFound {
			return NewError(KindNotFound, "item not in cart")
		}
		if err != nil {
			return NewError(KindInternal, "db error")
		}

		if err := r.OrderItems().DeleteByID(ctx, item.ID); err != nil {
			return NewError(KindInternal, "db error")
		}

		total, err := recomputeTotal(ctx, r, order.ID)
		if err != nil {
			return err
		}
		order.Total = total

		out, err = buildOrderResponse(ctx, r, order)
		return err
	})

	if err != nil {
		return OrderResponse{}, err
	}
	return out, nil
}

// DecreaseQuantity は数量を1減らす。1だったら明細ごと削除。
func (u *CartUsecase) DecreaseQuantity(ctx context.Context, userID int64, productID int64) (OrderResponse, error) {
	if userID <= 0 {
		return OrderResponse{}, NewError(KindUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return OrderResponse{}, NewError(KindValidation, "product_id is required")
	}

	var out OrderResponse

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		order, err := r.Orders().FindActiveByUserID(ctx, userID)
		if err == repo.ErrNotFound {
			return NewError(KindNotFound, "cart not found")
		}
		if err != nil {
			return NewError(KindInternal, "db error")
		}

		item, err := r.OrderItems().FindByOrderAndProduct(ctx, order.ID, productID)
		if err == repo.ErrNotFound {
			return NewError(KindNotFound, "item not in cart")
		}
		if err != nil {
			return NewError(KindInternal, "db error")
		}

		if item.Quantity > 1 {
			if err := r.OrderItems().UpdateQuantity(ctx, item.ID, item.Quantity-1); err != nil {
				return NewError(KindInternal, "db error")
			}
		} else {
			if err := r.OrderItems().DeleteByID(ctx, item.ID); err != nil {
				return NewError(KindInternal, "db error")
			}
		}

		total, err := recomputeTotal(ctx, r, order.ID)
		if err != nil {
			return err
		}
		order.Total = total

		out, err = buildOrderResponse(ctx, r, order)
		return err
	})

	if err != nil {
		return OrderResponse{}, err
	}
	return out, nil
}

// ClearCart は明細を全削除してtotalを0に戻す。
func (u *CartUsecase) ClearCart(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return NewError(KindUnauthorized, "unauthorized")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		order, err := r.Orders().FindActiveByUserID(ctx, userID)
		if err == repo.ErrNotFound {
			return NewError(KindNotFound, "cart not found")
		}
		if err != nil {
			return NewError(KindInternal, "db error")
		}

		if err := r.OrderItems().DeleteByOrderID(ctx, order.ID); err != nil {
			return NewError(KindInternal, "db error")
		}

		if err := r.Orders().UpdateTotal(ctx, order.ID, 0); err != nil {
			return NewError(KindInternal, "db error")
		}

		return nil
	})
}

// 合計をΣ(price × quantity)で再計算して保存する。
func recomputeTotal(ctx context.Context, r repo.TxRepos, orderID int64) (float64, error) {
	items, err := r.OrderItems().ListByOrderID(ctx, orderID)
	if err != nil {
		return 0, NewError(KindInternal, "db error")
	}

	var total float64 = 0
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}

	if err := r.Orders().UpdateTotal(ctx, orderID, total); err != nil {
		return 0, NewError(KindInternal, "db error")
	}

	return total, nil
}

// 明細をまとめてOrderResponseを作る。
// 商品が消えていた場合、titleは空になる（価格・数量はスナップショットが残る）。
func buildOrderResponse(ctx context.Context, r repo.TxRepos, order model.Order) (OrderResponse, error) {
	items, err := r.OrderItems().ListByOrderID(ctx, order.ID)
	if err != nil {
		return OrderResponse{}, NewError(KindInternal, "db error")
	}

	respItems := make([]OrderItemResponse, 0, len(items))
	for _, it := range items {
		title := ""
		p, err := r.Products().FindByID(ctx, it.ProductID)
		if err == nil {
			title = p.Title
		} else if err != repo.ErrNotFound {
			return OrderResponse{}, NewError(KindInternal, "db error")
		}

		respItems = append(respItems, OrderItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Title:     title,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
	}

	return OrderResponse{
		ID:        order.ID,
		Items:     respItems,
		Total:     order.Total,
		Completed: order.Completed,
		CreatedAt: order.CreatedAt,
	}, nil
}
