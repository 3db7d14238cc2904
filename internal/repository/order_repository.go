package repository

import (
	"context"
	"errors"

	"shop/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

type OrderRepository interface {
	// アクティブ（未完了）な注文を取得し、無ければ作成。
	// 2番目の戻り値は新規作成だったかどうか。
	GetOrCreateActiveByUserID(ctx context.Context, userID int64) (model.Order, bool, error)
	FindActiveByUserID(ctx context.Context, userID int64) (model.Order, error)
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListCompletedByUserID(ctx context.Context, userID int64) ([]model.Order, error)
	Create(ctx context.Context, order model.Order) (int64, error)
	UpdateTotal(ctx context.Context, orderID int64, total float64) error
	//completed=trueにする。チェックアウトだけが呼ぶ。
	MarkCompleted(ctx context.Context, orderID int64) error
}
