package repository

import (
	"context"

	"shop/internal/domain/model"
)

type OrderItemRepository interface {
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
	FindByOrderAndProduct(ctx context.Context, orderID int64, productID int64) (model.OrderItem, error)
	// (order, product)の明細を取得し、無ければ初期数量・価格で作成。
	// 2番目の戻り値は新規作成だったかどうか。既存行の数量は変更しない。
	FindOrCreate(ctx context.Context, orderID int64, productID int64, qty int64, price float64) (model.OrderItem, bool, error)
	UpdateQuantity(ctx context.Context, itemID int64, qty int64) error
	DeleteByID(ctx context.Context, itemID int64) error
	DeleteByOrderID(ctx context.Context, orderID int64) error
}
