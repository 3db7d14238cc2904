package repository

import (
	"context"

	"shop/internal/domain/model"
)

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	List(ctx context.Context) ([]model.Product, error)
	Count(ctx context.Context) (int64, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	CreateBulk(ctx context.Context, products []model.Product) error
	//全件削除（forced refresh用）
	DeleteAll(ctx context.Context) error
}
