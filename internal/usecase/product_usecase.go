package usecase

import (
	"context"
	"sync"

	"shop/internal/domain/model"
	repo "shop/internal/repository"

	"go.uber.org/zap"
)

// 外部カタログAPIの1レコード
type CatalogRecord struct {
	Title       string
	Price       float64
	Description string
	Category    string
	Image       string
}

// 外部カタログから商品一覧を取得する約束
type CatalogSource interface {
	Fetch(ctx context.Context) ([]CatalogRecord, error)
}

// ProductUsecase は /products の業務ロジックです。
// DBは外部カタログのキャッシュ扱い。空ならlazy sync、要求があればforced refresh。
type ProductUsecase struct {
	productRepo repo.ProductRepository
	source      CatalogSource
	logger      *zap.Logger

	//同時の初回読み込みで二重fetchしないためのガード
	seedMu sync.Mutex
}

// DI
func NewProductUsecase(productRepo repo.ProductRepository, source CatalogSource, logger *zap.Logger) *ProductUsecase {
	return &ProductUsecase{
		productRepo: productRepo,
		source:      source,
		logger:      logger,
	}
}

type RefreshOutput struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// ListProducts は商品一覧を返す。
// DBが空なら外部APIから取り込む。取得失敗はこの呼び出しに限り空リスト
// （DBは空のままなので次の呼び出しが再試行になる）。
func (u *ProductUsecase) ListProducts(ctx context.Context) ([]model.Product, error) {
	count, err := u.productRepo.Count(ctx)
	if err != nil {
		return nil, NewError(KindInternal, "db error")
	}

	if count == 0 {
		u.seedMu.Lock()
		defer u.seedMu.Unlock()

		//ロック待ちの間に他が取り込んでいるかもしれないので数え直す
		count, err = u.productRepo.Count(ctx)
		if err != nil {
			return nil, NewError(KindInternal, "db error")
		}

		if count == 0 {
			u.logger.Info("catalog empty, fetching from upstream")

			records, err := u.source.Fetch(ctx)
			if err != nil {
				u.logger.Warn("catalog fetch failed", zap.Error(err))
				return []model.Product{}, nil
			}

			if err := u.productRepo.CreateBulk(ctx, materialize(records)); err != nil {
				return nil, NewError(KindInternal, "db error")
			}

			u.logger.Info("catalog seeded", zap.Int("count", len(records)))
		}
	}

	products, err := u.productRepo.List(ctx)
	if err != nil {
		return nil, NewError(KindInternal, "db error")
	}
	return products, nil
}

// RefreshCatalog は全削除→再取得。
// 取得に失敗してもdeleteは戻さない（DBは空のまま）。
func (u *ProductUsecase) RefreshCatalog(ctx context.Context) (RefreshOutput, error) {
	if err := u.productRepo.DeleteAll(ctx); err != nil {
		return RefreshOutput{}, NewError(KindInternal, "db error")
	}

	records, err := u.source.Fetch(ctx)
	if err != nil {
		u.logger.Warn("catalog refresh failed", zap.Error(err))
		return RefreshOutput{}, NewError(KindUpstream, "failed to fetch from catalog api")
	}

	if err := u.productRepo.CreateBulk(ctx, materialize(records)); err != nil {
		return RefreshOutput{}, NewError(KindInternal, "db error")
	}

	u.logger.Info("catalog refreshed", zap.Int("count", len(records)))

	return RefreshOutput{
		Message: "catalog refreshed",
		Count:   len(records),
	}, nil
}

// レコードをそのまま商品へ。欠けたフィールドはゼロ値、categoryだけgeneral。
func materialize(records []CatalogRecord) []model.Product {
	products := make([]model.Product, 0, len(records))
	for _, rec := range records {
		category := rec.Category
		if category == "" {
			category = "general"
		}
		products = append(products, model.Product{
			Title:       rec.Title,
			Price:       rec.Price,
			Description: rec.Description,
			Category:    category,
			Image:       rec.Image,
		})
	}
	return products
}
