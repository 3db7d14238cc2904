package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Test: チェックアウトでカートが確定し、新しい空カートができる
func TestCheckout_CompletesCartAndProvisionsNewOne(t *testing.T) {
	s := newMemStore()
	cartUC := NewCartUsecase(s)
	orderUC := NewOrderUsecase(s)
	ctx := context.Background()

	p := s.addProduct("Beans", 9.99)
	_, err := cartUC.AddToCart(ctx, 1, AddCartInput{ProductID: p.ID, Quantity: 2})
	assert.NoError(t, err)
	_, err = cartUC.AddToCart(ctx, 1, AddCartInput{ProductID: p.ID, Quantity: 1})
	assert.NoError(t, err)

	out, err := orderUC.Checkout(ctx, 1)
	assert.NoError(t, err)
	assert.True(t, out.Success)
	assert.InDelta(t, 29.97, out.Total, 0.001)

	//確定した注文はcompleted
	completed, err := s.Orders().FindByID(ctx, out.OrderID)
	assert.NoError(t, err)
	assert.True(t, completed.Completed)

	//新しい空カートが1つだけある
	cart, err := cartUC.GetCart(ctx, 1)
	assert.NoError(t, err)
	assert.NotEqual(t, out.OrderID, cart.ID)
	assert.Empty(t, cart.Items)
	assert.Equal(t, float64(0), cart.Total)
	assert.Len(t, s.activeOrdersOf(1), 1)
}

// Test: カートが無いチェックアウトは404
func TestCheckout_NoCart(t *testing.T) {
	s := newMemStore()
	orderUC := NewOrderUsecase(s)

	_, err := orderUC.Checkout(context.Background(), 1)
	assertKind(t, err, KindNotFound)
}

// Test: 空カートのチェックアウトは400で何も変更しない
func TestCheckout_EmptyCart(t *testing.T) {
	s := newMemStore()
	cartUC := NewCartUsecase(s)
	orderUC := NewOrderUsecase(s)
	ctx := context.Background()

	cart, err := cartUC.GetCart(ctx, 1)
	assert.NoError(t, err)

	_, err = orderUC.Checkout(ctx, 1)
	assertKind(t, err, KindValidation)

	//カートはアクティブなまま
	after, err := s.Orders().FindByID(ctx, cart.ID)
	assert.NoError(t, err)
	assert.False(t, after.Completed)
	assert.Len(t, s.activeOrdersOf(1), 1)
}

// Test: 履歴は確定済みだけを新しい順で返す
func TestOrderHistory_NewestFirst(t *testing.T) {
	s := newMemStore()
	cartUC := NewCartUsecase(s)
	orderUC := NewOrderUsecase(s)
	ctx := context.Background()

	p := s.addProduct("Beans", 5.00)

	//1回目の注文
	_, err := cartUC.AddToCart(ctx, 1, AddCartInput{ProductID: p.ID, Quantity: 1})
	assert.NoError(t, err)
	first, err := orderUC.Checkout(ctx, 1)
	assert.NoError(t, err)

	//2回目の注文
	_, err = cartUC.AddToCart(ctx, 1, AddCartInput{ProductID: p.ID, Quantity: 2})
	assert.NoError(t, err)
	second, err := orderUC.Checkout(ctx, 1)
	assert.NoError(t, err)

	history, err := orderUC.OrderHistory(ctx, 1)
	assert.NoError(t, err)
	assert.Len(t, history, 2)
	assert.Equal(t, second.OrderID, history[0].ID)
	assert.Equal(t, first.OrderID, history[1].ID)

	//アクティブカートは履歴に出ない
	for _, o := range history {
		assert.True(t, o.Completed)
	}
}

// Test: 注文詳細は本人のものだけ
func TestOrderDetail_ScopedToOwner(t *testing.T) {
	s := newMemStore()
	cartUC := NewCartUsecase(s)
	orderUC := NewOrderUsecase(s)
	ctx := context.Background()

	p := s.addProduct("Beans", 5.00)
	_, err := cartUC.AddToCart(ctx, 1, AddCartInput{ProductID: p.ID, Quantity: 1})
	assert.NoError(t, err)
	placed, err := orderUC.Checkout(ctx, 1)
	assert.NoError(t, err)

	//本人は見える
	out, err := orderUC.OrderDetail(ctx, 1, placed.OrderID)
	assert.NoError(t, err)
	assert.Equal(t, placed.OrderID, out.ID)

	//他人は「存在しない扱い」
	_, err = orderUC.OrderDetail(ctx, 2, placed.OrderID)
	assertKind(t, err, KindNotFound)

	//存在しないIDも404
	_, err = orderUC.OrderDetail(ctx, 1, 9999)
	assertKind(t, err, KindNotFound)
}
