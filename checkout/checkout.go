// 結帳：向金流請款，成功後寫入訂單。
// 沒有重試也沒有冪等鍵，同一購物車送出兩次會請款兩次；
// 請款成功但訂單寫入失敗時回傳*UnrecordedChargeError，不會退款。
package checkout

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"

	"storefront/apperr"
	"storefront/models"
	"storefront/payment"
)

type Gateway interface {
	ClientToken(ctx context.Context) (string, error)
	Sale(ctx context.Context, req payment.SaleRequest) (models.PaymentResult, error)
}

type OrderWriter interface {
	Create(ctx context.Context, order *models.Order) error
}

type BuyerLookup interface {
	ByID(ctx context.Context, id uint) (*models.User, error)
}

// UnrecordedChargeError 交易成功但訂單寫入失敗
type UnrecordedChargeError struct {
	TransactionID string
	Err           error
}

func (e *UnrecordedChargeError) Error() string {
	return fmt.Sprintf("transaction %s charged but order not recorded: %v", e.TransactionID, e.Err)
}

func (e *UnrecordedChargeError) Unwrap() error {
	return e.Err
}

type Service struct {
	gateway Gateway
	orders  OrderWriter
	buyers  BuyerLookup
}

func NewService(gateway Gateway, orders OrderWriter, buyers BuyerLookup) *Service {
	return &Service{gateway: gateway, orders: orders, buyers: buyers}
}

// 計算購物車總金額，使用前端傳來的價格
func CartTotal(cart []models.CartItem) (decimal.Decimal, error) {
	if len(cart) == 0 {
		return decimal.Zero, apperr.New(apperr.Validation, "cart is empty")
	}

	total := decimal.Zero
	for _, item := range cart {
		if item.Quantity < 1 {
			return decimal.Zero, apperr.New(apperr.Validation, "quantity must be at least 1")
		}
		if item.Price.IsNegative() {
			return decimal.Zero, apperr.New(apperr.Validation, "price must not be negative")
		}
		//金流只接受到分，訂單金額需與請款金額一致
		if !item.Price.Equal(item.Price.Round(2)) {
			return decimal.Zero, apperr.New(apperr.Validation, "price must have at most 2 decimal places")
		}
		total = total.Add(item.Subtotal())
	}
	return total, nil
}

func (s *Service) ClientToken(ctx context.Context) (string, error) {
	token, err := s.gateway.ClientToken(ctx)
	if err != nil {
		if apperr.KindOf(err) == apperr.Internal {
			return "", apperr.Wrap(apperr.Upstream, "error while generating token from payment gateway", err)
		}
		return "", err
	}
	return token, nil
}

// 付款並建立訂單，交易失敗時不建立訂單
func (s *Service) Pay(ctx context.Context, buyerID uint, nonce string, cart []models.CartItem) (*models.Order, error) {
	if strings.TrimSpace(nonce) == "" {
		return nil, apperr.New(apperr.Validation, "payment nonce is required")
	}
	total, err := CartTotal(cart)
	if err != nil {
		return nil, err
	}

	//帳號已被刪除時舊Token不可再請款
	if _, err := s.buyers.ByID(ctx, buyerID); err != nil {
		if apperr.Is(err, apperr.NotFound) {
			return nil, apperr.New(apperr.Unauthorized, "please log in")
		}
		return nil, err
	}

	result, err := s.gateway.Sale(ctx, payment.SaleRequest{
		Amount: total,
		Nonce:  nonce,
	})
	if err != nil {
		log.Printf("交易失敗 buyer=%d amount=%s: %v\n", buyerID, total.StringFixed(2), err)
		if apperr.KindOf(err) == apperr.Internal {
			return nil, apperr.Wrap(apperr.Upstream, "error while processing payment", err)
		}
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(cart))
	for _, item := range cart {
		items = append(items, models.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}

	order := &models.Order{
		Items:   items,
		Payment: result,
		BuyerID: buyerID,
		Status:  models.OrderNotProcessed,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		//款項已扣但沒有訂單，需人工依交易編號處理
		log.Printf("交易%s成功但訂單寫入失敗 buyer=%d: %v\n", result.TransactionID, buyerID, err)
		return nil, &UnrecordedChargeError{TransactionID: result.TransactionID, Err: err}
	}

	return order, nil
}
