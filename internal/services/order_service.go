package services

import (
	"encoding/json"

	"github.com/google/uuid"

	"tambour/internal/domain"
	applog "tambour/internal/log"
	"tambour/internal/repos"
	"tambour/internal/validate"
)

// OrderService converts a priced cart into an immutable order snapshot
// and drives the stock ledger through the order lifecycle:
// Placed(unpaid) -> Paid -> Delivered, forward transitions only.
type OrderService struct {
	Cart   *CartService
	Ledger *LedgerService
	Orders *repos.OrderRepo
}

func NewOrderService(cart *CartService, ledger *LedgerService, orders *repos.OrderRepo) *OrderService {
	return &OrderService{Cart: cart, Ledger: ledger, Orders: orders}
}

// Place snapshots the owner's cart into an order and blocks every line's
// units in the ledger. Blocking is all-or-nothing: when any line fails,
// the units blocked so far are released again and no order persists.
// On success the cart is emptied.
func (s *OrderService) Place(userID string, owner CartOwner, addr domain.ShippingAddress, paymentMethod string) (domain.Order, error) {
	cart, err := s.Cart.Get(owner)
	if err != nil {
		return domain.Order{}, err
	}
	if len(cart.Items) == 0 {
		return domain.Order{}, ErrCartEmpty
	}

	// Reserve stock line by line, unwinding on the first failure so no
	// partially-blocked order can exist.
	blocked := make([]domain.CartItem, 0, len(cart.Items))
	for _, it := range cart.Items {
		if _, err := s.Ledger.BlockUnits(it.ProductID, it.Qty); err != nil {
			for _, b := range blocked {
				_, _ = s.Ledger.ReleaseUnits(b.ProductID, b.Qty)
			}
			return domain.Order{}, err
		}
		blocked = append(blocked, it)
	}

	addrJSON, _ := json.Marshal(addr)
	order := domain.Order{
		ID:            uuid.NewString(),
		UserID:        userID,
		AddressJSON:   string(addrJSON),
		PaymentMethod: paymentMethod,
		ItemsPrice:    cart.ItemsPrice,
		TaxPrice:      cart.TaxPrice,
		ShippingPrice: cart.ShippingPrice,
		TotalPrice:    cart.TotalPrice,
	}
	items := make([]domain.OrderItem, 0, len(cart.Items))
	for _, it := range cart.Items {
		items = append(items, domain.OrderItem{
			OrderID:   order.ID,
			ProductID: it.ProductID,
			Name:      it.Name,
			Slug:      it.Slug,
			Image:     it.Image,
			Price:     it.Price,
			Qty:       it.Qty,
		})
	}

	if err := s.Orders.Create(order, items); err != nil {
		for _, b := range blocked {
			_, _ = s.Ledger.ReleaseUnits(b.ProductID, b.Qty)
		}
		return domain.Order{}, err
	}

	// The order is committed and holds its reservations at this point.
	// A failed cart wipe must not read as a failed placement, or a
	// retry would place the whole cart a second time.
	if err := s.Cart.Clear(owner); err != nil {
		applog.Error(nil, "order.cart_clear", err, map[string]any{"orderId": order.ID})
	}
	return order, nil
}

// ConfirmPayment moves an order from unpaid to paid and consumes the
// reservations made at placement. The paid flag is the gate: a duplicate
// confirmation fails with ErrAlreadyPaid and leaves everything untouched.
func (s *OrderService) ConfirmPayment(orderID string, result domain.PaymentResult) (domain.Order, error) {
	resJSON, _ := json.Marshal(result)
	ok, err := s.Orders.MarkPaid(orderID, string(resJSON))
	if err != nil {
		return domain.Order{}, err
	}
	if !ok {
		if _, _, ferr := s.Orders.Flags(orderID); ferr != nil {
			return domain.Order{}, ErrOrderNotFound
		}
		return domain.Order{}, ErrAlreadyPaid
	}

	items, err := s.Orders.Items(orderID)
	if err != nil {
		return domain.Order{}, err
	}
	for _, it := range items {
		// Units were blocked at placement, so the reservation covers
		// this unless stock was released out-of-band; surface that.
		if _, err := s.Ledger.DeclareSale(it.ProductID, it.Qty, true); err != nil {
			return domain.Order{}, err
		}
	}

	o, _, err := s.Orders.Get(orderID)
	return o, err
}

// MarkDelivered records fulfillment of a paid order.
func (s *OrderService) MarkDelivered(orderID string) (domain.Order, error) {
	ok, err := s.Orders.MarkDelivered(orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if !ok {
		isPaid, isDelivered, ferr := s.Orders.Flags(orderID)
		if ferr != nil {
			return domain.Order{}, ErrOrderNotFound
		}
		if !isPaid {
			return domain.Order{}, ErrOrderNotPaid
		}
		if isDelivered {
			return domain.Order{}, ErrAlreadyDelivered
		}
		return domain.Order{}, ErrOrderNotFound
	}

	o, _, err := s.Orders.Get(orderID)
	return o, err
}

func (s *OrderService) Get(orderID string) (domain.Order, []domain.OrderItem, error) {
	o, items, err := s.Orders.Get(orderID)
	if err != nil {
		if repos.IsNoRows(err) {
			return domain.Order{}, nil, ErrOrderNotFound
		}
		return domain.Order{}, nil, err
	}
	return o, items, nil
}

// Delete removes an order from the admin view. An unpaid order still
// holds reservations from placement, those go back to available stock
// before the row disappears; a paid order consumed them already.
func (s *OrderService) Delete(orderID string) error {
	o, items, err := s.Orders.Get(orderID)
	if err != nil {
		if repos.IsNoRows(err) {
			return ErrOrderNotFound
		}
		return err
	}
	if !o.IsPaid {
		for _, it := range items {
			_, _ = s.Ledger.ReleaseUnits(it.ProductID, it.Qty)
		}
	}
	return s.Orders.Delete(orderID)
}

func (s *OrderService) ListByUser(userID string) ([]domain.Order, error) {
	return s.Orders.ListByUser(userID)
}

func (s *OrderService) ListLatest(limit int) ([]domain.Order, error) {
	return s.Orders.ListLatest(limit)
}

// ValidAddress checks the checkout preconditions on the shipping address.
func ValidAddress(a domain.ShippingAddress) bool {
	return validate.Address(a.FullName, a.StreetAddress, a.City, a.PostalCode, a.Country)
}
