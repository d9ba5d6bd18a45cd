package services

import (
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"tambour/internal/domain"
	"tambour/internal/pricing"
	"tambour/internal/repos"
	"tambour/internal/validate"
)

// CartOwner identifies whose cart an operation targets: the user id once
// signed in, otherwise the session-cart cookie value.
type CartOwner struct {
	UserID        string
	SessionCartID string
}

// cartWriteRetries bounds how often a mutation re-reads the cart after
// losing the conditional update to a concurrent request.
const cartWriteRetries = 5

var errCartContention = errors.New("cart is being modified, try again")

// CartService maintains the per-owner line items and recomputes the four
// derived prices on every mutation. Prices on a line are snapshots taken
// when the line was first added. Writes go through a conditional update
// on the stored item array, so two simultaneous mutations of one cart
// never overwrite each other; the loser reloads and reapplies.
type CartService struct {
	Carts *repos.CartRepo
	Prods *repos.ProductRepo
}

func NewCartService(carts *repos.CartRepo, prods *repos.ProductRepo) *CartService {
	return &CartService{Carts: carts, Prods: prods}
}

func parseItems(itemsJSON string) ([]domain.CartItem, error) {
	if itemsJSON == "" {
		return nil, nil
	}
	var items []domain.CartItem
	if err := json.Unmarshal([]byte(itemsJSON), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func marshalItems(items []domain.CartItem) string {
	if items == nil {
		items = []domain.CartItem{}
	}
	b, _ := json.Marshal(items)
	return string(b)
}

func (s *CartService) find(owner CartOwner) (domain.Cart, bool, error) {
	if owner.UserID != "" {
		c, err := s.Carts.ByUser(owner.UserID)
		if err == nil {
			return c, true, nil
		}
		if !repos.IsNoRows(err) {
			return domain.Cart{}, false, err
		}
	}
	if owner.SessionCartID != "" {
		c, err := s.Carts.BySession(owner.SessionCartID)
		if err == nil {
			return c, true, nil
		}
		if !repos.IsNoRows(err) {
			return domain.Cart{}, false, err
		}
	}
	return domain.Cart{}, false, nil
}

// Get returns the owner's cart with parsed items, or an empty cart if
// none exists yet.
func (s *CartService) Get(owner CartOwner) (domain.Cart, error) {
	c, found, err := s.find(owner)
	if err != nil {
		return domain.Cart{}, err
	}
	if !found {
		return domain.Cart{SessionCartID: owner.SessionCartID, UserID: owner.UserID, Items: []domain.CartItem{}}, nil
	}
	items, err := parseItems(c.ItemsJSON)
	if err != nil {
		return domain.Cart{}, err
	}
	c.Items = items
	return c, nil
}

// AddItem merges one more unit batch of a product into the cart. An
// existing line keeps its original price snapshot and gains qty; a new
// line snapshots the current product price. The resulting line quantity
// must be covered by available stock, blocked units don't count.
func (s *CartService) AddItem(owner CartOwner, productID string, qty int) (domain.Cart, error) {
	if !validate.Quantity(qty) {
		return domain.Cart{}, ErrQuantity
	}

	p, err := s.Prods.Get(productID)
	if err != nil {
		if repos.IsNoRows(err) {
			return domain.Cart{}, ErrProductNotFound
		}
		return domain.Cart{}, err
	}

	for attempt := 0; attempt < cartWriteRetries; attempt++ {
		cart, found, err := s.find(owner)
		if err != nil {
			return domain.Cart{}, err
		}

		var items []domain.CartItem
		if found {
			if items, err = parseItems(cart.ItemsJSON); err != nil {
				return domain.Cart{}, err
			}
		}

		idx := -1
		for i := range items {
			if items[i].ProductID == productID {
				idx = i
				break
			}
		}

		newQty := qty
		if idx >= 0 {
			newQty = items[idx].Qty + qty
		}
		if p.Stock < newQty {
			return domain.Cart{}, ErrOutOfStock
		}

		if idx >= 0 {
			items[idx].Qty = newQty
		} else {
			items = append(items, domain.CartItem{
				ProductID: p.ID,
				Name:      p.Name,
				Slug:      p.Slug,
				Image:     firstImage(p.ImagesJSON),
				Price:     p.Price,
				Qty:       qty,
			})
		}

		out, applied, err := s.save(owner, cart, found, items)
		if err != nil {
			return domain.Cart{}, err
		}
		if applied {
			return out, nil
		}
	}
	return domain.Cart{}, errCartContention
}

// RemoveItem takes one unit off the matching line; the line disappears
// when its quantity reaches zero.
func (s *CartService) RemoveItem(owner CartOwner, productID string) (domain.Cart, error) {
	for attempt := 0; attempt < cartWriteRetries; attempt++ {
		cart, found, err := s.find(owner)
		if err != nil {
			return domain.Cart{}, err
		}
		if !found {
			return domain.Cart{}, ErrCartNotFound
		}

		items, err := parseItems(cart.ItemsJSON)
		if err != nil {
			return domain.Cart{}, err
		}

		idx := -1
		for i := range items {
			if items[i].ProductID == productID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return domain.Cart{}, ErrItemNotFound
		}

		if items[idx].Qty <= 1 {
			items = append(items[:idx], items[idx+1:]...)
		} else {
			items[idx].Qty--
		}

		out, applied, err := s.save(owner, cart, true, items)
		if err != nil {
			return domain.Cart{}, err
		}
		if applied {
			return out, nil
		}
	}
	return domain.Cart{}, errCartContention
}

// Clear empties the cart after a successful order placement. The row
// survives so the owner keeps a reusable cart.
func (s *CartService) Clear(owner CartOwner) error {
	for attempt := 0; attempt < cartWriteRetries; attempt++ {
		cart, found, err := s.find(owner)
		if err != nil || !found {
			return err
		}
		applied, err := s.Carts.SetItems(cart.ID, cart.ItemsJSON, marshalItems(nil), pricing.CalcTotals(nil))
		if err != nil {
			return err
		}
		if applied {
			return nil
		}
	}
	return errCartContention
}

// save persists the new item set. The false return without error means
// the write lost a race (the row changed since it was read, or another
// request created the owner's cart first) and must be retried from a
// fresh read.
func (s *CartService) save(owner CartOwner, cart domain.Cart, found bool, items []domain.CartItem) (domain.Cart, bool, error) {
	totals := pricing.CalcTotals(items)

	if !found {
		cart = domain.Cart{
			ID:            uuid.NewString(),
			SessionCartID: owner.SessionCartID,
			UserID:        owner.UserID,
			ItemsJSON:     marshalItems(items),
			ItemsPrice:    totals.ItemsPrice,
			TaxPrice:      totals.TaxPrice,
			ShippingPrice: totals.ShippingPrice,
			TotalPrice:    totals.TotalPrice,
		}
		if cart.SessionCartID == "" {
			cart.SessionCartID = uuid.NewString()
		}
		if err := s.Carts.Create(cart); err != nil {
			if repos.IsConstraint(err) {
				return domain.Cart{}, false, nil
			}
			return domain.Cart{}, false, err
		}
	} else {
		applied, err := s.Carts.SetItems(cart.ID, cart.ItemsJSON, marshalItems(items), totals)
		if err != nil {
			return domain.Cart{}, false, err
		}
		if !applied {
			return domain.Cart{}, false, nil
		}
	}

	cart.Items = items
	cart.ItemsJSON = marshalItems(items)
	cart.ItemsPrice = totals.ItemsPrice
	cart.TaxPrice = totals.TaxPrice
	cart.ShippingPrice = totals.ShippingPrice
	cart.TotalPrice = totals.TotalPrice
	return cart, true, nil
}

// MergeForLogin folds the anonymous session cart into the user's cart on
// sign-in. The user cart wins: duplicate lines keep its price snapshot
// and gain the session quantities; the session cart row is dropped.
func (s *CartService) MergeForLogin(userID, sessionCartID string) error {
	if sessionCartID == "" {
		return nil
	}

	sess, err := s.Carts.BySession(sessionCartID)
	if err != nil {
		if repos.IsNoRows(err) {
			return nil
		}
		return err
	}
	if sess.UserID == userID && userID != "" {
		return nil // already theirs
	}

	userCart, err := s.Carts.ByUser(userID)
	if err != nil {
		if repos.IsNoRows(err) {
			// No user cart yet: the session cart simply becomes theirs.
			return s.Carts.AdoptForUser(sess.ID, userID)
		}
		return err
	}

	sessItems, err := parseItems(sess.ItemsJSON)
	if err != nil {
		return err
	}
	userItems, err := parseItems(userCart.ItemsJSON)
	if err != nil {
		return err
	}

	for _, si := range sessItems {
		merged := false
		for i := range userItems {
			if userItems[i].ProductID == si.ProductID {
				userItems[i].Qty += si.Qty
				merged = true
				break
			}
		}
		if !merged {
			userItems = append(userItems, si)
		}
	}

	return s.Carts.MergeReplace(userCart.ID, marshalItems(userItems), pricing.CalcTotals(userItems), sess.ID)
}

func firstImage(imagesJSON string) string {
	var images []string
	if err := json.Unmarshal([]byte(imagesJSON), &images); err != nil || len(images) == 0 {
		return ""
	}
	return images[0]
}
