package services

import (
	"database/sql"
	"errors"

	"tambour/internal/domain"
	"tambour/internal/repos"
	"tambour/internal/validate"
)

// LedgerService enforces the stock invariants: available and blocked
// counters never go negative, reservations are explicitly released or
// consumed, sold units disappear from both counters. Every mutation maps
// to a single conditional UPDATE in the repo, so concurrent calls on the
// same product serialize at the row.
type LedgerService struct {
	Prods *repos.ProductRepo
}

func NewLedgerService(prods *repos.ProductRepo) *LedgerService {
	return &LedgerService{Prods: prods}
}

// GetByIdentifier resolves a product by internal id or by business code.
// UUID-shaped identifiers take the primary-key path; anything else is
// treated as a code. The two identifier spaces cannot collide because a
// business code is never UUID-shaped.
func (s *LedgerService) GetByIdentifier(identifier string) (domain.Product, error) {
	var (
		p   domain.Product
		err error
	)
	if validate.IsUUID(identifier) {
		p, err = s.Prods.Get(identifier)
	} else {
		p, err = s.Prods.GetByCode(identifier)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, ErrProductNotFound
	}
	return p, err
}

// BlockUnits reserves qty units against an in-progress order:
// stock -= qty, blocked += qty. Fails when fewer than qty units are
// available.
func (s *LedgerService) BlockUnits(productID string, qty int) (domain.Product, error) {
	if !validate.Quantity(qty) {
		return domain.Product{}, ErrQuantity
	}
	ok, err := s.Prods.BlockUnits(productID, qty)
	if err != nil {
		return domain.Product{}, err
	}
	if !ok {
		if _, _, cerr := s.Prods.Counters(productID); errors.Is(cerr, sql.ErrNoRows) {
			return domain.Product{}, ErrProductNotFound
		}
		return domain.Product{}, ErrInsufficientStock
	}
	return s.Prods.Get(productID)
}

// ReleaseUnits returns qty previously blocked units to available stock.
func (s *LedgerService) ReleaseUnits(productID string, qty int) (domain.Product, error) {
	if !validate.Quantity(qty) {
		return domain.Product{}, ErrQuantity
	}
	ok, err := s.Prods.ReleaseUnits(productID, qty)
	if err != nil {
		return domain.Product{}, err
	}
	if !ok {
		_, blocked, cerr := s.Prods.Counters(productID)
		if errors.Is(cerr, sql.ErrNoRows) {
			return domain.Product{}, ErrProductNotFound
		}
		if cerr != nil {
			return domain.Product{}, cerr
		}
		if blocked == 0 {
			return domain.Product{}, ErrNoBlockedUnits
		}
		return domain.Product{}, ErrInvalidRelease
	}
	return s.Prods.Get(productID)
}

// DeclareSale permanently removes qty units from inventory. With
// useReservation the units come out of the blocked counter (an order
// being paid, or a scanned pickup); without it they come straight from
// available stock (walk-in sale). Consumed units are gone: no counter
// represents them afterwards.
func (s *LedgerService) DeclareSale(productID string, qty int, useReservation bool) (domain.Product, error) {
	if !validate.Quantity(qty) {
		return domain.Product{}, ErrQuantity
	}

	var (
		ok  bool
		err error
	)
	if useReservation {
		ok, err = s.Prods.ConsumeBlocked(productID, qty)
	} else {
		ok, err = s.Prods.ConsumeStock(productID, qty)
	}
	if err != nil {
		return domain.Product{}, err
	}
	if !ok {
		if _, _, cerr := s.Prods.Counters(productID); errors.Is(cerr, sql.ErrNoRows) {
			return domain.Product{}, ErrProductNotFound
		}
		if useReservation {
			return domain.Product{}, ErrInsufficientReservation
		}
		return domain.Product{}, ErrInsufficientStock
	}
	return s.Prods.Get(productID)
}
