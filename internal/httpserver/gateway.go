package httpserver

import (
	"context"
	"errors"
	"fmt"

	"menubasket/internal/cart"
	"menubasket/internal/domain"
	branchrepo "menubasket/internal/repository/branch"
	basketsvc "menubasket/internal/service/basket"
)

// ServiceGateway adapts the in-process basket service to the cart.Gateway
// contract for one branch and session. It is the default gateway when no
// upstream basket API is configured.
type ServiceGateway struct {
	branches  branchrepo.Repository
	baskets   *basketsvc.Service
	branchKey string
	sessionID string
}

func NewServiceGateway(branches branchrepo.Repository, baskets *basketsvc.Service, branchKey, sessionID string) *ServiceGateway {
	return &ServiceGateway{
		branches:  branches,
		baskets:   baskets,
		branchKey: branchKey,
		sessionID: sessionID,
	}
}

func (g *ServiceGateway) branchID(ctx context.Context) (int64, error) {
	branch, err := g.branches.GetByKey(ctx, g.branchKey)
	if err != nil {
		return 0, fmt.Errorf("resolve branch %q: %w", g.branchKey, err)
	}
	return branch.ID, nil
}

func (g *ServiceGateway) GetMyBasket(ctx context.Context) (*cart.BasketPayload, error) {
	branchID, err := g.branchID(ctx)
	if err != nil {
		return nil, err
	}
	basket, err := g.baskets.GetMyBasket(ctx, branchID, g.sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			payload := toBasketPayload(nil)
			return &payload, nil
		}
		return nil, err
	}
	payload := toBasketPayload(basket)
	return &payload, nil
}

func (g *ServiceGateway) AddUnifiedItem(ctx context.Context, in cart.AddItemInput) error {
	branchID, err := g.branchID(ctx)
	if err != nil {
		return err
	}
	return g.baskets.AddUnifiedItem(ctx, branchID, g.sessionID, basketsvc.AddItemInput{
		BranchProductID: in.BranchProductID,
		Quantity:        in.Quantity,
	})
}

func (g *ServiceGateway) BatchAddItems(ctx context.Context, entries []cart.BatchEntry) error {
	branchID, err := g.branchID(ctx)
	if err != nil {
		return err
	}
	inputs := make([]basketsvc.BatchEntryInput, 0, len(entries))
	for _, e := range entries {
		inputs = append(inputs, basketsvc.BatchEntryInput{
			BranchProductID:    e.BranchProductID,
			Quantity:           e.Quantity,
			ParentBasketItemID: e.ParentBasketItemID,
		})
	}
	return g.baskets.BatchAddItems(ctx, branchID, g.sessionID, inputs)
}

func (g *ServiceGateway) UpdateBasketItem(ctx context.Context, itemID int64, in cart.UpdateItemInput) error {
	branchID, err := g.branchID(ctx)
	if err != nil {
		return err
	}
	return g.baskets.UpdateBasketItem(ctx, branchID, g.sessionID, itemID, basketsvc.UpdateItemInput{
		BasketItemID:    in.BasketItemID,
		BasketID:        in.BasketID,
		BranchProductID: in.BranchProductID,
		Quantity:        in.Quantity,
	})
}

func (g *ServiceGateway) DeleteBasketItem(ctx context.Context, itemID int64) error {
	branchID, err := g.branchID(ctx)
	if err != nil {
		return err
	}
	return g.baskets.DeleteBasketItem(ctx, branchID, g.sessionID, itemID)
}

func (g *ServiceGateway) DeleteBasket(ctx context.Context) error {
	branchID, err := g.branchID(ctx)
	if err != nil {
		return err
	}
	err = g.baskets.DeleteBasket(ctx, branchID, g.sessionID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}
