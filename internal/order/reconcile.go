package order

import (
	"context"
	"fmt"
	"time"

	"ms-restaurant/internal/cache"
	"ms-restaurant/internal/logger"
)

const mappingLockTTL = 15 * time.Second

type mappingStore interface {
	GetPosterClientID(ctx context.Context, clientID, restaurantID int64) (string, error)
	InsertPosterClient(ctx context.Context, clientID, restaurantID int64, posterClientID string) (string, error)
}

// Reconciler maps internal clients to POS clients per restaurant. Creation runs under a
// keyed lock and the mapping insert keeps the first row, so concurrent first orders
// create at most one POS client.
type Reconciler struct {
	Store  mappingStore
	POS    POS
	Locker cache.Locker
	Logger *logger.Logger
}

// ClientRef is who the POS client is created for.
type ClientRef struct {
	ID    int64
	Phone string
	Name  string
}

func mappingKey(clientID, restaurantID int64) string {
	return fmt.Sprintf("poster-client:%d:%d", clientID, restaurantID)
}

// Resolve returns the mapped POS client id, creating the POS client when missing.
// With searchPhone an existing POS client with the same phone is adopted first.
// "" with a nil error means the POS gave no id.
func (r *Reconciler) Resolve(ctx context.Context, token string, restaurantID int64, client ClientRef, searchPhone bool) (string, error) {
	id, err := r.Store.GetPosterClientID(ctx, client.ID, restaurantID)
	if err != nil || id != "" {
		return id, err
	}

	release, err := r.Locker.Lock(ctx, mappingKey(client.ID, restaurantID), mappingLockTTL)
	if err != nil {
		return "", fmt.Errorf("lock poster client mapping: %w", err)
	}
	defer release()

	// another request may have created it while we waited
	if id, err := r.Store.GetPosterClientID(ctx, client.ID, restaurantID); err != nil || id != "" {
		return id, err
	}

	if searchPhone {
		found, err := r.POS.FindClientByPhone(ctx, token, client.Phone)
		if err != nil {
			r.Logger.Warn("POSTER_CLIENT", fmt.Sprintf("Phone search failed for client %d: %v", client.ID, err))
		}
		if found != "" {
			return r.Store.InsertPosterClient(ctx, client.ID, restaurantID, found)
		}
	}

	created, resp, err := r.POS.CreateClient(ctx, token, client.Phone, client.Name)
	if err != nil {
		return "", err
	}
	if created == "" {
		payload := "null"
		if resp != nil {
			payload = resp.Payload()
		}
		r.Logger.Error("POSTER_CLIENT", fmt.Sprintf("Create failed for client %d restaurant %d: %s", client.ID, restaurantID, payload))
		return "", nil
	}
	r.Logger.Info("POSTER_CLIENT", fmt.Sprintf("Created POS client %s for client %d restaurant %d", created, client.ID, restaurantID))
	return r.Store.InsertPosterClient(ctx, client.ID, restaurantID, created)
}

// ForOrder resolves the POS client at checkout. An existing mapping gets the latest
// phone and name pushed to the POS; failures only cost the mapping, never the order.
func (r *Reconciler) ForOrder(ctx context.Context, token string, restaurantID int64, client ClientRef) string {
	existing, err := r.Store.GetPosterClientID(ctx, client.ID, restaurantID)
	if err != nil {
		r.Logger.Error("POSTER_CLIENT", fmt.Sprintf("Mapping lookup failed for client %d: %v", client.ID, err))
		return ""
	}
	if existing != "" {
		if _, err := r.POS.UpdateClient(ctx, token, existing, client.Phone, client.Name); err != nil {
			r.Logger.Warn("POSTER_CLIENT", fmt.Sprintf("Update of POS client %s failed: %v", existing, err))
		}
		return existing
	}

	id, err := r.Resolve(ctx, token, restaurantID, client, false)
	if err != nil {
		r.Logger.Error("POSTER_CLIENT", fmt.Sprintf("Resolve failed for client %d restaurant %d: %v", client.ID, restaurantID, err))
		return ""
	}
	return id
}
