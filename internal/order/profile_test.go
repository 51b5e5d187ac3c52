package order

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSyncClientProfile(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	assert.True(t, f.svc.SyncClientProfile(ctx, f.client.ID, f.restaurant.ID))
	assert.Len(t, f.pos.calls("clients.create"), 1)
	assert.Empty(t, f.pos.calls("clients.getClients"))
	update := f.pos.calls("clients.update")
	if assert.Len(t, update, 1) {
		assert.Contains(t, update[0], `"client_name":"Ali"`)
	}

	f.pos.set("clients.update", http.StatusInternalServerError, `{}`)
	assert.False(t, f.svc.SyncClientProfile(ctx, f.client.ID, f.restaurant.ID))
	assert.Len(t, f.pos.calls("clients.create"), 1)

	assert.False(t, f.svc.SyncClientProfile(ctx, f.client.ID, 9999))
}
