package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/viewcache"
)

// ChannelHandler serves the public channel profile view.
type ChannelHandler struct {
	Channels ChannelViewer
	Cache    viewcache.Cache
	CacheTTL time.Duration
}

// Profile handles GET /api/v1/channels/{username}. Anonymous responses are
// cacheable; authenticated callers bypass the cache because isSubscribed is
// personalized.
func (h ChannelHandler) Profile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	username := r.PathValue("username")
	caller := callerFromContext(ctx)

	cacheKey := "channel:" + username
	if caller.Anonymous() && h.Cache != nil {
		if cached, ok := h.Cache.Get(ctx, cacheKey); ok {
			var profile json.RawMessage = cached
			respondData(ctx, w, http.StatusOK, profile, "channel profile")
			return
		}
	}

	profile, err := h.Channels.Profile(ctx, username, caller)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if caller.Anonymous() && h.Cache != nil {
		if payload, err := json.Marshal(profile); err == nil {
			h.Cache.Set(ctx, cacheKey, payload, h.CacheTTL)
		} else {
			logging.FromContext(ctx).Warn("failed to serialize channel profile for cache", "error", err)
		}
	}

	respondData(ctx, w, http.StatusOK, profile, "channel profile")
}
