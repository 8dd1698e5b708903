package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/views"
)

// SubscriptionHandler implements the subscription endpoints.
type SubscriptionHandler struct {
	Subscriptions SubscriptionStore
	NowFunc       func() time.Time
}

// Toggle handles POST /api/v1/subscriptions/{channelId}. Subscribing to your
// own channel is rejected.
func (h SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondMessage(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	channelID := r.PathValue("channelId")
	if _, err := uuid.Parse(channelID); err != nil {
		respondError(ctx, w, views.ErrInvalidID)
		return
	}

	if channelID == identity.UserID {
		respondBadRequest(ctx, w, "cannot subscribe to your own channel")
		return
	}

	subscribed, err := h.Subscriptions.Toggle(ctx, models.Subscription{
		ID:           uuid.NewString(),
		SubscriberID: identity.UserID,
		ChannelID:    channelID,
		CreatedAt:    h.now(),
	})
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, map[string]bool{"subscribed": subscribed}, "subscription toggled")
}

// Subscribers handles GET /api/v1/subscriptions/{channelId}/subscribers.
func (h SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	channelID := r.PathValue("channelId")
	if _, err := uuid.Parse(channelID); err != nil {
		respondError(ctx, w, views.ErrInvalidID)
		return
	}

	users, err := h.Subscriptions.ListSubscribers(ctx, channelID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, ownerInfos(users), "channel subscribers")
}

// Channels handles GET /api/v1/subscriptions/{subscriberId}/channels.
func (h SubscriptionHandler) Channels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subscriberID := r.PathValue("subscriberId")
	if _, err := uuid.Parse(subscriberID); err != nil {
		respondError(ctx, w, views.ErrInvalidID)
		return
	}

	users, err := h.Subscriptions.ListChannels(ctx, subscriberID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, ownerInfos(users), "subscribed channels")
}

func ownerInfos(users []models.User) []views.OwnerInfo {
	infos := make([]views.OwnerInfo, 0, len(users))
	for _, u := range users {
		infos = append(infos, views.OwnerInfo{
			ID:        u.ID,
			Username:  u.Username,
			AvatarURL: u.Avatar.URL,
		})
	}
	return infos
}

func (h SubscriptionHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
