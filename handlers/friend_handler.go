package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"safesphere/middleware"
	"safesphere/services"
)

type FriendHandler struct {
	friendService *services.FriendService
}

type sendFriendRequestRequest struct {
	FriendEmail string `json:"friend_email" validate:"required"`
}

func NewFriendHandler(friendService *services.FriendService) *FriendHandler {
	return &FriendHandler{friendService: friendService}
}

func (h *FriendHandler) SendFriendRequest(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	var input sendFriendRequestRequest
	if err := decodeBody(r, &input); err != nil {
		middleware.WriteError(w, err)
		return
	}

	req, err := h.friendService.SendRequest(r.Context(), user, input.FriendEmail)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, map[string]any{
		"message":    "Friend request sent successfully",
		"request_id": req.ID,
	})
}

func (h *FriendHandler) GetFriendRequests(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	requests, err := h.friendService.ListIncomingRequests(r.Context(), user)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, requests)
}

func (h *FriendHandler) RespondToFriendRequest(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	requestID, err := pathID(r, "id")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	action := services.FriendAction(mux.Vars(r)["action"])

	if _, err := h.friendService.Respond(r.Context(), requestID, user, action); err != nil {
		middleware.WriteError(w, err)
		return
	}

	if action == services.ActionAccept {
		writeMessage(w, http.StatusOK, "Friend request accepted")
		return
	}
	writeMessage(w, http.StatusOK, "Friend request rejected")
}

func (h *FriendHandler) GetFriends(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	friends, err := h.friendService.ListFriends(r.Context(), user.ID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, friends)
}

func (h *FriendHandler) GetFriendsByID(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	friends, err := h.friendService.ListFriends(r.Context(), userID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, friends)
}
