package api

import (
	"encoding/json"
	"net/http"

	"github.com/Yoni-hub/connectura-platform-sub000/internal/models"
	"github.com/Yoni-hub/connectura-platform-sub000/internal/scope"
	"github.com/Yoni-hub/connectura-platform-sub000/internal/share"

	"github.com/go-chi/chi/v5"
)

type CreateShareRequest struct {
	Sections      []string                 `json:"sections" example:"address,contact"`
	Products      []scope.ProductSelection `json:"products"`
	Editable      bool                     `json:"editable" example:"true"`
	RecipientName *string                  `json:"recipient_name" example:"Jan Kowalski"`
}

type CreateShareResponse struct {
	Share *models.Share `json:"share"`
	// AccessCode is shown exactly once; only its hash is stored.
	AccessCode string `json:"access_code" example:"1234"`
}

// @Summary      Create a share
// @Description  Creates a scoped share of the owner's profile and returns the token together with the one-time visible access code.
// @Tags         shares
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        createRequest body      CreateShareRequest true "Share scope and options"
// @Success      201           {object}  CreateShareResponse
// @Failure      400           {object}  share.Error
// @Failure      401           {string}  string "Unauthorized"
// @Failure      500           {string}  string "Internal Server Error"
// @Router       /shares [post]
func (s *Server) CreateShareHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	var req CreateShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := s.shares.Create(r.Context(), share.CreateParams{
		OwnerID: claims.UserID,
		Selection: scope.Selection{
			Sections: req.Sections,
			Products: req.Products,
		},
		Editable:      req.Editable,
		RecipientName: req.RecipientName,
	})
	if err != nil {
		writeShareError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateShareResponse{
		Share:      result.Share,
		AccessCode: result.AccessCode,
	})
}

// @Summary      List active shares
// @Description  Lists the owner's shares that are still live. Stale shares are expired on the way and omitted.
// @Tags         shares
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   models.Share
// @Failure      401  {string}  string "Unauthorized"
// @Failure      500  {string}  string "Internal Server Error"
// @Router       /shares [get]
func (s *Server) ListActiveSharesHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	shares, err := s.shares.ListActive(r.Context(), claims.UserID)
	if err != nil {
		writeShareError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, shares)
}

// @Summary      List shares awaiting review
// @Description  Lists the owner's shares that have a pending edit proposal.
// @Tags         shares
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   models.Share
// @Failure      401  {string}  string "Unauthorized"
// @Failure      500  {string}  string "Internal Server Error"
// @Router       /shares/pending [get]
func (s *Server) ListPendingSharesHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	shares, err := s.shares.ListPending(r.Context(), claims.UserID)
	if err != nil {
		writeShareError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, shares)
}

// @Summary      Approve pending edits
// @Description  Merges the recipient's pending proposal into the live profile and the share snapshot.
// @Tags         shares
// @Produce      json
// @Security     BearerAuth
// @Param        token  path      string  true  "Share token"
// @Success      200    {object}  models.Share
// @Failure      401    {string}  string "Unauthorized"
// @Failure      403    {object}  share.Error
// @Failure      404    {object}  share.Error
// @Failure      409    {object}  share.Error "No pending proposal"
// @Failure      500    {string}  string "Internal Server Error"
// @Router       /shares/{token}/approve [post]
func (s *Server) ApproveShareEditsHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())
	token := chi.URLParam(r, "token")

	updated, err := s.shares.Approve(r.Context(), token, claims.UserID)
	if err != nil {
		writeShareError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// @Summary      Decline pending edits
// @Description  Discards the recipient's pending proposal and ends the sharing session.
// @Tags         shares
// @Produce      json
// @Security     BearerAuth
// @Param        token  path      string  true  "Share token"
// @Success      200    {object}  models.Share
// @Failure      401    {string}  string "Unauthorized"
// @Failure      403    {object}  share.Error
// @Failure      404    {object}  share.Error
// @Failure      409    {object}  share.Error "No pending proposal"
// @Failure      500    {string}  string "Internal Server Error"
// @Router       /shares/{token}/decline [post]
func (s *Server) DeclineShareEditsHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())
	token := chi.URLParam(r, "token")

	updated, err := s.shares.Decline(r.Context(), token, claims.UserID)
	if err != nil {
		writeShareError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// @Summary      Revoke a share
// @Description  Revokes a share. Only the owner can do this; pending proposal fields stay in place for audit.
// @Tags         shares
// @Security     BearerAuth
// @Param        token  path      string  true  "Share token"
// @Success      204    {null}    nil "No Content"
// @Failure      401    {string}  string "Unauthorized"
// @Failure      403    {object}  share.Error
// @Failure      404    {object}  share.Error
// @Failure      500    {string}  string "Internal Server Error"
// @Router       /shares/{token} [delete]
func (s *Server) RevokeShareHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())
	token := chi.URLParam(r, "token")

	if err := s.shares.Revoke(r.Context(), token, claims.UserID); err != nil {
		writeShareError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
