package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/Yoni-hub/connectura-platform-sub000/internal/models"
)

// @Summary      Get own profile
// @Description  Returns the authenticated owner's full structured profile.
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.ProfileData
// @Failure      401  {string}  string "Unauthorized"
// @Failure      500  {string}  string "Internal Server Error"
// @Router       /profile [get]
func (s *Server) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	profile, err := s.store.GetProfile(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("ERROR: Failed to read profile for user %d: %v", claims.UserID, err)
		http.Error(w, "Failed to retrieve profile", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// @Summary      Update own profile
// @Description  Replaces the authenticated owner's structured profile content.
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        profile  body      models.ProfileData  true  "Profile content"
// @Success      200      {object}  models.ProfileData
// @Failure      400      {string}  string "Invalid request body"
// @Failure      401      {string}  string "Unauthorized"
// @Failure      500      {string}  string "Internal Server Error"
// @Router       /profile [put]
func (s *Server) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	var profile models.ProfileData
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.store.UpsertProfile(r.Context(), claims.UserID, profile); err != nil {
		log.Printf("ERROR: Failed to update profile for user %d: %v", claims.UserID, err)
		http.Error(w, "Failed to update profile", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}
