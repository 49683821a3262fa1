package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Yoni-hub/connectura-platform-sub000/internal/models"
	"github.com/Yoni-hub/connectura-platform-sub000/internal/share"
)

type AccessRequest struct {
	Token string `json:"token" example:"K9mPz2_vXq4Tb8wLr5nJc1aYd6eWf3gH"`
	Code  string `json:"code" example:"1234"`
	Name  string `json:"name,omitempty" example:"Jan Kowalski"`
}

type SubmitEditsRequest struct {
	Token string             `json:"token"`
	Code  string             `json:"code"`
	Name  string             `json:"name,omitempty"`
	Edits models.ProfileData `json:"edits"`
}

func recordVerification(err error) {
	outcome := "success"
	if err != nil {
		var shareErr *share.Error
		if errors.As(err, &shareErr) {
			outcome = shareErr.Kind
		} else {
			outcome = "internal"
		}
	}
	shareVerificationsTotal.WithLabelValues(outcome).Inc()
}

// @Summary      Verify share access
// @Description  Verifies token, access code and (when required) recipient name. A successful verification extends the sliding inactivity window and returns the scoped profile snapshot.
// @Tags         access
// @Accept       json
// @Produce      json
// @Param        accessRequest body      AccessRequest true "Share credentials"
// @Success      200           {object}  share.View
// @Failure      401           {object}  share.Error
// @Failure      404           {object}  share.Error
// @Failure      410           {object}  share.Error "Session expired"
// @Failure      429           {object}  share.Error "Too many failed attempts"
// @Failure      500           {string}  string "Internal Server Error"
// @Router       /access/verify [post]
func (s *Server) VerifyAccessHandler(w http.ResponseWriter, r *http.Request) {
	var req AccessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	view, err := s.shares.Verify(r.Context(), req.Token, req.Code, req.Name, true)
	recordVerification(err)
	if err != nil {
		writeShareError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// @Summary      Submit profile edits
// @Description  Files a recipient edit proposal against a share. Edits outside the share scope are dropped silently; a submission with nothing in scope is rejected.
// @Tags         access
// @Accept       json
// @Produce      json
// @Param        submitRequest body      SubmitEditsRequest true "Share credentials and edit payload"
// @Success      200           {object}  share.View
// @Failure      401           {object}  share.Error
// @Failure      403           {object}  share.Error "Editing disabled"
// @Failure      404           {object}  share.Error
// @Failure      410           {object}  share.Error "Session expired"
// @Failure      422           {object}  share.Error "Nothing within scope"
// @Failure      500           {string}  string "Internal Server Error"
// @Router       /access/edits [post]
func (s *Server) SubmitEditsHandler(w http.ResponseWriter, r *http.Request) {
	var req SubmitEditsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	view, err := s.shares.SubmitEdits(r.Context(), req.Token, req.Code, req.Name, req.Edits)
	recordVerification(err)
	if err != nil {
		writeShareError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// @Summary      Close share access
// @Description  Lets a recipient voluntarily end their own sharing session. Requires the same credentials as verification and revokes the share.
// @Tags         access
// @Accept       json
// @Param        accessRequest body      AccessRequest true "Share credentials"
// @Success      204           {null}    nil "No Content"
// @Failure      401           {object}  share.Error
// @Failure      404           {object}  share.Error
// @Failure      410           {object}  share.Error "Session expired"
// @Failure      500           {string}  string "Internal Server Error"
// @Router       /access/close [post]
func (s *Server) CloseAccessHandler(w http.ResponseWriter, r *http.Request) {
	var req AccessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	err := s.shares.VerifyForClose(r.Context(), req.Token, req.Code, req.Name)
	recordVerification(err)
	if err != nil {
		writeShareError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
