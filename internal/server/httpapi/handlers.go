package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/dkotlyar/passfort/internal/common"
	"github.com/dkotlyar/passfort/internal/server/sessions"
)

type registerRequest struct {
	Email    string `json:"email"`
	UserName string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	UserName string `json:"username"`
	Verified bool   `json:"verified"`
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	SessionID    string `json:"session_id"`
	RefreshToken string `json:"refresh_token"`
	Verified     bool   `json:"verified"`
}

type refreshRequest struct {
	SessionID    string `json:"session_id"`
	RefreshToken string `json:"refresh_token"`
}

type logoutRequest struct {
	SessionID string `json:"session_id"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type confirmVerificationRequest struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

type requestResetRequest struct {
	Email string `json:"email"`
}

type completeResetRequest struct {
	Token       string `json:"token"`
	Email       string `json:"email"`
	NewPassword string `json:"new_password"`
}

type statusResponse struct {
	Status string `json:"status"`
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func toPairResponse(pair *sessions.TokenPair) tokenPairResponse {
	return tokenPairResponse{
		AccessToken:  pair.AccessToken,
		SessionID:    pair.SessionID,
		RefreshToken: pair.RefreshToken,
		Verified:     pair.Verified,
	}
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "OK"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := decode(r, &req); err != nil || req.Email == "" || req.UserName == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "email, username and password are required"})
		return
	}

	s.logger.Info(ctx, "Registration request")

	user, err := s.users.Register(ctx, req.Email, req.UserName, req.Password)
	if err != nil {
		s.logger.Error(ctx, err.Error())
		writeError(w, err)
		return
	}

	// kick off email verification; the account exists regardless
	if err := s.flows.RequestVerification(ctx, user.ID, user.Email); err != nil {
		s.logger.Warn(ctx, "verification request failed", "error", err.Error())
	}

	s.logger.Info(ctx, "Registered", "username", user.UserName)
	writeJSON(w, http.StatusCreated, userResponse{
		ID: user.ID, Email: user.Email, UserName: user.UserName, Verified: user.Verified,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	pair, err := s.sessions.Login(ctx, req.Login, req.Password, r.UserAgent())
	s.collector.RecordLogin(err == nil)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPairResponse(pair))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req refreshRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	pair, err := s.sessions.Refresh(ctx, req.SessionID, req.RefreshToken)
	s.collector.RecordRefresh(err == nil)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPairResponse(pair))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req logoutRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if err := s.sessions.Logout(ctx, req.SessionID); err != nil {
		writeError(w, err)
		return
	}
	s.collector.RecordRevocation()

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := userIDFromContext(ctx)
	if !ok {
		writeError(w, common.ErrorUnauthorized)
		return
	}

	var req changePasswordRequest
	if err := decode(r, &req); err != nil || req.NewPassword == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "old_password and new_password are required"})
		return
	}

	if err := s.sessions.ChangePassword(ctx, userID, req.OldPassword, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRequestVerification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := userIDFromContext(ctx)
	if !ok {
		writeError(w, common.ErrorUnauthorized)
		return
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.flows.RequestVerification(ctx, user.ID, user.Email); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, statusResponse{Status: "verification requested"})
}

func (s *Server) handleConfirmVerification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req confirmVerificationRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	err := s.flows.ConfirmVerification(ctx, req.Token, req.Email)
	s.collector.RecordVerification(err == nil)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{Status: "email verified"})
}

func (s *Server) handleRequestReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req requestResetRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	// the response is identical for known and unknown emails
	if err := s.flows.RequestReset(ctx, req.Email); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, statusResponse{Status: "reset requested"})
}

func (s *Server) handleCompleteReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req completeResetRequest
	if err := decode(r, &req); err != nil || req.NewPassword == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "token, email and new_password are required"})
		return
	}

	err := s.flows.CompleteReset(ctx, req.Token, req.Email, req.NewPassword)
	s.collector.RecordReset(err == nil)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{Status: "password reset"})
}

func (s *Server) handleWhoami(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := userIDFromContext(ctx)
	if !ok {
		writeError(w, common.ErrorUnauthorized)
		return
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{
		ID: user.ID, Email: user.Email, UserName: user.UserName, Verified: user.Verified,
	})
}
