package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/geocoder89/kinerjahub/internal/auth"
	"github.com/geocoder89/kinerjahub/internal/domain/user"
	"github.com/geocoder89/kinerjahub/internal/http/middlewares"
	"github.com/geocoder89/kinerjahub/internal/service"
	"github.com/gin-gonic/gin"
)

type AuthFlows interface {
	Register(ctx context.Context, req user.RegisterRequest) (user.User, error)
	Login(ctx context.Context, req user.LoginRequest) (service.LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error)
	Me(ctx context.Context, id auth.Identity) (user.User, error)
}

type AuthHandler struct {
	flows   AuthFlows
	metrics middlewares.FailureRecorder
}

func NewAuthHandler(flows AuthFlows, metrics middlewares.FailureRecorder) *AuthHandler {
	return &AuthHandler{flows: flows, metrics: metrics}
}

type userSummary struct {
	ID    int64     `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  user.Role `json:"role"`
}

type loginResponse struct {
	User         userSummary `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestContext(ctx)
	defer cancel()

	u, err := h.flows.Register(cctx, req)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondData(ctx, http.StatusCreated, "Registration successful.", u)
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestContext(ctx)
	defer cancel()

	res, err := h.flows.Login(cctx, req)
	if err != nil {
		if h.metrics != nil && errors.Is(err, service.ErrInvalidCredentials) {
			h.metrics.IncAuthFailure("invalid_credentials")
		}
		RespondErr(ctx, err)
		return
	}

	RespondData(ctx, http.StatusOK, "Login successful.", loginResponse{
		User: userSummary{
			ID:    res.User.ID,
			Name:  res.User.Name,
			Email: res.User.Email,
			Role:  res.User.Role,
		},
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
	})
}

func (h *AuthHandler) Refresh(ctx *gin.Context) {
	var req user.RefreshRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestContext(ctx)
	defer cancel()

	pair, err := h.flows.Refresh(cctx, req.RefreshToken)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondData(ctx, http.StatusOK, "Token refreshed.", pair)
}

func (h *AuthHandler) Me(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}

	cctx, cancel := requestContext(ctx)
	defer cancel()

	u, err := h.flows.Me(cctx, id)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondData(ctx, http.StatusOK, "", u)
}
