package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/kinerjahub/internal/auth"
	"github.com/geocoder89/kinerjahub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type UsersService interface {
	List(ctx context.Context, id auth.Identity) ([]user.User, error)
	Get(ctx context.Context, id auth.Identity, userID int64) (user.User, error)
	Create(ctx context.Context, id auth.Identity, req user.CreateRequest) (user.User, error)
	Update(ctx context.Context, id auth.Identity, userID int64, req user.UpdateRequest) (user.User, error)
	Delete(ctx context.Context, id auth.Identity, userID int64) error
}

type UsersHandler struct {
	svc UsersService
}

func NewUsersHandler(svc UsersService) *UsersHandler {
	return &UsersHandler{svc: svc}
}

func (h *UsersHandler) List(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}

	cctx, cancel := requestContext(ctx)
	defer cancel()

	users, err := h.svc.List(cctx, id)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondList(ctx, "", users, len(users))
}

func (h *UsersHandler) Get(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}

	userID, ok := pathID(ctx)
	if !ok {
		return
	}

	cctx, cancel := requestContext(ctx)
	defer cancel()

	u, err := h.svc.Get(cctx, id, userID)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondData(ctx, http.StatusOK, "", u)
}

func (h *UsersHandler) Create(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}

	var req user.CreateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestContext(ctx)
	defer cancel()

	u, err := h.svc.Create(cctx, id, req)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondData(ctx, http.StatusCreated, "User created.", u)
}

func (h *UsersHandler) Update(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}

	userID, ok := pathID(ctx)
	if !ok {
		return
	}

	var req user.UpdateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestContext(ctx)
	defer cancel()

	u, err := h.svc.Update(cctx, id, userID, req)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondData(ctx, http.StatusOK, "User updated.", u)
}

func (h *UsersHandler) Delete(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}

	userID, ok := pathID(ctx)
	if !ok {
		return
	}

	cctx, cancel := requestContext(ctx)
	defer cancel()

	if err := h.svc.Delete(cctx, id, userID); err != nil {
		RespondErr(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
