package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/kinerjahub/internal/auth"
	"github.com/geocoder89/kinerjahub/internal/domain/unit"
	"github.com/gin-gonic/gin"
)

type UnitsService interface {
	List(ctx context.Context) ([]unit.Unit, error)
	Get(ctx context.Context, unitID int64) (unit.Unit, error)
	Create(ctx context.Context, id auth.Identity, req unit.CreateRequest) (unit.Unit, error)
	Update(ctx context.Context, id auth.Identity, unitID int64, req unit.UpdateRequest) (unit.Unit, error)
	Delete(ctx context.Context, id auth.Identity, unitID int64) error
}

type UnitsHandler struct {
	svc UnitsService
}

func NewUnitsHandler(svc UnitsService) *UnitsHandler {
	return &UnitsHandler{svc: svc}
}

func (h *UnitsHandler) List(ctx *gin.Context) {
	cctx, cancel := requestContext(ctx)
	defer cancel()

	units, err := h.svc.List(cctx)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondListWithETag(ctx, "", units, len(units))
}

func (h *UnitsHandler) Get(ctx *gin.Context) {
	unitID, ok := pathID(ctx)
	if !ok {
		return
	}

	cctx, cancel := requestContext(ctx)
	defer cancel()

	u, err := h.svc.Get(cctx, unitID)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondData(ctx, http.StatusOK, "", u)
}

func (h *UnitsHandler) Create(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}

	var req unit.CreateRequest
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

	RespondData(ctx, http.StatusCreated, "Unit created.", u)
}

func (h *UnitsHandler) Update(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}

	unitID, ok := pathID(ctx)
	if !ok {
		return
	}

	var req unit.UpdateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestContext(ctx)
	defer cancel()

	u, err := h.svc.Update(cctx, id, unitID, req)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondData(ctx, http.StatusOK, "Unit updated.", u)
}

func (h *UnitsHandler) Delete(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}

	unitID, ok := pathID(ctx)
	if !ok {
		return
	}

	cctx, cancel := requestContext(ctx)
	defer cancel()

	if err := h.svc.Delete(cctx, id, unitID); err != nil {
		RespondErr(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
